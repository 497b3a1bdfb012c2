// Package admin — service.go собирает админ-отчёты: общую статистику,
// мониторинг конкретного пользователя и выборку целевых групп для
// рассылок. Сама доставка сообщений — забота транспорта, сервис
// возвращает только данные.
package admin

import (
	"time"

	"github.com/shopspring/decimal"

	"megamine.ru/mining-bot/internal/features/activity"
	"megamine.ru/mining-bot/internal/features/profile"
)

// Stats — сводная статистика для /admin_stats.
type Stats struct {
	TotalUsers      int
	ActiveUsers24h  int
	TotalMined      decimal.Decimal
	TotalReferrals  int
	SuspiciousUsers int
	SuspendedUsers  int
}

// MonitorReport — отчёт по одному пользователю для /monitor.
type MonitorReport struct {
	UserID           int64
	Suspended        bool
	Suspicious       bool
	ActionsPerMinute int
	Balance          decimal.Decimal
	TotalMined       decimal.Decimal
	MiningCount      int64
	ReferralCount    int
}

// BroadcastTarget — целевая группа рассылки.
type BroadcastTarget string

const (
	TargetActive   BroadcastTarget = "active"   // клеймили за последние 24ч
	TargetInactive BroadcastTarget = "inactive" // не клеймили 24ч+
	TargetWhales   BroadcastTarget = "whales"   // баланс > 2× среднего
	TargetNew      BroadcastTarget = "new"      // не больше 7 клеймов
)

// Service собирает отчёты по живому состоянию систем.
type Service struct {
	profiles    *profile.Store
	tracker     *activity.Tracker
	suspensions *Suspensions
	settings    *Settings
}

// NewService создаёт админ-сервис.
func NewService(profiles *profile.Store, tracker *activity.Tracker, suspensions *Suspensions, settings *Settings) *Service {
	return &Service{
		profiles:    profiles,
		tracker:     tracker,
		suspensions: suspensions,
		settings:    settings,
	}
}

// CollectStats собирает сводную статистику по всем пользователям.
func (s *Service) CollectStats(now time.Time) Stats {
	threshold := s.settings.Policy().SuspiciousThreshold
	st := Stats{
		TotalMined:     decimal.Zero,
		SuspendedUsers: s.suspensions.Count(),
	}
	for _, p := range s.profiles.Snapshot() {
		st.TotalUsers++
		if p.LastClaimAt != nil && now.Sub(*p.LastClaimAt) < 24*time.Hour {
			st.ActiveUsers24h++
		}
		st.TotalMined = st.TotalMined.Add(p.TotalMined)
		st.TotalReferrals += p.ReferralCount
		if sus, _ := s.tracker.Suspicious(p.UserID, threshold, now); sus {
			st.SuspiciousUsers++
		}
	}
	return st
}

// Monitor возвращает отчёт по конкретному пользователю.
// ok=false — профиль не заведён.
func (s *Service) Monitor(userID int64, now time.Time) (MonitorReport, bool) {
	p, ok := s.profiles.Get(userID)
	if !ok {
		return MonitorReport{}, false
	}
	threshold := s.settings.Policy().SuspiciousThreshold
	sus, perMin := s.tracker.Suspicious(userID, threshold, now)
	return MonitorReport{
		UserID:           userID,
		Suspended:        s.suspensions.IsSuspended(userID),
		Suspicious:       sus,
		ActionsPerMinute: perMin,
		Balance:          p.Balance,
		TotalMined:       p.TotalMined,
		MiningCount:      p.MiningCount,
		ReferralCount:    p.ReferralCount,
	}, true
}

// BroadcastTargets возвращает множество user_id, попадающих в целевую
// группу. Неизвестная группа → ok=false.
func (s *Service) BroadcastTargets(target BroadcastTarget, now time.Time) (ids []int64, ok bool) {
	snapshot := s.profiles.Snapshot()

	switch target {
	case TargetActive:
		for _, p := range snapshot {
			if p.LastClaimAt != nil && now.Sub(*p.LastClaimAt) < 24*time.Hour {
				ids = append(ids, p.UserID)
			}
		}
	case TargetInactive:
		for _, p := range snapshot {
			if p.LastClaimAt == nil || now.Sub(*p.LastClaimAt) >= 24*time.Hour {
				ids = append(ids, p.UserID)
			}
		}
	case TargetWhales:
		if len(snapshot) == 0 {
			return nil, true
		}
		total := decimal.Zero
		for _, p := range snapshot {
			total = total.Add(p.Balance)
		}
		// Киты — баланс больше двух средних.
		bar := total.Div(decimal.NewFromInt(int64(len(snapshot)))).Mul(decimal.NewFromInt(2))
		for _, p := range snapshot {
			if p.Balance.GreaterThan(bar) {
				ids = append(ids, p.UserID)
			}
		}
	case TargetNew:
		for _, p := range snapshot {
			if p.MiningCount <= 7 {
				ids = append(ids, p.UserID)
			}
		}
	default:
		return nil, false
	}
	return ids, true
}
