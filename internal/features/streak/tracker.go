// Package streak отслеживает непрерывность ежедневных клеймов.
// tracker.go реализует продвижение серии: продолжение, рекорд,
// недельные бонусы и обрывы.
package streak

import (
	"time"

	"github.com/shopspring/decimal"

	"megamine.ru/mining-bot/internal/features/admin"
	"megamine.ru/mining-bot/internal/features/profile"
)

// dayBucket — гранулярность «дня» для серии. Совпадает с кулдауном
// клейма: и обрыв серии, и кулдаун меряются одними и теми же
// 24-часовыми интервалами от одного и того же таймстемпа. Иначе
// возле границы возникает окно, где кулдаун уже прошёл, а серия
// считается оборванной.
const dayBucket = 24 * time.Hour

// milestoneEvery — каждые столько дней серии выдаётся разовый бонус.
const milestoneEvery = 7

// AdvanceResult — итог продвижения серии при успешном клейме.
type AdvanceResult struct {
	// Streak — серия ПОСЛЕ продвижения.
	Streak int
	// FirstClaim — у пользователя не было предыдущих клеймов.
	FirstClaim bool
	// Broken — серия оборвалась; BrokenLength — её длина до сброса
	// (для прощального уведомления).
	Broken       bool
	BrokenLength int
	// MilestoneBonus — недельный бонус, уже зачисленный на баланс.
	// Ноль, если рубеж не достигнут.
	MilestoneBonus decimal.Decimal
}

// Tracker продвигает серии ежедневных клеймов.
type Tracker struct {
	settings *admin.Settings
}

// NewTracker создаёт трекер серий.
func NewTracker(settings *admin.Settings) *Tracker {
	return &Tracker{settings: settings}
}

// Advance продвигает серию профиля. Вызывается движком наград ДО записи
// нового last_claim_at, чтобы расстояние мерялось от предыдущего клейма.
// Вызывающий держит блокировку профиля.
//
// Правила:
//   - первый клейм: серия = 1, без событий
//   - прошло <= 1 суточного интервала: серия +1, рекорд обновляется;
//     на каждом кратном 7 дне — разовый бонус прямо на баланс
//   - прошло больше: серия оборвана, сообщаем прежнюю длину, серия = 1
//
// Ровно 24 часа — это ещё «следующий день» (включительная нижняя
// граница, как у кулдауна), серия сохраняется.
func (t *Tracker) Advance(p *profile.UserProfile, now time.Time) AdvanceResult {
	if p.LastClaimAt == nil {
		p.CurrentStreak = 1
		if p.HighestStreak < 1 {
			p.HighestStreak = 1
		}
		return AdvanceResult{Streak: 1, FirstClaim: true, MilestoneBonus: decimal.Zero}
	}

	daysSince := int(now.Sub(*p.LastClaimAt) / dayBucket)
	if daysSince <= 1 {
		p.CurrentStreak++
		if p.CurrentStreak > p.HighestStreak {
			p.HighestStreak = p.CurrentStreak
		}

		res := AdvanceResult{Streak: p.CurrentStreak, MilestoneBonus: decimal.Zero}
		if p.CurrentStreak%milestoneEvery == 0 {
			bonus := t.settings.Policy().StreakMilestoneBonus
			// Недельный бонус идёт прямо на баланс, отдельно от выплаты
			// движка наград, и НЕ увеличивает total_mined.
			p.Balance = p.Balance.Add(bonus)
			res.MilestoneBonus = bonus
		}
		return res
	}

	// Серия оборвана: сообщаем длину до сброса и начинаем заново.
	broken := p.CurrentStreak
	p.CurrentStreak = 1
	if p.HighestStreak < 1 {
		p.HighestStreak = 1
	}
	return AdvanceResult{
		Streak:         1,
		Broken:         broken > 0,
		BrokenLength:   broken,
		MilestoneBonus: decimal.Zero,
	}
}
