package admin

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"megamine.ru/mining-bot/internal/common"
	"megamine.ru/mining-bot/internal/features/activity"
	"megamine.ru/mining-bot/internal/features/profile"
)

func noon() time.Time {
	return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
}

// --- Роли ---

func TestBootstrapGrantsOwnerAndAdmins(t *testing.T) {
	s := NewRoleStore()
	s.Bootstrap(1, []int64{2, 3}, noon())

	require.Equal(t, LevelOwner, s.LevelOf(1))
	require.Equal(t, LevelAdmin, s.LevelOf(2))
	require.Equal(t, LevelAdmin, s.LevelOf(3))
	require.Equal(t, LevelNone, s.LevelOf(99))
}

func TestAuthorizeByLevel(t *testing.T) {
	s := NewRoleStore()
	s.Bootstrap(1, nil, noon())
	require.NoError(t, s.Add(2, RoleModerator, 1, noon()))

	require.NoError(t, s.Authorize(1, LevelOwner))
	require.NoError(t, s.Authorize(2, LevelModerator))
	require.ErrorIs(t, s.Authorize(2, LevelAdmin), common.ErrUnauthorized)
	require.ErrorIs(t, s.Authorize(99, LevelModerator), common.ErrUnauthorized)
}

func TestOwnerRoleIsProtected(t *testing.T) {
	s := NewRoleStore()
	s.Bootstrap(1, nil, noon())

	require.ErrorIs(t, s.Add(1, RoleModerator, 1, noon()), common.ErrInvalidRole)
	_, err := s.Remove(1)
	require.ErrorIs(t, err, common.ErrInvalidRole)

	_, err = ParseRole("owner")
	require.ErrorIs(t, err, common.ErrInvalidRole)
}

func TestRemoveNonAdmin(t *testing.T) {
	s := NewRoleStore()
	s.Bootstrap(1, nil, noon())

	_, err := s.Remove(42)
	require.ErrorIs(t, err, common.ErrUserNotFound)
}

func TestRestoreSkipsOwnerOverride(t *testing.T) {
	s := NewRoleStore()
	s.Bootstrap(1, nil, noon())

	s.Restore(map[int64]Role{
		1: RoleModerator, // владельца из БД не понижаем
		5: RoleAdmin,
		6: RoleOwner, // второго владельца из БД не принимаем
	}, noon())

	require.Equal(t, LevelOwner, s.LevelOf(1))
	require.Equal(t, LevelAdmin, s.LevelOf(5))
	require.Equal(t, LevelNone, s.LevelOf(6))
}

// --- Блокировки ---

func TestSuspendUnsuspend(t *testing.T) {
	s := NewSuspensions()
	require.False(t, s.IsSuspended(1))

	s.Suspend(1)
	s.Suspend(1) // повтор — no-op
	require.True(t, s.IsSuspended(1))
	require.Equal(t, 1, s.Count())

	require.NoError(t, s.Unsuspend(1))
	require.False(t, s.IsSuspended(1))
	require.ErrorIs(t, s.Unsuspend(1), common.ErrUserNotFound)
}

// --- Политика ---

func TestSettingsSetAndView(t *testing.T) {
	s := NewSettings()

	require.NoError(t, s.Set("referral_reward", "75"))
	require.True(t, s.Policy().ReferralReward.Equal(decimal.NewFromInt(75)))
	require.Equal(t, "75", s.View()["referral_reward"])

	require.NoError(t, s.Set("jackpot_chance", "0.25"))
	require.InDelta(t, 0.25, s.Policy().JackpotChance, 1e-9)
}

func TestSettingsRejectsBadInput(t *testing.T) {
	s := NewSettings()

	require.ErrorIs(t, s.Set("unknown_param", "1"), common.ErrInvalidInput)
	require.ErrorIs(t, s.Set("referral_reward", "abc"), common.ErrInvalidInput)
	require.ErrorIs(t, s.Set("referral_reward", "-5"), common.ErrInvalidInput)
	require.ErrorIs(t, s.Set("jackpot_chance", "1.5"), common.ErrInvalidInput)
	require.ErrorIs(t, s.Set("suspicious_threshold", "2.5"), common.ErrInvalidInput)

	// Неудачный Set ничего не меняет
	require.True(t, s.Policy().ReferralReward.Equal(decimal.NewFromInt(50)))
}

// --- Статистика и сегменты рассылки ---

func seedEconomy(t *testing.T) (*Service, *profile.Store, *activity.Tracker) {
	t.Helper()
	store := profile.NewStore()
	tracker := activity.NewTracker()
	t.Cleanup(tracker.Close)
	suspensions := NewSuspensions()
	svc := NewService(store, tracker, suspensions, NewSettings())

	now := noon()
	seed := []struct {
		id        int64
		mined     int64
		claims    int64
		lastClaim time.Duration // насколько давно; 0 означает «не майнил»
	}{
		{1, 5000, 100, -time.Hour},      // кит, активен
		{2, 100, 10, -30 * time.Hour},   // неактивен >24ч
		{3, 50, 3, -2 * time.Hour},      // новенький, активен
		{4, 0, 0, 0},                    // ни разу не майнил
	}
	for _, u := range seed {
		u := u
		_ = store.With(u.id, now, func(p *profile.UserProfile) error {
			p.TotalMined = decimal.NewFromInt(u.mined)
			p.Balance = decimal.NewFromInt(u.mined)
			p.MiningCount = u.claims
			if u.lastClaim != 0 {
				ts := now.Add(u.lastClaim)
				p.LastClaimAt = &ts
			}
			return nil
		})
	}
	return svc, store, tracker
}

func TestCollectStats(t *testing.T) {
	svc, _, _ := seedEconomy(t)

	stats := svc.CollectStats(noon())
	require.Equal(t, 4, stats.TotalUsers)
	require.Equal(t, 2, stats.ActiveUsers24h)
	require.True(t, stats.TotalMined.Equal(decimal.NewFromInt(5150)))
	require.Equal(t, 0, stats.SuspendedUsers)
}

func TestMonitorUnknownUser(t *testing.T) {
	svc, _, _ := seedEconomy(t)

	_, ok := svc.Monitor(999, noon())
	require.False(t, ok)

	report, ok := svc.Monitor(1, noon())
	require.True(t, ok)
	require.True(t, report.TotalMined.Equal(decimal.NewFromInt(5000)))
	require.EqualValues(t, 100, report.MiningCount)
	require.False(t, report.Suspended)
}

func TestBroadcastTargets(t *testing.T) {
	svc, _, _ := seedEconomy(t)
	now := noon()

	active, ok := svc.BroadcastTargets(TargetActive, now)
	require.True(t, ok)
	require.ElementsMatch(t, []int64{1, 3}, active)

	inactive, ok := svc.BroadcastTargets(TargetInactive, now)
	require.True(t, ok)
	require.ElementsMatch(t, []int64{2, 4}, inactive)

	// Средний баланс 5150/4 = 1287.5; киты — больше двойного среднего
	whales, ok := svc.BroadcastTargets(TargetWhales, now)
	require.True(t, ok)
	require.ElementsMatch(t, []int64{1}, whales)

	// «Новенькие» — не больше 7 клеймов
	fresh, ok := svc.BroadcastTargets(TargetNew, now)
	require.True(t, ok)
	require.ElementsMatch(t, []int64{3, 4}, fresh)

	_, ok = svc.BroadcastTargets("everyone", now)
	require.False(t, ok)
}
