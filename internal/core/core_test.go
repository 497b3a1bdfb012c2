package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"megamine.ru/mining-bot/internal/common"
	"megamine.ru/mining-bot/internal/features/achievements"
	"megamine.ru/mining-bot/internal/features/activity"
	"megamine.ru/mining-bot/internal/features/admin"
	"megamine.ru/mining-bot/internal/features/energy"
	"megamine.ru/mining-bot/internal/features/leaderboard"
	"megamine.ru/mining-bot/internal/features/mining"
	"megamine.ru/mining-bot/internal/features/profile"
	"megamine.ru/mining-bot/internal/features/referral"
	"megamine.ru/mining-bot/internal/features/streak"
	"megamine.ru/mining-bot/internal/features/tasks"
	"megamine.ru/mining-bot/internal/notify"
	"megamine.ru/mining-bot/internal/verify"
)

type fixedRand struct{ v float64 }

func (r fixedRand) Float64() float64 { return r.v }

// fakeClock — управляемое время для детерминированных сценариев.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// recorder собирает отправленные уведомления.
type recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recorder) Notify(_ context.Context, _ int64, e notify.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind())
	}
	return out
}

type env struct {
	core        *Core
	clock       *fakeClock
	store       *profile.Store
	energy      *energy.Service
	suspensions *admin.Suspensions
	notes       *recorder
	verified    *bool // что вернёт верификатор
}

func newEnv(t *testing.T) *env {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	store := profile.NewStore()
	settings := admin.NewSettings()
	roles := admin.NewRoleStore()
	roles.Bootstrap(1, []int64{2}, clock.Now())
	require.NoError(t, roles.Add(3, admin.RoleModerator, 1, clock.Now()))
	suspensions := admin.NewSuspensions()
	tracker := activity.NewTracker()
	t.Cleanup(tracker.Close)

	energySvc := energy.NewService(energy.DefaultPlans(), 30)
	streaks := streak.NewTracker(settings)
	evaluator := achievements.NewEvaluator(achievements.Catalog())
	engine := mining.NewEngine(energySvc, streaks, evaluator, settings, fixedRand{0.99}, 24*time.Hour)
	notes := &recorder{}
	verified := true

	c := New(Deps{
		Profiles:     store,
		Energy:       energySvc,
		Engine:       engine,
		Referrals:    referral.NewLedger(store, settings),
		Tasks:        tasks.NewLedger(store),
		Roles:        roles,
		Suspensions:  suspensions,
		Settings:     settings,
		AdminService: admin.NewService(store, tracker, suspensions, settings),
		Boards:       leaderboard.NewService(store),
		Tracker:      tracker,
		Achievements: evaluator,
		Notifier:     notes,
		Verifier: verify.Func(func(ctx context.Context, userID int64, channelRef string) (bool, error) {
			return verified, nil
		}),
		VerifyTimeout: 100 * time.Millisecond,
		Clock:         clock.Now,
	})
	return &env{
		core:        c,
		clock:       clock,
		store:       store,
		energy:      energySvc,
		suspensions: suspensions,
		notes:       notes,
		verified:    &verified,
	}
}

// givePlan выдаёт пользователю план напрямую, минуя платёжный путь.
func (e *env) givePlan(t *testing.T, userID int64, planID string) {
	t.Helper()
	err := e.store.With(userID, e.clock.Now(), func(p *profile.UserProfile) error {
		_, err := e.energy.GrantPlan(p, planID, e.clock.Now())
		return err
	})
	require.NoError(t, err)
}

func TestSuspendedUserCannotClaim(t *testing.T) {
	e := newEnv(t)
	e.givePlan(t, 100, "max")
	e.suspensions.Suspend(100)

	_, err := e.core.SubmitClaim(context.Background(), 100)
	require.ErrorIs(t, err, common.ErrSuspended)

	// После разблокировки операция проходит
	require.NoError(t, e.suspensions.Unsuspend(100))
	res, err := e.core.SubmitClaim(context.Background(), 100)
	require.NoError(t, err)
	require.True(t, res.Accepted)
}

func TestConcurrentClaimsAcceptExactlyOne(t *testing.T) {
	e := newEnv(t)
	e.givePlan(t, 100, "max")

	const workers = 16
	var wg sync.WaitGroup
	accepted := make(chan *mining.ClaimResult, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := e.core.SubmitClaim(context.Background(), 100)
			require.NoError(t, err)
			if res.Accepted {
				accepted <- res
			}
		}()
	}
	wg.Wait()
	close(accepted)

	require.Len(t, accepted, 1)
	p, err := e.core.Profile(100)
	require.NoError(t, err)
	require.EqualValues(t, 1, p.MiningCount)
	require.True(t, p.Balance.Equal(decimal.NewFromInt(50)))
}

func TestClaimAfterCooldownContinuesStreak(t *testing.T) {
	e := newEnv(t)
	e.givePlan(t, 100, "max")

	res, err := e.core.SubmitClaim(context.Background(), 100)
	require.NoError(t, err)
	require.True(t, res.Accepted)

	e.clock.Advance(time.Hour)
	res, err = e.core.SubmitClaim(context.Background(), 100)
	require.NoError(t, err)
	require.False(t, res.Accepted)
	require.Equal(t, 23*time.Hour, res.CooldownRemaining)

	e.clock.Advance(23 * time.Hour)
	res, err = e.core.SubmitClaim(context.Background(), 100)
	require.NoError(t, err)
	require.True(t, res.Accepted)
	require.Equal(t, 2, res.Streak.Streak)
}

func TestMilestoneClaimNotifies(t *testing.T) {
	e := newEnv(t)
	e.givePlan(t, 100, "max")
	// Шесть дней серии уже есть
	err := e.store.With(100, e.clock.Now(), func(p *profile.UserProfile) error {
		last := e.clock.Now().Add(-24 * time.Hour)
		p.LastClaimAt = &last
		p.CurrentStreak = 6
		p.HighestStreak = 6
		p.MiningCount = 6
		return nil
	})
	require.NoError(t, err)

	res, err := e.core.SubmitClaim(context.Background(), 100)
	require.NoError(t, err)
	require.True(t, res.Accepted)
	require.Equal(t, 7, res.Streak.Streak)

	kinds := e.notes.kinds()
	require.Contains(t, kinds, "streak_milestone")
	require.Contains(t, kinds, "achievement_unlocked") // mining_streak_7
}

func TestReferralSignupThenPurchase(t *testing.T) {
	e := newEnv(t)
	// Реферер уже в системе
	e.core.EnsureProfile(10)

	res, err := e.core.SubmitReferralSignup(context.Background(), 20, 10)
	require.NoError(t, err)
	require.True(t, res.Attributed)

	// Новичок покупает план: рефереру капает 10% цены
	purchase, err := e.core.SubmitPurchase(context.Background(), 20, "unlimited")
	require.NoError(t, err)
	require.True(t, purchase.ReferralCredit.Credited)
	require.True(t, purchase.ReferralCredit.Amount.Equal(decimal.NewFromInt(25)))

	referrer, err := e.core.Profile(10)
	require.NoError(t, err)
	// 50 за регистрацию + 25 за покупку
	require.True(t, referrer.Balance.Equal(decimal.NewFromInt(75)), "balance = %s", referrer.Balance)

	kinds := e.notes.kinds()
	require.Contains(t, kinds, "referral_credit")
	require.Contains(t, kinds, "purchase_confirmed")
}

func TestPurchaseUnknownPlan(t *testing.T) {
	e := newEnv(t)
	_, err := e.core.SubmitPurchase(context.Background(), 100, "mega")
	require.ErrorIs(t, err, common.ErrInvalidPlan)
}

func TestTaskCompletionVerificationGate(t *testing.T) {
	e := newEnv(t)
	task, err := e.core.CreateTask(1, "Подписка", "Подпишись", "https://t.me/channel", "Подписаться", decimal.NewFromInt(30))
	require.NoError(t, err)

	*e.verified = false
	_, err = e.core.SubmitTaskCompletion(context.Background(), 100, task.ID)
	require.ErrorIs(t, err, common.ErrVerificationFailed)
	require.Contains(t, e.notes.kinds(), "task_verification_failed")

	// Вторая попытка после подписки
	*e.verified = true
	res, err := e.core.SubmitTaskCompletion(context.Background(), 100, task.ID)
	require.NoError(t, err)
	require.True(t, res.Awarded)

	_, err = e.core.SubmitTaskCompletion(context.Background(), 100, task.ID)
	require.ErrorIs(t, err, common.ErrAlreadyCompleted)
}

func TestTaskWithoutChannelSkipsVerifier(t *testing.T) {
	e := newEnv(t)
	task, err := e.core.CreateTask(1, "Сайт", "Открой сайт", "https://example.com", "Открыть", decimal.NewFromInt(5))
	require.NoError(t, err)

	// Верификатор вернул бы false, но для задач без канала он не зовётся
	*e.verified = false
	res, err := e.core.SubmitTaskCompletion(context.Background(), 100, task.ID)
	require.NoError(t, err)
	require.True(t, res.Awarded)
}

func TestAdminLevels(t *testing.T) {
	e := newEnv(t)
	reward := decimal.NewFromInt(10)

	// Обычный пользователь
	_, err := e.core.CreateTask(100, "t", "d", "https://t.me/x", "b", reward)
	require.ErrorIs(t, err, common.ErrUnauthorized)

	// Модератор (уровень 1): читает, но не управляет
	_, err = e.core.GetConfig(3)
	require.NoError(t, err)
	_, err = e.core.CreateTask(3, "t", "d", "https://t.me/x", "b", reward)
	require.ErrorIs(t, err, common.ErrUnauthorized)
	require.ErrorIs(t, e.core.SetConfig(3, "referral_reward", "70"), common.ErrUnauthorized)

	// Админ (уровень 2): задания и блокировки, но не политика и не роли
	_, err = e.core.CreateTask(2, "t", "d", "https://t.me/x", "b", reward)
	require.NoError(t, err)
	require.ErrorIs(t, e.core.SetConfig(2, "referral_reward", "70"), common.ErrUnauthorized)
	require.ErrorIs(t, e.core.AddAdmin(2, 50, "moderator"), common.ErrUnauthorized)

	// Владелец (уровень 3): всё
	require.NoError(t, e.core.SetConfig(1, "referral_reward", "70"))
	require.NoError(t, e.core.AddAdmin(1, 50, "moderator"))
	require.NoError(t, e.core.RemoveAdmin(1, 50))
}

func TestSuspendRequiresExistingProfile(t *testing.T) {
	e := newEnv(t)

	err := e.core.Suspend(context.Background(), 2, 999)
	require.ErrorIs(t, err, common.ErrUserNotFound)

	e.core.EnsureProfile(999)
	require.NoError(t, e.core.Suspend(context.Background(), 2, 999))
	require.Contains(t, e.notes.kinds(), "suspension_changed")
	require.NoError(t, e.core.Unsuspend(context.Background(), 2, 999))
}

func TestSetConfigTakesEffect(t *testing.T) {
	e := newEnv(t)
	e.core.EnsureProfile(10)
	require.NoError(t, e.core.SetConfig(1, "referral_reward", "80"))

	res, err := e.core.SubmitReferralSignup(context.Background(), 20, 10)
	require.NoError(t, err)
	require.True(t, res.Reward.Equal(decimal.NewFromInt(80)))
}

func TestLeaderboardThroughFacade(t *testing.T) {
	e := newEnv(t)
	e.givePlan(t, 100, "max")
	e.givePlan(t, 200, "unlimited")

	_, err := e.core.SubmitClaim(context.Background(), 100)
	require.NoError(t, err)
	_, err = e.core.SubmitClaim(context.Background(), 200)
	require.NoError(t, err)

	top := e.core.Leaderboard(leaderboard.Daily)
	require.Len(t, top, 2)
	require.EqualValues(t, 200, top[0].UserID) // 150 > 50
}
