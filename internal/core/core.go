// Package core — фасад ядра экономики. Сюда входят все пользовательские
// операции: клейм, реферальная регистрация, покупка энергоплана,
// выполнение задания. Транспорт (бот), платёжка и хранилище общаются
// с ядром только через эти методы.
//
// core.go — пользовательские операции; admin.go — админские.
package core

import (
	"context"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"

	"megamine.ru/mining-bot/internal/common"
	"megamine.ru/mining-bot/internal/features/achievements"
	"megamine.ru/mining-bot/internal/features/admin"
	"megamine.ru/mining-bot/internal/features/energy"
	"megamine.ru/mining-bot/internal/features/leaderboard"
	"megamine.ru/mining-bot/internal/features/mining"
	"megamine.ru/mining-bot/internal/features/profile"
	"megamine.ru/mining-bot/internal/features/referral"
	"megamine.ru/mining-bot/internal/features/tasks"
	"megamine.ru/mining-bot/internal/metrics"
	"megamine.ru/mining-bot/internal/notify"
	"megamine.ru/mining-bot/internal/verify"

	"megamine.ru/mining-bot/internal/features/activity"
)

// Deps — зависимости ядра. Собираются в internal/app.
type Deps struct {
	Profiles     *profile.Store
	Energy       *energy.Service
	Engine       *mining.Engine
	Referrals    *referral.Ledger
	Tasks        *tasks.Ledger
	Roles        *admin.RoleStore
	Suspensions  *admin.Suspensions
	Settings     *admin.Settings
	AdminService *admin.Service
	Boards       *leaderboard.Service
	Tracker      *activity.Tracker
	Achievements *achievements.Evaluator
	Notifier     notify.Notifier
	Verifier     verify.MembershipVerifier

	// VerifyTimeout ограничивает внешнюю проверку подписки.
	VerifyTimeout time.Duration
	// Clock — источник времени; в тестах подменяется.
	Clock func() time.Time
}

// Core — фасад ядра.
type Core struct {
	d Deps
}

// New создаёт ядро. Незаданный Clock — это time.Now.
func New(d Deps) *Core {
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.Notifier == nil {
		d.Notifier = notify.NewLogNotifier()
	}
	return &Core{d: d}
}

// DefaultRand — стандартный источник случайности для джекпота.
type DefaultRand struct{}

// Float64 возвращает равномерное число из [0, 1).
func (DefaultRand) Float64() float64 { return rand.Float64() }

// Close освобождает фоновые ресурсы ядра.
func (c *Core) Close() {
	c.d.Tracker.Close()
}

// EnsureProfile заводит профиль при первом контакте без реферальной
// ссылки. Повторные вызовы — no-op.
func (c *Core) EnsureProfile(userID int64) {
	_ = c.d.Profiles.With(userID, c.d.Clock(), func(*profile.UserProfile) error { return nil })
}

// SubmitClaim обрабатывает попытку майнинга.
// Блокировка аккаунта — внешний гейт: проверяется здесь, до движка.
// Отказ по кулдауну/плану — это не ошибка, а ClaimResult с причиной.
func (c *Core) SubmitClaim(ctx context.Context, userID int64) (*mining.ClaimResult, error) {
	if c.d.Suspensions.IsSuspended(userID) {
		metrics.ClaimsTotal.WithLabelValues("suspended").Inc()
		return nil, common.ErrSuspended
	}

	now := c.d.Clock()
	c.d.Tracker.Record(userID, now)

	var res *mining.ClaimResult
	err := c.d.Profiles.With(userID, now, func(p *profile.UserProfile) error {
		res = c.d.Engine.Claim(p, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch {
	case res.Accepted:
		metrics.ClaimsTotal.WithLabelValues("accepted").Inc()
		if res.Jackpot.IsPositive() {
			metrics.JackpotsTotal.Inc()
		}
	case res.Reason == common.ErrCooldownActive:
		metrics.ClaimsTotal.WithLabelValues("cooldown").Inc()
	default:
		metrics.ClaimsTotal.WithLabelValues("no_plan").Inc()
	}

	if res.Accepted {
		c.notifyClaimEvents(ctx, userID, res)
	}
	return res, nil
}

// notifyClaimEvents рассылает уведомления об итогах клейма:
// недельный бонус, обрыв серии, свежие ачивки. Всё best-effort.
func (c *Core) notifyClaimEvents(ctx context.Context, userID int64, res *mining.ClaimResult) {
	if res.Streak.MilestoneBonus.IsPositive() {
		c.d.Notifier.Notify(ctx, userID, notify.StreakMilestone{
			Streak: res.Streak.Streak,
			Bonus:  res.Streak.MilestoneBonus,
		})
	}
	if res.Streak.Broken {
		c.d.Notifier.Notify(ctx, userID, notify.StreakBroken{Length: res.Streak.BrokenLength})
	}
	for _, a := range res.Unlocked {
		c.d.Notifier.Notify(ctx, userID, notify.AchievementUnlocked{
			AchievementID: a.ID,
			Name:          a.Name,
			Description:   a.Description,
		})
	}
}

// SubmitReferralSignup атрибутирует регистрацию по реферальной ссылке.
func (c *Core) SubmitReferralSignup(ctx context.Context, newUserID, referrerID int64) (*referral.SignupResult, error) {
	if c.d.Suspensions.IsSuspended(newUserID) {
		return nil, common.ErrSuspended
	}

	now := c.d.Clock()
	c.d.Tracker.Record(newUserID, now)

	res, err := c.d.Referrals.AttributeSignup(newUserID, referrerID, now)
	if err != nil {
		return nil, err
	}
	if res.Attributed {
		metrics.ReferralCreditsTotal.WithLabelValues("signup").Inc()
		c.d.Notifier.Notify(ctx, referrerID, notify.ReferralCredit{
			NewUserID: newUserID,
			Amount:    res.Reward,
		})
	}
	return res, nil
}

// PurchaseResult — итог покупки энергоплана.
type PurchaseResult struct {
	Plan      energy.Plan
	ExpiresAt time.Time
	// ReferralCredit — начисление рефереру покупателя (если был).
	ReferralCredit referral.PurchaseCredit
}

// SubmitPurchase активирует оплаченный энергоплан. Вызывается
// платёжным слоем ПОСЛЕ подтверждения оплаты. Новый план целиком
// перезаписывает старый; рефереру покупателя начисляется доля цены.
func (c *Core) SubmitPurchase(ctx context.Context, userID int64, planID string) (*PurchaseResult, error) {
	if c.d.Suspensions.IsSuspended(userID) {
		return nil, common.ErrSuspended
	}

	now := c.d.Clock()
	var (
		plan       energy.Plan
		expiresAt  time.Time
		referredBy *int64
	)
	err := c.d.Profiles.With(userID, now, func(p *profile.UserProfile) error {
		granted, err := c.d.Energy.GrantPlan(p, planID, now)
		if err != nil {
			// Неизвестный план: профиль не тронут.
			return err
		}
		plan = granted
		expiresAt = *p.PlanExpiresAt
		if p.ReferredBy != nil {
			id := *p.ReferredBy
			referredBy = &id
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.PurchasesTotal.WithLabelValues(plan.ID).Inc()

	// Реферальное начисление — отдельная операция над другим профилем,
	// выполняется после освобождения замка покупателя.
	credit := c.d.Referrals.AttributePurchase(referredBy, plan.Price, now)
	if credit.Credited {
		metrics.ReferralCreditsTotal.WithLabelValues("purchase").Inc()
		c.d.Notifier.Notify(ctx, credit.ReferrerID, notify.ReferralCredit{
			NewUserID: userID,
			Amount:    credit.Amount,
			Purchase:  true,
		})
	}

	c.d.Notifier.Notify(ctx, userID, notify.PurchaseConfirmed{
		PlanName:   plan.Name,
		DailyLimit: plan.DailyLimit,
		ExpiresIn:  expiresAt.Sub(now),
	})

	log.WithFields(log.Fields{"user_id": userID, "plan": plan.ID}).Info("Энергоплан активирован")
	return &PurchaseResult{Plan: plan, ExpiresAt: expiresAt, ReferralCredit: credit}, nil
}

// SubmitTaskCompletion выплачивает награду за спонсорское задание.
// Внешняя проверка подписки выполняется ДО взятия замка профиля и
// под таймаутом; таймаут или отрицательный ответ = VerificationFailed —
// мутаций нет, пользователь может повторить.
func (c *Core) SubmitTaskCompletion(ctx context.Context, userID, taskID int64) (*tasks.CompleteResult, error) {
	if c.d.Suspensions.IsSuspended(userID) {
		return nil, common.ErrSuspended
	}

	now := c.d.Clock()
	c.d.Tracker.Record(userID, now)

	task, err := c.d.Tasks.Get(taskID)
	if err != nil {
		return nil, err
	}
	// Повтор выполнения отсекаем до похода во внешний оракул.
	if c.d.Tasks.IsCompleted(taskID, userID) {
		return nil, common.ErrAlreadyCompleted
	}

	verified := true
	if task.ChannelRef != "" {
		vctx, cancel := context.WithTimeout(ctx, c.d.VerifyTimeout)
		ok, verr := c.d.Verifier.VerifyMembership(vctx, userID, task.ChannelRef)
		cancel()
		// Ошибка оракула (включая таймаут) = проверка не пройдена.
		verified = verr == nil && ok
	}

	res, err := c.d.Tasks.Complete(taskID, userID, verified, now)
	if err != nil {
		if err == common.ErrVerificationFailed {
			c.d.Notifier.Notify(ctx, userID, notify.TaskVerificationFailed{
				TaskID: taskID,
				Link:   task.Link,
			})
		}
		return nil, err
	}

	metrics.TasksCompletedTotal.Inc()
	return res, nil
}

// --- Чтения для витрин ---

// Profile возвращает копию профиля пользователя.
func (c *Core) Profile(userID int64) (*profile.UserProfile, error) {
	p, ok := c.d.Profiles.Get(userID)
	if !ok {
		return nil, common.ErrUserNotFound
	}
	return p, nil
}

// EnergyStatus возвращает состояние энергоплана пользователя.
func (c *Core) EnergyStatus(userID int64) (energy.Status, error) {
	p, ok := c.d.Profiles.Get(userID)
	if !ok {
		return energy.Status{}, common.ErrUserNotFound
	}
	return c.d.Energy.StatusOf(p, c.d.Clock()), nil
}

// Achievements возвращает каталог ачивок со статусами пользователя.
func (c *Core) Achievements(userID int64) ([]achievements.Progress, error) {
	p, ok := c.d.Profiles.Get(userID)
	if !ok {
		return nil, common.ErrUserNotFound
	}
	return c.d.Achievements.ProgressOf(p), nil
}

// Leaderboard возвращает рейтинг за период.
func (c *Core) Leaderboard(tf leaderboard.Timeframe) []leaderboard.Entry {
	return c.d.Boards.Top(tf, c.d.Clock())
}

// Tasks возвращает каталог заданий со статусами пользователя.
func (c *Core) Tasks(userID int64) []tasks.View {
	return c.d.Tasks.ListFor(userID)
}

// Plans возвращает каталог энергопланов.
func (c *Core) Plans() []energy.Plan {
	return c.d.Energy.Plans()
}
