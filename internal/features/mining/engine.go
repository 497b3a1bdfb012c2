// Package mining — сердце экономики. engine.go решает, разрешён ли
// клейм, и из чего складывается выплата: база по энергоплану, джекпот,
// стрик-бонус и бонус уровня.
package mining

import (
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"megamine.ru/mining-bot/internal/common"
	"megamine.ru/mining-bot/internal/features/achievements"
	"megamine.ru/mining-bot/internal/features/admin"
	"megamine.ru/mining-bot/internal/features/energy"
	"megamine.ru/mining-bot/internal/features/profile"
	"megamine.ru/mining-bot/internal/features/streak"
)

// Rand — источник случайности для розыгрыша джекпота.
// Вынесен в интерфейс, чтобы тесты управляли розыгрышем детерминированно.
type Rand interface {
	// Float64 возвращает равномерное число из [0, 1).
	Float64() float64
}

// ClaimResult — итог попытки клейма. Каждое слагаемое выплаты
// репортится отдельно: вызывающему нужно показать их пользователю.
type ClaimResult struct {
	Accepted bool
	// Reason — причина отказа (ErrNoActivePlan / ErrCooldownActive),
	// nil при успехе.
	Reason error
	// CooldownRemaining — сколько ждать до следующего клейма
	// (только при отказе по кулдауну).
	CooldownRemaining time.Duration

	// Слагаемые выплаты.
	Base        decimal.Decimal
	Jackpot     decimal.Decimal
	StreakBonus decimal.Decimal
	LevelBonus  decimal.Decimal
	Payout      decimal.Decimal
	Level       int64

	// Итог продвижения серии и свежие ачивки.
	Streak     streak.AdvanceResult
	NewBalance decimal.Decimal
	Unlocked   []achievements.Achievement
}

// Engine вычисляет выплату клейма и мутирует профиль.
type Engine struct {
	energy       *energy.Service
	streaks      *streak.Tracker
	achievements *achievements.Evaluator
	settings     *admin.Settings
	rng          Rand
	cooldown     time.Duration
}

// NewEngine создаёт движок наград.
func NewEngine(
	energySvc *energy.Service,
	streaks *streak.Tracker,
	evaluator *achievements.Evaluator,
	settings *admin.Settings,
	rng Rand,
	cooldown time.Duration,
) *Engine {
	return &Engine{
		energy:       energySvc,
		streaks:      streaks,
		achievements: evaluator,
		settings:     settings,
		rng:          rng,
		cooldown:     cooldown,
	}
}

// Claim обрабатывает попытку клейма. Вызывающий уже проверил блокировку
// аккаунта (suspension — внешний гейт, не состояние движка) и держит
// блокировку профиля.
//
// Предусловия проверяются по порядку, первый отказ выигрывает:
//  1. активный энергоплан, иначе NoActivePlan
//  2. кулдаун: last_claim_at отсутствует ИЛИ now-last >= cooldown
//     (ровно на границе — кулдаун пройден), иначе CooldownActive
//     с оставшимся временем.
//
// При успехе:
//
//	base        = дневной лимит плана
//	jackpot     = base × jackpot_share с вероятностью jackpot_chance
//	streakBonus = min(серия ПОСЛЕ продвижения × step, cap);
//	              на самом первом клейме бонуса нет — серии ещё не было
//	level       = floor(total_mined ДО этой выплаты / level_threshold)
//	levelBonus  = level × level_bonus_percent × base
//	payout      = base + jackpot + streakBonus + levelBonus
//
// Затем профиль мутируется (balance, total_mined, mining_count,
// last_claim_at) и пересчитываются ачивки.
func (e *Engine) Claim(p *profile.UserProfile, now time.Time) *ClaimResult {
	if !e.energy.HasActivePlan(p, now) {
		return &ClaimResult{Accepted: false, Reason: common.ErrNoActivePlan}
	}

	if p.LastClaimAt != nil {
		elapsed := now.Sub(*p.LastClaimAt)
		if elapsed < e.cooldown {
			return &ClaimResult{
				Accepted:          false,
				Reason:            common.ErrCooldownActive,
				CooldownRemaining: e.cooldown - elapsed,
			}
		}
	}

	policy := e.settings.Policy()
	base := e.energy.DailyLimit(p, now)

	// Серия продвигается ДО расчёта стрик-бонуса и ДО записи нового
	// last_claim_at: бонус отражает серию после продвижения, а
	// расстояние меряется от предыдущего клейма.
	adv := e.streaks.Advance(p, now)

	jackpot := decimal.Zero
	if e.rng.Float64() < policy.JackpotChance {
		jackpot = base.Mul(policy.JackpotShare)
	}

	streakBonus := decimal.Zero
	if !adv.FirstClaim {
		streakBonus = decimal.NewFromInt(int64(adv.Streak)).Mul(policy.StreakBonusStep)
		if streakBonus.GreaterThan(policy.MaxStreakBonus) {
			streakBonus = policy.MaxStreakBonus
		}
	}

	// Уровень считается от total_mined ДО зачисления этой выплаты.
	level := int64(0)
	if policy.LevelThreshold.IsPositive() {
		level = p.TotalMined.Div(policy.LevelThreshold).IntPart()
	}
	levelBonus := policy.LevelBonusPercent.Mul(decimal.NewFromInt(level)).Mul(base)

	payout := base.Add(jackpot).Add(streakBonus).Add(levelBonus)

	p.Balance = p.Balance.Add(payout)
	p.TotalMined = p.TotalMined.Add(payout)
	p.MiningCount++
	claimedAt := now
	p.LastClaimAt = &claimedAt

	unlocked := e.achievements.Refresh(p, now)

	log.WithFields(log.Fields{
		"user_id": p.UserID,
		"payout":  payout.String(),
		"streak":  adv.Streak,
		"level":   level,
	}).Debug("Клейм обработан")

	return &ClaimResult{
		Accepted:    true,
		Base:        base,
		Jackpot:     jackpot,
		StreakBonus: streakBonus,
		LevelBonus:  levelBonus,
		Payout:      payout,
		Level:       level,
		Streak:      adv,
		NewBalance:  p.Balance,
		Unlocked:    unlocked,
	}
}
