// Package referral начисляет бонусы по реферальным связям:
// за регистрацию по ссылке и за покупки приглашённого.
package referral

import (
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"megamine.ru/mining-bot/internal/common"
	"megamine.ru/mining-bot/internal/features/admin"
	"megamine.ru/mining-bot/internal/features/profile"
)

// SignupResult — итог атрибуции регистрации.
type SignupResult struct {
	// Attributed — связь записана и бонусы начислены. false означает
	// не ошибку, а «атрибуция неприменима» (профиль уже существовал).
	Attributed bool
	ReferrerID int64
	Reward     decimal.Decimal
}

// PurchaseCredit — начисление рефереру за покупку приглашённого.
type PurchaseCredit struct {
	Credited   bool
	ReferrerID int64
	Amount     decimal.Decimal
}

// Ledger управляет реферальными начислениями поверх хранилища профилей.
type Ledger struct {
	profiles *profile.Store
	settings *admin.Settings
}

// NewLedger создаёт реферальный леджер.
func NewLedger(profiles *profile.Store, settings *admin.Settings) *Ledger {
	return &Ledger{profiles: profiles, settings: settings}
}

// AttributeSignup записывает реферальную связь при первом контакте
// нового пользователя.
//
// Атрибуция срабатывает только если:
//   - referrerID != newUserID (иначе ErrSelfReferral)
//   - профиль реферера существует (иначе ErrUserNotFound)
//   - у нового пользователя ЕЩЁ НЕТ профиля — повторный вызов для
//     существующего профиля это no-op, а не обновление связи
//
// Эффекты: рефереру +reward на баланс и +1 к счётчику, новичку
// создаётся профиль с балансом reward и необратимой ссылкой referred_by.
// Оба профиля мутируются под замками в фиксированном порядке, поэтому
// конкурентный клейм новичка не потеряет стартовый бонус.
func (l *Ledger) AttributeSignup(newUserID, referrerID int64, now time.Time) (*SignupResult, error) {
	if referrerID == newUserID {
		return nil, common.ErrSelfReferral
	}
	if !l.profiles.Exists(referrerID) {
		return nil, common.ErrUserNotFound
	}
	if l.profiles.Exists(newUserID) {
		// Первый контакт уже состоялся — связь не переписываем.
		return &SignupResult{Attributed: false}, nil
	}

	reward := l.settings.Policy().ReferralReward
	attributed := false
	err := l.profiles.WithPair(newUserID, referrerID, now, func(newcomer, referrer *profile.UserProfile) error {
		// Повторная проверка под замком: между Exists и WithPair
		// профиль новичка мог создать конкурентный запрос.
		if newcomer.ReferredBy != nil || newcomer.MiningCount > 0 || !newcomer.Balance.IsZero() {
			return nil
		}
		ref := referrerID
		newcomer.ReferredBy = &ref
		newcomer.Balance = reward
		referrer.Balance = referrer.Balance.Add(reward)
		referrer.ReferralCount++
		attributed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if attributed {
		log.WithFields(log.Fields{
			"new_user": newUserID,
			"referrer": referrerID,
			"reward":   reward.String(),
		}).Info("Реферальная регистрация")
	}
	return &SignupResult{Attributed: attributed, ReferrerID: referrerID, Reward: reward}, nil
}

// AttributePurchase начисляет рефереру покупателя долю цены плана.
// Вызывается один раз на каждое событие покупки, независимо от
// атрибуции регистрации. Если реферер не резолвится — молча
// пропускаем, это не ошибка.
//
// referredBy читается вызывающим из профиля покупателя под его замком;
// сюда передаётся копия, чтобы не держать два замка одновременно.
func (l *Ledger) AttributePurchase(referredBy *int64, planPrice decimal.Decimal, now time.Time) PurchaseCredit {
	if referredBy == nil {
		return PurchaseCredit{}
	}
	share := l.settings.Policy().ReferralPurchaseShare
	amount := planPrice.Mul(share)

	credited := false
	ok, _ := l.profiles.WithExisting(*referredBy, func(referrer *profile.UserProfile) error {
		referrer.Balance = referrer.Balance.Add(amount)
		credited = true
		return nil
	})
	if !ok {
		// Реферер исчез из хранилища — бонус просто не начисляется.
		return PurchaseCredit{}
	}

	log.WithFields(log.Fields{
		"referrer": *referredBy,
		"amount":   amount.String(),
	}).Info("Реферальный бонус за покупку")
	return PurchaseCredit{Credited: credited, ReferrerID: *referredBy, Amount: amount}
}
