// Package admin — settings.go хранит политику начислений, которую
// админы меняют на лету командой config_set.
//
// Это данные, а не конфигурация процесса: никаких глобальных переменных,
// только явная структура за RWMutex. Читатели получают атомарный снимок
// целиком — полуобновлённых значений никто не видит, а операции,
// начатые до изменения, спокойно доживают со старым (но консистентным)
// снимком.
package admin

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"megamine.ru/mining-bot/internal/common"
)

// Policy — снимок всех настраиваемых значений экономики.
type Policy struct {
	// Награда рефереру (и новичку) за приведённого пользователя.
	ReferralReward decimal.Decimal
	// Доля цены плана, которую получает реферер при покупке рефералом.
	ReferralPurchaseShare decimal.Decimal
	// $MEGA за каждый день серии.
	StreakBonusStep decimal.Decimal
	// Потолок стрик-бонуса.
	MaxStreakBonus decimal.Decimal
	// Разовый бонус за каждые 7 дней серии без пропусков.
	StreakMilestoneBonus decimal.Decimal
	// Сколько нужно намайнить для следующего уровня.
	LevelThreshold decimal.Decimal
	// Бонус к базовой награде за каждый уровень (0.1 = +10%).
	LevelBonusPercent decimal.Decimal
	// Вероятность джекпота при клейме (0..1).
	JackpotChance float64
	// Доля базовой награды, выпадающая джекпотом.
	JackpotShare decimal.Decimal
	// Порог действий в минуту, после которого пользователь подозрителен.
	SuspiciousThreshold int
}

// DefaultPolicy возвращает значения по умолчанию.
func DefaultPolicy() Policy {
	return Policy{
		ReferralReward:        decimal.NewFromInt(50),
		ReferralPurchaseShare: decimal.NewFromFloat(0.10),
		StreakBonusStep:       decimal.NewFromInt(2),
		MaxStreakBonus:        decimal.NewFromInt(100),
		StreakMilestoneBonus:  decimal.NewFromInt(50),
		LevelThreshold:        decimal.NewFromInt(1000),
		LevelBonusPercent:     decimal.NewFromFloat(0.10),
		JackpotChance:         0.10,
		JackpotShare:          decimal.NewFromFloat(0.10),
		SuspiciousThreshold:   5,
	}
}

// Settings — потокобезопасная обёртка над Policy.
type Settings struct {
	mu sync.RWMutex
	p  Policy
}

// NewSettings создаёт настройки с политикой по умолчанию.
func NewSettings() *Settings {
	return &Settings{p: DefaultPolicy()}
}

// Policy возвращает текущий снимок политики (по значению).
func (s *Settings) Policy() Policy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.p
}

// Set обновляет один параметр по строковым ключу и значению
// (формат админ-команды /config_set <param> <value>).
// Неизвестный ключ или нечисловое значение → ErrInvalidInput.
func (s *Settings) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch key {
	case "referral_reward":
		return setDecimal(&s.p.ReferralReward, value)
	case "referral_purchase_share":
		return setDecimal(&s.p.ReferralPurchaseShare, value)
	case "streak_bonus":
		return setDecimal(&s.p.StreakBonusStep, value)
	case "max_streak_bonus":
		return setDecimal(&s.p.MaxStreakBonus, value)
	case "streak_milestone_bonus":
		return setDecimal(&s.p.StreakMilestoneBonus, value)
	case "level_threshold":
		return setDecimal(&s.p.LevelThreshold, value)
	case "level_bonus_percent":
		return setDecimal(&s.p.LevelBonusPercent, value)
	case "jackpot_chance":
		d, err := decimal.NewFromString(value)
		if err != nil {
			return fmt.Errorf("%w: %q не число", common.ErrInvalidInput, value)
		}
		f, _ := d.Float64()
		if f < 0 || f > 1 {
			return fmt.Errorf("%w: jackpot_chance должен быть в [0,1]", common.ErrInvalidInput)
		}
		s.p.JackpotChance = f
		return nil
	case "jackpot_share":
		return setDecimal(&s.p.JackpotShare, value)
	case "suspicious_threshold":
		d, err := decimal.NewFromString(value)
		if err != nil || !d.IsInteger() || d.IsNegative() {
			return fmt.Errorf("%w: %q не целое неотрицательное", common.ErrInvalidInput, value)
		}
		s.p.SuspiciousThreshold = int(d.IntPart())
		return nil
	default:
		return fmt.Errorf("%w: неизвестный параметр %q", common.ErrInvalidInput, key)
	}
}

// View возвращает текущие значения в виде пар ключ-значение
// для команды /config_get.
func (s *Settings) View() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]string{
		"referral_reward":         s.p.ReferralReward.String(),
		"referral_purchase_share": s.p.ReferralPurchaseShare.String(),
		"streak_bonus":            s.p.StreakBonusStep.String(),
		"max_streak_bonus":        s.p.MaxStreakBonus.String(),
		"streak_milestone_bonus":  s.p.StreakMilestoneBonus.String(),
		"level_threshold":         s.p.LevelThreshold.String(),
		"level_bonus_percent":     s.p.LevelBonusPercent.String(),
		"jackpot_chance":          fmt.Sprintf("%g", s.p.JackpotChance),
		"jackpot_share":           s.p.JackpotShare.String(),
		"suspicious_threshold":    fmt.Sprintf("%d", s.p.SuspiciousThreshold),
	}
}

func setDecimal(dst *decimal.Decimal, value string) error {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return fmt.Errorf("%w: %q не число", common.ErrInvalidInput, value)
	}
	if d.IsNegative() {
		return fmt.Errorf("%w: значение не может быть отрицательным", common.ErrInvalidInput)
	}
	*dst = d
	return nil
}
