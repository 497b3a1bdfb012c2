// Package achievements выдаёт ачивки по состоянию профиля.
// catalog.go описывает неизменяемый каталог: идентификатор,
// отображаемые метаданные и предикат разблокировки.
package achievements

import (
	"time"

	"github.com/shopspring/decimal"

	"megamine.ru/mining-bot/internal/common"
	"megamine.ru/mining-bot/internal/features/profile"
)

// Идентификаторы ачивок.
const (
	FirstMine      = "first_mine"
	MiningStreak7  = "mining_streak_7"
	ReferralMaster = "referral_master"
	MegaMiner      = "mega_miner"
	EarlyBird      = "early_bird"
)

// earlyBirdWindow — сколько времени после суточного сброса клейм
// считается «ранним».
const earlyBirdWindow = time.Hour

// Achievement — запись каталога. Предикат чистый: смотрит только на
// профиль и момент времени, ничего не мутирует.
type Achievement struct {
	ID          string
	Name        string
	Description string
	Unlocked    func(p *profile.UserProfile, now time.Time) bool
}

// Catalog возвращает пять ачивок в фиксированном порядке.
// Порядок важен: Refresh проверяет предикаты строго по нему.
func Catalog() []Achievement {
	thousand := decimal.NewFromInt(1000)
	return []Achievement{
		{
			ID:          FirstMine,
			Name:        "🎯 First Mine",
			Description: "Complete your first mining operation",
			Unlocked: func(p *profile.UserProfile, _ time.Time) bool {
				return p.MiningCount >= 1
			},
		},
		{
			ID:          MiningStreak7,
			Name:        "🔥 Week Warrior",
			Description: "Maintain a 7-day mining streak",
			Unlocked: func(p *profile.UserProfile, _ time.Time) bool {
				return p.CurrentStreak >= 7
			},
		},
		{
			ID:          ReferralMaster,
			Name:        "🤝 Referral Master",
			Description: "Refer 5 active users",
			Unlocked: func(p *profile.UserProfile, _ time.Time) bool {
				return p.ReferralCount >= 5
			},
		},
		{
			ID:          MegaMiner,
			Name:        "⛏️ Mega Miner",
			Description: "Mine 1000 $MEGA tokens",
			Unlocked: func(p *profile.UserProfile, _ time.Time) bool {
				return p.TotalMined.GreaterThanOrEqual(thousand)
			},
		},
		{
			ID:          EarlyBird,
			Name:        "🌅 Early Bird",
			Description: "Mine within the first hour of daily reset",
			Unlocked: func(_ *profile.UserProfile, now time.Time) bool {
				return now.Sub(common.StartOfDay(now)) <= earlyBirdWindow
			},
		},
	}
}
