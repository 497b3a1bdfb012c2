// Package leaderboard строит рейтинги майнеров за день и за неделю.
package leaderboard

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"megamine.ru/mining-bot/internal/common"
	"megamine.ru/mining-bot/internal/features/profile"
)

// Timeframe — период рейтинга.
type Timeframe string

const (
	Daily  Timeframe = "daily"
	Weekly Timeframe = "weekly"
)

// topN — сколько позиций показываем.
const topN = 10

// Entry — одна строка рейтинга.
type Entry struct {
	UserID     int64
	TotalMined decimal.Decimal
}

// Service строит рейтинги по снапшоту профилей.
type Service struct {
	profiles *profile.Store
}

// NewService создаёт сервис рейтингов.
func NewService(profiles *profile.Store) *Service {
	return &Service{profiles: profiles}
}

// Top возвращает топ-10 майнеров периода: в рейтинг попадают
// пользователи, чей последний клейм лежит внутри периода, сортировка
// по total_mined по убыванию.
func (s *Service) Top(tf Timeframe, now time.Time) []Entry {
	var start time.Time
	switch tf {
	case Weekly:
		start = common.StartOfWeek(now)
	default:
		start = common.StartOfDay(now)
	}

	var entries []Entry
	for _, p := range s.profiles.Snapshot() {
		if p.LastClaimAt == nil || p.LastClaimAt.Before(start) {
			continue
		}
		entries = append(entries, Entry{UserID: p.UserID, TotalMined: p.TotalMined})
	}

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].TotalMined.Equal(entries[j].TotalMined) {
			return entries[i].TotalMined.GreaterThan(entries[j].TotalMined)
		}
		// Стабильный порядок при равенстве сумм
		return entries[i].UserID < entries[j].UserID
	})

	if len(entries) > topN {
		entries = entries[:topN]
	}
	return entries
}
