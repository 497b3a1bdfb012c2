package leaderboard

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"megamine.ru/mining-bot/internal/features/profile"
)

// Среда, 2026-03-11: начало недели — понедельник 2026-03-09.
func wednesday() time.Time {
	return time.Date(2026, 3, 11, 15, 0, 0, 0, time.UTC)
}

func seedMiner(t *testing.T, s *profile.Store, id int64, mined int64, lastClaim time.Time) {
	t.Helper()
	err := s.With(id, lastClaim, func(p *profile.UserProfile) error {
		p.TotalMined = decimal.NewFromInt(mined)
		ts := lastClaim
		p.LastClaimAt = &ts
		return nil
	})
	require.NoError(t, err)
}

func TestDailyTopFiltersByLastClaim(t *testing.T) {
	store := profile.NewStore()
	svc := NewService(store)
	now := wednesday()

	seedMiner(t, store, 1, 500, now.Add(-time.Hour))     // сегодня
	seedMiner(t, store, 2, 900, now.Add(-20*time.Hour))  // вчера (до полуночи)
	seedMiner(t, store, 3, 100, now.Add(-2*time.Hour))   // сегодня

	top := svc.Top(Daily, now)
	require.Len(t, top, 2)
	require.EqualValues(t, 1, top[0].UserID) // 500 > 100
	require.EqualValues(t, 3, top[1].UserID)
}

func TestWeeklyTopIncludesWholeWeek(t *testing.T) {
	store := profile.NewStore()
	svc := NewService(store)
	now := wednesday()

	seedMiner(t, store, 1, 500, now.Add(-time.Hour))
	seedMiner(t, store, 2, 900, now.Add(-2*24*time.Hour)) // понедельник
	seedMiner(t, store, 3, 100, now.Add(-4*24*time.Hour)) // прошлая неделя

	top := svc.Top(Weekly, now)
	require.Len(t, top, 2)
	require.EqualValues(t, 2, top[0].UserID)
	require.EqualValues(t, 1, top[1].UserID)
}

func TestTopCapsAtTen(t *testing.T) {
	store := profile.NewStore()
	svc := NewService(store)
	now := wednesday()

	for i := int64(1); i <= 15; i++ {
		seedMiner(t, store, i, i*10, now.Add(-time.Minute))
	}

	top := svc.Top(Daily, now)
	require.Len(t, top, 10)
	// Сортировка по убыванию total_mined
	require.EqualValues(t, 15, top[0].UserID)
	require.EqualValues(t, 6, top[9].UserID)
}

func TestTiesOrderedByUserID(t *testing.T) {
	store := profile.NewStore()
	svc := NewService(store)
	now := wednesday()

	for _, id := range []int64{7, 3, 5} {
		seedMiner(t, store, id, 100, now.Add(-time.Minute))
	}

	top := svc.Top(Daily, now)
	ids := make([]int64, len(top))
	for i, e := range top {
		ids[i] = e.UserID
	}
	require.Equal(t, []int64{3, 5, 7}, ids, fmt.Sprintf("получен порядок %v", ids))
}

func TestUsersWithoutClaimsExcluded(t *testing.T) {
	store := profile.NewStore()
	svc := NewService(store)
	now := wednesday()

	require.NoError(t, store.With(1, now, func(p *profile.UserProfile) error {
		p.TotalMined = decimal.NewFromInt(1000)
		return nil // LastClaimAt = nil
	}))

	require.Empty(t, svc.Top(Daily, now))
}
