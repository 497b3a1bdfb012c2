package energy

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"megamine.ru/mining-bot/internal/common"
	"megamine.ru/mining-bot/internal/features/profile"
)

func noon() time.Time {
	return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
}

func newTestService() *Service {
	return NewService(DefaultPlans(), 30)
}

func TestDefaultCatalog(t *testing.T) {
	s := newTestService()

	max, err := s.Plan("max")
	require.NoError(t, err)
	require.True(t, max.Price.Equal(decimal.NewFromInt(50)))
	require.True(t, max.DailyLimit.Equal(decimal.NewFromInt(50)))

	unlimited, err := s.Plan("unlimited")
	require.NoError(t, err)
	require.True(t, unlimited.Price.Equal(decimal.NewFromInt(250)))
	require.True(t, unlimited.DailyLimit.Equal(decimal.NewFromInt(150)))

	_, err = s.Plan("mega")
	require.ErrorIs(t, err, common.ErrInvalidPlan)
}

func TestGrantPlanSetsExpiry(t *testing.T) {
	s := newTestService()
	now := noon()
	p := profile.NewUserProfile(1, now)

	plan, err := s.GrantPlan(p, "max", now)
	require.NoError(t, err)
	require.Equal(t, "max", plan.ID)
	require.Equal(t, "max", p.PlanID)
	require.Equal(t, now.Add(30*24*time.Hour), *p.PlanExpiresAt)
	require.True(t, s.HasActivePlan(p, now))
}

func TestGrantPlanOverwritesPrevious(t *testing.T) {
	s := newTestService()
	now := noon()
	p := profile.NewUserProfile(1, now)

	_, err := s.GrantPlan(p, "max", now)
	require.NoError(t, err)

	// Покупка нового плана до истечения старого: last-writer-wins,
	// срок отсчитывается заново, без суммирования
	later := now.Add(10 * 24 * time.Hour)
	_, err = s.GrantPlan(p, "unlimited", later)
	require.NoError(t, err)
	require.Equal(t, "unlimited", p.PlanID)
	require.Equal(t, later.Add(30*24*time.Hour), *p.PlanExpiresAt)
}

func TestGrantUnknownPlanLeavesProfileUntouched(t *testing.T) {
	s := newTestService()
	now := noon()
	p := profile.NewUserProfile(1, now)
	_, err := s.GrantPlan(p, "max", now)
	require.NoError(t, err)
	before := *p.PlanExpiresAt

	_, err = s.GrantPlan(p, "mega", now.Add(time.Hour))
	require.ErrorIs(t, err, common.ErrInvalidPlan)
	require.Equal(t, "max", p.PlanID)
	require.Equal(t, before, *p.PlanExpiresAt)
}

func TestExpiryBoundaryIsExclusive(t *testing.T) {
	s := newTestService()
	now := noon()
	p := profile.NewUserProfile(1, now)
	_, err := s.GrantPlan(p, "max", now)
	require.NoError(t, err)

	expiry := *p.PlanExpiresAt
	require.True(t, s.HasActivePlan(p, expiry.Add(-time.Second)))
	// Ровно в момент истечения план уже неактивен
	require.False(t, s.HasActivePlan(p, expiry))
}

func TestDailyLimitZeroWithoutPlan(t *testing.T) {
	s := newTestService()
	now := noon()
	p := profile.NewUserProfile(1, now)

	require.True(t, s.DailyLimit(p, now).IsZero())

	_, err := s.GrantPlan(p, "unlimited", now)
	require.NoError(t, err)
	require.True(t, s.DailyLimit(p, now).Equal(decimal.NewFromInt(150)))
}

func TestStatusOf(t *testing.T) {
	s := newTestService()
	now := noon()
	p := profile.NewUserProfile(1, now)

	require.False(t, s.StatusOf(p, now).Active)

	_, err := s.GrantPlan(p, "max", now)
	require.NoError(t, err)

	st := s.StatusOf(p, now.Add(time.Hour))
	require.True(t, st.Active)
	require.Equal(t, "max", st.PlanID)
	require.Equal(t, "Max Energy", st.PlanName)
	require.Equal(t, 30*24*time.Hour-time.Hour, st.Remaining)
}
