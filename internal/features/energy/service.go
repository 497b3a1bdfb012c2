// Package energy — service.go реализует гейт энергопланов:
// активен ли план, какой дневной лимит он даёт и выдачу плана
// после оплаты.
package energy

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"megamine.ru/mining-bot/internal/common"
	"megamine.ru/mining-bot/internal/features/profile"
)

// Service отвечает на вопросы про энергопланы пользователя.
// Все методы, принимающие профиль, рассчитывают, что вызывающий код
// уже держит блокировку этого профиля.
type Service struct {
	plans map[string]Plan
	// Сколько действует купленный план.
	planDuration time.Duration
}

// NewService создаёт сервис с каталогом планов.
func NewService(plans []Plan, durationDays int) *Service {
	m := make(map[string]Plan, len(plans))
	for _, p := range plans {
		m[p.ID] = p
	}
	return &Service{
		plans:        m,
		planDuration: time.Duration(durationDays) * 24 * time.Hour,
	}
}

// Plan возвращает план каталога по идентификатору.
func (s *Service) Plan(planID string) (Plan, error) {
	p, ok := s.plans[planID]
	if !ok {
		return Plan{}, fmt.Errorf("%w: %q", common.ErrInvalidPlan, planID)
	}
	return p, nil
}

// Plans возвращает каталог для витрины (в стабильном порядке не нуждается —
// вызывающий сортирует при отображении).
func (s *Service) Plans() []Plan {
	out := make([]Plan, 0, len(s.plans))
	for _, p := range s.plans {
		out = append(out, p)
	}
	return out
}

// HasActivePlan сообщает, есть ли у профиля действующий план:
// план назначен И срок ещё не истёк.
func (s *Service) HasActivePlan(p *profile.UserProfile, now time.Time) bool {
	if p.PlanID == "" || p.PlanExpiresAt == nil {
		return false
	}
	return now.Before(*p.PlanExpiresAt)
}

// DailyLimit возвращает дневной лимит майнинга: 0 без активного плана,
// иначе лимит плана из каталога.
func (s *Service) DailyLimit(p *profile.UserProfile, now time.Time) decimal.Decimal {
	if !s.HasActivePlan(p, now) {
		return decimal.Zero
	}
	plan, ok := s.plans[p.PlanID]
	if !ok {
		// План удалён из каталога после покупки — лимита нет.
		return decimal.Zero
	}
	return plan.DailyLimit
}

// GrantPlan назначает профилю план и срок его действия.
// Семантика last-writer-wins: новый план целиком перезаписывает
// предыдущий вместе со сроком, никакого суммирования пересекающихся
// покупок. При неизвестном plan_id профиль не трогается.
func (s *Service) GrantPlan(p *profile.UserProfile, planID string, now time.Time) (Plan, error) {
	plan, err := s.Plan(planID)
	if err != nil {
		return Plan{}, err
	}
	expires := now.Add(s.planDuration)
	p.PlanID = plan.ID
	p.PlanExpiresAt = &expires
	return plan, nil
}

// Status описывает текущее состояние энергоплана пользователя.
type Status struct {
	Active     bool
	PlanID     string
	PlanName   string
	DailyLimit decimal.Decimal
	Remaining  time.Duration
}

// StatusOf возвращает статус плана для отображения.
func (s *Service) StatusOf(p *profile.UserProfile, now time.Time) Status {
	if !s.HasActivePlan(p, now) {
		return Status{}
	}
	plan := s.plans[p.PlanID]
	return Status{
		Active:     true,
		PlanID:     plan.ID,
		PlanName:   plan.Name,
		DailyLimit: plan.DailyLimit,
		Remaining:  p.PlanExpiresAt.Sub(now),
	}
}
