// Package achievements — evaluator.go перепроверяет предикаты каталога
// после каждого успешного клейма.
package achievements

import (
	"time"

	"megamine.ru/mining-bot/internal/features/profile"
)

// Evaluator — stateless-пересчёт ачивок по каталогу.
type Evaluator struct {
	catalog []Achievement
	byID    map[string]Achievement
}

// NewEvaluator создаёт эвалюатор над каталогом.
func NewEvaluator(catalog []Achievement) *Evaluator {
	byID := make(map[string]Achievement, len(catalog))
	for _, a := range catalog {
		byID[a.ID] = a
	}
	return &Evaluator{catalog: catalog, byID: byID}
}

// Refresh проверяет предикаты в фиксированном порядке каталога и
// возвращает СВЕЖЕразблокированные ачивки. Уже разблокированные не
// перепроверяются и никогда не отзываются — множество только растёт.
// За один вызов может разблокироваться несколько ачивок.
// Вызывающий держит блокировку профиля.
func (e *Evaluator) Refresh(p *profile.UserProfile, now time.Time) []Achievement {
	var unlocked []Achievement
	for _, a := range e.catalog {
		if p.HasAchievement(a.ID) {
			continue
		}
		if a.Unlocked(p, now) {
			p.GrantAchievement(a.ID)
			unlocked = append(unlocked, a)
		}
	}
	return unlocked
}

// Get возвращает запись каталога по идентификатору.
func (e *Evaluator) Get(id string) (Achievement, bool) {
	a, ok := e.byID[id]
	return a, ok
}

// Progress описывает состояние одной ачивки для витрины.
type Progress struct {
	Achievement Achievement
	Unlocked    bool
}

// ProgressOf возвращает каталог с пометками, что уже разблокировано.
func (e *Evaluator) ProgressOf(p *profile.UserProfile) []Progress {
	out := make([]Progress, 0, len(e.catalog))
	for _, a := range e.catalog {
		out = append(out, Progress{Achievement: a, Unlocked: p.HasAchievement(a.ID)})
	}
	return out
}

// Total возвращает размер каталога.
func (e *Evaluator) Total() int {
	return len(e.catalog)
}
