// Package activity реализует попользовательский счётчик действий
// в скользящем окне. Используется для пометки подозрительной
// (бото-подобной) активности: это простая эвристика для админ-отчётов,
// а не полноценная анти-бот защита.
package activity

import (
	"sync"
	"time"
)

// Tracker считает действия каждого пользователя за последнюю минуту.
// Алгоритм скользящего окна: храним таймстемпы и отбрасываем устаревшие.
type Tracker struct {
	mu      sync.Mutex
	actions map[int64][]time.Time
	window  time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewTracker создаёт трекер с окном в одну минуту и запускает
// фоновую очистку устаревших записей.
func NewTracker() *Tracker {
	t := &Tracker{
		actions: make(map[int64][]time.Time),
		window:  time.Minute,
		stopCh:  make(chan struct{}),
	}
	go t.cleanup()
	return t
}

// Close останавливает фоновую горутину очистки.
// Его надо вызывать на shutdown (иначе cleanup будет жить вечно).
func (t *Tracker) Close() {
	t.stopOnce.Do(func() { close(t.stopCh) })
}

// Record фиксирует одно действие пользователя.
func (t *Tracker) Record(userID int64, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.actions[userID] = append(t.prune(userID, now), now)
}

// PerMinute возвращает число действий пользователя в текущем окне.
func (t *Tracker) PerMinute(userID int64, now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	recent := t.prune(userID, now)
	t.actions[userID] = recent
	return len(recent)
}

// Suspicious сообщает, превышает ли активность пользователя порог,
// и сколько действий в минуту он делает.
func (t *Tracker) Suspicious(userID int64, threshold int, now time.Time) (bool, int) {
	n := t.PerMinute(userID, now)
	return n >= threshold, n
}

// prune отбрасывает таймстемпы старше окна. Вызывается под t.mu.
func (t *Tracker) prune(userID int64, now time.Time) []time.Time {
	cutoff := now.Add(-t.window)
	var recent []time.Time
	for _, ts := range t.actions[userID] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}
	return recent
}

func (t *Tracker) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-t.stopCh:
			return
		case <-ticker.C:
			t.mu.Lock()
			now := time.Now()
			for userID := range t.actions {
				recent := t.prune(userID, now)
				if len(recent) == 0 {
					delete(t.actions, userID)
				} else {
					t.actions[userID] = recent
				}
			}
			t.mu.Unlock()
		}
	}
}
