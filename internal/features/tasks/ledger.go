// Package tasks — ledger.go реализует каталог заданий и выплату
// за выполнение: строго один раз на пару (задание, пользователь).
package tasks

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"megamine.ru/mining-bot/internal/common"
	"megamine.ru/mining-bot/internal/features/profile"
)

// taskEntry — задание вместе с множеством выполнивших.
// Множество append-only: попавший туда user_id не удаляется никогда.
type taskEntry struct {
	task        Task
	completedBy map[int64]struct{}
}

// CompleteResult — итог попытки выполнить задание.
type CompleteResult struct {
	Awarded    bool
	Reward     decimal.Decimal
	NewBalance decimal.Decimal
}

// TaskStats — статистика одного задания для админ-отчёта.
type TaskStats struct {
	Task           Task
	Completions    int
	CompletionRate float64 // Доля всех пользователей, выполнивших задание
	TotalPaid      decimal.Decimal
}

// View — задание со статусом выполнения для конкретного пользователя.
type View struct {
	Task      Task
	Completed bool
}

// Ledger — каталог заданий. Каталог читается часто, мутируется редко
// (админом), поэтому RWMutex; никто не видит полусозданное задание.
type Ledger struct {
	mu       sync.RWMutex
	tasks    map[int64]*taskEntry
	nextID   int64
	profiles *profile.Store
}

// NewLedger создаёт пустой каталог заданий.
func NewLedger(profiles *profile.Store) *Ledger {
	return &Ledger{
		tasks:    make(map[int64]*taskEntry),
		nextID:   1,
		profiles: profiles,
	}
}

// Create добавляет задание в каталог и возвращает его с присвоенным ID.
func (l *Ledger) Create(title, description, link, displayText string, reward decimal.Decimal, now time.Time) (Task, error) {
	if title == "" || description == "" || link == "" || displayText == "" {
		return Task{}, fmt.Errorf("%w: все поля задания обязательны", common.ErrInvalidInput)
	}
	if !reward.IsPositive() {
		return Task{}, fmt.Errorf("%w: награда должна быть положительной", common.ErrInvalidInput)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	t := Task{
		ID:          l.nextID,
		Title:       title,
		Description: description,
		Link:        link,
		DisplayText: displayText,
		Reward:      reward,
		ChannelRef:  ExtractChannelRef(link),
		CreatedAt:   now,
	}
	l.tasks[t.ID] = &taskEntry{task: t, completedBy: make(map[int64]struct{})}
	l.nextID++

	log.WithFields(log.Fields{"task_id": t.ID, "title": t.Title}).Info("Задание создано")
	return t, nil
}

// Remove удаляет задание из каталога.
func (l *Ledger) Remove(taskID int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.tasks[taskID]; !ok {
		return common.ErrTaskNotFound
	}
	delete(l.tasks, taskID)
	return nil
}

// Get возвращает задание по ID.
func (l *Ledger) Get(taskID int64) (Task, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.tasks[taskID]
	if !ok {
		return Task{}, common.ErrTaskNotFound
	}
	return e.task, nil
}

// IsCompleted сообщает, выполнял ли пользователь задание.
// Для несуществующего задания возвращает false.
func (l *Ledger) IsCompleted(taskID, userID int64) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.tasks[taskID]
	if !ok {
		return false
	}
	_, done := e.completedBy[userID]
	return done
}

// Complete выплачивает награду за задание.
//
// Порядок проверок:
//  1. задание существует, иначе TaskNotFound
//  2. пользователь ещё не выполнял, иначе AlreadyCompleted
//  3. verified=true (внешнюю проверку вызывающий уже провёл ДО взятия
//     каких-либо замков), иначе VerificationFailed без мутаций —
//     пользователь может попробовать снова
//
// Членство в completed_by резервируется под замком каталога до
// начисления: два конкурентных вызова не выплатят награду дважды.
// Попадание в множество постоянно.
func (l *Ledger) Complete(taskID, userID int64, verified bool, now time.Time) (*CompleteResult, error) {
	l.mu.Lock()
	e, ok := l.tasks[taskID]
	if !ok {
		l.mu.Unlock()
		return nil, common.ErrTaskNotFound
	}
	if _, done := e.completedBy[userID]; done {
		l.mu.Unlock()
		return nil, common.ErrAlreadyCompleted
	}
	if !verified {
		l.mu.Unlock()
		return nil, common.ErrVerificationFailed
	}
	// Резервируем выполнение до начисления; начисление ниже не
	// может провалиться (профиль создаётся автоматически).
	e.completedBy[userID] = struct{}{}
	reward := e.task.Reward
	l.mu.Unlock()

	var newBalance decimal.Decimal
	_ = l.profiles.With(userID, now, func(p *profile.UserProfile) error {
		p.Balance = p.Balance.Add(reward)
		newBalance = p.Balance
		return nil
	})

	log.WithFields(log.Fields{
		"task_id": taskID,
		"user_id": userID,
		"reward":  reward.String(),
	}).Info("Задание выполнено")
	return &CompleteResult{Awarded: true, Reward: reward, NewBalance: newBalance}, nil
}

// ListFor возвращает каталог со статусами выполнения пользователя.
func (l *Ledger) ListFor(userID int64) []View {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]View, 0, len(l.tasks))
	for _, e := range l.tasks {
		_, done := e.completedBy[userID]
		out = append(out, View{Task: e.task, Completed: done})
	}
	return out
}

// Stats возвращает статистику всех заданий для админ-отчёта.
func (l *Ledger) Stats() []TaskStats {
	totalUsers := l.profiles.Len()

	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]TaskStats, 0, len(l.tasks))
	for _, e := range l.tasks {
		n := len(e.completedBy)
		rate := 0.0
		if totalUsers > 0 {
			rate = float64(n) / float64(totalUsers) * 100
		}
		out = append(out, TaskStats{
			Task:           e.task,
			Completions:    n,
			CompletionRate: rate,
			TotalPaid:      e.task.Reward.Mul(decimal.NewFromInt(int64(n))),
		})
	}
	return out
}

// Snapshot возвращает копии заданий с множествами выполнивших
// (для сброса в БД).
type Snapshot struct {
	Task        Task
	CompletedBy []int64
}

// SnapshotAll снимает каталог целиком.
func (l *Ledger) SnapshotAll() []Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Snapshot, 0, len(l.tasks))
	for _, e := range l.tasks {
		ids := make([]int64, 0, len(e.completedBy))
		for id := range e.completedBy {
			ids = append(ids, id)
		}
		out = append(out, Snapshot{Task: e.task, CompletedBy: ids})
	}
	return out
}

// Restore загружает каталог из снапшота при старте.
func (l *Ledger) Restore(snaps []Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range snaps {
		done := make(map[int64]struct{}, len(s.CompletedBy))
		for _, id := range s.CompletedBy {
			done[id] = struct{}{}
		}
		l.tasks[s.Task.ID] = &taskEntry{task: s.Task, completedBy: done}
		if s.Task.ID >= l.nextID {
			l.nextID = s.Task.ID + 1
		}
	}
}
