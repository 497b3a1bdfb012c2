// Package admin — suspend.go хранит множество заблокированных
// пользователей. Блокировка — внешний по отношению к движку наград
// гейт: профиль не трогается, он просто перестаёт проходить в операции.
package admin

import (
	"fmt"
	"sync"

	"megamine.ru/mining-bot/internal/common"
)

// Suspensions — потокобезопасное множество заблокированных user_id.
type Suspensions struct {
	mu  sync.RWMutex
	set map[int64]struct{}
}

// NewSuspensions создаёт пустое множество.
func NewSuspensions() *Suspensions {
	return &Suspensions{set: make(map[int64]struct{})}
}

// IsSuspended сообщает, заблокирован ли пользователь.
func (s *Suspensions) IsSuspended(userID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.set[userID]
	return ok
}

// Suspend блокирует пользователя. Повторная блокировка — no-op.
func (s *Suspensions) Suspend(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set[userID] = struct{}{}
}

// Unsuspend снимает блокировку. Если пользователь не был
// заблокирован — возвращает ошибку для ответа админу.
func (s *Suspensions) Unsuspend(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.set[userID]; !ok {
		return fmt.Errorf("%w: пользователь не заблокирован", common.ErrUserNotFound)
	}
	delete(s.set, userID)
	return nil
}

// Count возвращает количество заблокированных.
func (s *Suspensions) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.set)
}

// All возвращает снимок заблокированных user_id (для сброса в БД).
func (s *Suspensions) All() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int64, 0, len(s.set))
	for id := range s.set {
		out = append(out, id)
	}
	return out
}

// Restore загружает множество из БД при старте.
func (s *Suspensions) Restore(ids []int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.set[id] = struct{}{}
	}
}
