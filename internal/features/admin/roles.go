// Package admin — roles.go реализует иерархию админ-ролей.
// owner > admin > moderator; каждой роли соответствует числовой уровень,
// команды требуют минимальный уровень. Никакой динамики — обычный
// помеченный вариант с одной предикатной проверкой.
package admin

import (
	"fmt"
	"sync"
	"time"

	"megamine.ru/mining-bot/internal/common"
)

// Role — админ-роль.
type Role string

const (
	RoleOwner     Role = "owner"
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
)

// Уровни доступа. Команды проверяют минимальный уровень.
const (
	LevelNone      = 0
	LevelModerator = 1
	LevelAdmin     = 2
	LevelOwner     = 3
)

// Level возвращает числовой уровень роли. Неизвестная роль — 0.
func (r Role) Level() int {
	switch r {
	case RoleOwner:
		return LevelOwner
	case RoleAdmin:
		return LevelAdmin
	case RoleModerator:
		return LevelModerator
	default:
		return LevelNone
	}
}

// ParseRole превращает строку в роль. Роль owner назначить нельзя —
// она выдаётся только при старте из конфигурации.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleModerator:
		return RoleModerator, nil
	case RoleOwner:
		return "", fmt.Errorf("%w: роль owner назначается только при старте", common.ErrInvalidRole)
	default:
		return "", fmt.Errorf("%w: %q", common.ErrInvalidRole, s)
	}
}

// adminRecord — запись об админе.
type adminRecord struct {
	Role    Role
	AddedBy int64
	AddedAt time.Time
}

// RoleStore хранит назначенные роли. Чтений намного больше, чем
// изменений, поэтому RWMutex.
type RoleStore struct {
	mu     sync.RWMutex
	admins map[int64]adminRecord
}

// NewRoleStore создаёт пустое хранилище ролей.
func NewRoleStore() *RoleStore {
	return &RoleStore{admins: make(map[int64]adminRecord)}
}

// Bootstrap выдаёт стартовые роли из конфигурации: владельца и,
// опционально, список админов. Вызывается один раз при инициализации.
func (s *RoleStore) Bootstrap(ownerID int64, adminIDs []int64, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admins[ownerID] = adminRecord{Role: RoleOwner, AddedAt: now}
	for _, id := range adminIDs {
		if id == ownerID {
			continue
		}
		s.admins[id] = adminRecord{Role: RoleAdmin, AddedBy: ownerID, AddedAt: now}
	}
}

// LevelOf возвращает уровень пользователя. 0 — не админ.
func (s *RoleStore) LevelOf(userID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.admins[userID].Role.Level()
}

// Authorize проверяет, что у пользователя есть требуемый уровень.
func (s *RoleStore) Authorize(userID int64, requiredLevel int) error {
	if s.LevelOf(userID) < requiredLevel {
		return common.ErrUnauthorized
	}
	return nil
}

// Add назначает роль пользователю. Только для ролей admin/moderator;
// повторное назначение перезаписывает роль.
func (s *RoleStore) Add(targetID int64, role Role, addedBy int64, now time.Time) error {
	if role != RoleAdmin && role != RoleModerator {
		return fmt.Errorf("%w: %q", common.ErrInvalidRole, role)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.admins[targetID].Role == RoleOwner {
		return fmt.Errorf("%w: нельзя сменить роль владельца", common.ErrInvalidRole)
	}
	s.admins[targetID] = adminRecord{Role: role, AddedBy: addedBy, AddedAt: now}
	return nil
}

// Remove снимает роль. Владельца снять нельзя.
func (s *RoleStore) Remove(targetID int64) (Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.admins[targetID]
	if !ok {
		return "", fmt.Errorf("%w: пользователь не админ", common.ErrUserNotFound)
	}
	if rec.Role == RoleOwner {
		return "", fmt.Errorf("%w: нельзя удалить владельца", common.ErrInvalidRole)
	}
	delete(s.admins, targetID)
	return rec.Role, nil
}

// Restore накладывает сохранённые в БД роли поверх стартовых.
// Роль owner из БД не принимается: владелец задаётся только конфигурацией.
func (s *RoleStore) Restore(roles map[int64]Role, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, role := range roles {
		if role == RoleOwner || s.admins[id].Role == RoleOwner {
			continue
		}
		s.admins[id] = adminRecord{Role: role, AddedAt: now}
	}
}

// All возвращает снимок назначенных ролей (для сброса в БД).
func (s *RoleStore) All() map[int64]Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int64]Role, len(s.admins))
	for id, rec := range s.admins {
		out[id] = rec.Role
	}
	return out
}
