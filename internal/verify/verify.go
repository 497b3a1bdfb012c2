// Package verify — внешний оракул проверки подписки на канал.
// Единственный потребитель — выплата за задания: проверка выполняется
// ДО взятия замка профиля и обязана укладываться в таймаут вызывающего.
package verify

import "context"

// MembershipVerifier отвечает на один вопрос: состоит ли пользователь
// в канале. Ошибку возвращает только при невозможности спросить
// (сеть, таймаут) — отрицательный ответ это (false, nil).
type MembershipVerifier interface {
	VerifyMembership(ctx context.Context, userID int64, channelRef string) (bool, error)
}

// Func — адаптер функции под интерфейс (удобно в тестах).
type Func func(ctx context.Context, userID int64, channelRef string) (bool, error)

// VerifyMembership вызывает f.
func (f Func) VerifyMembership(ctx context.Context, userID int64, channelRef string) (bool, error) {
	return f(ctx, userID, channelRef)
}
