// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Все они — ожидаемые, восстановимые исходы: вызывающий код различает их
// по errors.Is и формирует понятный ответ пользователю,
// ни одна из них не должна ронять запрос.
package common

import "errors"

// Ошибки майнинга (клеймы)
var (
	// ErrNoActivePlan — попытка майнить без активного энергоплана
	ErrNoActivePlan = errors.New("нет активного энергоплана")
	// ErrCooldownActive — клейм раньше, чем через 24 часа после предыдущего
	ErrCooldownActive = errors.New("кулдаун ещё не истёк")
	// ErrSuspended — аккаунт пользователя заблокирован
	ErrSuspended = errors.New("аккаунт заблокирован")
)

// Ошибки каталогов (планы, задания, пользователи)
var (
	// ErrUserNotFound — пользователь не найден
	ErrUserNotFound = errors.New("пользователь не найден")
	// ErrTaskNotFound — задание не найдено
	ErrTaskNotFound = errors.New("задание не найдено")
	// ErrInvalidPlan — неизвестный энергоплан
	ErrInvalidPlan = errors.New("неизвестный энергоплан")
	// ErrInvalidRole — неизвестная админ-роль
	ErrInvalidRole = errors.New("неизвестная роль")
)

// Ошибки заданий
var (
	// ErrAlreadyCompleted — задание уже выполнено этим пользователем
	ErrAlreadyCompleted = errors.New("задание уже выполнено")
	// ErrVerificationFailed — внешняя проверка не прошла или истёк таймаут.
	// Пользователь может попробовать ещё раз.
	ErrVerificationFailed = errors.New("проверка подписки не пройдена")
)

// Ошибки админки
var (
	// ErrUnauthorized — недостаточный уровень админ-прав
	ErrUnauthorized = errors.New("недостаточно прав")
	// ErrInvalidInput — некорректные аргументы админ-команды
	ErrInvalidInput = errors.New("некорректные аргументы")
)

// Ошибки рефералов
var (
	// ErrSelfReferral — попытка пригласить самого себя
	ErrSelfReferral = errors.New("нельзя пригласить самого себя")
)
