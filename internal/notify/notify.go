// Package notify описывает исходящие уведомления ядра.
// Ядро просит доставить событие и идёт дальше: доставка best-effort,
// её провал логируется адаптером и никогда не роняет операцию.
package notify

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Event — одно исходящее уведомление. Kind различает типы на стороне
// адаптера; текст сообщения — забота транспортного слоя.
type Event interface {
	Kind() string
}

// ReferralCredit — рефереру начислен бонус.
type ReferralCredit struct {
	NewUserID int64
	Amount    decimal.Decimal
	// Purchase=true — бонус за покупку реферала, иначе за регистрацию.
	Purchase bool
}

func (ReferralCredit) Kind() string { return "referral_credit" }

// StreakMilestone — пользователь получил недельный бонус серии.
type StreakMilestone struct {
	Streak int
	Bonus  decimal.Decimal
}

func (StreakMilestone) Kind() string { return "streak_milestone" }

// StreakBroken — серия пользователя оборвалась.
type StreakBroken struct {
	Length int
}

func (StreakBroken) Kind() string { return "streak_broken" }

// AchievementUnlocked — разблокирована ачивка.
type AchievementUnlocked struct {
	AchievementID string
	Name          string
	Description   string
}

func (AchievementUnlocked) Kind() string { return "achievement_unlocked" }

// TaskVerificationFailed — проверка подписки не прошла.
type TaskVerificationFailed struct {
	TaskID int64
	Link   string
}

func (TaskVerificationFailed) Kind() string { return "task_verification_failed" }

// PurchaseConfirmed — энергоплан активирован.
type PurchaseConfirmed struct {
	PlanName   string
	DailyLimit decimal.Decimal
	ExpiresIn  time.Duration
}

func (PurchaseConfirmed) Kind() string { return "purchase_confirmed" }

// SuspensionChanged — аккаунт заблокирован или разблокирован.
type SuspensionChanged struct {
	Suspended bool
}

func (SuspensionChanged) Kind() string { return "suspension_changed" }

// Notifier доставляет события пользователям. Реализации не возвращают
// ошибку: провал доставки — их внутреннее дело (логирование).
type Notifier interface {
	Notify(ctx context.Context, userID int64, event Event)
}
