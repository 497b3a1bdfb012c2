// Package profile управляет профилями пользователей — центральной
// структурой всей экономики. Профиль создаётся при первом обращении
// и никогда не удаляется (блокировка хранится отдельно, в админке).
// models.go описывает саму структуру профиля.
package profile

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserProfile — профиль одного пользователя.
//
// Инварианты:
//   - Balance и TotalMined никогда не уменьшаются наградными операциями
//   - MiningCount и ReferralCount монотонно растут
//   - Achievements — append-only множество
//   - ReferredBy выставляется один раз и больше не меняется
//   - HighestStreak = максимум CurrentStreak за всю историю
//
// Все суммы — decimal, округление только на границе отображения.
type UserProfile struct {
	UserID        int64           `db:"user_id"`
	Balance       decimal.Decimal `db:"balance"`        // Текущий баланс $MEGA
	TotalMined    decimal.Decimal `db:"total_mined"`    // Намайнено за всё время
	MiningCount   int64           `db:"mining_count"`   // Сколько раз майнил
	ReferralCount int             `db:"referral_count"` // Сколько привёл рефералов
	CurrentStreak int             `db:"current_streak"` // Текущая серия дней
	HighestStreak int             `db:"highest_streak"` // Личный рекорд серии
	LastClaimAt   *time.Time      `db:"last_claim_at"`  // Время последнего клейма (nil = не майнил)
	ReferredBy    *int64          `db:"referred_by"`    // Кто пригласил (nil = сам пришёл)

	// Активный энергоплан. Покупка нового плана перезаписывает пару
	// целиком; частичных обновлений не бывает.
	PlanID        string     `db:"plan_id"`
	PlanExpiresAt *time.Time `db:"plan_expires_at"`

	// Разблокированные ачивки. Множество только растёт.
	Achievements map[string]struct{} `db:"-"`

	CreatedAt time.Time `db:"created_at"`
}

// NewUserProfile создаёт пустой профиль с нулевым балансом.
func NewUserProfile(userID int64, now time.Time) *UserProfile {
	return &UserProfile{
		UserID:       userID,
		Balance:      decimal.Zero,
		TotalMined:   decimal.Zero,
		Achievements: make(map[string]struct{}),
		CreatedAt:    now,
	}
}

// HasAchievement сообщает, разблокирована ли ачивка.
func (p *UserProfile) HasAchievement(id string) bool {
	_, ok := p.Achievements[id]
	return ok
}

// GrantAchievement добавляет ачивку в множество. Повторная выдача — no-op.
func (p *UserProfile) GrantAchievement(id string) {
	p.Achievements[id] = struct{}{}
}

// Clone возвращает глубокую копию профиля. Используется для снапшотов,
// которые читаются без блокировки профиля.
func (p *UserProfile) Clone() *UserProfile {
	cp := *p
	if p.LastClaimAt != nil {
		t := *p.LastClaimAt
		cp.LastClaimAt = &t
	}
	if p.ReferredBy != nil {
		id := *p.ReferredBy
		cp.ReferredBy = &id
	}
	if p.PlanExpiresAt != nil {
		t := *p.PlanExpiresAt
		cp.PlanExpiresAt = &t
	}
	cp.Achievements = make(map[string]struct{}, len(p.Achievements))
	for id := range p.Achievements {
		cp.Achievements[id] = struct{}{}
	}
	return &cp
}
