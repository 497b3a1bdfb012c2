// repository.go — снапшот-репозиторий состояния экономики.
//
// Модель работы: полная загрузка в память на старте (Load*), явный
// сброс по расписанию и при остановке (Save*). Каждый Save* пишет
// снимок целиком в одной транзакции; частично сохранённого состояния
// читатель никогда не увидит.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"

	"megamine.ru/mining-bot/internal/features/admin"
	"megamine.ru/mining-bot/internal/features/profile"
	"megamine.ru/mining-bot/internal/features/tasks"
)

// Repository выполняет загрузку и сброс снапшотов.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository создаёт репозиторий поверх пула.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// LoadProfiles читает все профили пользователей.
func (r *Repository) LoadProfiles(ctx context.Context) ([]*profile.UserProfile, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, balance, total_mined, mining_count, referral_count,
		       current_streak, highest_streak, last_claim_at, referred_by,
		       plan_id, plan_expires_at, achievements, created_at
		FROM users
	`)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения профилей: %w", err)
	}
	defer rows.Close()

	var out []*profile.UserProfile
	for rows.Next() {
		p := &profile.UserProfile{}
		var (
			balance, totalMined string
			achieved            []string
		)
		err := rows.Scan(
			&p.UserID, &balance, &totalMined, &p.MiningCount, &p.ReferralCount,
			&p.CurrentStreak, &p.HighestStreak, &p.LastClaimAt, &p.ReferredBy,
			&p.PlanID, &p.PlanExpiresAt, &achieved, &p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения профиля: %w", err)
		}
		// NUMERIC ходит через строку: без потерь и без кастомных кодеков.
		if p.Balance, err = decimal.NewFromString(balance); err != nil {
			return nil, fmt.Errorf("повреждённый баланс user_id=%d: %w", p.UserID, err)
		}
		if p.TotalMined, err = decimal.NewFromString(totalMined); err != nil {
			return nil, fmt.Errorf("повреждённый total_mined user_id=%d: %w", p.UserID, err)
		}
		p.Achievements = make(map[string]struct{}, len(achieved))
		for _, id := range achieved {
			p.Achievements[id] = struct{}{}
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка обхода профилей: %w", err)
	}

	log.WithField("count", len(out)).Info("Профили загружены из БД")
	return out, nil
}

// SaveProfiles сбрасывает снимок профилей. Каждый профиль — UPSERT:
// профили не удаляются никогда, поэтому DELETE здесь не нужен.
func (r *Repository) SaveProfiles(ctx context.Context, profiles []*profile.UserProfile) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, p := range profiles {
		achieved := make([]string, 0, len(p.Achievements))
		for id := range p.Achievements {
			achieved = append(achieved, id)
		}
		batch.Queue(`
			INSERT INTO users (
				user_id, balance, total_mined, mining_count, referral_count,
				current_streak, highest_streak, last_claim_at, referred_by,
				plan_id, plan_expires_at, achievements, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
			ON CONFLICT (user_id) DO UPDATE SET
				balance = EXCLUDED.balance,
				total_mined = EXCLUDED.total_mined,
				mining_count = EXCLUDED.mining_count,
				referral_count = EXCLUDED.referral_count,
				current_streak = EXCLUDED.current_streak,
				highest_streak = EXCLUDED.highest_streak,
				last_claim_at = EXCLUDED.last_claim_at,
				referred_by = EXCLUDED.referred_by,
				plan_id = EXCLUDED.plan_id,
				plan_expires_at = EXCLUDED.plan_expires_at,
				achievements = EXCLUDED.achievements
		`,
			p.UserID, p.Balance.String(), p.TotalMined.String(), p.MiningCount, p.ReferralCount,
			p.CurrentStreak, p.HighestStreak, p.LastClaimAt, p.ReferredBy,
			p.PlanID, p.PlanExpiresAt, achieved, p.CreatedAt,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("ошибка записи профилей: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("ошибка фиксации: %w", err)
	}
	log.WithField("count", len(profiles)).Debug("Профили сброшены в БД")
	return nil
}

// LoadTasks читает каталог заданий вместе с журналом выполнений.
func (r *Repository) LoadTasks(ctx context.Context) ([]tasks.Snapshot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, description, link, display_text, reward, channel_ref, created_at
		FROM tasks
	`)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения заданий: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]*tasks.Snapshot)
	var order []int64
	for rows.Next() {
		var t tasks.Task
		var reward string
		err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Link,
			&t.DisplayText, &reward, &t.ChannelRef, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения задания: %w", err)
		}
		if t.Reward, err = decimal.NewFromString(reward); err != nil {
			return nil, fmt.Errorf("повреждённая награда задания id=%d: %w", t.ID, err)
		}
		byID[t.ID] = &tasks.Snapshot{Task: t}
		order = append(order, t.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка обхода заданий: %w", err)
	}

	crows, err := r.pool.Query(ctx, `SELECT task_id, user_id FROM task_completions`)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения выполнений: %w", err)
	}
	defer crows.Close()
	for crows.Next() {
		var taskID, userID int64
		if err := crows.Scan(&taskID, &userID); err != nil {
			return nil, fmt.Errorf("ошибка чтения выполнения: %w", err)
		}
		if s, ok := byID[taskID]; ok {
			s.CompletedBy = append(s.CompletedBy, userID)
		}
	}
	if err := crows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка обхода выполнений: %w", err)
	}

	out := make([]tasks.Snapshot, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out, nil
}

// SaveTasks сбрасывает каталог заданий целиком: задания удаляются
// админом, поэтому проще переписать таблицы, чем вычислять дельту.
// Журнал выполнений уходит каскадом вместе с заданиями.
func (r *Repository) SaveTasks(ctx context.Context, snaps []tasks.Snapshot) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("ошибка очистки заданий: %w", err)
	}

	batch := &pgx.Batch{}
	for _, s := range snaps {
		batch.Queue(`
			INSERT INTO tasks (id, title, description, link, display_text, reward, channel_ref, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`, s.Task.ID, s.Task.Title, s.Task.Description, s.Task.Link,
			s.Task.DisplayText, s.Task.Reward.String(), s.Task.ChannelRef, s.Task.CreatedAt)
		for _, userID := range s.CompletedBy {
			batch.Queue(`INSERT INTO task_completions (task_id, user_id) VALUES ($1,$2)`,
				s.Task.ID, userID)
		}
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("ошибка записи заданий: %w", err)
	}

	return tx.Commit(ctx)
}

// LoadRoles читает назначенные роли.
func (r *Repository) LoadRoles(ctx context.Context) (map[int64]admin.Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id, role FROM admin_roles`)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ролей: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]admin.Role)
	for rows.Next() {
		var id int64
		var role string
		if err := rows.Scan(&id, &role); err != nil {
			return nil, fmt.Errorf("ошибка чтения роли: %w", err)
		}
		out[id] = admin.Role(role)
	}
	return out, rows.Err()
}

// SaveRoles сбрасывает назначенные роли. Роль owner живёт только
// в конфигурации и в БД не пишется.
func (r *Repository) SaveRoles(ctx context.Context, roles map[int64]admin.Role) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM admin_roles`); err != nil {
		return fmt.Errorf("ошибка очистки ролей: %w", err)
	}
	batch := &pgx.Batch{}
	for id, role := range roles {
		if role == admin.RoleOwner {
			continue
		}
		batch.Queue(`INSERT INTO admin_roles (user_id, role) VALUES ($1,$2)`, id, string(role))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("ошибка записи ролей: %w", err)
	}
	return tx.Commit(ctx)
}

// LoadSuspensions читает заблокированных пользователей.
func (r *Repository) LoadSuspensions(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id FROM suspensions`)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения блокировок: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ошибка чтения блокировки: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// SaveSuspensions сбрасывает множество заблокированных.
func (r *Repository) SaveSuspensions(ctx context.Context, ids []int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM suspensions`); err != nil {
		return fmt.Errorf("ошибка очистки блокировок: %w", err)
	}
	batch := &pgx.Batch{}
	for _, id := range ids {
		batch.Queue(`INSERT INTO suspensions (user_id) VALUES ($1)`, id)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("ошибка записи блокировок: %w", err)
	}
	return tx.Commit(ctx)
}
