// migrations.go — встроенные SQL-миграции схемы. Применяются
// последовательно по номеру; уже применённые версии пропускаются
// (журнал в schema_migrations).
//
// Все денежные колонки — NUMERIC: суммы считаются в десятичной
// арифметике и хранятся без потерь.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var migrations = []string{
	// 1: профили пользователей
	`CREATE TABLE IF NOT EXISTS users (
		user_id         BIGINT PRIMARY KEY,
		balance         NUMERIC(24, 8) NOT NULL DEFAULT 0,
		total_mined     NUMERIC(24, 8) NOT NULL DEFAULT 0,
		mining_count    BIGINT         NOT NULL DEFAULT 0,
		referral_count  INTEGER        NOT NULL DEFAULT 0,
		current_streak  INTEGER        NOT NULL DEFAULT 0,
		highest_streak  INTEGER        NOT NULL DEFAULT 0,
		last_claim_at   TIMESTAMPTZ,
		referred_by     BIGINT,
		plan_id         TEXT           NOT NULL DEFAULT '',
		plan_expires_at TIMESTAMPTZ,
		achievements    TEXT[]         NOT NULL DEFAULT '{}',
		created_at      TIMESTAMPTZ    NOT NULL DEFAULT NOW()
	)`,

	// 2: спонсорские задания и журнал выполнений
	`CREATE TABLE IF NOT EXISTS tasks (
		id           BIGINT PRIMARY KEY,
		title        TEXT           NOT NULL,
		description  TEXT           NOT NULL,
		link         TEXT           NOT NULL,
		display_text TEXT           NOT NULL,
		reward       NUMERIC(24, 8) NOT NULL,
		channel_ref  TEXT           NOT NULL DEFAULT '',
		created_at   TIMESTAMPTZ    NOT NULL DEFAULT NOW()
	);
	CREATE TABLE IF NOT EXISTS task_completions (
		task_id BIGINT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		user_id BIGINT NOT NULL,
		PRIMARY KEY (task_id, user_id)
	)`,

	// 3: роли и блокировки
	`CREATE TABLE IF NOT EXISTS admin_roles (
		user_id BIGINT PRIMARY KEY,
		role    TEXT   NOT NULL
	);
	CREATE TABLE IF NOT EXISTS suspensions (
		user_id      BIGINT PRIMARY KEY,
		suspended_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	// 4: индекс для рейтингов по последнему клейму
	`CREATE INDEX IF NOT EXISTS idx_users_last_claim ON users (last_claim_at)`,
}

// Migrate применяет все миграции схемы.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("ошибка создания таблицы миграций: %w", err)
	}

	for i, sql := range migrations {
		version := i + 1
		if err := execMigration(ctx, pool, version, sql); err != nil {
			return err
		}
	}

	log.WithField("versions", len(migrations)).Info("Миграции применены")
	return nil
}
