// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, хранилища, сервисы, ядро и
// планировщик, а при включённой БД восстанавливает состояние из снапшота.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"

	"megamine.ru/mining-bot/internal/config"
	"megamine.ru/mining-bot/internal/core"
	"megamine.ru/mining-bot/internal/db/postgres"
	"megamine.ru/mining-bot/internal/features/achievements"
	"megamine.ru/mining-bot/internal/features/activity"
	"megamine.ru/mining-bot/internal/features/admin"
	"megamine.ru/mining-bot/internal/features/energy"
	"megamine.ru/mining-bot/internal/features/leaderboard"
	"megamine.ru/mining-bot/internal/features/mining"
	"megamine.ru/mining-bot/internal/features/profile"
	"megamine.ru/mining-bot/internal/features/referral"
	"megamine.ru/mining-bot/internal/features/streak"
	"megamine.ru/mining-bot/internal/features/tasks"
	"megamine.ru/mining-bot/internal/jobs"
	"megamine.ru/mining-bot/internal/notify"
	"megamine.ru/mining-bot/internal/verify"
)

// App содержит все компоненты приложения.
type App struct {
	Core      *core.Core
	Scheduler *jobs.Scheduler
	DB        *pgxpool.Pool

	profiles    *profile.Store
	taskLedger  *tasks.Ledger
	roles       *admin.RoleStore
	suspensions *admin.Suspensions
	tracker     *activity.Tracker
	adminSvc    *admin.Service
	settings    *admin.Settings
	repo        *postgres.Repository
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных (опционально) ===
	var (
		pool *pgxpool.Pool
		repo *postgres.Repository
	)
	if cfg.DBEnabled {
		var err error
		pool, err = postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ошибка миграций: %w", err)
		}
		repo = postgres.NewRepository(pool)
	} else {
		log.Warn("БД отключена: состояние живёт только в памяти")
	}

	// === 2. Telegram Bot API ===
	bot, err := telego.NewBot(cfg.TelegramBotToken)
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}

	// === 3. Хранилища состояния ===
	profiles := profile.NewStore()
	settings := admin.NewSettings()
	roles := admin.NewRoleStore()
	suspensions := admin.NewSuspensions()
	taskLedger := tasks.NewLedger(profiles)
	tracker := activity.NewTracker()

	roles.Bootstrap(cfg.OwnerID, cfg.AdminIDs, time.Now())

	// === 4. Восстановление снапшота ===
	if repo != nil {
		if err := restore(ctx, repo, profiles, taskLedger, roles, suspensions); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ошибка восстановления состояния: %w", err)
		}
	}

	// === 5. Сервисы ===
	energySvc := energy.NewService(energy.DefaultPlans(), cfg.PlanDurationDays)
	streakTracker := streak.NewTracker(settings)
	evaluator := achievements.NewEvaluator(achievements.Catalog())
	engine := mining.NewEngine(energySvc, streakTracker, evaluator, settings, core.DefaultRand{}, cfg.MiningCooldown)
	referrals := referral.NewLedger(profiles, settings)
	boards := leaderboard.NewService(profiles)
	adminSvc := admin.NewService(profiles, tracker, suspensions, settings)

	// === 6. Ядро ===
	c := core.New(core.Deps{
		Profiles:      profiles,
		Energy:        energySvc,
		Engine:        engine,
		Referrals:     referrals,
		Tasks:         taskLedger,
		Roles:         roles,
		Suspensions:   suspensions,
		Settings:      settings,
		AdminService:  adminSvc,
		Boards:        boards,
		Tracker:       tracker,
		Achievements:  evaluator,
		Notifier:      notify.NewTelegramNotifier(bot),
		Verifier:      verify.NewChatMemberVerifier(bot),
		VerifyTimeout: cfg.VerifyTimeout,
	})

	// === 7. Планировщик задач ===
	app := &App{
		Core:        c,
		DB:          pool,
		profiles:    profiles,
		taskLedger:  taskLedger,
		roles:       roles,
		suspensions: suspensions,
		tracker:     tracker,
		adminSvc:    adminSvc,
		settings:    settings,
		repo:        repo,
	}

	var flush jobs.FlushFunc
	if repo != nil {
		flush = app.Flush
	}
	app.Scheduler = jobs.NewScheduler(cfg.FlushInterval, flush, app.reportSuspicious)

	return app, nil
}

// Flush сбрасывает полный снимок состояния в БД. Вызывается по
// расписанию и при остановке процесса.
func (a *App) Flush(ctx context.Context) error {
	if a.repo == nil {
		return nil
	}
	if err := a.repo.SaveProfiles(ctx, a.profiles.Snapshot()); err != nil {
		return err
	}
	if err := a.repo.SaveTasks(ctx, a.taskLedger.SnapshotAll()); err != nil {
		return err
	}
	if err := a.repo.SaveRoles(ctx, a.roles.All()); err != nil {
		return err
	}
	return a.repo.SaveSuspensions(ctx, a.suspensions.All())
}

// Shutdown останавливает фоновую работу и сбрасывает финальный снапшот.
func (a *App) Shutdown(ctx context.Context) {
	a.Scheduler.Stop()
	if err := a.Flush(ctx); err != nil {
		log.WithError(err).Error("Финальный сброс состояния не удался")
	} else if a.repo != nil {
		log.Info("Финальный снапшот сохранён")
	}
	a.Core.Close()
	if a.DB != nil {
		a.DB.Close()
	}
}

// reportSuspicious пишет в лог пользователей с аномальной частотой
// действий (порог из политики).
func (a *App) reportSuspicious(ctx context.Context) {
	stats := a.adminSvc.CollectStats(time.Now())
	if stats.SuspiciousUsers > 0 {
		log.WithField("count", stats.SuspiciousUsers).Warn("Обнаружена подозрительная активность")
	}
}

// restore загружает состояние из БД в память.
func restore(
	ctx context.Context,
	repo *postgres.Repository,
	profiles *profile.Store,
	taskLedger *tasks.Ledger,
	roles *admin.RoleStore,
	suspensions *admin.Suspensions,
) error {
	loaded, err := repo.LoadProfiles(ctx)
	if err != nil {
		return err
	}
	profiles.Restore(loaded)

	snaps, err := repo.LoadTasks(ctx)
	if err != nil {
		return err
	}
	taskLedger.Restore(snaps)

	savedRoles, err := repo.LoadRoles(ctx)
	if err != nil {
		return err
	}
	roles.Restore(savedRoles, time.Now())

	suspended, err := repo.LoadSuspensions(ctx)
	if err != nil {
		return err
	}
	suspensions.Restore(suspended)
	return nil
}
