// Package config загружает конфигурацию бота из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
//
// Здесь лежат только СТАТИЧЕСКИЕ настройки процесса (токены, БД, таймауты).
// Политика начислений (награды, пороги, шанс джекпота) — это данные,
// а не конфигурация процесса: она живёт в admin.Settings и меняется
// админ-командами на лету.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит ВСЕ статические настройки приложения.
type Config struct {
	// --- Telegram ---
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	// ID владельца бота. Получает роль owner при старте.
	OwnerID int64 `envconfig:"OWNER_ID" required:"true"`
	// Дополнительные админы (уровень admin), через запятую.
	AdminIDsRaw string  `envconfig:"ADMIN_IDS" default:""`
	AdminIDs    []int64 `envconfig:"-"` // заполним вручную

	// --- Database ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	// Дефолт ставим "postgres" (имя сервиса в docker-compose), а для локалки переопределяй DB_HOST=localhost.
	DBEnabled  bool   `envconfig:"DB_ENABLED" default:"true"`
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"botuser"`
	DBPassword string `envconfig:"DB_PASSWORD" default:""`
	DBName     string `envconfig:"DB_NAME" default:"mining_bot"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"UTC"`
	// Адрес HTTP-эндпоинта /metrics. Пустая строка отключает сервер.
	MetricsAddr string `envconfig:"METRICS_ADDR" default:""`

	// --- Mining ---
	// Кулдаун между клеймами.
	MiningCooldown time.Duration `envconfig:"MINING_COOLDOWN" default:"24h"`
	// Срок действия купленного энергоплана.
	PlanDurationDays int `envconfig:"PLAN_DURATION_DAYS" default:"30"`

	// --- Verification ---
	// Таймаут внешней проверки подписки на канал. По истечении
	// проверка считается проваленной (пользователь может повторить).
	VerifyTimeout time.Duration `envconfig:"VERIFY_TIMEOUT" default:"5s"`

	// --- Jobs ---
	// Как часто сбрасывать снапшот состояния в БД.
	FlushInterval string `envconfig:"FLUSH_CRON" default:"0 * * * *"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) Validate() error {
	if c.OwnerID == 0 {
		return fmt.Errorf("OWNER_ID не задан или равен 0")
	}
	if c.MiningCooldown <= 0 {
		return fmt.Errorf("MINING_COOLDOWN должен быть > 0")
	}
	if c.PlanDurationDays <= 0 {
		return fmt.Errorf("PLAN_DURATION_DAYS должен быть > 0")
	}
	if c.VerifyTimeout <= 0 {
		return fmt.Errorf("VERIFY_TIMEOUT должен быть > 0")
	}
	if c.DBEnabled {
		if c.DBPassword == "" {
			return fmt.Errorf("DB_PASSWORD обязателен при DB_ENABLED=true")
		}
		if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
		}
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	ids, err := parseInt64CSV(cfg.AdminIDsRaw)
	if err != nil {
		return nil, fmt.Errorf("ADMIN_IDS parse: %w", err)
	}
	cfg.AdminIDs = ids

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseInt64CSV(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad int64 %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
