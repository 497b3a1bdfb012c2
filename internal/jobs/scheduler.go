// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: периодический сброс состояния
// в БД и ежечасный отчёт о подозрительной активности.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// FlushFunc сбрасывает текущее состояние экономики в хранилище.
type FlushFunc func(ctx context.Context) error

// ReportFunc пишет периодический отчёт (активность, подозрительные).
type ReportFunc func(ctx context.Context)

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron          *cron.Cron
	flushSpec     string
	flush         FlushFunc
	suspicionScan ReportFunc
}

// NewScheduler создаёт планировщик задач с московским часовым поясом.
// flushSpec — cron-выражение периодического сброса; nil flush означает
// работу без БД, задача сброса тогда не ставится.
func NewScheduler(flushSpec string, flush FlushFunc, suspicionScan ReportFunc) *Scheduler {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		log.WithError(err).Warn("Не удалось загрузить Europe/Moscow, используем UTC+3")
		loc = time.FixedZone("MSK", 3*60*60)
	}

	return &Scheduler{
		cron:          cron.New(cron.WithLocation(loc)),
		flushSpec:     flushSpec,
		flush:         flush,
		suspicionScan: suspicionScan,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) {
	if s.flush != nil {
		if _, err := s.cron.AddFunc(s.flushSpec, func() {
			log.Debug("[CRON] Сброс состояния в БД")
			if err := s.flush(ctx); err != nil {
				log.WithError(err).Error("[CRON] Ошибка сброса состояния")
			}
		}); err != nil {
			log.WithError(err).Error("[CRON] Некорректное расписание сброса")
		}
	}

	if s.suspicionScan != nil {
		// Ежечасный скан активности
		s.cron.AddFunc("0 * * * *", func() {
			s.suspicionScan(ctx)
		})
	}

	s.cron.Start()
	log.Info("Планировщик задач запущен (Europe/Moscow)")
}

// Stop останавливает планировщик и дожидается завершения текущих задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
