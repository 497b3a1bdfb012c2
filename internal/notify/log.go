// Package notify — log.go: запасной нотификатор, который просто пишет
// события в лог. Используется в тестах и когда транспорт не настроен.
package notify

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// LogNotifier пишет каждое событие в структурированный лог.
type LogNotifier struct{}

// NewLogNotifier создаёт лог-нотификатор.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Notify логирует событие.
func (n *LogNotifier) Notify(_ context.Context, userID int64, event Event) {
	log.WithFields(log.Fields{
		"user_id": userID,
		"kind":    event.Kind(),
		"event":   event,
	}).Info("Уведомление")
}
