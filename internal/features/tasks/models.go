// Package tasks управляет спонсорскими заданиями: админ создаёт задание
// со ссылкой на канал, пользователь выполняет его один раз и получает
// награду после внешней проверки подписки.
// models.go описывает структуру задания.
package tasks

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Task — запись каталога заданий. После создания неизменяема,
// кроме множества выполнивших (оно живёт в каталоге).
type Task struct {
	ID          int64
	Title       string
	Description string
	Link        string
	DisplayText string
	Reward      decimal.Decimal
	// ChannelRef — ссылка на канал для проверки подписки,
	// извлечённая из Link. Пустая строка = проверка не нужна.
	ChannelRef string
	CreatedAt  time.Time
}

// ExtractChannelRef достаёт имя канала из t.me-ссылки.
//
// Примеры:
//
//	ExtractChannelRef("https://t.me/mega_news")        → "mega_news"
//	ExtractChannelRef("https://t.me/mega_news?start=1") → "mega_news"
//	ExtractChannelRef("https://example.com/page")       → ""
func ExtractChannelRef(link string) string {
	if !strings.Contains(link, "t.me/") {
		return ""
	}
	ref := link[strings.LastIndex(link, "t.me/")+len("t.me/"):]
	if i := strings.IndexByte(ref, '/'); i >= 0 {
		ref = ref[i+1:]
	}
	if i := strings.IndexByte(ref, '?'); i >= 0 {
		ref = ref[:i]
	}
	return strings.TrimPrefix(ref, "@")
}
