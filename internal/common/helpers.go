// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: форматирование длительностей, русская плюрализация,
// вычисление суточных границ.
package common

import (
	"fmt"
	"math"
	"time"
)

// FormatTimeRemaining форматирует оставшееся время в читабельный вид.
//
// Примеры:
//
//	FormatTimeRemaining(90 * time.Minute) → "1h 30m 0s"
//	FormatTimeRemaining(45 * time.Second) → "0h 0m 45s"
func FormatTimeRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}

// PluralizeDays возвращает правильную форму слова «день» для числа n.
//
// Правила:
//   - 1, 21, 31 → "день"
//   - 2-4, 22-24 → "дня"
//   - 5-20, 25-30 → "дней"
func PluralizeDays(n int) string {
	absN := int(math.Abs(float64(n)))
	lastDigit := absN % 10
	lastTwoDigits := absN % 100

	if lastDigit == 1 && lastTwoDigits != 11 {
		return "день"
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return "дня"
	}
	return "дней"
}

// StartOfDay возвращает полночь того дня, в который попадает t,
// в часовом поясе самого t. Используется для проверки «ранней пташки»
// и для дневного лидерборда.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfWeek возвращает полночь понедельника недели, в которую попадает t.
// Используется для недельного лидерборда.
func StartOfWeek(t time.Time) time.Time {
	// time.Weekday: Sunday=0, Monday=1, ... — приводим к «понедельник = 0»
	offset := (int(t.Weekday()) + 6) % 7
	return StartOfDay(t).AddDate(0, 0, -offset)
}
