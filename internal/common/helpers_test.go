package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormatTimeRemaining(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{90 * time.Minute, "1h 30m 0s"},
		{45 * time.Second, "0h 0m 45s"},
		{23*time.Hour + 59*time.Minute + 59*time.Second, "23h 59m 59s"},
		{0, "0h 0m 0s"},
		{-time.Minute, "0h 0m 0s"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, FormatTimeRemaining(tc.in))
	}
}

func TestPluralizeDays(t *testing.T) {
	cases := map[int]string{
		1:   "день",
		2:   "дня",
		4:   "дня",
		5:   "дней",
		11:  "дней",
		12:  "дней",
		21:  "день",
		22:  "дня",
		25:  "дней",
		100: "дней",
		101: "день",
	}
	for n, want := range cases {
		require.Equal(t, want, PluralizeDays(n), "n=%d", n)
	}
}

func TestStartOfDay(t *testing.T) {
	ts := time.Date(2026, 3, 11, 15, 42, 7, 123, time.UTC)
	require.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), StartOfDay(ts))
}

func TestStartOfWeekIsMonday(t *testing.T) {
	monday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	// Любой день недели схлопывается в понедельник
	for d := 0; d < 7; d++ {
		ts := monday.AddDate(0, 0, d).Add(13 * time.Hour)
		require.Equal(t, monday, StartOfWeek(ts), "day offset %d", d)
	}

	// Воскресенье относится к УХОДЯЩЕЙ неделе, не к следующей
	sunday := time.Date(2026, 3, 15, 23, 0, 0, 0, time.UTC)
	require.Equal(t, monday, StartOfWeek(sunday))
}
