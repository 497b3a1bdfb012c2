package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecordAndCount(t *testing.T) {
	tr := NewTracker()
	defer tr.Close()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	require.Equal(t, 0, tr.PerMinute(1, now))

	tr.Record(1, now)
	tr.Record(1, now.Add(10*time.Second))
	tr.Record(2, now)

	require.Equal(t, 2, tr.PerMinute(1, now.Add(10*time.Second)))
	require.Equal(t, 1, tr.PerMinute(2, now))
}

func TestWindowSlides(t *testing.T) {
	tr := NewTracker()
	defer tr.Close()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tr.Record(1, now)
	tr.Record(1, now.Add(30*time.Second))

	// Через 61 секунду первое действие выпадает из окна
	require.Equal(t, 1, tr.PerMinute(1, now.Add(61*time.Second)))
	// Через две минуты окно пустое
	require.Equal(t, 0, tr.PerMinute(1, now.Add(2*time.Minute)))
}

func TestSuspiciousThreshold(t *testing.T) {
	tr := NewTracker()
	defer tr.Close()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		tr.Record(1, now.Add(time.Duration(i)*time.Second))
	}
	sus, n := tr.Suspicious(1, 5, now.Add(4*time.Second))
	require.False(t, sus)
	require.Equal(t, 4, n)

	tr.Record(1, now.Add(5*time.Second))
	sus, n = tr.Suspicious(1, 5, now.Add(5*time.Second))
	require.True(t, sus)
	require.Equal(t, 5, n)
}

func TestCloseIsIdempotent(t *testing.T) {
	tr := NewTracker()
	tr.Close()
	tr.Close()
}
