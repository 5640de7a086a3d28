package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthBounds(t *testing.T) {
	tests := []struct {
		name      string
		in        time.Time
		wantFirst string
		wantLast  string
	}{
		{"mid month", time.Date(2025, time.June, 15, 10, 30, 0, 0, time.UTC), "2025-06-01", "2025-06-30"},
		{"leap february", time.Date(2024, time.February, 2, 0, 0, 0, 0, time.UTC), "2024-02-01", "2024-02-29"},
		{"non-leap february", time.Date(2025, time.February, 28, 23, 59, 0, 0, time.UTC), "2025-02-01", "2025-02-28"},
		{"december", time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC), "2025-12-01", "2025-12-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last := MonthBounds(tt.in)
			assert.Equal(t, tt.wantFirst, first.Format("2006-01-02"))
			assert.Equal(t, tt.wantLast, last.Format("2006-01-02"))
		})
	}
}

func TestTimeProviderSetNowFunc(t *testing.T) {
	tp := &TimeProvider{}
	pinned := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

	tp.SetNowFunc(func() time.Time { return pinned })
	assert.Equal(t, pinned, tp.Now())

	tp.SetNowFunc(nil)
	assert.WithinDuration(t, time.Now(), tp.Now(), time.Second)
}

func TestTimeProviderSetTimezone(t *testing.T) {
	tp := &TimeProvider{}
	require.NoError(t, tp.SetTimezone("UTC"))
	assert.Equal(t, time.UTC, tp.Location())

	assert.Error(t, tp.SetTimezone("Mars/Olympus_Mons"))

	require.NoError(t, tp.SetTimezone("Local"))
	assert.Equal(t, time.Local, tp.Location())
}
