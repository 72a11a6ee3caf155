package semester

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCurrent(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{"january", time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), "JAN2025"},
		{"late may", time.Date(2025, time.May, 31, 23, 0, 0, 0, time.UTC), "JAN2025"},
		{"first of june", time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), "JUN2025"},
		{"december", time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC), "JUN2025"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Current(tt.now))
		})
	}
}

func TestNext(t *testing.T) {
	require.Equal(t, "JUN2025", Next(time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, "JAN2026", Next(time.Date(2025, time.September, 10, 0, 0, 0, 0, time.UTC)))
}

func TestValid(t *testing.T) {
	require.True(t, Valid("JAN2025"))
	require.True(t, Valid("JUN2030"))
	require.False(t, Valid("FEB2025"))
	require.False(t, Valid("JAN25"))
	require.False(t, Valid(""))
	require.False(t, Valid("JANXXXX"))
}

func TestDates(t *testing.T) {
	start, end, err := Dates("JAN2025")
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), start)
	require.Equal(t, time.Date(2025, time.May, 31, 0, 0, 0, 0, time.UTC), end)

	start, end, err = Dates("JUN2025")
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), start)
	require.Equal(t, time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC), end)

	_, _, err = Dates("BAD")
	require.Error(t, err)
}

// Every instant must fall inside the range of the semester Current
// reports for it; December in particular belongs to JUN.
func TestCurrentAgreesWithDates(t *testing.T) {
	for month := time.January; month <= time.December; month++ {
		now := time.Date(2025, month, 15, 12, 0, 0, 0, time.UTC)
		start, end, err := Dates(Current(now))
		require.NoError(t, err)
		require.False(t, now.Before(start), "month %s before semester start", month)
		require.False(t, now.After(end.Add(24*time.Hour)), "month %s after semester end", month)
	}
}
