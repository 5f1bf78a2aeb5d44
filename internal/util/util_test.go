package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreCompletions(t *testing.T) {
	candidates := []string{"groceries", "grow list", "meeting notes", "garden"}

	t.Run("empty input returns all", func(t *testing.T) {
		assert.Equal(t, candidates, ScoreCompletions("", candidates, 10))
	})

	t.Run("fuzzy match ranks closest first", func(t *testing.T) {
		got := ScoreCompletions("gro", candidates, 2)
		require.Len(t, got, 2)
		assert.Contains(t, []string{"groceries", "grow list"}, got[0])
	})

	t.Run("no match returns nil", func(t *testing.T) {
		assert.Nil(t, ScoreCompletions("zzz", candidates, 5))
	})
}

func TestParseTimeExpr(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		in   string
		want time.Time
	}{
		{"2h", now.Add(-2 * time.Hour)},
		{"3d", now.Add(-72 * time.Hour)},
		{"2w", now.Add(-14 * 24 * time.Hour)},
		{"1mo", now.AddDate(0, -1, 0)},
		{"30m", now.Add(-30 * time.Minute)},
		{"2026-03-01", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"2026-03-01T09:30", time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := parseTimeExpr(tc.in, now)
		require.NoError(t, err, tc.in)
		assert.True(t, got.Equal(tc.want), "%s: got %v want %v", tc.in, got, tc.want)
	}

	_, err := parseTimeExpr("yesterday-ish", now)
	assert.Error(t, err)
}

func TestParseTimeRangeSwapsReversed(t *testing.T) {
	s, u, err := ParseTimeRange("2026-01-10", "2026-01-01")
	require.NoError(t, err)
	assert.True(t, s.Before(u))
}
