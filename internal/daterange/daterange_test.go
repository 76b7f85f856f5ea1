package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustRange(t *testing.T, s, e time.Time) Range {
	t.Helper()
	r, err := New(s, e)
	require.NoError(t, err)
	return r
}

func TestNew(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		r, err := New(day(2025, 1, 5), day(2025, 1, 10))
		require.NoError(t, err)
		assert.Equal(t, 5, r.Days())
	})

	t.Run("ZeroDuration", func(t *testing.T) {
		_, err := New(day(2025, 1, 10), day(2025, 1, 10))
		assert.ErrorIs(t, err, ErrEndNotAfterStart)
	})

	t.Run("Inverted", func(t *testing.T) {
		_, err := New(day(2025, 1, 10), day(2025, 1, 5))
		assert.ErrorIs(t, err, ErrEndNotAfterStart)
	})

	t.Run("TruncatesTimeOfDay", func(t *testing.T) {
		r, err := New(
			time.Date(2025, 1, 5, 15, 30, 0, 0, time.UTC),
			time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC),
		)
		require.NoError(t, err)
		assert.Equal(t, day(2025, 1, 5), r.Start)
		assert.Equal(t, 1, r.Days())
	})
}

func TestParse(t *testing.T) {
	r, err := Parse("2025-01-05", "2025-01-10")
	require.NoError(t, err)
	assert.Equal(t, day(2025, 1, 5), r.Start)
	assert.Equal(t, day(2025, 1, 10), r.End)

	_, err = Parse("05.01.2025", "2025-01-10")
	assert.Error(t, err)

	_, err = Parse("2025-01-10", "2025-01-10")
	assert.ErrorIs(t, err, ErrEndNotAfterStart)
}

func TestOverlaps(t *testing.T) {
	base := mustRange(t, day(2025, 1, 5), day(2025, 1, 10))

	cases := []struct {
		name  string
		other Range
		want  bool
	}{
		{"Identical", mustRange(t, day(2025, 1, 5), day(2025, 1, 10)), true},
		{"Inside", mustRange(t, day(2025, 1, 6), day(2025, 1, 8)), true},
		{"OverlapLeft", mustRange(t, day(2025, 1, 1), day(2025, 1, 5)), true},
		{"OverlapRight", mustRange(t, day(2025, 1, 10), day(2025, 1, 12)), true},
		{"SharedBoundary", mustRange(t, day(2025, 1, 10), day(2025, 1, 15)), true},
		{"Before", mustRange(t, day(2025, 1, 1), day(2025, 1, 4)), false},
		{"After", mustRange(t, day(2025, 1, 11), day(2025, 1, 15)), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Overlaps(base, tc.other))
			assert.Equal(t, tc.want, Overlaps(tc.other, base), "predicate must be symmetric")
		})
	}
}

func TestDays(t *testing.T) {
	assert.Equal(t, 1, mustRange(t, day(2025, 3, 1), day(2025, 3, 2)).Days())
	assert.Equal(t, 31, mustRange(t, day(2025, 3, 1), day(2025, 4, 1)).Days())
}
