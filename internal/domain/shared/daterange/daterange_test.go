package daterange_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetbook/internal/domain/shared/daterange"
)

func at(hh, mm int) time.Time {
	return time.Date(2025, time.January, 15, hh, mm, 0, 0, time.UTC)
}

func TestNew_RejectsInvertedBounds(t *testing.T) {
	_, err := daterange.New(at(10, 0), at(9, 0))
	require.ErrorIs(t, err, daterange.ErrInvalidWindow)

	_, err = daterange.New(at(10, 0), at(10, 0))
	require.ErrorIs(t, err, daterange.ErrInvalidWindow)
}

func TestWindow_ContainsIsHalfOpen(t *testing.T) {
	w, err := daterange.New(at(10, 0), at(11, 0))
	require.NoError(t, err)

	assert.True(t, w.Contains(at(10, 0)))
	assert.True(t, w.Contains(at(10, 59)))
	assert.False(t, w.Contains(at(11, 0)))
	assert.False(t, w.Contains(at(9, 59)))
}

func TestMinute_CoversTheCurrentMinute(t *testing.T) {
	now := time.Date(2025, time.January, 15, 10, 30, 42, 0, time.UTC)
	w := daterange.Minute(now)

	assert.Equal(t, at(10, 30), w.From)
	assert.Equal(t, at(10, 31), w.To)
	assert.True(t, w.Contains(now))
}

func TestBefore_EndsAtTheBoundary(t *testing.T) {
	w := daterange.Before(at(10, 0), time.Hour)

	assert.True(t, w.Contains(at(9, 0)))
	assert.True(t, w.Contains(at(9, 59)))
	assert.False(t, w.Contains(at(10, 0)))
}

func TestShift_MovesBothBounds(t *testing.T) {
	w := daterange.Minute(at(10, 30)).Shift(time.Hour)

	assert.Equal(t, at(11, 30), w.From)
	assert.Equal(t, at(11, 31), w.To)
}
