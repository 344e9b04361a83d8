package accessibility

import (
	"testing"

	"github.com/Amsterdam/bereikbaarheid-backend/pkg/datastructure"
	"github.com/stretchr/testify/assert"
)

func mustClock(t *testing.T, s string) datastructure.ClockTime {
	t.Helper()
	c, err := datastructure.ParseClockTime(s)
	assert.NoError(t, err)
	return c
}

func window(t *testing.T, day, from, to string) *datastructure.TemporalWindow {
	t.Helper()
	return &datastructure.TemporalWindow{
		Day:  datastructure.Weekday(day),
		From: mustClock(t, from),
		To:   mustClock(t, to),
	}
}

func TestBollardBlocks(t *testing.T) {
	b := datastructure.Bollard{
		ID:          "P-101",
		RoadElement: 42,
		Days:        []datastructure.Weekday{"ma", "di", "wo"},
		OpenFrom:    mustClock(t, "07:00"),
		OpenUntil:   mustClock(t, "11:00"),
	}

	t.Run("no query window means open", func(t *testing.T) {
		assert.False(t, BollardBlocks(b, nil))
	})

	t.Run("inside the open window", func(t *testing.T) {
		assert.False(t, BollardBlocks(b, window(t, "ma", "08:00", "10:00")))
	})

	t.Run("boundaries are inclusive", func(t *testing.T) {
		assert.False(t, BollardBlocks(b, window(t, "di", "07:00", "11:00")))
	})

	t.Run("partially outside blocks", func(t *testing.T) {
		assert.True(t, BollardBlocks(b, window(t, "ma", "06:59", "10:00")))
		assert.True(t, BollardBlocks(b, window(t, "ma", "08:00", "11:01")))
	})

	t.Run("wrong day blocks", func(t *testing.T) {
		assert.True(t, BollardBlocks(b, window(t, "za", "08:00", "10:00")))
	})
}

func TestTimeWindowBlocks(t *testing.T) {
	tw := datastructure.TimeWindowRestriction{
		RoadElement: 7,
		Days:        []datastructure.Weekday{"vr"},
		From:        mustClock(t, "06:00"),
		To:          mustClock(t, "12:00"),
	}

	assert.False(t, TimeWindowBlocks(tw, nil))
	assert.False(t, TimeWindowBlocks(tw, window(t, "vr", "06:00", "12:00")))
	assert.True(t, TimeWindowBlocks(tw, window(t, "vr", "05:00", "12:00")))
	assert.True(t, TimeWindowBlocks(tw, window(t, "do", "06:00", "12:00")))
}
