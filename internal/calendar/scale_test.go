package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMaxCount(t *testing.T) {
	tests := []struct {
		name string
		log  Log
		want int
	}{
		{"no history", nil, 1},
		{"only zeros", Log{Recorded(0), Absent()}, 1},
		{"single day", Log{Recorded(1)}, 1},
		{"largest wins", Log{Recorded(3), Recorded(12), Recorded(7)}, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Align(tt.log, time.Tuesday, 53)
			assert.Equal(t, tt.want, MaxCount(g))
		})
	}
}

func TestMaxCount_IgnoresDroppedHistory(t *testing.T) {
	// 100 sits outside a one-week window anchored on Sunday
	g := Align(Log{Recorded(100), Recorded(2)}, time.Sunday, 1)
	assert.Equal(t, 2, MaxCount(g))
}

func TestIntensity_Bounds(t *testing.T) {
	for maxCount := 1; maxCount <= 50; maxCount += 7 {
		prev := 0.0
		for n := 1; n <= maxCount; n++ {
			got := Intensity(n, maxCount, DefaultMinIntensity)
			assert.GreaterOrEqual(t, got, DefaultMinIntensity)
			assert.LessOrEqual(t, got, 1.0)
			assert.GreaterOrEqual(t, got, prev, "n=%d max=%d", n, maxCount)
			prev = got
		}
	}
}

func TestIntensity_SingleDayIsFull(t *testing.T) {
	g := Align(Log{Recorded(1)}, time.Saturday, 53)
	got := Scale(g, DefaultMinIntensity)

	assert.Len(t, got, 1)
	assert.Equal(t, 1.0, got[g.EndIndex()])
}

func TestIntensity_Values(t *testing.T) {
	assert.InDelta(t, 0.7, Intensity(5, 10, 0.4), 1e-9)
	assert.InDelta(t, 0.46, Intensity(1, 10, 0.4), 1e-9)
	assert.Equal(t, 1.0, Intensity(10, 10, 0.4))
	assert.Equal(t, 1.0, Intensity(3, 0, 0.4))
}

func TestScale_OnlyCountedCells(t *testing.T) {
	g := Align(Log{Recorded(4), Recorded(0), Absent(), Recorded(8)}, time.Wednesday, 2)
	got := Scale(g, DefaultMinIntensity)

	assert.Len(t, got, 2)
	end := g.EndIndex()
	assert.Equal(t, 1.0, got[end])
	assert.InDelta(t, 0.7, got[end-3], 1e-9)
}
