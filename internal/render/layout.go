package render

import (
	"math"

	"github.com/junkd0g/streakcal/internal/calendar"
)

// Layout holds the card geometry shared by every renderer.
type Layout struct {
	Width     int     // canvas width in pixels
	Height    int     // canvas height in pixels
	GridLeft  float64 // left edge of the calendar area
	GridRight float64 // right edge of the calendar area
	MaxPitch  float64 // largest distance between two cell origins
	CellRatio float64 // share of the pitch covered by the cell
	Radius    float64 // corner radius as a share of the cell size

	StreakX, StreakY float64 // baseline of the streak number
	LabelX, LabelY   float64 // baseline of the label
	StreakSize       float64
	LabelSize        float64
	MessageSize      float64
}

// DefaultLayout returns the 800x250 card geometry.
func DefaultLayout() Layout {
	return Layout{
		Width:       800,
		Height:      250,
		GridLeft:    250,
		GridRight:   780,
		MaxPitch:    26,
		CellRatio:   0.8,
		Radius:      0.2,
		StreakX:     60,
		StreakY:     110,
		LabelX:      60,
		LabelY:      170,
		StreakSize:  72,
		LabelSize:   20,
		MessageSize: 32,
	}
}

// Rect is an axis-aligned square in canvas coordinates, origin top-left.
type Rect struct {
	X, Y, Size, Radius float64
}

// Geometry is the resolved placement for a grid of a given width.
type Geometry struct {
	Pitch   float64
	Cell    float64
	OriginX float64
	OriginY float64
	Radius  float64
}

// Geometry fits weeks columns into the calendar area and centers the
// resulting block vertically.
func (l Layout) Geometry(weeks int) Geometry {
	if weeks < 1 {
		weeks = 1
	}
	available := l.GridRight - l.GridLeft
	pitch := math.Min(l.MaxPitch, available/float64(weeks))
	cell := pitch * l.CellRatio
	blockHeight := pitch*calendar.DaysPerWeek - (pitch - cell)

	return Geometry{
		Pitch:   pitch,
		Cell:    cell,
		OriginX: l.GridRight - (pitch*float64(weeks) - (pitch - cell)),
		OriginY: (float64(l.Height) - blockHeight) / 2,
		Radius:  cell * l.Radius,
	}
}

// Rect returns the square of a styled cell. Weeks run left to right and
// days top to bottom.
func (g Geometry) Rect(c calendar.StyledCell) Rect {
	return Rect{
		X:      g.OriginX + float64(c.Week)*g.Pitch,
		Y:      g.OriginY + float64(c.Day)*g.Pitch,
		Size:   g.Cell,
		Radius: g.Radius,
	}
}
