package calendar

import "time"

// DaysPerWeek is the number of rows in every grid column.
const DaysPerWeek = 7

// DefaultWeeks is the grid width used when no other width is configured.
const DefaultWeeks = 53

// Day is one entry of a daily activity log. A day without a recorded count
// is absent, which is not the same as a recorded count of zero upstream but
// renders identically.
type Day struct {
	Count    int
	Recorded bool
}

// Recorded returns a day with a recorded count. Negative counts are treated
// as absent.
func Recorded(n int) Day {
	if n < 0 {
		return Day{}
	}
	return Day{Count: n, Recorded: true}
}

// Absent returns a day with no recorded count.
func Absent() Day {
	return Day{}
}

// Log is an oldest-first series of daily counts. The last element is today.
type Log []Day

// CellKind classifies a grid cell.
type CellKind uint8

const (
	// Future marks a day after today.
	Future CellKind = iota
	// Zero marks a past or present day without activity or without history.
	Zero
	// Counted marks a past or present day with a positive count.
	Counted
)

func (k CellKind) String() string {
	switch k {
	case Future:
		return "future"
	case Zero:
		return "zero"
	case Counted:
		return "counted"
	default:
		return "unknown"
	}
}

// Cell is the state of one grid position. Count is only meaningful for
// Counted cells and is always >= 1 there.
type Cell struct {
	Kind  CellKind
	Count int
}

// Grid is a fixed-size calendar of weeks*7 cells addressed by
// week*7 + dayOfWeek. It is built by Align and never mutated afterwards.
type Grid struct {
	cells []Cell
	weeks int
	today time.Weekday
}

// Align places log onto a grid of the given width so that the cell at
// EndIndex represents today. Cells after today are Future, cells older than
// the available history are Zero.
//
// When log holds more days than the grid can show, only the most recent
// EndIndex()+1 days are placed and the older ones are dropped.
//
// weeks < 1 falls back to DefaultWeeks, and today is reduced modulo 7.
func Align(log Log, today time.Weekday, weeks int) Grid {
	if weeks < 1 {
		weeks = DefaultWeeks
	}
	today = ((today % DaysPerWeek) + DaysPerWeek) % DaysPerWeek

	end := endIndex(weeks, today)
	cells := make([]Cell, weeks*DaysPerWeek)
	for i := 0; i <= end; i++ {
		cells[end-i] = cellFor(log, len(log)-1-i)
	}
	for i := end + 1; i < len(cells); i++ {
		cells[i] = Cell{Kind: Future}
	}

	return Grid{cells: cells, weeks: weeks, today: today}
}

func cellFor(log Log, dataIndex int) Cell {
	if dataIndex < 0 {
		return Cell{Kind: Zero}
	}
	day := log[dataIndex]
	if !day.Recorded || day.Count <= 0 {
		return Cell{Kind: Zero}
	}
	return Cell{Kind: Counted, Count: day.Count}
}

func endIndex(weeks int, today time.Weekday) int {
	return (weeks-1)*DaysPerWeek + int(today)
}

// Len returns the number of cells, always Weeks()*7.
func (g Grid) Len() int { return len(g.cells) }

// Weeks returns the number of columns.
func (g Grid) Weeks() int { return g.weeks }

// Today returns the weekday the grid is anchored on.
func (g Grid) Today() time.Weekday { return g.today }

// EndIndex returns the index of the cell representing today.
func (g Grid) EndIndex() int { return endIndex(g.weeks, g.today) }

// At returns the cell at index i.
func (g Grid) At(i int) Cell { return g.cells[i] }

// Cells returns a copy of all cells in index order.
func (g Grid) Cells() []Cell {
	out := make([]Cell, len(g.cells))
	copy(out, g.cells)
	return out
}

// Position returns the column (week) and row (day of week) of index i.
func Position(i int) (week, day int) {
	return i / DaysPerWeek, i % DaysPerWeek
}
