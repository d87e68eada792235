package calendar

import "time"

// StyledCell is a grid cell together with its placement and fill.
type StyledCell struct {
	Index int
	Week  int
	Day   int
	Cell  Cell
	Style Style
}

// StyledGrid is the renderer-facing view of an aligned and styled grid.
type StyledGrid struct {
	Weeks    int
	EndIndex int
	MaxCount int
	Counted  int
	Cells    []StyledCell
}

// Build aligns log, scales its counts and resolves every cell against theme.
func Build(log Log, today time.Weekday, weeks int, theme Theme) StyledGrid {
	g := Align(log, today, weeks)
	intensities := Scale(g, theme.MinIntensity)

	cells := make([]StyledCell, g.Len())
	counted := 0
	for i := range cells {
		c := g.At(i)
		if c.Kind == Counted {
			counted++
		}
		week, day := Position(i)
		cells[i] = StyledCell{
			Index: i,
			Week:  week,
			Day:   day,
			Cell:  c,
			Style: Resolve(theme, c, intensities[i]),
		}
	}

	return StyledGrid{
		Weeks:    g.Weeks(),
		EndIndex: g.EndIndex(),
		MaxCount: MaxCount(g),
		Counted:  counted,
		Cells:    cells,
	}
}
