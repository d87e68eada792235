package calendar

import (
	"fmt"
	"regexp"
)

// Theme holds the colors and opacities used to style a card.
type Theme struct {
	Background   string  `yaml:"background"`
	Accent       string  `yaml:"accent"`
	Label        string  `yaml:"label"`
	ZeroColor    string  `yaml:"zero_color"`
	ZeroOpacity  float64 `yaml:"zero_opacity"`
	FutureColor  string  `yaml:"future_color"`
	MinIntensity float64 `yaml:"min_intensity"`
}

// DefaultTheme returns the dark theme of the public badge.
func DefaultTheme() Theme {
	return Theme{
		Background:   "#323437",
		Accent:       "#e2b714",
		Label:        "#a0a0a0",
		ZeroColor:    "#646669",
		ZeroOpacity:  0.35,
		FutureColor:  "#323437",
		MinIntensity: DefaultMinIntensity,
	}
}

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate checks that colors are hex values and that zero days stay
// dimmer than the faintest Counted day.
func (t Theme) Validate() error {
	colors := map[string]string{
		"background":   t.Background,
		"accent":       t.Accent,
		"label":        t.Label,
		"zero_color":   t.ZeroColor,
		"future_color": t.FutureColor,
	}
	for name, c := range colors {
		if !hexColor.MatchString(c) {
			return fmt.Errorf("theme %s: invalid color %q", name, c)
		}
	}
	if t.MinIntensity <= 0 || t.MinIntensity > 1 {
		return fmt.Errorf("theme min_intensity must be in (0, 1], got %v", t.MinIntensity)
	}
	if t.ZeroOpacity < 0 || t.ZeroOpacity >= t.MinIntensity {
		return fmt.Errorf("theme zero_opacity must be in [0, min_intensity), got %v", t.ZeroOpacity)
	}
	return nil
}

// Style is the fill of a single cell.
type Style struct {
	Color   string
	Opacity float64
}

// Resolve maps a cell and its intensity onto a fill. intensity is ignored
// for Future and Zero cells.
func Resolve(t Theme, c Cell, intensity float64) Style {
	switch c.Kind {
	case Counted:
		return Style{Color: t.Accent, Opacity: intensity}
	case Zero:
		return Style{Color: t.ZeroColor, Opacity: t.ZeroOpacity}
	default:
		return Style{Color: t.FutureColor, Opacity: 0}
	}
}
