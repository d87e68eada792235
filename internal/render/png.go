package render

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/junkd0g/streakcal/internal/calendar"
)

type fonts struct {
	bold    *truetype.Font
	regular *truetype.Font
}

var loadFonts = sync.OnceValues(func() (fonts, error) {
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return fonts{}, fmt.Errorf("failed to parse bold font: %w", err)
	}
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return fonts{}, fmt.Errorf("failed to parse regular font: %w", err)
	}
	return fonts{bold: bold, regular: regular}, nil
})

func face(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{Size: size})
}

// PNGRenderer rasterizes cards with gg.
type PNGRenderer struct {
	layout Layout
}

// NewPNGRenderer creates a PNG renderer.
func NewPNGRenderer(layout Layout) *PNGRenderer {
	return &PNGRenderer{layout: layout}
}

func (r *PNGRenderer) ContentType() string { return "image/png" }

// Render draws the streak card and encodes it as PNG.
func (r *PNGRenderer) Render(_ context.Context, w io.Writer, card Card) error {
	f, err := loadFonts()
	if err != nil {
		return err
	}

	l := r.layout
	dc := r.canvas(card.Theme)

	dc.SetColor(parseHex(card.Theme.Accent))
	dc.SetFontFace(face(f.bold, l.StreakSize))
	dc.DrawString(strconv.Itoa(card.Streak), l.StreakX, l.StreakY)

	dc.SetColor(parseHex(card.Theme.Label))
	dc.SetFontFace(face(f.regular, l.LabelSize))
	dc.DrawString("Current Streak", l.LabelX, l.LabelY)

	geo := l.Geometry(card.Grid.Weeks)
	for _, c := range card.Grid.Cells {
		if c.Style.Opacity == 0 {
			continue
		}
		rect := geo.Rect(c)
		dc.SetColor(withOpacity(c.Style.Color, c.Style.Opacity))
		dc.DrawRoundedRectangle(rect.X, rect.Y, rect.Size, rect.Size, rect.Radius)
		dc.Fill()
	}

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// RenderFallback draws message centered on an empty card.
func (r *PNGRenderer) RenderFallback(_ context.Context, w io.Writer, message string, theme calendar.Theme) error {
	f, err := loadFonts()
	if err != nil {
		return err
	}

	l := r.layout
	dc := r.canvas(theme)
	dc.SetColor(parseHex(theme.Accent))
	dc.SetFontFace(face(f.bold, l.MessageSize))
	dc.DrawStringAnchored(message, float64(l.Width)/2, float64(l.Height)/2, 0.5, 0.5)

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

func (r *PNGRenderer) canvas(theme calendar.Theme) *gg.Context {
	dc := gg.NewContext(r.layout.Width, r.layout.Height)
	dc.SetColor(parseHex(theme.Background))
	dc.Clear()
	return dc
}
