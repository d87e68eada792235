package render

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/junkd0g/streakcal/internal/calendar"
)

// Format names an output image type.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
	FormatJPG Format = "jpg"
)

// Formats lists every supported format.
var Formats = []Format{FormatSVG, FormatPNG, FormatJPG}

// ParseFormat resolves a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "svg":
		return FormatSVG, nil
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPG, nil
	default:
		return "", fmt.Errorf("unsupported format %q", s)
	}
}

// Extension returns the file extension for f including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// Card is everything a renderer draws for a successful request.
type Card struct {
	Username string
	Streak   int
	Grid     calendar.StyledGrid
	Theme    calendar.Theme
}

// Renderer writes a card, or a placeholder with the same dimensions, to w.
type Renderer interface {
	ContentType() string
	Render(ctx context.Context, w io.Writer, card Card) error
	RenderFallback(ctx context.Context, w io.Writer, message string, theme calendar.Theme) error
}

// New returns the renderer for format.
func New(format Format, layout Layout) (Renderer, error) {
	switch format {
	case FormatSVG:
		return &SVGRenderer{layout: layout}, nil
	case FormatPNG:
		return &PNGRenderer{layout: layout}, nil
	case FormatJPG:
		return &GraphvizRenderer{layout: layout}, nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// parseHex converts #rgb or #rrggbb into an opaque color. Invalid input
// yields black.
func parseHex(s string) color.NRGBA {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil || len(s) != 6 {
		return color.NRGBA{A: 0xff}
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

// withOpacity returns hex as a non-premultiplied color with alpha opacity.
func withOpacity(hex string, opacity float64) color.NRGBA {
	c := parseHex(hex)
	c.A = uint8(math.Round(math.Max(0, math.Min(1, opacity)) * 255))
	return c
}

func hexRGBA(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}
