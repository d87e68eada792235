package render

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/junkd0g/streakcal/internal/calendar"
)

const fontFamily = "'Courier Prime', monospace"

// SVGRenderer writes cards as SVG documents.
type SVGRenderer struct {
	layout Layout
}

// NewSVGRenderer creates an SVG renderer.
func NewSVGRenderer(layout Layout) *SVGRenderer {
	return &SVGRenderer{layout: layout}
}

func (r *SVGRenderer) ContentType() string { return "image/svg+xml" }

// Render writes the streak card as SVG.
func (r *SVGRenderer) Render(_ context.Context, w io.Writer, card Card) error {
	l := r.layout
	theme := card.Theme

	var sb strings.Builder
	r.writeHeader(&sb, theme)
	if card.Username != "" {
		sb.WriteString(fmt.Sprintf("  <title>%s activity</title>\n", html.EscapeString(card.Username)))
	}

	sb.WriteString(fmt.Sprintf("  <text x=\"%g\" y=\"%g\" font-family=\"%s\" font-size=\"%g\" fill=\"%s\" font-weight=\"bold\">%d</text>\n",
		l.StreakX, l.StreakY, fontFamily, l.StreakSize, theme.Accent, card.Streak))
	sb.WriteString(fmt.Sprintf("  <text x=\"%g\" y=\"%g\" font-family=\"%s\" font-size=\"%g\" fill=\"%s\" font-weight=\"500\">Current Streak</text>\n",
		l.LabelX, l.LabelY, fontFamily, l.LabelSize, theme.Label))

	geo := l.Geometry(card.Grid.Weeks)
	sb.WriteString("  <g>\n")
	for _, c := range card.Grid.Cells {
		// future days stay out of the document entirely
		if c.Style.Opacity == 0 {
			continue
		}
		rect := geo.Rect(c)
		sb.WriteString(fmt.Sprintf("    <rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" rx=\"%.2f\" fill=\"%s\" opacity=\"%.2f\"/>\n",
			rect.X, rect.Y, rect.Size, rect.Size, rect.Radius, c.Style.Color, c.Style.Opacity))
	}
	sb.WriteString("  </g>\n")
	sb.WriteString("</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// RenderFallback writes a placeholder with message centered on the card.
func (r *SVGRenderer) RenderFallback(_ context.Context, w io.Writer, message string, theme calendar.Theme) error {
	l := r.layout

	var sb strings.Builder
	r.writeHeader(&sb, theme)
	sb.WriteString(fmt.Sprintf("  <text x=\"%d\" y=\"%d\" font-family=\"%s\" font-size=\"%g\" fill=\"%s\" text-anchor=\"middle\" dominant-baseline=\"middle\" font-weight=\"bold\">%s</text>\n",
		l.Width/2, l.Height/2, fontFamily, l.MessageSize, theme.Accent, html.EscapeString(message)))
	sb.WriteString("</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func (r *SVGRenderer) writeHeader(sb *strings.Builder, theme calendar.Theme) {
	l := r.layout
	sb.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	sb.WriteString(fmt.Sprintf("<svg width=\"%d\" height=\"%d\" viewBox=\"0 0 %d %d\" xmlns=\"http://www.w3.org/2000/svg\">\n",
		l.Width, l.Height, l.Width, l.Height))
	sb.WriteString(fmt.Sprintf("  <rect width=\"%d\" height=\"%d\" fill=\"%s\"/>\n", l.Width, l.Height, theme.Background))
}
