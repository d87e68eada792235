package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/junkd0g/streakcal/internal/calendar"
)

// GraphvizRenderer lays the card out as a neato graph with pinned node
// positions and renders it to JPEG.
type GraphvizRenderer struct {
	layout Layout
}

// NewGraphvizRenderer creates a graphviz backed JPEG renderer.
func NewGraphvizRenderer(layout Layout) *GraphvizRenderer {
	return &GraphvizRenderer{layout: layout}
}

func (r *GraphvizRenderer) ContentType() string { return "image/jpeg" }

// Render writes the card as JPEG.
func (r *GraphvizRenderer) Render(ctx context.Context, w io.Writer, card Card) error {
	return r.render(ctx, w, GenerateDOT(r.layout, card))
}

// RenderFallback writes a placeholder JPEG with message centered.
func (r *GraphvizRenderer) RenderFallback(ctx context.Context, w io.Writer, message string, theme calendar.Theme) error {
	return r.render(ctx, w, GenerateFallbackDOT(r.layout, message, theme))
}

func (r *GraphvizRenderer) render(ctx context.Context, w io.Writer, dot string) error {
	g, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("failed to create graphviz: %w", err)
	}
	defer g.Close()

	graph, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return fmt.Errorf("failed to parse DOT: %w", err)
	}
	defer graph.Close()

	var buf bytes.Buffer
	if err := g.SetLayout(graphviz.NEATO).Render(ctx, graph, graphviz.JPG, &buf); err != nil {
		return fmt.Errorf("failed to render graph: %w", err)
	}

	_, err = w.Write(buf.Bytes())
	return err
}

// GenerateDOT describes the card as an undirected graph whose nodes are
// pinned to canvas coordinates. Graphviz measures y upwards, so every
// position is flipped against the canvas height.
func GenerateDOT(l Layout, card Card) string {
	var sb strings.Builder
	writeGraphHeader(&sb, l, card.Theme)

	sb.WriteString(fmt.Sprintf("  streak [shape=plaintext, label=\"%d\", fontname=\"Helvetica-Bold\", fontsize=%g, fontcolor=\"%s\", pos=\"%s\"];\n",
		card.Streak, l.StreakSize, card.Theme.Accent, pin(l, l.StreakX+l.StreakSize/2, l.StreakY-l.StreakSize/3)))
	sb.WriteString(fmt.Sprintf("  label [shape=plaintext, label=\"Current Streak\", fontname=\"Helvetica\", fontsize=%g, fontcolor=\"%s\", pos=\"%s\"];\n\n",
		l.LabelSize, card.Theme.Label, pin(l, l.LabelX+l.LabelSize*3.5, l.LabelY-l.LabelSize/3)))

	geo := l.Geometry(card.Grid.Weeks)
	sb.WriteString(fmt.Sprintf("  node [shape=box, style=\"rounded,filled\", fixedsize=true, width=%.4f, height=%.4f, label=\"\", penwidth=0];\n",
		geo.Cell/72, geo.Cell/72))
	for _, c := range card.Grid.Cells {
		if c.Style.Opacity == 0 {
			continue
		}
		rect := geo.Rect(c)
		sb.WriteString(fmt.Sprintf("  %s [fillcolor=\"%s\", pos=\"%s\"];\n",
			cellName(c.Index), hexRGBA(withOpacity(c.Style.Color, c.Style.Opacity)),
			pin(l, rect.X+rect.Size/2, rect.Y+rect.Size/2)))
	}

	sb.WriteString("}\n")
	return sb.String()
}

// GenerateFallbackDOT describes a card that only carries message.
func GenerateFallbackDOT(l Layout, message string, theme calendar.Theme) string {
	var sb strings.Builder
	writeGraphHeader(&sb, l, theme)
	sb.WriteString(fmt.Sprintf("  message [shape=plaintext, label=\"%s\", fontname=\"Helvetica-Bold\", fontsize=%g, fontcolor=\"%s\", pos=\"%s\"];\n",
		escapeDOT(message), l.MessageSize, theme.Accent, pin(l, float64(l.Width)/2, float64(l.Height)/2)))
	sb.WriteString("}\n")
	return sb.String()
}

func writeGraphHeader(sb *strings.Builder, l Layout, theme calendar.Theme) {
	sb.WriteString("graph Calendar {\n")
	sb.WriteString("  layout=neato;\n")
	sb.WriteString("  inputscale=72;\n")
	sb.WriteString("  notranslate=true;\n")
	sb.WriteString("  dpi=72;\n")
	sb.WriteString("  pad=0;\n")
	sb.WriteString("  margin=0;\n")
	sb.WriteString(fmt.Sprintf("  bgcolor=\"%s\";\n", theme.Background))
	sb.WriteString(fmt.Sprintf("  viewport=\"%d,%d,1,%g,%g\";\n\n", l.Width, l.Height, float64(l.Width)/2, float64(l.Height)/2))

	// Invisible corners keep the bounding box at the full canvas.
	sb.WriteString(fmt.Sprintf("  corner_min [style=invis, shape=point, width=0, pos=\"%s\"];\n", pin(l, 0, float64(l.Height))))
	sb.WriteString(fmt.Sprintf("  corner_max [style=invis, shape=point, width=0, pos=\"%s\"];\n\n", pin(l, float64(l.Width), 0)))
}

func pin(l Layout, x, y float64) string {
	return fmt.Sprintf("%.2f,%.2f!", x, float64(l.Height)-y)
}

func cellName(index int) string {
	return fmt.Sprintf("c%d", index)
}

func escapeDOT(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	return strings.ReplaceAll(s, "\"", "\\\"")
}
