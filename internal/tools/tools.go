package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/junkd0g/streakcal/internal/badge"
	"github.com/junkd0g/streakcal/internal/render"
)

// Renderer produces streak card images. It is satisfied by *badge.Service.
type Renderer interface {
	Render(ctx context.Context, req badge.Request) badge.Result
	DefaultFormat() render.Format
}

// Register registers all tools with the MCP server.
func Register(s *server.MCPServer, r Renderer) {
	registerStreakCalendarTool(s, r)
}

func registerStreakCalendarTool(s *server.MCPServer, r Renderer) {
	tool := mcp.NewTool("generate_streak_calendar",
		mcp.WithDescription("Generates a streak calendar card for a Monkeytype user: the current streak plus a heatmap of daily test activity over the last year. Supports SVG, PNG and JPG output formats."),
		mcp.WithString("username",
			mcp.Required(),
			mcp.Description("The Monkeytype username to render"),
		),
		mcp.WithString("format",
			mcp.Description("Output format: svg, png or jpg. Defaults to the output_path extension, then to svg"),
		),
		mcp.WithString("output_path",
			mcp.Description("The output path for the image file. Defaults to ./<username>-streak.<format> in the working directory"),
		),
	)

	s.AddTool(tool, streakCalendarHandler(r))
}

func streakCalendarHandler(r Renderer) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		username, ok := request.Params.Arguments["username"].(string)
		if !ok || strings.TrimSpace(username) == "" {
			return newToolResultError("username is required"), nil
		}

		outputPath, _ := request.Params.Arguments["output_path"].(string)
		formatArg, _ := request.Params.Arguments["format"].(string)

		format, err := resolveFormat(formatArg, outputPath, r.DefaultFormat())
		if err != nil {
			return newToolResultError(err.Error()), nil
		}

		res := r.Render(ctx, badge.Request{Username: username, Format: string(format)})
		if res.Outcome != badge.Success {
			return newToolResultError(fmt.Sprintf("failed to generate streak calendar: %s (%s)", res.Outcome.Message(), res.Outcome)), nil
		}

		if outputPath == "" {
			outputPath = res.Username + "-streak" + res.Format.Extension()
		}
		if dir := filepath.Dir(outputPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return newToolResultError(fmt.Sprintf("failed to create output directory: %v", err)), nil
			}
		}
		if err := os.WriteFile(outputPath, res.Body, 0o644); err != nil {
			return newToolResultError(fmt.Sprintf("failed to write image: %v", err)), nil
		}

		return mcp.NewToolResultText(buildSummary(res, outputPath)), nil
	}
}

// resolveFormat picks the explicit format, else the output file extension,
// else fallback.
func resolveFormat(formatArg, outputPath string, fallback render.Format) (render.Format, error) {
	if formatArg != "" {
		return render.ParseFormat(formatArg)
	}
	if ext := strings.TrimPrefix(filepath.Ext(outputPath), "."); ext != "" {
		f, err := render.ParseFormat(ext)
		if err != nil {
			return "", fmt.Errorf("cannot infer format from %s: %w", outputPath, err)
		}
		return f, nil
	}
	return fallback, nil
}

func newToolResultError(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: message,
			},
		},
		IsError: true,
	}
}

func buildSummary(res badge.Result, outputPath string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Streak calendar generated successfully!\n\nOutput: %s\n\n", outputPath))
	sb.WriteString(fmt.Sprintf("User: %s\n", res.Username))
	sb.WriteString(fmt.Sprintf("  - Format: %s (%d bytes)\n", res.Format, len(res.Body)))
	sb.WriteString(fmt.Sprintf("  - Current streak: %d\n", res.Streak))
	sb.WriteString(fmt.Sprintf("  - Active days: %d\n", res.Counted))
	if res.Counted > 0 {
		sb.WriteString(fmt.Sprintf("  - Busiest day: %d tests\n", res.MaxCount))
	}
	return sb.String()
}
