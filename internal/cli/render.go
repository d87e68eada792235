package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/junkd0g/streakcal/internal/badge"
	"github.com/junkd0g/streakcal/internal/calendar"
	"github.com/junkd0g/streakcal/internal/config"
	"github.com/junkd0g/streakcal/internal/profile"
	"github.com/junkd0g/streakcal/internal/render"
)

const defaultAPIURL = "https://api.monkeytype.com"

type renderOptions struct {
	username  string
	counts    string
	streak    int
	weekday   int
	weeks     int
	format    string
	output    string
	themeFile string
	apiURL    string
	timeout   time.Duration
	timezone  string
}

func newRenderCmd() *cobra.Command {
	opts := renderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a streak calendar card to a file",
		Long: `Render a streak calendar card.

With --username the profile is fetched from the profile API, exactly as the
badge server does. With --counts the daily counts are read from a JSON file
holding either an array (oldest day first, null for days without data) or a
full profile document.`,
		Example: `  streakctl render --username miodec -o streak.svg
  streakctl render --counts days.json --streak 3 --today-weekday 2 -o card.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.username, "username", "u", "", "Monkeytype username to fetch")
	f.StringVar(&opts.counts, "counts", "", "JSON file with daily counts")
	f.IntVar(&opts.streak, "streak", 0, "streak shown with --counts")
	f.IntVar(&opts.weekday, "today-weekday", -1, "weekday of the last day, 0=Sunday (default: today)")
	f.IntVar(&opts.weeks, "weeks", calendar.DefaultWeeks, "number of week columns")
	f.StringVarP(&opts.format, "format", "f", "", "svg, png or jpg (default: from --output, then svg)")
	f.StringVarP(&opts.output, "output", "o", "", "output file, - for stdout (default: <name>-streak.<format>)")
	f.StringVar(&opts.themeFile, "theme", "", "YAML theme file")
	f.StringVar(&opts.apiURL, "api-url", envOr("PROFILE_API_URL", defaultAPIURL), "profile API base URL")
	f.DurationVar(&opts.timeout, "timeout", 5*time.Second, "profile fetch timeout")
	f.StringVar(&opts.timezone, "timezone", envOr("TIMEZONE", "UTC"), "timezone used to find today")

	cmd.MarkFlagsMutuallyExclusive("username", "counts")
	cmd.MarkFlagsOneRequired("username", "counts")
	return cmd
}

func runRender(cmd *cobra.Command, opts renderOptions) error {
	ctx := cmd.Context()

	format, err := pickFormat(opts.format, opts.output)
	if err != nil {
		return err
	}
	if opts.weekday < -1 || opts.weekday > 6 {
		return fmt.Errorf("--today-weekday must be between 0 and 6 (or -1 for today), got %d", opts.weekday)
	}

	cfg := badge.DefaultConfig()
	cfg.Weeks = opts.weeks
	cfg.DefaultFormat = format
	if cfg.Location, err = time.LoadLocation(opts.timezone); err != nil {
		return fmt.Errorf("invalid --timezone: %w", err)
	}
	if opts.themeFile != "" {
		if cfg.Theme, err = config.LoadTheme(opts.themeFile); err != nil {
			return err
		}
		if err := cfg.Theme.Validate(); err != nil {
			return err
		}
	}
	if opts.weekday >= 0 {
		day := time.Weekday(opts.weekday)
		cfg.Now = func() time.Time { return onWeekday(time.Now().In(cfg.Location), day) }
	}

	client := profile.NewClient(opts.apiURL, opts.timeout)
	svc := badge.NewService(client, cfg)

	var res badge.Result
	if opts.username != "" {
		res = svc.Render(ctx, badge.Request{Username: opts.username, Format: string(format)})
		if res.Outcome != badge.Success {
			return fmt.Errorf("%s (%s)", res.Outcome.Message(), res.Outcome)
		}
	} else {
		p, err := loadCounts(opts.counts)
		if err != nil {
			return err
		}
		if opts.streak > 0 {
			p.Streak = opts.streak
		}
		if res, err = svc.RenderProfile(ctx, p, format); err != nil {
			return err
		}
	}

	name := res.Username
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(opts.counts), filepath.Ext(opts.counts))
	}
	return writeOutput(cmd, opts.output, name, res)
}

// pickFormat uses the explicit format, else the output extension, else svg.
func pickFormat(format, output string) (render.Format, error) {
	if format != "" {
		return render.ParseFormat(format)
	}
	if ext := strings.TrimPrefix(filepath.Ext(output), "."); ext != "" && output != "-" {
		return render.ParseFormat(ext)
	}
	return render.FormatSVG, nil
}

// loadCounts reads either a bare JSON array of daily counts or a profile
// document.
func loadCounts(path string) (*profile.Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read counts: %w", err)
	}

	var days []json.RawMessage
	if err := json.Unmarshal(raw, &days); err == nil {
		return &profile.Profile{Activity: profile.Sanitize(days)}, nil
	}

	p, err := profile.Decode(raw)
	if err != nil && !errors.Is(err, profile.ErrDataShape) {
		return nil, fmt.Errorf("counts file %s is neither an array nor a profile: %w", path, err)
	}
	return p, nil
}

func writeOutput(cmd *cobra.Command, output, name string, res badge.Result) error {
	if output == "-" {
		_, err := cmd.OutOrStdout().Write(res.Body)
		return err
	}
	if output == "" {
		output = name + "-streak" + res.Format.Extension()
	}

	if err := os.WriteFile(output, res.Body, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%s, %d bytes, %d active days)\n", output, res.Format, len(res.Body), res.Counted)
	return nil
}

// onWeekday moves t back to the most recent day falling on weekday.
func onWeekday(t time.Time, weekday time.Weekday) time.Time {
	diff := (int(t.Weekday()) - int(weekday) + 7) % 7
	return t.AddDate(0, 0, -diff)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
