package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/sfrayan/goGreen/internal/calendar"
	"github.com/sfrayan/goGreen/internal/config"
	"github.com/sfrayan/goGreen/internal/runner"
	"github.com/sfrayan/goGreen/internal/schedule"
	"github.com/sfrayan/goGreen/internal/store"
)

// Contribution graph greens, lightest to darkest, plus the empty cell.
var (
	shadeEmpty = lipgloss.Color("#ebedf0")
	shades     = []lipgloss.Color{"#9be9a8", "#40c463", "#30a14e", "#216e39"}
	shadeRunes = []string{"░", "▒", "▓", "█"}
)

const (
	emptyCell   = "·"
	outsideCell = " "
)

// PreviewOptions holds flags for the preview command.
type PreviewOptions struct {
	*RootOptions
	flags       *config.Config
	WithHistory bool
}

// PreviewResult is the JSON form of a preview.
type PreviewResult struct {
	Year      int            `json:"year"`
	Mode      string         `json:"mode"`
	WeekStart string         `json:"week_start"`
	Columns   int            `json:"columns"`
	Total     int            `json:"total"`
	Days      int            `json:"days"`
	Clipped   int            `json:"clipped,omitempty"`
	Counts    map[string]int `json:"counts"`
	// Recorded holds commits earlier runs already made in the year.
	Recorded map[string]int `json:"recorded,omitempty"`
}

// NewPreviewCommand creates the preview command.
func NewPreviewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PreviewOptions{RootOptions: rootOpts, flags: config.Default(time.Now())}

	cmd := &cobra.Command{
		Use:   "preview [year] [maxPerDay]",
		Short: "Show the contribution graph a run would produce",
		Long: `Render the planned contribution graph for a year without touching any
repository. Rows are weekdays, columns are weeks; darker cells get more
commits. Cells outside the year are left blank.

Examples:
  gogreen preview 2025 --text HELLO
  gogreen preview 2025 --text HI --offset 10 --week-start monday
  gogreen preview 2024 4 --seed 7 --format json
  gogreen preview 2025 --text HI --with-history`,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(opts, cmd, args)
		},
	}

	bindPlanFlags(cmd.Flags(), opts.flags)
	cmd.Flags().BoolVar(&opts.WithHistory, "with-history", false, "add commits recorded by earlier runs to the graph")
	cmd.Flags().StringVar(&opts.flags.HistoryDB, "history-db", opts.flags.HistoryDB, "SQLite run history database")

	return cmd
}

func runPreview(opts *PreviewOptions, cmd *cobra.Command, args []string) error {
	logger := opts.logger(cmd)
	out := newFormatter(opts.RootOptions, cmd)

	cfg, err := loadConfig(opts.RootOptions, cmd, opts.flags, args, logger)
	if err != nil {
		_ = out.Error(CodeConfig, err)
		return err
	}
	cfg.DryRun = true

	plan, _ := runner.New(cfg, nil, nil, runner.WithLogger(logger)).Plan()
	grid := calendar.NewGrid(plan.Year, cfg.Weekday())

	var recorded calendar.DateCommitMap
	if opts.WithHistory {
		recorded = loadRecorded(cmd.Context(), cfg.HistoryDB, plan.Year, logger)
	}

	if opts.Format == "json" {
		return out.Success(PreviewResult{
			Year:      plan.Year,
			Mode:      plan.Mode.String(),
			WeekStart: strings.ToLower(grid.WeekStart.String()),
			Columns:   grid.Columns(),
			Total:     plan.Total(),
			Days:      plan.Counts.Len(),
			Clipped:   plan.Clipped,
			Counts:    dayKeys(plan.Counts),
			Recorded:  dayKeys(recorded),
		})
	}

	renderPreview(cmd.OutOrStdout(), plan, grid, recorded)
	return nil
}

// loadRecorded reads the commits already made in year from the run history.
// The overlay is best effort: a missing or unreadable database only warns.
func loadRecorded(ctx context.Context, path string, year int, logger *slog.Logger) calendar.DateCommitMap {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := os.Stat(path); err != nil {
		logger.Warn("no run history, showing the plan only", "path", path)
		return nil
	}
	st, err := store.Open(path)
	if err != nil {
		logger.Warn("could not open run history", "path", path, "error", err)
		return nil
	}
	defer st.Close()

	perDay, err := st.CommittedPerDay(ctx, year)
	if err != nil {
		logger.Warn("could not read run history", "path", path, "error", err)
		return nil
	}
	recorded := calendar.DateCommitMap{}
	for day, n := range perDay {
		d, err := calendar.ParseDate(day)
		if err != nil {
			logger.Warn("skipping malformed history day", "day", day)
			continue
		}
		recorded.Add(d, n)
	}
	return recorded
}

func dayKeys(m calendar.DateCommitMap) map[string]int {
	out := make(map[string]int, len(m))
	for d, n := range m {
		out[d.String()] = n
	}
	return out
}

// renderPreview draws plan as a weekday-by-week grid, stacking the planned
// counts on top of recorded ones. Colors are only emitted when w is a color
// terminal.
func renderPreview(w io.Writer, plan schedule.Plan, grid calendar.Grid, recorded calendar.DateCommitMap) {
	r := lipgloss.NewRenderer(w)
	header := r.NewStyle().Bold(true)
	empty := r.NewStyle().Foreground(shadeEmpty)
	styles := make([]lipgloss.Style, len(shades))
	for i, c := range shades {
		styles[i] = r.NewStyle().Foreground(c)
	}

	summary := fmt.Sprintf("%d  %s  %d commits on %d days", plan.Year, plan.Mode, plan.Total(), plan.Counts.Len())
	if plan.Clipped > 0 {
		summary += fmt.Sprintf("  (%d cells clipped)", plan.Clipped)
	}
	if n := recorded.Total(); n > 0 {
		summary += fmt.Sprintf("  +%d already committed", n)
	}
	fmt.Fprintln(w, header.Render(summary))

	count := func(d calendar.Date) int { return plan.Counts.Get(d) + recorded.Get(d) }
	peak := 0
	for d := range plan.Counts {
		peak = max(peak, count(d))
	}
	for d := range recorded {
		peak = max(peak, count(d))
	}

	var b strings.Builder
	for row := 0; row < calendar.DaysPerWeek; row++ {
		b.Reset()
		day := time.Weekday((int(grid.WeekStart) + row) % calendar.DaysPerWeek)
		b.WriteString(day.String()[:3])
		b.WriteByte(' ')
		for col := 0; col < grid.Columns(); col++ {
			d, ok := grid.DateAt(col, row)
			switch n := count(d); {
			case !ok:
				b.WriteString(outsideCell)
			case n == 0:
				b.WriteString(empty.Render(emptyCell))
			default:
				level := shadeLevel(n, peak)
				b.WriteString(styles[level].Render(shadeRunes[level]))
			}
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
}

// shadeLevel maps n in [1, peak] onto the shade indexes, rounding up so any
// commit is visible.
func shadeLevel(n, peak int) int {
	if peak <= 0 {
		return 0
	}
	level := (len(shades)*n+peak-1)/peak - 1
	return min(max(level, 0), len(shades)-1)
}
