// Package main provides the CLI entrypoint for clef.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/clef/internal/config"
	"github.com/verte-zerg/clef/internal/model"
	"github.com/verte-zerg/clef/internal/pitch"
	"github.com/verte-zerg/clef/internal/pool"
	"github.com/verte-zerg/clef/internal/stats"
	"github.com/verte-zerg/clef/internal/statsui"
	"github.com/verte-zerg/clef/internal/store"
	"github.com/verte-zerg/clef/internal/tui"
)

const (
	defaultDifficulty  = "medium"
	defaultTimeLimit   = 10
	defaultQuestions   = 20
	defaultCurveWindow = 20
)

// rangePreset is the note range used when --low/--high are not given.
type rangePreset struct {
	low  string
	high string
}

var rangePresets = map[model.Difficulty]rangePreset{
	model.Easy:   {low: "C4", high: "C5"},
	model.Medium: {low: "G3", high: "C6"},
	model.Hard:   {low: "Ab3", high: "C#6"},
}

var (
	practiceDifficulty string
	practiceTimed      bool
	practiceTimeLimit  int
	practiceQuestions  int
	practiceLow        string
	practiceHigh       string

	statsDifficulty  string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "clef",
		Short:         "TUI sight-reading trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().StringVar(&practiceDifficulty, "difficulty", defaultDifficulty, "difficulty tier (easy, medium, hard)")
	rootCmd.Flags().BoolVar(&practiceTimed, "timed", false, "limit the time per note")
	rootCmd.Flags().IntVar(&practiceTimeLimit, "time-limit", defaultTimeLimit, "seconds per note when timed")
	rootCmd.Flags().IntVar(&practiceQuestions, "questions", defaultQuestions, "notes per round (0 = unlimited)")
	rootCmd.Flags().StringVar(&practiceLow, "low", "", "lowest note, e.g. C4 (default: tier preset)")
	rootCmd.Flags().StringVar(&practiceHigh, "high", "", "highest note, e.g. C5 (default: tier preset)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "difficulty", &practiceDifficulty, fileCfg.Practice.Difficulty)
	applyBoolConfig(cmd, "timed", &practiceTimed, fileCfg.Practice.Timed)
	applyIntConfig(cmd, "time-limit", &practiceTimeLimit, fileCfg.Practice.TimeLimit)
	applyIntConfig(cmd, "questions", &practiceQuestions, fileCfg.Practice.Questions)
	applyStringConfig(cmd, "low", &practiceLow, fileCfg.Practice.Low)
	applyStringConfig(cmd, "high", &practiceHigh, fileCfg.Practice.High)

	difficulty := model.Difficulty(strings.ToLower(strings.TrimSpace(practiceDifficulty)))
	if !difficulty.Valid() {
		return fmt.Errorf("--difficulty must be easy, medium, or hard")
	}
	if practiceQuestions < 0 {
		return fmt.Errorf("--questions must be >= 0")
	}
	if practiceTimed && practiceTimeLimit < 1 {
		return fmt.Errorf("--time-limit must be >= 1")
	}

	preset := rangePresets[difficulty]
	if practiceLow == "" {
		practiceLow = preset.low
	}
	if practiceHigh == "" {
		practiceHigh = preset.high
	}
	low, err := pitch.Parse(practiceLow)
	if err != nil {
		return fmt.Errorf("invalid --low value: %w", err)
	}
	high, err := pitch.Parse(practiceHigh)
	if err != nil {
		return fmt.Errorf("invalid --high value: %w", err)
	}
	if low.Abs() > high.Abs() {
		return fmt.Errorf("--low %s is above --high %s", low, high)
	}

	exclusions, err := resolveExclusions(fileCfg.Practice.Exclusions)
	if err != nil {
		return err
	}

	cfg := model.Config{
		Difficulty:    difficulty,
		Timed:         practiceTimed,
		TimeLimitSecs: practiceTimeLimit,
		Questions:     practiceQuestions,
		Low:           low,
		High:          high,
		Exclusions:    exclusions,
	}
	if !cfg.Timed {
		cfg.TimeLimitSecs = 0
	}

	storePath := config.DefaultDBPath()
	st, err := store.Open(storePath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctrl, events, err := tui.StartRound(cfg)
	if err != nil {
		return err
	}
	practiceModel := tui.NewModel(cfg, st, ctrl, events)
	program := tea.NewProgram(practiceModel, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		ctrl.Stop()
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	ctrl.Stop()
	return nil
}

// resolveExclusions parses the configured exclusion list, falling back
// to the default set when the config does not mention one.
func resolveExclusions(raw []string) ([]pitch.Pitch, error) {
	if raw == nil {
		return pool.DefaultExclusions(), nil
	}
	exclusions := make([]pitch.Pitch, 0, len(raw))
	for _, s := range raw {
		p, err := pitch.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid exclusion %q in config: %w", s, err)
		}
		exclusions = append(exclusions, p)
	}
	return exclusions, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsDifficulty, "difficulty", "", "difficulty filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N rounds")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print the report instead of opening the TUI")
	return cmd
}

func runStatsCmd(_ *cobra.Command, _ []string) error {
	difficulty := strings.ToLower(strings.TrimSpace(statsDifficulty))
	if difficulty != "" && !model.Difficulty(difficulty).Valid() {
		return fmt.Errorf("--difficulty must be easy, medium, or hard")
	}
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsCurveWindow < 1 {
		return fmt.Errorf("--curve-window must be >= 1")
	}

	cfg := model.StatsConfig{
		Difficulty:  difficulty,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}

	storePath := config.DefaultDBPath()
	st, err := store.Open(storePath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	// Piped output gets the plain report even without the flag.
	if statsPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		report, err := stats.BuildReport(context.Background(), st, cfg)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
		return stats.RenderReport(os.Stdout, report, cfg.CurveWindow, 0)
	}

	model := statsui.NewModel(st, cfg)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# clef configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# difficulty = %q       # Difficulty tier (easy, medium, hard)
# timed = false         # Limit the time per note
# time-limit = %d       # Seconds per note when timed
# questions = %d        # Notes per round (0 = unlimited)
# low = "C4"            # Lowest note (default: tier preset)
# high = "C5"           # Highest note (default: tier preset)
# exclusions = ["Gb3"]  # Spellings never shown on the staff
`,
		defaultDifficulty,
		defaultTimeLimit,
		defaultQuestions,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
