// Package main provides the CLI entrypoint for trafficlens.
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

	"trafficlens/internal/config"
	"trafficlens/internal/csvio"
	"trafficlens/internal/model"
	"trafficlens/internal/sample"
	"trafficlens/internal/stats"
	"trafficlens/internal/store"
	"trafficlens/internal/tui"
)

const (
	defaultResults    = "results.txt"
	defaultSampleRows = 500
	dateFlagLayout    = "02-01-2006"
	dataFileLayout    = "02012006"
)

var (
	analyzeDate    string
	analyzeDataDir string
	analyzeResults string
	analyzeNoTUI   bool

	reportRun int64

	historyLabel string
	historySince string
	historyLast  int

	sampleRows      int
	sampleSeed      int64
	sampleJunctions string
	sampleOut       string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "trafficlens [file.csv]",
		Short:         "Traffic-sensor CSV analyzer",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runAnalyzeCmd,
	}

	rootCmd.Flags().StringVar(&analyzeDate, "date", "", "dataset date (DD-MM-YYYY); resolves traffic_dataDDMMYYYY.csv")
	rootCmd.Flags().StringVar(&analyzeDataDir, "data-dir", config.DefaultDataDir(), "directory with dated dataset files")
	rootCmd.Flags().StringVar(&analyzeResults, "results", defaultResults, "summary output file (appended)")
	rootCmd.Flags().BoolVar(&analyzeNoTUI, "no-tui", false, "print the report instead of opening the TUI")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newSampleCmd())

	return rootCmd
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "data-dir", &analyzeDataDir, fileCfg.Analyze.DataDir)
	applyStringConfig(cmd, "results", &analyzeResults, fileCfg.Analyze.Results)
	applyBoolConfig(cmd, "no-tui", &analyzeNoTUI, fileCfg.Analyze.NoTUI)

	path, label, err := resolveDataPath(args)
	if err != nil {
		return err
	}

	records, skipped, err := csvio.LoadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return dataFileError(path)
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	if len(records) == 0 {
		if skipped > 0 {
			return fmt.Errorf("no valid records in %s (%d rows skipped)", path, skipped)
		}
		return fmt.Errorf("no data in %s", path)
	}

	summary := stats.Aggregate(records)
	summary.Skipped = skipped
	if skipped > 0 {
		logErrf("Skipped %d malformed rows\n", skipped)
	}

	if err := stats.AppendResults(analyzeResults, summary, label); err != nil {
		return err
	}
	logErrf("Appended summary to %s\n", analyzeResults)

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	run := model.Run{
		AnalyzedAt: time.Now(),
		SourcePath: path,
		Label:      label,
		Summary:    summary,
	}
	if _, err := st.InsertRun(context.Background(), run); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	if analyzeNoTUI {
		return printReport(cmd, summary, label)
	}

	ui := tui.NewModel(st, &summary, label, path, model.HistoryFilter{})
	program := tea.NewProgram(ui, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func resolveDataPath(args []string) (path, label string, err error) {
	if len(args) == 1 {
		return args[0], datasetLabel(args[0]), nil
	}
	if analyzeDate == "" {
		return "", "", fmt.Errorf("provide a CSV path or --date DD-MM-YYYY")
	}
	parsed, err := time.ParseInLocation(dateFlagLayout, analyzeDate, time.Local)
	if err != nil {
		return "", "", fmt.Errorf("invalid --date value (expected DD-MM-YYYY): %w", err)
	}
	name := fmt.Sprintf("traffic_data%s.csv", parsed.Format(dataFileLayout))
	return filepath.Join(analyzeDataDir, name), analyzeDate, nil
}

// datasetLabel derives a short label from the data file name.
func datasetLabel(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), ".csv")
	trimmed := strings.TrimPrefix(base, "traffic_data")
	if trimmed == "" {
		return base
	}
	return trimmed
}

func dataFileError(path string) error {
	lines := []string{
		fmt.Sprintf("data file not found: %s", path),
		"Check the path, or generate a dataset with: trafficlens sample --out " + filepath.Base(path),
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}

func printReport(cmd *cobra.Command, summary model.Summary, label string) error {
	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, summary, label); err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}
	if _, err := fmt.Fprintln(out, ""); err != nil {
		return err
	}
	if err := stats.RenderHourTable(out, summary); err != nil {
		return fmt.Errorf("failed to render hour table: %w", err)
	}
	series := stats.HistogramFromSummary(summary)
	if err := stats.RenderHistogram(out, "Traffic Volume by Hour", series, 0, 0, false); err != nil {
		return fmt.Errorf("failed to render histogram: %w", err)
	}
	return nil
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

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the report for a stored run",
		Args:  cobra.NoArgs,
		RunE:  runReportCmd,
	}
	cmd.Flags().Int64Var(&reportRun, "run", 0, "run id (default: most recent)")
	return cmd
}

func runReportCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	var run model.RunAggregate
	if reportRun > 0 {
		run, err = st.GetRun(ctx, reportRun)
		if err != nil {
			return fmt.Errorf("run %d not found: %w", reportRun, err)
		}
	} else {
		latest, err := st.LatestRun(ctx)
		if err != nil {
			return fmt.Errorf("failed to load runs: %w", err)
		}
		if latest == nil {
			return fmt.Errorf("no runs stored yet; analyze a dataset first")
		}
		run = *latest
	}

	counts, err := st.GetHourCounts(ctx, run.RunID)
	if err != nil {
		return fmt.Errorf("failed to load hour counts: %w", err)
	}
	return printReport(cmd, stats.SummaryFromRun(run, counts), run.Label)
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse stored runs",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historyLabel, "label", "", "dataset label filter (substring)")
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N runs")
	return cmd
}

func runHistoryCmd(_ *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if historySince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", historySince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	filter := model.HistoryFilter{
		Label: historyLabel,
		Since: sinceTime,
		Last:  historyLast,
	}
	ui := tui.NewModel(st, nil, "", "", filter)
	program := tea.NewProgram(ui, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newSampleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Generate a synthetic traffic CSV",
		Args:  cobra.NoArgs,
		RunE:  runSampleCmd,
	}
	cmd.Flags().IntVar(&sampleRows, "rows", defaultSampleRows, "number of rows")
	cmd.Flags().Int64Var(&sampleSeed, "seed", 0, "random seed (0 = time-based)")
	cmd.Flags().StringVar(&sampleJunctions, "junctions", "", "comma-separated junction names")
	cmd.Flags().StringVar(&sampleOut, "out", "", "output file (default: stdout)")
	return cmd
}

func runSampleCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "rows", &sampleRows, fileCfg.Sample.Rows)
	applyStringConfig(cmd, "junctions", &sampleJunctions, fileCfg.Sample.Junctions)

	if sampleRows <= 0 {
		return fmt.Errorf("--rows must be greater than 0")
	}
	junctions := splitJunctions(sampleJunctions)

	gen := sample.New()
	if sampleSeed != 0 {
		gen = sample.NewSeeded(sampleSeed)
	}
	rows := gen.Generate(junctions, sampleRows)

	if sampleOut == "" {
		return sample.WriteCSV(cmd.OutOrStdout(), rows)
	}
	file, err := os.Create(sampleOut)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", sampleOut, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close after write error.
			_ = cerr
		}
	}()
	if err := sample.WriteCSV(file, rows); err != nil {
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", sampleOut, err)
	}
	logErrf("Wrote %d rows to %s\n", len(rows), sampleOut)
	return nil
}

func splitJunctions(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
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
	return fmt.Sprintf(`# trafficlens configuration
# Uncomment a value to enable it. CLI flags override config values.

[analyze]
# data-dir = %q       # Directory with traffic_dataDDMMYYYY.csv files
# results = %q        # Summary output file (appended)
# no-tui = false      # Print the report instead of opening the TUI

[sample]
# rows = %d           # Rows per generated dataset
# junctions = %q      # Comma-separated junction names
`,
		config.DefaultDataDir(),
		defaultResults,
		defaultSampleRows,
		strings.Join(sample.DefaultJunctions, ","),
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
