package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nao1215/jobscan/internal/config"
	"github.com/nao1215/jobscan/internal/database"
	"github.com/nao1215/jobscan/internal/report"
)

const historyTimeFormat = "2006-01-02 15:04:05"

// NewHistoryCmd creates the history command.
// It reads the runs and jobs stored by the search command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [name]",
		Short: "Show stored search runs and jobs",
		Long: `History shows what previous 'jobscan search' runs stored in the database.

Without arguments it lists every search with its latest run. With a search
name it lists the runs of that search, newest first. --jobs lists stored
jobs, best paid first, and --run shows the full report of one run.

Examples:
  # Searches and their latest run
  jobscan history

  # Runs of one search
  jobscan history austin-go

  # Jobs first seen by the latest run of a search
  jobscan history austin-go --jobs --new

  # Stored jobs paying at least 150k a year
  jobscan history --jobs --min-salary 150000

  # Full report of run 12 in Markdown
  jobscan history --run 12 -m`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 20, "Maximum rows to show (0 = no limit)")
	cmd.Flags().Bool("jobs", false, "List stored jobs instead of runs")
	cmd.Flags().Float64("min-salary", 0, "With --jobs, minimum annualized salary")
	cmd.Flags().StringP("search", "s", "", "With --jobs, match title or company")
	cmd.Flags().Int64P("run", "r", 0, "Run ID; with --jobs, restrict to jobs listed by that run")
	cmd.Flags().Bool("new", false, "With --jobs, only jobs first seen by the run")
	cmd.Flags().BoolP("json", "j", false, "Output JSON")
	cmd.Flags().BoolP("markdown", "m", false, "With --run, output the report as Markdown")
	cmd.Flags().String("db-dir", "", "History database directory (default: XDG data directory)")

	return cmd
}

// historyOptions are the parsed history flags.
type historyOptions struct {
	name      string
	limit     int
	jobs      bool
	minSalary float64
	search    string
	runID     int64
	onlyNew   bool
	json      bool
	markdown  bool
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	opts, err := parseHistoryFlags(cmd, args)
	if err != nil {
		return err
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	out := cmd.OutOrStdout()
	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if errors.Is(err, database.ErrDatabaseNotFound) {
		fmt.Fprintln(out, "No history yet.")
		fmt.Fprintln(out, "\nUse 'jobscan search' to run a search.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	switch {
	case opts.jobs:
		return listStoredJobs(ctx, out, db, opts)
	case opts.runID > 0:
		return showRun(ctx, out, db, opts)
	case opts.name != "":
		return listRuns(ctx, out, db, opts)
	default:
		return listSearches(ctx, out, db, opts)
	}
}

func parseHistoryFlags(cmd *cobra.Command, args []string) (historyOptions, error) {
	var (
		opts historyOptions
		err  error
	)
	if len(args) > 0 {
		opts.name = args[0]
	}

	f := cmd.Flags()
	if opts.limit, err = f.GetInt("limit"); err != nil {
		return opts, err
	}
	if opts.jobs, err = f.GetBool("jobs"); err != nil {
		return opts, err
	}
	if opts.minSalary, err = f.GetFloat64("min-salary"); err != nil {
		return opts, err
	}
	if opts.search, err = f.GetString("search"); err != nil {
		return opts, err
	}
	if opts.runID, err = f.GetInt64("run"); err != nil {
		return opts, err
	}
	if opts.onlyNew, err = f.GetBool("new"); err != nil {
		return opts, err
	}
	if opts.json, err = f.GetBool("json"); err != nil {
		return opts, err
	}
	if opts.markdown, err = f.GetBool("markdown"); err != nil {
		return opts, err
	}

	if opts.limit < 0 {
		return opts, errors.New("--limit must not be negative")
	}
	if opts.json && opts.markdown {
		return opts, config.ErrConflictingReportFormats
	}
	if opts.onlyNew && !opts.jobs {
		return opts, errors.New("--new requires --jobs")
	}
	if opts.onlyNew && opts.runID == 0 && opts.name == "" {
		return opts, errors.New("--new requires a search name or --run")
	}
	return opts, nil
}

// listSearches prints every stored search with its latest run.
func listSearches(ctx context.Context, out io.Writer, db *database.JobDB, opts historyOptions) error {
	names, err := db.ListSearches(ctx)
	if err != nil {
		return err
	}

	if len(names) == 0 {
		fmt.Fprintln(out, "No stored searches found in the database.")
		fmt.Fprintln(out, "\nUse 'jobscan search' to run a search.")
		return nil
	}

	var latest []database.RunMetadata
	for _, name := range names {
		runs, err := db.ListRuns(ctx, name, 1)
		if err != nil {
			return err
		}
		if len(runs) > 0 {
			latest = append(latest, runs[0])
		}
	}

	if opts.json {
		return writeJSON(out, latest)
	}

	total, err := db.CountJobs(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Stored searches (%d), %d jobs:\n\n", len(latest), total)
	t := newTable(out)
	t.AppendHeader(table.Row{"Search", "Last run", "Date", "Status", "Jobs"})
	for _, m := range latest {
		t.AppendRow(table.Row{
			m.SearchName, m.ID, m.StartedAt.Local().Format(historyTimeFormat), runStatus(m), m.RecordCount,
		})
	}
	t.Render()
	fmt.Fprintln(out, "\nUse 'jobscan history <name>' to see every run of a search.")
	return nil
}

// listRuns prints the runs of one search, newest first.
func listRuns(ctx context.Context, out io.Writer, db *database.JobDB, opts historyOptions) error {
	runs, err := db.ListRuns(ctx, opts.name, opts.limit)
	if err != nil {
		return err
	}

	if opts.json {
		return writeJSON(out, runs)
	}

	if len(runs) == 0 {
		fmt.Fprintf(out, "No runs found for %s\n", opts.name)
		return nil
	}

	fmt.Fprintf(out, "Runs of %s (%d):\n\n", opts.name, len(runs))
	t := newTable(out)
	t.AppendHeader(table.Row{"ID", "Date", "Status", "Pages", "Jobs", "Errors"})
	for _, m := range runs {
		t.AppendRow(table.Row{
			m.ID,
			m.StartedAt.Local().Format(historyTimeFormat),
			runStatus(m),
			fmt.Sprintf("%d/%d", m.PagesCrawled, m.TotalPages),
			m.RecordCount,
			m.ErrorCount,
		})
	}
	t.Render()
	fmt.Fprintln(out, "\nUse 'jobscan history --run <id>' to see the full report of a run.")
	return nil
}

// showRun renders the stored report of one run.
func showRun(ctx context.Context, out io.Writer, db *database.JobDB, opts historyOptions) error {
	r, err := db.GetRunByID(ctx, opts.runID)
	if err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("run %d not found", opts.runID)
	}

	var w report.Writer
	switch {
	case opts.json:
		w = report.NewJSONWriter(out, report.WithPrettyPrint())
	case opts.markdown:
		w = report.NewMarkdownWriter(out)
	default:
		w = report.NewSimpleWriter(out)
	}
	_, err = w.Write(r)
	return err
}

// listStoredJobs prints stored jobs, best paid first.
func listStoredJobs(ctx context.Context, out io.Writer, db *database.JobDB, opts historyOptions) error {
	runID := opts.runID
	if opts.onlyNew && runID == 0 {
		r, err := db.GetLatestRun(ctx, opts.name)
		if err != nil {
			return err
		}
		if r == nil {
			fmt.Fprintf(out, "No runs found for %s\n", opts.name)
			return nil
		}
		runID = r.RunID
	}

	jobs, err := db.ListJobs(ctx, database.JobFilter{
		MinAnnualSalary: opts.minSalary,
		Search:          opts.search,
		RunID:           runID,
		OnlyNew:         opts.onlyNew,
		Limit:           opts.limit,
	})
	if err != nil {
		return err
	}

	if opts.json {
		if jobs == nil {
			jobs = []*database.StoredJob{}
		}
		return writeJSON(out, jobs)
	}

	if len(jobs) == 0 {
		fmt.Fprintln(out, "No matching jobs found.")
		return nil
	}

	fmt.Fprintf(out, "Jobs (%d):\n\n", len(jobs))
	t := newTable(out)
	t.AppendHeader(table.Row{"Title", "Company", "Annual", "First seen", "URL"})
	for _, j := range jobs {
		annual := "-"
		if j.Job.AnnualSalary != nil {
			annual = fmt.Sprintf("$%.0f", *j.Job.AnnualSalary)
		}
		t.AppendRow(table.Row{
			clip(j.Job.Title, 40),
			clip(j.Company.Name, 24),
			annual,
			j.FirstSeen.Local().Format("2006-01-02"),
			j.Job.URL,
		})
	}
	t.Render()
	return nil
}

// newTable returns a table writer rendering to out.
func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	return t
}

func runStatus(m database.RunMetadata) string {
	if m.Cancelled {
		return "cancel"
	}
	return m.Status
}

// clip shortens s to n runes.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
