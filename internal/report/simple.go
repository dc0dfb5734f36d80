package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/jobscan/internal/model"
)

const ruleWidth = 70

// SimpleWriter outputs plain text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// showEmpty prints sections that have nothing in them.
	showEmpty bool

	// verbose adds warnings and company details.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs one report.
func (w *SimpleWriter) Write(report *model.SearchReport) (int, error) {
	var sb strings.Builder
	w.writeReport(&sb, report)
	return w.output.Write([]byte(sb.String()))
}

// WriteBatch outputs every report followed by a one-line-per-search summary.
func (w *SimpleWriter) WriteBatch(reports []*model.SearchReport) (int, error) {
	var sb strings.Builder
	for _, r := range reports {
		w.writeReport(&sb, r)
	}

	if len(reports) > 1 {
		sb.WriteString(strings.Repeat("-", ruleWidth))
		sb.WriteString("\nBATCH SUMMARY\n")
		sb.WriteString(strings.Repeat("-", ruleWidth))
		sb.WriteString("\n\n")
		for _, r := range reports {
			fmt.Fprintf(&sb, "  %-24s %5d jobs  %s\n", truncateString(r.Name, 24), r.RecordCount(), statusText(r))
		}
		sb.WriteString("\n")
	}
	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeReport(sb *strings.Builder, report *model.SearchReport) {
	w.writeHeader(sb, report)
	w.writeSummary(sb, report)
	w.writeJobs(sb, report)
	w.writeErrors(sb, report)
	w.writeFooter(sb)
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.SearchReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("                          JOBSCAN REPORT\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Search:         %s\n", report.Name)
	fmt.Fprintf(sb, "Query URL:      %s\n", report.URL)
	fmt.Fprintf(sb, "Started:        %s\n", report.DateStarted.Format("2006-01-02 15:04:05 MST"))
	if report.Result != nil {
		fmt.Fprintf(sb, "Pages Crawled:  %d of %d\n", report.Result.PagesCrawled, report.Result.TotalPages)
		fmt.Fprintf(sb, "Duration:       %s\n", report.Result.Duration().Round(time.Millisecond))
	}
	fmt.Fprintf(sb, "Status:         %s\n", statusText(report))
	if report.RunID > 0 {
		fmt.Fprintf(sb, "Run ID:         %d\n", report.RunID)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.SearchReport) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\nSUMMARY\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")

	var failures, warnings int
	if report.Result != nil {
		failures = len(report.Result.Failures())
		warnings = len(report.Result.Warnings())
	}
	fmt.Fprintf(sb, "  JOBS:      %d\n", report.RecordCount())
	fmt.Fprintf(sb, "  WITH PAY:  %d\n", salariedCount(report))
	fmt.Fprintf(sb, "  ERRORS:    %d\n", failures)
	fmt.Fprintf(sb, "  WARNINGS:  %d\n", warnings)
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeJobs(sb *strings.Builder, report *model.SearchReport) {
	recs := records(report)
	if len(recs) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\nJOBS\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")

	if len(recs) == 0 {
		sb.WriteString("  No jobs found\n\n")
		return
	}

	for _, rec := range recs {
		fmt.Fprintf(sb, "  [+] %s - %s\n", rec.Job.Title, orDash(rec.Company.Name))
		fmt.Fprintf(sb, "      Location: %s\n", orDash(rec.Job.Location))
		fmt.Fprintf(sb, "      Salary:   %s\n", formatSalary(rec.Job.Salary))
		if rec.Job.AnnualSalary != nil && rec.Job.Salary.Kind != model.SalaryAnnualFixed {
			fmt.Fprintf(sb, "      Annual:   %s\n", formatAnnual(rec.Job.AnnualSalary))
		}
		fmt.Fprintf(sb, "      Posted:   %s\n", formatDate(rec.Job.DatePosted))
		if w.verbose {
			if rec.Company.Rating > 0 {
				fmt.Fprintf(sb, "      Rating:   %.1f\n", rec.Company.Rating)
			}
			if rec.Company.Homepage != "" {
				fmt.Fprintf(sb, "      Company:  %s\n", rec.Company.Homepage)
			}
		}
		fmt.Fprintf(sb, "      URL:      %s\n", rec.Job.URL)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeErrors(sb *strings.Builder, report *model.SearchReport) {
	if report.Result == nil {
		return
	}
	failures := report.Result.Failures()
	var warnings []model.CrawlError
	if w.verbose {
		warnings = report.Result.Warnings()
	}
	if len(failures) == 0 && len(warnings) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\nERRORS\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")

	if len(failures) == 0 && len(warnings) == 0 {
		sb.WriteString("  No errors\n\n")
		return
	}
	for _, e := range failures {
		fmt.Fprintf(sb, "  [!] %s\n", e.Error())
	}
	for _, e := range warnings {
		fmt.Fprintf(sb, "  [i] %s\n", e.Error())
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
}

func salariedCount(report *model.SearchReport) int {
	if report.Result == nil {
		return 0
	}
	var n int
	for kind, count := range report.Result.SalaryBreakdown() {
		if kind != model.SalaryUnspecified {
			n += count
		}
	}
	return n
}
