package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/jobscan/internal/model"
)

// MarkdownWriter outputs reports as GitHub-flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs one report.
func (w *MarkdownWriter) Write(report *model.SearchReport) (int, error) {
	md := markdown.NewMarkdown(w.output)
	w.writeReport(md, report, "# ")
	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// WriteBatch outputs a summary table followed by each report.
func (w *MarkdownWriter) WriteBatch(reports []*model.SearchReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Jobscan Batch Report")
	md.PlainText("")

	rows := make([][]string, 0, len(reports))
	var total int
	for _, r := range reports {
		total += r.RecordCount()
		rows = append(rows, []string{r.Name, strconv.Itoa(r.RecordCount()), statusEmoji(r) + " " + statusText(r)})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(total) + "**", ""})
	md.Table(markdown.TableSet{
		Header: []string{"Search", "Jobs", "Status"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, r := range reports {
		w.writeReport(md, r, "## ")
	}
	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// writeReport writes one report. level is the heading prefix of its title so
// batch reports nest under the batch heading.
func (w *MarkdownWriter) writeReport(md *markdown.Markdown, report *model.SearchReport, level string) {
	sub := "#" + level

	md.PlainText(level + "Jobscan Report: " + report.Name)
	md.PlainText("")
	w.writeHeader(md, report)

	md.PlainText(sub + "Summary")
	md.PlainText("")
	w.writeSummary(md, report)

	md.PlainText(sub + "Jobs")
	md.PlainText("")
	w.writeJobs(md, report)

	if report.Result != nil && len(report.Result.Errors) > 0 {
		md.PlainText(sub + "Errors")
		md.PlainText("")
		w.writeErrors(md, report.Result.Errors)
	}
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.SearchReport) {
	rows := [][]string{
		{"Search", "`" + report.Name + "`"},
		{"Query URL", report.URL},
		{"Started", report.DateStarted.Format("2006-01-02 15:04:05 MST")},
	}
	if report.Result != nil {
		rows = append(rows,
			[]string{"Pages Crawled", strconv.FormatUint(uint64(report.Result.PagesCrawled), 10) +
				" of " + strconv.FormatUint(uint64(report.Result.TotalPages), 10)},
			[]string{"Detail Fetches", strconv.FormatUint(uint64(report.Result.DetailFetches), 10)},
		)
	}
	rows = append(rows, []string{"Status", statusEmoji(report) + " " + statusText(report)})
	if report.RunID > 0 {
		rows = append(rows, []string{"Run ID", strconv.FormatInt(report.RunID, 10)})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func statusEmoji(report *model.SearchReport) string {
	switch {
	case report.Cancelled || (report.Result != nil && report.Result.Cancelled):
		return "⚠️"
	case report.Failed():
		return "❌"
	default:
		return "✅"
	}
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.SearchReport) {
	var failures, warnings int
	if report.Result != nil {
		failures = len(report.Result.Failures())
		warnings = len(report.Result.Warnings())
	}

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Jobs", strconv.Itoa(report.RecordCount())},
			{"With Salary", strconv.Itoa(salariedCount(report))},
			{"Errors", strconv.Itoa(failures)},
			{"Warnings", strconv.Itoa(warnings)},
		},
	})
	md.PlainText("")

	if report.RecordCount() > 0 {
		w.writePieChart(md, report.Result)
	}
	w.writeAlert(md, report, failures)
}

// salaryKinds is the order of slices in the salary chart.
var salaryKinds = []struct {
	kind  model.SalaryKind
	label string
}{
	{model.SalaryAnnualFixed, "Annual (fixed)"},
	{model.SalaryAnnualRange, "Annual (range)"},
	{model.SalaryHourlyFixed, "Hourly (fixed)"},
	{model.SalaryHourlyRange, "Hourly (range)"},
	{model.SalaryUnspecified, "Not listed"},
}

func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, result *model.CrawlResult) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Salary Disclosure"),
		piechart.WithShowData(true),
	)

	breakdown := result.SalaryBreakdown()
	for _, k := range salaryKinds {
		if n := breakdown[k.kind]; n > 0 {
			chart.LabelAndIntValue(k.label, uint64(n))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.SearchReport, failures int) {
	switch {
	case report.Cancelled || (report.Result != nil && report.Result.Cancelled):
		md.Warningf("The search was cancelled after collecting %d job(s). Results are partial.", report.RecordCount())
	case report.Failed():
		md.Cautionf("The search failed after collecting %d job(s).", report.RecordCount())
	case failures > 0:
		md.Importantf("%d job page(s) could not be read and were skipped.", failures)
	case report.RecordCount() == 0:
		md.Note("No jobs matched this search.")
	default:
		md.Tip("All pages were crawled without errors.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeJobs(md *markdown.Markdown, report *model.SearchReport) {
	recs := records(report)
	if len(recs) == 0 {
		md.PlainText("No jobs found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(recs))
	for i, rec := range recs {
		rows[i] = []string{
			"[" + escapeCell(truncateString(rec.Job.Title, 60)) + "](" + rec.Job.URL + ")",
			escapeCell(truncateString(orDash(rec.Company.Name), 40)),
			escapeCell(truncateString(orDash(rec.Job.Location), 40)),
			formatSalary(rec.Job.Salary),
			formatAnnual(rec.Job.AnnualSalary),
			formatDate(rec.Job.DatePosted),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Title", "Company", "Location", "Salary", "Annual", "Posted"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeErrors(md *markdown.Markdown, errs []model.CrawlError) {
	rows := make([][]string, len(errs))
	for i, e := range errs {
		kind := "error"
		if e.Warning {
			kind = "warning"
		}
		page := "-"
		if e.Page > 0 {
			page = strconv.FormatUint(uint64(e.Page), 10)
		}
		rows[i] = []string{
			kind,
			e.Stage.String(),
			page,
			orDash(e.URL),
			escapeCell(truncateString(e.Message, 80)),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Kind", "Stage", "Page", "URL", "Message"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [jobscan](https://github.com/nao1215/jobscan)*")
}

// escapeCell keeps pipes from breaking table rows.
func escapeCell(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '|' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
