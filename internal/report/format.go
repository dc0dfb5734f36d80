package report

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/jobscan/internal/model"
)

const dateLayout = "2006-01-02"

// formatSalary renders a salary such as "$85,000 - $100,000 a year".
func formatSalary(s model.Salary) string {
	switch s.Kind {
	case model.SalaryAnnualFixed:
		return formatAmount(s.Min) + " a year"
	case model.SalaryAnnualRange:
		return formatAmount(s.Min) + " - " + formatAmount(s.Max) + " a year"
	case model.SalaryHourlyFixed:
		return formatAmount(s.Min) + " an hour"
	case model.SalaryHourlyRange:
		return formatAmount(s.Min) + " - " + formatAmount(s.Max) + " an hour"
	default:
		return "-"
	}
}

// formatAnnual renders the annualized pay, "-" when unknown.
func formatAnnual(annual *float64) string {
	if annual == nil {
		return "-"
	}
	return formatAmount(*annual)
}

// formatAmount renders a dollar amount with thousands separators. Cents are
// kept only when present.
func formatAmount(v float64) string {
	whole := int64(v)
	cents := int64((v-float64(whole))*100 + 0.5)
	if cents == 100 {
		whole++
		cents = 0
	}

	digits := strconv.FormatInt(whole, 10)
	var sb strings.Builder
	sb.WriteString("$")
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(d)
	}
	if cents > 0 {
		sb.WriteString(".")
		if cents < 10 {
			sb.WriteString("0")
		}
		sb.WriteString(strconv.FormatInt(cents, 10))
	}
	return sb.String()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(dateLayout)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// statusText describes how the run ended.
func statusText(report *model.SearchReport) string {
	switch {
	case report.Cancelled || (report.Result != nil && report.Result.Cancelled):
		return "CANCELLED (partial results)"
	case report.Result == nil:
		if report.ErrorMessage != "" {
			return "ERROR - " + report.ErrorMessage
		}
		return "NOT RUN"
	case report.Result.Status == model.StatusFailed:
		if report.ErrorMessage != "" {
			return "FAILED - " + report.ErrorMessage
		}
		return "FAILED (partial results)"
	case report.ErrorMessage != "":
		return "COMPLETE WITH ERRORS - " + report.ErrorMessage
	default:
		return "COMPLETE"
	}
}

// records returns the report records best paid first, unpaid last, ties by URL.
func records(report *model.SearchReport) []model.Record {
	if report.Result == nil {
		return nil
	}
	recs := report.Result.SortedRecords()
	sortByAnnual(recs)
	return recs
}

func sortByAnnual(recs []model.Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		return paidMore(recs[i], recs[j])
	})
}

func paidMore(a, b model.Record) bool {
	switch {
	case a.Job.AnnualSalary == nil:
		return false
	case b.Job.AnnualSalary == nil:
		return true
	default:
		return *a.Job.AnnualSalary > *b.Job.AnnualSalary
	}
}

// truncateString truncates s to maxLen runes with an ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
