package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nao1215/jobscan/internal/model"
)

// StoredJob is a job row with its tracking columns.
type StoredJob struct {
	model.Record

	ContentHash string    `json:"content_hash"`
	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `json:"last_seen"`

	// ChangedAt is when the content hash last changed, zero if never.
	ChangedAt time.Time `json:"changed_at,omitzero"`

	FirstRunID int64 `json:"first_run_id"`
	LastRunID  int64 `json:"last_run_id"`
}

// JobFilter narrows ListJobs.
type JobFilter struct {
	// MinAnnualSalary drops jobs below this annualized pay, and jobs with no
	// salary, when greater than zero.
	MinAnnualSalary float64

	// Search matches title or company name, case-insensitively.
	Search string

	// RunID restricts to jobs listed by that run.
	RunID int64

	// OnlyNew restricts to jobs first seen by RunID.
	OnlyNew bool

	// Limit caps the result count, 0 for no limit.
	Limit int
}

// RunMetadata summarizes one stored run without its full report.
type RunMetadata struct {
	ID           int64     `json:"id"`
	SearchName   string    `json:"search_name"`
	QueryURL     string    `json:"query_url"`
	Status       string    `json:"status"`
	PagesCrawled int       `json:"pages_crawled"`
	TotalPages   int       `json:"total_pages"`
	RecordCount  int       `json:"record_count"`
	ErrorCount   int       `json:"error_count"`
	Cancelled    bool      `json:"cancelled"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at,omitzero"`
}

const jobColumns = `url, title, location, company_name, company_location, company_homepage,
	company_rating, salary_kind, salary_min, salary_max, annual_salary, date_posted,
	content_hash, first_seen, last_seen, changed_at, first_run_id, last_run_id`

// GetJob returns the job stored under url, or nil if there is none.
func (j *JobDB) GetJob(ctx context.Context, url string) (*StoredJob, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE url = ?`, url)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// ListJobs returns stored jobs matching filter, best paid first.
func (j *JobDB) ListJobs(ctx context.Context, filter JobFilter) ([]*StoredJob, error) {
	var (
		where []string
		args  []any
	)
	if filter.MinAnnualSalary > 0 {
		where = append(where, "annual_salary >= ?")
		args = append(args, filter.MinAnnualSalary)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		where = append(where, "(title LIKE ? OR company_name LIKE ?)")
		pattern := "%" + s + "%"
		args = append(args, pattern, pattern)
	}
	if filter.RunID > 0 {
		if filter.OnlyNew {
			where = append(where, "first_run_id = ?")
			args = append(args, filter.RunID)
		} else {
			where = append(where, "url IN (SELECT job_url FROM run_jobs WHERE run_id = ?)")
			args = append(args, filter.RunID)
		}
	}

	query := `SELECT ` + jobColumns + ` FROM jobs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY annual_salary IS NULL, annual_salary DESC, url"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*StoredJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate jobs: %w", err)
	}
	return jobs, nil
}

// CountJobs returns the number of stored jobs.
func (j *JobDB) CountJobs(ctx context.Context) (int, error) {
	var n int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}
	return n, nil
}

// ListSearches returns the distinct search names with stored runs.
func (j *JobDB) ListSearches(ctx context.Context) ([]string, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT DISTINCT search_name FROM search_runs ORDER BY search_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list searches: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan search name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate searches: %w", err)
	}
	return names, nil
}

// ListRuns returns run metadata newest first. An empty searchName lists
// every search. limit 0 means no limit.
func (j *JobDB) ListRuns(ctx context.Context, searchName string, limit int) ([]RunMetadata, error) {
	query := `SELECT id, search_name, query_url, status, pages_crawled, total_pages,
		record_count, error_count, cancelled, started_at, finished_at
	FROM search_runs`
	var args []any
	if searchName != "" {
		query += " WHERE search_name = ?"
		args = append(args, searchName)
	}
	query += " ORDER BY started_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunMetadata
	for rows.Next() {
		var (
			m          RunMetadata
			cancelled  int
			startedAt  string
			finishedAt sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.SearchName, &m.QueryURL, &m.Status, &m.PagesCrawled,
			&m.TotalPages, &m.RecordCount, &m.ErrorCount, &cancelled, &startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		m.Cancelled = cancelled != 0
		m.StartedAt = parseTimestamp(startedAt)
		if finishedAt.Valid {
			m.FinishedAt = parseTimestamp(finishedAt.String)
		}
		runs = append(runs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// GetLatestRun returns the newest stored report for searchName, or nil.
func (j *JobDB) GetLatestRun(ctx context.Context, searchName string) (*model.SearchReport, error) {
	row := j.db.QueryRowContext(ctx, `
	SELECT id, report_json FROM search_runs
	WHERE search_name = ?
	ORDER BY started_at DESC, id DESC
	LIMIT 1`, searchName)
	return scanReport(row)
}

// GetRunByID returns the stored report of run id, or nil.
func (j *JobDB) GetRunByID(ctx context.Context, id int64) (*model.SearchReport, error) {
	row := j.db.QueryRowContext(ctx,
		`SELECT id, report_json FROM search_runs WHERE id = ?`, id)
	return scanReport(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*model.SearchReport, error) {
	var (
		id   int64
		data string
	)
	if err := row.Scan(&id, &data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get search run: %w", err)
	}

	var report model.SearchReport
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return nil, fmt.Errorf("failed to deserialize report: %w", err)
	}
	report.RunID = id
	return &report, nil
}

func scanJob(row rowScanner) (*StoredJob, error) {
	var (
		job        StoredJob
		location   sql.NullString
		company    sql.NullString
		companyLoc sql.NullString
		homepage   sql.NullString
		rating     sql.NullFloat64
		salaryKind string
		salaryMin  sql.NullFloat64
		salaryMax  sql.NullFloat64
		annual     sql.NullFloat64
		posted     sql.NullString
		firstSeen  string
		lastSeen   string
		changedAt  sql.NullString
		firstRunID sql.NullInt64
		lastRunID  sql.NullInt64
	)
	if err := row.Scan(&job.Job.URL, &job.Job.Title, &location, &company, &companyLoc, &homepage,
		&rating, &salaryKind, &salaryMin, &salaryMax, &annual, &posted,
		&job.ContentHash, &firstSeen, &lastSeen, &changedAt, &firstRunID, &lastRunID); err != nil {
		return nil, err
	}

	job.Job.Location = location.String
	job.Company.Name = company.String
	job.Company.Location = companyLoc.String
	job.Company.Homepage = homepage.String
	job.Company.Rating = rating.Float64
	job.Job.Salary = model.Salary{
		Kind: model.ParseSalaryKind(salaryKind),
		Min:  salaryMin.Float64,
		Max:  salaryMax.Float64,
	}
	if annual.Valid {
		v := annual.Float64
		job.Job.AnnualSalary = &v
	}
	if posted.Valid {
		job.Job.DatePosted = parseTimestamp(posted.String)
	}
	job.FirstSeen = parseTimestamp(firstSeen)
	job.LastSeen = parseTimestamp(lastSeen)
	if changedAt.Valid {
		job.ChangedAt = parseTimestamp(changedAt.String)
	}
	job.FirstRunID = firstRunID.Int64
	job.LastRunID = lastRunID.Int64
	return &job, nil
}

// timestampFormats are the layouts SQLite and this package may have written.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nullableTimestamp(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return formatTimestamp(t)
}
