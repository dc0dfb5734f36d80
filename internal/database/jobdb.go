package database

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/jobscan/internal/model"
)

// FileName is the database file created inside the database directory.
const FileName = "jobscan.db"

// ErrDatabaseNotFound is returned by Open when the file is missing and
// creation was not requested.
var ErrDatabaseNotFound = errors.New("database not found")

// JobDB is the SQLite store for search runs and jobs.
type JobDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures Open.
type Options struct {
	// CreateIfNotExists creates the directory and file when missing.
	CreateIfNotExists bool

	// EnableWAL turns on write-ahead logging.
	EnableWAL bool
}

// DefaultOptions creates the database if needed and enables WAL.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens the database in dbDir.
func Open(dbDir string, opts Options) (*JobDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	} else if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
	} else if err != nil {
		return nil, fmt.Errorf("failed to check database path: %w", err)
	}

	mode := "rw"
	if opts.CreateIfNotExists {
		mode = "rwc"
	}
	db, err := sql.Open("sqlite", dbPath+"?mode="+mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	jdb := &JobDB{db: db, dbPath: dbPath}

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if opts.EnableWAL {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if err := jdb.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return jdb, nil
}

// Path returns the database file path.
func (j *JobDB) Path() string {
	return j.dbPath
}

// Close closes the database.
func (j *JobDB) Close() error {
	return j.db.Close()
}

func (j *JobDB) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS search_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		search_name TEXT NOT NULL,
		query_url TEXT NOT NULL,
		status TEXT NOT NULL,
		pages_crawled INTEGER NOT NULL DEFAULT 0,
		total_pages INTEGER NOT NULL DEFAULT 0,
		record_count INTEGER NOT NULL DEFAULT 0,
		error_count INTEGER NOT NULL DEFAULT 0,
		cancelled INTEGER NOT NULL DEFAULT 0,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_search ON search_runs(search_name);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON search_runs(started_at);

	CREATE TABLE IF NOT EXISTS jobs (
		url TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		location TEXT,
		company_name TEXT,
		company_location TEXT,
		company_homepage TEXT,
		company_rating REAL,
		salary_kind TEXT NOT NULL,
		salary_min REAL,
		salary_max REAL,
		annual_salary REAL,
		date_posted TEXT,
		content_hash TEXT NOT NULL,
		first_seen TEXT NOT NULL,
		last_seen TEXT NOT NULL,
		changed_at TEXT,
		first_run_id INTEGER REFERENCES search_runs(id),
		last_run_id INTEGER REFERENCES search_runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_jobs_annual ON jobs(annual_salary);
	CREATE INDEX IF NOT EXISTS idx_jobs_last_seen ON jobs(last_seen);

	CREATE TABLE IF NOT EXISTS run_jobs (
		run_id INTEGER NOT NULL REFERENCES search_runs(id),
		job_url TEXT NOT NULL REFERENCES jobs(url),
		UNIQUE(run_id, job_url)
	);

	CREATE TABLE IF NOT EXISTS crawl_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES search_runs(id),
		stage TEXT NOT NULL,
		url TEXT,
		page INTEGER,
		warning INTEGER NOT NULL DEFAULT 0,
		message TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_errors_run ON crawl_errors(run_id);
	`

	_, err := j.db.ExecContext(ctx, schema)
	return err
}

// SaveSearchReport stores a run, its errors and its jobs in one transaction
// and returns the run ID.
func (j *JobDB) SaveSearchReport(ctx context.Context, report *model.SearchReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	result := report.Result
	if result == nil {
		result = model.NewCrawlResult(report.DateStarted)
		result.Status = model.StatusFailed
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx, `
	INSERT INTO search_runs (search_name, query_url, status, pages_crawled, total_pages,
		record_count, error_count, cancelled, started_at, finished_at, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.Name,
		report.URL,
		result.Status.String(),
		result.PagesCrawled,
		result.TotalPages,
		len(result.Records),
		len(result.Failures()),
		boolToInt(report.Cancelled || result.Cancelled),
		formatTimestamp(report.DateStarted),
		nullableTimestamp(result.FinishedAt),
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert search run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	seenAt := result.FinishedAt
	if seenAt.IsZero() {
		seenAt = report.DateStarted
	}
	for _, rec := range result.SortedRecords() {
		if err := upsertJob(ctx, tx, runID, rec, seenAt); err != nil {
			return 0, err
		}
	}

	for _, ce := range result.Errors {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO crawl_errors (run_id, stage, url, page, warning, message)
		VALUES (?, ?, ?, ?, ?, ?)`,
			runID, ce.Stage.String(), ce.URL, ce.Page, boolToInt(ce.Warning), ce.Message,
		); err != nil {
			return 0, fmt.Errorf("failed to insert crawl error: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit search run: %w", err)
	}
	return runID, nil
}

func upsertJob(ctx context.Context, tx *sql.Tx, runID int64, rec model.Record, seenAt time.Time) error {
	hash := ContentHash(rec)
	seen := formatTimestamp(seenAt)

	var annual any
	if rec.Job.AnnualSalary != nil {
		annual = *rec.Job.AnnualSalary
	}

	_, err := tx.ExecContext(ctx, `
	INSERT INTO jobs (url, title, location, company_name, company_location, company_homepage,
		company_rating, salary_kind, salary_min, salary_max, annual_salary, date_posted,
		content_hash, first_seen, last_seen, changed_at, first_run_id, last_run_id)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, ?, ?)
	ON CONFLICT(url) DO UPDATE SET
		title = excluded.title,
		location = excluded.location,
		company_name = excluded.company_name,
		company_location = excluded.company_location,
		company_homepage = excluded.company_homepage,
		company_rating = excluded.company_rating,
		salary_kind = excluded.salary_kind,
		salary_min = excluded.salary_min,
		salary_max = excluded.salary_max,
		annual_salary = excluded.annual_salary,
		changed_at = CASE WHEN jobs.content_hash != excluded.content_hash
			THEN excluded.last_seen ELSE jobs.changed_at END,
		content_hash = excluded.content_hash,
		last_seen = excluded.last_seen,
		last_run_id = excluded.last_run_id`,
		rec.Job.URL,
		rec.Job.Title,
		rec.Job.Location,
		rec.Company.Name,
		rec.Company.Location,
		rec.Company.Homepage,
		rec.Company.Rating,
		rec.Job.Salary.Kind.String(),
		rec.Job.Salary.Min,
		rec.Job.Salary.Max,
		annual,
		nullableTimestamp(rec.Job.DatePosted),
		hash,
		seen,
		seen,
		runID,
		runID,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert job %s: %w", rec.Job.URL, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO run_jobs (run_id, job_url) VALUES (?, ?)`, runID, rec.Job.URL,
	); err != nil {
		return fmt.Errorf("failed to link job %s to run: %w", rec.Job.URL, err)
	}
	return nil
}

// ContentHash returns the SHA3-256 hex digest of the fields that make a
// posting differ from an earlier version of itself.
func ContentHash(rec model.Record) string {
	parts := []string{
		rec.Job.Title,
		rec.Job.Location,
		rec.Company.Name,
		rec.Company.Location,
		rec.Job.Salary.Kind.String(),
		strconv.FormatFloat(rec.Job.Salary.Min, 'f', -1, 64),
		strconv.FormatFloat(rec.Job.Salary.Max, 'f', -1, 64),
	}
	sum := sha3.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
