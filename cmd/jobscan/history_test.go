package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/jobscan/internal/database"
	"github.com/nao1215/jobscan/internal/model"
	"github.com/nao1215/jobscan/internal/query"
)

func executeHistory(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"history"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

// seedHistory stores one run of "austin-go" with two jobs and returns its id.
func seedHistory(t *testing.T, dbDir string) int64 {
	t.Helper()

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	opts := query.DefaultOptions()
	opts.City = "Austin, TX"
	opts.Level = query.LevelSenior
	q, err := opts.Finalize()
	if err != nil {
		t.Fatal(err)
	}

	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	r := model.NewSearchReport("austin-go", q)
	r.DateStarted = started
	r.Result = model.NewCrawlResult(started)
	r.Result.PagesCrawled = 1
	r.Result.TotalPages = 1
	r.Result.FinishedAt = started.Add(time.Minute)

	for _, job := range []struct {
		url, title, company string
		salary              model.Salary
	}{
		{"https://www.indeed.com/viewjob?jk=1", "Staff Go Engineer", "Acme", model.Salary{Kind: model.SalaryAnnualFixed, Min: 200000, Max: 200000}},
		{"https://www.indeed.com/viewjob?jk=2", "Go Developer", "Globex", model.Salary{}},
	} {
		r.Result.Records[job.url] = model.Record{
			Company: model.Company{Name: job.company},
			Job: model.Job{
				Title:        job.title,
				URL:          job.url,
				Salary:       job.salary,
				AnnualSalary: job.salary.AnnualPtr(),
			},
		}
	}

	id, err := db.SaveSearchReport(context.Background(), r)
	if err != nil {
		t.Fatalf("failed to save report: %v", err)
	}
	return id
}

func TestHistoryCmdNoDatabase(t *testing.T) {
	t.Parallel()

	out, err := executeHistory(t, "--db-dir", t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "No history yet.") {
		t.Errorf("expected no history message, got %q", out)
	}
}

func TestHistoryCmd(t *testing.T) {
	t.Parallel()

	dbDir := t.TempDir()
	runID := seedHistory(t, dbDir)

	// Subtests share one database file and run in order.

	t.Run("lists searches", func(t *testing.T) {
		out, err := executeHistory(t, "--db-dir", dbDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Stored searches (1), 2 jobs") || !strings.Contains(out, "austin-go") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("lists runs of a search", func(t *testing.T) {
		out, err := executeHistory(t, "--db-dir", dbDir, "austin-go")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Runs of austin-go (1)") || !strings.Contains(out, "1/1") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("runs as JSON", func(t *testing.T) {
		out, err := executeHistory(t, "--db-dir", dbDir, "austin-go", "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var runs []database.RunMetadata
		if err := json.Unmarshal([]byte(out), &runs); err != nil {
			t.Fatalf("expected JSON, got %v: %s", err, out)
		}
		if len(runs) != 1 || runs[0].ID != runID || runs[0].RecordCount != 2 {
			t.Errorf("unexpected runs %+v", runs)
		}
	})

	t.Run("unknown search has no runs", func(t *testing.T) {
		out, err := executeHistory(t, "--db-dir", dbDir, "missing")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "No runs found for missing") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("jobs best paid first", func(t *testing.T) {
		out, err := executeHistory(t, "--db-dir", dbDir, "--jobs")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		staff := strings.Index(out, "Staff Go Engineer")
		dev := strings.Index(out, "Go Developer")
		if staff < 0 || dev < 0 || staff > dev {
			t.Errorf("expected salaried job first, got %q", out)
		}
		if !strings.Contains(out, "$200000") {
			t.Errorf("expected annual salary column, got %q", out)
		}
	})

	t.Run("jobs filtered by salary", func(t *testing.T) {
		out, err := executeHistory(t, "--db-dir", dbDir, "--jobs", "--min-salary", "150000", "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var jobs []database.StoredJob
		if err := json.Unmarshal([]byte(out), &jobs); err != nil {
			t.Fatalf("expected JSON, got %v: %s", err, out)
		}
		if len(jobs) != 1 || jobs[0].Job.Title != "Staff Go Engineer" {
			t.Errorf("unexpected jobs %+v", jobs)
		}
		if jobs[0].FirstRunID != runID {
			t.Errorf("expected first run %d, got %d", runID, jobs[0].FirstRunID)
		}
	})

	t.Run("new jobs of the latest run", func(t *testing.T) {
		out, err := executeHistory(t, "--db-dir", dbDir, "austin-go", "--jobs", "--new")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Jobs (2)") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("shows a stored report", func(t *testing.T) {
		out, err := executeHistory(t, "--db-dir", dbDir, "--run", strconv.FormatInt(runID, 10), "-m")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "# ") || !strings.Contains(out, "Staff Go Engineer") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("missing run", func(t *testing.T) {
		if _, err := executeHistory(t, "--db-dir", dbDir, "--run", "99"); err == nil {
			t.Error("expected error for missing run")
		}
	})
}

func TestParseHistoryFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"defaults", []string{}, false},
		{"new without jobs", []string{"--new", "--run", "1"}, true},
		{"new without run or name", []string{"--jobs", "--new"}, true},
		{"new with name", []string{"--jobs", "--new", "austin-go"}, false},
		{"json and markdown", []string{"--run", "1", "-j", "-m"}, true},
		{"negative limit", []string{"--limit=-1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cmd := NewHistoryCmd()
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("unexpected flag error: %v", err)
			}
			_, err := parseHistoryFlags(cmd, cmd.Flags().Args())
			if tt.wantErr && err == nil {
				t.Error("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
