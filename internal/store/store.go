package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/dailytrending/trendwatch/pkg/pipeline"
)

// Run is one archived pipeline execution.
type Run struct {
	ID             int64     `db:"id" json:"id"`
	StartedAt      time.Time `db:"started_at" json:"started_at"`
	Total          int       `db:"total" json:"total"`
	FreshRatio     float64   `db:"fresh_ratio" json:"fresh_ratio"`
	Aborted        bool      `db:"aborted" json:"aborted"`
	WarningsJSON   string    `db:"warnings" json:"-"`
	Warnings       []string  `json:"warnings" db:"-"`
	KeywordsJSON   string    `db:"global_keywords" json:"-"`
	GlobalKeywords []string  `json:"global_keywords" db:"-"`
}

// runRecord is the db shape of one trend record, with keywords flattened
// to JSON.
type runRecord struct {
	pipeline.TrendRecord
	RunID        int64  `db:"run_id"`
	KeywordsJSON string `db:"keywords"`
}

// RunListOpts controls run listing.
type RunListOpts struct {
	Since time.Time
	Limit int
}

// Store is the run-archive persistence interface.
type Store interface {
	SaveRun(ctx context.Context, result *pipeline.Result) (int64, error)
	GetRun(ctx context.Context, id int64) (*Run, error)
	LatestRun(ctx context.Context) (*Run, error)
	ListRuns(ctx context.Context, opts RunListOpts) ([]Run, error)
	RunRecords(ctx context.Context, runID int64) ([]pipeline.TrendRecord, error)
	PruneRuns(ctx context.Context, olderThan time.Time) (int64, error)
	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun archives a pipeline result and its records in one transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, result *pipeline.Result) (int64, error) {
	warningsJSON, _ := json.Marshal(result.Warnings)
	keywordsJSON, _ := json.Marshal(result.GlobalKeywords)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin save run: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (started_at, total, fresh_ratio, aborted, warnings, global_keywords)
		VALUES (?, ?, ?, ?, ?, ?)
	`, result.CollectedAt, len(result.Records), result.FreshRatio,
		result.Aborted, string(warningsJSON), string(keywordsJSON))
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, _ := res.LastInsertId()

	for i := range result.Records {
		r := &result.Records[i]
		kw, _ := json.Marshal(r.Keywords)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO run_records (run_id, id, title, url, source, score, velocity, badge,
				keywords, timestamp, language, category, image_url, status, source_count)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, runID, r.ID, r.Title, r.URL, r.Source, r.Score, r.Velocity, r.Badge,
			string(kw), r.Timestamp, r.Language, r.Category, r.ImageURL, r.Status, r.SourceCount)
		if err != nil {
			return 0, fmt.Errorf("insert run record %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit save run: %w", err)
	}
	return runID, nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, id int64) (*Run, error) {
	var run Run
	err := s.db.GetContext(ctx, &run, "SELECT * FROM runs WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get run %d: %w", id, err)
	}
	decodeRun(&run)
	return &run, nil
}

// LatestRun returns the most recent run, or nil when the archive is empty.
func (s *SQLiteStore) LatestRun(ctx context.Context) (*Run, error) {
	var runs []Run
	err := s.db.SelectContext(ctx, &runs, "SELECT * FROM runs ORDER BY started_at DESC, id DESC LIMIT 1")
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}
	if len(runs) == 0 {
		return nil, nil
	}
	decodeRun(&runs[0])
	return &runs[0], nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, opts RunListOpts) ([]Run, error) {
	query := "SELECT * FROM runs WHERE 1=1"
	var args []any

	if !opts.Since.IsZero() {
		query += " AND started_at >= ?"
		args = append(args, opts.Since)
	}

	query += " ORDER BY started_at DESC, id DESC"

	limit := opts.Limit
	if limit <= 0 {
		limit = 30
	}
	query += " LIMIT ?"
	args = append(args, limit)

	var runs []Run
	if err := s.db.SelectContext(ctx, &runs, query, args...); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	for i := range runs {
		decodeRun(&runs[i])
	}
	return runs, nil
}

// RunRecords returns the archived records of one run in stored order.
func (s *SQLiteStore) RunRecords(ctx context.Context, runID int64) ([]pipeline.TrendRecord, error) {
	var rows []runRecord
	err := s.db.SelectContext(ctx, &rows,
		"SELECT * FROM run_records WHERE run_id = ? ORDER BY rowid", runID)
	if err != nil {
		return nil, fmt.Errorf("run records %d: %w", runID, err)
	}

	records := make([]pipeline.TrendRecord, len(rows))
	for i := range rows {
		records[i] = rows[i].TrendRecord
		json.Unmarshal([]byte(rows[i].KeywordsJSON), &records[i].Keywords)
	}
	return records, nil
}

// PruneRuns deletes runs started before olderThan together with their
// records, and reports how many runs were removed.
func (s *SQLiteStore) PruneRuns(ctx context.Context, olderThan time.Time) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin prune: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"DELETE FROM run_records WHERE run_id IN (SELECT id FROM runs WHERE started_at < ?)",
		olderThan)
	if err != nil {
		return 0, fmt.Errorf("prune run records: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE started_at < ?", olderThan)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	pruned, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit prune: %w", err)
	}
	return pruned, nil
}

func decodeRun(run *Run) {
	json.Unmarshal([]byte(run.WarningsJSON), &run.Warnings)
	json.Unmarshal([]byte(run.KeywordsJSON), &run.GlobalKeywords)
}
