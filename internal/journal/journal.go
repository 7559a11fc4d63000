package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Run outcomes.
const (
	OutcomeCompleted = "completed"
	OutcomeDeclined  = "declined"
	OutcomeFailed    = "failed"
)

// Run is one recorded release attempt.
type Run struct {
	RunID         string
	Phase         string
	Branch        string
	VersionBefore string
	VersionAfter  string
	Tag           string
	Outcome       string
	Detail        string
	StartedAt     time.Time
	FinishedAt    time.Time
	Stages        []Stage
}

// Stage is one pipeline stage result within a run.
type Stage struct {
	Name   string
	Status string
	Detail string
}

// Journal manages release history persistence backed by SQLite.
type Journal struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database at path and applies
// migrations. Parent directories are created as needed.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure journal dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	journal := &Journal{db: db, path: path}
	if err := journal.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return journal, nil
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Path returns the database file path.
func (j *Journal) Path() string {
	return j.path
}

// RecordRun persists a completed release attempt with its stage results.
func (j *Journal) RecordRun(ctx context.Context, run Run) error {
	if run.RunID == "" {
		return errors.New("run id is required")
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin journal tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO release_runs (
            run_id, phase, branch, version_before, version_after, tag,
            outcome, detail, started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID,
		run.Phase,
		nullableString(run.Branch),
		nullableString(run.VersionBefore),
		nullableString(run.VersionAfter),
		nullableString(run.Tag),
		run.Outcome,
		nullableString(run.Detail),
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, stage := range run.Stages {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO release_stages (run_id, position, stage, status, detail) VALUES (?, ?, ?, ?, ?)`,
			run.RunID,
			i,
			stage.Name,
			stage.Status,
			nullableString(stage.Detail),
		); err != nil {
			return fmt.Errorf("insert stage %s: %w", stage.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// Recent returns the most recent runs, newest first, with their stage
// results in execution order.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := j.db.QueryContext(
		ctx,
		`SELECT run_id, phase, branch, version_before, version_after, tag,
                outcome, detail, started_at, finished_at
         FROM release_runs ORDER BY started_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		stages, err := j.stagesFor(ctx, runs[i].RunID)
		if err != nil {
			return nil, err
		}
		runs[i].Stages = stages
	}
	return runs, nil
}

func (j *Journal) stagesFor(ctx context.Context, runID string) ([]Stage, error) {
	rows, err := j.db.QueryContext(
		ctx,
		`SELECT stage, status, detail FROM release_stages WHERE run_id = ? ORDER BY position`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query stages: %w", err)
	}
	defer rows.Close()

	var stages []Stage
	for rows.Next() {
		var (
			stage  Stage
			detail sql.NullString
		)
		if err := rows.Scan(&stage.Name, &stage.Status, &detail); err != nil {
			return nil, err
		}
		stage.Detail = detail.String
		stages = append(stages, stage)
	}
	return stages, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run           Run
		branch        sql.NullString
		versionBefore sql.NullString
		versionAfter  sql.NullString
		tag           sql.NullString
		detail        sql.NullString
		startedRaw    string
		finishedRaw   string
	)
	if err := scanner.Scan(
		&run.RunID,
		&run.Phase,
		&branch,
		&versionBefore,
		&versionAfter,
		&tag,
		&run.Outcome,
		&detail,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return Run{}, err
	}
	run.Branch = branch.String
	run.VersionBefore = versionBefore.String
	run.VersionAfter = versionAfter.String
	run.Tag = tag.String
	run.Detail = detail.String
	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	if finished, err := parseTimeString(finishedRaw); err == nil {
		run.FinishedAt = finished
	}
	return run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
