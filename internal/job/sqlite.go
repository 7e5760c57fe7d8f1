package job

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

// Compile-time check that SQLiteRepository implements Repository.
var _ Repository = (*SQLiteRepository)(nil)

// SQLiteRepository is a SQLite-backed implementation of Repository. Jobs
// survive process restarts; styles and results are stored as JSON columns
// since they are only ever read back whole.
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the SQLite database at path and applies the
// schema. The caller owns the returned repository and must call Close.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if _, err := db.Exec(`
	PRAGMA busy_timeout  = 10000;
	PRAGMA journal_mode  = WAL;
	PRAGMA synchronous   = NORMAL;
	PRAGMA foreign_keys  = ON;

	create table if not exists jobs (
		id              text primary key not null,
		url             text not null,
		styles          text not null,
		output_language text not null,
		status          text not null,
		progress        integer not null default 0,
		status_message  text not null default '',
		error           text not null default '',
		results         text not null default '[]',
		created_at      integer not null,
		updated_at      integer not null,
		started_at      integer not null default 0,
		completed_at    integer not null default 0
	);`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Close closes the underlying database handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// Save persists a job, inserting or replacing by ID.
func (r *SQLiteRepository) Save(ctx context.Context, job *Job) error {
	j := job.Clone()

	styles, err := json.Marshal(j.Styles)
	if err != nil {
		return fmt.Errorf("marshal job styles: %w", err)
	}
	results, err := json.Marshal(j.Results)
	if err != nil {
		return fmt.Errorf("marshal job results: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		insert or replace into jobs (
			id, url, styles, output_language, status, progress,
			status_message, error, results,
			created_at, updated_at, started_at, completed_at
		) values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		j.ID, j.URL, string(styles), j.OutputLanguage, string(j.Status), j.Progress,
		j.StatusMessage, j.Error, string(results),
		j.CreatedAt.UnixMilli(), j.UpdatedAt.UnixMilli(),
		timeToMilli(j.StartedAt), timeToMilli(j.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("persisting job into sqlite: %w", err)
	}

	return nil
}

// FindByID retrieves a job by its ID.
func (r *SQLiteRepository) FindByID(ctx context.Context, id string) (*Job, error) {
	row := r.db.QueryRowContext(ctx, `
		select id, url, styles, output_language, status, progress,
			status_message, error, results,
			created_at, updated_at, started_at, completed_at
		from jobs where id = $1`, id)

	j, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job by id: %w", err)
	}

	return j, nil
}

// List returns all jobs ordered by creation time.
func (r *SQLiteRepository) List(ctx context.Context) ([]*Job, error) {
	rows, err := r.db.QueryContext(ctx, `
		select id, url, styles, output_language, status, progress,
			status_message, error, results,
			created_at, updated_at, started_at, completed_at
		from jobs order by created_at`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var jobs []*Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("list jobs: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	return jobs, nil
}

// Delete removes a job from storage.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "delete from jobs where id = $1", id)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if affected == 0 {
		return ErrJobNotFound
	}

	return nil
}

// scanner abstracts sql.Row and sql.Rows for scanJob.
type scanner interface {
	Scan(dest ...any) error
}

func scanJob(s scanner) (*Job, error) {
	var (
		j                         Job
		styles, results           string
		created, updated, started int64
		completed                 int64
	)

	if err := s.Scan(
		&j.ID, &j.URL, &styles, &j.OutputLanguage, &j.Status, &j.Progress,
		&j.StatusMessage, &j.Error, &results,
		&created, &updated, &started, &completed,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(styles), &j.Styles); err != nil {
		return nil, fmt.Errorf("unmarshal job styles: %w", err)
	}
	if err := json.Unmarshal([]byte(results), &j.Results); err != nil {
		return nil, fmt.Errorf("unmarshal job results: %w", err)
	}

	j.CreatedAt = time.UnixMilli(created)
	j.UpdatedAt = time.UnixMilli(updated)
	j.StartedAt = milliToTime(started)
	j.CompletedAt = milliToTime(completed)

	return &j, nil
}

func timeToMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func milliToTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
