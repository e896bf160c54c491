// Package journal records the outcome of every processed job in Postgres.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/redmarwoest/cp-automation-script/internal/domain/job"
	"github.com/redmarwoest/cp-automation-script/internal/infra"
	"github.com/redmarwoest/cp-automation-script/internal/sqlinline"
)

// Status values stored in job_runs.status.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Entry is one finished job.
type Entry struct {
	ID         uuid.UUID       `json:"id"`
	Kind       job.Kind        `json:"kind"`
	QueueID    string          `json:"queueId"`
	Status     string          `json:"status"`
	Error      string          `json:"error,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
	StartedAt  time.Time       `json:"startedAt"`
	FinishedAt time.Time       `json:"finishedAt"`
}

// Journal writes entries through an infra.SQLExecutor.
type Journal struct {
	db     infra.SQLExecutor
	logger *infra.Logger
	now    func() time.Time
}

func New(db infra.SQLExecutor, logger *infra.Logger) *Journal {
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &Journal{db: db, logger: logger, now: time.Now}
}

// Migrate creates the job_runs table when it does not exist.
func (j *Journal) Migrate(ctx context.Context) error {
	if _, err := j.db.Exec(ctx, sqlinline.QCreateJobRuns); err != nil {
		return fmt.Errorf("journal: migrate: %w", err)
	}
	return nil
}

// Record stores e. Missing ids and timestamps are filled in.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if e.QueueID == "" {
		return errors.New("journal: queue id is required")
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.FinishedAt.IsZero() {
		e.FinishedAt = j.now()
	}
	if e.StartedAt.IsZero() {
		e.StartedAt = e.FinishedAt
	}
	var result any
	if len(e.Result) > 0 {
		result = string(e.Result)
	}
	_, err := j.db.Exec(ctx, sqlinline.QInsertJobRun,
		e.ID, string(e.Kind), e.QueueID, e.Status, e.Error, result, e.StartedAt, e.FinishedAt)
	if err != nil {
		return fmt.Errorf("journal: record %s: %w", e.QueueID, err)
	}
	j.logger.Debug().Str("queue_id", e.QueueID).Str("status", e.Status).Msg("journal: recorded")
	return nil
}

// Recent returns the latest entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := j.db.Query(ctx, sqlinline.QListRecentJobRuns, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: list: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e      Entry
			kind   string
			result []byte
		)
		if err := rows.Scan(&e.ID, &kind, &e.QueueID, &e.Status, &e.Error, &result, &e.StartedAt, &e.FinishedAt); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		e.Kind = job.Kind(kind)
		if len(result) > 0 {
			e.Result = json.RawMessage(result)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: list: %w", err)
	}
	return out, nil
}

// Counts returns the number of entries per status finished since since.
func (j *Journal) Counts(ctx context.Context, since time.Time) (map[string]int64, error) {
	rows, err := j.db.Query(ctx, sqlinline.QCountJobRunsByStatus, since)
	if err != nil {
		return nil, fmt.Errorf("journal: counts: %w", err)
	}
	defer rows.Close()

	out := map[string]int64{}
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		out[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: counts: %w", err)
	}
	return out, nil
}
