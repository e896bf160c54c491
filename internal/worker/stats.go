package worker

import (
	"time"

	"github.com/redmarwoest/cp-automation-script/internal/domain/job"
)

// Stats is the worker state served by the status endpoint.
type Stats struct {
	StartedAt      time.Time  `json:"startedAt"`
	Interval       string     `json:"interval"`
	LastTick       *time.Time `json:"lastTick,omitempty"`
	Ticks          int64      `json:"ticks"`
	Processed      int64      `json:"processed"`
	Failed         int64      `json:"failed"`
	LastClaimError string     `json:"lastClaimError,omitempty"`
	Current        *Current   `json:"current,omitempty"`
	LastJob        *Outcome   `json:"lastJob,omitempty"`
}

// Current is the job in flight.
type Current struct {
	Kind    job.Kind  `json:"kind"`
	QueueID string    `json:"queueId"`
	Since   time.Time `json:"since"`
}

// Outcome is the last finished job.
type Outcome struct {
	Kind       job.Kind  `json:"kind"`
	QueueID    string    `json:"queueId"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finishedAt"`
	Duration   string    `json:"duration"`
}

// Snapshot returns a copy of the current stats.
func (w *Worker) Snapshot() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.stats
	if s.LastTick != nil {
		t := *s.LastTick
		s.LastTick = &t
	}
	if s.Current != nil {
		c := *s.Current
		s.Current = &c
	}
	if s.LastJob != nil {
		o := *s.LastJob
		s.LastJob = &o
	}
	return s
}

func (w *Worker) update(fn func(*Stats)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(&w.stats)
}
