// Package worker polls the poster and mockup queues and runs one job at a
// time.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redmarwoest/cp-automation-script/internal/domain/job"
	"github.com/redmarwoest/cp-automation-script/internal/infra"
	"github.com/redmarwoest/cp-automation-script/internal/journal"
	"github.com/redmarwoest/cp-automation-script/internal/queue"
)

const defaultInterval = 30 * time.Second

// Queue is one remote queue.
type Queue interface {
	Name() string
	Next(ctx context.Context) (json.RawMessage, error)
	Start(ctx context.Context, id job.ID) error
	Complete(ctx context.Context, id job.ID, result any) error
	Fail(ctx context.Context, id job.ID, message string) error
	Stats(ctx context.Context) (map[string]any, error)
}

// Processor renders claimed jobs.
type Processor interface {
	Poster(ctx context.Context, p *job.Poster) (*job.PosterResult, error)
	Mockup(ctx context.Context, m *job.Mockup) (*job.MockupResult, error)
}

// Recorder stores finished jobs.
type Recorder interface {
	Record(ctx context.Context, e journal.Entry) error
}

// Options configures a Worker.
type Options struct {
	Posters   Queue
	Mockups   Queue
	Processor Processor
	// Journal is optional.
	Journal  Recorder
	Interval time.Duration
	Logger   *infra.Logger
}

// Worker claims jobs from the poster queue first and the mockup queue second.
type Worker struct {
	posters   Queue
	mockups   Queue
	processor Processor
	journal   Recorder
	interval  time.Duration
	logger    *infra.Logger
	now       func() time.Time

	mu    sync.Mutex
	stats Stats
}

func New(opts Options) (*Worker, error) {
	if opts.Posters == nil || opts.Mockups == nil {
		return nil, errors.New("worker: both queues are required")
	}
	if opts.Processor == nil {
		return nil, errors.New("worker: processor is required")
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	w := &Worker{
		posters:   opts.Posters,
		mockups:   opts.Mockups,
		processor: opts.Processor,
		journal:   opts.Journal,
		interval:  interval,
		logger:    logger,
		now:       time.Now,
	}
	w.stats.StartedAt = w.now()
	w.stats.Interval = interval.String()
	return w, nil
}

// Probe asks both queues for their statistics. An unreachable queue is an
// error; an error status is only logged because not every deployment
// implements the stats action.
func (w *Worker) Probe(ctx context.Context) error {
	for _, q := range []Queue{w.posters, w.mockups} {
		stats, err := q.Stats(ctx)
		if err == nil {
			w.logger.Info().Str("queue", q.Name()).Interface("stats", stats).Msg("worker: queue reachable")
			continue
		}
		var apiErr *queue.APIError
		if errors.As(err, &apiErr) && !apiErr.Transport() {
			w.logger.Warn().Err(err).Str("queue", q.Name()).Msg("worker: queue stats unavailable")
			continue
		}
		return fmt.Errorf("worker: %s queue unreachable: %w", q.Name(), err)
	}
	return nil
}

// Run ticks once immediately and then every interval until ctx is cancelled.
// Ticks never overlap.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info().Dur("interval", w.interval).Msg("worker: started")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		if _, err := w.Tick(ctx); err != nil {
			w.logger.Error().Err(err).Msg("worker: tick aborted")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Tick claims and processes at most one job. It reports whether a job was
// claimed; the error is a claim failure that ended the tick early.
func (w *Worker) Tick(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	w.update(func(s *Stats) {
		s.Ticks++
		now := w.now()
		s.LastTick = &now
	})

	for _, c := range []struct {
		kind job.Kind
		q    Queue
	}{
		{job.KindPoster, w.posters},
		{job.KindMockup, w.mockups},
	} {
		raw, err := c.q.Next(ctx)
		if err != nil {
			w.update(func(s *Stats) { s.LastClaimError = err.Error() })
			return false, fmt.Errorf("worker: claim from %s queue: %w", c.q.Name(), err)
		}
		if raw == nil {
			continue
		}
		w.update(func(s *Stats) { s.LastClaimError = "" })
		w.handle(ctx, c.kind, c.q, raw)
		return true, nil
	}
	w.update(func(s *Stats) { s.LastClaimError = "" })
	w.logger.Info().Msg("worker: no items in either queue")
	return false, nil
}

func (w *Worker) handle(ctx context.Context, kind job.Kind, q Queue, raw json.RawMessage) {
	id, _ := job.PeekID(raw)
	log := w.logger.With().Str("queue", q.Name()).Str("queue_id", id.String()).Logger()

	run, err := w.prepare(kind, raw)
	if err != nil {
		log.Error().Err(err).Msg("worker: rejected queue item")
		if id.IsZero() {
			return
		}
		if ferr := q.Fail(ctx, id, err.Error()); ferr != nil {
			log.Error().Err(ferr).Msg("worker: failed to mark item as failed")
		}
		w.finish(ctx, kind, id, w.now(), nil, err)
		return
	}

	if err := q.Start(ctx, id); err != nil {
		log.Error().Err(err).Msg("worker: failed to mark item as processing, skipping")
		return
	}

	started := w.now()
	w.update(func(s *Stats) { s.Current = &Current{Kind: kind, QueueID: id.String(), Since: started} })
	log.Info().Str("kind", string(kind)).Msg("worker: processing queue item")

	result, err := run(ctx)
	if err == nil {
		if cerr := q.Complete(ctx, id, result); cerr != nil {
			err = fmt.Errorf("failed to mark item as completed: %w", cerr)
		}
	}
	if err != nil {
		log.Error().Err(err).Msg("worker: job failed")
		if ferr := q.Fail(ctx, id, err.Error()); ferr != nil {
			log.Error().Err(ferr).Msg("worker: failed to mark item as failed")
		}
		result = nil
	} else {
		log.Info().Dur("took", w.now().Sub(started)).Msg("worker: job completed")
	}
	w.finish(ctx, kind, id, started, result, err)
}

// prepare decodes raw and returns the function that processes it.
func (w *Worker) prepare(kind job.Kind, raw json.RawMessage) (func(context.Context) (any, error), error) {
	switch kind {
	case job.KindPoster:
		p, err := job.DecodePoster(raw)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context) (any, error) {
			res, err := w.processor.Poster(ctx, p)
			if err != nil {
				return nil, err
			}
			return res, nil
		}, nil
	case job.KindMockup:
		m, err := job.DecodeMockup(raw)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context) (any, error) {
			res, err := w.processor.Mockup(ctx, m)
			if err != nil {
				return nil, err
			}
			return res, nil
		}, nil
	default:
		return nil, fmt.Errorf("worker: unsupported job kind %q", kind)
	}
}

func (w *Worker) finish(ctx context.Context, kind job.Kind, id job.ID, started time.Time, result any, jobErr error) {
	finished := w.now()
	outcome := Outcome{
		Kind:       kind,
		QueueID:    id.String(),
		Status:     journal.StatusCompleted,
		FinishedAt: finished,
		Duration:   finished.Sub(started).String(),
	}
	if jobErr != nil {
		outcome.Status = journal.StatusFailed
		outcome.Error = jobErr.Error()
	}
	w.update(func(s *Stats) {
		s.Current = nil
		s.LastJob = &outcome
		if jobErr != nil {
			s.Failed++
		} else {
			s.Processed++
		}
	})

	if w.journal == nil {
		return
	}
	entry := journal.Entry{
		Kind:       kind,
		QueueID:    id.String(),
		Status:     outcome.Status,
		Error:      outcome.Error,
		StartedAt:  started,
		FinishedAt: finished,
	}
	if result != nil {
		if data, err := json.Marshal(result); err == nil {
			entry.Result = data
		}
	}
	if err := w.journal.Record(ctx, entry); err != nil {
		w.logger.Warn().Err(err).Str("queue_id", id.String()).Msg("worker: journal write failed")
	}
}
