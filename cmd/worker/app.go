package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/redmarwoest/cp-automation-script/internal/automation"
	"github.com/redmarwoest/cp-automation-script/internal/infra"
	"github.com/redmarwoest/cp-automation-script/internal/journal"
	"github.com/redmarwoest/cp-automation-script/internal/queue"
	"github.com/redmarwoest/cp-automation-script/internal/render"
	"github.com/redmarwoest/cp-automation-script/internal/storage"
)

// app holds the components shared by all commands.
type app struct {
	cfg    *infra.Config
	logger *infra.Logger

	driver   *automation.Driver
	cdn      storage.Uploader
	drive    storage.Uploader
	renderer *render.Renderer
	posters  *queue.Client
	mockups  *queue.Client

	pool    *pgxpool.Pool
	journal *journal.Journal
}

func newApp(ctx context.Context, envFile string, withJournal bool) (*app, error) {
	cfg, err := infra.LoadConfig(envFile)
	if err != nil {
		return nil, err
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)
	a := &app{cfg: cfg, logger: &logger}

	a.driver = automation.NewDriver(automation.Options{
		OsascriptPath:  cfg.OsascriptPath,
		IllustratorApp: cfg.IllustratorApp,
		PhotoshopAppID: cfg.PhotoshopAppID,
		Timeout:        cfg.ScriptTimeout,
		Logger:         a.logger,
	})
	if a.cdn, err = storage.NewCDN(cfg, a.logger); err != nil {
		return nil, err
	}
	a.drive = storage.NewDrive(cfg, a.logger)
	if a.renderer, err = render.NewFromConfig(cfg, a.driver, a.cdn, a.drive, a.logger); err != nil {
		return nil, err
	}
	a.posters = queue.NewPosterClient(cfg.PosterQueueURL, cfg.QueueTimeout, a.logger)
	a.mockups = queue.NewMockupClient(cfg.MockupQueueURL, cfg.QueueTimeout, a.logger)

	if withJournal && cfg.DatabaseURL != "" {
		a.openJournal(ctx)
	}
	return a, nil
}

// openJournal connects the run journal. Failures leave the journal disabled;
// the worker runs without it.
func (a *app) openJournal(ctx context.Context) {
	pool, err := infra.NewDBPool(ctx, a.cfg)
	if err != nil {
		a.logger.Warn().Err(err).Msg("worker: journal disabled, database unavailable")
		return
	}
	j := journal.New(infra.NewSQLRunner(pool, a.logger), a.logger)
	if err := j.Migrate(ctx); err != nil {
		pool.Close()
		a.logger.Warn().Err(err).Msg("worker: journal disabled, migration failed")
		return
	}
	a.pool = pool
	a.journal = j
}

func (a *app) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

func (a *app) logStartup() {
	a.logger.Info().
		Str("poster_queue", a.posters.Endpoint()).
		Str("mockup_queue", a.mockups.Endpoint()).
		Dur("poll_interval", a.cfg.PollInterval).
		Int("max_retries", a.cfg.MaxRetries).
		Str("cdn", a.cdn.Name()).
		Bool("drive", a.drive != nil).
		Bool("journal", a.journal != nil).
		Str("export_dir", a.cfg.ExportDir).
		Msg("worker: configuration loaded")
}

// issues collects every configuration problem for the check command.
func (a *app) issues(ctx context.Context) []string {
	var out []string
	add := func(component string, issues []string) {
		for _, issue := range issues {
			out = append(out, fmt.Sprintf("%s: %s", component, issue))
		}
	}
	add("editors", a.driver.Check())
	add("render", a.renderer.Check())
	add(a.cdn.Name(), a.cdn.Check(ctx))
	if a.drive != nil {
		add(a.drive.Name(), a.drive.Check(ctx))
	}
	for _, q := range []*queue.Client{a.posters, a.mockups} {
		if _, err := q.Stats(ctx); err != nil {
			add(q.Name()+" queue", []string{err.Error()})
		}
	}
	if a.cfg.DatabaseURL != "" && a.journal == nil {
		add("journal", []string{"database configured but unavailable"})
	}
	return out
}
