package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/redmarwoest/cp-automation-script/internal/domain/job"
	"github.com/redmarwoest/cp-automation-script/internal/http/handlers"
	"github.com/redmarwoest/cp-automation-script/internal/http/httpapi"
	"github.com/redmarwoest/cp-automation-script/internal/infra"
	"github.com/redmarwoest/cp-automation-script/internal/worker"
)

func runAction(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(ctx, cmd.String("env"), true)
	if err != nil {
		return cli.Exit(fmt.Sprintf("worker: startup failed: %v", err), 1)
	}
	defer a.Close()
	a.logStartup()

	opts := worker.Options{
		Posters:   a.posters,
		Mockups:   a.mockups,
		Processor: a.renderer,
		Interval:  a.cfg.PollInterval,
		Logger:    a.logger,
	}
	if a.journal != nil {
		opts.Journal = a.journal
	}
	w, err := worker.New(opts)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if a.cfg.StartupProbe {
		if err := w.Probe(ctx); err != nil {
			a.logger.Error().Err(err).Msg("worker: startup probe failed")
			return cli.Exit(err.Error(), 1)
		}
	}

	if a.cfg.StatusAddr != "" {
		app := handlers.NewApp(w, nil)
		if a.journal != nil {
			app.Runs = a.journal
		}
		server := infra.NewHTTPServer(a.cfg, httpapi.NewRouter(app, a.logger, a.cfg.StatusOrigins))
		go func() {
			a.logger.Info().Str("addr", server.Addr()).Msg("worker: status server listening")
			if err := server.Start(); err != nil {
				a.logger.Error().Err(err).Msg("worker: status server failed")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				a.logger.Warn().Err(err).Msg("worker: status server shutdown")
			}
		}()
	}

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return cli.Exit(err.Error(), 1)
	}
	a.logger.Info().Msg("worker: stopped")
	return nil
}

func checkAction(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(ctx, cmd.String("env"), true)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer a.Close()

	issues := a.issues(ctx)
	if len(issues) == 0 {
		fmt.Println("configuration ok")
		return nil
	}
	for _, issue := range issues {
		fmt.Println("- " + issue)
	}
	return cli.Exit(fmt.Sprintf("%d configuration issue(s)", len(issues)), 1)
}

func renderPosterAction(ctx context.Context, cmd *cli.Command) error {
	a, raw, err := loadJob(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := job.DecodePoster(raw)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	res, err := a.renderer.Poster(ctx, p)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return printJSON(res)
}

func renderMockupAction(ctx context.Context, cmd *cli.Command) error {
	a, raw, err := loadJob(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	m, err := job.DecodeMockup(raw)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	res, err := a.renderer.Mockup(ctx, m)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return printJSON(res)
}

func loadJob(ctx context.Context, cmd *cli.Command) (*app, []byte, error) {
	raw, err := os.ReadFile(cmd.String("job"))
	if err != nil {
		return nil, nil, cli.Exit(fmt.Sprintf("read job: %v", err), 1)
	}
	a, err := newApp(ctx, cmd.String("env"), false)
	if err != nil {
		return nil, nil, cli.Exit(err.Error(), 1)
	}
	return a, raw, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
