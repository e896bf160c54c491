package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:  "cp-worker",
		Usage: "course print poster and mockup automation worker",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "poll the poster and mockup queues until interrupted",
				Flags:  []cli.Flag{envFlag()},
				Action: runAction,
			},
			{
				Name:   "check",
				Usage:  "report configuration problems of queues, storage, templates and editors",
				Flags:  []cli.Flag{envFlag()},
				Action: checkAction,
			},
			{
				Name:  "render",
				Usage: "render a single queue item without claiming it",
				Commands: []*cli.Command{
					{
						Name:   "poster",
						Usage:  "render a poster queue item and print the result",
						Flags:  []cli.Flag{envFlag(), jobFlag()},
						Action: renderPosterAction,
					},
					{
						Name:   "mockup",
						Usage:  "render a mockup queue item and print the result",
						Flags:  []cli.Flag{envFlag(), jobFlag()},
						Action: renderMockupAction,
					},
				},
			},
		},
		DefaultCommand: "run",
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "env",
		Usage: "path to an optional .env file",
		Value: ".env",
	}
}

func jobFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "job",
		Usage:    "path to a queue item JSON file",
		Required: true,
	}
}
