package automation

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"github.com/redmarwoest/cp-automation-script/internal/infra"
)

// Runner lets tests stub the external process.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec. The process is killed when ctx ends.
type ExecRunner struct {
	Logger *infra.Logger
	// WaitDelay bounds how long to wait for output pipes after the process
	// was killed.
	WaitDelay time.Duration
}

func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = r.WaitDelay
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = 5 * time.Second
	}
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	start := time.Now()
	err := cmd.Run()
	if r.Logger != nil && err != nil {
		r.Logger.Error().
			Err(err).
			Str("cmd", name).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Str("stderr", truncate(errb.String(), 8<<10)).
			Msg("automation: exec failed")
	}
	return out.Bytes(), errb.Bytes(), err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
