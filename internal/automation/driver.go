// Package automation drives the desktop editors through osascript.
package automation

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/redmarwoest/cp-automation-script/internal/infra"
)

//go:embed applescript/illustrator.applescript
var illustratorLauncher string

//go:embed applescript/photoshop.applescript
var photoshopLauncher string

const defaultTimeout = 10 * time.Minute

// ToolError reports an editor run that exited with a failure.
type ToolError struct {
	App    string
	Stdout string
	Stderr string
	Err    error
}

func (e *ToolError) Error() string {
	detail := strings.TrimSpace(e.Stderr)
	if detail == "" {
		detail = strings.TrimSpace(e.Stdout)
	}
	if detail == "" {
		return fmt.Sprintf("automation: %s failed: %v", e.App, e.Err)
	}
	return fmt.Sprintf("automation: %s failed: %v: %s", e.App, e.Err, detail)
}

func (e *ToolError) Unwrap() error { return e.Err }

// TimeoutError reports an editor run that was killed after exceeding its
// time limit.
type TimeoutError struct {
	App     string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("automation: %s did not finish within %s", e.App, e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return context.DeadlineExceeded }

// Output is what an editor run printed.
type Output struct {
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Options configures a Driver.
type Options struct {
	OsascriptPath  string
	IllustratorApp string
	PhotoshopAppID string
	Timeout        time.Duration
	Runner         Runner
	Logger         *infra.Logger
}

// Driver runs generated ExtendScript files inside Illustrator and Photoshop.
type Driver struct {
	osascript   string
	illustrator string
	photoshop   string
	timeout     time.Duration
	runner      Runner
	logger      *infra.Logger
}

// NewDriver applies defaults to opts.
func NewDriver(opts Options) *Driver {
	d := &Driver{
		osascript:   strings.TrimSpace(opts.OsascriptPath),
		illustrator: strings.TrimSpace(opts.IllustratorApp),
		photoshop:   strings.TrimSpace(opts.PhotoshopAppID),
		timeout:     opts.Timeout,
		runner:      opts.Runner,
		logger:      opts.Logger,
	}
	if d.osascript == "" {
		d.osascript = "/usr/bin/osascript"
	}
	if d.illustrator == "" {
		d.illustrator = "Adobe Illustrator"
	}
	if d.photoshop == "" {
		d.photoshop = "com.adobe.Photoshop"
	}
	if d.timeout <= 0 {
		d.timeout = defaultTimeout
	}
	if d.logger == nil {
		d.logger = infra.DiscardLogger()
	}
	if d.runner == nil {
		d.runner = ExecRunner{Logger: d.logger}
	}
	return d
}

// RunIllustrator executes the script at scriptPath in Illustrator and blocks
// until it finishes.
func (d *Driver) RunIllustrator(ctx context.Context, scriptPath string) (Output, error) {
	return d.run(ctx, "Illustrator", illustratorLauncher, scriptPath, d.illustrator)
}

// RunPhotoshop executes the script at scriptPath in Photoshop, launching the
// application first when it is not running.
func (d *Driver) RunPhotoshop(ctx context.Context, scriptPath string) (Output, error) {
	return d.run(ctx, "Photoshop", photoshopLauncher, scriptPath, d.photoshop)
}

func (d *Driver) run(ctx context.Context, app, launcher, scriptPath, target string) (Output, error) {
	runCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	stdout, stderr, err := d.runner.Run(runCtx, d.osascript, "-e", launcher, scriptPath, target)
	out := Output{Stdout: string(stdout), Stderr: string(stderr), Duration: time.Since(start)}

	if err == nil {
		d.logger.Debug().
			Str("app", app).
			Str("script", scriptPath).
			Dur("duration", out.Duration).
			Msg("automation: script finished")
		return out, nil
	}
	if ctx.Err() != nil {
		return out, fmt.Errorf("automation: %s: %w", app, ctx.Err())
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return out, &TimeoutError{App: app, Timeout: d.timeout}
	}
	return out, &ToolError{App: app, Stdout: out.Stdout, Stderr: out.Stderr, Err: err}
}

// Check lists what prevents the driver from running scripts on this host.
func (d *Driver) Check() []string {
	var issues []string
	info, err := os.Stat(d.osascript)
	switch {
	case err != nil:
		issues = append(issues, fmt.Sprintf("osascript not found at %s", d.osascript))
	case info.IsDir() || info.Mode()&0o111 == 0:
		issues = append(issues, fmt.Sprintf("osascript at %s is not executable", d.osascript))
	}
	return issues
}
