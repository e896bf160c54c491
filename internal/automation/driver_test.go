package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

type fakeRunner struct {
	calls  [][]string
	stdout string
	stderr string
	err    error
	block  bool
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.block {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}
	return []byte(f.stdout), []byte(f.stderr), f.err
}

func TestRunIllustratorPassesScriptAsArgument(t *testing.T) {
	runner := &fakeRunner{stdout: "ok"}
	d := NewDriver(Options{Runner: runner, IllustratorApp: "Adobe Illustrator 2025"})

	out, err := d.RunIllustrator(context.Background(), "/tmp/poster 1.jsx")
	if err != nil {
		t.Fatalf("RunIllustrator returned error: %v", err)
	}
	if out.Stdout != "ok" {
		t.Fatalf("stdout = %q", out.Stdout)
	}
	if len(runner.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(runner.calls))
	}
	call := runner.calls[0]
	if call[0] != "/usr/bin/osascript" || call[1] != "-e" {
		t.Fatalf("unexpected command: %v", call[:2])
	}
	if !strings.Contains(call[2], "do javascript jsxFile") {
		t.Fatalf("launcher script not passed inline: %q", call[2])
	}
	if call[3] != "/tmp/poster 1.jsx" || call[4] != "Adobe Illustrator 2025" {
		t.Fatalf("script path and app must be separate argv entries: %v", call[3:])
	}
}

func TestRunPhotoshopUsesBundleID(t *testing.T) {
	runner := &fakeRunner{}
	d := NewDriver(Options{Runner: runner})
	if _, err := d.RunPhotoshop(context.Background(), "/tmp/mockup.jsx"); err != nil {
		t.Fatalf("RunPhotoshop returned error: %v", err)
	}
	call := runner.calls[0]
	if !strings.Contains(call[2], "launch") {
		t.Fatalf("photoshop launcher should start the app when needed")
	}
	if call[4] != "com.adobe.Photoshop" {
		t.Fatalf("app id = %q", call[4])
	}
}

func TestRunReturnsToolError(t *testing.T) {
	runner := &fakeRunner{stderr: "execution error: Adobe Illustrator got an error (-2700)", err: errors.New("exit status 1")}
	d := NewDriver(Options{Runner: runner})

	_, err := d.RunIllustrator(context.Background(), "/tmp/poster.jsx")
	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected ToolError, got %v", err)
	}
	if toolErr.App != "Illustrator" {
		t.Fatalf("app = %q", toolErr.App)
	}
	if !strings.Contains(err.Error(), "-2700") {
		t.Fatalf("error should carry stderr: %v", err)
	}
}

func TestRunReturnsTimeoutError(t *testing.T) {
	runner := &fakeRunner{block: true}
	d := NewDriver(Options{Runner: runner, Timeout: 20 * time.Millisecond})

	_, err := d.RunPhotoshop(context.Background(), "/tmp/mockup.jsx")
	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("TimeoutError should unwrap to DeadlineExceeded")
	}
}

func TestRunReportsParentCancellation(t *testing.T) {
	runner := &fakeRunner{block: true}
	d := NewDriver(Options{Runner: runner, Timeout: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := d.RunIllustrator(ctx, "/tmp/poster.jsx")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		t.Fatalf("cancellation must not be reported as a timeout")
	}
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not available on windows")
	}
	path := filepath.Join(t.TempDir(), "fake-osascript")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestExecRunnerKillsHungProcess(t *testing.T) {
	path := writeScript(t, "exec sleep 30")
	d := NewDriver(Options{OsascriptPath: path, Timeout: 100 * time.Millisecond})

	start := time.Now()
	_, err := d.RunIllustrator(context.Background(), "/tmp/poster.jsx")
	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
	if time.Since(start) > 10*time.Second {
		t.Fatalf("hung process was not killed promptly")
	}
}

func TestExecRunnerCapturesFailureOutput(t *testing.T) {
	path := writeScript(t, "echo partial; echo boom >&2; exit 3")
	d := NewDriver(Options{OsascriptPath: path})

	out, err := d.RunIllustrator(context.Background(), "/tmp/poster.jsx")
	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected ToolError, got %v", err)
	}
	if strings.TrimSpace(toolErr.Stderr) != "boom" || strings.TrimSpace(out.Stdout) != "partial" {
		t.Fatalf("unexpected output: stdout=%q stderr=%q", out.Stdout, toolErr.Stderr)
	}
}

func TestCheck(t *testing.T) {
	d := NewDriver(Options{OsascriptPath: filepath.Join(t.TempDir(), "missing")})
	if issues := d.Check(); len(issues) != 1 {
		t.Fatalf("expected one issue, got %v", issues)
	}
	path := writeScript(t, "exit 0")
	if issues := NewDriver(Options{OsascriptPath: path}).Check(); len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
}
