// Package render turns claimed jobs into files: poster PDFs rendered by
// Illustrator and mockup PNGs rendered by Photoshop, plus their uploads.
package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/redmarwoest/cp-automation-script/internal/automation"
	"github.com/redmarwoest/cp-automation-script/internal/infra"
	"github.com/redmarwoest/cp-automation-script/internal/storage"
)

var (
	ErrMissingTemplate = errors.New("render: template file does not exist")
	ErrMissingArtifact = errors.New("render: expected output was not produced")
	ErrNoCustomization = errors.New("render: no customization data found for order")
	ErrNoMap           = errors.New("render: no SVG map found for mockup generation")
)

// Driver runs generated scripts inside the editors.
type Driver interface {
	RunIllustrator(ctx context.Context, scriptPath string) (automation.Output, error)
	RunPhotoshop(ctx context.Context, scriptPath string) (automation.Output, error)
}

// Options configures a Renderer.
type Options struct {
	TemplateDir       string
	MockupTemplateDir string
	ExportDir         string
	WorkDir           string
	PDFPreset         string
	// Settle is the pause between consecutive editor runs of one mockup.
	Settle time.Duration

	Driver Driver
	// CDN receives mockup artifacts. Required for mockups.
	CDN storage.Uploader
	// Drive receives poster copies. Nil disables the Drive step.
	Drive storage.Uploader

	Logger *infra.Logger
}

// Renderer runs the poster and mockup pipelines. It holds no per-job state;
// callers run one job at a time.
type Renderer struct {
	opts   Options
	logger *infra.Logger
}

// New validates opts and applies defaults.
func New(opts Options) (*Renderer, error) {
	if opts.Driver == nil {
		return nil, errors.New("render: driver is required")
	}
	if opts.WorkDir == "" {
		opts.WorkDir = filepath.Join(os.TempDir(), "cp-automation")
	}
	if opts.PDFPreset == "" {
		opts.PDFPreset = "[High Quality Print]"
	}
	if opts.Settle < 0 {
		opts.Settle = 0
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &Renderer{opts: opts, logger: logger}, nil
}

// NewFromConfig wires a Renderer from the process configuration.
func NewFromConfig(cfg *infra.Config, driver Driver, cdn, drive storage.Uploader, logger *infra.Logger) (*Renderer, error) {
	return New(Options{
		TemplateDir:       cfg.TemplateDir,
		MockupTemplateDir: cfg.MockupTemplateDir,
		ExportDir:         cfg.ExportDir,
		WorkDir:           cfg.WorkDir,
		PDFPreset:         cfg.PDFPreset,
		Settle:            cfg.VariantSettle,
		Driver:            driver,
		CDN:               cdn,
		Drive:             drive,
		Logger:            logger,
	})
}

// Check lists directory problems that would make every job fail.
func (r *Renderer) Check() []string {
	var issues []string
	for _, dir := range []struct{ key, path string }{
		{"TEMPLATE_DIR", r.opts.TemplateDir},
		{"MOCKUP_TEMPLATE_DIR", r.opts.MockupTemplateDir},
	} {
		info, err := os.Stat(dir.path)
		if err != nil || !info.IsDir() {
			issues = append(issues, fmt.Sprintf("%s %q is not a directory", dir.key, dir.path))
		}
	}
	for _, dir := range []struct{ key, path string }{
		{"EXPORT_DIR", r.opts.ExportDir},
		{"WORK_DIR", r.opts.WorkDir},
	} {
		if err := os.MkdirAll(dir.path, 0o755); err != nil {
			issues = append(issues, fmt.Sprintf("%s %q cannot be created: %v", dir.key, dir.path, err))
		}
	}
	return issues
}

func (r *Renderer) ensureDirs() error {
	for _, dir := range []string{r.opts.ExportDir, r.opts.WorkDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("render: ensure %s: %w", dir, err)
		}
	}
	return nil
}

// writeTemp writes content to a uniquely named file in the work directory and
// returns a function that removes it.
func (r *Renderer) writeTemp(prefix, ext, content string) (string, func(), error) {
	path := filepath.Join(r.opts.WorkDir, prefix+"-"+uuid.NewString()+ext)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", func() {}, fmt.Errorf("render: write %s: %w", filepath.Base(path), err)
	}
	return path, func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			r.logger.Warn().Err(err).Str("path", path).Msg("render: remove temp file")
		}
	}, nil
}

func requireFile(sentinel error, path string) error {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s", sentinel, path)
	}
	return nil
}

// clearStale removes a previous artifact so the existence check after a run
// only passes for fresh output.
func clearStale(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("render: remove stale %s: %w", path, err)
	}
	return nil
}

func (r *Renderer) settle(ctx context.Context) error {
	if r.opts.Settle <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(r.opts.Settle)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
