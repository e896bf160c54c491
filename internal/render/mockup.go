package render

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"

	"github.com/redmarwoest/cp-automation-script/internal/domain/job"
	"github.com/redmarwoest/cp-automation-script/internal/domain/palette"
	"github.com/redmarwoest/cp-automation-script/internal/script"
	"github.com/redmarwoest/cp-automation-script/internal/storage"
)

// Mockup renders one poster per color variant from the poster templates,
// uploads the PDFs, places each
// PDF into the Photoshop mockup template and uploads the PNGs. Any failure
// fails the whole job; nothing is reported for partially finished variants.
func (r *Renderer) Mockup(ctx context.Context, m *job.Mockup) (*job.MockupResult, error) {
	if m.SVGMap == "" {
		return nil, ErrNoMap
	}
	if r.opts.CDN == nil {
		return nil, errors.New("render: no CDN uploader configured")
	}
	mockupTemplate := filepath.Join(r.opts.MockupTemplateDir, script.MockupTemplateName(m.Horizontal()))
	if err := requireFile(ErrMissingTemplate, mockupTemplate); err != nil {
		return nil, err
	}
	if err := r.ensureDirs(); err != nil {
		return nil, err
	}

	queueID := m.QueueID.String()
	log := r.logger.With().Str("queue_id", queueID).Logger()
	log.Info().
		Str("course", m.CourseName).
		Str("orientation", m.Orientation).
		Int("holes", len(m.ScoreCard)).
		Msg("render: generating mockup variants")

	variants := palette.MockupVariants
	result := &job.MockupResult{
		IllustratorFiles: make([]string, 0, len(variants)),
		PhotoshopFiles:   make([]string, 0, len(variants)),
		DownloadLinks: job.DownloadLinks{
			Illustrator: make([]string, 0, len(variants)),
			Photoshop:   make([]string, 0, len(variants)),
		},
	}

	for i, variant := range variants {
		poster := m.PosterFor(variant)
		res, err := r.poster(ctx, &poster, posterRun{templateDir: r.opts.TemplateDir, variant: variant})
		if err != nil {
			return nil, fmt.Errorf("render: %s poster: %w", variant, err)
		}
		result.IllustratorFiles = append(result.IllustratorFiles, res.PosterPath)
		log.Info().Str("variant", variant).Int("step", i+1).Int("of", len(variants)).Msg("render: variant poster ready")
		if i < len(variants)-1 {
			if err := r.settle(ctx); err != nil {
				return nil, err
			}
		}
	}

	for i, variant := range variants {
		link, err := r.upload(ctx, result.IllustratorFiles[i], remotePath(queueID, "illustrator", lower.String(variant)+".pdf"), "application/pdf")
		if err != nil {
			return nil, fmt.Errorf("render: upload %s pdf: %w", variant, err)
		}
		result.DownloadLinks.Illustrator = append(result.DownloadLinks.Illustrator, link)
		log.Info().Str("variant", variant).Str("url", link).Msg("render: variant pdf uploaded")
	}

	for i, variant := range variants {
		pngPath, err := r.photoshop(ctx, queueID, variant, result.IllustratorFiles[i], mockupTemplate)
		if err != nil {
			return nil, fmt.Errorf("render: %s mockup: %w", variant, err)
		}
		result.PhotoshopFiles = append(result.PhotoshopFiles, pngPath)

		link, err := r.upload(ctx, pngPath, remotePath(queueID, "photoshop", lower.String(variant)+".png"), "image/png")
		if err != nil {
			return nil, fmt.Errorf("render: upload %s png: %w", variant, err)
		}
		result.DownloadLinks.Photoshop = append(result.DownloadLinks.Photoshop, link)
		log.Info().Str("variant", variant).Str("url", link).Msg("render: variant mockup uploaded")

		if i < len(variants)-1 {
			if err := r.settle(ctx); err != nil {
				return nil, err
			}
		}
	}

	log.Info().Int("variants", len(variants)).Msg("render: mockup finished")
	return result, nil
}

func (r *Renderer) photoshop(ctx context.Context, queueID, variant, pdfPath, templatePath string) (string, error) {
	outputPath := filepath.Join(r.opts.ExportDir, MockupFileName(queueID, variant))
	if err := clearStale(outputPath); err != nil {
		return "", err
	}
	source, err := script.Mockup(script.MockupParams{
		QueueID:      queueID,
		Variant:      variant,
		PDFPath:      filepath.ToSlash(pdfPath),
		TemplatePath: templatePath,
		OutputPath:   outputPath,
	})
	if err != nil {
		return "", err
	}
	scriptPath, remove, err := r.writeTemp("mockup", ".jsx", source)
	defer remove()
	if err != nil {
		return "", err
	}
	if _, err := r.opts.Driver.RunPhotoshop(ctx, scriptPath); err != nil {
		return "", err
	}
	if err := requireFile(ErrMissingArtifact, outputPath); err != nil {
		return "", err
	}
	return outputPath, nil
}

func (r *Renderer) upload(ctx context.Context, localPath, remote, contentType string) (string, error) {
	res, err := r.opts.CDN.Upload(ctx, storage.Request{LocalPath: localPath, RemotePath: remote, ContentType: contentType})
	if err != nil {
		return "", err
	}
	return res.DownloadURL, nil
}

// remotePath returns mockups/<queueId>/<stage>/<file>.
func remotePath(queueID, stage, file string) string {
	return path.Join("mockups", pathSegment(queueID), stage, file)
}
