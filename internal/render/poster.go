package render

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/redmarwoest/cp-automation-script/internal/domain/job"
	"github.com/redmarwoest/cp-automation-script/internal/domain/palette"
	"github.com/redmarwoest/cp-automation-script/internal/domain/scorecard"
	"github.com/redmarwoest/cp-automation-script/internal/script"
	"github.com/redmarwoest/cp-automation-script/internal/storage"
	"github.com/redmarwoest/cp-automation-script/internal/svgmap"
)

type posterRun struct {
	templateDir string
	// variant is set for mockup posters and ends up in the file name.
	variant string
	drive   bool
}

// Poster renders the PDF for one order and copies it to Drive when a Drive
// uploader is configured. Drive failures are logged; the poster still
// succeeds with its local path.
func (r *Renderer) Poster(ctx context.Context, p *job.Poster) (*job.PosterResult, error) {
	return r.poster(ctx, p, posterRun{templateDir: r.opts.TemplateDir, drive: true})
}

func (r *Renderer) poster(ctx context.Context, p *job.Poster, run posterRun) (*job.PosterResult, error) {
	c := p.CustomizationData
	if c == nil {
		return nil, ErrNoCustomization
	}
	schemeName := c.Scheme()
	if schemeName == "" {
		schemeName = palette.DefaultScheme
	}
	scheme, err := palette.Lookup(schemeName)
	if err != nil {
		return nil, err
	}
	colors, err := scheme.Resolve()
	if err != nil {
		return nil, err
	}

	templateName, err := script.TemplateName(bool(c.IsHorizontal), c.SelectedSize)
	if err != nil {
		return nil, err
	}
	templatePath := filepath.Join(run.templateDir, templateName)
	if err := requireFile(ErrMissingTemplate, templatePath); err != nil {
		return nil, err
	}
	if err := r.ensureDirs(); err != nil {
		return nil, err
	}

	log := r.logger.With().Str("queue_id", p.QueueID.String()).Str("order_id", p.OrderID.String()).Logger()
	holes := c.Holes()
	log.Info().
		Str("size", c.SelectedSize).
		Str("scheme", scheme.Name).
		Bool("horizontal", bool(c.IsHorizontal)).
		Bool("show_scorecard", bool(c.ShowScorecard)).
		Int("holes", len(holes)).
		Int("scores", len(c.Scores)).
		Msg("render: generating poster")

	mapContent, err := svgmap.Decode(c.SelectedCourseMap)
	if err != nil {
		log.Warn().Err(err).Msg("render: map could not be decoded, using it as is")
	}
	recolored := svgmap.Recolor(mapContent, scheme)
	if recolored.Err != nil {
		log.Warn().Err(recolored.Err).Msg("render: map recolor failed, using original colors")
	}
	mapPath, removeMap, err := r.writeTemp("course-map", ".svg", recolored.Content)
	defer removeMap()
	if err != nil {
		return nil, err
	}

	fileName := PosterFileName(p.OrderID.String(), c.Title, run.variant)
	posterPath := filepath.Join(r.opts.ExportDir, fileName)
	if err := clearStale(posterPath); err != nil {
		return nil, err
	}

	source, err := script.Poster(script.PosterParams{
		TemplatePath:       templatePath,
		MapPath:            mapPath,
		ExportDir:          r.opts.ExportDir,
		FileName:           fileName,
		PDFPreset:          r.opts.PDFPreset,
		Title:              c.Title,
		SubTitle:           c.SubTitle,
		UnderTitle:         c.UnderTitle,
		ExtraTitle:         c.ExtraTitle,
		Colors:             colors,
		NavigationPosition: scorecard.ParseNavigation(c.NavigationPosition),
		ScorecardPosition:  scorecard.ParsePosition(c.ScorecardPosition),
		Table:              scorecard.Build(holes, c.Scores, bool(c.ShowScorecard), scorecard.ParsePosition(c.ScorecardPosition)),
	})
	if err != nil {
		return nil, err
	}
	scriptPath, removeScript, err := r.writeTemp("poster", ".jsx", source)
	defer removeScript()
	if err != nil {
		return nil, err
	}

	out, err := r.opts.Driver.RunIllustrator(ctx, scriptPath)
	if err != nil {
		return nil, err
	}
	if err := requireFile(ErrMissingArtifact, posterPath); err != nil {
		return nil, err
	}
	log.Info().Str("path", posterPath).Dur("took", out.Duration).Msg("render: poster generated")

	result := &job.PosterResult{PosterPath: posterPath, FileName: fileName, Stdout: out.Stdout}
	if run.drive && r.opts.Drive != nil {
		result.DriveFile = r.copyToDrive(ctx, p, posterPath, fileName)
	}
	return result, nil
}

func (r *Renderer) copyToDrive(ctx context.Context, p *job.Poster, posterPath, fileName string) *job.DriveFile {
	res, err := r.opts.Drive.Upload(ctx, storage.Request{
		LocalPath:   posterPath,
		RemotePath:  fileName,
		ContentType: "application/pdf",
		Description: fmt.Sprintf("Course print poster for order %s", p.OrderID),
	})
	if err != nil {
		r.logger.Warn().Err(err).
			Str("queue_id", p.QueueID.String()).
			Str("path", posterPath).
			Msg("render: drive upload failed, poster kept locally")
		return nil
	}
	name := res.FileName
	if name == "" {
		name = fileName
	}
	r.logger.Info().Str("queue_id", p.QueueID.String()).Str("file_id", res.FileID).Msg("render: poster copied to drive")
	return &job.DriveFile{
		FileID:       res.FileID,
		FileName:     name,
		ViewLink:     res.ViewURL,
		DownloadLink: res.DownloadURL,
	}
}
