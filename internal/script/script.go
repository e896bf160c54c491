// Package script renders the ExtendScript programs run inside Illustrator and
// Photoshop. Rendering is pure: parameters in, script text out.
package script

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/template"

	"github.com/redmarwoest/cp-automation-script/internal/domain/palette"
	"github.com/redmarwoest/cp-automation-script/internal/domain/scorecard"
)

// ErrInvalidSize is returned for size descriptors that are not "<w> x <h> cm".
var ErrInvalidSize = errors.New("script: invalid size")

// PlaceholderNames are the smart-object layer names searched for in mockup
// templates, in order.
var PlaceholderNames = []string{"PosterPlaceholder", "Poster", "Poster11", "Poster 11", "Placeholder"}

//go:embed templates/*.jsx.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("script").Funcs(template.FuncMap{
	"js":  jsLiteral,
	"rgb": rgbArgs,
}).ParseFS(templateFS, "templates/*.jsx.tmpl"))

// TemplateName returns the Illustrator template for a print size, e.g.
// "40 x 50 cm" in portrait is "cp-canvas__vertical__400x500.ai".
func TemplateName(horizontal bool, size string) (string, error) {
	dims, err := millimeters(size)
	if err != nil {
		return "", err
	}
	orientation := "vertical"
	if horizontal {
		orientation = "horizontal"
	}
	return fmt.Sprintf("cp-canvas__%s__%s.ai", orientation, dims), nil
}

// MockupTemplateName returns the Photoshop template for an orientation.
func MockupTemplateName(horizontal bool) string {
	if horizontal {
		return "Landscape.psd"
	}
	return "Portrait.psd"
}

func millimeters(size string) (string, error) {
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(size), "cm"))
	parts := strings.Split(trimmed, "x")
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: %q", ErrInvalidSize, size)
	}
	out := make([]string, 0, 2)
	for _, part := range parts {
		cm, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || cm <= 0 {
			return "", fmt.Errorf("%w: %q", ErrInvalidSize, size)
		}
		out = append(out, strconv.Itoa(int(math.Round(cm*10))))
	}
	return strings.Join(out, "x"), nil
}

// PosterParams carries everything the Illustrator script needs.
type PosterParams struct {
	TemplatePath string
	MapPath      string
	ExportDir    string
	FileName     string
	PDFPreset    string

	Title      string
	SubTitle   string
	UnderTitle string
	ExtraTitle string

	Colors             palette.Colors
	NavigationPosition scorecard.Position
	ScorecardPosition  scorecard.Position
	Table              scorecard.Table
}

type markView struct {
	Hole   int    `json:"hole"`
	Filled bool   `json:"filled"`
	RGB    [3]int `json:"rgb"`
	Circle bool   `json:"circle"`
}

type posterView struct {
	PosterParams
	Layers    []string
	Marks     []markView
	Highlight map[string]bool
}

// Poster renders the Illustrator script for one poster.
func Poster(p PosterParams) (string, error) {
	view := posterView{
		PosterParams: p,
		Layers:       scorecard.Layers,
		Marks:        make([]markView, 0, len(p.Table.Marks)),
		Highlight:    p.Table.Highlighted(),
	}
	if view.Table.Cells == nil {
		view.Table.Cells = map[string]string{}
	}
	for _, m := range p.Table.Marks {
		view.Marks = append(view.Marks, markView{
			Hole:   m.Hole,
			Filled: m.Treatment.Filled,
			RGB:    m.Treatment.Fill.Triple(),
			Circle: m.Treatment.Circle,
		})
	}
	return render("poster.jsx.tmpl", view)
}

// MockupParams carries everything the Photoshop script needs.
type MockupParams struct {
	QueueID      string
	Variant      string
	PDFPath      string
	TemplatePath string
	OutputPath   string
}

type mockupView struct {
	MockupParams
	Placeholders []string
}

// Mockup renders the Photoshop script that places one poster PDF into a
// mockup template and exports it as PNG.
func Mockup(p MockupParams) (string, error) {
	return render("mockup.jsx.tmpl", mockupView{MockupParams: p, Placeholders: PlaceholderNames})
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("script: render %s: %w", name, err)
	}
	return buf.String(), nil
}

// jsLiteral encodes v as a JavaScript literal. JSON is a subset of the
// ExtendScript grammar, so any value json.Marshal accepts is safe to embed.
func jsLiteral(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func rgbArgs(c palette.RGB) string {
	t := c.Triple()
	return fmt.Sprintf("%d, %d, %d", t[0], t[1], t[2])
}
