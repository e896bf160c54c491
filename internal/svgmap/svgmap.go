// Package svgmap prepares the course map that is placed on a poster: it
// unwraps data URIs and recolors map features to match a color scheme.
package svgmap

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/beevik/etree"

	"github.com/redmarwoest/cp-automation-script/internal/domain/palette"
)

const (
	base64Prefix  = "data:image/svg+xml;base64,"
	encodedPrefix = "data:image/svg+xml,"
)

// ErrNotSVG is reported when the document root is not an <svg> element.
var ErrNotSVG = errors.New("svgmap: document root is not svg")

// Decode unwraps a base64 or URL-encoded SVG data URI. Inline markup is
// returned as is. When the payload cannot be decoded the input is returned
// unchanged together with the error.
func Decode(content string) (string, error) {
	switch {
	case strings.HasPrefix(content, base64Prefix):
		raw, err := decodeBase64(strings.TrimPrefix(content, base64Prefix))
		if err != nil {
			return content, fmt.Errorf("svgmap: decode base64 map: %w", err)
		}
		return string(raw), nil
	case strings.HasPrefix(content, encodedPrefix):
		raw, err := url.PathUnescape(strings.TrimPrefix(content, encodedPrefix))
		if err != nil {
			return content, fmt.Errorf("svgmap: decode url-encoded map: %w", err)
		}
		return raw, nil
	default:
		return content, nil
	}
}

// decodeBase64 accepts padded, unpadded and line-wrapped payloads.
func decodeBase64(payload string) ([]byte, error) {
	payload = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, payload)
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
}

// Result is the outcome of Recolor. When Recolored is false, Content holds the
// input unchanged and Err says why.
type Result struct {
	Content   string
	Recolored bool
	// Painted counts the elements whose fill or stroke was rewritten.
	Painted int
	Err     error
}

var paintable = map[string]bool{
	"path":     true,
	"polygon":  true,
	"circle":   true,
	"text":     true,
	"rect":     true,
	"line":     true,
	"polyline": true,
}

// Recolor repaints every shape inside an element whose id matches a scheme
// role. Only existing fill and stroke attributes are rewritten; polylines keep
// their fill. Any parse or serialization failure falls back to the original
// content.
func Recolor(content string, scheme palette.Scheme) Result {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(content); err != nil {
		return Result{Content: content, Err: fmt.Errorf("svgmap: parse map: %w", err)}
	}
	root := doc.Root()
	if root == nil || !strings.EqualFold(root.Tag, "svg") {
		return Result{Content: content, Err: ErrNotSVG}
	}

	painted := 0
	for _, role := range scheme.Map {
		for _, group := range doc.FindElements(fmt.Sprintf("//*[@id='%s']", role.ID)) {
			targets := append([]*etree.Element{group}, group.FindElements(".//*")...)
			for _, el := range targets {
				if paint(el, role.Hex) {
					painted++
				}
			}
		}
	}

	out, err := doc.WriteToString()
	if err != nil {
		return Result{Content: content, Err: fmt.Errorf("svgmap: serialize map: %w", err)}
	}
	return Result{Content: out, Recolored: true, Painted: painted}
}

func paint(el *etree.Element, hex string) bool {
	tag := strings.ToLower(el.Tag)
	if !paintable[tag] {
		return false
	}
	changed := false
	if tag != "polyline" && el.SelectAttr("fill") != nil {
		el.CreateAttr("fill", hex)
		changed = true
	}
	if el.SelectAttr("stroke") != nil {
		el.CreateAttr("stroke", hex)
		changed = true
	}
	return changed
}
