package render

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var lower = cases.Lower(language.Und)

// PosterFileName returns the PDF name for an order, e.g.
// ORDER_1042_Royal_Troon_poster.pdf. A non-empty variant is inserted before
// the suffix so mockup variants do not overwrite each other.
func PosterFileName(orderID, title, variant string) string {
	var b strings.Builder
	b.WriteString("ORDER_")
	b.WriteString(sanitize(orderID))
	b.WriteString("_")
	b.WriteString(sanitize(title))
	if variant != "" {
		b.WriteString("_")
		b.WriteString(sanitize(lower.String(variant)))
	}
	b.WriteString("_poster.pdf")
	return b.String()
}

// MockupFileName returns the PNG name Photoshop exports for a variant, e.g.
// MOCKUP_m7_navy.png.
func MockupFileName(queueID, variant string) string {
	return "MOCKUP_" + pathSegment(queueID) + "_" + pathSegment(lower.String(variant)) + ".png"
}

// pathSegment keeps s intact apart from characters that would leave the
// directory it is joined to.
func pathSegment(s string) string {
	return strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(s)
}

// sanitize folds accents to their base letter and replaces everything that
// is not an ASCII letter or digit with an underscore.
func sanitize(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, folded)
}
