package scorecard

import "github.com/redmarwoest/cp-automation-script/internal/domain/palette"

// Kind names the visual bucket a hole result falls into.
type Kind string

const (
	KindNone   Kind = "none"
	KindEagle  Kind = "eagle"
	KindBirdie Kind = "birdie"
	KindBogey  Kind = "bogey"
	KindDouble Kind = "double"
)

var (
	eagleFill  = palette.RGB{R: 255, G: 107, B: 53}
	birdieFill = palette.RGB{R: 239, G: 68, B: 68}
	bogeyFill  = palette.RGB{R: 26, G: 26, B: 26}
	doubleFill = palette.RGB{R: 59, G: 130, B: 246}
)

// Treatment is how a hole's score cell background is drawn.
type Treatment struct {
	Kind   Kind        `json:"kind"`
	Filled bool        `json:"filled"`
	Fill   palette.RGB `json:"-"`
	Circle bool        `json:"circle"`
}

// ClassifyDiff maps score minus par to its treatment. Under par is drawn as a
// circle, over par as a square, and level par is left unfilled.
func ClassifyDiff(diff int) Treatment {
	switch {
	case diff <= -2:
		return Treatment{Kind: KindEagle, Filled: true, Fill: eagleFill, Circle: true}
	case diff == -1:
		return Treatment{Kind: KindBirdie, Filled: true, Fill: birdieFill, Circle: true}
	case diff == 1:
		return Treatment{Kind: KindBogey, Filled: true, Fill: bogeyFill}
	case diff >= 2:
		return Treatment{Kind: KindDouble, Filled: true, Fill: doubleFill}
	default:
		return Treatment{Kind: KindNone}
	}
}

// Classify applies ClassifyDiff to an entered score. Blank or unreadable
// scores get no fill.
func Classify(score Score, par int) Treatment {
	if !score.Entered() || !score.Valid {
		return Treatment{Kind: KindNone}
	}
	return ClassifyDiff(score.Value - par)
}
