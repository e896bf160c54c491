package scorecard

import (
	"fmt"
	"strconv"
)

// Position is the side of the poster a scorecard or compass is printed on.
type Position string

const (
	// Hidden is only meaningful for the compass: neither side is shown.
	Hidden Position = ""
	Left   Position = "left"
	Right  Position = "right"
)

// ParsePosition resolves a scorecard side. Anything other than "left" is Right.
func ParsePosition(s string) Position {
	if s == string(Left) {
		return Left
	}
	return Right
}

// ParseNavigation resolves the compass side. Values other than "left" and
// "right" hide both compass layers.
func ParseNavigation(s string) Position {
	switch Position(s) {
	case Left, Right:
		return Position(s)
	default:
		return Hidden
	}
}

// Mark is the treatment for the score cell of one hole, numbered from 1.
type Mark struct {
	Hole      int       `json:"hole"`
	Treatment Treatment `json:"treatment"`
}

// Totals are the front nine, back nine and overall sums of a card.
type Totals struct {
	FrontPar      int
	BackPar       int
	Par           int
	FrontDistance int
	BackDistance  int
	Distance      int
	FrontScore    int
	BackScore     int
	Score         int
}

// Table is a scorecard resolved against a template: which layer to show, the
// text for every placeholder frame and the treatment of every score cell.
type Table struct {
	// Layer is empty when no scorecard is shown.
	Layer  string
	Holes  int
	Cells  map[string]string
	Totals Totals
	Marks  []Mark
}

// Layers lists every scorecard layer a poster template may contain.
var Layers = []string{
	"scorecard9Left", "scorecard9Right",
	"scorecard18Left", "scorecard18Right",
	"scorecard27Left", "scorecard27Right",
	"scorecard9LeftOwnScore", "scorecard9RightOwnScore",
	"scorecard18LeftOwnScore", "scorecard18RightOwnScore",
}

// LayerFor picks the template layer for a card of holeCount holes. Cards with
// entered scores use the OwnScore variant; 27-hole cards have none.
func LayerFor(holeCount int, pos Position, withScores bool) string {
	side := "Left"
	if pos == Right {
		side = "Right"
	}
	size := capacity(holeCount)
	if withScores && size != 27 {
		return fmt.Sprintf("scorecard%d%sOwnScore", size, side)
	}
	return fmt.Sprintf("scorecard%d%s", size, side)
}

func capacity(holeCount int) int {
	switch {
	case holeCount <= 9:
		return 9
	case holeCount <= 18:
		return 18
	default:
		return 27
	}
}

// Build resolves holes and scores into a Table. When show is false the table
// carries no layer and the poster keeps every scorecard hidden.
func Build(holes []Hole, scores []Score, show bool, pos Position) Table {
	t := Table{Holes: len(holes), Cells: map[string]string{}}
	if !show {
		return t
	}
	t.Layer = LayerFor(len(holes), pos, len(scores) > 0)

	limit := capacity(len(holes))
	for i, hole := range holes {
		par := hole.ParOrDefault()
		score := scoreAt(scores, i)

		if i < limit {
			distance := hole.Distance()
			points := 0
			if score.Entered() {
				points = score.Value
			}
			if i < 9 {
				t.Totals.FrontPar += par
				t.Totals.FrontDistance += distance
				t.Totals.FrontScore += points
			} else if i < 18 {
				t.Totals.BackPar += par
				t.Totals.BackDistance += distance
				t.Totals.BackScore += points
			}
			t.Totals.Par += par
			t.Totals.Distance += distance
			t.Totals.Score += points

			n := strconv.Itoa(i + 1)
			t.Cells["m"+n] = strconv.Itoa(distance)
			t.Cells["p"+n] = strconv.Itoa(par)
			t.Cells["s"+n] = score.Text
		}

		t.Marks = append(t.Marks, Mark{Hole: i + 1, Treatment: Classify(score, par)})
	}

	t.Cells["mt1"] = strconv.Itoa(t.Totals.FrontDistance)
	t.Cells["mt2"] = strconv.Itoa(t.Totals.BackDistance)
	t.Cells["mt12"] = strconv.Itoa(t.Totals.Distance)
	t.Cells["pt1"] = strconv.Itoa(t.Totals.FrontPar)
	t.Cells["pt2"] = strconv.Itoa(t.Totals.BackPar)
	t.Cells["pt12"] = strconv.Itoa(t.Totals.Par)
	t.Cells["st1"] = scoreTotal(t.Totals.FrontScore)
	t.Cells["st2"] = scoreTotal(t.Totals.BackScore)
	t.Cells["st12"] = scoreTotal(t.Totals.Score)
	return t
}

// Highlighted lists the score placeholders ("s<N>") whose cell is filled, so
// their text can be printed in white.
func (t Table) Highlighted() map[string]bool {
	out := map[string]bool{}
	for _, m := range t.Marks {
		if m.Treatment.Filled {
			out["s"+strconv.Itoa(m.Hole)] = true
		}
	}
	return out
}

func scoreAt(scores []Score, i int) Score {
	if i < len(scores) {
		return scores[i]
	}
	return Score{}
}

func scoreTotal(v int) string {
	if v > 0 {
		return strconv.Itoa(v)
	}
	return ""
}
