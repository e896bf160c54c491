package job

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/redmarwoest/cp-automation-script/internal/domain/scorecard"
)

// Kind identifies which queue a job came from.
type Kind string

const (
	KindPoster Kind = "poster"
	KindMockup Kind = "mockup"
)

// Poster is one print order claimed from the poster queue.
type Poster struct {
	QueueID           ID             `json:"queueId"`
	OrderID           ID             `json:"orderId"`
	MerchandiseID     ID             `json:"merchandiseId,omitempty"`
	CustomizationData *Customization `json:"customizationData"`
}

// Customization is the storefront's description of a single poster.
type Customization struct {
	Title              string            `json:"title"`
	SubTitle           string            `json:"subTitle"`
	ExtraTitle         string            `json:"extraTitle"`
	UnderTitle         string            `json:"underTitle"`
	SelectedSize       string            `json:"selectedSize"`
	IsHorizontal       Flag              `json:"isHorizontal"`
	Color              string            `json:"color"`
	Frame              json.RawMessage   `json:"frame,omitempty"`
	NavigationPosition string            `json:"navigationPosition"`
	ScorecardPosition  string            `json:"scorecardPosition"`
	ShowScorecard      Flag              `json:"showScorecard"`
	Scorecard          []scorecard.Hole  `json:"scorecard"`
	CourseData         json.RawMessage   `json:"courseData,omitempty"`
	Scores             []scorecard.Score `json:"scores"`
	SelectedCourseMap  string            `json:"selectedCourseMap"`
	DistanceUnit       string            `json:"distanceUnit"`
}

// Holes returns the scorecard rows. The scorecard field wins; the legacy
// courseData field (an array or a JSON-encoded array) is read only when the
// scorecard is empty. Unreadable legacy data yields no holes.
func (c *Customization) Holes() []scorecard.Hole {
	if len(c.Scorecard) > 0 {
		return c.Scorecard
	}
	raw := bytes.TrimSpace(c.CourseData)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '"' {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return nil
		}
		raw = []byte(encoded)
	}
	var holes []scorecard.Hole
	if err := json.Unmarshal(raw, &holes); err != nil {
		return nil
	}
	return holes
}

// Scheme returns the requested color scheme name, trimmed, or "" for the default.
func (c *Customization) Scheme() string {
	return strings.TrimSpace(c.Color)
}

// Mockup is one product-mockup request claimed from the mockup queue.
type Mockup struct {
	QueueID            ID               `json:"queueId"`
	CourseName         string           `json:"courseName"`
	ClubName           string           `json:"clubName"`
	City               string           `json:"city"`
	State              string           `json:"state"`
	Country            string           `json:"country"`
	YearStarted        ID               `json:"yearStarted,omitempty"`
	SVGMap             string           `json:"svgMap"`
	Orientation        string           `json:"orientation"`
	NavigationPosition string           `json:"navigationPosition"`
	ScorecardPosition  string           `json:"scorecardPosition"`
	ScoreCard          []scorecard.Hole `json:"scoreCard"`
}

// Horizontal reports whether the mockup uses the landscape layout.
func (m *Mockup) Horizontal() bool {
	return m.Orientation == "horizontal"
}

// Location is the under-title printed on mockup posters: "city, state" when
// both are known, otherwise the first of city, state and country.
func (m *Mockup) Location() string {
	if m.City != "" && m.State != "" {
		return m.City + ", " + m.State
	}
	for _, v := range []string{m.City, m.State, m.Country} {
		if v != "" {
			return v
		}
	}
	return ""
}

// Size is the print size used for mockup posters.
func (m *Mockup) Size() string {
	if m.Horizontal() {
		return "50 x 40 cm"
	}
	return "40 x 50 cm"
}

// DistanceUnit is yards for courses in the USA and meters elsewhere.
func (m *Mockup) DistanceUnit() string {
	if m.Country == "USA" {
		return "yards"
	}
	return "meters"
}

// PosterFor derives the poster job rendered for one color variant.
func (m *Mockup) PosterFor(variant string) Poster {
	return Poster{
		QueueID: NewID(m.QueueID.String() + "-" + strings.ToLower(variant)),
		OrderID: NewID("mockup-" + m.QueueID.String()),
		CustomizationData: &Customization{
			Title:              m.CourseName,
			SubTitle:           m.ClubName,
			UnderTitle:         m.Location(),
			SelectedCourseMap:  m.SVGMap,
			SelectedSize:       m.Size(),
			IsHorizontal:       Flag(m.Horizontal()),
			Color:              variant,
			NavigationPosition: orDefault(m.NavigationPosition, "left"),
			ScorecardPosition:  orDefault(m.ScorecardPosition, "left"),
			Scorecard:          m.ScoreCard,
			ShowScorecard:      Flag(len(m.ScoreCard) > 0),
			DistanceUnit:       m.DistanceUnit(),
		},
	}
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
