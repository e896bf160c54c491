package scorecard

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// DefaultPar is used for holes that carry no par.
const DefaultPar = 4

// Number is a lenient integer that accepts JSON numbers, numeric strings and
// null. Anything unparsable decodes to zero.
type Number int

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, _ := leadingInt(s)
		*n = Number(v)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		*n = 0
		return nil
	}
	*n = Number(math.Round(f))
	return nil
}

// Hole is one row of a course scorecard. Distances are per tee color.
type Hole struct {
	Par    Number `json:"par"`
	White  Number `json:"white,omitempty"`
	Blue   Number `json:"blue,omitempty"`
	Black  Number `json:"black,omitempty"`
	Yellow Number `json:"yellow,omitempty"`
	Red    Number `json:"red,omitempty"`
	Gold   Number `json:"gold,omitempty"`
	Green  Number `json:"green,omitempty"`
	Purple Number `json:"purple,omitempty"`
	Orange Number `json:"orange,omitempty"`
	Silver Number `json:"silver,omitempty"`
}

// ParOrDefault returns the hole par, or DefaultPar when it is unset.
func (h Hole) ParOrDefault() int {
	if h.Par == 0 {
		return DefaultPar
	}
	return int(h.Par)
}

// Distance returns the first non-zero tee distance, checked from white through
// silver.
func (h Hole) Distance() int {
	for _, d := range []Number{h.White, h.Blue, h.Black, h.Yellow, h.Red, h.Gold, h.Green, h.Purple, h.Orange, h.Silver} {
		if d != 0 {
			return int(d)
		}
	}
	return 0
}

// Score is one entered player score. Text is what gets printed on the card;
// Value and Valid hold its integer reading.
type Score struct {
	Text  string
	Value int
	Valid bool
}

// NewScore builds a score from its printed form.
func NewScore(text string) Score {
	text = strings.TrimSpace(text)
	v, ok := leadingInt(text)
	return Score{Text: text, Value: v, Valid: ok}
}

// Entered reports whether the player wrote anything for the hole.
func (s Score) Entered() bool {
	return s.Text != ""
}

func (s *Score) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = Score{}
		return nil
	}
	if data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*s = NewScore(text)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	// A numeric zero means the hole was left blank.
	if f == 0 {
		*s = Score{}
		return nil
	}
	*s = NewScore(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Entered() {
		return []byte(`""`), nil
	}
	return json.Marshal(s.Text)
}

// leadingInt reads an optionally signed run of leading digits, the way the
// storefront interprets free-form score input ("5", "+1", "4*").
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	sign := 1
	switch s[0] {
	case '-':
		sign = -1
		s = s[1:]
	case '+':
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return sign * v, true
}
