package palette

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownScheme is returned when a job names a scheme that is not in the table.
var ErrUnknownScheme = errors.New("invalid color scheme")

// DefaultScheme is used when a job does not name one.
const DefaultScheme = "White"

// MockupVariants is the fixed, ordered set of schemes rendered for every mockup.
var MockupVariants = []string{"White", "Navy", "Green", "Blue", "Brown"}

// Role assigns a color to every SVG element carrying the given id, and to all
// of its descendants.
type Role struct {
	ID  string
	Hex string
}

// Scheme is a named, immutable set of poster colors.
type Scheme struct {
	Name       string
	Background string
	Outline    string
	Text       string
	Compass    string
	// Map lists course-map roles in application order; later roles win when
	// element groups are nested.
	Map []Role
}

var schemes = map[string]Scheme{
	"White": {
		Name:       "White",
		Background: "#FFFFFF",
		Outline:    "#1A1A1A",
		Text:       "#1A1A1A",
		Compass:    "#1A1A1A",
		Map: []Role{
			{ID: "rough", Hex: "#DCE8CF"},
			{ID: "trees", Hex: "#8DAA7B"},
			{ID: "fairway", Hex: "#B5D39B"},
			{ID: "tee", Hex: "#8CBF74"},
			{ID: "green", Hex: "#8CBF74"},
			{ID: "bunker", Hex: "#EFE3C8"},
			{ID: "water", Hex: "#A9CDE8"},
			{ID: "path", Hex: "#D6D6D6"},
		},
	},
	"Navy": {
		Name:       "Navy",
		Background: "#1B2A41",
		Outline:    "#F3EFE6",
		Text:       "#F3EFE6",
		Compass:    "#F3EFE6",
		Map: []Role{
			{ID: "rough", Hex: "#2A3C57"},
			{ID: "trees", Hex: "#22324A"},
			{ID: "fairway", Hex: "#3D5578"},
			{ID: "tee", Hex: "#5B7AA3"},
			{ID: "green", Hex: "#5B7AA3"},
			{ID: "bunker", Hex: "#D9CBA8"},
			{ID: "water", Hex: "#8FB3D9"},
			{ID: "path", Hex: "#4A5D78"},
		},
	},
	"Green": {
		Name:       "Green",
		Background: "#2E4A36",
		Outline:    "#F1EDE2",
		Text:       "#F1EDE2",
		Compass:    "#F1EDE2",
		Map: []Role{
			{ID: "rough", Hex: "#3B5C44"},
			{ID: "trees", Hex: "#24392A"},
			{ID: "fairway", Hex: "#5A8563"},
			{ID: "tee", Hex: "#7BA884"},
			{ID: "green", Hex: "#7BA884"},
			{ID: "bunker", Hex: "#E2D6B5"},
			{ID: "water", Hex: "#93B9C9"},
			{ID: "path", Hex: "#55705C"},
		},
	},
	"Blue": {
		Name:       "Blue",
		Background: "#D8E6F2",
		Outline:    "#1F3B5C",
		Text:       "#1F3B5C",
		Compass:    "#1F3B5C",
		Map: []Role{
			{ID: "rough", Hex: "#C3D7E8"},
			{ID: "trees", Hex: "#7E9FBF"},
			{ID: "fairway", Hex: "#9DBBD6"},
			{ID: "tee", Hex: "#6F94B8"},
			{ID: "green", Hex: "#6F94B8"},
			{ID: "bunker", Hex: "#F2EBDA"},
			{ID: "water", Hex: "#3F6E9C"},
			{ID: "path", Hex: "#B3C6D8"},
		},
	},
	"Brown": {
		Name:       "Brown",
		Background: "#EFE6D8",
		Outline:    "#4A3526",
		Text:       "#4A3526",
		Compass:    "#4A3526",
		Map: []Role{
			{ID: "rough", Hex: "#E0D2BC"},
			{ID: "trees", Hex: "#9C8466"},
			{ID: "fairway", Hex: "#C9B493"},
			{ID: "tee", Hex: "#A88D69"},
			{ID: "green", Hex: "#A88D69"},
			{ID: "bunker", Hex: "#F7F0E2"},
			{ID: "water", Hex: "#9DB4BD"},
			{ID: "path", Hex: "#D3C5AF"},
		},
	},
	"Black": {
		Name:       "Black",
		Background: "#141414",
		Outline:    "#EDEDED",
		Text:       "#EDEDED",
		Compass:    "#EDEDED",
		Map: []Role{
			{ID: "rough", Hex: "#242424"},
			{ID: "trees", Hex: "#1C1C1C"},
			{ID: "fairway", Hex: "#3A3A3A"},
			{ID: "tee", Hex: "#575757"},
			{ID: "green", Hex: "#575757"},
			{ID: "bunker", Hex: "#BDBDBD"},
			{ID: "water", Hex: "#6E6E6E"},
			{ID: "path", Hex: "#303030"},
		},
	},
}

// Lookup returns the named scheme. Names are matched case-insensitively.
func Lookup(name string) (Scheme, error) {
	if s, ok := schemes[name]; ok {
		return s, nil
	}
	for key, s := range schemes {
		if strings.EqualFold(key, strings.TrimSpace(name)) {
			return s, nil
		}
	}
	return Scheme{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownScheme, name, strings.Join(Names(), ", "))
}

// Names lists the known schemes in alphabetical order.
func Names() []string {
	out := make([]string, 0, len(schemes))
	for name := range schemes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Colors holds the decoded poster colors of a scheme.
type Colors struct {
	Background RGB
	Outline    RGB
	Text       RGB
	Compass    RGB
}

// Resolve decodes the scheme's poster colors.
func (s Scheme) Resolve() (Colors, error) {
	var (
		c   Colors
		err error
	)
	if c.Background, err = ParseHex(s.Background); err != nil {
		return Colors{}, err
	}
	if c.Outline, err = ParseHex(s.Outline); err != nil {
		return Colors{}, err
	}
	if c.Text, err = ParseHex(s.Text); err != nil {
		return Colors{}, err
	}
	if c.Compass, err = ParseHex(s.Compass); err != nil {
		return Colors{}, err
	}
	return c, nil
}
