package job

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID is a queue identifier. The queue services hand out both strings and
// numbers; ID keeps the original JSON kind so it is echoed back unchanged.
type ID struct {
	value   string
	numeric bool
}

// NewID returns a string identifier.
func NewID(v string) ID {
	return ID{value: v}
}

func (id ID) String() string { return id.value }

// IsZero reports whether the identifier is missing.
func (id ID) IsZero() bool { return id.value == "" }

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*id = ID{}
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID{value: s}
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("job: id must be a string or number: %w", err)
		}
		*id = ID{value: n.String(), numeric: true}
	}
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	if id.numeric {
		if _, err := strconv.ParseFloat(id.value, 64); err == nil {
			return []byte(id.value), nil
		}
	}
	return json.Marshal(id.value)
}

// Flag is a lenient boolean: JSON booleans, null and the strings "true",
// "1" and "yes" (case-insensitive) set it. Numeric values are rejected by the
// payload schema before they reach it.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		*f = true
	default:
		*f = false
	}
	return nil
}
