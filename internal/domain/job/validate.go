package job

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidPayload is returned when a queue item does not match its schema.
var ErrInvalidPayload = errors.New("invalid queue payload")

//go:embed schema/*.json
var schemaFS embed.FS

var (
	schemaOnce sync.Once
	schemas    map[Kind]*jsonschema.Schema
	schemaErr  error
)

func compileSchemas() {
	compiler := jsonschema.NewCompiler()
	compiled := make(map[Kind]*jsonschema.Schema, 2)
	for _, kind := range []Kind{KindPoster, KindMockup} {
		name := "schema/" + string(kind) + ".json"
		b, err := schemaFS.ReadFile(name)
		if err != nil {
			schemaErr = fmt.Errorf("job: read %s: %w", name, err)
			return
		}
		if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
			schemaErr = fmt.Errorf("job: add schema %s: %w", name, err)
			return
		}
		s, err := compiler.Compile(name)
		if err != nil {
			schemaErr = fmt.Errorf("job: compile schema %s: %w", name, err)
			return
		}
		compiled[kind] = s
	}
	schemas = compiled
}

// Validate checks a raw queue item against the schema for its kind.
func Validate(kind Kind, raw []byte) error {
	schemaOnce.Do(compileSchemas)
	if schemaErr != nil {
		return schemaErr
	}
	schema, ok := schemas[kind]
	if !ok {
		return fmt.Errorf("job: no schema for %q", kind)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

// DecodePoster validates and decodes a poster queue item.
func DecodePoster(raw []byte) (*Poster, error) {
	if err := Validate(KindPoster, raw); err != nil {
		return nil, err
	}
	var p Poster
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return &p, nil
}

// DecodeMockup validates and decodes a mockup queue item.
func DecodeMockup(raw []byte) (*Mockup, error) {
	if err := Validate(KindMockup, raw); err != nil {
		return nil, err
	}
	var m Mockup
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return &m, nil
}

// PeekID extracts queueId from an item that may not decode as a whole, so a
// rejected payload can still be reported back to its queue.
func PeekID(raw []byte) (ID, bool) {
	var probe struct {
		QueueID ID `json:"queueId"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return ID{}, false
	}
	return probe.QueueID, !probe.QueueID.IsZero()
}
