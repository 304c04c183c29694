// Package codec centralizes the encodings used by persistent stores.
//
// Two concerns live here:
//
//   - Codec: a named value codec used for journal payloads and table
//     descriptors. The built-in codecs both speak JSON, so a recording
//     written with one can be read with the other.
//   - Array blobs: a compact binary encoding of vector.Array with optional
//     LZ4 or Zstandard block compression, used for geometry columns.
package codec

import (
	"fmt"
	"strings"
)

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Names lists the built-in codec names accepted by ByName.
func Names() []string { return []string{"json", "go-json"} }

// ByName returns a built-in codec by name. Matching ignores case; the empty
// name selects Default.
func ByName(name string) (Codec, bool) {
	switch strings.ToLower(name) {
	case "":
		return Default, true
	case "json":
		return JSON{}, true
	case "go-json", "gojson":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// MustMarshal marshals v with c (Default when nil) and panics on error.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s: marshal %T: %w", c.Name(), v, err))
	}
	return b
}
