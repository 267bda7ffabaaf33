// Package yaml wraps the YAML encoding, decoding, and schema validation used
// for configuration documents.
package yaml

import (
	"io"

	"github.com/goccy/go-yaml"
)

type Decoder struct {
	d *yaml.Decoder
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		d: yaml.NewDecoder(r, yaml.AllowDuplicateMapKey()),
	}
}

func (d *Decoder) Decode(v any) error {
	return d.d.Decode(v) //nolint:wrapcheck // Return the original error.
}
