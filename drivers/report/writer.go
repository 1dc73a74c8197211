// Package report implements a driver.Recorder that writes change records to
// an output stream.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"

	"github.com/emenda-labs/lockdiff/core/changespec"
	"github.com/emenda-labs/lockdiff/core/driver"
)

// ErrUnknownFormat is returned for an output format other than json or yaml.
var ErrUnknownFormat = zerr.New("unknown output format")

// Format selects the encoding of written records.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

var _ driver.Recorder = (*Writer)(nil)

// Writer encodes every recorded ChangeSpec to an io.Writer.
type Writer struct {
	mu     sync.Mutex
	out    io.Writer
	format Format
}

// NewWriter creates a Writer. Unknown formats are rejected.
func NewWriter(out io.Writer, format Format) (*Writer, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}
	return &Writer{out: out, format: format}, nil
}

// Record writes spec in the configured format.
func (w *Writer) Record(ctx context.Context, spec changespec.ChangeSpec) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	return Encode(w.out, w.format, spec)
}

// Encode writes v to out as indented JSON or as YAML.
func Encode(out io.Writer, format Format, v any) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
