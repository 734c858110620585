// Package pipelineopts carries the compiler's ambient configuration: the
// handful of knobs that are not part of the language itself but govern how
// the pipeline runs and how it reports what it finds. It follows the
// teacher's internal/tqw TOML-tag pattern (FileInfo's toml:"..." fields,
// decoded with github.com/BurntSushi/toml), generalized from a world-data
// file format to a small options document.
package pipelineopts

import (
	"bytes"
	"io"

	"github.com/BurntSushi/toml"
)

// Defaults mirror what a zero-value Options should behave as once filled
// in, the way tqw.LoadResourceBundle treats a missing manifest as "nothing
// extra to load" rather than an error.
const (
	DefaultMaxExprDepth = 4096
	DefaultTabWidth     = 4
	DefaultTarget       = "x86_64-unknown-linux-gnu"
)

// Options configures one compilation pipeline run.
type Options struct {
	// MaxExprDepth is a maximum recursive expression nesting depth. Zero
	// means DefaultMaxExprDepth. The parser does not read it: its own
	// nesting limit is a fixed constant of the same value.
	MaxExprDepth int `toml:"max_expr_depth"`

	// ColorDiagnostics is a request for ANSI color in diagnostics.
	// diag.Bag.Render does not read it and never emits color.
	ColorDiagnostics bool `toml:"color_diagnostics"`

	// TabWidth is the column width of a literal tab character. Zero means
	// DefaultTabWidth. diag.Bag.Render does not read it; caret columns are
	// counted in bytes.
	TabWidth int `toml:"tab_width"`

	// Target is a backend target triple. Empty means DefaultTarget. The IR
	// emitter does not read it, and the rendered IR has no header.
	Target string `toml:"target"`
}

// WithDefaults returns a copy of o with every zero-valued field replaced by
// its documented default.
func (o Options) WithDefaults() Options {
	if o.MaxExprDepth == 0 {
		o.MaxExprDepth = DefaultMaxExprDepth
	}
	if o.TabWidth == 0 {
		o.TabWidth = DefaultTabWidth
	}
	if o.Target == "" {
		o.Target = DefaultTarget
	}
	return o
}

// Load decodes an Options document from r. A caller with no TOML document
// to supply should use a zero-value Options{}.WithDefaults() instead of
// calling Load at all.
func Load(r io.Reader) (Options, error) {
	var o Options
	if _, err := toml.NewDecoder(r).Decode(&o); err != nil {
		return Options{}, err
	}
	return o.WithDefaults(), nil
}

// Parse decodes an Options document from raw TOML bytes.
func Parse(data []byte) (Options, error) {
	return Load(bytes.NewReader(data))
}
