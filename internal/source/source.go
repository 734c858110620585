// Package source holds the span and source-buffer types shared by every
// phase of the compiler. A Span never outlives the Buffer it was cut from;
// callers are expected to keep the originating Buffer alive for as long as
// they intend to render a Span against it.
package source

import "fmt"

// Span is a half-open byte range [Start, End) into a single source buffer,
// identified by ID. The zero Span is the empty span at offset 0 of source id
// "".
type Span struct {
	ID    string
	Start int
	End   int
}

// Len returns the number of bytes the span covers.
func (s Span) Len() int {
	return s.End - s.Start
}

// Empty returns whether the span covers zero bytes.
func (s Span) Empty() bool {
	return s.Start == s.End
}

// Hull returns the smallest span that contains both s and o. A span with an
// empty source id counts as absent, and the other span is returned as is.
// It panics if two non-empty source ids differ, since a hull across buffers
// is not meaningful.
func (s Span) Hull(o Span) Span {
	if s.ID == "" {
		return o
	}
	if o.ID == "" {
		return s
	}
	if s.ID != o.ID {
		panic(fmt.Sprintf("source: cannot hull spans from different sources %q and %q", s.ID, o.ID))
	}

	start := s.Start
	if o.Start < start {
		start = o.Start
	}
	end := s.End
	if o.End > end {
		end = o.End
	}
	return Span{ID: s.ID, Start: start, End: end}
}

// Before reports whether s orders before o: by source id, then start
// offset, then end offset. It is used to sort diagnostics and tokens in
// source order.
func (s Span) Before(o Span) bool {
	if s.ID != o.ID {
		return s.ID < o.ID
	}
	if s.Start != o.Start {
		return s.Start < o.Start
	}
	return s.End < o.End
}

// Hull returns the smallest Span containing every span in spans. It returns
// the zero Span if spans is empty.
func Hull(spans ...Span) Span {
	var h Span
	for _, s := range spans {
		h = h.Hull(s)
	}
	return h
}

// Buffer is an immutable, named source text. Buffers are looked up by ID
// from a Set so that a Span can be rendered back to its originating text.
type Buffer struct {
	ID   string
	Text []byte
}

// Slice returns the bytes a Span covers. It panics if the span's id does not
// match the buffer's, or the span falls outside the buffer — both indicate a
// P1 (span containment) violation upstream.
func (b Buffer) Slice(s Span) []byte {
	if s.ID != b.ID {
		panic(fmt.Sprintf("source: span for %q applied to buffer %q", s.ID, b.ID))
	}
	if s.Start < 0 || s.End > len(b.Text) || s.Start > s.End {
		panic(fmt.Sprintf("source: span [%d,%d) out of bounds for %q (len %d)", s.Start, s.End, b.ID, len(b.Text)))
	}
	return b.Text[s.Start:s.End]
}

// LineCol converts a byte offset into a 1-indexed (line, column) pair. Column
// is counted in bytes, not runes, matching the half-open-byte-span model
// used throughout the compiler.
func (b Buffer) LineCol(offset int) (line, col int) {
	line, col = 1, 1
	for i := 0; i < offset && i < len(b.Text); i++ {
		if b.Text[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// Line returns the full text of the 1-indexed line lineNum, without its
// trailing newline.
func (b Buffer) Line(lineNum int) string {
	line := 1
	start := 0
	for i := 0; i < len(b.Text); i++ {
		if b.Text[i] == '\n' {
			if line == lineNum {
				return string(b.Text[start:i])
			}
			line++
			start = i + 1
		}
	}
	if line == lineNum {
		return string(b.Text[start:])
	}
	return ""
}

// Set is a collection of Buffers keyed by source id, used by the driver and
// by Diagnostic rendering to resolve a Span back to text.
type Set struct {
	buffers map[string]Buffer
	order   []string
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{buffers: make(map[string]Buffer)}
}

// Add registers a Buffer under its own ID, replacing any prior buffer with
// that id.
func (s *Set) Add(b Buffer) {
	if _, exists := s.buffers[b.ID]; !exists {
		s.order = append(s.order, b.ID)
	}
	s.buffers[b.ID] = b
}

// Get returns the Buffer for id and whether it was found.
func (s *Set) Get(id string) (Buffer, bool) {
	b, ok := s.buffers[id]
	return b, ok
}

// IDs returns every registered source id in the order buffers were added.
func (s *Set) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
