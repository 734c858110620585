// Package diag implements the diagnostics subsystem: severities, error
// kinds grouped by phase, and span-anchored rendering. It underlies every
// other phase the way tunascript.SyntaxError underlay the teacher's
// parser and interpreter, generalized to a monotonic collector (a Bag)
// instead of a single returned error, since a phase here never aborts on
// the first problem.
package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/embrc/internal/source"
	"github.com/dekarrin/embrc/internal/util"
	"github.com/dekarrin/rosed"
)

// Severity classifies how serious a Diagnostic is.
type Severity int

const (
	Error Severity = iota
	Warning
	Note
)

func (sv Severity) String() string {
	switch sv {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Note:
		return "note"
	default:
		return "unknown"
	}
}

// Kind identifies the specific diagnosis within a phase. The zero Kind is
// never emitted; every constructor in this package sets one explicitly.
type Kind string

// LexError kinds (spec.md §4.2, §7).
const (
	KindUnexpectedCharacter  Kind = "LexError.UnexpectedCharacter"
	KindUnterminatedString   Kind = "LexError.UnterminatedString"
	KindInvalidEscape        Kind = "LexError.InvalidEscape"
	KindInvalidNumber        Kind = "LexError.InvalidNumber"
	KindInvalidUnicodeEscape Kind = "LexError.InvalidUnicodeEscape"
	KindNumericOverflow      Kind = "LexError.NumericOverflow"
)

// ParseError kinds.
const (
	KindUnexpectedToken Kind = "ParseError.UnexpectedToken"
	KindMissingToken    Kind = "ParseError.MissingToken"
	KindInvalidTopLevel Kind = "ParseError.InvalidTopLevel"
)

// NameError kinds.
const (
	KindUnresolved Kind = "NameError.Unresolved"
	KindDuplicate  Kind = "NameError.Duplicate"
)

// TypeError kinds.
const (
	KindMismatch           Kind = "TypeError.Mismatch"
	KindAssignToImmutable  Kind = "TypeError.AssignToImmutable"
	KindNonBooleanCond     Kind = "TypeError.NonBooleanCondition"
	KindNotCallable        Kind = "TypeError.NotCallable"
	KindArityMismatch      Kind = "TypeError.ArityMismatch"
	KindUnsupportedOperator Kind = "TypeError.UnsupportedOperator"
)

// ReturnError kinds.
const (
	KindMissingReturn        Kind = "ReturnError.MissingReturn"
	KindUnexpectedReturnValue Kind = "ReturnError.UnexpectedReturnValue"
	KindReturnTypeMismatch   Kind = "ReturnError.ReturnTypeMismatch"
)

// IRError kinds.
const (
	KindIRInternal Kind = "IRError.Internal"
)

// Warning-level kinds that are not tied to a specific error taxonomy entry.
const (
	KindUnreachableCode Kind = "Warning.UnreachableCode"
)

// Note is a secondary span attached to a Diagnostic to point at related
// context (e.g. an earlier conflicting declaration).
type Note struct {
	Span    source.Span
	Message string
}

// Diagnostic is a single reported problem: a severity, a kind, a primary
// span, a human message, and optional secondary notes.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Span     source.Span
	Message  string
	Notes    []Note
}

// Errorf builds an Error-severity Diagnostic.
func Errorf(kind Kind, span source.Span, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: Error, Kind: kind, Span: span, Message: fmt.Sprintf(format, args...)}
}

// Warnf builds a Warning-severity Diagnostic.
func Warnf(kind Kind, span source.Span, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: Warning, Kind: kind, Span: span, Message: fmt.Sprintf(format, args...)}
}

// WithNote returns a copy of d with an additional secondary note attached.
func (d Diagnostic) WithNote(span source.Span, format string, args ...any) Diagnostic {
	d.Notes = append(append([]Note{}, d.Notes...), Note{Span: span, Message: fmt.Sprintf(format, args...)})
	return d
}

// Bag accumulates diagnostics across a phase, or across the whole pipeline.
// emit never throws: appending to a Bag cannot fail.
type Bag struct {
	items []Diagnostic
}

// Emit appends d to the bag.
func (b *Bag) Emit(d Diagnostic) {
	b.items = append(b.items, d)
}

// Extend appends every diagnostic in other to b, in order.
func (b *Bag) Extend(other *Bag) {
	if other == nil {
		return
	}
	b.items = append(b.items, other.items...)
}

// HasErrors reports whether any diagnostic in the bag has Error severity.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Len returns the number of diagnostics in the bag.
func (b *Bag) Len() int {
	return len(b.items)
}

// All returns the bag's diagnostics sorted by primary span start position,
// the order the driver guarantees to callers (spec.md §5 "Ordering").
func (b *Bag) All() []Diagnostic {
	out := make([]Diagnostic, len(b.items))
	copy(out, b.items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Span.Before(out[j].Span)
	})
	return out
}

// wrapWidth is the column at which rendered diagnostic messages are wrapped.
const wrapWidth = 96

// Render produces a human-readable rendering of every diagnostic in the
// bag, grouped by source id and sorted by span, each with the offending
// line(s), a caret/underline under the primary span, the message, and any
// notes — the shape of tunascript.SyntaxError.FullMessage /
// SourceLineWithCursor, extended to many diagnostics and several files.
func (b *Bag) Render(sources *source.Set) string {
	var out strings.Builder

	bySource := make(map[string][]Diagnostic)
	for _, d := range b.All() {
		bySource[d.Span.ID] = append(bySource[d.Span.ID], d)
	}

	ids := sources.IDs()
	seen := util.NewStringSet()
	ordered := []string{}
	for _, id := range ids {
		if len(bySource[id]) > 0 {
			ordered = append(ordered, id)
			seen.Add(id)
		}
	}
	known := len(ordered)
	for id := range bySource {
		if !seen.Has(id) {
			ordered = append(ordered, id)
		}
	}
	sort.Strings(ordered[known:])

	for gi, id := range ordered {
		if gi > 0 {
			out.WriteString("\n")
		}
		fmt.Fprintf(&out, "── %s ──\n", id)
		buf, _ := sources.Get(id)
		for _, d := range bySource[id] {
			out.WriteString(renderOne(d, buf))
			out.WriteString("\n")
		}
	}

	return out.String()
}

// Summary produces a one-line count-by-severity description of the bag,
// e.g. "2 errors and 1 warning", or "no diagnostics" when empty.
func (b *Bag) Summary() string {
	var counts [3]int
	for _, d := range b.items {
		counts[d.Severity]++
	}

	var parts []string
	if counts[Error] > 0 {
		parts = append(parts, plural(counts[Error], "error"))
	}
	if counts[Warning] > 0 {
		parts = append(parts, plural(counts[Warning], "warning"))
	}
	if counts[Note] > 0 {
		parts = append(parts, plural(counts[Note], "note"))
	}
	if len(parts) == 0 {
		return "no diagnostics"
	}
	return util.MakeTextList(parts)
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func renderOne(d Diagnostic, buf source.Buffer) string {
	var out strings.Builder

	line, col := buf.LineCol(d.Span.Start)
	fmt.Fprintf(&out, "%s: %s [%s]\n", d.Severity, rosed.Edit(d.Message).Wrap(wrapWidth).String(), d.Kind)
	if buf.ID != "" {
		fmt.Fprintf(&out, "  --> %s:%d:%d\n", buf.ID, line, col)
		srcLine := buf.Line(line)
		out.WriteString("  " + srcLine + "\n")
		caretLen := d.Span.Len()
		if caretLen < 1 {
			caretLen = 1
		}
		if col-1+caretLen > len(srcLine)+1 {
			caretLen = len(srcLine) - (col - 1)
			if caretLen < 1 {
				caretLen = 1
			}
		}
		out.WriteString("  " + strings.Repeat(" ", col-1) + strings.Repeat("^", caretLen) + "\n")
	}
	for _, n := range d.Notes {
		nLine, nCol := buf.LineCol(n.Span.Start)
		fmt.Fprintf(&out, "  note: %s (%d:%d)\n", n.Message, nLine, nCol)
	}

	return out.String()
}
