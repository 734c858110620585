// Package embrc is the compiler's driver: it sequences the lexer, parser,
// semantic analyzer, and IR emitter over one source buffer, stopping at the
// first phase that reports an error (spec.md §4.1, §4.6). It plays the role
// tunascript.go and engine.go play for the teacher: the top-level entry
// point callers actually import, with everything phase-specific living in
// internal/ packages beneath it.
package embrc

import (
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/dekarrin/embrc/internal/ast"
	"github.com/dekarrin/embrc/internal/diag"
	"github.com/dekarrin/embrc/internal/ir"
	"github.com/dekarrin/embrc/internal/lexer"
	"github.com/dekarrin/embrc/internal/parser"
	"github.com/dekarrin/embrc/internal/pipelineopts"
	"github.com/dekarrin/embrc/internal/sema"
	"github.com/dekarrin/embrc/internal/source"
)

// SourceID derives a stable identifier for src from its content, so that
// two invocations over byte-identical source always agree on the id carried
// by every span and used to group diagnostics, regardless of what name (if
// any) the caller supplies (spec.md §9, P9 determinism).
func SourceID(src []byte) string {
	sum := blake2b.Sum256(src)
	return fmt.Sprintf("blake2b-%x", sum[:8])
}

// Result is everything one compilation produced: the elaborated AST, the
// emitted IR module (nil if any phase before emission had errors), and the
// diagnostics collected across every phase that ran.
type Result struct {
	SourceID string
	Program  *ast.Program
	Module   *ir.Module
	Diags    *diag.Bag
}

// Tokenize runs lexical analysis alone (spec.md §4.2), for callers that only
// need tokens (e.g. a syntax-highlighting collaborator).
func Tokenize(src []byte) ([]lexer.Token, *diag.Bag) {
	id := SourceID(src)
	return lexer.Tokenize(src, id)
}

// Parse runs lexing and parsing (spec.md §4.2-§4.3), stopping before
// semantic analysis. It always returns the program the parser managed to
// build, even when the bag has errors, since panic-mode recovery leaves a
// usable (if incomplete) tree.
func Parse(src []byte) (*ast.Program, *diag.Bag) {
	id := SourceID(src)
	toks, bag := lexer.Tokenize(src, id)
	prog, parseBag := parser.ParseProgram(toks, id)
	bag.Extend(parseBag)
	return prog, bag
}

// Analyze runs lexing, parsing, and semantic analysis (spec.md §4.2-§4.4),
// annotating the returned program in place. The program is not safe to pass
// to Emit if the returned bag has errors.
func Analyze(src []byte) (*ast.Program, *diag.Bag) {
	prog, bag := Parse(src)
	if bag.HasErrors() {
		return prog, bag
	}
	id := SourceID(src)
	semaBag := sema.Analyze(prog, id)
	bag.Extend(semaBag)
	return prog, bag
}

// Check runs every phase up to and including semantic analysis and reports
// only the diagnostics, discarding the program — the shape a caller wanting
// only "does this compile" needs (spec.md §6.1).
func Check(src []byte) *diag.Bag {
	_, bag := Analyze(src)
	return bag
}

// Compile runs the full pipeline: lex, parse, analyze, and emit IR (spec.md
// §4.1, §6.1's compile()). It halts at the first phase with errors and
// returns Module as nil in that case. opts is filled in with its documented
// defaults, but no phase reads any of its fields: the parser's nesting limit
// is fixed, and neither the IR text nor the diagnostics depend on opts.
func Compile(src []byte, opts pipelineopts.Options) Result {
	opts = opts.WithDefaults()
	id := SourceID(src)

	res := Result{SourceID: id, Diags: &diag.Bag{}}

	toks, lexBag := lexer.Tokenize(src, id)
	res.Diags.Extend(lexBag)
	if res.Diags.HasErrors() {
		return res
	}

	prog, parseBag := parser.ParseProgram(toks, id)
	res.Program = prog
	res.Diags.Extend(parseBag)
	if res.Diags.HasErrors() {
		return res
	}

	semaBag := sema.Analyze(prog, id)
	res.Diags.Extend(semaBag)
	if res.Diags.HasErrors() {
		return res
	}

	mod, irBag := ir.Emit(prog)
	res.Diags.Extend(irBag)
	if res.Diags.HasErrors() {
		return res
	}

	res.Module = mod
	return res
}

// SourceSet builds a source.Set containing a single buffer for src under
// its derived id, ready to pass to diag.Bag.Render.
func SourceSet(src []byte) *source.Set {
	set := source.NewSet()
	set.Add(source.Buffer{ID: SourceID(src), Text: src})
	return set
}
