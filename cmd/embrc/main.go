/*
Embrc compiles one source file and prints its emitted IR, or just its
diagnostics when run with -check.

Usage:

	embrc [flags] FILE

The flags are:

	-c, --check
		Run lexing, parsing, and semantic analysis only; print diagnostics
		and exit without emitting IR.

	-o, --output FILE
		Write the rendered IR to FILE instead of stdout.

	--target TRIPLE
		Backend target triple. Accepted but unused: the IR output has no
		header and does not depend on it.

	--max-expr-depth N
		Maximum recursive expression nesting depth. Accepted but unused:
		the parser's limit is fixed at 4096.

	--tab-width N
		Column width of a literal tab. Accepted but unused: diagnostic
		carets are placed by byte column.

	--color
		ANSI color for diagnostics. Accepted but unused: diagnostics are
		always rendered without color.

	--dump-tree
		Print the parsed program as a concrete syntax tree instead of
		compiling it.

	--version
		Print the compiler version and exit.
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/dekarrin/embrc"
	"github.com/dekarrin/embrc/internal/parser"
	"github.com/dekarrin/embrc/internal/pipelineopts"
	"github.com/dekarrin/embrc/internal/version"
)

const (
	// ExitSuccess indicates the requested operation completed with no
	// error-severity diagnostics.
	ExitSuccess = iota

	// ExitDiagnostics indicates compilation produced at least one
	// error-severity diagnostic.
	ExitDiagnostics

	// ExitReadError indicates the input file could not be read.
	ExitReadError

	// ExitWriteError indicates the rendered output could not be written.
	ExitWriteError
)

var (
	returnCode = ExitSuccess

	flagCheck   = pflag.BoolP("check", "c", false, "run lexing, parsing, and analysis only; print diagnostics and exit")
	flagOutput  = pflag.StringP("output", "o", "", "write rendered IR to this file instead of stdout")
	flagTarget  = pflag.String("target", "", "backend target triple (accepted but unused)")
	flagMaxExpr = pflag.Int("max-expr-depth", 0, "maximum expression nesting depth (accepted but unused; the parser limit is fixed)")
	flagTabWid  = pflag.Int("tab-width", 0, "column width of a literal tab (accepted but unused)")
	flagColor   = pflag.Bool("color", false, "ANSI color for diagnostics (accepted but unused)")
	flagTree    = pflag.Bool("dump-tree", false, "print the parsed program as a concrete syntax tree instead of compiling it")
	flagVersion = pflag.Bool("version", false, "print the compiler version and exit")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Println("embrc " + version.Current)
		return
	}

	if pflag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "ERROR: exactly one input file is required")
		returnCode = ExitReadError
		return
	}
	path := pflag.Arg(0)

	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitReadError
		return
	}

	opts := pipelineopts.Options{
		MaxExprDepth:     *flagMaxExpr,
		TabWidth:         *flagTabWid,
		Target:           *flagTarget,
		ColorDiagnostics: *flagColor,
	}.WithDefaults()

	if *flagTree {
		prog, bag := embrc.Parse(src)
		if bag.Len() > 0 {
			fmt.Fprint(os.Stderr, bag.Render(embrc.SourceSet(src)))
		}
		if bag.HasErrors() {
			returnCode = ExitDiagnostics
			return
		}
		fmt.Println(parser.ConcreteTree(prog).String())
		return
	}

	if *flagCheck {
		bag := embrc.Check(src)
		fmt.Fprint(os.Stderr, bag.Render(embrc.SourceSet(src)))
		if bag.HasErrors() {
			returnCode = ExitDiagnostics
		}
		return
	}

	res := embrc.Compile(src, opts)
	if res.Diags.Len() > 0 {
		fmt.Fprint(os.Stderr, res.Diags.Render(embrc.SourceSet(src)))
	}
	if res.Diags.HasErrors() {
		returnCode = ExitDiagnostics
		return
	}

	out := res.Module.String()
	if *flagOutput == "" {
		fmt.Print(out)
		return
	}
	if err := os.WriteFile(*flagOutput, []byte(out), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitWriteError
		return
	}
}
