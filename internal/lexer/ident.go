package lexer

import (
	"unicode"

	"golang.org/x/text/unicode/rangetable"
)

// identStartTable and identContinueTable approximate UAX #31's XID_Start and
// XID_Continue properties (spec.md §4.2) from the Unicode general
// categories available through the standard unicode package, merged with
// golang.org/x/text/unicode/rangetable the way a merged-category identifier
// class is built in practice, rather than chaining several unicode.Is
// calls by hand at each call site.
var (
	identStartTable    = rangetable.Merge(unicode.L, unicode.Nl)
	identContinueTable = rangetable.Merge(unicode.L, unicode.Nl, unicode.Mn, unicode.Mc, unicode.Nd, unicode.Pc)
)

// IsIdentStart reports whether r may begin an identifier: any XID_Start code
// point, or '_'.
func IsIdentStart(r rune) bool {
	return r == '_' || unicode.Is(identStartTable, r)
}

// IsIdentContinue reports whether r may continue an identifier already
// begun by IsIdentStart.
func IsIdentContinue(r rune) bool {
	return r == '_' || unicode.Is(identContinueTable, r)
}
