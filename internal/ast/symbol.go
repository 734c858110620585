package ast

import "github.com/dekarrin/embrc/internal/source"

// SymbolKind distinguishes the three declaration forms spec.md §3 defines.
type SymbolKind int

const (
	SymbolFunction SymbolKind = iota
	SymbolParameter
	SymbolLocal
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolFunction:
		return "function"
	case SymbolParameter:
		return "parameter"
	case SymbolLocal:
		return "local"
	default:
		return "symbol"
	}
}

// Symbol is created by the semantic analyzer for every declared name. A
// Function symbol is always "callable" and Mutable is meaningless for it;
// Parameter and Local symbols carry their declared mutability.
type Symbol struct {
	Name      string
	Kind      SymbolKind
	Type      Type
	Mutable   bool
	DeclSpan  source.Span
	ParamTypes []Type // set only for SymbolFunction: parameter types, in order
	ReturnType Type   // set only for SymbolFunction

	// SlotID is the stable stack-slot identifier the IR emitter uses to
	// address a Parameter or Local's storage. It is empty for Function
	// symbols, which have no stack slot of their own.
	SlotID string
}
