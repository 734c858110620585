package sema

import "github.com/dekarrin/embrc/internal/ast"

// scope is one lexical nesting level: the function scope (parameters) or a
// block scope (spec.md §4.4.1). Resolution walks outward through parent
// until a name is found or the chain is exhausted.
type scope struct {
	parent *scope
	names  map[string]*ast.Symbol
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, names: make(map[string]*ast.Symbol)}
}

// declare adds name to this scope only if it is not already present in this
// same scope (shadowing across scopes is allowed; redeclaration within one
// scope is not — spec.md §4.4.1). It reports whether the declaration
// succeeded.
func (s *scope) declare(name string, sym *ast.Symbol) bool {
	if _, exists := s.names[name]; exists {
		return false
	}
	s.names[name] = sym
	return true
}

// lookup searches this scope and its ancestors for name.
func (s *scope) lookup(name string) (*ast.Symbol, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if sym, ok := cur.names[name]; ok {
			return sym, true
		}
	}
	return nil, false
}
