// Package sema implements the semantic analyzer (spec.md §4.4): name
// resolution across nested lexical scopes, a structural type system with no
// implicit conversions, and return-type/reachability discipline. It
// annotates the ast.Program it is given in place rather than building a
// second tree, matching spec.md §4.4.3's "elaborated AST" contract.
//
// The two-pass collect-then-resolve shape is grounded on the structure the
// teacher repo's tunascript package implies for its flat function/flag
// namespace, generalized here into real nested block scopes per spec.md
// §4.4.1 since tunascript itself has no scoping to borrow directly.
package sema

import (
	"github.com/dekarrin/embrc/internal/ast"
	"github.com/dekarrin/embrc/internal/diag"
)

type analyzer struct {
	bag      *diag.Bag
	sourceID string
	globals  *scope

	// current function context, set by analyzeFunction for the duration of
	// one function body.
	returnType ast.Type

	// loopStack holds the loop ids of all loops currently enclosing the
	// statement being analyzed, innermost last.
	loopStack []string
}

// Analyze resolves names, checks types, and enforces return discipline
// across prog, annotating it in place. It returns the diagnostics
// collected; prog is still usable afterward (with Unknown types and nil
// symbols wherever analysis could not complete) but the driver should not
// proceed to IR emission if the bag has errors (spec.md §4.6, §9).
func Analyze(prog *ast.Program, sourceID string) *diag.Bag {
	a := &analyzer{bag: &diag.Bag{}, sourceID: sourceID, globals: newScope(nil)}
	a.collectGlobals(prog)
	for _, fn := range prog.Functions {
		a.analyzeFunction(fn)
	}
	return a.bag
}

// collectGlobals is pass 1 (spec.md §4.4.1): enter every top-level function
// into the global scope under its identifier before any body is resolved,
// so forward references and mutual recursion both work.
func (a *analyzer) collectGlobals(prog *ast.Program) {
	for _, fn := range prog.Functions {
		returnType := a.resolveTypeRef(fn.ReturnType)
		paramTypes := make([]ast.Type, len(fn.Params))
		for i, p := range fn.Params {
			paramTypes[i] = a.resolveTypeRef(p.Type)
		}

		sym := &ast.Symbol{
			Name:       fn.Name,
			Kind:       ast.SymbolFunction,
			Type:       returnType,
			DeclSpan:   fn.NamePos,
			ParamTypes: paramTypes,
			ReturnType: returnType,
		}
		fn.Symbol = sym

		if existing, ok := a.globals.names[fn.Name]; ok {
			d := diag.Errorf(diag.KindDuplicate, fn.NamePos, "function %q is already declared", fn.Name).
				WithNote(existing.DeclSpan, "previous declaration of %q is here", fn.Name)
			a.bag.Emit(d)
			continue
		}
		a.globals.names[fn.Name] = sym
	}
}

// resolveTypeRef resolves a parsed type annotation to a semantic Type. A nil
// ref means an omitted annotation, which denotes unit for return types. An
// unresolved name is a NameError::Unresolved, and the ref's Resolved type is
// left Unknown so later phases don't cascade.
func (a *analyzer) resolveTypeRef(ref *ast.TypeRef) ast.Type {
	if ref == nil {
		return ast.Type{Kind: ast.Unit}
	}
	t := ast.TypeOf(ref.Name)
	if t.Kind == ast.Named {
		a.bag.Emit(diag.Errorf(diag.KindUnresolved, ref.SpanVal, "unknown type %q", ref.Name))
		ref.Resolved = ast.Type{Kind: ast.Unknown}
		return ref.Resolved
	}
	ref.Resolved = t
	return t
}

func (a *analyzer) analyzeFunction(fn *ast.Function) {
	fnScope := newScope(a.globals)

	for i, p := range fn.Params {
		pType := fn.Symbol.ParamTypes[i]
		psym := &ast.Symbol{
			Name:     p.Name,
			Kind:     ast.SymbolParameter,
			Type:     pType,
			Mutable:  false,
			DeclSpan: p.NamePos,
			SlotID:   slotID(a.sourceID, p.NamePos, p.Name),
		}
		p.Symbol = psym
		if !fnScope.declare(p.Name, psym) {
			a.bag.Emit(diag.Errorf(diag.KindDuplicate, p.NamePos, "parameter %q is already declared", p.Name))
		}
	}

	a.returnType = fn.Symbol.ReturnType
	savedLoopStack := a.loopStack
	a.loopStack = nil

	var expected *ast.Type
	if a.returnType.Kind != ast.Unit {
		rt := a.returnType
		expected = &rt
	}
	tailType, returns := a.analyzeBlock(fn.Body, fnScope, expected)

	a.loopStack = savedLoopStack

	if a.returnType.Kind == ast.Unit {
		return
	}
	if returns {
		return
	}
	if fn.Body.Tail != nil && tailType.Kind != ast.Unit {
		if tailType.Kind == ast.Unknown {
			// An error already reported inside the tail expression; don't
			// cascade a second diagnostic on top of it (spec.md §9).
			return
		}
		if tailType.Equal(a.returnType) {
			return
		}
		a.bag.Emit(diag.Errorf(diag.KindReturnTypeMismatch, fn.Body.Tail.Span(),
			"function %q declared to return %s but its tail expression has type %s", fn.Name, a.returnType, tailType))
		return
	}
	a.bag.Emit(diag.Errorf(diag.KindMissingReturn, fn.Span(),
		"function %q does not return a value of type %s on every path", fn.Name, a.returnType))
}
