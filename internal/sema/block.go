package sema

import (
	"github.com/dekarrin/embrc/internal/ast"
	"github.com/dekarrin/embrc/internal/diag"
)

// analyzeBlock resolves and type-checks every statement in b, then its tail
// expression if any, in a fresh scope nested under parent. It returns the
// block's value type (Unit if there is no tail) and whether the block
// "returns" per spec.md §4.4.2's reachability lattice: true iff its last
// statement returns, or its tail expression is an if/else whose arms both
// return.
func (a *analyzer) analyzeBlock(b *ast.Block, parent *scope, expected *ast.Type) (ast.Type, bool) {
	sc := newScope(parent)

	seenReturn := false
	warned := false
	var lastReturns bool

	for i, stmt := range b.Stmts {
		if seenReturn && !warned {
			end := stmt.Span()
			if b.Tail != nil {
				end = end.Hull(b.Tail.Span())
			} else if n := len(b.Stmts); n > 0 {
				end = end.Hull(b.Stmts[n-1].Span())
			}
			a.bag.Emit(diag.Warnf(diag.KindUnreachableCode, end, "unreachable code"))
			warned = true
		}

		r := a.analyzeStmt(stmt, sc)
		if i == len(b.Stmts)-1 {
			lastReturns = r
		}
		if r {
			seenReturn = true
		}
	}

	var tailType ast.Type
	returns := lastReturns
	if b.Tail != nil {
		if seenReturn && !warned {
			a.bag.Emit(diag.Warnf(diag.KindUnreachableCode, b.Tail.Span(), "unreachable code"))
		}
		if ifTail, ok := b.Tail.(*ast.IfExpr); ok {
			tailType, returns = a.analyzeIfExpr(ifTail, sc, expected)
		} else {
			tailType = a.analyzeExprExpect(b.Tail, sc, expected)
			returns = false
		}
	} else {
		tailType = ast.Type{Kind: ast.Unit}
	}

	b.SetType(tailType)
	return tailType, returns
}

// analyzeStmt resolves one statement and reports whether it unconditionally
// returns from the enclosing function.
func (a *analyzer) analyzeStmt(s ast.Statement, sc *scope) bool {
	switch st := s.(type) {
	case *ast.LetStmt:
		a.analyzeLet(st, sc)
		return false
	case *ast.AssignStmt:
		a.analyzeAssign(st, sc)
		return false
	case *ast.IfStmt:
		return a.analyzeIfStmt(st, sc)
	case *ast.WhileStmt:
		a.analyzeWhile(st, sc)
		return false
	case *ast.BreakStmt:
		a.analyzeBreak(st)
		return false
	case *ast.ContinueStmt:
		a.analyzeContinue(st)
		return false
	case *ast.ReturnStmt:
		a.analyzeReturn(st, sc)
		return true
	case *ast.ExprStmt:
		a.analyzeExpr(st.Expr, sc)
		return false
	default:
		panic("sema: unknown statement type")
	}
}

func (a *analyzer) analyzeLet(s *ast.LetStmt, sc *scope) {
	var declared *ast.Type
	if s.Type != nil {
		t := a.resolveTypeRef(s.Type)
		declared = &t
	}

	valType := a.analyzeExprExpect(s.Value, sc, declared)

	declType := valType
	if declared != nil {
		declType = *declared
		if valType.Kind != ast.Unknown && !valType.Equal(*declared) {
			a.bag.Emit(diag.Errorf(diag.KindMismatch, s.Value.Span(),
				"expected %s, found %s", *declared, valType))
		}
	}

	sym := &ast.Symbol{
		Name:     s.Name,
		Kind:     ast.SymbolLocal,
		Type:     declType,
		Mutable:  s.Mutable,
		DeclSpan: s.NamePos,
		SlotID:   slotID(a.sourceID, s.NamePos, s.Name),
	}
	s.Symbol = sym
	if !sc.declare(s.Name, sym) {
		existing := sc.names[s.Name]
		d := diag.Errorf(diag.KindDuplicate, s.NamePos, "%q is already declared in this scope", s.Name).
			WithNote(existing.DeclSpan, "previous declaration of %q is here", s.Name)
		a.bag.Emit(d)
	}
}

func (a *analyzer) analyzeAssign(s *ast.AssignStmt, sc *scope) {
	valType := a.analyzeExpr(s.Value, sc)

	sym, ok := sc.lookup(s.Name)
	if !ok {
		a.bag.Emit(diag.Errorf(diag.KindUnresolved, s.NamePos, "unknown name %q", s.Name))
		return
	}
	s.Symbol = sym

	if sym.Kind == ast.SymbolFunction {
		a.bag.Emit(diag.Errorf(diag.KindNotCallable, s.NamePos, "%q is a function, not a variable", s.Name))
		return
	}
	if !sym.Mutable {
		a.bag.Emit(diag.Errorf(diag.KindAssignToImmutable, s.SpanVal, "cannot assign to immutable %q", s.Name))
		return
	}
	if valType.Kind != ast.Unknown && sym.Type.Kind != ast.Unknown && !valType.Equal(sym.Type) {
		a.bag.Emit(diag.Errorf(diag.KindMismatch, s.Value.Span(), "expected %s, found %s", sym.Type, valType))
	}
}

func (a *analyzer) analyzeReturn(s *ast.ReturnStmt, sc *scope) {
	if s.Value == nil {
		if a.returnType.Kind != ast.Unit {
			a.bag.Emit(diag.Errorf(diag.KindReturnTypeMismatch, s.SpanVal,
				"expected a return value of type %s", a.returnType))
		}
		return
	}

	expected := &a.returnType
	valType := a.analyzeExprExpect(s.Value, sc, expected)

	if a.returnType.Kind == ast.Unit {
		a.bag.Emit(diag.Errorf(diag.KindUnexpectedReturnValue, s.Value.Span(),
			"function has no return value, but one was given"))
		return
	}
	if valType.Kind != ast.Unknown && !valType.Equal(a.returnType) {
		a.bag.Emit(diag.Errorf(diag.KindMismatch, s.Value.Span(), "expected %s, found %s", a.returnType, valType))
	}
}

func (a *analyzer) analyzeBreak(s *ast.BreakStmt) {
	if len(a.loopStack) == 0 {
		a.bag.Emit(diag.Errorf(diag.KindUnexpectedToken, s.SpanVal, "'break' used outside of a loop"))
		return
	}
	s.LoopID = a.loopStack[len(a.loopStack)-1]
}

func (a *analyzer) analyzeContinue(s *ast.ContinueStmt) {
	if len(a.loopStack) == 0 {
		a.bag.Emit(diag.Errorf(diag.KindUnexpectedToken, s.SpanVal, "'continue' used outside of a loop"))
		return
	}
	s.LoopID = a.loopStack[len(a.loopStack)-1]
}

func (a *analyzer) analyzeWhile(s *ast.WhileStmt, sc *scope) {
	if s.Cond != nil {
		condType := a.analyzeExpr(s.Cond, sc)
		if condType.Kind != ast.Unknown && condType.Kind != ast.Bool {
			a.bag.Emit(diag.Errorf(diag.KindNonBooleanCond, s.Cond.Span(), "expected bool, found %s", condType))
		}
	}
	if s.Body == nil {
		return
	}

	id := loopID(a.sourceID, s.SpanVal)
	s.LoopID = id
	a.loopStack = append(a.loopStack, id)
	a.analyzeBlock(s.Body, sc, nil)
	a.loopStack = a.loopStack[:len(a.loopStack)-1]
}

// analyzeIfStmt resolves an if used in statement position and reports
// whether it unconditionally returns (spec.md §4.4.2: both arms must
// return, and there must be an else at all).
func (a *analyzer) analyzeIfStmt(s *ast.IfStmt, sc *scope) bool {
	_, returns := a.analyzeIfExpr(s.IfExpr, sc, nil)
	return returns
}
