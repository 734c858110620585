package sema

import (
	"github.com/dekarrin/embrc/internal/ast"
	"github.com/dekarrin/embrc/internal/diag"
)

// analyzeExpr resolves and type-checks e with no contextual expected type.
func (a *analyzer) analyzeExpr(e ast.Expression, sc *scope) ast.Type {
	return a.analyzeExprExpect(e, sc, nil)
}

// analyzeExprExpect resolves and type-checks e. expected, when non-nil, is
// the type context e appears in (an annotated let/mut initializer, a
// declared return type, or a call argument's declared parameter type); it
// only affects how an unannotated numeric literal is typed (spec.md
// §4.4.2's "takes the type required by context" rule).
func (a *analyzer) analyzeExprExpect(e ast.Expression, sc *scope, expected *ast.Type) ast.Type {
	switch n := e.(type) {
	case *ast.Literal:
		t := literalType(n, expected)
		n.SetType(t)
		return t
	case *ast.VarRef:
		return a.analyzeVarRef(n, sc)
	case *ast.Unary:
		return a.analyzeUnary(n, sc)
	case *ast.Binary:
		return a.analyzeBinary(n, sc)
	case *ast.Call:
		return a.analyzeCall(n, sc)
	case *ast.Paren:
		t := a.analyzeExprExpect(n.Inner, sc, expected)
		n.SetType(t)
		return t
	case *ast.Block:
		t, _ := a.analyzeBlock(n, sc, expected)
		return t
	case *ast.IfExpr:
		t, _ := a.analyzeIfExpr(n, sc, expected)
		return t
	default:
		panic("sema: unknown expression type")
	}
}

// literalType types a literal per spec.md §4.4.2: an unannotated numeric
// literal defaults to i32/f64; in a numeric context whose category matches
// (integer context for an int literal, float context for a float literal)
// it takes that context's exact width instead.
func literalType(n *ast.Literal, expected *ast.Type) ast.Type {
	switch n.Kind {
	case ast.LitInt:
		if expected != nil && expected.IsInteger() {
			return *expected
		}
		return ast.Type{Kind: ast.I32}
	case ast.LitFloat:
		if expected != nil && expected.IsFloat() {
			return *expected
		}
		return ast.Type{Kind: ast.F64}
	case ast.LitBool:
		return ast.Type{Kind: ast.Bool}
	case ast.LitString:
		return ast.Type{Kind: ast.Str}
	default:
		return ast.Type{Kind: ast.Unknown}
	}
}

func (a *analyzer) analyzeVarRef(e *ast.VarRef, sc *scope) ast.Type {
	sym, ok := sc.lookup(e.Name)
	if !ok {
		a.bag.Emit(diag.Errorf(diag.KindUnresolved, e.SpanVal, "unknown name %q", e.Name))
		e.SetType(ast.Type{Kind: ast.Unknown})
		return e.Type()
	}
	if sym.Kind == ast.SymbolFunction {
		a.bag.Emit(diag.Errorf(diag.KindMismatch, e.SpanVal, "%q is a function and cannot be used as a value", e.Name))
		e.SetType(ast.Type{Kind: ast.Unknown})
		return e.Type()
	}
	e.Symbol = sym
	e.SetType(sym.Type)
	return sym.Type
}

func (a *analyzer) analyzeUnary(e *ast.Unary, sc *scope) ast.Type {
	t := a.analyzeExpr(e.Operand, sc)
	if t.Kind == ast.Unknown {
		e.SetType(ast.Type{Kind: ast.Unknown})
		return e.Type()
	}

	switch e.Op {
	case ast.UnaryNeg:
		if !(t.IsSignedInteger() || t.IsFloat()) {
			a.bag.Emit(diag.Errorf(diag.KindUnsupportedOperator, e.Operand.Span(),
				"unary '-' requires a signed integer or float, found %s", t))
			e.SetType(ast.Type{Kind: ast.Unknown})
			return e.Type()
		}
		e.SetType(t)
		return t
	case ast.UnaryNot:
		if t.Kind != ast.Bool {
			a.bag.Emit(diag.Errorf(diag.KindUnsupportedOperator, e.Operand.Span(),
				"unary '!' requires bool, found %s", t))
			e.SetType(ast.Type{Kind: ast.Unknown})
			return e.Type()
		}
		e.SetType(ast.Type{Kind: ast.Bool})
		return e.Type()
	default:
		panic("sema: unknown unary operator")
	}
}

func (a *analyzer) analyzeBinary(e *ast.Binary, sc *scope) ast.Type {
	lt := a.analyzeExpr(e.Left, sc)
	rt := a.analyzeExpr(e.Right, sc)

	unknown := ast.Type{Kind: ast.Unknown}
	if lt.Kind == ast.Unknown || rt.Kind == ast.Unknown {
		e.SetType(unknown)
		return unknown
	}

	switch e.Op {
	case ast.OpOr, ast.OpAnd:
		ok := true
		if lt.Kind != ast.Bool {
			a.bag.Emit(diag.Errorf(diag.KindUnsupportedOperator, e.Left.Span(), "expected bool, found %s", lt))
			ok = false
		}
		if rt.Kind != ast.Bool {
			a.bag.Emit(diag.Errorf(diag.KindUnsupportedOperator, e.Right.Span(), "expected bool, found %s", rt))
			ok = false
		}
		if !ok {
			e.SetType(unknown)
			return unknown
		}
		e.SetType(ast.Type{Kind: ast.Bool})
		return e.Type()

	case ast.OpEq, ast.OpNotEq:
		if !lt.Equal(rt) {
			a.bag.Emit(diag.Errorf(diag.KindMismatch, e.Right.Span(), "expected %s, found %s", lt, rt))
			e.SetType(unknown)
			return unknown
		}
		e.SetType(ast.Type{Kind: ast.Bool})
		return e.Type()

	case ast.OpLt, ast.OpLtEq, ast.OpGt, ast.OpGtEq:
		ok := true
		if !lt.IsNumeric() {
			a.bag.Emit(diag.Errorf(diag.KindUnsupportedOperator, e.Left.Span(), "expected a numeric type, found %s", lt))
			ok = false
		}
		if !rt.IsNumeric() {
			a.bag.Emit(diag.Errorf(diag.KindUnsupportedOperator, e.Right.Span(), "expected a numeric type, found %s", rt))
			ok = false
		}
		if ok && !lt.Equal(rt) {
			a.bag.Emit(diag.Errorf(diag.KindMismatch, e.Right.Span(), "expected %s, found %s", lt, rt))
			ok = false
		}
		if !ok {
			e.SetType(unknown)
			return unknown
		}
		e.SetType(ast.Type{Kind: ast.Bool})
		return e.Type()

	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		ok := true
		if !lt.IsNumeric() {
			a.bag.Emit(diag.Errorf(diag.KindUnsupportedOperator, e.Left.Span(), "expected a numeric type, found %s", lt))
			ok = false
		}
		if !rt.IsNumeric() {
			a.bag.Emit(diag.Errorf(diag.KindUnsupportedOperator, e.Right.Span(), "expected a numeric type, found %s", rt))
			ok = false
		}
		if ok && !lt.Equal(rt) {
			a.bag.Emit(diag.Errorf(diag.KindMismatch, e.Right.Span(), "expected %s, found %s", lt, rt))
			ok = false
		}
		if !ok {
			e.SetType(unknown)
			return unknown
		}
		e.SetType(lt)
		return lt

	default:
		panic("sema: unknown binary operator")
	}
}

func (a *analyzer) analyzeCall(e *ast.Call, sc *scope) ast.Type {
	unknown := ast.Type{Kind: ast.Unknown}

	sym, ok := sc.lookup(e.CalleeName)
	if !ok {
		a.bag.Emit(diag.Errorf(diag.KindUnresolved, e.CalleePos, "unknown name %q", e.CalleeName))
		for _, arg := range e.Args {
			a.analyzeExpr(arg, sc)
		}
		e.SetType(unknown)
		return unknown
	}
	if sym.Kind != ast.SymbolFunction {
		a.bag.Emit(diag.Errorf(diag.KindNotCallable, e.CalleePos, "%q is not callable", e.CalleeName))
		for _, arg := range e.Args {
			a.analyzeExpr(arg, sc)
		}
		e.SetType(unknown)
		return unknown
	}
	e.Callee = sym

	if len(e.Args) != len(sym.ParamTypes) {
		a.bag.Emit(diag.Errorf(diag.KindArityMismatch, e.SpanVal,
			"function %q expects %d argument(s), found %d", e.CalleeName, len(sym.ParamTypes), len(e.Args)))
	}

	n := len(e.Args)
	if len(sym.ParamTypes) < n {
		n = len(sym.ParamTypes)
	}
	for i := 0; i < n; i++ {
		pt := sym.ParamTypes[i]
		at := a.analyzeExprExpect(e.Args[i], sc, &pt)
		if at.Kind != ast.Unknown && pt.Kind != ast.Unknown && !at.Equal(pt) {
			a.bag.Emit(diag.Errorf(diag.KindMismatch, e.Args[i].Span(), "expected %s, found %s", pt, at))
		}
	}
	for i := n; i < len(e.Args); i++ {
		a.analyzeExpr(e.Args[i], sc)
	}

	e.SetType(sym.ReturnType)
	return sym.ReturnType
}

// analyzeIfExpr resolves an 'if' in either statement or expression position
// and reports its value type (Unit when there is no else) and whether it
// unconditionally returns from the enclosing function: true iff there is an
// else branch and both arms return (spec.md §4.4.2).
func (a *analyzer) analyzeIfExpr(e *ast.IfExpr, sc *scope, expected *ast.Type) (ast.Type, bool) {
	if e.Cond == nil || e.Then == nil {
		// A prior parse error left this if incomplete; nothing further to
		// check, and nothing to suppress cascades from.
		unknown := ast.Type{Kind: ast.Unknown}
		e.SetType(unknown)
		return unknown, false
	}

	condType := a.analyzeExpr(e.Cond, sc)
	if condType.Kind != ast.Unknown && condType.Kind != ast.Bool {
		a.bag.Emit(diag.Errorf(diag.KindNonBooleanCond, e.Cond.Span(), "expected bool, found %s", condType))
	}

	thenType, thenReturns := a.analyzeBlock(e.Then, sc, expected)

	var elseType ast.Type
	var elseReturns, hasElse bool
	switch {
	case e.ElseBlock != nil:
		hasElse = true
		elseType, elseReturns = a.analyzeBlock(e.ElseBlock, sc, expected)
	case e.ElseIf != nil:
		hasElse = true
		elseType, elseReturns = a.analyzeIfExpr(e.ElseIf, sc, expected)
	default:
		elseType = ast.Type{Kind: ast.Unit}
	}

	var resultType ast.Type
	switch {
	case !hasElse:
		resultType = ast.Type{Kind: ast.Unit}
	case thenType.Kind == ast.Unknown || elseType.Kind == ast.Unknown:
		resultType = ast.Type{Kind: ast.Unknown}
	case !thenType.Equal(elseType):
		a.bag.Emit(diag.Errorf(diag.KindMismatch, e.SpanVal, "expected %s, found %s", thenType, elseType))
		resultType = ast.Type{Kind: ast.Unknown}
	default:
		resultType = thenType
	}

	e.SetType(resultType)
	return resultType, hasElse && thenReturns && elseReturns
}
