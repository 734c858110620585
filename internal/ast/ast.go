// Package ast defines the typed abstract syntax tree spec.md §3 describes:
// a strictly-owned tree of tagged variants (Item, Block, Statement,
// Expression), generalized from the tagged-union shape of
// tunascript.AST/astNode/fnNode/flagNode (internal/tunascript/ast.go in
// the teacher repo) to this spec's function/statement/expression grammar.
// Every node carries its Span; the semantic analyzer annotates nodes in
// place (resolved Type, resolved Symbol, assigned stack-slot id) rather
// than building a second tree, so the "elaborated AST" of spec.md §4.4.3
// is this same tree after Analyze has run over it.
package ast

import "github.com/dekarrin/embrc/internal/source"

// Node is implemented by every AST node.
type Node interface {
	Span() source.Span
}

// Typed is embedded by every Expression variant to carry its resolved
// Type, set by the semantic analyzer. Before analysis (or on a node whose
// type could not be determined) it holds the zero Type, Unknown.
type Typed struct {
	ResolvedType Type
}

// Type returns the node's resolved type. It is Unknown until analysis.
func (t *Typed) Type() Type { return t.ResolvedType }

// SetType is called by the semantic analyzer to annotate the node.
func (t *Typed) SetType(ty Type) { t.ResolvedType = ty }

// Program is the root node: an ordered sequence of top-level items. The
// core grammar's only Item variant is Function (spec.md §3).
type Program struct {
	Functions []*Function
	SpanVal   source.Span
}

func (p *Program) Span() source.Span { return p.SpanVal }

// Param is one declared parameter of a Function.
type Param struct {
	Name    string
	NamePos source.Span
	Type    *TypeRef
	SpanVal source.Span

	// Symbol is set by the semantic analyzer.
	Symbol *Symbol
}

func (p *Param) Span() source.Span { return p.SpanVal }

// TypeRef is a parsed type name: a primitive spelling or a user-defined
// name (spec.md §3). Resolved holds the semantic Type once sema has run.
type TypeRef struct {
	Name     string
	SpanVal  source.Span
	Resolved Type
}

func (t *TypeRef) Span() source.Span { return t.SpanVal }

// Function is the sole Item kind in the core grammar.
type Function struct {
	Name       string
	NamePos    source.Span
	Params     []*Param
	ReturnType *TypeRef // nil means unit
	Body       *Block
	SpanVal    source.Span

	// Symbol is set by the semantic analyzer.
	Symbol *Symbol
}

func (f *Function) Span() source.Span { return f.SpanVal }

// Block is an ordered sequence of statements plus an optional trailing
// tail expression. Per spec.md §3 and §4.3, a Block is itself an
// Expression: it evaluates to its tail expression's value, or to unit if
// there is none.
type Block struct {
	Stmts   []Statement
	Tail    Expression // nil if the block has no trailing tail expression
	SpanVal source.Span
	Typed
}

func (b *Block) Span() source.Span { return b.SpanVal }
func (*Block) exprNode()           {}

// Statement is implemented by every statement variant (spec.md §3).
type Statement interface {
	Node
	stmtNode()
}

// LetStmt binds a new Local. Mutable is true for 'mut' bindings, false for
// 'val'/'let' bindings.
type LetStmt struct {
	Mutable bool
	Name    string
	NamePos source.Span
	Type    *TypeRef // nil if the annotation was omitted
	Value   Expression
	SpanVal source.Span

	Symbol *Symbol
}

func (s *LetStmt) Span() source.Span { return s.SpanVal }
func (*LetStmt) stmtNode()           {}

// AssignStmt assigns to an existing Local or Parameter.
type AssignStmt struct {
	Name    string
	NamePos source.Span
	Value   Expression
	SpanVal source.Span

	// Symbol is the resolved target, set by the semantic analyzer.
	Symbol *Symbol
}

func (s *AssignStmt) Span() source.Span { return s.SpanVal }
func (*AssignStmt) stmtNode()           {}

// IfStmt is an 'if' used in statement position; its value, if any, is
// discarded. It shares its shape with IfExpr, the expression-position
// form, via the embedded IfExpr.
type IfStmt struct {
	*IfExpr
}

func (s *IfStmt) Span() source.Span { return s.IfExpr.Span() }
func (*IfStmt) stmtNode()           {}

// WhileStmt is a 'while' loop.
type WhileStmt struct {
	Cond    Expression
	Body    *Block
	SpanVal source.Span

	// LoopID is the opaque identifier break/continue inside Body resolve
	// against, assigned by the semantic analyzer (spec.md §9 "Ownership
	// and node identity").
	LoopID string
}

func (s *WhileStmt) Span() source.Span { return s.SpanVal }
func (*WhileStmt) stmtNode()           {}

// BreakStmt exits the innermost enclosing loop.
type BreakStmt struct {
	SpanVal source.Span
	LoopID  string // resolved by sema; empty if break was outside any loop
}

func (s *BreakStmt) Span() source.Span { return s.SpanVal }
func (*BreakStmt) stmtNode()           {}

// ContinueStmt jumps to the innermost enclosing loop's condition check.
type ContinueStmt struct {
	SpanVal source.Span
	LoopID  string
}

func (s *ContinueStmt) Span() source.Span { return s.SpanVal }
func (*ContinueStmt) stmtNode()           {}

// ReturnStmt returns from the enclosing function. Value is nil for a bare
// 'return;'.
type ReturnStmt struct {
	Value   Expression // nil if no value was given
	SpanVal source.Span
}

func (s *ReturnStmt) Span() source.Span { return s.SpanVal }
func (*ReturnStmt) stmtNode()           {}

// ExprStmt is an expression evaluated for its side effects; its value is
// discarded.
type ExprStmt struct {
	Expr    Expression
	SpanVal source.Span
}

func (s *ExprStmt) Span() source.Span { return s.SpanVal }
func (*ExprStmt) stmtNode()           {}

// Expression is implemented by every expression variant (spec.md §3).
type Expression interface {
	Node
	Type() Type
	SetType(Type)
	exprNode()
}

// LiteralKind distinguishes the payload carried by a Literal.
type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitFloat
	LitBool
	LitString
)

// Literal is a constant value token carried directly into the tree.
type Literal struct {
	Kind        LiteralKind
	IntValue    int64
	FloatValue  float64
	BoolValue   bool
	StringValue string
	SpanVal     source.Span
	Typed
}

func (e *Literal) Span() source.Span { return e.SpanVal }
func (*Literal) exprNode()           {}

// VarRef is a reference to a previously declared name.
type VarRef struct {
	Name    string
	SpanVal source.Span
	Typed

	// Symbol is the resolved binding, set by the semantic analyzer. It is
	// nil until analysis succeeds for this reference.
	Symbol *Symbol
}

func (e *VarRef) Span() source.Span { return e.SpanVal }
func (*VarRef) exprNode()           {}

// UnaryOp enumerates the two unary operators (spec.md §4.3 precedence
// level 7).
type UnaryOp int

const (
	UnaryNeg UnaryOp = iota
	UnaryNot
)

// Unary is a prefix unary operation.
type Unary struct {
	Op      UnaryOp
	Operand Expression
	SpanVal source.Span
	Typed
}

func (e *Unary) Span() source.Span { return e.SpanVal }
func (*Unary) exprNode()           {}

// BinaryOp enumerates every infix operator (spec.md §4.3 precedence
// levels 1-6).
type BinaryOp int

const (
	OpOr BinaryOp = iota
	OpAnd
	OpEq
	OpNotEq
	OpLt
	OpLtEq
	OpGt
	OpGtEq
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
)

// Binary is an infix binary operation.
type Binary struct {
	Op      BinaryOp
	Left    Expression
	Right   Expression
	SpanVal source.Span
	Typed
}

func (e *Binary) Span() source.Span { return e.SpanVal }
func (*Binary) exprNode()           {}

// Call is a function-call expression: callee(args...).
type Call struct {
	CalleeName string
	CalleePos  source.Span
	Args       []Expression
	SpanVal    source.Span
	Typed

	// Callee is the resolved target function symbol, set by sema.
	Callee *Symbol
}

func (e *Call) Span() source.Span { return e.SpanVal }
func (*Call) exprNode()           {}

// Paren is a parenthesized expression, kept in the tree (rather than
// collapsed away during parsing) so that Span and Print reproduce the
// source's explicit parentheses.
type Paren struct {
	Inner   Expression
	SpanVal source.Span
	Typed
}

func (e *Paren) Span() source.Span { return e.SpanVal }
func (*Paren) exprNode()           {}

// IfExpr is both the expression-position 'if' (spec.md §4.3 primary,
// "if-expression (tail position)") and the shape IfStmt wraps for
// statement position. When a trailing 'else' was given, exactly one of
// ElseBlock or ElseIf is set; otherwise both are nil.
type IfExpr struct {
	Cond      Expression
	Then      *Block
	ElseBlock *Block
	ElseIf    *IfExpr
	SpanVal   source.Span
	Typed
}

func (e *IfExpr) Span() source.Span { return e.SpanVal }
func (*IfExpr) exprNode()           {}

// HasElse reports whether this if has any else clause at all.
func (e *IfExpr) HasElse() bool {
	return e.ElseBlock != nil || e.ElseIf != nil
}
