package parser

import (
	"fmt"
	"strconv"

	ictiobustypes "github.com/dekarrin/ictiobus/types"

	"github.com/dekarrin/embrc/internal/ast"
)

// ConcreteTree renders prog as an ictiobus types.ParseTree: a generic,
// non-terminal/terminal-tagged derivation tree with the same
// String()/Equal() shape ictiobus itself returns from Parser.Parse, used
// here purely as a debug/inspection view of what the recursive-descent
// parser built (spec.md names no required output format for this; it
// exists for --dump-tree in cmd/embrc and for structural tree-shape tests
// that are easier to read than a full AST dump). Terminal leaves carry no
// Source token, since nothing here consumes ParseTree.Source.
func ConcreteTree(prog *ast.Program) *ictiobustypes.ParseTree {
	root := &ictiobustypes.ParseTree{Value: "Program"}
	for _, fn := range prog.Functions {
		root.Children = append(root.Children, functionTree(fn))
	}
	return root
}

func leaf(value string) *ictiobustypes.ParseTree {
	return &ictiobustypes.ParseTree{Terminal: true, Value: value}
}

func node(value string, children ...*ictiobustypes.ParseTree) *ictiobustypes.ParseTree {
	return &ictiobustypes.ParseTree{Value: value, Children: children}
}

func functionTree(fn *ast.Function) *ictiobustypes.ParseTree {
	n := node(fmt.Sprintf("Function(%s)", fn.Name), leaf(fn.Name))
	for _, p := range fn.Params {
		n.Children = append(n.Children, node(fmt.Sprintf("Param(%s)", p.Name), leaf(p.Name), leaf(p.Type.Name)))
	}
	if fn.ReturnType != nil {
		n.Children = append(n.Children, leaf(fn.ReturnType.Name))
	}
	n.Children = append(n.Children, blockTree(fn.Body))
	return n
}

func blockTree(b *ast.Block) *ictiobustypes.ParseTree {
	n := node("Block")
	for _, s := range b.Stmts {
		n.Children = append(n.Children, stmtTree(s))
	}
	if b.Tail != nil {
		n.Children = append(n.Children, exprTree(b.Tail))
	}
	return n
}

func stmtTree(s ast.Statement) *ictiobustypes.ParseTree {
	switch s := s.(type) {
	case *ast.LetStmt:
		return node("LetStmt", leaf(s.Name), exprTree(s.Value))
	case *ast.AssignStmt:
		return node("AssignStmt", leaf(s.Name), exprTree(s.Value))
	case *ast.IfStmt:
		return node("IfStmt", ifTree(s.IfExpr))
	case *ast.WhileStmt:
		return node("WhileStmt", exprTree(s.Cond), blockTree(s.Body))
	case *ast.BreakStmt:
		return leaf("break")
	case *ast.ContinueStmt:
		return leaf("continue")
	case *ast.ReturnStmt:
		if s.Value == nil {
			return leaf("return")
		}
		return node("ReturnStmt", exprTree(s.Value))
	case *ast.ExprStmt:
		return node("ExprStmt", exprTree(s.Expr))
	default:
		return leaf(fmt.Sprintf("?%T", s))
	}
}

func ifTree(e *ast.IfExpr) *ictiobustypes.ParseTree {
	n := node("If", exprTree(e.Cond), blockTree(e.Then))
	if e.ElseBlock != nil {
		n.Children = append(n.Children, blockTree(e.ElseBlock))
	} else if e.ElseIf != nil {
		n.Children = append(n.Children, ifTree(e.ElseIf))
	}
	return n
}

func literalLexeme(e *ast.Literal) string {
	switch e.Kind {
	case ast.LitInt:
		return strconv.FormatInt(e.IntValue, 10)
	case ast.LitFloat:
		return strconv.FormatFloat(e.FloatValue, 'g', -1, 64)
	case ast.LitBool:
		return strconv.FormatBool(e.BoolValue)
	case ast.LitString:
		return strconv.Quote(e.StringValue)
	default:
		return "?lit"
	}
}

func exprTree(e ast.Expression) *ictiobustypes.ParseTree {
	switch e := e.(type) {
	case *ast.Literal:
		return leaf(literalLexeme(e))
	case *ast.VarRef:
		return leaf(e.Name)
	case *ast.Unary:
		return node("Unary", exprTree(e.Operand))
	case *ast.Binary:
		return node("Binary", exprTree(e.Left), exprTree(e.Right))
	case *ast.Call:
		n := node(fmt.Sprintf("Call(%s)", e.CalleeName))
		for _, a := range e.Args {
			n.Children = append(n.Children, exprTree(a))
		}
		return n
	case *ast.Paren:
		return node("Paren", exprTree(e.Inner))
	case *ast.Block:
		return blockTree(e)
	case *ast.IfExpr:
		return ifTree(e)
	default:
		return leaf(fmt.Sprintf("?%T", e))
	}
}
