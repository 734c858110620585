// Package parser turns a lexer.Token sequence into a typed ast.Program
// using recursive descent for statements and items, and Pratt-style
// precedence climbing for expressions (spec.md §4.3). The expression loop
// is grounded on tunascript.parseExpression's nud/led/lbp shape
// (internal/tunascript/parser.go, internal/tunascript/lexer.go's
// tokenClass.lbp field in the teacher repo), adapted to this spec's
// fixed operator-precedence table instead of per-tokenClass nud/led
// methods, since this grammar's primaries and postfixes are simpler than
// tunascript's function-call-heavy expression language.
package parser

import (
	"github.com/dekarrin/embrc/internal/ast"
	"github.com/dekarrin/embrc/internal/diag"
	"github.com/dekarrin/embrc/internal/lexer"
)

// maxExprDepth bounds recursive-descent expression nesting so that
// pathological input (e.g. 1,024+ nested parens, spec.md §8) reports a
// diagnostic instead of exhausting the goroutine stack.
const maxExprDepth = 4096

type parser struct {
	id    string
	toks  []lexer.Token
	pos   int
	bag   *diag.Bag
	depth int
}

// ParseProgram parses a full program: item* (spec.md §4.3, §6.1).
func ParseProgram(tokens []lexer.Token, id string) (*ast.Program, *diag.Bag) {
	p := &parser{id: id, toks: tokens, bag: &diag.Bag{}}
	prog := p.parseProgram()
	return prog, p.bag
}

// ParseExpression parses a single expression from tokens, exposed for
// evaluators/tests per spec.md §4.3's public contract.
func ParseExpression(tokens []lexer.Token, id string) (ast.Expression, *diag.Bag) {
	p := &parser{id: id, toks: tokens, bag: &diag.Bag{}}
	expr := p.parseExpr(0)
	return expr, p.bag
}

func (p *parser) cur() lexer.Token {
	if p.pos >= len(p.toks) {
		return lexer.Token{Kind: lexer.KindEOF}
	}
	return p.toks[p.pos]
}

func (p *parser) at(k lexer.Kind) bool {
	return p.cur().Kind == k
}

func (p *parser) peekAt(offset int) lexer.Token {
	i := p.pos + offset
	if i >= len(p.toks) {
		return lexer.Token{Kind: lexer.KindEOF}
	}
	return p.toks[i]
}

func (p *parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

// expect consumes the current token if it has kind k, else emits a
// ParseError::UnexpectedToken naming k as the expected kind and returns
// the current token with ok=false without advancing.
func (p *parser) expect(k lexer.Kind) (lexer.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	t := p.cur()
	p.bag.Emit(diag.Errorf(diag.KindUnexpectedToken, t.Span, "unexpected %s; expected %s", t.Kind.Human(), k.Human()))
	return t, false
}

// syncToItem discards tokens until the start of the next item ('func'/
// 'fn') or EOF — the parser's panic-mode recovery at item boundaries
// (spec.md §4.1, §4.3).
func (p *parser) syncToItem() {
	for !p.at(lexer.KindEOF) && !p.at(lexer.KindFunc) {
		p.advance()
	}
}

// syncToStmt discards tokens until ';', '}', or the start of the next
// item, the statement-level synchronization point (spec.md §4.3).
func (p *parser) syncToStmt() {
	for !p.at(lexer.KindEOF) && !p.at(lexer.KindFunc) {
		if p.at(lexer.KindSemicolon) {
			p.advance()
			return
		}
		if p.at(lexer.KindRBrace) {
			return
		}
		p.advance()
	}
}

func (p *parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	start := p.cur().Span

	for !p.at(lexer.KindEOF) {
		if !p.at(lexer.KindFunc) {
			t := p.cur()
			p.bag.Emit(diag.Errorf(diag.KindInvalidTopLevel, t.Span, "expected a function declaration, found %s", t.Kind.Human()))
			p.syncToItem()
			continue
		}
		fn := p.parseFunction()
		if fn != nil {
			prog.Functions = append(prog.Functions, fn)
		}
	}

	end := start
	if n := len(prog.Functions); n > 0 {
		end = prog.Functions[n-1].Span()
	}
	prog.SpanVal = start.Hull(end)
	return prog
}

func (p *parser) parseFunction() *ast.Function {
	kw := p.advance() // 'func'/'fn'
	nameTok, ok := p.expect(lexer.KindIdent)
	if !ok {
		p.syncToItem()
		return nil
	}

	fn := &ast.Function{Name: nameTok.Lexeme, NamePos: nameTok.Span}

	if _, ok := p.expect(lexer.KindLParen); !ok {
		p.syncToItem()
		return nil
	}
	for !p.at(lexer.KindRParen) && !p.at(lexer.KindEOF) {
		param := p.parseParam()
		if param != nil {
			fn.Params = append(fn.Params, param)
		}
		if p.at(lexer.KindComma) {
			p.advance()
			continue
		}
		break
	}
	if _, ok := p.expect(lexer.KindRParen); !ok {
		p.syncToItem()
		return nil
	}

	if p.at(lexer.KindArrow) {
		p.advance()
		typeTok, ok := p.expect(lexer.KindIdent)
		if ok {
			fn.ReturnType = &ast.TypeRef{Name: typeTok.Lexeme, SpanVal: typeTok.Span}
		}
	}

	body := p.parseBlock()
	if body == nil {
		p.syncToItem()
		return nil
	}
	fn.Body = body
	fn.SpanVal = kw.Span.Hull(body.Span())
	return fn
}

func (p *parser) parseParam() *ast.Param {
	nameTok, ok := p.expect(lexer.KindIdent)
	if !ok {
		return nil
	}
	if _, ok := p.expect(lexer.KindColon); !ok {
		return nil
	}
	typeTok, ok := p.expect(lexer.KindIdent)
	if !ok {
		return nil
	}
	typeRef := &ast.TypeRef{Name: typeTok.Lexeme, SpanVal: typeTok.Span}
	return &ast.Param{
		Name:    nameTok.Lexeme,
		NamePos: nameTok.Span,
		Type:    typeRef,
		SpanVal: nameTok.Span.Hull(typeTok.Span),
	}
}

// parseBlock parses '{' statement* expr? '}'. It dispatches dedicated
// statement forms first (let/mut, return, break, continue, while,
// assignment, if) and otherwise falls back to a plain expression, which
// becomes either an ExprStmt (followed by ';') or the block's tail value
// (followed directly by '}') — spec.md §4.3 "Block as expression".
func (p *parser) parseBlock() *ast.Block {
	open, ok := p.expect(lexer.KindLBrace)
	if !ok {
		return nil
	}

	b := &ast.Block{}
	for !p.at(lexer.KindRBrace) && !p.at(lexer.KindEOF) {
		if tail, isTail := p.parseBlockElement(b); isTail {
			b.Tail = tail
			break
		}
	}

	close, ok := p.expect(lexer.KindRBrace)
	if !ok {
		p.syncToStmt()
	}
	b.SpanVal = open.Span.Hull(close.Span)
	return b
}

// parseBlockElement parses one statement (appending it to b.Stmts) or, if
// the block has ended, the trailing tail expression (returned with
// isTail true, not appended).
func (p *parser) parseBlockElement(b *ast.Block) (tail ast.Expression, isTail bool) {
	switch p.cur().Kind {
	case lexer.KindVal, lexer.KindMut:
		if s := p.parseLetStmt(); s != nil {
			b.Stmts = append(b.Stmts, s)
		}
		return nil, false
	case lexer.KindReturn:
		b.Stmts = append(b.Stmts, p.parseReturnStmt())
		return nil, false
	case lexer.KindBreak:
		b.Stmts = append(b.Stmts, p.parseBreakStmt())
		return nil, false
	case lexer.KindContinue:
		b.Stmts = append(b.Stmts, p.parseContinueStmt())
		return nil, false
	case lexer.KindWhile:
		b.Stmts = append(b.Stmts, p.parseWhileStmt())
		return nil, false
	case lexer.KindIf:
		ifExpr := p.parseIfExpr()
		if p.at(lexer.KindRBrace) {
			return ifExpr, true
		}
		b.Stmts = append(b.Stmts, &ast.IfStmt{IfExpr: ifExpr})
		return nil, false
	case lexer.KindIdent:
		if p.peekAt(1).Kind == lexer.KindAssign {
			b.Stmts = append(b.Stmts, p.parseAssignStmt())
			return nil, false
		}
	}

	expr := p.parseExpr(0)
	if expr == nil {
		p.syncToStmt()
		return nil, false
	}
	if p.at(lexer.KindRBrace) {
		return expr, true
	}
	if _, ok := p.expect(lexer.KindSemicolon); !ok {
		p.syncToStmt()
		return nil, false
	}
	b.Stmts = append(b.Stmts, &ast.ExprStmt{Expr: expr, SpanVal: expr.Span()})
	return nil, false
}

func (p *parser) parseLetStmt() ast.Statement {
	kw := p.advance() // 'val'/'let'/'mut'
	mutable := kw.Kind == lexer.KindMut

	nameTok, ok := p.expect(lexer.KindIdent)
	if !ok {
		p.syncToStmt()
		return nil
	}

	var typeRef *ast.TypeRef
	if p.at(lexer.KindColon) {
		p.advance()
		typeTok, ok := p.expect(lexer.KindIdent)
		if ok {
			typeRef = &ast.TypeRef{Name: typeTok.Lexeme, SpanVal: typeTok.Span}
		}
	}

	if _, ok := p.expect(lexer.KindAssign); !ok {
		p.syncToStmt()
		return nil
	}

	val := p.parseExpr(0)
	if val == nil {
		p.syncToStmt()
		return nil
	}
	semi, ok := p.expect(lexer.KindSemicolon)
	if !ok {
		p.syncToStmt()
		return nil
	}

	return &ast.LetStmt{
		Mutable: mutable,
		Name:    nameTok.Lexeme,
		NamePos: nameTok.Span,
		Type:    typeRef,
		Value:   val,
		SpanVal: kw.Span.Hull(semi.Span),
	}
}

func (p *parser) parseAssignStmt() ast.Statement {
	nameTok := p.advance()
	p.advance() // '='
	val := p.parseExpr(0)
	if val == nil {
		p.syncToStmt()
		return nil
	}
	semi, ok := p.expect(lexer.KindSemicolon)
	if !ok {
		p.syncToStmt()
		return nil
	}
	return &ast.AssignStmt{Name: nameTok.Lexeme, NamePos: nameTok.Span, Value: val, SpanVal: nameTok.Span.Hull(semi.Span)}
}

func (p *parser) parseReturnStmt() ast.Statement {
	kw := p.advance()
	var val ast.Expression
	if !p.at(lexer.KindSemicolon) {
		val = p.parseExpr(0)
	}
	semi, ok := p.expect(lexer.KindSemicolon)
	if !ok {
		p.syncToStmt()
	}
	return &ast.ReturnStmt{Value: val, SpanVal: kw.Span.Hull(semi.Span)}
}

func (p *parser) parseBreakStmt() ast.Statement {
	kw := p.advance()
	semi, ok := p.expect(lexer.KindSemicolon)
	if !ok {
		p.syncToStmt()
	}
	return &ast.BreakStmt{SpanVal: kw.Span.Hull(semi.Span)}
}

func (p *parser) parseContinueStmt() ast.Statement {
	kw := p.advance()
	semi, ok := p.expect(lexer.KindSemicolon)
	if !ok {
		p.syncToStmt()
	}
	return &ast.ContinueStmt{SpanVal: kw.Span.Hull(semi.Span)}
}

func (p *parser) parseWhileStmt() ast.Statement {
	kw := p.advance()
	cond := p.parseExpr(0)
	body := p.parseBlock()
	if body == nil {
		p.syncToStmt()
		return &ast.WhileStmt{Cond: cond, SpanVal: kw.Span}
	}
	return &ast.WhileStmt{Cond: cond, Body: body, SpanVal: kw.Span.Hull(body.Span())}
}

func (p *parser) parseIfExpr() *ast.IfExpr {
	kw := p.advance() // 'if'
	cond := p.parseExpr(0)
	then := p.parseBlock()
	if then == nil {
		return &ast.IfExpr{Cond: cond, SpanVal: kw.Span}
	}

	e := &ast.IfExpr{Cond: cond, Then: then, SpanVal: kw.Span.Hull(then.Span())}
	if p.at(lexer.KindElse) {
		p.advance()
		if p.at(lexer.KindIf) {
			e.ElseIf = p.parseIfExpr()
			e.SpanVal = e.SpanVal.Hull(e.ElseIf.Span())
		} else {
			elseBlock := p.parseBlock()
			if elseBlock != nil {
				e.ElseBlock = elseBlock
				e.SpanVal = e.SpanVal.Hull(elseBlock.Span())
			}
		}
	}
	return e
}

// --- expression parsing: Pratt-style precedence climbing ---

// infixBindingPower returns the left binding power of an infix operator
// token kind, per the precedence table in spec.md §4.3 (levels 1-6).
// Higher means tighter binding. All operators here are left-associative.
func infixBindingPower(k lexer.Kind) (int, bool) {
	switch k {
	case lexer.KindOrOr:
		return 1, true
	case lexer.KindAndAnd:
		return 2, true
	case lexer.KindEqEq, lexer.KindNotEq:
		return 3, true
	case lexer.KindLt, lexer.KindLtEq, lexer.KindGt, lexer.KindGtEq:
		return 4, true
	case lexer.KindPlus, lexer.KindMinus:
		return 5, true
	case lexer.KindStar, lexer.KindSlash, lexer.KindPercent:
		return 6, true
	}
	return 0, false
}

func binaryOpFor(k lexer.Kind) ast.BinaryOp {
	switch k {
	case lexer.KindOrOr:
		return ast.OpOr
	case lexer.KindAndAnd:
		return ast.OpAnd
	case lexer.KindEqEq:
		return ast.OpEq
	case lexer.KindNotEq:
		return ast.OpNotEq
	case lexer.KindLt:
		return ast.OpLt
	case lexer.KindLtEq:
		return ast.OpLtEq
	case lexer.KindGt:
		return ast.OpGt
	case lexer.KindGtEq:
		return ast.OpGtEq
	case lexer.KindPlus:
		return ast.OpAdd
	case lexer.KindMinus:
		return ast.OpSub
	case lexer.KindStar:
		return ast.OpMul
	case lexer.KindSlash:
		return ast.OpDiv
	case lexer.KindPercent:
		return ast.OpMod
	}
	panic("parser: binaryOpFor called with non-infix token kind")
}

func (p *parser) parseExpr(minBP int) ast.Expression {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxExprDepth {
		t := p.cur()
		p.bag.Emit(diag.Errorf(diag.KindUnexpectedToken, t.Span, "expression nesting exceeds the maximum supported depth (%d)", maxExprDepth))
		return &ast.Literal{Kind: ast.LitInt, SpanVal: t.Span}
	}

	left := p.parseUnary()
	if left == nil {
		return nil
	}

	for {
		bp, ok := infixBindingPower(p.cur().Kind)
		if !ok || bp < minBP {
			break
		}
		opTok := p.advance()
		right := p.parseExpr(bp + 1)
		if right == nil {
			return left
		}
		left = &ast.Binary{
			Op:      binaryOpFor(opTok.Kind),
			Left:    left,
			Right:   right,
			SpanVal: left.Span().Hull(right.Span()),
		}
	}
	return left
}

// parseUnary handles precedence level 7 (unary - !), which binds looser
// than call (level 8) but tighter than every binary operator.
func (p *parser) parseUnary() ast.Expression {
	switch p.cur().Kind {
	case lexer.KindMinus:
		kw := p.advance()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return &ast.Unary{Op: ast.UnaryNeg, Operand: operand, SpanVal: kw.Span.Hull(operand.Span())}
	case lexer.KindBang:
		kw := p.advance()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return &ast.Unary{Op: ast.UnaryNot, Operand: operand, SpanVal: kw.Span.Hull(operand.Span())}
	default:
		return p.parseCallOrPrimary()
	}
}

// parseCallOrPrimary handles precedence level 8 (call) directly over
// level 9 (primary): an identifier immediately followed by '(' is a call,
// otherwise primary parsing applies unchanged.
func (p *parser) parseCallOrPrimary() ast.Expression {
	if p.at(lexer.KindIdent) && p.peekAt(1).Kind == lexer.KindLParen {
		nameTok := p.advance()
		p.advance() // '('
		call := &ast.Call{CalleeName: nameTok.Lexeme, CalleePos: nameTok.Span}
		for !p.at(lexer.KindRParen) && !p.at(lexer.KindEOF) {
			arg := p.parseExpr(0)
			if arg == nil {
				break
			}
			call.Args = append(call.Args, arg)
			if p.at(lexer.KindComma) {
				p.advance()
				continue
			}
			break
		}
		closeTok, ok := p.expect(lexer.KindRParen)
		if !ok {
			call.SpanVal = nameTok.Span
			return call
		}
		call.SpanVal = nameTok.Span.Hull(closeTok.Span)
		return call
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() ast.Expression {
	t := p.cur()
	switch t.Kind {
	case lexer.KindIntLiteral:
		p.advance()
		return &ast.Literal{Kind: ast.LitInt, IntValue: t.IntValue, SpanVal: t.Span}
	case lexer.KindFloatLiteral:
		p.advance()
		return &ast.Literal{Kind: ast.LitFloat, FloatValue: t.FloatValue, SpanVal: t.Span}
	case lexer.KindStringLiteral:
		p.advance()
		return &ast.Literal{Kind: ast.LitString, StringValue: t.StringValue, SpanVal: t.Span}
	case lexer.KindBoolLiteral:
		p.advance()
		return &ast.Literal{Kind: ast.LitBool, BoolValue: t.BoolValue, SpanVal: t.Span}
	case lexer.KindIdent:
		p.advance()
		return &ast.VarRef{Name: t.Lexeme, SpanVal: t.Span}
	case lexer.KindLParen:
		open := p.advance()
		inner := p.parseExpr(0)
		close, ok := p.expect(lexer.KindRParen)
		span := open.Span
		if ok {
			span = open.Span.Hull(close.Span)
		}
		if inner == nil {
			return nil
		}
		return &ast.Paren{Inner: inner, SpanVal: span}
	case lexer.KindLBrace:
		return p.parseBlock()
	case lexer.KindIf:
		return p.parseIfExpr()
	default:
		p.bag.Emit(diag.Errorf(diag.KindUnexpectedToken, t.Span, "unexpected %s (cannot start an expression)", t.Kind.Human()))
		p.advance()
		return nil
	}
}
