package ir

import (
	"fmt"

	"github.com/dekarrin/embrc/internal/ast"
	"github.com/dekarrin/embrc/internal/diag"
)

// Emit lowers an elaborated program (one that has already passed
// sema.Analyze with no errors) into an IR Module (spec.md §4.5). Calling it
// on a program that still has unresolved symbols or Unknown types is a
// caller error: the driver must not invoke Emit unless analysis produced no
// errors (spec.md §4.6, §9 "error recovery vs. correctness").
func Emit(prog *ast.Program) (*Module, *diag.Bag) {
	e := &emitter{bag: &diag.Bag{}}
	mod := &Module{}
	for _, fn := range prog.Functions {
		irFn := e.emitFunction(fn)
		if irFn != nil {
			mod.Functions = append(mod.Functions, irFn)
		}
	}
	return mod, e.bag
}

type loopLabels struct {
	header string
	exit   string
}

// emitter holds the per-function mutable state of the lowering walk: the
// function under construction, the basic block instructions are currently
// appended to, and the counters/maps that give SSA values, blocks, and
// stack slots their short names (spec.md §6.3's "the exact lexical form is
// an implementation choice").
type emitter struct {
	bag *diag.Bag

	fn        *Function
	cur       *BasicBlock
	valueNum  int
	blockNum  int
	slotNames map[string]string // ast.Symbol.SlotID -> this function's short slot name
	slotNum   int
	loops     map[string]loopLabels // ast.WhileStmt.LoopID -> this function's header/exit labels
}

func (e *emitter) newValue() string {
	n := e.valueNum
	e.valueNum++
	return fmt.Sprintf("%d", n)
}

func (e *emitter) newBlock(prefix string) *BasicBlock {
	n := e.blockNum
	e.blockNum++
	b := &BasicBlock{Label: fmt.Sprintf("%s%d", prefix, n)}
	e.fn.Blocks = append(e.fn.Blocks, b)
	return b
}

func (e *emitter) emit(in Instruction) {
	e.cur.Instrs = append(e.cur.Instrs, in)
}

func (e *emitter) slotFor(id string) string {
	if n, ok := e.slotNames[id]; ok {
		return n
	}
	n := fmt.Sprintf("slot%d", e.slotNum)
	e.slotNum++
	e.slotNames[id] = n
	return n
}

// zeroOperandFor builds a placeholder constant of type t, used to give an
// unreachable block (e.g. a merge block neither if-arm falls into) a legal
// terminator without having to invent an "unreachable" opcode.
func zeroOperandFor(t ast.Type) Operand {
	switch {
	case t.IsFloat():
		return Operand{Kind: FloatConstOperand, Float: 0, Type: t}
	case t.Kind == ast.Bool:
		return Operand{Kind: BoolConstOperand, Bool: false, Type: t}
	case t.Kind == ast.Str:
		return Operand{Kind: StringConstOperand, Str: "", Type: t}
	default:
		return Operand{Kind: IntConstOperand, Int: 0, Type: t}
	}
}

func (e *emitter) emitFunction(fn *ast.Function) *Function {
	if fn.Symbol == nil {
		return nil
	}

	e.fn = &Function{Name: fn.Name, ReturnType: fn.Symbol.ReturnType}
	e.valueNum = 0
	e.blockNum = 0
	e.slotNum = 0
	e.slotNames = make(map[string]string)
	e.loops = make(map[string]loopLabels)

	entry := e.newBlock("entry")
	e.cur = entry

	for _, p := range fn.Params {
		if p.Symbol == nil {
			e.bag.Emit(diag.Errorf(diag.KindIRInternal, p.Span(), "parameter %q has no resolved symbol", p.Name))
			continue
		}
		slot := e.slotFor(p.Symbol.SlotID)
		e.fn.Params = append(e.fn.Params, Param{Name: p.Name, Slot: slot, Type: p.Symbol.Type})
		e.emit(Instruction{Op: opAlloca, Type: p.Symbol.Type, Slot: slot})
		incoming := Operand{Kind: ValueOperand, Value: "arg." + slot, Type: p.Symbol.Type}
		e.emit(Instruction{Op: opStore, Type: p.Symbol.Type, Slot: slot, Args: []Operand{incoming}})
	}

	for _, decl := range hoistedLocals(fn.Body) {
		if decl.Symbol == nil {
			continue
		}
		slot := e.slotFor(decl.Symbol.SlotID)
		e.emit(Instruction{Op: opAlloca, Type: decl.Symbol.Type, Slot: slot})
	}

	tailVal, tailType := e.emitBlockBody(fn.Body)

	if !e.cur.terminated() {
		switch {
		case fn.Body.Tail != nil:
			if tailType.Kind == ast.Unknown {
				e.bag.Emit(diag.Errorf(diag.KindIRInternal, fn.Span(),
					"function %q tail expression has no resolved type", fn.Name))
			} else {
				e.emit(Instruction{Op: opRet, Type: tailType, Args: []Operand{tailVal}})
			}
		case e.fn.ReturnType.Kind == ast.Unit:
			e.emit(Instruction{Op: opRet, Type: ast.Type{Kind: ast.Unit}})
		default:
			e.bag.Emit(diag.Errorf(diag.KindIRInternal, fn.Span(),
				"function %q falls through without returning a value", fn.Name))
		}
	}

	return e.fn
}

// emitBlockBody emits every statement of b, then its tail expression if
// any, into the current block (which may change partway through, as
// nested if/while constructs switch e.cur to their own blocks). It returns
// the tail expression's value and type; if b has no tail or control flow
// never reaches the tail position, it returns the zero Operand and Unit.
func (e *emitter) emitBlockBody(b *ast.Block) (Operand, ast.Type) {
	for _, stmt := range b.Stmts {
		if e.cur.terminated() {
			// Unreachable: sema already warned. Nothing left to lower.
			return Operand{}, ast.Type{Kind: ast.Unit}
		}
		e.emitStmt(stmt)
	}
	if e.cur.terminated() {
		return Operand{}, ast.Type{Kind: ast.Unit}
	}
	if b.Tail != nil {
		return e.emitExpr(b.Tail)
	}
	return Operand{}, ast.Type{Kind: ast.Unit}
}

func (e *emitter) emitStmt(s ast.Statement) {
	switch st := s.(type) {
	case *ast.LetStmt:
		val, _ := e.emitExpr(st.Value)
		if st.Symbol == nil {
			e.bag.Emit(diag.Errorf(diag.KindIRInternal, st.Span(), "declaration of %q has no resolved symbol", st.Name))
			return
		}
		slot := e.slotFor(st.Symbol.SlotID)
		e.emit(Instruction{Op: opStore, Type: st.Symbol.Type, Slot: slot, Args: []Operand{val}})

	case *ast.AssignStmt:
		val, _ := e.emitExpr(st.Value)
		if st.Symbol == nil {
			e.bag.Emit(diag.Errorf(diag.KindIRInternal, st.Span(), "assignment to %q has no resolved symbol", st.Name))
			return
		}
		slot := e.slotFor(st.Symbol.SlotID)
		e.emit(Instruction{Op: opStore, Type: st.Symbol.Type, Slot: slot, Args: []Operand{val}})

	case *ast.IfStmt:
		e.emitIf(st.IfExpr)

	case *ast.WhileStmt:
		e.emitWhile(st)

	case *ast.BreakStmt:
		lbl, ok := e.loops[st.LoopID]
		if !ok {
			e.bag.Emit(diag.Errorf(diag.KindIRInternal, st.Span(), "break has no resolved loop target"))
			return
		}
		e.emit(Instruction{Op: opJmp, Targets: []string{lbl.exit}})

	case *ast.ContinueStmt:
		lbl, ok := e.loops[st.LoopID]
		if !ok {
			e.bag.Emit(diag.Errorf(diag.KindIRInternal, st.Span(), "continue has no resolved loop target"))
			return
		}
		e.emit(Instruction{Op: opJmp, Targets: []string{lbl.header}})

	case *ast.ReturnStmt:
		if st.Value == nil {
			e.emit(Instruction{Op: opRet, Type: ast.Type{Kind: ast.Unit}})
			return
		}
		val, typ := e.emitExpr(st.Value)
		if typ.Kind == ast.Unknown {
			e.bag.Emit(diag.Errorf(diag.KindIRInternal, st.Value.Span(), "return value has no resolved type"))
			return
		}
		e.emit(Instruction{Op: opRet, Type: typ, Args: []Operand{val}})

	case *ast.ExprStmt:
		e.emitExpr(st.Expr)

	default:
		e.bag.Emit(diag.Errorf(diag.KindIRInternal, s.Span(), "unhandled statement node in IR emission"))
	}
}

func (e *emitter) emitExpr(expr ast.Expression) (Operand, ast.Type) {
	switch n := expr.(type) {
	case *ast.Literal:
		return e.emitLiteral(n)
	case *ast.VarRef:
		return e.emitVarRef(n)
	case *ast.Unary:
		return e.emitUnary(n)
	case *ast.Binary:
		return e.emitBinary(n)
	case *ast.Call:
		return e.emitCall(n)
	case *ast.Paren:
		return e.emitExpr(n.Inner)
	case *ast.Block:
		return e.emitBlockBody(n)
	case *ast.IfExpr:
		return e.emitIf(n)
	default:
		e.bag.Emit(diag.Errorf(diag.KindIRInternal, expr.Span(), "unhandled expression node in IR emission"))
		return Operand{}, ast.Type{Kind: ast.Unknown}
	}
}

func (e *emitter) emitLiteral(n *ast.Literal) (Operand, ast.Type) {
	t := n.Type()
	switch n.Kind {
	case ast.LitInt:
		return Operand{Kind: IntConstOperand, Int: n.IntValue, Type: t}, t
	case ast.LitFloat:
		return Operand{Kind: FloatConstOperand, Float: n.FloatValue, Type: t}, t
	case ast.LitBool:
		return Operand{Kind: BoolConstOperand, Bool: n.BoolValue, Type: t}, t
	case ast.LitString:
		return Operand{Kind: StringConstOperand, Str: n.StringValue, Type: t}, t
	default:
		e.bag.Emit(diag.Errorf(diag.KindIRInternal, n.Span(), "literal has unrecognized kind"))
		return Operand{}, ast.Type{Kind: ast.Unknown}
	}
}

func (e *emitter) emitVarRef(n *ast.VarRef) (Operand, ast.Type) {
	if n.Symbol == nil {
		e.bag.Emit(diag.Errorf(diag.KindIRInternal, n.Span(), "reference to %q has no resolved symbol", n.Name))
		return Operand{}, ast.Type{Kind: ast.Unknown}
	}
	slot := e.slotFor(n.Symbol.SlotID)
	t := n.Symbol.Type
	name := e.newValue()
	e.emit(Instruction{Op: opLoad, Result: name, Type: t, Slot: slot})
	return Operand{Kind: ValueOperand, Value: name, Type: t}, t
}

func (e *emitter) emitSimpleBinOp(op string, instrType ast.Type, lhs, rhs Operand, resultType ast.Type) (Operand, ast.Type) {
	name := e.newValue()
	e.emit(Instruction{Op: op, Result: name, Type: instrType, Args: []Operand{lhs, rhs}})
	return Operand{Kind: ValueOperand, Value: name, Type: resultType}, resultType
}

func (e *emitter) emitUnary(n *ast.Unary) (Operand, ast.Type) {
	operand, ot := e.emitExpr(n.Operand)
	resultType := n.Type()
	if resultType.Kind == ast.Unknown {
		return Operand{}, resultType
	}

	switch n.Op {
	case ast.UnaryNeg:
		// Lowered as subtraction from zero: there is no dedicated negate
		// opcode in this instruction set.
		if ot.IsFloat() {
			zero := Operand{Kind: FloatConstOperand, Float: 0, Type: ot}
			return e.emitSimpleBinOp(opFSub, ot, zero, operand, resultType)
		}
		zero := Operand{Kind: IntConstOperand, Int: 0, Type: ot}
		return e.emitSimpleBinOp(opSub, ot, zero, operand, resultType)
	case ast.UnaryNot:
		// Lowered as xor with true: equivalent to logical negation for a
		// single-bit boolean operand.
		trueOperand := Operand{Kind: BoolConstOperand, Bool: true, Type: ast.Type{Kind: ast.Bool}}
		return e.emitSimpleBinOp(opXor, ast.Type{Kind: ast.Bool}, operand, trueOperand, resultType)
	default:
		e.bag.Emit(diag.Errorf(diag.KindIRInternal, n.Span(), "unhandled unary operator"))
		return Operand{}, ast.Type{Kind: ast.Unknown}
	}
}

// arithOpcode selects the mnemonic for an arithmetic operator over operands
// of type t, distinguishing float arithmetic and signed-vs-unsigned
// division/remainder (spec.md §4.5.2).
func arithOpcode(op ast.BinaryOp, t ast.Type) string {
	switch op {
	case ast.OpAdd:
		if t.IsFloat() {
			return opFAdd
		}
		return opAdd
	case ast.OpSub:
		if t.IsFloat() {
			return opFSub
		}
		return opSub
	case ast.OpMul:
		if t.IsFloat() {
			return opFMul
		}
		return opMul
	case ast.OpDiv:
		if t.IsFloat() {
			return opFDiv
		}
		if t.IsUnsignedInteger() {
			return opUDiv
		}
		return opSDiv
	case ast.OpMod:
		if t.IsFloat() {
			return opFRem
		}
		if t.IsUnsignedInteger() {
			return opURem
		}
		return opSRem
	default:
		return opAdd // unreachable given the switch in emitBinary
	}
}

// cmpOpcode selects the mnemonic for a comparison operator over operands of
// type t, distinguishing float comparison and signed-vs-unsigned ordering
// (spec.md §4.5.2).
func cmpOpcode(op ast.BinaryOp, t ast.Type) string {
	isFloat := t.IsFloat()
	unsigned := t.IsUnsignedInteger()
	switch op {
	case ast.OpEq:
		if isFloat {
			return opFCmpEq
		}
		return opICmpEq
	case ast.OpNotEq:
		if isFloat {
			return opFCmpNe
		}
		return opICmpNe
	case ast.OpLt:
		if isFloat {
			return opFCmpLt
		}
		if unsigned {
			return opICmpUlt
		}
		return opICmpSlt
	case ast.OpLtEq:
		if isFloat {
			return opFCmpLe
		}
		if unsigned {
			return opICmpUle
		}
		return opICmpSle
	case ast.OpGt:
		if isFloat {
			return opFCmpGt
		}
		if unsigned {
			return opICmpUgt
		}
		return opICmpSgt
	case ast.OpGtEq:
		if isFloat {
			return opFCmpGe
		}
		if unsigned {
			return opICmpUge
		}
		return opICmpSge
	default:
		return opICmpEq // unreachable given the switch in emitBinary
	}
}

// emitBinary lowers a binary expression. Logical and/or are lowered as
// plain bitwise and/or over boolean operands rather than short-circuited
// branches: this grammar has no side-effecting boolean subexpressions
// beyond calls, and spec.md §6.3 leaves the exact lexical/control-flow
// shape of lowering to the emitter.
func (e *emitter) emitBinary(n *ast.Binary) (Operand, ast.Type) {
	lhs, lt := e.emitExpr(n.Left)
	rhs, _ := e.emitExpr(n.Right)
	resultType := n.Type()
	if resultType.Kind == ast.Unknown {
		return Operand{}, resultType
	}

	switch n.Op {
	case ast.OpAnd:
		return e.emitSimpleBinOp(opAnd, ast.Type{Kind: ast.Bool}, lhs, rhs, resultType)
	case ast.OpOr:
		return e.emitSimpleBinOp(opOr, ast.Type{Kind: ast.Bool}, lhs, rhs, resultType)
	case ast.OpEq, ast.OpNotEq, ast.OpLt, ast.OpLtEq, ast.OpGt, ast.OpGtEq:
		return e.emitSimpleBinOp(cmpOpcode(n.Op, lt), lt, lhs, rhs, resultType)
	default:
		return e.emitSimpleBinOp(arithOpcode(n.Op, lt), lt, lhs, rhs, resultType)
	}
}

func (e *emitter) emitCall(n *ast.Call) (Operand, ast.Type) {
	if n.Callee == nil {
		e.bag.Emit(diag.Errorf(diag.KindIRInternal, n.Span(), "call to %q has no resolved target", n.CalleeName))
		for _, a := range n.Args {
			e.emitExpr(a)
		}
		return Operand{}, ast.Type{Kind: ast.Unknown}
	}

	args := make([]Operand, len(n.Args))
	for i, a := range n.Args {
		args[i], _ = e.emitExpr(a)
	}

	resultType := n.Type()
	if resultType.Kind == ast.Unit {
		e.emit(Instruction{Op: opCall, Type: resultType, Callee: n.CalleeName, Args: args})
		return Operand{}, resultType
	}
	name := e.newValue()
	e.emit(Instruction{Op: opCall, Result: name, Type: resultType, Callee: n.CalleeName, Args: args})
	return Operand{Kind: ValueOperand, Value: name, Type: resultType}, resultType
}

// emitIf lowers an if-expression (used either as a statement, its value
// discarded, or in tail/expression position) into a then/else/merge block
// triple, joining the two arms with a phi when both contribute a value
// (spec.md §4.5.2: "phi nodes at expression-position if merges").
func (e *emitter) emitIf(n *ast.IfExpr) (Operand, ast.Type) {
	resultType := n.Type()

	if n.Cond == nil || n.Then == nil {
		// A prior parse error left this if incomplete; sema already
		// reported it. Nothing sound to lower.
		return Operand{}, ast.Type{Kind: ast.Unknown}
	}

	condVal, _ := e.emitExpr(n.Cond)

	thenBB := e.newBlock("if.then")
	var elseBB *BasicBlock
	if n.ElseBlock != nil || n.ElseIf != nil {
		elseBB = e.newBlock("if.else")
	}
	mergeBB := e.newBlock("if.merge")

	elseLabel := mergeBB.Label
	if elseBB != nil {
		elseLabel = elseBB.Label
	}

	e.emit(Instruction{Op: opBr, Args: []Operand{condVal}, Targets: []string{thenBB.Label, elseLabel}})

	e.cur = thenBB
	thenVal, thenType := e.emitBlockBody(n.Then)
	thenEndBlock := e.cur
	thenWasTerminated := thenEndBlock.terminated()
	if !thenWasTerminated {
		e.emit(Instruction{Op: opJmp, Targets: []string{mergeBB.Label}})
	}

	var elseVal Operand
	var elseType ast.Type
	var elseEndBlock *BasicBlock
	var elseWasTerminated bool
	reachesMerge := !thenWasTerminated

	if elseBB != nil {
		e.cur = elseBB
		switch {
		case n.ElseBlock != nil:
			elseVal, elseType = e.emitBlockBody(n.ElseBlock)
		case n.ElseIf != nil:
			elseVal, elseType = e.emitIf(n.ElseIf)
		}
		elseEndBlock = e.cur
		elseWasTerminated = elseEndBlock.terminated()
		if !elseWasTerminated {
			e.emit(Instruction{Op: opJmp, Targets: []string{mergeBB.Label}})
		}
		reachesMerge = reachesMerge || !elseWasTerminated
	} else {
		// No else arm: the condition's false edge targets merge directly,
		// so merge is always reachable regardless of the then-arm.
		reachesMerge = true
	}

	if !reachesMerge {
		// Neither arm falls into merge (both returned, or jumped out via
		// break/continue): merge is dead code. Give it a terminator anyway
		// so every block still ends in exactly one, using a placeholder
		// value of the enclosing function's return type since nothing
		// meaningful can reach this point.
		e.cur = mergeBB
		if e.fn.ReturnType.Kind == ast.Unit {
			e.emit(Instruction{Op: opRet, Type: ast.Type{Kind: ast.Unit}})
		} else {
			e.emit(Instruction{Op: opRet, Type: e.fn.ReturnType, Args: []Operand{zeroOperandFor(e.fn.ReturnType)}})
		}
		return Operand{}, resultType
	}

	e.cur = mergeBB
	if resultType.Kind == ast.Unit || resultType.Kind == ast.Unknown {
		return Operand{}, resultType
	}

	var incoming []PhiEdge
	if !thenWasTerminated {
		incoming = append(incoming, PhiEdge{Block: thenEndBlock.Label, Value: thenVal})
	}
	if elseBB != nil && !elseWasTerminated {
		incoming = append(incoming, PhiEdge{Block: elseEndBlock.Label, Value: elseVal})
	}
	if len(incoming) == 1 {
		return incoming[0].Value, resultType
	}

	name := e.newValue()
	e.emit(Instruction{Op: opPhi, Result: name, Type: resultType, Incoming: incoming})
	return Operand{Kind: ValueOperand, Value: name, Type: resultType}, resultType
}

// emitWhile lowers a while loop into header/body/exit blocks. break and
// continue inside the body resolve against s.LoopID, set by sema, via
// e.loops.
func (e *emitter) emitWhile(s *ast.WhileStmt) {
	headerBB := e.newBlock("while.header")
	bodyBB := e.newBlock("while.body")
	exitBB := e.newBlock("while.exit")

	e.emit(Instruction{Op: opJmp, Targets: []string{headerBB.Label}})

	e.cur = headerBB
	var condVal Operand
	if s.Cond != nil {
		condVal, _ = e.emitExpr(s.Cond)
	} else {
		condVal = Operand{Kind: BoolConstOperand, Bool: true, Type: ast.Type{Kind: ast.Bool}}
	}
	e.emit(Instruction{Op: opBr, Args: []Operand{condVal}, Targets: []string{bodyBB.Label, exitBB.Label}})

	if s.LoopID != "" {
		e.loops[s.LoopID] = loopLabels{header: headerBB.Label, exit: exitBB.Label}
	}

	e.cur = bodyBB
	if s.Body != nil {
		e.emitBlockBody(s.Body)
	}
	if !e.cur.terminated() {
		e.emit(Instruction{Op: opJmp, Targets: []string{headerBB.Label}})
	}

	e.cur = exitBB
}

// hoistedLocals collects every LetStmt declared anywhere in fn's body, in
// declaration order, so their stack slots can be allocated at function
// entry (spec.md §4.5.2: "allocate a typed stack slot at function entry
// (hoisted)").
func hoistedLocals(b *ast.Block) []*ast.LetStmt {
	var out []*ast.LetStmt
	var walkBlock func(b *ast.Block)
	var walkStmt func(s ast.Statement)
	var walkExpr func(e ast.Expression)

	walkStmt = func(s ast.Statement) {
		switch st := s.(type) {
		case *ast.LetStmt:
			out = append(out, st)
			walkExpr(st.Value)
		case *ast.AssignStmt:
			walkExpr(st.Value)
		case *ast.IfStmt:
			walkExpr(st.IfExpr)
		case *ast.WhileStmt:
			if st.Cond != nil {
				walkExpr(st.Cond)
			}
			if st.Body != nil {
				walkBlock(st.Body)
			}
		case *ast.ReturnStmt:
			if st.Value != nil {
				walkExpr(st.Value)
			}
		case *ast.ExprStmt:
			walkExpr(st.Expr)
		}
	}

	walkExpr = func(e ast.Expression) {
		switch n := e.(type) {
		case *ast.Block:
			walkBlock(n)
		case *ast.IfExpr:
			if n.Then != nil {
				walkBlock(n.Then)
			}
			if n.ElseBlock != nil {
				walkBlock(n.ElseBlock)
			}
			if n.ElseIf != nil {
				walkExpr(n.ElseIf)
			}
		case *ast.Unary:
			walkExpr(n.Operand)
		case *ast.Binary:
			walkExpr(n.Left)
			walkExpr(n.Right)
		case *ast.Paren:
			walkExpr(n.Inner)
		case *ast.Call:
			for _, a := range n.Args {
				walkExpr(a)
			}
		}
	}

	walkBlock = func(b *ast.Block) {
		if b == nil {
			return
		}
		for _, s := range b.Stmts {
			walkStmt(s)
		}
		if b.Tail != nil {
			walkExpr(b.Tail)
		}
	}

	walkBlock(b)
	return out
}
