// Package ir defines the textual SSA intermediate representation spec.md
// §4.5/§6.3 describes and the emitter that lowers an elaborated AST into
// it. There is no teacher precedent for IR emission in the corpus (the
// teacher is an interpreter, not a compiler); the data model below follows
// spec.md §4.5's invariants directly: one terminator per block, one
// defining instruction per SSA value, and phi nodes at expression-position
// `if` merges.
package ir

import "github.com/dekarrin/embrc/internal/ast"

// OperandKind distinguishes a reference to a previously defined SSA value
// from a literal constant embedded directly in an instruction.
type OperandKind int

const (
	ValueOperand OperandKind = iota
	IntConstOperand
	FloatConstOperand
	BoolConstOperand
	StringConstOperand
)

// Operand is one typed input to an Instruction.
type Operand struct {
	Kind  OperandKind
	Value string // SSA value name, set only when Kind == ValueOperand
	Int   int64
	Float float64
	Bool  bool
	Str   string
	Type  ast.Type
}

// PhiEdge is one (predecessor block, incoming value) pair of a Phi
// instruction.
type PhiEdge struct {
	Block string
	Value Operand
}

// Instruction is one SSA instruction. Not every field is meaningful for
// every Op; see the opcode constants in emit.go for which fields each uses.
type Instruction struct {
	Op     string
	Result string // SSA name of the defined value, empty if the op defines none
	Type   ast.Type
	Args   []Operand

	// Slot addresses a stack slot, used by alloca/store/load.
	Slot string

	// Callee names the target function, used by call.
	Callee string

	// Targets holds jump/branch destinations: one label for jmp, two
	// (true, false) for br.
	Targets []string

	// Incoming holds a phi's predecessor/value pairs.
	Incoming []PhiEdge
}

// BasicBlock is a straight-line instruction sequence ending in exactly one
// terminator (br, jmp, or ret) once emission of a function completes.
type BasicBlock struct {
	Label  string
	Instrs []Instruction
}

// Param is one function parameter as lowered into IR: its stack slot and
// declared type.
type Param struct {
	Name string
	Slot string
	Type ast.Type
}

// Function is one compiled function signature plus its body's basic
// blocks, the first of which is always "entry".
type Function struct {
	Name       string
	Params     []Param
	ReturnType ast.Type
	Blocks     []*BasicBlock
}

// Module is the full compiled output of one source unit (spec.md §4.5,
// §6.1's compile() result).
type Module struct {
	Functions []*Function
}

func (b *BasicBlock) terminated() bool {
	if len(b.Instrs) == 0 {
		return false
	}
	switch b.Instrs[len(b.Instrs)-1].Op {
	case opRet, opJmp, opBr:
		return true
	}
	return false
}

// lastIsRet reports whether b ends with a function return specifically, as
// opposed to a jump to another block within the same function. The emitter
// does not call it; emitIf and emitWhile use terminated().
func (b *BasicBlock) lastIsRet() bool {
	if len(b.Instrs) == 0 {
		return false
	}
	return b.Instrs[len(b.Instrs)-1].Op == opRet
}
