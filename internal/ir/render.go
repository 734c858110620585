package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// quoteString renders a string constant double-quoted with Go escaping, for
// a readable disassembly listing. Common escapes (\n, \t, \", \\, \xNN)
// match the lexer's. The lexer rejects others that Go can emit for a
// non-printable rune, such as \a or a \u escape.  
func quoteString(s string) string {
	return strconv.Quote(s)
}

// Opcode mnemonics. Arithmetic and comparison mnemonics are split by
// operand category (integer vs. float, signed vs. unsigned) per spec.md
// §4.5.2's "binary operation: ... integer vs. float arithmetic
// distinguished; signed vs. unsigned comparison distinguished".
const (
	opAlloca = "alloca"
	opStore  = "store"
	opLoad   = "load"
	opCall   = "call"
	opBr     = "br"
	opJmp    = "jmp"
	opRet    = "ret"
	opPhi    = "phi"

	opAdd  = "add"
	opSub  = "sub"
	opMul  = "mul"
	opUDiv = "udiv"
	opSDiv = "sdiv"
	opURem = "urem"
	opSRem = "srem"
	opFAdd = "fadd"
	opFSub = "fsub"
	opFMul = "fmul"
	opFDiv = "fdiv"
	opFRem = "frem"

	opAnd = "and"
	opOr  = "or"
	opXor = "xor"

	opICmpEq  = "icmp.eq"
	opICmpNe  = "icmp.ne"
	opICmpSlt = "icmp.slt"
	opICmpSle = "icmp.sle"
	opICmpSgt = "icmp.sgt"
	opICmpSge = "icmp.sge"
	opICmpUlt = "icmp.ult"
	opICmpUle = "icmp.ule"
	opICmpUgt = "icmp.ugt"
	opICmpUge = "icmp.uge"
	opFCmpEq  = "fcmp.eq"
	opFCmpNe  = "fcmp.ne"
	opFCmpLt  = "fcmp.lt"
	opFCmpLe  = "fcmp.le"
	opFCmpGt  = "fcmp.gt"
	opFCmpGe  = "fcmp.ge"
)

// String renders the module as line-oriented textual SSA IR (spec.md
// §6.3). The exact lexical form is this emitter's own choice, consistent
// across the module, in the style of a standard low-level backend's
// disassembly listing.
func (m *Module) String() string {
	var sb strings.Builder
	for i, fn := range m.Functions {
		if i > 0 {
			sb.WriteString("\n")
		}
		fn.render(&sb)
	}
	return sb.String()
}

func (fn *Function) render(sb *strings.Builder) {
	sb.WriteString("func @")
	sb.WriteString(fn.Name)
	sb.WriteString("(")
	for i, p := range fn.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(sb, "%%%s: %s", p.Slot, p.Type.String())
	}
	sb.WriteString(")")
	if fn.ReturnType.String() != "unit" {
		fmt.Fprintf(sb, " -> %s", fn.ReturnType.String())
	}
	sb.WriteString(" {\n")
	for _, b := range fn.Blocks {
		b.render(sb)
	}
	sb.WriteString("}\n")
}

func (b *BasicBlock) render(sb *strings.Builder) {
	fmt.Fprintf(sb, "%s:\n", b.Label)
	for _, in := range b.Instrs {
		sb.WriteString("  ")
		in.render(sb)
		sb.WriteString("\n")
	}
}

func (in *Instruction) render(sb *strings.Builder) {
	if in.Result != "" {
		fmt.Fprintf(sb, "%%%s = ", in.Result)
	}
	switch in.Op {
	case opAlloca:
		fmt.Fprintf(sb, "alloca %s, %%%s", in.Type.String(), in.Slot)
	case opStore:
		fmt.Fprintf(sb, "store %s, %%%s", in.Args[0].render(), in.Slot)
	case opLoad:
		fmt.Fprintf(sb, "load %s, %%%s", in.Type.String(), in.Slot)
	case opCall:
		args := make([]string, len(in.Args))
		for i, a := range in.Args {
			args[i] = a.render()
		}
		fmt.Fprintf(sb, "call @%s(%s)", in.Callee, strings.Join(args, ", "))
	case opBr:
		fmt.Fprintf(sb, "br %s, %s, %s", in.Args[0].render(), in.Targets[0], in.Targets[1])
	case opJmp:
		fmt.Fprintf(sb, "jmp %s", in.Targets[0])
	case opRet:
		if len(in.Args) == 0 {
			sb.WriteString("ret")
		} else {
			fmt.Fprintf(sb, "ret %s", in.Args[0].render())
		}
	case opPhi:
		parts := make([]string, len(in.Incoming))
		for i, e := range in.Incoming {
			parts[i] = fmt.Sprintf("[%s: %s]", e.Block, e.Value.render())
		}
		fmt.Fprintf(sb, "phi %s %s", in.Type.String(), strings.Join(parts, ", "))
	default:
		// Binary/unary arithmetic, comparison, and logical ops all share
		// the "<op> <type> <args...>" shape.
		args := make([]string, len(in.Args))
		for i, a := range in.Args {
			args[i] = a.render()
		}
		fmt.Fprintf(sb, "%s %s %s", in.Op, in.Type.String(), strings.Join(args, ", "))
	}
}

func (o Operand) render() string {
	switch o.Kind {
	case ValueOperand:
		return "%" + o.Value
	case IntConstOperand:
		return strconv.FormatInt(o.Int, 10)
	case FloatConstOperand:
		return strconv.FormatFloat(o.Float, 'g', -1, 64)
	case BoolConstOperand:
		return strconv.FormatBool(o.Bool)
	case StringConstOperand:
		return quoteString(o.Str)
	default:
		return "<invalid operand>"
	}
}
