package ir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/embrc/internal/lexer"
	"github.com/dekarrin/embrc/internal/parser"
	"github.com/dekarrin/embrc/internal/sema"
)

func buildModule(t *testing.T, src string) (*Module, bool) {
	t.Helper()
	toks, lexBag := lexer.Tokenize([]byte(src), "test")
	assert.False(t, lexBag.HasErrors(), "unexpected lex errors for %q", src)

	prog, parseBag := parser.ParseProgram(toks, "test")
	assert.False(t, parseBag.HasErrors(), "unexpected parse errors for %q", src)

	semaBag := sema.Analyze(prog, "test")
	assert.False(t, semaBag.HasErrors(), "unexpected sema errors for %q: %v", src, semaBag.All())

	mod, irBag := Emit(prog)
	return mod, irBag.HasErrors()
}

func Test_Emit_arithmeticFunctionHasSingleTerminatedBlock(t *testing.T) {
	assert := assert.New(t)
	mod, hadErrors := buildModule(t, `func add(a: i32, b: i32) -> i32 { return a + b; }`)
	assert.False(hadErrors)
	assert.Len(mod.Functions, 1)

	fn := mod.Functions[0]
	assert.Equal("add", fn.Name)
	assert.Len(fn.Blocks, 1)
	assert.True(fn.Blocks[0].terminated())
	assert.Equal(opRet, fn.Blocks[0].Instrs[len(fn.Blocks[0].Instrs)-1].Op)
}

func Test_Emit_everyBlockHasExactlyOneTerminator(t *testing.T) {
	assert := assert.New(t)
	mod, hadErrors := buildModule(t, `
		func classify(x: i32) -> i32 {
			if x > 0 {
				return 1;
			} else {
				return 0;
			}
		}
	`)
	assert.False(hadErrors)

	for _, fn := range mod.Functions {
		for _, b := range fn.Blocks {
			assert.True(b.terminated(), "block %s/%s has no terminator", fn.Name, b.Label)
			for i, in := range b.Instrs {
				isTerm := in.Op == opRet || in.Op == opJmp || in.Op == opBr
				if i < len(b.Instrs)-1 {
					assert.False(isTerm, "block %s/%s has a mid-block terminator at %d", fn.Name, b.Label, i)
				}
			}
		}
	}
}

func Test_Emit_ifExpressionMergeUsesPhi(t *testing.T) {
	assert := assert.New(t)
	mod, hadErrors := buildModule(t, `
		func pick(cond: bool) -> i32 {
			val r: i32 = if cond { 1 } else { 2 };
			return r;
		}
	`)
	assert.False(hadErrors)

	var sawPhi bool
	for _, fn := range mod.Functions {
		for _, b := range fn.Blocks {
			for _, in := range b.Instrs {
				if in.Op == opPhi {
					sawPhi = true
					assert.Len(in.Incoming, 2)
				}
			}
		}
	}
	assert.True(sawPhi, "expected a phi at the if-expression's merge block")
}

func Test_Emit_whileLoopBreakAndContinueTargetHeaderAndExit(t *testing.T) {
	assert := assert.New(t)
	mod, hadErrors := buildModule(t, `
		func f() -> i32 {
			mut c: i32 = 0;
			while c < 10 {
				c = c + 1;
				if c == 5 {
					continue;
				}
				if c == 9 {
					break;
				}
			}
			return c;
		}
	`)
	assert.False(hadErrors)

	var headerLabel, exitLabel string
	fn := mod.Functions[0]
	for _, b := range fn.Blocks {
		if strings.HasPrefix(b.Label, "while.header") {
			headerLabel = b.Label
		}
		if strings.HasPrefix(b.Label, "while.exit") {
			exitLabel = b.Label
		}
	}
	assert.NotEmpty(headerLabel)
	assert.NotEmpty(exitLabel)

	var sawContinueJmp, sawBreakJmp bool
	for _, b := range fn.Blocks {
		for _, in := range b.Instrs {
			if in.Op == opJmp && len(in.Targets) == 1 {
				if in.Targets[0] == headerLabel && b.Label != headerLabel {
					sawContinueJmp = true
				}
				if in.Targets[0] == exitLabel {
					sawBreakJmp = true
				}
			}
		}
	}
	assert.True(sawContinueJmp, "expected a continue to jump to the loop header")
	assert.True(sawBreakJmp, "expected a break to jump to the loop exit")
}

func Test_Emit_callLowersArgsAndResult(t *testing.T) {
	assert := assert.New(t)
	mod, hadErrors := buildModule(t, `
		func add(a: i32, b: i32) -> i32 { return a + b; }
		func main() -> i32 { return add(1, 2); }
	`)
	assert.False(hadErrors)

	var main *Function
	for _, fn := range mod.Functions {
		if fn.Name == "main" {
			main = fn
		}
	}
	assert.NotNil(main)

	var sawCall bool
	for _, b := range main.Blocks {
		for _, in := range b.Instrs {
			if in.Op == opCall {
				sawCall = true
				assert.Equal("add", in.Callee)
				assert.Len(in.Args, 2)
			}
		}
	}
	assert.True(sawCall)
}

func Test_ModuleString_rendersWithoutPanicking(t *testing.T) {
	assert := assert.New(t)
	mod, hadErrors := buildModule(t, `
		func f(a: i32) -> i32 {
			mut total: i32 = 0;
			mut i: i32 = 0;
			while i < a {
				total = total + i;
				i = i + 1;
			}
			return total;
		}
	`)
	assert.False(hadErrors)

	out := mod.String()
	assert.Contains(out, "func @f(%")
	assert.Contains(out, "ret")
}

func Test_Emit_unaryNegationAndNot(t *testing.T) {
	assert := assert.New(t)
	mod, hadErrors := buildModule(t, `
		func f(x: i32, b: bool) -> i32 {
			val neg: i32 = -x;
			val notB: bool = !b;
			if notB { return neg; }
			return x;
		}
	`)
	assert.False(hadErrors)

	var sawSub, sawXor bool
	for _, fn := range mod.Functions {
		for _, b := range fn.Blocks {
			for _, in := range b.Instrs {
				if in.Op == opSub {
					sawSub = true
				}
				if in.Op == opXor {
					sawXor = true
				}
			}
		}
	}
	assert.True(sawSub, "expected unary negation lowered as subtraction from zero")
	assert.True(sawXor, "expected unary not lowered as xor with true")
}

func Test_Module_binaryRoundTrip(t *testing.T) {
	assert := assert.New(t)
	mod, hadErrors := buildModule(t, `
		func add(a: i32, b: i32) -> i32 { return a + b; }
		func main() -> i32 { return add(1, 2); }
	`)
	assert.False(hadErrors)

	data := mod.EncodeBinary()
	assert.NotEmpty(data)

	decoded, err := DecodeModuleBinary(data)
	assert.NoError(err)
	assert.Equal(mod.String(), decoded.String())
}

func Test_Module_binaryEncodingIsDeterministic(t *testing.T) {
	assert := assert.New(t)
	mod1, hadErrors1 := buildModule(t, `func f(x: i32) -> i32 { return x + 1; }`)
	mod2, hadErrors2 := buildModule(t, `func f(x: i32) -> i32 { return x + 1; }`)
	assert.False(hadErrors1)
	assert.False(hadErrors2)
	assert.Equal(mod1.EncodeBinary(), mod2.EncodeBinary())
}

func Test_Emit_unitFunctionFallsThroughToBareRet(t *testing.T) {
	assert := assert.New(t)
	mod, hadErrors := buildModule(t, `func f() { val x: i32 = 1; }`)
	assert.False(hadErrors)

	fn := mod.Functions[0]
	last := fn.Blocks[len(fn.Blocks)-1]
	lastInstr := last.Instrs[len(last.Instrs)-1]
	assert.Equal(opRet, lastInstr.Op)
	assert.Empty(lastInstr.Args)
}
