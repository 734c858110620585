package sema

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/embrc/internal/ast"
	"github.com/dekarrin/embrc/internal/diag"
	"github.com/dekarrin/embrc/internal/lexer"
	"github.com/dekarrin/embrc/internal/parser"
)

func analyzeSource(t *testing.T, src string) (*ast.Program, *diag.Bag) {
	t.Helper()
	toks, lexBag := lexer.Tokenize([]byte(src), "test")
	assert.False(t, lexBag.HasErrors(), "unexpected lex errors for %q", src)

	prog, parseBag := parser.ParseProgram(toks, "test")
	assert.False(t, parseBag.HasErrors(), "unexpected parse errors for %q", src)

	bag := Analyze(prog, "test")
	return prog, bag
}

func kinds(bag *diag.Bag) []diag.Kind {
	var ks []diag.Kind
	for _, d := range bag.All() {
		ks = append(ks, d.Kind)
	}
	return ks
}

func Test_Analyze_cleanPrograms(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{name: "arithmetic", input: `func main() -> i32 { val x: i32 = 10; val y: i32 = 16; return x + y; }`},
		{name: "call and comparison", input: `func add(a:i32,b:i32)->i32{ return a+b; } func main()->i32{ val r:i32=add(3,5); if r>5 { return r; } else { return 0; } }`},
		{name: "while and mutable counter", input: `func main()->i32{ mut c:i32=0; while c<5 { c = c+1; } return c; }`},
		{name: "literal takes the declared return type from context", input: `func f() -> u8 { return 5; }`},
		{name: "shadowing in nested block", input: `func f() -> i32 { val x: i32 = 1; { val x: i32 = 2; }; return x; }`},
		{name: "unit function may fall through", input: `func f() { val x: i32 = 1; }`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			_, bag := analyzeSource(t, tc.input)
			assert.False(bag.HasErrors(), "unexpected diagnostics: %v", bag.All())
		})
	}
}

func Test_Analyze_typeError(t *testing.T) {
	assert := assert.New(t)
	_, bag := analyzeSource(t, `func main() -> i32 { val x: i32 = true; return x; }`)
	assert.True(bag.HasErrors())
	assert.Contains(kinds(bag), diag.KindMismatch)
}

func Test_Analyze_missingReturn(t *testing.T) {
	assert := assert.New(t)
	_, bag := analyzeSource(t, `func f() -> i32 { val x: i32 = 1; } func main() -> i32 { return f(); }`)
	assert.True(bag.HasErrors())
	assert.Contains(kinds(bag), diag.KindMissingReturn)
}

func Test_Analyze_assignToImmutable(t *testing.T) {
	assert := assert.New(t)
	_, bag := analyzeSource(t, `func main() -> i32 { val x: i32 = 1; x = 2; return x; }`)
	assert.True(bag.HasErrors())
	assert.Contains(kinds(bag), diag.KindAssignToImmutable)
}

func Test_Analyze_assignToParameterIsImmutable(t *testing.T) {
	assert := assert.New(t)
	_, bag := analyzeSource(t, `func f(a: i32) -> i32 { a = 1; return a; }`)
	assert.True(bag.HasErrors())
	assert.Contains(kinds(bag), diag.KindAssignToImmutable)
}

func Test_Analyze_duplicateTopLevelFunction(t *testing.T) {
	assert := assert.New(t)
	_, bag := analyzeSource(t, `func f() {} func f() {}`)
	assert.True(bag.HasErrors())
	assert.Contains(kinds(bag), diag.KindDuplicate)
}

func Test_Analyze_duplicateInSameScope(t *testing.T) {
	assert := assert.New(t)
	_, bag := analyzeSource(t, `func f() { val x: i32 = 1; val x: i32 = 2; }`)
	assert.True(bag.HasErrors())
	assert.Contains(kinds(bag), diag.KindDuplicate)
}

func Test_Analyze_unresolvedName(t *testing.T) {
	assert := assert.New(t)
	_, bag := analyzeSource(t, `func main() -> i32 { return y; }`)
	assert.True(bag.HasErrors())
	assert.Contains(kinds(bag), diag.KindUnresolved)
}

func Test_Analyze_arityMismatch(t *testing.T) {
	assert := assert.New(t)
	_, bag := analyzeSource(t, `func add(a:i32,b:i32)->i32{ return a+b; } func main()->i32{ return add(1); }`)
	assert.True(bag.HasErrors())
	assert.Contains(kinds(bag), diag.KindArityMismatch)
}

func Test_Analyze_breakOutsideLoop(t *testing.T) {
	assert := assert.New(t)
	_, bag := analyzeSource(t, `func f() { break; }`)
	assert.True(bag.HasErrors())
}

func Test_Analyze_unreachableCodeWarning(t *testing.T) {
	assert := assert.New(t)
	_, bag := analyzeSource(t, `func f() -> i32 { return 1; val x: i32 = 2; }`)
	assert.Contains(kinds(bag), diag.KindUnreachableCode)
}

func Test_Analyze_ifElseBothReturnSatisfiesReturnCheck(t *testing.T) {
	assert := assert.New(t)
	_, bag := analyzeSource(t, `func f(cond: bool) -> i32 { if cond { return 1; } else { return 2; } }`)
	assert.False(bag.HasErrors(), "unexpected diagnostics: %v", bag.All())
}

func Test_Analyze_ifWithoutElseDoesNotSatisfyReturnCheck(t *testing.T) {
	assert := assert.New(t)
	_, bag := analyzeSource(t, `func f(cond: bool) -> i32 { if cond { return 1; } }`)
	assert.True(bag.HasErrors())
	assert.Contains(kinds(bag), diag.KindMissingReturn)
}

func Test_Analyze_whileNeverCountsAsReturning(t *testing.T) {
	assert := assert.New(t)
	_, bag := analyzeSource(t, `func f() -> i32 { while true { return 1; } }`)
	assert.True(bag.HasErrors())
	assert.Contains(kinds(bag), diag.KindMissingReturn)
}

func Test_Analyze_elaboratedASTAnnotatesSymbolsAndTypes(t *testing.T) {
	assert := assert.New(t)
	prog, bag := analyzeSource(t, `func main() -> i32 { val x: i32 = 10; return x; }`)
	assert.False(bag.HasErrors())

	fn := prog.Functions[0]
	assert.NotNil(fn.Symbol)

	letStmt, ok := fn.Body.Stmts[0].(*ast.LetStmt)
	assert.True(ok)
	assert.NotNil(letStmt.Symbol)
	assert.NotEmpty(letStmt.Symbol.SlotID)
	assert.Equal(ast.I32, letStmt.Value.Type().Kind)

	ret, ok := fn.Body.Stmts[1].(*ast.ReturnStmt)
	assert.True(ok)
	varRef, ok := ret.Value.(*ast.VarRef)
	assert.True(ok)
	assert.NotNil(varRef.Symbol)
	assert.Equal(letStmt.Symbol, varRef.Symbol)
}
