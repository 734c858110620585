package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/embrc/internal/ast"
	"github.com/dekarrin/embrc/internal/lexer"
)

func mustTokenize(t *testing.T, src string) []lexer.Token {
	t.Helper()
	toks, bag := lexer.Tokenize([]byte(src), "test")
	assert.False(t, bag.HasErrors(), "lexing %q should not produce errors", src)
	return toks
}

func Test_ParseProgram_printRoundTrip(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "empty function",
			input:  "func main() {}",
			expect: "func main() { }\n",
		},
		{
			name:   "params and return type",
			input:  "func add(a: i32, b: i32) -> i32 { a + b }",
			expect: "func add(a: i32, b: i32) -> i32 { (a + b) }\n",
		},
		{
			name:   "trailing comma in params",
			input:  "func add(a: i32, b: i32,) -> i32 { a + b }",
			expect: "func add(a: i32, b: i32) -> i32 { (a + b) }\n",
		},
		{
			name:   "fn keyword accepted as synonym",
			input:  "fn main() {}",
			expect: "func main() { }\n",
		},
		{
			name:   "let and mut bindings",
			input:  "func f() { val x = 1; mut y: i32 = 2; y = x; }",
			expect: "func f() { val x = 1; mut y: i32 = 2; y = x; }\n",
		},
		{
			name:   "while with break and continue",
			input:  "func f() { while true { break; continue; } }",
			expect: "func f() { while true { break; continue; } }\n",
		},
		{
			name:   "if as statement then another statement, no semicolons",
			input:  "func f() { if true { return; } if false { return; } }",
			expect: "func f() { if true { return; } if false { return; } }\n",
		},
		{
			name:   "if as tail expression of block",
			input:  "func f() -> i32 { if true { 1 } else { 2 } }",
			expect: "func f() -> i32 { if true { 1 } else { 2 } }\n",
		},
		{
			name:   "if-else-if chain",
			input:  "func f() { if a { return; } else if b { return; } else { return; } }",
			expect: "func f() { if a { return; } else if b { return; } else { return; } }\n",
		},
		{
			name:   "call with trailing comma args",
			input:  "func f() { g(1, 2,); }",
			expect: "func f() { g(1, 2); }\n",
		},
		{
			name:   "unary binds tighter than binary, looser than call",
			input:  "func f() { -g(1) + !x }",
			expect: "func f() { (-g(1) + !x) }\n",
		},
		{
			name:   "precedence: * before +",
			input:  "func f() { 1 + 2 * 3 }",
			expect: "func f() { (1 + (2 * 3)) }\n",
		},
		{
			name:   "left associativity of subtraction",
			input:  "func f() { 1 - 2 - 3 }",
			expect: "func f() { ((1 - 2) - 3) }\n",
		},
		{
			name:   "comparison and logical operators",
			input:  "func f() { a < b && b <= c || c == d }",
			expect: "func f() { (((a < b) && (b <= c)) || (c == d)) }\n",
		},
		{
			name:   "explicit parens preserved",
			input:  "func f() { (1 + 2) * 3 }",
			expect: "func f() { ((1 + 2) * 3) }\n",
		},
		{
			name:   "nested block as tail expression",
			input:  "func f() -> i32 { { 5 } }",
			expect: "func f() -> i32 { { 5 } }\n",
		},
		{
			name:   "string and bool literals",
			input:  `func f() { val s = "hi"; val b = true; }`,
			expect: "func f() { val s = \"hi\"; val b = true; }\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			toks := mustTokenize(t, tc.input)
			prog, bag := ParseProgram(toks, "test")
			assert.False(bag.HasErrors(), "unexpected parse errors: %v", bag.All())
			assert.Equal(tc.expect, ast.Print(prog))
		})
	}
}

func Test_ParseProgram_errorRecovery(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{name: "garbage at top level is skipped to next item", input: "123 func f() {}"},
		{name: "missing semicolon recovers at next statement", input: "func f() { val x = 1 val y = 2; }"},
		{name: "unterminated call recovers at item boundary", input: "func f() { g(1, 2 } func h() {}"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			toks := mustTokenize(t, tc.input)
			_, bag := ParseProgram(toks, "test")
			assert.True(bag.HasErrors())
			assert.NotPanics(func() {
				ParseProgram(toks, "test")
			})
		})
	}
}

func Test_ParseProgram_deeplyNestedParensDoesNotPanic(t *testing.T) {
	assert := assert.New(t)

	src := "func f() { "
	for i := 0; i < 2000; i++ {
		src += "("
	}
	src += "1"
	for i := 0; i < 2000; i++ {
		src += ")"
	}
	src += " }"

	toks := mustTokenize(t, src)
	assert.NotPanics(func() {
		ParseProgram(toks, "test")
	})
}

func Test_ParseExpression_standalone(t *testing.T) {
	assert := assert.New(t)

	toks := mustTokenize(t, "1 + 2 * 3")
	expr, bag := ParseExpression(toks, "test")
	assert.False(bag.HasErrors())
	bin, ok := expr.(*ast.Binary)
	assert.True(ok)
	assert.Equal(ast.OpAdd, bin.Op)
}
