package embrc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/embrc/internal/diag"
	"github.com/dekarrin/embrc/internal/pipelineopts"
)

func Test_Compile_workedScenarios(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{
			name:  "arithmetic and return",
			input: `func main() -> i32 { val x: i32 = 10; val y: i32 = 16; return x + y; }`,
		},
		{
			name: "call, comparison, and if/else",
			input: `func add(a: i32, b: i32) -> i32 { return a + b; }
			         func main() -> i32 {
			             val r: i32 = add(3, 5);
			             if r > 5 { return r; } else { return 0; }
			         }`,
		},
		{
			name:  "while loop with mutable counter",
			input: `func main() -> i32 { mut c: i32 = 0; while c < 5 { c = c + 1; } return c; }`,
		},
		{
			name:  "contextual literal typing against an unsigned return type",
			input: `func f() -> u8 { return 5; }`,
		},
		{
			name:  "shadowing in a nested block",
			input: `func f() -> i32 { val x: i32 = 1; { val x: i32 = 2; }; return x; }`,
		},
		{
			name:  "unit function may fall through with no return",
			input: `func f() { val x: i32 = 1; }`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			res := Compile([]byte(tc.input), pipelineopts.Options{})
			assert.False(res.Diags.HasErrors(), "unexpected diagnostics: %v", res.Diags.All())
			assert.NotNil(res.Module)
			assert.NotEmpty(res.Module.Functions)
		})
	}
}

func Test_Compile_emptySourceProducesNoDiagnosticsAndEmptyModule(t *testing.T) {
	assert := assert.New(t)
	res := Compile([]byte(""), pipelineopts.Options{})
	assert.False(res.Diags.HasErrors())
	assert.NotNil(res.Module)
	assert.Empty(res.Module.Functions)
}

func Test_Compile_midTokenEOFReportsLexError(t *testing.T) {
	assert := assert.New(t)
	res := Compile([]byte(`func f() -> i32 { return "unterminated`), pipelineopts.Options{})
	assert.True(res.Diags.HasErrors())
	assert.Nil(res.Module)
}

func Test_Compile_haltsBeforeEmissionOnTypeError(t *testing.T) {
	assert := assert.New(t)
	res := Compile([]byte(`func main() -> i32 { val x: i32 = true; return x; }`), pipelineopts.Options{})
	assert.True(res.Diags.HasErrors())
	assert.Nil(res.Module)

	var kinds []diag.Kind
	for _, d := range res.Diags.All() {
		kinds = append(kinds, d.Kind)
	}
	assert.Contains(kinds, diag.KindMismatch)
}

func Test_Compile_unreachableCodeIsReportedAsAWarning(t *testing.T) {
	assert := assert.New(t)
	// The trailing val after the return is unreachable (a warning); the
	// function still lacks a tail return after it (an error), since the
	// reachability lattice only looks at the block's last statement.
	res := Compile([]byte(`func f() -> i32 { return 1; val x: i32 = 2; }`), pipelineopts.Options{})

	var sawWarning bool
	for _, d := range res.Diags.All() {
		if d.Kind == diag.KindUnreachableCode {
			sawWarning = true
			assert.Equal(diag.Warning, d.Severity)
		}
	}
	assert.True(sawWarning)
}

func Test_Compile_deeplyNestedParensDoesNotPanic(t *testing.T) {
	assert := assert.New(t)
	src := "func f() -> i32 { return "
	for i := 0; i < 5000; i++ {
		src += "("
	}
	src += "1"
	for i := 0; i < 5000; i++ {
		src += ")"
	}
	src += "; }"

	assert.NotPanics(func() {
		res := Compile([]byte(src), pipelineopts.Options{})
		assert.True(res.Diags.HasErrors())
	})
}

func Test_Compile_isDeterministicAcrossRuns(t *testing.T) {
	assert := assert.New(t)
	src := []byte(`func add(a: i32, b: i32) -> i32 { return a + b; } func main() -> i32 { return add(2, 3); }`)

	r1 := Compile(src, pipelineopts.Options{})
	r2 := Compile(src, pipelineopts.Options{})

	assert.Equal(r1.SourceID, r2.SourceID)
	assert.Equal(r1.Module.String(), r2.Module.String())
	assert.Equal(r1.Module.EncodeBinary(), r2.Module.EncodeBinary())
}

func Test_SourceID_isStableForIdenticalContent(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(SourceID([]byte("func f() {}")), SourceID([]byte("func f() {}")))
	assert.NotEqual(SourceID([]byte("func f() {}")), SourceID([]byte("func g() {}")))
}

func Test_Check_reportsDiagnosticsWithoutRequiringModule(t *testing.T) {
	assert := assert.New(t)
	bag := Check([]byte(`func main() -> i32 { return y; }`))
	assert.True(bag.HasErrors())
}
