package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	ictiobustypes "github.com/dekarrin/ictiobus/types"
)

func Test_ConcreteTree_shapeForSimpleFunction(t *testing.T) {
	assert := assert.New(t)
	toks := mustTokenize(t, `func add(a: i32, b: i32) -> i32 { return a + b; }`)
	prog, bag := ParseProgram(toks, "test")
	assert.False(bag.HasErrors())

	tree := ConcreteTree(prog)
	assert.False(tree.Terminal)
	assert.Equal("Program", tree.Value)
	assert.Len(tree.Children, 1)

	fn := tree.Children[0]
	assert.Equal("Function(add)", fn.Value)
	assert.Contains(fn.String(), "Param(a)")
	assert.Contains(fn.String(), "Param(b)")
	assert.Contains(fn.String(), "Block")
	assert.Contains(fn.String(), `(TERM "a")`)
}

func Test_ConcreteTree_equalForStructurallyIdenticalPrograms(t *testing.T) {
	assert := assert.New(t)
	src := `func f() -> i32 { val x: i32 = 1; return x; }`

	prog1, bag1 := ParseProgram(mustTokenize(t, src), "test")
	assert.False(bag1.HasErrors())
	prog2, bag2 := ParseProgram(mustTokenize(t, src), "test")
	assert.False(bag2.HasErrors())

	tree1 := ConcreteTree(prog1)
	tree2 := ConcreteTree(prog2)

	var asType ictiobustypes.ParseTree = *tree1
	assert.True(asType.Equal(*tree2))
}
