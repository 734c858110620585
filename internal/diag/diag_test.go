package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/embrc/internal/source"
)

func Test_Bag_EmitAndHasErrors(t *testing.T) {
	assert := assert.New(t)

	var b Bag
	assert.False(b.HasErrors())
	assert.Equal(0, b.Len())

	b.Emit(Warnf(KindUnreachableCode, source.Span{ID: "f", Start: 0, End: 1}, "unreachable"))
	assert.False(b.HasErrors())
	assert.Equal(1, b.Len())

	b.Emit(Errorf(KindMismatch, source.Span{ID: "f", Start: 2, End: 3}, "type mismatch"))
	assert.True(b.HasErrors())
	assert.Equal(2, b.Len())
}

func Test_Bag_Extend(t *testing.T) {
	assert := assert.New(t)

	var a, b Bag
	a.Emit(Errorf(KindMismatch, source.Span{ID: "f"}, "a"))
	b.Emit(Errorf(KindMismatch, source.Span{ID: "f"}, "b"))

	a.Extend(&b)
	assert.Equal(2, a.Len())

	a.Extend(nil)
	assert.Equal(2, a.Len())
}

func Test_Bag_All_sortsBySpan(t *testing.T) {
	assert := assert.New(t)

	var b Bag
	b.Emit(Errorf(KindMismatch, source.Span{ID: "f", Start: 10, End: 11}, "later"))
	b.Emit(Errorf(KindMismatch, source.Span{ID: "f", Start: 1, End: 2}, "earlier"))

	all := b.All()
	assert.Len(all, 2)
	assert.Equal("earlier", all[0].Message)
	assert.Equal("later", all[1].Message)
}

func Test_Diagnostic_WithNote(t *testing.T) {
	assert := assert.New(t)

	d := Errorf(KindDuplicate, source.Span{ID: "f"}, "duplicate name %q", "x")
	d = d.WithNote(source.Span{ID: "f", Start: 5, End: 6}, "first declared here")

	assert.Len(d.Notes, 1)
	assert.Equal("first declared here", d.Notes[0].Message)
}

func Test_Bag_Summary(t *testing.T) {
	testCases := []struct {
		name string
		fill func(b *Bag)
		want string
	}{
		{
			name: "empty",
			fill: func(b *Bag) {},
			want: "no diagnostics",
		},
		{
			name: "one error",
			fill: func(b *Bag) {
				b.Emit(Errorf(KindMismatch, source.Span{}, "x"))
			},
			want: "1 error",
		},
		{
			name: "errors and warnings",
			fill: func(b *Bag) {
				b.Emit(Errorf(KindMismatch, source.Span{}, "x"))
				b.Emit(Errorf(KindMismatch, source.Span{}, "y"))
				b.Emit(Warnf(KindUnreachableCode, source.Span{}, "z"))
			},
			want: "2 errors and 1 warning",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			var b Bag
			tc.fill(&b)
			assert.Equal(tc.want, b.Summary())
		})
	}
}

func Test_Bag_Render_groupsBySourceAndDrawsCaret(t *testing.T) {
	assert := assert.New(t)

	src := []byte("val x: i32 = true;\n")
	set := source.NewSet()
	set.Add(source.Buffer{ID: "main", Text: src})

	var b Bag
	b.Emit(Errorf(KindMismatch, source.Span{ID: "main", Start: 13, End: 17}, "expected i32, found bool"))

	out := b.Render(set)
	assert.Contains(out, "main")
	assert.Contains(out, "expected i32, found bool")
	assert.Contains(out, "^")
}
