package ast

// TypeKind enumerates the primitive type kinds plus the internal marker
// Unknown (used during inference, spec.md §3, and on a node whose type
// error was already reported, to suppress cascades in sema).
type TypeKind int

const (
	Unknown TypeKind = iota
	Unit
	Bool
	I8
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	F32
	F64
	// Str is the type of string literals. The core type system (spec.md
	// §4.4.2) enumerates no string primitive, but string literals are a
	// token kind (spec.md §4.2/§6.2) and therefore a primary expression
	// (spec.md §4.3); Str gives them a type to carry so they remain
	// well-typed values usable anywhere a matching annotation requires
	// one. The only operators defined over it are assignment and the
	// ==/!= comparisons between two Str operands.
	Str
	// Named is a user-defined type reference. Named types are parsed but
	// the core type-checker only ever resolves the primitives above; a
	// reference to an unresolved Named type is a NameError, not a
	// TypeError, so Named still carries a Name for diagnostics.
	Named
)

var typeNames = map[TypeKind]string{
	Unknown: "<unknown>",
	Unit:    "unit",
	Bool:    "bool",
	I8:      "i8",
	I16:     "i16",
	I32:     "i32",
	I64:     "i64",
	U8:      "u8",
	U16:     "u16",
	U32:     "u32",
	U64:     "u64",
	F32:     "f32",
	F64:     "f64",
	Str:     "str",
}

var namesToKind = func() map[string]TypeKind {
	m := make(map[string]TypeKind, len(typeNames))
	for k, v := range typeNames {
		m[v] = k
	}
	return m
}()

// Type is the semantic representation of a value's type (spec.md §3).
// Equality is structural: two Types are equal iff their Kind (and, for
// Named, their Name) match — integer widths are always distinct types.
type Type struct {
	Kind TypeKind
	Name string // set only when Kind == Named
}

// TypeOf looks up a primitive Type by its source spelling ("i32", "bool",
// "unit", ...). Unrecognized names produce a Named type carrying the
// spelling verbatim, which sema then reports as NameError::Unresolved.
func TypeOf(name string) Type {
	if k, ok := namesToKind[name]; ok {
		return Type{Kind: k}
	}
	return Type{Kind: Named, Name: name}
}

func (t Type) String() string {
	if t.Kind == Named {
		return t.Name
	}
	if n, ok := typeNames[t.Kind]; ok {
		return n
	}
	return "<unknown>"
}

// Equal reports structural equality, per spec.md §3.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	if t.Kind == Named {
		return t.Name == o.Name
	}
	return true
}

// IsInteger reports whether t is one of the signed or unsigned integer
// widths.
func (t Type) IsInteger() bool {
	switch t.Kind {
	case I8, I16, I32, I64, U8, U16, U32, U64:
		return true
	}
	return false
}

// IsSignedInteger reports whether t is a signed integer width.
func (t Type) IsSignedInteger() bool {
	switch t.Kind {
	case I8, I16, I32, I64:
		return true
	}
	return false
}

// IsUnsignedInteger reports whether t is an unsigned integer width.
func (t Type) IsUnsignedInteger() bool {
	switch t.Kind {
	case U8, U16, U32, U64:
		return true
	}
	return false
}

// IsFloat reports whether t is f32 or f64.
func (t Type) IsFloat() bool {
	return t.Kind == F32 || t.Kind == F64
}

// IsNumeric reports whether t is an integer or float type.
func (t Type) IsNumeric() bool {
	return t.IsInteger() || t.IsFloat()
}
