package ir

import (
	"fmt"

	"github.com/dekarrin/rezi"
)

// EncodeBinary serializes m with REZI's reflective binary encoding (spec.md
// P9: a fixed program must always produce byte-identical compile() output).
// Every exported field on Module, Function, BasicBlock, Instruction, and
// Operand is encoded by reflection, the same way the teacher's
// server/dao/sqlite package encodes *game.State with no bespoke
// MarshalBinary method of its own.
func (m *Module) EncodeBinary() []byte {
	return rezi.EncBinary(m)
}

// DecodeModuleBinary decodes a Module previously produced by EncodeBinary.
func DecodeModuleBinary(data []byte) (*Module, error) {
	m := &Module{}
	n, err := rezi.DecBinary(data, m)
	if err != nil {
		return nil, fmt.Errorf("rezi decode: %w", err)
	}
	if n != len(data) {
		return nil, fmt.Errorf("rezi decode: consumed %d/%d bytes", n, len(data))
	}
	return m, nil
}
