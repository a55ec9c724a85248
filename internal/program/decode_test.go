package program

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyInstr(t *testing.T) {
	tests := []struct {
		name     string
		code     []byte
		expected InstrKind
		length   int
	}{
		{"call rel32", []byte{0xe8, 0x00, 0x00, 0x00, 0x00}, InstrCall, 5},
		{"call rax", []byte{0xff, 0xd0}, InstrIndirectCall, 2},
		{"call [rax]", []byte{0xff, 0x10}, InstrIndirectCall, 2},
		{"jmp rax", []byte{0xff, 0xe0}, InstrIndirectBranch, 2},
		{"jmp [rax]", []byte{0xff, 0x20}, InstrIndirectBranch, 2},
		{"jmp rel8", []byte{0xeb, 0x02}, InstrOther, 2},
		{"ret", []byte{0xc3}, InstrOther, 1},
		{"nop", []byte{0x90}, InstrOther, 1},
	}
	for _, test := range tests {
		kind, length := ClassifyInstr(test.code)
		assert.Equal(t, test.expected, kind, test.name)
		assert.Equal(t, test.length, length, test.name)
	}
}

func TestClassifyInstrUndecodable(t *testing.T) {
	kind, length := ClassifyInstr([]byte{0x06})
	assert.Equal(t, InstrOther, kind)
	assert.Equal(t, 1, length, "undecodable bytes advance one byte")
}

func TestInstructionsFromCode(t *testing.T) {
	// nop; call rel32; jmp rax
	code := []byte{0x90, 0xe8, 0x00, 0x00, 0x00, 0x00, 0xff, 0xe0}
	instrs := InstructionsFromCode(code)
	require.Len(t, instrs, 3)
	assert.Equal(t, uint64(0), instrs[0].Offset)
	assert.Equal(t, InstrOther, instrs[0].Kind)
	assert.Equal(t, uint64(1), instrs[1].Offset)
	assert.Equal(t, InstrCall, instrs[1].Kind)
	assert.Equal(t, uint64(6), instrs[2].Offset)
	assert.Equal(t, InstrIndirectBranch, instrs[2].Kind)
}
