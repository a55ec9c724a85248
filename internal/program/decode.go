package program

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"golang.org/x/arch/x86/x86asm"
)

// ClassifyInstr decodes one x86-64 instruction and classifies its
// control-flow shape. Undecodable bytes classify as InstrOther with
// length 1 so callers can resynchronize.
func ClassifyInstr(code []byte) (InstrKind, int) {
	inst, err := x86asm.Decode(code, 64)
	if err != nil {
		return InstrOther, 1
	}
	switch inst.Op {
	case x86asm.CALL, x86asm.LCALL:
		if isIndirectArg(inst.Args[0]) {
			return InstrIndirectCall, inst.Len
		}
		return InstrCall, inst.Len
	case x86asm.JMP, x86asm.LJMP:
		if isIndirectArg(inst.Args[0]) {
			return InstrIndirectBranch, inst.Len
		}
	}
	return InstrOther, inst.Len
}

func isIndirectArg(arg x86asm.Arg) bool {
	switch arg.(type) {
	case x86asm.Reg, x86asm.Mem:
		return true
	}
	return false
}

// InstructionsFromCode decodes a block's raw machine code into classified
// instructions with block-relative offsets.
func InstructionsFromCode(code []byte) []*Instruction {
	var instrs []*Instruction
	off := 0
	for off < len(code) {
		kind, length := ClassifyInstr(code[off:])
		instrs = append(instrs, NewInstruction(uint64(off), kind))
		off += length
	}
	return instrs
}
