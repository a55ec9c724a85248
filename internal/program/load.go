package program

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"encoding/hex"
	"fmt"
	"os"

	pkgerrors "github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Description is the YAML schema the CLI uses to describe the functions of
// a program so a profile can be reconciled against them without the full
// binary toolchain in the loop.
type Description struct {
	Functions []FunctionDesc `yaml:"functions"`
}

// FunctionDesc describes one function: its symbol names, blocks in layout
// order, and any secondary entry points.
type FunctionDesc struct {
	Name    string      `yaml:"name"`
	Aliases []string    `yaml:"aliases,omitempty"`
	Hash    uint64      `yaml:"hash,omitempty"`
	Blocks  []BlockDesc `yaml:"blocks,omitempty"`
	Entries []EntryDesc `yaml:"entries,omitempty"`
}

// BlockDesc describes one block. Instructions are given either explicitly
// by kind and offset or as hex-encoded machine code to be decoded and
// classified. Successor values are layout indices of target blocks.
type BlockDesc struct {
	Offset     uint64      `yaml:"offset"`
	Size       uint64      `yaml:"size"`
	Successors []int       `yaml:"succs,omitempty"`
	Instrs     []InstrDesc `yaml:"instrs,omitempty"`
	Code       string      `yaml:"code,omitempty"`
}

// InstrDesc describes one instruction by block-relative offset and kind
// name ("call", "indirect-call", "indirect-branch", "cond-tail-call",
// "pseudo", "other").
type InstrDesc struct {
	Offset uint64 `yaml:"offset"`
	Kind   string `yaml:"kind"`
}

// EntryDesc registers a secondary entry point at the given block layout
// index under the given symbol.
type EntryDesc struct {
	Block  int    `yaml:"block"`
	Symbol string `yaml:"symbol"`
}

// LoadDescription reads a program description and builds its functions in
// file order.
func LoadDescription(path string) ([]*Function, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "cannot open %s", path)
	}
	var desc Description
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("syntax error parsing program description: %w", err)
	}
	return desc.Build()
}

// Build materializes the described functions.
func (d *Description) Build() ([]*Function, error) {
	funcs := make([]*Function, 0, len(d.Functions))
	for _, fd := range d.Functions {
		fn, err := fd.build()
		if err != nil {
			return nil, err
		}
		funcs = append(funcs, fn)
	}
	return funcs, nil
}

func (fd *FunctionDesc) build() (*Function, error) {
	blocks := make([]*Block, len(fd.Blocks))
	for i, bd := range fd.Blocks {
		b := NewBlock(fmt.Sprintf("%s.bb%d", fd.Name, i), bd.Offset, bd.Size)
		if bd.Code != "" {
			code, err := hex.DecodeString(bd.Code)
			if err != nil {
				return nil, fmt.Errorf("function %s block %d: bad code: %w", fd.Name, i, err)
			}
			for _, in := range InstructionsFromCode(code) {
				b.AddInstruction(in)
			}
		}
		for _, id := range bd.Instrs {
			kind, err := parseInstrKind(id.Kind)
			if err != nil {
				return nil, fmt.Errorf("function %s block %d: %w", fd.Name, i, err)
			}
			b.AddInstruction(NewInstruction(id.Offset, kind))
		}
		blocks[i] = b
	}
	for i, bd := range fd.Blocks {
		for _, si := range bd.Successors {
			if si < 0 || si >= len(blocks) {
				return nil, fmt.Errorf("function %s block %d: successor %d out of range", fd.Name, i, si)
			}
			blocks[i].AddSuccessor(blocks[si])
		}
	}
	fn := NewFunction(fd.Name, blocks...)
	for _, alias := range fd.Aliases {
		fn.AddName(alias)
	}
	if fd.Hash != 0 {
		fn.SetHash(fd.Hash)
	}
	for _, ed := range fd.Entries {
		if ed.Block < 0 || ed.Block >= len(blocks) {
			return nil, fmt.Errorf("function %s: entry block %d out of range", fd.Name, ed.Block)
		}
		fn.AddEntryPoint(blocks[ed.Block], ed.Symbol)
	}
	return fn, nil
}

func parseInstrKind(name string) (InstrKind, error) {
	switch name {
	case "", "other":
		return InstrOther, nil
	case "pseudo":
		return InstrPseudo, nil
	case "call":
		return InstrCall, nil
	case "indirect-call":
		return InstrIndirectCall, nil
	case "indirect-branch":
		return InstrIndirectBranch, nil
	case "cond-tail-call":
		return InstrCondTailCall, nil
	}
	return InstrOther, fmt.Errorf("unknown instruction kind %q", name)
}
