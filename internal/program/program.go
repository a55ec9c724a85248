/*
Package program is the binary-side intermediate representation that profile
data is projected onto: functions made of basic blocks with structural
successor edges and instructions. The reconciler queries block orderings
and structural hashes and mutates execution counts, edge counts, and
per-instruction profile annotations in place.
*/
package program

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"math"
)

// CountNoProfile marks an execution count that has not been assigned from
// any profile source.
const CountNoProfile = math.MaxUint64

// Edge is a structural successor edge with its accumulated branch counts.
// Counts from repeated profile records targeting the same edge sum.
type Edge struct {
	To       *Block
	Count    uint64
	Mispreds uint64
}

// Block is one basic block of a Function.
type Block struct {
	name         string
	inputOffset  uint64
	originalSize uint64
	entryPoint   bool
	execCount    uint64
	instrs       []*Instruction
	succs        []*Edge
}

// NewBlock returns a block covering [inputOffset, inputOffset+size) of the
// function's original layout.
func NewBlock(name string, inputOffset, size uint64) *Block {
	return &Block{
		name:         name,
		inputOffset:  inputOffset,
		originalSize: size,
		execCount:    CountNoProfile,
	}
}

func (b *Block) Name() string { return b.name }
func (b *Block) InputOffset() uint64 { return b.inputOffset }
func (b *Block) OriginalSize() uint64 { return b.originalSize }
func (b *Block) IsEntryPoint() bool { return b.entryPoint }

// ExecutionCount returns the block's assigned count, or CountNoProfile if
// no profile touched the block yet.
func (b *Block) ExecutionCount() uint64 { return b.execCount }
func (b *Block) SetExecutionCount(c uint64) { b.execCount = c }

func (b *Block) Instructions() []*Instruction { return b.instrs }

// AddInstruction appends an instruction; offsets are relative to the block
// start and must be appended in increasing order.
func (b *Block) AddInstruction(in *Instruction) { b.instrs = append(b.instrs, in) }

// NumNonPseudos counts instructions that occupy space in the encoded
// block, i.e. everything except pseudo (directive-like) instructions.
func (b *Block) NumNonPseudos() int {
	n := 0
	for _, in := range b.instrs {
		if in.Kind != InstrPseudo {
			n++
		}
	}
	return n
}

// NumCalls counts call-shaped instructions in the block.
func (b *Block) NumCalls() int {
	n := 0
	for _, in := range b.instrs {
		if in.IsCall() {
			n++
		}
	}
	return n
}

// InstrAtOffset returns the instruction at the given offset relative to
// the block start, or nil.
func (b *Block) InstrAtOffset(off uint64) *Instruction {
	for _, in := range b.instrs {
		if in.Offset == off {
			return in
		}
	}
	return nil
}

// AddSuccessor appends a structural successor edge with zero counts.
func (b *Block) AddSuccessor(to *Block) {
	b.succs = append(b.succs, &Edge{To: to})
}

// Successors returns the block's structural successor edges in layout
// order.
func (b *Block) Successors() []*Edge { return b.succs }

func (b *Block) SuccCount() int { return len(b.succs) }

// Successor returns the edge to the given block, or nil when the block is
// not a direct structural successor.
func (b *Block) Successor(to *Block) *Edge {
	for _, e := range b.succs {
		if e.To == to {
			return e
		}
	}
	return nil
}

// FallthroughSuccessor returns the block control falls into when the
// block's conditional branch is not taken: the second successor of a
// two-successor block. Blocks with any other successor count have no
// conditional branch and no fall-through.
func (b *Block) FallthroughSuccessor() *Block {
	if len(b.succs) != 2 {
		return nil
	}
	return b.succs[1].To
}

// RawCallSite is a call-site record carried on the function regardless of
// whether its instruction-level annotation succeeded. An empty Callee
// means the call target is not a known function.
type RawCallSite struct {
	Callee   string
	Count    uint64
	Mispreds uint64
	Offset   uint64
}

// Function is one function of the program being optimized.
type Function struct {
	names          []string
	entrySymbols   []string
	blocks         []*Block
	hash           uint64
	hasHash        bool
	execCount      uint64
	rawBranchCount uint64
	profiled       bool
	profileFlags   uint8
	ignored        bool
	allCallSites   []RawCallSite
}

// NewFunction returns a function with the given primary name and blocks in
// layout order. The first block, if any, is the primary entry point.
func NewFunction(name string, blocks ...*Block) *Function {
	f := &Function{
		names:        []string{name},
		entrySymbols: []string{name},
		blocks:       blocks,
		execCount:    CountNoProfile,
	}
	if len(blocks) > 0 {
		blocks[0].entryPoint = true
	}
	return f
}

func (f *Function) Name() string { return f.names[0] }
func (f *Function) Names() []string { return f.names }

// AddName registers an additional symbol name for the function.
func (f *Function) AddName(name string) { f.names = append(f.names, name) }

// AddEntryPoint registers a secondary entry point: the named block becomes
// an entry and sym is the symbol selected by the matching entry
// discriminator.
func (f *Function) AddEntryPoint(block *Block, sym string) {
	block.entryPoint = true
	f.entrySymbols = append(f.entrySymbols, sym)
}

// EntrySymbol returns the symbol for the given entry discriminator,
// falling back to the primary name when the discriminator is out of range.
func (f *Function) EntrySymbol(discriminator uint32) string {
	if int(discriminator) < len(f.entrySymbols) {
		return f.entrySymbols[discriminator]
	}
	return f.names[0]
}

func (f *Function) Empty() bool { return len(f.blocks) == 0 }
func (f *Function) NumBlocks() int { return len(f.blocks) }
func (f *Function) String() string { return f.names[0] }
func (f *Function) Blocks() []*Block { return f.blocks }

// LayoutOrder returns the function's blocks in their current layout order.
func (f *Function) LayoutOrder() []*Block { return f.blocks }

// DFSOrder returns the blocks in depth-first preorder from the entry
// block, successors visited in edge order. Blocks unreachable through
// successor edges follow in layout order.
func (f *Function) DFSOrder() []*Block {
	if len(f.blocks) == 0 {
		return nil
	}
	order := make([]*Block, 0, len(f.blocks))
	visited := make(map[*Block]bool, len(f.blocks))
	var stack []*Block
	for _, b := range f.blocks {
		if b.entryPoint {
			stack = append(stack, b)
		}
	}
	// Reverse so the primary entry is popped first.
	for i, j := 0, len(stack)-1; i < j; i, j = i+1, j-1 {
		stack[i], stack[j] = stack[j], stack[i]
	}
	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[b] {
			continue
		}
		visited[b] = true
		order = append(order, b)
		// Push successors in reverse so the first edge is visited first.
		for i := len(b.succs) - 1; i >= 0; i-- {
			if !visited[b.succs[i].To] {
				stack = append(stack, b.succs[i].To)
			}
		}
	}
	for _, b := range f.blocks {
		if !visited[b] {
			order = append(order, b)
		}
	}
	return order
}

// HasHash reports whether a structural hash has been computed.
func (f *Function) HasHash() bool { return f.hasHash }

// Hash returns the computed structural hash; zero before ComputeHash.
func (f *Function) Hash() uint64 { return f.hash }

func (f *Function) ExecutionCount() uint64 { return f.execCount }
func (f *Function) SetExecutionCount(c uint64) { f.execCount = c }

func (f *Function) RawBranchCount() uint64 { return f.rawBranchCount }
func (f *Function) SetRawBranchCount(c uint64) { f.rawBranchCount = c }

// HasProfile reports whether any profile source has assigned the function
// an execution count.
func (f *Function) HasProfile() bool { return f.execCount != CountNoProfile }

// MarkProfiled records that the function carries a fully applied profile
// collected with the given flags.
func (f *Function) MarkProfiled(flags uint8) {
	f.profiled = true
	f.profileFlags = flags
}

func (f *Function) IsProfiled() bool { return f.profiled }
func (f *Function) ProfileFlags() uint8 { return f.profileFlags }

// SetIgnored drops the function from further optimization consideration.
func (f *Function) SetIgnored() { f.ignored = true }
func (f *Function) IsIgnored() bool { return f.ignored }

// AddCallSite records a raw call-site observation on the function.
func (f *Function) AddCallSite(cs RawCallSite) { f.allCallSites = append(f.allCallSites, cs) }

// AllCallSites returns every raw call-site observation recorded so far.
func (f *Function) AllCallSites() []RawCallSite { return f.allCallSites }

// InstrAtOffset returns the instruction at the given offset relative to
// the function start, or nil.
func (f *Function) InstrAtOffset(off uint64) *Instruction {
	for _, b := range f.blocks {
		if off < b.inputOffset || off >= b.inputOffset+b.originalSize {
			continue
		}
		return b.InstrAtOffset(off - b.inputOffset)
	}
	return nil
}

// BlockIndex returns the layout position of the block, for diagnostics.
func (f *Function) BlockIndex(b *Block) (int, error) {
	for i, cand := range f.blocks {
		if cand == b {
			return i, nil
		}
	}
	return 0, fmt.Errorf("block %s not in function %s", b.name, f.names[0])
}
