package program

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// InstrKind classifies an instruction's control-flow shape, which decides
// how a profiled call site annotates it.
type InstrKind int

const (
	InstrOther InstrKind = iota
	// InstrPseudo marks directive-like instructions that occupy no space
	// in the encoded block.
	InstrPseudo
	InstrCall
	InstrIndirectCall
	InstrIndirectBranch
	InstrCondTailCall
)

func (k InstrKind) String() string {
	switch k {
	case InstrPseudo:
		return "pseudo"
	case InstrCall:
		return "call"
	case InstrIndirectCall:
		return "indirect-call"
	case InstrIndirectBranch:
		return "indirect-branch"
	case InstrCondTailCall:
		return "cond-tail-call"
	default:
		return "other"
	}
}

// Annotation names attached to instructions by the projector.
const (
	AnnotationCount      = "Count"
	AnnotationCTCTaken   = "CTCTakenCount"
	AnnotationCTCMispred = "CTCMispredCount"
)

// CallProfileEntry is one observed (callee, count, mispredictions) triple
// on an indirect call or indirect branch. An empty Callee means the target
// was not a known function.
type CallProfileEntry struct {
	Callee   string
	Count    uint64
	Mispreds uint64
}

// Instruction is one instruction of a Block. Offset is relative to the
// block start.
type Instruction struct {
	Offset uint64
	Kind   InstrKind

	annotations map[string]uint64
	callProfile []CallProfileEntry
}

// NewInstruction returns an instruction of the given kind at the given
// block-relative offset.
func NewInstruction(off uint64, kind InstrKind) *Instruction {
	return &Instruction{Offset: off, Kind: kind}
}

// IsCall reports whether the instruction transfers control to a callee.
func (in *Instruction) IsCall() bool {
	switch in.Kind {
	case InstrCall, InstrIndirectCall, InstrCondTailCall:
		return true
	}
	return false
}

// IsIndirect reports whether the instruction's target is computed rather
// than encoded.
func (in *Instruction) IsIndirect() bool {
	return in.Kind == InstrIndirectCall || in.Kind == InstrIndirectBranch
}

// HasAnnotation reports whether the named scalar annotation is set.
func (in *Instruction) HasAnnotation(name string) bool {
	_, ok := in.annotations[name]
	return ok
}

// Annotation returns the named scalar annotation.
func (in *Instruction) Annotation(name string) (uint64, bool) {
	v, ok := in.annotations[name]
	return v, ok
}

// SetAnnotation sets the named scalar annotation and reports whether it
// was newly set. Setting an annotation that already exists is a no-op.
func (in *Instruction) SetAnnotation(name string, value uint64) bool {
	if _, ok := in.annotations[name]; ok {
		return false
	}
	if in.annotations == nil {
		in.annotations = make(map[string]uint64)
	}
	in.annotations[name] = value
	return true
}

// AddCallProfile appends one observed callee entry to the instruction's
// indirect call-site profile.
func (in *Instruction) AddCallProfile(entry CallProfileEntry) {
	in.callProfile = append(in.callProfile, entry)
}

// CallProfile returns the accumulated indirect call-site profile in
// observation order.
func (in *Instruction) CallProfile() []CallProfileEntry { return in.callProfile }
