package reconcile

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Stats accounts for every recoverable condition encountered while
// reconciling a profile. None of these abort the run; downstream tooling
// reads them to decide whether accumulated drift is acceptable.
type Stats struct {
	// DuplicateProfiles counts profile records dropped because their
	// target function already carried an execution count from an earlier
	// source.
	DuplicateProfiles uint64
	// HashMismatches and BlockCountMismatches count matched pairs whose
	// structural signals disagreed.
	HashMismatches       uint64
	BlockCountMismatches uint64
	// MismatchedBlocks counts profiled blocks whose index was out of
	// range of the function's block ordering.
	MismatchedBlocks uint64
	// MismatchedCalls counts call-site records that failed validation;
	// the three counters below break the failures down.
	MismatchedCalls        uint64
	CallOffsetOutOfRange   uint64
	CallMissingInstruction uint64
	CallWrongInstruction   uint64
	// DuplicateAnnotations counts attempts to annotate an instruction
	// counter that was already set; the attempt is a no-op.
	DuplicateAnnotations uint64
	// MismatchedEdges counts successor records that resolved to no
	// structural edge, directly or through a passthrough block.
	MismatchedEdges uint64
	// UnmatchedProfiles counts profile records no strategy could assign;
	// UnmatchedFunctions counts program functions left without a profile.
	UnmatchedProfiles  uint64
	UnmatchedFunctions uint64
	// StaleFuncsWithEqualBlockCount counts functions whose profile failed
	// to match despite an agreeing block count, the population stale
	// profile inference works best on.
	StaleFuncsWithEqualBlockCount uint64
}

// Result aggregates the outcome of one profile read.
type Result struct {
	MatchedExactName      uint64
	MatchedHash           uint64
	MatchedLTOCommonName  uint64
	MatchedNameSimilarity uint64
	// UnusedProfiles counts profiled objects that were never applied to
	// any function.
	UnusedProfiles uint64
	Stats          Stats
}
