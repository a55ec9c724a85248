package reconcile

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import "profrec/internal/program"

// deriveNormalization fixes the sample normalization mode for the load
// from the profile's declared event names. At most one mode is expected
// to be active for a given profile.
func (s *session) deriveNormalization() {
	s.normalizeByInsnCount = s.doc.UsesEvent("cycles") || s.doc.UsesEvent("instructions")
	s.normalizeByCalls = s.doc.UsesEvent("branches")
}

// normalizeBlockSamples derives a pseudo execution count for a block of a
// sample-only profile and returns the block's contribution to the
// function-level execution count (nonzero only for entry blocks).
func (s *session) normalizeBlockSamples(bb *program.Block, eventCount uint64) uint64 {
	if eventCount == 0 {
		bb.SetExecutionCount(0)
		return 0
	}
	samples := eventCount * 1000
	if s.normalizeByInsnCount && bb.NumNonPseudos() != 0 {
		samples /= uint64(bb.NumNonPseudos())
	} else if s.normalizeByCalls {
		samples /= uint64(bb.NumCalls()) + 1
	}
	bb.SetExecutionCount(samples)
	if bb.IsEntryPoint() {
		return samples
	}
	return 0
}
