package reconcile

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"profrec/internal/nameutil"
	"profrec/internal/profile"
	"profrec/internal/program"
)

// Demangler turns a mangled symbol name into a human-readable one. It is
// injected so the matching passes can be tested with deterministic
// stand-ins.
type Demangler func(string) string

// StaleInferrer is the external stale-profile repair strategy. It is
// handed a function whose profile did not structurally match and may
// salvage a usable mapping as a side effect; it reports whether the
// verdict should be repaired to matched.
type StaleInferrer func(*program.Function, *profile.Function) bool

// Config carries every knob the reconciliation passes consult. It is
// immutable and threaded explicitly; there is no package-level state.
type Config struct {
	// Verbosity gates warning output: 0 silent, 1 per-function, 2
	// per-record.
	Verbosity int
	// IgnoreHash relaxes the match predicate from structural-hash
	// equality to block-count equality and skips the projector's hash
	// check.
	IgnoreHash bool
	// MatchByHash enables the global hash matching pass over every
	// program function.
	MatchByHash bool
	// NameSimilarityThreshold is the maximum edit distance accepted by
	// the name-similarity pass; zero disables the pass.
	NameSimilarityThreshold int
	// InferStaleProfile hands structurally mismatched functions to
	// InferStale.
	InferStaleProfile bool
	// Lite drops unprofiled functions from further consideration after
	// reading, only honored together with MatchByHash.
	Lite bool

	// InferStale is consulted when InferStaleProfile is set; nil means no
	// repair.
	InferStale StaleInferrer
	// Demangle overrides the default demangler; nil selects
	// nameutil.Demangle.
	Demangle Demangler
}

func (c Config) demangler() Demangler {
	if c.Demangle != nil {
		return c.Demangle
	}
	return nameutil.Demangle
}
