package reconcile

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"log/slog"

	"github.com/agnivade/levenshtein"
	mapset "github.com/deckarep/golang-set/v2"

	"profrec/internal/nameutil"
	"profrec/internal/profile"
	"profrec/internal/program"
)

// profileMatches is the structural match predicate shared by the
// exact-name and LTO passes: hash equality, relaxed to block-count
// equality under IgnoreHash. Functions outside the precomputed set (LTO
// group members with no exact-name profile) are hashed on first use.
func (s *session) profileMatches(prof *profile.Function, fn *program.Function) bool {
	if s.cfg.IgnoreHash {
		return int(prof.NumBlocks) == fn.NumBlocks()
	}
	if !fn.HasHash() {
		fn.ComputeHash(s.doc.Header.IsDFSOrder, hashKind(s.doc.Header.HashFunc))
	}
	return prof.Hash == fn.Hash()
}

// precomputeHashes computes structural hashes ahead of matching: every
// function under MatchByHash, otherwise only the exact-name candidates,
// and none at all under IgnoreHash.
func (s *session) precomputeHashes(funcs []*program.Function) {
	dfs := s.doc.Header.IsDFSOrder
	kind := hashKind(s.doc.Header.HashFunc)
	if s.cfg.MatchByHash {
		for _, fn := range funcs {
			fn.ComputeHash(dfs, kind)
		}
		return
	}
	if s.cfg.IgnoreHash {
		return
	}
	for _, fn := range s.candidates {
		if fn != nil {
			fn.ComputeHash(dfs, kind)
		}
	}
}

func hashKind(k profile.HashKind) program.HashKind {
	if k == profile.HashXXH3 {
		return program.HashXXH3
	}
	return program.HashLegacy
}

// matchWithExactName assigns profiles whose exact-name candidate also
// satisfies the structural predicate. It clears any preliminary execution
// count assigned during preprocessing for every candidate, matched or not.
func (s *session) matchWithExactName() {
	for i, prof := range s.doc.Functions {
		fn := s.candidates[i]
		if fn == nil {
			continue
		}
		fn.SetExecutionCount(program.CountNoProfile)
		if prof.Used || s.claimed.Contains(fn) {
			continue
		}
		if s.profileMatches(prof, fn) {
			s.matchProfileToFunction(prof, fn)
			s.matchedExactName++
		}
	}
}

// matchWithHash matches still-unused profiles to the first program
// function, in program enumeration order, with the same structural hash
// and no profile yet. First-unclaimed-wins is the deliberate collision
// policy: identical renamed functions share a hash, and a twin claimed by
// an earlier pass passes the profile on to the next one.
func (s *session) matchWithHash(funcs []*program.Function) {
	byHash := make(map[uint64][]*program.Function, len(funcs))
	for _, fn := range funcs {
		byHash[fn.Hash()] = append(byHash[fn.Hash()], fn)
	}
	for _, prof := range s.doc.Functions {
		if prof.Used {
			continue
		}
		for _, fn := range byHash[prof.Hash] {
			if s.claimed.Contains(fn) {
				continue
			}
			s.matchProfileToFunction(prof, fn)
			s.matchedHash++
			break
		}
	}
}

// matchWithLTOCommonName allows name ambiguity for LTO-privatized
// functions: profiles and functions sharing a common name pair up when the
// structural predicate holds. When no pair satisfies the predicate but the
// group holds exactly one unclaimed function, that function pairs
// unconditionally with the group's first unused profile; common-name
// identity alone is taken as sufficient evidence for single-candidate
// groups.
func (s *session) matchWithLTOCommonName() {
	for _, common := range s.ltoCommonNames {
		funcs, ok := s.ltoFuncs[common]
		if !ok {
			continue
		}
		profiles := s.ltoProfiles[common]

		matched := false
		for _, prof := range profiles {
			if prof.Used {
				continue
			}
			for _, fn := range funcs {
				if s.claimed.Contains(fn) || !s.profileMatches(prof, fn) {
					continue
				}
				s.matchProfileToFunction(prof, fn)
				s.matchedLTOCommonName++
				matched = true
				break
			}
			if matched {
				break
			}
		}
		if matched {
			continue
		}

		var unclaimed *program.Function
		unclaimedCount := 0
		for _, fn := range funcs {
			if !s.claimed.Contains(fn) {
				unclaimed = fn
				unclaimedCount++
			}
		}
		if unclaimedCount != 1 {
			continue
		}
		for _, prof := range profiles {
			if !prof.Used {
				s.matchProfileToFunction(prof, unclaimed)
				s.matchedLTOCommonName++
				break
			}
		}
	}
}

// matchLenientFallback matches any remaining profile to its exact-name
// candidate even though the structural predicate failed earlier. Name
// identity outweighs the structural disagreement; the projector records
// the drift on the matched pair.
func (s *session) matchLenientFallback() {
	for i, prof := range s.doc.Functions {
		fn := s.candidates[i]
		if prof.Used || fn == nil || s.claimed.Contains(fn) {
			continue
		}
		s.matchProfileToFunction(prof, fn)
	}
}

// matchWithNameSimilarity matches leftovers by demangled-name edit
// distance within the same namespace, restricted to equal block counts.
// Only runs when a positive threshold is configured.
func (s *session) matchWithNameSimilarity(funcs []*program.Function) {
	demangle := s.cfg.demangler()

	// Demangle profile names once and collect, per namespace, the block
	// counts of its profiled functions.
	demangledNames := make([]string, len(s.doc.Functions))
	namespaces := make([]string, len(s.doc.Functions))
	sizesByNamespace := make(map[string]mapset.Set[int])
	for i, prof := range s.doc.Functions {
		demangledNames[i] = demangle(prof.Name)
		namespaces[i] = nameutil.Namespace(demangledNames[i])
		sizes, ok := sizesByNamespace[namespaces[i]]
		if !ok {
			sizes = mapset.NewSet[int]()
			sizesByNamespace[namespaces[i]] = sizes
		}
		sizes.Add(int(prof.NumBlocks))
	}

	// Group program functions by namespace, skipping any with no
	// equal-sized profiled function in that namespace. Enumeration order
	// within a group follows the program order, which is the tie-break.
	type nsFunc struct {
		fn        *program.Function
		demangled string
	}
	funcsByNamespace := make(map[string][]nsFunc)
	for _, fn := range funcs {
		demangled := demangle(fn.Name())
		ns := nameutil.Namespace(demangled)
		sizes, ok := sizesByNamespace[ns]
		if !ok || !sizes.Contains(fn.NumBlocks()) {
			continue
		}
		funcsByNamespace[ns] = append(funcsByNamespace[ns], nsFunc{fn, demangled})
	}

	for i, prof := range s.doc.Functions {
		if prof.Used {
			continue
		}
		group, ok := funcsByNamespace[namespaces[i]]
		if !ok {
			continue
		}
		minDistance := s.cfg.NameSimilarityThreshold + 1
		var closest *program.Function
		for _, cand := range group {
			if s.claimed.Contains(cand.fn) {
				continue
			}
			if cand.fn.NumBlocks() != int(prof.NumBlocks) {
				continue
			}
			distance := levenshtein.ComputeDistance(cand.demangled, demangledNames[i])
			if distance < minDistance {
				minDistance = distance
				closest = cand.fn
			}
		}
		if closest != nil {
			s.matchProfileToFunction(prof, closest)
			s.matchedNameSimilarity++
		}
	}
}

// match runs the strategy cascade in its fixed precedence and logs
// whatever was left unmatched.
func (s *session) match(funcs []*program.Function) {
	s.precomputeHashes(funcs)
	s.matchWithExactName()
	if s.cfg.MatchByHash {
		s.matchWithHash(funcs)
	}
	s.matchWithLTOCommonName()
	s.matchLenientFallback()
	if s.cfg.NameSimilarityThreshold > 0 {
		s.matchWithNameSimilarity(funcs)
	}

	for _, prof := range s.doc.Functions {
		if !prof.Used {
			s.stats.UnmatchedProfiles++
			if s.cfg.Verbosity >= 1 {
				slog.Warn("profile ignored for function", slog.String("function", prof.Name))
			}
		}
	}
	for _, fn := range funcs {
		if !s.claimed.Contains(fn) {
			s.stats.UnmatchedFunctions++
		}
	}

	if s.cfg.Verbosity >= 1 {
		slog.Info("function matching complete",
			slog.Uint64("exact-name", s.matchedExactName),
			slog.Uint64("hash", s.matchedHash),
			slog.Uint64("lto-common-name", s.matchedLTOCommonName),
			slog.Uint64("name-similarity", s.matchedNameSimilarity))
	}
}
