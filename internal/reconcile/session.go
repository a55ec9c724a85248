package reconcile

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	mapset "github.com/deckarep/golang-set/v2"

	"profrec/internal/nameutil"
	"profrec/internal/profile"
	"profrec/internal/program"
)

// session is the matching state for one profile-load call: name indices,
// the claimed-function set, and the profile-to-function mapping. It is
// created by Preprocess and discarded with its Reader, so repeated loads
// are independent.
type session struct {
	cfg Config
	doc *profile.Document

	// candidates holds the exact-name lookup result per profile function,
	// parallel to doc.Functions; nil means no candidate.
	candidates []*program.Function

	// profileNames is the set of (suffix-stripped) profiled symbol names.
	profileNames mapset.Set[string]

	// LTO common-name groups on both sides. ltoCommonNames preserves
	// first-seen order so group iteration is reproducible.
	ltoProfiles    map[string][]*profile.Function
	ltoCommonNames []string
	ltoFuncs       map[string][]*program.Function

	// claimed enforces at-most-one-profile-per-function; mapping is the
	// matcher's output, keyed by profile function id.
	claimed mapset.Set[*program.Function]
	mapping map[uint32]*program.Function

	stats Stats

	matchedExactName      uint64
	matchedHash           uint64
	matchedLTOCommonName  uint64
	matchedNameSimilarity uint64

	normalizeByInsnCount bool
	normalizeByCalls     bool
}

func newSession(cfg Config, doc *profile.Document) *session {
	return &session{
		cfg:          cfg,
		doc:          doc,
		candidates:   make([]*program.Function, len(doc.Functions)),
		profileNames: mapset.NewSet[string](),
		ltoProfiles:  make(map[string][]*profile.Function),
		ltoFuncs:     make(map[string][]*program.Function),
		claimed:      mapset.NewSet[*program.Function](),
		mapping:      make(map[uint32]*program.Function),
	}
}

// buildNameMaps builds the exact-name candidate array, the profiled-name
// set, and the LTO common-name groups for both the profile and the
// program. Pure read; a name with no candidate stays nil.
func (s *session) buildNameMaps(funcs []*program.Function) {
	byName := make(map[string]*program.Function)
	for _, fn := range funcs {
		for _, name := range fn.Names() {
			if _, ok := byName[name]; !ok {
				byName[name] = fn
			}
		}
	}

	for i, prof := range s.doc.Functions {
		name := nameutil.StripProfileSuffix(prof.Name)
		s.profileNames.Add(name)
		s.candidates[i] = byName[name]
		if common, ok := nameutil.LTOCommonName(name); ok {
			if _, seen := s.ltoProfiles[common]; !seen {
				s.ltoCommonNames = append(s.ltoCommonNames, common)
			}
			s.ltoProfiles[common] = append(s.ltoProfiles[common], prof)
		}
	}

	for _, fn := range funcs {
		for _, name := range fn.Names() {
			common, ok := nameutil.LTOCommonName(name)
			if !ok {
				continue
			}
			group := s.ltoFuncs[common]
			if len(group) > 0 && group[len(group)-1] == fn {
				continue
			}
			s.ltoFuncs[common] = append(group, fn)
		}
	}
}

// matchProfileToFunction enters a pair into the mapping. It is the only
// place Used, the claimed set, and the mapping are written, so the
// one-to-one invariant holds by construction; a matched pair is never
// unmatched within the session.
func (s *session) matchProfileToFunction(prof *profile.Function, fn *program.Function) {
	prof.Used = true
	s.claimed.Add(fn)
	s.mapping[prof.ID] = fn
}

// function returns the mapped program function for a profile id, nil when
// the id was never matched.
func (s *session) function(id uint32) *program.Function {
	return s.mapping[id]
}

// mayHaveProfileData reports whether any strategy could possibly assign
// the function a profile, for lite-mode function filtering.
func (s *session) mayHaveProfileData(fn *program.Function) bool {
	if s.cfg.MatchByHash {
		return true
	}
	for _, name := range fn.Names() {
		if s.profileNames.Contains(name) {
			return true
		}
	}
	for _, name := range fn.Names() {
		if common, ok := nameutil.LTOCommonName(name); ok {
			if _, present := s.ltoProfiles[common]; present {
				return true
			}
		}
	}
	return false
}
