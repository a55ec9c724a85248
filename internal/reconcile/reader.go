/*
Package reconcile applies an externally captured execution profile to the
functions of a binary program. Because the program may have drifted from
the binary the profile was collected on, a profile record cannot be tied
to a function by name alone: a cascade of matching strategies with fixed
precedence establishes a one-to-one mapping first, then each matched
record is projected onto the function's control-flow graph with per-record
mismatch accounting.
*/
package reconcile

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"errors"
	"log/slog"

	"profrec/internal/profile"
	"profrec/internal/program"
)

// ErrNotPreprocessed is returned by ReadProfile when Preprocess has not
// completed successfully first.
var ErrNotPreprocessed = errors.New("profile has not been preprocessed")

// Reader drives one profile load: Preprocess then ReadProfile, each a full
// pass over the program's functions. A Reader is single-use; its session
// state is scoped to one load so repeated loads stay independent.
type Reader struct {
	path string
	cfg  Config
	doc  *profile.Document
	sess *session
}

// NewReader returns a reader for the profile document at path.
func NewReader(path string, cfg Config) *Reader {
	return &Reader{path: path, cfg: cfg}
}

// NewReaderFromDocument returns a reader over an already decoded document,
// for callers that obtained the records elsewhere. The document must have
// passed Validate.
func NewReaderFromDocument(doc *profile.Document, cfg Config) *Reader {
	return &Reader{doc: doc, cfg: cfg}
}

// Document returns the loaded profile document, nil before Preprocess.
func (r *Reader) Document() *profile.Document { return r.doc }

// MayHaveProfileData reports whether any matching strategy could assign
// the function a profile; callers selecting a subset of functions to
// process can skip the rest. Only valid after Preprocess.
func (r *Reader) MayHaveProfileData(fn *program.Function) bool {
	if r.sess == nil {
		return false
	}
	return r.sess.mayHaveProfileData(fn)
}

// Preprocess loads and validates the profile, builds the name indices,
// and makes a preliminary best-effort execution-count assignment per
// exact-name candidate. A profile whose target function already carries
// an execution count from an earlier source is dropped with a warning.
func (r *Reader) Preprocess(funcs []*program.Function) error {
	if r.doc == nil {
		doc, err := profile.Load(r.path)
		if err != nil {
			return err
		}
		r.doc = doc
	}

	r.sess = newSession(r.cfg, r.doc)
	r.sess.buildNameMaps(funcs)

	for i, prof := range r.doc.Functions {
		fn := r.sess.candidates[i]
		if fn == nil {
			continue
		}
		if fn.HasProfile() {
			if r.cfg.Verbosity >= 1 {
				slog.Warn("dropping duplicate profile", slog.String("function", prof.Name))
			}
			r.sess.stats.DuplicateProfiles++
			r.sess.candidates[i] = nil
			continue
		}
		fn.SetExecutionCount(prof.ExecCount)
	}

	return nil
}

// ReadProfile runs the matching cascade and projects every matched record
// onto its function. It returns per-strategy match counts, the number of
// unused profiled objects, and the accumulated mismatch accounting.
func (r *Reader) ReadProfile(funcs []*program.Function) (Result, error) {
	if r.sess == nil {
		return Result{}, ErrNotPreprocessed
	}
	s := r.sess

	if r.cfg.Verbosity >= 1 {
		slog.Info("reading profile", slog.String("hash-function", r.doc.Header.HashFunc.String()),
			slog.Bool("dfs-order", r.doc.Header.IsDFSOrder))
	}

	s.match(funcs)
	s.deriveNormalization()

	var unused uint64
	for _, prof := range r.doc.Functions {
		fn := s.function(prof.ID)
		if fn == nil {
			unused++
			continue
		}
		s.parseFunctionProfile(fn, prof)
	}

	if r.cfg.Lite && r.cfg.MatchByHash {
		for _, fn := range funcs {
			if !fn.HasProfile() {
				fn.SetIgnored()
			}
		}
	}

	result := Result{
		MatchedExactName:      s.matchedExactName,
		MatchedHash:           s.matchedHash,
		MatchedLTOCommonName:  s.matchedLTOCommonName,
		MatchedNameSimilarity: s.matchedNameSimilarity,
		UnusedProfiles:        unused,
		Stats:                 s.stats,
	}
	return result, nil
}
