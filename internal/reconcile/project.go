package reconcile

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"log/slog"

	"profrec/internal/profile"
	"profrec/internal/program"
)

// parseFunctionProfile projects one matched profile record onto its
// program function: block execution counts, edge counts, and call-site
// annotations, with graceful degradation when indices or offsets no
// longer line up. Reports whether the profile fully matched the
// function's current structure.
func (s *session) parseFunctionProfile(fn *program.Function, prof *profile.Function) bool {
	header := s.doc.Header
	matched := true
	var mismatchedBlocks, mismatchedCalls, mismatchedEdges uint64
	var functionExecutionCount uint64

	fn.SetExecutionCount(prof.ExecCount)
	fn.SetRawBranchCount(prof.RawBranchCount())

	if fn.Empty() {
		return true
	}

	if !s.cfg.IgnoreHash {
		if !fn.HasHash() {
			fn.ComputeHash(header.IsDFSOrder, hashKind(header.HashFunc))
		}
		if prof.Hash != fn.Hash() {
			if s.cfg.Verbosity >= 1 {
				slog.Warn("function hash mismatch", slog.String("function", fn.Name()))
			}
			s.stats.HashMismatches++
			matched = false
		}
	}

	if int(prof.NumBlocks) != fn.NumBlocks() {
		if s.cfg.Verbosity >= 1 {
			slog.Warn("number of basic blocks mismatch", slog.String("function", fn.Name()),
				slog.Int("profile", int(prof.NumBlocks)), slog.Int("function-blocks", fn.NumBlocks()))
		}
		s.stats.BlockCountMismatches++
		matched = false
	}

	// Profile block indices are relative to the ordering the profile
	// writer used.
	var order []*program.Block
	if header.IsDFSOrder {
		order = fn.DFSOrder()
	} else {
		order = fn.LayoutOrder()
	}

	for i := range prof.Blocks {
		profBlock := &prof.Blocks[i]
		if int(profBlock.Index) >= len(order) {
			if s.cfg.Verbosity >= 2 {
				slog.Warn("block index out of bounds", slog.String("function", fn.Name()),
					slog.Int("index", int(profBlock.Index)))
			}
			mismatchedBlocks++
			continue
		}
		bb := order[profBlock.Index]

		// Sample-only profiles carry no branch records and take the
		// normalization path instead.
		if header.SampleOnly() {
			functionExecutionCount += s.normalizeBlockSamples(bb, profBlock.EventCount)
			continue
		}

		bb.SetExecutionCount(profBlock.ExecCount)

		for _, cs := range profBlock.CallSites {
			var callee *program.Function
			if cs.DestID != nil {
				callee = s.function(*cs.DestID)
			}
			var calleeSymbol string
			if callee != nil {
				calleeSymbol = callee.EntrySymbol(cs.EntryDiscriminator)
			}

			// Raw record goes on the function whether or not annotation
			// succeeds below.
			fn.AddCallSite(program.RawCallSite{
				Callee:   calleeSymbol,
				Count:    cs.Count,
				Mispreds: cs.Mispreds,
				Offset:   cs.Offset,
			})

			if cs.Offset >= bb.OriginalSize() {
				if s.cfg.Verbosity >= 2 {
					slog.Warn("call offset out of bounds", slog.String("block", bb.Name()),
						slog.Uint64("offset", cs.Offset))
				}
				s.stats.CallOffsetOutOfRange++
				mismatchedCalls++
				continue
			}
			instr := fn.InstrAtOffset(bb.InputOffset() + cs.Offset)
			if instr == nil {
				if s.cfg.Verbosity >= 2 {
					slog.Warn("no instruction at call offset", slog.String("block", bb.Name()),
						slog.Uint64("offset", cs.Offset))
				}
				s.stats.CallMissingInstruction++
				mismatchedCalls++
				continue
			}
			if !instr.IsCall() && instr.Kind != program.InstrIndirectBranch {
				if s.cfg.Verbosity >= 2 {
					slog.Warn("expected call at offset", slog.String("block", bb.Name()),
						slog.Uint64("offset", cs.Offset))
				}
				s.stats.CallWrongInstruction++
				mismatchedCalls++
				continue
			}

			switch {
			case instr.IsIndirect():
				instr.AddCallProfile(program.CallProfileEntry{
					Callee:   calleeSymbol,
					Count:    cs.Count,
					Mispreds: cs.Mispreds,
				})
			case instr.Kind == program.InstrCondTailCall:
				s.setAnnotation(fn, instr, program.AnnotationCTCTaken, cs.Count, cs.Offset)
				s.setAnnotation(fn, instr, program.AnnotationCTCMispred, cs.Mispreds, cs.Offset)
			default:
				s.setAnnotation(fn, instr, program.AnnotationCount, cs.Count, cs.Offset)
			}
		}

		for _, si := range profBlock.Successors {
			if int(si.Index) >= len(order) {
				if s.cfg.Verbosity >= 1 {
					slog.Warn("successor index out of bounds", slog.String("function", fn.Name()),
						slog.Int("index", int(si.Index)))
				}
				mismatchedEdges++
				continue
			}
			to := order[si.Index]
			if bb.Successor(to) == nil {
				// The recorded target may sit one hop away behind a
				// passthrough block: redirect onto the fall-through
				// successor and attribute the count to the hop as well.
				passthrough := bb.FallthroughSuccessor()
				if passthrough != nil && passthrough.SuccCount() == 1 && passthrough.Successor(to) != nil {
					hop := passthrough.Successor(to)
					hop.Count += si.Count
					hop.Mispreds += si.Mispreds
					to = passthrough
				} else {
					if s.cfg.Verbosity >= 1 {
						slog.Warn("no matching successor for profiled branch",
							slog.String("block", bb.Name()), slog.Int("index", int(si.Index)))
					}
					mismatchedEdges++
					continue
				}
			}
			edge := bb.Successor(to)
			edge.Count += si.Count
			edge.Mispreds += si.Mispreds
		}
	}

	// Blocks the profile never touched count as never executed.
	for _, bb := range fn.Blocks() {
		if bb.ExecutionCount() == program.CountNoProfile {
			bb.SetExecutionCount(0)
		}
	}

	if header.SampleOnly() {
		fn.SetExecutionCount(functionExecutionCount)
	}

	s.stats.MismatchedBlocks += mismatchedBlocks
	s.stats.MismatchedCalls += mismatchedCalls
	s.stats.MismatchedEdges += mismatchedEdges
	matched = matched && mismatchedBlocks == 0 && mismatchedCalls == 0 && mismatchedEdges == 0

	if !matched {
		if s.cfg.Verbosity >= 1 {
			slog.Warn("profile did not match function",
				slog.String("function", fn.Name()),
				slog.Uint64("blocks", mismatchedBlocks),
				slog.Uint64("calls", mismatchedCalls),
				slog.Uint64("edges", mismatchedEdges))
		}
		if int(prof.NumBlocks) == fn.NumBlocks() {
			s.stats.StaleFuncsWithEqualBlockCount++
		}
		if s.cfg.InferStaleProfile && s.cfg.InferStale != nil && s.cfg.InferStale(fn, prof) {
			matched = true
		}
	}
	if matched {
		fn.MarkProfiled(header.Flags)
	}
	return matched
}

// setAnnotation sets a scalar instruction counter, keeping an existing
// value and accounting the duplicate attempt.
func (s *session) setAnnotation(fn *program.Function, instr *program.Instruction, name string, value, offset uint64) {
	if !instr.SetAnnotation(name, value) {
		if s.cfg.Verbosity >= 1 {
			slog.Warn("ignoring duplicate annotation", slog.String("annotation", name),
				slog.Uint64("offset", offset), slog.String("function", fn.Name()))
		}
		s.stats.DuplicateAnnotations++
	}
}
