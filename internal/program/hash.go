package program

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/xxh3"
)

// HashKind selects the fingerprint function used for structural hashes.
// It must agree with the hash kind declared by the profile being applied.
type HashKind int

const (
	HashLegacy HashKind = iota
	HashXXH3
)

// ComputeHash fingerprints the function's control-flow shape: per block,
// its successor positions and instruction kinds, blocks enumerated in
// depth-first or layout order per dfsOrder. The result is stored and
// returned by Hash.
func (f *Function) ComputeHash(dfsOrder bool, kind HashKind) uint64 {
	var order []*Block
	if dfsOrder {
		order = f.DFSOrder()
	} else {
		order = f.LayoutOrder()
	}

	position := make(map[*Block]int, len(order))
	for i, b := range order {
		position[b] = i
	}

	var sb strings.Builder
	sb.WriteString(strconv.Itoa(len(order)))
	for _, b := range order {
		sb.WriteByte('{')
		for _, e := range b.succs {
			sb.WriteString(strconv.Itoa(position[e.To]))
			sb.WriteByte(',')
		}
		sb.WriteByte(':')
		for _, in := range b.instrs {
			if in.Kind == InstrPseudo {
				continue
			}
			sb.WriteString(strconv.Itoa(int(in.Kind)))
			sb.WriteByte(';')
		}
		sb.WriteByte('}')
	}

	switch kind {
	case HashXXH3:
		f.hash = xxh3.HashString(sb.String())
	default:
		f.hash = xxhash.Sum64String(sb.String())
	}
	f.hasHash = true
	return f.hash
}

// SetHash overrides the structural hash, for callers that computed it
// elsewhere.
func (f *Function) SetHash(h uint64) {
	f.hash = h
	f.hasHash = true
}
