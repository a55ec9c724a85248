/*
Package profile defines the in-memory model of an externally captured
execution profile and loads its YAML serialization. A document holds a
header describing how the profile was collected followed by one record per
profiled function with per-block execution counts, branch (successor)
records, and call-site records.
*/
package profile

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"strings"
)

// SupportedVersion is the only profile document version this reader accepts.
const SupportedVersion = 1

// Collection flags recorded in the document header.
const (
	// FlagBranch marks a profile collected with branch records (LBR).
	FlagBranch = 1 << 0
	// FlagSample marks a sample-only profile with no branch records.
	FlagSample = 1 << 1
)

// HashKind identifies the function that produced the structural hashes
// recorded in the profile.
type HashKind int

const (
	HashLegacy HashKind = iota
	HashXXH3
)

func (k HashKind) String() string {
	switch k {
	case HashXXH3:
		return "xxh3"
	default:
		return "legacy"
	}
}

// UnmarshalYAML accepts the textual hash-function names used by profile
// writers.
func (k *HashKind) UnmarshalYAML(unmarshal func(any) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	switch name {
	case "", "legacy", "std-hash":
		*k = HashLegacy
	case "xxh3":
		*k = HashXXH3
	default:
		return fmt.Errorf("unknown hash function %q", name)
	}
	return nil
}

// Header describes how the profile was collected.
type Header struct {
	Version    int      `yaml:"version"`
	BinaryName string   `yaml:"binary-name,omitempty"`
	EventNames string   `yaml:"events,omitempty"`
	Flags      uint8    `yaml:"flags"`
	IsDFSOrder bool     `yaml:"dfs-order,omitempty"`
	HashFunc   HashKind `yaml:"hash-func,omitempty"`
}

// SampleOnly reports whether the profile carries only per-block sample
// counts with no branch records.
func (h Header) SampleOnly() bool {
	return h.Flags&FlagSample != 0
}

// Successor is one recorded branch from a profiled block to another block
// of the same function, identified by the target's block index.
type Successor struct {
	Index    uint32 `yaml:"bid"`
	Count    uint64 `yaml:"cnt,omitempty"`
	Mispreds uint64 `yaml:"mis,omitempty"`
}

// CallSite is one recorded call from a profiled block. DestID references
// the callee's function record by id and is nil when the call target is not
// a profiled function. Offset is the byte offset of the call instruction
// within the source block. EntryDiscriminator selects a secondary entry
// point of a multi-entry callee; zero is the primary entry.
type CallSite struct {
	DestID             *uint32 `yaml:"fid,omitempty"`
	Offset             uint64  `yaml:"off,omitempty"`
	Count              uint64  `yaml:"cnt,omitempty"`
	Mispreds           uint64  `yaml:"mis,omitempty"`
	EntryDiscriminator uint32  `yaml:"disc,omitempty"`
}

// Block is the profile record of one basic block, identified by its index
// in the ordering the profile writer used (see Header.IsDFSOrder).
// EventCount is only meaningful for sample-only profiles.
type Block struct {
	Index      uint32      `yaml:"bid"`
	ExecCount  uint64      `yaml:"exec,omitempty"`
	EventCount uint64      `yaml:"events,omitempty"`
	Successors []Successor `yaml:"succ,omitempty"`
	CallSites  []CallSite  `yaml:"calls,omitempty"`
}

// Function is the profile record of one program function. The record is
// read-only after loading except for Used, which is set exactly once when
// the record enters the profile-to-function mapping.
type Function struct {
	ID        uint32  `yaml:"fid"`
	Name      string  `yaml:"name"`
	Hash      uint64  `yaml:"hash,omitempty"`
	NumBlocks uint32  `yaml:"nblocks"`
	ExecCount uint64  `yaml:"exec,omitempty"`
	Blocks    []Block `yaml:"blocks,omitempty"`

	Used bool `yaml:"-"`
}

// RawBranchCount sums every successor count recorded for the function.
func (f *Function) RawBranchCount() uint64 {
	var total uint64
	for _, bb := range f.Blocks {
		for _, si := range bb.Successors {
			total += si.Count
		}
	}
	return total
}

// Document is a fully loaded profile.
type Document struct {
	Header    Header      `yaml:"header"`
	Functions []*Function `yaml:"functions"`
}

// UsesEvent reports whether the declared event names mention the given
// event.
func (d *Document) UsesEvent(name string) bool {
	return strings.Contains(d.Header.EventNames, name)
}

// HasLocalsWithFileName reports whether any profiled function name refers
// to a file-local symbol, i.e. carries the "name/file/id" uniquification
// applied to local symbols.
func (d *Document) HasLocalsWithFileName() bool {
	for _, fn := range d.Functions {
		if strings.Count(fn.Name, "/") == 2 && fn.Name[0] != '/' {
			return true
		}
	}
	return false
}
