package program

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDescription = `
functions:
  - name: main
    aliases: [main.cold]
    blocks:
      - offset: 0
        size: 8
        succs: [1, 2]
        instrs:
          - offset: 4
            kind: call
      - offset: 8
        size: 4
        succs: [2]
      - offset: 12
        size: 4
    entries:
      - block: 2
        symbol: main.unwind
  - name: helper
    blocks:
      - offset: 0
        size: 8
        code: "90e800000000ffe0"
`

func TestLoadDescription(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleDescription), 0644))

	funcs, err := LoadDescription(path)
	require.NoError(t, err)
	require.Len(t, funcs, 2)

	main := funcs[0]
	assert.Equal(t, "main", main.Name())
	assert.Equal(t, []string{"main", "main.cold"}, main.Names())
	assert.Equal(t, 3, main.NumBlocks())

	blocks := main.LayoutOrder()
	assert.Equal(t, 2, blocks[0].SuccCount())
	assert.Equal(t, blocks[2], blocks[0].FallthroughSuccessor())
	require.NotNil(t, main.InstrAtOffset(4))
	assert.Equal(t, InstrCall, main.InstrAtOffset(4).Kind)
	assert.Equal(t, "main.unwind", main.EntrySymbol(1))
	assert.True(t, blocks[2].IsEntryPoint())

	// Raw code decodes into classified instructions.
	helper := funcs[1]
	instrs := helper.LayoutOrder()[0].Instructions()
	require.Len(t, instrs, 3)
	assert.Equal(t, InstrCall, instrs[1].Kind)
	assert.Equal(t, InstrIndirectBranch, instrs[2].Kind)
}

func TestBuildErrors(t *testing.T) {
	desc := &Description{Functions: []FunctionDesc{{
		Name:   "f",
		Blocks: []BlockDesc{{Size: 4, Successors: []int{7}}},
	}}}
	_, err := desc.Build()
	assert.Error(t, err, "successor index out of range")

	desc = &Description{Functions: []FunctionDesc{{
		Name:   "f",
		Blocks: []BlockDesc{{Size: 4, Instrs: []InstrDesc{{Kind: "bogus"}}}},
	}}}
	_, err = desc.Build()
	assert.Error(t, err, "unknown instruction kind")

	desc = &Description{Functions: []FunctionDesc{{
		Name:    "f",
		Blocks:  []BlockDesc{{Size: 4}},
		Entries: []EntryDesc{{Block: 3, Symbol: "x"}},
	}}}
	_, err = desc.Build()
	assert.Error(t, err, "entry block out of range")
}
