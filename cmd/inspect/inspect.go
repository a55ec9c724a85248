// Package inspect is a subcommand of the root command. It loads and
// validates a profile document and prints a summary of its contents.
package inspect

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"strings"

	"profrec/internal/app"
	"profrec/internal/profile"
	"profrec/internal/util"

	"github.com/spf13/cobra"
)

const cmdName = "inspect"

var examples = []string{
	fmt.Sprintf("  Summarize a profile:            $ %s %s --profile perf.yaml", app.Name, cmdName),
	fmt.Sprintf("  List every function record:     $ %s %s --profile perf.yaml --functions", app.Name, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Load, validate, and summarize a profile document",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

var (
	flagProfile   string
	flagFunctions bool
)

const flagFunctionsName = "functions"

func init() {
	Cmd.Flags().StringVar(&flagProfile, app.FlagProfileName, "", "path to the profile document")
	Cmd.Flags().BoolVar(&flagFunctions, flagFunctionsName, false, "list every function record")
	_ = Cmd.MarkFlagRequired(app.FlagProfileName)
}

func runCmd(cmd *cobra.Command, args []string) error {
	path, err := util.AbsPath(flagProfile)
	if err != nil {
		return err
	}
	doc, err := profile.Load(path)
	if err != nil {
		return err
	}

	header := doc.Header
	fmt.Printf("version:       %d\n", header.Version)
	if header.BinaryName != "" {
		fmt.Printf("binary:        %s\n", header.BinaryName)
	}
	fmt.Printf("hash function: %s\n", header.HashFunc)
	fmt.Printf("events:        %s\n", header.EventNames)
	fmt.Printf("block order:   %s\n", blockOrder(header.IsDFSOrder))
	fmt.Printf("sample only:   %t\n", header.SampleOnly())
	fmt.Printf("functions:     %d\n", len(doc.Functions))

	var totalExec, totalBranches uint64
	for _, fn := range doc.Functions {
		totalExec += fn.ExecCount
		totalBranches += fn.RawBranchCount()
	}
	fmt.Printf("total executions: %d\n", totalExec)
	fmt.Printf("total branches:   %d\n", totalBranches)

	if flagFunctions {
		fmt.Println()
		for _, fn := range doc.Functions {
			fmt.Printf("%6d %12d %6d  %s\n", fn.ID, fn.ExecCount, fn.NumBlocks, fn.Name)
		}
	}
	return nil
}

func blockOrder(dfs bool) string {
	if dfs {
		return "depth-first"
	}
	return "layout"
}
