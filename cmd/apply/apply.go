// Package apply is a subcommand of the root command. It loads a profile
// document and a program description, runs the matching cascade and the
// per-function projection, and prints the reconciliation outcome.
package apply

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"strings"

	"profrec/internal/app"
	"profrec/internal/program"
	"profrec/internal/reconcile"
	"profrec/internal/util"

	"github.com/spf13/cobra"
)

const cmdName = "apply"

var examples = []string{
	fmt.Sprintf("  Apply a profile:              $ %s %s --profile perf.yaml --program prog.yaml", app.Name, cmdName),
	fmt.Sprintf("  Tolerate recompiled hashes:   $ %s %s --profile perf.yaml --program prog.yaml --ignore-hash", app.Name, cmdName),
	fmt.Sprintf("  Match renamed functions:      $ %s %s --profile perf.yaml --program prog.yaml --match-by-hash", app.Name, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Reconcile a profile with a program description",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

var (
	flagProfile             string
	flagProgram             string
	flagVerbosity           int
	flagIgnoreHash          bool
	flagMatchByHash         bool
	flagSimilarityThreshold int
	flagLite                bool
)

const (
	flagVerbosityName           = "verbosity"
	flagIgnoreHashName          = "ignore-hash"
	flagMatchByHashName         = "match-by-hash"
	flagSimilarityThresholdName = "name-similarity-threshold"
	flagLiteName                = "lite"
)

func init() {
	Cmd.Flags().StringVar(&flagProfile, app.FlagProfileName, "", "path to the profile document")
	Cmd.Flags().StringVar(&flagProgram, app.FlagProgramName, "", "path to the program description")
	Cmd.Flags().IntVar(&flagVerbosity, flagVerbosityName, 0, "warning verbosity, 0-2")
	Cmd.Flags().BoolVar(&flagIgnoreHash, flagIgnoreHashName, false, "ignore structural hashes while matching")
	Cmd.Flags().BoolVar(&flagMatchByHash, flagMatchByHashName, false, "match renamed functions by structural hash")
	Cmd.Flags().IntVar(&flagSimilarityThreshold, flagSimilarityThresholdName, 0, "max edit distance for name-similarity matching, 0 disables")
	Cmd.Flags().BoolVar(&flagLite, flagLiteName, false, "drop unprofiled functions from further consideration")
	_ = Cmd.MarkFlagRequired(app.FlagProfileName)
	_ = Cmd.MarkFlagRequired(app.FlagProgramName)
}

func runCmd(cmd *cobra.Command, args []string) error {
	programPath, err := util.AbsPath(flagProgram)
	if err != nil {
		return err
	}
	profilePath, err := util.AbsPath(flagProfile)
	if err != nil {
		return err
	}
	funcs, err := program.LoadDescription(programPath)
	if err != nil {
		return err
	}

	cfg := reconcile.Config{
		Verbosity:               flagVerbosity,
		IgnoreHash:              flagIgnoreHash,
		MatchByHash:             flagMatchByHash,
		NameSimilarityThreshold: flagSimilarityThreshold,
		Lite:                    flagLite,
	}
	reader := reconcile.NewReader(profilePath, cfg)
	if err := reader.Preprocess(funcs); err != nil {
		return err
	}
	result, err := reader.ReadProfile(funcs)
	if err != nil {
		return err
	}

	fmt.Printf("matched by exact name:      %d\n", result.MatchedExactName)
	fmt.Printf("matched by hash:            %d\n", result.MatchedHash)
	fmt.Printf("matched by LTO common name: %d\n", result.MatchedLTOCommonName)
	fmt.Printf("matched by name similarity: %d\n", result.MatchedNameSimilarity)
	fmt.Printf("unused profiled objects:    %d\n", result.UnusedProfiles)

	stats := result.Stats
	fmt.Printf("mismatched blocks/calls/edges: %d/%d/%d\n",
		stats.MismatchedBlocks, stats.MismatchedCalls, stats.MismatchedEdges)
	fmt.Printf("hash/block-count disagreements: %d/%d\n",
		stats.HashMismatches, stats.BlockCountMismatches)
	fmt.Printf("unmatched profiles/functions: %d/%d\n",
		stats.UnmatchedProfiles, stats.UnmatchedFunctions)

	fmt.Println()
	for _, fn := range funcs {
		state := "no profile"
		if fn.IsProfiled() {
			state = "profiled"
		} else if fn.HasProfile() {
			state = "stale"
		}
		if fn.IsIgnored() {
			state += ", ignored"
		}
		count := fn.ExecutionCount()
		if count == program.CountNoProfile {
			count = 0
		}
		fmt.Printf("%12d  %-24s %s\n", count, fn.Name(), state)
	}
	return nil
}
