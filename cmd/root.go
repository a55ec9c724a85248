// Package cmd provides the command line interface for the application.
package cmd

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"profrec/cmd/apply"
	"profrec/cmd/inspect"
	"profrec/internal/app"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var gVersion = "9.9.9" // overwritten by ldflags in Makefile

var examples = []string{
	fmt.Sprintf("  Summarize a profile document:        $ %s inspect --profile perf.yaml", app.Name),
	fmt.Sprintf("  Apply a profile to a program:        $ %s apply --profile perf.yaml --program prog.yaml", app.Name),
	fmt.Sprintf("  Match renamed functions by hash:     $ %s apply --profile perf.yaml --program prog.yaml --match-by-hash", app.Name),
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:               app.Name,
	Short:             app.Name,
	Long:              fmt.Sprintf(`%s reconciles externally captured execution profiles with the control-flow structure of the binary being optimized.`, app.Name),
	Example:           strings.Join(examples, "\n"),
	PersistentPreRunE: initializeApplication,
	Version:           gVersion,
}

var flagDebug bool

const flagDebugName = "debug"

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{}) // block the help command
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.AddGroup([]*cobra.Group{{ID: "primary", Title: "Commands:"}}...)
	rootCmd.AddCommand(inspect.Cmd)
	rootCmd.AddCommand(apply.Cmd)
	// Global (persistent) flags
	rootCmd.PersistentFlags().BoolVar(&flagDebug, flagDebugName, false, "enable debug logging")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.EnableCommandSorting = false
	cobra.EnableCaseInsensitive = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func initializeApplication(cmd *cobra.Command, args []string) error {
	var logOpts slog.HandlerOptions
	if flagDebug {
		logOpts.Level = slog.LevelDebug
		logOpts.AddSource = true
	} else {
		logOpts.Level = slog.LevelInfo
		logOpts.AddSource = false
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &logOpts)))
	slog.Debug("Starting up", slog.String("app", app.Name), slog.String("version", gVersion), slog.String("arguments", strings.Join(os.Args, " ")))
	cmd.Flags().Visit(func(f *pflag.Flag) {
		slog.Debug("flag", slog.String("name", f.Name), slog.String("value", f.Value.String()))
	})
	return nil
}
