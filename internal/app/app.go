// Package app holds application-wide constants shared by the command
// packages.
package app

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Name is the name of the application.
const Name = "profrec"

// Flag names shared across subcommands.
const (
	FlagProfileName = "profile"
	FlagProgramName = "program"
)
