package profile

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Fatal load conditions. Wrapped errors returned by Load match these with
// errors.Is.
var (
	ErrUnsupportedVersion = errors.New("unsupported profile version")
	ErrMultipleEvents     = errors.New("multiple events in profile are not supported")
)

// IsYAML sniffs whether the file at path looks like a YAML profile
// document.
func IsYAML(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	prefix := make([]byte, 4)
	n, _ := f.Read(prefix)
	return bytes.HasPrefix(prefix[:n], []byte("---\n"))
}

// Load reads, decodes, and validates a profile document.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "cannot open %s", path)
	}
	return Parse(data)
}

// Parse decodes and validates a profile document from its serialized form.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("syntax error parsing profile: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the header-level constraints that make a document
// unusable as a whole.
func (d *Document) Validate() error {
	if d.Header.Version != SupportedVersion {
		return fmt.Errorf("cannot read profile version %d: %w", d.Header.Version, ErrUnsupportedVersion)
	}
	if strings.Contains(d.Header.EventNames, ",") {
		return fmt.Errorf("events %q: %w", d.Header.EventNames, ErrMultipleEvents)
	}
	return nil
}
