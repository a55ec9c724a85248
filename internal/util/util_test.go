package util

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"os"
	"os/user"
	"path/filepath"
	"testing"
)

func TestExpandUser(t *testing.T) {
	usr, err := user.Current()
	if err != nil {
		t.Fatalf("failed to get current user: %v", err)
	}
	tests := []struct {
		path     string
		expected string
	}{
		{"~", usr.HomeDir},
		{"~" + string(os.PathSeparator) + "x", filepath.Join(usr.HomeDir, "x")},
		{"/abs/path", "/abs/path"},
		{"relative", "relative"},
	}
	for _, test := range tests {
		if result := ExpandUser(test.path); result != test.expected {
			t.Errorf("expected %s, got %s for %s", test.expected, result, test.path)
		}
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	exists, err := FileExists(path)
	if err != nil || !exists {
		t.Errorf("expected file to exist, got exists=%v err=%v", exists, err)
	}
	exists, err = FileExists(filepath.Join(dir, "missing"))
	if err != nil || exists {
		t.Errorf("expected file to not exist, got exists=%v err=%v", exists, err)
	}
	if _, err = FileExists(dir); err == nil {
		t.Error("expected error for directory path")
	}
}
