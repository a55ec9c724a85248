package nameutil

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLTOCommonName(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		ok       bool
	}{
		{"bar.lto_priv.1", "bar", true},
		{"bar.lto_priv.2", "bar", true},
		{"foo.constprop.0", "foo", true},
		{"baz.__uniq.12345", "baz", true},
		{"qux.llvm.987", "qux", true},
		{"plain", "", false},
		{"lto_priv.nomarker", "", false},
	}
	for _, test := range tests {
		common, ok := LTOCommonName(test.name)
		assert.Equal(t, test.ok, ok, test.name)
		assert.Equal(t, test.expected, common, test.name)
	}
}

func TestStripProfileSuffix(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"foo(*2)", "foo"},
		{"foo", "foo"},
		{"operator()(*3)", "operator()"},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, StripProfileSuffix(test.name))
	}
}

func TestRestoreName(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"foo/file.c/1", "foo"},
		{"foo/1", "foo"},
		{"foo", "foo"},
		{"/absolute/path", "/absolute/path"},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, RestoreName(test.name))
	}
}

func TestDemangle(t *testing.T) {
	// Itanium-mangled names demangle, everything else passes through.
	assert.Equal(t, "foo()", Demangle("_Z3foov"))
	assert.Equal(t, "ns::foo()", Demangle("_ZN2ns3fooEv"))
	assert.Equal(t, "not_mangled", Demangle("not_mangled"))
	assert.Equal(t, "local", Demangle("local/file.c/1"))
}

func TestNamespace(t *testing.T) {
	tests := []struct {
		demangled string
		expected  string
	}{
		{"ns::foo(int)", "ns"},
		{"ns::foo", "ns"},
		{"outer::inner::foo()", "outer::inner"},
		{"std::vector<int>::size()", "std::vector<int>"},
		{"std::map<std::string, int>::at(std::string const&)", "std::map<std::string, int>"},
		{"ns::operator()(int)", "ns"},
		{"foo()", ""},
		{"foo", ""},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, Namespace(test.demangled), test.demangled)
	}
}
