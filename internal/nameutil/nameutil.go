/*
Package nameutil provides helpers for working with linker symbol names:
LTO-privatization suffix handling, uniquified-name restoration, C++
demangling, and namespace derivation.
*/
package nameutil

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"strings"

	"github.com/ianlancetaylor/demangle"
)

// ltoSuffixMarkers are the compiler-generated suffixes appended to symbols
// that were privatized or specialized during (thin-)LTO. A name carrying one
// of these markers originated from the source-level function named by the
// prefix before the marker.
var ltoSuffixMarkers = []string{".__uniq.", ".lto_priv.", ".constprop.", ".llvm."}

// LTOCommonName returns the name with a recognized LTO-privatization suffix
// stripped, e.g. "bar.lto_priv.1" -> "bar". The second return value is false
// when the name carries no recognized marker.
func LTOCommonName(name string) (string, bool) {
	for _, marker := range ltoSuffixMarkers {
		if pos := strings.Index(name, marker); pos != -1 {
			return name[:pos], true
		}
	}
	return "", false
}

// StripProfileSuffix removes the "(*N)" disambiguation suffix that profile
// writers append to duplicate symbol names, e.g. "foo(*2)" -> "foo".
func StripProfileSuffix(name string) string {
	if pos := strings.Index(name, "(*"); pos != -1 {
		return name[:pos]
	}
	return name
}

// RestoreName undoes local-symbol uniquification, which joins the original
// name with its source file and an id using '/' separators. Everything from
// the first separator on is dropped, e.g. "foo/file.c/1" -> "foo". Names
// starting with '/' are returned unchanged.
func RestoreName(name string) string {
	if pos := strings.IndexByte(name, '/'); pos > 0 {
		return name[:pos]
	}
	return name
}

// Demangle restores a possibly uniquified symbol name and demangles it. A
// name that does not demangle is returned in its restored form.
func Demangle(name string) string {
	return demangle.Filter(RestoreName(name))
}

// Namespace derives the enclosing scope of a demangled function name, e.g.
// "ns::foo(int)" -> "ns", "std::vector<int>::size()" -> "std::vector<int>".
// Names with no enclosing scope yield the empty string.
func Namespace(demangled string) string {
	// Cut the parameter list: the first '(' at top-level angle-bracket depth
	// ends the qualified name. "operator()" is kept intact.
	depth := 0
	nameEnd := len(demangled)
	for i := 0; i < len(demangled); i++ {
		switch demangled[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case '(':
			if depth == 0 {
				if strings.HasSuffix(demangled[:i], "operator") {
					continue
				}
				nameEnd = i
			}
		}
		if nameEnd != len(demangled) {
			break
		}
	}
	qualified := demangled[:nameEnd]

	// Last top-level "::" separates the scope from the function name.
	depth = 0
	lastSep := -1
	for i := 0; i+1 < len(qualified); i++ {
		switch qualified[i] {
		case '<', '(':
			depth++
		case '>', ')':
			if depth > 0 {
				depth--
			}
		case ':':
			if depth == 0 && qualified[i+1] == ':' {
				lastSep = i
				i++
			}
		}
	}
	if lastSep <= 0 {
		return ""
	}
	return qualified[:lastSep]
}
