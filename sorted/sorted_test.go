// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package sorted_test

import (
	"strings"
	"testing"

	"github.com/ELD/proc-macro-workshop/internal/testutil"
	"github.com/ELD/proc-macro-workshop/sorted"
	"github.com/ELD/proc-macro-workshop/syntax"
)

func TestSorted(t *testing.T) {
	t.Parallel()
	testutil.RunGolden(t, "sorted/sorted", sorted.Sorted)
}

func TestCheck(t *testing.T) {
	t.Parallel()
	testutil.RunGolden(t, "sorted/check", sorted.Check)
}

func TestSortedMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src  string
		want string
	}{
		{"enum E { Beta, Alpha }", "Alpha should sort before Beta"},
		{"enum E { Alpha, Delta, Gamma, Beta }", "Beta should sort before Delta"},
		{"enum E { B, C, A, D }", "A should sort before B"},
	}
	for _, test := range tests {
		t.Run(test.src, func(t *testing.T) {
			item := testutil.ParseOrDie(t, test.src)
			out, err := sorted.Sorted(nil, item)
			diag := testutil.AssertDiagnostic(t, err, 5002)
			testutil.ExpectEq(t, test.want, diag.Message())
			testutil.ExpectTokens(t, test.src, out)
		})
	}
}

func TestSortedPassesItemThrough(t *testing.T) {
	t.Parallel()

	item := testutil.ParseOrDie(t, "enum E { A, B }")
	out, err := sorted.Sorted(nil, item)
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, len(item), len(out))
	for ii := range item {
		testutil.ExpectEq(t, item[ii], out[ii])
	}
}

func TestCheckPathKeys(t *testing.T) {
	t.Parallel()

	src := "fn f() { #[sorted] match e { Error::Io(e) => 1, Error::Fmt(e) => 2 } }"
	_, err := sorted.Check(nil, testutil.ParseOrDie(t, src))
	diag := testutil.AssertDiagnostic(t, err, 5003)
	testutil.ExpectEq(t, "Error::Fmt should sort before Error::Io", diag.Message())
	testutil.ExpectEq(t, syntax.NewSpan(uint32(strings.Index(src, "Error::Fmt")), 10), diag.Span())
}

func TestCheckMatchesCollectsErrors(t *testing.T) {
	t.Parallel()

	src := `fn f() {
		#[sorted]
		match a { C => 1, A => 2, 0 => 3, B => 4 }
		#[sorted]
		match b { Y => 1, X => 2 }
	}`
	result, err := sorted.CheckMatches(testutil.ParseOrDie(t, src))
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, 3, len(result.Errors))

	var messages []string
	for _, err := range result.Errors {
		messages = append(messages, err.(*sorted.Error).Message())
	}
	// B is compared with A, the arm before it, not with C.
	testutil.ExpectSliceEq(t, []string{
		"A should sort before C",
		"unsupported by #[sorted]",
		"X should sort before Y",
	}, messages)

	testutil.ExpectTokens(t, "fn f() { match a { C => 1, A => 2, 0 => 3, B => 4 } match b { Y => 1, X => 2 } }", result.Tokens)

	_, err = sorted.Check(nil, testutil.ParseOrDie(t, src))
	diag := testutil.AssertDiagnostic(t, err, 5003)
	testutil.ExpectEq(t, "A should sort before C", diag.Message())
}

func TestCheckStripsMarkerOnError(t *testing.T) {
	t.Parallel()

	out, err := sorted.Check(nil, testutil.ParseOrDie(t, "fn f() { #[sorted] match e { B => 1, A => 2 } }"))
	testutil.AssertDiagnostic(t, err, 5003)
	testutil.ExpectTokens(t, "fn f() { match e { B => 1, A => 2 } }", out)
}

func TestCheckWildcardStopsMatch(t *testing.T) {
	t.Parallel()

	src := "fn f() { #[sorted] match e { _ => 0, B => 1, A => 2 } }"
	result, err := sorted.CheckMatches(testutil.ParseOrDie(t, src))
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, 1, len(result.Errors))
	diag := testutil.AssertDiagnostic(t, result.Errors[0], 5004)
	testutil.ExpectEq(t, syntax.NewSpan(uint32(strings.Index(src, "_")), 1), diag.Span())
}

func TestCheckDoesNotSearchMatchArms(t *testing.T) {
	t.Parallel()

	src := "fn f() { match a { X => #[sorted] match b { B => 1, A => 2 }, } }"
	result, err := sorted.CheckMatches(testutil.ParseOrDie(t, src))
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, 0, len(result.Errors))
	testutil.ExpectTokens(t, src, result.Tokens)
}

func TestCheckBlockScrutinee(t *testing.T) {
	t.Parallel()

	src := "fn f() { #[sorted] match { x } { B => 1, A => 2, } }"
	result, err := sorted.CheckMatches(testutil.ParseOrDie(t, src))
	testutil.AssertNoError(t, err)
	testutil.AssertEq(t, 1, len(result.Errors))
	diag := testutil.AssertDiagnostic(t, result.Errors[0], 5003)
	testutil.ExpectEq(t, "A should sort before B", diag.Message())
	testutil.ExpectTokens(t, "fn f() { match { x } { B => 1, A => 2, } }", result.Tokens)

	result, err = sorted.CheckMatches(testutil.ParseOrDie(t,
		"fn f() { #[sorted] match { y } { A => 1, B => 2, } }"))
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, 0, len(result.Errors))
}

func TestCheckArguments(t *testing.T) {
	t.Parallel()

	_, err := sorted.Check(testutil.ParseOrDie(t, "x"), testutil.ParseOrDie(t, "fn f() {}"))
	testutil.AssertDiagnostic(t, err, 5005)
}
