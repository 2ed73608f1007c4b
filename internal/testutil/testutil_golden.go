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

package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"sync"
	"testing"

	"github.com/ELD/proc-macro-workshop/syntax"
)

var (
	catalogueOnce sync.Once
	catalogue     map[string]*Diagnostic
	catalogueErr  error
)

// Catalogue returns the diagnostics catalogue of the repository testdata.
func Catalogue(t *testing.T) map[string]*Diagnostic {
	t.Helper()
	catalogueOnce.Do(func() {
		var testdata fs.FS
		testdata, catalogueErr = TestdataFS()
		if catalogueErr == nil {
			catalogue, catalogueErr = LoadDiagnostics(testdata)
		}
	})
	AssertNoError(t, catalogueErr)
	return catalogue
}

// GoldenFunc runs a macro over the parsed args (empty for function-like
// macros) and input of one golden case.
type GoldenFunc func(args, input syntax.TokenStream) (syntax.TokenStream, error)

// RunGolden runs every case of testdata/<path>.json.
//
// Cases under "expect_ok" compare the macro output against "expect". Cases
// under "expect_err" check the named diagnostic and, when present, its
// "error_span" within "source".
func RunGolden(t *testing.T, path string, run GoldenFunc) {
	t.Helper()

	testdata, err := TestdataFS()
	AssertNoError(t, err)
	casesPath := path + ".json"
	t.Logf("reading test cases from %q", "testdata/"+casesPath)

	casesJSON, err := fs.ReadFile(testdata, casesPath)
	AssertNoError(t, err)

	cases := make(map[string][]map[string]interface{})
	decoder := json.NewDecoder(bytes.NewReader(casesJSON))
	decoder.UseNumber()
	AssertNoError(t, decoder.Decode(&cases))

	for ii, test := range cases["expect_ok"] {
		t.Run(caseName("expect_ok", ii, test), func(t *testing.T) {
			got, err := runGoldenCase(t, test, run)
			AssertNoError(t, err)
			ExpectTokens(t, test["expect"].(string), got)
		})
	}

	for ii, test := range cases["expect_err"] {
		t.Run(caseName("expect_err", ii, test), func(t *testing.T) {
			_, err := runGoldenCase(t, test, run)
			ExpectDiagnostic(t, Catalogue(t), test["error"].(string), err)
			if span, ok := test["error_span"]; ok {
				diag := AssertDiagnostic(t, err, Catalogue(t)[test["error"].(string)].Code)
				ExpectEq(t, SpanOrDie(t, span), diag.Span())
			}
		})
	}
}

func caseName(kind string, index int, test map[string]interface{}) string {
	if name, ok := test["name"].(string); ok {
		return fmt.Sprintf("%s/%s", kind, name)
	}
	return fmt.Sprintf("%s/%d", kind, index)
}

func runGoldenCase(
	t *testing.T,
	test map[string]interface{},
	run GoldenFunc,
) (syntax.TokenStream, error) {
	t.Helper()
	src := test["source"].(string)
	t.Logf("source: %q", src)

	var args syntax.TokenStream
	if rawArgs, ok := test["args"].(string); ok {
		args = ParseOrDie(t, rawArgs)
	}
	return run(args, ParseOrDie(t, src))
}
