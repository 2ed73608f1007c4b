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

package expand_test

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/ELD/proc-macro-workshop/expand"
	"github.com/ELD/proc-macro-workshop/internal/testutil"
	"github.com/ELD/proc-macro-workshop/macro"
	"github.com/ELD/proc-macro-workshop/syntax"
)

func expandOrDie(t *testing.T, src string, opts ...expand.Option) *expand.Result {
	t.Helper()
	result, err := expand.Source([]byte(src), opts...)
	testutil.AssertNoError(t, err)
	return result
}

func TestExpandClean(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		src        string
		want       string
		expansions int
	}{
		{
			name:       "item_seq",
			src:        "seq!(N in 0..3 { fn f#N() {} });\nfn main() {}",
			want:       "fn f0() {} fn f1() {} fn f2() {} fn main() {}",
			expansions: 1,
		},
		{
			name:       "brace_invocation",
			src:        "seq! { N in 0..2 { struct S#N; } }",
			want:       "struct S0; struct S1;",
			expansions: 1,
		},
		{
			name:       "expression_keeps_semicolon",
			src:        "fn f() { let n = eseq!(N in 1..3 { N + }) 0; let m = seq!(N in 0..1 { N }); }",
			want:       "fn f() { let n = 1 + 2 + 0; let m = 0; }",
			expansions: 2,
		},
		{
			name:       "path_invocation",
			src:        "macros::seq!{N in 0..2 { N }}",
			want:       "0 1",
			expansions: 1,
		},
		{
			name:       "nested_in_module",
			src:        "mod m { seq!(N in 0..2 { const C#N: u8 = N; }); }",
			want:       "mod m { const C0: u8 = 0; const C1: u8 = 1; }",
			expansions: 1,
		},
		{
			name:       "generate_bits",
			src:        "generate_bits!(1..=2);",
			want:       "pub enum B1 {} impl Specifier for B1 { const BITS: usize = 1; } pub enum B2 {} impl Specifier for B2 { const BITS: usize = 2; }",
			expansions: 1,
		},
		{
			name:       "bitfield",
			src:        "#[bitfield] pub struct MyByte { a: B1, b: B3, c: B4, } fn main() {}",
			want:       "#[repr(C)] pub struct MyByte { data: [u8; 1], } impl MyByte { fn new() -> Self { Self { data: [0; 1], } } } fn main() {}",
			expansions: 1,
		},
		{
			name:       "sorted",
			src:        "#[derive(Debug)] #[sorted] enum E { A, B, C }",
			want:       "#[derive(Debug)] enum E { A, B, C }",
			expansions: 1,
		},
		{
			name:       "sorted_check",
			src:        "#[sorted::check] fn f(x: E) -> u8 { #[sorted] match x { A => 1, B => 2, } }",
			want:       "fn f(x: E) -> u8 { match x { A => 1, B => 2, } }",
			expansions: 1,
		},
		{
			name:       "unknown_macros_untouched",
			src:        "println!(\"{}\", x); #[derive(Debug)] struct S;",
			want:       "println!(\"{}\", x); #[derive(Debug)] struct S;",
			expansions: 0,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := expandOrDie(t, test.src)
			testutil.ExpectEq(t, 0, len(result.Diagnostics))
			testutil.ExpectEq(t, test.expansions, result.Expansions)
			testutil.ExpectTokens(t, test.want, result.Tokens)
		})
	}
}

func TestExpandReportsDiagnostics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
		code uint32
		span syntax.Span
	}{
		{
			name: "sorted_keeps_item",
			src:  "#[sorted] enum E { Beta, Alpha }",
			want: `enum E { Beta, Alpha } compile_error! { "Alpha should sort before Beta" }`,
			code: 5002,
			span: syntax.NewSpan(25, 5),
		},
		{
			name: "sorted_arguments",
			src:  "#[sorted(x)] enum E {}",
			want: `enum E {} compile_error! { "#[sorted] takes no arguments" }`,
			code: 5005,
			span: syntax.NewSpan(9, 1),
		},
		{
			name: "attribute_without_item",
			src:  "#[sorted]",
			want: `compile_error! { "Expected item after #[sorted]" }`,
			code: 7000,
			span: syntax.NewSpan(0, 9),
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := expandOrDie(t, test.src)
			testutil.ExpectEq(t, 1, result.Expansions)
			testutil.AssertEq(t, 1, len(result.Diagnostics))
			testutil.ExpectEq(t, test.code, result.Diagnostics[0].Code())
			testutil.ExpectEq(t, test.span, result.Diagnostics[0].Span())
			testutil.ExpectTokens(t, test.want, result.Tokens)
		})
	}
}

func TestExpandFuncError(t *testing.T) {
	t.Parallel()

	result := expandOrDie(t, "seq!(N of 0..3 {});")
	testutil.AssertEq(t, 1, len(result.Diagnostics))
	diag := result.Diagnostics[0]
	testutil.ExpectEq(t, uint32(3000), diag.Code())
	testutil.ExpectEq(t, syntax.NewSpan(7, 2), diag.Span())

	testutil.AssertEq(t, 3, len(result.Tokens))
	testutil.ExpectTrue(t, syntax.IsIdent(result.Tokens[0], "compile_error"))
	testutil.ExpectEq(t, diag.Span(), result.Tokens[0].Span())
}

func TestExpandSourceSyntaxError(t *testing.T) {
	t.Parallel()

	_, err := expand.Source([]byte("seq!(N in 0..3 {"))
	testutil.AssertDiagnostic(t, err, 1010)
}

func TestExpandGenerateBitsWidths(t *testing.T) {
	t.Parallel()

	result := expandOrDie(t,
		"generate_bits!(0..=72); #[bitfield] pub struct S { a: B72, b: B0, c: B8 }")
	testutil.AssertEq(t, 0, len(result.Diagnostics))
	testutil.ExpectMatch(t, `pub struct S \{\s*data\s*:\s*\[\s*u8\s*;\s*10\s*\]`, syntax.Unparse(result.Tokens))

	// Declared widths belong to the expansion that declared them.
	result = expandOrDie(t, "#[bitfield] struct T { a: B72 }")
	testutil.AssertEq(t, 1, len(result.Diagnostics))
	testutil.ExpectEq(t, uint32(4003), result.Diagnostics[0].Code())
}

func TestExpandReWalksAttributeOutput(t *testing.T) {
	t.Parallel()

	macros := expand.DefaultMacros()
	macros.AddAttr("identity", func(args, item syntax.TokenStream) (syntax.TokenStream, error) {
		return item, nil
	})
	result := expandOrDie(t,
		"#[identity] fn f() { seq!(N in 0..2 { g(N); }) }",
		expand.WithMacros(macros))
	testutil.ExpectEq(t, 2, result.Expansions)
	testutil.ExpectTokens(t, "fn f() { g(0); g(1); }", result.Tokens)
}

func TestExpandDoesNotReWalkFuncOutput(t *testing.T) {
	t.Parallel()

	macros := macro.NewSet()
	macros.AddFunc("quine", func(input syntax.TokenStream) (syntax.TokenStream, error) {
		return syntax.Quote(input.Span(), "quine!(x)"), nil
	})
	result := expandOrDie(t, "quine!(y);", expand.WithMacros(macros))
	testutil.ExpectEq(t, 1, result.Expansions)
	testutil.ExpectTokens(t, "quine!(x)", result.Tokens)
}

type fakeResolver map[string]macro.Func

var errBrokenPlugin = errors.New("broken plugin")

func (r fakeResolver) ResolveFunc(name string) (macro.Func, bool, error) {
	if name == "broken" {
		return nil, false, errBrokenPlugin
	}
	fn, ok := r[name]
	return fn, ok, nil
}

func TestExpandResolver(t *testing.T) {
	t.Parallel()

	resolver := fakeResolver{
		"double": func(input syntax.TokenStream) (syntax.TokenStream, error) {
			return append(append(syntax.TokenStream{}, input...), input...), nil
		},
	}
	result := expandOrDie(t, "double!(a); broken!(b); other!(c);", expand.WithResolver(resolver))
	testutil.ExpectEq(t, 1, result.Expansions)
	testutil.ExpectTokens(t, "a a broken!(b); other!(c);", result.Tokens)

	testutil.AssertEq(t, 1, len(result.Diagnostics))
	diag := result.Diagnostics[0]
	testutil.ExpectEq(t, uint32(0), diag.Code())
	testutil.ExpectEq(t, syntax.NewSpan(12, 6), diag.Span())
	testutil.ExpectTrue(t, errors.Is(diag, errBrokenPlugin))
}

func TestExpandLogsSuggestions(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)
	result := expandOrDie(t, "sq!(N in 0..1 {}); seq!(N in 0..1 {});", expand.WithLogger(logger))
	testutil.ExpectEq(t, 1, result.Expansions)
	testutil.ExpectMatch(t, `unknown macro sq! at offset 0 \(did you mean seq!\?\)`, buf.String())
	testutil.ExpectMatch(t, `expanding seq! at offset 19`, buf.String())
}
