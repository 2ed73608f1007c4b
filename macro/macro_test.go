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

package macro_test

import (
	"errors"
	"testing"

	"github.com/ELD/proc-macro-workshop/internal/testutil"
	"github.com/ELD/proc-macro-workshop/macro"
	"github.com/ELD/proc-macro-workshop/syntax"
)

func TestSet(t *testing.T) {
	t.Parallel()

	identity := func(input syntax.TokenStream) (syntax.TokenStream, error) {
		return input, nil
	}
	strip := func(_, item syntax.TokenStream) (syntax.TokenStream, error) {
		return item, nil
	}

	set := macro.NewSet()
	set.AddFunc("seq", identity)
	set.AddFunc("eseq", identity)
	set.AddAttr("sorted::check", strip)

	_, ok := set.Func("seq")
	testutil.ExpectTrue(t, ok)
	_, ok = set.Func("sorted::check")
	testutil.ExpectFalse(t, ok)
	_, ok = set.Attr("sorted::check")
	testutil.ExpectTrue(t, ok)

	testutil.ExpectSliceEq(t, []string{"eseq", "seq"}, set.FuncNames())
	testutil.ExpectSliceEq(t, []string{"sorted::check"}, set.AttrNames())

	other := macro.NewSet()
	other.AddAttr("bitfield", strip)
	set.Merge(other)
	testutil.ExpectSliceEq(t, []string{"bitfield", "sorted::check"}, set.AttrNames())
}

func TestSuggest(t *testing.T) {
	t.Parallel()

	candidates := []string{"B1", "B8", "B18", "B64"}
	testutil.ExpectEq(t, "B8", macro.Suggest("b8", candidates))
	testutil.ExpectEq(t, "B64", macro.Suggest("B640", candidates))
	testutil.ExpectEq(t, "", macro.Suggest("u32", candidates))

	macros := []string{"bitfield", "eseq", "generate_bits", "seq", "sorted"}
	testutil.ExpectEq(t, "sorted", macro.Suggest("sortd", macros))
}

func TestCompileError(t *testing.T) {
	t.Parallel()

	ident := testutil.ParseOrDie(t, "x Beta")[1]
	_, err := testutil.ParseOrDie(t, "x Beta").Cursor().ExpectKeyword("in")
	testutil.AssertError(t, err)

	out := macro.CompileError(err, syntax.NewSpan(0, 0))
	testutil.ExpectEq(t, `compile_error! { "Expected keyword 'in', got (IDENT \"x\")" }`, syntax.Unparse(out))
	for _, tt := range out {
		testutil.ExpectEq(t, syntax.NewSpan(0, 1), tt.Span())
	}

	fallback := ident.Span()
	out = macro.CompileError(errors.New("plain failure"), fallback)
	testutil.ExpectEq(t, `compile_error! { "plain failure" }`, syntax.Unparse(out))
	testutil.ExpectEq(t, fallback, out[0].Span())
}

func TestDiagnosticOf(t *testing.T) {
	t.Parallel()

	_, err := syntax.ParseString("(]")
	diag := macro.DiagnosticOf(err, syntax.NewSpan(0, 0))
	testutil.ExpectEq(t, uint32(1011), diag.Code())
	testutil.ExpectEq(t, syntax.NewSpan(1, 1), diag.Span())

	cause := errors.New("no location")
	diag = macro.DiagnosticOf(cause, syntax.NewSpan(3, 2))
	testutil.ExpectEq(t, uint32(0), diag.Code())
	testutil.ExpectEq(t, "no location", diag.Message())
	testutil.ExpectEq(t, syntax.NewSpan(3, 2), diag.Span())
	testutil.ExpectTrue(t, errors.Is(diag, cause))
}
