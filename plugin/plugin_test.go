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

package plugin_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ELD/proc-macro-workshop/expand"
	"github.com/ELD/proc-macro-workshop/internal/testutil"
	"github.com/ELD/proc-macro-workshop/plugin"
	"github.com/ELD/proc-macro-workshop/syntax"
)

func section(id byte, content ...byte) []byte {
	return append([]byte{id, byte(len(content))}, content...)
}

func exportFunc(name string, index byte) []byte {
	out := append([]byte{byte(len(name))}, name...)
	return append(out, 0x00, index)
}

// echoModule assembles a plugin whose response is its request. The request
// is allocated first, at 1024, so the response length can be stored in the
// four bytes before it.
func echoModule(rc byte) []byte {
	module := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	module = append(module, section(0x01,
		0x02,
		0x60, 0x01, 0x7f, 0x01, 0x7f,
		0x60, 0x03, 0x7f, 0x7f, 0x7f, 0x01, 0x7f,
	)...)
	module = append(module, section(0x03, 0x02, 0x00, 0x01)...)
	module = append(module, section(0x05, 0x01, 0x00, 0x01)...)
	module = append(module, section(0x06, 0x01, 0x7f, 0x01, 0x41, 0x80, 0x08, 0x0b)...)

	exports := []byte{0x02}
	exports = append(exports, exportFunc("macro_allocate", 0)...)
	exports = append(exports, exportFunc("macro_expand", 1)...)
	module = append(module, section(0x07, exports...)...)

	allocate := []byte{
		0x00,
		0x23, 0x00, // global.get $next
		0x23, 0x00,
		0x20, 0x00, // local.get $len
		0x6a,       // i32.add
		0x24, 0x00, // global.set $next
		0x0b,
	}
	expandBody := []byte{
		0x00,
		0x20, 0x00, 0x41, 0x04, 0x6b, // ptr - 4
		0x20, 0x01, // len
		0x36, 0x02, 0x00, // i32.store
		0x20, 0x02, // response_ptr_ptr
		0x20, 0x00, 0x41, 0x04, 0x6b, // ptr - 4
		0x36, 0x02, 0x00,
		0x41, rc,
		0x0b,
	}
	code := []byte{0x02, byte(len(allocate))}
	code = append(code, allocate...)
	code = append(code, byte(len(expandBody)))
	code = append(code, expandBody...)
	return append(module, section(0x0a, code...)...)
}

func writePlugin(t *testing.T, dir, name string, module []byte) {
	t.Helper()
	path := filepath.Join(dir, "macro-"+name+".wasm")
	testutil.AssertNoError(t, os.WriteFile(path, module, 0o644))
}

func newLoader(t *testing.T, searchPath ...string) *plugin.Loader {
	t.Helper()
	loader := plugin.NewLoader(context.Background(), searchPath)
	t.Cleanup(func() { loader.Close() })
	return loader
}

func TestSearchPath(t *testing.T) {
	t.Setenv(plugin.SearchPathEnv, "/env/a:/env/b")

	testutil.ExpectSliceEq(t, []string{"/x", "/y"}, plugin.SearchPath("/x::/y"))
	testutil.ExpectSliceEq(t, []string{"/env/a", "/env/b"}, plugin.SearchPath(""))
}

func TestLocate(t *testing.T) {
	t.Parallel()

	first := t.TempDir()
	second := t.TempDir()
	writePlugin(t, second, "echo", echoModule(0))
	loader := newLoader(t, first, second)

	path, err := loader.Locate("echo")
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, filepath.Join(second, "macro-echo.wasm"), path)

	_, err = loader.Locate("missing")
	testutil.ExpectDiagnostic(t, testutil.Catalogue(t), "plugin_not_found", err)

	_, err = loader.Func("missing")
	testutil.ExpectDiagnostic(t, testutil.Catalogue(t), "plugin_not_found", err)

	fn, ok, err := loader.ResolveFunc("missing")
	testutil.ExpectNoError(t, err)
	testutil.ExpectFalse(t, ok)
	testutil.ExpectTrue(t, fn == nil)
}

func TestEchoPlugin(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writePlugin(t, dir, "echo", echoModule(0))
	loader := newLoader(t, dir)

	fn, err := loader.Func("echo")
	testutil.AssertNoError(t, err)

	input := testutil.ParseOrDie(t, "fn f(x: u8) -> u8 { x + 1 }")
	for range 2 {
		out, err := fn(input)
		testutil.AssertNoError(t, err)
		testutil.ExpectTokens(t, "fn f(x: u8) -> u8 { x + 1 }", out)
		testutil.ExpectEq(t, input.Span(), out[0].Span())
	}
}

func TestPluginThroughExpand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writePlugin(t, dir, "echo", echoModule(0))
	loader := newLoader(t, dir)

	result, err := expand.Source(
		[]byte("echo!(struct S;); seq!(N in 0..2 { N }); unknown!(x);"),
		expand.WithResolver(loader))
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, 0, len(result.Diagnostics))
	testutil.ExpectEq(t, 2, result.Expansions)
	testutil.ExpectTokens(t, "struct S; 0 1 unknown!(x);", result.Tokens)
}

func TestPluginErrors(t *testing.T) {
	t.Parallel()
	catalogue := testutil.Catalogue(t)

	dir := t.TempDir()
	writePlugin(t, dir, "fail", echoModule(1))
	writePlugin(t, dir, "empty", []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00})
	writePlugin(t, dir, "garbage", []byte("not wasm"))
	loader := newLoader(t, dir)

	input := testutil.ParseOrDie(t, "boom")
	tests := []struct {
		name      string
		errorName string
		message   string
	}{
		{"fail", "plugin_failed", `Plugin "fail" failed: boom`},
		{"empty", "plugin_bad_response", `Plugin "empty" returned a malformed response: no linear memory`},
		{"garbage", "plugin_failed", ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			fn, err := loader.Func(test.name)
			testutil.AssertNoError(t, err)

			_, err = fn(input)
			testutil.ExpectDiagnostic(t, catalogue, test.errorName, err)
			if test.message != "" {
				testutil.ExpectEq(t, test.message, err.(*plugin.Error).Message())
			}
			testutil.ExpectEq(t, syntax.NewSpan(0, 4), err.(*plugin.Error).Span())
		})
	}
}
