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

// Command macro-stringify is an example macroexpand plugin. Built with
// TinyGo it exports the plugin ABI as macro-stringify.wasm; built natively
// it stringifies its argument for debugging.
package main

import (
	"github.com/ELD/proc-macro-workshop/syntax"
)

// stringify renders the invocation input as one string literal, so that
// `stringify!(a + b)` expands to `"a + b"`.
func stringify(request []byte) ([]byte, error) {
	input, err := syntax.Parse(request)
	if err != nil {
		return nil, err
	}
	lit := syntax.NewTextLit(syntax.Unparse(input), input.Span())
	return []byte(syntax.Unparse(syntax.TokenStream{lit})), nil
}
