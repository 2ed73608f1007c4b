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

package main

import (
	"testing"

	"github.com/ELD/proc-macro-workshop/internal/testutil"
)

func TestBuildArgs(t *testing.T) {
	t.Parallel()

	testutil.ExpectSliceEq(t,
		[]string{"build", "-target=wasm-unknown", "-o=/out/macro-stringify.wasm", "."},
		buildArgs("/out/macro-stringify.wasm", nil))
	testutil.ExpectSliceEq(t,
		[]string{"build", "-target=wasm-unknown", "-o=/out/p.wasm", "./bin/macro-stringify"},
		buildArgs("/out/p.wasm", []string{"./bin/macro-stringify"}))
}
