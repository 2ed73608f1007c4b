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
	"fmt"
	"os"
)

// writeOutput writes output to outPath, or to stdout if outPath is empty.
func writeOutput(outPath, output string) error {
	if outPath == "" {
		_, err := os.Stdout.WriteString(output)
		return err
	}

	openFlags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	fp, err := os.OpenFile(outPath, openFlags, 0o666)
	if err != nil {
		return err
	}
	_, writeErr := fp.WriteString(output)
	closeErr := fp.Close()
	if writeErr != nil {
		return writeErr
	}
	return closeErr
}

func usageError(usage string) int {
	fmt.Fprintf(os.Stderr, "usage: macroexpand %s\n", usage)
	return 1
}
