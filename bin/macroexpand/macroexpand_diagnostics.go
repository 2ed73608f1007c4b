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
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/ELD/proc-macro-workshop/macro"
)

type sourceFile struct {
	name       string
	src        []byte
	lineStarts []int
}

func newSourceFile(name string, src []byte) *sourceFile {
	lineStarts := []int{0}
	for ii, c := range src {
		if c == '\n' {
			lineStarts = append(lineStarts, ii+1)
		}
	}
	return &sourceFile{
		name:       name,
		src:        src,
		lineStarts: lineStarts,
	}
}

// position maps a byte offset to a 1-based line and column, counting
// columns in runes.
func (f *sourceFile) position(offset uint32) (line, col int) {
	off := min(int(offset), len(f.src))
	idx := sort.Search(len(f.lineStarts), func(ii int) bool {
		return f.lineStarts[ii] > off
	}) - 1
	col = utf8.RuneCount(f.src[f.lineStarts[idx]:off]) + 1
	return idx + 1, col
}

func (f *sourceFile) line(line int) string {
	start := f.lineStarts[line-1]
	end := len(f.src)
	if line < len(f.lineStarts) {
		end = f.lineStarts[line] - 1
	}
	return strings.TrimSuffix(string(f.src[start:end]), "\r")
}

// renderDiagnostic formats diag in the style of rustc:
//
//	error[E5002]: Alpha should sort before Beta
//	 --> lib.rs:1:26
//	  |
//	1 | #[sorted] enum E { Beta, Alpha }
//	  |                          ^^^^^
func renderDiagnostic(file *sourceFile, diag macro.Diagnostic) string {
	redBold := color.New(color.FgRed, color.Bold).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	span := diag.Span()
	line, col := file.position(span.Start())
	endLine, endCol := file.position(span.End())
	text := file.line(line)
	if endLine != line {
		endCol = utf8.RuneCountInString(text) + 1
	}
	width := max(endCol-col, 1)

	header := "error"
	if diag.Code() != 0 {
		header = fmt.Sprintf("error[E%d]", diag.Code())
	}
	gutter := len(fmt.Sprintf("%d", line))
	pad := strings.Repeat(" ", gutter)

	lines := []string{
		redBold(header) + bold(": "+diag.Message()),
		fmt.Sprintf("%s%s %s:%d:%d", pad, blue("-->"), file.name, line, col),
		fmt.Sprintf("%s %s", pad, blue("|")),
		fmt.Sprintf("%s %s %s", blue(fmt.Sprintf("%d", line)), blue("|"), text),
		fmt.Sprintf("%s %s %s%s", pad, blue("|"),
			strings.Repeat(" ", col-1), red(strings.Repeat("^", width))),
	}
	return strings.Join(lines, "\n")
}
