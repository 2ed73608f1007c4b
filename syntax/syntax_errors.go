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

package syntax

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"
)

type Error struct {
	code    uint32
	message string
	span    Span
}

var _ error = (*Error)(nil)

func (err *Error) Error() string {
	return fmt.Sprintf("E%d: %s", err.code, err.message)
}

func (err *Error) Code() uint32 {
	return err.code
}

func (err *Error) Message() string {
	return err.message
}

func (err *Error) Span() Span {
	return err.span
}

// IsIncomplete reports whether err was caused by input that ended inside an
// open delimiter, literal or comment.
func IsIncomplete(err error) bool {
	var syntaxErr *Error
	if !errors.As(err, &syntaxErr) {
		return false
	}
	switch syntaxErr.code {
	case 1006, 1007, 1008, 1010:
		return true
	}
	return false
}

func clampLen(n int) uint32 {
	if uint64(n) < math.MaxUint32 {
		return uint32(n)
	}
	return math.MaxUint32
}

func errSourceTooLong(srcLen int) error {
	return &Error{
		code: 1000,
		message: fmt.Sprintf(
			"Source file size (%d bytes) exceeds maximum (%d bytes)",
			srcLen, maxSrcLen,
		),
		span: Span{0, clampLen(srcLen)},
	}
}

func errInvalidUtf8(src []byte) error {
	var off uint32
	for len(src) > 0 {
		r, size := utf8.DecodeRune(src)
		if r == utf8.RuneError {
			break
		}
		off += uint32(size)
		src = src[size:]
	}
	return &Error{
		code:    1001,
		message: "Source file contains invalid UTF-8",
		span:    Span{off, 1},
	}
}

func errUnexpectedCharacter(start uint32, r rune) error {
	return &Error{
		code:    1002,
		message: fmt.Sprintf("Unexpected character '%s' (U+%04X)", string(r), r),
		span:    Span{start, uint32(utf8.RuneLen(r))},
	}
}

func errForbiddenControlCharacter(start uint32, c byte) error {
	return &Error{
		code:    1003,
		message: fmt.Sprintf("Forbidden control character U+%04X", c),
		span:    Span{start, 1},
	}
}

func errTokenTooLong(start uint32, tokenLen int) error {
	return &Error{
		code: 1004,
		message: fmt.Sprintf(
			"Token size (%d bytes) exceeds maximum (%d bytes)",
			tokenLen, maxTokenLen,
		),
		span: Span{start, clampLen(tokenLen)},
	}
}

func errIntLitInvalid(start uint32, token []byte) error {
	return &Error{
		code:    1005,
		message: fmt.Sprintf("Invalid integer literal %q", token),
		span:    Span{start, clampLen(len(token))},
	}
}

func errTextLitUnterminated(start, tokenLen uint32) error {
	return &Error{
		code:    1006,
		message: "Unterminated text literal",
		span:    Span{start, tokenLen},
	}
}

func errCharLitUnterminated(start, tokenLen uint32) error {
	return &Error{
		code:    1007,
		message: "Unterminated character literal",
		span:    Span{start, tokenLen},
	}
}

func errCommentUnterminated(start, tokenLen uint32) error {
	return &Error{
		code:    1008,
		message: "Unterminated block comment",
		span:    Span{start, tokenLen},
	}
}

func errUnmatchedDelimiter(close byte, span Span) error {
	return &Error{
		code:    1009,
		message: fmt.Sprintf("Unexpected closing delimiter '%c'", close),
		span:    span,
	}
}

func errUnclosedDelimiter(open byte, span Span) error {
	return &Error{
		code:    1010,
		message: fmt.Sprintf("Unclosed delimiter '%c'", open),
		span:    span,
	}
}

func errMismatchedDelimiter(open, close byte, span Span) error {
	return &Error{
		code:    1011,
		message: fmt.Sprintf("Mismatched closing delimiter '%c' for '%c'", close, open),
		span:    span,
	}
}

func errExpectedPunct(want string, got TokenTree, span Span) error {
	return &Error{
		code:    2000,
		message: fmt.Sprintf("Expected '%s', got %s", want, describe(got)),
		span:    span,
	}
}

func errExpectedIdent(got TokenTree, span Span) error {
	return &Error{
		code:    2001,
		message: fmt.Sprintf("Expected identifier, got %s", describe(got)),
		span:    span,
	}
}

func errExpectedKeyword(keyword string, got TokenTree, span Span) error {
	return &Error{
		code:    2002,
		message: fmt.Sprintf("Expected keyword '%s', got %s", keyword, describe(got)),
		span:    span,
	}
}

func errExpectedIntLit(got TokenTree, span Span) error {
	return &Error{
		code:    2003,
		message: fmt.Sprintf("Expected integer literal, got %s", describe(got)),
		span:    span,
	}
}

func errExpectedGroup(delim Delimiter, got TokenTree, span Span) error {
	return &Error{
		code: 2004,
		message: fmt.Sprintf(
			"Expected '%c', got %s",
			delim.open(), describe(got),
		),
		span: span,
	}
}

func errUnexpectedToken(got TokenTree, span Span) error {
	return &Error{
		code:    2005,
		message: fmt.Sprintf("Unexpected %s", describe(got)),
		span:    span,
	}
}

func errIntLitTooPositive(raw string, span Span) error {
	return &Error{
		code: 2006,
		message: fmt.Sprintf(
			"Integer literal %s too positive (must be <= %d)",
			raw, uint64(math.MaxUint64),
		),
		span: span,
	}
}

func errIntLitInvalidSuffix(raw, suffix string, span Span) error {
	return &Error{
		code:    2007,
		message: fmt.Sprintf("Invalid suffix %q for integer literal %s", suffix, raw),
		span:    span,
	}
}
