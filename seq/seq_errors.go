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

package seq

import (
	"errors"
	"fmt"

	"github.com/ELD/proc-macro-workshop/syntax"
)

type Error struct {
	code    uint32
	message string
	span    syntax.Span
	cause   error
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

func (err *Error) Span() syntax.Span {
	return err.span
}

func (err *Error) Unwrap() error {
	return err.cause
}

// errMalformedRangeSyntax wraps a syntax error raised while parsing a range
// declaration. Errors that are already range errors pass through.
func errMalformedRangeSyntax(cause error) error {
	var seqErr *Error
	if errors.As(cause, &seqErr) {
		return cause
	}
	var syntaxErr *syntax.Error
	if !errors.As(cause, &syntaxErr) {
		return cause
	}
	return &Error{
		code:    3000,
		message: fmt.Sprintf("Malformed range syntax: %s", syntaxErr.Message()),
		span:    syntaxErr.Span(),
		cause:   cause,
	}
}

func errRangeBoundOverflow(bound *syntax.Literal) error {
	return &Error{
		code:    3001,
		message: fmt.Sprintf("Inclusive range bound %s overflows", bound.Raw()),
		span:    bound.Span(),
	}
}
