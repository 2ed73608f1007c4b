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

package sorted

import (
	"fmt"

	"github.com/ELD/proc-macro-workshop/syntax"
)

type Error struct {
	code    uint32
	message string
	span    syntax.Span
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

func errExpectedEnumOrMatch(span syntax.Span) error {
	return &Error{
		code:    5000,
		message: "expected enum or match expression",
		span:    span,
	}
}

func errUnsupportedPattern(span syntax.Span) error {
	return &Error{
		code:    5001,
		message: "unsupported by #[sorted]",
		span:    span,
	}
}

func errVariantOutOfOrder(name, before string, span syntax.Span) error {
	return &Error{
		code:    5002,
		message: fmt.Sprintf("%s should sort before %s", name, before),
		span:    span,
	}
}

func errArmOutOfOrder(key, before string, span syntax.Span) error {
	return &Error{
		code:    5003,
		message: fmt.Sprintf("%s should sort before %s", key, before),
		span:    span,
	}
}

func errWildcardNotLast(span syntax.Span) error {
	return &Error{
		code:    5004,
		message: "wildcard should be listed last",
		span:    span,
	}
}

func errUnexpectedArgs(span syntax.Span) error {
	return &Error{
		code:    5005,
		message: "#[sorted] takes no arguments",
		span:    span,
	}
}

func errExpectedFn(span syntax.Span) error {
	return &Error{
		code:    5006,
		message: "expected fn",
		span:    span,
	}
}
