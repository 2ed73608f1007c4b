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

package bitfield

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

func errExpectedStruct(span syntax.Span) error {
	return &Error{
		code:    4000,
		message: "expected struct",
		span:    span,
	}
}

func errTupleStruct(span syntax.Span) error {
	return &Error{
		code:    4001,
		message: "#[bitfield] requires a struct with named fields",
		span:    span,
	}
}

func errFieldTypeUnsupported(field *syntax.Ident, ty syntax.TokenStream) error {
	return &Error{
		code: 4002,
		message: fmt.Sprintf(
			"Field `%s` must be typed by a bit specifier, got `%s`",
			field.Get(), syntax.Unparse(ty),
		),
		span: ty.Span(),
	}
}

func errUnknownSpecifier(specifier *syntax.Ident, suggestion string) error {
	message := fmt.Sprintf("Unknown bit specifier `%s`", specifier.Get())
	if suggestion != "" {
		message += fmt.Sprintf("; did you mean `%s`?", suggestion)
	}
	return &Error{
		code:    4003,
		message: message,
		span:    specifier.Span(),
	}
}

func errNotByteAligned(totalBits uint64, span syntax.Span) error {
	return &Error{
		code:    4004,
		message: fmt.Sprintf("Total bit width %d is not a multiple of 8", totalBits),
		span:    span,
	}
}

func errUnexpectedArgs(span syntax.Span) error {
	return &Error{
		code:    4005,
		message: "#[bitfield] takes no arguments",
		span:    span,
	}
}
