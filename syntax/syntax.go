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
	"fmt"
)

type ParseOption interface {
	apply(*ParseOptions)
}

type parseOption func(*ParseOptions)

func (f parseOption) apply(opts *ParseOptions) { f(opts) }

// WithBaseOffset shifts every span by offset, for sources that are a
// fragment of a larger file.
func WithBaseOffset(offset uint32) ParseOption {
	return parseOption(func(opts *ParseOptions) {
		opts.baseOffset = offset
	})
}

type ParseOptions struct {
	baseOffset uint32
}

func NewParseOptions(opts ...ParseOption) *ParseOptions {
	parseOptions := &ParseOptions{}
	for _, opt := range opts {
		opt.apply(parseOptions)
	}
	return parseOptions
}

// Parse lexes src and assembles the tokens into a tree of delimited groups.
// Whitespace and comments are discarded.
func Parse(src []byte, opts ...ParseOption) (TokenStream, error) {
	return NewParseOptions(opts...).Parse(src)
}

func ParseString(src string, opts ...ParseOption) (TokenStream, error) {
	return Parse([]byte(src), opts...)
}

type openGroup struct {
	delim  Delimiter
	start  uint32
	stream TokenStream
}

func (opts *ParseOptions) Parse(src []byte) (TokenStream, error) {
	tokens, err := NewTokens(src)
	if err != nil {
		return nil, err
	}

	base := opts.baseOffset
	stack := []*openGroup{{delim: None}}
	for {
		start := tokens.Offset()
		var token Token
		if err := tokens.Next(&token); err != nil {
			return nil, rebase(err, base)
		}
		raw := src[start : start+uint32(token.Len)]
		span := Span{base + start, uint32(token.Len)}
		top := stack[len(stack)-1]

		var tt TokenTree
		switch token.Kind {
		case T_EOF:
			if len(stack) > 1 {
				return nil, errUnclosedDelimiter(top.delim.open(), Span{base + top.start, 1})
			}
			return top.stream, nil
		case T_SPACE, T_NEWLINE, T_COMMENT:
			continue
		case T_OPEN_CURL, T_OPEN_PAREN, T_OPEN_SQUARE:
			stack = append(stack, &openGroup{
				delim: openDelimiter(token.Kind),
				start: start,
			})
			continue
		case T_CLOSE_CURL, T_CLOSE_PAREN, T_CLOSE_SQUARE:
			if len(stack) == 1 {
				return nil, errUnmatchedDelimiter(raw[0], span)
			}
			if want := top.delim.close(); want != raw[0] {
				return nil, errMismatchedDelimiter(top.delim.open(), raw[0], span)
			}
			stack = stack[:len(stack)-1]
			tt = &Group{
				delim:  top.delim,
				stream: top.stream,
				span:   Span{base + top.start, start + 1 - top.start},
			}
			top = stack[len(stack)-1]
		case T_PUNCT:
			spacing := Alone
			rest := src[start+1:]
			if raw[0] == '\'' || (len(rest) > 0 && isPunctChar(rest[0])) {
				spacing = Joint
			}
			tt = &Punct{ch: raw[0], spacing: spacing, span: span}
		case T_IDENT:
			tt = &Ident{name: string(raw), span: span}
		case T_INT_LIT, T_BIN_INT_LIT, T_OCT_INT_LIT, T_HEX_INT_LIT:
			tt = &Literal{raw: string(raw), kind: LitInt, span: span}
		case T_FLOAT_LIT:
			tt = &Literal{raw: string(raw), kind: LitFloat, span: span}
		case T_TEXT_LIT:
			kind := LitStr
			if token.flags&tokenFlagByteLit != 0 {
				kind = LitByteStr
			}
			tt = &Literal{raw: string(raw), kind: kind, span: span}
		case T_CHAR_LIT:
			kind := LitChar
			if token.flags&tokenFlagByteLit != 0 {
				kind = LitByte
			}
			tt = &Literal{raw: string(raw), kind: kind, span: span}
		default:
			panic(fmt.Sprintf("unreachable: token kind %v", token.Kind))
		}
		top.stream = append(top.stream, tt)
	}
}

func openDelimiter(kind TokenKind) Delimiter {
	switch kind {
	case T_OPEN_PAREN:
		return Parenthesis
	case T_OPEN_SQUARE:
		return Bracket
	}
	return Brace
}

func rebase(err error, base uint32) error {
	if base == 0 {
		return err
	}
	if syntaxErr, ok := err.(*Error); ok {
		return &Error{
			code:    syntaxErr.code,
			message: syntaxErr.message,
			span:    Span{syntaxErr.span.start + base, syntaxErr.span.len},
		}
	}
	return err
}

// Quote parses a source template into tokens that all carry span. It is
// meant for templates that are constant in the generator's own code, and
// panics if src is not well-formed.
func Quote(span Span, src string) TokenStream {
	stream, err := ParseString(src)
	if err != nil {
		panic(fmt.Sprintf("syntax.Quote(%q): %v", src, err))
	}
	return Respan(stream, span)
}

// Respan returns a copy of stream in which every token, at any depth,
// carries span.
func Respan(stream TokenStream, span Span) TokenStream {
	out := make(TokenStream, 0, len(stream))
	for _, tt := range stream {
		switch tt := tt.(type) {
		case *Ident:
			out = append(out, &Ident{name: tt.name, span: span})
		case *Literal:
			out = append(out, &Literal{raw: tt.raw, kind: tt.kind, span: span})
		case *Punct:
			out = append(out, &Punct{ch: tt.ch, spacing: tt.spacing, span: span})
		case *Group:
			out = append(out, &Group{
				delim:  tt.delim,
				stream: Respan(tt.stream, span),
				span:   span,
			})
		}
	}
	return out
}
