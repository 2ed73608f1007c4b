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

// Cursor is a forward-only position in a TokenStream. Copying a Cursor (see
// Fork) is cheap, and a fork can be committed back into its origin once a
// speculative match succeeds; a fork that is dropped leaves the origin
// untouched.
type Cursor struct {
	stream TokenStream
	pos    int
	eof    Span
}

func (c *Cursor) Next() (TokenTree, bool) {
	if c.pos >= len(c.stream) {
		return nil, false
	}
	tt := c.stream[c.pos]
	c.pos++
	return tt, true
}

func (c *Cursor) Peek() (TokenTree, bool) {
	if c.pos >= len(c.stream) {
		return nil, false
	}
	return c.stream[c.pos], true
}

func (c *Cursor) Fork() Cursor {
	return *c
}

// Commit moves c to the position of fork, which must have been forked from c.
func (c *Cursor) Commit(fork Cursor) {
	c.pos = fork.pos
}

func (c *Cursor) Done() bool {
	return c.pos >= len(c.stream)
}

// Rest returns the unconsumed tokens without consuming them.
func (c *Cursor) Rest() TokenStream {
	return c.stream[c.pos:]
}

// Span returns the span of the next token, or the end-of-input span.
func (c *Cursor) Span() Span {
	if tt, ok := c.Peek(); ok {
		return tt.Span()
	}
	return c.eof
}

func (c *Cursor) EOFSpan() Span {
	return c.eof
}

// TryPunct consumes op (one Punct per byte, all but the last joint) if it
// is next in the stream.
func (c *Cursor) TryPunct(op string) bool {
	fork := c.Fork()
	for ii := 0; ii < len(op); ii++ {
		tt, ok := fork.Next()
		if !ok {
			return false
		}
		p, ok := tt.(*Punct)
		if !ok || p.ch != op[ii] {
			return false
		}
		if ii < len(op)-1 && p.spacing != Joint {
			return false
		}
	}
	c.Commit(fork)
	return true
}

func (c *Cursor) TryKeyword(keyword string) bool {
	tt, ok := c.Peek()
	if !ok || !IsIdent(tt, keyword) {
		return false
	}
	c.pos++
	return true
}

func (c *Cursor) ExpectPunct(op string) (Span, error) {
	span := c.Span()
	if c.TryPunct(op) {
		return span, nil
	}
	tt, _ := c.Peek()
	return span, errExpectedPunct(op, tt, span)
}

func (c *Cursor) ExpectIdent() (*Ident, error) {
	tt, ok := c.Peek()
	ident, isIdent := tt.(*Ident)
	if !ok || !isIdent {
		return nil, errExpectedIdent(tt, c.Span())
	}
	c.pos++
	return ident, nil
}

func (c *Cursor) ExpectKeyword(keyword string) (*Ident, error) {
	tt, ok := c.Peek()
	if !ok || !IsIdent(tt, keyword) {
		return nil, errExpectedKeyword(keyword, tt, c.Span())
	}
	c.pos++
	return tt.(*Ident), nil
}

// ExpectIntLit consumes an integer literal and returns its value.
func (c *Cursor) ExpectIntLit() (*Literal, uint64, error) {
	tt, ok := c.Peek()
	lit, isLit := tt.(*Literal)
	if !ok || !isLit || lit.kind != LitInt {
		return nil, 0, errExpectedIntLit(tt, c.Span())
	}
	value, err := lit.Uint64()
	if err != nil {
		return nil, 0, err
	}
	c.pos++
	return lit, value, nil
}

func (c *Cursor) ExpectGroup(delim Delimiter) (*Group, error) {
	tt, ok := c.Peek()
	if !ok || !IsGroup(tt, delim) {
		return nil, errExpectedGroup(delim, tt, c.Span())
	}
	c.pos++
	return tt.(*Group), nil
}

func (c *Cursor) ExpectEnd() error {
	if tt, ok := c.Peek(); ok {
		return errUnexpectedToken(tt, tt.Span())
	}
	return nil
}

// OuterAttrs consumes any `#[...]` attributes and returns them in order.
func (c *Cursor) OuterAttrs() []TokenStream {
	var attrs []TokenStream
	for {
		fork := c.Fork()
		hash, _ := fork.Next()
		body, _ := fork.Next()
		if !IsPunct(hash, '#') || !IsGroup(body, Bracket) {
			return attrs
		}
		c.Commit(fork)
		attrs = append(attrs, TokenStream{hash, body})
	}
}

// Visibility consumes `pub` and an optional `(restriction)`.
func (c *Cursor) Visibility() TokenStream {
	tt, ok := c.Peek()
	if !ok || !IsIdent(tt, "pub") {
		return nil
	}
	c.pos++
	vis := TokenStream{tt}
	if restriction, ok := c.Peek(); ok && IsGroup(restriction, Parenthesis) {
		c.pos++
		vis = append(vis, restriction)
	}
	return vis
}
