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
	"math"
	"math/bits"
	"strconv"
	"strings"
)

type Span struct {
	start, len uint32
}

func NewSpan(start, len uint32) Span {
	return Span{start, len}
}

func (s Span) Start() uint32 {
	return s.start
}

func (s Span) End() uint32 {
	return s.start + s.len
}

func (s Span) Len() uint32 {
	return s.len
}

// Join returns the smallest span covering both s and other.
func (s Span) Join(other Span) Span {
	start := min(s.start, other.start)
	end := max(s.End(), other.End())
	return Span{start, end - start}
}

type Delimiter uint8

const (
	Parenthesis Delimiter = iota
	Brace
	Bracket
	// None groups are invisible; they come from spliced generator output.
	None
)

func (d Delimiter) open() byte {
	switch d {
	case Parenthesis:
		return '('
	case Brace:
		return '{'
	case Bracket:
		return '['
	}
	return 0
}

func (d Delimiter) close() byte {
	switch d {
	case Parenthesis:
		return ')'
	case Brace:
		return '}'
	case Bracket:
		return ']'
	}
	return 0
}

func (d Delimiter) String() string {
	switch d {
	case Parenthesis:
		return "Parenthesis"
	case Brace:
		return "Brace"
	case Bracket:
		return "Bracket"
	case None:
		return "None"
	default:
		return fmt.Sprintf("Delimiter(%d)", uint8(d))
	}
}

type Spacing uint8

const (
	Alone Spacing = iota
	Joint
)

// TokenTree is one of *Ident, *Literal, *Punct or *Group.
type TokenTree interface {
	Span() Span

	tokenTree()
}

type TokenStream []TokenTree

// Span covers every token of the stream, or is zero for an empty stream.
func (ts TokenStream) Span() Span {
	if len(ts) == 0 {
		return Span{}
	}
	return ts[0].Span().Join(ts[len(ts)-1].Span())
}

func (ts TokenStream) String() string {
	return Unparse(ts)
}

// Cursor returns a cursor over ts. Expectation failures at the end of the
// stream are reported just past its last token.
func (ts TokenStream) Cursor() *Cursor {
	var eof Span
	if len(ts) > 0 {
		eof = Span{ts[len(ts)-1].Span().End(), 0}
	}
	return &Cursor{
		stream: ts,
		eof:    eof,
	}
}

type Ident struct {
	name string
	span Span
}

func NewIdent(name string, span Span) *Ident {
	return &Ident{name: name, span: span}
}

func (*Ident) tokenTree() {}

func (n *Ident) Span() Span {
	return n.span
}

func (n *Ident) Get() string {
	return n.name
}

func (n *Ident) Is(name string) bool {
	return n.name == name
}

type LiteralKind uint8

const (
	LitInt LiteralKind = iota
	LitFloat
	LitStr
	LitByteStr
	LitChar
	LitByte
)

type Literal struct {
	raw  string
	kind LiteralKind
	span Span
}

func (*Literal) tokenTree() {}

func (n *Literal) Span() Span {
	return n.span
}

func (n *Literal) Kind() LiteralKind {
	return n.kind
}

// Raw returns the literal exactly as written, including quotes and suffix.
func (n *Literal) Raw() string {
	return n.raw
}

// NewIntLit returns an unsuffixed decimal integer literal.
func NewIntLit(value uint64, span Span) *Literal {
	return &Literal{
		raw:  strconv.FormatUint(value, 10),
		kind: LitInt,
		span: span,
	}
}

// NewTextLit returns a string literal containing text.
func NewTextLit(text string, span Span) *Literal {
	var buf strings.Builder
	buf.WriteByte('"')
	for _, r := range text {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		case 0:
			buf.WriteString(`\0`)
		default:
			if r < 0x20 || r == 0x7F {
				fmt.Fprintf(&buf, `\u{%x}`, r)
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
	return &Literal{
		raw:  buf.String(),
		kind: LitStr,
		span: span,
	}
}

var intSuffixes = []string{
	"u8", "u16", "u32", "u64", "u128", "usize",
	"i8", "i16", "i32", "i64", "i128", "isize",
}

// Uint64 parses an integer literal in any of the host's bases, ignoring
// digit separators and a type suffix.
func (n *Literal) Uint64() (uint64, error) {
	if n.kind != LitInt {
		return 0, errExpectedIntLit(n, n.span)
	}
	digits := n.raw
	base := uint64(10)
	if len(digits) > 1 && digits[0] == '0' {
		switch digits[1] {
		case 'b':
			base = 2
		case 'o':
			base = 8
		case 'x':
			base = 16
		}
		if base != 10 {
			digits = digits[2:]
		}
	}

	end := len(digits)
	for ii := 0; ii < len(digits); ii++ {
		c := digits[ii]
		if c == '_' || (c >= '0' && c <= '9') {
			continue
		}
		if base == 16 && ((c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			continue
		}
		end = ii
		break
	}
	if suffix := digits[end:]; suffix != "" {
		valid := false
		for _, s := range intSuffixes {
			if suffix == s {
				valid = true
				break
			}
		}
		if !valid {
			return 0, errIntLitInvalidSuffix(n.raw, suffix, n.span)
		}
	}

	var value uint64
	for _, c := range []byte(digits[:end]) {
		var digit uint64
		switch {
		case c == '_':
			continue
		case c >= '0' && c <= '9':
			digit = uint64(c - '0')
		case c >= 'a' && c <= 'f':
			digit = uint64(c-'a') + 10
		case c >= 'A' && c <= 'F':
			digit = uint64(c-'A') + 10
		}
		hi, lo := bits.Mul64(value, base)
		if hi != 0 || lo > math.MaxUint64-digit {
			return 0, errIntLitTooPositive(n.raw, n.span)
		}
		value = lo + digit
	}
	return value, nil
}

type Punct struct {
	ch      byte
	spacing Spacing
	span    Span
}

func NewPunct(ch byte, spacing Spacing, span Span) *Punct {
	return &Punct{ch: ch, spacing: spacing, span: span}
}

func (*Punct) tokenTree() {}

func (n *Punct) Span() Span {
	return n.span
}

func (n *Punct) Char() byte {
	return n.ch
}

func (n *Punct) Spacing() Spacing {
	return n.spacing
}

func (n *Punct) Is(ch byte) bool {
	return n.ch == ch
}

type Group struct {
	delim  Delimiter
	stream TokenStream
	span   Span
}

func NewGroup(delim Delimiter, stream TokenStream, span Span) *Group {
	return &Group{delim: delim, stream: stream, span: span}
}

func (*Group) tokenTree() {}

// Span covers both delimiters.
func (n *Group) Span() Span {
	return n.span
}

func (n *Group) Delimiter() Delimiter {
	return n.delim
}

func (n *Group) Stream() TokenStream {
	return n.stream
}

func (n *Group) OpenSpan() Span {
	return Span{n.span.start, min(n.span.len, 1)}
}

func (n *Group) CloseSpan() Span {
	if n.span.len == 0 {
		return n.span
	}
	return Span{n.span.End() - 1, 1}
}

// Cursor returns a cursor over the group's contents. Expectation failures at
// the end of the contents are reported at the closing delimiter.
func (n *Group) Cursor() *Cursor {
	return &Cursor{
		stream: n.stream,
		eof:    n.CloseSpan(),
	}
}

// IsPunct reports whether tt is the punctuation character ch.
func IsPunct(tt TokenTree, ch byte) bool {
	p, ok := tt.(*Punct)
	return ok && p.ch == ch
}

// IsIdent reports whether tt is the identifier name.
func IsIdent(tt TokenTree, name string) bool {
	ident, ok := tt.(*Ident)
	return ok && ident.name == name
}

// IsGroup reports whether tt is a group with the given delimiter.
func IsGroup(tt TokenTree, delim Delimiter) bool {
	g, ok := tt.(*Group)
	return ok && g.delim == delim
}

func describe(tt TokenTree) string {
	switch tt := tt.(type) {
	case nil:
		return "end of input"
	case *Ident:
		return fmt.Sprintf("(IDENT %q)", tt.name)
	case *Literal:
		return fmt.Sprintf("(LITERAL %s)", tt.raw)
	case *Punct:
		return fmt.Sprintf("(PUNCT '%c')", tt.ch)
	case *Group:
		if tt.delim == None {
			return "(GROUP)"
		}
		return fmt.Sprintf("(GROUP '%c')", tt.delim.open())
	}
	return fmt.Sprintf("%T", tt)
}
