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
	"bytes"
	"strings"
)

// Unparse renders stream on a single line. Re-parsing the output yields the
// same token trees, up to spans and the spacing of adjacent punctuation.
func Unparse(stream TokenStream) string {
	var buf bytes.Buffer
	UnparseTo(&buf, stream)
	return buf.String()
}

func UnparseTo(buf *bytes.Buffer, stream TokenStream) {
	p := printer{buf: buf}
	p.stream(stream, None)
}

// Format renders stream as indented source, breaking lines after
// statements, attributes and brace-delimited blocks.
func Format(stream TokenStream) string {
	var buf bytes.Buffer
	p := printer{buf: &buf, pretty: true}
	p.stream(stream, None)
	out := buf.String()
	if out != "" {
		out += "\n"
	}
	return out
}

type printer struct {
	buf    *bytes.Buffer
	pretty bool
	indent int
}

func (p *printer) newline() {
	p.buf.WriteByte('\n')
	p.buf.WriteString(strings.Repeat("    ", p.indent))
}

func (p *printer) stream(stream TokenStream, delim Delimiter) {
	lineContext := delim == Brace || delim == None
	var prev, prevPrev TokenTree
	breakLine := false
	for _, tt := range stream {
		if prev != nil {
			if p.pretty && breakLine && !closesStatement(tt) {
				p.newline()
			} else if needSpace(prevPrev, prev, tt) {
				p.buf.WriteByte(' ')
			}
		}
		breakLine = false

		switch tt := tt.(type) {
		case *Ident:
			p.buf.WriteString(tt.name)
		case *Literal:
			p.buf.WriteString(tt.raw)
		case *Punct:
			p.buf.WriteByte(tt.ch)
			breakLine = lineContext && (tt.ch == ';' || (tt.ch == ',' && delim == Brace))
		case *Group:
			p.group(tt)
			breakLine = lineContext &&
				(tt.delim == Brace || (tt.delim == Bracket && IsPunct(prev, '#')))
		}
		prevPrev, prev = prev, tt
	}
}

func (p *printer) group(g *Group) {
	if g.delim == None {
		p.stream(g.stream, None)
		return
	}
	p.buf.WriteByte(g.delim.open())
	if p.pretty && g.delim == Brace && len(g.stream) > 0 {
		p.indent++
		p.newline()
		p.stream(g.stream, Brace)
		p.indent--
		p.newline()
	} else if g.delim == Brace && len(g.stream) > 0 {
		p.buf.WriteByte(' ')
		p.stream(g.stream, Brace)
		p.buf.WriteByte(' ')
	} else {
		p.stream(g.stream, g.delim)
	}
	p.buf.WriteByte(g.delim.close())
}

func closesStatement(tt TokenTree) bool {
	return IsPunct(tt, ';') || IsPunct(tt, ',') || IsPunct(tt, '.') || IsPunct(tt, '?')
}

func needSpace(prevPrev, prev, cur TokenTree) bool {
	if p, ok := prev.(*Punct); ok {
		if p.spacing == Joint {
			return false
		}
		switch p.ch {
		case '!':
			return IsGroup(cur, Brace)
		case '#', '.', '&':
			return false
		case ':':
			// second half of "::"
			if pp, ok := prevPrev.(*Punct); ok && pp.ch == ':' && pp.spacing == Joint {
				return false
			}
		case '=':
			// "..="
			if pp, ok := prevPrev.(*Punct); ok && pp.ch == '.' && pp.spacing == Joint {
				return false
			}
		}
	}

	switch cur := cur.(type) {
	case *Punct:
		switch cur.ch {
		case ',', ';', '.', '?', ':':
			return false
		case '!', '#':
			if cur.spacing == Joint && cur.ch == '!' {
				// "!="
				return true
			}
			_, afterIdent := prev.(*Ident)
			return !afterIdent
		case '*':
			// closing "#( ... )*"
			return !(IsGroup(prev, Parenthesis) && IsPunct(prevPrev, '#'))
		}
	case *Group:
		if cur.delim == Parenthesis || cur.delim == Bracket {
			if _, ok := prev.(*Ident); ok {
				return false
			}
		}
	}
	return true
}
