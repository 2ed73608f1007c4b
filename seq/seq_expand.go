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
	"fmt"
	"strconv"

	"github.com/ELD/proc-macro-workshop/syntax"
)

// Mode selects how Expand treats the placeholder.
//
// Under WholeBlock only `#( ... )*` repetitions are expanded. Under
// SingleIndex(i) the placeholder is also replaced by i.
type Mode struct {
	index  uint64
	single bool
}

var WholeBlock = Mode{}

func SingleIndex(index uint64) Mode {
	return Mode{index: index, single: true}
}

// Index returns the substituted value, if any.
func (m Mode) Index() (uint64, bool) {
	return m.index, m.single
}

func (m Mode) String() string {
	if m.single {
		return fmt.Sprintf("SingleIndex(%d)", m.index)
	}
	return "WholeBlock"
}

// Expand rewrites stream under mode. The returned flag reports whether any
// placeholder or repetition was found at any depth.
func (d *Decl) Expand(stream syntax.TokenStream, mode Mode) (syntax.TokenStream, bool) {
	out := make(syntax.TokenStream, 0, len(stream))
	expanded := false
	cur := stream.Cursor()
	for {
		tt, ok := cur.Next()
		if !ok {
			return out, expanded
		}

		switch tt := tt.(type) {
		case *syntax.Group:
			inner, innerExpanded := d.Expand(tt.Stream(), mode)
			expanded = expanded || innerExpanded
			out = append(out, syntax.NewGroup(tt.Delimiter(), inner, tt.Span()))
			continue
		case *syntax.Ident:
			index, single := mode.Index()
			if !single {
				break
			}
			if tt.Is(d.Placeholder.Get()) {
				out = append(out, syntax.NewIntLit(index, tt.Span()))
				expanded = true
				continue
			}
			if fused, ok := d.fuse(tt, cur, index); ok {
				out = append(out, fused)
				expanded = true
				continue
			}
		case *syntax.Punct:
			if !tt.Is('#') {
				break
			}
			if body, ok := repetition(cur); ok {
				for ii := range d.Range.All() {
					replay, _ := d.Expand(body.Stream(), SingleIndex(ii))
					out = append(out, replay...)
				}
				expanded = true
				continue
			}
		}
		out = append(out, tt)
	}
}

// fuse matches `# N` after ident, returning `identI`. A directly following
// `#` is consumed as well, and an identifier adjacent to it (no whitespace
// between) is appended. A `#` that opens a repetition is left in place.
func (d *Decl) fuse(ident *syntax.Ident, cur *syntax.Cursor, index uint64) (*syntax.Ident, bool) {
	fork := cur.Fork()
	marker, _ := fork.Next()
	placeholder, _ := fork.Next()
	if !syntax.IsPunct(marker, '#') || !syntax.IsIdent(placeholder, d.Placeholder.Get()) {
		return nil, false
	}
	cur.Commit(fork)
	name := ident.Get() + strconv.FormatUint(index, 10)

	trailing := cur.Fork()
	if hash, _ := trailing.Next(); syntax.IsPunct(hash, '#') {
		if _, ok := repetition(&trailing); !ok {
			cur.Commit(trailing)
			suffix := cur.Fork()
			if tt, _ := suffix.Next(); tt != nil {
				next, ok := tt.(*syntax.Ident)
				adjacent := ok && next.Span().Start() == hash.Span().End()
				if adjacent && !next.Is(d.Placeholder.Get()) {
					name += next.Get()
					cur.Commit(suffix)
				}
			}
		}
	}
	return syntax.NewIdent(name, ident.Span()), true
}

// repetition matches `( ... ) *` after a `#`.
func repetition(cur *syntax.Cursor) (*syntax.Group, bool) {
	fork := cur.Fork()
	group, _ := fork.Next()
	star, _ := fork.Next()
	body, ok := group.(*syntax.Group)
	if !ok || body.Delimiter() != syntax.Parenthesis || !syntax.IsPunct(star, '*') {
		return nil, false
	}
	cur.Commit(fork)
	return body, true
}
