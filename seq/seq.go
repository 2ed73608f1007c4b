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
	"iter"
	"math"

	"github.com/ELD/proc-macro-workshop/syntax"
)

// Range is a half-open interval [Low, High). Low <= High always holds.
type Range struct {
	Low  uint64
	High uint64
}

func (r Range) Len() uint64 {
	return r.High - r.Low
}

// All yields every value of r in ascending order.
func (r Range) All() iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		for ii := r.Low; ii < r.High; ii++ {
			if !yield(ii) {
				return
			}
		}
	}
}

func (r Range) String() string {
	return fmt.Sprintf("%d..%d", r.Low, r.High)
}

// ParseBounds parses `IntLit (".." | "..=") IntLit`. An inclusive upper
// bound is stored as its successor, and a lower bound above the upper bound
// yields an empty range.
func ParseBounds(cur *syntax.Cursor) (Range, error) {
	_, low, err := cur.ExpectIntLit()
	if err != nil {
		return Range{}, errMalformedRangeSyntax(err)
	}

	inclusive := cur.TryPunct("..=")
	if !inclusive {
		if _, err := cur.ExpectPunct(".."); err != nil {
			return Range{}, errMalformedRangeSyntax(err)
		}
	}

	highLit, high, err := cur.ExpectIntLit()
	if err != nil {
		return Range{}, errMalformedRangeSyntax(err)
	}
	if inclusive {
		if high == math.MaxUint64 {
			return Range{}, errRangeBoundOverflow(highLit)
		}
		high++
	}
	if low > high {
		high = low
	}
	return Range{Low: low, High: high}, nil
}

// ParseRange parses a stream that holds nothing but range bounds.
func ParseRange(input syntax.TokenStream) (Range, error) {
	cur := input.Cursor()
	bounds, err := ParseBounds(cur)
	if err != nil {
		return Range{}, err
	}
	if err := cur.ExpectEnd(); err != nil {
		return Range{}, errMalformedRangeSyntax(err)
	}
	return bounds, nil
}

// Decl is a parsed `N in low..high { ... }` declaration.
type Decl struct {
	Placeholder *syntax.Ident
	Range       Range
	Block       *syntax.Group
}

// ParseDecl parses the input of a seq invocation. Nothing may follow the
// brace-delimited block.
func ParseDecl(input syntax.TokenStream) (*Decl, error) {
	cur := input.Cursor()
	placeholder, err := cur.ExpectIdent()
	if err != nil {
		return nil, errMalformedRangeSyntax(err)
	}
	if _, err := cur.ExpectKeyword("in"); err != nil {
		return nil, errMalformedRangeSyntax(err)
	}
	bounds, err := ParseBounds(cur)
	if err != nil {
		return nil, err
	}
	block, err := cur.ExpectGroup(syntax.Brace)
	if err != nil {
		return nil, errMalformedRangeSyntax(err)
	}
	if err := cur.ExpectEnd(); err != nil {
		return nil, errMalformedRangeSyntax(err)
	}
	return &Decl{
		Placeholder: placeholder,
		Range:       bounds,
		Block:       block,
	}, nil
}

// Generate expands the declaration's block.
//
// A first pass looks only for `#( ... )*` repetitions. If it finds any, its
// output is final and placeholders outside the repetitions are left alone.
// Otherwise the whole block is emitted once per value of the range, with
// the placeholder substituted.
func (d *Decl) Generate() syntax.TokenStream {
	body := d.Block.Stream()
	if out, expanded := d.Expand(body, WholeBlock); expanded {
		return out
	}
	var out syntax.TokenStream
	for ii := range d.Range.All() {
		replay, _ := d.Expand(body, SingleIndex(ii))
		out = append(out, replay...)
	}
	return out
}

// Seq implements `seq!(N in low..high { ... })`.
func Seq(input syntax.TokenStream) (syntax.TokenStream, error) {
	decl, err := ParseDecl(input)
	if err != nil {
		return nil, err
	}
	return decl.Generate(), nil
}

// Eseq implements `eseq!`, the expression-position form of Seq.
func Eseq(input syntax.TokenStream) (syntax.TokenStream, error) {
	return Seq(input)
}
