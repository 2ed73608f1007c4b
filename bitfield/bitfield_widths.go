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
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/ELD/proc-macro-workshop/macro"
	"github.com/ELD/proc-macro-workshop/seq"
	"github.com/ELD/proc-macro-workshop/syntax"
)

// WidthProvider resolves a bit specifier name to its width in bits.
type WidthProvider interface {
	Width(specifier string) (uint64, bool)
	Specifiers() []string
}

// Widths is a WidthProvider backed by a map.
type Widths map[string]uint64

func (w Widths) Width(specifier string) (uint64, bool) {
	width, ok := w[specifier]
	return width, ok
}

// Specifiers returns the known specifier names, narrowest first.
func (w Widths) Specifiers() []string {
	return slices.SortedFunc(maps.Keys(w), func(a, b string) int {
		if c := cmp.Compare(w[a], w[b]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
}

// SpecifierWidths returns the widths of the specifiers declared by
// `generate_bits!` over r.
func SpecifierWidths(r seq.Range) Widths {
	widths := make(Widths, r.Len())
	widths.Declare(r)
	return widths
}

// Declare adds the specifiers declared by `generate_bits!` over r.
func (w Widths) Declare(r seq.Range) {
	for ii := range r.All() {
		w[specifierName(ii)] = ii
	}
}

// DefaultWidths covers B1 through B64.
func DefaultWidths() Widths {
	return SpecifierWidths(seq.Range{Low: 1, High: 65})
}

func specifierName(width uint64) string {
	return fmt.Sprintf("B%d", width)
}

// GenerateBits implements `generate_bits!(low..high)`. For each width in the
// range it declares a marker type carrying that width.
func GenerateBits(input syntax.TokenStream) (syntax.TokenStream, error) {
	bounds, err := seq.ParseRange(input)
	if err != nil {
		return nil, err
	}
	span := input.Span()
	var out syntax.TokenStream
	for ii := range bounds.All() {
		name := specifierName(ii)
		out = append(out, syntax.Quote(span, fmt.Sprintf(
			"pub enum %s {} impl Specifier for %s { const BITS: usize = %d; }",
			name, name, ii,
		))...)
	}
	return out, nil
}

// DeclareBits returns `generate_bits!` recording the widths it declares in
// widths, so that a #[bitfield] resolving through the same table accepts
// them.
func DeclareBits(widths Widths) macro.Func {
	return func(input syntax.TokenStream) (syntax.TokenStream, error) {
		out, err := GenerateBits(input)
		if err != nil {
			return nil, err
		}
		bounds, _ := seq.ParseRange(input)
		widths.Declare(bounds)
		return out, nil
	}
}
