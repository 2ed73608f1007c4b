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
	"github.com/ELD/proc-macro-workshop/macro"
	"github.com/ELD/proc-macro-workshop/syntax"
)

// Struct is a struct item annotated with #[bitfield].
type Struct struct {
	Attrs  []syntax.TokenStream
	Vis    syntax.TokenStream
	Name   *syntax.Ident
	Fields []*StructField
}

type StructField struct {
	Attrs     []syntax.TokenStream
	Vis       syntax.TokenStream
	Name      *syntax.Ident
	Type      syntax.TokenStream
	Specifier *syntax.Ident
}

// ParseStruct parses a struct with named fields. A unit struct has no
// fields.
func ParseStruct(item syntax.TokenStream) (*Struct, error) {
	cur := item.Cursor()
	s := &Struct{
		Attrs: cur.OuterAttrs(),
		Vis:   cur.Visibility(),
	}
	if !cur.TryKeyword("struct") {
		return nil, errExpectedStruct(cur.Span())
	}
	name, err := cur.ExpectIdent()
	if err != nil {
		return nil, err
	}
	s.Name = name

	if tt, ok := cur.Peek(); ok && syntax.IsGroup(tt, syntax.Parenthesis) {
		return nil, errTupleStruct(tt.Span())
	}
	if cur.TryPunct(";") {
		if err := cur.ExpectEnd(); err != nil {
			return nil, err
		}
		return s, nil
	}
	body, err := cur.ExpectGroup(syntax.Brace)
	if err != nil {
		return nil, err
	}
	if err := cur.ExpectEnd(); err != nil {
		return nil, err
	}

	fieldsCur := body.Cursor()
	for !fieldsCur.Done() {
		field, err := parseField(fieldsCur)
		if err != nil {
			return nil, err
		}
		s.Fields = append(s.Fields, field)
	}
	return s, nil
}

func parseField(cur *syntax.Cursor) (*StructField, error) {
	field := &StructField{
		Attrs: cur.OuterAttrs(),
		Vis:   cur.Visibility(),
	}
	name, err := cur.ExpectIdent()
	if err != nil {
		return nil, err
	}
	field.Name = name
	if _, err := cur.ExpectPunct(":"); err != nil {
		return nil, err
	}

	if tt, ok := cur.Peek(); !ok || syntax.IsPunct(tt, ',') {
		_, err := cur.ExpectIdent()
		return nil, err
	}

	depth := 0
	for {
		tt, ok := cur.Peek()
		if !ok {
			break
		}
		if depth == 0 && syntax.IsPunct(tt, ',') {
			cur.Next()
			break
		}
		switch {
		case syntax.IsPunct(tt, '<'):
			depth++
		case syntax.IsPunct(tt, '>') && depth > 0:
			depth--
		}
		field.Type = append(field.Type, tt)
		cur.Next()
	}
	specifier, ok := pathTail(field.Type)
	if !ok {
		return nil, errFieldTypeUnsupported(name, field.Type)
	}
	field.Specifier = specifier
	return field, nil
}

// pathTail returns the last segment of a plain path such as `B4` or
// `crate::bits::B4`.
func pathTail(ty syntax.TokenStream) (*syntax.Ident, bool) {
	cur := ty.Cursor()
	cur.TryPunct("::")
	var last *syntax.Ident
	for {
		ident, err := cur.ExpectIdent()
		if err != nil {
			return nil, false
		}
		last = ident
		if cur.Done() {
			return last, true
		}
		if !cur.TryPunct("::") {
			return nil, false
		}
	}
}

type Field struct {
	Name      string
	Specifier string
	Width     uint64
	Offset    uint64
}

// Layout is the packed byte layout of a bitfield struct.
type Layout struct {
	Name      string
	Fields    []Field
	TotalBits uint64

	// Size is the length of the backing byte array, TotalBits / 8.
	Size uint64

	item *Struct
}

type LayoutOption interface {
	apply(*LayoutOptions)
}

type layoutOption func(*LayoutOptions)

func (f layoutOption) apply(opts *LayoutOptions) { f(opts) }

// WithWidths resolves bit specifiers through widths instead of
// DefaultWidths.
func WithWidths(widths WidthProvider) LayoutOption {
	return layoutOption(func(opts *LayoutOptions) {
		opts.widths = widths
	})
}

// WithByteAligned rejects layouts whose total width is not a whole number of
// bytes. Without it the byte count is truncated.
func WithByteAligned() LayoutOption {
	return layoutOption(func(opts *LayoutOptions) {
		opts.byteAligned = true
	})
}

type LayoutOptions struct {
	widths      WidthProvider
	byteAligned bool
}

func NewLayoutOptions(opts ...LayoutOption) *LayoutOptions {
	layoutOptions := &LayoutOptions{
		widths: DefaultWidths(),
	}
	for _, opt := range opts {
		opt.apply(layoutOptions)
	}
	return layoutOptions
}

func NewLayout(s *Struct, opts ...LayoutOption) (*Layout, error) {
	return NewLayoutOptions(opts...).NewLayout(s)
}

func (opts *LayoutOptions) NewLayout(s *Struct) (*Layout, error) {
	layout := &Layout{
		Name: s.Name.Get(),
		item: s,
	}
	for _, field := range s.Fields {
		specifier := field.Specifier.Get()
		width, ok := opts.widths.Width(specifier)
		if !ok {
			suggestion := macro.Suggest(specifier, opts.widths.Specifiers())
			return nil, errUnknownSpecifier(field.Specifier, suggestion)
		}
		layout.Fields = append(layout.Fields, Field{
			Name:      field.Name.Get(),
			Specifier: specifier,
			Width:     width,
			Offset:    layout.TotalBits,
		})
		layout.TotalBits += width
	}
	if opts.byteAligned && layout.TotalBits%8 != 0 {
		return nil, errNotByteAligned(layout.TotalBits, s.Name.Span())
	}
	layout.Size = layout.TotalBits / 8
	return layout, nil
}
