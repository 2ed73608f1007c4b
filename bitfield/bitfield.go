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

	"github.com/dave/jennifer/jen"

	"github.com/ELD/proc-macro-workshop/macro"
	"github.com/ELD/proc-macro-workshop/syntax"
)

// Bitfield returns the #[bitfield] attribute macro. The annotated struct is
// replaced by a struct holding a single zeroed byte array large enough for
// the declared widths, plus a `new` constructor. Bit accessors are not
// generated.
func Bitfield(opts ...LayoutOption) macro.Attr {
	layoutOptions := NewLayoutOptions(opts...)
	return func(args, item syntax.TokenStream) (syntax.TokenStream, error) {
		if len(args) > 0 {
			return nil, errUnexpectedArgs(args.Span())
		}
		s, err := ParseStruct(item)
		if err != nil {
			return nil, err
		}
		layout, err := layoutOptions.NewLayout(s)
		if err != nil {
			return nil, err
		}
		return layout.Expand(), nil
	}
}

// Expand renders the replacement struct and its constructor.
func (l *Layout) Expand() syntax.TokenStream {
	return syntax.Quote(l.item.Name.Span(), fmt.Sprintf(
		"#[repr(C)] %s struct %s { data: [u8; %d], } "+
			"impl %s { fn new() -> Self { Self { data: [0; %d], } } }",
		syntax.Unparse(l.item.Vis), l.Name, l.Size,
		l.Name, l.Size,
	))
}

// EmitGo renders layouts as Go declarations in package pkg: a struct type
// backed by a byte array, a zeroing constructor and the layout's size
// constants.
func EmitGo(pkg string, layouts ...*Layout) *jen.File {
	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by macroexpand bitfield-go. DO NOT EDIT.")
	for _, layout := range layouts {
		emitGoLayout(f, layout)
	}
	return f
}

func emitGoLayout(f *jen.File, layout *Layout) {
	name := layout.Name
	bitsName := name + "Bits"
	sizeName := name + "Size"

	f.Const().Defs(
		jen.Id(bitsName).Op("=").Lit(int(layout.TotalBits)),
		jen.Id(sizeName).Op("=").Id(bitsName).Op("/").Lit(8),
	)

	fields := make([]jen.Code, 0, len(layout.Fields)+1)
	for _, field := range layout.Fields {
		fields = append(fields, jen.Commentf(
			"%s: %s, bits [%d, %d)",
			field.Name, field.Specifier, field.Offset, field.Offset+field.Width,
		))
	}
	fields = append(fields, jen.Id("data").Index(jen.Id(sizeName)).Byte())

	f.Commentf("%s packs %d fields into %d bits.", name, len(layout.Fields), layout.TotalBits)
	f.Type().Id(name).Struct(fields...)

	f.Func().Id("New" + name).Params().Op("*").Id(name).Block(
		jen.Return(jen.Op("&").Id(name).Values()),
	)
}
