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

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/ELD/proc-macro-workshop/bitfield"
	"github.com/ELD/proc-macro-workshop/expand"
	"github.com/ELD/proc-macro-workshop/macro"
	"github.com/ELD/proc-macro-workshop/syntax"
)

type cmdBitfieldGo struct {
	outPath string
	pkg     string
}

func (*cmdBitfieldGo) help() *commandHelp {
	return &commandHelp{
		usage:   "bitfield-go FILE",
		summary: "Generate Go declarations for the #[bitfield] structs in FILE",
	}
}

func (cmd *cmdBitfieldGo) flags(flags *pflag.FlagSet) {
	flags.StringVarP(&cmd.outPath, "output", "o", "", "write Go source to this path instead of stdout")
	flags.StringVar(&cmd.pkg, "package", "bitfields", "Go package name of the generated file")
}

func (cmd *cmdBitfieldGo) run(_ context.Context, argv []string) int {
	if len(argv) != 1 {
		return usageError(cmd.help().usage)
	}
	srcPath := argv[0]
	src, err := os.ReadFile(srcPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	file := newSourceFile(srcPath, src)

	layouts, diags, err := collectLayouts(src)
	if err != nil {
		reportError(file, err)
		return 1
	}
	if len(diags) > 0 {
		for _, diag := range diags {
			fmt.Fprintln(os.Stderr, renderDiagnostic(file, diag))
		}
		return 1
	}
	if len(layouts) == 0 {
		fmt.Fprintf(os.Stderr, "No #[bitfield] structs found in %s\n", srcPath)
		return 1
	}

	output := fmt.Sprintf("%#v", bitfield.EmitGo(cmd.pkg, layouts...))
	if err := writeOutput(cmd.outPath, output); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// collectLayouts finds the #[bitfield] structs of src. Specifiers declared
// by a generate_bits! invocation are accepted in the structs after it.
func collectLayouts(src []byte) ([]*bitfield.Layout, []macro.Diagnostic, error) {
	ts, err := syntax.Parse(src)
	if err != nil {
		return nil, nil, err
	}

	widths := bitfield.DefaultWidths()
	layoutOptions := bitfield.NewLayoutOptions(bitfield.WithWidths(widths))
	var layouts []*bitfield.Layout
	macros := macro.NewSet()
	macros.AddFunc("generate_bits", bitfield.DeclareBits(widths))
	macros.AddAttr("bitfield", func(args, item syntax.TokenStream) (syntax.TokenStream, error) {
		s, err := bitfield.ParseStruct(item)
		if err != nil {
			return nil, err
		}
		layout, err := layoutOptions.NewLayout(s)
		if err != nil {
			return nil, err
		}
		layouts = append(layouts, layout)
		return nil, nil
	})

	result := expand.Stream(ts, expand.WithMacros(macros))
	return layouts, result.Diagnostics, nil
}
