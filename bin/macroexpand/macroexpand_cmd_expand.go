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
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/ELD/proc-macro-workshop/expand"
	"github.com/ELD/proc-macro-workshop/macro"
	"github.com/ELD/proc-macro-workshop/plugin"
	"github.com/ELD/proc-macro-workshop/syntax"
)

type cmdExpand struct {
	outPath    string
	pluginPath string
	noColor    bool
	verbose    bool
	raw        bool
}

func (*cmdExpand) help() *commandHelp {
	return &commandHelp{
		usage:   "expand FILE",
		summary: "Expand the macro invocations in FILE",
	}
}

func (cmd *cmdExpand) flags(flags *pflag.FlagSet) {
	flags.StringVarP(&cmd.outPath, "output", "o", "", "write expanded source to this path instead of stdout")
	flags.StringVar(&cmd.pluginPath, "plugin-path", "", "':'-separated plugin directories (default $"+plugin.SearchPathEnv+")")
	flags.BoolVar(&cmd.noColor, "no-color", false, "disable colored diagnostics")
	flags.BoolVarP(&cmd.verbose, "verbose", "v", false, "log each expansion site")
	flags.BoolVar(&cmd.raw, "raw", false, "print the expansion on a single line")
}

func (cmd *cmdExpand) run(ctx context.Context, argv []string) int {
	if len(argv) != 1 {
		return usageError(cmd.help().usage)
	}
	if cmd.noColor {
		color.NoColor = true
	}

	srcPath := argv[0]
	src, err := os.ReadFile(srcPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	file := newSourceFile(srcPath, src)

	loader := plugin.NewLoader(ctx, plugin.SearchPath(cmd.pluginPath))
	defer loader.Close()

	opts := []expand.Option{expand.WithResolver(loader)}
	if cmd.verbose {
		opts = append(opts, expand.WithLogger(log.New(os.Stderr, "macroexpand: ", 0)))
	}
	result, err := expand.Source(src, opts...)
	if err != nil {
		reportError(file, err)
		return 1
	}

	var output string
	if cmd.raw {
		output = syntax.Unparse(result.Tokens) + "\n"
	} else {
		output = syntax.Format(result.Tokens)
	}
	if err := writeOutput(cmd.outPath, output); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	for _, diag := range result.Diagnostics {
		fmt.Fprintln(os.Stderr, renderDiagnostic(file, diag))
	}
	if len(result.Diagnostics) > 0 {
		return 1
	}
	return 0
}

// reportError renders err against file if it carries a location.
func reportError(file *sourceFile, err error) {
	var diag macro.Diagnostic
	if errors.As(err, &diag) {
		fmt.Fprintln(os.Stderr, renderDiagnostic(file, diag))
		return
	}
	fmt.Fprintln(os.Stderr, err)
}
