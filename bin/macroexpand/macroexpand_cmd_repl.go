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
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"
	"github.com/spf13/pflag"

	"github.com/ELD/proc-macro-workshop/expand"
	"github.com/ELD/proc-macro-workshop/macro"
	"github.com/ELD/proc-macro-workshop/plugin"
	"github.com/ELD/proc-macro-workshop/syntax"
)

const (
	historyFile = ".macroexpand_history"
	promptMain  = "macroexpand> "
	promptCont  = "... "
)

type cmdRepl struct {
	pluginPath string
	noColor    bool
}

func (*cmdRepl) help() *commandHelp {
	return &commandHelp{
		usage:   "repl",
		summary: "Expand macro invocations interactively",
	}
}

func (cmd *cmdRepl) flags(flags *pflag.FlagSet) {
	flags.StringVar(&cmd.pluginPath, "plugin-path", "", "':'-separated plugin directories (default $"+plugin.SearchPathEnv+")")
	flags.BoolVar(&cmd.noColor, "no-color", false, "disable colored diagnostics")
}

func (cmd *cmdRepl) run(ctx context.Context, argv []string) int {
	if len(argv) != 0 {
		return usageError(cmd.help().usage)
	}
	if cmd.noColor {
		color.NoColor = true
	}

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	loader := plugin.NewLoader(ctx, plugin.SearchPath(cmd.pluginPath))
	defer loader.Close()

	for {
		src, ok := readSource(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			return 0
		}
		switch strings.TrimSpace(src) {
		case "":
			continue
		case ":quit":
			return 0
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		fmt.Print(expandEntry(src, expand.WithResolver(loader)))
	}
}

// expandEntry expands one REPL entry, returning the expansion followed by
// any rendered diagnostics.
func expandEntry(src string, opts ...expand.Option) string {
	var out strings.Builder
	file := newSourceFile("<repl>", []byte(src))
	result, err := expand.Source([]byte(src), opts...)
	if err != nil {
		var diag macro.Diagnostic
		if errors.As(err, &diag) {
			return renderDiagnostic(file, diag) + "\n"
		}
		return err.Error() + "\n"
	}
	out.WriteString(syntax.Format(result.Tokens))
	for _, diag := range result.Diagnostics {
		out.WriteString(renderDiagnostic(file, diag))
		out.WriteByte('\n')
	}
	return out.String()
}

type prompter interface {
	Prompt(prompt string) (string, error)
}

// readSource reads lines until they form a complete token stream, or until
// a line leaves them malformed in a way more input cannot fix.
func readSource(ln prompter, prompt, cont string) (string, bool) {
	var b strings.Builder
	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if _, err := syntax.ParseString(src); syntax.IsIncomplete(err) {
			continue
		}
		return src, true
	}
}
