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

// Command tinygo_build compiles a macroexpand plugin package to
// WebAssembly with TinyGo.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/ELD/proc-macro-workshop/plugin"
)

var (
	tinygo  = flag.String("tinygo", "tinygo", "path to the tinygo binary")
	name    = flag.String("plugin", "", "plugin name, compiled to macro-NAME.wasm")
	outDir  = flag.String("out-dir", ".", "directory for the compiled plugin")
	chdir   = flag.String("chdir", "", "directory to run tinygo in")
	wasmOpt = flag.String("wasm-opt", "", "path to wasm-opt")
)

func main() {
	flag.Parse()
	if *name == "" {
		fmt.Fprintln(os.Stderr, "No plugin name specified (set -plugin=)")
		os.Exit(1)
	}

	outPath, err := filepath.Abs(filepath.Join(*outDir, plugin.Filename(*name)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cmd := exec.Command(*tinygo, buildArgs(outPath, flag.Args())...)
	cmd.Env = os.Environ()
	if *wasmOpt != "" {
		cmd.Env = append(cmd.Env, "WASMOPT="+*wasmOpt)
	}
	cmd.Dir = *chdir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// buildArgs targets bare WebAssembly: plugins import nothing from the host.
func buildArgs(outPath string, pkgs []string) []string {
	args := []string{"build", "-target=wasm-unknown", "-o=" + outPath}
	if len(pkgs) == 0 {
		pkgs = []string{"."}
	}
	return append(args, pkgs...)
}
