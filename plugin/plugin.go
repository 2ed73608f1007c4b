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

// Package plugin runs function-like macros compiled to WebAssembly.
//
// A plugin named "foo" is the file "macro-foo.wasm" in one of the
// directories of the search path. It exports two functions:
//
//	macro_allocate(len u32) -> ptr u32
//	macro_expand(ptr u32, len u32, response_ptr_ptr u32) -> rc u32
//
// The host allocates the request (the macro input as source text), then
// calls macro_expand, which stores the address of its response at
// response_ptr_ptr. A response is a little-endian u32 length followed by
// that many bytes. When rc is 0 the response is the expanded source text,
// otherwise it is an error message.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	wasm "github.com/tetratelabs/wazero"

	"github.com/ELD/proc-macro-workshop/macro"
	"github.com/ELD/proc-macro-workshop/syntax"
)

// Environment variable consulted by SearchPath when no path is configured.
const SearchPathEnv = "MACROEXPAND_PLUGIN_PATH"

const memoryLimitPages = 16384

// SearchPath splits a ':'-separated path, falling back to
// $MACROEXPAND_PLUGIN_PATH when path is empty.
func SearchPath(path string) []string {
	if path == "" {
		path = os.Getenv(SearchPathEnv)
	}
	var dirs []string
	for _, dir := range strings.Split(path, ":") {
		if dir != "" {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// Loader locates, compiles and runs plugins. Compiled modules are cached
// for the life of the Loader; each expansion instantiates a fresh module.
type Loader struct {
	ctx        context.Context
	searchPath []string
	runtime    wasm.Runtime
	compiled   map[string]wasm.CompiledModule
}

func NewLoader(ctx context.Context, searchPath []string) *Loader {
	runtimeConfig := wasm.NewRuntimeConfigInterpreter()
	runtimeConfig = runtimeConfig.WithMemoryLimitPages(memoryLimitPages)
	return &Loader{
		ctx:        ctx,
		searchPath: searchPath,
		runtime:    wasm.NewRuntimeWithConfig(ctx, runtimeConfig),
		compiled:   make(map[string]wasm.CompiledModule),
	}
}

func (l *Loader) Close() error {
	return l.runtime.Close(l.ctx)
}

// Filename returns the basename under which the plugin named name is
// searched for.
func Filename(name string) string {
	return fmt.Sprintf("macro-%s.wasm", name)
}

// Locate returns the path of the plugin named name.
func (l *Loader) Locate(name string) (string, error) {
	basename := Filename(name)
	for _, dir := range l.searchPath {
		pluginPath := filepath.Join(dir, basename)
		_, err := os.Stat(pluginPath)
		if err == nil {
			return pluginPath, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}
	return "", errPluginNotFound(name, l.searchPath)
}

// Func returns the plugin named name as a macro. The plugin is compiled on
// first use.
func (l *Loader) Func(name string) (macro.Func, error) {
	pluginPath, err := l.Locate(name)
	if err != nil {
		return nil, err
	}
	return func(input syntax.TokenStream) (syntax.TokenStream, error) {
		return l.expand(name, pluginPath, input)
	}, nil
}

// ResolveFunc reports ok=false, with no error, for plugins that are not on
// the search path.
func (l *Loader) ResolveFunc(name string) (macro.Func, bool, error) {
	fn, err := l.Func(name)
	if err != nil {
		var pluginErr *Error
		if errors.As(err, &pluginErr) && pluginErr.code == 6002 {
			return nil, false, nil
		}
		return nil, false, err
	}
	return fn, true, nil
}

func (l *Loader) compile(name, pluginPath string, span syntax.Span) (wasm.CompiledModule, error) {
	if compiled, ok := l.compiled[name]; ok {
		return compiled, nil
	}
	pluginBin, err := os.ReadFile(pluginPath)
	if err != nil {
		return nil, errPluginFailed(name, err.Error(), span)
	}
	compiled, err := l.runtime.CompileModule(l.ctx, pluginBin)
	if err != nil {
		return nil, errPluginFailed(name, err.Error(), span)
	}
	l.compiled[name] = compiled
	return compiled, nil
}

func (l *Loader) expand(name, pluginPath string, input syntax.TokenStream) (syntax.TokenStream, error) {
	ctx := l.ctx
	span := input.Span()
	compiled, err := l.compile(name, pluginPath, span)
	if err != nil {
		return nil, err
	}

	moduleConfig := wasm.NewModuleConfig().WithName("")
	plugin, err := l.runtime.InstantiateModule(ctx, compiled, moduleConfig)
	if err != nil {
		return nil, errPluginFailed(name, err.Error(), span)
	}
	defer plugin.Close(ctx)

	mem := plugin.Memory()
	wasmAlloc := plugin.ExportedFunction("macro_allocate")
	wasmExpand := plugin.ExportedFunction("macro_expand")
	switch {
	case mem == nil:
		return nil, errPluginBadResponse(name, "no linear memory", span)
	case wasmAlloc == nil:
		return nil, errPluginBadResponse(name, "missing export macro_allocate", span)
	case wasmExpand == nil:
		return nil, errPluginBadResponse(name, "missing export macro_expand", span)
	}

	requestBuf := []byte(syntax.Unparse(input))
	results, err := wasmAlloc.Call(ctx, uint64(len(requestBuf)))
	if err != nil {
		return nil, errPluginFailed(name, err.Error(), span)
	}
	requestPtr := uint32(results[0])
	if !mem.Write(requestPtr, requestBuf) {
		return nil, errPluginBadResponse(name, "request buffer out of range", span)
	}

	results, err = wasmAlloc.Call(ctx, 4)
	if err != nil {
		return nil, errPluginFailed(name, err.Error(), span)
	}
	responsePtrPtr := uint32(results[0])

	results, err = wasmExpand.Call(ctx, uint64(requestPtr), uint64(len(requestBuf)), uint64(responsePtrPtr))
	if err != nil {
		return nil, errPluginFailed(name, err.Error(), span)
	}
	rc := uint32(results[0])

	responsePtr, ok := mem.ReadUint32Le(responsePtrPtr)
	if !ok {
		return nil, errPluginBadResponse(name, "response pointer out of range", span)
	}
	responseLen, ok := mem.ReadUint32Le(responsePtr)
	if !ok {
		return nil, errPluginBadResponse(name, "response length out of range", span)
	}
	responseBuf, ok := mem.Read(responsePtr+4, responseLen)
	if !ok {
		return nil, errPluginBadResponse(name, "response body out of range", span)
	}

	if rc != 0 {
		return nil, errPluginFailed(name, strings.TrimSpace(string(responseBuf)), span)
	}
	output, err := syntax.Parse(responseBuf)
	if err != nil {
		return nil, errPluginBadResponse(name, err.Error(), span)
	}
	return syntax.Respan(output, span), nil
}
