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

package expand

import (
	"log"
	"strings"

	"github.com/ELD/proc-macro-workshop/bitfield"
	"github.com/ELD/proc-macro-workshop/macro"
	"github.com/ELD/proc-macro-workshop/seq"
	"github.com/ELD/proc-macro-workshop/sorted"
	"github.com/ELD/proc-macro-workshop/syntax"
)

// DefaultMacros returns the built-in generators. Each set has its own
// specifier table: #[bitfield] starts from B1 through B64 and also accepts
// the specifiers of every generate_bits! the set expanded before it.
func DefaultMacros() *macro.Set {
	widths := bitfield.DefaultWidths()
	set := macro.NewSet()
	set.AddFunc("seq", seq.Seq)
	set.AddFunc("eseq", seq.Eseq)
	set.AddFunc("generate_bits", bitfield.DeclareBits(widths))
	set.AddAttr("bitfield", bitfield.Bitfield(bitfield.WithWidths(widths)))
	set.AddAttr("sorted", sorted.Sorted)
	set.AddAttr("sorted::check", sorted.Check)
	set.AddAttr("check", sorted.Check)
	return set
}

// Resolver supplies function-like macros missing from the macro set.
type Resolver interface {
	// ResolveFunc returns ok=false if no macro is named name.
	ResolveFunc(name string) (fn macro.Func, ok bool, err error)
}

type Option interface {
	apply(*Options)
}

type option func(*Options)

func (f option) apply(opts *Options) { f(opts) }

// WithMacros replaces the DefaultMacros set that each Stream call builds.
func WithMacros(macros *macro.Set) Option {
	return option(func(opts *Options) {
		opts.macros = macros
	})
}

// WithLogger logs each expansion site to logger.
func WithLogger(logger *log.Logger) Option {
	return option(func(opts *Options) {
		opts.logger = logger
	})
}

func WithResolver(resolver Resolver) Option {
	return option(func(opts *Options) {
		opts.resolver = resolver
	})
}

type Options struct {
	macros   *macro.Set
	logger   *log.Logger
	resolver Resolver
}

func NewOptions(opts ...Option) *Options {
	expandOptions := &Options{}
	for _, opt := range opts {
		opt.apply(expandOptions)
	}
	return expandOptions
}

type Result struct {
	Tokens      syntax.TokenStream
	Diagnostics []macro.Diagnostic

	// Expansions counts the macro invocations that were run.
	Expansions int
}

// Source parses src and expands every macro invocation in it.
func Source(src []byte, opts ...Option) (*Result, error) {
	return NewOptions(opts...).Source(src)
}

// Stream expands every macro invocation in ts.
func Stream(ts syntax.TokenStream, opts ...Option) *Result {
	return NewOptions(opts...).Stream(ts)
}

func (opts *Options) Source(src []byte) (*Result, error) {
	ts, err := syntax.Parse(src)
	if err != nil {
		return nil, err
	}
	return opts.Stream(ts), nil
}

func (opts *Options) Stream(ts syntax.TokenStream) *Result {
	macros := opts.macros
	if macros == nil {
		macros = DefaultMacros()
	}
	e := &expander{opts: opts, macros: macros}
	tokens := e.walk(ts, true)
	return &Result{
		Tokens:      tokens,
		Diagnostics: e.diagnostics,
		Expansions:  e.expansions,
	}
}

type expander struct {
	opts        *Options
	macros      *macro.Set
	diagnostics []macro.Diagnostic
	expansions  int
}

func (e *expander) logf(format string, args ...interface{}) {
	if e.opts.logger != nil {
		e.opts.logger.Printf(format, args...)
	}
}

// walk copies ts with invocations replaced by their expansions. Attribute
// macros are only run when attrs is set.
func (e *expander) walk(ts syntax.TokenStream, attrs bool) syntax.TokenStream {
	out := make(syntax.TokenStream, 0, len(ts))
	cur := ts.Cursor()
	var prev syntax.TokenTree
	for !cur.Done() {
		if attrs {
			if inv, ok := e.attrInvocation(cur); ok {
				out = append(out, e.expandAttr(inv)...)
				prev = nil
				continue
			}
		}
		if inv, ok := e.funcInvocation(cur, prev); ok {
			out = append(out, e.expandFunc(inv)...)
			prev = nil
			continue
		}

		tt, _ := cur.Next()
		if group, ok := tt.(*syntax.Group); ok {
			tt = syntax.NewGroup(group.Delimiter(), e.walk(group.Stream(), attrs), group.Span())
		}
		out = append(out, tt)
		prev = tt
	}
	return out
}

type attrInvocation struct {
	name string
	attr macro.Attr
	span syntax.Span
	args syntax.TokenStream
	item syntax.TokenStream
}

// attrInvocation matches `#[path]` or `#[path(args)]` naming a registered
// attribute macro, followed by the item it annotates. The item extends
// through the first top-level brace group or ';'.
func (e *expander) attrInvocation(cur *syntax.Cursor) (*attrInvocation, bool) {
	fork := cur.Fork()
	hash, _ := fork.Next()
	tt, _ := fork.Next()
	body, ok := tt.(*syntax.Group)
	if !syntax.IsPunct(hash, '#') || !ok || body.Delimiter() != syntax.Bracket {
		return nil, false
	}

	bodyCur := body.Cursor()
	name, ok := parsePath(bodyCur)
	if !ok {
		return nil, false
	}
	var args syntax.TokenStream
	if tt, ok := bodyCur.Peek(); ok {
		argsGroup, isGroup := tt.(*syntax.Group)
		if !isGroup || argsGroup.Delimiter() != syntax.Parenthesis {
			return nil, false
		}
		bodyCur.Next()
		args = argsGroup.Stream()
	}
	if !bodyCur.Done() {
		return nil, false
	}
	attr, ok := e.macros.Attr(name)
	if !ok {
		return nil, false
	}

	var item syntax.TokenStream
	for {
		tt, ok := fork.Next()
		if !ok {
			break
		}
		item = append(item, tt)
		if syntax.IsGroup(tt, syntax.Brace) || syntax.IsPunct(tt, ';') {
			break
		}
	}
	cur.Commit(fork)
	return &attrInvocation{
		name: name,
		attr: attr,
		span: hash.Span().Join(body.Span()),
		args: args,
		item: item,
	}, true
}

func (e *expander) expandAttr(inv *attrInvocation) syntax.TokenStream {
	e.expansions++
	if len(inv.item) == 0 {
		return e.report(nil, errAttrMissingItem(inv.name, inv.span), inv.span)
	}
	e.logf("expanding #[%s] at offset %d", inv.name, inv.span.Start())
	out, err := inv.attr(inv.args, inv.item)
	if err != nil {
		return e.report(e.walk(out, false), err, inv.span)
	}
	return e.walk(out, false)
}

type funcInvocation struct {
	name  string
	fn    macro.Func
	span  syntax.Span
	input syntax.TokenStream
}

// funcInvocation matches `path!(...)`, `path![...]` or `path! { ... }`
// naming a registered or resolvable function-like macro. A ';' after a
// statement-position invocation is part of it.
func (e *expander) funcInvocation(cur *syntax.Cursor, prev syntax.TokenTree) (*funcInvocation, bool) {
	start := cur.Span()
	fork := cur.Fork()
	path, ok := parsePath(&fork)
	if !ok || !fork.TryPunct("!") {
		return nil, false
	}
	tt, _ := fork.Next()
	group, ok := tt.(*syntax.Group)
	if !ok {
		return nil, false
	}

	name := path
	if idx := strings.LastIndex(path, "::"); idx >= 0 {
		name = path[idx+2:]
	}
	fn, ok := e.macros.Func(name)
	if !ok {
		fn, ok = e.resolve(name, start)
		if !ok {
			return nil, false
		}
	}

	if group.Delimiter() != syntax.Brace && atStatementStart(prev) {
		semi := fork.Fork()
		if semiTT, _ := semi.Next(); syntax.IsPunct(semiTT, ';') {
			fork.Commit(semi)
		}
	}
	cur.Commit(fork)
	return &funcInvocation{
		name:  name,
		fn:    fn,
		span:  start.Join(group.Span()),
		input: group.Stream(),
	}, true
}

func (e *expander) resolve(name string, span syntax.Span) (macro.Func, bool) {
	if e.opts.resolver != nil {
		fn, ok, err := e.opts.resolver.ResolveFunc(name)
		if err != nil {
			e.diagnostics = append(e.diagnostics, macro.DiagnosticOf(err, span))
			return nil, false
		}
		if ok {
			return fn, true
		}
	}
	if suggestion := macro.Suggest(name, e.macros.FuncNames()); suggestion != "" {
		e.logf("unknown macro %s! at offset %d (did you mean %s!?)", name, span.Start(), suggestion)
	}
	return nil, false
}

func (e *expander) expandFunc(inv *funcInvocation) syntax.TokenStream {
	e.expansions++
	e.logf("expanding %s! at offset %d", inv.name, inv.span.Start())
	out, err := inv.fn(inv.input)
	if err != nil {
		return e.report(out, err, inv.span)
	}
	return out
}

// report records err and appends its compile_error! rendering to out.
func (e *expander) report(out syntax.TokenStream, err error, fallback syntax.Span) syntax.TokenStream {
	diag := macro.DiagnosticOf(err, fallback)
	e.diagnostics = append(e.diagnostics, diag)
	e.logf("%s", diag.Error())
	return append(out, macro.CompileError(diag, fallback)...)
}

func atStatementStart(prev syntax.TokenTree) bool {
	return prev == nil || syntax.IsPunct(prev, ';') || syntax.IsGroup(prev, syntax.Brace)
}

// parsePath consumes `ident (:: ident)*` and returns it joined with "::".
func parsePath(cur *syntax.Cursor) (string, bool) {
	fork := cur.Fork()
	var segments []string
	for {
		tt, _ := fork.Next()
		ident, ok := tt.(*syntax.Ident)
		if !ok {
			return "", false
		}
		segments = append(segments, ident.Get())
		if !fork.TryPunct("::") {
			break
		}
	}
	cur.Commit(fork)
	return strings.Join(segments, "::"), true
}
