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

package macro

import (
	"errors"
	"maps"
	"slices"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/ELD/proc-macro-workshop/syntax"
)

// Func is a function-like macro, invoked as `name!(...)`. It receives the
// tokens inside the invocation's delimiters.
type Func func(input syntax.TokenStream) (syntax.TokenStream, error)

// Attr is an attribute macro, invoked as `#[name(args)]` on an item. It
// receives the attribute arguments (empty when absent) and the item with
// the invoking attribute removed.
type Attr func(args, item syntax.TokenStream) (syntax.TokenStream, error)

// Diagnostic is an error located in the macro input.
type Diagnostic interface {
	error
	Code() uint32
	Message() string
	Span() syntax.Span
}

// Set maps macro names to generators.
type Set struct {
	funcs map[string]Func
	attrs map[string]Attr
}

func NewSet() *Set {
	return &Set{
		funcs: make(map[string]Func),
		attrs: make(map[string]Attr),
	}
}

// AddFunc registers fn under name, replacing any previous registration.
func (s *Set) AddFunc(name string, fn Func) {
	s.funcs[name] = fn
}

// AddAttr registers attr under name, replacing any previous registration.
// Path-qualified names such as "sorted::check" are matched against the
// full attribute path.
func (s *Set) AddAttr(name string, attr Attr) {
	s.attrs[name] = attr
}

func (s *Set) Func(name string) (Func, bool) {
	fn, ok := s.funcs[name]
	return fn, ok
}

func (s *Set) Attr(name string) (Attr, bool) {
	attr, ok := s.attrs[name]
	return attr, ok
}

func (s *Set) FuncNames() []string {
	return slices.Sorted(maps.Keys(s.funcs))
}

func (s *Set) AttrNames() []string {
	return slices.Sorted(maps.Keys(s.attrs))
}

// Merge copies every registration of other into s.
func (s *Set) Merge(other *Set) {
	maps.Copy(s.funcs, other.funcs)
	maps.Copy(s.attrs, other.attrs)
}

// Suggest returns the candidate that most closely resembles name, or "" if
// none does.
func Suggest(name string, candidates []string) string {
	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) == 0 {
		for ii, candidate := range candidates {
			if distance := fuzzy.RankMatchFold(candidate, name); distance >= 0 {
				ranks = append(ranks, fuzzy.Rank{
					Source:        candidate,
					Target:        candidate,
					Distance:      distance,
					OriginalIndex: ii,
				})
			}
		}
	}
	if len(ranks) == 0 {
		return ""
	}
	sort.Stable(ranks)
	return ranks[0].Target
}

type unlocatedError struct {
	err  error
	span syntax.Span
}

func (err *unlocatedError) Error() string {
	return err.err.Error()
}

func (err *unlocatedError) Unwrap() error {
	return err.err
}

func (err *unlocatedError) Code() uint32 {
	return 0
}

func (err *unlocatedError) Message() string {
	return err.err.Error()
}

func (err *unlocatedError) Span() syntax.Span {
	return err.span
}

// DiagnosticOf returns the Diagnostic in err's chain. Errors that carry no
// location are reported at fallback with code 0.
func DiagnosticOf(err error, fallback syntax.Span) Diagnostic {
	var diag Diagnostic
	if errors.As(err, &diag) {
		return diag
	}
	return &unlocatedError{err: err, span: fallback}
}

// CompileError renders err as `compile_error! { "message" }`, with every
// token spanned at the error's location.
func CompileError(err error, fallback syntax.Span) syntax.TokenStream {
	diag := DiagnosticOf(err, fallback)
	span := diag.Span()
	return syntax.TokenStream{
		syntax.NewIdent("compile_error", span),
		syntax.NewPunct('!', syntax.Alone, span),
		syntax.NewGroup(syntax.Brace, syntax.TokenStream{
			syntax.NewTextLit(diag.Message(), span),
		}, span),
	}
}
