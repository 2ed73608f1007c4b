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

package sorted

import (
	"strings"

	"github.com/ELD/proc-macro-workshop/syntax"
)

// Check implements #[sorted::check] on a function. Every `#[sorted]` match
// expression in the body has its arms checked, and the marker is removed
// from the returned function. Only the first problem is reported.
func Check(args, item syntax.TokenStream) (syntax.TokenStream, error) {
	if len(args) > 0 {
		return item, errUnexpectedArgs(args.Span())
	}
	result, err := CheckMatches(item)
	if err != nil {
		return item, err
	}
	if len(result.Errors) > 0 {
		return result.Tokens, result.Errors[0]
	}
	return result.Tokens, nil
}

type CheckResult struct {
	// Tokens is the function with `#[sorted]` markers removed.
	Tokens syntax.TokenStream

	// Errors lists every problem found, in source order.
	Errors []error
}

// CheckMatches is like Check, but reports every problem it finds. The
// returned error is set only if item is not a function.
func CheckMatches(item syntax.TokenStream) (*CheckResult, error) {
	cur := item.Cursor()
	cur.OuterAttrs()
	cur.Visibility()
	for cur.TryKeyword("const") || cur.TryKeyword("async") || cur.TryKeyword("unsafe") {
	}
	if cur.TryKeyword("extern") {
		if tt, ok := cur.Peek(); ok {
			if lit, ok := tt.(*syntax.Literal); ok && lit.Kind() == syntax.LitStr {
				cur.Next()
			}
		}
	}
	if !cur.TryKeyword("fn") {
		return nil, errExpectedFn(cur.Span())
	}
	for {
		tt, ok := cur.Peek()
		if !ok || syntax.IsGroup(tt, syntax.Brace) {
			break
		}
		cur.Next()
	}
	bodyIdx := len(item) - len(cur.Rest())
	body, err := cur.ExpectGroup(syntax.Brace)
	if err != nil {
		return nil, err
	}
	if err := cur.ExpectEnd(); err != nil {
		return nil, err
	}

	w := &walker{}
	out := make(syntax.TokenStream, 0, len(item))
	out = append(out, item[:bodyIdx]...)
	out = append(out, syntax.NewGroup(syntax.Brace, w.stream(body.Stream()), body.Span()))
	return &CheckResult{
		Tokens: out,
		Errors: w.errors,
	}, nil
}

type walker struct {
	errors []error
}

// stream copies ts, checking and unmarking `#[sorted]` match expressions.
// The scrutinee and arms of any match are not searched for further matches.
func (w *walker) stream(ts syntax.TokenStream) syntax.TokenStream {
	out := make(syntax.TokenStream, 0, len(ts))
	cur := ts.Cursor()
	for !cur.Done() {
		attrs := cur.OuterAttrs()
		next, _ := cur.Peek()
		if syntax.IsIdent(next, "match") {
			marked := false
			for _, attr := range attrs {
				if isSortedAttr(attr) {
					marked = true
					continue
				}
				out = append(out, attr...)
			}
			out = append(out, w.match(cur, marked)...)
			continue
		}
		for _, attr := range attrs {
			out = append(out, attr...)
		}

		tt, ok := cur.Next()
		if !ok {
			break
		}
		if group, ok := tt.(*syntax.Group); ok {
			out = append(out, syntax.NewGroup(group.Delimiter(), w.stream(group.Stream()), group.Span()))
			continue
		}
		out = append(out, tt)
	}
	return out
}

func isSortedAttr(attr syntax.TokenStream) bool {
	body := attr[1].(*syntax.Group).Stream()
	return len(body) == 1 && syntax.IsIdent(body[0], "sorted")
}

// match consumes a match expression through its arm block. A brace group
// directly followed by another brace group is a block scrutinee.
func (w *walker) match(cur *syntax.Cursor, marked bool) syntax.TokenStream {
	var out syntax.TokenStream
	for {
		tt, ok := cur.Next()
		if !ok {
			return out
		}
		out = append(out, tt)
		if arms, ok := tt.(*syntax.Group); ok && arms.Delimiter() == syntax.Brace {
			if next, ok := cur.Peek(); ok && syntax.IsGroup(next, syntax.Brace) {
				continue
			}
			if marked {
				w.checkArms(arms)
			}
			return out
		}
	}
}

func (w *walker) checkArms(arms *syntax.Group) {
	var seen order
	var wildcard syntax.TokenTree
	cur := arms.Cursor()
	for !cur.Done() {
		pattern, err := nextArm(cur)
		if err != nil {
			w.errors = append(w.errors, err)
			return
		}
		if wildcard != nil {
			w.errors = append(w.errors, errWildcardNotLast(wildcard.Span()))
			return
		}

		key, span, kind := classifyPattern(pattern)
		switch kind {
		case patternWildcard:
			wildcard = pattern[0]
			continue
		case patternUnsupported:
			w.errors = append(w.errors, errUnsupportedPattern(pattern.Span()))
			continue
		}
		if before, ok := seen.accept(key); !ok {
			w.errors = append(w.errors, errArmOutOfOrder(key, before, span))
		}
	}
}

// nextArm consumes one match arm and returns its pattern.
func nextArm(cur *syntax.Cursor) (syntax.TokenStream, error) {
	cur.OuterAttrs()
	if atArrow(cur) {
		_, err := cur.ExpectIdent()
		return nil, err
	}

	var pattern syntax.TokenStream
	guarded := false
	for !atArrow(cur) {
		tt, ok := cur.Peek()
		if !ok {
			break
		}
		if syntax.IsIdent(tt, "if") {
			guarded = true
		}
		if !guarded {
			pattern = append(pattern, tt)
		}
		cur.Next()
	}
	if _, err := cur.ExpectPunct("=>"); err != nil {
		return nil, err
	}

	if tt, ok := cur.Peek(); ok && syntax.IsGroup(tt, syntax.Brace) {
		cur.Next()
		cur.TryPunct(",")
	} else {
		skipUntilComma(cur)
	}
	return pattern, nil
}

func atArrow(cur *syntax.Cursor) bool {
	fork := cur.Fork()
	return fork.TryPunct("=>")
}

type patternKind uint8

const (
	patternPath patternKind = iota
	patternWildcard
	patternUnsupported
)

// classifyPattern derives the ordering key of a pattern: the path of a
// path, tuple-struct or struct pattern, or the name of an identifier
// binding.
func classifyPattern(pattern syntax.TokenStream) (string, syntax.Span, patternKind) {
	if len(pattern) == 1 && syntax.IsIdent(pattern[0], "_") {
		return "", pattern[0].Span(), patternWildcard
	}

	cur := pattern.Cursor()
	ref := cur.TryKeyword("ref")
	mut := cur.TryKeyword("mut")
	if ref || mut {
		ident, err := cur.ExpectIdent()
		if err != nil || !(cur.Done() || cur.TryPunct("@")) {
			return "", syntax.Span{}, patternUnsupported
		}
		return ident.Get(), ident.Span(), patternPath
	}

	start := cur.Span()
	cur.TryPunct("::")
	var segments []string
	var end syntax.Span
	for {
		ident, err := cur.ExpectIdent()
		if err != nil {
			return "", syntax.Span{}, patternUnsupported
		}
		segments = append(segments, ident.Get())
		end = ident.Span()
		if !cur.TryPunct("::") {
			break
		}
	}
	key := strings.Join(segments, "::")
	span := start.Join(end)

	if cur.Done() {
		return key, span, patternPath
	}
	if len(segments) == 1 && cur.TryPunct("@") {
		return key, span, patternPath
	}
	tt, _ := cur.Next()
	if (syntax.IsGroup(tt, syntax.Parenthesis) || syntax.IsGroup(tt, syntax.Brace)) && cur.Done() {
		return key, span, patternPath
	}
	return "", syntax.Span{}, patternUnsupported
}
