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
	"github.com/ELD/proc-macro-workshop/syntax"
)

// Sorted implements #[sorted] on an enum. The item is returned unchanged,
// together with an error at the first variant that sorts before its
// predecessor.
func Sorted(args, item syntax.TokenStream) (syntax.TokenStream, error) {
	if len(args) > 0 {
		return item, errUnexpectedArgs(args.Span())
	}
	variants, err := enumVariants(item)
	if err != nil {
		return item, err
	}
	var seen order
	for _, variant := range variants {
		if before, ok := seen.accept(variant.Get()); !ok {
			return item, errVariantOutOfOrder(variant.Get(), before, variant.Span())
		}
	}
	return item, nil
}

// order holds keys in the order they were accepted.
type order []string

// accept records key. If key sorts before the previously accepted key, it
// also returns the first accepted key that is greater than key.
func (o *order) accept(key string) (string, bool) {
	keys := *o
	*o = append(keys, key)
	if len(keys) == 0 || key >= keys[len(keys)-1] {
		return "", true
	}
	for _, accepted := range keys {
		if accepted > key {
			return accepted, false
		}
	}
	return keys[len(keys)-1], false
}

func enumVariants(item syntax.TokenStream) ([]*syntax.Ident, error) {
	cur := item.Cursor()
	cur.OuterAttrs()
	cur.Visibility()
	if !cur.TryKeyword("enum") {
		return nil, errExpectedEnumOrMatch(cur.Span())
	}
	if _, err := cur.ExpectIdent(); err != nil {
		return nil, err
	}
	for {
		tt, ok := cur.Peek()
		if !ok || syntax.IsGroup(tt, syntax.Brace) {
			break
		}
		cur.Next()
	}
	body, err := cur.ExpectGroup(syntax.Brace)
	if err != nil {
		return nil, err
	}
	if err := cur.ExpectEnd(); err != nil {
		return nil, err
	}

	var variants []*syntax.Ident
	cur = body.Cursor()
	for !cur.Done() {
		cur.OuterAttrs()
		name, err := cur.ExpectIdent()
		if err != nil {
			return nil, err
		}
		variants = append(variants, name)
		skipUntilComma(cur)
	}
	return variants, nil
}

// skipUntilComma consumes tokens up to and including the next ','.
func skipUntilComma(cur *syntax.Cursor) {
	for {
		tt, ok := cur.Next()
		if !ok || syntax.IsPunct(tt, ',') {
			return
		}
	}
}
