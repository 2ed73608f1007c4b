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

package syntax

import (
	"fmt"
	"math"
	"unicode"
	"unicode/utf8"
)

const (
	maxSrcLen   = 0x7FFFFFFF // (2**31)-1
	maxTokenLen = int(math.MaxUint16)

	tokenFlagByteLit uint8 = 0x01
	tokenFlagRawLit  uint8 = 0x02
)

type Token struct {
	Len   uint16
	Kind  TokenKind
	flags uint8
}

type TokenKind uint8

const (
	T_EOF TokenKind = iota

	T_SPACE
	T_NEWLINE
	T_COMMENT

	T_PUNCT

	T_OPEN_CURL
	T_CLOSE_CURL
	T_OPEN_PAREN
	T_CLOSE_PAREN
	T_OPEN_SQUARE
	T_CLOSE_SQUARE

	T_INT_LIT
	T_BIN_INT_LIT
	T_OCT_INT_LIT
	T_HEX_INT_LIT
	T_FLOAT_LIT

	T_TEXT_LIT
	T_CHAR_LIT

	T_IDENT
)

func (k TokenKind) String() string {
	switch k {
	case T_EOF:
		return "EOF"
	case T_SPACE:
		return "SPACE"
	case T_NEWLINE:
		return "NEWLINE"
	case T_COMMENT:
		return "COMMENT"
	case T_PUNCT:
		return "PUNCT"
	case T_OPEN_CURL:
		return "OPEN_CURL"
	case T_CLOSE_CURL:
		return "CLOSE_CURL"
	case T_OPEN_PAREN:
		return "OPEN_PAREN"
	case T_CLOSE_PAREN:
		return "CLOSE_PAREN"
	case T_OPEN_SQUARE:
		return "OPEN_SQUARE"
	case T_CLOSE_SQUARE:
		return "CLOSE_SQUARE"
	case T_INT_LIT:
		return "INT_LIT"
	case T_BIN_INT_LIT:
		return "BIN_INT_LIT"
	case T_OCT_INT_LIT:
		return "OCT_INT_LIT"
	case T_HEX_INT_LIT:
		return "HEX_INT_LIT"
	case T_FLOAT_LIT:
		return "FLOAT_LIT"
	case T_TEXT_LIT:
		return "TEXT_LIT"
	case T_CHAR_LIT:
		return "CHAR_LIT"
	case T_IDENT:
		return "IDENT"
	default:
		return fmt.Sprintf("TokenKind(%d)", uint8(k))
	}
}

func isPunctChar(c byte) bool {
	switch c {
	case '=', '<', '>', '!', '~', '+', '-', '*', '/', '%', '^',
		'&', '|', '@', '.', ',', ';', ':', '#', '$', '?', '\'':
		return true
	}
	return false
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') ||
		(r >= 0x80 && unicode.IsLetter(r))
}

func isIdentContinue(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9') ||
		(r >= 0x80 && unicode.IsDigit(r))
}

type Tokens struct {
	src    []byte
	offset uint32
}

func NewTokens(src []byte) (*Tokens, error) {
	if len(src) > maxSrcLen {
		return nil, errSourceTooLong(len(src))
	}
	if !utf8.Valid(src) {
		return nil, errInvalidUtf8(src)
	}
	return &Tokens{
		src: src,
	}, nil
}

// Offset returns the byte offset of the next token.
func (t *Tokens) Offset() uint32 {
	return t.offset
}

func (t *Tokens) Next(token *Token) error {
	if len(t.src) == 0 {
		*token = Token{
			Kind: T_EOF,
		}
		return nil
	}

	c := t.src[0]
	var kind TokenKind
	switch c {
	case '\t', ' ':
		return t.nextSpace(token)
	case '\n':
		kind = T_NEWLINE
		goto len1
	case '{':
		kind = T_OPEN_CURL
		goto len1
	case '}':
		kind = T_CLOSE_CURL
		goto len1
	case '(':
		kind = T_OPEN_PAREN
		goto len1
	case ')':
		kind = T_CLOSE_PAREN
		goto len1
	case '[':
		kind = T_OPEN_SQUARE
		goto len1
	case ']':
		kind = T_CLOSE_SQUARE
		goto len1
	case '/':
		if len(t.src) > 1 && t.src[1] == '/' {
			return t.nextLineComment(token)
		}
		if len(t.src) > 1 && t.src[1] == '*' {
			return t.nextBlockComment(token)
		}
		kind = T_PUNCT
		goto len1
	case '"':
		return t.nextTextLit(token, 0, 0)
	case '\'':
		if ok, err := t.nextCharLit(token, 0); ok || err != nil {
			return err
		}
		kind = T_PUNCT
		goto len1
	case '\r':
		if len(t.src) < 2 || t.src[1] != '\n' {
			return errForbiddenControlCharacter(t.offset, c)
		}
		*token = Token{
			Kind: T_NEWLINE,
			Len:  2,
		}
		t.offset += 2
		t.src = t.src[2:]
		return nil
	default:
		goto big
	}

len1:
	*token = Token{
		Kind: kind,
		Len:  1,
	}
	t.offset += 1
	t.src = t.src[1:]
	return nil

big:
	if c >= '0' && c <= '9' {
		return t.nextNumLit(token)
	}

	if isPunctChar(c) {
		kind = T_PUNCT
		goto len1
	}

	if c == 'b' || c == 'r' {
		if ok, err := t.nextPrefixedLit(token); ok || err != nil {
			return err
		}
	}

	r, _ := utf8.DecodeRune(t.src)
	if isIdentStart(r) {
		return t.nextIdent(token)
	}
	if r == '\u00A0' {
		return t.nextSpace(token)
	}

	if r < 0x20 || r == 0x7F {
		return errForbiddenControlCharacter(t.offset, c)
	}
	return errUnexpectedCharacter(t.offset, r)
}

func (t *Tokens) nextSpace(token *Token) error {
	src := t.src
	for {
		if src[0] == ' ' || src[0] == '\t' {
			src = src[1:]
		} else if r, runeLen := utf8.DecodeRune(src); r == '\u00A0' {
			src = src[runeLen:]
		} else {
			break
		}
		if len(src) == 0 {
			break
		}
	}
	tokenLen, err := t.checkTokenLen(len(t.src) - len(src))
	if err != nil {
		return err
	}
	*token = Token{
		Kind: T_SPACE,
		Len:  tokenLen,
	}
	t.offset += uint32(tokenLen)
	t.src = src
	return nil
}

func (t *Tokens) nextLineComment(token *Token) error {
	src := t.src
	for ii, c := range src {
		if c == '\n' || c == '\r' {
			src = src[:ii]
			break
		}
	}
	return t.emit(token, T_COMMENT, len(src), 0)
}

func (t *Tokens) nextBlockComment(token *Token) error {
	depth := 0
	for ii := 0; ii+1 < len(t.src); ii++ {
		switch {
		case t.src[ii] == '/' && t.src[ii+1] == '*':
			depth++
			ii++
		case t.src[ii] == '*' && t.src[ii+1] == '/':
			depth--
			ii++
			if depth == 0 {
				return t.emit(token, T_COMMENT, ii+1, 0)
			}
		}
	}
	return errCommentUnterminated(t.offset, uint32(len(t.src)))
}

func (t *Tokens) nextNumLit(token *Token) error {
	numSrc := t.src
	tokenLen := 0

	kind := T_INT_LIT
	if numSrc[0] == '0' && len(numSrc) > 1 {
		switch numSrc[1] {
		case 'b':
			kind = T_BIN_INT_LIT
		case 'o':
			kind = T_OCT_INT_LIT
		case 'x':
			kind = T_HEX_INT_LIT
		}
		if kind != T_INT_LIT {
			tokenLen += 2
			numSrc = numSrc[2:]
		}
	}

	digits := 0
	invalid := false
digitLoop:
	for _, c := range numSrc {
		switch {
		case c == '_':
		case isDigitOf(kind, c):
			digits++
		case c >= '0' && c <= '9':
			invalid = true
		default:
			break digitLoop
		}
		tokenLen++
	}
	if digits == 0 {
		invalid = true
	}

	if kind == T_INT_LIT {
		rest := t.src[tokenLen:]
		// A '.' makes a float only when a digit follows, so that "0..3" is
		// lexed as a range.
		if len(rest) > 1 && rest[0] == '.' && rest[1] >= '0' && rest[1] <= '9' {
			kind = T_FLOAT_LIT
			tokenLen++
			for _, c := range rest[1:] {
				if (c >= '0' && c <= '9') || c == '_' {
					tokenLen++
					continue
				}
				break
			}
			rest = t.src[tokenLen:]
		}
		if len(rest) > 1 && (rest[0] == 'e' || rest[0] == 'E') {
			exp := rest[1:]
			if exp[0] == '+' || exp[0] == '-' {
				exp = exp[1:]
			}
			if len(exp) > 0 && exp[0] >= '0' && exp[0] <= '9' {
				kind = T_FLOAT_LIT
				tokenLen += len(rest) - len(exp)
				for _, c := range exp {
					if (c >= '0' && c <= '9') || c == '_' {
						tokenLen++
						continue
					}
					break
				}
			}
		}
	}

	// Type suffix, such as "u8" or "f64".
	suffix := t.src[tokenLen:]
	if len(suffix) > 0 && isIdentStart(rune(suffix[0])) && suffix[0] < utf8.RuneSelf {
		for _, c := range suffix {
			if c < utf8.RuneSelf && isIdentContinue(rune(c)) {
				tokenLen++
				continue
			}
			break
		}
	}

	if invalid {
		return errIntLitInvalid(t.offset, t.src[:tokenLen])
	}
	return t.emit(token, kind, tokenLen, 0)
}

func isDigitOf(kind TokenKind, c byte) bool {
	switch kind {
	case T_BIN_INT_LIT:
		return c == '0' || c == '1'
	case T_OCT_INT_LIT:
		return c >= '0' && c <= '7'
	case T_HEX_INT_LIT:
		return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'F') || (c >= 'a' && c <= 'f')
	}
	return c >= '0' && c <= '9'
}

func (t *Tokens) nextPrefixedLit(token *Token) (bool, error) {
	src := t.src
	var flags uint8
	prefix := 0
	if src[0] == 'b' {
		flags |= tokenFlagByteLit
		prefix = 1
		if len(src) > 1 && src[1] == '\'' {
			return t.nextCharLit(token, prefix)
		}
	}
	if prefix < len(src) && src[prefix] == 'r' {
		hashes := 0
		for prefix+1+hashes < len(src) && src[prefix+1+hashes] == '#' {
			hashes++
		}
		if prefix+1+hashes < len(src) && src[prefix+1+hashes] == '"' {
			return true, t.nextRawTextLit(token, prefix+1, hashes, flags|tokenFlagRawLit)
		}
		return false, nil
	}
	if prefix < len(src) && src[prefix] == '"' {
		return true, t.nextTextLit(token, prefix, flags)
	}
	return false, nil
}

func (t *Tokens) nextTextLit(token *Token, prefix int, flags uint8) error {
	escaped := false
	for ii := prefix + 1; ii < len(t.src); ii++ {
		c := t.src[ii]
		if escaped {
			escaped = false
			continue
		}
		if c == '"' {
			return t.emit(token, T_TEXT_LIT, ii+1, flags)
		}
		if c <= 0x1F && c != '\t' && c != '\n' && c != '\r' {
			return errForbiddenControlCharacter(t.offset+uint32(ii), c)
		}
		escaped = c == '\\'
	}
	return errTextLitUnterminated(t.offset, uint32(len(t.src)))
}

func (t *Tokens) nextRawTextLit(token *Token, prefix, hashes int, flags uint8) error {
	start := prefix + hashes + 1
	for ii := start; ii < len(t.src); ii++ {
		if t.src[ii] != '"' {
			continue
		}
		closing := 0
		for closing < hashes && ii+1+closing < len(t.src) && t.src[ii+1+closing] == '#' {
			closing++
		}
		if closing == hashes {
			return t.emit(token, T_TEXT_LIT, ii+1+hashes, flags)
		}
	}
	return errTextLitUnterminated(t.offset, uint32(len(t.src)))
}

// nextCharLit reports false when the quote at t.src[prefix] begins a
// lifetime or label rather than a character literal.
func (t *Tokens) nextCharLit(token *Token, prefix int) (bool, error) {
	var flags uint8
	if prefix > 0 {
		flags |= tokenFlagByteLit
	}
	body := t.src[prefix+1:]
	if len(body) == 0 {
		return false, nil
	}
	if body[0] == '\\' {
		for ii := 1; ii < len(body); ii++ {
			if body[ii] == '\'' && (ii > 1) {
				return true, t.emit(token, T_CHAR_LIT, prefix+ii+2, flags)
			}
			if body[ii] == '\n' {
				break
			}
		}
		return true, errCharLitUnterminated(t.offset, uint32(prefix+1+len(body)))
	}
	_, runeLen := utf8.DecodeRune(body)
	if runeLen < len(body) && body[runeLen] == '\'' {
		return true, t.emit(token, T_CHAR_LIT, prefix+runeLen+2, flags)
	}
	if prefix > 0 {
		return true, errCharLitUnterminated(t.offset, uint32(prefix+1+runeLen))
	}
	return false, nil
}

func (t *Tokens) nextIdent(token *Token) error {
	tokenLen := 0
	for tokenLen < len(t.src) {
		r, runeLen := utf8.DecodeRune(t.src[tokenLen:])
		if !isIdentContinue(r) {
			break
		}
		tokenLen += runeLen
	}
	return t.emit(token, T_IDENT, tokenLen, 0)
}

func (t *Tokens) emit(token *Token, kind TokenKind, tokenLen int, flags uint8) error {
	checkedLen, err := t.checkTokenLen(tokenLen)
	if err != nil {
		return err
	}
	*token = Token{
		Kind:  kind,
		Len:   checkedLen,
		flags: flags,
	}
	t.offset += uint32(checkedLen)
	t.src = t.src[checkedLen:]
	return nil
}

func (t *Tokens) checkTokenLen(len int) (uint16, error) {
	if len > maxTokenLen {
		return 0, errTokenTooLong(t.offset, len)
	}
	return uint16(len), nil
}
