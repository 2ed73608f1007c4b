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

package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"testing"

	"github.com/ELD/proc-macro-workshop/syntax"
)

// TestdataFS returns the repository's testdata directory.
func TestdataFS() (fs.FS, error) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return nil, fmt.Errorf("testutil: cannot locate source file")
	}
	dir := filepath.Join(filepath.Dir(file), "..", "..", "testdata")
	if _, err := os.Stat(dir); err != nil {
		return nil, err
	}
	return os.DirFS(dir), nil
}

type Diagnostic struct {
	Key     string
	Code    uint32
	Message string
	Pattern *regexp.Regexp
}

// LoadDiagnostics reads the diagnostics catalogue, keyed by error name.
// Keys starting with '_' reserve a code without naming an error.
func LoadDiagnostics(testdata fs.FS) (map[string]*Diagnostic, error) {
	type raw struct {
		Code    uint32 `json:"code"`
		Message string `json:"message"`
		Pattern string `json:"message_pattern"`
	}

	jsonData, err := fs.ReadFile(testdata, "diagnostics/errors.json")
	if err != nil {
		return nil, err
	}

	var rawErrors map[string]raw
	decoder := json.NewDecoder(bytes.NewReader(jsonData))
	decoder.UseNumber()
	if err := decoder.Decode(&rawErrors); err != nil {
		return nil, err
	}

	out := make(map[string]*Diagnostic, len(rawErrors))
	codes := make(map[uint32]struct{}, len(rawErrors))
	for key, raw := range rawErrors {
		if key[0] == '_' {
			if raw.Code != 0 {
				if _, conflict := codes[raw.Code]; conflict {
					return nil, fmt.Errorf("duplicate error code %d", raw.Code)
				}
				codes[raw.Code] = struct{}{}
			}
			continue
		}

		if raw.Code == 0 {
			return nil, fmt.Errorf("error %q has no error code", key)
		}
		if _, conflict := codes[raw.Code]; conflict {
			return nil, fmt.Errorf("duplicate error code %d", raw.Code)
		}
		codes[raw.Code] = struct{}{}

		var pattern *regexp.Regexp
		if raw.Pattern != "" {
			pattern, err = regexp.Compile("(?i)" + raw.Pattern)
			if err != nil {
				return nil, err
			}
		}
		out[key] = &Diagnostic{
			Key:     key,
			Code:    raw.Code,
			Message: raw.Message,
			Pattern: pattern,
		}
	}

	return out, nil
}

// ExpectDiagnostic checks err against the catalogue entry named errorName.
func ExpectDiagnostic(
	t *testing.T,
	catalogue map[string]*Diagnostic,
	errorName string,
	err error,
) {
	t.Helper()
	expect, ok := catalogue[errorName]
	if !ok {
		t.Fatalf("unknown error name %q", errorName)
	}
	diag := AssertDiagnostic(t, err, expect.Code)
	if expect.Pattern != nil {
		ExpectMatch(t, expect.Pattern, diag.Message())
	} else if expect.Message != "" {
		ExpectEq(t, expect.Message, diag.Message())
	}
}

func SpanOrDie(t *testing.T, value interface{}) syntax.Span {
	t.Helper()
	raw, ok := value.(map[string]interface{})
	if !ok {
		t.Fatalf("invalid span %#v", value)
	}
	start, err := raw["start"].(json.Number).Int64()
	AssertNoError(t, err)
	spanLen, err := raw["len"].(json.Number).Int64()
	AssertNoError(t, err)
	return syntax.NewSpan(uint32(start), uint32(spanLen))
}
