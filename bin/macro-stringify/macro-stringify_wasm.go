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

//go:build tinygo

package main

import (
	"encoding/binary"
	"math"
	"unsafe"
)

var buffers = make(map[*uint8][]uint8)

//go:export macro_allocate
func macroAllocate(len uint32) *uint8 {
	if len > math.MaxInt32 {
		return nil
	}
	buf := make([]uint8, int(len))
	ptr := unsafe.SliceData(buf)
	buffers[ptr] = buf
	return ptr
}

//go:export macro_deallocate
func macroDeallocate(ptr *uint8) {
	delete(buffers, ptr)
}

//go:export macro_expand
func macroExpand(requestPtr *uint8, requestLen uint32, responsePtrPtr **uint8) uint32 {
	request := unsafe.Slice(requestPtr, requestLen)
	output, err := stringify(request)
	if err != nil {
		*responsePtrPtr = respond([]byte(err.Error()))
		return 1
	}
	*responsePtrPtr = respond(output)
	return 0
}

func respond(body []byte) *uint8 {
	response := make([]uint8, 4+len(body))
	binary.LittleEndian.PutUint32(response, uint32(len(body)))
	copy(response[4:], body)
	responsePtr := unsafe.SliceData(response)
	buffers[responsePtr] = response
	return responsePtr
}
