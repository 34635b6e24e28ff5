package core

import (
	"bytes"
	"unicode/utf8"
)

// sanitizeUTF8 replaces invalid byte sequences with U+FFFD so downstream
// string handling never sees broken encoding. Valid input is returned
// unchanged without copying.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
