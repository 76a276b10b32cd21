/*
 * MinIO Cloud Storage, (C) 2020 MinIO, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package simdjson

import "unicode/utf8"

// scanQuoted finds the end of the string literal that opens at buf[start]
// (buf[start] == '"'), reporting whether any byte in it needs unescaping.
// It does not itself validate escape correctness beyond finding the extent
// of the string; decodeString does the real work once the extent is known.
func scanQuoted(buf []byte, start int) (end int, hasEscape bool, err *Error) {
	i := start + 1
	for {
		if i >= len(buf) {
			return 0, false, newError(UNCLOSED_STRING, start, "")
		}
		c := buf[i]
		switch {
		case c == '"':
			return i, hasEscape, nil
		case c == '\\':
			hasEscape = true
			i += 2
		case c < 0x20:
			return 0, false, newError(UNESCAPED_CHARS, i, "raw control character in string")
		default:
			i++
		}
	}
}

// decodeString appends the decoded contents of the string literal opening at
// buf[start] to dst, returning the updated slice and the offset of the
// closing quote.
func decodeString(dst, buf []byte, start int) (out []byte, end int, err *Error) {
	end, hasEscape, err := scanQuoted(buf, start)
	if err != nil {
		return nil, 0, err
	}
	if !hasEscape {
		return append(dst, buf[start+1:end]...), end, nil
	}
	i := start + 1
	for i < end {
		c := buf[i]
		if c != '\\' {
			dst = append(dst, c)
			i++
			continue
		}
		i++
		if i >= end {
			return nil, 0, newError(STRING_ERROR, i, "truncated escape sequence")
		}
		switch buf[i] {
		case '"':
			dst = append(dst, '"')
			i++
		case '\\':
			dst = append(dst, '\\')
			i++
		case '/':
			dst = append(dst, '/')
			i++
		case 'b':
			dst = append(dst, '\b')
			i++
		case 'f':
			dst = append(dst, '\f')
			i++
		case 'n':
			dst = append(dst, '\n')
			i++
		case 'r':
			dst = append(dst, '\r')
			i++
		case 't':
			dst = append(dst, '\t')
			i++
		case 'u':
			var r rune
			r, i, err = decodeUnicodeEscape(buf, i+1, end)
			if err != nil {
				return nil, 0, err
			}
			dst = utf8.AppendRune(dst, r)
		default:
			return nil, 0, newError(STRING_ERROR, i, "invalid escape character")
		}
	}
	return dst, end, nil
}

// decodeUnicodeEscape decodes a \uXXXX escape (and, for a high surrogate,
// the paired low-surrogate \uXXXX that must immediately follow) starting at
// buf[i], the first hex digit. It returns the decoded rune and the index of
// the byte immediately after the escape.
func decodeUnicodeEscape(buf []byte, i, end int) (rune, int, *Error) {
	r1, err := hex4(buf, i, end)
	if err != nil {
		return 0, 0, err
	}
	i += 4
	if r1 < 0xD800 || r1 > 0xDFFF {
		return rune(r1), i, nil
	}
	if r1 > 0xDBFF {
		return 0, 0, newError(STRING_ERROR, i, "unpaired low surrogate")
	}
	if i+1 >= end || buf[i] != '\\' || buf[i+1] != 'u' {
		return 0, 0, newError(STRING_ERROR, i, "high surrogate not followed by low surrogate")
	}
	r2, err := hex4(buf, i+2, end)
	if err != nil {
		return 0, 0, err
	}
	if r2 < 0xDC00 || r2 > 0xDFFF {
		return 0, 0, newError(STRING_ERROR, i+2, "invalid low surrogate")
	}
	combined := 0x10000 + (r1-0xD800)<<10 + (r2 - 0xDC00)
	return rune(combined), i + 6, nil
}

func hex4(buf []byte, i, end int) (uint32, *Error) {
	if i+4 > end {
		return 0, newError(STRING_ERROR, i, "truncated unicode escape")
	}
	var v uint32
	for _, c := range buf[i : i+4] {
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= uint32(c - '0')
		case c >= 'a' && c <= 'f':
			v |= uint32(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v |= uint32(c-'A') + 10
		default:
			return 0, newError(STRING_ERROR, i, "invalid hex digit in unicode escape")
		}
	}
	return v, nil
}
