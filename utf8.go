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

// utf8Validator is a small state machine that validates UTF-8 one chunk at a
// time, carrying just enough state across chunk boundaries (how many
// continuation bytes remain, and the valid range for the next one) to catch
// truncated, over-long, and surrogate-half sequences that straddle a chunk
// edge. A vectorized validator carries the equivalent state in vector
// registers; here it is three scalar fields.
type utf8Validator struct {
	// remaining is how many continuation bytes are still expected.
	remaining int
	// lo, hi bound the *next* continuation byte (tightened for the byte
	// right after certain leading bytes to reject overlong encodings and
	// surrogate halves; 0x80-0xBF afterwards).
	lo, hi byte
	bad    bool
}

// step processes one byte and advances the validator's state.
func (v *utf8Validator) step(c byte) {
	if v.bad {
		return
	}
	if v.remaining > 0 {
		if c < v.lo || c > v.hi {
			v.bad = true
			return
		}
		v.remaining--
		v.lo, v.hi = 0x80, 0xBF
		return
	}
	switch {
	case c < 0x80:
		// ASCII.
	case c < 0xC2:
		// Continuation byte with no leader, or an overlong 2-byte lead (C0/C1).
		v.bad = true
	case c < 0xE0:
		v.remaining = 1
		v.lo, v.hi = 0x80, 0xBF
	case c == 0xE0:
		v.remaining = 2
		v.lo, v.hi = 0xA0, 0xBF // reject overlong 3-byte encodings
	case c == 0xED:
		v.remaining = 2
		v.lo, v.hi = 0x80, 0x9F // reject encoded surrogate halves D800-DFFF
	case c < 0xF0:
		v.remaining = 2
		v.lo, v.hi = 0x80, 0xBF
	case c == 0xF0:
		v.remaining = 3
		v.lo, v.hi = 0x90, 0xBF // reject overlong 4-byte encodings
	case c == 0xF4:
		v.remaining = 3
		v.lo, v.hi = 0x80, 0x8F // reject code points above U+10FFFF
	case c < 0xF5:
		v.remaining = 3
		v.lo, v.hi = 0x80, 0xBF
	default:
		v.bad = true
	}
}

// done reports whether the buffer ended on a complete sequence.
func (v *utf8Validator) done() bool {
	return !v.bad && v.remaining == 0
}

// validateUTF8 checks that buf is well-formed UTF-8, processing it in
// chunkWidth windows the way a per-chunk vector validator would (the
// carried state above is exactly what needs to cross a chunk edge).
func validateUTF8(buf []byte) bool {
	var v utf8Validator
	for start := 0; start < len(buf); start += chunkWidth {
		end := start + chunkWidth
		if end > len(buf) {
			end = len(buf)
		}
		for _, c := range buf[start:end] {
			v.step(c)
			if v.bad {
				return false
			}
		}
	}
	return v.done()
}
