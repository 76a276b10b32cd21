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

// stage1Result is everything Stage 1 hands to Stage 2: the ordered offsets of
// every structural byte in the message, plus the verdicts that let Stage 2
// skip re-deriving them.
type stage1Result struct {
	indexes       []uint32
	validUTF8     bool
	unclosedQuote bool
}

// scanStructural walks buf once, classifying every byte as either inside a
// string, an escape, or "bare" JSON, and records the offset of each
// structural byte: the six punctuation characters, both quotes of every
// string, and the first byte of every primitive literal (true/false/null/a
// number). This is the scalar equivalent of a quote-mask-and-bits plus
// odd-backslash-sequence detection pass run in vector registers, collapsed
// into a single carried state machine since there is no SIMD register here
// to hold quote/backslash masks for a whole chunk at once.
//
// buf must be padded (see Pad): the scanner never reads past len(buf), but
// callers that immediately hand indexes to Stage 2 rely on Stage 2 also
// having a padded view of the same backing array.
func scanStructural(buf []byte) stage1Result {
	// capacity guess: real-world JSON rarely has a structural byte on more
	// than ~40% of bytes; growing from there is still cheap relative to the
	// scan itself.
	indexes := make([]uint32, 0, len(buf)/2+8)

	inString := false
	escaped := false
	// primitiveBoundary is true when the byte about to be examined would
	// start a new token if it isn't whitespace: true at the start of the
	// buffer and immediately after whitespace or any structural byte.
	primitiveBoundary := true

	for i := 0; i < len(buf); i++ {
		c := buf[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
				indexes = append(indexes, uint32(i))
				primitiveBoundary = true
			}
			continue
		}
		switch c {
		case ' ', '\t', '\n', '\r':
			primitiveBoundary = true
		case '{', '}', '[', ']', ',', ':':
			indexes = append(indexes, uint32(i))
			primitiveBoundary = true
		case '"':
			indexes = append(indexes, uint32(i))
			inString = true
			primitiveBoundary = false
		default:
			if primitiveBoundary {
				indexes = append(indexes, uint32(i))
			}
			primitiveBoundary = false
		}
	}

	return stage1Result{
		indexes:       indexes,
		validUTF8:     validateUTF8(buf),
		unclosedQuote: inString,
	}
}
