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

// findChunkBoundary scans buf[:limit] (limit clamped to len(buf)) for the
// rightmost byte offset that is guaranteed to sit between two top-level JSON
// values: either immediately after a container's closing bracket at depth
// zero, or at a run of whitespace following a bare scalar at depth zero.
// It never reports a boundary inside a string or inside an open container,
// so a chunk cut there is safe to hand to buildTape independently of
// whatever follows it in the stream.
//
// The one case it cannot resolve is a bare scalar (a number, or true/false/
// null) that happens to end exactly at limit with nothing after it in buf:
// there is no way to tell a complete "123" from a "123" that continues past
// the window without more input. Callers windowing a live stream should
// grow the window and retry rather than trust a zero-value ok in that case.
func findChunkBoundary(buf []byte, limit int) (cut int, ok bool) {
	if limit > len(buf) {
		limit = len(buf)
	}
	depth := 0
	inString := false
	escaped := false
	sinceCut := 0

	for i := 0; i < limit; i++ {
		c := buf[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
			sinceCut++
		case '{', '[':
			depth++
			sinceCut++
		case '}', ']':
			depth--
			sinceCut++
			if depth == 0 {
				cut, ok = i+1, true
				sinceCut = 0
			}
		case ' ', '\t', '\n', '\r':
			if depth == 0 && sinceCut > 0 {
				cut, ok = i, true
				sinceCut = 0
			}
		default:
			sinceCut++
		}
	}
	return cut, ok
}

// DocumentBatch splits buf into a sequence of independently parseable
// chunks, each no larger than maxChunk bytes and each holding only whole
// top-level JSON values, per the "sliding window at least as large as the
// largest document" requirement: any single document wider than maxChunk
// causes an error rather than being silently split.
func DocumentBatch(buf []byte, maxChunk int) ([][]byte, error) {
	var chunks [][]byte
	start := 0
	for start < len(buf) {
		limit := start + maxChunk
		cut, ok := findChunkBoundary(buf[start:], limit-start)
		if !ok {
			// No safe boundary within the window: either a single document
			// exceeds maxChunk, or the remainder is one bare scalar right at
			// the end of buf, which is safe to accept as-is.
			if limit >= len(buf) {
				cut = len(buf) - start
			} else {
				return nil, newError(CAPACITY, start, "no document boundary found within window; enlarge the window")
			}
		}
		chunks = append(chunks, buf[start:start+cut])
		start += cut
	}
	return chunks, nil
}
