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

import (
	"bufio"
	"fmt"
	"io"
)

// ParseND parses b as a sequence of whitespace-separated top-level JSON
// values, producing one Tape whose root entries chain through every value
// found, in order, by driving the stream-mode pushdown automaton in
// stage2.go instead of a dedicated ndjson code path.
func ParseND(b []byte, p *Parser) (*Tape, error) {
	if p == nil {
		p = NewParser()
	}
	padded := PadBuffer(append([]byte(nil), b...))
	tape := &Tape{}
	return parseInto(padded[:len(b)], p.maxDepth, buildStream, p.copyStrings, tape)
}

// StreamResult is one item delivered by ParseNDStream: either a Tape holding
// every complete top-level value found in that window of input, or an
// Error. A non-nil Error, including a final io.EOF marking a clean end of
// stream, always ends the sequence.
type StreamResult struct {
	Tape  *Tape
	Error error
}

// ParseNDStream parses r incrementally and delivers results on res as
// windows of input complete, closing res when done. Internally it runs two
// goroutines connected by a depth-1 channel: one reads ahead and runs Stage
// 1 (findChunkBoundary plus scanStructural) on each window as soon as it is
// available, while the other consumes those results and runs Stage 2
// (buildTape) — the sliding-window equivalent of the single-document
// pipelining described for the parser, so Stage 1 of the next window
// overlaps Stage 2 of the current one instead of running strictly after it.
// Boundary detection here does not require newline-delimited input.
func ParseNDStream(r io.Reader, p *Parser, res chan<- StreamResult) {
	if p == nil {
		p = NewParser()
	}

	type scannedChunk struct {
		data []byte
		s1   stage1Result
		err  error
	}
	jobs := make(chan scannedChunk, 1)

	go func() {
		defer close(jobs)
		const windowSize = 10 << 20
		br := bufio.NewReaderSize(r, windowSize)
		var leftover []byte
		readBuf := make([]byte, windowSize)
		for {
			n, rerr := br.Read(readBuf)
			if n > 0 {
				leftover = append(leftover, readBuf[:n]...)
			}
			if rerr != nil && rerr != io.EOF {
				jobs <- scannedChunk{err: fmt.Errorf("reading stream: %w", rerr)}
				return
			}
			atEOF := rerr == io.EOF

			for len(leftover) > 0 {
				cut, ok := findChunkBoundary(leftover, len(leftover))
				if !ok {
					if !atEOF {
						break
					}
					cut = len(leftover)
				}
				data := PadBuffer(append([]byte(nil), leftover[:cut]...))
				data = data[:cut]
				leftover = leftover[cut:]
				jobs <- scannedChunk{data: data, s1: scanStructural(data)}
			}

			if atEOF {
				return
			}
		}
	}()

	go func() {
		defer close(res)
		for j := range jobs {
			if j.err != nil {
				res <- StreamResult{Error: j.err}
				return
			}
			if !j.s1.validUTF8 {
				res <- StreamResult{Error: newError(UTF8_ERROR, 0, "invalid UTF-8 in input")}
				return
			}
			if j.s1.unclosedQuote {
				res <- StreamResult{Error: newError(UNCLOSED_STRING, len(j.data), "")}
				return
			}
			if len(j.s1.indexes) == 0 {
				// A window of nothing but whitespace holds no value.
				continue
			}
			tape := &Tape{Message: j.data}
			if err := buildTape(j.data, j.s1.indexes, p.maxDepth, buildStream, p.copyStrings, tape); err != nil {
				res <- StreamResult{Error: err}
				return
			}
			res <- StreamResult{Tape: tape}
		}
		res <- StreamResult{Error: io.EOF}
	}()
}
