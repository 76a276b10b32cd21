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

// ParserOption configures a Parser at construction time.
type ParserOption func(p *Parser)

// WithCopyStrings controls whether decoded strings are copied into the
// Tape's own Strings buffer or, when a string contains no escapes, left
// pointing directly into the source message. Copying is the default: it
// keeps the Tape valid independent of what the caller does with the input
// buffer afterwards, at the cost of an extra copy for every unescaped
// string. Passing false trades that safety for less allocation and copying
// when the caller can guarantee the input outlives the Tape.
func WithCopyStrings(b bool) ParserOption {
	return func(p *Parser) {
		p.copyStrings = b
	}
}

// WithMaxDepth overrides the default nesting depth ceiling (maxTapeDepth).
// Values <= 0 are ignored.
func WithMaxDepth(depth int) ParserOption {
	return func(p *Parser) {
		if depth > 0 {
			p.maxDepth = depth
		}
	}
}

// WithCapacity preallocates the Parser's tape and string buffers and caps
// the size of input a subsequent Parse call will accept without
// reallocating. Equivalent to calling Allocate immediately after
// NewParser, but composable with the other options.
func WithCapacity(capacity int) ParserOption {
	return func(p *Parser) {
		if capacity > 0 {
			p.capacity = capacity
			p.tape.Words = make([]uint64, 0, capacity)
			p.tape.Strings = make([]byte, 0, capacity)
		}
	}
}
