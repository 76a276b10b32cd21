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

import "encoding/binary"

// scopeKind records what kind of scope (root, object or array) a stack frame
// was pushed for. Where to resume once a container closes is tracked
// separately, in buildTape's containerReturn stack of state values, where a
// goto-based state machine would fold it into the low bits of a "return
// address" integer instead.
type scopeKind int

const (
	scopeRoot scopeKind = iota
	scopeObject
	scopeArray
)

type scopeFrame struct {
	tapeLoc uint64
	kind    scopeKind
}

// state is the pushdown automaton's current expectation: what kind of
// token is grammatically valid next.
type state int

const (
	stateExpectValue state = iota
	stateObjectKeyOrEnd
	stateObjectColon
	stateObjectCommaOrEnd
	stateArrayCommaOrEnd
	stateRootContinue
	stateDone
)

// buildMode selects how buildTape treats input past the first complete
// value: a single Parse call demands exactly one value (plus optional
// trailing whitespace), while the multi-value drivers (ParseND and
// ParseNDStream, which take whitespace-separated values) keep wrapping
// additional top-level values in their own root entries.
type buildMode int

const (
	buildSingle buildMode = iota
	buildStream
)

// buildTape drives a pushdown automaton over the structural byte offsets
// stage1 found, appending words to tape and decoded string bytes to
// tape.Strings. It uses the same "return address" trick a goto-based state
// machine would for resuming the parent container, but without gotos: the
// parent-scope-to-resume is just the top of the stack slice instead of an
// offset squirreled away in a local variable.
func buildTape(buf []byte, idx []uint32, maxDepth int, mode buildMode, copyStrings bool, tape *Tape) error {
	if len(idx) == 0 {
		return newError(EMPTY, 0, "no JSON value found")
	}

	pos := 0
	cur := func() byte { return buf[idx[pos]] }
	curOff := func() int {
		if pos >= len(idx) {
			return len(buf)
		}
		return int(idx[pos])
	}
	advance := func() bool {
		pos++
		return pos < len(idx)
	}

	stack := make([]scopeFrame, 0, 32)
	push := func(kind scopeKind) *Error {
		stack = append(stack, scopeFrame{tapeLoc: tape.currentLoc(), kind: kind})
		if kind != scopeRoot && len(stack)-1 > maxDepth {
			return newError(DEPTH_ERROR, curOff(), "maximum nesting depth exceeded")
		}
		return nil
	}
	// closeScope writes the closing tape word for the current top-of-stack
	// scope and back-patches its opening word with the tape location to skip
	// to: the index just past the closing word. Root scopes use the same
	// convention as objects and arrays.
	closeScope := func(closeTag byte) scopeFrame {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		tape.writeTape(top.tapeLoc, closeTag)
		tape.annotatePreviousLoc(top.tapeLoc, tape.currentLoc())
		return top
	}

	if err := push(scopeRoot); err != nil {
		return err
	}
	tape.writeTape(0, 'r')

	st := stateExpectValue
	// containerReturn is the state to resume in once the container just
	// closed unwinds; index-aligned with stack (containerReturn[i] is the
	// state active while stack[i] is on top).
	containerReturn := make([]state, 1, 32)
	containerReturn[0] = stateRootContinue

	// emitScalar consumes the scalar value at cur() and reports whether it
	// was a string. A string owns two structural index entries (the open
	// quote at cur() and its own closing quote right after), while every
	// other scalar owns exactly one, so callers need to advance() an extra
	// time past a string's closing-quote entry that emitScalar itself never
	// touches pos for.
	emitScalar := func() (isString bool, err *Error) {
		switch cur() {
		case '"':
			end, hasEscape, serr := scanQuoted(buf, curOff())
			if serr != nil {
				return true, serr
			}
			if !copyStrings && !hasEscape {
				// Zero-copy path: point the tape entry directly into the
				// source message instead of the decoded-string buffer.
				tape.writeTape(uint64(curOff()+1), '"')
				tape.Words = append(tape.Words, uint64(end-curOff()-1))
			} else {
				var derr *Error
				start := len(tape.Strings)
				tape.Strings, _, derr = decodeString(tape.Strings, buf, curOff())
				if derr != nil {
					return true, derr
				}
				tape.writeTape(stringBufBit|uint64(start), '"')
				tape.Words = append(tape.Words, uint64(len(tape.Strings)-start))
			}
			return true, nil
		case 't':
			if !isValidTrueAtom(buf[curOff():]) {
				return false, newError(T_ATOM_ERROR, curOff(), "")
			}
			tape.writeTape(0, 't')
		case 'f':
			if !isValidFalseAtom(buf[curOff():]) {
				return false, newError(F_ATOM_ERROR, curOff(), "")
			}
			tape.writeTape(0, 'f')
		case 'n':
			if !isValidNullAtom(buf[curOff():]) {
				return false, newError(N_ATOM_ERROR, curOff(), "")
			}
			tape.writeTape(0, 'n')
		default:
			tag, bits, n, nerr := parseNumber(buf[curOff():])
			if nerr != nil {
				nerr.Offset = curOff()
				return false, nerr
			}
			if end := curOff() + n; end < len(buf) && isNotStructuralOrWhitespace(buf[end]) != 0 {
				return false, newError(NUMBER_ERROR, end, "invalid character after number")
			}
			tape.writeTapeTagVal(tag, bits)
		}
		return false, nil
	}

	for st != stateDone {
		switch st {
		case stateExpectValue:
			switch c := cur(); c {
			case '{':
				if err := push(scopeObject); err != nil {
					return err
				}
				tape.writeTape(0, '{')
				containerReturn = append(containerReturn, stateObjectCommaOrEnd)
				if !advance() {
					return newError(TAPE_ERROR, curOff(), "unexpected end of input inside object")
				}
				// stateObjectKeyOrEnd accepts both '}' (empty object) and a
				// key string, so no separate empty-container check is needed.
				st = stateObjectKeyOrEnd
				continue
			case '[':
				if err := push(scopeArray); err != nil {
					return err
				}
				tape.writeTape(0, '[')
				containerReturn = append(containerReturn, stateArrayCommaOrEnd)
				if !advance() {
					return newError(TAPE_ERROR, curOff(), "unexpected end of input inside array")
				}
				if cur() == ']' {
					closeScope(']')
					containerReturn = containerReturn[:len(containerReturn)-1]
					st = containerReturn[len(containerReturn)-1]
					if !advance() {
						st = stateDone
					}
					continue
				}
				st = stateExpectValue
				continue
			case '}', ']', ',', ':':
				return newError(TAPE_ERROR, curOff(), "unexpected structural character")
			default:
				isString, serr := emitScalar()
				if serr != nil {
					return serr
				}
				if isString && !advance() {
					return newError(TAPE_ERROR, curOff(), "unexpected end of input inside string")
				}
				st = containerReturn[len(containerReturn)-1]
				if !advance() {
					if st == stateRootContinue {
						st = stateDone
						break
					}
					return newError(TAPE_ERROR, curOff(), "unexpected end of input")
				}
			}

		case stateObjectKeyOrEnd:
			if cur() == '}' {
				closeScope('}')
				containerReturn = containerReturn[:len(containerReturn)-1]
				st = containerReturn[len(containerReturn)-1]
				if !advance() {
					st = stateDone
				}
				continue
			}
			if cur() != '"' {
				return newError(TAPE_ERROR, curOff(), "expected string key or '}'")
			}
			if _, err := emitScalar(); err != nil {
				return err
			}
			// Two advances: one past the key's own open-quote entry, one
			// past its closing-quote entry (cur() is always '"' here).
			if !advance() {
				return newError(TAPE_ERROR, curOff(), "unexpected end of input after object key")
			}
			if !advance() {
				return newError(TAPE_ERROR, curOff(), "unexpected end of input after object key")
			}
			st = stateObjectColon

		case stateObjectColon:
			if cur() != ':' {
				return newError(TAPE_ERROR, curOff(), "expected ':' after object key")
			}
			if !advance() {
				return newError(TAPE_ERROR, curOff(), "unexpected end of input after ':'")
			}
			st = stateExpectValue

		case stateObjectCommaOrEnd:
			switch cur() {
			case '}':
				closeScope('}')
				containerReturn = containerReturn[:len(containerReturn)-1]
				st = containerReturn[len(containerReturn)-1]
				if !advance() {
					st = stateDone
				}
			case ',':
				if !advance() {
					return newError(TAPE_ERROR, curOff(), "unexpected end of input after ','")
				}
				st = stateObjectKeyOrEnd
			default:
				return newError(TAPE_ERROR, curOff(), "expected ',' or '}'")
			}

		case stateArrayCommaOrEnd:
			switch cur() {
			case ']':
				closeScope(']')
				containerReturn = containerReturn[:len(containerReturn)-1]
				st = containerReturn[len(containerReturn)-1]
				if !advance() {
					st = stateDone
				}
			case ',':
				if !advance() {
					return newError(TAPE_ERROR, curOff(), "unexpected end of input after ','")
				}
				st = stateExpectValue
			default:
				return newError(TAPE_ERROR, curOff(), "expected ',' or ']'")
			}

		case stateRootContinue:
			if mode == buildSingle {
				return newError(TAPE_ERROR, curOff(), "trailing content after top-level value")
			}
			// Streaming mode: close the current root and open a fresh one
			// for the next top-level value. No newline requirement here,
			// since the structural index already skips whitespace.
			closeScope('r')
			containerReturn[0] = stateRootContinue
			if err := push(scopeRoot); err != nil {
				return err
			}
			tape.writeTape(0, 'r')
			st = stateExpectValue
		}
	}

	if len(stack) != 1 || stack[0].kind != scopeRoot {
		return newError(TAPE_ERROR, curOff(), "unbalanced containers at end of input")
	}
	closeScope('r')
	return nil
}

// isValidTrueAtom, isValidFalseAtom and isValidNullAtom check that a literal
// starting at buf[0] is exactly "true"/"false"/"null" followed by a
// structural character, whitespace, or nothing at all (end of the buffer,
// e.g. a document that is a bare atom with no trailing value), using a
// little-endian word compare against the literal's ASCII bytes when at
// least 8 bytes remain. buf here is never guaranteed to extend past the
// logical message length by the time it reaches this function (callers
// slice down to that length first), so the short-input fallback treats
// "exactly the atom and nothing more" as its own valid case instead of
// relying on a trailing byte to inspect.
func isValidTrueAtom(buf []byte) bool {
	if len(buf) >= 8 {
		tv := uint64(0x0000000065757274) // "true"
		mask4 := uint64(0x00000000ffffffff)
		locval := binary.LittleEndian.Uint64(buf)
		bad := (locval & mask4) ^ tv
		bad |= uint64(isNotStructuralOrWhitespace(buf[4]))
		return bad == 0
	}
	return len(buf) >= 4 && string(buf[:4]) == "true" &&
		(len(buf) == 4 || isNotStructuralOrWhitespace(buf[4]) == 0)
}

func isValidFalseAtom(buf []byte) bool {
	if len(buf) >= 8 {
		fv := uint64(0x00000065736c6166) // "false"
		mask5 := uint64(0x000000ffffffffff)
		locval := binary.LittleEndian.Uint64(buf)
		bad := (locval & mask5) ^ fv
		bad |= uint64(isNotStructuralOrWhitespace(buf[5]))
		return bad == 0
	}
	return len(buf) >= 5 && string(buf[:5]) == "false" &&
		(len(buf) == 5 || isNotStructuralOrWhitespace(buf[5]) == 0)
}

func isValidNullAtom(buf []byte) bool {
	if len(buf) >= 8 {
		nv := uint64(0x000000006c6c756e) // "null"
		mask4 := uint64(0x00000000ffffffff)
		locval := binary.LittleEndian.Uint64(buf)
		bad := (locval & mask4) ^ nv
		bad |= uint64(isNotStructuralOrWhitespace(buf[4]))
		return bad == 0
	}
	return len(buf) >= 4 && string(buf[:4]) == "null" &&
		(len(buf) == 4 || isNotStructuralOrWhitespace(buf[4]) == 0)
}

// structuralOrWhitespaceNegated[c] is 0 when c is one of the six structural
// characters, one of the four whitespace characters, or NUL (the only bytes
// allowed to directly follow a true/false/null/number atom), 1 otherwise.
var structuralOrWhitespaceNegated = buildStructuralOrWhitespaceTable()

func buildStructuralOrWhitespaceTable() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = 1
	}
	for _, c := range []byte{' ', '\t', '\n', '\r', '{', '}', '[', ']', ',', ':', 0} {
		t[c] = 0
	}
	return t
}

func isNotStructuralOrWhitespace(c byte) byte {
	return structuralOrWhitespaceNegated[c]
}
