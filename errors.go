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

// ErrorCode is a stable, machine-checkable error code returned alongside
// every fallible operation: functions return (value, error) pairs where the
// error wraps an ErrorCode. The package has no panicking variants that raise
// the code instead of returning it.
type ErrorCode int

const (
	// SUCCESS indicates no error. It is never wrapped in an Error value.
	SUCCESS ErrorCode = iota
	// CAPACITY indicates the input exceeded the parser's preallocated capacity.
	CAPACITY
	// MEMALLOC indicates a buffer allocation failed.
	MEMALLOC
	// TAPE_ERROR indicates a grammar violation, trailing garbage, or bracket mismatch.
	TAPE_ERROR
	// DEPTH_ERROR indicates nesting exceeded the configured max depth.
	DEPTH_ERROR
	// STRING_ERROR indicates a bad escape sequence or an unpaired surrogate.
	STRING_ERROR
	// T_ATOM_ERROR indicates a malformed `true` literal.
	T_ATOM_ERROR
	// F_ATOM_ERROR indicates a malformed `false` literal.
	F_ATOM_ERROR
	// N_ATOM_ERROR indicates a malformed `null` literal.
	N_ATOM_ERROR
	// NUMBER_ERROR indicates a malformed number.
	NUMBER_ERROR
	// UTF8_ERROR indicates invalid UTF-8 somewhere in the input.
	UTF8_ERROR
	// UNEXPECTED_TYPE indicates a navigation-time type mismatch.
	UNEXPECTED_TYPE
	// NUMBER_OUT_OF_RANGE indicates an integer width conversion failed.
	NUMBER_OUT_OF_RANGE
	// NO_SUCH_FIELD indicates an object key was not found.
	NO_SUCH_FIELD
	// UNINITIALIZED indicates the parser was queried before any parse.
	UNINITIALIZED
	// EMPTY indicates the input was zero-length or whitespace-only.
	EMPTY
	// UNESCAPED_CHARS indicates a raw control character inside a string.
	UNESCAPED_CHARS
	// UNCLOSED_STRING indicates a string was never terminated.
	UNCLOSED_STRING
)

var errorText = map[ErrorCode]string{
	SUCCESS:             "success",
	CAPACITY:            "input exceeds preallocated capacity",
	MEMALLOC:            "buffer allocation failed",
	TAPE_ERROR:          "grammar error building tape",
	DEPTH_ERROR:         "maximum nesting depth exceeded",
	STRING_ERROR:        "invalid escape sequence or unpaired surrogate",
	T_ATOM_ERROR:        "invalid literal, expecting 'true'",
	F_ATOM_ERROR:        "invalid literal, expecting 'false'",
	N_ATOM_ERROR:        "invalid literal, expecting 'null'",
	NUMBER_ERROR:        "invalid number",
	UTF8_ERROR:          "invalid UTF-8",
	UNEXPECTED_TYPE:     "element does not have the requested type",
	NUMBER_OUT_OF_RANGE: "number does not fit the requested integer width",
	NO_SUCH_FIELD:       "no such field in object",
	UNINITIALIZED:       "parser queried before any successful parse",
	EMPTY:               "input is empty",
	UNESCAPED_CHARS:     "unescaped control character in string",
	UNCLOSED_STRING:     "unterminated string",
}

// String returns the human-readable description of the error code.
func (e ErrorCode) String() string {
	if s, ok := errorText[e]; ok {
		return s
	}
	return "unknown error"
}

// Error wraps an ErrorCode with positional context. It implements the error
// interface so it can travel through the ordinary Go error-handling path,
// while callers that need the stable code can type-assert or use errors.As.
type Error struct {
	Code ErrorCode
	// Offset is the byte offset in the input the error was detected at, or
	// -1 if not applicable.
	Offset int
	// Msg is optional additional context.
	Msg string
}

func (e *Error) Error() string {
	if e.Msg != "" {
		if e.Offset >= 0 {
			return e.Code.String() + " at offset " + itoa(e.Offset) + ": " + e.Msg
		}
		return e.Code.String() + ": " + e.Msg
	}
	if e.Offset >= 0 {
		return e.Code.String() + " at offset " + itoa(e.Offset)
	}
	return e.Code.String()
}

// Is allows errors.Is(err, SomeErrorCode) style comparisons via a sentinel wrap.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func newError(code ErrorCode, offset int, msg string) *Error {
	return &Error{Code: code, Offset: offset, Msg: msg}
}

// itoa avoids pulling in strconv just for error formatting call sites that
// run on the error path (not perf sensitive either way).
func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
