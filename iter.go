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
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Iter represents a read-only cursor into a section of a Tape.
// To start iterating, call Advance() or AdvanceInto(), which queue up the
// first element. Copying an Iter yields an independent cursor.
type Iter struct {
	// tape is the tape this iterator walks. Sub-iterators (from Object,
	// Array, Root) hold a Words slice restricted to their own scope.
	tape Tape

	// off is the offset of the next entry to be decoded.
	off int
	// addNext is the number of tape words to skip to reach the next entry.
	addNext int
	// cur is the current value's payload, tag bits excluded.
	cur uint64
	// t is the current tag.
	t Tag
}

// Advance reads the type of the next element and queues the value up.
func (i *Iter) Advance() Type {
	i.off += i.addNext
	if i.off >= len(i.tape.Words) {
		i.addNext = 0
		i.t = TagEnd
		return TypeNone
	}
	v := i.tape.Words[i.off]
	i.cur = v & jsonValueMask
	i.t = Tag(v >> 56)
	i.off++
	i.calcNext(false)
	if i.addNext < 0 {
		i.moveToEnd()
		return TypeNone
	}
	return tagToType[i.t]
}

// AdvanceInto reads the tag of the next element and moves into arrays,
// objects and root elements rather than skipping over them. Intended for
// manual, low-level walks.
func (i *Iter) AdvanceInto() Tag {
	i.off += i.addNext
	if i.off >= len(i.tape.Words) {
		i.addNext = 0
		i.t = TagEnd
		return TagEnd
	}
	v := i.tape.Words[i.off]
	i.cur = v & jsonValueMask
	i.t = Tag(v >> 56)
	i.off++
	i.calcNext(true)
	if i.addNext < 0 {
		i.moveToEnd()
		return TagEnd
	}
	return i.t
}

func (i *Iter) moveToEnd() {
	i.off = len(i.tape.Words)
	i.addNext = 0
	i.t = TagEnd
}

// calcNext populates addNext with the number of tape words to skip to reach
// the next entry at this level. When into is true, containers are entered
// instead of skipped.
func (i *Iter) calcNext(into bool) {
	i.addNext = 0
	switch i.t {
	case TagInteger, TagUint, TagFloat, TagString:
		i.addNext = 1
	case TagRoot, TagObjectStart, TagArrayStart:
		if !into {
			i.addNext = int(i.cur) - i.off
		}
	}
}

// Type returns the queued value's type from the previous Advance call.
func (i *Iter) Type() Type {
	if i.off+i.addNext > len(i.tape.Words) {
		return TypeNone
	}
	return tagToType[i.t]
}

// AdvanceIter reads the type of the next element and returns an iterator
// scoped to just that element (and, for containers, its full contents).
func (i *Iter) AdvanceIter(dst *Iter) (Type, error) {
	i.off += i.addNext
	if i.off == len(i.tape.Words) {
		i.addNext = 0
		i.t = TagEnd
		return TypeNone, nil
	}
	if i.off > len(i.tape.Words) {
		return TypeNone, errors.New("offset bigger than tape")
	}

	v := i.tape.Words[i.off]
	i.cur = v & jsonValueMask
	i.t = Tag(v >> 56)
	i.off++
	i.calcNext(false)
	if i.addNext < 0 {
		i.moveToEnd()
		return TypeNone, errors.New("element has negative offset")
	}

	iEnd := i.off + i.addNext
	typ := tagToType[i.t]

	if i != dst {
		*dst = *i
	}
	dst.calcNext(true)
	if dst.addNext < 0 {
		i.moveToEnd()
		return TypeNone, errors.New("element has negative offset")
	}
	if iEnd > len(dst.tape.Words) {
		return TypeNone, errors.New("element extends beyond tape")
	}
	dst.tape.Words = dst.tape.Words[:iEnd]
	return typ, nil
}

// PeekNext returns the next value's type without consuming it.
// Returns TypeNone if the next Advance would end the iterator.
func (i *Iter) PeekNext() Type {
	if i.off+i.addNext >= len(i.tape.Words) {
		return TypeNone
	}
	return tagToType[Tag(i.tape.Words[i.off+i.addNext]>>56)]
}

// PeekNextTag returns the tag at the current offset, or TagEnd if at the end.
func (i *Iter) PeekNextTag() Tag {
	if i.off+i.addNext >= len(i.tape.Words) {
		return TagEnd
	}
	return Tag(i.tape.Words[i.off+i.addNext] >> 56)
}

// scalarWord returns the raw second tape word of the current element.
// TagInteger, TagUint and TagFloat entries are always two words: the tag
// word (whose payload bits go unused, since these three tags encode no
// in-line offset or length) immediately followed by a value word holding
// either an int64 bit pattern, a uint64, or IEEE-754 float bits. Every
// accessor below that reads a numeric tag shares this single bounds check
// rather than repeating it per tag.
func (i *Iter) scalarWord() (uint64, error) {
	if i.off >= len(i.tape.Words) {
		return 0, errors.New("corrupt input: no value word for numeric scalar")
	}
	return i.tape.Words[i.off], nil
}

// Bool returns the bool value of the current element.
func (i *Iter) Bool() (bool, error) {
	switch i.t {
	case TagBoolTrue:
		return true, nil
	case TagBoolFalse:
		return false, nil
	}
	return false, fmt.Errorf("value is not bool, but %v: %w", i.t, &Error{Code: UNEXPECTED_TYPE, Offset: -1})
}

// Float returns the float64 value of the current element. Integers are
// automatically widened to float64.
func (i *Iter) Float() (float64, error) {
	switch i.t {
	case TagFloat, TagInteger, TagUint:
		w, err := i.scalarWord()
		if err != nil {
			return 0, err
		}
		switch i.t {
		case TagFloat:
			return math.Float64frombits(w), nil
		case TagInteger:
			return float64(int64(w)), nil
		default: // TagUint
			return float64(w), nil
		}
	default:
		return 0, fmt.Errorf("unable to convert type %v to float: %w", i.t, &Error{Code: UNEXPECTED_TYPE, Offset: -1})
	}
}

// Int returns the int64 value of the current element. Uint and float values
// within range are converted; out-of-range values report NUMBER_OUT_OF_RANGE.
func (i *Iter) Int() (int64, error) {
	if i.t != TagFloat && i.t != TagInteger && i.t != TagUint {
		return 0, fmt.Errorf("unable to convert type %v to int64: %w", i.t, &Error{Code: UNEXPECTED_TYPE, Offset: -1})
	}
	w, err := i.scalarWord()
	if err != nil {
		return 0, err
	}
	switch i.t {
	case TagFloat:
		v := math.Float64frombits(w)
		if v > math.MaxInt64 || v < math.MinInt64 {
			return 0, fmt.Errorf("float value out of int64 range: %w", &Error{Code: NUMBER_OUT_OF_RANGE, Offset: -1})
		}
		return int64(v), nil
	case TagUint:
		if w > math.MaxInt64 {
			return 0, fmt.Errorf("unsigned integer overflows int64: %w", &Error{Code: NUMBER_OUT_OF_RANGE, Offset: -1})
		}
		return int64(w), nil
	default: // TagInteger
		return int64(w), nil
	}
}

// Uint returns the uint64 value of the current element.
func (i *Iter) Uint() (uint64, error) {
	if i.t != TagFloat && i.t != TagInteger && i.t != TagUint {
		return 0, fmt.Errorf("unable to convert type %v to uint64: %w", i.t, &Error{Code: UNEXPECTED_TYPE, Offset: -1})
	}
	w, err := i.scalarWord()
	if err != nil {
		return 0, err
	}
	switch i.t {
	case TagFloat:
		v := math.Float64frombits(w)
		if v < 0 || v > math.MaxUint64 {
			return 0, fmt.Errorf("float value out of uint64 range: %w", &Error{Code: NUMBER_OUT_OF_RANGE, Offset: -1})
		}
		return uint64(v), nil
	case TagInteger:
		v := int64(w)
		if v < 0 {
			return 0, fmt.Errorf("integer value is negative: %w", &Error{Code: NUMBER_OUT_OF_RANGE, Offset: -1})
		}
		return uint64(v), nil
	default: // TagUint
		return w, nil
	}
}

// String returns the string value of the current element.
func (i *Iter) String() (string, error) {
	if i.t != TagString {
		return "", fmt.Errorf("value is not string, but %v: %w", i.t, &Error{Code: UNEXPECTED_TYPE, Offset: -1})
	}
	if i.off >= len(i.tape.Words) {
		return "", errors.New("corrupt input: no string offset")
	}
	return i.tape.stringAt(i.cur, i.tape.Words[i.off])
}

// StringBytes returns the string value of the current element without
// allocating a new string header (may still copy since the string buffer
// backs it as a byte slice already).
func (i *Iter) StringBytes() ([]byte, error) {
	if i.t != TagString {
		return nil, fmt.Errorf("value is not string, but %v: %w", i.t, &Error{Code: UNEXPECTED_TYPE, Offset: -1})
	}
	if i.off >= len(i.tape.Words) {
		return nil, errors.New("corrupt input: no string offset on tape")
	}
	return i.tape.stringByteAt(i.cur, i.tape.Words[i.off])
}

// StringCvt returns a string representation of any scalar value.
// Root, object and array values are not supported.
func (i *Iter) StringCvt() (string, error) {
	switch i.t {
	case TagString:
		return i.String()
	case TagInteger:
		v, err := i.Int()
		return strconv.FormatInt(v, 10), err
	case TagUint:
		v, err := i.Uint()
		return strconv.FormatUint(v, 10), err
	case TagFloat:
		v, err := i.Float()
		if err != nil {
			return "", err
		}
		return floatToString(v)
	case TagBoolFalse:
		return "false", nil
	case TagBoolTrue:
		return "true", nil
	case TagNull:
		return "null", nil
	}
	return "", fmt.Errorf("cannot convert type %s to string: %w", i.t.Type(), &Error{Code: UNEXPECTED_TYPE, Offset: -1})
}

// Root returns the value embedded in a root entry as an iterator, along with
// the type of the first element found there. An optional destination avoids
// an allocation.
func (i *Iter) Root(dst *Iter) (Type, *Iter, error) {
	if i.t != TagRoot {
		return TypeNone, dst, fmt.Errorf("value is not root: %w", &Error{Code: UNEXPECTED_TYPE, Offset: -1})
	}
	if i.cur > uint64(len(i.tape.Words)) {
		return TypeNone, dst, errors.New("root element extends beyond tape")
	}
	if dst == nil {
		c := *i
		dst = &c
	} else {
		dst.cur = i.cur
		dst.off = i.off
		dst.t = i.t
		dst.tape.Strings = i.tape.Strings
		dst.tape.Message = i.tape.Message
	}
	dst.addNext = 0
	dst.tape.Words = i.tape.Words[:i.cur-1]
	return dst.AdvanceInto().Type(), dst, nil
}

// Object returns the current element as an Object. dst, if non-nil, is
// reused to avoid an allocation.
func (i *Iter) Object(dst *Object) (*Object, error) {
	if i.t != TagObjectStart {
		return nil, fmt.Errorf("next item is not object: %w", &Error{Code: UNEXPECTED_TYPE, Offset: -1})
	}
	end := i.cur
	if end < uint64(i.off) {
		return nil, errors.New("corrupt input: object ends at index before start")
	}
	if uint64(len(i.tape.Words)) < end {
		return nil, errors.New("corrupt input: object extends beyond tape")
	}
	if dst == nil {
		dst = &Object{}
	}
	dst.tape.Words = i.tape.Words[:end]
	dst.tape.Strings = i.tape.Strings
	dst.tape.Message = i.tape.Message
	dst.off = i.off
	return dst, nil
}

// Array returns the current element as an Array. dst, if non-nil, is reused
// to avoid an allocation.
func (i *Iter) Array(dst *Array) (*Array, error) {
	if i.t != TagArrayStart {
		return nil, fmt.Errorf("next item is not array: %w", &Error{Code: UNEXPECTED_TYPE, Offset: -1})
	}
	end := i.cur
	if uint64(len(i.tape.Words)) < end {
		return nil, errors.New("corrupt input: array extends beyond tape")
	}
	if dst == nil {
		dst = &Array{}
	}
	dst.tape.Words = i.tape.Words[:end]
	dst.tape.Strings = i.tape.Strings
	dst.tape.Message = i.tape.Message
	dst.off = i.off
	return dst, nil
}

// Interface returns the value as a generic Go value: objects become
// map[string]interface{}, arrays become []interface{}, floats become
// float64, integers become int64 or uint64, strings become string, booleans
// become bool, null becomes nil, and root sequences become []interface{}.
func (i *Iter) Interface() (interface{}, error) {
	switch i.t.Type() {
	case TypeUint:
		return i.Uint()
	case TypeInt:
		return i.Int()
	case TypeFloat:
		return i.Float()
	case TypeNull:
		return nil, nil
	case TypeArray:
		arr, err := i.Array(nil)
		if err != nil {
			return nil, err
		}
		return arr.Interface()
	case TypeString:
		return i.String()
	case TypeObject:
		obj, err := i.Object(nil)
		if err != nil {
			return nil, err
		}
		return obj.Map(nil)
	case TypeBool:
		return i.t == TagBoolTrue, nil
	case TypeRoot:
		var dst []interface{}
		var tmp Iter
		for {
			typ, obj, err := i.Root(&tmp)
			if err != nil {
				return nil, err
			}
			if typ == TypeNone {
				break
			}
			elem, err := obj.Interface()
			if err != nil {
				return nil, err
			}
			dst = append(dst, elem)
			typ = i.Advance()
			if typ != TypeRoot {
				break
			}
		}
		return dst, nil
	case TypeNone:
		if i.PeekNextTag() == TagEnd {
			return nil, errors.New("no content in iterator")
		}
		i.Advance()
		return i.Interface()
	}
	return nil, fmt.Errorf("unknown tag type: %v", i.t)
}

// MarshalJSON marshals the entire remaining scope of the iterator.
func (i *Iter) MarshalJSON() ([]byte, error) {
	return i.MarshalJSONBuffer(nil)
}

// marshalFrame is what MarshalJSONBuffer's container stack tracks, named
// after the same open/close bookkeeping concept buildTape's scopeKind
// tracks on the way in, plus the frameNone sentinel that bottoms the stack.
type marshalFrame uint8

const (
	frameNone marshalFrame = iota
	frameArray
	frameObject
	frameRoot
)

// writeQuotedString reads the current element's string bytes and appends
// its JSON-quoted, escaped form to dst. Shared by object-key writing and
// the TagString case, the two places a string is ever emitted verbatim.
func writeQuotedString(dst []byte, i *Iter) ([]byte, error) {
	sb, err := i.StringBytes()
	if err != nil {
		return nil, err
	}
	dst = append(dst, '"')
	dst = escapeBytes(dst, sb)
	dst = append(dst, '"')
	return dst, nil
}

// appendScalarValue formats the current element's JSON text when it is one
// of the six leaf scalar tags that aren't a string (which has its own
// escaping path) or a container boundary.
func appendScalarValue(dst []byte, i *Iter) ([]byte, error) {
	switch i.t {
	case TagInteger:
		v, err := i.Int()
		if err != nil {
			return nil, err
		}
		return strconv.AppendInt(dst, v, 10), nil
	case TagUint:
		v, err := i.Uint()
		if err != nil {
			return nil, err
		}
		return strconv.AppendUint(dst, v, 10), nil
	case TagFloat:
		v, err := i.Float()
		if err != nil {
			return nil, err
		}
		return appendFloat(dst, v)
	case TagNull:
		return append(dst, "null"...), nil
	case TagBoolTrue:
		return append(dst, "true"...), nil
	case TagBoolFalse:
		return append(dst, "false"...), nil
	default:
		return nil, fmt.Errorf("not a leaf scalar tag: %v", i.t)
	}
}

// MarshalJSONBuffer marshals the remaining scope of the iterator, appending
// to dst. This realizes the round-trip law parse(serialize(parse(J))) ≡ parse(J).
func (i *Iter) MarshalJSONBuffer(dst []byte) ([]byte, error) {
	var frameStorage [100]marshalFrame
	frames := frameStorage[:1]

writeloop:
	for {
		if frames[len(frames)-1] == frameObject && i.t != TagObjectEnd {
			var err error
			dst, err = writeQuotedString(dst, i)
			if err != nil {
				return nil, fmt.Errorf("expected key within object: %w", err)
			}
			dst = append(dst, ':')
			if i.PeekNextTag() == TagEnd {
				return nil, errors.New("unexpected end of tape within object")
			}
			i.AdvanceInto()
		}
	tagswitch:
		switch i.t {
		case TagRoot:
			isOpenRoot := int(i.cur) > i.off
			if len(frames) > 1 {
				if isOpenRoot {
					return dst, errors.New("root tag open, but not at top of stack")
				}
				switch frames[len(frames)-1] {
				case frameRoot:
					if i.PeekNextTag() != TagEnd {
						dst = append(dst, '\n')
					}
					frames = frames[:len(frames)-1]
					break tagswitch
				case frameNone:
					break writeloop
				default:
					return dst, fmt.Errorf("root tag, but not at top of stack, got kind %d", frames[len(frames)-1])
				}
			}
			if isOpenRoot {
				i.addNext = 0
			}
			i.AdvanceInto()
			frames = append(frames, frameRoot)
			continue
		case TagString:
			var err error
			dst, err = writeQuotedString(dst, i)
			if err != nil {
				return nil, err
			}
		case TagObjectStart:
			dst = append(dst, '{')
			frames = append(frames, frameObject)
			i.AdvanceInto()
			continue
		case TagObjectEnd:
			dst = append(dst, '}')
			if frames[len(frames)-1] != frameObject {
				return dst, errors.New("end of object with no object on stack")
			}
			frames = frames[:len(frames)-1]
		case TagArrayStart:
			dst = append(dst, '[')
			frames = append(frames, frameArray)
			i.AdvanceInto()
			continue
		case TagArrayEnd:
			dst = append(dst, ']')
			if frames[len(frames)-1] != frameArray {
				return nil, errors.New("end of array with no array on stack")
			}
			frames = frames[:len(frames)-1]
		case TagEnd:
			if i.PeekNextTag() == TagEnd {
				return nil, errors.New("no content queued in iterator")
			}
			i.AdvanceInto()
			continue
		default:
			var err error
			dst, err = appendScalarValue(dst, i)
			if err != nil {
				return nil, err
			}
		}

		if i.PeekNextTag() == TagEnd {
			break
		}
		i.AdvanceInto()

		switch frames[len(frames)-1] {
		case frameArray:
			if i.t != TagArrayEnd {
				dst = append(dst, ',')
			}
		case frameObject:
			if i.t != TagObjectEnd {
				dst = append(dst, ',')
			}
		}
	}
	if len(frames) > 1 {
		return nil, fmt.Errorf("objects or arrays not closed. left on stack: %v", frames[1:])
	}
	return dst, nil
}
