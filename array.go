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
)

// Array is a zero-copy view over a JSON array's slice of the tape.
type Array struct {
	tape Tape
	off  int
}

// Iter returns the array as an Iter for walking mixed-type arrays.
// The first value is ready after a call to Advance.
func (a *Array) Iter() Iter {
	return Iter{tape: a.tape, off: a.off}
}

// FirstType returns the type of the first element, or TypeNone if empty.
func (a *Array) FirstType() Type {
	iter := a.Iter()
	return iter.PeekNext()
}

// MarshalJSON marshals the entire array.
func (a *Array) MarshalJSON() ([]byte, error) {
	return a.MarshalJSONBuffer(nil)
}

// MarshalJSONBuffer marshals all elements, appending to dst.
func (a *Array) MarshalJSONBuffer(dst []byte) ([]byte, error) {
	dst = append(dst, '[')
	i := a.Iter()
	var elem Iter
	for {
		t, err := i.AdvanceIter(&elem)
		if err != nil {
			return nil, err
		}
		if t == TypeNone {
			break
		}
		dst, err = elem.MarshalJSONBuffer(dst)
		if err != nil {
			return nil, err
		}
		if i.PeekNextTag() == TagArrayEnd {
			break
		}
		dst = append(dst, ',')
	}
	if i.PeekNextTag() != TagArrayEnd {
		return nil, errors.New("expected TagArrayEnd as final tag in array")
	}
	dst = append(dst, ']')
	return dst, nil
}

// Interface returns the array as a slice of interface{} values.
func (a *Array) Interface() ([]interface{}, error) {
	lenEst := (len(a.tape.Words) - a.off - 1) / 2
	if lenEst < 0 {
		lenEst = 0
	}
	dst := make([]interface{}, 0, lenEst)
	i := a.Iter()
	for i.Advance() != TypeNone {
		elem, err := i.Interface()
		if err != nil {
			return nil, err
		}
		dst = append(dst, elem)
	}
	return dst, nil
}

// tapeScalarAt reads the tag word at off and, when it is one of the three
// numeric tags (TagFloat/TagInteger/TagUint), the raw value word that
// follows it. Every numeric scalar occupies exactly two tape words: the tag
// word carries no payload of its own, and the bit pattern of the value word
// is reinterpreted according to tag by the caller. Non-numeric tags (notably
// TagArrayEnd) have no second word and are returned with raw == 0.
func (a *Array) tapeScalarAt(off int) (tag Tag, raw uint64, err error) {
	tag = Tag(a.tape.Words[off] >> 56)
	if tag != TagFloat && tag != TagInteger && tag != TagUint {
		return tag, 0, nil
	}
	if len(a.tape.Words) <= off+1 {
		return tag, 0, fmt.Errorf("corrupt input: expected %v, but no more values", tag)
	}
	return tag, a.tape.Words[off+1], nil
}

// AsFloat returns every element as float64. Integers are widened.
func (a *Array) AsFloat() ([]float64, error) {
	dst := make([]float64, 0, estArrLen(a))
	off := a.off
	for {
		tag, raw, err := a.tapeScalarAt(off)
		if err != nil {
			return nil, err
		}
		switch tag {
		case TagFloat:
			dst = append(dst, math.Float64frombits(raw))
		case TagInteger:
			dst = append(dst, float64(int64(raw)))
		case TagUint:
			dst = append(dst, float64(raw))
		case TagArrayEnd:
			return dst, nil
		default:
			return nil, fmt.Errorf("unable to convert type %v to float: %w", tag, &Error{Code: UNEXPECTED_TYPE, Offset: -1})
		}
		off += 2
	}
}

// AsInteger returns every element as int64. Uint/float values that fit are converted.
func (a *Array) AsInteger() ([]int64, error) {
	dst := make([]int64, 0, estArrLen(a))
	off := a.off
	for {
		tag, raw, err := a.tapeScalarAt(off)
		if err != nil {
			return nil, err
		}
		switch tag {
		case TagFloat:
			val := math.Float64frombits(raw)
			if val > math.MaxInt64 || val < math.MinInt64 {
				return nil, fmt.Errorf("float value out of int64 range: %w", &Error{Code: NUMBER_OUT_OF_RANGE, Offset: -1})
			}
			dst = append(dst, int64(val))
		case TagInteger:
			dst = append(dst, int64(raw))
		case TagUint:
			if raw > math.MaxInt64 {
				return nil, fmt.Errorf("unsigned integer overflows int64: %w", &Error{Code: NUMBER_OUT_OF_RANGE, Offset: -1})
			}
			dst = append(dst, int64(raw))
		case TagArrayEnd:
			return dst, nil
		default:
			return nil, fmt.Errorf("unable to convert type %v to integer: %w", tag, &Error{Code: UNEXPECTED_TYPE, Offset: -1})
		}
		off += 2
	}
}

// AsUint64 returns every element as uint64. Int/float values that fit are converted.
func (a *Array) AsUint64() ([]uint64, error) {
	dst := make([]uint64, 0, estArrLen(a))
	off := a.off
	for {
		tag, raw, err := a.tapeScalarAt(off)
		if err != nil {
			return nil, err
		}
		switch tag {
		case TagFloat:
			val := math.Float64frombits(raw)
			if val < 0 || val > math.MaxUint64 {
				return nil, fmt.Errorf("float value out of uint64 range: %w", &Error{Code: NUMBER_OUT_OF_RANGE, Offset: -1})
			}
			dst = append(dst, uint64(val))
		case TagInteger:
			v := int64(raw)
			if v < 0 {
				return nil, fmt.Errorf("int64 value is negative: %w", &Error{Code: NUMBER_OUT_OF_RANGE, Offset: -1})
			}
			dst = append(dst, uint64(v))
		case TagUint:
			dst = append(dst, raw)
		case TagArrayEnd:
			return dst, nil
		default:
			return nil, fmt.Errorf("unable to convert type %v to integer: %w", tag, &Error{Code: UNEXPECTED_TYPE, Offset: -1})
		}
		off += 2
	}
}

// AsString returns every element as a string. No conversion of scalars is done.
func (a *Array) AsString() ([]string, error) {
	lenEst := len(a.tape.Words) - a.off - 1
	if lenEst < 0 {
		lenEst = 0
	}
	dst := make([]string, 0, lenEst)
	i := a.Iter()
	var elem Iter
	for {
		t, err := i.AdvanceIter(&elem)
		if err != nil {
			return nil, err
		}
		switch t {
		case TypeNone:
			return dst, nil
		case TypeString:
			s, err := elem.String()
			if err != nil {
				return nil, err
			}
			dst = append(dst, s)
		default:
			return nil, fmt.Errorf("element in array is not string, but %v: %w", t, &Error{Code: UNEXPECTED_TYPE, Offset: -1})
		}
	}
}

// AsStringCvt returns every element as a string, converting scalars.
// Root, object and array elements are not supported.
func (a *Array) AsStringCvt() ([]string, error) {
	lenEst := len(a.tape.Words) - a.off - 1
	if lenEst < 0 {
		lenEst = 0
	}
	dst := make([]string, 0, lenEst)
	i := a.Iter()
	var elem Iter
	for {
		t, err := i.AdvanceIter(&elem)
		if err != nil {
			return nil, err
		}
		if t == TypeNone {
			return dst, nil
		}
		s, err := elem.StringCvt()
		if err != nil {
			return nil, err
		}
		dst = append(dst, s)
	}
}

func estArrLen(a *Array) int {
	lenEst := (len(a.tape.Words) - a.off - 1) / 2
	if lenEst < 0 {
		return 0
	}
	return lenEst
}
