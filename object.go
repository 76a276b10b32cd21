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
)

// Object is a zero-copy view over a JSON object's slice of the tape.
// Keys are matched byte-wise against the decoded key bytes with no Unicode
// normalization or case folding: the first matching key wins on duplicates.
type Object struct {
	tape Tape
	off  int
}

// walk visits every element of the object in original order via NextElement,
// stopping at the first error visit returns or once the object is exhausted.
// Map and Parse are both traversals over the same element stream and differ
// only in what they do with each (name, type, value) triple, so they share
// this loop instead of repeating it.
func (o *Object) walk(visit func(name string, t Type, it *Iter) error) error {
	var tmp Iter
	for {
		name, t, err := o.NextElement(&tmp)
		if err != nil {
			return err
		}
		if t == TypeNone {
			return nil
		}
		if err := visit(name, t, &tmp); err != nil {
			return err
		}
	}
}

// Map unmarshals the object into a map[string]interface{}.
// See Iter.Interface for the value-type mapping.
func (o *Object) Map(dst map[string]interface{}) (map[string]interface{}, error) {
	if dst == nil {
		dst = make(map[string]interface{})
	}
	err := o.walk(func(name string, _ Type, it *Iter) error {
		v, err := it.Interface()
		if err != nil {
			return fmt.Errorf("parsing element %q: %w", name, err)
		}
		dst[name] = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dst, nil
}

// Parse returns all elements of the object, in insertion order, plus a
// lookup index. dst, if non-nil, is reused.
func (o *Object) Parse(dst *Elements) (*Elements, error) {
	if dst == nil {
		dst = &Elements{
			Elements: make([]Element, 0, 5),
			Index:    make(map[string]int, 5),
		}
	} else {
		dst.Elements = dst.Elements[:0]
		for k := range dst.Index {
			delete(dst.Index, k)
		}
	}
	err := o.walk(func(name string, t Type, it *Iter) error {
		dst.Index[name] = len(dst.Elements)
		dst.Elements = append(dst.Elements, Element{Name: name, Type: t, Iter: *it})
		return nil
	})
	return dst, err
}

// FindKey returns the first element with the given key, or nil if absent.
// The object is not advanced; use this only for locating a single key when
// the object is not otherwise needed.
func (o *Object) FindKey(key string, dst *Element) *Element {
	tmp := o.tape.Iter()
	tmp.off = o.off
	for {
		typ := tmp.Advance()
		if typ != TypeString || tmp.off+1 >= len(tmp.tape.Words) {
			return nil
		}
		offset := tmp.cur
		length := tmp.tape.Words[tmp.off]
		if int(length) != len(key) {
			if tmp.Advance() == TypeNone {
				return nil
			}
			continue
		}
		name, err := tmp.tape.stringByteAt(offset, length)
		if err != nil {
			return nil
		}
		if string(name) != key {
			tmp.Advance()
			continue
		}
		if dst == nil {
			dst = &Element{}
		}
		dst.Name = key
		dst.Type, err = tmp.AdvanceIter(&dst.Iter)
		if err != nil {
			return nil
		}
		return dst
	}
}

// NextElement sets dst to the next element and returns its key.
// TypeNone with a nil error signals the end of the object.
func (o *Object) NextElement(dst *Iter) (name string, t Type, err error) {
	n, t, err := o.NextElementBytes(dst)
	return string(n), t, err
}

// NextElementBytes is like NextElement but avoids allocating the key string.
func (o *Object) NextElementBytes(dst *Iter) (name []byte, t Type, err error) {
	if o.off >= len(o.tape.Words) {
		return nil, TypeNone, nil
	}
	v := o.tape.Words[o.off]
	switch Tag(v >> 56) {
	case TagString:
		if o.off+2 >= len(o.tape.Words) {
			return nil, TypeNone, errors.New("parsing object element name: unexpected end of tape")
		}
		length := o.tape.Words[o.off+1]
		offset := v & jsonValueMask
		name, err = o.tape.stringByteAt(offset, length)
		if err != nil {
			return nil, TypeNone, fmt.Errorf("parsing object element name: %w", err)
		}
		o.off += 2
	case TagObjectEnd:
		return nil, TypeNone, nil
	default:
		return nil, TypeNone, fmt.Errorf("object: unexpected tag %c", byte(v>>56))
	}

	v = o.tape.Words[o.off]
	o.off++

	dst.cur = v & jsonValueMask
	dst.t = Tag(v >> 56)
	dst.off = o.off
	dst.tape = o.tape
	dst.calcNext(false)
	elemSize := dst.addNext
	dst.calcNext(true)
	if dst.off+elemSize > len(dst.tape.Words) {
		return nil, TypeNone, errors.New("element extends beyond tape")
	}
	dst.tape.Words = dst.tape.Words[:dst.off+elemSize]

	o.off += elemSize
	return name, tagToType[dst.t], nil
}

// Element is a named value found while walking an Object.
type Element struct {
	Name string
	Type Type
	Iter Iter
}

// Elements holds every element of an object, kept in original order, plus a
// lookup index for repeated key access.
type Elements struct {
	Elements []Element
	Index    map[string]int
}

// Lookup returns the element for key, or nil if absent. Case sensitive.
func (e Elements) Lookup(key string) *Element {
	idx, ok := e.Index[key]
	if !ok {
		return nil
	}
	return &e.Elements[idx]
}

// MarshalJSON marshals the whole object.
func (e Elements) MarshalJSON() ([]byte, error) {
	return e.MarshalJSONBuffer(nil)
}

// MarshalJSONBuffer marshals all elements, appending to dst.
func (e Elements) MarshalJSONBuffer(dst []byte) ([]byte, error) {
	dst = append(dst, '{')
	for i, elem := range e.Elements {
		dst = append(dst, '"')
		dst = escapeBytes(dst, []byte(elem.Name))
		dst = append(dst, '"', ':')
		var err error
		dst, err = elem.Iter.MarshalJSONBuffer(dst)
		if err != nil {
			return nil, err
		}
		if i < len(e.Elements)-1 {
			dst = append(dst, ',')
		}
	}
	dst = append(dst, '}')
	return dst, nil
}
