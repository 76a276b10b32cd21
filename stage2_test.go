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

import "testing"

func TestBuildTapeObject(t *testing.T) {
	in := `{"a":1,"b":true,"c":null,"d":"hi","e":2.5}`
	p := NewParser()
	tape, err := p.Parse([]byte(in))
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", in, err)
	}

	iter := tape.Iter()
	if typ := iter.Advance(); typ != TypeRoot {
		t.Fatalf("Advance() = %v, want TypeRoot", typ)
	}
	typ, root, err := iter.Root(nil)
	if err != nil {
		t.Fatalf("Root() error = %v", err)
	}
	if typ != TypeObject {
		t.Fatalf("Root() type = %v, want TypeObject", typ)
	}
	obj, err := root.Object(nil)
	if err != nil {
		t.Fatalf("Object() error = %v", err)
	}

	if elem := obj.FindKey("a", nil); elem == nil {
		t.Errorf("FindKey(a) = nil")
	} else if v, err := elem.Iter.Int(); err != nil || v != 1 {
		t.Errorf("a = (%d, %v), want (1, nil)", v, err)
	}
	if elem := obj.FindKey("b", nil); elem == nil {
		t.Errorf("FindKey(b) = nil")
	} else if v, err := elem.Iter.Bool(); err != nil || v != true {
		t.Errorf("b = (%v, %v), want (true, nil)", v, err)
	}
	if elem := obj.FindKey("c", nil); elem == nil {
		t.Errorf("FindKey(c) = nil")
	} else if elem.Type != TypeNull {
		t.Errorf("c type = %v, want TypeNull", elem.Type)
	}
	if elem := obj.FindKey("d", nil); elem == nil {
		t.Errorf("FindKey(d) = nil")
	} else if v, err := elem.Iter.String(); err != nil || v != "hi" {
		t.Errorf("d = (%q, %v), want (hi, nil)", v, err)
	}
	if elem := obj.FindKey("e", nil); elem == nil {
		t.Errorf("FindKey(e) = nil")
	} else if v, err := elem.Iter.Float(); err != nil || v != 2.5 {
		t.Errorf("e = (%v, %v), want (2.5, nil)", v, err)
	}
	if elem := obj.FindKey("missing", nil); elem != nil {
		t.Errorf("FindKey(missing) = %v, want nil", elem)
	}
}

func TestBuildTapeArray(t *testing.T) {
	in := `[1,2,3]`
	p := NewParser()
	tape, err := p.Parse([]byte(in))
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", in, err)
	}
	iter := tape.Iter()
	iter.Advance()
	typ, root, err := iter.Root(nil)
	if err != nil || typ != TypeArray {
		t.Fatalf("Root() = (%v, %v), want (TypeArray, nil)", typ, err)
	}
	arr, err := root.Array(nil)
	if err != nil {
		t.Fatalf("Array() error = %v", err)
	}
	got, err := arr.AsInteger()
	if err != nil {
		t.Fatalf("AsInteger() error = %v", err)
	}
	want := []int64{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("AsInteger() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AsInteger()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestBuildTapeNestedContainers(t *testing.T) {
	in := `{"a":1,"b":[true,null,2.5]}`
	p := NewParser()
	tape, err := p.Parse([]byte(in))
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", in, err)
	}
	stats := tape.Stats()
	if stats.Objects != 1 || stats.Arrays != 1 {
		t.Errorf("Stats() objects=%d arrays=%d, want 1,1", stats.Objects, stats.Arrays)
	}
	if stats.Integers != 1 || stats.Booleans != 1 || stats.Nulls != 1 || stats.Floats != 1 {
		t.Errorf("Stats() = %+v, want 1 integer, 1 bool, 1 null, 1 float", stats)
	}
}

func TestBuildTapeGrammarErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ErrorCode
	}{
		{"unterminated object", `{"a":1`, TAPE_ERROR},
		{"trailing content", `1 2`, TAPE_ERROR},
		{"missing colon", `{"a" 1}`, TAPE_ERROR},
		{"missing comma", `[1 2]`, TAPE_ERROR},
		{"bad true literal", `truX`, T_ATOM_ERROR},
		{"bad false literal", `falze`, F_ATOM_ERROR},
		{"bad null literal", `nul`, N_ATOM_ERROR},
		{"leading structural character", `,`, TAPE_ERROR},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := NewParser()
			_, err := p.Parse([]byte(tc.in))
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error %v", tc.in, tc.want)
			}
			serr, ok := err.(*Error)
			if !ok {
				t.Fatalf("Parse(%q) error type = %T, want *Error", tc.in, err)
			}
			if serr.Code != tc.want {
				t.Errorf("Parse(%q) code = %v, want %v", tc.in, serr.Code, tc.want)
			}
		})
	}
}

func TestBuildTapeBareAtomAtEndOfInput(t *testing.T) {
	// A document that is nothing but a bare atom exercises the boundary
	// where the atom's trailing byte check has no logical byte left to
	// inspect.
	tests := []struct {
		name string
		in   string
		tag  Tag
	}{
		{"true", "true", TagBoolTrue},
		{"false", "false", TagBoolFalse},
		{"null", "null", TagNull},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := NewParser()
			tape, err := p.Parse([]byte(tc.in))
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tc.in, err)
			}
			iter := tape.Iter()
			iter.Advance()
			typ, root, err := iter.Root(nil)
			if err != nil {
				t.Fatalf("Root() error = %v", err)
			}
			_ = typ
			if root.t != tc.tag {
				t.Errorf("root tag = %v, want %v", root.t, tc.tag)
			}
		})
	}
}

func TestBuildTapeDepthExceeded(t *testing.T) {
	p := NewParser(WithMaxDepth(2))
	in := `[[[1]]]`
	_, err := p.Parse([]byte(in))
	if err == nil {
		t.Fatalf("Parse(%q) succeeded, want DEPTH_ERROR", in)
	}
	serr, ok := err.(*Error)
	if !ok || serr.Code != DEPTH_ERROR {
		t.Errorf("Parse(%q) error = %v, want DEPTH_ERROR", in, err)
	}
}
