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

func TestParserBasic(t *testing.T) {
	p := NewParser()
	tape, err := p.Parse([]byte(`{"x":1}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if tape == nil {
		t.Fatalf("Parse() returned nil tape")
	}
	if p.LastError() != nil {
		t.Errorf("LastError() = %v, want nil", p.LastError())
	}
}

func TestParserLastErrorTracksFailure(t *testing.T) {
	p := NewParser()
	_, err := p.Parse([]byte(`{`))
	if err == nil {
		t.Fatalf("Parse(%q) succeeded, want error", `{`)
	}
	if p.LastError() != err {
		t.Errorf("LastError() = %v, want %v", p.LastError(), err)
	}

	// A subsequent successful parse clears the recorded error.
	if _, err := p.Parse([]byte(`1`)); err != nil {
		t.Fatalf("Parse(1) error = %v", err)
	}
	if p.LastError() != nil {
		t.Errorf("LastError() = %v, want nil after successful parse", p.LastError())
	}
}

func TestParserEmptyInput(t *testing.T) {
	p := NewParser()
	tests := []string{"", "   ", "\n\t"}
	for _, in := range tests {
		_, err := p.Parse([]byte(in))
		if err == nil {
			t.Fatalf("Parse(%q) succeeded, want EMPTY error", in)
		}
		serr, ok := err.(*Error)
		if !ok || serr.Code != EMPTY {
			t.Errorf("Parse(%q) error = %v, want EMPTY", in, err)
		}
	}
}

func TestParserCapacityEnforced(t *testing.T) {
	p := NewParser(WithCapacity(4))
	_, err := p.Parse([]byte(`{"too":"long"}`))
	if err == nil {
		t.Fatalf("Parse() succeeded, want CAPACITY error")
	}
	serr, ok := err.(*Error)
	if !ok || serr.Code != CAPACITY {
		t.Errorf("Parse() error = %v, want CAPACITY", err)
	}
}

func TestParserAllocateNegativeCapacity(t *testing.T) {
	p := NewParser()
	err := p.Allocate(-1, 0)
	if err == nil {
		t.Fatalf("Allocate(-1, 0) succeeded, want error")
	}
	serr, ok := err.(*Error)
	if !ok || serr.Code != MEMALLOC {
		t.Errorf("Allocate(-1, 0) error = %v, want MEMALLOC", err)
	}
}

func TestParserMaxDepthOption(t *testing.T) {
	p := NewParser(WithMaxDepth(1))
	_, err := p.Parse([]byte(`[[1]]`))
	if err == nil {
		t.Fatalf("Parse() succeeded, want DEPTH_ERROR")
	}
	serr, ok := err.(*Error)
	if !ok || serr.Code != DEPTH_ERROR {
		t.Errorf("Parse() error = %v, want DEPTH_ERROR", err)
	}

	// A single array at depth 1 (root wrapper aside) must still succeed.
	if _, err := p.Parse([]byte(`[1]`)); err != nil {
		t.Errorf("Parse([1]) error = %v, want nil", err)
	}
}

func TestParserCopyStringsZeroCopy(t *testing.T) {
	src := []byte(`"hello"`)
	p := NewParser(WithCopyStrings(false))
	tape, err := p.ParseOwned(src)
	if err != nil {
		t.Fatalf("ParseOwned() error = %v", err)
	}
	if len(tape.Strings) != 0 {
		t.Errorf("Strings buffer len = %d, want 0 when copy-strings disabled and no escapes present", len(tape.Strings))
	}
	iter := tape.Iter()
	iter.Advance()
	_, root, err := iter.Root(nil)
	if err != nil {
		t.Fatalf("Root() error = %v", err)
	}
	s, err := root.String()
	if err != nil || s != "hello" {
		t.Errorf("String() = (%q, %v), want (hello, nil)", s, err)
	}
}

func TestParserCopyStringsDefault(t *testing.T) {
	p := NewParser()
	tape, err := p.Parse([]byte(`"hello"`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(tape.Strings) == 0 {
		t.Errorf("Strings buffer is empty, want copied bytes when copy-strings is enabled (default)")
	}
}

func TestParserOwnedSurvivesBufferMutation(t *testing.T) {
	src := []byte(`"hello"`)
	p := NewParser()
	tape, err := p.ParseOwned(src)
	if err != nil {
		t.Fatalf("ParseOwned() error = %v", err)
	}
	for i := range src {
		src[i] = 'X'
	}
	iter := tape.Iter()
	iter.Advance()
	_, root, err := iter.Root(nil)
	if err != nil {
		t.Fatalf("Root() error = %v", err)
	}
	s, err := root.String()
	if err != nil || s != "hello" {
		t.Errorf("String() = (%q, %v), want (hello, nil) after mutating the source buffer", s, err)
	}
}
