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
	"reflect"
	"testing"
)

func idxU32(vs ...uint32) []uint32 { return vs }

func TestScanStructuralBasic(t *testing.T) {
	tests := []struct {
		name          string
		in            string
		wantIdx       []uint32
		wantUnclosed  bool
		wantValidUTF8 bool
	}{
		{"empty object", `{}`, idxU32(0, 1), false, true},
		{"quoted string", `"abc"`, idxU32(0, 4), false, true},
		{"two bare numbers", `1 2`, idxU32(0, 2), false, true},
		{"unclosed string", `"abc`, idxU32(0), true, true},
		{"escaped quote inside string", `"a\"b"`, idxU32(0, 5), false, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := scanStructural(PadBuffer([]byte(tc.in)))
			if !reflect.DeepEqual(res.indexes, tc.wantIdx) {
				t.Errorf("scanStructural(%q).indexes = %v, want %v", tc.in, res.indexes, tc.wantIdx)
			}
			if res.unclosedQuote != tc.wantUnclosed {
				t.Errorf("scanStructural(%q).unclosedQuote = %v, want %v", tc.in, res.unclosedQuote, tc.wantUnclosed)
			}
			if res.validUTF8 != tc.wantValidUTF8 {
				t.Errorf("scanStructural(%q).validUTF8 = %v, want %v", tc.in, res.validUTF8, tc.wantValidUTF8)
			}
		})
	}
}

// The nested-value example below marks every punctuation byte, every quote,
// and the first byte of every primitive token (17 offsets total). Treated
// as implementer discretion; see DESIGN.md for why this repo does not chase
// a smaller illustrative count for the same input.
func TestScanStructuralNested(t *testing.T) {
	in := `{"a":1,"b":[true,null,2.5]}`
	want := idxU32(0, 1, 3, 4, 5, 6, 7, 9, 10, 11, 12, 16, 17, 21, 22, 25, 26)
	res := scanStructural(PadBuffer([]byte(in)))
	if !reflect.DeepEqual(res.indexes, want) {
		t.Errorf("scanStructural(%q).indexes = %v, want %v", in, res.indexes, want)
	}
	if res.unclosedQuote {
		t.Errorf("scanStructural(%q).unclosedQuote = true, want false", in)
	}
}

func TestScanStructuralInvalidUTF8(t *testing.T) {
	in := append([]byte(`"`), 0xC0, 0x80)
	in = append(in, '"')
	res := scanStructural(PadBuffer(in))
	if res.validUTF8 {
		t.Errorf("scanStructural: expected validUTF8 = false for overlong encoding")
	}
}
