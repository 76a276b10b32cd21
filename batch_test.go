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

func TestFindChunkBoundaryContainerClose(t *testing.T) {
	buf := []byte(`{"a":1} {"b":2}`)
	cut, ok := findChunkBoundary(buf, len(buf))
	if !ok || cut != 15 {
		t.Errorf("findChunkBoundary(full) = (%d, %v), want (15, true)", cut, ok)
	}

	cut, ok = findChunkBoundary(buf, 8)
	if !ok || cut != 7 {
		t.Errorf("findChunkBoundary(window 8) = (%d, %v), want (7, true)", cut, ok)
	}
}

func TestFindChunkBoundaryWhitespaceAfterScalar(t *testing.T) {
	buf := []byte(`123 456`)
	cut, ok := findChunkBoundary(buf, len(buf))
	if !ok || cut != 3 {
		t.Errorf("findChunkBoundary(%q) = (%d, %v), want (3, true)", buf, cut, ok)
	}
}

func TestFindChunkBoundaryNoBoundaryInOpenContainer(t *testing.T) {
	buf := []byte(`{"a":1`)
	_, ok := findChunkBoundary(buf, len(buf))
	if ok {
		t.Errorf("findChunkBoundary(%q) = ok, want no boundary found (open container)", buf)
	}
}

func TestFindChunkBoundaryAmbiguousTrailingScalar(t *testing.T) {
	// A bare scalar ending exactly at the window edge with nothing after it
	// cannot be distinguished from one that continues past the window.
	buf := []byte(`{"a":1} 456`)
	cut, ok := findChunkBoundary(buf, len(buf))
	if !ok || cut != 7 {
		t.Errorf("findChunkBoundary(%q) = (%d, %v), want (7, true) — only the container-close boundary is reported", buf, cut, ok)
	}
}

func TestDocumentBatchSplitsOnBoundaries(t *testing.T) {
	buf := []byte(`{"a":1} {"b":2}`)
	chunks, err := DocumentBatch(buf, 8)
	if err != nil {
		t.Fatalf("DocumentBatch() error = %v", err)
	}
	want := []string{`{"a":1}`, ` {"b":2}`}
	if len(chunks) != len(want) {
		t.Fatalf("DocumentBatch() = %d chunks, want %d: %q", len(chunks), len(want), chunks)
	}
	for i, w := range want {
		if string(chunks[i]) != w {
			t.Errorf("chunk[%d] = %q, want %q", i, chunks[i], w)
		}
	}
}

func TestDocumentBatchSingleChunkWhenWithinBudget(t *testing.T) {
	buf := []byte(`{"a":1} {"b":2}`)
	chunks, err := DocumentBatch(buf, 100)
	if err != nil {
		t.Fatalf("DocumentBatch() error = %v", err)
	}
	if len(chunks) != 1 || string(chunks[0]) != string(buf) {
		t.Errorf("DocumentBatch() = %q, want single chunk %q", chunks, buf)
	}
}

func TestDocumentBatchDocumentExceedsMaxChunk(t *testing.T) {
	buf := []byte(`{"a":"01234567890123456789"}`)
	_, err := DocumentBatch(buf, 5)
	if err == nil {
		t.Fatalf("DocumentBatch() succeeded, want CAPACITY error")
	}
	serr, ok := err.(*Error)
	if !ok || serr.Code != CAPACITY {
		t.Errorf("DocumentBatch() error = %v, want CAPACITY", err)
	}
}

func TestDocumentBatchTrailingBareScalarAccepted(t *testing.T) {
	// The trailing "456" has no boundary findChunkBoundary can confirm on
	// its own, but DocumentBatch knows it has reached the true end of buf
	// and accepts the remainder as its own final chunk.
	buf := []byte(`{"a":1} 456`)
	chunks, err := DocumentBatch(buf, 100)
	if err != nil {
		t.Fatalf("DocumentBatch() error = %v", err)
	}
	want := []string{`{"a":1}`, ` 456`}
	if len(chunks) != len(want) {
		t.Fatalf("DocumentBatch() = %d chunks, want %d: %q", len(chunks), len(want), chunks)
	}
	for i, w := range want {
		if string(chunks[i]) != w {
			t.Errorf("chunk[%d] = %q, want %q", i, chunks[i], w)
		}
	}
}
