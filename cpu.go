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

import "github.com/klauspost/cpuid/v2"

// chunkWidth is the window size validateUTF8 advances by while scanning a
// buffer for encoding errors. It is process-wide immutable state, selected
// once at startup by probing CPU features: the rest of the parser only ever
// reads chunkWidth, never re-probes the CPU itself. Structural scanning
// (scanStructural) carries its state byte-by-byte across the whole buffer
// and has no chunk boundary of its own to size; only the UTF-8 pass is
// chunked, since a wider window means fewer bounds checks per byte on CPUs
// wide enough to make that worth it.
var chunkWidth = detectChunkWidth()

// SupportedCPU reports whether the host CPU meets the baseline this build
// targets. This implementation is portable scalar Go with no CPU-gated
// kernels, so it always reports true; kept as a public entry point for
// callers that check it before parsing.
func SupportedCPU() bool {
	return true
}

func detectChunkWidth() int {
	if cpuid.CPU.Supports(cpuid.AVX2) {
		return 64
	}
	return 32
}
