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
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
)

// serializeVersion guards the wire format Serializer emits. Bump it, and
// reject anything else in Deserialize, whenever the layout below changes.
const serializeVersion = 1

// Serializer compresses a Tape into a compact, self-contained byte stream so
// it can be cached or shipped without re-running Stage 1/Stage 2 on the far
// end. It treats the tape words and the string data as separate streams
// with different statistics, picking one codec per stream instead of
// negotiating between several block types per chunk (see DESIGN.md for why
// fse/huff0 were dropped):
// s2 for the tape words, which are mostly small repeated varint-sized
// integers where s2's cheap LZ matching earns its keep at parser speed, and
// zstd for the source message and decoded strings, which are natural-language
// text where zstd's entropy coding earns a meaningfully better ratio at a
// cost that's acceptable off the parsing hot path.
type Serializer struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewSerializer creates a Serializer. Callers should Close it once done to
// release the zstd encoder/decoder goroutines.
func NewSerializer() (*Serializer, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("simdjson: creating zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("simdjson: creating zstd decoder: %w", err)
	}
	return &Serializer{enc: enc, dec: dec}, nil
}

// Close releases the Serializer's zstd resources.
func (s *Serializer) Close() {
	s.enc.Close()
	s.dec.Close()
}

// Serialize appends a compressed encoding of t to dst and returns the
// extended slice.
func (s *Serializer) Serialize(dst []byte, t *Tape) []byte {
	dst = append(dst, serializeVersion)
	dst = appendBlock(dst, t.Message, s.enc.EncodeAll)

	wordBytes := make([]byte, len(t.Words)*8)
	for i, w := range t.Words {
		binary.LittleEndian.PutUint64(wordBytes[i*8:], w)
	}
	dst = appendBlock(dst, wordBytes, func(src, buf []byte) []byte { return s2.Encode(buf, src) })

	dst = appendBlock(dst, t.Strings, s.enc.EncodeAll)
	return dst
}

// appendBlock appends a length-prefixed, compressed copy of src to dst:
// varuint uncompressed length, varuint compressed length, compressed bytes.
func appendBlock(dst, src []byte, compress func(src, buf []byte) []byte) []byte {
	var hdr [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(hdr[:], uint64(len(src)))
	dst = append(dst, hdr[:n]...)

	comp := compress(src, nil)
	n = binary.PutUvarint(hdr[:], uint64(len(comp)))
	dst = append(dst, hdr[:n]...)
	return append(dst, comp...)
}

// Deserialize decodes src, previously produced by Serialize, into dst
// (allocated fresh if nil) and returns it.
func (s *Serializer) Deserialize(src []byte, dst *Tape) (*Tape, error) {
	if len(src) == 0 || src[0] != serializeVersion {
		return nil, fmt.Errorf("simdjson: unsupported or missing serialized tape version")
	}
	c := cursor{buf: src[1:]}

	message, err := c.readBlock(func(comp []byte, rawLen uint64) ([]byte, error) {
		return s.dec.DecodeAll(comp, make([]byte, 0, rawLen))
	})
	if err != nil {
		return nil, fmt.Errorf("simdjson: decoding message: %w", err)
	}

	wordBytes, err := c.readBlock(func(comp []byte, rawLen uint64) ([]byte, error) {
		return s2.Decode(make([]byte, 0, rawLen), comp)
	})
	if err != nil {
		return nil, fmt.Errorf("simdjson: decoding tape words: %w", err)
	}
	if len(wordBytes)%8 != 0 {
		return nil, fmt.Errorf("simdjson: corrupt tape word stream (length %d not a multiple of 8)", len(wordBytes))
	}
	words := make([]uint64, len(wordBytes)/8)
	for i := range words {
		words[i] = binary.LittleEndian.Uint64(wordBytes[i*8:])
	}

	strs, err := c.readBlock(func(comp []byte, rawLen uint64) ([]byte, error) {
		return s.dec.DecodeAll(comp, make([]byte, 0, rawLen))
	})
	if err != nil {
		return nil, fmt.Errorf("simdjson: decoding string buffer: %w", err)
	}

	if dst == nil {
		dst = &Tape{}
	}
	dst.Message = message
	dst.Words = words
	dst.Strings = strs
	return dst, nil
}

// cursor reads the varuint-length-prefixed blocks appendBlock produced.
type cursor struct {
	buf []byte
}

func (c *cursor) readBlock(decompress func(comp []byte, rawLen uint64) ([]byte, error)) ([]byte, error) {
	rawLen, n := binary.Uvarint(c.buf)
	if n <= 0 {
		return nil, fmt.Errorf("truncated block header")
	}
	c.buf = c.buf[n:]

	compLen, n := binary.Uvarint(c.buf)
	if n <= 0 {
		return nil, fmt.Errorf("truncated block header")
	}
	c.buf = c.buf[n:]

	if uint64(len(c.buf)) < compLen {
		return nil, fmt.Errorf("truncated block data")
	}
	comp := c.buf[:compLen]
	c.buf = c.buf[compLen:]

	if rawLen == 0 {
		return nil, nil
	}
	out, err := decompress(comp, rawLen)
	if err != nil {
		return nil, err
	}
	return out, nil
}
