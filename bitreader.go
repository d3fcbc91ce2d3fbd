/*
Copyright 2021 Hewlett Packard Enterprise Development LP

Permission is hereby granted, free of charge, to any person obtaining a
copy of this software and associated documentation files (the "Software"),
to deal in the Software without restriction, including without limitation
the rights to use, copy, modify, merge, publish, distribute, sublicense,
and/or sell copies of the Software, and to permit persons to whom the
Software is furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.

IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM,
DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR
OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE
USE OR OTHER DEALINGS IN THE SOFTWARE.
*/
package bitlayout

import "fmt"

// bitPosition is a saved read position, restorable with BitReader.Reset.
type bitPosition struct {
	byteIndex int
	bitOffset uint8
	fragment  byte
	overrun   bool
}

// BitReader is a positioned, bounded reader over a byte region [start, start+length)
// of an input buffer. It produces whole bytes and 1..8-bit slices, MSB-first, and
// latches an over-run flag rather than erroring when the region is exhausted.
type BitReader struct {
	data     []byte
	start    int
	end      int
	pos      int
	bitOff   uint8
	fragment byte
	overrun  bool
}

// NewBitReader returns a BitReader over data[start : start+length).
func NewBitReader(data []byte, start, length int) *BitReader {
	end := start + length
	if end > len(data) {
		end = len(data)
	}
	if start > end {
		start = end
	}
	return &BitReader{data: data, start: start, end: end, pos: start}
}

// Overrun reports whether a read has ever gone past the end of the region.
func (r *BitReader) Overrun() bool {
	return r.overrun
}

// Remaining returns the whole bytes still available from the current byte
// position, ignoring any held sub-byte fragment.
func (r *BitReader) Remaining() int {
	if r.end <= r.pos {
		return 0
	}
	return r.end - r.pos
}

// AtEnd reports whether the reader is byte-aligned with no source bytes
// left, used by ByteArrayTerminated to stop at the end of the region even
// when no terminator byte was found.
func (r *BitReader) AtEnd() bool {
	return r.bitOff == 0 && r.pos >= r.end
}

// Position snapshots the reader's state so it can be restored later, used by
// the decoder to rewind before re-decoding a specialised subtype.
func (r *BitReader) Position() bitPosition {
	return bitPosition{byteIndex: r.pos, bitOffset: r.bitOff, fragment: r.fragment, overrun: r.overrun}
}

// Reset restores a previously saved position.
func (r *BitReader) Reset(p bitPosition) {
	r.pos = p.byteIndex
	r.bitOff = p.bitOffset
	r.fragment = p.fragment
	r.overrun = p.overrun
}

// nextSourceByte consumes one raw byte from the region, latching overrun and
// returning zero past the end.
func (r *BitReader) nextSourceByte() byte {
	if r.pos >= r.end {
		r.overrun = true
		return 0
	}
	b := r.data[r.pos]
	r.pos++
	return b
}

// NextByte returns the next byte. If the reader is not currently bit-aligned
// it is equivalent to NextBits(8).
func (r *BitReader) NextByte() byte {
	if r.bitOff == 0 {
		return r.nextSourceByte()
	}
	return r.NextBits(8)
}

// NextBits returns the next n bits (1..8) as the low-order bits of a byte,
// MSB-first, continuing from the current bit offset.
func (r *BitReader) NextBits(n uint) byte {
	if n < 1 || n > 8 {
		panic(fmt.Sprintf("bitlayout: NextBits called with n=%d, must be 1..8", n))
	}

	if r.bitOff == 0 {
		r.fragment = r.nextSourceByte()
	}

	remaining := 8 - r.bitOff
	if uint(remaining) >= n {
		shift := remaining - uint8(n)
		mask := byte(1<<n) - 1
		value := (r.fragment >> shift) & mask

		r.bitOff += uint8(n)
		if r.bitOff >= 8 {
			r.bitOff = 0
		}
		return value
	}

	high := r.fragment & (byte(1<<remaining) - 1)
	next := r.nextSourceByte()
	bitsFromNext := uint8(n) - remaining

	value := (high << bitsFromNext) | (next >> (8 - bitsFromNext))

	r.fragment = next
	r.bitOff = bitsFromNext

	return value
}

// NextBytes reads n raw bytes, byte-aligned. If the reader is mid-byte, each
// byte is assembled via NextBits(8).
func (r *BitReader) NextBytes(n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = r.NextByte()
	}
	return out
}
