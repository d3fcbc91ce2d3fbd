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

// BitWriter is an append-only writer producing a byte sequence. It accepts
// whole bytes and 1..64-bit values big-endian, coalescing sub-byte writes
// into whole bytes as they fill.
type BitWriter struct {
	out       []byte
	held      byte
	heldBits  uint8
}

// NewBitWriter returns an empty BitWriter.
func NewBitWriter() *BitWriter {
	return &BitWriter{}
}

// PushByte appends a whole byte. If the writer is mid-byte it performs an
// 8-bit partial write instead.
func (w *BitWriter) PushByte(b byte) {
	if w.heldBits == 0 {
		w.out = append(w.out, b)
		return
	}
	w.WriteBitsBigEndian(uint64(b), 8)
}

// WriteBytesBigEndian emits the low n bytes (n: 1..8) of v, most-significant
// byte first.
func (w *BitWriter) WriteBytesBigEndian(v uint64, n int) {
	for i := n - 1; i >= 0; i-- {
		w.PushByte(byte(v >> (uint(i) * 8)))
	}
}

// WriteBytesLittleEndian emits the low n bytes (n: 1..8) of v, least-significant
// byte first.
func (w *BitWriter) WriteBytesLittleEndian(v uint64, n int) {
	for i := 0; i < n; i++ {
		w.PushByte(byte(v >> (uint(i) * 8)))
	}
}

// WriteBitsBigEndian appends the low n bits (n: 1..64) of v, MSB first,
// continuing from the writer's current bit offset.
func (w *BitWriter) WriteBitsBigEndian(v uint64, n int) {
	if n < 1 || n > 64 {
		panic(fmt.Sprintf("bitlayout: WriteBitsBigEndian called with n=%d, must be 1..64", n))
	}

	if w.heldBits != 0 {
		remaining := 8 - w.heldBits
		if uint(n) <= uint(remaining) {
			shift := uint(remaining) - uint(n)
			mask := uint64(1<<uint(n)) - 1
			w.held |= byte((v & mask) << shift)
			w.heldBits += uint8(n)
			if w.heldBits >= 8 {
				w.out = append(w.out, w.held)
				w.held = 0
				w.heldBits = 0
			}
			return
		}

		bitsFromV := n - int(remaining)
		top := byte((v >> uint(bitsFromV)) & (uint64(1<<remaining) - 1))
		w.held |= top
		w.out = append(w.out, w.held)
		w.held = 0
		w.heldBits = 0

		n = bitsFromV
	}

	for n >= 8 {
		n -= 8
		w.out = append(w.out, byte(v>>uint(n)))
	}

	if n > 0 {
		mask := uint64(1<<uint(n)) - 1
		w.held = byte(v&mask) << (8 - uint(n))
		w.heldBits = uint8(n)
	}
}

// Finish flushes any held partial byte (zero-padded in its low bits) and
// returns the produced byte sequence.
func (w *BitWriter) Finish() []byte {
	if w.heldBits != 0 {
		w.out = append(w.out, w.held)
		w.held = 0
		w.heldBits = 0
	}
	return w.out
}

// Len returns the number of whole bytes emitted so far, not counting a
// partially filled held byte.
func (w *BitWriter) Len() int {
	return len(w.out)
}
