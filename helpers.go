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

import "reflect"

// fieldUint reads an integer-kind field's value as a uint64, regardless of
// whether the field is declared signed or unsigned.
func fieldUint(fv reflect.Value) uint64 {
	switch fv.Kind() {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fv.Uint()
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return uint64(fv.Int())
	default:
		return 0
	}
}

// addressable returns v if it is already addressable, or an addressable
// copy otherwise. Needed because encoding may be asked to work on a
// caller-supplied struct value (not a pointer), while method-based length
// and count sources and pointer-receiver Specialiser implementations need an
// addressable receiver.
func addressable(v reflect.Value) reflect.Value {
	if v.CanAddr() {
		return v
	}
	cp := reflect.New(v.Type()).Elem()
	cp.Set(v)
	return cp
}

// writeRaw appends each byte of b to w in order.
func writeRaw(w *BitWriter, b []byte) {
	for _, x := range b {
		w.PushByte(x)
	}
}

// asciiBytes encodes s into exactly n bytes: front-truncated if s is longer
// than n, front-padded with zero bytes if shorter.
func asciiBytes(s string, n int) []byte {
	b := []byte(s)
	if len(b) == n {
		return b
	}
	if len(b) > n {
		return b[len(b)-n:]
	}
	out := make([]byte, n)
	copy(out[n-len(b):], b)
	return out
}

// hexDigitsFor returns the hex digit count the Describer uses for an
// integer-kind field, per its declared Go width: 2/4/8/16 digits for
// 8/16/32/64-bit fields respectively.
func hexDigitsFor(fv reflect.Value) int {
	switch fv.Type().Bits() {
	case 16:
		return 4
	case 32:
		return 8
	case 64:
		return 16
	default:
		return 2
	}
}
