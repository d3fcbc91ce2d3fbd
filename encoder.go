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

import (
	"fmt"
	"reflect"
)

// encodeInto walks the StructSpec of v's type over v, writing each field to
// w in order.
// v must be addressable so that variable-length and variable-count fields
// can resolve their named methods.
func encodeInto(w *BitWriter, v reflect.Value) error {
	spec, err := layoutOf(v.Type())
	if err != nil {
		return err
	}

	for i := range spec.fields {
		if err := encodeField(w, v, &spec.fields[i]); err != nil {
			return err
		}
	}
	return nil
}

func encodeField(w *BitWriter, container reflect.Value, f *fieldSpec) error {
	fv := container.FieldByIndex(f.index)

	switch f.kind {
	case kindBigEndianInt:
		if f.hasFixed {
			writeRaw(w, f.fixedValue)
			return nil
		}
		w.WriteBytesBigEndian(fieldUint(fv), f.byteWidth)

	case kindLittleEndianInt:
		if f.hasFixed {
			writeRaw(w, f.fixedValue)
			return nil
		}
		w.WriteBytesLittleEndian(fieldUint(fv), f.byteWidth)

	case kindPartialBits:
		w.WriteBitsBigEndian(fieldUint(fv), f.bits)

	case kindByteArrayFixed:
		if f.hasFixed {
			writeRaw(w, f.fixedValue)
			return nil
		}
		b := make([]byte, fv.Len())
		reflect.Copy(reflect.ValueOf(b), fv)
		writeRaw(w, b)

	case kindAsciiStringFixed:
		if f.hasFixed {
			writeRaw(w, f.fixedValue)
			return nil
		}
		writeRaw(w, asciiBytes(fv.String(), f.byteWidth))

	case kindByteArrayVariable:
		n, err := callIntMethod(container, f.lengthMethod)
		if err != nil {
			return &EncodeError{Field: f.name, Reason: err.Error()}
		}
		if n < 0 {
			n = 0
		}
		b := fv.Bytes()
		if len(b) != n {
			return &EncodeError{Field: f.name, Reason: fmt.Sprintf("length method %s returned %d, slice has %d bytes", f.lengthMethod, n, len(b))}
		}
		writeRaw(w, b)

	case kindByteArrayTerminated:
		b := fv.Bytes()
		if len(b) == 0 || b[len(b)-1] != f.stop {
			padded := make([]byte, len(b)+1)
			copy(padded, b)
			padded[len(b)] = f.stop
			b = padded
		}
		writeRaw(w, b)

	case kindRemainingBytes:
		writeRaw(w, fv.Bytes())

	case kindChild:
		if err := encodeInto(w, addressable(fv)); err != nil {
			return err
		}

	case kindChildFixedRepeat:
		if fv.Len() != f.fixedCount {
			return &EncodeError{Field: f.name, Reason: fmt.Sprintf("expected %d elements, got %d", f.fixedCount, fv.Len())}
		}
		for i := 0; i < fv.Len(); i++ {
			if err := encodeInto(w, addressable(fv.Index(i))); err != nil {
				return err
			}
		}

	case kindChildVariableRepeat:
		n, err := callIntMethod(container, f.countMethod)
		if err != nil {
			return &EncodeError{Field: f.name, Reason: err.Error()}
		}
		if n < 0 {
			n = 0
		}
		if fv.Len() != n {
			return &EncodeError{Field: f.name, Reason: fmt.Sprintf("count method %s returned %d, slice has %d elements", f.countMethod, n, fv.Len())}
		}
		for i := 0; i < fv.Len(); i++ {
			if err := encodeInto(w, addressable(fv.Index(i))); err != nil {
				return err
			}
		}
	}

	return nil
}
