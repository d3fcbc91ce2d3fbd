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

// SizeOf returns the number of bytes value would occupy if encoded with
// ToBytes, without actually encoding it. Unlike a type-level size
// computation, it resolves variable-length and variable-count fields from
// value's own slice lengths rather than by calling their declared methods,
// so it stays correct even for a value under construction whose method
// result and slice contents have not yet been reconciled.
func SizeOf(value interface{}) (int, error) {
	v := reflect.ValueOf(value)
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	return sizeOfValue(v)
}

func sizeOfValue(v reflect.Value) (int, error) {
	spec, err := layoutOf(v.Type())
	if err != nil {
		return 0, err
	}

	bits := 0
	for i := range spec.fields {
		n, err := sizeOfField(v, &spec.fields[i])
		if err != nil {
			return 0, err
		}
		bits += n
	}

	return bits / 8, nil
}

// sizeOfField returns a field's contribution in bits.
func sizeOfField(container reflect.Value, f *fieldSpec) (int, error) {
	fv := container.FieldByIndex(f.index)

	switch f.kind {
	case kindBigEndianInt, kindLittleEndianInt, kindByteArrayFixed, kindAsciiStringFixed:
		return f.byteWidth * 8, nil

	case kindPartialBits:
		return f.bits, nil

	case kindByteArrayVariable:
		return fv.Len() * 8, nil

	case kindByteArrayTerminated:
		b := fv.Bytes()
		if len(b) > 0 && b[len(b)-1] == f.stop {
			return len(b) * 8, nil
		}
		return (len(b) + 1) * 8, nil

	case kindRemainingBytes:
		return fv.Len() * 8, nil

	case kindChild:
		n, err := sizeOfValue(addressable(fv))
		return n * 8, err

	case kindChildFixedRepeat, kindChildVariableRepeat:
		bits := 0
		for i := 0; i < fv.Len(); i++ {
			n, err := sizeOfValue(addressable(fv.Index(i)))
			if err != nil {
				return 0, err
			}
			bits += n * 8
		}
		return bits, nil
	}

	return 0, nil
}
