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

// maxSpecialiseDepth bounds specialisation recursion: a specialised subtype
// may itself implement Specialiser, but pathological layouts that keep
// re-specialising must not be allowed to loop forever.
const maxSpecialiseDepth = 8

// decodeInto walks t's StructSpec over r, producing a populated value.
// After the declared fields are consumed it invokes the specialiser, if t
// has one; a distinct, compatible target type causes r to rewind to the
// position snapshotted before this call and the target to be decoded fresh.
func decodeInto(r *BitReader, t reflect.Type, depth int) (reflect.Value, error) {
	spec, err := layoutOf(t)
	if err != nil {
		return reflect.Value{}, err
	}

	snapshot := r.Position()
	v := reflect.New(t).Elem()

	for i := range spec.fields {
		if err := decodeField(r, v, &spec.fields[i], depth); err != nil {
			return reflect.Value{}, err
		}
	}

	if spec.specialiser {
		target, ok := callSpecialise(v)
		if ok && target != nil && target != t {
			if depth+1 > maxSpecialiseDepth {
				return reflect.Value{}, &ConfigurationError{Type: t.String(), Reason: "specialisation recursion exceeds maximum depth"}
			}
			if !isEmbeddingCompatible(t, target) {
				return reflect.Value{}, &ConfigurationError{Type: t.String(), Reason: fmt.Sprintf("specialiser target %s does not embed base type as its first field", target)}
			}

			r.Reset(snapshot)
			return decodeInto(r, target, depth+1)
		}
	}

	return v, nil
}

func decodeField(r *BitReader, container reflect.Value, f *fieldSpec, depth int) error {
	fv := container.FieldByIndex(f.index)

	switch f.kind {
	case kindBigEndianInt:
		setInt(fv, readBytesBig(r, f.byteWidth))

	case kindLittleEndianInt:
		setInt(fv, readBytesLittle(r, f.byteWidth))

	case kindPartialBits:
		setInt(fv, readBits(r, f.bits))

	case kindByteArrayFixed:
		reflect.Copy(fv, reflect.ValueOf(r.NextBytes(f.byteWidth)))

	case kindAsciiStringFixed:
		fv.SetString(string(r.NextBytes(f.byteWidth)))

	case kindByteArrayVariable:
		n, err := callIntMethod(container, f.lengthMethod)
		if err != nil {
			return &ConfigurationError{Field: f.name, Reason: err.Error()}
		}
		if n < 1 || n > MaxVariableLength {
			fv.Set(reflect.MakeSlice(fv.Type(), 0, 0))
			return nil
		}
		fv.SetBytes(r.NextBytes(n))

	case kindByteArrayTerminated:
		fv.SetBytes(readTerminated(r, f.stop))

	case kindRemainingBytes:
		fv.SetBytes(r.NextBytes(r.Remaining()))

	case kindChild:
		cv, err := decodeInto(r, f.childType, depth)
		if err != nil {
			return err
		}
		fv.Set(cv)

	case kindChildFixedRepeat:
		for i := 0; i < f.fixedCount; i++ {
			cv, err := decodeInto(r, f.childType, depth)
			if err != nil {
				return err
			}
			fv.Index(i).Set(cv)
		}

	case kindChildVariableRepeat:
		n, err := callIntMethod(container, f.countMethod)
		if err != nil {
			return &ConfigurationError{Field: f.name, Reason: err.Error()}
		}
		if n < 1 {
			fv.Set(reflect.MakeSlice(fv.Type(), 0, 0))
			return nil
		}
		out := reflect.MakeSlice(fv.Type(), n, n)
		for i := 0; i < n; i++ {
			cv, err := decodeInto(r, f.childType, depth)
			if err != nil {
				return err
			}
			out.Index(i).Set(cv)
		}
		fv.Set(out)
	}

	return nil
}

func readBytesBig(r *BitReader, n int) uint64 {
	var v uint64
	for _, b := range r.NextBytes(n) {
		v = (v << 8) | uint64(b)
	}
	return v
}

func readBytesLittle(r *BitReader, n int) uint64 {
	bs := r.NextBytes(n)
	var v uint64
	for i := len(bs) - 1; i >= 0; i-- {
		v = (v << 8) | uint64(bs[i])
	}
	return v
}

// readBits accumulates an n-bit (n: 1..64) big-endian value, reading whole
// bytes while more than 8 bits remain and finishing with a final sub-byte
// read.
func readBits(r *BitReader, n int) uint64 {
	var v uint64
	for n > 8 {
		v = (v << 8) | uint64(r.NextByte())
		n -= 8
	}
	return (v << uint(n)) | uint64(r.NextBits(uint(n)))
}

func readTerminated(r *BitReader, stop byte) []byte {
	var out []byte
	for {
		if r.AtEnd() {
			return out
		}
		b := r.NextByte()
		out = append(out, b)
		if b == stop {
			return out
		}
	}
}

func setInt(fv reflect.Value, raw uint64) {
	switch fv.Kind() {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		fv.SetUint(raw)
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		fv.SetInt(int64(raw))
	}
}
