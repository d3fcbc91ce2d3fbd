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

// MaxVariableLength caps a single ByteArrayVariable field's declared length.
// A length method result outside 1..MaxVariableLength is treated the same
// as a non-positive result: the field decodes as an empty slice rather than
// attempting an oversized read.
const MaxVariableLength = 10240

// ToBytes encodes value, a struct or pointer to struct whose type has been
// annotated with order and directive tags, into its wire representation.
func ToBytes(value interface{}) ([]byte, error) {
	v := reflect.ValueOf(value)
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, &ConfigurationError{Reason: "ToBytes requires a struct or pointer to struct"}
	}

	w := NewBitWriter()
	if err := encodeInto(w, addressable(v)); err != nil {
		return nil, err
	}
	return w.Finish(), nil
}

// FromBytes decodes data into a new value of typ (a struct type, or a
// pointer to one). ok reports whether the full region was consumed without
// running past the end of data; a false ok does not itself make err
// non-nil, since an under-run is not treated as an error, only as a
// signal to the caller.
func FromBytes(typ reflect.Type, data []byte) (interface{}, bool, error) {
	return FromBytesRange(typ, data, 0, len(data))
}

// FromBytesRange decodes the region data[start : start+length) into a new
// value of typ.
func FromBytesRange(typ reflect.Type, data []byte, start, length int) (interface{}, bool, error) {
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	r := NewBitReader(data, start, length)
	v, err := decodeInto(r, typ, 0)
	if err != nil {
		return nil, false, err
	}
	return v.Interface(), !r.Overrun(), nil
}
