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
	"reflect"
	"testing"
)

type endianFixture struct {
	Big16    uint16 `order:"0" big:""`
	Little16 uint16 `order:"1" little:""`
}

func TestDecodeEndian(t *testing.T) {
	data := []byte{0x01, 0x23, 0x01, 0x23}

	out, ok, err := FromBytes(reflect.TypeOf(endianFixture{}), data)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !ok {
		t.Error("Expected ok=true, got false")
	}

	v := out.(endianFixture)
	if v.Big16 != 0x0123 {
		t.Errorf("Big16 Incorrect: Expected: %#04x Actual: %#04x", 0x0123, v.Big16)
	}
	if v.Little16 != 0x2301 {
		t.Errorf("Little16 Incorrect: Expected: %#04x Actual: %#04x", 0x2301, v.Little16)
	}
}

type bitfieldFixture struct {
	A uint8 `order:"0" bits:"3"`
	B uint8 `order:"1" bits:"2"`
	C uint8 `order:"2" bits:"3"`
}

func TestDecodeBitfields(t *testing.T) {
	out, _, err := FromBytes(reflect.TypeOf(bitfieldFixture{}), []byte{0x49})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	v := out.(bitfieldFixture)
	if v.A != 2 || v.B != 1 || v.C != 1 {
		t.Errorf("Bitfields Incorrect: Expected: (2,1,1) Actual: (%d,%d,%d)", v.A, v.B, v.C)
	}
}

type variableFixture struct {
	N uint8  `order:"0" big:""`
	A []byte `order:"1" variable:"ALen"`
}

func (f variableFixture) ALen() int { return int(f.N) }

func TestDecodeVariableLength(t *testing.T) {
	out, _, err := FromBytes(reflect.TypeOf(variableFixture{}), []byte{3, 0xAA, 0xBB, 0xCC})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	v := out.(variableFixture)
	if len(v.A) != 3 || v.A[0] != 0xAA || v.A[1] != 0xBB || v.A[2] != 0xCC {
		t.Errorf("Variable Array Incorrect: Expected: [AA BB CC] Actual: %#v", v.A)
	}
}

type zeroVariableFixture struct {
	N uint8  `order:"0" big:""`
	A []byte `order:"1" variable:"ALen"`
}

func (f zeroVariableFixture) ALen() int { return int(f.N) - 1 }

func TestDecodeVariableLengthNonPositiveIsEmpty(t *testing.T) {
	out, _, err := FromBytes(reflect.TypeOf(zeroVariableFixture{}), []byte{0, 0xAA, 0xBB})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	v := out.(zeroVariableFixture)
	if len(v.A) != 0 {
		t.Errorf("Expected an empty array for a non-positive length, got %#v", v.A)
	}
}

type terminatedFixture struct {
	A []byte `order:"0" terminator:"0x00"`
}

func TestDecodeTerminated(t *testing.T) {
	out, ok, err := FromBytes(reflect.TypeOf(terminatedFixture{}), []byte{'h', 'i', 0x00, 'x'})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !ok {
		t.Error("Expected ok=true reading a fully-terminated string from a longer buffer")
	}

	v := out.(terminatedFixture)
	want := []byte{'h', 'i', 0x00}
	if !reflect.DeepEqual(v.A, want) {
		t.Errorf("Terminated Array Incorrect: Expected: %#v Actual: %#v", want, v.A)
	}
}

func TestDecodeTerminatedWithoutTerminatorHitsEnd(t *testing.T) {
	out, ok, err := FromBytes(reflect.TypeOf(terminatedFixture{}), []byte{'h', 'i'})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !ok {
		t.Error("Expected ok=true: the region was fully consumed, no source byte was ever over-read")
	}

	v := out.(terminatedFixture)
	want := []byte{'h', 'i'}
	if !reflect.DeepEqual(v.A, want) {
		t.Errorf("Terminated Array Incorrect: Expected: %#v Actual: %#v", want, v.A)
	}
}

type remainingFixture struct {
	A uint8  `order:"0" big:""`
	B []byte `order:"1" remaining:""`
}

func TestDecodeRemaining(t *testing.T) {
	out, _, err := FromBytes(reflect.TypeOf(remainingFixture{}), []byte{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	v := out.(remainingFixture)
	want := []byte{2, 3, 4}
	if !reflect.DeepEqual(v.B, want) {
		t.Errorf("Remaining Incorrect: Expected: %#v Actual: %#v", want, v.B)
	}
}

func TestDecodeOverrunReportsNotOk(t *testing.T) {
	out, ok, err := FromBytes(reflect.TypeOf(endianFixture{}), []byte{0x01})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if ok {
		t.Error("Expected ok=false for a buffer shorter than the declared layout")
	}
	_ = out
}

type nestedChild struct {
	X uint8 `order:"0" big:""`
}

type nestedFixture struct {
	A uint8       `order:"0" big:""`
	C nestedChild `order:"1"`
}

func TestDecodeChild(t *testing.T) {
	out, _, err := FromBytes(reflect.TypeOf(nestedFixture{}), []byte{1, 2})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	v := out.(nestedFixture)
	if v.A != 1 || v.C.X != 2 {
		t.Errorf("Nested Incorrect: Expected: A=1 C.X=2 Actual: A=%d C.X=%d", v.A, v.C.X)
	}
}

type repeatElement struct {
	V uint8 `order:"0" big:""`
}

type fixedRepeatFixture struct {
	Elems [3]repeatElement `order:"0"`
}

func TestDecodeChildFixedRepeat(t *testing.T) {
	out, _, err := FromBytes(reflect.TypeOf(fixedRepeatFixture{}), []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	v := out.(fixedRepeatFixture)
	for i, want := range []uint8{1, 2, 3} {
		if v.Elems[i].V != want {
			t.Errorf("Element %d Incorrect: Expected: %d Actual: %d", i, want, v.Elems[i].V)
		}
	}
}

type variableRepeatFixture struct {
	N     uint8           `order:"0" big:""`
	Elems []repeatElement `order:"1" count:"Count"`
}

func (f variableRepeatFixture) Count() int { return int(f.N) }

func TestDecodeChildVariableRepeat(t *testing.T) {
	out, _, err := FromBytes(reflect.TypeOf(variableRepeatFixture{}), []byte{2, 9, 8})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	v := out.(variableRepeatFixture)
	if len(v.Elems) != 2 || v.Elems[0].V != 9 || v.Elems[1].V != 8 {
		t.Errorf("Variable Repeat Incorrect: Expected: [9 8] Actual: %#v", v.Elems)
	}
}

type specBase struct {
	Kind uint8 `order:"0" big:""`
}

func (b specBase) Specialise() (reflect.Type, bool) {
	if b.Kind == 0xFF {
		return reflect.TypeOf(specTarget{}), true
	}
	return nil, false
}

type specTarget struct {
	specBase
	Extra uint8 `order:"1" big:""`
}

func TestDecodeSpecialisation(t *testing.T) {
	out, _, err := FromBytes(reflect.TypeOf(specBase{}), []byte{0xFF, 0x42})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	v, ok := out.(specTarget)
	if !ok {
		t.Fatalf("Expected decode to produce a specTarget, got %T", out)
	}
	if v.Kind != 0xFF || v.Extra != 0x42 {
		t.Errorf("Specialised Value Incorrect: Expected: Kind=0xFF Extra=0x42 Actual: Kind=%#x Extra=%#x", v.Kind, v.Extra)
	}
}

func TestDecodeSpecialisationNotTriggered(t *testing.T) {
	out, _, err := FromBytes(reflect.TypeOf(specBase{}), []byte{0x01})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, ok := out.(specBase); !ok {
		t.Fatalf("Expected decode to remain a specBase, got %T", out)
	}
}
