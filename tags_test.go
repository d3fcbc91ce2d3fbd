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

func testTag(t *testing.T, s interface{}, i int, test func(tag fieldTag) bool) {
	val := reflect.ValueOf(s)
	typ := val.Type()
	tag, err := parseFieldTag(typ.Field(i))
	if err != nil {
		t.Errorf("Unexpected error parsing field %d %q: %v", i, typ.Field(i).Name, err)
		return
	}
	if !test(tag) {
		t.Errorf("Test on field %d %q failed: tag %+v", i, typ.Field(i).Name, tag)
	}
}

func TestFieldTags(t *testing.T) {
	s := struct {
		A uint32 `order:"0" big:""`
		B uint32 `order:"1" little:""`
		C uint8  `order:"2" bits:"3"`
		D string `order:"3" ascii:"" bytes:"4"`
		E []byte `order:"4" variable:"ELen"`
		F []byte `order:"5" terminator:"0x00"`
		G []byte `order:"6" remaining:""`
		H uint8  `order:"7" big:"" fixed:"0xFF"`
	}{}

	testTag(t, s, 0, func(tag fieldTag) bool { return tag.hasOrder && tag.order == 0 && tag.big })
	testTag(t, s, 1, func(tag fieldTag) bool { return tag.order == 1 && tag.little })
	testTag(t, s, 2, func(tag fieldTag) bool { return tag.hasBits && tag.bits == 3 })
	testTag(t, s, 3, func(tag fieldTag) bool { return tag.ascii && tag.hasBytes && tag.bytes == 4 })
	testTag(t, s, 4, func(tag fieldTag) bool { return tag.hasVariable && tag.variable == "ELen" })
	testTag(t, s, 5, func(tag fieldTag) bool { return tag.hasTerminator && tag.terminator == 0x00 })
	testTag(t, s, 6, func(tag fieldTag) bool { return tag.remaining })
	testTag(t, s, 7, func(tag fieldTag) bool { return tag.hasFixed && len(tag.fixed) == 1 && tag.fixed[0] == 0xFF })
}

func TestFieldTagRejectsBothEndianTags(t *testing.T) {
	s := struct {
		A uint32 `order:"0" big:"" little:""`
	}{}

	_, err := parseFieldTag(reflect.TypeOf(s).Field(0))
	if err == nil {
		t.Error("Expected an error tagging a field both big and little, got nil")
	}
}

func TestFieldTagRejectsNonIntegerOrder(t *testing.T) {
	s := struct {
		A uint32 `order:"not-a-number" big:""`
	}{}

	_, err := parseFieldTag(reflect.TypeOf(s).Field(0))
	if err == nil {
		t.Error("Expected an error parsing a non-integer order tag, got nil")
	}
}

func TestParseByteList(t *testing.T) {
	got, err := parseByteList("0x7F,0x80,10")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := []byte{0x7F, 0x80, 0x0A}
	if len(got) != len(want) {
		t.Fatalf("Length Incorrect: Expected: %d Actual: %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Byte %d Incorrect: Expected: %#02x Actual: %#02x", i, want[i], got[i])
		}
	}
}
