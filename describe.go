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
	"strings"
)

// maxDescribeDepth bounds recursion into nested structures, matching
// maxSpecialiseDepth's role on the decode side.
const maxDescribeDepth = 10

// Describe renders value as a human-readable, indented field listing
// following its layout: integers as hex and decimal, byte arrays as a hex
// blob, strings quoted, nested structures recursed with two-space
// indentation per level. A nil byte or child slice is omitted entirely
// rather than printed as empty.
func Describe(value interface{}) string {
	v := reflect.ValueOf(value)
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	var b strings.Builder
	describeStruct(&b, v, 0)
	return strings.TrimRight(b.String(), "\n")
}

func describeStruct(b *strings.Builder, v reflect.Value, depth int) {
	if depth > maxDescribeDepth {
		fmt.Fprintf(b, "%s...\n", indent(depth))
		return
	}

	spec, err := layoutOf(v.Type())
	if err != nil {
		fmt.Fprintf(b, "%s<error: %s>\n", indent(depth), err)
		return
	}

	for i := range spec.fields {
		describeField(b, &spec.fields[i], v.FieldByIndex(spec.fields[i].index), depth)
	}
}

func describeField(b *strings.Builder, f *fieldSpec, fv reflect.Value, depth int) {
	pad := indent(depth)

	switch f.kind {
	case kindBigEndianInt, kindLittleEndianInt, kindPartialBits:
		digits := hexDigitsFor(fv)
		raw := fieldUint(fv)
		fmt.Fprintf(b, "%s%s: 0x%0*X (%d)\n", pad, f.name, digits, raw, raw)

	case kindByteArrayFixed:
		raw := make([]byte, fv.Len())
		reflect.Copy(reflect.ValueOf(raw), fv)
		fmt.Fprintf(b, "%s%s: 0x[%X]\n", pad, f.name, raw)

	case kindAsciiStringFixed:
		fmt.Fprintf(b, "%s%s: %q\n", pad, f.name, fv.String())

	case kindByteArrayVariable, kindByteArrayTerminated, kindRemainingBytes:
		if fv.IsNil() {
			return
		}
		fmt.Fprintf(b, "%s%s: 0x[%X]\n", pad, f.name, fv.Bytes())

	case kindChild:
		fmt.Fprintf(b, "%s%s:\n", pad, f.name)
		describeStruct(b, fv, depth+1)

	case kindChildFixedRepeat:
		fmt.Fprintf(b, "%s%s:\n", pad, f.name)
		for i := 0; i < fv.Len(); i++ {
			fmt.Fprintf(b, "%s  [%d]:\n", pad, i)
			describeStruct(b, fv.Index(i), depth+2)
		}

	case kindChildVariableRepeat:
		if fv.IsNil() {
			return
		}
		fmt.Fprintf(b, "%s%s:\n", pad, f.name)
		for i := 0; i < fv.Len(); i++ {
			fmt.Fprintf(b, "%s  [%d]:\n", pad, i)
			describeStruct(b, fv.Index(i), depth+2)
		}
	}
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}
