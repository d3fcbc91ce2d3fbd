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
	"strconv"
	"strings"
)

// fieldTag holds the raw, field-level directive annotations read off a
// reflect.StructField. Go struct tags are already `key:"value"` pairs, so
// parsing is just reflect.StructTag.Lookup per recognised key.
type fieldTag struct {
	hasOrder bool
	order    int

	big    bool
	little bool

	hasBits bool
	bits    int

	hasBytes bool
	bytes    int

	ascii bool

	hasFixed bool
	fixed    []byte

	hasVariable bool
	variable    string

	hasTerminator bool
	terminator    byte

	hasCount bool
	count    string

	remaining bool
}

func parseFieldTag(sf reflect.StructField) (fieldTag, error) {
	var t fieldTag
	tag := sf.Tag

	if v, ok := tag.Lookup("order"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return t, &ConfigurationError{Field: sf.Name, Reason: "order must be an integer: " + err.Error()}
		}
		t.hasOrder = true
		t.order = n
	}

	if _, ok := tag.Lookup("big"); ok {
		t.big = true
	}
	if _, ok := tag.Lookup("little"); ok {
		t.little = true
	}
	if t.big && t.little {
		return t, &ConfigurationError{Field: sf.Name, Reason: "field tagged both big and little"}
	}

	if v, ok := tag.Lookup("bits"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 1 || n > 64 {
			return t, &ConfigurationError{Field: sf.Name, Reason: "bits must be an integer in 1..64"}
		}
		t.hasBits = true
		t.bits = n
	}

	if v, ok := tag.Lookup("bytes"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 1 || n > 8 {
			return t, &ConfigurationError{Field: sf.Name, Reason: "bytes must be an integer in 1..8"}
		}
		t.hasBytes = true
		t.bytes = n
	}

	if _, ok := tag.Lookup("ascii"); ok {
		t.ascii = true
	}

	if v, ok := tag.Lookup("fixed"); ok {
		b, err := parseByteList(v)
		if err != nil {
			return t, &ConfigurationError{Field: sf.Name, Reason: "fixed: " + err.Error()}
		}
		t.hasFixed = true
		t.fixed = b
	}

	if v, ok := tag.Lookup("variable"); ok {
		t.hasVariable = true
		t.variable = strings.TrimSpace(v)
	}

	if v, ok := tag.Lookup("terminator"); ok {
		b, err := strconv.ParseUint(strings.TrimSpace(v), 0, 8)
		if err != nil {
			return t, &ConfigurationError{Field: sf.Name, Reason: "terminator must be a single byte: " + err.Error()}
		}
		t.hasTerminator = true
		t.terminator = byte(b)
	}

	if v, ok := tag.Lookup("count"); ok {
		t.hasCount = true
		t.count = strings.TrimSpace(v)
	}

	if _, ok := tag.Lookup("remaining"); ok {
		t.remaining = true
	}

	return t, nil
}

// parseByteList parses a comma-separated list of byte literals such as
// "0x7F,0x80" or "85,170" into a []byte.
func parseByteList(s string) ([]byte, error) {
	parts := strings.Split(s, ",")
	out := make([]byte, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseUint(p, 0, 8)
		if err != nil {
			return nil, err
		}
		out = append(out, byte(v))
	}
	return out, nil
}
