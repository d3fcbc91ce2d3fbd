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

// A ConfigurationError occurs when a structure's layout annotations are
// malformed: an unrecognised directive, a duplicate or missing field order,
// a fixed-value whose length disagrees with its directive, a repeater with
// no count source, a partial-bits run that doesn't sum to a whole number of
// bytes, or a named method that doesn't exist or has the wrong signature.
// It is reported by the call that builds the type's layout; a layout that
// fails to build is not cached, so every later call on that type reports it
// again.
type ConfigurationError struct {
	Type   string
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("bitlayout: invalid layout for %s field %s: %s", e.Type, e.Field, e.Reason)
	}
	return fmt.Sprintf("bitlayout: invalid layout for field %s: %s", e.Field, e.Reason)
}

// An EncodeError occurs when a value being encoded disagrees with its own
// layout: a variable-length field whose declared length method disagrees
// with the supplied slice length, or a variable-count repeater whose slice
// length disagrees with its declared count method.
type EncodeError struct {
	Field  string
	Reason string
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("bitlayout: cannot encode field %s: %s", e.Field, e.Reason)
}
