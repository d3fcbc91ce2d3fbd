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
	"sort"
	"sync"
)

type directiveKind int

const (
	kindBigEndianInt directiveKind = iota
	kindLittleEndianInt
	kindPartialBits
	kindByteArrayFixed
	kindAsciiStringFixed
	kindByteArrayVariable
	kindByteArrayTerminated
	kindRemainingBytes
	kindChild
	kindChildFixedRepeat
	kindChildVariableRepeat
)

// fieldSpec describes one field's wire encoding: its name, reflect path
// (index, supporting fields promoted from an embedded base type used for
// specialisation), directive, and optional fixed-value constraint.
type fieldSpec struct {
	name  string
	index []int
	order int
	kind  directiveKind

	byteWidth int // BigEndianInt / LittleEndianInt / ByteArrayFixed / AsciiStringFixed
	bits      int // PartialBigEndianBits
	stop      byte

	lengthMethod string // ByteArrayVariable
	countMethod  string // ChildVariableRepeat
	fixedCount   int    // ChildFixedRepeat

	childType reflect.Type

	hasFixed   bool
	fixedValue []byte
}

// wireByteWidth returns the byte width a FixedValue constraint must match
// for this field's directive, or 0 if the directive has none.
func (f *fieldSpec) wireByteWidth() int {
	switch f.kind {
	case kindBigEndianInt, kindLittleEndianInt, kindByteArrayFixed, kindAsciiStringFixed:
		return f.byteWidth
	default:
		return 0
	}
}

// structSpec is a type's ordered field list, plus whether the type opts
// into specialisation.
type structSpec struct {
	typ         reflect.Type
	fields      []fieldSpec
	specialiser bool
}

var specialiserType = reflect.TypeOf((*Specialiser)(nil)).Elem()

// Specialiser is implemented by a base structure that, after its own
// declared fields have been decoded, selects a target subtype to re-decode
// the bytes into. Specialise returns (nil, false) to keep the base type.
type Specialiser interface {
	Specialise() (reflect.Type, bool)
}

var (
	specMu    sync.RWMutex
	specCache = map[reflect.Type]*structSpec{}
)

// layoutOf returns the cached StructSpec for t, building and installing it
// on first use. The cache is process-wide and read-mostly: readers take the
// RLock to probe it, and only a cache miss takes the exclusive Lock to
// build and install a fresh, and thereafter immutable, *structSpec.
func layoutOf(t reflect.Type) (*structSpec, error) {
	specMu.RLock()
	s, ok := specCache[t]
	specMu.RUnlock()
	if ok {
		return s, nil
	}

	specMu.Lock()
	defer specMu.Unlock()
	if s, ok := specCache[t]; ok {
		return s, nil
	}

	s, err := buildStructSpec(t)
	if err != nil {
		return nil, err
	}
	specCache[t] = s

	return s, nil
}

func buildStructSpec(t reflect.Type) (*structSpec, error) {
	if t.Kind() != reflect.Struct {
		return nil, &ConfigurationError{Type: t.String(), Reason: "layout target must be a struct"}
	}

	fields, err := collectFields(t)
	if err != nil {
		return nil, err
	}

	sort.Slice(fields, func(i, j int) bool { return fields[i].order < fields[j].order })

	if err := validateOrder(t, fields); err != nil {
		return nil, err
	}
	if err := validatePartialBitRuns(t, fields); err != nil {
		return nil, err
	}
	if err := validateRemainingBytes(t, fields); err != nil {
		return nil, err
	}
	if err := validateMethods(t, fields); err != nil {
		return nil, err
	}

	return &structSpec{
		typ:         t,
		fields:      fields,
		specialiser: implementsSpecialiser(t),
	}, nil
}

// collectFields walks t's exported fields, flattening any anonymous embedded
// struct so a specialised subtype's StructSpec includes the base type's
// fields at the base's own order values, plus the subtype's own fields.
func collectFields(t reflect.Type) ([]fieldSpec, error) {
	var fields []fieldSpec

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)

		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			embedded, err := collectFields(sf.Type)
			if err != nil {
				return nil, err
			}
			for _, ef := range embedded {
				ef.index = append([]int{i}, ef.index...)
				fields = append(fields, ef)
			}
			continue
		}

		if sf.PkgPath != "" {
			continue // unexported field: invisible to the codec, like encoding/json
		}

		tag, err := parseFieldTag(sf)
		if err != nil {
			return nil, err
		}

		fs, err := buildFieldSpec(sf, tag)
		if err != nil {
			return nil, err
		}
		fs.index = []int{i}
		fields = append(fields, fs)
	}

	return fields, nil
}

func buildFieldSpec(sf reflect.StructField, tag fieldTag) (fieldSpec, error) {
	fs := fieldSpec{name: sf.Name}

	if !tag.hasOrder {
		return fs, &ConfigurationError{Field: sf.Name, Reason: "missing required order tag"}
	}
	fs.order = tag.order

	switch sf.Type.Kind() {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:

		width := int(sf.Type.Size())
		if tag.hasBytes {
			width = tag.bytes
		}

		if tag.hasBits {
			fs.kind = kindPartialBits
			fs.bits = tag.bits
		} else {
			if !tag.big && !tag.little {
				return fs, &ConfigurationError{Field: sf.Name, Reason: "integer field requires a big or little tag (or bits for a partial field)"}
			}
			if tag.big {
				fs.kind = kindBigEndianInt
			} else {
				fs.kind = kindLittleEndianInt
			}
			fs.byteWidth = width
		}

	case reflect.String:
		if !tag.ascii || !tag.hasBytes {
			return fs, &ConfigurationError{Field: sf.Name, Reason: "string field requires ascii and bytes tags"}
		}
		fs.kind = kindAsciiStringFixed
		fs.byteWidth = tag.bytes

	case reflect.Array:
		elem := sf.Type.Elem()
		switch {
		case elem.Kind() == reflect.Uint8:
			fs.kind = kindByteArrayFixed
			fs.byteWidth = sf.Type.Len()
		case elem.Kind() == reflect.Struct:
			fs.kind = kindChildFixedRepeat
			fs.childType = elem
			fs.fixedCount = sf.Type.Len()
		default:
			return fs, &ConfigurationError{Field: sf.Name, Reason: "unsupported array element type " + elem.Kind().String()}
		}

	case reflect.Slice:
		elem := sf.Type.Elem()
		switch {
		case elem.Kind() == reflect.Uint8:
			switch {
			case tag.remaining:
				fs.kind = kindRemainingBytes
			case tag.hasVariable:
				fs.kind = kindByteArrayVariable
				fs.lengthMethod = tag.variable
			case tag.hasTerminator:
				fs.kind = kindByteArrayTerminated
				fs.stop = tag.terminator
			default:
				return fs, &ConfigurationError{Field: sf.Name, Reason: "[]byte field requires a variable, terminator, or remaining tag"}
			}
		case elem.Kind() == reflect.Struct:
			if !tag.hasCount {
				return fs, &ConfigurationError{Field: sf.Name, Reason: "[]struct field requires a count tag"}
			}
			fs.kind = kindChildVariableRepeat
			fs.childType = elem
			fs.countMethod = tag.count
		default:
			return fs, &ConfigurationError{Field: sf.Name, Reason: "unsupported slice element type " + elem.Kind().String()}
		}

	case reflect.Struct:
		fs.kind = kindChild
		fs.childType = sf.Type

	default:
		return fs, &ConfigurationError{Field: sf.Name, Reason: "unsupported field type " + sf.Type.Kind().String()}
	}

	if tag.hasFixed {
		want := fs.wireByteWidth()
		if want == 0 || len(tag.fixed) != want {
			return fs, &ConfigurationError{Field: sf.Name, Reason: fmt.Sprintf("fixed value has %d bytes, directive declares %d", len(tag.fixed), want)}
		}
		fs.hasFixed = true
		fs.fixedValue = tag.fixed
	}

	return fs, nil
}

func validateOrder(t reflect.Type, fields []fieldSpec) error {
	seen := make(map[int]string, len(fields))
	for _, f := range fields {
		if prev, ok := seen[f.order]; ok {
			return &ConfigurationError{Type: t.String(), Reason: fmt.Sprintf("fields %s and %s share order %d", prev, f.name, f.order)}
		}
		seen[f.order] = f.name
	}
	return nil
}

// validatePartialBitRuns enforces invariant 3: partial-bits fields only
// appear in runs whose total bit count is a multiple of eight.
func validatePartialBitRuns(t reflect.Type, fields []fieldSpec) error {
	run := 0
	for _, f := range fields {
		if f.kind == kindPartialBits {
			run += f.bits
			continue
		}
		if run%8 != 0 {
			return &ConfigurationError{Type: t.String(), Reason: fmt.Sprintf("partial-bits run of %d bits before field %s is not byte-aligned", run, f.name)}
		}
		run = 0
	}
	if run%8 != 0 {
		return &ConfigurationError{Type: t.String(), Reason: fmt.Sprintf("trailing partial-bits run of %d bits is not byte-aligned", run)}
	}
	return nil
}

// validateRemainingBytes enforces invariant 4: RemainingBytes appears at
// most once, and only as the final field by order.
func validateRemainingBytes(t reflect.Type, fields []fieldSpec) error {
	for i, f := range fields {
		if f.kind != kindRemainingBytes {
			continue
		}
		if i != len(fields)-1 {
			return &ConfigurationError{Type: t.String(), Field: f.name, Reason: "remaining must be the highest-ordered field"}
		}
	}
	return nil
}

// validateMethods enforces invariant 5: a variable-length or variable-count
// directive's named method must exist, take no arguments, and return int.
func validateMethods(t reflect.Type, fields []fieldSpec) error {
	for _, f := range fields {
		switch f.kind {
		case kindByteArrayVariable:
			if !hasIntMethod(t, f.lengthMethod) {
				return &ConfigurationError{Type: t.String(), Field: f.name, Reason: fmt.Sprintf("length method %q not found or does not return int", f.lengthMethod)}
			}
		case kindChildVariableRepeat:
			if !hasIntMethod(t, f.countMethod) {
				return &ConfigurationError{Type: t.String(), Field: f.name, Reason: fmt.Sprintf("count method %q not found or does not return int", f.countMethod)}
			}
		}
	}
	return nil
}

func hasIntMethod(t reflect.Type, name string) bool {
	if m, ok := t.MethodByName(name); ok {
		return validIntMethodSignature(m.Type)
	}
	if m, ok := reflect.PointerTo(t).MethodByName(name); ok {
		return validIntMethodSignature(m.Type)
	}
	return false
}

// validIntMethodSignature checks a method.Type obtained via
// Type.MethodByName, whose first argument is always the receiver.
func validIntMethodSignature(mt reflect.Type) bool {
	return mt.NumIn() == 1 && mt.NumOut() == 1 && mt.Out(0).Kind() == reflect.Int
}

func implementsSpecialiser(t reflect.Type) bool {
	if t.Implements(specialiserType) {
		return true
	}
	return reflect.PointerTo(t).Implements(specialiserType)
}

// callIntMethod invokes a zero-argument, int-returning method by name on v,
// trying v itself and then v.Addr() for a pointer-receiver method.
func callIntMethod(v reflect.Value, name string) (int, error) {
	m := v.MethodByName(name)
	if !m.IsValid() && v.CanAddr() {
		m = v.Addr().MethodByName(name)
	}
	if !m.IsValid() {
		return 0, fmt.Errorf("method %q not found on %s", name, v.Type())
	}
	out := m.Call(nil)
	return int(out[0].Int()), nil
}

// callSpecialise invokes Specialise on v (or its address), returning ok=false
// if v's type does not implement Specialiser.
func callSpecialise(v reflect.Value) (reflect.Type, bool) {
	s, ok := v.Interface().(Specialiser)
	if !ok {
		if v.CanAddr() {
			s, ok = v.Addr().Interface().(Specialiser)
		}
		if !ok {
			return nil, false
		}
	}
	return s.Specialise()
}

// isEmbeddingCompatible reports whether a specialised subtype embeds the
// base type as its first field.
func isEmbeddingCompatible(base, target reflect.Type) bool {
	if target.Kind() != reflect.Struct || target.NumField() == 0 {
		return false
	}
	first := target.Field(0)
	return first.Anonymous && first.Type == base
}
