// SPDX-License-Identifier: Apache-2.0

// Package ddm implements a Deterministic Deep Merge (DDM) engine over JSON
// documents: it deep-merges objects by key, matches array items by a
// declared identity property instead of positional index, supports
// declarative reordering of object keys and array items relative to named
// anchors, supports explicit deletion of keys and items, and permits
// overriding a primitive with a typed object while retaining primitive
// semantics.
package ddm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// Kind identifies which variant of the JSON value sum type a [Value] holds.
type Kind int

const (
	// KindNull is the JSON null literal.
	KindNull Kind = iota
	// KindBool is a JSON boolean.
	KindBool
	// KindNumber is a JSON number, kept as the raw decimal text it was
	// parsed from so re-emission never perturbs precision or formatting.
	KindNumber
	// KindString is a JSON string.
	KindString
	// KindArray is an ordered sequence of Values.
	KindArray
	// KindObject is an insertion-ordered mapping from string key to Value.
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a JSON value: a tagged sum of null, bool, number, string, array
// and object. The zero Value is absent (see [Value.IsAbsent]), which is
// distinct from the explicit JSON null returned by [Null].
//
// Values are treated as immutable by every exported function in this
// package: [Merge] never mutates its base or override arguments, and the
// merged result it returns is always a value the caller fully owns.
type Value struct {
	kind    Kind
	wasNull bool
	b       bool
	num     string
	str     string
	arr     []Value
	obj     *Object
}

// Null returns the explicit JSON null Value (distinct from the zero Value,
// which represents an absent value; see [Value.IsAbsent]).
func Null() Value { return Value{kind: KindNull, wasNull: true} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// String returns a string Value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a numeric Value from a float64. Prefer [NumberFromString]
// when re-emitting a number read from JSON text, to avoid float
// round-tripping artifacts.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: strconv.FormatFloat(f, 'g', -1, 64)}
}

// NumberFromString returns a numeric Value whose literal text is exactly s.
// s is not validated; callers that already have JSON number text (e.g. from
// a decoder) should use this to preserve the original formatting.
func NumberFromString(s string) Value { return Value{kind: KindNumber, num: s} }

// Array returns an array Value wrapping items. items is copied by
// reference into the Value; callers should not mutate the slice
// afterwards. Use [Value.Clone] to obtain an independently owned copy.
func Array(items ...Value) Value { return Value{kind: KindArray, arr: items} }

// ObjectValue returns an object Value wrapping obj. obj must not be
// mutated by the caller afterwards.
func ObjectValue(obj *Object) Value {
	if obj == nil {
		obj = NewObject()
	}
	return Value{kind: KindObject, obj: obj}
}

// IsAbsent reports whether v is the zero Value used to represent "no value
// supplied". The combinator handles an absent override and an explicit JSON
// null override in the same first step (spec §4.1 step 1), but an absent
// override yields an absent result while a null override yields null;
// IsAbsent lets callers distinguish "nothing was passed" from "null was
// passed" where that distinction matters (e.g. [Merge]'s return value).
func (v Value) IsAbsent() bool { return v.kind == KindNull && v.num == "" && !v.wasNull }

// Kind returns the variant tag of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the JSON null literal. It is false for the
// absent zero Value.
func (v Value) IsNull() bool { return v.kind == KindNull && v.wasNull }

// IsPrimitive reports whether v is null, bool, number, or string — i.e.
// neither array nor object, per spec §4.1 step 3.
func (v Value) IsPrimitive() bool {
	return v.kind == KindNull || v.kind == KindBool || v.kind == KindNumber || v.kind == KindString
}

// Bool returns v's boolean payload. Panics if v.Kind() != KindBool.
func (v Value) Bool() bool {
	if v.kind != KindBool {
		panic(fmt.Sprintf("ddm: Value.Bool on %s value", v.kind))
	}
	return v.b
}

// NumberString returns v's number payload as the literal text it was built
// or parsed from. Panics if v.Kind() != KindNumber.
func (v Value) NumberString() string {
	if v.kind != KindNumber {
		panic(fmt.Sprintf("ddm: Value.NumberString on %s value", v.kind))
	}
	return v.num
}

// Float64 parses v's number payload as a float64. Panics if v.Kind() !=
// KindNumber.
func (v Value) Float64() float64 {
	f, err := strconv.ParseFloat(v.NumberString(), 64)
	if err != nil {
		panic(fmt.Sprintf("ddm: Value.Float64: %v", err))
	}
	return f
}

// String returns v's string payload. Panics if v.Kind() != KindString.
func (v Value) String() string {
	if v.kind != KindString {
		panic(fmt.Sprintf("ddm: Value.String on %s value", v.kind))
	}
	return v.str
}

// Array returns v's array payload. Panics if v.Kind() != KindArray. The
// returned slice aliases v's internal storage and must not be mutated.
func (v Value) Array() []Value {
	if v.kind != KindArray {
		panic(fmt.Sprintf("ddm: Value.Array on %s value", v.kind))
	}
	return v.arr
}

// Object returns v's object payload. Panics if v.Kind() != KindObject. The
// returned *Object aliases v's internal storage and must not be mutated.
func (v Value) Object() *Object {
	if v.kind != KindObject {
		panic(fmt.Sprintf("ddm: Value.Object on %s value", v.kind))
	}
	return v.obj
}

// Clone returns a deep, independently owned copy of v.
func (v Value) Clone() Value {
	switch v.kind {
	case KindArray:
		out := make([]Value, len(v.arr))
		for i, item := range v.arr {
			out[i] = item.Clone()
		}
		return Value{kind: KindArray, arr: out}
	case KindObject:
		return Value{kind: KindObject, obj: v.obj.Clone()}
	default:
		return v
	}
}

// Equal reports whether v and other are deeply equal: same kind, same
// scalar payload (numbers compared by parsed value, not literal text), same
// array elements in the same order, or same object keys (in the same
// order) mapped to equal values.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindNumber:
		return v.Float64() == other.Float64()
	case KindString:
		return v.str == other.str
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		return v.obj.Equal(other.obj)
	default:
		return false
	}
}

// MarshalJSON implements [json.Marshaler], emitting object keys in
// insertion order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
		return nil
	case KindBool:
		if v.b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case KindNumber:
		buf.WriteString(v.num)
		return nil
	case KindString:
		encoded, err := json.Marshal(v.str)
		if err != nil {
			return err
		}
		buf.Write(encoded)
		return nil
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case KindObject:
		buf.WriteByte('{')
		for i, key := range v.obj.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			encodedKey, err := json.Marshal(key)
			if err != nil {
				return err
			}
			buf.Write(encodedKey)
			buf.WriteByte(':')
			child, _ := v.obj.Get(key)
			if err := child.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	default:
		return fmt.Errorf("ddm: unknown value kind %d", v.kind)
	}
}

// UnmarshalJSON implements [json.Unmarshaler] using a token-level decoder so
// that object key order survives, which decoding into map[string]any
// cannot guarantee.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	parsed, err := decodeValue(dec)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseJSON parses a single JSON value from r, preserving object key order.
func ParseJSON(r io.Reader) (Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return decodeValue(dec)
}

// ParseJSONBytes parses a single JSON value from data, preserving object
// key order.
func ParseJSONBytes(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(bytes.TrimSpace(data)))
	dec.UseNumber()
	return decodeValue(dec)
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Value{kind: KindNull, wasNull: true}, nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return NumberFromString(t.String()), nil
	case string:
		return String(t), nil
	case json.Delim:
		switch t {
		case '[':
			var items []Value
			for dec.More() {
				itemTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				item, err := decodeToken(dec, itemTok)
				if err != nil {
					return Value{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return Value{}, err
			}
			return Array(items...), nil
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("ddm: object key is not a string: %v", keyTok)
				}
				valTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				val, err := decodeToken(dec, valTok)
				if err != nil {
					return Value{}, err
				}
				obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return Value{}, err
			}
			return ObjectValue(obj), nil
		}
	}
	return Value{}, fmt.Errorf("ddm: unexpected JSON token %v", tok)
}
