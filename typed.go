// SPDX-License-Identifier: Apache-2.0

package ddm

import "encoding/json"

// Encode converts a Go value into a [Value] by round-tripping it through
// encoding/json. It is the typed counterpart to [Merge]'s untyped Value
// API, adapted from the teacher's struct-tag-driven typed Merger: once
// merging operates on an ordered Value tree rather than map[string]any,
// per-field primary-key struct tags have no role left to play, but
// "build/consume Values from ordinary Go types" still does.
func Encode(v any) (Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Value{}, &MarshalError{Err: err}
	}
	return ParseJSONBytes(data)
}

// Decode converts a [Value] into a Go value of type T by round-tripping
// it through encoding/json.
func Decode[T any](v Value) (T, error) {
	var out T
	data, err := v.MarshalJSON()
	if err != nil {
		return out, &MarshalError{Err: err}
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, &MarshalError{Err: err}
	}
	return out, nil
}

// MergeTyped merges a sequence of typed layers by encoding each to a
// [Value], merging with [MergeAll], and decoding the result back to T.
func MergeTyped[T any](opts Options, layers ...T) (T, error) {
	var zero T
	values := make([]Value, len(layers))
	for i, layer := range layers {
		v, err := Encode(layer)
		if err != nil {
			return zero, err
		}
		values[i] = v
	}
	merged, err := MergeAll(opts, values...)
	if err != nil {
		return zero, err
	}
	return Decode[T](merged)
}
