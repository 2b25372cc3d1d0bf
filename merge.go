// SPDX-License-Identifier: Apache-2.0

package ddm

// Merge merges override onto base using opts, per spec §4.1-§4.4.
//
// base may be the zero [Value] (absent) or an explicit [Null]; likewise
// override. If override is absent, Merge returns the zero Value (absent)
// and a nil error, per spec §6 ("The result may be absent (iff override
// was absent)").
//
// Merge never mutates base or override; the returned Value is always
// freshly owned by the caller.
func Merge(base, override Value, opts Options) (Value, error) {
	s := &mergeState{opts: opts}
	return mergeValue(s, base, override)
}

// MergeAll merges a sequence of layers left-to-right: layers[0] is the
// base, and each subsequent layer overrides the merge of all layers before
// it (spec §1, §5 "later merges override earlier ones deterministically").
//
// Returns the zero Value (absent) if layers is empty.
func MergeAll(opts Options, layers ...Value) (Value, error) {
	var result Value
	for _, layer := range layers {
		merged, err := Merge(result, layer, opts)
		if err != nil {
			return Value{}, err
		}
		result = merged
	}
	return result, nil
}

// MergeJSON parses each of docs as JSON and merges them left-to-right with
// [MergeAll], returning the merged JSON text. A nil or empty-bytes entry in
// docs is treated as an absent layer, not a parse error.
func MergeJSON(opts Options, docs ...[]byte) ([]byte, error) {
	layers := make([]Value, len(docs))
	for i, doc := range docs {
		if len(doc) == 0 {
			continue
		}
		v, err := ParseJSONBytes(doc)
		if err != nil {
			return nil, &MarshalError{Err: err, DocIndex: i}
		}
		layers[i] = v
	}

	merged, err := MergeAll(opts, layers...)
	if err != nil {
		return nil, err
	}
	if merged.IsAbsent() {
		return []byte("null"), nil
	}
	return merged.MarshalJSON()
}
