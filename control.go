// SPDX-License-Identifier: Apache-2.0

package ddm

// move is a recorded reorder request: subject, position, optional anchor
// (spec §4.4).
type move struct {
	subject   string
	position  Position
	anchor    string
	hasAnchor bool
}

// controlFields reports which control-key directives are present on an
// object override value v, and their values where applicable. Only
// meaningful when v.Kind() == KindObject; callers must check that first.
type controlFields struct {
	hasPosition bool
	position    Position
	hasAnchor   bool
	anchor      string
	hasValue    bool
	value       Value
	isDelete    bool
}

// extractControls reads the position/anchor/value/patch control keys off
// an object override value (spec §4.2 step 2, §4.1 step 2).
func extractControls(v Value, opts Options) controlFields {
	obj := v.Object()
	var cf controlFields

	if posVal, ok := obj.Get(opts.PositionKey); ok && posVal.Kind() == KindString {
		cf.hasPosition = true
		cf.position = Position(posVal.String()).normalize()
	}
	if anchorVal, ok := obj.Get(opts.AnchorKey); ok && anchorVal.Kind() == KindString {
		cf.hasAnchor = true
		cf.anchor = anchorVal.String()
	}
	if valVal, ok := obj.Get(opts.ValueKey); ok {
		cf.hasValue = true
		cf.value = valVal
	}
	cf.isDelete = isDeleteMarker(v, opts)

	return cf
}

// hasAnyPositioningDirective reports whether cf carries at least one of
// position/anchor/patch — the trigger condition for the object
// combinator's primitive-preservation rule (spec §4.2 phase 2, §9 open
// question 1, resolved conservatively in DESIGN.md).
func (cf controlFields) hasAnyPositioningDirective() bool {
	return cf.hasPosition || cf.hasAnchor || cf.isDelete
}

// stripControls returns a shallow copy of v with the position, anchor, and
// patch keys removed. Non-objects pass through unchanged. The value key is
// deliberately never stripped here (spec §4.5 strip-controls; its contents
// are unwrapped by the value combinator, not discarded as metadata).
func stripControls(v Value, opts Options) Value {
	if v.Kind() != KindObject {
		return v
	}
	src := v.Object()
	out := NewObjectWithCapacity(src.Len())
	src.Range(func(key string, val Value) bool {
		switch key {
		case opts.PositionKey, opts.AnchorKey, opts.PatchKey:
			return true
		}
		out.Set(key, val)
		return true
	})
	return ObjectValue(out)
}

// unescapeKey collapses a leading doubled prefix on an object key (spec
// §4.2 step 1, §4.5): if opts has a configured prefix character, kRaw has
// length >= 2, and its first two characters are both the prefix character,
// the first character is removed. Only one level of doubling is stripped
// per merge, so "$$$id" unescapes to "$$id".
func unescapeKey(kRaw string, opts Options) string {
	if opts.prefix == "" || len(kRaw) < 2 {
		return kRaw
	}
	if kRaw[0:1] == opts.prefix && kRaw[1:2] == opts.prefix {
		return kRaw[1:]
	}
	return kRaw
}
