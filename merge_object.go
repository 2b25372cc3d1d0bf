// SPDX-License-Identifier: Apache-2.0

package ddm

// mergeObject is the object combinator (spec §4.2): it deep-merges base
// and override by key, preserving base's key order, then applies any
// reorder directives collected from override.
func mergeObject(s *mergeState, base, override *Object) (Value, error) {
	// Phase 1: R is a deep copy of B, preserving key order.
	result := base.Clone()
	if result == nil {
		result = NewObject()
	}
	var moves []move

	// Phase 2: per-key scan of O in insertion order.
	for _, kRaw := range override.Keys() {
		v, _ := override.Get(kRaw)
		k := unescapeKey(kRaw, s.opts)

		var cf controlFields
		if v.Kind() == KindObject {
			cf = extractControls(v, s.opts)
			if cf.hasPosition {
				moves = append(moves, move{subject: k, position: cf.position, anchor: cf.anchor, hasAnchor: cf.hasAnchor})
			}
			if cf.isDelete {
				result.Delete(k)
				continue
			}
		}

		bv, exists := result.Get(k)
		if exists {
			if bv.IsPrimitive() && v.Kind() == KindObject && !cf.hasValue && cf.hasAnyPositioningDirective() {
				// Primitive-preservation rule: base primitive survives;
				// the move, if any, was already recorded above.
				continue
			}
			vStripped := stripControls(v, s.opts)
			s.push(k)
			merged, err := mergeValue(s, bv, vStripped)
			s.pop()
			if err != nil {
				return Value{}, err
			}
			result.Set(k, merged)
			continue
		}

		if v.IsNull() {
			result.Set(k, Null())
			continue
		}
		vStripped := stripControls(v, s.opts)
		s.push(k)
		merged, err := mergeValue(s, Value{}, vStripped)
		s.pop()
		if err != nil {
			return Value{}, err
		}
		result.Set(k, merged)
	}

	// Phase 3: object reorder pass.
	if len(moves) > 0 {
		if err := applyReorder(keyReorderTarget{obj: result}, moves, s.opts, append([]string(nil), s.path...)); err != nil {
			return Value{}, err
		}
	}

	return ObjectValue(result), nil
}
