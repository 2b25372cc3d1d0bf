// SPDX-License-Identifier: Apache-2.0

package ddm

import "fmt"

// mergeArray is the array combinator (spec §4.3): it identity-aligns
// override items against base items, deep-merges matched pairs, appends
// unmatched items, applies deletions, and applies the reorder pass.
func mergeArray(s *mergeState, base, override []Value) (Value, error) {
	// Phase 1: index. W holds base items plus bookkeeping; wIDs[i] is the
	// identity of W[i] if it has one, else "". I maps identity to
	// position in W; duplicate base identities: first occurrence wins.
	w := make([]Value, len(base))
	fresh := make([]bool, len(base))
	deleted := make([]bool, len(base))
	wIDs := make([]string, len(base))
	identityIndex := make(map[string]int, len(base))
	for i, item := range base {
		w[i] = item
		if id, ok := identity(item, s.opts); ok {
			wIDs[i] = id
			if _, dup := identityIndex[id]; !dup {
				identityIndex[id] = i
			}
		}
	}

	// Phase 2: align override items against the index.
	var appended []Value
	for idx, o := range override {
		oid, hasID := identity(o, s.opts)
		i, matched := -1, false
		if hasID {
			i, matched = identityIndex[oid]
		}

		if matched {
			if isDeleteMarker(o, s.opts) {
				w[i] = Value{}
				deleted[i] = true
				continue
			}
			s.push(fmt.Sprintf("%d", i))
			merged, err := mergeValue(s, w[i], o)
			s.pop()
			if err != nil {
				return Value{}, err
			}
			w[i] = merged
			fresh[i] = true
			deleted[i] = false
			continue
		}

		// Unmatched: no identity, or identity not present in base.
		if isDeleteMarker(o, s.opts) {
			continue
		}
		s.push(fmt.Sprintf("%d", len(base)+idx))
		merged, err := mergeValue(s, Value{}, o)
		s.pop()
		if err != nil {
			return Value{}, err
		}
		appended = append(appended, merged)
	}

	// Phase 3: materialize, in W's original order, then append.
	result := make([]Value, 0, len(w)+len(appended))
	resultIDs := make([]string, 0, len(w)+len(appended))
	for i := range w {
		if deleted[i] {
			continue
		}
		item := w[i]
		if !fresh[i] {
			item = item.Clone()
		}
		result = append(result, item)
		resultIDs = append(resultIDs, wIDs[i])
	}
	for _, item := range appended {
		result = append(result, item)
		if id, ok := identity(item, s.opts); ok {
			resultIDs = append(resultIDs, id)
		} else {
			resultIDs = append(resultIDs, "")
		}
	}

	// Phase 4: reorder pass. Items without identity still supply a move
	// (keyed by a synthetic, unreferenceable subject) but can never be
	// an anchor target for another move.
	var moves []move
	for i, item := range result {
		if item.Kind() != KindObject {
			continue
		}
		cf := extractControls(item, s.opts)
		if !cf.hasPosition {
			continue
		}
		subject := resultIDs[i]
		if subject == "" {
			subject = anonymousSubject(i)
			resultIDs[i] = subject
		}
		moves = append(moves, move{subject: subject, position: cf.position, anchor: cf.anchor, hasAnchor: cf.hasAnchor})
	}
	if len(moves) > 0 {
		target := itemReorderTarget{items: &result, ids: &resultIDs}
		if err := applyReorder(target, moves, s.opts, append([]string(nil), s.path...)); err != nil {
			return Value{}, err
		}
	}

	// Phase 5: strip position/anchor/patch from object items. The value
	// key is left alone here; it is consumed by the value combinator
	// wherever an item actually passed through a merge.
	for i, item := range result {
		if item.Kind() == KindObject {
			result[i] = stripControls(item, s.opts)
		}
	}

	return Array(result...), nil
}

// anonymousSubject returns a synthetic identity for an array item with no
// well-formed $id, so it can still be the subject of its own reorder move
// without ever colliding with a real identity string another item could
// use as an anchor.
func anonymousSubject(index int) string {
	return fmt.Sprintf("\x00ddm-anon-%d", index)
}
