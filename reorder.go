// SPDX-License-Identifier: Apache-2.0

package ddm

// reorderTarget is the minimal surface the reorder engine needs from a
// sequence it rearranges in place: find a subject/anchor's current
// position, and move an element from one position to another. [Object]
// (keyed by key name) and an array's working-slice wrapper both implement
// it, so the object and array combinators share one reorder
// implementation (spec §4.4).
type reorderTarget interface {
	// indexOf returns the position of subject in the sequence, or -1.
	indexOf(subject string) int
	// length returns the number of elements in the sequence.
	length() int
	// moveTo relocates the element currently at index from to index to,
	// shifting intervening elements to close the gap / make room. to is
	// expressed as a target index computed after from has notionally been
	// removed, matching the reorder engine's own bookkeeping.
	moveTo(from, to int)
}

// applyReorder applies moves to target in order, per spec §4.4. path is
// used only to annotate an [AnchorMissingError] if strict-anchor mode is
// on and an anchor can't be found.
func applyReorder(target reorderTarget, moves []move, opts Options, path []string) error {
	for _, mv := range moves {
		from := target.indexOf(mv.subject)
		if from < 0 {
			// Subject not found in the merged collection: skip (spec §4.4
			// "If not found, skip the move.").
			continue
		}

		remaining := target.length() - 1
		var to int
		switch mv.position {
		case PositionStart:
			to = 0
		case PositionBefore, PositionAfter:
			if !mv.hasAnchor {
				to = remaining
				break
			}
			anchorIdx := target.indexOf(mv.anchor)
			if anchorIdx < 0 {
				if opts.StrictAnchor {
					return &AnchorMissingError{Anchor: mv.anchor, Subject: mv.subject, Path: path}
				}
				to = remaining
				break
			}
			// anchorIdx is computed against the sequence that still
			// contains the subject; account for the subject's removal
			// shifting later indices down by one.
			if anchorIdx > from {
				anchorIdx--
			}
			if mv.position == PositionBefore {
				to = anchorIdx
			} else {
				to = anchorIdx + 1
			}
		default: // PositionEnd, and anything normalize() didn't recognize
			to = remaining
		}

		target.moveTo(from, to)
	}
	return nil
}

// keyReorderTarget adapts an [Object] to [reorderTarget] for the object
// combinator's reorder pass, where moves are keyed by object key name.
type keyReorderTarget struct {
	obj *Object
}

func (t keyReorderTarget) indexOf(subject string) int { return t.obj.indexOf(subject) }
func (t keyReorderTarget) length() int                { return t.obj.Len() }
func (t keyReorderTarget) moveTo(from, to int)        { t.obj.reorderAt(from, to) }

// itemReorderTarget adapts a slice of [Value] to [reorderTarget] for the
// array combinator's reorder pass, where moves are keyed by item identity
// (or, for anonymous items, a synthetic identity that never matches an
// anchor lookup but still lets the item participate by position).
type itemReorderTarget struct {
	items *[]Value
	ids   *[]string
}

func (t itemReorderTarget) indexOf(subject string) int {
	for i, id := range *t.ids {
		if id == subject {
			return i
		}
	}
	return -1
}

func (t itemReorderTarget) length() int { return len(*t.ids) }

func (t itemReorderTarget) moveTo(from, to int) {
	items := *t.items
	ids := *t.ids
	item := items[from]
	id := ids[from]

	items = append(items[:from:from], items[from+1:]...)
	ids = append(ids[:from:from], ids[from+1:]...)

	if to > len(items) {
		to = len(items)
	}
	items = append(items[:to:to], append([]Value{item}, items[to:]...)...)
	ids = append(ids[:to:to], append([]string{id}, ids[to:]...)...)

	*t.items = items
	*t.ids = ids
}
