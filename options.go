// SPDX-License-Identifier: Apache-2.0

package ddm

import "fmt"

// Position names the reorder directive vocabulary recognized by the
// reorder engine (spec §4.4). Values outside this set are tolerated and
// treated as [PositionEnd] (spec §6, "unknown values are tolerated").
type Position string

const (
	// PositionStart moves the subject to the front of the sequence.
	PositionStart Position = "start"
	// PositionEnd moves the subject to the back of the sequence.
	PositionEnd Position = "end"
	// PositionBefore moves the subject immediately before its anchor.
	PositionBefore Position = "before"
	// PositionAfter moves the subject immediately after its anchor.
	PositionAfter Position = "after"
)

// normalize returns p if it is one of the four recognized position
// values, else [PositionEnd].
func (p Position) normalize() Position {
	switch p {
	case PositionStart, PositionEnd, PositionBefore, PositionAfter:
		return p
	default:
		return PositionEnd
	}
}

// Options configures merge behavior: the five control-key names and the
// strict-anchor flag (spec §3, §6).
//
// The zero value is not directly usable — call [DefaultOptions] to obtain
// a validated Options with the spec's defaults ($id, $position, $anchor,
// $patch, $value, strict-anchor=true), or [NewOptions] to validate a
// custom one. NewOptions fills in blank control-key names only; it keeps
// StrictAnchor and MaxDepth as given, so a StrictAnchor left unset is false.
type Options struct {
	// IDKey identifies array items and drives prefix-escaping. Default "$id".
	IDKey string
	// PositionKey marks a reorder directive. Default "$position".
	PositionKey string
	// AnchorKey names the reorder reference. Default "$anchor".
	AnchorKey string
	// PatchKey marks a delete directive when its value is "delete". Default "$patch".
	PatchKey string
	// ValueKey marks a typed-value wrapper in an override. Default "$value".
	ValueKey string
	// StrictAnchor controls whether a missing reorder anchor is a fatal
	// [AnchorMissingError] (true) or silently degrades to append-to-end
	// (false). Default true.
	StrictAnchor bool
	// MaxDepth bounds recursion depth to foreclose pathological inputs
	// (spec §9). Zero means unbounded, matching the spec's "none
	// required" stance.
	MaxDepth int

	// prefix is the escape-prefix character derived once from IDKey at
	// validation time (spec §3 "Prefix character"); empty if IDKey's
	// first character is alphanumeric or IDKey is empty.
	prefix string
}

// DefaultOptions returns the spec's default Options: $id/$position/
// $anchor/$patch/$value, strict-anchor=true, unbounded depth.
func DefaultOptions() Options {
	opts, err := NewOptions(Options{
		IDKey:        "$id",
		PositionKey:  "$position",
		AnchorKey:    "$anchor",
		PatchKey:     "$patch",
		ValueKey:     "$value",
		StrictAnchor: true,
	})
	if err != nil {
		// Unreachable: the literal defaults above are always valid.
		panic(err)
	}
	return opts
}

// NewOptions validates opts, fills in any blank control-key fields with
// the spec's defaults, and derives the escape-prefix character. Returns
// [ErrInvalidOptions] if two control keys collide.
func NewOptions(opts Options) (Options, error) {
	if opts.IDKey == "" {
		opts.IDKey = "$id"
	}
	if opts.PositionKey == "" {
		opts.PositionKey = "$position"
	}
	if opts.AnchorKey == "" {
		opts.AnchorKey = "$anchor"
	}
	if opts.PatchKey == "" {
		opts.PatchKey = "$patch"
	}
	if opts.ValueKey == "" {
		opts.ValueKey = "$value"
	}

	keys := map[string]string{
		"id key":       opts.IDKey,
		"position key": opts.PositionKey,
		"anchor key":   opts.AnchorKey,
		"patch key":    opts.PatchKey,
		"value key":    opts.ValueKey,
	}
	seen := make(map[string]string, len(keys))
	for role, key := range keys {
		if other, dup := seen[key]; dup {
			return Options{}, fmt.Errorf("%w: %s and %s both use key %q", ErrInvalidOptions, other, role, key)
		}
		seen[key] = role
	}

	opts.prefix = derivePrefix(opts.IDKey)
	return opts, nil
}

// derivePrefix returns the leading character of idKey iff it is not
// alphanumeric, else "" (spec §3 "Prefix character").
func derivePrefix(idKey string) string {
	if idKey == "" {
		return ""
	}
	r := rune(idKey[0])
	if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
		return ""
	}
	return string(idKey[0])
}
