// SPDX-License-Identifier: Apache-2.0

package ddm

// identity returns the string at v[opts.IDKey] and true iff v is an object
// whose id-key entry is a string. Objects without a well-formed identity
// are "anonymous" and never match (spec §3, §4.5).
func identity(v Value, opts Options) (string, bool) {
	if v.Kind() != KindObject {
		return "", false
	}
	idVal, ok := v.Object().Get(opts.IDKey)
	if !ok || idVal.Kind() != KindString {
		return "", false
	}
	return idVal.String(), true
}

// isDeleteMarker reports whether v is an object whose patch-key entry is
// the literal string "delete" (spec §3, §4.5).
func isDeleteMarker(v Value, opts Options) bool {
	if v.Kind() != KindObject {
		return false
	}
	patchVal, ok := v.Object().Get(opts.PatchKey)
	if !ok || patchVal.Kind() != KindString {
		return false
	}
	return patchVal.String() == "delete"
}
