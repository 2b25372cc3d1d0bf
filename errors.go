// SPDX-License-Identifier: Apache-2.0

package ddm

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for simple error checking with [errors.Is]. Use
// [errors.As] with the typed errors below for detailed error information.
var (
	// ErrAnchorMissing indicates a reorder directive named an anchor that
	// was not present in the merged collection, under strict-anchor mode.
	ErrAnchorMissing = errors.New("ddm: anchor missing")
	// ErrDepthExceeded indicates recursion depth exceeded Options.MaxDepth.
	ErrDepthExceeded = errors.New("ddm: depth exceeded")
	// ErrInvalidOptions indicates invalid Options were provided.
	ErrInvalidOptions = errors.New("ddm: invalid options")
	// ErrMarshal indicates a marshaling or unmarshaling operation failed.
	ErrMarshal = errors.New("ddm: marshal error")
)

// MarshalError is returned when unmarshaling or marshaling a layer fails,
// grounded on keymerge's identically-named type (merge.go).
type MarshalError struct {
	// Err is the underlying error returned by a marshal/unmarshal call.
	Err error
	// DocIndex identifies which input layer the error occurred in.
	DocIndex int
}

func (e *MarshalError) Error() string {
	return fmt.Sprintf("ddm: cannot marshal document at position %d: %v", e.DocIndex, e.Err)
}

func (e *MarshalError) Unwrap() error { return e.Err }

func (e *MarshalError) Is(target error) bool { return target == ErrMarshal }

// AnchorMissingError is returned when a reorder directive names an anchor
// that cannot be found, and [Options.StrictAnchor] is true (spec §7).
type AnchorMissingError struct {
	// Anchor is the anchor identity/key name that could not be found.
	Anchor string
	// Subject is the identity (array form) or key name (object form) of
	// the item being positioned.
	Subject string
	// Path is the object/array path to the collection being reordered.
	Path []string
}

func (e *AnchorMissingError) Error() string {
	path := strings.Join(e.Path, ".")
	if path == "" {
		path = "(root)"
	}
	return fmt.Sprintf("ddm: anchor %q not found while positioning %q at path %s", e.Anchor, e.Subject, path)
}

func (e *AnchorMissingError) Is(target error) bool {
	return target == ErrAnchorMissing
}

// DepthExceededError is returned when recursion depth exceeds
// [Options.MaxDepth] (spec §7, §9).
type DepthExceededError struct {
	// MaxDepth is the configured bound that was exceeded.
	MaxDepth int
	// Path is the object/array path at which the bound was hit.
	Path []string
}

func (e *DepthExceededError) Error() string {
	path := strings.Join(e.Path, ".")
	if path == "" {
		path = "(root)"
	}
	return fmt.Sprintf("ddm: max depth %d exceeded at path %s", e.MaxDepth, path)
}

func (e *DepthExceededError) Is(target error) bool {
	return target == ErrDepthExceeded
}
