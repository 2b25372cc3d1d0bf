// SPDX-License-Identifier: Apache-2.0

// Package config registers the control-key and behavior flags of the ddmctl
// command line front end and turns them into a validated [ddm.Options].
// ddm-krm does not use it; it reads its options from item annotations.
package config

import (
	"flag"

	"github.com/sam-fredrickson/ddm"
)

// Flags holds the control-key and behavior flag values backing a
// validated [ddm.Options].
type Flags struct {
	IDKey        string
	PositionKey  string
	AnchorKey    string
	PatchKey     string
	ValueKey     string
	StrictAnchor bool
	MaxDepth     int
}

// RegisterFlags registers f's fields on fs, defaulting to
// [ddm.DefaultOptions]'s values.
func RegisterFlags(fs *flag.FlagSet, f *Flags) {
	defaults := ddm.DefaultOptions()
	fs.StringVar(&f.IDKey, "id-key", defaults.IDKey, "identity control key")
	fs.StringVar(&f.PositionKey, "position-key", defaults.PositionKey, "position control key")
	fs.StringVar(&f.AnchorKey, "anchor-key", defaults.AnchorKey, "anchor control key")
	fs.StringVar(&f.PatchKey, "patch-key", defaults.PatchKey, "patch (deletion) control key")
	fs.StringVar(&f.ValueKey, "value-key", defaults.ValueKey, "typed-value wrapper key")
	fs.BoolVar(&f.StrictAnchor, "strict-anchor", defaults.StrictAnchor, "fail when a reorder anchor is missing, instead of appending to the end")
	fs.IntVar(&f.MaxDepth, "max-depth", defaults.MaxDepth, "maximum recursion depth, 0 for unbounded")
}

// Options builds a validated [ddm.Options] from f.
func (f Flags) Options() (ddm.Options, error) {
	return ddm.NewOptions(ddm.Options{
		IDKey:        f.IDKey,
		PositionKey:  f.PositionKey,
		AnchorKey:    f.AnchorKey,
		PatchKey:     f.PatchKey,
		ValueKey:     f.ValueKey,
		StrictAnchor: f.StrictAnchor,
		MaxDepth:     f.MaxDepth,
	})
}
