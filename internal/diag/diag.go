// SPDX-License-Identifier: Apache-2.0

// Package diag provides structured CLI diagnostics shared by the ddm
// command line front ends, extending the teacher's plain-stderr error
// reporting (cmd/cfgmerge's bare fmt.Fprintln) with leveled, structured
// logging for non-fatal conditions worth surfacing to an operator.
package diag

import (
	"io"
	"log/slog"

	"github.com/sam-fredrickson/ddm"
)

// Logger wraps a *slog.Logger with ddm-specific diagnostic helpers.
type Logger struct {
	*slog.Logger
}

// New returns a Logger writing leveled text records to w.
func New(w io.Writer) *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(w, nil))}
}

// MergeStarting logs the shape of a merge invocation before it runs.
func (l *Logger) MergeStarting(layerCount int, opts ddm.Options) {
	l.Info("merging layers",
		slog.Int("layers", layerCount),
		slog.Bool("strict_anchor", opts.StrictAnchor),
		slog.Int("max_depth", opts.MaxDepth),
	)
	if !opts.StrictAnchor {
		l.Warn("strict anchor disabled: reorder directives with a missing anchor will silently append to the end")
	}
}

// MergeFailed logs a fatal merge error before the caller exits non-zero.
func (l *Logger) MergeFailed(err error) {
	l.Error("merge failed", slog.Any("error", err))
}
