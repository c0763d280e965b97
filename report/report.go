// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report turns a solve.Result into human-facing output, the way
// the original's TextWindow::ReportHowGroupSolved turns a solve outcome
// into status-bar text, printed through gosl/io's colored Pf helpers.
package report

import (
	"github.com/cpmech/gosl/io"
	"github.com/jsgf/solvespace/solve"
	"github.com/jsgf/solvespace/store"
)

// Sink receives a solved (or failed) group's outcome.
type Sink interface {
	Report(group store.GroupHandle, r solve.Result)
}

// TextSink writes colored, human-readable lines via gosl/io's Pf family.
// The zero value is ready to use.
type TextSink struct {
	// NameOf resolves a constraint handle to a display name, for the
	// failure case's constraint list. If nil, handles print as bare
	// numbers.
	NameOf func(store.ConstraintHandle) string
}

func (s TextSink) name(h store.ConstraintHandle) string {
	if s.NameOf != nil {
		return s.NameOf(h)
	}
	return ""
}

// Report prints the group's solve outcome in three shapes: solved (with
// the remaining DOF), singular (followed by the constraints to remove),
// or not converged (followed by the suspect constraints).
func (s TextSink) Report(group store.GroupHandle, r solve.Result) {
	switch r.Status {
	case solve.OK:
		if r.DOF > 0 {
			io.Pfgreen("group %d solved okay, %d degree(s) of freedom remain\n", group, r.DOF)
		} else {
			io.Pfgreen("group %d solved okay, fully constrained\n", group)
		}
	case solve.SingularJacobian:
		io.Pfyel("group %d: singular system; remove one of:\n", group)
		s.listRemove(r.Remove)
	case solve.DidntConverge:
		io.Pfred("group %d: solver did not converge; suspect:\n", group)
		s.listRemove(r.Remove)
	default:
		io.Pfred("group %d: unknown solver status\n", group)
	}
}

func (s TextSink) listRemove(remove []store.ConstraintHandle) {
	if len(remove) == 0 {
		io.Pf("  (no specific constraint identified)\n")
		return
	}
	for _, h := range remove {
		if name := s.name(h); name != "" {
			io.Pf("  - %s (constraint %d)\n", name, h)
		} else {
			io.Pf("  - constraint %d\n", h)
		}
	}
}
