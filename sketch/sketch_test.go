// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sketch

import (
	"encoding/json"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/jsgf/solvespace/store"
)

func Test_builderAndLookup(tst *testing.T) {

	chk.PrintTitle("sketch: builder methods populate lookup maps")

	d := New()
	grp := store.GroupHandle(1)
	a := d.Point3D(grp, 1, 2, 3)
	b := d.Point3D(grp, 4, 5, 6)
	line := d.Line(grp, a, b)
	ch := d.PtPtDistance(grp, a, b, 5)

	if d.Entity(line) == nil {
		tst.Fatalf("line entity not found by handle")
	}
	if d.Constraint(ch) == nil {
		tst.Fatalf("constraint not found by handle")
	}

	ea := d.Entity(a)
	chk.Scalar(tst, "point a.x", 1e-15, d.Param(ea.Param[0]).Val, 1)
	chk.Scalar(tst, "point a.y", 1e-15, d.Param(ea.Param[1]).Val, 2)
	chk.Scalar(tst, "point a.z", 1e-15, d.Param(ea.Param[2]).Val, 3)

	inGroup := d.EntitiesInGroup(grp)
	if len(inGroup) != 3 { // a, b, line
		tst.Errorf("expected 3 entities in group, got %d", len(inGroup))
	}
	cInGroup := d.ConstraintsInGroup(grp)
	if len(cInGroup) != 1 {
		tst.Errorf("expected 1 constraint in group, got %d", len(cInGroup))
	}
}

func Test_jsonRoundTrip(tst *testing.T) {

	chk.PrintTitle("sketch: JSON marshal/unmarshal preserves handles")

	d := New()
	grp := store.GroupHandle(1)
	a := d.Point3D(grp, 1, 2, 3)
	b := d.Point3D(grp, 4, 5, 6)
	d.PtPtDistance(grp, a, b, 5)

	buf, err := json.Marshal(d)
	if err != nil {
		tst.Fatalf("marshal failed: %v", err)
	}

	var d2 Doc
	if err := json.Unmarshal(buf, &d2); err != nil {
		tst.Fatalf("unmarshal failed: %v", err)
	}
	d2.index()

	ea2 := d2.Entity(a)
	if ea2 == nil {
		tst.Fatalf("round-tripped doc lost entity %d", a)
	}
	chk.Scalar(tst, "round-tripped point a.x", 1e-15, d2.Param(ea2.Param[0]).Val, 1)

	if len(d2.ConstraintsInGroup(grp)) != 1 {
		tst.Errorf("round-tripped doc lost its constraint")
	}
}

func Test_draggedParams(tst *testing.T) {

	chk.PrintTitle("sketch: SetDragged/DraggedParams")

	d := New()
	p := d.AddParam(1)
	d.SetDragged(p)
	dragged := d.DraggedParams()
	if len(dragged) != 1 || dragged[0] != p {
		tst.Errorf("expected exactly [%d], got %v", p, dragged)
	}
}
