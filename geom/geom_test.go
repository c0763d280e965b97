// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geom_test

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/jsgf/solvespace/expr"
	"github.com/jsgf/solvespace/geom"
	"github.com/jsgf/solvespace/sketch"
	"github.com/jsgf/solvespace/store"
)

// A non-axis-aligned, non-identity unit quaternion: normalize(1,2,3,4).
// solve_test.go and most of constraint_test.go build normals only off
// the identity quaternion (1,0,0,0); the one tilted normal in
// constraint_test.go is used to check derivatives, not the basis values.
// These tests check the values of all of quatBasis's rotation-matrix
// terms, off-diagonal cross terms included.
const (
	tiltQW = 0.18257418583505536
	tiltQX = 0.3651483716701107
	tiltQY = 0.5477225575051661
	tiltQZ = 0.7302967433402214
)

func values(d *sketch.Doc) func(store.ParamHandle) float64 {
	return func(h store.ParamHandle) float64 { return d.Param(h).Val }
}

func Test_quatBasisOrthonormal(tst *testing.T) {
	chk.PrintTitle("quatBasis: tilted normal yields an orthonormal basis")

	doc := sketch.New()
	grp := store.GroupHandle(1)
	n := doc.NormalIn3D(grp, tiltQW, tiltQX, tiltQY, tiltQZ)

	c := &geom.Ctx{Entities: doc}
	vals := values(doc)

	u := c.NormalExprsU(n)
	v := c.NormalExprsV(n)
	w := c.NormalExprsN(n)

	chk.Scalar(tst, "U.U", 1e-12, expr.Eval(u.Dot(u), vals), 1)
	chk.Scalar(tst, "V.V", 1e-12, expr.Eval(v.Dot(v), vals), 1)
	chk.Scalar(tst, "N.N", 1e-12, expr.Eval(w.Dot(w), vals), 1)
	chk.Scalar(tst, "U.V", 1e-12, expr.Eval(u.Dot(v), vals), 0)
	chk.Scalar(tst, "U.N", 1e-12, expr.Eval(u.Dot(w), vals), 0)
	chk.Scalar(tst, "V.N", 1e-12, expr.Eval(v.Dot(w), vals), 0)

	// right-handed: U x V == N
	cross := u.Cross(v)
	chk.Scalar(tst, "(UxV).x", 1e-9, expr.Eval(cross.X, vals), expr.Eval(w.X, vals))
	chk.Scalar(tst, "(UxV).y", 1e-9, expr.Eval(cross.Y, vals), expr.Eval(w.Y, vals))
	chk.Scalar(tst, "(UxV).z", 1e-9, expr.Eval(cross.Z, vals), expr.Eval(w.Z, vals))
}

func Test_pointExprsInWorkplaneRoundTrip(tst *testing.T) {
	chk.PrintTitle("PointExprsInWorkplane / PointInThreeSpace: tilted workplane round-trips")

	doc := sketch.New()
	grp := store.GroupHandle(1)
	n := doc.NormalIn3D(grp, tiltQW, tiltQX, tiltQY, tiltQZ)
	origin := doc.Point3D(grp, 1, -2, 0.5)
	wp := doc.Workplane(grp, origin, n)

	// a point declared directly in the workplane's own (u,v) coordinates
	pt := doc.PointInPlane(grp, wp, 2.3, -0.7)

	c := &geom.Ctx{Entities: doc}
	vals := values(doc)

	u, v := c.PointExprsInWorkplane(pt, wp)
	chk.Scalar(tst, "recovered u", 1e-9, expr.Eval(u, vals), 2.3)
	chk.Scalar(tst, "recovered v", 1e-9, expr.Eval(v, vals), -0.7)

	// and the inverse: lifting (u,v) back to world must land on the same
	// point PointExprs already reports for pt.
	world := c.PointInThreeSpace(wp, expr.Const(2.3), expr.Const(-0.7))
	p := c.PointExprs(pt)
	chk.Scalar(tst, "world.x", 1e-9, expr.Eval(world.X, vals), expr.Eval(p.X, vals))
	chk.Scalar(tst, "world.y", 1e-9, expr.Eval(world.Y, vals), expr.Eval(p.Y, vals))
	chk.Scalar(tst, "world.z", 1e-9, expr.Eval(world.Z, vals), expr.Eval(p.Z, vals))
}
