// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package geom is the entity algebra: per-entity-kind helpers that
// produce expr.Expr/expr.Vector values for points, lines, circles, arcs,
// workplanes, normals, cubics and faces. The constraint generator is the
// only caller; every accessor here is workplane-independent, so a
// constraint can be written once and projected into a workplane (or not)
// by the caller.
package geom

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/jsgf/solvespace/expr"
	"github.com/jsgf/solvespace/store"
)

// Ctx threads the entity store through the entity algebra explicitly
// instead of reaching through a global symbol table: tests (and
// independent solves) get an independent Ctx.
type Ctx struct {
	Entities store.EntityStore
}

func (c *Ctx) entity(h store.EntityHandle) *store.Entity {
	e := c.Entities.Entity(h)
	if e == nil {
		chk.Panic("geom: store has no entity %d", h)
	}
	return e
}

// PointExprs returns a point entity's position in world (3D) coordinates.
func (c *Ctx) PointExprs(h store.EntityHandle) expr.Vector {
	e := c.entity(h)
	switch e.Kind {
	case store.PointIn3D, store.PointNTrans:
		return expr.Vec3(expr.Param(e.Param[0]), expr.Param(e.Param[1]), expr.Param(e.Param[2]))
	case store.PointIn2D:
		u := expr.Param(e.Param[0])
		v := expr.Param(e.Param[1])
		return c.PointInThreeSpace(e.Workplane, u, v)
	}
	chk.Panic("geom: entity %d (kind %d) is not a point", h, e.Kind)
	return expr.Vector{}
}

// PointExprsInWorkplane returns a point's (u,v) coordinates projected
// into workplane w: u = (p - origin)·U, v = (p - origin)·V.
func (c *Ctx) PointExprsInWorkplane(h, w store.EntityHandle) (u, v *expr.Expr) {
	p := c.PointExprs(h)
	origin := c.OffsetExprs(w)
	du := p.Minus(origin)
	ub, vb := c.NormalExprsU(w), c.NormalExprsV(w)
	return du.Dot(ub), du.Dot(vb)
}

// OffsetExprs returns a workplane's origin point, in world coordinates.
func (c *Ctx) OffsetExprs(w store.EntityHandle) expr.Vector {
	e := c.entity(w)
	if e.Kind != store.Workplane {
		chk.Panic("geom: entity %d (kind %d) is not a workplane", w, e.Kind)
	}
	return c.PointExprs(e.Point[0])
}

// PlaneExprs returns (n, d) such that n·p = d describes workplane w's
// plane in world coordinates.
func (c *Ctx) PlaneExprs(w store.EntityHandle) (n expr.Vector, d *expr.Expr) {
	n = c.NormalExprsN(w)
	d = n.Dot(c.OffsetExprs(w))
	return
}

// normalEntity resolves the handle of the NORMAL_IN_3D/2D entity backing
// a workplane or circle/arc, whichever h itself is.
func (c *Ctx) normalEntity(h store.EntityHandle) store.EntityHandle {
	e := c.entity(h)
	if e.Kind == store.NormalIn3D || e.Kind == store.NormalIn2D {
		return h
	}
	if e.Normal != store.NoEntity {
		return e.Normal
	}
	chk.Panic("geom: entity %d (kind %d) has no associated normal", h, e.Kind)
	return 0
}

// quatBasis returns the (U, V, N) orthonormal basis expressed by a
// normal entity's quaternion parameters (qw,qx,qy,qz), using the
// standard quaternion-to-rotation-matrix columns.
func (c *Ctx) quatBasis(h store.EntityHandle) (u, v, n expr.Vector) {
	ne := c.normalEntity(h)
	e := c.entity(ne)
	qw := expr.Param(e.Param[0])
	qx := expr.Param(e.Param[1])
	qy := expr.Param(e.Param[2])
	qz := expr.Param(e.Param[3])

	two := expr.Const(2)
	sq := func(a *expr.Expr) *expr.Expr { return expr.Times(a, a) }
	mul := expr.Times
	add := expr.Plus
	sub := expr.Minus

	u = expr.Vec3(
		sub(add(sq(qw), sq(qx)), add(sq(qy), sq(qz))),
		mul(two, add(mul(qx, qy), mul(qw, qz))),
		mul(two, sub(mul(qx, qz), mul(qw, qy))),
	)
	v = expr.Vec3(
		mul(two, sub(mul(qx, qy), mul(qw, qz))),
		sub(add(sq(qw), sq(qy)), add(sq(qx), sq(qz))),
		mul(two, add(mul(qy, qz), mul(qw, qx))),
	)
	n = expr.Vec3(
		mul(two, add(mul(qx, qz), mul(qw, qy))),
		mul(two, sub(mul(qy, qz), mul(qw, qx))),
		sub(add(sq(qw), sq(qz)), add(sq(qx), sq(qy))),
	)
	return
}

// NormalExprsU, NormalExprsV, NormalExprsN return the three orthonormal
// basis vectors of the normal entity backing h (a workplane, circle,
// arc, or the normal entity itself).
func (c *Ctx) NormalExprsU(h store.EntityHandle) expr.Vector { u, _, _ := c.quatBasis(h); return u }
func (c *Ctx) NormalExprsV(h store.EntityHandle) expr.Vector { _, v, _ := c.quatBasis(h); return v }
func (c *Ctx) NormalExprsN(h store.EntityHandle) expr.Vector { _, _, n := c.quatBasis(h); return n }

// PointInThreeSpace lifts a (u,v) pair in workplane w back into world
// coordinates: origin + u*U + v*V.
func (c *Ctx) PointInThreeSpace(w store.EntityHandle, u, v *expr.Expr) expr.Vector {
	ub := c.NormalExprsU(w)
	vb := c.NormalExprsV(w)
	ob := c.OffsetExprs(w)
	return ub.ScaledBy(u).Plus(vb.ScaledBy(v)).Plus(ob)
}

// VectorExprs returns a line's direction vector, p1 - p0.
func (c *Ctx) VectorExprs(h store.EntityHandle) expr.Vector {
	e := c.entity(h)
	if e.Kind != store.Line {
		chk.Panic("geom: entity %d (kind %d) is not a line", h, e.Kind)
	}
	p0 := c.PointExprs(e.Point[0])
	p1 := c.PointExprs(e.Point[1])
	return p1.Minus(p0)
}

// LineEndpoints returns a line's two endpoint entity handles.
func (c *Ctx) LineEndpoints(h store.EntityHandle) (a, b store.EntityHandle) {
	e := c.entity(h)
	return e.Point[0], e.Point[1]
}

// CircleCenter returns a circle's center point entity handle.
func (c *Ctx) CircleCenter(h store.EntityHandle) store.EntityHandle {
	e := c.entity(h)
	return e.Point[0]
}

// CircleRadiusExpr returns a circle's radius as an expression: either the
// value of its DISTANCE entity's own parameter, or a bare parameter
// directly on the circle, depending on how the circle stores it.
func (c *Ctx) CircleRadiusExpr(h store.EntityHandle) *expr.Expr {
	e := c.entity(h)
	if e.Kind != store.Circle {
		chk.Panic("geom: entity %d (kind %d) is not a circle", h, e.Kind)
	}
	if e.Distance != store.NoEntity {
		d := c.entity(e.Distance)
		return expr.Param(d.Param[0])
	}
	return expr.Param(e.Param[0])
}

// ArcEndpoints returns an arc's center, start and finish point handles.
func (c *Ctx) ArcEndpoints(h store.EntityHandle) (center, start, finish store.EntityHandle) {
	e := c.entity(h)
	if e.Kind != store.Arc {
		chk.Panic("geom: entity %d (kind %d) is not an arc", h, e.Kind)
	}
	return e.Point[0], e.Point[1], e.Point[2]
}

// ArcAngles returns the numeric start angle, finish angle, and sweep
// (finish - start, normalized into (0, 2π]) of an arc at the current
// parameter values. This is evaluated numerically (not symbolically)
// because it only ever feeds a branch decision (see the
// EQUAL_LINE_ARC_LEN case of constraint.Generator), never an equation
// itself.
func (c *Ctx) ArcAngles(h store.EntityHandle, values func(store.ParamHandle) float64) (thetas, thetaf, dtheta float64) {
	center, start, finish := c.ArcEndpoints(h)
	cp := c.PointExprs(center)
	sp := c.PointExprs(start)
	fp := c.PointExprs(finish)

	u := c.NormalExprsU(h)
	v := c.NormalExprsV(h)

	ds := sp.Minus(cp)
	df := fp.Minus(cp)

	us, vs := ds.Dot(u), ds.Dot(v)
	uf, vf := df.Dot(u), df.Dot(v)

	thetas = math.Atan2(expr.Eval(vs, values), expr.Eval(us, values))
	thetaf = math.Atan2(expr.Eval(vf, values), expr.Eval(uf, values))

	dtheta = thetaf - thetas
	for dtheta < 0 {
		dtheta += 2 * math.Pi
	}
	if dtheta == 0 {
		dtheta = 2 * math.Pi
	}
	return
}

// CubicPoint returns the handle of control point i (0..3: endpoint0,
// ctrl1, ctrl2, endpoint1) of a cubic Bezier entity.
func (c *Ctx) CubicPoint(h store.EntityHandle, i int) store.EntityHandle {
	e := c.entity(h)
	if e.Kind != store.Cubic {
		chk.Panic("geom: entity %d (kind %d) is not a cubic", h, e.Kind)
	}
	if i < 0 || i > 3 {
		chk.Panic("geom: cubic control point index %d out of range", i)
	}
	return e.Point[i]
}

// FacePointExpr and FaceNormalExpr return the point-on-plane and
// plane-normal expressions of a FACE entity.
func (c *Ctx) FacePointExpr(h store.EntityHandle) expr.Vector {
	e := c.entity(h)
	if e.Kind != store.Face {
		chk.Panic("geom: entity %d (kind %d) is not a face", h, e.Kind)
	}
	return c.PointExprs(e.Point[0])
}

func (c *Ctx) FaceNormalExpr(h store.EntityHandle) expr.Vector {
	return c.NormalExprsN(h)
}
