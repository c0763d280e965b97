// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sketch

import "github.com/jsgf/solvespace/store"

// Builder methods below are conveniences over AddParam/AddEntity for the
// entity kinds tests actually need; a real CAD host builds entities
// itself and only needs the Doc/store.Store surface above.

// Point3D adds a free point in 3-space with initial coordinates (x,y,z),
// in group g.
func (d *Doc) Point3D(g store.GroupHandle, x, y, z float64) store.EntityHandle {
	px := d.AddParam(x)
	py := d.AddParam(y)
	pz := d.AddParam(z)
	return d.AddEntity(&store.Entity{
		Kind:  store.PointIn3D,
		Group: g,
		Param: []store.ParamHandle{px, py, pz},
	})
}

// NormalIn3D adds a free orientation entity with initial quaternion
// (qw,qx,qy,qz); callers normalize the quaternion before solving if it
// isn't already unit-length, or let the solver's own normalization
// equation correct it.
func (d *Doc) NormalIn3D(g store.GroupHandle, qw, qx, qy, qz float64) store.EntityHandle {
	pw := d.AddParam(qw)
	px := d.AddParam(qx)
	py := d.AddParam(qy)
	pz := d.AddParam(qz)
	return d.AddEntity(&store.Entity{
		Kind:  store.NormalIn3D,
		Group: g,
		Param: []store.ParamHandle{pw, px, py, pz},
	})
}

// Line adds a line segment between two existing point entities.
func (d *Doc) Line(g store.GroupHandle, p0, p1 store.EntityHandle) store.EntityHandle {
	return d.AddEntity(&store.Entity{
		Kind:  store.Line,
		Group: g,
		Point: []store.EntityHandle{p0, p1},
	})
}

// Distance adds a DISTANCE entity (a named scalar, typically a circle's
// radius) with initial value v.
func (d *Doc) Distance(g store.GroupHandle, v float64) store.EntityHandle {
	pv := d.AddParam(v)
	return d.AddEntity(&store.Entity{
		Kind:  store.Distance,
		Group: g,
		Param: []store.ParamHandle{pv},
	})
}

// Circle adds a circle given its center point, normal, and radius
// (a DISTANCE entity, as returned by Distance).
func (d *Doc) Circle(g store.GroupHandle, center, normal, radius store.EntityHandle) store.EntityHandle {
	return d.AddEntity(&store.Entity{
		Kind:     store.Circle,
		Group:    g,
		Point:    []store.EntityHandle{center},
		Normal:   normal,
		Distance: radius,
	})
}

// Arc adds an arc given its center, start and finish points, and normal.
func (d *Doc) Arc(g store.GroupHandle, center, start, finish, normal store.EntityHandle) store.EntityHandle {
	return d.AddEntity(&store.Entity{
		Kind:   store.Arc,
		Group:  g,
		Point:  []store.EntityHandle{center, start, finish},
		Normal: normal,
	})
}

// Workplane adds a workplane given its origin point and normal entity.
func (d *Doc) Workplane(g store.GroupHandle, origin, normal store.EntityHandle) store.EntityHandle {
	return d.AddEntity(&store.Entity{
		Kind:   store.Workplane,
		Group:  g,
		Point:  []store.EntityHandle{origin},
		Normal: normal,
	})
}

// PointInPlane adds a point living in workplane w, with initial (u,v)
// coordinates.
func (d *Doc) PointInPlane(g store.GroupHandle, w store.EntityHandle, u, v float64) store.EntityHandle {
	pu := d.AddParam(u)
	pv := d.AddParam(v)
	return d.AddEntity(&store.Entity{
		Kind:      store.PointIn2D,
		Group:     g,
		Workplane: w,
		Param:     []store.ParamHandle{pu, pv},
	})
}

// PtPtDistance adds a point-to-point distance constraint of value v.
func (d *Doc) PtPtDistance(g store.GroupHandle, a, b store.EntityHandle, v float64) store.ConstraintHandle {
	return d.AddConstraint(&store.Constraint{
		Kind: store.PtPtDistance, Group: g, PtA: a, PtB: b, ValA: v,
	})
}

// PointsCoincident adds a coincidence constraint between two points.
func (d *Doc) PointsCoincident(g store.GroupHandle, a, b store.EntityHandle) store.ConstraintHandle {
	return d.AddConstraint(&store.Constraint{
		Kind: store.PointsCoincident, Group: g, PtA: a, PtB: b,
	})
}

// EqualLengthLines adds an equal-length constraint between two lines.
func (d *Doc) EqualLengthLines(g store.GroupHandle, a, b store.EntityHandle) store.ConstraintHandle {
	return d.AddConstraint(&store.Constraint{
		Kind: store.EqualLengthLines, Group: g, EntityA: a, EntityB: b,
	})
}

// PtOnCircle adds a point-on-circle constraint.
func (d *Doc) PtOnCircle(g store.GroupHandle, pt, circle store.EntityHandle) store.ConstraintHandle {
	return d.AddConstraint(&store.Constraint{
		Kind: store.PtOnCircle, Group: g, PtA: pt, EntityA: circle,
	})
}

// Horizontal adds a horizontal constraint on a line in a workplane.
func (d *Doc) Horizontal(g store.GroupHandle, wp, line store.EntityHandle) store.ConstraintHandle {
	return d.AddConstraint(&store.Constraint{
		Kind: store.Horizontal, Group: g, Workplane: wp, EntityA: line,
	})
}
