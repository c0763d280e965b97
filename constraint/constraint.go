// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package constraint lowers each user-declared constraint into one or
// more scalar equations over expr.Expr trees, f(params) = 0 (or f = d for
// a dimensioned constraint with declared value d). One dispatch site
// (GenerateReal's switch): a tagged variant rather than a per-kind type
// hierarchy, matching how the rest of this module dispatches on kind.
package constraint

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/jsgf/solvespace/expr"
	"github.com/jsgf/solvespace/geom"
	"github.com/jsgf/solvespace/store"
)

// Equation is one scalar row: f(params) = 0. Constraint/Index encode
// provenance (which constraint, and which of its 0..2 sub-equations).
type Equation struct {
	Constraint store.ConstraintHandle
	Index      int
	Expr       *expr.Expr
}

// Generator threads the entity algebra context and the seed values
// (needed by VectorsParallel's pivot and EqualLineArcLen's bucket
// selection) through constraint generation instead of reaching for
// global mutable state.
type Generator struct {
	G      *geom.Ctx
	Values func(store.ParamHandle) float64
}

func (g *Generator) entity(h store.EntityHandle) *store.Entity {
	e := g.G.Entities.Entity(h)
	if e == nil {
		chk.Panic("constraint: store has no entity %d", h)
	}
	return e
}

func (g *Generator) eval(e *expr.Expr) float64 { return expr.Eval(e, g.Values) }

// VectorsParallel returns component eq (0 or 1) of a×b, with the
// component axis chosen by whichever of a's components has the largest
// absolute value at the seed: the hairy-ball theorem rules out a
// universally continuous choice, so the generator pivots on the
// numerically dominant axis instead. Callers must pass as a the vector
// that is expected to stay fixed (e.g. from an already-solved group),
// so that the pivot is stable across the Newton iteration that follows.
func (g *Generator) VectorsParallel(eq int, a, b expr.Vector) *expr.Expr {
	r := a.Cross(b)
	mx := math.Abs(g.eval(a.X))
	my := math.Abs(g.eval(a.Y))
	mz := math.Abs(g.eval(a.Z))

	var e0, e1 *expr.Expr
	switch {
	case mx > my && mx > mz:
		e0, e1 = r.Y, r.Z
	case my > mz:
		e0, e1 = r.Z, r.X
	default:
		e0, e1 = r.X, r.Y
	}

	switch eq {
	case 0:
		return e0
	case 1:
		return e1
	}
	chk.Panic("constraint: VectorsParallel: eq must be 0 or 1, got %d", eq)
	return nil
}

// PointLineDistance returns the (signed, in a workplane; unsigned in 3D)
// perpendicular distance from point hpt to line hln, projected into
// workplane wp (or store.FreeIn3D for true 3D distance).
func (g *Generator) PointLineDistance(wp, hpt, hln store.EntityHandle) *expr.Expr {
	a, b := g.G.LineEndpoints(hln)

	if wp == store.FreeIn3D {
		ep := g.G.PointExprs(hpt)
		ea := g.G.PointExprs(a)
		eb := g.G.PointExprs(b)
		eab := ea.Minus(eb)
		m := eab.Magnitude()
		return eab.Cross(ea.Minus(ep)).Magnitude().Div(m)
	}

	ua, va := g.G.PointExprsInWorkplane(a, wp)
	ub, vb := g.G.PointExprsInWorkplane(b, wp)
	du := ua.Minus(ub)
	dv := va.Minus(vb)

	u, v := g.G.PointExprsInWorkplane(hpt, wp)

	m := du.Square().Plus(dv.Square()).Sqrt()
	proj := dv.Times(ua.Minus(u)).Minus(du.Times(va.Minus(v)))
	return proj.Div(m)
}

// PointPlaneDistance returns n·p - d for the plane of entity hpl.
func (g *Generator) PointPlaneDistance(p expr.Vector, hpl store.EntityHandle) *expr.Expr {
	n, d := g.G.PlaneExprs(hpl)
	return p.Dot(n).Minus(d)
}

// Distance returns the distance between two points, projected into
// workplane wp (or store.FreeIn3D for true 3D Euclidean distance).
func (g *Generator) Distance(wp, hpa, hpb store.EntityHandle) *expr.Expr {
	if wp == store.FreeIn3D {
		ea := g.G.PointExprs(hpa)
		eb := g.G.PointExprs(hpb)
		return ea.Minus(eb).Magnitude()
	}
	au, av := g.G.PointExprsInWorkplane(hpa, wp)
	bu, bv := g.G.PointExprsInWorkplane(hpb, wp)
	du := au.Minus(bu)
	dv := av.Minus(bv)
	return du.Square().Plus(dv.Square()).Sqrt()
}

// DirectionCosine returns the cosine of the angle between ae and be,
// projected into workplane wp if one is given.
func (g *Generator) DirectionCosine(wp store.EntityHandle, ae, be expr.Vector) *expr.Expr {
	if wp == store.FreeIn3D {
		mags := ae.Magnitude().Times(be.Magnitude())
		return ae.Dot(be).Div(mags)
	}
	u := g.G.NormalExprsU(wp)
	v := g.G.NormalExprsV(wp)
	ua, va := u.Dot(ae), v.Dot(ae)
	ub, vb := u.Dot(be), v.Dot(be)
	maga := ua.Square().Plus(va.Square()).Sqrt()
	magb := ub.Square().Plus(vb.Square()).Sqrt()
	dot := ua.Times(ub).Plus(va.Times(vb))
	return dot.Div(maga.Times(magb))
}

func (g *Generator) lineLength(wp store.EntityHandle, line store.EntityHandle) *expr.Expr {
	a, b := g.G.LineEndpoints(line)
	return g.Distance(wp, a, b)
}

// same group relation used by PARALLEL/SAME_ORIENTATION to decide which
// operand is "the one that stays fixed": sameGroup reports whether
// entity h belongs to group hg.
func (g *Generator) sameGroup(h store.EntityHandle, hg store.GroupHandle) bool {
	return g.entity(h).Group == hg
}

// Generate is a no-op for reference (measurement-only) constraints and
// otherwise dispatches to GenerateReal.
func (g *Generator) Generate(c *store.Constraint) []Equation {
	if c.Reference {
		return nil
	}
	return g.GenerateReal(c)
}

func addEq(l *[]Equation, hc store.ConstraintHandle, index int, e *expr.Expr) {
	*l = append(*l, Equation{Constraint: hc, Index: index, Expr: e})
}

// GenerateReal emits the 1-3 scalar equations for every constraint kind
// in the catalogue. See SPEC_FULL.md §5 and original_source/
// constrainteq.cpp, which this is a direct, line-for-line port of.
func (g *Generator) GenerateReal(c *store.Constraint) []Equation {
	var l []Equation
	exA := expr.Const(c.ValA)
	wp := c.Workplane

	switch c.Kind {
	case store.PtPtDistance:
		addEq(&l, c.Handle, 0, g.Distance(wp, c.PtA, c.PtB).Minus(exA))

	case store.PtLineDistance:
		addEq(&l, c.Handle, 0, g.PointLineDistance(wp, c.PtA, c.EntityA).Minus(exA))

	case store.PtPlaneDistance:
		pt := g.G.PointExprs(c.PtA)
		addEq(&l, c.Handle, 0, g.PointPlaneDistance(pt, c.EntityA).Minus(exA))

	case store.PtFaceDistance:
		pt := g.G.PointExprs(c.PtA)
		p0 := g.G.FacePointExpr(c.EntityA)
		n := g.G.FaceNormalExpr(c.EntityA)
		addEq(&l, c.Handle, 0, pt.Minus(p0).Dot(n).Minus(exA))

	case store.EqualLengthLines:
		la := g.lineLength(wp, c.EntityA)
		lb := g.lineLength(wp, c.EntityB)
		addEq(&l, c.Handle, 0, la.Minus(lb))

	case store.EqLenPtLineD:
		d1 := g.lineLength(wp, c.EntityA)
		d2 := g.PointLineDistance(wp, c.PtA, c.EntityB)
		addEq(&l, c.Handle, 0, d1.Square().Minus(d2.Square()))

	case store.EqPtLnDistances:
		d1 := g.PointLineDistance(wp, c.PtA, c.EntityA)
		d2 := g.PointLineDistance(wp, c.PtB, c.EntityB)
		addEq(&l, c.Handle, 0, d1.Square().Minus(d2.Square()))

	case store.LengthRatio:
		la := g.lineLength(wp, c.EntityA)
		lb := g.lineLength(wp, c.EntityB)
		addEq(&l, c.Handle, 0, la.Div(lb).Minus(exA))

	case store.Diameter:
		r := g.G.CircleRadiusExpr(c.EntityA)
		addEq(&l, c.Handle, 0, r.Times(expr.Const(2)).Minus(exA))

	case store.EqualRadius:
		r1 := g.G.CircleRadiusExpr(c.EntityA)
		r2 := g.G.CircleRadiusExpr(c.EntityB)
		addEq(&l, c.Handle, 0, r1.Minus(r2))

	case store.EqualLineArcLen:
		addEq(&l, c.Handle, 0, g.equalLineArcLen(c))

	case store.PointsCoincident:
		l = append(l, g.pointsCoincident(c)...)

	case store.PtInPlane:
		addEq(&l, c.Handle, 0, g.PointPlaneDistance(g.G.PointExprs(c.PtA), c.EntityA))

	case store.PtOnFace:
		pt := g.G.PointExprs(c.PtA)
		p0 := g.G.FacePointExpr(c.EntityA)
		n := g.G.FaceNormalExpr(c.EntityA)
		addEq(&l, c.Handle, 0, pt.Minus(p0).Dot(n))

	case store.PtOnLine:
		l = append(l, g.ptOnLine(c)...)

	case store.PtOnCircle:
		addEq(&l, c.Handle, 0, g.ptOnCircle(c))

	case store.AtMidpoint:
		l = append(l, g.atMidpoint(c)...)

	case store.Symmetric:
		l = append(l, g.symmetric(c)...)

	case store.SymmetricHoriz, store.SymmetricVert:
		l = append(l, g.symmetricHorizVert(c)...)

	case store.SymmetricLine:
		l = append(l, g.symmetricLine(c)...)

	case store.Horizontal, store.Vertical:
		addEq(&l, c.Handle, 0, g.horizOrVert(c))

	case store.SameOrientation:
		l = append(l, g.sameOrientation(c)...)

	case store.Perpendicular, store.Angle:
		addEq(&l, c.Handle, 0, g.perpendicularOrAngle(c))

	case store.EqualAngle:
		addEq(&l, c.Handle, 0, g.equalAngle(c))

	case store.ArcLineTangent:
		addEq(&l, c.Handle, 0, g.arcLineTangent(c))

	case store.CubicLineTangent:
		l = append(l, g.cubicLineTangent(c)...)

	case store.Parallel:
		l = append(l, g.parallel(c)...)

	case store.Comment:
		// nothing

	default:
		chk.Panic("constraint: unhandled constraint kind %d", c.Kind)
	}
	return l
}

func (g *Generator) equalLineArcLen(c *store.Constraint) *expr.Expr {
	a, b := g.G.LineEndpoints(c.EntityA)
	l0 := g.G.PointExprs(a)
	l1 := g.G.PointExprs(b)
	ll := l1.Minus(l0).Magnitude()

	center, start, finish := g.G.ArcEndpoints(c.EntityB)
	ao := g.G.PointExprs(center)
	as := g.G.PointExprs(start)
	af := g.G.PointExprs(finish)

	aos := as.Minus(ao)
	aof := af.Minus(ao)
	r := aof.Magnitude()

	n := g.G.NormalExprsN(c.EntityB)
	u := aos.WithMagnitude(expr.Const(1))
	v := n.Cross(u)

	costheta := aof.Dot(u).Div(r)
	sintheta := aof.Dot(v).Div(r)

	_, _, dtheta := g.G.ArcAngles(c.EntityB, g.Values)

	var theta *expr.Expr
	switch {
	case dtheta < 3*math.Pi/4:
		theta = costheta.ACos()
	case dtheta < 5*math.Pi/4:
		theta = expr.Const(math.Pi).Minus(sintheta.ASin())
	default:
		theta = expr.Const(2 * math.Pi).Minus(costheta.ACos())
	}

	return r.Times(theta).Minus(ll)
}

func (g *Generator) pointsCoincident(c *store.Constraint) []Equation {
	var l []Equation
	if c.Workplane == store.FreeIn3D {
		pa := g.G.PointExprs(c.PtA)
		pb := g.G.PointExprs(c.PtB)
		addEq(&l, c.Handle, 0, pa.X.Minus(pb.X))
		addEq(&l, c.Handle, 1, pa.Y.Minus(pb.Y))
		addEq(&l, c.Handle, 2, pa.Z.Minus(pb.Z))
	} else {
		au, av := g.G.PointExprsInWorkplane(c.PtA, c.Workplane)
		bu, bv := g.G.PointExprsInWorkplane(c.PtB, c.Workplane)
		addEq(&l, c.Handle, 0, au.Minus(bu))
		addEq(&l, c.Handle, 1, av.Minus(bv))
	}
	return l
}

func (g *Generator) ptOnLine(c *store.Constraint) []Equation {
	var l []Equation
	if c.Workplane != store.FreeIn3D {
		addEq(&l, c.Handle, 0, g.PointLineDistance(c.Workplane, c.PtA, c.EntityA))
		return l
	}

	a, b := g.G.LineEndpoints(c.EntityA)
	ep := g.G.PointExprs(c.PtA)
	ea := g.G.PointExprs(a)
	eb := g.G.PointExprs(b)
	eab := ea.Minus(eb)

	eap := ea.Minus(ep)
	ebp := eb.Minus(ep)
	var elp expr.Vector
	if g.eval(ebp.Magnitude()) > g.eval(eap.Magnitude()) {
		elp = ebp
	} else {
		elp = eap
	}

	pointGroup := g.entity(c.PtA).Group
	if pointGroup == c.Group {
		addEq(&l, c.Handle, 0, g.VectorsParallel(0, eab, elp))
		addEq(&l, c.Handle, 1, g.VectorsParallel(1, eab, elp))
	} else {
		addEq(&l, c.Handle, 0, g.VectorsParallel(0, elp, eab))
		addEq(&l, c.Handle, 1, g.VectorsParallel(1, elp, eab))
	}
	return l
}

func (g *Generator) ptOnCircle(c *store.Constraint) *expr.Expr {
	center := g.G.CircleCenter(c.EntityA)
	centerExprs := g.G.PointExprs(center)
	pt := g.G.PointExprs(c.PtA)
	normalEnt := g.entity(c.EntityA).Normal
	u := g.G.NormalExprsU(normalEnt)
	v := g.G.NormalExprsV(normalEnt)

	du := centerExprs.Minus(pt).Dot(u)
	dv := centerExprs.Minus(pt).Dot(v)
	r := g.G.CircleRadiusExpr(c.EntityA)

	return du.Square().Plus(dv.Square()).Minus(r.Square())
}

func (g *Generator) atMidpoint(c *store.Constraint) []Equation {
	var l []Equation
	a, b := g.G.LineEndpoints(c.EntityA)

	if c.Workplane == store.FreeIn3D {
		ea := g.G.PointExprs(a)
		eb := g.G.PointExprs(b)
		m := ea.Plus(eb).ScaledBy(expr.Const(0.5))

		if c.PtA != store.NoEntity {
			p := g.G.PointExprs(c.PtA)
			addEq(&l, c.Handle, 0, m.X.Minus(p.X))
			addEq(&l, c.Handle, 1, m.Y.Minus(p.Y))
			addEq(&l, c.Handle, 2, m.Z.Minus(p.Z))
		} else {
			addEq(&l, c.Handle, 0, g.PointPlaneDistance(m, c.EntityB))
		}
		return l
	}

	au, av := g.G.PointExprsInWorkplane(a, c.Workplane)
	bu, bv := g.G.PointExprsInWorkplane(b, c.Workplane)
	mu := expr.Const(0.5).Times(au.Plus(bu))
	mv := expr.Const(0.5).Times(av.Plus(bv))

	if c.PtA != store.NoEntity {
		pu, pv := g.G.PointExprsInWorkplane(c.PtA, c.Workplane)
		addEq(&l, c.Handle, 0, pu.Minus(mu))
		addEq(&l, c.Handle, 1, pv.Minus(mv))
	} else {
		m := g.G.PointInThreeSpace(c.Workplane, mu, mv)
		addEq(&l, c.Handle, 0, g.PointPlaneDistance(m, c.EntityB))
	}
	return l
}

func (g *Generator) symmetric(c *store.Constraint) []Equation {
	var l []Equation
	if c.Workplane == store.FreeIn3D {
		plane := c.EntityA
		a := g.G.PointExprs(c.PtA)
		b := g.G.PointExprs(c.PtB)
		m := a.Plus(b).ScaledBy(expr.Const(0.5))
		addEq(&l, c.Handle, 0, g.PointPlaneDistance(m, plane))

		au, av := g.G.PointExprsInWorkplane(c.PtA, plane)
		bu, bv := g.G.PointExprsInWorkplane(c.PtB, plane)
		addEq(&l, c.Handle, 1, au.Minus(bu))
		addEq(&l, c.Handle, 2, av.Minus(bv))
		return l
	}

	plane := c.EntityA
	au, av := g.G.PointExprsInWorkplane(c.PtA, c.Workplane)
	bu, bv := g.G.PointExprsInWorkplane(c.PtB, c.Workplane)
	mu := expr.Const(0.5).Times(au.Plus(bu))
	mv := expr.Const(0.5).Times(av.Plus(bv))
	m := g.G.PointInThreeSpace(c.Workplane, mu, mv)
	addEq(&l, c.Handle, 0, g.PointPlaneDistance(m, plane))

	u := g.G.NormalExprsU(c.Workplane)
	v := g.G.NormalExprsV(c.Workplane)
	pa := g.G.PointExprs(c.PtA)
	pb := g.G.PointExprs(c.PtB)
	n, _ := g.G.PlaneExprs(plane)
	addEq(&l, c.Handle, 1, n.Cross(u.Cross(v)).Dot(pa.Minus(pb)))
	return l
}

func (g *Generator) symmetricHorizVert(c *store.Constraint) []Equation {
	var l []Equation
	au, av := g.G.PointExprsInWorkplane(c.PtA, c.Workplane)
	bu, bv := g.G.PointExprsInWorkplane(c.PtB, c.Workplane)
	if c.Kind == store.SymmetricHoriz {
		addEq(&l, c.Handle, 0, av.Minus(bv))
		addEq(&l, c.Handle, 1, au.Plus(bu))
	} else {
		addEq(&l, c.Handle, 0, au.Minus(bu))
		addEq(&l, c.Handle, 1, av.Plus(bv))
	}
	return l
}

func (g *Generator) symmetricLine(c *store.Constraint) []Equation {
	var l []Equation
	pau, pav := g.G.PointExprsInWorkplane(c.PtA, c.Workplane)
	pbu, pbv := g.G.PointExprsInWorkplane(c.PtB, c.Workplane)

	la, lb := g.G.LineEndpoints(c.EntityA)
	lau, lav := g.G.PointExprsInWorkplane(la, c.Workplane)
	lbu, lbv := g.G.PointExprsInWorkplane(lb, c.Workplane)

	dpu, dpv := pbu.Minus(pau), pbv.Minus(pav)
	dlu, dlv := lbu.Minus(lau), lbv.Minus(lav)

	addEq(&l, c.Handle, 0, dlu.Times(dpu).Plus(dlv.Times(dpv)))

	dista := dlv.Times(lau.Minus(pau)).Minus(dlu.Times(lav.Minus(pav)))
	distb := dlv.Times(lau.Minus(pbu)).Minus(dlu.Times(lav.Minus(pbv)))
	addEq(&l, c.Handle, 1, dista.Plus(distb))
	return l
}

func (g *Generator) horizOrVert(c *store.Constraint) *expr.Expr {
	var ha, hb store.EntityHandle
	if c.EntityA != store.NoEntity {
		ha, hb = g.G.LineEndpoints(c.EntityA)
	} else {
		ha, hb = c.PtA, c.PtB
	}
	au, av := g.G.PointExprsInWorkplane(ha, c.Workplane)
	bu, bv := g.G.PointExprsInWorkplane(hb, c.Workplane)
	if c.Kind == store.Horizontal {
		return av.Minus(bv)
	}
	return au.Minus(bu)
}

func (g *Generator) sameOrientation(c *store.Constraint) []Equation {
	var l []Equation
	a, b := c.EntityA, c.EntityB
	if !g.sameGroup(b, c.Group) {
		a, b = b, a
	}

	au, av, an := g.G.NormalExprsU(a), g.G.NormalExprsV(a), g.G.NormalExprsN(a)
	bu, bv, bn := g.G.NormalExprsU(b), g.G.NormalExprsV(b), g.G.NormalExprsN(b)

	addEq(&l, c.Handle, 0, g.VectorsParallel(0, an, bn))
	addEq(&l, c.Handle, 1, g.VectorsParallel(1, an, bn))

	d1 := au.Dot(bv)
	d2 := au.Dot(bu)
	if math.Abs(g.eval(d1)) < math.Abs(g.eval(d2)) {
		addEq(&l, c.Handle, 2, d1)
	} else {
		addEq(&l, c.Handle, 2, d2)
	}
	return l
}

func (g *Generator) perpendicularOrAngle(c *store.Constraint) *expr.Expr {
	ae := g.G.VectorExprs(c.EntityA)
	be := g.G.VectorExprs(c.EntityB)
	if c.Other {
		ae = ae.ScaledBy(expr.Const(-1))
	}
	cos := g.DirectionCosine(c.Workplane, ae, be)
	if c.Kind == store.Angle {
		rads := expr.Const(c.ValA * math.Pi / 180)
		return cos.Minus(rads.Cos())
	}
	return cos
}

func (g *Generator) equalAngle(c *store.Constraint) *expr.Expr {
	ae := g.G.VectorExprs(c.EntityA)
	be := g.G.VectorExprs(c.EntityB)
	ce := g.G.VectorExprs(c.EntityC)
	de := g.G.VectorExprs(c.EntityD)
	if c.Other {
		ae = ae.ScaledBy(expr.Const(-1))
	}
	cab := g.DirectionCosine(c.Workplane, ae, be)
	ccd := g.DirectionCosine(c.Workplane, ce, de)
	return cab.Minus(ccd)
}

func (g *Generator) arcLineTangent(c *store.Constraint) *expr.Expr {
	center, start, finish := g.G.ArcEndpoints(c.EntityA)
	ac := g.G.PointExprs(center)
	ap := start
	if c.Other {
		ap = finish
	}
	apExprs := g.G.PointExprs(ap)
	ld := g.G.VectorExprs(c.EntityB)
	return ld.Dot(ac.Minus(apExprs))
}

func (g *Generator) cubicLineTangent(c *store.Constraint) []Equation {
	var l []Equation
	var endpoint, ctrlpoint store.EntityHandle
	if c.Other {
		endpoint = g.G.CubicPoint(c.EntityA, 3)
		ctrlpoint = g.G.CubicPoint(c.EntityA, 2)
	} else {
		endpoint = g.G.CubicPoint(c.EntityA, 0)
		ctrlpoint = g.G.CubicPoint(c.EntityA, 1)
	}
	a := g.G.PointExprs(endpoint).Minus(g.G.PointExprs(ctrlpoint))
	b := g.G.VectorExprs(c.EntityB)

	if c.Workplane == store.FreeIn3D {
		addEq(&l, c.Handle, 0, g.VectorsParallel(0, a, b))
		addEq(&l, c.Handle, 1, g.VectorsParallel(1, a, b))
	} else {
		wn := g.G.NormalExprsN(c.Workplane)
		addEq(&l, c.Handle, 0, a.Cross(b).Dot(wn))
	}
	return l
}

func (g *Generator) parallel(c *store.Constraint) []Equation {
	var l []Equation
	ea, eb := c.EntityA, c.EntityB
	if !g.sameGroup(eb, c.Group) {
		ea, eb = eb, ea
	}
	a := g.G.VectorExprs(ea)
	b := g.G.VectorExprs(eb)

	if c.Workplane == store.FreeIn3D {
		addEq(&l, c.Handle, 0, g.VectorsParallel(0, a, b))
		addEq(&l, c.Handle, 1, g.VectorsParallel(1, a, b))
	} else {
		wn := g.G.NormalExprsN(c.Workplane)
		addEq(&l, c.Handle, 0, a.Cross(b).Dot(wn))
	}
	return l
}

// ModifyToSatisfy recomputes c.ValA so that it matches current geometry:
// for ANGLE, by recomputing the angle directly from the current numeric
// vectors; for any other dimensioned constraint, by evaluating the
// already-generated equation (which equals f - d) at the current point
// and adding that back into d.
func (g *Generator) ModifyToSatisfy(c *store.Constraint) {
	if c.Kind == store.Angle {
		a := g.G.VectorExprs(c.EntityA)
		b := g.G.VectorExprs(c.EntityB)
		if c.Other {
			a = a.ScaledBy(expr.Const(-1))
		}
		if c.Workplane != store.FreeIn3D {
			au, av := g.G.NormalExprsU(c.Workplane).Dot(a), g.G.NormalExprsV(c.Workplane).Dot(a)
			bu, bv := g.G.NormalExprsU(c.Workplane).Dot(b), g.G.NormalExprsV(c.Workplane).Dot(b)
			a = expr.Vec3(au, av, expr.Zero)
			b = expr.Vec3(bu, bv, expr.Zero)
		}
		cosv := g.eval(a.Dot(b)) / (g.eval(a.Magnitude()) * g.eval(b.Magnitude()))
		c.ValA = math.Acos(cosv) * 180 / math.Pi
		return
	}

	eqs := g.GenerateReal(c)
	if len(eqs) != 1 {
		chk.Panic("constraint: ModifyToSatisfy: expected exactly one equation, got %d", len(eqs))
	}
	c.ValA += g.eval(eqs[0].Expr)
}
