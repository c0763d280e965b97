// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package store defines the narrow, read-mostly interfaces the solver
// borrows from an external CAD host: a symbol table of parameters,
// entities and constraints, a "currently dragged" hint, and the handles
// that tie equations back to the constraint that produced them.
//
// The solver never mutates Entity or Constraint; it only ever mutates a
// Parameter's Val, Known and Free fields, and only at the end of a
// successful Solve.
package store

// ParamHandle is a stable, opaque reference to a Parameter.
type ParamHandle uint32

// EntityHandle is a stable, opaque reference to an Entity.
type EntityHandle uint32

// ConstraintHandle is a stable, opaque reference to a Constraint.
type ConstraintHandle uint32

// GroupHandle is a stable, opaque reference to a solve group.
type GroupHandle uint32

// NoConstraint is the sentinel "not a real constraint" handle, used by
// WriteEquationsExceptFor to mean "exclude nothing."
const NoConstraint ConstraintHandle = 0

// NoEntity is the sentinel "no entity" handle (e.g. an unused workplane).
const NoEntity EntityHandle = 0

// FreeIn3D is the workplane sentinel meaning "no workplane; 3D".
const FreeIn3D EntityHandle = 0

// ParamTag labels a Parameter's role for the duration of one Solve call.
// It is reset to TagNone at the start of every Solve and is meaningless
// between calls.
type ParamTag int

const (
	// TagNone marks a parameter as an ordinary, still-unknown column.
	TagNone ParamTag = 0
	// TagSubstituted marks a parameter eliminated by SolveBySubstitution;
	// its value is copied from Substd at commit.
	TagSubstituted ParamTag = -1
	// TagDOFTest is a transient tag used by free-variable enumeration.
	TagDOFTest ParamTag = -2
)

// Parameter is a scalar unknown with a stable handle and a current value.
type Parameter struct {
	Handle ParamHandle
	Val    float64
	Known  bool
	Free   bool // set by Solve when andFindFree requests DOF enumeration

	// Tag and Substd mirror the solver's per-parameter bookkeeping. The
	// solver keeps that bookkeeping in its own scratch table and neither
	// reads nor writes these two fields.
	Tag    ParamTag
	Substd ParamHandle // valid iff Tag == TagSubstituted
}

// Entity is an opaque geometric object built from parameters. The solver
// reads an Entity's Kind and Point/Normal/Param handles through the geom
// package's accessors; it never interprets entity geometry directly.
type Entity struct {
	Handle EntityHandle
	Kind   EntityKind
	Group  GroupHandle

	// Param holds the handles of this entity's own scalar unknowns, in
	// the fixed order each EntityKind's accessors expect (e.g. a 3D point
	// is Param[0..2] = x,y,z; a workplane's normal is Param[0..3] =
	// quaternion qw,qx,qy,qz).
	Param []ParamHandle

	// Point holds handles of other entities this one references as
	// points (e.g. a line's two endpoints, a circle's center, an arc's
	// center/start/finish, a cubic's four control points).
	Point []EntityHandle

	// Normal is the handle of this entity's normal/orientation entity,
	// when it has one (circles, arcs, workplanes).
	Normal EntityHandle

	// Workplane is the workplane this entity is defined within, or
	// FreeIn3D if it is a free 3D entity.
	Workplane EntityHandle

	// Distance is the handle of a DISTANCE entity giving this entity's
	// radius (circles) when the radius is itself a draggable parameter.
	Distance EntityHandle
}

// EntityKind enumerates the geometric entity kinds the solver understands.
type EntityKind int

const (
	PointIn3D EntityKind = iota
	PointIn2D
	PointNTrans
	Line
	Circle
	Arc
	Cubic
	Workplane
	NormalIn3D
	NormalIn2D
	Distance
	Face
)

// ConstraintKind enumerates every constraint the generator dispatches on.
type ConstraintKind int

const (
	PtPtDistance ConstraintKind = iota
	PtLineDistance
	PtPlaneDistance
	PtInPlane
	PtFaceDistance
	PtOnFace
	EqualLengthLines
	EqLenPtLineD
	EqPtLnDistances
	LengthRatio
	Diameter
	EqualRadius
	EqualLineArcLen
	PointsCoincident
	PtOnLine
	PtOnCircle
	AtMidpoint
	Symmetric
	SymmetricHoriz
	SymmetricVert
	SymmetricLine
	Horizontal
	Vertical
	SameOrientation
	Perpendicular
	Angle
	EqualAngle
	ArcLineTangent
	CubicLineTangent
	Parallel
	Comment
)

// Constraint is a user-declared relation among entities.
type Constraint struct {
	Handle    ConstraintHandle
	Kind      ConstraintKind
	Group     GroupHandle
	Workplane EntityHandle // FreeIn3D if unconstrained to a plane

	// ValA is the declared scalar dimension (distance, angle in degrees,
	// ratio, …) for dimensioned constraints; unused otherwise.
	ValA float64

	// PtA, PtB are point-entity operands; EntityA..EntityD are general
	// entity operands (lines, circles, arcs, cubics, planes, faces,
	// normals) — which fields are meaningful depends on Kind, exactly as
	// in the original constraint record.
	PtA, PtB                       EntityHandle
	EntityA, EntityB, EntityC, EntityD EntityHandle

	// Other flips the sign/endpoint selection for constraints that have
	// a second solution branch (ANGLE's supplementary angle, an arc's
	// other endpoint, a cubic's other control point).
	Other bool

	// Reference marks a measurement-only constraint: Generate emits no
	// equations for it.
	Reference bool
}

// Group is a versioning unit: one Solve call operates on exactly one
// group, treating previously solved groups' parameters as constants.
type Group struct {
	Handle GroupHandle
}

// ParamStore is indexed lookup plus group iteration over parameters.
type ParamStore interface {
	Param(ParamHandle) *Parameter
	ParamsInGroup(GroupHandle) []ParamHandle
}

// EntityStore is indexed lookup plus group iteration over entities.
type EntityStore interface {
	Entity(EntityHandle) *Entity
	EntitiesInGroup(GroupHandle) []EntityHandle
}

// ConstraintStore is indexed lookup plus group iteration over constraints.
type ConstraintStore interface {
	Constraint(ConstraintHandle) *Constraint
	ConstraintsInGroup(GroupHandle) []ConstraintHandle
}

// DragHint exposes the parameters underlying whatever the user is
// currently, interactively dragging (a point, a circle's radius, a
// normal). The solver consults it only to bias substitution and column
// scaling; it never mutates the hint.
type DragHint interface {
	DraggedParams() []ParamHandle
}

// Store bundles the four interfaces a Solve call needs.
type Store interface {
	ParamStore
	EntityStore
	ConstraintStore
	DragHint
}
