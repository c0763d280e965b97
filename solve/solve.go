// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package solve implements the system assembler and numerical solver:
// equation-by-parameter substitution, symbolic-then-numeric Jacobian
// construction, Gauss-Newton iteration with a Gram-matrix least-squares
// step, a Gram-Schmidt rank test, and diagnostic removal of offending
// constraints. Ported from original_source/system.cpp; see DESIGN.md.
package solve

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/jsgf/solvespace/constraint"
	"github.com/jsgf/solvespace/expr"
	"github.com/jsgf/solvespace/geom"
	"github.com/jsgf/solvespace/store"
)

// Tunable constants of the solver. They are unexported; the generator in
// package constraint writes its own arc-bucket thresholds inline.
const (
	rankMagTolerance  = 1e-4
	convergeTolerance = 1e-10
	pivotFloor        = 1e-20
	maxNewtonIters     = 50
	draggedColumnScale = 1.0 / 20.0
	arcBucketLow       = 3 * math.Pi / 4
	arcBucketHigh      = 5 * math.Pi / 4
)

// Status is the outcome of a Solve call, reported as data rather than
// as an error: an unsatisfiable or underdetermined sketch is an expected
// outcome, not a programmer-error condition.
type Status int

const (
	OK Status = iota
	SingularJacobian
	DidntConverge
)

func (s Status) String() string {
	switch s {
	case OK:
		return "OK"
	case SingularJacobian:
		return "SINGULAR_JACOBIAN"
	case DidntConverge:
		return "DIDNT_CONVERGE"
	}
	return "UNKNOWN"
}

// Result is the "how did the last solve go" report: status, remaining
// degrees of freedom, and (on failure) the set of constraints implicated.
type Result struct {
	Status Status
	DOF    int
	Remove []store.ConstraintHandle
}

// localParam is the solver's own scratch row for one parameter: a local
// copy of the value plus tag/substitution bookkeeping, cleared at the
// start of every Solve and distinct from the store's Parameter (which is
// only ever written at commit). This bakes "borrowed read-only, written
// back only at commit" into the type system instead of relying on
// discipline.
type localParam struct {
	handle store.ParamHandle
	val    float64
	tag    store.ParamTag
	substd store.ParamHandle
	free   bool
	known  bool
}

// System is one solve's scratch state: equations, the local parameter
// shadow table, and the Jacobian workspace. Not safe for concurrent
// Solve calls; callers needing concurrency use one System per goroutine.
type System struct {
	Store    store.Store
	Geometry *geom.Ctx
	Verbose  bool // gate progress printing, mirroring ShowR

	eq    []row
	param []*localParam
	byh   map[store.ParamHandle]*localParam
	drag  map[store.ParamHandle]bool

	mat jacobian
}

type row struct {
	constraint store.ConstraintHandle
	expr       *expr.Expr
	tag        int
}

// jacobian is the dense workspace for one solve pass: symbolic and
// numeric Jacobian, right-hand side, column scale, the Gram matrix and
// its auxiliary vector, the step vector, and the row/column handle
// arrays that tag which equation/parameter each row/column belongs to.
type jacobian struct {
	eqHandles    []int // index into sys.eq of each active row
	paramHandles []store.ParamHandle

	symA [][]*expr.Expr
	numA [][]float64
	symB []*expr.Expr
	numB []float64

	scale []float64
	gram  [][]float64
	z     []float64
	x     []float64

	m, n int
}

// New creates a System bound to the given store and entity context.
func New(st store.Store, g *geom.Ctx) *System {
	return &System{Store: st, Geometry: g}
}

func allocMat(m, n int) [][]float64 {
	a := make([][]float64, m)
	for i := range a {
		a[i] = make([]float64, n)
	}
	return a
}

// reset clears all solver scratch state, borrowing the group's
// parameters (and those transitively referenced) read-only from the
// store.
func (s *System) reset(g store.GroupHandle) {
	s.eq = nil
	s.param = nil
	s.byh = map[store.ParamHandle]*localParam{}
	s.drag = map[store.ParamHandle]bool{}

	for _, h := range s.Store.DraggedParams() {
		s.drag[h] = true
	}

	for _, ph := range s.Store.ParamsInGroup(g) {
		p := s.Store.Param(ph)
		lp := &localParam{handle: ph, val: p.Val, known: p.Known}
		s.param = append(s.param, lp)
		s.byh[ph] = lp
	}
}

func (s *System) isDragged(h store.ParamHandle) bool { return s.drag[h] }

func (s *System) values() func(store.ParamHandle) float64 {
	return func(h store.ParamHandle) float64 {
		if lp, ok := s.byh[h]; ok {
			return lp.val
		}
		// Parameter belongs to a previously-solved (or later) group;
		// the store's own value is the frozen constant.
		return s.Store.Param(h).Val
	}
}

// WriteEquationsExceptFor gathers into s.eq every constraint equation of
// group hg except hc (store.NoConstraint excludes nothing), plus every
// entity-intrinsic equation of the group (currently: unit-quaternion
// normalization for each normal entity), and resets all row/param tags.
func (s *System) WriteEquationsExceptFor(hc store.ConstraintHandle, hg store.GroupHandle) {
	gen := &constraint.Generator{G: s.Geometry, Values: s.values()}

	for _, ch := range s.Store.ConstraintsInGroup(hg) {
		if ch == hc {
			continue
		}
		c := s.Store.Constraint(ch)
		for _, eq := range gen.Generate(c) {
			s.eq = append(s.eq, row{constraint: eq.Constraint, expr: eq.Expr})
		}
	}

	for _, eh := range s.Store.EntitiesInGroup(hg) {
		e := s.Store.Entity(eh)
		if e.Kind == store.NormalIn3D {
			qw := expr.Param(e.Param[0])
			qx := expr.Param(e.Param[1])
			qy := expr.Param(e.Param[2])
			qz := expr.Param(e.Param[3])
			sum := expr.Plus(expr.Plus(expr.Square(qw), expr.Square(qx)),
				expr.Plus(expr.Square(qy), expr.Square(qz)))
			s.eq = append(s.eq, row{expr: sum.Minus(expr.Const(1))})
		}
	}

	for i := range s.param {
		s.param[i].tag = store.TagNone
	}
	for i := range s.eq {
		s.eq[i].tag = 0
	}
}

// SolveBySubstitution walks equations looking for the pattern
// "(parameter a) − (parameter b)" where both a and b are local solver
// parameters, and eliminates one of them (preferring to keep whichever
// one is being dragged) by rewriting every equation and tagging the
// eliminated parameter SUBSTITUTED.
func (s *System) SolveBySubstitution() {
	for i := range s.eq {
		a, b, ok := expr.AsParamMinusParam(s.eq[i].expr)
		if !ok {
			continue
		}
		if _, aok := s.byh[a]; !aok {
			continue
		}
		if _, bok := s.byh[b]; !bok {
			continue
		}

		if s.isDragged(a) {
			a, b = b, a
		}

		for j := range s.eq {
			s.eq[j].expr = expr.Substitute(s.eq[j].expr, a, b)
		}
		for _, lp := range s.param {
			if lp.substd == a {
				lp.substd = b
			}
		}
		pa := s.byh[a]
		pa.tag = store.TagSubstituted
		pa.substd = b
		s.eq[i].tag = -1 // EQ_SUBSTITUTED sentinel, never a Jacobian tag
	}
}

// WriteJacobian restricts to the local parameters and equations carrying
// tag, folds each surviving equation's expression (which keeps referring
// to parameters by store handle), and fills in the symbolic Jacobian
// using the 61-bit bloom to skip partials that are definitionally zero.
func (s *System) WriteJacobian(tag int) {
	s.mat = jacobian{}

	for _, lp := range s.param {
		if lp.tag != store.ParamTag(tag) {
			continue
		}
		s.mat.paramHandles = append(s.mat.paramHandles, lp.handle)
	}
	s.mat.n = len(s.mat.paramHandles)

	for i := range s.eq {
		if s.eq[i].tag != tag {
			continue
		}
		f := expr.FoldConstants(s.eq[i].expr)

		scoreboard := expr.ParamsUsed(f)
		partials := make([]*expr.Expr, s.mat.n)
		for j, ph := range s.mat.paramHandles {
			var pd *expr.Expr
			if scoreboard&bloomBit(ph) != 0 && expr.DependsOn(f, ph) {
				pd = expr.FoldConstants(expr.PartialWrt(f, ph))
			} else {
				pd = expr.Zero
			}
			partials[j] = pd
		}
		s.mat.symA = append(s.mat.symA, partials)
		s.mat.symB = append(s.mat.symB, f)
		s.mat.eqHandles = append(s.mat.eqHandles, i)
	}
	s.mat.m = len(s.mat.symB)

	s.mat.numA = allocMat(s.mat.m, s.mat.n)
	s.mat.numB = make([]float64, s.mat.m)
	s.mat.scale = make([]float64, s.mat.n)
	s.mat.gram = allocMat(s.mat.m, s.mat.m)
	s.mat.z = make([]float64, s.mat.m)
	s.mat.x = make([]float64, s.mat.n)
}

func bloomBit(h store.ParamHandle) expr.Bloom {
	return 1 << (uint64(h) % 61)
}

// EvalJacobian fills the numeric Jacobian and right-hand side from the
// symbolic ones, at the current local parameter values.
func (s *System) EvalJacobian() {
	vals := s.values()
	for i := 0; i < s.mat.m; i++ {
		for j := 0; j < s.mat.n; j++ {
			s.mat.numA[i][j] = expr.Eval(s.mat.symA[i][j], vals)
		}
		s.mat.numB[i] = expr.Eval(s.mat.symB[i], vals)
	}
}

// solveLinearSystem solves a·z = b via Gaussian elimination with partial
// pivoting (row swap by largest absolute column pivot). A pivot below
// pivotFloor means the matrix is singular.
func solveLinearSystem(a [][]float64, b []float64, n int) (x []float64, ok bool) {
	// Operate on copies; the caller's a, b are scratch owned by the
	// Jacobian workspace and are not needed again this iteration.
	A := make([][]float64, n)
	for i := range A {
		A[i] = append([]float64(nil), a[i][:n]...)
	}
	B := append([]float64(nil), b[:n]...)

	for i := 0; i < n; i++ {
		max := 0.0
		imax := i
		for ip := i; ip < n; ip++ {
			if math.Abs(A[ip][i]) > max {
				max = math.Abs(A[ip][i])
				imax = ip
			}
		}
		if max < pivotFloor {
			return nil, false
		}
		A[i], A[imax] = A[imax], A[i]
		B[i], B[imax] = B[imax], B[i]

		for ip := i + 1; ip < n; ip++ {
			temp := A[ip][i] / A[i][i]
			for jp := i; jp < n; jp++ {
				A[ip][jp] -= temp * A[i][jp]
			}
			B[ip] -= temp * B[i]
		}
	}

	x = make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		if math.Abs(A[i][i]) < pivotFloor {
			return nil, false
		}
		temp := B[i]
		for j := n - 1; j > i; j-- {
			temp -= x[j] * A[i][j]
		}
		x[i] = temp / A[i][i]
	}
	return x, true
}

// solveLeastSquares scales the Jacobian's columns (dragged parameters
// get a smaller scale; as the step is multiplied by the scale once more
// on recovery, dragged parameters take smaller steps), forms the Gram
// matrix A·Aᵀ, solves it for z, and recovers the step x = Aᵀ·z rescaled
// by the per-column scale.
func (s *System) solveLeastSquares() bool {
	m, n := s.mat.m, s.mat.n

	for c := 0; c < n; c++ {
		if s.isDragged(s.mat.paramHandles[c]) {
			s.mat.scale[c] = draggedColumnScale
		} else {
			s.mat.scale[c] = 1
		}
		for r := 0; r < m; r++ {
			s.mat.numA[r][c] *= s.mat.scale[c]
		}
	}

	for r := 0; r < m; r++ {
		for c := 0; c < m; c++ {
			sum := 0.0
			for i := 0; i < n; i++ {
				sum += s.mat.numA[r][i] * s.mat.numA[c][i]
			}
			s.mat.gram[r][c] = sum
		}
	}

	z, ok := solveLinearSystem(s.mat.gram, s.mat.numB, m)
	if !ok {
		return false
	}
	s.mat.z = z

	for c := 0; c < n; c++ {
		sum := 0.0
		for i := 0; i < m; i++ {
			sum += s.mat.numA[i][c] * z[i]
		}
		s.mat.x[c] = sum * s.mat.scale[c]
	}
	return true
}

// NewtonSolve iterates up to maxNewtonIters times: evaluate, solve the
// least-squares step, apply it, re-evaluate, and check convergence. Not
// attempted (and reported as failure) if there are more equations than
// parameters: a least-squares step needs m ≤ n to be well posed.
func (s *System) NewtonSolve(tag int) bool {
	if s.mat.m > s.mat.n {
		return false
	}
	if s.mat.m == 0 {
		return true
	}

	vals := s.values()
	for i := range s.mat.symB {
		s.mat.numB[i] = expr.Eval(s.mat.symB[i], vals)
	}

	converged := false
	for iter := 0; iter < maxNewtonIters && !converged; iter++ {
		s.EvalJacobian()

		if !s.solveLeastSquares() {
			break
		}

		for i, ph := range s.mat.paramHandles {
			lp := s.byh[ph]
			lp.val -= s.mat.x[i]
			if math.IsNaN(lp.val) {
				return false
			}
		}

		vals = s.values()
		for i := range s.mat.symB {
			s.mat.numB[i] = expr.Eval(s.mat.symB[i], vals)
		}

		converged = true
		for i := range s.mat.numB {
			if math.IsNaN(s.mat.numB[i]) {
				return false
			}
			if math.Abs(s.mat.numB[i]) > convergeTolerance {
				converged = false
			}
		}
		if s.Verbose {
			io.Pf("  newton tag=%d iter=%d converged=%v\n", tag, iter, converged)
		}
	}
	return converged
}

// CalculateRank performs Gram-Schmidt orthogonalization on the numeric
// Jacobian in place, returning the number of rows whose remaining
// magnitude (after removing its projection onto earlier kept rows)
// exceeds rankMagTolerance.
func (s *System) CalculateRank() int {
	m, n := s.mat.m, s.mat.n
	tol := rankMagTolerance * rankMagTolerance
	rowMag := make([]float64, m)
	rank := 0

	for i := 0; i < m; i++ {
		for iprev := 0; iprev < i; iprev++ {
			if rowMag[iprev] <= tol {
				continue
			}
			dot := 0.0
			for j := 0; j < n; j++ {
				dot += s.mat.numA[iprev][j] * s.mat.numA[i][j]
			}
			for j := 0; j < n; j++ {
				s.mat.numA[i][j] -= (dot / rowMag[iprev]) * s.mat.numA[iprev][j]
			}
		}
		mag := 0.0
		for j := 0; j < n; j++ {
			mag += s.mat.numA[i][j] * s.mat.numA[i][j]
		}
		if mag > tol {
			rank++
		}
		rowMag[i] = mag
	}
	return rank
}

// solveAlonePass isolates single-parameter equations (those whose
// ReferencedParams yields exactly one untagged local parameter) and
// solves each alone, round-robin, with a fresh tag per equation. This is
// a large speedup; an unconvergent alone equation aborts the whole solve
// rather than being isolated for separate diagnosis.
func (s *System) solveAlonePass() bool {
	inTable := func(h store.ParamHandle) bool {
		lp, ok := s.byh[h]
		return ok && lp.tag == store.TagNone
	}

	alone := 1
	for i := range s.eq {
		if s.eq[i].tag != 0 {
			continue
		}
		hp, kind := expr.ReferencedParams(s.eq[i].expr, inTable)
		if kind != expr.SingleParam {
			continue
		}
		lp := s.byh[hp]
		if lp.tag != store.TagNone {
			continue
		}

		s.eq[i].tag = alone
		lp.tag = store.ParamTag(alone)
		s.WriteJacobian(alone)
		if !s.NewtonSolve(alone) {
			return false
		}
		alone++
	}
	return true
}

// findWhichToRemoveToFixJacobian runs two passes over the group's
// constraints — non-coincidence first, then POINTS_COINCIDENT — removing
// each candidate in turn, rebuilding the system, and checking whether
// the rank becomes full; every constraint whose removal fixes the rank
// is added to the remove set. Point-coincidence constraints are tried
// last because removing one tends to be a much bigger, blunter fix than
// removing a scalar dimension.
func (s *System) findWhichToRemoveToFixJacobian(g store.GroupHandle) []store.ConstraintHandle {
	var remove []store.ConstraintHandle

	for pass := 0; pass < 2; pass++ {
		for _, ch := range s.Store.ConstraintsInGroup(g) {
			c := s.Store.Constraint(ch)
			isCoincident := c.Kind == store.PointsCoincident
			if (isCoincident && pass == 0) || (!isCoincident && pass == 1) {
				continue
			}

			s.reset(g)
			s.eq = nil
			s.WriteEquationsExceptFor(ch, g)
			s.SolveBySubstitution()
			s.WriteJacobian(0)
			s.EvalJacobian()

			if s.CalculateRank() == s.mat.m {
				remove = append(remove, ch)
			}
		}
	}
	return remove
}

// Solve drives parameters of group g to satisfy every constraint in that
// group, reporting the outcome. On success, parameter values and Known
// flags are written back to the store; on failure, the store is left
// untouched and Result.Remove names the implicated constraints.
func (s *System) Solve(g store.GroupHandle, andFindFree bool) Result {
	s.reset(g)
	s.WriteEquationsExceptFor(store.NoConstraint, g)

	s.SolveBySubstitution()

	if !s.solveAlonePass() {
		return s.didntConverge(g)
	}

	s.WriteJacobian(0)
	s.EvalJacobian()

	rank := s.CalculateRank()
	if rank != s.mat.m {
		remove := s.findWhichToRemoveToFixJacobian(g)
		return Result{Status: SingularJacobian, DOF: 0, Remove: remove}
	}
	dof := s.mat.n - s.mat.m

	if !s.NewtonSolve(0) {
		return s.didntConverge(g)
	}

	if andFindFree {
		for _, lp := range s.param {
			lp.free = false
			if lp.tag != store.TagNone {
				continue
			}
			lp.tag = store.TagDOFTest
			s.WriteJacobian(0)
			s.EvalJacobian()
			if s.CalculateRank() == s.mat.m {
				lp.free = true
			}
			lp.tag = store.TagNone
		}
	}

	s.commit()
	return Result{Status: OK, DOF: dof}
}

func (s *System) commit() {
	for _, lp := range s.param {
		val := lp.val
		if lp.tag == store.TagSubstituted {
			target := s.byh[lp.substd]
			val = target.val
		}
		p := s.Store.Param(lp.handle)
		p.Val = val
		p.Known = true
		p.Free = lp.free
	}
}

func (s *System) didntConverge(g store.GroupHandle) Result {
	seen := map[store.ConstraintHandle]bool{}
	var remove []store.ConstraintHandle
	for i := range s.eq {
		v := expr.Eval(s.eq[i].expr, s.values())
		if math.Abs(v) > convergeTolerance || math.IsNaN(v) {
			ch := s.eq[i].constraint
			if ch == store.NoConstraint || seen[ch] {
				continue
			}
			seen[ch] = true
			remove = append(remove, ch)
		}
	}
	return Result{Status: DidntConverge, Remove: remove}
}

// Generate exposes the constraint generator's raw equations outside of a
// Solve call, for consumers such as a constraint designer that want to
// inspect what a constraint compiles to.
func Generate(g *geom.Ctx, values func(store.ParamHandle) float64, c *store.Constraint) []constraint.Equation {
	gen := &constraint.Generator{G: g, Values: values}
	return gen.Generate(c)
}

// ModifyToSatisfy recomputes c's scalar dimension to match current
// geometry; see constraint.Generator.ModifyToSatisfy.
func ModifyToSatisfy(g *geom.Ctx, values func(store.ParamHandle) float64, c *store.Constraint) {
	gen := &constraint.Generator{G: g, Values: values}
	gen.ModifyToSatisfy(c)
}

func init() {
	// sanity: these constants are part of a stable tunable contract;
	// a mismatch here is a programmer error, not data.
	if arcBucketLow >= arcBucketHigh {
		chk.Panic("solve: arc angle bucket thresholds out of order")
	}
}
