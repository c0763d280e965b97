// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package expr implements the symbolic expression DAG the constraint
// generator builds equations from: constants, parameter references, and
// unary/binary arithmetic operators, with analytic substitution and
// partial differentiation. Nodes are immutable; every operation returns a
// fresh node, sharing unchanged subtrees with its input.
package expr

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/jsgf/solvespace/store"
)

// Bloom is a cheap 61-bit summary of the parameter handles an Expr
// mentions: bit (h mod 61) is set for every referenced handle h. A zero
// AND of two blooms proves disjointness; a nonzero AND does not prove
// the reverse, so it is only ever used to short-circuit, never to decide.
type Bloom uint64

const bloomModulus = 61

func bloomBit(h store.ParamHandle) Bloom {
	return 1 << (uint64(h) % bloomModulus)
}

// op identifies a node's operator. Kept as a single tagged field (rather
// than a type hierarchy) per the "dynamic dispatch on constraint kind"
// design note: the same reasoning applies one layer down, to expression
// nodes.
type op int

const (
	opConst op = iota
	opParam
	opNegate
	opSquare
	opSqrt
	opSin
	opCos
	opASin
	opACos
	opPlus
	opMinus
	opTimes
	opDivide
)

// Expr is one immutable node of the expression DAG.
type Expr struct {
	kind op
	val  float64          // opConst
	parm store.ParamHandle // opParam
	a, b *Expr            // operands; b is nil for unary ops and opConst/opParam
}

// Const builds a constant-valued leaf.
func Const(v float64) *Expr {
	return &Expr{kind: opConst, val: v}
}

// Zero is the constant 0, used pervasively enough to give it a name.
var Zero = Const(0)

// One is the constant 1.
var One = Const(1)

// Param builds a leaf referencing a parameter by handle.
func Param(h store.ParamHandle) *Expr {
	return &Expr{kind: opParam, parm: h}
}

func binary(k op, a, b *Expr) *Expr {
	if a == nil || b == nil {
		chk.Panic("expr: binary op %d built with a nil operand", k)
	}
	return &Expr{kind: k, a: a, b: b}
}

func unary(k op, a *Expr) *Expr {
	if a == nil {
		chk.Panic("expr: unary op %d built with a nil operand", k)
	}
	return &Expr{kind: k, a: a}
}

// Plus, Minus, Times, Divide build the four binary arithmetic nodes.
func Plus(a, b *Expr) *Expr   { return binary(opPlus, a, b) }
func Minus(a, b *Expr) *Expr  { return binary(opMinus, a, b) }
func Times(a, b *Expr) *Expr  { return binary(opTimes, a, b) }
func Divide(a, b *Expr) *Expr { return binary(opDivide, a, b) }

// Negate, Square, Sqrt, Sin, Cos, ASin, ACos build the unary nodes.
func Negate(a *Expr) *Expr { return unary(opNegate, a) }
func Square(a *Expr) *Expr { return unary(opSquare, a) }
func Sqrt(a *Expr) *Expr   { return unary(opSqrt, a) }
func Sin(a *Expr) *Expr    { return unary(opSin, a) }
func Cos(a *Expr) *Expr    { return unary(opCos, a) }
func ASin(a *Expr) *Expr   { return unary(opASin, a) }
func ACos(a *Expr) *Expr   { return unary(opACos, a) }

// Method forms, mirroring the original's fluent Expr::Plus/Minus/... API
// so constraint generation code reads the same way as constrainteq.cpp.
func (e *Expr) Plus(b *Expr) *Expr  { return Plus(e, b) }
func (e *Expr) Minus(b *Expr) *Expr { return Minus(e, b) }
func (e *Expr) Times(b *Expr) *Expr { return Times(e, b) }
func (e *Expr) Div(b *Expr) *Expr   { return Divide(e, b) }
func (e *Expr) Negate() *Expr       { return Negate(e) }
func (e *Expr) Square() *Expr       { return Square(e) }
func (e *Expr) Sqrt() *Expr         { return Sqrt(e) }
func (e *Expr) Sin() *Expr          { return Sin(e) }
func (e *Expr) Cos() *Expr          { return Cos(e) }
func (e *Expr) ASin() *Expr         { return ASin(e) }
func (e *Expr) ACos() *Expr         { return ACos(e) }

// Eval computes the numeric value of e given every parameter's current
// value. Division by zero and out-of-domain trig propagate as NaN; the
// caller detects this with math.IsNaN, never a trap.
func Eval(e *Expr, values func(store.ParamHandle) float64) float64 {
	switch e.kind {
	case opConst:
		return e.val
	case opParam:
		return values(e.parm)
	case opNegate:
		return -Eval(e.a, values)
	case opSquare:
		v := Eval(e.a, values)
		return v * v
	case opSqrt:
		return math.Sqrt(Eval(e.a, values))
	case opSin:
		return math.Sin(Eval(e.a, values))
	case opCos:
		return math.Cos(Eval(e.a, values))
	case opASin:
		return math.Asin(Eval(e.a, values))
	case opACos:
		return math.Acos(Eval(e.a, values))
	case opPlus:
		return Eval(e.a, values) + Eval(e.b, values)
	case opMinus:
		return Eval(e.a, values) - Eval(e.b, values)
	case opTimes:
		return Eval(e.a, values) * Eval(e.b, values)
	case opDivide:
		d := Eval(e.b, values)
		if d == 0 {
			return math.NaN()
		}
		return Eval(e.a, values) / d
	}
	chk.Panic("expr: Eval: unhandled op %d", e.kind)
	return math.NaN()
}

// Vals is a convenience values-function built from a plain map, used by
// tests and small examples; production callers typically close over a
// store.ParamStore instead.
func Vals(m map[store.ParamHandle]float64) func(store.ParamHandle) float64 {
	return func(h store.ParamHandle) float64 { return m[h] }
}

// Substitute returns a DAG with every reference to parameter a rewritten
// to reference parameter b instead. Unchanged subtrees are shared with e.
func Substitute(e *Expr, a, b store.ParamHandle) *Expr {
	switch e.kind {
	case opConst:
		return e
	case opParam:
		if e.parm == a {
			return Param(b)
		}
		return e
	case opNegate, opSquare, opSqrt, opSin, opCos, opASin, opACos:
		na := Substitute(e.a, a, b)
		if na == e.a {
			return e
		}
		return &Expr{kind: e.kind, a: na}
	default: // binary
		na := Substitute(e.a, a, b)
		nb := Substitute(e.b, a, b)
		if na == e.a && nb == e.b {
			return e
		}
		return &Expr{kind: e.kind, a: na, b: nb}
	}
}

// PartialWrt returns the symbolic partial derivative of e with respect to
// parameter p, following the standard rules: d(const)=0, dp/dp=1 else 0,
// linearity, product rule, quotient rule, and the chain rule for the six
// trig/root unaries. The result is not folded; callers fold separately,
// matching the original's WriteJacobian which folds before and after.
func PartialWrt(e *Expr, p store.ParamHandle) *Expr {
	switch e.kind {
	case opConst:
		return Zero
	case opParam:
		if e.parm == p {
			return One
		}
		return Zero
	case opNegate:
		return Negate(PartialWrt(e.a, p))
	case opSquare:
		// d(a^2) = 2*a*da
		return Times(Times(Const(2), e.a), PartialWrt(e.a, p))
	case opSqrt:
		// d(sqrt(a)) = da / (2*sqrt(a))
		return Divide(PartialWrt(e.a, p), Times(Const(2), Sqrt(e.a)))
	case opSin:
		return Times(Cos(e.a), PartialWrt(e.a, p))
	case opCos:
		return Negate(Times(Sin(e.a), PartialWrt(e.a, p)))
	case opASin:
		// d(asin(a)) = da / sqrt(1 - a^2)
		return Divide(PartialWrt(e.a, p), Sqrt(Minus(One, Square(e.a))))
	case opACos:
		// d(acos(a)) = -da / sqrt(1 - a^2)
		return Negate(Divide(PartialWrt(e.a, p), Sqrt(Minus(One, Square(e.a)))))
	case opPlus:
		return Plus(PartialWrt(e.a, p), PartialWrt(e.b, p))
	case opMinus:
		return Minus(PartialWrt(e.a, p), PartialWrt(e.b, p))
	case opTimes:
		// product rule: d(a*b) = da*b + a*db
		return Plus(Times(PartialWrt(e.a, p), e.b), Times(e.a, PartialWrt(e.b, p)))
	case opDivide:
		// quotient rule: d(a/b) = (da*b - a*db) / b^2
		num := Minus(Times(PartialWrt(e.a, p), e.b), Times(e.a, PartialWrt(e.b, p)))
		return Divide(num, Square(e.b))
	}
	chk.Panic("expr: PartialWrt: unhandled op %d", e.kind)
	return Zero
}

// FoldConstants is a peephole simplifier. It collapses x±0, x·1, x·0,
// x/1, and literal-op-literal into a single constant, and recurses
// bottom-up so a fold at one level can enable one above it.
func FoldConstants(e *Expr) *Expr {
	switch e.kind {
	case opConst, opParam:
		return e
	case opNegate, opSquare, opSqrt, opSin, opCos, opASin, opACos:
		a := FoldConstants(e.a)
		if a.kind == opConst {
			return Const(Eval(&Expr{kind: e.kind, a: a}, nil))
		}
		if a == e.a {
			return e
		}
		return &Expr{kind: e.kind, a: a}
	default:
		a := FoldConstants(e.a)
		b := FoldConstants(e.b)
		if a.kind == opConst && b.kind == opConst {
			return Const(Eval(&Expr{kind: e.kind, a: a, b: b}, nil))
		}
		switch e.kind {
		case opPlus:
			if isZero(a) {
				return b
			}
			if isZero(b) {
				return a
			}
		case opMinus:
			if isZero(b) {
				return a
			}
		case opTimes:
			if isZero(a) || isZero(b) {
				return Zero
			}
			if isOne(a) {
				return b
			}
			if isOne(b) {
				return a
			}
		case opDivide:
			if isOne(b) {
				return a
			}
		}
		if a == e.a && b == e.b {
			return e
		}
		return &Expr{kind: e.kind, a: a, b: b}
	}
}

func isZero(e *Expr) bool { return e.kind == opConst && e.val == 0 }
func isOne(e *Expr) bool  { return e.kind == opConst && e.val == 1 }

// DependsOn reports whether e mentions parameter p anywhere in its tree.
func DependsOn(e *Expr, p store.ParamHandle) bool {
	switch e.kind {
	case opConst:
		return false
	case opParam:
		return e.parm == p
	case opNegate, opSquare, opSqrt, opSin, opCos, opASin, opACos:
		return DependsOn(e.a, p)
	default:
		return DependsOn(e.a, p) || DependsOn(e.b, p)
	}
}

// ParamsUsed returns the 61-bit bloom of every parameter handle e
// mentions, used to short-circuit partials that are definitionally zero
// before paying for a full DependsOn walk.
func ParamsUsed(e *Expr) Bloom {
	switch e.kind {
	case opConst:
		return 0
	case opParam:
		return bloomBit(e.parm)
	case opNegate, opSquare, opSqrt, opSin, opCos, opASin, opACos:
		return ParamsUsed(e.a)
	default:
		return ParamsUsed(e.a) | ParamsUsed(e.b)
	}
}

// RefKind classifies the result of ReferencedParams.
type RefKind int

const (
	// NoParams means the expression mentions no parameter from the
	// table passed to ReferencedParams.
	NoParams RefKind = iota
	// SingleParam means it mentions exactly one.
	SingleParam
	// MultipleParams means it mentions two or more.
	MultipleParams
)

// ReferencedParams walks e and classifies how many distinct parameters,
// among those present in inTable, it mentions. Used by the solver's
// "alone" pass to find equations solvable in a single unknown.
func ReferencedParams(e *Expr, inTable func(store.ParamHandle) bool) (store.ParamHandle, RefKind) {
	seen := map[store.ParamHandle]bool{}
	var walk func(*Expr)
	walk = func(n *Expr) {
		switch n.kind {
		case opConst:
			return
		case opParam:
			if inTable(n.parm) {
				seen[n.parm] = true
			}
		case opNegate, opSquare, opSqrt, opSin, opCos, opASin, opACos:
			walk(n.a)
		default:
			walk(n.a)
			walk(n.b)
		}
	}
	walk(e)
	switch len(seen) {
	case 0:
		return 0, NoParams
	case 1:
		for h := range seen {
			return h, SingleParam
		}
	}
	return 0, MultipleParams
}

// AsParamMinusParam reports whether e is exactly "(param a) - (param b)",
// the pattern the solver's substitution pass looks for to eliminate one
// parameter entirely rather than carry it through the Jacobian.
func AsParamMinusParam(e *Expr) (a, b store.ParamHandle, ok bool) {
	if e.kind != opMinus {
		return 0, 0, false
	}
	if e.a.kind != opParam || e.b.kind != opParam {
		return 0, 0, false
	}
	return e.a.parm, e.b.parm, true
}

