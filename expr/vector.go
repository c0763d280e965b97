// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

// Vector is a 3-component vector of expressions, the currency the entity
// algebra and constraint generator pass around for points and direction
// vectors. A planar (u,v) pair is just two bare *Expr and needs no
// wrapper.
type Vector struct {
	X, Y, Z *Expr
}

// Vec3 builds a Vector from three expressions.
func Vec3(x, y, z *Expr) Vector { return Vector{x, y, z} }

// Plus returns a + b, component-wise.
func (a Vector) Plus(b Vector) Vector {
	return Vector{Plus(a.X, b.X), Plus(a.Y, b.Y), Plus(a.Z, b.Z)}
}

// Minus returns a - b, component-wise.
func (a Vector) Minus(b Vector) Vector {
	return Vector{Minus(a.X, b.X), Minus(a.Y, b.Y), Minus(a.Z, b.Z)}
}

// ScaledBy returns a scaled by the scalar expression s.
func (a Vector) ScaledBy(s *Expr) Vector {
	return Vector{Times(a.X, s), Times(a.Y, s), Times(a.Z, s)}
}

// Dot returns the scalar dot product a·b.
func (a Vector) Dot(b Vector) *Expr {
	return Plus(Plus(Times(a.X, b.X), Times(a.Y, b.Y)), Times(a.Z, b.Z))
}

// Cross returns the vector cross product a×b.
func (a Vector) Cross(b Vector) Vector {
	return Vector{
		Minus(Times(a.Y, b.Z), Times(a.Z, b.Y)),
		Minus(Times(a.Z, b.X), Times(a.X, b.Z)),
		Minus(Times(a.X, b.Y), Times(a.Y, b.X)),
	}
}

// Magnitude returns sqrt(a·a).
func (a Vector) Magnitude() *Expr {
	return Sqrt(a.Dot(a))
}

// WithMagnitude returns a rescaled to have the given magnitude, i.e.
// a scaled by (m / |a|).
func (a Vector) WithMagnitude(m *Expr) Vector {
	return a.ScaledBy(Divide(m, a.Magnitude()))
}

// Components returns the vector's three expressions as a slice, indexed
// 0,1,2 = x,y,z.
func (a Vector) Components() [3]*Expr {
	return [3]*Expr{a.X, a.Y, a.Z}
}
