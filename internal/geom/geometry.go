/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package geom holds the 2D primitives shared by the scene model, hit-testing
// and snapping: points, axis-aligned boxes, affine transforms and rotation
// about a box center. Angles in the public API are degrees; 0 is unrotated and
// positive values rotate clockwise in page coordinates (y grows downwards).
package geom

import "math"

// Pt is a 2D point in page units.
type Pt struct{ X, Y float64 }

// Size is a width/height pair.
type Size struct{ W, H float64 }

// Rect is an axis-aligned rectangle defined by its top-left corner and size.
type Rect struct {
	X, Y float64
	W, H float64
}

func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

func (r Rect) Min() Pt    { return Pt{r.X, r.Y} }
func (r Rect) Max() Pt    { return Pt{r.X + r.W, r.Y + r.H} }
func (r Rect) Center() Pt { return Pt{r.X + r.W/2, r.Y + r.H/2} }
func (r Rect) Size() Size { return Size{r.W, r.H} }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Pt) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.X+r.W && p.Y <= r.Y+r.H
}

// Union returns the minimal rect containing both.
func (r Rect) Union(o Rect) Rect {
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.X+r.W, o.X+o.W)
	maxY := math.Max(r.Y+r.H, o.Y+o.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Corners returns the four corners of r in nw, ne, se, sw order.
func (r Rect) Corners() [4]Pt {
	return [4]Pt{
		{r.X, r.Y},
		{r.X + r.W, r.Y},
		{r.X + r.W, r.Y + r.H},
		{r.X, r.Y + r.H},
	}
}

// Affine2D represents a 2D affine transform as matrix:
// | a c e |
// | b d f |
// | 0 0 1 |
type Affine2D struct{ A, B, C, D, E, F float64 }

var Identity = Affine2D{A: 1, D: 1}

// Mul returns m·n (n is applied first).
func (m Affine2D) Mul(n Affine2D) Affine2D {
	return Affine2D{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

func (m Affine2D) Apply(p Pt) Pt {
	return Pt{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

// Invert returns the inverse transform; singular matrices yield Identity.
func (m Affine2D) Invert() Affine2D {
	det := m.A*m.D - m.B*m.C
	if det == 0 {
		return Identity
	}
	inv := 1 / det
	return Affine2D{
		A: m.D * inv,
		B: -m.B * inv,
		C: -m.C * inv,
		D: m.A * inv,
		E: (m.C*m.F - m.D*m.E) * inv,
		F: (m.B*m.E - m.A*m.F) * inv,
	}
}

func Translate(tx, ty float64) Affine2D { return Affine2D{A: 1, D: 1, E: tx, F: ty} }
func Scale(sx, sy float64) Affine2D     { return Affine2D{A: sx, D: sy} }
func Rotate(rad float64) Affine2D {
	s, c := math.Sincos(rad)
	return Affine2D{A: c, B: s, C: -s, D: c}
}

// RotateAbout returns the rotation by deg degrees around center c.
func RotateAbout(c Pt, deg float64) Affine2D {
	return Translate(c.X, c.Y).Mul(Rotate(Radians(deg))).Mul(Translate(-c.X, -c.Y))
}

// RotatePoint rotates p around c by deg degrees.
func RotatePoint(p, c Pt, deg float64) Pt {
	s, co := math.Sincos(Radians(deg))
	dx, dy := p.X-c.X, p.Y-c.Y
	return Pt{X: c.X + dx*co - dy*s, Y: c.Y + dx*s + dy*co}
}

// RotatedCorners returns r's corners (nw, ne, se, sw) rotated by deg about r's center.
func RotatedCorners(r Rect, deg float64) [4]Pt {
	c := r.Center()
	out := r.Corners()
	for i := range out {
		out[i] = RotatePoint(out[i], c, deg)
	}
	return out
}

// ContainsRotated reports whether p lies inside r rotated by deg about its center.
func ContainsRotated(r Rect, deg float64, p Pt) bool {
	return r.Contains(RotatePoint(p, r.Center(), -deg))
}

// Dist is the Euclidean distance between p and q.
func Dist(p, q Pt) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

func Radians(deg float64) float64 { return deg * math.Pi / 180 }
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }

// AngleTo returns the angle in degrees of the vector from c to p, in (-180, 180].
func AngleTo(c, p Pt) float64 { return Degrees(math.Atan2(p.Y-c.Y, p.X-c.X)) }

// NormalizeDeg maps deg into [0, 360).
func NormalizeDeg(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	if d == 360 {
		return 0
	}
	return d
}

// AngleDist is the circular distance between two angles in degrees, in [0, 180].
func AngleDist(a, b float64) float64 {
	d := NormalizeDeg(a - b)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// Round rounds v to n decimal places deterministically.
func Round(v float64, places int) float64 {
	if places < 0 {
		return v
	}
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}

// RoundHalfUp rounds to the nearest integer with halves going toward +Inf,
// so -2.5 becomes -2.
func RoundHalfUp(v float64) float64 { return math.Floor(v + 0.5) }
