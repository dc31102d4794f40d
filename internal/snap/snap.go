/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package snap aligns moving layers to the page and to their siblings, and
// snaps rotation angles. It is UI-agnostic and deterministic.
package snap

import (
	"math"

	"pagecomposer/internal/geom"
	"pagecomposer/internal/scene"
)

const (
	DefaultThreshold         = 8.0
	DefaultAngleStep         = 15.0
	DefaultCardinalTolerance = 4.0
	// GuideTolerance is how close to a cardinal angle rotation guides appear.
	GuideTolerance = 2.0
)

const (
	Vertical   = "vertical"
	Horizontal = "horizontal"

	KindEdge   = "edge"
	KindCenter = "center"
)

var cardinals = [4]float64{0, 90, 180, 270}

// Guide describes a visual guide line for an alignment that took effect.
// Position is the x of a vertical guide or the y of a horizontal one.
type Guide struct {
	Orientation string
	Kind        string
	Position    float64
	From        geom.Pt
	To          geom.Pt
}

// Result is the snapped top-left position and the guides to draw.
type Result struct {
	X, Y   float64
	Guides []Guide
}

func vertical(page *scene.Page, x float64, kind string) Guide {
	return Guide{Orientation: Vertical, Kind: kind, Position: x, From: geom.Pt{X: x}, To: geom.Pt{X: x, Y: page.H}}
}

func horizontal(page *scene.Page, y float64, kind string) Guide {
	return Guide{Orientation: Horizontal, Kind: kind, Position: y, From: geom.Pt{Y: y}, To: geom.Pt{X: page.W, Y: y}}
}

// Move snaps the candidate box of moving. The page edges and center are
// examined first, then every other layer in list order; each match within
// threshold overrides earlier ones on its axis and adds a guide. Center
// alignments round to whole pixels. The result is clamped so the box stays
// on the page.
func Move(page *scene.Page, moving scene.Layer, box geom.Rect, threshold float64) Result {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	x, y, w, h := box.X, box.Y, box.W, box.H
	res := Result{X: x, Y: y}
	near := func(a, b float64) bool { return math.Abs(a-b) <= threshold }

	if near(x, 0) {
		res.X = 0
		res.Guides = append(res.Guides, vertical(page, 0, KindEdge))
	}
	if near(x+w, page.W) {
		res.X = page.W - w
		res.Guides = append(res.Guides, vertical(page, page.W, KindEdge))
	}
	if cx := page.W / 2; near(x+w/2, cx) {
		res.X = geom.RoundHalfUp(cx - w/2)
		res.Guides = append(res.Guides, vertical(page, cx, KindCenter))
	}
	if near(y, 0) {
		res.Y = 0
		res.Guides = append(res.Guides, horizontal(page, 0, KindEdge))
	}
	if near(y+h, page.H) {
		res.Y = page.H - h
		res.Guides = append(res.Guides, horizontal(page, page.H, KindEdge))
	}
	if cy := page.H / 2; near(y+h/2, cy) {
		res.Y = geom.RoundHalfUp(cy - h/2)
		res.Guides = append(res.Guides, horizontal(page, cy, KindCenter))
	}

	for _, other := range page.Layers {
		if moving != nil && other.ID() == moving.ID() {
			continue
		}
		om := other.Measure()
		if near(x, om.X) {
			res.X = om.X
			res.Guides = append(res.Guides, vertical(page, om.X, KindEdge))
		}
		if r := om.X + om.W; near(x+w, r) {
			res.X = r - w
			res.Guides = append(res.Guides, vertical(page, r, KindEdge))
		}
		if cx := om.X + om.W/2; near(x+w/2, cx) {
			res.X = geom.RoundHalfUp(cx - w/2)
			res.Guides = append(res.Guides, vertical(page, cx, KindCenter))
		}
		if near(y, om.Y) {
			res.Y = om.Y
			res.Guides = append(res.Guides, horizontal(page, om.Y, KindEdge))
		}
		if b := om.Y + om.H; near(y+h, b) {
			res.Y = b - h
			res.Guides = append(res.Guides, horizontal(page, b, KindEdge))
		}
		if cy := om.Y + om.H/2; near(y+h/2, cy) {
			res.Y = geom.RoundHalfUp(cy - h/2)
			res.Guides = append(res.Guides, horizontal(page, cy, KindCenter))
		}
	}

	res.X = clamp(res.X, page.W-w)
	res.Y = clamp(res.Y, page.H-h)
	return res
}

// clamp limits v to [0, hi]; a box larger than the page pins to 0.
func clamp(v, hi float64) float64 {
	return math.Max(0, math.Min(v, hi))
}

// Angle snaps deg. With modifier it rounds to the nearest multiple of step;
// otherwise it snaps to a cardinal angle within tolerance and passes any
// other value through.
func Angle(deg float64, modifier bool, step, tolerance float64) float64 {
	if step <= 0 {
		step = DefaultAngleStep
	}
	if tolerance <= 0 {
		tolerance = DefaultCardinalTolerance
	}
	if modifier {
		return geom.RoundHalfUp(deg/step) * step
	}
	for _, c := range cardinals {
		if geom.AngleDist(deg, c) <= tolerance {
			return c
		}
	}
	return deg
}

// NearCardinal reports whether deg is within tol of 0, 90, 180 or 270.
func NearCardinal(deg, tol float64) bool {
	for _, c := range cardinals {
		if geom.AngleDist(deg, c) <= tol {
			return true
		}
	}
	return false
}

// RotationGuides returns a horizontal and a vertical guide through center
// spanning the page.
func RotationGuides(page *scene.Page, center geom.Pt) []Guide {
	return []Guide{
		horizontal(page, center.Y, KindCenter),
		vertical(page, center.X, KindCenter),
	}
}
