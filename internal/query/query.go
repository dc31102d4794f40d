/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package query answers geometric questions about the layers of a page:
// where a layer's rotated corners and rotate handle are, and what lies
// under a pointer.
package query

import (
	"math"

	"pagecomposer/internal/geom"
	"pagecomposer/internal/scene"
)

// HitKind says which part of a layer was hit.
type HitKind int

const (
	HitNone HitKind = iota
	HitHandle
	HitRotate
	HitBody
)

func (k HitKind) String() string {
	switch k {
	case HitHandle:
		return "handle"
	case HitRotate:
		return "rotate"
	case HitBody:
		return "body"
	default:
		return "none"
	}
}

// Handle names a corner resize handle.
type Handle string

const (
	HandleNW Handle = "nw"
	HandleNE Handle = "ne"
	HandleSE Handle = "se"
	HandleSW Handle = "sw"
)

// handles is in Corners order.
var handles = [4]Handle{HandleNW, HandleNE, HandleSE, HandleSW}

// Hit is the result of a successful hit test.
type Hit struct {
	Layer  scene.Layer
	Kind   HitKind
	Handle Handle // set for HitHandle
}

// Options tune hit testing. Zero fields take the defaults.
type Options struct {
	// HandleTolerance is the per-axis distance to a corner counted as a handle hit.
	HandleTolerance float64
	// RotateDistance pushes the rotate handle out from the top edge midpoint.
	RotateDistance float64
	// RotateRadius is the Euclidean hit radius of the rotate handle.
	RotateRadius float64
	// SkipHidden excludes invisible layers.
	SkipHidden bool
}

func DefaultOptions() Options {
	return Options{HandleTolerance: 10, RotateDistance: 36, RotateRadius: 12}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.HandleTolerance <= 0 {
		o.HandleTolerance = d.HandleTolerance
	}
	if o.RotateDistance <= 0 {
		o.RotateDistance = d.RotateDistance
	}
	if o.RotateRadius <= 0 {
		o.RotateRadius = d.RotateRadius
	}
	return o
}

// Corners returns the layer's nw, ne, se, sw corners rotated about the box center.
func Corners(l scene.Layer) [4]geom.Pt {
	return geom.RotatedCorners(l.Measure(), l.Props().Angle)
}

// RotateHandle returns the rotate handle position with the default distance.
func RotateHandle(l scene.Layer) geom.Pt {
	return RotateHandleAt(l, DefaultOptions().RotateDistance)
}

// RotateHandleAt returns the point dist beyond the top edge midpoint along
// the direction from the box center through that midpoint.
func RotateHandleAt(l scene.Layer, dist float64) geom.Pt {
	box := l.Measure()
	c := Corners(l)
	return rotateHandle(box.Center(), c, dist)
}

func rotateHandle(center geom.Pt, c [4]geom.Pt, dist float64) geom.Pt {
	top := geom.Pt{X: (c[0].X + c[1].X) / 2, Y: (c[0].Y + c[1].Y) / 2}
	dx, dy := top.X-center.X, top.Y-center.Y
	n := math.Hypot(dx, dy)
	if n == 0 {
		n = 1
	}
	return geom.Pt{X: top.X + dx/n*dist, Y: top.Y + dy/n*dist}
}

// ContainsRotated reports whether p lies in box rotated by angle degrees about its center.
func ContainsRotated(box geom.Rect, angle float64, p geom.Pt) bool {
	return geom.ContainsRotated(box, angle, p)
}

// HitTest walks the page from the topmost layer down and returns the first
// layer under p. Per layer the corner handles are checked first, then the
// rotate handle, then the body.
func HitTest(page *scene.Page, p geom.Pt, opts Options) (Hit, bool) {
	if page == nil {
		return Hit{}, false
	}
	opts = opts.withDefaults()
	for i := len(page.Layers) - 1; i >= 0; i-- {
		l := page.Layers[i]
		if opts.SkipHidden && !l.Props().Visible {
			continue
		}
		if h, ok := hitLayer(l, p, opts); ok {
			return h, true
		}
	}
	return Hit{}, false
}

func hitLayer(l scene.Layer, p geom.Pt, opts Options) (Hit, bool) {
	box := l.Measure()
	angle := l.Props().Angle
	corners := geom.RotatedCorners(box, angle)
	for i, c := range corners {
		if math.Abs(p.X-c.X) <= opts.HandleTolerance && math.Abs(p.Y-c.Y) <= opts.HandleTolerance {
			return Hit{Layer: l, Kind: HitHandle, Handle: handles[i]}, true
		}
	}
	if geom.Dist(p, rotateHandle(box.Center(), corners, opts.RotateDistance)) <= opts.RotateRadius {
		return Hit{Layer: l, Kind: HitRotate}, true
	}
	if geom.ContainsRotated(box, angle, p) {
		return Hit{Layer: l, Kind: HitBody}, true
	}
	return Hit{}, false
}

// Cursor names the pointer cursor for hovering over hit. ok is the second
// result of HitTest.
func Cursor(hit Hit, ok bool) string {
	if !ok {
		return "default"
	}
	switch hit.Kind {
	case HitHandle:
		if hit.Handle == HandleNW || hit.Handle == HandleSE {
			return "nwse-resize"
		}
		return "nesw-resize"
	case HitRotate:
		return "grab"
	case HitBody:
		if hit.Layer.Kind() == scene.KindImage {
			return "move"
		}
		return "text"
	}
	return "default"
}
