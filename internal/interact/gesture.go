/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interact

import (
	"log/slog"
	"math"

	"pagecomposer/internal/command"
	"pagecomposer/internal/geom"
	"pagecomposer/internal/query"
	"pagecomposer/internal/scene"
	"pagecomposer/internal/snap"
)

// PointerDown starts a gesture on whatever lies under the pointer. It is
// ignored unless the controller is idle.
func (c *Controller) PointerDown(ev PointerEvent) {
	if c.state != Idle {
		return
	}
	pg := c.project.ActivePage()
	if pg == nil {
		return
	}
	hit, ok := query.HitTest(pg, ev.Pt, c.opts.Query)
	if !ok {
		c.setSelection(nil)
		return
	}
	c.setSelection(hit.Layer)
	c.guides = nil
	l := hit.Layer
	c.g = gesture{pageID: pg.ID, layerID: l.ID(), start: ev.Pt, props: *l.Props()}

	switch hit.Kind {
	case query.HitHandle:
		if im, isImage := l.(*scene.ImageLayer); isImage {
			c.beginResize(im, hit.Handle)
			return
		}
		// text is sized by its font; a handle grab moves it
		c.beginDrag(l)
	case query.HitRotate:
		c.beginRotate(l, ev.Pt)
	default:
		c.beginDrag(l)
	}
}

func (c *Controller) beginDrag(l scene.Layer) {
	c.state = Dragging
	if t, ok := l.(*scene.TextLayer); ok {
		c.g.anchorOffset = t.Props().X - t.Measure().X
	}
}

func (c *Controller) beginResize(im *scene.ImageLayer, h query.Handle) {
	c.state = Resizing
	c.g.handle = h
	c.g.box = im.Measure()
	w, hh := im.Width, im.Height
	if w <= 0 {
		w = 1
	}
	if hh <= 0 {
		hh = 1
	}
	c.g.aspect = w / hh
}

func (c *Controller) beginRotate(l scene.Layer, p geom.Pt) {
	c.state = Rotating
	c.g.pointerAngle = geom.AngleTo(l.Measure().Center(), p)
}

// gestureLayer resolves the layer of the running gesture.
func (c *Controller) gestureLayer() (*scene.Page, scene.Layer) {
	return c.project.Layer(c.g.pageID, c.g.layerID)
}

// PointerMove advances the running gesture, mutating the layer live and
// updating Guides. When idle it updates and returns the hover cursor.
func (c *Controller) PointerMove(ev PointerEvent) string {
	switch c.state {
	case Idle, Editing:
		hit, ok := query.HitTest(c.project.ActivePage(), ev.Pt, c.opts.Query)
		c.cursor = query.Cursor(hit, ok)
		return c.cursor
	}
	pg, l := c.gestureLayer()
	if l == nil {
		c.abortGesture()
		return c.cursor
	}
	switch c.state {
	case Rotating:
		c.moveRotate(pg, l, ev)
	case Resizing:
		if im, ok := l.(*scene.ImageLayer); ok {
			c.moveResize(pg, im, ev)
		}
	case Dragging:
		c.moveDrag(pg, l, ev)
	}
	return c.cursor
}

func (c *Controller) moveRotate(pg *scene.Page, l scene.Layer, ev PointerEvent) {
	center := l.Measure().Center()
	cur := geom.AngleTo(center, ev.Pt)
	angle := geom.NormalizeDeg(c.g.props.Angle + (cur - c.g.pointerAngle))
	angle = snap.Angle(angle, ev.Mods.Shift, c.opts.AngleStep, c.opts.CardinalTolerance)
	l.Props().Angle = angle
	c.guides = nil
	if snap.NearCardinal(angle, snap.GuideTolerance) {
		c.guides = snap.RotationGuides(pg, center)
	}
}

func (c *Controller) moveDrag(pg *scene.Page, l scene.Layer, ev PointerEvent) {
	dx, dy := ev.Pt.X-c.g.start.X, ev.Pt.Y-c.g.start.Y
	cx, cy := c.g.props.X+dx, c.g.props.Y+dy
	pr := l.Props()
	switch v := l.(type) {
	case *scene.TextLayer:
		box := v.Measure()
		left := cx - c.g.anchorOffset
		res := snap.Move(pg, l, geom.R(left, cy, box.W, box.H), c.opts.SnapThreshold)
		pr.X, pr.Y = res.X+c.g.anchorOffset, res.Y
		c.guides = res.Guides
	case *scene.ImageLayer:
		res := snap.Move(pg, l, geom.R(cx, cy, v.Width, v.Height), c.opts.SnapThreshold)
		pr.X, pr.Y = res.X, res.Y
		c.guides = res.Guides
	}
}

// resizeBox computes the new box for a corner drag of (dx, dy) from start.
// With keepAspect the height follows the width using the starting ratio.
func resizeBox(start geom.Rect, handle query.Handle, dx, dy, aspect, minSize float64, keepAspect bool) geom.Rect {
	round := geom.RoundHalfUp
	w, h, x, y := start.W, start.H, start.X, start.Y
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	if aspect <= 0 {
		aspect = 1
	}
	sw, sh := w, h
	switch handle {
	case query.HandleSE:
		w = math.Max(minSize, round(sw+dx))
		h = math.Max(minSize, round(sh+dy))
		if keepAspect {
			h = round(w / aspect)
		}
	case query.HandleNW:
		w = math.Max(minSize, round(sw-dx))
		h = math.Max(minSize, round(sh-dy))
		x = round(start.X + dx)
		y = round(start.Y + dy)
		if keepAspect {
			h = round(w / aspect)
			y = round(start.Y + (sh - h))
		}
	case query.HandleNE:
		w = math.Max(minSize, round(sw+dx))
		h = math.Max(minSize, round(sh-dy))
		y = round(start.Y + dy)
		if keepAspect {
			h = round(w / aspect)
			y = round(start.Y + (sh - h))
		}
	case query.HandleSW:
		w = math.Max(minSize, round(sw-dx))
		h = math.Max(minSize, round(sh+dy))
		x = round(start.X + dx)
		if keepAspect {
			h = round(w / aspect)
		}
	}
	return geom.R(x, y, w, h)
}

// clampToPage keeps a box on the page by shrinking it, never below minSize.
func clampToPage(r geom.Rect, pageW, pageH, minSize float64) geom.Rect {
	if r.X < 0 {
		r.W = math.Max(minSize, r.W+r.X)
		r.X = 0
	}
	if r.Y < 0 {
		r.H = math.Max(minSize, r.H+r.Y)
		r.Y = 0
	}
	if r.X+r.W > pageW {
		r.W = math.Max(minSize, pageW-r.X)
	}
	if r.Y+r.H > pageH {
		r.H = math.Max(minSize, pageH-r.Y)
	}
	return r
}

func (c *Controller) moveResize(pg *scene.Page, im *scene.ImageLayer, ev PointerEvent) {
	dx, dy := ev.Pt.X-c.g.start.X, ev.Pt.Y-c.g.start.Y
	r := resizeBox(c.g.box, c.g.handle, dx, dy, c.g.aspect, c.opts.MinSize, ev.Mods.Shift)
	r = clampToPage(r, pg.W, pg.H, c.opts.MinSize)
	im.Width, im.Height = r.W, r.H
	res := snap.Move(pg, im, r, c.opts.SnapThreshold)
	pr := im.Props()
	pr.X, pr.Y = res.X, res.Y
	c.guides = res.Guides
}

// PointerUp finishes the running gesture and commits at most one command
// spanning its start and final values.
func (c *Controller) PointerUp(PointerEvent) {
	switch c.state {
	case Dragging, Resizing, Rotating:
	default:
		return
	}
	defer c.endGesture()
	_, l := c.gestureLayer()
	if l == nil {
		return
	}
	pr := l.Props()
	switch c.state {
	case Dragging:
		from := geom.Pt{X: c.g.props.X, Y: c.g.props.Y}
		to := geom.Pt{X: pr.X, Y: pr.Y}
		if from != to {
			c.submit(command.NewMoveLayer(c.project, c.g.pageID, c.g.layerID, from, to))
		}
	case Resizing:
		im, ok := l.(*scene.ImageLayer)
		if !ok {
			return
		}
		to := im.Measure()
		if to != c.g.box {
			c.submit(command.NewResizeLayer(c.project, c.g.pageID, c.g.layerID, c.g.box, to))
		}
	case Rotating:
		if pr.Angle != c.g.props.Angle {
			c.submit(command.NewChangeProp(c.project, c.g.pageID, c.g.layerID,
				command.Angle{Old: c.g.props.Angle, New: pr.Angle}))
		}
	}
}

func (c *Controller) endGesture() {
	c.log.Debug("gesture finished", slog.String("op", c.state.String()), slog.String("layer", c.g.layerID))
	c.state = Idle
	c.guides = nil
	c.g = gesture{}
}

// abortGesture drops a gesture whose layer vanished.
func (c *Controller) abortGesture() {
	c.state = Idle
	c.guides = nil
	c.g = gesture{}
}

// DoubleClick on a text layer enters text editing.
func (c *Controller) DoubleClick(ev PointerEvent) {
	if c.state != Idle {
		return
	}
	pg := c.project.ActivePage()
	hit, ok := query.HitTest(pg, ev.Pt, c.opts.Query)
	if !ok {
		return
	}
	t, isText := hit.Layer.(*scene.TextLayer)
	if !isText {
		return
	}
	c.setSelection(t)
	c.beginEdit(pg.ID, t)
}

func (c *Controller) beginEdit(pageID string, t *scene.TextLayer) {
	c.state = Editing
	c.edit = &editSession{pageID: pageID, layerID: t.ID(), oldText: t.Text}
	if c.hooks.OnTextEditRequested != nil {
		c.hooks.OnTextEditRequested(t)
	}
}
