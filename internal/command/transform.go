/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package command

import (
	"pagecomposer/internal/geom"
	"pagecomposer/internal/scene"
)

// MoveLayer sets a layer's position. For text layers the position is the
// alignment anchor.
type MoveLayer struct {
	t        target
	from, to geom.Pt
}

func NewMoveLayer(p *scene.Project, pageID, layerID string, from, to geom.Pt) *MoveLayer {
	return &MoveLayer{t: target{project: p, pageID: pageID, layerID: layerID}, from: from, to: to}
}

func (c *MoveLayer) set(pt geom.Pt) {
	_, l := c.t.resolve()
	if l == nil {
		return
	}
	pr := l.Props()
	pr.X, pr.Y = pt.X, pt.Y
}

func (c *MoveLayer) Execute()     { c.set(c.to) }
func (c *MoveLayer) Undo()        { c.set(c.from) }
func (c *MoveLayer) Name() string { return "move layer" }

// ResizeLayer sets an image layer's position and size together.
type ResizeLayer struct {
	t        target
	from, to geom.Rect
}

func NewResizeLayer(p *scene.Project, pageID, layerID string, from, to geom.Rect) *ResizeLayer {
	return &ResizeLayer{t: target{project: p, pageID: pageID, layerID: layerID}, from: from, to: to}
}

func (c *ResizeLayer) set(r geom.Rect) {
	im := c.t.image()
	if im == nil {
		return
	}
	pr := im.Props()
	pr.X, pr.Y = r.X, r.Y
	im.Width, im.Height = r.W, r.H
}

func (c *ResizeLayer) Execute()     { c.set(c.to) }
func (c *ResizeLayer) Undo()        { c.set(c.from) }
func (c *ResizeLayer) Name() string { return "resize layer" }
