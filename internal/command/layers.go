/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package command

import "pagecomposer/internal/scene"

// AddLayer inserts a layer into a page.
type AddLayer struct {
	t     target
	layer scene.Layer
}

func NewAddLayer(p *scene.Project, pageID string, l scene.Layer) *AddLayer {
	return &AddLayer{t: target{project: p, pageID: pageID, layerID: l.ID()}, layer: l}
}

func (c *AddLayer) Execute() {
	if pg := c.t.page(); pg != nil {
		pg.AddLayer(c.layer)
	}
}

func (c *AddLayer) Undo() {
	if pg := c.t.page(); pg != nil {
		pg.RemoveLayer(c.layer.ID())
	}
}

func (c *AddLayer) Name() string { return "add layer" }

// Layer returns the layer this command adds.
func (c *AddLayer) Layer() scene.Layer { return c.layer }

// RemoveLayer deletes a layer and remembers where it was.
type RemoveLayer struct {
	t           target
	removed     scene.Layer
	index       int
	wasBackdrop bool
}

func NewRemoveLayer(p *scene.Project, pageID, layerID string) *RemoveLayer {
	return &RemoveLayer{t: target{project: p, pageID: pageID, layerID: layerID}, index: -1}
}

func (c *RemoveLayer) Execute() {
	pg := c.t.page()
	if pg == nil {
		return
	}
	isBackdrop := pg.Background != nil && pg.Background.ID() == c.t.layerID
	l, idx := pg.RemoveLayer(c.t.layerID)
	if l == nil {
		return
	}
	c.removed, c.index, c.wasBackdrop = l, idx, isBackdrop
}

func (c *RemoveLayer) Undo() {
	pg := c.t.page()
	if pg == nil || c.removed == nil || pg.IndexOf(c.removed.ID()) >= 0 {
		return
	}
	if im, ok := c.removed.(*scene.ImageLayer); ok && c.wasBackdrop {
		pg.RestoreBackground(im, c.index)
		return
	}
	pg.InsertLayerAt(c.index, c.removed)
}

func (c *RemoveLayer) Name() string { return "remove layer" }

// ZIndexChange moves a layer in the stacking order. Undo puts the layer back
// at its former list position so ties keep their order.
type ZIndexChange struct {
	t          target
	oldZ, newZ int
	index      int
}

func NewZIndexChange(p *scene.Project, pageID, layerID string, oldZ, newZ int) *ZIndexChange {
	return &ZIndexChange{t: target{project: p, pageID: pageID, layerID: layerID}, oldZ: oldZ, newZ: newZ, index: -1}
}

func (c *ZIndexChange) Execute() {
	pg, l := c.t.resolve()
	if l == nil {
		return
	}
	c.index = pg.IndexOf(l.ID())
	l.Props().ZIndex = c.newZ
	pg.SortByZ()
}

func (c *ZIndexChange) Undo() {
	pg, l := c.t.resolve()
	if l == nil {
		return
	}
	if c.index < 0 {
		l.Props().ZIndex = c.oldZ
		pg.SortByZ()
		return
	}
	bg := pg.Background
	pg.RemoveLayer(l.ID())
	l.Props().ZIndex = c.oldZ
	pg.InsertLayerAt(c.index, l)
	pg.Background = bg
}

func (c *ZIndexChange) Name() string { return "change z-index" }

// SetBackground replaces the page background image.
type SetBackground struct {
	t        target
	layer    *scene.ImageLayer
	prev     *scene.ImageLayer
	prevIdx  int
	executed bool
}

func NewSetBackground(p *scene.Project, pageID string, bg *scene.ImageLayer) *SetBackground {
	return &SetBackground{t: target{project: p, pageID: pageID, layerID: bg.ID()}, layer: bg, prevIdx: -1}
}

func (c *SetBackground) Execute() {
	pg := c.t.page()
	if pg == nil {
		return
	}
	if pg.Background == c.layer {
		return
	}
	c.prev, c.prevIdx = pg.SetBackground(c.layer)
	c.executed = true
}

func (c *SetBackground) Undo() {
	pg := c.t.page()
	if pg == nil || !c.executed {
		return
	}
	pg.RemoveLayer(c.layer.ID())
	if c.prev != nil {
		pg.RestoreBackground(c.prev, c.prevIdx)
	}
	c.executed = false
}

func (c *SetBackground) Name() string { return "set background" }
