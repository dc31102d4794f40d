/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interact

import (
	"context"
	"math"

	"pagecomposer/internal/command"
	"pagecomposer/internal/geom"
	"pagecomposer/internal/scene"
)

// NewTextPrompt is the text of a layer created with CreateText.
const NewTextPrompt = "Double-click to edit"

// CreateText adds a text layer near the page center, selects it and opens
// it for editing.
func (c *Controller) CreateText() *scene.TextLayer {
	if c.state != Idle {
		return nil
	}
	pg := c.project.ActivePage()
	t := scene.NewTextLayer("", NewTextPrompt)
	pr := t.Props()
	pr.X = geom.RoundHalfUp(pg.W/2 - 120)
	pr.Y = geom.RoundHalfUp(pg.H/2 - 24)
	pr.ZIndex = pg.MaxZ() + 1
	c.submit(command.NewAddLayer(c.project, pg.ID, t))
	c.setSelection(t)
	c.beginEdit(pg.ID, t)
	return t
}

// AddImage places an image layer on top of the active page and starts
// decoding src. The layer keeps the default size until pixels arrive.
// Returns nil unless Idle.
func (c *Controller) AddImage(ctx context.Context, src string) *scene.ImageLayer {
	if c.state != Idle {
		return nil
	}
	pg := c.project.ActivePage()
	im := scene.NewImageLayer("", src)
	pr := im.Props()
	pr.X, pr.Y = 150, 200
	pr.ZIndex = pg.MaxZ() + 1
	c.submit(command.NewAddLayer(c.project, pg.ID, im))
	c.setSelection(im)
	c.requestDecode(ctx, pg.ID, im)
	return im
}

// SetBackground replaces the background of the active page with src.
// Returns nil unless Idle.
func (c *Controller) SetBackground(ctx context.Context, src string) *scene.ImageLayer {
	if c.state != Idle {
		return nil
	}
	pg := c.project.ActivePage()
	bg := scene.NewBackgroundLayer("", src, pg.W, pg.H)
	c.submit(command.NewSetBackground(c.project, pg.ID, bg))
	c.requestDecode(ctx, pg.ID, bg)
	return bg
}

// BringForward puts the selection above every other layer.
func (c *Controller) BringForward() bool {
	l := c.Selected()
	if l == nil {
		return false
	}
	return c.setZ(l, c.project.ActivePage().MaxZ()+1)
}

// SendBack puts the selection below every other non-background layer.
func (c *Controller) SendBack() bool {
	l := c.Selected()
	if l == nil {
		return false
	}
	return c.setZ(l, c.project.ActivePage().MinZ()-1)
}

func (c *Controller) setZ(l scene.Layer, z int) bool {
	old := l.Props().ZIndex
	if old == z {
		return false
	}
	c.submit(command.NewZIndexChange(c.project, c.activePageID(), l.ID(), old, z))
	return true
}

// ApplyProp records change on the selection. Unchanged values record nothing.
func (c *Controller) ApplyProp(change command.PropChange) bool {
	l := c.Selected()
	if l == nil || change == nil || !change.Changed() {
		return false
	}
	c.submit(command.NewChangeProp(c.project, c.activePageID(), l.ID(), change))
	return true
}

func (c *Controller) selectedText() *scene.TextLayer {
	t, _ := c.Selected().(*scene.TextLayer)
	return t
}

func (c *Controller) selectedImage() *scene.ImageLayer {
	im, _ := c.Selected().(*scene.ImageLayer)
	return im
}

func (c *Controller) ToggleBold() bool {
	t := c.selectedText()
	if t == nil {
		return false
	}
	return c.ApplyProp(command.Bold{Old: t.Bold, New: !t.Bold})
}

func (c *Controller) ToggleItalic() bool {
	t := c.selectedText()
	if t == nil {
		return false
	}
	return c.ApplyProp(command.Italic{Old: t.Italic, New: !t.Italic})
}

func (c *Controller) SetColor(color string) bool {
	t := c.selectedText()
	if t == nil {
		return false
	}
	if _, err := scene.ParseHexColor(color); err != nil {
		return false
	}
	return c.ApplyProp(command.Color{Old: t.Color, New: color})
}

func (c *Controller) SetFontFamily(family string) bool {
	t := c.selectedText()
	if t == nil || family == "" {
		return false
	}
	return c.ApplyProp(command.FontFamily{Old: t.FontFamily, New: family})
}

func (c *Controller) SetFontSize(size float64) bool {
	t := c.selectedText()
	if t == nil || size <= 0 {
		return false
	}
	return c.ApplyProp(command.FontSize{Old: t.FontSize, New: size})
}

func (c *Controller) SetOpacity(v float64) bool {
	im := c.selectedImage()
	if im == nil {
		return false
	}
	v = math.Max(0, math.Min(1, v))
	return c.ApplyProp(command.Opacity{Old: im.Opacity, New: v})
}

func (c *Controller) SetVisible(v bool) bool {
	l := c.Selected()
	if l == nil {
		return false
	}
	return c.ApplyProp(command.Visible{Old: l.Props().Visible, New: v})
}

// SetAngle rotates the selection to deg, normalized to [0, 360).
func (c *Controller) SetAngle(deg float64) bool {
	l := c.Selected()
	if l == nil {
		return false
	}
	return c.ApplyProp(command.Angle{Old: l.Props().Angle, New: geom.NormalizeDeg(deg)})
}

// SetAlign aligns the selection. A text layer changes its alignment while
// staying where it is drawn; an image moves to the page's left edge, center
// or right edge.
func (c *Controller) SetAlign(a scene.Align) bool {
	pg := c.project.ActivePage()
	switch l := c.Selected().(type) {
	case *scene.TextLayer:
		if l.Align == a {
			return false
		}
		box := l.Measure()
		newX := scene.AnchorFor(a, box.X, box.W)
		pr := l.Props()
		c.submit(command.NewBatch("align text",
			command.NewMoveLayer(c.project, pg.ID, l.ID(), geom.Pt{X: pr.X, Y: pr.Y}, geom.Pt{X: newX, Y: pr.Y}),
			command.NewChangeProp(c.project, pg.ID, l.ID(), command.Align{Old: l.Align, New: a}),
		))
		return true
	case *scene.ImageLayer:
		var newX float64
		switch a {
		case scene.AlignLeft:
			newX = 0
		case scene.AlignRight:
			newX = math.Max(0, pg.W-l.Width)
		default:
			newX = geom.RoundHalfUp((pg.W - l.Width) / 2)
		}
		pr := l.Props()
		if newX == pr.X {
			return false
		}
		c.submit(command.NewMoveLayer(c.project, pg.ID, l.ID(), geom.Pt{X: pr.X, Y: pr.Y}, geom.Pt{X: newX, Y: pr.Y}))
		return true
	}
	return false
}

// AddPage appends a page with the configured size. Page structure is not
// part of the undo history.
func (c *Controller) AddPage() *scene.Page {
	pg := c.project.AddPage(c.opts.PageWidth, c.opts.PageHeight)
	c.changed()
	return pg
}

// DeletePage removes the page at index. Commands targeting it become no-ops.
func (c *Controller) DeletePage(index int) error {
	if c.state != Idle {
		return nil
	}
	if err := c.project.RemovePage(index); err != nil {
		return err
	}
	c.setSelection(nil)
	c.changed()
	return nil
}

// SelectPage makes the page at index active and clears the selection.
func (c *Controller) SelectPage(index int) error {
	if c.state != Idle {
		return nil
	}
	if err := c.project.SetActivePage(index); err != nil {
		return err
	}
	c.setSelection(nil)
	c.changed()
	return nil
}
