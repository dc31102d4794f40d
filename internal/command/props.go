/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package command

import "pagecomposer/internal/scene"

// PropChange is a typed property edit carried by ChangeProp. The variants
// are Angle, Visible, Opacity, Align, Bold, Italic, Color, FontFamily and
// FontSize. A variant that does not fit the target layer kind is a no-op.
type PropChange interface {
	Prop() string
	Changed() bool
	apply(l scene.Layer, forward bool)
}

func pick[T any](forward bool, prev, next T) T {
	if forward {
		return next
	}
	return prev
}

// Angle rotates any layer; degrees.
type Angle struct{ Old, New float64 }

func (c Angle) Prop() string  { return "angle" }
func (c Angle) Changed() bool { return c.Old != c.New }
func (c Angle) apply(l scene.Layer, fwd bool) {
	l.Props().Angle = pick(fwd, c.Old, c.New)
}

// Visible shows or hides any layer.
type Visible struct{ Old, New bool }

func (c Visible) Prop() string  { return "visible" }
func (c Visible) Changed() bool { return c.Old != c.New }
func (c Visible) apply(l scene.Layer, fwd bool) {
	l.Props().Visible = pick(fwd, c.Old, c.New)
}

// Opacity applies to image layers.
type Opacity struct{ Old, New float64 }

func (c Opacity) Prop() string  { return "opacity" }
func (c Opacity) Changed() bool { return c.Old != c.New }
func (c Opacity) apply(l scene.Layer, fwd bool) {
	if im, ok := l.(*scene.ImageLayer); ok {
		im.Opacity = pick(fwd, c.Old, c.New)
	}
}

// Align applies to text layers.
type Align struct{ Old, New scene.Align }

func (c Align) Prop() string  { return "align" }
func (c Align) Changed() bool { return c.Old != c.New }
func (c Align) apply(l scene.Layer, fwd bool) {
	if t, ok := l.(*scene.TextLayer); ok {
		t.Align = pick(fwd, c.Old, c.New)
	}
}

type Bold struct{ Old, New bool }

func (c Bold) Prop() string  { return "bold" }
func (c Bold) Changed() bool { return c.Old != c.New }
func (c Bold) apply(l scene.Layer, fwd bool) {
	if t, ok := l.(*scene.TextLayer); ok {
		t.Bold = pick(fwd, c.Old, c.New)
	}
}

type Italic struct{ Old, New bool }

func (c Italic) Prop() string  { return "italic" }
func (c Italic) Changed() bool { return c.Old != c.New }
func (c Italic) apply(l scene.Layer, fwd bool) {
	if t, ok := l.(*scene.TextLayer); ok {
		t.Italic = pick(fwd, c.Old, c.New)
	}
}

// Color is a "#rrggbb" string.
type Color struct{ Old, New string }

func (c Color) Prop() string  { return "color" }
func (c Color) Changed() bool { return c.Old != c.New }
func (c Color) apply(l scene.Layer, fwd bool) {
	if t, ok := l.(*scene.TextLayer); ok {
		t.Color = pick(fwd, c.Old, c.New)
	}
}

type FontFamily struct{ Old, New string }

func (c FontFamily) Prop() string  { return "fontFamily" }
func (c FontFamily) Changed() bool { return c.Old != c.New }
func (c FontFamily) apply(l scene.Layer, fwd bool) {
	if t, ok := l.(*scene.TextLayer); ok {
		t.FontFamily = pick(fwd, c.Old, c.New)
	}
}

type FontSize struct{ Old, New float64 }

func (c FontSize) Prop() string  { return "fontSize" }
func (c FontSize) Changed() bool { return c.Old != c.New }
func (c FontSize) apply(l scene.Layer, fwd bool) {
	if t, ok := l.(*scene.TextLayer); ok {
		t.FontSize = pick(fwd, c.Old, c.New)
	}
}

// ChangeProp applies a PropChange to one layer.
type ChangeProp struct {
	t      target
	change PropChange
}

func NewChangeProp(p *scene.Project, pageID, layerID string, change PropChange) *ChangeProp {
	return &ChangeProp{t: target{project: p, pageID: pageID, layerID: layerID}, change: change}
}

func (c *ChangeProp) run(forward bool) {
	if c.change == nil {
		return
	}
	if _, l := c.t.resolve(); l != nil {
		c.change.apply(l, forward)
	}
}

func (c *ChangeProp) Execute() { c.run(true) }
func (c *ChangeProp) Undo()    { c.run(false) }

func (c *ChangeProp) Name() string {
	if c.change == nil {
		return "change property"
	}
	return "change " + c.change.Prop()
}

// Change returns the carried property edit.
func (c *ChangeProp) Change() PropChange { return c.change }

// EditText replaces the text of a text layer.
type EditText struct {
	t        target
	from, to string
}

// NewEditText returns false when the text is unchanged; no command is needed then.
func NewEditText(p *scene.Project, pageID, layerID, from, to string) (*EditText, bool) {
	if from == to {
		return nil, false
	}
	return &EditText{t: target{project: p, pageID: pageID, layerID: layerID}, from: from, to: to}, true
}

func (c *EditText) set(s string) {
	if t := c.t.text(); t != nil {
		t.Text = s
	}
}

func (c *EditText) Execute()     { c.set(c.to) }
func (c *EditText) Undo()        { c.set(c.from) }
func (c *EditText) Name() string { return "edit text" }
