/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interact

import (
	"strings"

	"pagecomposer/internal/command"
	"pagecomposer/internal/scene"
)

func (c *Controller) editLayer() *scene.TextLayer {
	if c.edit == nil {
		return nil
	}
	_, l := c.project.Layer(c.edit.pageID, c.edit.layerID)
	t, _ := l.(*scene.TextLayer)
	return t
}

// EditingLayer returns the text layer being edited, or nil.
func (c *Controller) EditingLayer() *scene.TextLayer {
	if c.state != Editing {
		return nil
	}
	return c.editLayer()
}

// UpdateEditText shows s live while editing. Nothing is recorded.
func (c *Controller) UpdateEditText(s string) {
	if c.state != Editing {
		return
	}
	if t := c.editLayer(); t != nil {
		t.Text = s
	}
}

// CommitEdit ends editing and records an EditText command when s differs
// from the text at the start of the session.
func (c *Controller) CommitEdit(s string) {
	if c.state != Editing || c.edit == nil {
		return
	}
	sess := *c.edit
	c.edit = nil
	c.state = Idle
	t := c.findText(sess)
	if t == nil {
		return
	}
	cmd, ok := command.NewEditText(c.project, sess.pageID, sess.layerID, sess.oldText, s)
	if !ok {
		t.Text = sess.oldText
		c.changed()
		return
	}
	c.submit(cmd)
}

// CancelEdit ends editing and restores the original text without history.
func (c *Controller) CancelEdit() {
	if c.state != Editing {
		return
	}
	if c.edit != nil {
		if t := c.findText(*c.edit); t != nil {
			t.Text = c.edit.oldText
		}
	}
	c.edit = nil
	c.state = Idle
	c.changed()
}

func (c *Controller) findText(s editSession) *scene.TextLayer {
	_, l := c.project.Layer(s.pageID, s.layerID)
	t, _ := l.(*scene.TextLayer)
	return t
}

// KeyDown handles the editor shortcuts and reports whether the key was used.
// Keys are ignored during gestures; while editing only Escape is handled.
func (c *Controller) KeyDown(ev KeyEvent) bool {
	key := strings.ToLower(ev.Key)
	if c.state == Editing {
		if key == "escape" {
			c.CancelEdit()
			return true
		}
		return false
	}
	if c.state != Idle {
		return false
	}
	cmdKey := ev.Mods.Ctrl || ev.Mods.Meta
	switch {
	case cmdKey && key == "z" && !ev.Mods.Shift:
		c.Undo()
		return true
	case cmdKey && (key == "y" || (key == "z" && ev.Mods.Shift)):
		c.Redo()
		return true
	case key == "delete" || key == "backspace":
		return c.DeleteSelected()
	}
	return false
}

// DeleteSelected removes the selected layer and clears the selection.
func (c *Controller) DeleteSelected() bool {
	if c.selected == "" {
		return false
	}
	c.submit(command.NewRemoveLayer(c.project, c.activePageID(), c.selected))
	c.setSelection(nil)
	return true
}
