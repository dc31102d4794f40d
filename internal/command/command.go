/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package command implements the reversible edits applied to a project.
//
// Commands hold ids rather than pointers into the scene and resolve their
// target on every Execute and Undo. A target that no longer exists turns the
// call into a no-op, which keeps replaying history over a changed project safe.
package command

import "pagecomposer/internal/scene"

// Command is one reversible edit.
type Command interface {
	Execute()
	Undo()
	Name() string
}

type target struct {
	project *scene.Project
	pageID  string
	layerID string
}

func (t target) page() *scene.Page {
	if t.project == nil {
		return nil
	}
	return t.project.PageByID(t.pageID)
}

func (t target) resolve() (*scene.Page, scene.Layer) {
	pg := t.page()
	if pg == nil {
		return nil, nil
	}
	return pg, pg.Find(t.layerID)
}

func (t target) text() *scene.TextLayer {
	_, l := t.resolve()
	tl, _ := l.(*scene.TextLayer)
	return tl
}

func (t target) image() *scene.ImageLayer {
	_, l := t.resolve()
	im, _ := l.(*scene.ImageLayer)
	return im
}

// Batch groups commands into one history entry. Execute runs them in
// order and Undo in reverse.
type Batch struct {
	name string
	cmds []Command
}

// NewBatch drops nil entries.
func NewBatch(name string, cmds ...Command) *Batch {
	b := &Batch{name: name}
	for _, c := range cmds {
		if c != nil {
			b.cmds = append(b.cmds, c)
		}
	}
	return b
}

func (b *Batch) Execute() {
	for _, c := range b.cmds {
		c.Execute()
	}
}

func (b *Batch) Undo() {
	for i := len(b.cmds) - 1; i >= 0; i-- {
		b.cmds[i].Undo()
	}
}

func (b *Batch) Name() string { return b.name }

// Len reports the number of grouped commands.
func (b *Batch) Len() int { return len(b.cmds) }
