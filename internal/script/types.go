/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package script parses YAML event scripts and replays them against an
// interaction controller. A script is a page size plus an ordered list of
// steps such as pointer gestures, key presses and property edits.
package script

import "fmt"

// Script is a parsed event script.
type Script struct {
	Title string
	Page  PageSize
	Steps []Step
	// BaseDir resolves relative image paths; set by ParseFile.
	BaseDir string
}

type PageSize struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Op names one step kind.
type Op string

const (
	OpText       Op = "text"       // create a text layer, optionally committing Text
	OpImage      Op = "image"      // add an image layer from Src
	OpBackground Op = "background" // set the page background from Src
	OpDown       Op = "down"
	OpMove       Op = "move"
	OpUp         Op = "up"
	OpClick      Op = "click"
	OpDrag       Op = "drag" // down at From, Steps moves, up at To
	OpDblClick   Op = "dblclick"
	OpType       Op = "type"   // replace the text being edited
	OpCommit     Op = "commit" // finish editing, with Text when given
	OpCancel     Op = "cancel"
	OpKey        Op = "key"
	OpUndo       Op = "undo"
	OpRedo       Op = "redo"
	OpDelete     Op = "delete"
	OpSelect     Op = "select" // select layer Index on the active page; -1 clears
	OpForward    Op = "forward"
	OpBack       Op = "back"
	OpAlign      Op = "align"
	OpBold       Op = "bold"
	OpItalic     Op = "italic"
	OpSet        Op = "set" // Prop = Value
	OpPageAdd    Op = "page-add"
	OpPageDelete Op = "page-delete"
	OpPageSelect Op = "page-select"
	OpWait       Op = "wait" // block until pending images are decoded
)

// Step is one scripted event. Which fields matter depends on Op.
type Step struct {
	Op    Op        `yaml:"op"`
	X     float64   `yaml:"x"`
	Y     float64   `yaml:"y"`
	From  []float64 `yaml:"from"`
	To    []float64 `yaml:"to"`
	Steps int       `yaml:"steps"`
	Mods  []string  `yaml:"mods"`
	Key   string    `yaml:"key"`
	Text  *string   `yaml:"text"`
	Src   string    `yaml:"src"`
	Prop  string    `yaml:"prop"`
	Value string    `yaml:"value"`
	Index *int      `yaml:"index"`

	// Line is the 1-based source line of the step.
	Line int `yaml:"-"`
}

// Error represents a parse error with position context.
type Error struct {
	Line    int
	Column  int
	Message string
}

func (e Error) Error() string {
	if e.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("line %d:%d: %s", e.Line, e.Column, e.Message)
}
