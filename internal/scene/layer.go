/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"fmt"

	"pagecomposer/internal/geom"
)

// Kind discriminates the layer variants.
type Kind int

const (
	KindText Kind = iota + 1
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Align selects which edge of a text layer X refers to.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// ParseAlign maps a persisted alignment string to Align; unknown values read as left.
func ParseAlign(s string) Align {
	switch Align(s) {
	case AlignCenter:
		return AlignCenter
	case AlignRight:
		return AlignRight
	default:
		return AlignLeft
	}
}

// Props are the fields every layer variant carries.
// Angle is in degrees, clockwise in screen space, about the box center.
type Props struct {
	X, Y    float64
	ZIndex  int
	Visible bool
	Angle   float64
}

// Layer is a drawable element of a page. The set of variants is closed:
// *TextLayer and *ImageLayer.
type Layer interface {
	ID() string
	Kind() Kind
	Props() *Props
	// Measure returns the axis-aligned unrotated box with X,Y at the top-left.
	Measure() geom.Rect
	Draw(Surface)
	Contains(p geom.Pt) bool

	sealed()
}

type base struct {
	id    string
	props Props
}

func newBase(id string) base {
	if id == "" {
		id = NewLayerID()
	}
	return base{id: id, props: Props{Visible: true}}
}

func (b *base) ID() string    { return b.id }
func (b *base) Props() *Props { return &b.props }
func (b *base) sealed()       {}
