/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"math"
	"sync"

	"pagecomposer/internal/geom"
	"pagecomposer/internal/textlayout"
)

const (
	DefaultText       = "New text"
	DefaultFontFamily = "sans-serif"
	DefaultFontSize   = 48.0
	DefaultTextColor  = "#ffffff"
)

var (
	providerMu sync.RWMutex
	provider   textlayout.Provider
)

// SetTextProvider replaces the provider used to measure text layers. Nil
// restores the Go font default.
func SetTextProvider(p textlayout.Provider) {
	providerMu.Lock()
	provider = p
	providerMu.Unlock()
}

func textProvider() textlayout.Provider {
	providerMu.RLock()
	p := provider
	providerMu.RUnlock()
	if p == nil {
		return textlayout.Default()
	}
	return p
}

// TextLayer is a single line of text. Props().X is the alignment anchor.
type TextLayer struct {
	base
	Text       string
	FontFamily string
	FontSize   float64
	Color      string
	Align      Align
	Bold       bool
	Italic     bool
}

// NewTextLayer returns a text layer with the editor defaults. An empty id
// allocates a new one.
func NewTextLayer(id, text string) *TextLayer {
	t := &TextLayer{
		base:       newBase(id),
		Text:       text,
		FontFamily: DefaultFontFamily,
		FontSize:   DefaultFontSize,
		Color:      DefaultTextColor,
		Align:      AlignLeft,
	}
	t.props.X, t.props.Y = 50, 50
	return t
}

func (t *TextLayer) Kind() Kind { return KindText }

// Font returns the font spec used for measuring and drawing.
func (t *TextLayer) Font() textlayout.FontSpec {
	return textlayout.FontSpec{Family: t.FontFamily, Size: t.FontSize, Bold: t.Bold, Italic: t.Italic}
}

// TextWidth is the advance width of Text in the layer's font.
func (t *TextLayer) TextWidth() float64 {
	return math.Max(0, textlayout.Advance(textProvider(), t.Font(), t.Text))
}

// LeftFor converts an anchor x to the left edge for the given width.
func LeftFor(align Align, anchorX, width float64) float64 {
	switch align {
	case AlignCenter:
		return anchorX - width/2
	case AlignRight:
		return anchorX - width
	default:
		return anchorX
	}
}

// AnchorFor is the inverse of LeftFor.
func AnchorFor(align Align, left, width float64) float64 {
	switch align {
	case AlignCenter:
		return left + width/2
	case AlignRight:
		return left + width
	default:
		return left
	}
}

func (t *TextLayer) Measure() geom.Rect {
	w := t.TextWidth()
	left := LeftFor(t.Align, t.props.X, w)
	if math.IsNaN(left) || math.IsInf(left, 0) {
		left = 0
	}
	return geom.R(left, t.props.Y, w, t.FontSize)
}

func (t *TextLayer) Contains(p geom.Pt) bool {
	return geom.ContainsRotated(t.Measure(), t.props.Angle, p)
}

func (t *TextLayer) Draw(s Surface) {
	if !t.props.Visible {
		return
	}
	c, err := ParseHexColor(t.Color)
	if err != nil {
		c = DefaultColor
	}
	s.DrawText(TextRun{
		Text:  t.Text,
		Font:  t.Font(),
		Color: c,
		Box:   t.Measure(),
		Angle: t.props.Angle,
	})
}
