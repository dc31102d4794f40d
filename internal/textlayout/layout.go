/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

// Text measurement is isolated behind Provider so the scene model stays
// deterministic in tests and independent of the font engine.

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// FontSpec describes a requested font. Size is in points (pixels at 72 DPI).
type FontSpec struct {
	Family string
	Size   float64
	Bold   bool
	Italic bool
}

// Metrics provides font metrics in pixels for the resolved face.
type Metrics struct {
	Ascent, Descent, LineGap float64
}

// Provider maps FontSpec to a concrete font.Face.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
}

// BasicProvider uses x/image/basicfont Face7x13 for deterministic tests.
// The face has a fixed 7px advance regardless of the requested size.
type BasicProvider struct{}

func (BasicProvider) Resolve(FontSpec) (font.Face, Metrics) {
	f := basicfont.Face7x13
	return f, metricsOf(f)
}

func metricsOf(f font.Face) Metrics {
	m := f.Metrics()
	return Metrics{
		Ascent:  fromFixed(m.Ascent),
		Descent: fromFixed(m.Descent),
		LineGap: fromFixed(m.Height - m.Ascent - m.Descent),
	}
}

func fromFixed(v fixed.Int26_6) float64 { return float64(v) / 64 }

// Advance returns the horizontal advance of text in pixels, kerning included.
func Advance(p Provider, spec FontSpec, text string) float64 {
	if p == nil {
		p = BasicProvider{}
	}
	if text == "" {
		return 0
	}
	face, _ := p.Resolve(spec)
	return fromFixed(font.MeasureString(face, text))
}

// Measure returns the advance width and the line height (ascent plus descent)
// of a single line of text.
func Measure(p Provider, spec FontSpec, text string) (w, h float64) {
	if p == nil {
		p = BasicProvider{}
	}
	_, met := p.Resolve(spec)
	return Advance(p, spec, text), met.Ascent + met.Descent
}
