/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"sort"

	"pagecomposer/internal/geom"
)

const (
	DefaultPageWidth  = 900.0
	DefaultPageHeight = 1600.0
)

// Page is a fixed-size canvas holding a flat list of layers kept sorted
// ascending by ZIndex. Background, when set, is also an entry of Layers.
type Page struct {
	ID         string
	W, H       float64
	Layers     []Layer
	Background *ImageLayer
}

// NewPage returns an empty page. Non-positive sizes fall back to the defaults.
func NewPage(id string, w, h float64) *Page {
	if id == "" {
		id = NewPageID()
	}
	if w <= 0 {
		w = DefaultPageWidth
	}
	if h <= 0 {
		h = DefaultPageHeight
	}
	return &Page{ID: id, W: w, H: h}
}

// Bounds returns the page rectangle at the origin.
func (p *Page) Bounds() geom.Rect { return geom.R(0, 0, p.W, p.H) }

// SortByZ orders Layers ascending by ZIndex, keeping insertion order for ties.
func (p *Page) SortByZ() {
	sort.SliceStable(p.Layers, func(i, j int) bool {
		return p.Layers[i].Props().ZIndex < p.Layers[j].Props().ZIndex
	})
}

// IndexOf returns the position of the layer with id, or -1.
func (p *Page) IndexOf(id string) int {
	for i, l := range p.Layers {
		if l.ID() == id {
			return i
		}
	}
	return -1
}

// Find returns the layer with id, or nil.
func (p *Page) Find(id string) Layer {
	if i := p.IndexOf(id); i >= 0 {
		return p.Layers[i]
	}
	return nil
}

// AddLayer appends l unless a layer with the same id is present. Reports
// whether the page changed.
func (p *Page) AddLayer(l Layer) bool {
	if l == nil || p.IndexOf(l.ID()) >= 0 {
		return false
	}
	p.Layers = append(p.Layers, l)
	p.SortByZ()
	return true
}

// InsertLayerAt places l at index (clamped to the list) and re-sorts.
func (p *Page) InsertLayerAt(index int, l Layer) bool {
	if l == nil || p.IndexOf(l.ID()) >= 0 {
		return false
	}
	if index < 0 {
		index = 0
	}
	if index > len(p.Layers) {
		index = len(p.Layers)
	}
	p.Layers = append(p.Layers, nil)
	copy(p.Layers[index+1:], p.Layers[index:])
	p.Layers[index] = l
	p.SortByZ()
	return true
}

// RemoveLayer deletes the layer with id and returns it with its former index.
// Removing the background layer also clears Background.
func (p *Page) RemoveLayer(id string) (Layer, int) {
	i := p.IndexOf(id)
	if i < 0 {
		return nil, -1
	}
	l := p.Layers[i]
	p.Layers = append(p.Layers[:i], p.Layers[i+1:]...)
	if p.Background != nil && p.Background.ID() == id {
		p.Background = nil
	}
	return l, i
}

// MaxZ is the highest ZIndex among non-background layers, never below 0.
func (p *Page) MaxZ() int {
	z := 0
	for _, l := range p.Layers {
		if isBackground(l) {
			continue
		}
		if lz := l.Props().ZIndex; lz > z {
			z = lz
		}
	}
	return z
}

// MinZ is the lowest ZIndex among non-background layers, 0 when there are none.
func (p *Page) MinZ() int {
	z, seen := 0, false
	for _, l := range p.Layers {
		if isBackground(l) {
			continue
		}
		if lz := l.Props().ZIndex; !seen || lz < z {
			z, seen = lz, true
		}
	}
	return z
}

func isBackground(l Layer) bool {
	im, ok := l.(*ImageLayer)
	return ok && im.IsBackground
}

// SetBackground removes the current background layer, if any, and installs
// bg sized to the page beneath everything else. It returns the replaced
// layer and its index (-1 when there was none).
func (p *Page) SetBackground(bg *ImageLayer) (*ImageLayer, int) {
	var prev *ImageLayer
	prevIdx := -1
	if p.Background != nil {
		prev = p.Background
		_, prevIdx = p.RemoveLayer(prev.ID())
	}
	if bg == nil {
		return prev, prevIdx
	}
	bg.IsBackground = true
	bg.props.X, bg.props.Y = 0, 0
	bg.Width, bg.Height = p.W, p.H
	bg.props.ZIndex = BackgroundZ
	bg.fitPending = false
	p.Layers = append(p.Layers, bg)
	p.Background = bg
	p.SortByZ()
	return prev, prevIdx
}

// RestoreBackground re-inserts a previously removed background layer at index.
func (p *Page) RestoreBackground(bg *ImageLayer, index int) {
	if bg == nil {
		return
	}
	if p.Background != nil && p.Background.ID() != bg.ID() {
		p.RemoveLayer(p.Background.ID())
	}
	p.InsertLayerAt(index, bg)
	p.Background = bg
}

// Draw paints the page: a black fill unless a background layer exists, then
// every visible layer in ascending z order.
func (p *Page) Draw(s Surface) {
	if p.Background == nil {
		s.FillRect(p.Bounds(), PageFill)
	}
	for _, l := range p.Layers {
		if !l.Props().Visible {
			continue
		}
		l.Draw(s)
	}
}
