/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"image"
	"math"

	"pagecomposer/internal/geom"
)

const (
	DefaultImageWidth  = 200.0
	DefaultImageHeight = 200.0
	BackgroundZ        = -10000

	maxFitWidth  = 600
	maxFitHeight = 800
)

// ImageLayer is a raster image placed with its top-left at Props().X,Y.
type ImageLayer struct {
	base
	Width        float64
	Height       float64
	Opacity      float64
	IsBackground bool
	// Source is a data: URL or a file path.
	Source string

	pixels     image.Image
	fitPending bool
}

// NewImageLayer returns a 200x200 image layer for src. The first decoded
// image resizes it to its natural size within the fit limits.
func NewImageLayer(id, src string) *ImageLayer {
	return &ImageLayer{
		base:       newBase(id),
		Width:      DefaultImageWidth,
		Height:     DefaultImageHeight,
		Opacity:    1,
		Source:     src,
		fitPending: true,
	}
}

// NewBackgroundLayer returns an image layer covering a w x h page.
func NewBackgroundLayer(id, src string, w, h float64) *ImageLayer {
	im := NewImageLayer(id, src)
	im.IsBackground = true
	im.Width, im.Height = w, h
	im.props.ZIndex = BackgroundZ
	im.fitPending = false
	return im
}

func (im *ImageLayer) Kind() Kind { return KindImage }

// Image returns the decoded pixels, nil until decoding finished.
func (im *ImageLayer) Image() image.Image { return im.pixels }

// SetImage installs decoded pixels. A fresh non-background layer adopts the
// image's natural size capped by FitSize; restored layers keep their size.
func (im *ImageLayer) SetImage(img image.Image) {
	im.pixels = img
	if img == nil || !im.fitPending {
		return
	}
	im.fitPending = false
	if im.IsBackground {
		return
	}
	b := img.Bounds()
	im.Width, im.Height = FitSize(b.Dx(), b.Dy())
}

// KeepSize marks the current size as final so decoding will not resize it.
func (im *ImageLayer) KeepSize() { im.fitPending = false }

// FitSize caps a natural image size to 600 wide or 800 tall, keeping the
// aspect ratio. Width is checked first.
func FitSize(w, h int) (float64, float64) {
	if w <= 0 || h <= 0 {
		return DefaultImageWidth, DefaultImageHeight
	}
	ar := float64(w) / float64(h)
	switch {
	case w > maxFitWidth:
		return maxFitWidth, math.Round(maxFitWidth / ar)
	case h > maxFitHeight:
		return math.Round(maxFitHeight * ar), maxFitHeight
	default:
		return float64(w), float64(h)
	}
}

func (im *ImageLayer) Measure() geom.Rect {
	return geom.R(im.props.X, im.props.Y, im.Width, im.Height)
}

func (im *ImageLayer) Contains(p geom.Pt) bool {
	return geom.ContainsRotated(im.Measure(), im.props.Angle, p)
}

func (im *ImageLayer) Draw(s Surface) {
	if !im.props.Visible || im.pixels == nil {
		return
	}
	s.DrawImage(im.pixels, im.Measure(), im.props.Angle, im.Opacity)
}
