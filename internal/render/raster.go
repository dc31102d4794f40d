/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render paints scene pages onto RGBA images using golang.org/x/image.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	"pagecomposer/internal/geom"
	"pagecomposer/internal/scene"
	"pagecomposer/internal/textlayout"
)

// Raster is a scene.Surface backed by an *image.RGBA. Page coordinates are
// multiplied by Scale to get pixels.
type Raster struct {
	dst    *image.RGBA
	scale  float64
	fonts  textlayout.Provider
	interp xdraw.Interpolator
}

var _ scene.Surface = (*Raster)(nil)

// NewRaster allocates a transparent w x h page surface. A nil provider uses
// textlayout.Default; scale <= 0 means 1.
func NewRaster(w, h, scale float64, fonts textlayout.Provider) *Raster {
	if scale <= 0 {
		scale = 1
	}
	if fonts == nil {
		fonts = textlayout.Default()
	}
	pw := max(1, int(math.Round(w*scale)))
	ph := max(1, int(math.Round(h*scale)))
	return &Raster{
		dst:    image.NewRGBA(image.Rect(0, 0, pw, ph)),
		scale:  scale,
		fonts:  fonts,
		interp: xdraw.BiLinear,
	}
}

// Page renders pg at scale and returns the pixels.
func Page(pg *scene.Page, scale float64, fonts textlayout.Provider) *image.RGBA {
	r := NewRaster(pg.W, pg.H, scale, fonts)
	pg.Draw(r)
	return r.Image()
}

func (r *Raster) Image() *image.RGBA { return r.dst }
func (r *Raster) Scale() float64     { return r.scale }

// SetInterpolator swaps the resampling kernel (BiLinear by default).
func (r *Raster) SetInterpolator(i xdraw.Interpolator) {
	if i != nil {
		r.interp = i
	}
}

func (r *Raster) pixelRect(b geom.Rect) image.Rectangle {
	s := r.scale
	return image.Rect(
		int(math.Round(b.X*s)), int(math.Round(b.Y*s)),
		int(math.Round((b.X+b.W)*s)), int(math.Round((b.Y+b.H)*s)),
	)
}

func (r *Raster) FillRect(b geom.Rect, c color.Color) {
	if c == nil {
		return
	}
	draw.Draw(r.dst, r.pixelRect(b), image.NewUniform(c), image.Point{}, draw.Over)
}

// DrawImage stretches img over box, rotated by angle degrees about the box
// center, blended with the given opacity.
func (r *Raster) DrawImage(img image.Image, box geom.Rect, angle, opacity float64) {
	if img == nil || opacity <= 0 || box.W <= 0 || box.H <= 0 {
		return
	}
	sr := img.Bounds()
	if sr.Empty() {
		return
	}
	if opacity < 1 {
		img = withOpacity(img, opacity)
		sr = img.Bounds()
	}
	s := r.scale
	c := box.Center()
	m := geom.Scale(s, s).
		Mul(geom.RotateAbout(c, angle)).
		Mul(geom.Translate(box.X, box.Y)).
		Mul(geom.Scale(box.W/float64(sr.Dx()), box.H/float64(sr.Dy()))).
		Mul(geom.Translate(-float64(sr.Min.X), -float64(sr.Min.Y)))
	r.interp.Transform(r.dst, aff3(m), img, sr, xdraw.Over, nil)
}

// DrawText renders run.Text with its top at Box.Y and its left at Box.X,
// rotated around the box center.
func (r *Raster) DrawText(run scene.TextRun) {
	if run.Text == "" {
		return
	}
	s := r.scale
	spec := run.Font
	spec.Size *= s
	face, met := r.fonts.Resolve(spec)
	col := run.Color
	if col == nil {
		col = scene.DefaultColor
	}

	w := run.Box.W * s
	h := run.Box.H * s
	adv := font.MeasureString(face, run.Text)
	tw := max(int(math.Ceil(w)), adv.Ceil()) + 1
	th := max(int(math.Ceil(h)), int(math.Ceil(met.Ascent+met.Descent))) + 1
	tmp := image.NewRGBA(image.Rect(0, 0, tw, th))
	d := &font.Drawer{
		Dst:  tmp,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{Y: fixed.Int26_6(math.Round(met.Ascent * 64))},
	}
	d.DrawString(run.Text)

	left, top := run.Box.X*s, run.Box.Y*s
	if run.Angle == 0 {
		at := image.Pt(int(math.Round(left)), int(math.Round(top)))
		draw.Draw(r.dst, tmp.Bounds().Add(at), tmp, image.Point{}, draw.Over)
		return
	}
	c := geom.Pt{X: left + w/2, Y: top + h/2}
	m := geom.RotateAbout(c, run.Angle).Mul(geom.Translate(left, top))
	r.interp.Transform(r.dst, aff3(m), tmp, tmp.Bounds(), xdraw.Over, nil)
}

// aff3 converts the column-major geom matrix to x/image's row-major layout.
func aff3(m geom.Affine2D) f64.Aff3 {
	return f64.Aff3{m.A, m.C, m.E, m.B, m.D, m.F}
}

// withOpacity returns a copy of img with alpha scaled by opacity.
func withOpacity(img image.Image, opacity float64) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	mask := image.NewUniform(color.Alpha{A: uint8(math.Round(opacity * 255))})
	draw.DrawMask(out, b, img, b.Min, mask, image.Point{}, draw.Src)
	return out
}
