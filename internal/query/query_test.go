/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package query

import (
	"math"
	"os"
	"testing"

	"pagecomposer/internal/geom"
	"pagecomposer/internal/scene"
	"pagecomposer/internal/textlayout"
)

func TestMain(m *testing.M) {
	scene.SetTextProvider(textlayout.BasicProvider{})
	os.Exit(m.Run())
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func image(id string, x, y, w, h float64) *scene.ImageLayer {
	im := scene.NewImageLayer(id, "")
	im.Props().X, im.Props().Y = x, y
	im.Width, im.Height = w, h
	return im
}

func TestCornersRotated(t *testing.T) {
	l := image("a", 0, 0, 100, 50)
	l.Props().Angle = 90
	c := Corners(l)
	if !approx(c[0].X, 75) || !approx(c[0].Y, -25) {
		t.Fatalf("nw after 90deg: %+v", c[0])
	}
}

func TestRotateHandlePosition(t *testing.T) {
	l := image("a", 0, 0, 100, 50)
	h := RotateHandle(l)
	if !approx(h.X, 50) || !approx(h.Y, -36) {
		t.Fatalf("unrotated handle: %+v", h)
	}
	l.Props().Angle = 90
	h = RotateHandle(l)
	// top edge now faces +x: midpoint (75,25) pushed 36 right
	if !approx(h.X, 111) || !approx(h.Y, 25) {
		t.Fatalf("rotated handle: %+v", h)
	}
}

func TestHitRotatedHandle(t *testing.T) {
	pg := scene.NewPage("", 900, 1600)
	l := image("a", 0, 0, 100, 50)
	l.Props().Angle = 90
	pg.AddLayer(l)
	hit, ok := HitTest(pg, geom.Pt{X: 80, Y: -30}, Options{})
	if !ok || hit.Kind != HitHandle || hit.Handle != HandleNW || hit.Layer != scene.Layer(l) {
		t.Fatalf("expected nw handle, got %+v ok=%v", hit, ok)
	}
}

func TestHitPriority(t *testing.T) {
	pg := scene.NewPage("", 900, 1600)
	l := image("a", 100, 100, 100, 50)
	pg.AddLayer(l)
	cases := []struct {
		p    geom.Pt
		kind HitKind
		h    Handle
	}{
		{geom.Pt{X: 102, Y: 103}, HitHandle, HandleNW},
		{geom.Pt{X: 195, Y: 145}, HitHandle, HandleSE},
		{geom.Pt{X: 150, Y: 70}, HitRotate, ""},
		{geom.Pt{X: 150, Y: 125}, HitBody, ""},
	}
	for _, c := range cases {
		hit, ok := HitTest(pg, c.p, Options{})
		if !ok || hit.Kind != c.kind || hit.Handle != c.h {
			t.Fatalf("at %+v: got %+v ok=%v, want %s %s", c.p, hit, ok, c.kind, c.h)
		}
	}
	if _, ok := HitTest(pg, geom.Pt{X: 500, Y: 500}, Options{}); ok {
		t.Fatalf("empty area should miss")
	}
}

func TestHitTopmostWins(t *testing.T) {
	pg := scene.NewPage("", 900, 1600)
	low := image("low", 0, 0, 300, 300)
	high := image("high", 100, 100, 100, 100)
	high.Props().ZIndex = 1
	pg.AddLayer(high)
	pg.AddLayer(low)
	hit, ok := HitTest(pg, geom.Pt{X: 150, Y: 150}, Options{})
	if !ok || hit.Layer.ID() != "high" {
		t.Fatalf("expected the higher layer, got %+v", hit)
	}
	hit, _ = HitTest(pg, geom.Pt{X: 20, Y: 250}, Options{})
	if hit.Layer.ID() != "low" {
		t.Fatalf("expected the lower layer, got %+v", hit)
	}
}

func TestHiddenLayers(t *testing.T) {
	pg := scene.NewPage("", 900, 1600)
	l := image("ghost", 0, 0, 100, 100)
	l.Props().Visible = false
	pg.AddLayer(l)
	if _, ok := HitTest(pg, geom.Pt{X: 50, Y: 50}, Options{}); !ok {
		t.Fatalf("hidden layers capture clicks by default")
	}
	if _, ok := HitTest(pg, geom.Pt{X: 50, Y: 50}, Options{SkipHidden: true}); ok {
		t.Fatalf("SkipHidden should ignore the hidden layer")
	}
}

func TestTextHitUsesMeasuredBox(t *testing.T) {
	pg := scene.NewPage("", 900, 1600)
	tl := scene.NewTextLayer("", "abcdefghij") // 70px wide
	tl.Props().X, tl.Props().Y = 200, 300
	tl.Align = scene.AlignRight
	pg.AddLayer(tl)
	hit, ok := HitTest(pg, geom.Pt{X: 160, Y: 320}, Options{})
	if !ok || hit.Kind != HitBody {
		t.Fatalf("right aligned text should cover x=160: %+v", hit)
	}
	if Cursor(hit, ok) != "text" {
		t.Fatalf("text body cursor: %s", Cursor(hit, ok))
	}
}

func TestCursor(t *testing.T) {
	im := image("a", 0, 0, 10, 10)
	cases := []struct {
		hit  Hit
		ok   bool
		want string
	}{
		{Hit{}, false, "default"},
		{Hit{Layer: im, Kind: HitHandle, Handle: HandleNW}, true, "nwse-resize"},
		{Hit{Layer: im, Kind: HitHandle, Handle: HandleNE}, true, "nesw-resize"},
		{Hit{Layer: im, Kind: HitRotate}, true, "grab"},
		{Hit{Layer: im, Kind: HitBody}, true, "move"},
	}
	for _, c := range cases {
		if got := Cursor(c.hit, c.ok); got != c.want {
			t.Fatalf("Cursor(%+v)=%s want %s", c.hit, got, c.want)
		}
	}
}
