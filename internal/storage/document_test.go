/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"errors"
	"testing"
	"time"

	"pagecomposer/internal/scene"
)

func sampleProject() *scene.Project {
	p := scene.NewProject("Sample", 900, 1600)
	p.CreatedAt = time.UnixMilli(1700000000123)
	pg := p.Pages[0]

	t1 := scene.NewTextLayer("", "Hello")
	t1.Props().X, t1.Props().Y = 120, 340
	t1.Props().ZIndex = 2
	t1.Props().Angle = 30
	t1.FontFamily = "Go"
	t1.FontSize = 32
	t1.Color = "#ff0000"
	t1.Align = scene.AlignCenter
	t1.Bold = true
	pg.AddLayer(t1)

	im := scene.NewImageLayer("", "data:image/png;base64,AAAA")
	im.Props().X, im.Props().Y = 10, 20
	im.Props().ZIndex = 1
	im.Props().Visible = false
	im.Width, im.Height = 150, 75
	im.Opacity = 0.5
	pg.AddLayer(im)

	pg.SetBackground(scene.NewBackgroundLayer("", "bg.png", pg.W, pg.H))

	p2 := p.AddPage(600, 800)
	p2.AddLayer(scene.NewTextLayer("", "second"))
	p.ActivePageIndex = 1
	return p
}

func TestSerializeRoundTrip(t *testing.T) {
	p := sampleProject()
	data, err := Serialize(p)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if err := Validate(data); err != nil {
		t.Fatalf("serialized document fails schema: %v", err)
	}
	got, warnings, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if got.ID != p.ID || got.Title != p.Title || got.ActivePageIndex != 1 || !got.CreatedAt.Equal(p.CreatedAt) {
		t.Fatalf("project header mismatch: got %+v", got)
	}
	if len(got.Pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(got.Pages))
	}
	for i, want := range p.Pages {
		pg := got.Pages[i]
		if pg.ID != want.ID || pg.W != want.W || pg.H != want.H {
			t.Fatalf("page %d = %s %vx%v, want %s %vx%v", i, pg.ID, pg.W, pg.H, want.ID, want.W, want.H)
		}
		if len(pg.Layers) != len(want.Layers) {
			t.Fatalf("page %d layers = %d, want %d", i, len(pg.Layers), len(want.Layers))
		}
		for j, wl := range want.Layers {
			gl := pg.Layers[j]
			if gl.ID() != wl.ID() || *gl.Props() != *wl.Props() {
				t.Fatalf("page %d layer %d: got %s %+v, want %s %+v", i, j, gl.ID(), *gl.Props(), wl.ID(), *wl.Props())
			}
			switch w := wl.(type) {
			case *scene.TextLayer:
				g, ok := gl.(*scene.TextLayer)
				if !ok {
					t.Fatalf("layer %s: got %T, want text", wl.ID(), gl)
				}
				if g.Text != w.Text || g.FontFamily != w.FontFamily || g.FontSize != w.FontSize ||
					g.Color != w.Color || g.Align != w.Align || g.Bold != w.Bold || g.Italic != w.Italic {
					t.Fatalf("text layer mismatch: got %+v, want %+v", g, w)
				}
			case *scene.ImageLayer:
				g, ok := gl.(*scene.ImageLayer)
				if !ok {
					t.Fatalf("layer %s: got %T, want image", wl.ID(), gl)
				}
				if g.Source != w.Source || g.Width != w.Width || g.Height != w.Height ||
					g.Opacity != w.Opacity || g.IsBackground != w.IsBackground {
					t.Fatalf("image layer mismatch: got %+v, want %+v", g, w)
				}
			}
		}
	}
	bg := got.Pages[0].Background
	if bg == nil || bg.ID() != p.Pages[0].Background.ID() {
		t.Fatalf("background not restored: %v", bg)
	}
}

func TestNewProjectRoundTripKeepsCreatedAt(t *testing.T) {
	p := scene.NewProject("fresh", 900, 1600)
	data, err := Serialize(p)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	got, _, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if !got.CreatedAt.Equal(p.CreatedAt) {
		t.Fatalf("CreatedAt = %v, want %v", got.CreatedAt, p.CreatedAt)
	}
}

func TestDeserializeDefaultsAndLegacyFields(t *testing.T) {
	data := []byte(`{
		"title": "Legacy",
		"activePageIndex": 7,
		"pages": [ { "layers": [
			{ "__type": "text" },
			{ "__type": "image", "imageDataUrl": "data:image/png;base64,AAAA", "opacity": 0, "visible": false },
			{ "__type": "shape", "id": "x" }
		] } ]
	}`)
	p, warnings, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if p.ID == "" {
		t.Fatalf("project id not assigned")
	}
	if p.ActivePageIndex != 0 {
		t.Fatalf("active page = %d, want clamped 0", p.ActivePageIndex)
	}
	if len(warnings) != 1 || !errors.Is(warnings[0], ErrUnknownLayer) {
		t.Fatalf("warnings = %v, want one ErrUnknownLayer", warnings)
	}
	pg := p.Pages[0]
	if pg.W != 900 || pg.H != 1600 {
		t.Fatalf("page size = %vx%v, want 900x1600", pg.W, pg.H)
	}
	if len(pg.Layers) != 2 {
		t.Fatalf("layers = %d, want 2", len(pg.Layers))
	}
	var text *scene.TextLayer
	var img *scene.ImageLayer
	for _, l := range pg.Layers {
		switch v := l.(type) {
		case *scene.TextLayer:
			text = v
		case *scene.ImageLayer:
			img = v
		}
	}
	if text == nil || img == nil {
		t.Fatalf("expected one text and one image layer, got %v", pg.Layers)
	}
	if text.FontSize != 48 || text.FontFamily != "sans-serif" || text.Color != "#ffffff" || text.Align != scene.AlignLeft {
		t.Fatalf("text defaults = %+v", text)
	}
	if !text.Props().Visible || text.Props().X != 0 || text.Props().Y != 0 {
		t.Fatalf("text props = %+v, want visible at origin", *text.Props())
	}
	if img.Source != "data:image/png;base64,AAAA" {
		t.Fatalf("legacy imageDataUrl not read: %q", img.Source)
	}
	if img.Width != 200 || img.Height != 200 {
		t.Fatalf("image size = %vx%v, want 200x200", img.Width, img.Height)
	}
	if img.Opacity != 0 || img.Props().Visible {
		t.Fatalf("explicit opacity/visible lost: opacity=%v visible=%v", img.Opacity, img.Props().Visible)
	}
}

func TestDeserializeRestoredImageKeepsSize(t *testing.T) {
	data := []byte(`{"pages":[{"layers":[{"__type":"image","imageSource":"a.png","width":50,"height":40}]}]}`)
	p, _, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	im := p.Pages[0].Layers[0].(*scene.ImageLayer)
	im.SetImage(solid(300, 100))
	if im.Width != 50 || im.Height != 40 {
		t.Fatalf("restored image resized to %vx%v, want 50x40", im.Width, im.Height)
	}
}

func TestDeserializeEmptyPagesYieldsOnePage(t *testing.T) {
	p, _, err := Deserialize([]byte(`{"id":"proj_x","pages":[]}`))
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if len(p.Pages) != 1 || p.ActivePageIndex != 0 {
		t.Fatalf("pages = %d active = %d, want one page", len(p.Pages), p.ActivePageIndex)
	}
}

func TestDeserializeMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":        `{ this is not json`,
		"pages not array": `{"pages": 3}`,
		"missing pages":   `{"title": "x"}`,
		"layer type":      `{"pages":[{"layers":[{"id":"a"}]}]}`,
		"bad field type":  `{"pages":[{"w":"wide"}]}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := Deserialize([]byte(doc))
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("err = %v, want ErrMalformed", err)
			}
		})
	}
}
