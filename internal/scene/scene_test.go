/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"errors"
	"image"
	"image/color"
	"os"
	"testing"

	"pagecomposer/internal/geom"
	"pagecomposer/internal/textlayout"
)

func TestMain(m *testing.M) {
	// 7px per glyph keeps text widths exact
	SetTextProvider(textlayout.BasicProvider{})
	os.Exit(m.Run())
}

type recorder struct {
	fills  []geom.Rect
	images []geom.Rect
	texts  []TextRun
}

func (r *recorder) FillRect(b geom.Rect, _ color.Color) { r.fills = append(r.fills, b) }
func (r *recorder) DrawImage(_ image.Image, b geom.Rect, _, _ float64) {
	r.images = append(r.images, b)
}
func (r *recorder) DrawText(run TextRun) { r.texts = append(r.texts, run) }

func TestTextMeasureFollowsAnchor(t *testing.T) {
	tl := NewTextLayer("", "ABCD") // 28px wide
	tl.Props().X = 100
	cases := []struct {
		align Align
		left  float64
	}{
		{AlignLeft, 100},
		{AlignCenter, 86},
		{AlignRight, 72},
	}
	for _, c := range cases {
		tl.Align = c.align
		got := tl.Measure()
		if got.X != c.left || got.W != 28 || got.H != DefaultFontSize || got.Y != 50 {
			t.Fatalf("%s: unexpected box %+v", c.align, got)
		}
		if a := AnchorFor(c.align, got.X, got.W); a != 100 {
			t.Fatalf("%s: anchor round trip got %v", c.align, a)
		}
	}
}

func TestTextDefaults(t *testing.T) {
	tl := NewTextLayer("", DefaultText)
	if tl.FontFamily != "sans-serif" || tl.FontSize != 48 || tl.Color != "#ffffff" || tl.Align != AlignLeft {
		t.Fatalf("unexpected defaults: %+v", tl)
	}
	if !tl.Props().Visible || tl.Props().X != 50 || tl.Props().Y != 50 {
		t.Fatalf("unexpected default props: %+v", tl.Props())
	}
	if err := ValidateID(tl.ID(), PrefixLayer); err != nil {
		t.Fatalf("layer id: %v", err)
	}
}

func TestImageContainsRotated(t *testing.T) {
	im := NewImageLayer("", "")
	im.Width, im.Height = 100, 10
	if !im.Contains(geom.Pt{X: 95, Y: 5}) {
		t.Fatalf("unrotated bar should contain (95,5)")
	}
	im.Props().Angle = 90
	if im.Contains(geom.Pt{X: 95, Y: 5}) {
		t.Fatalf("vertical bar should not contain (95,5)")
	}
	if !im.Contains(geom.Pt{X: 50, Y: 50}) {
		t.Fatalf("vertical bar should contain (50,50)")
	}
}

func TestFitSize(t *testing.T) {
	cases := []struct {
		w, h         int
		wantW, wantH float64
	}{
		{1200, 600, 600, 300},
		{400, 1600, 200, 800},
		{300, 200, 300, 200},
		{0, 10, DefaultImageWidth, DefaultImageHeight},
	}
	for _, c := range cases {
		w, h := FitSize(c.w, c.h)
		if w != c.wantW || h != c.wantH {
			t.Fatalf("FitSize(%d,%d)=%vx%v want %vx%v", c.w, c.h, w, h, c.wantW, c.wantH)
		}
	}
}

func TestSetImageFitsOnlyOnce(t *testing.T) {
	im := NewImageLayer("", "a.png")
	im.SetImage(image.NewRGBA(image.Rect(0, 0, 1200, 600)))
	if im.Width != 600 || im.Height != 300 {
		t.Fatalf("fresh layer should fit: %vx%v", im.Width, im.Height)
	}
	im.Width, im.Height = 50, 50
	im.SetImage(image.NewRGBA(image.Rect(0, 0, 10, 10)))
	if im.Width != 50 || im.Height != 50 {
		t.Fatalf("second decode must not resize: %vx%v", im.Width, im.Height)
	}

	restored := NewImageLayer("", "b.png")
	restored.Width, restored.Height = 80, 40
	restored.KeepSize()
	restored.SetImage(image.NewRGBA(image.Rect(0, 0, 300, 300)))
	if restored.Width != 80 || restored.Height != 40 {
		t.Fatalf("restored layer should keep size: %vx%v", restored.Width, restored.Height)
	}
}

func TestPageSortIsStable(t *testing.T) {
	pg := NewPage("", 0, 0)
	if pg.W != 900 || pg.H != 1600 {
		t.Fatalf("default page size %vx%v", pg.W, pg.H)
	}
	a, b, c := NewTextLayer("a", "a"), NewTextLayer("b", "b"), NewTextLayer("c", "c")
	c.Props().ZIndex = -1
	pg.AddLayer(a)
	pg.AddLayer(b)
	pg.AddLayer(c)
	if pg.AddLayer(a) {
		t.Fatalf("duplicate id should not be added")
	}
	got := []string{pg.Layers[0].ID(), pg.Layers[1].ID(), pg.Layers[2].ID()}
	if got[0] != "c" || got[1] != "a" || got[2] != "b" {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestInsertLayerAtClamps(t *testing.T) {
	pg := NewPage("", 100, 100)
	pg.AddLayer(NewTextLayer("a", "a"))
	pg.InsertLayerAt(99, NewTextLayer("b", "b"))
	pg.InsertLayerAt(-3, NewTextLayer("c", "c"))
	if pg.IndexOf("c") != 0 || pg.IndexOf("a") != 1 || pg.IndexOf("b") != 2 {
		t.Fatalf("unexpected indices c=%d a=%d b=%d", pg.IndexOf("c"), pg.IndexOf("a"), pg.IndexOf("b"))
	}
}

func TestBackgroundLifecycle(t *testing.T) {
	pg := NewPage("", 900, 1600)
	pg.AddLayer(NewTextLayer("t", "x"))
	bg1 := NewImageLayer("bg1", "one.png")
	if prev, idx := pg.SetBackground(bg1); prev != nil || idx != -1 {
		t.Fatalf("no previous background expected")
	}
	if pg.Layers[0] != Layer(bg1) || bg1.Props().ZIndex != BackgroundZ || bg1.Width != 900 || bg1.Height != 1600 {
		t.Fatalf("background not installed beneath: %+v", bg1)
	}
	bg2 := NewImageLayer("bg2", "two.png")
	prev, idx := pg.SetBackground(bg2)
	if prev != bg1 || idx != 0 || pg.Find("bg1") != nil || pg.Background != bg2 {
		t.Fatalf("previous background should be replaced")
	}
	pg.RemoveLayer("bg2")
	if pg.Background != nil {
		t.Fatalf("removing the background layer should clear the reference")
	}
	pg.RestoreBackground(bg2, 0)
	if pg.Background != bg2 || pg.IndexOf("bg2") != 0 {
		t.Fatalf("restore failed")
	}
}

func TestMinMaxZIgnoreBackground(t *testing.T) {
	pg := NewPage("", 100, 100)
	if pg.MaxZ() != 0 || pg.MinZ() != 0 {
		t.Fatalf("empty page z bounds should be 0")
	}
	pg.SetBackground(NewImageLayer("", ""))
	a := NewTextLayer("", "a")
	a.Props().ZIndex = 3
	b := NewTextLayer("", "b")
	b.Props().ZIndex = -2
	pg.AddLayer(a)
	pg.AddLayer(b)
	if pg.MaxZ() != 3 || pg.MinZ() != -2 {
		t.Fatalf("got max=%d min=%d", pg.MaxZ(), pg.MinZ())
	}
}

func TestPageDraw(t *testing.T) {
	pg := NewPage("", 100, 100)
	hidden := NewTextLayer("", "hidden")
	hidden.Props().Visible = false
	pg.AddLayer(hidden)
	pg.AddLayer(NewTextLayer("", "shown"))
	pg.AddLayer(NewImageLayer("", "pending.png"))
	r := &recorder{}
	pg.Draw(r)
	if len(r.fills) != 1 || len(r.texts) != 1 || r.texts[0].Text != "shown" || len(r.images) != 0 {
		t.Fatalf("unexpected draw calls: %+v", r)
	}

	bg := NewImageLayer("", "bg.png")
	pg.SetBackground(bg)
	bg.SetImage(image.NewRGBA(image.Rect(0, 0, 10, 10)))
	r = &recorder{}
	pg.Draw(r)
	if len(r.fills) != 0 || len(r.images) != 1 || r.images[0] != geom.R(0, 0, 100, 100) {
		t.Fatalf("background should replace the fill: %+v", r)
	}
}

func TestProjectPages(t *testing.T) {
	p := NewProject("demo", 0, 0)
	if err := ValidateID(p.ID, PrefixProject); err != nil {
		t.Fatalf("project id: %v", err)
	}
	if err := p.RemovePage(0); !errors.Is(err, ErrLastPage) {
		t.Fatalf("want ErrLastPage, got %v", err)
	}
	if len(p.Pages) != 1 {
		t.Fatalf("page must survive a rejected removal")
	}
	second := p.AddPage(500, 500)
	if err := p.SetActivePage(1); err != nil {
		t.Fatalf("select: %v", err)
	}
	if p.ActivePage() != second || p.PageByID(second.ID) != second || p.PageIndex(second.ID) != 1 {
		t.Fatalf("page lookup mismatch")
	}
	if err := p.SetActivePage(5); !errors.Is(err, ErrPageIndex) {
		t.Fatalf("want ErrPageIndex, got %v", err)
	}
	if err := p.RemovePage(1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if p.ActivePageIndex != 0 {
		t.Fatalf("active index should clamp to 0, got %d", p.ActivePageIndex)
	}
	if err := p.RemovePage(3); !errors.Is(err, ErrPageIndex) {
		t.Fatalf("want ErrPageIndex, got %v", err)
	}
}

func TestRemovePageKeepsActivePage(t *testing.T) {
	p := NewProject("demo", 0, 0)
	p.AddPage(0, 0)
	third := p.AddPage(0, 0)
	if err := p.SetActivePage(2); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := p.RemovePage(0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if p.ActivePage() != third || p.ActivePageIndex != 1 {
		t.Fatalf("active page moved: index=%d", p.ActivePageIndex)
	}
	if err := p.RemovePage(1); err != nil {
		t.Fatalf("remove active: %v", err)
	}
	if p.ActivePageIndex != 0 {
		t.Fatalf("active index should clamp to 0, got %d", p.ActivePageIndex)
	}
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#ff8000")
	if err != nil || c != (color.RGBA{R: 0xff, G: 0x80, A: 0xff}) {
		t.Fatalf("got %v %v", c, err)
	}
	c, err = ParseHexColor("#fff")
	if err != nil || c != (color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}) {
		t.Fatalf("short form: %v %v", c, err)
	}
	if _, err := ParseHexColor("red"); err == nil {
		t.Fatalf("expected error for named color")
	}
}
