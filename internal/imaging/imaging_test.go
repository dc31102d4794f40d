/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package imaging

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/image/bmp"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x40, A: 0xff})
		}
	}
	return img
}

func pngDataURL(t *testing.T, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(w, h)); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return EncodeDataURL("image/png", buf.Bytes())
}

func TestDecodeDataURL(t *testing.T) {
	img, format, err := Decode(pngDataURL(t, 12, 7))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if format != "png" || img.Bounds().Dx() != 12 || img.Bounds().Dy() != 7 {
		t.Fatalf("got %s %v", format, img.Bounds())
	}
}

func TestDecodeBMPFile(t *testing.T) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, testImage(5, 3)); err != nil {
		t.Fatalf("encode bmp: %v", err)
	}
	path := filepath.Join(t.TempDir(), "pic.bmp")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	img, format, err := Decode("file://" + path)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if format != "bmp" || img.Bounds().Dx() != 5 {
		t.Fatalf("got %s %v", format, img.Bounds())
	}
}

func TestParseDataURLPlain(t *testing.T) {
	b, mt, err := ParseDataURL("data:,hello%20world")
	if err != nil || string(b) != "hello world" || mt != "text/plain" {
		t.Fatalf("got %q %q %v", b, mt, err)
	}
	if _, _, err := ParseDataURL("data:image/png;base64"); err == nil {
		t.Fatalf("expected error for missing comma")
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, _, err := Decode(""); !errors.Is(err, ErrEmptySource) {
		t.Fatalf("want ErrEmptySource, got %v", err)
	}
	if _, _, err := Decode(EncodeDataURL("image/png", []byte("not an image"))); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, _, err := Decode(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestLoaderDeliversReady(t *testing.T) {
	l := NewLoader(2)
	defer l.Close()
	ctx := context.Background()
	l.Request(ctx, "page_a", "layer_ok", pngDataURL(t, 4, 4))
	l.Request(ctx, "page_a", "layer_bad", "data:image/png;base64,AAAA")

	got := map[string]Ready{}
	timeout := time.After(5 * time.Second)
	for len(got) < 2 {
		select {
		case r := <-l.Ready():
			got[r.LayerID] = r
		case <-timeout:
			t.Fatalf("timed out, received %d results", len(got))
		}
	}
	if ok := got["layer_ok"]; ok.Err != nil || ok.Image == nil || ok.PageID != "page_a" {
		t.Fatalf("unexpected ok result: %+v", ok)
	}
	if bad := got["layer_bad"]; bad.Err == nil || bad.Image != nil {
		t.Fatalf("expected failure result: %+v", bad)
	}
}

func TestLoaderCloseStopsDelivery(t *testing.T) {
	l := NewLoader(1)
	l.Close()
	l.Close()
	l.Request(context.Background(), "p", "l", pngDataURL(t, 2, 2))
	if _, open := <-l.Ready(); open {
		t.Fatalf("ready channel should be closed and empty")
	}
}
