/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// DefaultFamily is the family used when a requested family is not loaded.
const DefaultFamily = "Go"

// FontLibrary stores parsed OpenType fonts keyed by family and style, plus
// the faces created from them. Faces are cached per size; callers share one
// library on the event loop.
type FontLibrary struct {
	mu       sync.Mutex
	fonts    map[fontKey]*opentype.Font
	faces    map[faceKey]font.Face
	fallback string
}

type fontKey struct {
	family string
	bold   bool
	italic bool
}

type faceKey struct {
	fontKey
	size float64
	dpi  float64
}

func NewFontLibrary() *FontLibrary {
	return &FontLibrary{
		fonts:    make(map[fontKey]*opentype.Font),
		faces:    make(map[faceKey]font.Face),
		fallback: DefaultFamily,
	}
}

// NewGoFontLibrary returns a library preloaded with the Go font family,
// which also serves as the fallback for unknown families such as
// "sans-serif".
func NewGoFontLibrary() (*FontLibrary, error) {
	fl := NewFontLibrary()
	builtin := []struct {
		family       string
		bold, italic bool
		data         []byte
	}{
		{DefaultFamily, false, false, goregular.TTF},
		{DefaultFamily, true, false, gobold.TTF},
		{DefaultFamily, false, true, goitalic.TTF},
		{DefaultFamily, true, true, gobolditalic.TTF},
		{"monospace", false, false, gomono.TTF},
	}
	for _, b := range builtin {
		if err := fl.Register(b.family, b.bold, b.italic, b.data); err != nil {
			return nil, err
		}
	}
	return fl, nil
}

// Register parses font data and stores it under the given family and style.
func (fl *FontLibrary) Register(family string, bold, italic bool, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", family, err)
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	if fl.fonts == nil {
		fl.fonts = make(map[fontKey]*opentype.Font)
	}
	fl.fonts[fontKey{family: normFamily(family), bold: bold, italic: italic}] = f
	return nil
}

// LoadTTF loads a font file into the library under the given family and style.
func (fl *FontLibrary) LoadTTF(family string, bold, italic bool, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	return fl.Register(family, bold, italic, data)
}

// Families lists the loaded family names.
func (fl *FontLibrary) Families() []string {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for k := range fl.fonts {
		if !seen[k.family] {
			seen[k.family] = true
			out = append(out, k.family)
		}
	}
	return out
}

func normFamily(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.Trim(s, `"'`)))
}

// find resolves the closest font for spec. Exact match first, then the same
// family in any style, then the fallback family in the requested style.
func (fl *FontLibrary) find(spec FontSpec) (*opentype.Font, fontKey) {
	fam := normFamily(spec.Family)
	// CSS font lists: take the first entry that is loaded
	for _, part := range strings.Split(fam, ",") {
		k := fontKey{family: normFamily(part), bold: spec.Bold, italic: spec.Italic}
		if f, ok := fl.fonts[k]; ok {
			return f, k
		}
	}
	for k, f := range fl.fonts {
		if k.family == fam {
			return f, k
		}
	}
	k := fontKey{family: normFamily(fl.fallback), bold: spec.Bold, italic: spec.Italic}
	if f, ok := fl.fonts[k]; ok {
		return f, k
	}
	k.bold, k.italic = false, false
	if f, ok := fl.fonts[k]; ok {
		return f, k
	}
	return nil, fontKey{}
}

func (fl *FontLibrary) face(spec FontSpec, dpi float64) (font.Face, bool) {
	if fl == nil {
		return nil, false
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	f, k := fl.find(spec)
	if f == nil {
		return nil, false
	}
	fk := faceKey{fontKey: k, size: spec.Size, dpi: dpi}
	if face, ok := fl.faces[fk]; ok {
		return face, true
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: spec.Size, DPI: dpi, Hinting: font.HintingNone})
	if err != nil {
		return nil, false
	}
	if fl.faces == nil {
		fl.faces = make(map[faceKey]font.Face)
	}
	fl.faces[fk] = face
	return face, true
}

// OTProvider resolves FontSpec using a FontLibrary and falls back to another Provider.
// At the default 72 DPI one point equals one pixel.
type OTProvider struct {
	Lib      *FontLibrary
	DPI      float64 // default 72 if zero
	Fallback Provider
}

func (p OTProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	if spec.Size <= 0 {
		spec.Size = 12
	}
	dpi := p.DPI
	if dpi <= 0 {
		dpi = 72
	}
	if face, ok := p.Lib.face(spec, dpi); ok {
		return face, metricsOf(face)
	}
	fb := p.Fallback
	if fb == nil {
		fb = BasicProvider{}
	}
	return fb.Resolve(spec)
}

var (
	defaultOnce     sync.Once
	defaultProvider Provider
)

// Default returns the process-wide provider backed by the Go fonts. If the
// embedded fonts fail to parse it degrades to BasicProvider.
func Default() Provider {
	defaultOnce.Do(func() {
		lib, err := NewGoFontLibrary()
		if err != nil {
			defaultProvider = BasicProvider{}
			return
		}
		defaultProvider = OTProvider{Lib: lib}
	})
	return defaultProvider
}
