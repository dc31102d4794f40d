/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export writes pages as PNG images, multi-page PDF documents and
// small thumbnails. Exporters only consume layer Measure/Draw through the
// raster surface in internal/render.
package export

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"pagecomposer/internal/scene"
	"pagecomposer/internal/textlayout"
)

// DefaultScale is the device pixel ratio used when Options.Scale is unset.
const DefaultScale = 2.0

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// ErrUnknownFormat is returned by ToFile for unsupported file extensions.
var ErrUnknownFormat = errors.New("unknown export format")

// Options controls raster exports. Page coordinates are multiplied by Scale;
// PDF pages stay at one point per page unit and embed the raster at Scale.
type Options struct {
	Scale float64
	// Pages selects zero-based page indexes; empty means the active page for
	// PNG and all pages for PDF.
	Pages []int
	// Fonts resolves text faces; nil uses textlayout.Default.
	Fonts textlayout.Provider
}

// PresetOptions returns the options a preset stands for.
func PresetOptions(p PresetName) (Options, error) {
	switch PresetName(strings.ToLower(string(p))) {
	case PresetWeb, "":
		return Options{Scale: 1}, nil
	case PresetPrint:
		// 300 dpi at 72 units per inch
		return Options{Scale: 300.0 / 72.0}, nil
	default:
		return Options{}, fmt.Errorf("unknown preset %q", p)
	}
}

func (o Options) scale() float64 {
	if o.Scale <= 0 || math.IsNaN(o.Scale) || math.IsInf(o.Scale, 0) {
		return DefaultScale
	}
	return o.Scale
}

func pageIndexes(total int, specific []int) []int {
	if len(specific) == 0 {
		out := make([]int, total)
		for i := range out {
			out[i] = i
		}
		return out
	}
	out := make([]int, 0, len(specific))
	for _, i := range specific {
		if i >= 0 && i < total {
			out = append(out, i)
		}
	}
	return out
}

// ToFile exports p to outPath, choosing the format from the extension
// (.png or .pdf). PNG export of several pages writes <name>-page-<n>.png
// files next to outPath. It returns the written paths.
func ToFile(p *scene.Project, outPath string, opt Options) ([]string, error) {
	if p == nil {
		return nil, errors.New("project is nil")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure out dir: %w", err)
	}
	switch strings.ToLower(filepath.Ext(outPath)) {
	case ".png":
		return pngFiles(p, outPath, opt)
	case ".pdf":
		if err := PDFFile(p, outPath, opt); err != nil {
			return nil, err
		}
		return []string{outPath}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, outPath)
	}
}

func pngFiles(p *scene.Project, outPath string, opt Options) ([]string, error) {
	idx := opt.Pages
	if len(idx) == 0 {
		idx = []int{p.ActivePageIndex}
	}
	idx = pageIndexes(len(p.Pages), idx)
	if len(idx) == 0 {
		return nil, fmt.Errorf("export png: %w", scene.ErrPageIndex)
	}
	if len(idx) == 1 {
		if err := PNGFile(p.Pages[idx[0]], outPath, opt); err != nil {
			return nil, err
		}
		return []string{outPath}, nil
	}
	stem := strings.TrimSuffix(outPath, filepath.Ext(outPath))
	out := make([]string, 0, len(idx))
	for _, i := range idx {
		name := fmt.Sprintf("%s-page-%d.png", stem, i+1)
		if err := PNGFile(p.Pages[i], name, opt); err != nil {
			return out, fmt.Errorf("page %d: %w", i+1, err)
		}
		out = append(out, name)
	}
	return out, nil
}
