/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"pagecomposer/internal/geom"
	"pagecomposer/internal/textlayout"
)

// DefaultColor is used for text whose color string does not parse.
var DefaultColor = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// PageFill is painted under a page without a background layer.
var PageFill = color.RGBA{A: 0xff}

// Surface is the rendering backend layers draw onto. Boxes are in page
// coordinates; angles in degrees about the box center.
type Surface interface {
	FillRect(r geom.Rect, c color.Color)
	DrawImage(img image.Image, box geom.Rect, angle, opacity float64)
	DrawText(run TextRun)
}

// TextRun is one line of text laid out left to right from Box's top-left.
type TextRun struct {
	Text  string
	Font  textlayout.FontSpec
	Color color.Color
	Box   geom.Rect
	Angle float64
}

// ParseHexColor accepts #rgb and #rrggbb.
func ParseHexColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
