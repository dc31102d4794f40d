/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"pagecomposer/internal/imaging"
	"pagecomposer/internal/scene"
	"pagecomposer/internal/textlayout"
)

// Thumbnail sizes used by project listings.
const (
	ThumbWidth  = 180
	ThumbHeight = 320
)

// Thumbnail renders pg scaled to fit maxW x maxH, keeping the aspect ratio.
// Non-positive limits use ThumbWidth x ThumbHeight.
func Thumbnail(pg *scene.Page, maxW, maxH int, fonts textlayout.Provider) *image.RGBA {
	if maxW <= 0 {
		maxW = ThumbWidth
	}
	if maxH <= 0 {
		maxH = ThumbHeight
	}
	scale := min(float64(maxW)/pg.W, float64(maxH)/pg.H)
	return RenderPage(pg, Options{Scale: scale, Fonts: fonts})
}

// ThumbnailDataURL returns the thumbnail as a PNG data: URL.
func ThumbnailDataURL(pg *scene.Page, maxW, maxH int, fonts textlayout.Provider) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, Thumbnail(pg, maxW, maxH, fonts)); err != nil {
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}
	return imaging.EncodeDataURL("image/png", buf.Bytes()), nil
}
