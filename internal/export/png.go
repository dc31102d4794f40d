/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"pagecomposer/internal/render"
	"pagecomposer/internal/scene"
)

// RenderPage rasterizes pg at the options' scale.
func RenderPage(pg *scene.Page, opt Options) *image.RGBA {
	return render.Page(pg, opt.scale(), opt.Fonts)
}

// PNG encodes pg as a PNG image to w.
func PNG(w io.Writer, pg *scene.Page, opt Options) error {
	if pg == nil {
		return fmt.Errorf("page is nil")
	}
	if err := png.Encode(w, RenderPage(pg, opt)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// PNGFile writes pg as a PNG file at path.
func PNGFile(pg *scene.Page, path string, opt Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := PNG(f, pg, opt); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}
