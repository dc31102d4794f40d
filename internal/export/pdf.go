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
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"pagecomposer/internal/scene"
	"pagecomposer/internal/version"
)

// PDF writes the selected pages of p as one PDF document. Each PDF page is
// sized to its scene page in points and carries the page raster.
func PDF(w io.Writer, p *scene.Project, opt Options) error {
	if p == nil || len(p.Pages) == 0 {
		return fmt.Errorf("project has no pages")
	}
	idx := pageIndexes(len(p.Pages), opt.Pages)
	if len(idx) == 0 {
		return fmt.Errorf("export pdf: %w", scene.ErrPageIndex)
	}
	first := p.Pages[idx[0]]

	// Use points for 1:1 mapping from page units to PDF
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: first.W, Ht: first.H},
	})
	pdf.SetTitle(p.Title, true)
	pdf.SetCreator("pagecomposer "+version.String(), true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)

	for _, i := range idx {
		pg := p.Pages[i]
		pdf.AddPageFormat("", gofpdf.SizeType{Wd: pg.W, Ht: pg.H})

		var buf bytes.Buffer
		if err := png.Encode(&buf, RenderPage(pg, opt)); err != nil {
			return fmt.Errorf("encode page %d: %w", i+1, err)
		}
		name := fmt.Sprintf("page-%d", i+1)
		imgOpt := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, imgOpt, &buf)
		pdf.ImageOptions(name, 0, 0, pg.W, pg.H, false, imgOpt, 0, "")
		if err := pdf.Error(); err != nil {
			return fmt.Errorf("pdf page %d: %w", i+1, err)
		}
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// PDFFile writes p as a PDF at path.
func PDFFile(p *scene.Project, path string, opt Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create pdf: %w", err)
	}
	if err := PDF(f, p, opt); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close pdf: %w", err)
	}
	return nil
}
