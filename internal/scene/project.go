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
	"fmt"
	"time"
)

var (
	// ErrLastPage is returned when removing the only page of a project.
	ErrLastPage = errors.New("cannot remove the last page")
	// ErrPageIndex is returned for a page index outside the project.
	ErrPageIndex = errors.New("page index out of range")
)

// Project is an ordered, never empty list of pages.
type Project struct {
	ID              string
	Title           string
	Pages           []*Page
	ActivePageIndex int
	CreatedAt       time.Time
}

// NewProject creates a project with one page of the given size.
func NewProject(title string, w, h float64) *Project {
	return &Project{
		ID:        NewProjectID(),
		Title:     title,
		Pages:     []*Page{NewPage("", w, h)},
		CreatedAt: time.Now().Truncate(time.Millisecond),
	}
}

// ActivePage returns the page being edited.
func (p *Project) ActivePage() *Page {
	if len(p.Pages) == 0 {
		return nil
	}
	i := p.ActivePageIndex
	if i < 0 || i >= len(p.Pages) {
		i = 0
	}
	return p.Pages[i]
}

// AddPage appends a page and returns it. The active page is unchanged.
func (p *Project) AddPage(w, h float64) *Page {
	pg := NewPage("", w, h)
	p.Pages = append(p.Pages, pg)
	return pg
}

// RemovePage deletes the page at index. The active page stays active when it
// survives; otherwise the index is clamped to the remaining pages.
func (p *Project) RemovePage(index int) error {
	if index < 0 || index >= len(p.Pages) {
		return fmt.Errorf("remove page %d of %d: %w", index, len(p.Pages), ErrPageIndex)
	}
	if len(p.Pages) == 1 {
		return ErrLastPage
	}
	p.Pages = append(p.Pages[:index], p.Pages[index+1:]...)
	if index < p.ActivePageIndex {
		p.ActivePageIndex--
	}
	if p.ActivePageIndex >= len(p.Pages) {
		p.ActivePageIndex = len(p.Pages) - 1
	}
	return nil
}

// SetActivePage selects the page at index.
func (p *Project) SetActivePage(index int) error {
	if index < 0 || index >= len(p.Pages) {
		return fmt.Errorf("select page %d of %d: %w", index, len(p.Pages), ErrPageIndex)
	}
	p.ActivePageIndex = index
	return nil
}

// PageIndex returns the position of the page with id, or -1.
func (p *Project) PageIndex(id string) int {
	for i, pg := range p.Pages {
		if pg.ID == id {
			return i
		}
	}
	return -1
}

// PageByID returns the page with id, or nil.
func (p *Project) PageByID(id string) *Page {
	if i := p.PageIndex(id); i >= 0 {
		return p.Pages[i]
	}
	return nil
}

// Layer resolves a layer by page and layer id. Either missing yields nil.
func (p *Project) Layer(pageID, layerID string) (*Page, Layer) {
	pg := p.PageByID(pageID)
	if pg == nil {
		return nil, nil
	}
	return pg, pg.Find(layerID)
}
