/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pagecomposer/internal/scene"
)

// Layer type tags used in the "__type" field.
const (
	TypeText  = "text"
	TypeImage = "image"
)

// ErrUnknownLayer marks a persisted layer whose type tag is not recognized.
// Such layers are skipped; the error is reported as a warning.
var ErrUnknownLayer = errors.New("unknown layer type")

// Document is the persisted form of a project. Timestamps are Unix milliseconds.
type Document struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	CreatedAt       int64     `json:"createdAt"`
	SavedAt         int64     `json:"savedAt,omitempty"`
	ActivePageIndex int       `json:"activePageIndex"`
	Pages           []PageDoc `json:"pages"`
}

type PageDoc struct {
	ID     string            `json:"id,omitempty"`
	W      float64           `json:"w"`
	H      float64           `json:"h"`
	Layers []json.RawMessage `json:"layers"`
}

type textDoc struct {
	Type       string  `json:"__type"`
	ID         string  `json:"id"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	ZIndex     int     `json:"zIndex"`
	Visible    bool    `json:"visible"`
	Angle      float64 `json:"angle,omitempty"`
	Text       string  `json:"text"`
	FontFamily string  `json:"fontFamily"`
	FontSize   float64 `json:"fontSize"`
	Color      string  `json:"color"`
	Align      string  `json:"align"`
	Bold       bool    `json:"bold"`
	Italic     bool    `json:"italic"`
}

type imageDoc struct {
	Type         string  `json:"__type"`
	ID           string  `json:"id"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	ZIndex       int     `json:"zIndex"`
	Visible      bool    `json:"visible"`
	Angle        float64 `json:"angle,omitempty"`
	ImageSource  string  `json:"imageSource,omitempty"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Opacity      float64 `json:"opacity"`
	IsBackground bool    `json:"isBackground"`
}

// layerDoc is the union read back from disk. Pointer fields distinguish
// "absent" from a zero value where the defaults differ.
type layerDoc struct {
	Type    string  `json:"__type"`
	ID      string  `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	ZIndex  int     `json:"zIndex"`
	Visible *bool   `json:"visible"`
	Angle   float64 `json:"angle"`

	Text       string  `json:"text"`
	FontFamily string  `json:"fontFamily"`
	FontSize   float64 `json:"fontSize"`
	Color      string  `json:"color"`
	Align      string  `json:"align"`
	Bold       bool    `json:"bold"`
	Italic     bool    `json:"italic"`

	ImageSource  string   `json:"imageSource"`
	ImageDataURL string   `json:"imageDataUrl"`
	Width        float64  `json:"width"`
	Height       float64  `json:"height"`
	Opacity      *float64 `json:"opacity"`
	IsBackground bool     `json:"isBackground"`
}

// ToDocument converts a project into its persisted form.
func ToDocument(p *scene.Project) (Document, error) {
	doc := Document{
		ID:              p.ID,
		Title:           p.Title,
		ActivePageIndex: p.ActivePageIndex,
		Pages:           make([]PageDoc, 0, len(p.Pages)),
	}
	if !p.CreatedAt.IsZero() {
		doc.CreatedAt = p.CreatedAt.UnixMilli()
	}
	for _, pg := range p.Pages {
		pd := PageDoc{ID: pg.ID, W: pg.W, H: pg.H, Layers: make([]json.RawMessage, 0, len(pg.Layers))}
		for _, l := range pg.Layers {
			raw, err := encodeLayer(l)
			if err != nil {
				return Document{}, fmt.Errorf("page %s layer %s: %w", pg.ID, l.ID(), err)
			}
			pd.Layers = append(pd.Layers, raw)
		}
		doc.Pages = append(doc.Pages, pd)
	}
	return doc, nil
}

func encodeLayer(l scene.Layer) (json.RawMessage, error) {
	pr := l.Props()
	switch v := l.(type) {
	case *scene.TextLayer:
		return json.Marshal(textDoc{
			Type: TypeText, ID: v.ID(), X: pr.X, Y: pr.Y, ZIndex: pr.ZIndex, Visible: pr.Visible, Angle: pr.Angle,
			Text: v.Text, FontFamily: v.FontFamily, FontSize: v.FontSize, Color: v.Color,
			Align: string(v.Align), Bold: v.Bold, Italic: v.Italic,
		})
	case *scene.ImageLayer:
		return json.Marshal(imageDoc{
			Type: TypeImage, ID: v.ID(), X: pr.X, Y: pr.Y, ZIndex: pr.ZIndex, Visible: pr.Visible, Angle: pr.Angle,
			ImageSource: v.Source, Width: v.Width, Height: v.Height, Opacity: v.Opacity,
			IsBackground: v.IsBackground,
		})
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownLayer, l)
	}
}

// FromDocument rebuilds a project. Missing fields take the editor defaults,
// the active page index is clamped and a project always has at least one page.
// Layers of unknown type are dropped and returned as warnings.
func FromDocument(doc Document) (*scene.Project, []error) {
	p := &scene.Project{
		ID:    doc.ID,
		Title: doc.Title,
	}
	if p.ID == "" {
		p.ID = scene.NewProjectID()
	}
	if doc.CreatedAt > 0 {
		p.CreatedAt = time.UnixMilli(doc.CreatedAt)
	} else {
		p.CreatedAt = time.Now().Truncate(time.Millisecond)
	}

	var warnings []error
	for pi, pd := range doc.Pages {
		pg := scene.NewPage(pd.ID, pd.W, pd.H)
		for li, raw := range pd.Layers {
			var ld layerDoc
			if err := json.Unmarshal(raw, &ld); err != nil {
				warnings = append(warnings, fmt.Errorf("page %d layer %d: %w", pi, li, err))
				continue
			}
			l, err := decodeLayer(ld)
			if err != nil {
				warnings = append(warnings, fmt.Errorf("page %d layer %d: %w", pi, li, err))
				continue
			}
			pg.AddLayer(l)
			if im, ok := l.(*scene.ImageLayer); ok && im.IsBackground {
				pg.Background = im
			}
		}
		p.Pages = append(p.Pages, pg)
	}
	if len(p.Pages) == 0 {
		p.Pages = []*scene.Page{scene.NewPage("", 0, 0)}
	}
	p.ActivePageIndex = min(max(0, doc.ActivePageIndex), len(p.Pages)-1)
	return p, warnings
}

func decodeLayer(ld layerDoc) (scene.Layer, error) {
	var l scene.Layer
	switch ld.Type {
	case TypeText:
		t := scene.NewTextLayer(ld.ID, ld.Text)
		t.FontFamily = orString(ld.FontFamily, scene.DefaultFontFamily)
		t.FontSize = orFloat(ld.FontSize, scene.DefaultFontSize)
		t.Color = orString(ld.Color, scene.DefaultTextColor)
		t.Align = scene.ParseAlign(ld.Align)
		t.Bold, t.Italic = ld.Bold, ld.Italic
		l = t
	case TypeImage:
		src := ld.ImageSource
		if src == "" {
			src = ld.ImageDataURL
		}
		im := scene.NewImageLayer(ld.ID, src)
		im.Width = orFloat(ld.Width, scene.DefaultImageWidth)
		im.Height = orFloat(ld.Height, scene.DefaultImageHeight)
		if ld.Opacity != nil {
			im.Opacity = *ld.Opacity
		}
		im.IsBackground = ld.IsBackground
		// persisted geometry wins over the natural size of the decoded image
		im.KeepSize()
		l = im
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownLayer, ld.Type)
	}
	pr := l.Props()
	pr.X, pr.Y = ld.X, ld.Y
	pr.ZIndex = ld.ZIndex
	pr.Visible = ld.Visible == nil || *ld.Visible
	pr.Angle = ld.Angle
	return l, nil
}

func orString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orFloat(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// Serialize encodes a project as an indented JSON document.
func Serialize(p *scene.Project) ([]byte, error) {
	doc, err := ToDocument(p)
	if err != nil {
		return nil, err
	}
	return marshalDocument(doc)
}

func marshalDocument(doc Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal project: %w", err)
	}
	return append(data, '\n'), nil
}

// Deserialize validates and decodes a JSON document. Structural problems fail
// with ErrMalformed; skipped layers come back as warnings next to the project.
func Deserialize(data []byte) (*scene.Project, []error, error) {
	doc, err := decodeDocument(data)
	if err != nil {
		return nil, nil, err
	}
	p, warnings := FromDocument(doc)
	return p, warnings, nil
}

func decodeDocument(data []byte) (Document, error) {
	if err := Validate(data); err != nil {
		return Document{}, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return doc, nil
}
