/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package interact turns pointer and keyboard events into gestures over the
// active page and commits each finished gesture as one history command.
package interact

import (
	"context"
	"fmt"
	"log/slog"

	"pagecomposer/internal/command"
	"pagecomposer/internal/config"
	"pagecomposer/internal/geom"
	"pagecomposer/internal/history"
	"pagecomposer/internal/imaging"
	applog "pagecomposer/internal/log"
	"pagecomposer/internal/query"
	"pagecomposer/internal/scene"
	"pagecomposer/internal/snap"
)

// State is the gesture the controller is in. Exactly one is active.
type State int

const (
	Idle State = iota
	Dragging
	Resizing
	Rotating
	Editing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	case Rotating:
		return "rotating"
	case Editing:
		return "editing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Modifiers are the keyboard modifiers held during an event.
type Modifiers struct {
	Shift, Ctrl, Meta, Alt bool
}

// PointerEvent is a pointer position in page coordinates.
type PointerEvent struct {
	Pt   geom.Pt
	Mods Modifiers
}

// KeyEvent carries a key name as reported by the UI ("Delete", "z", ...).
type KeyEvent struct {
	Key  string
	Mods Modifiers
}

// Hooks notify the surrounding UI. Nil hooks are skipped.
type Hooks struct {
	// OnLayerSelected receives nil when the selection is cleared.
	OnLayerSelected     func(scene.Layer)
	OnTextEditRequested func(*scene.TextLayer)
	OnSceneChanged      func()
}

// ImageLoader schedules asynchronous image decodes; *imaging.Loader implements it.
type ImageLoader interface {
	Request(ctx context.Context, pageID, layerID, src string)
}

// Options tune gestures. Zero values take the defaults.
type Options struct {
	Query             query.Options
	SnapThreshold     float64
	AngleStep         float64
	CardinalTolerance float64
	MinSize           float64
	PageWidth         float64
	PageHeight        float64
}

func DefaultOptions() Options {
	return Options{
		Query:             query.DefaultOptions(),
		SnapThreshold:     snap.DefaultThreshold,
		AngleStep:         snap.DefaultAngleStep,
		CardinalTolerance: snap.DefaultCardinalTolerance,
		MinSize:           20,
		PageWidth:         scene.DefaultPageWidth,
		PageHeight:        scene.DefaultPageHeight,
	}
}

// OptionsFromConfig maps the editor and page sections of the user config.
func OptionsFromConfig(cfg config.AppConfig) Options {
	o := Options{
		Query: query.Options{
			HandleTolerance: cfg.Editor.HandleTolerance,
			RotateDistance:  cfg.Editor.RotateHandleDistance,
			RotateRadius:    cfg.Editor.RotateHandleRadius,
			SkipHidden:      cfg.Editor.SkipHiddenLayers,
		},
		SnapThreshold:     cfg.Editor.SnapThreshold,
		AngleStep:         cfg.Editor.AngleStep,
		CardinalTolerance: cfg.Editor.CardinalTolerance,
		MinSize:           cfg.Editor.MinLayerSize,
		PageWidth:         cfg.Page.Width,
		PageHeight:        cfg.Page.Height,
	}
	return o.withDefaults()
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.SnapThreshold <= 0 {
		o.SnapThreshold = d.SnapThreshold
	}
	if o.AngleStep <= 0 {
		o.AngleStep = d.AngleStep
	}
	if o.CardinalTolerance <= 0 {
		o.CardinalTolerance = d.CardinalTolerance
	}
	if o.MinSize <= 0 {
		o.MinSize = d.MinSize
	}
	if o.PageWidth <= 0 {
		o.PageWidth = d.PageWidth
	}
	if o.PageHeight <= 0 {
		o.PageHeight = d.PageHeight
	}
	return o
}

// gesture holds what a drag, resize or rotate captured at pointer down.
type gesture struct {
	pageID  string
	layerID string
	start   geom.Pt
	props   scene.Props
	box     geom.Rect // image position and size at start
	handle  query.Handle
	aspect  float64
	// anchor offset of a text layer: Props.X minus the measured left edge
	anchorOffset float64
	// pointer angle about the box center at start, degrees
	pointerAngle float64
}

type editSession struct {
	pageID  string
	layerID string
	oldText string
}

// Controller owns the gesture state over one project. It must be driven from
// a single goroutine.
type Controller struct {
	project *scene.Project
	history *history.Manager
	loader  ImageLoader
	opts    Options
	hooks   Hooks
	log     *slog.Logger

	state    State
	selected string
	g        gesture
	edit     *editSession
	guides   []snap.Guide
	cursor   string
	// image layers waiting for decoded pixels, by layer id
	pending map[string]*scene.ImageLayer
}

// New creates a controller. A nil history gets a default one.
func New(project *scene.Project, h *history.Manager, opts Options, hooks Hooks) *Controller {
	if h == nil {
		h = history.NewManager(history.DefaultCapacity)
	}
	if project == nil {
		o := opts.withDefaults()
		project = scene.NewProject("", o.PageWidth, o.PageHeight)
	}
	return &Controller{
		project: project,
		history: h,
		opts:    opts.withDefaults(),
		hooks:   hooks,
		log:     applog.WithComponent("interact"),
		cursor:  "default",
		pending: make(map[string]*scene.ImageLayer),
	}
}

// SetLoader installs the decoder used for image sources.
func (c *Controller) SetLoader(l ImageLoader) { c.loader = l }

func (c *Controller) Project() *scene.Project  { return c.project }
func (c *Controller) History() *history.Manager { return c.history }
func (c *Controller) State() State              { return c.state }
func (c *Controller) Cursor() string            { return c.cursor }

// Guides returns the snap guides of the current gesture.
func (c *Controller) Guides() []snap.Guide { return c.guides }

// SelectedID is the id of the selected layer on the active page, or "".
func (c *Controller) SelectedID() string { return c.selected }

// Selected resolves the selection on the active page.
func (c *Controller) Selected() scene.Layer {
	if c.selected == "" {
		return nil
	}
	pg := c.project.ActivePage()
	if pg == nil {
		return nil
	}
	return pg.Find(c.selected)
}

// Select changes the selection and notifies OnLayerSelected. An unknown id clears it.
func (c *Controller) Select(id string) {
	var l scene.Layer
	if pg := c.project.ActivePage(); pg != nil && id != "" {
		l = pg.Find(id)
	}
	c.setSelection(l)
}

func (c *Controller) setSelection(l scene.Layer) {
	if l == nil {
		c.selected = ""
	} else {
		c.selected = l.ID()
	}
	if c.hooks.OnLayerSelected != nil {
		c.hooks.OnLayerSelected(l)
	}
}

func (c *Controller) changed() {
	if c.hooks.OnSceneChanged != nil {
		c.hooks.OnSceneChanged()
	}
}

// submit executes cmd through history and notifies the UI.
func (c *Controller) submit(cmd command.Command) {
	if cmd == nil {
		return
	}
	c.history.Execute(cmd)
	c.log.Debug("command committed", slog.String("op", "submit"), slog.String("cmd", cmd.Name()))
	c.changed()
}

func (c *Controller) activePageID() string {
	if pg := c.project.ActivePage(); pg != nil {
		return pg.ID
	}
	return ""
}

// Undo reverts the last command. Ignored while a gesture or edit is active.
func (c *Controller) Undo() bool {
	if c.state != Idle || !c.history.Undo() {
		return false
	}
	c.afterHistory()
	return true
}

// Redo re-applies the last undone command. Ignored unless Idle.
func (c *Controller) Redo() bool {
	if c.state != Idle || !c.history.Redo() {
		return false
	}
	c.afterHistory()
	return true
}

func (c *Controller) afterHistory() {
	if c.selected != "" && c.Selected() == nil {
		c.setSelection(nil)
	}
	c.changed()
}

// Load replaces the project, clears history and any gesture, and schedules
// decoding for every image layer and background with a source.
func (c *Controller) Load(ctx context.Context, p *scene.Project) {
	if p == nil {
		return
	}
	c.project = p
	c.history.Clear()
	c.state = Idle
	c.edit = nil
	c.guides = nil
	c.g = gesture{}
	c.pending = make(map[string]*scene.ImageLayer)
	c.setSelection(nil)
	for _, pg := range p.Pages {
		if bg := pg.Background; bg != nil && bg.Source != "" && bg.Image() == nil {
			c.requestDecode(ctx, pg.ID, bg)
		}
		for _, l := range pg.Layers {
			if im, ok := l.(*scene.ImageLayer); ok && im.Source != "" && im.Image() == nil {
				c.requestDecode(ctx, pg.ID, im)
			}
		}
	}
	c.changed()
}

func (c *Controller) requestDecode(ctx context.Context, pageID string, im *scene.ImageLayer) {
	if c.loader == nil || im.Source == "" {
		return
	}
	c.pending[im.ID()] = im
	c.loader.Request(ctx, pageID, im.ID(), im.Source)
}

// HandleImageReady applies a decode result. Results for layers the
// controller did not request, or whose source changed, are ignored. The
// pixels are installed even when the layer is currently removed so a later
// redo shows it; the UI is only notified when the layer is on its page.
func (c *Controller) HandleImageReady(r imaging.Ready) bool {
	im, ok := c.pending[r.LayerID]
	if !ok || im.Source != r.Source {
		c.log.Debug("stale image result ignored", slog.String("layer", r.LayerID))
		return false
	}
	delete(c.pending, r.LayerID)
	if r.Err != nil {
		c.log.Warn("image unavailable", slog.String("layer", r.LayerID), slog.Any("err", r.Err))
		return false
	}
	im.SetImage(r.Image)
	pg := c.project.PageByID(r.PageID)
	if pg != nil && (pg.Find(r.LayerID) != nil || pg.Background == im) {
		c.changed()
		return true
	}
	return false
}

// Pending reports how many decodes are outstanding.
func (c *Controller) Pending() int { return len(c.pending) }
