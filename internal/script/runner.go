/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"pagecomposer/internal/geom"
	"pagecomposer/internal/imaging"
	"pagecomposer/internal/interact"
	applog "pagecomposer/internal/log"
	"pagecomposer/internal/scene"
)

// DefaultWait bounds how long a wait step, and the final drain, block for
// outstanding image decodes.
const DefaultWait = 10 * time.Second

// Runner replays scripts against a controller. Decoded images are taken
// from Ready between steps and handed to the controller on the calling
// goroutine.
type Runner struct {
	Ctl   *interact.Controller
	Ready <-chan imaging.Ready
	Wait  time.Duration
}

// Run executes every step in order and finally waits for pending images.
// The first failing step stops the run.
func (r *Runner) Run(ctx context.Context, s Script) error {
	l := applog.WithOperation(applog.WithComponent("script"), "replay").With(
		slog.String("title", s.Title), slog.Int("steps", len(s.Steps)),
	)
	for _, st := range s.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.step(ctx, s, st); err != nil {
			l.Error("step failed", slog.Int("line", st.Line), slog.String("op", string(st.Op)), slog.Any("err", err))
			return fmt.Errorf("line %d: %s: %w", st.Line, st.Op, err)
		}
		r.drain()
	}
	if err := r.waitImages(ctx); err != nil {
		return err
	}
	l.Debug("replay finished", slog.Int("undo", r.Ctl.History().Stats().UndoDepth))
	return nil
}

// drain applies every already delivered image without blocking.
func (r *Runner) drain() {
	if r.Ready == nil {
		return
	}
	for {
		select {
		case rd, ok := <-r.Ready:
			if !ok {
				return
			}
			r.Ctl.HandleImageReady(rd)
		default:
			return
		}
	}
}

func (r *Runner) waitImages(ctx context.Context) error {
	if r.Ready == nil || r.Ctl.Pending() == 0 {
		return nil
	}
	wait := r.Wait
	if wait <= 0 {
		wait = DefaultWait
	}
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	for r.Ctl.Pending() > 0 {
		select {
		case rd, ok := <-r.Ready:
			if !ok {
				return nil
			}
			r.Ctl.HandleImageReady(rd)
		case <-ctx.Done():
			return fmt.Errorf("waiting for %d images: %w", r.Ctl.Pending(), ctx.Err())
		}
	}
	return nil
}

func (r *Runner) step(ctx context.Context, s Script, st Step) error {
	c := r.Ctl
	mods, err := modifiers(st.Mods)
	if err != nil {
		return err
	}
	at := interact.PointerEvent{Pt: geom.Pt{X: st.X, Y: st.Y}, Mods: mods}

	switch st.Op {
	case OpText:
		if c.CreateText() == nil {
			return fmt.Errorf("cannot create text while %s", c.State())
		}
		if st.Text != nil {
			c.UpdateEditText(*st.Text)
			c.CommitEdit(*st.Text)
		}
	case OpImage:
		if c.AddImage(ctx, resolveSource(s.BaseDir, st.Src)) == nil {
			return fmt.Errorf("cannot add an image while %s", c.State())
		}
	case OpBackground:
		if c.SetBackground(ctx, resolveSource(s.BaseDir, st.Src)) == nil {
			return fmt.Errorf("cannot set a background while %s", c.State())
		}
	case OpDown:
		c.PointerDown(at)
	case OpMove:
		c.PointerMove(at)
	case OpUp:
		c.PointerUp(at)
	case OpClick:
		c.PointerDown(at)
		c.PointerUp(at)
	case OpDrag:
		from := geom.Pt{X: st.From[0], Y: st.From[1]}
		to := geom.Pt{X: st.To[0], Y: st.To[1]}
		n := max(st.Steps, 1)
		c.PointerDown(interact.PointerEvent{Pt: from, Mods: mods})
		for i := 1; i <= n; i++ {
			t := float64(i) / float64(n)
			p := geom.Pt{X: from.X + (to.X-from.X)*t, Y: from.Y + (to.Y-from.Y)*t}
			c.PointerMove(interact.PointerEvent{Pt: p, Mods: mods})
		}
		c.PointerUp(interact.PointerEvent{Pt: to, Mods: mods})
	case OpDblClick:
		c.DoubleClick(at)
	case OpType:
		if c.EditingLayer() == nil {
			return fmt.Errorf("no text is being edited")
		}
		c.UpdateEditText(*st.Text)
	case OpCommit:
		t := c.EditingLayer()
		if t == nil {
			return fmt.Errorf("no text is being edited")
		}
		text := t.Text
		if st.Text != nil {
			text = *st.Text
		}
		c.CommitEdit(text)
	case OpCancel:
		c.CancelEdit()
	case OpKey:
		c.KeyDown(interact.KeyEvent{Key: st.Key, Mods: mods})
	case OpUndo:
		c.Undo()
	case OpRedo:
		c.Redo()
	case OpDelete:
		c.DeleteSelected()
	case OpSelect:
		return r.selectIndex(*st.Index)
	case OpForward:
		c.BringForward()
	case OpBack:
		c.SendBack()
	case OpAlign:
		c.SetAlign(scene.ParseAlign(st.Value))
	case OpBold:
		c.ToggleBold()
	case OpItalic:
		c.ToggleItalic()
	case OpSet:
		return r.setProp(st.Prop, st.Value)
	case OpPageAdd:
		c.AddPage()
	case OpPageDelete:
		return c.DeletePage(*st.Index)
	case OpPageSelect:
		return c.SelectPage(*st.Index)
	case OpWait:
		return r.waitImages(ctx)
	default:
		return fmt.Errorf("unknown op %q", st.Op)
	}
	return nil
}

func (r *Runner) selectIndex(i int) error {
	if i < 0 {
		r.Ctl.Select("")
		return nil
	}
	pg := r.Ctl.Project().ActivePage()
	if pg == nil || i >= len(pg.Layers) {
		return fmt.Errorf("layer index %d out of range", i)
	}
	r.Ctl.Select(pg.Layers[i].ID())
	return nil
}

// setProp applies a validated property edit to the selection.
func (r *Runner) setProp(prop, value string) error {
	c := r.Ctl
	if c.Selected() == nil {
		return fmt.Errorf("nothing selected")
	}
	var ok bool
	switch prop {
	case "color":
		ok = c.SetColor(value)
	case "fontFamily":
		ok = c.SetFontFamily(value)
	case "fontSize", "opacity", "angle":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		switch prop {
		case "fontSize":
			ok = c.SetFontSize(v)
		case "opacity":
			ok = c.SetOpacity(v)
		default:
			ok = c.SetAngle(v)
		}
	case "visible":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		ok = c.SetVisible(v)
	default:
		return fmt.Errorf("unknown property %q", prop)
	}
	if !ok {
		applog.WithComponent("script").Debug("property unchanged", slog.String("prop", prop), slog.String("value", value))
	}
	return nil
}

func modifiers(names []string) (interact.Modifiers, error) {
	var m interact.Modifiers
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "shift":
			m.Shift = true
		case "ctrl", "control":
			m.Ctrl = true
		case "meta", "cmd":
			m.Meta = true
		case "alt", "option":
			m.Alt = true
		default:
			return m, fmt.Errorf("unknown modifier %q", n)
		}
	}
	return m, nil
}

// resolveSource joins relative file paths onto base; data: URLs, file:// URLs
// and absolute paths pass through.
func resolveSource(base, src string) string {
	src = strings.TrimSpace(src)
	switch {
	case base == "", strings.HasPrefix(src, "data:"), strings.HasPrefix(src, "file://"), filepath.IsAbs(src):
		return src
	default:
		return filepath.Join(base, src)
	}
}
