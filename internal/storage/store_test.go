/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pagecomposer/internal/scene"
)

func solid(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	return img
}

func openTestStore(t *testing.T, quota int64) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "projects.sqlite"), quota)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	clock := time.UnixMilli(1700000000000)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func TestStoreSaveLoadListDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, 0)

	a := sampleProject()
	b := scene.NewProject("", 900, 1600)
	if _, err := s.Save(ctx, a); err != nil {
		t.Fatalf("Save a: %v", err)
	}
	res, err := s.Save(ctx, b)
	if err != nil {
		t.Fatalf("Save b: %v", err)
	}
	if res.Entry.Title != "(untitled)" || res.Entry.Size <= 0 {
		t.Fatalf("entry = %+v", res.Entry)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != b.ID || list[1].ID != a.ID {
		t.Fatalf("List = %+v, want b then a", list)
	}

	got, warnings, err := s.Load(ctx, a.ID)
	if err != nil || len(warnings) != 0 {
		t.Fatalf("Load: %v %v", err, warnings)
	}
	if got.Title != a.Title || len(got.Pages) != 2 || len(got.Pages[0].Layers) != 3 {
		t.Fatalf("loaded project mismatch: %+v", got)
	}

	raw, err := s.Raw(ctx, a.ID)
	if err != nil || !strings.Contains(string(raw), `"savedAt"`) {
		t.Fatalf("Raw: %v %s", err, raw)
	}

	if err := s.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, _, err := s.Load(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load after delete err = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete err = %v, want ErrNotFound", err)
	}
}

func TestStoreSaveReplacesSameID(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, 0)
	p := scene.NewProject("first", 900, 1600)
	if _, err := s.Save(ctx, p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	p.Title = "second"
	if _, err := s.Save(ctx, p); err != nil {
		t.Fatalf("Save again: %v", err)
	}
	list, _ := s.List(ctx)
	if len(list) != 1 || list[0].Title != "second" {
		t.Fatalf("List = %+v, want one entry titled second", list)
	}
}

func TestStoreQuotaPrunesOldestFirst(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, 0)

	a := scene.NewProject("A", 900, 1600)
	b := scene.NewProject("B", 900, 1600)
	c := scene.NewProject("C", 900, 1600)
	ra, err := s.Save(ctx, a)
	if err != nil {
		t.Fatalf("Save a: %v", err)
	}
	size := ra.Entry.Size
	s.quota = 2*size + size/2

	if _, err := s.Save(ctx, b); err != nil {
		t.Fatalf("Save b: %v", err)
	}
	rc, err := s.Save(ctx, c)
	if err != nil {
		t.Fatalf("Save c: %v", err)
	}
	if len(rc.Pruned) != 1 || rc.Pruned[0] != a.ID {
		t.Fatalf("pruned = %v, want [%s]", rc.Pruned, a.ID)
	}
	list, _ := s.List(ctx)
	if len(list) != 2 || list[0].ID != c.ID || list[1].ID != b.ID {
		t.Fatalf("List = %+v, want c then b", list)
	}
	used, _ := s.Usage(ctx)
	if used > s.quota {
		t.Fatalf("usage %d exceeds quota %d", used, s.quota)
	}
}

func TestStoreQuotaNeverPrunesProjectBeingSaved(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, 0)

	a := scene.NewProject("A", 900, 1600)
	b := scene.NewProject("B", 900, 1600)
	ra, err := s.Save(ctx, a)
	if err != nil {
		t.Fatalf("Save a: %v", err)
	}
	if _, err := s.Save(ctx, b); err != nil {
		t.Fatalf("Save b: %v", err)
	}

	// a is now the oldest entry; growing it must evict b instead.
	a.Pages[0].AddLayer(scene.NewTextLayer("", strings.Repeat("x", 200)))
	grown, err := Serialize(a)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	s.quota = int64(len(grown)) + ra.Entry.Size/2
	res, err := s.Save(ctx, a)
	if err != nil {
		t.Fatalf("Save grown a: %v", err)
	}
	if len(res.Pruned) != 1 || res.Pruned[0] != b.ID {
		t.Fatalf("pruned = %v, want [%s]", res.Pruned, b.ID)
	}
	if _, _, err := s.Load(ctx, a.ID); err != nil {
		t.Fatalf("Load a: %v", err)
	}
}

func TestStoreQuotaExceeded(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, 0)
	small := scene.NewProject("small", 900, 1600)
	r, err := s.Save(ctx, small)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	s.quota = r.Entry.Size * 2

	big := scene.NewProject(strings.Repeat("big", int(r.Entry.Size)), 900, 1600)
	if _, err := s.Save(ctx, big); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("err = %v, want ErrQuotaExceeded", err)
	}
	list, _ := s.List(ctx)
	if len(list) != 1 || list[0].ID != small.ID {
		t.Fatalf("failed save changed the store: %+v", list)
	}
}

func TestStoreInMemory(t *testing.T) {
	s, err := OpenStore(":memory:", 0)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer s.Close()
	p := scene.NewProject("mem", 900, 1600)
	if _, err := s.Save(context.Background(), p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, _, err := s.Load(context.Background(), p.ID); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestStoreReopenKeepsProjects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.sqlite")
	s, err := OpenStore(path, 0)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	p := scene.NewProject("persisted", 900, 1600)
	if _, err := s.Save(context.Background(), p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	_ = s.Close()

	s2, err := OpenStore(path, 0)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	got, _, err := s2.Load(context.Background(), p.ID)
	if err != nil || got.Title != "persisted" {
		t.Fatalf("Load after reopen: %v %+v", err, got)
	}
}
