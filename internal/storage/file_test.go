/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"os"
	"path/filepath"
	"testing"

	"pagecomposer/internal/scene"
)

func TestWriteFileCreatesBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "story.json")
	p := scene.NewProject("Story", 900, 1600)
	if err := WriteFile(path, p); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("exported file missing: %v", err)
	}
	if bs, _ := Backups(path); len(bs) != 0 {
		t.Fatalf("unexpected backups after first write: %v", bs)
	}
	p.Title = "Story v2"
	if err := WriteFile(path, p); err != nil {
		t.Fatalf("WriteFile again: %v", err)
	}
	bs, err := Backups(path)
	if err != nil || len(bs) != 1 {
		t.Fatalf("Backups = %v, %v; want one", bs, err)
	}
	got, _, err := ReadFile(path)
	if err != nil || got.Title != "Story v2" {
		t.Fatalf("ReadFile = %v, %v", got, err)
	}
}

func TestReadFileFallsBackToLatestBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "story.json")
	p := scene.NewProject("Original", 900, 1600)
	if err := WriteFile(path, p); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := WriteFile(path, p); err != nil {
		t.Fatalf("WriteFile again: %v", err)
	}
	if err := os.WriteFile(path, []byte("{ this is not json"), 0o644); err != nil {
		t.Fatalf("corrupt file: %v", err)
	}
	got, _, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got.Title != "Original" || got.ID != p.ID {
		t.Fatalf("recovered %q %s, want Original %s", got.Title, got.ID, p.ID)
	}
}

func TestReadFileWithoutBackupFails(t *testing.T) {
	if _, _, err := ReadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file without backups")
	}
}

func TestAutosaveCrashSnapshotWritesFile(t *testing.T) {
	dir := t.TempDir()
	p := scene.NewProject("Crash Snapshot", 900, 1600)
	path, err := AutosaveCrashSnapshot(dir, p)
	if err != nil {
		t.Fatalf("AutosaveCrashSnapshot: %v", err)
	}
	if filepath.Dir(path) != filepath.Join(dir, CrashDirName) {
		t.Fatalf("snapshot written to %s", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	got, _, err := Deserialize(b)
	if err != nil || got.Title != p.Title {
		t.Fatalf("snapshot content: %v %v", got, err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"My Page":        "My-Page",
		"  ":             "untitled",
		"a/b\\c:d":       "a-b-c-d",
		"..hidden..":     "hidden",
		"Über café 2026": "ber-caf-2026",
	}
	for in, want := range cases {
		if got := SanitizeFilename(in); got != want {
			t.Fatalf("SanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
