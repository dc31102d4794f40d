/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"pagecomposer/internal/scene"
)

const (
	BackupsDirName = "backups"
	CrashDirName   = "crash"

	backupStamp = "20060102-150405.000"
)

// WriteFile exports p as JSON at path. The write goes to a temp file in the
// same directory that is renamed over the target; a previous file at path is
// first copied to <dir>/backups/<name>.<timestamp>.bak.
func WriteFile(path string, p *scene.Project) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("path is required")
	}
	data, err := Serialize(p)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	if _, statErr := os.Stat(path); statErr == nil {
		bname := fmt.Sprintf("%s.%s.bak", filepath.Base(path), time.Now().Format(backupStamp))
		if cerr := copyFile(path, filepath.Join(dir, BackupsDirName, bname)); cerr != nil {
			return fmt.Errorf("backup current file: %w", cerr)
		}
	}
	return replaceFile(path, data)
}

// replaceFile writes data next to path and renames it into place.
func replaceFile(path string, data []byte) error {
	temp := filepath.Join(filepath.Dir(path), fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("write temp file: %w", werr)
	}
	// Windows cannot rename over an existing file
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if rerr := os.Rename(temp, path); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace %s: %w", path, rerr)
	}
	return nil
}

// ReadFile imports a project written by WriteFile. If the file is missing,
// unreadable or malformed, the most recent backup is tried instead.
func ReadFile(path string) (*scene.Project, []error, error) {
	b, err := os.ReadFile(path)
	if err == nil {
		p, warnings, derr := Deserialize(b)
		if derr == nil {
			return p, warnings, nil
		}
		err = derr
	}
	p, warnings, berr := readLatestBackup(path)
	if berr != nil {
		return nil, nil, fmt.Errorf("read %s: %w; backup attempt: %v", path, err, berr)
	}
	return p, warnings, nil
}

// Backups lists the backups of path, oldest first.
func Backups(path string) ([]string, error) {
	bdir := filepath.Join(filepath.Dir(path), BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	prefix := filepath.Base(path) + "."
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	sort.Strings(out) // timestamp in name yields lexicographic order
	return out, nil
}

func readLatestBackup(path string) (*scene.Project, []error, error) {
	candidates, err := Backups(path)
	if err != nil {
		return nil, nil, err
	}
	if len(candidates) == 0 {
		return nil, nil, errors.New("no backups found")
	}
	latest := candidates[len(candidates)-1]
	b, err := os.ReadFile(latest)
	if err != nil {
		return nil, nil, fmt.Errorf("read latest backup: %w", err)
	}
	p, warnings, err := Deserialize(b)
	if err != nil {
		return nil, nil, fmt.Errorf("parse latest backup: %w", err)
	}
	return p, warnings, nil
}

// AutosaveCrashSnapshot writes p to <dir>/crash/<title>-<timestamp>.json and
// returns the written path.
func AutosaveCrashSnapshot(dir string, p *scene.Project) (string, error) {
	if p == nil {
		return "", errors.New("nil project")
	}
	data, err := Serialize(p)
	if err != nil {
		return "", err
	}
	cdir := filepath.Join(dir, CrashDirName)
	if err := os.MkdirAll(cdir, 0o755); err != nil {
		return "", fmt.Errorf("create crash dir: %w", err)
	}
	name := fmt.Sprintf("%s-%s.json", SanitizeFilename(p.Title), time.Now().Format("20060102-150405"))
	path := filepath.Join(cdir, name)
	if err := replaceFile(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// SanitizeFilename turns a title into a portable file name stem.
func SanitizeFilename(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.Trim(b.String(), "-.")
	if out == "" {
		return "untitled"
	}
	if len(out) > 64 {
		out = strings.TrimRight(out[:64], "-.")
	}
	return out
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
