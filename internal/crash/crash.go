/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic at the CLI boundary into a crash report and an
// autosave of the open project.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "pagecomposer/internal/log"
	"pagecomposer/internal/scene"
	"pagecomposer/internal/storage"
	"pagecomposer/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// ProjectFunc returns the project open at the time of the crash, or nil.
type ProjectFunc func() *scene.Project

// Recover captures a panic, logs an error with stacktrace, writes an error
// report under dir/crash (the temp dir when dir is empty) and autosaves the
// open project next to it.
//
// Usage: defer crash.Recover(dataDir, func() *scene.Project { return ctl.Project() })
func Recover(dir string, current ProjectFunc) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	var p *scene.Project
	if current != nil {
		p = safeProject(current)
	}
	reportPath, err := writeReport(dir, p, r, stack)
	if err != nil {
		l.Error("write crash report failed", slog.Any("err", err))
	}
	if p != nil && dir != "" {
		if path, err := storage.AutosaveCrashSnapshot(dir, p); err != nil {
			l.Error("autosave crash snapshot failed", slog.Any("err", err))
		} else {
			l.Info("autosave crash snapshot written", slog.String("path", path))
		}
	}

	if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
		l.Error("failed to write crash message to stderr", slog.Any("err", err))
	}
	if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
		l.Error("failed to write version info to stderr", slog.Any("err", err))
	}
	// Exit with a non-zero code to indicate failure in CLI context.
	exitFn(2)
}

// safeProject calls current, treating a second panic as "no project".
func safeProject(current ProjectFunc) (p *scene.Project) {
	defer func() {
		if recover() != nil {
			p = nil
		}
	}()
	return current()
}

func writeReport(dir string, p *scene.Project, panicVal any, stack []byte) (string, error) {
	rdir := os.TempDir()
	if dir != "" {
		rdir = filepath.Join(dir, storage.CrashDirName)
		_ = os.MkdirAll(rdir, 0o755)
	}
	stamp := time.Now().Format("20060102-150405")
	fname := fmt.Sprintf("crash-%s.log", stamp)
	path := filepath.Join(rdir, fname)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			applog.WithComponent("crash").Error("failed to close crash report file", slog.Any("err", err), slog.String("path", path))
		}
	}()

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Page Composer Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if p != nil {
		_, _ = fmt.Fprintf(&buf, "Project: %s (%s)\n", p.ID, p.Title)
		_, _ = fmt.Fprintf(&buf, "Pages: %d, active %d\n", len(p.Pages), p.ActivePageIndex)
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	if _, err := f.Write(buf.Bytes()); err != nil {
		return path, err
	}
	_ = f.Sync()
	return path, nil
}
