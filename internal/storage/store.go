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
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "pagecomposer/internal/log"
	"pagecomposer/internal/scene"
	"pagecomposer/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when no project with the given id is stored.
	ErrNotFound = errors.New("project not found")
	// ErrQuotaExceeded is returned when a project cannot fit into the quota,
	// even after pruning every other stored project.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// schemaVersion tracks the store layout; bump it together with a migration.
const schemaVersion = 1

// Entry describes a stored project without decoding it.
type Entry struct {
	ID      string
	Title   string
	SavedAt time.Time
	Size    int64
}

// SaveResult reports the saved entry and the ids pruned to make room for it.
type SaveResult struct {
	Entry  Entry
	Pruned []string
}

// Store is a SQLite-backed project store. QuotaBytes bounds the summed size
// of all stored documents; zero or less disables the limit.
type Store struct {
	db    *sql.DB
	path  string
	quota int64
	log   *slog.Logger
	now   func() time.Time
}

// OpenStore opens (creating if needed) the store at path. The special path
// ":memory:" opens a private in-memory database.
func OpenStore(path string, quotaBytes int64) (*Store, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "store_open").With(
		slog.String("path", path),
	)
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("store path is required")
	}
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			l.Error("create store dir failed", slog.Any("err", err))
			return nil, fmt.Errorf("create store dir: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// single writer; also keeps one :memory: database alive
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if path != ":memory:" {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
			_ = db.Close()
			l.Error("enable WAL failed", slog.Any("err", err))
			return nil, fmt.Errorf("enable WAL: %w", err)
		}
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("store ready", slog.Int64("quota", quotaBytes))
	return &Store{db: db, path: path, quota: quotaBytes, log: applog.WithComponent("storage"), now: time.Now}, nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS projects (
			id        TEXT PRIMARY KEY,
			title     TEXT NOT NULL,
			saved_at  INTEGER NOT NULL,
			size      INTEGER NOT NULL,
			doc       BLOB NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_projects_saved_at ON projects(saved_at);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	var cur int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, version.String(), now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, version.String(), now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// Path returns the database location the store was opened with.
func (s *Store) Path() string { return s.path }

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// Save writes p, replacing an earlier save of the same id. A project without
// an id is given one. When the quota would be exceeded the least recently
// saved other projects are deleted until the document fits; p itself is never
// pruned. If it cannot fit at all nothing is changed and ErrQuotaExceeded is
// returned.
func (s *Store) Save(ctx context.Context, p *scene.Project) (SaveResult, error) {
	if p == nil {
		return SaveResult{}, errors.New("nil project")
	}
	if p.ID == "" {
		p.ID = scene.NewProjectID()
	}
	l := applog.WithOperation(s.log, "save").With(slog.String("project", p.ID))

	doc, err := ToDocument(p)
	if err != nil {
		return SaveResult{}, err
	}
	savedAt := s.now()
	doc.SavedAt = savedAt.UnixMilli()
	data, err := marshalDocument(doc)
	if err != nil {
		return SaveResult{}, err
	}
	entry := Entry{ID: p.ID, Title: displayTitle(p.Title), SavedAt: time.UnixMilli(doc.SavedAt), Size: int64(len(data))}
	if s.quota > 0 && entry.Size > s.quota {
		l.Warn("project larger than quota", slog.Int64("size", entry.Size), slog.Int64("quota", s.quota))
		return SaveResult{}, fmt.Errorf("save %s (%d bytes, quota %d): %w", p.ID, entry.Size, s.quota, ErrQuotaExceeded)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SaveResult{}, fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var pruned []string
	if s.quota > 0 {
		pruned, err = pruneFor(ctx, tx, p.ID, entry.Size, s.quota)
		if err != nil {
			return SaveResult{}, err
		}
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO projects (id, title, saved_at, size, doc) VALUES(?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title=excluded.title, saved_at=excluded.saved_at, size=excluded.size, doc=excluded.doc`,
		entry.ID, entry.Title, doc.SavedAt, entry.Size, data)
	if err != nil {
		return SaveResult{}, fmt.Errorf("write project %s: %w", p.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return SaveResult{}, fmt.Errorf("commit save: %w", err)
	}
	if len(pruned) > 0 {
		l.Warn("pruned oldest projects to fit quota", slog.Any("pruned", pruned))
	}
	l.Debug("project saved", slog.Int64("size", entry.Size))
	return SaveResult{Entry: entry, Pruned: pruned}, nil
}

// pruneFor deletes the oldest projects other than keepID until size more
// bytes fit under quota.
func pruneFor(ctx context.Context, tx *sql.Tx, keepID string, size, quota int64) ([]string, error) {
	var others int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(SUM(size), 0) FROM projects WHERE id != ?`, keepID).Scan(&others); err != nil {
		return nil, fmt.Errorf("sum sizes: %w", err)
	}
	var pruned []string
	for others+size > quota {
		var id string
		var sz int64
		err := tx.QueryRowContext(ctx, `SELECT id, size FROM projects WHERE id != ? ORDER BY saved_at ASC, id ASC LIMIT 1`, keepID).Scan(&id, &sz)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("save %s: %w", keepID, ErrQuotaExceeded)
		}
		if err != nil {
			return nil, fmt.Errorf("select prune candidate: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id); err != nil {
			return nil, fmt.Errorf("prune %s: %w", id, err)
		}
		pruned = append(pruned, id)
		others -= sz
	}
	return pruned, nil
}

func displayTitle(t string) string {
	if strings.TrimSpace(t) == "" {
		return "(untitled)"
	}
	return t
}

// Load decodes the stored project with the given id.
func (s *Store) Load(ctx context.Context, id string) (*scene.Project, []error, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM projects WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("load %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", id, err)
	}
	p, warnings, err := Deserialize(data)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", id, err)
	}
	for _, w := range warnings {
		s.log.Warn("skipped layer", slog.String("project", id), slog.Any("err", w))
	}
	return p, warnings, nil
}

// Raw returns the stored JSON document.
func (s *Store) Raw(ctx context.Context, id string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM projects WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", id, err)
	}
	return data, nil
}

// List returns all stored projects, most recently saved first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, saved_at, size FROM projects ORDER BY saved_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		var ms int64
		if err := rows.Scan(&e.ID, &e.Title, &ms, &e.Size); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		e.SavedAt = time.UnixMilli(ms)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out, nil
}

// Delete removes a stored project.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	applog.WithOperation(s.log, "delete").Debug("project deleted", slog.String("project", id))
	return nil
}

// Usage returns the summed size of all stored documents.
func (s *Store) Usage(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size), 0) FROM projects`).Scan(&n); err != nil {
		return 0, fmt.Errorf("usage: %w", err)
	}
	return n, nil
}
