/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
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

	applog "golabeldesigner/internal/log"
	"golabeldesigner/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	CatalogFileName = "catalog.sqlite"

	// catalogSchemaVersion tracks the local SQLite schema. Bump on breaking
	// changes and add a migration step.
	catalogSchemaVersion = 2
)

// Catalog is the local library of known label documents: recent files,
// canvas sizes, element counts and PNG thumbnails for the open dialog.
type Catalog struct {
	db *sql.DB
}

// CatalogEntry is one row of the label library.
type CatalogEntry struct {
	Path         string
	Name         string
	CanvasWidth  float64
	CanvasHeight float64
	Elements     int
	UpdatedAt    time.Time
}

// OpenCatalog opens or creates the catalog database under dir, enables
// WAL mode and brings the schema up to date.
func OpenCatalog(dir string) (*Catalog, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "catalog_open").With(
		slog.String("dir", dir),
	)
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("catalog dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		l.Error("create catalog dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create catalog dir: %w", err)
	}

	path := filepath.Join(dir, CatalogFileName)
	uriPath := filepath.ToSlash(path)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", uriPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		l.Warn("enable foreign_keys failed", slog.Any("err", err))
	}

	if err := ensureCatalogMeta(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureCatalogSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure catalog schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runCatalogMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}

	l.Info("catalog ready", slog.String("path", path))
	return &Catalog{db: db}, nil
}

func (c *Catalog) Close() error { return c.db.Close() }

// Upsert records or refreshes a label document in the catalog.
func (c *Catalog) Upsert(ctx context.Context, e CatalogEntry) error {
	if strings.TrimSpace(e.Path) == "" {
		return errors.New("entry path is required")
	}
	if e.Name == "" {
		e.Name = strings.TrimSuffix(filepath.Base(e.Path), FileExtension)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO labels (path, name, canvas_w, canvas_h, elements, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			name=excluded.name, canvas_w=excluded.canvas_w, canvas_h=excluded.canvas_h,
			elements=excluded.elements, updated_at=excluded.updated_at`,
		e.Path, e.Name, e.CanvasWidth, e.CanvasHeight, e.Elements, now)
	if err != nil {
		return fmt.Errorf("upsert label: %w", err)
	}
	return nil
}

// Recent returns the most recently updated entries, newest first.
func (c *Catalog) Recent(ctx context.Context, limit int) ([]CatalogEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := c.db.QueryContext(ctx, `
		SELECT path, name, canvas_w, canvas_h, elements, updated_at
		FROM labels ORDER BY updated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()
	var out []CatalogEntry
	for rows.Next() {
		var e CatalogEntry
		var updated string
		if err := rows.Scan(&e.Path, &e.Name, &e.CanvasWidth, &e.CanvasHeight, &e.Elements, &updated); err != nil {
			return nil, fmt.Errorf("scan recent: %w", err)
		}
		e.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Remove drops an entry and its thumbnail.
func (c *Catalog) Remove(ctx context.Context, path string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM labels WHERE path=?`, path); err != nil {
		return fmt.Errorf("delete label: %w", err)
	}
	return nil
}

// SetThumbnail stores a PNG preview for a document path.
func (c *Catalog) SetThumbnail(ctx context.Context, path string, png []byte) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO thumbnails (path, png, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET png=excluded.png, updated_at=excluded.updated_at`,
		path, png, now)
	if err != nil {
		return fmt.Errorf("store thumbnail: %w", err)
	}
	return nil
}

// Thumbnail returns the stored PNG preview, or nil when none exists.
func (c *Catalog) Thumbnail(ctx context.Context, path string) ([]byte, error) {
	var png []byte
	err := c.db.QueryRowContext(ctx, `SELECT png FROM thumbnails WHERE path=?`, path).Scan(&png)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read thumbnail: %w", err)
	}
	return png, nil
}

func ensureCatalogMeta(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, catalogSchemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

func ensureCatalogSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS labels (
			path       TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			canvas_w   REAL NOT NULL,
			canvas_h   REAL NOT NULL,
			elements   INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS thumbnails (
			path       TEXT PRIMARY KEY,
			png        BLOB NOT NULL,
			updated_at TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create catalog table: %w", err)
		}
	}
	return nil
}

// runCatalogMigrations applies incremental schema migrations up to
// catalogSchemaVersion.
func runCatalogMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur > catalogSchemaVersion {
		// Never downgrade.
		return nil
	}
	for cur < catalogSchemaVersion {
		next := cur + 1
		switch next {
		case 2:
			tx, err := db.BeginTx(ctx, nil)
			if err != nil {
				return fmt.Errorf("begin migration %d: %w", next, err)
			}
			stmts := []string{
				`CREATE INDEX IF NOT EXISTS idx_labels_updated ON labels(updated_at);`,
			}
			for _, q := range stmts {
				if _, err := tx.ExecContext(ctx, q); err != nil {
					_ = tx.Rollback()
					return fmt.Errorf("migration %d stmt failed: %w", next, err)
				}
			}
			if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d update version: %w", next, err)
			}
			if err := tx.Commit(); err != nil {
				return fmt.Errorf("migration %d commit: %w", next, err)
			}
		default:
			// Unknown future step.
		}
		cur = next
	}
	return nil
}
