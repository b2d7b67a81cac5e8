/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package storage persists label documents: the JSON serializer, the
// transactional file save with timestamped backups, schema validation of
// incoming files, and the local sqlite catalog of known labels.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golabeldesigner/internal/domain"
	"golabeldesigner/internal/log"
)

const (
	// FileExtension is the canonical label document extension.
	FileExtension = ".label.json"
	// BackupsDirName is the sibling directory holding timestamped copies
	// of previous saves.
	BackupsDirName = "backups"
)

// DocumentHandle tracks one label document loaded from or saved to disk.
type DocumentHandle struct {
	Path string
	Doc  domain.LabelDocument
}

// NewDocument creates an unsaved document with the given canvas size.
func NewDocument(width, height float64) *DocumentHandle {
	return &DocumentHandle{Doc: domain.LabelDocument{CanvasWidth: width, CanvasHeight: height}}
}

// Open loads a label document. If the file cannot be read, parsed or
// validated, the latest backup is tried before giving up.
func Open(path string) (*DocumentHandle, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		doc, berr := openFromLatestBackup(path)
		if berr != nil {
			return nil, fmt.Errorf("open document: %w; backup attempt: %v", err, berr)
		}
		log.L().Warn("document restored from backup", "path", path)
		return &DocumentHandle{Path: path, Doc: *doc}, nil
	}
	doc, perr := parseDocument(b)
	if perr != nil {
		bdoc, berr := openFromLatestBackup(path)
		if berr != nil {
			return nil, fmt.Errorf("parse document: %w; backup attempt: %v", perr, berr)
		}
		log.L().Warn("document restored from backup", "path", path, "err", perr)
		return &DocumentHandle{Path: path, Doc: *bdoc}, nil
	}
	return &DocumentHandle{Path: path, Doc: *doc}, nil
}

// parseDocument unmarshals and schema-validates raw document bytes.
func parseDocument(b []byte) (*domain.LabelDocument, error) {
	if err := ValidateDocumentBytes(b); err != nil {
		return nil, err
	}
	var doc domain.LabelDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	return &doc, nil
}

// Save writes the document to its path with transactional semantics: the
// previous file (if any) is copied to a timestamped backup, the new
// content goes to a temp file in the same directory and is renamed over
// the target.
func Save(h *DocumentHandle) error {
	if h == nil {
		return errors.New("nil DocumentHandle")
	}
	if h.Path == "" {
		return errors.New("document has no path; use SaveAs")
	}
	data, err := json.MarshalIndent(h.Doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(h.Path)
	base := filepath.Base(h.Path)

	if _, statErr := os.Stat(h.Path); statErr == nil {
		bdir := filepath.Join(dir, BackupsDirName)
		if err := os.MkdirAll(bdir, 0o755); err != nil {
			return fmt.Errorf("ensure backups dir: %w", err)
		}
		stamp := time.Now().Format("20060102-150405")
		bpath := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", base, stamp))
		if cerr := copyFile(h.Path, bpath); cerr != nil {
			return fmt.Errorf("backup current document: %w", cerr)
		}
	}

	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", base, os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp document: %w", werr)
	}
	// On Windows a rename does not replace an existing destination.
	if _, err := os.Stat(h.Path); err == nil {
		_ = os.Remove(h.Path)
	}
	if rerr := os.Rename(temp, h.Path); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace document: %w", rerr)
	}
	log.L().Info("document saved", "path", h.Path, "elements", len(h.Doc.Elements))
	return nil
}

// SaveAs writes the document to a new path and updates the handle.
func SaveAs(h *DocumentHandle, path string) error {
	if h == nil {
		return errors.New("nil DocumentHandle")
	}
	if strings.TrimSpace(path) == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create document dir: %w", err)
	}
	h.Path = path
	return Save(h)
}

// AutosaveCrashSnapshot writes the in-memory document to a timestamped
// file so a crash does not lose unsaved work. Saved documents go to
// their backups directory; unsaved documents land in the temp dir.
func AutosaveCrashSnapshot(h *DocumentHandle) (string, error) {
	if h == nil {
		return "", errors.New("nil DocumentHandle")
	}
	dir := os.TempDir()
	base := "untitled" + FileExtension
	if h.Path != "" {
		dir = filepath.Join(filepath.Dir(h.Path), BackupsDirName)
		base = filepath.Base(h.Path)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure autosave dir: %w", err)
	}
	data, err := json.MarshalIndent(h.Doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}
	data = append(data, '\n')
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(dir, fmt.Sprintf("autosave-%s.%s", stamp, base))
	if err := writeFileSync(path, data); err != nil {
		return "", fmt.Errorf("write autosave: %w", err)
	}
	return path, nil
}

// writeFileSync writes data to a file and flushes it to disk.
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
	if err := f.Sync(); err != nil {
		return err
	}
	return nil
}

// copyFile copies src to dst, overwriting dst if it exists.
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
	if err := df.Sync(); err != nil {
		return err
	}
	return nil
}

// openFromLatestBackup reads the newest timestamped backup for path.
func openFromLatestBackup(path string) (*domain.LabelDocument, error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	bdir := filepath.Join(dir, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	var candidates []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, base+".") && strings.HasSuffix(name, ".bak") {
			candidates = append(candidates, filepath.Join(bdir, name))
		}
	}
	if len(candidates) == 0 {
		return nil, errors.New("no backups found")
	}
	sort.Strings(candidates) // timestamp in name yields lexicographic order
	latest := candidates[len(candidates)-1]
	b, err := os.ReadFile(latest)
	if err != nil {
		return nil, fmt.Errorf("read latest backup: %w", err)
	}
	doc, err := parseDocument(b)
	if err != nil {
		return nil, fmt.Errorf("parse latest backup: %w", err)
	}
	return doc, nil
}
