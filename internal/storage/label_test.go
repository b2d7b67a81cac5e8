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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golabeldesigner/internal/domain"
)

func TestSaveAndOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shipping"+FileExtension)

	h := NewDocument(400, 300)
	h.Doc = Serialize(400, 300, sampleElements())
	if err := SaveAs(h, path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	if h.Path != path {
		t.Fatalf("handle path %q", h.Path)
	}

	got, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got.Doc.CanvasWidth != 400 || got.Doc.CanvasHeight != 300 {
		t.Fatalf("canvas %gx%g", got.Doc.CanvasWidth, got.Doc.CanvasHeight)
	}
	if len(got.Doc.Elements) != 5 {
		t.Fatalf("loaded %d elements, want 5", len(got.Doc.Elements))
	}
}

func TestSaveWithoutPathFails(t *testing.T) {
	h := NewDocument(100, 100)
	if err := Save(h); err == nil {
		t.Fatal("expected error saving a document without a path")
	}
	if err := Save(nil); err == nil {
		t.Fatal("expected error for nil handle")
	}
}

func TestResaveCreatesBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "box"+FileExtension)
	h := NewDocument(100, 100)
	if err := SaveAs(h, path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	// First save of a new file makes no backup.
	if ents, _ := os.ReadDir(filepath.Join(dir, BackupsDirName)); len(ents) != 0 {
		t.Fatalf("backups after first save: %d", len(ents))
	}
	h.Doc.CanvasWidth = 200
	if err := Save(h); err != nil {
		t.Fatalf("Save: %v", err)
	}
	ents, err := os.ReadDir(filepath.Join(dir, BackupsDirName))
	if err != nil || len(ents) != 1 {
		t.Fatalf("backups after resave: %d (%v)", len(ents), err)
	}
	name := ents[0].Name()
	if !strings.HasPrefix(name, "box"+FileExtension+".") || !strings.HasSuffix(name, ".bak") {
		t.Fatalf("unexpected backup name %q", name)
	}
}

func TestOpenCorruptFallsBackToBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pallet"+FileExtension)
	h := NewDocument(150, 80)
	if err := SaveAs(h, path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	h.Doc.CanvasWidth = 160
	if err := Save(h); err != nil { // creates a backup of the 150x80 version
		t.Fatalf("Save: %v", err)
	}
	if err := os.WriteFile(path, []byte("{ not json"), 0o644); err != nil {
		t.Fatalf("corrupt file: %v", err)
	}
	got, err := Open(path)
	if err != nil {
		t.Fatalf("Open with backup available: %v", err)
	}
	if got.Doc.CanvasWidth != 150 {
		t.Fatalf("restored canvas width %g, want 150 from backup", got.Doc.CanvasWidth)
	}
}

func TestOpenCorruptWithoutBackupFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lone"+FileExtension)
	if err := os.WriteFile(path, []byte("garbage"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Open(path); err == nil {
		t.Fatal("expected error for corrupt file with no backups")
	}
}

func TestOpenRejectsSchemaViolation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad"+FileExtension)
	// Valid JSON, but CanvasWidth has the wrong type.
	body := `{"CanvasWidth": "wide", "CanvasHeight": 100, "Elements": []}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Open(path); err == nil {
		t.Fatal("expected schema validation error")
	}
}

func TestSavedDocumentConformsToSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "check"+FileExtension)
	h := NewDocument(400, 300)
	h.Doc = Serialize(400, 300, sampleElements())
	if err := SaveAs(h, path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := ValidateDocumentBytes(data); err != nil {
		t.Fatalf("saved document violates schema: %v", err)
	}
	// The contract field names appear verbatim in the file.
	for _, field := range []string{"CanvasWidth", "CanvasHeight", "Elements", "ElementType", "PolygonPoints", "MonochromeAlgorithm"} {
		if !strings.Contains(string(data), `"`+field+`"`) {
			t.Fatalf("field %q missing from file", field)
		}
	}
	if strings.Contains(string(data), `"ID"`) {
		t.Fatal("runtime ID must not be persisted")
	}
}

func TestDocumentFromStage(t *testing.T) {
	// Serialize reads the cached absolute endpoints, not container math.
	line := &domain.CanvasElement{ElementType: domain.TypeLine, StrokeColor: "#FF000000"}
	line.SetEndpoints(3, 4, 33, 44)
	doc := Serialize(100, 100, []*domain.CanvasElement{line})
	el := doc.Elements[0]
	if el.X != 3 || el.Y != 4 || el.X2 == nil || *el.X2 != 33 || el.Y2 == nil || *el.Y2 != 44 {
		t.Fatalf("line endpoints not preserved: %+v", el)
	}
}
