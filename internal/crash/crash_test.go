/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package crash

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golabeldesigner/internal/domain"
	"golabeldesigner/internal/storage"
)

// TestRecoverWritesReportAndAutosave ensures Recover handles a panic,
// writes a report, attempts autosave, and does not terminate the test
// process due to the injected exitFn.
func TestRecoverWritesReportAndAutosave(t *testing.T) {
	// Capture stderr temporarily to avoid noisy test logs
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	defer func() {
		_ = w.Close()
		os.Stderr = oldStderr
		_, _ = io.Copy(io.Discard, r)
	}()

	// Override exitFn to avoid os.Exit during test and to assert it was called
	called := 0
	oldExit := exitFn
	exitFn = func(code int) { called = code }
	defer func() { exitFn = oldExit }()

	dir := t.TempDir()
	h := storage.NewDocument(200, 100)
	h.Doc.Elements = []domain.CanvasElement{
		{ElementType: domain.TypeText, Text: "unsaved work", Width: 100, Height: 20},
	}
	docPath := filepath.Join(dir, "job"+storage.FileExtension)
	if err := storage.SaveAs(h, docPath); err != nil {
		t.Fatalf("save: %v", err)
	}

	func() {
		defer Recover(h)
		panic("boom")
	}()

	// Allow time for filesystem writes
	time.Sleep(50 * time.Millisecond)

	bdir := filepath.Join(dir, storage.BackupsDirName)
	files, _ := os.ReadDir(bdir)
	var report, autosave string
	for _, f := range files {
		name := f.Name()
		if strings.HasPrefix(name, "crash-") && strings.HasSuffix(name, ".log") {
			report = filepath.Join(bdir, name)
		}
		if strings.HasPrefix(name, "autosave-") {
			autosave = filepath.Join(bdir, name)
		}
	}
	if report == "" {
		t.Fatalf("expected crash report file under backups dir")
	}
	if autosave == "" {
		t.Fatalf("expected autosave snapshot under backups dir")
	}

	b, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !bytes.Contains(b, []byte("Panic: boom")) {
		t.Fatalf("report does not contain panic: %s", string(b))
	}

	data, err := os.ReadFile(autosave)
	if err != nil {
		t.Fatalf("read autosave: %v", err)
	}
	if err := storage.ValidateDocumentBytes(data); err != nil {
		t.Fatalf("autosave does not validate: %v", err)
	}

	if called != 2 {
		t.Fatalf("expected exit code 2, got %d", called)
	}
}

func TestRecoverNoPanicIsNoop(t *testing.T) {
	called := false
	oldExit := exitFn
	exitFn = func(int) { called = true }
	defer func() { exitFn = oldExit }()

	func() {
		defer Recover(nil)
	}()
	if called {
		t.Fatalf("Recover must not exit without a panic")
	}
}
