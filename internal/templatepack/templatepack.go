/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

// Package templatepack bundles a label document together with its
// referenced image files into a portable .zip pack, and installs such
// packs into a local templates directory.
package templatepack

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golabeldesigner/internal/domain"
	applog "golabeldesigner/internal/log"
	"golabeldesigner/internal/storage"
)

const manifestName = "templatepack.manifest.txt"

// ExportPack zips the document at docPath plus every image file its
// elements reference. Image paths inside the packed document are
// rewritten to pack-relative "images/<name>" entries so the installed
// template stays self-contained.
func ExportPack(docPath string, destZipPath string) error {
	l := applog.WithOperation(applog.WithComponent("templatepack"), "export").With(slog.String("doc", docPath))
	if strings.TrimSpace(docPath) == "" {
		return errors.New("docPath is required")
	}
	if strings.TrimSpace(destZipPath) == "" {
		return errors.New("destZipPath is required")
	}
	h, err := storage.Open(docPath)
	if err != nil {
		return fmt.Errorf("open document: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(destZipPath), 0o755); err != nil {
		return fmt.Errorf("ensure zip dir: %w", err)
	}
	// On Windows, remove destination if present before create
	_ = os.Remove(destZipPath)

	zf, err := os.Create(destZipPath)
	if err != nil {
		return fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)
	defer func() { _ = zw.Close() }()

	manifest := fmt.Sprintf("GoLabelDesigner Template Pack\nCreated: %s\nDocument: %s\n",
		time.Now().Format(time.RFC3339), filepath.Base(docPath))
	w, err := zw.Create(manifestName)
	if err != nil {
		return fmt.Errorf("add manifest: %w", err)
	}
	if _, err := w.Write([]byte(manifest)); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	doc := h.Doc
	doc.Elements = append([]domain.CanvasElement(nil), h.Doc.Elements...)
	images, err := packImages(zw, doc.Elements, filepath.Dir(docPath))
	if err != nil {
		l.Error("zip build failed", slog.Any("err", err))
		return fmt.Errorf("build zip: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	dw, err := zw.Create(filepath.Base(docPath))
	if err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	if _, err := dw.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write document: %w", err)
	}

	l.Info("template pack exported", slog.Int("images", images), slog.String("zip", destZipPath))
	return nil
}

// packImages copies every referenced image into the archive under
// images/, rewriting the element paths in place. Duplicate basenames
// get a numeric suffix; missing files are skipped with a warning.
func packImages(zw *zip.Writer, elements []domain.CanvasElement, baseDir string) (int, error) {
	l := applog.WithComponent("templatepack")
	used := map[string]string{} // source path -> archive name
	taken := map[string]bool{}
	added := 0
	for i := range elements {
		el := &elements[i]
		if el.ElementType != domain.TypeImage || el.ImagePath == "" {
			continue
		}
		src := el.ImagePath
		if !filepath.IsAbs(src) {
			src = filepath.Join(baseDir, src)
		}
		if name, ok := used[src]; ok {
			el.ImagePath = name
			continue
		}
		f, err := os.Open(src)
		if err != nil {
			l.Warn("referenced image missing, left as-is", slog.String("path", src))
			continue
		}
		base := filepath.Base(src)
		name := "images/" + base
		for n := 2; taken[name]; n++ {
			ext := filepath.Ext(base)
			name = fmt.Sprintf("images/%s-%d%s", strings.TrimSuffix(base, ext), n, ext)
		}
		fw, err := zw.Create(name)
		if err != nil {
			_ = f.Close()
			return added, err
		}
		if _, err := io.Copy(fw, f); err != nil {
			_ = f.Close()
			return added, err
		}
		_ = f.Close()
		used[src] = name
		taken[name] = true
		el.ImagePath = name
		added++
	}
	return added, nil
}

// InstallPack extracts the given .zip pack into templatesDir.
// Existing files are not overwritten; if a file already exists, it is
// skipped. Returns the count of files installed.
func InstallPack(templatesDir string, packZipPath string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("templatepack"), "install").With(slog.String("dir", templatesDir))
	if strings.TrimSpace(templatesDir) == "" {
		return 0, errors.New("templatesDir is required")
	}
	if strings.TrimSpace(packZipPath) == "" {
		return 0, errors.New("packZipPath is required")
	}
	if err := os.MkdirAll(templatesDir, 0o755); err != nil {
		return 0, fmt.Errorf("ensure templates dir: %w", err)
	}

	r, err := zip.OpenReader(packZipPath)
	if err != nil {
		return 0, fmt.Errorf("open pack: %w", err)
	}
	defer func() { _ = r.Close() }()

	installed := 0
	for _, f := range r.File {
		name := f.Name
		if name == manifestName {
			continue
		}
		// Reject entries that would escape the target directory.
		if strings.Contains(name, "..") || filepath.IsAbs(name) {
			l.Warn("skip unsafe entry", slog.String("name", name))
			continue
		}
		targetPath := filepath.Join(templatesDir, filepath.FromSlash(name))
		if _, err := os.Stat(targetPath); err == nil {
			l.Warn("skip existing file", slog.String("path", targetPath))
			continue
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(targetPath, 0o755); err != nil {
				return installed, err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
			return installed, err
		}
		rc, err := f.Open()
		if err != nil {
			return installed, err
		}
		out, err := os.OpenFile(targetPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			_ = rc.Close()
			return installed, err
		}
		if _, err := io.Copy(out, rc); err != nil {
			_ = out.Close()
			_ = rc.Close()
			return installed, err
		}
		_ = out.Close()
		_ = rc.Close()
		installed++
	}
	l.Info("template pack installed", slog.Int("files", installed))
	return installed, nil
}
