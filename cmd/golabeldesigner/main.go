/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golabeldesigner/internal/backend"
	"golabeldesigner/internal/crash"
	"golabeldesigner/internal/export"
	applog "golabeldesigner/internal/log"
	"golabeldesigner/internal/storage"
	"golabeldesigner/internal/templatepack"
	"golabeldesigner/internal/ui"
	"golabeldesigner/internal/version"
)

func usage() {
	fmt.Println("Go Label Designer")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  golabeldesigner version|-v|--version          Show version")
	fmt.Println("  golabeldesigner new <file>                     Create an empty label document")
	fmt.Println("  golabeldesigner open <file>                    Open a document and print a summary")
	fmt.Println("  golabeldesigner export-pdf <file> <out.pdf>    Render a document to PDF")
	fmt.Println("  golabeldesigner export-png <file> <out.png>    Render a document to PNG")
	fmt.Println("  golabeldesigner pack <file> <out.zip>          Bundle a document with its images")
	fmt.Println("  golabeldesigner install <dir> <pack.zip>       Install a template pack into <dir>")
	fmt.Println("  golabeldesigner server                         Run the template backend server")
	fmt.Println("  golabeldesigner ui [<file>]                    Launch desktop UI (build with -tags fyne for full UI)")
}

func main() {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	var h *storage.DocumentHandle
	defer func() { crash.Recover(h) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("Go Label Designer")
			fmt.Println(version.String())
			return
		case "new":
			if len(args) < 3 {
				fmt.Println("new requires <file>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			l.Info("new document", slog.String("path", abs))
			nh := storage.NewDocument(0, 0)
			nh.Doc.CanvasWidth = 378
			nh.Doc.CanvasHeight = 189
			if err := storage.SaveAs(nh, abs); err != nil {
				l.Error("new failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			h = nh
			fmt.Println("Created document at", abs)
			return
		case "open":
			if len(args) < 3 {
				fmt.Println("open requires <file>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			l.Info("open document", slog.String("path", abs))
			oh, err := storage.Open(abs)
			if err != nil {
				l.Error("open failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			h = oh
			fmt.Printf("Canvas: %g x %g px\n", oh.Doc.CanvasWidth, oh.Doc.CanvasHeight)
			fmt.Printf("Elements: %d\n", len(oh.Doc.Elements))
			return
		case "export-pdf":
			if len(args) < 4 {
				fmt.Println("export-pdf requires <file> and <out.pdf>")
				usage()
				os.Exit(2)
			}
			oh, err := storage.Open(args[2])
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			h = oh
			name := filepath.Base(args[2])
			if err := export.ExportPDF(&oh.Doc, args[3], export.PDFOptions{Title: name}); err != nil {
				l.Error("export-pdf failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Wrote", args[3])
			return
		case "export-png":
			if len(args) < 4 {
				fmt.Println("export-png requires <file> and <out.png>")
				usage()
				os.Exit(2)
			}
			oh, err := storage.Open(args[2])
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			h = oh
			if err := export.WritePNG(&oh.Doc, args[3], export.PNGOptions{Scale: 2}); err != nil {
				l.Error("export-png failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Wrote", args[3])
			return
		case "pack":
			if len(args) < 4 {
				fmt.Println("pack requires <file> and <out.zip>")
				usage()
				os.Exit(2)
			}
			if err := templatepack.ExportPack(args[2], args[3]); err != nil {
				l.Error("pack failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Wrote", args[3])
			return
		case "install":
			if len(args) < 4 {
				fmt.Println("install requires <dir> and <pack.zip>")
				usage()
				os.Exit(2)
			}
			n, err := templatepack.InstallPack(args[2], args[3])
			if err != nil {
				l.Error("install failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Printf("Installed %d file(s) into %s\n", n, args[2])
			return
		case "server":
			if err := backend.StartServer(); err != nil {
				l.Error("server failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		case "ui":
			var path string
			if len(args) >= 3 {
				path = args[2]
			}
			if err := ui.Run(path); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		}
	}

	usage()
}
