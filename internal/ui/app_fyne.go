//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"golabeldesigner/internal/backend"
	editor "golabeldesigner/internal/canvas"
	"golabeldesigner/internal/config"
	"golabeldesigner/internal/control"
	"golabeldesigner/internal/crash"
	"golabeldesigner/internal/domain"
	"golabeldesigner/internal/export"
	"golabeldesigner/internal/imaging"
	applog "golabeldesigner/internal/log"
	"golabeldesigner/internal/storage"
	"golabeldesigner/internal/telemetry"
	"golabeldesigner/internal/templatepack"
	"golabeldesigner/internal/undo"
	"golabeldesigner/internal/vector"
	"golabeldesigner/internal/version"
)

// Run starts the Fyne-based label designer. Pass an optional document path
// to open immediately.
func Run(docPath string) error {
	cfg, token, err := config.Load()
	if err != nil {
		cfg = config.Defaults()
	}
	applog.Init(applog.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, File: cfg.Logging.File})
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("version", version.String()))

	tcfg := telemetry.FromEnv()
	if cfg.General.TelemetryOptIn {
		tcfg.OptIn = true
	}
	telemetry.NewDefault(tcfg)
	telemetry.Event("ui_started", nil)

	var h *storage.DocumentHandle
	defer func() { crash.Recover(h) }()

	fyneApp := app.NewWithID("golabeldesigner")
	w := fyneApp.NewWindow("Go Label Designer")
	// Restore window size from preferences (with sane minimums)
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1280)
	winH := prefs.IntWithFallback("window.height", 800)
	if winW < 800 {
		winW = 800
	}
	if winH < 600 {
		winH = 600
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	stage := editor.NewStage(cfg.Editor.DefaultCanvasWidth, cfg.Editor.DefaultCanvasHeight)
	hist := undo.NewManager(undo.Config{MaxDepth: cfg.Editor.UndoDepth})
	gesture := editor.NewGesture(stage, hist)
	gesture.GridStep = cfg.Editor.GridStep
	if cfg.Editor.SmartGuides {
		gesture.Guides = vector.SnapOptions{
			Threshold:     cfg.Editor.GuideThreshold,
			SnapToEdges:   true,
			SnapToCenters: true,
		}
	}

	status := widget.NewLabel("Ready")
	dirty := false
	setStatus := func(msg string) { status.SetText(msg) }
	markDirty := func() {
		dirty = true
		setStatus("Modified")
	}

	var cat *storage.Catalog
	if dataDir, derr := config.DataDir(); derr == nil {
		if c, cerr := storage.OpenCatalog(dataDir); cerr == nil {
			cat = c
			defer cat.Close()
		} else {
			l.Warn("catalog unavailable", slog.Any("err", cerr))
		}
	}

	cw := NewDesignCanvas(stage, gesture)

	// Property panel (right): rebuilt on selection and after edits.
	propBox := container.NewVBox()
	var refreshProps func()

	applyProperty := func(id, name string, value any) {
		c := stage.Control(id)
		if c == nil {
			return
		}
		old, ok := c.Properties()[name]
		if !ok {
			return
		}
		hist.Execute(editor.NewPropertyChangeCommand(stage, id, name, old, value))
		markDirty()
		cw.Refresh()
		refreshProps()
	}

	refreshProps = func() {
		propBox.Objects = nil
		id := stage.Selection()
		c := stage.Control(id)
		if c == nil {
			propBox.Add(widget.NewLabel("No selection"))
			propBox.Refresh()
			return
		}
		props := c.Properties()
		propBox.Add(widget.NewLabelWithStyle(string(c.ElementType()), fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
		for _, name := range propertyOrder {
			v, ok := props[name]
			if !ok {
				continue
			}
			name := name
			label := name
			mm := isMMProperty(name)
			if mm {
				label = name + " (mm)"
			}
			switch val := v.(type) {
			case bool:
				chk := widget.NewCheck(label, func(b bool) { applyProperty(id, name, b) })
				chk.SetChecked(val)
				propBox.Add(chk)
			case string:
				e := widget.NewEntry()
				e.SetText(val)
				e.OnSubmitted = func(s string) { applyProperty(id, name, s) }
				propBox.Add(widget.NewLabel(label))
				propBox.Add(e)
			default:
				f, ok := asFloat(v)
				if !ok {
					continue
				}
				if mm {
					f = control.PixelsToMM(f)
				}
				e := widget.NewEntry()
				e.SetText(strconv.FormatFloat(f, 'f', 2, 64))
				e.OnSubmitted = func(s string) {
					parsed, perr := strconv.ParseFloat(strings.TrimSpace(s), 64)
					if perr != nil {
						setStatus("Not a number: " + s)
						return
					}
					if mm {
						parsed = control.MMToPixels(parsed)
					}
					applyProperty(id, name, parsed)
				}
				propBox.Add(widget.NewLabel(label))
				propBox.Add(e)
			}
		}
		propBox.Refresh()
	}
	refreshProps()

	cw.OnSelect = func(id string) {
		refreshProps()
		if id == "" {
			setStatus("Ready")
			return
		}
		if el := stage.Element(id); el != nil {
			setStatus("Selected " + string(el.ElementType))
		}
	}
	cw.OnChange = func() {
		markDirty()
		refreshProps()
	}

	updateCatalog := func() {
		if cat == nil || h == nil || h.Path == "" {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		name := strings.TrimSuffix(filepath.Base(h.Path), storage.FileExtension)
		entry := storage.CatalogEntry{
			Path:         h.Path,
			Name:         name,
			CanvasWidth:  h.Doc.CanvasWidth,
			CanvasHeight: h.Doc.CanvasHeight,
			Elements:     len(h.Doc.Elements),
			UpdatedAt:    time.Now(),
		}
		if err := cat.Upsert(ctx, entry); err != nil {
			l.Warn("catalog upsert failed", slog.Any("err", err))
			return
		}
		if png, terr := export.Thumbnail(&h.Doc, 128); terr == nil {
			if serr := cat.SetThumbnail(ctx, h.Path, png); serr != nil {
				l.Warn("thumbnail store failed", slog.Any("err", serr))
			}
		}
	}

	loadIntoStage := func(doc domain.LabelDocument) {
		stage.Clear()
		stage.CanvasWidth = doc.CanvasWidth
		stage.CanvasHeight = doc.CanvasHeight
		for _, d := range storage.Deserialize(doc, nil, nil) {
			if _, aerr := stage.Add(d.Element); aerr != nil {
				l.Warn("element rejected on load", slog.Any("err", aerr))
			}
		}
		hist.Clear()
		dirty = false
		cw.ResetView()
		cw.Refresh()
		refreshProps()
	}

	var rebuildMenus func()

	openDocument := func(path string) {
		nh, oerr := storage.Open(path)
		if oerr != nil {
			dialog.ShowError(oerr, w)
			return
		}
		h = nh
		loadIntoStage(h.Doc)
		addRecentDocument(prefs, path)
		updateCatalog()
		rebuildMenus()
		w.SetTitle("Go Label Designer — " + filepath.Base(path))
		setStatus(fmt.Sprintf("Opened %s (%d elements)", filepath.Base(path), stage.Len()))
		telemetry.DocumentEvent("document_opened", &h.Doc)
	}

	syncDocument := func() {
		if h == nil {
			h = storage.NewDocument(stage.CanvasWidth, stage.CanvasHeight)
		}
		h.Doc = storage.Serialize(stage.CanvasWidth, stage.CanvasHeight, stage.Elements())
	}

	var saveDocumentAs func()

	saveDocument := func() {
		syncDocument()
		if h.Path == "" {
			saveDocumentAs()
			return
		}
		if serr := storage.Save(h); serr != nil {
			dialog.ShowError(serr, w)
			return
		}
		dirty = false
		addRecentDocument(prefs, h.Path)
		updateCatalog()
		rebuildMenus()
		setStatus("Saved " + filepath.Base(h.Path))
	}

	saveDocumentAs = func() {
		dialog.ShowFileSave(func(uc fyne.URIWriteCloser, derr error) {
			if derr != nil || uc == nil {
				return
			}
			path := uc.URI().Path()
			_ = uc.Close()
			if !strings.HasSuffix(path, storage.FileExtension) {
				path += storage.FileExtension
			}
			syncDocument()
			if serr := storage.SaveAs(h, path); serr != nil {
				dialog.ShowError(serr, w)
				return
			}
			dirty = false
			addRecentDocument(prefs, path)
			updateCatalog()
			rebuildMenus()
			w.SetTitle("Go Label Designer — " + filepath.Base(path))
			setStatus("Saved " + filepath.Base(path))
		}, w)
	}

	newDocument := func() {
		h = storage.NewDocument(cfg.Editor.DefaultCanvasWidth, cfg.Editor.DefaultCanvasHeight)
		loadIntoStage(h.Doc)
		w.SetTitle("Go Label Designer")
		setStatus("New document")
	}

	deleteSelection := func() {
		id := stage.Selection()
		if id == "" {
			return
		}
		hist.Execute(editor.NewDeleteElementCommand(stage, id))
		markDirty()
		cw.Refresh()
		refreshProps()
	}

	addElement := func(t domain.ElementType) {
		el := defaultElement(t, stage.CanvasWidth, stage.CanvasHeight)
		hist.Execute(editor.NewAddElementCommand(stage, el))
		stage.Select(el.ID)
		markDirty()
		cw.Refresh()
		refreshProps()
		setStatus("Added " + string(t))
		telemetry.Event("element_added", map[string]any{"type": string(t)})
	}

	exportPDF := func() {
		dialog.ShowFileSave(func(uc fyne.URIWriteCloser, derr error) {
			if derr != nil || uc == nil {
				return
			}
			path := uc.URI().Path()
			_ = uc.Close()
			if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
				path += ".pdf"
			}
			syncDocument()
			name := "label"
			if h.Path != "" {
				name = strings.TrimSuffix(filepath.Base(h.Path), storage.FileExtension)
			}
			if eerr := export.ExportPDF(&h.Doc, path, export.PDFOptions{Title: name}); eerr != nil {
				dialog.ShowError(eerr, w)
				return
			}
			setStatus("Exported " + filepath.Base(path))
			telemetry.DocumentEvent("export_pdf", &h.Doc)
		}, w)
	}

	exportPNG := func() {
		dialog.ShowFileSave(func(uc fyne.URIWriteCloser, derr error) {
			if derr != nil || uc == nil {
				return
			}
			path := uc.URI().Path()
			_ = uc.Close()
			if !strings.HasSuffix(strings.ToLower(path), ".png") {
				path += ".png"
			}
			syncDocument()
			if eerr := export.WritePNG(&h.Doc, path, export.PNGOptions{Scale: 2}); eerr != nil {
				dialog.ShowError(eerr, w)
				return
			}
			setStatus("Exported " + filepath.Base(path))
			telemetry.Event("export_png", nil)
		}, w)
	}

	exportPack := func() {
		if h == nil || h.Path == "" {
			dialog.ShowInformation("Template Pack", "Save the document first.", w)
			return
		}
		saveDocument()
		dialog.ShowFileSave(func(uc fyne.URIWriteCloser, derr error) {
			if derr != nil || uc == nil {
				return
			}
			path := uc.URI().Path()
			_ = uc.Close()
			if !strings.HasSuffix(strings.ToLower(path), ".zip") {
				path += ".zip"
			}
			if eerr := templatepack.ExportPack(h.Path, path); eerr != nil {
				dialog.ShowError(eerr, w)
				return
			}
			setStatus("Packed " + filepath.Base(path))
		}, w)
	}

	installPack := func() {
		fd := dialog.NewFileOpen(func(uc fyne.URIReadCloser, derr error) {
			if derr != nil || uc == nil {
				return
			}
			path := uc.URI().Path()
			_ = uc.Close()
			destDir := filepath.Dir(path)
			if h != nil && h.Path != "" {
				destDir = filepath.Dir(h.Path)
			}
			n, ierr := templatepack.InstallPack(destDir, path)
			if ierr != nil {
				dialog.ShowError(ierr, w)
				return
			}
			dialog.ShowInformation("Template Pack", fmt.Sprintf("Installed %d file(s) into %s", n, destDir), w)
		}, w)
		fd.SetFilter(fstorage.NewExtensionFileFilter([]string{".zip"}))
		fd.Show()
	}

	backendClient := func() *backend.Client {
		return backend.NewClientFromConfig(cfg.Backend, token)
	}

	signIn := func() {
		urlEntry := widget.NewEntry()
		urlEntry.SetText(cfg.Backend.BaseURL)
		tokenEntry := widget.NewPasswordEntry()
		tokenEntry.SetText(token)
		form := []*widget.FormItem{
			widget.NewFormItem("Backend URL", urlEntry),
			widget.NewFormItem("Token", tokenEntry),
		}
		dialog.ShowForm("Backend Sign In", "Save", "Cancel", form, func(ok bool) {
			if !ok {
				return
			}
			cfg.Backend.BaseURL = strings.TrimSpace(urlEntry.Text)
			token = strings.TrimSpace(tokenEntry.Text)
			if serr := config.Save(cfg, token); serr != nil {
				dialog.ShowError(serr, w)
				return
			}
			setStatus("Backend settings saved")
		}, w)
	}

	publishTemplate := func() {
		syncDocument()
		nameEntry := widget.NewEntry()
		if h.Path != "" {
			nameEntry.SetText(strings.TrimSuffix(filepath.Base(h.Path), storage.FileExtension))
		}
		form := []*widget.FormItem{widget.NewFormItem("Name", nameEntry)}
		dialog.ShowForm("Publish Template", "Publish", "Cancel", form, func(ok bool) {
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Backend.TimeoutMs)*time.Millisecond)
			defer cancel()
			tpl, perr := backendClient().PublishTemplate(ctx, nameEntry.Text, h.Doc)
			if perr != nil {
				dialog.ShowError(perr, w)
				return
			}
			setStatus(fmt.Sprintf("Published %q (id %d)", tpl.Name, tpl.ID))
			telemetry.DocumentEvent("template_published", &h.Doc)
		}, w)
	}

	browseTemplates := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Backend.TimeoutMs)*time.Millisecond)
		defer cancel()
		items, lerr := backendClient().ListTemplates(ctx)
		if lerr != nil {
			dialog.ShowError(lerr, w)
			return
		}
		if len(items) == 0 {
			dialog.ShowInformation("Templates", "No templates on the backend.", w)
			return
		}
		list := widget.NewList(
			func() int { return len(items) },
			func() fyne.CanvasObject { return widget.NewLabel("") },
			func(i widget.ListItemID, o fyne.CanvasObject) {
				t := items[i]
				o.(*widget.Label).SetText(fmt.Sprintf("%s  (%.0fx%.0f)", t.Name, t.CanvasWidth, t.CanvasHeight))
			},
		)
		var d dialog.Dialog
		list.OnSelected = func(i widget.ListItemID) {
			gctx, gcancel := context.WithTimeout(context.Background(), time.Duration(cfg.Backend.TimeoutMs)*time.Millisecond)
			defer gcancel()
			env, gerr := backendClient().GetTemplate(gctx, items[i].ID)
			if gerr != nil {
				dialog.ShowError(gerr, w)
				return
			}
			h = storage.NewDocument(env.Document.CanvasWidth, env.Document.CanvasHeight)
			h.Doc = env.Document
			loadIntoStage(env.Document)
			w.SetTitle("Go Label Designer — " + env.Name)
			setStatus("Loaded template " + env.Name)
			if d != nil {
				d.Hide()
			}
		}
		d = dialog.NewCustom("Templates", "Close", container.NewStack(list), w)
		d.Resize(fyne.NewSize(420, 360))
		d.Show()
	}

	rebuildMenus = func() {
		openItem := fyne.NewMenuItem("Open…", func() {
			fd := dialog.NewFileOpen(func(uc fyne.URIReadCloser, derr error) {
				if derr != nil || uc == nil {
					return
				}
				path := uc.URI().Path()
				_ = uc.Close()
				openDocument(path)
			}, w)
			fd.SetFilter(fstorage.NewExtensionFileFilter([]string{".json"}))
			fd.Show()
		})

		recent := loadRecentDocuments(prefs)
		recentItems := make([]*fyne.MenuItem, 0, len(recent))
		for _, p := range recent {
			p := p
			recentItems = append(recentItems, fyne.NewMenuItem(filepath.Base(p), func() { openDocument(p) }))
		}
		recentMenu := fyne.NewMenuItem("Open Recent", nil)
		if len(recentItems) > 0 {
			recentMenu.ChildMenu = fyne.NewMenu("", recentItems...)
		} else {
			recentMenu.Disabled = true
		}

		fileMenu := fyne.NewMenu("File",
			fyne.NewMenuItem("New", newDocument),
			openItem,
			recentMenu,
			fyne.NewMenuItemSeparator(),
			fyne.NewMenuItem("Save", saveDocument),
			fyne.NewMenuItem("Save As…", saveDocumentAs),
			fyne.NewMenuItemSeparator(),
			fyne.NewMenuItem("Export PDF…", exportPDF),
			fyne.NewMenuItem("Export PNG…", exportPNG),
			fyne.NewMenuItemSeparator(),
			fyne.NewMenuItem("Export Template Pack…", exportPack),
			fyne.NewMenuItem("Install Template Pack…", installPack),
		)
		editMenu := fyne.NewMenu("Edit",
			fyne.NewMenuItem("Undo", func() {
				if hist.Undo() {
					markDirty()
					cw.Refresh()
					refreshProps()
					setStatus("Undone")
				}
			}),
			fyne.NewMenuItem("Redo", func() {
				if hist.Redo() {
					markDirty()
					cw.Refresh()
					refreshProps()
					setStatus("Redone")
				}
			}),
			fyne.NewMenuItemSeparator(),
			fyne.NewMenuItem("Delete Element", deleteSelection),
		)
		backendMenu := fyne.NewMenu("Backend",
			fyne.NewMenuItem("Sign In…", signIn),
			fyne.NewMenuItem("Publish Template…", publishTemplate),
			fyne.NewMenuItem("Browse Templates…", browseTemplates),
		)
		helpMenu := fyne.NewMenu("Help",
			fyne.NewMenuItem("About", func() {
				dialog.ShowInformation("Go Label Designer", version.String(), w)
			}),
		)
		w.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, backendMenu, helpMenu))
	}
	rebuildMenus()

	// Element palette (left)
	palette := container.NewVBox(
		widget.NewLabelWithStyle("Insert", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewButton("Text", func() { addElement(domain.TypeText) }),
		widget.NewButton("Rectangle", func() { addElement(domain.TypeRectangle) }),
		widget.NewButton("Ellipse", func() { addElement(domain.TypeEllipse) }),
		widget.NewButton("Line", func() { addElement(domain.TypeLine) }),
		widget.NewButton("Arrow", func() { addElement(domain.TypeArrow) }),
		widget.NewButton("Polygon", func() { addElement(domain.TypePolygon) }),
		widget.NewButton("Image…", func() {
			fd := dialog.NewFileOpen(func(uc fyne.URIReadCloser, derr error) {
				if derr != nil || uc == nil {
					return
				}
				path := uc.URI().Path()
				_ = uc.Close()
				el := defaultElement(domain.TypeImage, stage.CanvasWidth, stage.CanvasHeight)
				el.ImagePath = path
				hist.Execute(editor.NewAddElementCommand(stage, el))
				stage.Select(el.ID)
				markDirty()
				cw.Refresh()
				refreshProps()
			}, w)
			fd.SetFilter(fstorage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".gif"}))
			fd.Show()
		}),
		widget.NewSeparator(),
		widget.NewCheck("Lock aspect", func(b bool) { cw.LockAspect = b }),
	)

	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyDelete, fyne.KeyBackspace:
			deleteSelection()
		case fyne.KeyEscape:
			stage.Select("")
			cw.Refresh()
			refreshProps()
		}
	})

	content := container.NewBorder(nil, status, palette, container.NewVScroll(propBox), cw)
	w.SetContent(content)

	w.SetCloseIntercept(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		if !dirty {
			w.Close()
			return
		}
		dialog.ShowConfirm("Unsaved changes", "Discard unsaved changes and quit?", func(ok bool) {
			if ok {
				w.Close()
			}
		}, w)
	})

	if strings.TrimSpace(docPath) != "" {
		openDocument(docPath)
	}

	w.ShowAndRun()
	telemetry.Event("ui_closed", nil)
	return nil
}

// propertyOrder fixes the panel layout; Properties() maps are unordered.
var propertyOrder = []string{
	"X", "Y", "X2", "Y2", "Width", "Height",
	"Text", "FontSize", "FontFamily", "FontWeight", "FontStyle", "TextAlignment", "ForegroundColor",
	"FillColor", "StrokeColor", "StrokeThickness", "StrokeDashPattern",
	"RadiusX", "RadiusY",
	"UseGradientFill", "GradientStartColor", "GradientEndColor", "GradientAngle",
	"PolygonPoints",
	"HasStartArrow", "HasEndArrow", "ArrowheadSize",
	"ImagePath", "MonochromeEnabled", "MonochromeAlgorithm", "Threshold", "InvertColors", "Brightness", "Contrast",
}

// isMMProperty reports whether the panel shows the value in millimeters.
// Font sizes stay in points and styling scalars stay unitless.
func isMMProperty(name string) bool {
	switch name {
	case "X", "Y", "X2", "Y2", "Width", "Height":
		return true
	}
	return false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case uint8:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// defaultElement builds a fresh element roughly centered on the canvas.
func defaultElement(t domain.ElementType, cw, ch float64) *domain.CanvasElement {
	cx, cy := cw/2, ch/2
	el := &domain.CanvasElement{ElementType: t, StrokeColor: "#FF000000", StrokeThickness: 1}
	switch t {
	case domain.TypeText:
		el.X, el.Y = cx-60, cy-12
		el.Width, el.Height = 120, 24
		el.Text = "Text"
		el.FontSize = 12
		el.FontFamily = "Arial"
		el.ForegroundColor = "#FF000000"
		el.StrokeThickness = 0
	case domain.TypeRectangle:
		el.X, el.Y = cx-40, cy-30
		el.Width, el.Height = 80, 60
		el.FillColor = "#FFFFFFFF"
	case domain.TypeEllipse:
		el.X, el.Y = cx-40, cy-30
		el.Width, el.Height = 80, 60
		el.FillColor = "#FFFFFFFF"
	case domain.TypeLine:
		x2, y2 := cx+40.0, cy
		el.X, el.Y = cx-40, cy
		el.X2, el.Y2 = &x2, &y2
	case domain.TypeArrow:
		x2, y2 := cx+40.0, cy
		el.X, el.Y = cx-40, cy
		el.X2, el.Y2 = &x2, &y2
		el.HasEndArrow = true
		el.ArrowheadSize = 10
	case domain.TypePolygon:
		el.X, el.Y = cx-30, cy-25
		el.Width, el.Height = 60, 50
		el.PolygonPoints = "30,0 60,50 0,50"
		el.FillColor = "#FFFFFFFF"
	case domain.TypeImage:
		el.X, el.Y = cx-40, cy-30
		el.Width, el.Height = 80, 60
		el.StrokeThickness = 0
	}
	return el
}

// dragKind represents the current canvas interaction.
type dragKind int

const (
	dragNone dragKind = iota
	dragPan
	dragMove
	dragResize
)

// DesignCanvas is the interactive editing surface. It maps the document's
// pixel space onto the screen with a zoom factor and a pan offset, renders
// the stage and feeds pointer input into the gesture controller.
type DesignCanvas struct {
	widget.BaseWidget

	stage   *editor.Stage
	gesture *editor.Gesture

	zoom    float32
	offsetX float32
	offsetY float32

	mode dragKind

	// LockAspect forces proportional corner resizes.
	LockAspect bool

	// OnSelect fires after tap selection changed; OnChange after a
	// completed move or resize gesture.
	OnSelect func(id string)
	OnChange func()

	imageCache map[string]image.Image
}

func NewDesignCanvas(stage *editor.Stage, gesture *editor.Gesture) *DesignCanvas {
	dc := &DesignCanvas{
		stage:      stage,
		gesture:    gesture,
		zoom:       1,
		imageCache: map[string]image.Image{},
	}
	dc.ExtendBaseWidget(dc)
	return dc
}

func (dc *DesignCanvas) PreferredSize() fyne.Size { return fyne.NewSize(900, 600) }

// ResetView restores zoom and pan, e.g. after loading a document.
func (dc *DesignCanvas) ResetView() {
	dc.zoom = 1
	dc.offsetX = 0
	dc.offsetY = 0
}

// Coordinate helpers: canvas pixel space <-> screen mapping.
func (dc *DesignCanvas) originAndScale() (cx, cy, scale float32) {
	size := dc.Size()
	scaledW := float32(dc.stage.CanvasWidth) * dc.zoom
	scaledH := float32(dc.stage.CanvasHeight) * dc.zoom
	cx = size.Width/2 - scaledW/2 + dc.offsetX
	cy = size.Height/2 - scaledH/2 + dc.offsetY
	return cx, cy, dc.zoom
}

func (dc *DesignCanvas) toScreen(p vector.Pt) fyne.Position {
	cx, cy, s := dc.originAndScale()
	return fyne.NewPos(cx+float32(p.X)*s, cy+float32(p.Y)*s)
}

func (dc *DesignCanvas) toCanvas(pos fyne.Position) vector.Pt {
	cx, cy, s := dc.originAndScale()
	return vector.Pt{X: float64((pos.X - cx) / s), Y: float64((pos.Y - cy) / s)}
}

// selectionBounds returns the grab area of an element in canvas pixels.
// Endpoint elements use their control's padded container box, so thin
// shafts stay easy to pick and arrowheads fall inside the selection.
func (dc *DesignCanvas) selectionBounds(el *domain.CanvasElement) vector.Rect {
	if el.ElementType.UsesEndpoints() {
		if c, ok := dc.stage.Control(el.ID).(interface{ Container() control.Container }); ok {
			box := c.Container()
			return vector.R(box.X, box.Y, box.Width, box.Height)
		}
	}
	if el.ElementType == domain.TypePolygon && el.PolygonPoints != "" {
		_, _, w, ph := domain.PointsBounds(domain.ParsePolygonPoints(el.PolygonPoints))
		return vector.R(el.X, el.Y, w, ph)
	}
	return vector.R(el.X, el.Y, el.Width, el.Height)
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// hitTest returns the topmost element id at a canvas point, or "".
func (dc *DesignCanvas) hitTest(p vector.Pt) string {
	els := dc.stage.Elements()
	for i := len(els) - 1; i >= 0; i-- {
		if dc.selectionBounds(els[i]).Contains(p) {
			return els[i].ID
		}
	}
	return ""
}

type fRect struct{ X, Y, Width, Height float32 }

func (r fRect) contains(pos fyne.Position) bool {
	return pos.X >= r.X && pos.X <= r.X+r.Width && pos.Y >= r.Y && pos.Y <= r.Y+r.Height
}

type handleSpot struct {
	handle control.Handle
	rect   fRect
}

// handleSpots lists the screen rectangles of the selection handles. Lines
// and arrows expose only their two endpoint grips.
func (dc *DesignCanvas) handleSpots() []handleSpot {
	id := dc.stage.Selection()
	c := dc.stage.Control(id)
	if c == nil {
		return nil
	}
	const sz = float32(8)
	spot := func(h control.Handle, p vector.Pt) handleSpot {
		sp := dc.toScreen(p)
		return handleSpot{handle: h, rect: fRect{X: sp.X - sz/2, Y: sp.Y - sz/2, Width: sz, Height: sz}}
	}
	el := c.Element()
	if c.UsesEndpoints() {
		x1, y1, x2, y2 := el.Endpoints()
		return []handleSpot{
			spot(control.StartPoint, vector.Pt{X: x1, Y: y1}),
			spot(control.EndPoint, vector.Pt{X: x2, Y: y2}),
		}
	}
	b := dc.selectionBounds(el)
	mx, my := b.X+b.W/2, b.Y+b.H/2
	return []handleSpot{
		spot(control.TopLeft, vector.Pt{X: b.X, Y: b.Y}),
		spot(control.TopCenter, vector.Pt{X: mx, Y: b.Y}),
		spot(control.TopRight, vector.Pt{X: b.X + b.W, Y: b.Y}),
		spot(control.MiddleLeft, vector.Pt{X: b.X, Y: my}),
		spot(control.MiddleRight, vector.Pt{X: b.X + b.W, Y: my}),
		spot(control.BottomLeft, vector.Pt{X: b.X, Y: b.Y + b.H}),
		spot(control.BottomCenter, vector.Pt{X: mx, Y: b.Y + b.H}),
		spot(control.BottomRight, vector.Pt{X: b.X + b.W, Y: b.Y + b.H}),
	}
}

func (dc *DesignCanvas) handleAt(pos fyne.Position) (control.Handle, bool) {
	for _, s := range dc.handleSpots() {
		if s.rect.contains(pos) {
			return s.handle, true
		}
	}
	return 0, false
}

// Tapped selects the topmost element under the pointer.
func (dc *DesignCanvas) Tapped(e *fyne.PointEvent) {
	id := dc.hitTest(dc.toCanvas(e.Position))
	dc.stage.Select(id)
	dc.mode = dragNone
	dc.Refresh()
	if dc.OnSelect != nil {
		dc.OnSelect(id)
	}
}

func (dc *DesignCanvas) Dragged(e *fyne.DragEvent) {
	pos := e.Position
	if dc.mode == dragNone {
		pt := dc.toCanvas(pos)
		sel := dc.stage.Selection()
		if h, ok := dc.handleAt(pos); ok && sel != "" {
			dc.mode = dragResize
			dc.gesture.BeginResize(sel, h, pt.X, pt.Y, dc.LockAspect)
		} else if id := dc.hitTest(pt); id != "" {
			if id != sel {
				dc.stage.Select(id)
				if dc.OnSelect != nil {
					dc.OnSelect(id)
				}
			}
			dc.mode = dragMove
			dc.gesture.BeginMove(id, pt.X, pt.Y)
		} else {
			dc.mode = dragPan
		}
	}

	switch dc.mode {
	case dragPan:
		dc.offsetX += e.Dragged.DX
		dc.offsetY += e.Dragged.DY
	case dragMove, dragResize:
		pt := dc.toCanvas(pos)
		dc.gesture.Update(pt.X, pt.Y)
	}
	dc.Refresh()
}

func (dc *DesignCanvas) DragEnd() {
	if dc.mode == dragMove || dc.mode == dragResize {
		dc.gesture.End()
		if dc.OnChange != nil {
			dc.OnChange()
		}
	}
	dc.mode = dragNone
	dc.Refresh()
}

// Scrolled zooms the canvas around its center.
func (dc *DesignCanvas) Scrolled(e *fyne.ScrollEvent) {
	dc.zoom += e.Scrolled.DY * 0.05
	if dc.zoom < 0.1 {
		dc.zoom = 0.1
	}
	if dc.zoom > 4.0 {
		dc.zoom = 4.0
	}
	dc.Refresh()
}

// CreateRenderer builds the scene. Element visuals are rebuilt on every
// layout pass since the element list and kinds change freely.
func (dc *DesignCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 44, G: 44, B: 48, A: 255})
	page := canvas.NewRectangle(color.White)
	page.StrokeColor = color.RGBA{R: 20, G: 20, B: 20, A: 255}
	page.StrokeWidth = 1
	r := &designCanvasRenderer{dc: dc, bg: bg, page: page}
	r.objects = []fyne.CanvasObject{bg, page}
	return r
}

type designCanvasRenderer struct {
	dc       *DesignCanvas
	objects  []fyne.CanvasObject
	bg, page *canvas.Rectangle
}

func (r *designCanvasRenderer) Destroy()                     {}
func (r *designCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *designCanvasRenderer) MinSize() fyne.Size           { return r.dc.PreferredSize() }
func (r *designCanvasRenderer) Refresh() {
	r.Layout(r.dc.Size())
	canvas.Refresh(r.dc)
}

func (r *designCanvasRenderer) Layout(size fyne.Size) {
	dc := r.dc
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))

	cx, cy, s := dc.originAndScale()
	pageW := float32(dc.stage.CanvasWidth) * s
	pageH := float32(dc.stage.CanvasHeight) * s
	r.page.Resize(fyne.NewSize(pageW, pageH))
	r.page.Move(fyne.NewPos(cx, cy))

	objs := []fyne.CanvasObject{r.bg, r.page}
	for _, el := range dc.stage.Elements() {
		objs = append(objs, r.elementObjects(el)...)
	}
	objs = append(objs, r.selectionObjects()...)
	objs = append(objs, r.guideObjects()...)
	r.objects = objs
}

// elementObjects renders one element as positioned canvas primitives.
func (r *designCanvasRenderer) elementObjects(el *domain.CanvasElement) []fyne.CanvasObject {
	dc := r.dc
	_, _, s := dc.originAndScale()
	stroke := parseColor(el.StrokeColor, color.RGBA{A: 255})

	place := func(o fyne.CanvasObject, b vector.Rect) {
		p := dc.toScreen(vector.Pt{X: b.X, Y: b.Y})
		o.Resize(fyne.NewSize(float32(b.W)*s, float32(b.H)*s))
		o.Move(p)
	}
	line := func(a, b vector.Pt) *canvas.Line {
		ln := canvas.NewLine(stroke)
		ln.StrokeWidth = float32(el.StrokeThickness) * s
		if ln.StrokeWidth <= 0 {
			ln.StrokeWidth = 1
		}
		ln.Position1 = dc.toScreen(a)
		ln.Position2 = dc.toScreen(b)
		return ln
	}

	switch el.ElementType {
	case domain.TypeRectangle:
		rect := canvas.NewRectangle(r.fillColor(el))
		rect.StrokeColor = stroke
		rect.StrokeWidth = float32(el.StrokeThickness) * s
		if el.RadiusX > 0 || el.RadiusY > 0 {
			rect.CornerRadius = float32(minf(el.RadiusX, el.RadiusY)) * s
		}
		place(rect, vector.R(el.X, el.Y, el.Width, el.Height))
		return []fyne.CanvasObject{rect}
	case domain.TypeEllipse:
		ell := canvas.NewCircle(r.fillColor(el))
		ell.StrokeColor = stroke
		ell.StrokeWidth = float32(el.StrokeThickness) * s
		ell.Position1 = dc.toScreen(vector.Pt{X: el.X, Y: el.Y})
		ell.Position2 = dc.toScreen(vector.Pt{X: el.X + el.Width, Y: el.Y + el.Height})
		return []fyne.CanvasObject{ell}
	case domain.TypeText:
		fg := parseColor(el.ForegroundColor, color.RGBA{A: 255})
		size := float32(el.FontSize) * 96.0 / 72.0 * s
		if size <= 0 {
			size = 16 * s
		}
		var out []fyne.CanvasObject
		for i, lineText := range strings.Split(el.Text, "\n") {
			txt := canvas.NewText(lineText, fg)
			txt.TextSize = size
			txt.TextStyle = fyne.TextStyle{
				Bold:   strings.EqualFold(el.FontWeight, "Bold"),
				Italic: strings.EqualFold(el.FontStyle, "Italic"),
			}
			txt.Move(dc.toScreen(vector.Pt{X: el.X, Y: el.Y + float64(i)*el.FontSize*96.0/72.0*1.2}))
			out = append(out, txt)
		}
		return out
	case domain.TypeLine:
		x1, y1, x2, y2 := el.Endpoints()
		return []fyne.CanvasObject{line(vector.Pt{X: x1, Y: y1}, vector.Pt{X: x2, Y: y2})}
	case domain.TypeArrow:
		x1, y1, x2, y2 := el.Endpoints()
		out := []fyne.CanvasObject{line(vector.Pt{X: x1, Y: y1}, vector.Pt{X: x2, Y: y2})}
		if c, ok := dc.stage.Control(el.ID).(interface {
			StartHead() []vector.Pt
			EndHead() []vector.Pt
		}); ok {
			for _, head := range [][]vector.Pt{c.StartHead(), c.EndHead()} {
				if len(head) != 3 {
					continue
				}
				out = append(out,
					line(head[0], head[1]),
					line(head[1], head[2]),
					line(head[2], head[0]),
				)
			}
		}
		return out
	case domain.TypePolygon:
		pts := domain.ParsePolygonPoints(el.PolygonPoints)
		if len(pts) < 3 {
			return nil
		}
		minX, minY, _, _ := domain.PointsBounds(pts)
		var out []fyne.CanvasObject
		for i := range pts {
			a := pts[i]
			b := pts[(i+1)%len(pts)]
			out = append(out, line(
				vector.Pt{X: el.X + a.X - minX, Y: el.Y + a.Y - minY},
				vector.Pt{X: el.X + b.X - minX, Y: el.Y + b.Y - minY},
			))
		}
		return out
	case domain.TypeImage:
		img := r.loadPreviewImage(el)
		if img == nil {
			ph := canvas.NewRectangle(color.RGBA{R: 230, G: 230, B: 230, A: 255})
			ph.StrokeColor = color.RGBA{R: 120, G: 120, B: 120, A: 255}
			ph.StrokeWidth = 1
			place(ph, vector.R(el.X, el.Y, el.Width, el.Height))
			return []fyne.CanvasObject{ph}
		}
		ci := canvas.NewImageFromImage(img)
		ci.FillMode = canvas.ImageFillStretch
		place(ci, vector.R(el.X, el.Y, el.Width, el.Height))
		return []fyne.CanvasObject{ci}
	}
	return nil
}

func (r *designCanvasRenderer) fillColor(el *domain.CanvasElement) color.Color {
	if el.UseGradientFill {
		// The canvas preview shows the gradient start color; export
		// renders the real ramp.
		return parseColor(el.GradientStartColor, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	if el.FillColor == "" {
		return color.RGBA{}
	}
	return parseColor(el.FillColor, color.RGBA{})
}

// loadPreviewImage decodes and filters an image element, caching the result
// per source path and filter settings.
func (r *designCanvasRenderer) loadPreviewImage(el *domain.CanvasElement) image.Image {
	if el.ImagePath == "" {
		return nil
	}
	key := fmt.Sprintf("%s|%t|%s|%d|%t|%g|%g", el.ImagePath, el.MonochromeEnabled,
		el.MonochromeAlgorithm, el.Threshold, el.InvertColors, el.Brightness, el.Contrast)
	if img, ok := r.dc.imageCache[key]; ok {
		return img
	}
	f, err := os.Open(el.ImagePath)
	if err != nil {
		return nil
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil
	}
	if el.MonochromeEnabled {
		mono, merr := imaging.ProcessImage(img, imaging.Options{
			Algorithm:  el.MonochromeAlgorithm,
			Threshold:  el.Threshold,
			Invert:     el.InvertColors,
			Brightness: el.Brightness,
			Contrast:   el.Contrast,
		})
		if merr == nil {
			img = mono
		}
	}
	r.dc.imageCache[key] = img
	return img
}

func (r *designCanvasRenderer) selectionObjects() []fyne.CanvasObject {
	dc := r.dc
	id := dc.stage.Selection()
	el := dc.stage.Element(id)
	if el == nil {
		return nil
	}
	accent := color.RGBA{R: 0, G: 170, B: 255, A: 255}
	var out []fyne.CanvasObject
	if !el.ElementType.UsesEndpoints() {
		b := dc.selectionBounds(el)
		bbox := canvas.NewRectangle(color.RGBA{})
		bbox.StrokeColor = accent
		bbox.StrokeWidth = 1
		p0 := dc.toScreen(vector.Pt{X: b.X, Y: b.Y})
		p1 := dc.toScreen(vector.Pt{X: b.X + b.W, Y: b.Y + b.H})
		bbox.Resize(fyne.NewSize(p1.X-p0.X, p1.Y-p0.Y))
		bbox.Move(p0)
		out = append(out, bbox)
	}
	for _, sp := range dc.handleSpots() {
		hr := canvas.NewRectangle(accent)
		hr.Resize(fyne.NewSize(sp.rect.Width, sp.rect.Height))
		hr.Move(fyne.NewPos(sp.rect.X, sp.rect.Y))
		out = append(out, hr)
	}
	return out
}

func (r *designCanvasRenderer) guideObjects() []fyne.CanvasObject {
	dc := r.dc
	guides := dc.gesture.GuideLines()
	if len(guides) == 0 {
		return nil
	}
	out := make([]fyne.CanvasObject, 0, len(guides))
	for _, g := range guides {
		ln := canvas.NewLine(color.RGBA{R: 255, G: 64, B: 129, A: 255})
		ln.StrokeWidth = 1
		ln.Position1 = dc.toScreen(g.From)
		ln.Position2 = dc.toScreen(g.To)
		out = append(out, ln)
	}
	return out
}

// parseColor decodes the document's #AARRGGBB / #RRGGBB / #RGB notation.
func parseColor(s string, def color.RGBA) color.Color {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if s == "" {
		return def
	}
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) == 6 {
		s = "FF" + s
	}
	if len(s) != 8 {
		return def
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return def
	}
	return color.RGBA{
		A: uint8(v >> 24),
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}
}

// Recent document persistence helpers.
const recentPrefsKey = "recent.documents"
const recentMax = 10

func loadRecentDocuments(p fyne.Preferences) []string {
	raw := p.StringWithFallback(recentPrefsKey, "")
	var items []string
	if strings.TrimSpace(raw) != "" {
		var tmp []string
		if err := json.Unmarshal([]byte(raw), &tmp); err == nil {
			items = tmp
		}
	}
	if items == nil {
		items = []string{}
	}
	// Filter out non-existing paths
	out := make([]string, 0, len(items))
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := os.Stat(s); err == nil {
			out = append(out, s)
		}
	}
	return out
}

func saveRecentDocuments(p fyne.Preferences, items []string) {
	if len(items) > recentMax {
		items = items[:recentMax]
	}
	b, _ := json.Marshal(items)
	p.SetString(recentPrefsKey, string(b))
}

func addRecentDocument(p fyne.Preferences, path string) {
	if strings.TrimSpace(path) == "" {
		return
	}
	abs, _ := filepath.Abs(path)
	rec := loadRecentDocuments(p)
	out := make([]string, 0, 1+len(rec))
	out = append(out, abs)
	for _, s := range rec {
		// de-dup (case-insensitive on Windows)
		if strings.EqualFold(s, abs) {
			continue
		}
		out = append(out, s)
	}
	saveRecentDocuments(p, out)
}
