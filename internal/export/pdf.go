/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"golabeldesigner/internal/domain"
	"golabeldesigner/internal/imaging"
	applog "golabeldesigner/internal/log"
)

// Canvas coordinates are device-independent pixels at 96 per inch; PDF
// pages use points at 72 per inch.
const ptPerPixel = 72.0 / 96.0

// PDFOptions controls PDF export behavior.
// The page is sized exactly to the canvas; text stays vector using the
// built-in Helvetica/Times/Courier families so no fonts are embedded.
type PDFOptions struct {
	Title  string
	Author string
}

// ExportPDF writes the document as a single-page vector PDF at outPath.
// Parent directories are created as needed.
func ExportPDF(doc *domain.LabelDocument, outPath string, opt PDFOptions) error {
	if doc == nil {
		return fmt.Errorf("document is nil")
	}
	if doc.CanvasWidth <= 0 || doc.CanvasHeight <= 0 {
		return fmt.Errorf("canvas size %gx%g is not printable", doc.CanvasWidth, doc.CanvasHeight)
	}
	logger := applog.WithOperation(applog.WithComponent("export"), "pdf")

	pageW := doc.CanvasWidth * ptPerPixel
	pageH := doc.CanvasHeight * ptPerPixel
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: pageW, Ht: pageH},
		OrientationStr: "",
	})
	pdf.SetAutoPageBreak(false, 0)
	if opt.Title != "" {
		pdf.SetTitle(opt.Title, true)
	}
	if opt.Author != "" {
		pdf.SetAuthor(opt.Author, true)
	}
	pdf.SetFont("Helvetica", "", 12)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: pageW, Ht: pageH})

	for i := range doc.Elements {
		el := &doc.Elements[i]
		switch el.ElementType {
		case domain.TypeRectangle:
			pdfRect(pdf, el)
		case domain.TypeEllipse:
			pdfEllipse(pdf, el)
		case domain.TypeText:
			pdfText(pdf, el)
		case domain.TypeLine:
			pdfLine(pdf, el)
		case domain.TypeArrow:
			pdfArrow(pdf, el)
		case domain.TypePolygon:
			pdfPolygon(pdf, el)
		case domain.TypeImage:
			if err := pdfImage(pdf, el, i); err != nil {
				logger.Warn("image element skipped", "path", el.ImagePath, "error", err)
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	logger.Info("pdf exported", "path", outPath, "elements", len(doc.Elements))
	return nil
}

// applyStroke sets draw color, line width and dash pattern for el and
// reports whether the element has a visible stroke.
func applyStroke(pdf *gofpdf.Fpdf, el *domain.CanvasElement) bool {
	w := el.StrokeThickness * ptPerPixel
	if w <= 0 {
		pdf.SetDashPattern(nil, 0)
		return false
	}
	c := strokeColorOf(el.StrokeColor)
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
	pdf.SetLineWidth(w)
	pdf.SetDashPattern(dashArray(el.StrokeDashPattern, w), 0)
	return true
}

// dashArray maps a named dash pattern to gofpdf dash lengths scaled by the
// stroke width, matching the on-screen rendering.
func dashArray(pattern string, width float64) []float64 {
	switch pattern {
	case domain.DashDash:
		return []float64{4 * width, 2 * width}
	case domain.DashDot:
		return []float64{width, 2 * width}
	case domain.DashDashDot:
		return []float64{4 * width, 2 * width, width, 2 * width}
	}
	return nil
}

// fillStyle applies solid fill color when FillColor parses, returning the
// gofpdf style string for the subsequent draw call.
func fillStyle(pdf *gofpdf.Fpdf, el *domain.CanvasElement, stroked bool) string {
	c, ok := parseHexColor(el.FillColor)
	if !ok || c.A == 0 {
		if stroked {
			return "D"
		}
		return ""
	}
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
	if stroked {
		return "FD"
	}
	return "F"
}

// gradientVector converts the gradient angle in degrees to the 0..1
// coordinate pair gofpdf expects, 0 degrees running left to right.
func gradientVector(angleDeg float64) (x1, y1, x2, y2 float64) {
	rad := angleDeg * math.Pi / 180
	dx, dy := math.Cos(rad)/2, math.Sin(rad)/2
	return 0.5 - dx, 0.5 - dy, 0.5 + dx, 0.5 + dy
}

func pdfGradientClip(pdf *gofpdf.Fpdf, el *domain.CanvasElement, x, y, w, h float64) {
	start, ok1 := parseHexColor(el.GradientStartColor)
	end, ok2 := parseHexColor(el.GradientEndColor)
	if !ok1 || !ok2 {
		return
	}
	gx1, gy1, gx2, gy2 := gradientVector(el.GradientAngle)
	pdf.LinearGradient(x, y, w, h,
		int(start.R), int(start.G), int(start.B),
		int(end.R), int(end.G), int(end.B),
		gx1, gy1, gx2, gy2)
}

func pdfRect(pdf *gofpdf.Fpdf, el *domain.CanvasElement) {
	x, y := el.X*ptPerPixel, el.Y*ptPerPixel
	w, h := el.Width*ptPerPixel, el.Height*ptPerPixel
	stroked := applyStroke(pdf, el)
	r := math.Min(el.RadiusX, el.RadiusY) * ptPerPixel

	if el.UseGradientFill {
		pdf.ClipRect(x, y, w, h, false)
		pdfGradientClip(pdf, el, x, y, w, h)
		pdf.ClipEnd()
		if stroked {
			drawRectShape(pdf, x, y, w, h, r, "D")
		}
		return
	}
	style := fillStyle(pdf, el, stroked)
	if style != "" {
		drawRectShape(pdf, x, y, w, h, r, style)
	}
}

func drawRectShape(pdf *gofpdf.Fpdf, x, y, w, h, r float64, style string) {
	if r > 0 {
		pdf.RoundedRect(x, y, w, h, r, "1234", style)
		return
	}
	pdf.Rect(x, y, w, h, style)
}

func pdfEllipse(pdf *gofpdf.Fpdf, el *domain.CanvasElement) {
	cx := (el.X + el.Width/2) * ptPerPixel
	cy := (el.Y + el.Height/2) * ptPerPixel
	rx, ry := el.Width/2*ptPerPixel, el.Height/2*ptPerPixel
	stroked := applyStroke(pdf, el)

	if el.UseGradientFill {
		pdf.ClipEllipse(cx, cy, rx, ry, false)
		pdfGradientClip(pdf, el, cx-rx, cy-ry, 2*rx, 2*ry)
		pdf.ClipEnd()
		if stroked {
			pdf.Ellipse(cx, cy, rx, ry, 0, "D")
		}
		return
	}
	style := fillStyle(pdf, el, stroked)
	if style != "" {
		pdf.Ellipse(cx, cy, rx, ry, 0, style)
	}
}

func pdfText(pdf *gofpdf.Fpdf, el *domain.CanvasElement) {
	size := el.FontSize
	if size <= 0 {
		size = 12
	}
	pdf.SetFont(pdfFontFamily(el.FontFamily), pdfFontStyle(el), size)
	c := strokeColorOf(el.ForegroundColor)
	pdf.SetTextColor(int(c.R), int(c.G), int(c.B))

	x, w := el.X*ptPerPixel, el.Width*ptPerPixel
	// First baseline one em below the top edge.
	y := el.Y*ptPerPixel + size
	for _, line := range strings.Split(el.Text, "\n") {
		tx := x
		switch el.TextAlignment {
		case "Center":
			tx = x + (w-pdf.GetStringWidth(line))/2
		case "Right":
			tx = x + w - pdf.GetStringWidth(line)
		}
		pdf.Text(tx, y, line)
		y += size * 1.2
	}
}

// pdfFontFamily maps document font names onto the built-in PDF families.
func pdfFontFamily(name string) string {
	switch strings.ToLower(name) {
	case "times", "times new roman", "serif", "georgia":
		return "Times"
	case "courier", "courier new", "consolas", "monospace":
		return "Courier"
	}
	return "Helvetica"
}

func pdfFontStyle(el *domain.CanvasElement) string {
	style := ""
	if el.FontWeight == "Bold" {
		style += "B"
	}
	if el.FontStyle == "Italic" {
		style += "I"
	}
	return style
}

func pdfLine(pdf *gofpdf.Fpdf, el *domain.CanvasElement) {
	if !applyStroke(pdf, el) {
		return
	}
	x1, y1, x2, y2 := el.Endpoints()
	pdf.Line(x1*ptPerPixel, y1*ptPerPixel, x2*ptPerPixel, y2*ptPerPixel)
}

func pdfArrow(pdf *gofpdf.Fpdf, el *domain.CanvasElement) {
	if !applyStroke(pdf, el) {
		return
	}
	x1, y1, x2, y2 := el.Endpoints()
	pdf.Line(x1*ptPerPixel, y1*ptPerPixel, x2*ptPerPixel, y2*ptPerPixel)

	size := el.ArrowheadSize
	if size <= 0 {
		size = 10
	}
	c := strokeColorOf(el.StrokeColor)
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
	pdf.SetDashPattern(nil, 0)
	angle := math.Atan2(y2-y1, x2-x1)
	if el.HasStartArrow {
		pdfTriangle(pdf, headTriangle(x1, y1, angle+math.Pi, size))
	}
	if el.HasEndArrow {
		pdfTriangle(pdf, headTriangle(x2, y2, angle, size))
	}
}

// headTriangle builds the isoceles arrowhead with tip at (x, y) pointing
// along angle, in canvas coordinates.
func headTriangle(x, y, angle, size float64) [3][2]float64 {
	sin, cos := math.Sin(angle), math.Cos(angle)
	rotate := func(lx, ly float64) [2]float64 {
		return [2]float64{x + lx*cos - ly*sin, y + lx*sin + ly*cos}
	}
	return [3][2]float64{{x, y}, rotate(-size, -size/2), rotate(-size, size/2)}
}

func pdfTriangle(pdf *gofpdf.Fpdf, tri [3][2]float64) {
	pts := make([]gofpdf.PointType, 0, 3)
	for _, p := range tri {
		pts = append(pts, gofpdf.PointType{X: p[0] * ptPerPixel, Y: p[1] * ptPerPixel})
	}
	pdf.Polygon(pts, "F")
}

func pdfPolygon(pdf *gofpdf.Fpdf, el *domain.CanvasElement) {
	points := domain.ParsePolygonPoints(el.PolygonPoints)
	if len(points) < 3 {
		return
	}
	minX, minY, _, _ := domain.PointsBounds(points)
	stroked := applyStroke(pdf, el)
	style := fillStyle(pdf, el, stroked)
	if style == "" {
		return
	}
	pts := make([]gofpdf.PointType, 0, len(points))
	for _, p := range points {
		pts = append(pts, gofpdf.PointType{
			X: (el.X + p.X - minX) * ptPerPixel,
			Y: (el.Y + p.Y - minY) * ptPerPixel,
		})
	}
	pdf.Polygon(pts, style)
}

func pdfImage(pdf *gofpdf.Fpdf, el *domain.CanvasElement, index int) error {
	img, err := loadElementImage(el)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode image: %w", err)
	}
	name := fmt.Sprintf("element-%d", index)
	pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, &buf)
	pdf.ImageOptions(name,
		el.X*ptPerPixel, el.Y*ptPerPixel,
		el.Width*ptPerPixel, el.Height*ptPerPixel,
		false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	return nil
}

// loadElementImage decodes the source file and runs the monochrome
// pipeline when the element enables it.
func loadElementImage(el *domain.CanvasElement) (image.Image, error) {
	f, err := os.Open(el.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if !el.MonochromeEnabled {
		return img, nil
	}
	out, err := imaging.ProcessImage(img, imaging.Options{
		Algorithm:  el.MonochromeAlgorithm,
		Threshold:  el.Threshold,
		Invert:     el.InvertColors,
		Brightness: el.Brightness,
		Contrast:   el.Contrast,
	})
	if err != nil {
		return nil, fmt.Errorf("monochrome filter: %w", err)
	}
	return out, nil
}
