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
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"golabeldesigner/internal/domain"
	applog "golabeldesigner/internal/log"
)

// PNGOptions controls raster export.
// Scale multiplies the canvas pixel size; 1 renders at document resolution.
type PNGOptions struct {
	Scale float64
}

// RenderImage rasterizes the document onto a white background. The preview
// renderer draws hairline strokes and flat fills; text uses a fixed bitmap
// face, so it is a placement preview rather than a typeset rendering.
func RenderImage(doc *domain.LabelDocument, scale float64) (*image.RGBA, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}
	if scale <= 0 {
		scale = 1
	}
	w := int(math.Round(doc.CanvasWidth * scale))
	h := int(math.Round(doc.CanvasHeight * scale))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("canvas size %gx%g is not renderable", doc.CanvasWidth, doc.CanvasHeight)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)

	logger := applog.WithOperation(applog.WithComponent("export"), "png")
	for i := range doc.Elements {
		el := &doc.Elements[i]
		switch el.ElementType {
		case domain.TypeRectangle:
			rasterRect(img, el, scale)
		case domain.TypeEllipse:
			rasterEllipse(img, el, scale)
		case domain.TypeText:
			rasterText(img, el, scale)
		case domain.TypeLine:
			rasterLine(img, el, scale)
		case domain.TypeArrow:
			rasterArrow(img, el, scale)
		case domain.TypePolygon:
			rasterPolygon(img, el, scale)
		case domain.TypeImage:
			if err := rasterImage(img, el, scale); err != nil {
				logger.Warn("image element skipped", "path", el.ImagePath, "error", err)
			}
		}
	}
	return img, nil
}

// WritePNG renders the document and writes it to outPath.
func WritePNG(doc *domain.LabelDocument, outPath string, opt PNGOptions) error {
	img, err := RenderImage(doc, opt.Scale)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}

// Thumbnail renders the document and scales it to fit within maxEdge
// pixels on the longer side, returning encoded PNG bytes for the catalog.
func Thumbnail(doc *domain.LabelDocument, maxEdge int) ([]byte, error) {
	if maxEdge <= 0 {
		return nil, fmt.Errorf("thumbnail edge %d must be positive", maxEdge)
	}
	img, err := RenderImage(doc, 1)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	tw, th := b.Dx(), b.Dy()
	if tw > maxEdge || th > maxEdge {
		if tw >= th {
			th = th * maxEdge / tw
			tw = maxEdge
		} else {
			tw = tw * maxEdge / th
			th = maxEdge
		}
		if tw < 1 {
			tw = 1
		}
		if th < 1 {
			th = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, tw, th))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
		img = dst
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

func setPixel(img *image.RGBA, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

func rasterRect(img *image.RGBA, el *domain.CanvasElement, scale float64) {
	x0 := int(math.Round(el.X * scale))
	y0 := int(math.Round(el.Y * scale))
	x1 := x0 + int(math.Round(el.Width*scale)) - 1
	y1 := y0 + int(math.Round(el.Height*scale)) - 1
	if fc, ok := rasterFill(el); ok {
		fillRect(img, x0, y0, x1, y1, fc)
	}
	if el.StrokeThickness > 0 {
		strokeRect(img, x0, y0, x1, y1, strokeColorOf(el.StrokeColor))
	}
}

// rasterFill resolves the preview fill color. Gradients collapse to their
// start color; the vector PDF exporter renders the real ramp.
func rasterFill(el *domain.CanvasElement) (color.RGBA, bool) {
	if el.UseGradientFill {
		if c, ok := parseHexColor(el.GradientStartColor); ok {
			return c, true
		}
	}
	c, ok := parseHexColor(el.FillColor)
	if !ok || c.A == 0 {
		return color.RGBA{}, false
	}
	return c, true
}

func rasterEllipse(img *image.RGBA, el *domain.CanvasElement, scale float64) {
	cx := (el.X + el.Width/2) * scale
	cy := (el.Y + el.Height/2) * scale
	rx := el.Width / 2 * scale
	ry := el.Height / 2 * scale
	if rx < 1 || ry < 1 {
		return
	}
	fc, fill := rasterFill(el)
	sc := strokeColorOf(el.StrokeColor)
	stroke := el.StrokeThickness > 0
	for dy := -int(ry); dy <= int(ry); dy++ {
		span := rx * math.Sqrt(1-float64(dy)*float64(dy)/(ry*ry))
		y := int(math.Round(cy)) + dy
		left := int(math.Round(cx - span))
		right := int(math.Round(cx + span))
		if fill {
			for x := left; x <= right; x++ {
				setPixel(img, x, y, fc)
			}
		}
		if stroke {
			setPixel(img, left, y, sc)
			setPixel(img, right, y, sc)
		}
	}
}

func rasterText(img *image.RGBA, el *domain.CanvasElement, scale float64) {
	c := strokeColorOf(el.ForegroundColor)
	face := basicfont.Face7x13
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot: fixed.P(
			int(math.Round(el.X*scale)),
			int(math.Round(el.Y*scale))+face.Ascent,
		),
	}
	d.DrawString(el.Text)
}

func rasterLine(img *image.RGBA, el *domain.CanvasElement, scale float64) {
	if el.StrokeThickness <= 0 {
		return
	}
	x1, y1, x2, y2 := el.Endpoints()
	drawSegment(img,
		int(math.Round(x1*scale)), int(math.Round(y1*scale)),
		int(math.Round(x2*scale)), int(math.Round(y2*scale)),
		strokeColorOf(el.StrokeColor))
}

func rasterArrow(img *image.RGBA, el *domain.CanvasElement, scale float64) {
	rasterLine(img, el, scale)
	if el.StrokeThickness <= 0 {
		return
	}
	size := el.ArrowheadSize
	if size <= 0 {
		size = 10
	}
	x1, y1, x2, y2 := el.Endpoints()
	c := strokeColorOf(el.StrokeColor)
	angle := math.Atan2(y2-y1, x2-x1)
	if el.HasStartArrow {
		rasterTriangle(img, headTriangle(x1, y1, angle+math.Pi, size), scale, c)
	}
	if el.HasEndArrow {
		rasterTriangle(img, headTriangle(x2, y2, angle, size), scale, c)
	}
}

// rasterTriangle outlines the arrowhead; previews do not fill heads.
func rasterTriangle(img *image.RGBA, tri [3][2]float64, scale float64, c color.RGBA) {
	for i := range tri {
		a, b := tri[i], tri[(i+1)%3]
		drawSegment(img,
			int(math.Round(a[0]*scale)), int(math.Round(a[1]*scale)),
			int(math.Round(b[0]*scale)), int(math.Round(b[1]*scale)), c)
	}
}

func rasterPolygon(img *image.RGBA, el *domain.CanvasElement, scale float64) {
	points := domain.ParsePolygonPoints(el.PolygonPoints)
	if len(points) < 3 || el.StrokeThickness <= 0 {
		return
	}
	minX, minY, _, _ := domain.PointsBounds(points)
	c := strokeColorOf(el.StrokeColor)
	for i := range points {
		a, b := points[i], points[(i+1)%len(points)]
		drawSegment(img,
			int(math.Round((el.X+a.X-minX)*scale)), int(math.Round((el.Y+a.Y-minY)*scale)),
			int(math.Round((el.X+b.X-minX)*scale)), int(math.Round((el.Y+b.Y-minY)*scale)), c)
	}
}

func rasterImage(img *image.RGBA, el *domain.CanvasElement, scale float64) error {
	src, err := loadElementImage(el)
	if err != nil {
		return err
	}
	x0 := int(math.Round(el.X * scale))
	y0 := int(math.Round(el.Y * scale))
	x1 := x0 + int(math.Round(el.Width*scale))
	y1 := y0 + int(math.Round(el.Height*scale))
	xdraw.ApproxBiLinear.Scale(img, image.Rect(x0, y0, x1, y1), src, src.Bounds(), xdraw.Over, nil)
	return nil
}

// drawSegment plots a 1px Bresenham line between the two points.
func drawSegment(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := x1 - x0
	if dx < 0 {
		dx = -dx
	}
	dy := y1 - y0
	if dy < 0 {
		dy = -dy
	}
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy
	for {
		setPixel(img, x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	for x := x0; x <= x1; x++ {
		setPixel(img, x, y0, c)
		setPixel(img, x, y1, c)
	}
	for y := y0; y <= y1; y++ {
		setPixel(img, x0, y, c)
		setPixel(img, x1, y, c)
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			setPixel(img, x, y, c)
		}
	}
}
