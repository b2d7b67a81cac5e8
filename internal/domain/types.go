/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package domain defines the serializable data model for label documents.
// Field names of the JSON-tagged structs are the file-format contract and
// must stay stable across releases.
package domain

import "math"

// ElementType tags the kind of a placed canvas element.
type ElementType string

const (
	TypeText      ElementType = "Text"
	TypeRectangle ElementType = "Rectangle"
	TypeEllipse   ElementType = "Ellipse"
	TypeLine      ElementType = "Line"
	TypeArrow     ElementType = "Arrow"
	TypeImage     ElementType = "Image"
	TypePolygon   ElementType = "Polygon"
)

// UsesEndpoints reports whether the element type is positioned by two
// absolute points instead of a bounds rectangle. Only Line and Arrow are.
func (t ElementType) UsesEndpoints() bool { return t == TypeLine || t == TypeArrow }

// Known reports whether t is one of the supported element types.
func (t ElementType) Known() bool {
	switch t {
	case TypeText, TypeRectangle, TypeEllipse, TypeLine, TypeArrow, TypeImage, TypePolygon:
		return true
	}
	return false
}

// Monochrome reduction algorithm names as persisted in documents.
const (
	AlgoThreshold      = "Threshold"
	AlgoFloydSteinberg = "FloydSteinberg"
	AlgoOrdered        = "Ordered"
	AlgoAtkinson       = "Atkinson"
)

// Stroke dash pattern names.
const (
	DashSolid   = "Solid"
	DashDash    = "Dash"
	DashDot     = "Dot"
	DashDashDot = "DashDot"
)

// CanvasElement is the serializable description of one placed object.
// Exactly one of (Width/Height) or (X2/Y2) is meaningful, selected by
// ElementType: bounds-based types use the former, Line/Arrow the latter.
//
// For Line and Arrow, X/Y/X2/Y2 hold the authoritative absolute endpoint
// coordinates. The live visual stores endpoints relative to a padded
// container, so these fields are refreshed on every move/resize and read
// verbatim at save time.
type CanvasElement struct {
	// ID identifies the element at runtime (control registry, catalog
	// rows). It is never persisted in the document.
	ID string `json:"-"`

	ElementType ElementType `json:"ElementType"`
	X           float64     `json:"X"`
	Y           float64     `json:"Y"`
	Width       float64     `json:"Width"`
	Height      float64     `json:"Height"`
	X2          *float64    `json:"X2,omitempty"`
	Y2          *float64    `json:"Y2,omitempty"`

	// Text styling
	Text            string  `json:"Text,omitempty"`
	FontSize        float64 `json:"FontSize,omitempty"`
	ForegroundColor string  `json:"ForegroundColor,omitempty"`
	FontFamily      string  `json:"FontFamily,omitempty"`
	TextAlignment   string  `json:"TextAlignment,omitempty"` // Left | Center | Right
	FontWeight      string  `json:"FontWeight,omitempty"`    // Normal | Bold
	FontStyle       string  `json:"FontStyle,omitempty"`     // Normal | Italic

	// Shape styling
	FillColor          string  `json:"FillColor,omitempty"`
	StrokeColor        string  `json:"StrokeColor,omitempty"`
	StrokeThickness    float64 `json:"StrokeThickness,omitempty"`
	RadiusX            float64 `json:"RadiusX,omitempty"`
	RadiusY            float64 `json:"RadiusY,omitempty"`
	StrokeDashPattern  string  `json:"StrokeDashPattern,omitempty"` // Solid | Dash | Dot | DashDot
	UseGradientFill    bool    `json:"UseGradientFill,omitempty"`
	GradientStartColor string  `json:"GradientStartColor,omitempty"`
	GradientEndColor   string  `json:"GradientEndColor,omitempty"`
	GradientAngle      float64 `json:"GradientAngle,omitempty"`

	// Image source and monochrome filter parameters
	ImagePath           string  `json:"ImagePath,omitempty"`
	MonochromeEnabled   bool    `json:"MonochromeEnabled,omitempty"`
	Threshold           uint8   `json:"Threshold,omitempty"`
	MonochromeAlgorithm string  `json:"MonochromeAlgorithm,omitempty"`
	InvertColors        bool    `json:"InvertColors,omitempty"`
	Brightness          float64 `json:"Brightness,omitempty"` // [-100, 100]
	Contrast            float64 `json:"Contrast,omitempty"`   // [-100, 100]

	// Polygon geometry, encoded as "x1,y1 x2,y2 ..." with invariant decimals
	PolygonPoints string `json:"PolygonPoints,omitempty"`

	// Arrowheads
	HasStartArrow bool    `json:"HasStartArrow,omitempty"`
	HasEndArrow   bool    `json:"HasEndArrow,omitempty"`
	ArrowheadSize float64 `json:"ArrowheadSize,omitempty"`
}

// LabelDocument is the persisted unit: canvas size in device-independent
// pixels plus the ordered element list. List position encodes z-order,
// back to front.
type LabelDocument struct {
	CanvasWidth  float64         `json:"CanvasWidth"`
	CanvasHeight float64         `json:"CanvasHeight"`
	Elements     []CanvasElement `json:"Elements"`
}

// Default geometry applied when a loaded element carries degenerate size.
const (
	DefaultShapeWidth  = 80.0
	DefaultShapeHeight = 60.0
)

// SanitizeNumber coerces NaN, infinite and negative values to 0.
// Geometry written to disk must never carry non-finite values.
func SanitizeNumber(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// Sanitize normalizes the element geometry in place: degenerate width and
// height collapse to 0, non-finite coordinates (endpoints included) are
// coerced to 0 and endpoint coordinates are cleared for types that do not
// use them. Documents written from a sanitized element never carry values
// the JSON encoder would reject.
func (e *CanvasElement) Sanitize() {
	e.Width = SanitizeNumber(e.Width)
	e.Height = SanitizeNumber(e.Height)
	if math.IsNaN(e.X) || math.IsInf(e.X, 0) {
		e.X = 0
	}
	if math.IsNaN(e.Y) || math.IsInf(e.Y, 0) {
		e.Y = 0
	}
	if !e.ElementType.UsesEndpoints() {
		e.X2, e.Y2 = nil, nil
		return
	}
	if e.X2 != nil && (math.IsNaN(*e.X2) || math.IsInf(*e.X2, 0)) {
		*e.X2 = 0
	}
	if e.Y2 != nil && (math.IsNaN(*e.Y2) || math.IsInf(*e.Y2, 0)) {
		*e.Y2 = 0
	}
}

// ApplyLoadDefaults fills in type-specific defaults for elements loaded
// with zero geometry or missing style values.
func (e *CanvasElement) ApplyLoadDefaults() {
	switch e.ElementType {
	case TypeRectangle, TypeEllipse, TypeImage, TypePolygon:
		if e.Width <= 0 {
			e.Width = DefaultShapeWidth
		}
		if e.Height <= 0 {
			e.Height = DefaultShapeHeight
		}
	case TypeText:
		if e.FontSize <= 0 {
			e.FontSize = 12
		}
		if e.FontFamily == "" {
			e.FontFamily = "Arial"
		}
	case TypeArrow:
		if e.ArrowheadSize <= 0 {
			e.ArrowheadSize = 10
		}
	}
	// Images with no filter block at all predate the monochrome settings;
	// start those at the midpoint. An explicit zero threshold in a document
	// that carries filter settings is kept as written.
	noFilterBlock := e.ElementType == TypeImage && !e.MonochromeEnabled && e.MonochromeAlgorithm == "" &&
		e.Threshold == 0 && !e.InvertColors && e.Brightness == 0 && e.Contrast == 0
	if e.MonochromeAlgorithm == "" {
		e.MonochromeAlgorithm = AlgoThreshold
	}
	if noFilterBlock {
		e.Threshold = 128
	}
}

// Endpoints returns the absolute endpoint coordinates. Valid only for
// Line and Arrow; the second endpoint defaults to the position when unset.
func (e *CanvasElement) Endpoints() (x1, y1, x2, y2 float64) {
	x1, y1 = e.X, e.Y
	x2, y2 = e.X, e.Y
	if e.X2 != nil {
		x2 = *e.X2
	}
	if e.Y2 != nil {
		y2 = *e.Y2
	}
	return x1, y1, x2, y2
}

// SetEndpoints stores the absolute endpoint coordinates.
func (e *CanvasElement) SetEndpoints(x1, y1, x2, y2 float64) {
	e.X, e.Y = x1, y1
	e.X2, e.Y2 = &x2, &y2
}

// Clone returns a deep copy. Commands capture element state by value so
// that undo restores exactly the captured state.
func (e *CanvasElement) Clone() CanvasElement {
	c := *e
	if e.X2 != nil {
		v := *e.X2
		c.X2 = &v
	}
	if e.Y2 != nil {
		v := *e.Y2
		c.Y2 = &v
	}
	return c
}
