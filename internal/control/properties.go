/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package control

import "golabeldesigner/internal/domain"

// buildProperties snapshots the panel-visible values of an element, keyed
// by the persisted field names. Only fields meaningful for the element's
// type are included.
func buildProperties(el *domain.CanvasElement) map[string]any {
	p := map[string]any{
		"X":      el.X,
		"Y":      el.Y,
		"Width":  el.Width,
		"Height": el.Height,
	}
	switch el.ElementType {
	case domain.TypeText:
		p["Text"] = el.Text
		p["FontSize"] = el.FontSize
		p["FontFamily"] = el.FontFamily
		p["FontWeight"] = el.FontWeight
		p["FontStyle"] = el.FontStyle
		p["TextAlignment"] = el.TextAlignment
		p["ForegroundColor"] = el.ForegroundColor
	case domain.TypeRectangle, domain.TypeEllipse, domain.TypePolygon:
		p["FillColor"] = el.FillColor
		p["StrokeColor"] = el.StrokeColor
		p["StrokeThickness"] = el.StrokeThickness
		p["StrokeDashPattern"] = el.StrokeDashPattern
		p["UseGradientFill"] = el.UseGradientFill
		p["GradientStartColor"] = el.GradientStartColor
		p["GradientEndColor"] = el.GradientEndColor
		p["GradientAngle"] = el.GradientAngle
		if el.ElementType == domain.TypeRectangle {
			p["RadiusX"] = el.RadiusX
			p["RadiusY"] = el.RadiusY
		}
		if el.ElementType == domain.TypePolygon {
			p["PolygonPoints"] = el.PolygonPoints
		}
	case domain.TypeLine, domain.TypeArrow:
		_, _, x2, y2 := el.Endpoints()
		p["X2"] = x2
		p["Y2"] = y2
		p["StrokeColor"] = el.StrokeColor
		p["StrokeThickness"] = el.StrokeThickness
		p["StrokeDashPattern"] = el.StrokeDashPattern
		if el.ElementType == domain.TypeArrow {
			p["HasStartArrow"] = el.HasStartArrow
			p["HasEndArrow"] = el.HasEndArrow
			p["ArrowheadSize"] = el.ArrowheadSize
		}
	case domain.TypeImage:
		p["ImagePath"] = el.ImagePath
		p["MonochromeEnabled"] = el.MonochromeEnabled
		p["MonochromeAlgorithm"] = el.MonochromeAlgorithm
		p["Threshold"] = el.Threshold
		p["InvertColors"] = el.InvertColors
		p["Brightness"] = el.Brightness
		p["Contrast"] = el.Contrast
	}
	return p
}

// applyElementProperty writes one panel value onto the element. Names the
// element does not understand, and values of the wrong type, are ignored.
func applyElementProperty(el *domain.CanvasElement, name string, value any) {
	switch name {
	case "X":
		if f, ok := toFloat(value); ok {
			el.X = f
		}
	case "Y":
		if f, ok := toFloat(value); ok {
			el.Y = f
		}
	case "Width":
		if f, ok := toFloat(value); ok && f >= MinElementSize {
			el.Width = f
		}
	case "Height":
		if f, ok := toFloat(value); ok && f >= MinElementSize {
			el.Height = f
		}
	case "Text":
		if s, ok := toString(value); ok {
			el.Text = s
		}
	case "FontSize":
		// Points, not millimeters. The panel passes this through without
		// unit conversion.
		if f, ok := toFloat(value); ok && f > 0 {
			el.FontSize = f
		}
	case "FontFamily":
		if s, ok := toString(value); ok {
			el.FontFamily = s
		}
	case "FontWeight":
		if s, ok := toString(value); ok {
			el.FontWeight = s
		}
	case "FontStyle":
		if s, ok := toString(value); ok {
			el.FontStyle = s
		}
	case "TextAlignment":
		if s, ok := toString(value); ok {
			el.TextAlignment = s
		}
	case "ForegroundColor":
		if s, ok := toString(value); ok {
			el.ForegroundColor = s
		}
	case "FillColor":
		if s, ok := toString(value); ok {
			el.FillColor = s
		}
	case "StrokeColor":
		if s, ok := toString(value); ok {
			el.StrokeColor = s
		}
	case "StrokeThickness":
		if f, ok := toFloat(value); ok && f >= 0 {
			el.StrokeThickness = f
		}
	case "StrokeDashPattern":
		if s, ok := toString(value); ok {
			el.StrokeDashPattern = s
		}
	case "RadiusX":
		if f, ok := toFloat(value); ok && f >= 0 {
			el.RadiusX = f
		}
	case "RadiusY":
		if f, ok := toFloat(value); ok && f >= 0 {
			el.RadiusY = f
		}
	case "UseGradientFill":
		if b, ok := toBool(value); ok {
			el.UseGradientFill = b
		}
	case "GradientStartColor":
		if s, ok := toString(value); ok {
			el.GradientStartColor = s
		}
	case "GradientEndColor":
		if s, ok := toString(value); ok {
			el.GradientEndColor = s
		}
	case "GradientAngle":
		if f, ok := toFloat(value); ok {
			el.GradientAngle = f
		}
	case "ImagePath":
		if s, ok := toString(value); ok {
			el.ImagePath = s
		}
	case "MonochromeEnabled":
		if b, ok := toBool(value); ok {
			el.MonochromeEnabled = b
		}
	case "MonochromeAlgorithm":
		if s, ok := toString(value); ok {
			el.MonochromeAlgorithm = s
		}
	case "Threshold":
		if f, ok := toFloat(value); ok && f >= 0 && f <= 255 {
			el.Threshold = uint8(f)
		}
	case "InvertColors":
		if b, ok := toBool(value); ok {
			el.InvertColors = b
		}
	case "Brightness":
		if f, ok := toFloat(value); ok && f >= -100 && f <= 100 {
			el.Brightness = f
		}
	case "Contrast":
		if f, ok := toFloat(value); ok && f >= -100 && f <= 100 {
			el.Contrast = f
		}
	}
}
