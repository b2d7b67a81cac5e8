/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package control implements the per-element-type manipulation controllers.
// A Control pairs one live canvas element with its data record and answers
// resize gestures and property-panel traffic for it. Bounds-based types
// share one implementation; Polygon scales its point set; Line and Arrow
// move absolute endpoints inside a padded container.
package control

import (
	"fmt"

	"golabeldesigner/internal/domain"
)

// Geometry floors, in canvas pixels. Candidates below a floor are rejected
// (generic, endpoints) or clamped (polygon).
const (
	MinElementSize  = 10.0
	MinPolygonSize  = 20.0
	MinLineLength   = 10.0
	EndpointPadding = 10.0
)

// Control is the manipulation interface shared by every element kind.
type Control interface {
	// Element returns the shared data record backing this control. The
	// serializer and command objects read the same record; endpoint
	// controls keep its absolute coordinates current on every change.
	Element() *domain.CanvasElement
	ElementType() domain.ElementType
	// UsesEndpoints is true only for Line and Arrow.
	UsesEndpoints() bool
	// Resize applies a handle drag delta in canvas pixels. Changes that
	// would violate the geometry floors leave the element untouched (or
	// clamp, for polygons).
	Resize(h Handle, dx, dy float64, lockAspect bool)
	// Properties returns the current panel values keyed by contract field
	// name.
	Properties() map[string]any
	// ApplyProperty sets one panel value. Unknown names are ignored.
	// Values are canvas pixels; the panel converts from millimeters
	// before calling, except for font sizes which stay in points.
	ApplyProperty(name string, value any)
}

// New builds the matching control for an element record. A nil record or
// an unknown element type is a programming error and is rejected.
func New(el *domain.CanvasElement) (Control, error) {
	if el == nil {
		return nil, fmt.Errorf("control: nil element")
	}
	switch el.ElementType {
	case domain.TypeText, domain.TypeRectangle, domain.TypeEllipse, domain.TypeImage:
		return newBoundsControl(el), nil
	case domain.TypePolygon:
		return newPolygonControl(el), nil
	case domain.TypeLine:
		return newLineControl(el), nil
	case domain.TypeArrow:
		return newArrowControl(el), nil
	default:
		return nil, fmt.Errorf("control: unsupported element type %q", el.ElementType)
	}
}

// toFloat coerces the loosely typed values arriving from panel widgets.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func toBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func toString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}
