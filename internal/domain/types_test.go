/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package domain

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestSanitizeNumber(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{math.NaN(), 0},
		{math.Inf(1), 0},
		{math.Inf(-1), 0},
		{-5, 0},
		{0, 0},
		{42.5, 42.5},
	}
	for _, c := range cases {
		if got := SanitizeNumber(c.in); got != c.want {
			t.Fatalf("SanitizeNumber(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestSanitizeClearsEndpointsForBoundsTypes(t *testing.T) {
	x2, y2 := 10.0, 20.0
	e := CanvasElement{ElementType: TypeRectangle, Width: math.NaN(), Height: -3, X2: &x2, Y2: &y2}
	e.Sanitize()
	if e.Width != 0 || e.Height != 0 {
		t.Fatalf("degenerate size not coerced: %v x %v", e.Width, e.Height)
	}
	if e.X2 != nil || e.Y2 != nil {
		t.Fatalf("endpoint fields should be cleared for rectangles")
	}
}

func TestSanitizeCoercesNonFiniteEndpoints(t *testing.T) {
	x2, y2 := math.NaN(), math.Inf(1)
	e := CanvasElement{ElementType: TypeLine, X: 5, Y: 5, X2: &x2, Y2: &y2}
	e.Sanitize()
	if e.X2 == nil || *e.X2 != 0 {
		t.Fatalf("NaN X2 should coerce to 0, got %v", e.X2)
	}
	if e.Y2 == nil || *e.Y2 != 0 {
		t.Fatalf("Inf Y2 should coerce to 0, got %v", e.Y2)
	}
	if b, err := json.Marshal(&e); err != nil {
		t.Fatalf("sanitized element must marshal: %v (%s)", err, b)
	}
}

func TestApplyLoadDefaults(t *testing.T) {
	e := CanvasElement{ElementType: TypeRectangle}
	e.ApplyLoadDefaults()
	if e.Width != DefaultShapeWidth || e.Height != DefaultShapeHeight {
		t.Fatalf("rectangle defaults not applied: %v x %v", e.Width, e.Height)
	}

	txt := CanvasElement{ElementType: TypeText}
	txt.ApplyLoadDefaults()
	if txt.FontSize != 12 || txt.FontFamily == "" {
		t.Fatalf("text defaults not applied: %+v", txt)
	}

	arrow := CanvasElement{ElementType: TypeArrow}
	arrow.ApplyLoadDefaults()
	if arrow.ArrowheadSize != 10 {
		t.Fatalf("arrowhead default not applied: %v", arrow.ArrowheadSize)
	}
}

func TestApplyLoadDefaultsThresholdGate(t *testing.T) {
	// No filter block at all: the legacy midpoint default applies.
	legacy := CanvasElement{ElementType: TypeImage, ImagePath: "old.png"}
	legacy.ApplyLoadDefaults()
	if legacy.Threshold != 128 {
		t.Fatalf("legacy image threshold = %d, want 128", legacy.Threshold)
	}

	// An explicit zero threshold next to filter settings is kept as written.
	zero := CanvasElement{
		ElementType: TypeImage, ImagePath: "logo.png",
		MonochromeEnabled: true, MonochromeAlgorithm: AlgoFloydSteinberg, Threshold: 0,
	}
	zero.ApplyLoadDefaults()
	if zero.Threshold != 0 {
		t.Fatalf("explicit zero threshold rewritten to %d", zero.Threshold)
	}

	// Any filter field present disables the default, not just the flag.
	inverted := CanvasElement{ElementType: TypeImage, InvertColors: true}
	inverted.ApplyLoadDefaults()
	if inverted.Threshold != 0 {
		t.Fatalf("threshold with invert flag = %d, want 0", inverted.Threshold)
	}
}

func TestEndpointsRoundTrip(t *testing.T) {
	e := CanvasElement{ElementType: TypeLine}
	e.SetEndpoints(5, 6, 105, 106)
	x1, y1, x2, y2 := e.Endpoints()
	if x1 != 5 || y1 != 6 || x2 != 105 || y2 != 106 {
		t.Fatalf("endpoints mismatch: %v %v %v %v", x1, y1, x2, y2)
	}
}

func TestCloneIsDeep(t *testing.T) {
	e := CanvasElement{ElementType: TypeLine}
	e.SetEndpoints(0, 0, 50, 50)
	c := e.Clone()
	*c.X2 = 99
	if *e.X2 == 99 {
		t.Fatalf("clone shares endpoint storage with original")
	}
}

func TestJSONFieldNames(t *testing.T) {
	doc := LabelDocument{CanvasWidth: 384, CanvasHeight: 192, Elements: []CanvasElement{
		{ElementType: TypeRectangle, X: 1, Y: 2, Width: 80, Height: 60, FillColor: "#FFFF0000"},
	}}
	b, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	for _, key := range []string{`"CanvasWidth"`, `"CanvasHeight"`, `"Elements"`, `"ElementType"`, `"FillColor"`} {
		if !strings.Contains(s, key) {
			t.Fatalf("serialized document missing %s: %s", key, s)
		}
	}
	// ID is runtime-only and must never leak into the file format.
	if strings.Contains(s, `"ID"`) {
		t.Fatalf("runtime ID leaked into JSON: %s", s)
	}
}

func TestPolygonPointsRoundTrip(t *testing.T) {
	pts := []Point{{0, 0}, {40, 80.5}, {80, 0}}
	s := FormatPolygonPoints(pts)
	got := ParsePolygonPoints(s)
	if len(got) != len(pts) {
		t.Fatalf("expected %d points, got %d (%q)", len(pts), len(got), s)
	}
	for i := range pts {
		if got[i] != pts[i] {
			t.Fatalf("point %d = %v, want %v", i, got[i], pts[i])
		}
	}
}

func TestParsePolygonPointsSkipsMalformed(t *testing.T) {
	got := ParsePolygonPoints("10,20 garbage 30,x 40,50")
	if len(got) != 2 || got[0] != (Point{10, 20}) || got[1] != (Point{40, 50}) {
		t.Fatalf("unexpected parse result: %v", got)
	}
}

func TestPointsBounds(t *testing.T) {
	minX, minY, w, h := PointsBounds([]Point{{10, 20}, {90, 100}, {50, 5}})
	if minX != 10 || minY != 5 || w != 80 || h != 95 {
		t.Fatalf("bounds = %v %v %v %v", minX, minY, w, h)
	}
	if x, y, w, h := PointsBounds(nil); x != 0 || y != 0 || w != 0 || h != 0 {
		t.Fatalf("empty set should yield zeros")
	}
}
