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

import (
	"math"
	"testing"

	"golabeldesigner/internal/domain"
)

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestNewRejectsBadInput(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error for nil element")
	}
	if _, err := New(&domain.CanvasElement{ElementType: "Blob"}); err == nil {
		t.Fatal("expected error for unknown element type")
	}
}

func TestUsesEndpointsFlag(t *testing.T) {
	tests := []struct {
		typ  domain.ElementType
		want bool
	}{
		{domain.TypeText, false},
		{domain.TypeRectangle, false},
		{domain.TypeEllipse, false},
		{domain.TypeImage, false},
		{domain.TypePolygon, false},
		{domain.TypeLine, true},
		{domain.TypeArrow, true},
	}
	for _, tc := range tests {
		c, err := New(&domain.CanvasElement{ElementType: tc.typ, Width: 50, Height: 50})
		if err != nil {
			t.Fatalf("%s: %v", tc.typ, err)
		}
		if c.UsesEndpoints() != tc.want {
			t.Errorf("%s: UsesEndpoints=%v, want %v", tc.typ, c.UsesEndpoints(), tc.want)
		}
	}
}

func TestBoundsResizeBottomRight(t *testing.T) {
	el := &domain.CanvasElement{ElementType: domain.TypeRectangle, X: 10, Y: 20, Width: 100, Height: 50}
	c, _ := New(el)
	c.Resize(BottomRight, 30, 10, false)
	if el.Width != 130 || el.Height != 60 {
		t.Fatalf("size %gx%g, want 130x60", el.Width, el.Height)
	}
	if el.X != 10 || el.Y != 20 {
		t.Fatalf("position moved to (%g,%g), must stay (10,20)", el.X, el.Y)
	}
}

func TestBoundsResizeTopLeftShiftsPosition(t *testing.T) {
	el := &domain.CanvasElement{ElementType: domain.TypeEllipse, X: 10, Y: 20, Width: 100, Height: 50}
	c, _ := New(el)
	c.Resize(TopLeft, 30, 10, false)
	// Shrinking by dragging the top-left corner inward keeps the
	// bottom-right corner fixed.
	if el.Width != 70 || el.Height != 40 {
		t.Fatalf("size %gx%g, want 70x40", el.Width, el.Height)
	}
	if el.X != 40 || el.Y != 30 {
		t.Fatalf("position (%g,%g), want (40,30)", el.X, el.Y)
	}
}

func TestBoundsResizeEdgeHandleAffectsOneAxis(t *testing.T) {
	el := &domain.CanvasElement{ElementType: domain.TypeRectangle, X: 0, Y: 0, Width: 100, Height: 50}
	c, _ := New(el)
	c.Resize(MiddleRight, 25, 99, false)
	if el.Width != 125 || el.Height != 50 {
		t.Fatalf("size %gx%g, want 125x50 (vertical delta ignored)", el.Width, el.Height)
	}
	c.Resize(TopCenter, 99, -10, false)
	if el.Width != 125 || el.Height != 60 || el.Y != -10 {
		t.Fatalf("size %gx%g y=%g, want 125x60 y=-10", el.Width, el.Height, el.Y)
	}
}

func TestBoundsResizeRejectsBelowFloorPerAxis(t *testing.T) {
	el := &domain.CanvasElement{ElementType: domain.TypeRectangle, X: 5, Y: 5, Width: 12, Height: 50}
	c, _ := New(el)
	// Width would drop to 2, below the 10px floor: width change rejected,
	// height change still applies.
	c.Resize(BottomRight, -10, 20, false)
	if el.Width != 12 {
		t.Fatalf("width %g, want 12 (unchanged)", el.Width)
	}
	if el.Height != 70 {
		t.Fatalf("height %g, want 70", el.Height)
	}
	// Rejected left-edge width change must not shift X either.
	c.Resize(TopLeft, 10, 0, false)
	if el.Width != 12 || el.X != 5 {
		t.Fatalf("width %g x %g, want 12 x 5", el.Width, el.X)
	}
}

func TestBoundsResizeAspectLock(t *testing.T) {
	el := &domain.CanvasElement{ElementType: domain.TypeImage, Width: 100, Height: 50}
	c, _ := New(el)
	// |dx| > |dy|: width is dominant, height follows the 2:1 ratio.
	c.Resize(BottomRight, 40, 2, true)
	if el.Width != 140 || !almost(el.Height, 70) {
		t.Fatalf("size %gx%g, want 140x70", el.Width, el.Height)
	}
	// |dy| > |dx|: height dominant.
	c.Resize(BottomRight, 1, 30, true)
	if !almost(el.Height, 100) || !almost(el.Width, 200) {
		t.Fatalf("size %gx%g, want 200x100", el.Width, el.Height)
	}
}

func TestPolygonResizeScalesPoints(t *testing.T) {
	// Triangle with an 80x80 bounding box anchored at (0,0).
	el := &domain.CanvasElement{
		ElementType:   domain.TypePolygon,
		Width:         80,
		Height:        80,
		PolygonPoints: "40,0 80,80 0,80",
	}
	c, _ := New(el)
	c.Resize(BottomRight, 20, 0, false)
	pts := domain.ParsePolygonPoints(el.PolygonPoints)
	minX, _, w, h := domain.PointsBounds(pts)
	if !almost(w, 100) || !almost(h, 80) {
		t.Fatalf("bounding box %gx%g, want 100x80", w, h)
	}
	// Every x scales by 1.25 relative to minX.
	want := []domain.Point{{X: 50, Y: 0}, {X: 100, Y: 80}, {X: 0, Y: 80}}
	for i, p := range pts {
		if !almost(p.X, want[i].X) || !almost(p.Y, want[i].Y) {
			t.Fatalf("point %d = %v, want %v", i, p, want[i])
		}
	}
	if minX != 0 {
		t.Fatalf("minX %g, want 0", minX)
	}
	if el.Width != 100 || el.Height != 80 {
		t.Fatalf("element size %gx%g, want 100x80", el.Width, el.Height)
	}
}

func TestPolygonResizeClampsToFloor(t *testing.T) {
	el := &domain.CanvasElement{
		ElementType:   domain.TypePolygon,
		Width:         40,
		Height:        40,
		PolygonPoints: "0,0 40,0 20,40",
	}
	c, _ := New(el)
	c.Resize(BottomRight, -35, -35, false)
	pts := domain.ParsePolygonPoints(el.PolygonPoints)
	_, _, w, h := domain.PointsBounds(pts)
	if !almost(w, MinPolygonSize) || !almost(h, MinPolygonSize) {
		t.Fatalf("bounding box %gx%g, want clamp to %gx%g", w, h, MinPolygonSize, MinPolygonSize)
	}
}

func TestPolygonResizeTopLeftShifts(t *testing.T) {
	el := &domain.CanvasElement{
		ElementType:   domain.TypePolygon,
		X:             10,
		Y:             10,
		Width:         80,
		Height:        80,
		PolygonPoints: "40,0 80,80 0,80",
	}
	c, _ := New(el)
	c.Resize(TopLeft, 20, 20, false)
	if el.X != 30 || el.Y != 30 {
		t.Fatalf("position (%g,%g), want (30,30)", el.X, el.Y)
	}
	_, _, w, h := domain.PointsBounds(domain.ParsePolygonPoints(el.PolygonPoints))
	if !almost(w, 60) || !almost(h, 60) {
		t.Fatalf("bounding box %gx%g, want 60x60", w, h)
	}
}

func TestEndpointMoveAndContainer(t *testing.T) {
	el := &domain.CanvasElement{ElementType: domain.TypeLine}
	el.SetEndpoints(0, 0, 100, 0)
	c, _ := New(el)
	lc := c.(*lineControl)

	// Horizontal shaft: height 0 inflates to the 20px padded box, centered.
	box := lc.Container()
	if box.X != 0 || box.Y != -10 || box.Width != 100 || box.Height != 20 {
		t.Fatalf("container %+v, want {0 -10 100 20}", box)
	}

	c.Resize(EndPoint, 20, 30, false)
	x1, y1, x2, y2 := el.Endpoints()
	if x1 != 0 || y1 != 0 || x2 != 120 || y2 != 30 {
		t.Fatalf("endpoints (%g,%g)-(%g,%g), want (0,0)-(120,30)", x1, y1, x2, y2)
	}
	box = lc.Container()
	if box.X != 0 || box.Y != 0 || box.Width != 120 || box.Height != 30 {
		t.Fatalf("container %+v, want {0 0 120 30}", box)
	}
}

func TestEndpointMinLengthRejectsWholeMove(t *testing.T) {
	el := &domain.CanvasElement{ElementType: domain.TypeLine}
	el.SetEndpoints(0, 0, 30, 0)
	c, _ := New(el)
	// Dragging the end to (5,0) collapses the length to 5: the entire move
	// is rejected, both endpoints stay put.
	c.Resize(EndPoint, -25, 0, false)
	x1, y1, x2, y2 := el.Endpoints()
	if x1 != 0 || y1 != 0 || x2 != 30 || y2 != 0 {
		t.Fatalf("endpoints (%g,%g)-(%g,%g), want unchanged (0,0)-(30,0)", x1, y1, x2, y2)
	}
	// Same guard on the property path.
	c.ApplyProperty("X2", 6.0)
	if _, _, x2, _ := el.Endpoints(); x2 != 30 {
		t.Fatalf("X2=%g after rejected property change, want 30", x2)
	}
}

func TestEndpointRejectsNonFiniteCoordinates(t *testing.T) {
	// Dist(NaN, ...) < MinLineLength is false, so the length floor alone
	// would wave a NaN through and the document could no longer marshal.
	for _, typ := range []domain.ElementType{domain.TypeLine, domain.TypeArrow} {
		el := &domain.CanvasElement{ElementType: typ}
		el.SetEndpoints(0, 0, 100, 0)
		c, _ := New(el)
		for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
			c.ApplyProperty("X2", bad)
			c.ApplyProperty("Y", bad)
			x1, y1, x2, y2 := el.Endpoints()
			if x1 != 0 || y1 != 0 || x2 != 100 || y2 != 0 {
				t.Fatalf("%s: endpoints (%g,%g)-(%g,%g) after %v, want unchanged", typ, x1, y1, x2, y2, bad)
			}
		}
	}
}

func TestArrowheadGeometry(t *testing.T) {
	el := &domain.CanvasElement{ElementType: domain.TypeArrow, HasEndArrow: true, ArrowheadSize: 10}
	el.SetEndpoints(0, 0, 100, 0)
	c, _ := New(el)
	ac := c.(*arrowControl)
	if ac.StartHead() != nil {
		t.Fatal("start head must be absent when HasStartArrow is false")
	}
	head := ac.EndHead()
	if len(head) != 3 {
		t.Fatalf("end head has %d points, want 3", len(head))
	}
	if !almost(head[0].X, 100) || !almost(head[0].Y, 0) {
		t.Fatalf("tip %v, want (100,0)", head[0])
	}
	// Base corners sit one size behind the tip, symmetric about the shaft.
	if !almost(head[1].X, 90) || !almost(head[2].X, 90) {
		t.Fatalf("base x = %g,%g, want 90,90", head[1].X, head[2].X)
	}
	if !almost(head[1].Y+head[2].Y, 0) || almost(head[1].Y, head[2].Y) {
		t.Fatalf("base y = %g,%g, want symmetric about 0", head[1].Y, head[2].Y)
	}
	if !almost(math.Abs(head[1].Y-head[2].Y), 10) {
		t.Fatalf("base width %g, want 10", math.Abs(head[1].Y-head[2].Y))
	}
}

func TestArrowStartHeadPointsOutward(t *testing.T) {
	el := &domain.CanvasElement{ElementType: domain.TypeArrow, HasStartArrow: true, HasEndArrow: true, ArrowheadSize: 10}
	el.SetEndpoints(0, 0, 100, 0)
	c, _ := New(el)
	ac := c.(*arrowControl)
	head := ac.StartHead()
	if len(head) != 3 {
		t.Fatalf("start head has %d points, want 3", len(head))
	}
	if !almost(head[0].X, 0) || !almost(head[0].Y, 0) {
		t.Fatalf("tip %v, want (0,0)", head[0])
	}
	// Reversed orientation: base corners on the shaft side of the tip.
	if !almost(head[1].X, 10) || !almost(head[2].X, 10) {
		t.Fatalf("base x = %g,%g, want 10,10", head[1].X, head[2].X)
	}
}

func TestArrowContainerPaddingTracksHeadSize(t *testing.T) {
	el := &domain.CanvasElement{ElementType: domain.TypeArrow, HasEndArrow: true, ArrowheadSize: 30}
	el.SetEndpoints(0, 0, 100, 0)
	c, _ := New(el)
	box := c.(*arrowControl).Container()
	// Padding is max(10, arrowheadSize) = 30, so the flat shaft inflates
	// to a 60px-tall box.
	if box.Height != 60 || box.Y != -30 {
		t.Fatalf("container %+v, want height 60 at y=-30", box)
	}
	if box.Width != 100 || box.X != 0 {
		t.Fatalf("container %+v, want width 100 at x=0", box)
	}
}

func TestArrowheadSettingsRecomputeHeads(t *testing.T) {
	el := &domain.CanvasElement{ElementType: domain.TypeArrow, HasEndArrow: true, ArrowheadSize: 10}
	el.SetEndpoints(0, 0, 100, 0)
	c, _ := New(el)
	ac := c.(*arrowControl)
	c.ApplyProperty("HasStartArrow", true)
	if ac.StartHead() == nil {
		t.Fatal("start head missing after enabling HasStartArrow")
	}
	c.ApplyProperty("HasEndArrow", false)
	if ac.EndHead() != nil {
		t.Fatal("end head present after disabling HasEndArrow")
	}
	c.ApplyProperty("ArrowheadSize", 20.0)
	head := ac.StartHead()
	if !almost(math.Abs(head[1].Y-head[2].Y), 20) {
		t.Fatalf("base width %g after size change, want 20", math.Abs(head[1].Y-head[2].Y))
	}
}

func TestApplyPropertyIgnoresUnknownName(t *testing.T) {
	el := &domain.CanvasElement{ElementType: domain.TypeRectangle, Width: 50, Height: 50, FillColor: "#FFFF0000"}
	c, _ := New(el)
	c.ApplyProperty("Bogus", 123.0)
	c.ApplyProperty("FillColor", 42) // wrong type, ignored
	if el.FillColor != "#FFFF0000" || el.Width != 50 {
		t.Fatal("unknown or mistyped property must leave the element untouched")
	}
}

func TestApplyPropertyFloors(t *testing.T) {
	el := &domain.CanvasElement{ElementType: domain.TypeRectangle, Width: 50, Height: 50}
	c, _ := New(el)
	c.ApplyProperty("Width", 4.0)
	if el.Width != 50 {
		t.Fatalf("width %g, want 50 (below floor rejected)", el.Width)
	}
	c.ApplyProperty("Width", 75.0)
	if el.Width != 75 {
		t.Fatalf("width %g, want 75", el.Width)
	}
}

func TestUnitConversion(t *testing.T) {
	if !almost(MMToPixels(25.4), 96) {
		t.Fatalf("MMToPixels(25.4)=%g, want 96", MMToPixels(25.4))
	}
	if !almost(PixelsToMM(MMToPixels(12.5)), 12.5) {
		t.Fatal("mm/pixel conversion must round trip")
	}
}

func TestFontSizeStaysInPoints(t *testing.T) {
	// Font size is typographic points: the value the user types is applied
	// verbatim, unlike millimeter-based geometry fields which the panel
	// converts before calling ApplyProperty.
	el := &domain.CanvasElement{ElementType: domain.TypeText, Width: 50, Height: 20, FontSize: 12}
	c, _ := New(el)
	c.ApplyProperty("FontSize", 18.0)
	if el.FontSize != 18 {
		t.Fatalf("FontSize %g, want 18 with no unit conversion", el.FontSize)
	}
}

func TestPropertiesSnapshotPerType(t *testing.T) {
	el := &domain.CanvasElement{
		ElementType: domain.TypeImage,
		Width:       100, Height: 80,
		ImagePath:         "logo.png",
		MonochromeEnabled: true,
		Threshold:         128,
	}
	c, _ := New(el)
	p := c.Properties()
	if p["ImagePath"] != "logo.png" || p["MonochromeEnabled"] != true {
		t.Fatalf("image properties missing: %v", p)
	}
	if _, ok := p["FontSize"]; ok {
		t.Fatal("image snapshot must not carry text fields")
	}
}
