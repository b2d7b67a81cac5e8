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

	"golabeldesigner/internal/domain"
	"golabeldesigner/internal/vector"
)

// Container describes the padded bounding box a line or arrow visual lives
// in. The box is runtime-only: endpoints are persisted as absolute
// coordinates, the container exists to give the visual and its hit testing
// a comfortable margin around a possibly zero-width or zero-height shaft.
type Container struct {
	X, Y          float64 // canvas position of the box's top-left corner
	Width, Height float64
}

// endpointContainer computes the padded box for a pair of absolute
// endpoints. The box size is at least 2*padding per axis and the shaft is
// centered inside it, so the top-left is the endpoint minimum shifted by
// the centering offset.
func endpointContainer(x1, y1, x2, y2, padding float64) Container {
	minX, minY := math.Min(x1, x2), math.Min(y1, y2)
	w, h := math.Abs(x2-x1), math.Abs(y2-y1)
	boxW := math.Max(w, 2*padding)
	boxH := math.Max(h, 2*padding)
	return Container{
		X:      minX - (boxW-w)/2,
		Y:      minY - (boxH-h)/2,
		Width:  boxW,
		Height: boxH,
	}
}

// lineControl manipulates a Line through its two absolute endpoints.
// The backing element's X/Y/X2/Y2 stay authoritative on every change.
type lineControl struct {
	el        *domain.CanvasElement
	container Container
}

func newLineControl(el *domain.CanvasElement) *lineControl {
	c := &lineControl{el: el}
	c.refresh()
	return c
}

func (c *lineControl) Element() *domain.CanvasElement  { return c.el }
func (c *lineControl) ElementType() domain.ElementType { return domain.TypeLine }
func (c *lineControl) UsesEndpoints() bool             { return true }

// Container returns the current padded bounding box for the live visual.
func (c *lineControl) Container() Container { return c.container }

func (c *lineControl) Resize(handle Handle, dx, dy float64, lockAspect bool) {
	moveEndpoint(c.el, handle, dx, dy)
	c.refresh()
}

func (c *lineControl) refresh() {
	x1, y1, x2, y2 := c.el.Endpoints()
	c.container = endpointContainer(x1, y1, x2, y2, EndpointPadding)
}

func (c *lineControl) Properties() map[string]any {
	return buildProperties(c.el)
}

func (c *lineControl) ApplyProperty(name string, value any) {
	x1, y1, x2, y2 := c.el.Endpoints()
	switch name {
	case "X":
		if f, ok := toFloat(value); ok {
			c.applyEndpoints(f, y1, x2, y2)
			return
		}
	case "Y":
		if f, ok := toFloat(value); ok {
			c.applyEndpoints(x1, f, x2, y2)
			return
		}
	case "X2":
		if f, ok := toFloat(value); ok {
			c.applyEndpoints(x1, y1, f, y2)
			return
		}
	case "Y2":
		if f, ok := toFloat(value); ok {
			c.applyEndpoints(x1, y1, x2, f)
			return
		}
	}
	applyElementProperty(c.el, name, value)
}

// applyEndpoints commits a candidate endpoint pair, subject to the minimum
// length check. Non-finite coordinates are rejected whole; a panel field
// can parse to NaN or Inf and the distance check alone would let NaN pass.
func (c *lineControl) applyEndpoints(x1, y1, x2, y2 float64) {
	if !finiteCoords(x1, y1, x2, y2) {
		return
	}
	if vector.Dist(vector.Pt{X: x1, Y: y1}, vector.Pt{X: x2, Y: y2}) < MinLineLength {
		return
	}
	c.el.SetEndpoints(x1, y1, x2, y2)
	c.refresh()
}

// moveEndpoint translates the handle's endpoint by the drag delta. A move
// that would collapse the shaft below the minimum length is rejected whole;
// neither endpoint changes.
func moveEndpoint(el *domain.CanvasElement, handle Handle, dx, dy float64) {
	x1, y1, x2, y2 := el.Endpoints()
	switch handle {
	case StartPoint:
		x1 += dx
		y1 += dy
	case EndPoint:
		x2 += dx
		y2 += dy
	default:
		return
	}
	if vector.Dist(vector.Pt{X: x1, Y: y1}, vector.Pt{X: x2, Y: y2}) < MinLineLength {
		return
	}
	el.SetEndpoints(x1, y1, x2, y2)
}

// finiteCoords reports whether every coordinate is a finite number.
func finiteCoords(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
