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

// arrowControl is the endpoint control for Arrow: the Line behavior plus
// two optional triangular arrowheads recomputed on every geometry or
// arrowhead-setting change.
type arrowControl struct {
	el        *domain.CanvasElement
	container Container
	startHead []vector.Pt // empty when HasStartArrow is false
	endHead   []vector.Pt // empty when HasEndArrow is false
}

func newArrowControl(el *domain.CanvasElement) *arrowControl {
	c := &arrowControl{el: el}
	c.refresh()
	return c
}

func (c *arrowControl) Element() *domain.CanvasElement  { return c.el }
func (c *arrowControl) ElementType() domain.ElementType { return domain.TypeArrow }
func (c *arrowControl) UsesEndpoints() bool             { return true }

func (c *arrowControl) Container() Container { return c.container }

// StartHead returns the three corners of the start arrowhead in absolute
// canvas coordinates, or nil when disabled.
func (c *arrowControl) StartHead() []vector.Pt { return c.startHead }

// EndHead returns the three corners of the end arrowhead, or nil.
func (c *arrowControl) EndHead() []vector.Pt { return c.endHead }

// padding keeps the container margin large enough for the arrowheads.
func (c *arrowControl) padding() float64 {
	return math.Max(EndpointPadding, c.el.ArrowheadSize)
}

func (c *arrowControl) Resize(handle Handle, dx, dy float64, lockAspect bool) {
	moveEndpoint(c.el, handle, dx, dy)
	c.refresh()
}

func (c *arrowControl) refresh() {
	x1, y1, x2, y2 := c.el.Endpoints()
	c.container = endpointContainer(x1, y1, x2, y2, c.padding())

	size := c.el.ArrowheadSize
	angle := math.Atan2(y2-y1, x2-x1)
	c.startHead, c.endHead = nil, nil
	if c.el.HasStartArrow {
		c.startHead = arrowheadTriangle(vector.Pt{X: x1, Y: y1}, angle+math.Pi, size)
	}
	if c.el.HasEndArrow {
		c.endHead = arrowheadTriangle(vector.Pt{X: x2, Y: y2}, angle, size)
	}
}

func (c *arrowControl) Properties() map[string]any {
	return buildProperties(c.el)
}

func (c *arrowControl) ApplyProperty(name string, value any) {
	x1, y1, x2, y2 := c.el.Endpoints()
	switch name {
	case "X":
		if f, ok := toFloat(value); ok {
			c.applyEndpoints(f, y1, x2, y2)
		}
		return
	case "Y":
		if f, ok := toFloat(value); ok {
			c.applyEndpoints(x1, f, x2, y2)
		}
		return
	case "X2":
		if f, ok := toFloat(value); ok {
			c.applyEndpoints(x1, y1, f, y2)
		}
		return
	case "Y2":
		if f, ok := toFloat(value); ok {
			c.applyEndpoints(x1, y1, x2, f)
		}
		return
	case "HasStartArrow":
		if b, ok := toBool(value); ok {
			c.el.HasStartArrow = b
			c.refresh()
		}
		return
	case "HasEndArrow":
		if b, ok := toBool(value); ok {
			c.el.HasEndArrow = b
			c.refresh()
		}
		return
	case "ArrowheadSize":
		if f, ok := toFloat(value); ok && f > 0 {
			c.el.ArrowheadSize = f
			c.refresh()
		}
		return
	}
	applyElementProperty(c.el, name, value)
}

func (c *arrowControl) applyEndpoints(x1, y1, x2, y2 float64) {
	if !finiteCoords(x1, y1, x2, y2) {
		return
	}
	if vector.Dist(vector.Pt{X: x1, Y: y1}, vector.Pt{X: x2, Y: y2}) < MinLineLength {
		return
	}
	c.el.SetEndpoints(x1, y1, x2, y2)
	c.refresh()
}

// arrowheadTriangle builds an isoceles triangle with its tip at the given
// point, pointing along angle. The base sits one size-length behind the
// tip, base width equal to size, corners rotated around the tip.
func arrowheadTriangle(tip vector.Pt, angle, size float64) []vector.Pt {
	sin, cos := math.Sin(angle), math.Cos(angle)
	rotate := func(lx, ly float64) vector.Pt {
		return vector.Pt{
			X: tip.X + lx*cos - ly*sin,
			Y: tip.Y + lx*sin + ly*cos,
		}
	}
	return []vector.Pt{
		tip,
		rotate(-size, -size/2),
		rotate(-size, size/2),
	}
}
