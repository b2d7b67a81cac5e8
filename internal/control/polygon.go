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

// polygonControl resizes by rescaling the point set around the bounding
// box origin rather than by changing a width/height pair.
type polygonControl struct {
	el *domain.CanvasElement
}

func newPolygonControl(el *domain.CanvasElement) *polygonControl {
	return &polygonControl{el: el}
}

func (c *polygonControl) Element() *domain.CanvasElement  { return c.el }
func (c *polygonControl) ElementType() domain.ElementType { return domain.TypePolygon }
func (c *polygonControl) UsesEndpoints() bool             { return false }

func (c *polygonControl) Resize(handle Handle, dx, dy float64, lockAspect bool) {
	points := domain.ParsePolygonPoints(c.el.PolygonPoints)
	if len(points) == 0 {
		return
	}
	minX, minY, w, h := domain.PointsBounds(points)
	newW, newH := resizeCandidate(handle, w, h, dx, dy, lockAspect)

	// Polygons clamp to the floor instead of rejecting the change.
	if newW < MinPolygonSize {
		newW = MinPolygonSize
	}
	if newH < MinPolygonSize {
		newH = MinPolygonSize
	}

	scaleX, scaleY := 1.0, 1.0
	if w > 0 {
		scaleX = newW / w
	}
	if h > 0 {
		scaleY = newH / h
	}
	for i, p := range points {
		points[i] = domain.Point{
			X: minX + (p.X-minX)*scaleX,
			Y: minY + (p.Y-minY)*scaleY,
		}
	}
	c.el.PolygonPoints = domain.FormatPolygonPoints(points)

	if handle.touchesLeft() && newW != w {
		c.el.X += w - newW
	}
	if handle.touchesTop() && newH != h {
		c.el.Y += h - newH
	}
	c.el.Width = newW
	c.el.Height = newH
}

func (c *polygonControl) Properties() map[string]any {
	return buildProperties(c.el)
}

func (c *polygonControl) ApplyProperty(name string, value any) {
	if name == "PolygonPoints" {
		if s, ok := toString(value); ok {
			c.el.PolygonPoints = s
		}
		return
	}
	applyElementProperty(c.el, name, value)
}
