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
)

// boundsControl handles Rectangle, Ellipse, Text and Image: elements
// positioned by top-left corner plus width/height.
type boundsControl struct {
	el *domain.CanvasElement
}

func newBoundsControl(el *domain.CanvasElement) *boundsControl {
	return &boundsControl{el: el}
}

func (c *boundsControl) Element() *domain.CanvasElement  { return c.el }
func (c *boundsControl) ElementType() domain.ElementType { return c.el.ElementType }
func (c *boundsControl) UsesEndpoints() bool             { return false }

func (c *boundsControl) Resize(handle Handle, dx, dy float64, lockAspect bool) {
	w, h := c.el.Width, c.el.Height
	newW, newH := resizeCandidate(handle, w, h, dx, dy, lockAspect)

	// A dimension below the floor rejects only that dimension's change.
	if newW < MinElementSize {
		newW = w
	}
	if newH < MinElementSize {
		newH = h
	}

	// Left/top handles keep the opposite edge fixed.
	if handle.touchesLeft() && newW != w {
		c.el.X += w - newW
	}
	if handle.touchesTop() && newH != h {
		c.el.Y += h - newH
	}
	c.el.Width = newW
	c.el.Height = newH
}

func (c *boundsControl) Properties() map[string]any {
	return buildProperties(c.el)
}

func (c *boundsControl) ApplyProperty(name string, value any) {
	applyElementProperty(c.el, name, value)
}

// resizeCandidate computes the tentative new size for a handle drag.
// Corner handles affect both axes, edge-center handles one. With the
// aspect lock active, the axis with the larger delta magnitude wins and
// the other is recomputed from the current width/height ratio.
func resizeCandidate(handle Handle, w, h, dx, dy float64, lockAspect bool) (newW, newH float64) {
	newW, newH = w, h
	switch {
	case handle.touchesLeft():
		newW = w - dx
	case handle.touchesRight():
		newW = w + dx
	}
	switch {
	case handle.touchesTop():
		newH = h - dy
	case handle.touchesBottom():
		newH = h + dy
	}
	if lockAspect && w > 0 && h > 0 {
		if math.Abs(dx) > math.Abs(dy) {
			newH = newW * h / w
		} else {
			newW = newH * w / h
		}
	}
	return newW, newH
}
