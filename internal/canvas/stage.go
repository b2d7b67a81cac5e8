/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package canvas holds the live editing state: the ordered element set, the
// control registry, selection, the concrete undo commands and the drag
// gesture controller. All mutation runs on the UI goroutine; the package
// assumes single-threaded access.
package canvas

import (
	"fmt"

	"github.com/google/uuid"

	"golabeldesigner/internal/control"
	"golabeldesigner/internal/domain"
	"golabeldesigner/internal/log"
)

// Stage is the live element set for one open document. Element order is
// z-order, back to front. Each element is paired with its Control in the
// registry for the lifetime of its presence on the stage.
type Stage struct {
	CanvasWidth  float64
	CanvasHeight float64

	elements []*domain.CanvasElement
	controls map[string]control.Control
	selected string
}

func newElementID() string { return uuid.NewString() }

func NewStage(width, height float64) *Stage {
	return &Stage{
		CanvasWidth:  width,
		CanvasHeight: height,
		controls:     make(map[string]control.Control),
	}
}

// Add appends an element at the top of the z-order and registers its
// control. Elements without an ID get a fresh one.
func (s *Stage) Add(el *domain.CanvasElement) (control.Control, error) {
	return s.AddAt(el, len(s.elements))
}

// AddAt inserts an element at a specific z-order index. Undoing a delete
// re-inserts at the original position rather than appending.
func (s *Stage) AddAt(el *domain.CanvasElement, index int) (control.Control, error) {
	if el == nil {
		return nil, fmt.Errorf("canvas: nil element")
	}
	if el.ID == "" {
		el.ID = newElementID()
	}
	if _, exists := s.controls[el.ID]; exists {
		return nil, fmt.Errorf("canvas: element %s already on stage", el.ID)
	}
	c, err := control.New(el)
	if err != nil {
		return nil, err
	}
	if index < 0 {
		index = 0
	}
	if index > len(s.elements) {
		index = len(s.elements)
	}
	s.elements = append(s.elements, nil)
	copy(s.elements[index+1:], s.elements[index:])
	s.elements[index] = el
	s.controls[el.ID] = c
	log.L().Debug("element added", "id", el.ID, "type", el.ElementType, "z", index)
	return c, nil
}

// Remove takes an element off the stage and returns its z-order index so a
// later undo can restore it in place.
func (s *Stage) Remove(id string) (int, error) {
	idx := s.IndexOf(id)
	if idx < 0 {
		return -1, fmt.Errorf("canvas: element %s not on stage", id)
	}
	s.elements = append(s.elements[:idx], s.elements[idx+1:]...)
	delete(s.controls, id)
	if s.selected == id {
		s.selected = ""
	}
	log.L().Debug("element removed", "id", id, "z", idx)
	return idx, nil
}

// Clear drops every element and the selection, e.g. on new/open document.
func (s *Stage) Clear() {
	s.elements = nil
	s.controls = make(map[string]control.Control)
	s.selected = ""
}

// Element returns the element with the given ID, or nil.
func (s *Stage) Element(id string) *domain.CanvasElement {
	if c, ok := s.controls[id]; ok {
		return c.Element()
	}
	return nil
}

// Control returns the registered control for an element ID, or nil.
func (s *Stage) Control(id string) control.Control {
	return s.controls[id]
}

// Elements returns the live element list in z-order. The slice is shared;
// callers must not reorder it directly.
func (s *Stage) Elements() []*domain.CanvasElement {
	return s.elements
}

// IndexOf returns the z-order index of an element, or -1.
func (s *Stage) IndexOf(id string) int {
	for i, el := range s.elements {
		if el.ID == id {
			return i
		}
	}
	return -1
}

// Len returns the number of elements on the stage.
func (s *Stage) Len() int { return len(s.elements) }

// Select marks an element as selected; an empty ID clears the selection.
func (s *Stage) Select(id string) {
	if id != "" && s.IndexOf(id) < 0 {
		return
	}
	s.selected = id
}

// Selection returns the selected element's ID, or "".
func (s *Stage) Selection() string { return s.selected }

// MoveBy translates an element. Bounds elements move their origin;
// endpoint elements translate both endpoints and refresh their container
// through the control so the cached absolute coordinates stay current.
func (s *Stage) MoveBy(id string, dx, dy float64) {
	c := s.controls[id]
	if c == nil {
		return
	}
	el := c.Element()
	if c.UsesEndpoints() {
		x1, y1, x2, y2 := el.Endpoints()
		el.SetEndpoints(x1+dx, y1+dy, x2+dx, y2+dy)
		// Both endpoints moved by the same delta, so the length check
		// cannot fail; refresh via a zero-delta resize.
		c.Resize(control.StartPoint, 0, 0, false)
	} else {
		el.X += dx
		el.Y += dy
	}
}

// SetGeometry overwrites an element's geometry fields from a snapshot and
// refreshes endpoint containers. Style fields are left alone.
func (s *Stage) SetGeometry(id string, snap domain.CanvasElement) {
	c := s.controls[id]
	if c == nil {
		return
	}
	el := c.Element()
	el.X, el.Y = snap.X, snap.Y
	el.Width, el.Height = snap.Width, snap.Height
	el.PolygonPoints = snap.PolygonPoints
	el.X2, el.Y2 = nil, nil
	if snap.X2 != nil {
		v := *snap.X2
		el.X2 = &v
	}
	if snap.Y2 != nil {
		v := *snap.Y2
		el.Y2 = &v
	}
	if c.UsesEndpoints() {
		c.Resize(control.StartPoint, 0, 0, false)
	}
}
