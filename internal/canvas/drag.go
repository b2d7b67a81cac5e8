/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"golabeldesigner/internal/control"
	"golabeldesigner/internal/domain"
	"golabeldesigner/internal/log"
	"golabeldesigner/internal/undo"
	"golabeldesigner/internal/vector"
)

type gestureKind int

const (
	gestureNone gestureKind = iota
	gestureMove
	gestureResize
)

// Gesture drives one pointer drag from press to release. Intermediate
// updates mutate the element live for immediate feedback; exactly one
// command is recorded on End, capturing the net effect. Cancel restores
// the pre-gesture state and records nothing.
type Gesture struct {
	stage *Stage
	hist  *undo.Manager

	// GridStep quantizes drag positions when > 0.
	GridStep float64
	// Guides enables smart-guide snapping against other elements while
	// moving.
	Guides vector.SnapOptions

	kind     gestureKind
	id       string
	handle   control.Handle
	lock     bool
	before   domain.CanvasElement
	lastX    float64
	lastY    float64
	moved    bool
	guideOut []vector.GuideLine
}

func NewGesture(stage *Stage, hist *undo.Manager) *Gesture {
	return &Gesture{stage: stage, hist: hist}
}

// Active reports whether a drag is in progress.
func (g *Gesture) Active() bool { return g.kind != gestureNone }

// GuideLines returns the smart guides produced by the latest update, for
// the adorner layer to render.
func (g *Gesture) GuideLines() []vector.GuideLine { return g.guideOut }

// BeginMove starts a move drag at the given pointer position.
func (g *Gesture) BeginMove(id string, x, y float64) bool {
	return g.begin(gestureMove, id, control.TopLeft, x, y, false)
}

// BeginResize starts a handle drag.
func (g *Gesture) BeginResize(id string, handle control.Handle, x, y float64, lockAspect bool) bool {
	return g.begin(gestureResize, id, handle, x, y, lockAspect)
}

func (g *Gesture) begin(kind gestureKind, id string, handle control.Handle, x, y float64, lock bool) bool {
	el := g.stage.Element(id)
	if el == nil || g.kind != gestureNone {
		return false
	}
	g.kind = kind
	g.id = id
	g.handle = handle
	g.lock = lock
	g.before = el.Clone()
	g.lastX, g.lastY = g.snap(x), g.snap(y)
	g.moved = false
	g.guideOut = nil
	return true
}

// Update advances the drag to a new pointer position. Deltas are computed
// against the previous (quantized) position so grid snapping stays stable
// over long drags.
func (g *Gesture) Update(x, y float64) {
	if g.kind == gestureNone {
		return
	}
	sx, sy := g.snap(x), g.snap(y)
	dx, dy := sx-g.lastX, sy-g.lastY
	if dx == 0 && dy == 0 {
		return
	}
	g.lastX, g.lastY = sx, sy
	g.moved = true

	switch g.kind {
	case gestureMove:
		g.stage.MoveBy(g.id, dx, dy)
		g.applyGuides()
	case gestureResize:
		if c := g.stage.Control(g.id); c != nil {
			c.Resize(g.handle, dx, dy, g.lock)
		}
	}
}

// applyGuides snaps the moving element against the other elements' bounds
// and the canvas border, and keeps the resulting guide lines for display.
func (g *Gesture) applyGuides() {
	if !g.Guides.SnapToEdges && !g.Guides.SnapToCenters {
		g.guideOut = nil
		return
	}
	el := g.stage.Element(g.id)
	if el == nil || el.ElementType.UsesEndpoints() {
		// Endpoint elements have no meaningful bounds rect to align.
		g.guideOut = nil
		return
	}
	moving := vector.Rect{X: el.X, Y: el.Y, W: el.Width, H: el.Height}
	anchors := []vector.Anchor{
		{Rect: vector.Rect{W: g.stage.CanvasWidth, H: g.stage.CanvasHeight}, Weight: 0.5},
	}
	for _, other := range g.stage.Elements() {
		if other.ID == g.id || other.ElementType.UsesEndpoints() {
			continue
		}
		anchors = append(anchors, vector.Anchor{
			Rect:   vector.Rect{X: other.X, Y: other.Y, W: other.Width, H: other.Height},
			Weight: 1,
		})
	}
	snapped, guides := vector.ComputeSmartGuides(moving, anchors, g.Guides)
	if snapped.X != moving.X || snapped.Y != moving.Y {
		g.stage.MoveBy(g.id, snapped.X-moving.X, snapped.Y-moving.Y)
	}
	g.guideOut = guides
}

// End finishes the drag and records the net change as a single command.
// A drag that never moved, or whose net geometry is unchanged (every
// candidate rejected by the floors), records nothing.
func (g *Gesture) End() {
	defer g.reset()
	if g.kind == gestureNone || !g.moved {
		return
	}
	el := g.stage.Element(g.id)
	if el == nil {
		return
	}
	after := el.Clone()
	if sameGeometry(g.before, after) {
		return
	}
	var cmd undo.Command
	if g.kind == gestureMove {
		cmd = NewMoveElementCommand(g.stage, g.id, g.before, after)
	} else {
		cmd = NewResizeElementCommand(g.stage, g.id, g.before, after)
	}
	g.hist.AddExecuted(cmd)
	log.L().Debug("gesture committed", "command", cmd.Name(), "id", g.id)
}

// Cancel aborts the drag, restoring the pre-gesture geometry without
// touching the undo history.
func (g *Gesture) Cancel() {
	if g.kind != gestureNone && g.moved {
		g.stage.SetGeometry(g.id, g.before)
	}
	g.reset()
}

func (g *Gesture) reset() {
	g.kind = gestureNone
	g.id = ""
	g.moved = false
	g.guideOut = nil
}

func (g *Gesture) snap(v float64) float64 {
	if g.GridStep > 0 {
		return vector.SnapToGrid(v, g.GridStep)
	}
	return v
}

func sameGeometry(a, b domain.CanvasElement) bool {
	if a.X != b.X || a.Y != b.Y || a.Width != b.Width || a.Height != b.Height {
		return false
	}
	if a.PolygonPoints != b.PolygonPoints {
		return false
	}
	ax1, ay1, ax2, ay2 := a.Endpoints()
	bx1, by1, bx2, by2 := b.Endpoints()
	return ax1 == bx1 && ay1 == by1 && ax2 == bx2 && ay2 == by2
}
