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
	"golabeldesigner/internal/domain"
	"golabeldesigner/internal/log"
)

// The concrete undo commands. Each captures everything it needs by value
// at construction; executing or undoing never reads mutable state that a
// later edit could have changed.

// AddElementCommand places a new element on the stage.
type AddElementCommand struct {
	stage *Stage
	snap  domain.CanvasElement
}

func NewAddElementCommand(stage *Stage, el *domain.CanvasElement) *AddElementCommand {
	if el.ID == "" {
		// Fix the identity now so execute/undo/redo all address the same
		// element.
		el.ID = newElementID()
	}
	return &AddElementCommand{stage: stage, snap: el.Clone()}
}

func (c *AddElementCommand) Execute() {
	el := c.snap.Clone()
	if _, err := c.stage.Add(&el); err != nil {
		log.L().Warn("add element failed", "id", c.snap.ID, "err", err)
	}
}

func (c *AddElementCommand) Undo() {
	if _, err := c.stage.Remove(c.snap.ID); err != nil {
		log.L().Warn("undo add failed", "id", c.snap.ID, "err", err)
	}
}

func (c *AddElementCommand) Name() string { return "Add " + string(c.snap.ElementType) }

// DeleteElementCommand removes an element, remembering its z-order index
// so undo restores the stacking order exactly.
type DeleteElementCommand struct {
	stage *Stage
	snap  domain.CanvasElement
	index int
}

func NewDeleteElementCommand(stage *Stage, id string) *DeleteElementCommand {
	el := stage.Element(id)
	if el == nil {
		return nil
	}
	return &DeleteElementCommand{stage: stage, snap: el.Clone(), index: stage.IndexOf(id)}
}

func (c *DeleteElementCommand) Execute() {
	if _, err := c.stage.Remove(c.snap.ID); err != nil {
		log.L().Warn("delete element failed", "id", c.snap.ID, "err", err)
	}
}

func (c *DeleteElementCommand) Undo() {
	el := c.snap.Clone()
	if _, err := c.stage.AddAt(&el, c.index); err != nil {
		log.L().Warn("undo delete failed", "id", c.snap.ID, "err", err)
	}
}

func (c *DeleteElementCommand) Name() string { return "Delete " + string(c.snap.ElementType) }

// MoveElementCommand records an element translation as old and new
// geometry snapshots.
type MoveElementCommand struct {
	stage    *Stage
	id       string
	typeName string
	before   domain.CanvasElement
	after    domain.CanvasElement
}

func NewMoveElementCommand(stage *Stage, id string, before, after domain.CanvasElement) *MoveElementCommand {
	return &MoveElementCommand{
		stage:    stage,
		id:       id,
		typeName: string(before.ElementType),
		before:   before.Clone(),
		after:    after.Clone(),
	}
}

func (c *MoveElementCommand) Execute() { c.stage.SetGeometry(c.id, c.after) }
func (c *MoveElementCommand) Undo()    { c.stage.SetGeometry(c.id, c.before) }
func (c *MoveElementCommand) Name() string {
	return "Move " + c.typeName
}

// ResizeElementCommand records a resize, covering size, position shifts
// from anchor handles, polygon point scaling and endpoint pairs.
type ResizeElementCommand struct {
	stage    *Stage
	id       string
	typeName string
	before   domain.CanvasElement
	after    domain.CanvasElement
}

func NewResizeElementCommand(stage *Stage, id string, before, after domain.CanvasElement) *ResizeElementCommand {
	return &ResizeElementCommand{
		stage:    stage,
		id:       id,
		typeName: string(before.ElementType),
		before:   before.Clone(),
		after:    after.Clone(),
	}
}

func (c *ResizeElementCommand) Execute() { c.stage.SetGeometry(c.id, c.after) }
func (c *ResizeElementCommand) Undo()    { c.stage.SetGeometry(c.id, c.before) }
func (c *ResizeElementCommand) Name() string {
	return "Resize " + c.typeName
}

// PropertyChangeCommand records one scalar property edit, applied through
// the element's control so type-specific side effects (arrowhead
// recomputation, container refresh) happen on both directions.
type PropertyChangeCommand struct {
	stage    *Stage
	id       string
	property string
	oldValue any
	newValue any
}

func NewPropertyChangeCommand(stage *Stage, id, property string, oldValue, newValue any) *PropertyChangeCommand {
	return &PropertyChangeCommand{
		stage:    stage,
		id:       id,
		property: property,
		oldValue: oldValue,
		newValue: newValue,
	}
}

func (c *PropertyChangeCommand) Execute() {
	if ctl := c.stage.Control(c.id); ctl != nil {
		ctl.ApplyProperty(c.property, c.newValue)
	}
}

func (c *PropertyChangeCommand) Undo() {
	if ctl := c.stage.Control(c.id); ctl != nil {
		ctl.ApplyProperty(c.property, c.oldValue)
	}
}

func (c *PropertyChangeCommand) Name() string { return "Change " + c.property }
