/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import "testing"

// addCmd adds a delta to a shared counter; its inverse subtracts it.
type addCmd struct {
	target *int
	delta  int
	label  string
}

func (c *addCmd) Execute()     { *c.target += c.delta }
func (c *addCmd) Undo()        { *c.target -= c.delta }
func (c *addCmd) Name() string { return c.label }

func TestExecuteUndoRedo(t *testing.T) {
	m := NewManager(Config{})
	v := 0
	m.Execute(&addCmd{target: &v, delta: 5, label: "Add Five"})
	m.Execute(&addCmd{target: &v, delta: 3, label: "Add Three"})
	if v != 8 {
		t.Fatalf("after execute v=%d, want 8", v)
	}
	if !m.CanUndo() || m.CanRedo() {
		t.Fatalf("CanUndo=%v CanRedo=%v, want true false", m.CanUndo(), m.CanRedo())
	}
	if m.UndoName() != "Add Three" {
		t.Fatalf("UndoName=%q", m.UndoName())
	}
	if !m.Undo() {
		t.Fatal("Undo returned false")
	}
	if v != 5 {
		t.Fatalf("after undo v=%d, want 5", v)
	}
	if m.RedoName() != "Add Three" {
		t.Fatalf("RedoName=%q", m.RedoName())
	}
	if !m.Redo() {
		t.Fatal("Redo returned false")
	}
	if v != 8 {
		t.Fatalf("after redo v=%d, want 8", v)
	}
}

func TestUndoRedoEmptyStacks(t *testing.T) {
	m := NewManager(Config{})
	if m.Undo() {
		t.Fatal("Undo on empty stack must return false")
	}
	if m.Redo() {
		t.Fatal("Redo on empty stack must return false")
	}
	if m.UndoName() != "" || m.RedoName() != "" {
		t.Fatal("names must be empty with empty stacks")
	}
}

func TestNewCommandClearsRedo(t *testing.T) {
	m := NewManager(Config{})
	v := 0
	m.Execute(&addCmd{target: &v, delta: 1, label: "a"})
	m.Execute(&addCmd{target: &v, delta: 2, label: "b"})
	m.Undo()
	if !m.CanRedo() {
		t.Fatal("expected redo available after undo")
	}
	m.Execute(&addCmd{target: &v, delta: 10, label: "c"})
	if m.CanRedo() {
		t.Fatal("executing a new command must discard the redo stack")
	}
	if v != 11 {
		t.Fatalf("v=%d, want 11", v)
	}
}

func TestAddExecutedDoesNotReapply(t *testing.T) {
	m := NewManager(Config{})
	v := 7 // mutation already applied by the gesture
	m.AddExecuted(&addCmd{target: &v, delta: 7, label: "Move Element"})
	if v != 7 {
		t.Fatalf("AddExecuted must not run Execute, v=%d", v)
	}
	m.Undo()
	if v != 0 {
		t.Fatalf("after undo v=%d, want 0", v)
	}
	m.Redo()
	if v != 7 {
		t.Fatalf("after redo v=%d, want 7", v)
	}
}

func TestMaxDepthDropsOldest(t *testing.T) {
	m := NewManager(Config{MaxDepth: 2})
	v := 0
	m.Execute(&addCmd{target: &v, delta: 1, label: "a"})
	m.Execute(&addCmd{target: &v, delta: 2, label: "b"})
	m.Execute(&addCmd{target: &v, delta: 4, label: "c"})
	undoDepth, _ := m.Stats()
	if undoDepth != 2 {
		t.Fatalf("undo depth %d, want 2", undoDepth)
	}
	m.Undo()
	m.Undo()
	if m.Undo() {
		t.Fatal("third undo must fail, oldest entry was dropped")
	}
	if v != 1 {
		t.Fatalf("v=%d, want 1 (only the first command survives)", v)
	}
}

func TestCompositeUndoesInReverse(t *testing.T) {
	m := NewManager(Config{})
	var order []string
	mk := func(label string) Command {
		n := 0
		return &fnCmd{
			label: label,
			exec:  func() { order = append(order, "x:"+label); n++ },
			undo:  func() { order = append(order, "u:"+label); n-- },
		}
	}
	m.Execute(&Composite{Label: "Group", Commands: []Command{mk("a"), mk("b"), mk("c")}})
	m.Undo()
	want := []string{"x:a", "x:b", "x:c", "u:c", "u:b", "u:a"}
	if len(order) != len(want) {
		t.Fatalf("order %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order[%d]=%q, want %q", i, order[i], want[i])
		}
	}
	if m.RedoName() != "Group" {
		t.Fatalf("RedoName=%q, want Group", m.RedoName())
	}
}

func TestCompositeDefaultName(t *testing.T) {
	c := &Composite{}
	if c.Name() != "Multiple Changes" {
		t.Fatalf("Name=%q", c.Name())
	}
}

type fnCmd struct {
	label string
	exec  func()
	undo  func()
}

func (c *fnCmd) Execute()     { c.exec() }
func (c *fnCmd) Undo()        { c.undo() }
func (c *fnCmd) Name() string { return c.label }
