/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package undo provides the command-based undo/redo engine driving all
// document mutations. Every edit is a Command; the manager owns the two
// stacks and the execute/record distinction.
package undo

import "sync"

// Command is a single reversible document mutation. Execute and Undo must
// be exact inverses, and a command must capture everything it needs at
// construction time so replaying it later is not affected by intervening
// edits.
type Command interface {
	// Execute applies the mutation.
	Execute()
	// Undo reverts exactly what Execute did.
	Undo()
	// Name describes the mutation for menus and logging, e.g. "Move Element".
	Name() string
}

// Config controls stack depth.
type Config struct {
	// MaxDepth limits the undo stack; older entries are dropped when
	// exceeded (0 means unlimited).
	MaxDepth int
}

// Manager holds the undo and redo stacks for one document.
// It is safe for concurrent use.
type Manager struct {
	cfg  Config
	mu   sync.Mutex
	undo []Command
	redo []Command
}

func NewManager(cfg Config) *Manager {
	return &Manager{cfg: cfg}
}

// Execute runs the command, pushes it onto the undo stack and clears the
// redo stack. This is the normal path for edits initiated by the user.
func (m *Manager) Execute(c Command) {
	c.Execute()
	m.record(c)
}

// AddExecuted records a command whose effect has already been applied,
// without running Execute again. Interactive gestures mutate the document
// live while dragging and only record the net command on release.
func (m *Manager) AddExecuted(c Command) {
	m.record(c)
}

func (m *Manager) record(c Command) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo = append(m.undo, c)
	m.redo = nil
	if m.cfg.MaxDepth > 0 && len(m.undo) > m.cfg.MaxDepth {
		toDrop := len(m.undo) - m.cfg.MaxDepth
		m.undo = append([]Command{}, m.undo[toDrop:]...)
	}
}

// Undo reverts the most recent command and moves it to the redo stack.
// It reports whether a command was available.
func (m *Manager) Undo() bool {
	m.mu.Lock()
	n := len(m.undo)
	if n == 0 {
		m.mu.Unlock()
		return false
	}
	c := m.undo[n-1]
	m.undo = m.undo[:n-1]
	m.redo = append(m.redo, c)
	m.mu.Unlock()
	c.Undo()
	return true
}

// Redo re-applies the most recently undone command and moves it back to
// the undo stack. Reports whether a command was available.
func (m *Manager) Redo() bool {
	m.mu.Lock()
	n := len(m.redo)
	if n == 0 {
		m.mu.Unlock()
		return false
	}
	c := m.redo[n-1]
	m.redo = m.redo[:n-1]
	m.undo = append(m.undo, c)
	m.mu.Unlock()
	c.Execute()
	return true
}

func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo) > 0
}

func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redo) > 0
}

// UndoName returns the name of the command that Undo would revert, or ""
// when the stack is empty.
func (m *Manager) UndoName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.undo) == 0 {
		return ""
	}
	return m.undo[len(m.undo)-1].Name()
}

// RedoName returns the name of the command that Redo would re-apply, or ""
// when the stack is empty.
func (m *Manager) RedoName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.redo) == 0 {
		return ""
	}
	return m.redo[len(m.redo)-1].Name()
}

// Clear drops both stacks, e.g. after loading a different document.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo = nil
	m.redo = nil
}

// Stats returns current stack depths for diagnostics.
func (m *Manager) Stats() (undoDepth, redoDepth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo), len(m.redo)
}

// Composite bundles several commands into one undo step. Execute runs the
// children in order; Undo reverts them in reverse order.
type Composite struct {
	Label    string
	Commands []Command
}

func (c *Composite) Execute() {
	for _, cmd := range c.Commands {
		cmd.Execute()
	}
}

func (c *Composite) Undo() {
	for i := len(c.Commands) - 1; i >= 0; i-- {
		c.Commands[i].Undo()
	}
}

func (c *Composite) Name() string {
	if c.Label != "" {
		return c.Label
	}
	return "Multiple Changes"
}
