/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package history

import (
	"log/slog"
	"sync"

	"pagecomposer/internal/command"
	applog "pagecomposer/internal/log"
)

// DefaultCapacity bounds the undo stack when no capacity is configured.
const DefaultCapacity = 400

// Stats reports stack depths for diagnostics.
type Stats struct {
	UndoDepth int
	RedoDepth int
	Capacity  int
	// Evicted counts commands dropped from the bottom of the undo stack.
	Evicted int
}

// Manager keeps a bounded undo stack and an unbounded redo stack of commands.
// It is safe for concurrent use; commands run while the lock is held.
type Manager struct {
	mu       sync.Mutex
	capacity int
	undo     []command.Command
	redo     []command.Command
	evicted  int
	log      *slog.Logger
}

func NewManager(capacity int) *Manager {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Manager{capacity: capacity, log: applog.WithComponent("history")}
}

// Execute runs cmd and records it. This is the only call that clears redo.
// A nil command is ignored.
func (m *Manager) Execute(cmd command.Command) {
	if cmd == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cmd.Execute()
	m.undo = append(m.undo, cmd)
	m.redo = nil
	m.enforceCapLocked()
	m.log.Debug("command executed", slog.String("op", "execute"), slog.String("cmd", cmd.Name()), slog.Int("undo", len(m.undo)))
}

// Undo reverts the most recent command. It reports false when there is nothing to undo.
func (m *Manager) Undo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.undo)
	if n == 0 {
		return false
	}
	cmd := m.undo[n-1]
	m.undo[n-1] = nil
	m.undo = m.undo[:n-1]
	cmd.Undo()
	m.redo = append(m.redo, cmd)
	m.log.Debug("command undone", slog.String("op", "undo"), slog.String("cmd", cmd.Name()), slog.Int("redo", len(m.redo)))
	return true
}

// Redo re-applies the most recently undone command by calling its Execute
// directly, so the remaining redo entries survive.
func (m *Manager) Redo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.redo)
	if n == 0 {
		return false
	}
	cmd := m.redo[n-1]
	m.redo[n-1] = nil
	m.redo = m.redo[:n-1]
	cmd.Execute()
	m.undo = append(m.undo, cmd)
	m.enforceCapLocked()
	m.log.Debug("command redone", slog.String("op", "redo"), slog.String("cmd", cmd.Name()), slog.Int("undo", len(m.undo)))
	return true
}

// Clear drops both stacks.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo, m.redo = nil, nil
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

func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{UndoDepth: len(m.undo), RedoDepth: len(m.redo), Capacity: m.capacity, Evicted: m.evicted}
}

// Names lists command names oldest first.
func (m *Manager) Names() (undo, redo []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.undo {
		undo = append(undo, c.Name())
	}
	for i := len(m.redo) - 1; i >= 0; i-- {
		redo = append(redo, m.redo[i].Name())
	}
	return undo, redo
}

func (m *Manager) enforceCapLocked() {
	if len(m.undo) <= m.capacity {
		return
	}
	// drop the oldest extras
	toDrop := len(m.undo) - m.capacity
	m.undo = append([]command.Command{}, m.undo[toDrop:]...)
	m.evicted += toDrop
	m.log.Debug("history evicted", slog.Int("dropped", toDrop), slog.Int("capacity", m.capacity))
}
