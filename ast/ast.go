// Copyright 2024 The WireState Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ast defines the WireState syntax tree: one Scope per source
// file, containing Import and Machine nodes, with States nested
// recursively under Machines. See spec §3 for the full data model.
package ast

import "wirestate.dev/wirestate/token"

// Node is implemented by every AST type; it is a closed variant set (§9):
// Scope, Import, Machine, State, Transition, EventProtocol, UseDirective.
type Node interface {
	Pos() token.Pos
}

// Kind is a State's classification (§3).
type Kind int

const (
	Atomic Kind = iota
	Compound
	Parallel
	Transient
	Final
)

func (k Kind) String() string {
	switch k {
	case Atomic:
		return "atomic"
	case Compound:
		return "compound"
	case Parallel:
		return "parallel"
	case Transient:
		return "transient"
	case Final:
		return "final"
	default:
		return "unknown"
	}
}

// Scope is the AST root for one source file.
type Scope struct {
	File     string // path as given to the parser; not made absolute, so it may be relative
	Imports  []*Import
	Machines []*Machine
}

func (s *Scope) Pos() token.Pos { return token.Pos{File: s.File, Line: 1, Column: 1} }

// Machine looks up a machine by ID declared directly in this scope.
func (s *Scope) Machine(id string) *Machine {
	for _, m := range s.Machines {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// Import is a parsed `@include "..."` directive.
type Import struct {
	Position token.Pos
	File     string // raw string literal, as written
	// ResolvedFile is the path the file was read from. It is set only on
	// the import that first registers this logical path with the analyzer's
	// cache, by the goroutine that reads the file, which may finish after
	// Analyze returns; later imports of the same path leave it empty.
	ResolvedFile string
	Scope        *Scope // enclosing scope
}

func (i *Import) Pos() token.Pos { return i.Position }

// Machine is a named statechart declared by `@machine <id>` or, for a
// file with no explicit header, implicitly from the file's base name.
type Machine struct {
	Position       token.Pos
	ID             string
	Implicit       bool // true when there was no `@machine` header
	States         []*State
	Transitions    []*Transition
	EventProtocols []*EventProtocol
	Scope          *Scope
}

func (m *Machine) Pos() token.Pos { return m.Position }

// State looks up a direct child state by ID.
func (m *Machine) State(id string) *State {
	for _, s := range m.States {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// State is one node of a machine's state tree.
type State struct {
	Position       token.Pos
	ID             string
	Kind           Kind
	Initial        bool
	States         []*State
	Transitions    []*Transition
	EventProtocols []*EventProtocol
	Use            *UseDirective // optional

	Parent  *State   // nil when the direct child of a Machine
	Machine *Machine // always set
}

func (s *State) Pos() token.Pos { return s.Position }

// State looks up a direct child state by ID.
func (s *State) State(id string) *State {
	for _, c := range s.States {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Siblings returns the slice s belongs to: either its parent State's
// States, or its Machine's States when s has no parent.
func Siblings(s *State) []*State {
	if s.Parent != nil {
		return s.Parent.States
	}
	return s.Machine.States
}

// Transition is a single `event -> target [: guard]` edge.
type Transition struct {
	Position token.Pos
	Event    string // raw, as written (comma list)
	Target   string // raw dotted path
	Guard    string // optional, opaque per §1 non-goals
	Action   string // optional, opaque per §1 non-goals

	Resolved *State // set during analysis (§4.5); nil until resolved
}

func (t *Transition) Pos() token.Pos { return t.Position }

// EventProtocol is a declared event name (or comma list) with optional
// payload metadata, independent of any transition firing on it.
type EventProtocol struct {
	Position token.Pos
	Event    string // raw, as written (comma list)
	Payload  string // optional, opaque descriptor
}

func (e *EventProtocol) Pos() token.Pos { return e.Position }

// UseDirective references another machine by ID, to be resolved across
// the same or an imported Scope (§4.4).
type UseDirective struct {
	Position  token.Pos
	MachineID string

	Resolved *Machine // set during analysis; nil until resolved
}

func (u *UseDirective) Pos() token.Pos { return u.Position }
