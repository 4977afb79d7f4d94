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

package ast

// Clone deep-copies a Scope produced by the parser so the analyzer can
// mutate its own copy (resolving imports, rewriting state kinds,
// assigning implicit initial flags) while leaving the parse tree the
// caller passed in untouched (§3, "the analyzer clones and then
// mutates"). Resolved/Use.Resolved back-references are intentionally
// dropped: they are analysis output, not parse input.
func Clone(s *Scope) *Scope {
	out := &Scope{File: s.File}
	for _, imp := range s.Imports {
		out.Imports = append(out.Imports, &Import{Position: imp.Position, File: imp.File, Scope: out})
	}
	for _, m := range s.Machines {
		out.Machines = append(out.Machines, cloneMachine(m, out))
	}
	return out
}

func cloneMachine(m *Machine, scope *Scope) *Machine {
	nm := &Machine{Position: m.Position, ID: m.ID, Implicit: m.Implicit, Scope: scope}
	for _, t := range m.Transitions {
		nm.Transitions = append(nm.Transitions, cloneTransition(t))
	}
	for _, e := range m.EventProtocols {
		nm.EventProtocols = append(nm.EventProtocols, cloneProtocol(e))
	}
	for _, s := range m.States {
		nm.States = append(nm.States, cloneState(s, nil, nm))
	}
	return nm
}

func cloneState(s *State, parent *State, machine *Machine) *State {
	ns := &State{Position: s.Position, ID: s.ID, Kind: s.Kind, Initial: s.Initial, Parent: parent, Machine: machine}
	if s.Use != nil {
		ns.Use = &UseDirective{Position: s.Use.Position, MachineID: s.Use.MachineID}
	}
	for _, t := range s.Transitions {
		ns.Transitions = append(ns.Transitions, cloneTransition(t))
	}
	for _, e := range s.EventProtocols {
		ns.EventProtocols = append(ns.EventProtocols, cloneProtocol(e))
	}
	for _, c := range s.States {
		ns.States = append(ns.States, cloneState(c, ns, machine))
	}
	return ns
}

func cloneTransition(t *Transition) *Transition {
	return &Transition{Position: t.Position, Event: t.Event, Target: t.Target, Guard: t.Guard, Action: t.Action}
}

func cloneProtocol(e *EventProtocol) *EventProtocol {
	return &EventProtocol{Position: e.Position, Event: e.Event, Payload: e.Payload}
}
