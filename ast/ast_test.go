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

import "testing"

func TestNormalizeEvent(t *testing.T) {
	tests := []struct{ in, want string }{
		{"a", "a"},
		{"a,b", "a,b"},
		{"b, a", "a,b"},
		{"b,a", "a,b"},
		{" x , y ", "x,y"},
		{"z,a,m", "a,m,z"},
	}
	for _, tt := range tests {
		if got := NormalizeEvent(tt.in); got != tt.want {
			t.Errorf("NormalizeEvent(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeEventIdempotent(t *testing.T) {
	for _, in := range []string{"a,b", "b, a", "z,a,m"} {
		once := NormalizeEvent(in)
		twice := NormalizeEvent(once)
		if once != twice {
			t.Errorf("NormalizeEvent not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestNormalizeEventCollision(t *testing.T) {
	if NormalizeEvent("a,b") != NormalizeEvent("b, a") {
		t.Errorf("%q and %q should normalize equal", "a,b", "b, a")
	}
}

func TestSiblingsMachineRoot(t *testing.T) {
	m := &Machine{ID: "M"}
	a := &State{ID: "A", Machine: m}
	b := &State{ID: "B", Machine: m}
	m.States = []*State{a, b}

	got := Siblings(a)
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("Siblings(a) = %v; want [a b]", got)
	}
}

func TestSiblingsNestedState(t *testing.T) {
	m := &Machine{ID: "M"}
	parent := &State{ID: "P", Machine: m}
	c1 := &State{ID: "C1", Parent: parent, Machine: m}
	c2 := &State{ID: "C2", Parent: parent, Machine: m}
	parent.States = []*State{c1, c2}
	m.States = []*State{parent}

	got := Siblings(c1)
	if len(got) != 2 || got[0] != c1 || got[1] != c2 {
		t.Errorf("Siblings(c1) = %v; want [c1 c2]", got)
	}
}

func TestMachineAndStateLookup(t *testing.T) {
	scope := &Scope{File: "x.ws"}
	m := &Machine{ID: "M", Scope: scope}
	scope.Machines = []*Machine{m}

	if scope.Machine("M") != m {
		t.Errorf("Scope.Machine(%q) did not find the machine", "M")
	}
	if scope.Machine("Missing") != nil {
		t.Errorf("Scope.Machine(%q) = non-nil; want nil", "Missing")
	}

	a := &State{ID: "A", Machine: m}
	m.States = []*State{a}
	if m.State("A") != a {
		t.Errorf("Machine.State(%q) did not find the state", "A")
	}
	b := &State{ID: "B", Parent: a, Machine: m}
	a.States = []*State{b}
	if a.State("B") != b {
		t.Errorf("State.State(%q) did not find the child state", "B")
	}
	if a.State("Missing") != nil {
		t.Errorf("State.State(%q) = non-nil; want nil", "Missing")
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{Atomic, "atomic"},
		{Compound, "compound"},
		{Parallel, "parallel"},
		{Transient, "transient"},
		{Final, "final"},
		{Kind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q; want %q", tt.kind, got, tt.want)
		}
	}
}

func TestClonePreservesShapeDropsResolution(t *testing.T) {
	scope := &Scope{File: "root.ws"}
	scope.Imports = []*Import{{File: "./other.ws", Scope: scope}}

	m := &Machine{ID: "M", Scope: scope}
	parent := &State{ID: "P", Machine: m, Initial: true}
	child := &State{ID: "C", Parent: parent, Machine: m, Use: &UseDirective{MachineID: "Other"}}
	parent.States = []*State{child}
	tr := &Transition{Event: "go", Target: "P.C", Resolved: child}
	parent.Transitions = []*Transition{tr}
	m.States = []*State{parent}
	scope.Machines = []*Machine{m}

	clone := Clone(scope)

	if clone == scope {
		t.Fatal("Clone returned the same Scope pointer")
	}
	if len(clone.Imports) != 1 || clone.Imports[0].File != "./other.ws" {
		t.Errorf("clone.Imports = %+v; want one import for ./other.ws", clone.Imports)
	}
	if clone.Imports[0].Scope != clone {
		t.Errorf("cloned Import.Scope does not point at the cloned Scope")
	}

	cm := clone.Machines[0]
	if cm == m {
		t.Fatal("cloned Machine is the same pointer as the original")
	}
	cp := cm.States[0]
	cc := cp.States[0]
	if cc.Parent != cp {
		t.Errorf("cloned child's Parent = %v; want the cloned parent", cc.Parent)
	}
	if cc.Use == nil || cc.Use.MachineID != "Other" {
		t.Errorf("cloned Use directive lost: %+v", cc.Use)
	}
	if cc.Use.Resolved != nil {
		t.Errorf("cloned Use.Resolved = %v; want nil (analysis output, not parse input)", cc.Use.Resolved)
	}
	if cp.Transitions[0].Resolved != nil {
		t.Errorf("cloned Transition.Resolved = %v; want nil", cp.Transitions[0].Resolved)
	}
	if cp.Transitions[0].Target != "P.C" {
		t.Errorf("cloned Transition.Target = %q; want %q", cp.Transitions[0].Target, "P.C")
	}

	// Mutating the clone must not affect the original.
	cp.Initial = false
	if !parent.Initial {
		t.Errorf("mutating clone.Initial affected the original Scope")
	}
}
