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

// Package resolve implements the transition-target resolution rules of
// §4.5: a side-effect-free tree search over an already-parsed Machine,
// kept separate from the analyzer pass that invokes it and records the
// result on a Transition.
package resolve

import "wirestate.dev/wirestate/ast"

// Target resolves a dot-separated, possibly wildcarded path to a State
// within machine, in the context of the node that owns the transition:
// owner is the enclosing State, or nil when the transition is a direct
// child of the Machine. It tries, in order:
//
//  1. Absolute-from-machine: path's first segment names the machine itself.
//  2. Sibling: the full path as a descendant chain from owner's siblings.
//  3. Ancestor walk: the full path as a descendant chain from each
//     ancestor's children, walking up to the machine root.
//
// A "*" path segment matches any single state name at that level; the
// first document-order match wins. Target reports false if no rule
// resolves the path.
func Target(machine *ast.Machine, owner *ast.State, path string) (*ast.State, bool) {
	segs := splitPath(path)
	if len(segs) == 0 {
		return nil, false
	}

	if segs[0] == machine.ID {
		if s, ok := descend(machine.States, segs[1:]); ok {
			return s, true
		}
	}

	siblings := machine.States
	if owner != nil {
		siblings = ast.Siblings(owner)
	}
	if s, ok := descend(siblings, segs); ok {
		return s, true
	}

	for cur := owner; cur != nil; cur = cur.Parent {
		var children []*ast.State
		if cur.Parent != nil {
			children = cur.Parent.States
		} else {
			children = machine.States
		}
		if s, ok := descend(children, segs); ok {
			return s, true
		}
	}

	return nil, false
}

// descend walks children by successive path segments, matching a literal
// segment against a state's ID or a "*" segment against any single state,
// first document-order match wins at each level.
func descend(children []*ast.State, segs []string) (*ast.State, bool) {
	if len(segs) == 0 {
		return nil, false
	}
	var match *ast.State
	for _, c := range children {
		if segs[0] == "*" || c.ID == segs[0] {
			match = c
			break
		}
	}
	if match == nil {
		return nil, false
	}
	if len(segs) == 1 {
		return match, true
	}
	return descend(match.States, segs[1:])
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	var segs []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			segs = append(segs, path[start:i])
			start = i + 1
		}
	}
	segs = append(segs, path[start:])
	return segs
}
