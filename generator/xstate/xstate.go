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

// Package xstate implements the "xstate" generator backend (§4.7): it
// emits source text describing each machine for an external statechart
// interpreter to consume. The interpreter itself, and the exact grammar
// of its glue code, are out-of-scope collaborators per §1 — this
// backend only has to produce a well-formed, self-consistent rendering
// of the validated tree; it never executes anything.
package xstate

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"wirestate.dev/wirestate/ast"
	"wirestate.dev/wirestate/generator"
)

func init() {
	generator.Register("xstate", backend{})
}

type backend struct{}

// machineTmpl renders one machine as an XState-style configuration
// object literal. The states block is rendered recursively in Go
// beforehand (renderStates) and dropped in as a single pre-indented
// field, rather than taught to a nested template, since XState's
// recursive state/transition shape is more directly expressed as plain
// Go string-building than as nested text/template sub-templates.
var machineTmpl = template.Must(template.New("machine").Parse(
	`// generated from {{.File}}
export const {{.Machine.ID}} = {
  id: {{printf "%q" .Machine.ID}},
{{- if .InitialID}}
  initial: {{printf "%q" .InitialID}},
  states: {
{{.StatesBlock}}
  },
{{- end}}
};
`))

type machineView struct {
	File        string
	Machine     *ast.Machine
	InitialID   string
	StatesBlock string
}

func (backend) Generate(w io.Writer, scopes map[string]*ast.Scope, order []string, cfg generator.Config) error {
	for _, key := range order {
		scope := scopes[key]
		for _, m := range scope.Machines {
			view := machineView{
				File:        key,
				Machine:     m,
				InitialID:   initialID(m),
				StatesBlock: renderStates(m.States, cfg.DisableCallbacks, 2),
			}
			if err := machineTmpl.Execute(w, view); err != nil {
				return err
			}
		}
	}
	return nil
}

func initialID(m *ast.Machine) string {
	for _, s := range m.States {
		if s.Initial {
			return s.ID
		}
	}
	if len(m.States) > 0 {
		return m.States[0].ID
	}
	return ""
}

// renderStates recursively renders a level of sibling states as an
// XState `states` object body, indented by depth*2 spaces.
func renderStates(states []*ast.State, disableCallbacks bool, depth int) string {
	pad := strings.Repeat(" ", depth*2)
	var b strings.Builder
	for i, s := range states {
		fmt.Fprintf(&b, "%s%q: {\n", pad, s.ID)
		fmt.Fprintf(&b, "%s  type: %q,\n", pad, s.Kind.String())
		if len(s.Transitions) > 0 {
			fmt.Fprintf(&b, "%s  on: {\n", pad)
			for _, t := range s.Transitions {
				target := t.Target
				if t.Resolved != nil {
					target = relativeTarget(t.Resolved)
				}
				fmt.Fprintf(&b, "%s    %q: %s,\n", pad, ast.NormalizeEvent(t.Event), renderTransitionTarget(target, t, disableCallbacks))
			}
			fmt.Fprintf(&b, "%s  },\n", pad)
		}
		if len(s.States) > 0 {
			childInitial := initialChild(s.States)
			fmt.Fprintf(&b, "%s  initial: %q,\n", pad, childInitial)
			fmt.Fprintf(&b, "%s  states: {\n", pad)
			b.WriteString(renderStates(s.States, disableCallbacks, depth+2))
			fmt.Fprintf(&b, "%s  },\n", pad)
		}
		fmt.Fprintf(&b, "%s}", pad)
		if i < len(states)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func initialChild(states []*ast.State) string {
	for _, s := range states {
		if s.Initial {
			return s.ID
		}
	}
	if len(states) > 0 {
		return states[0].ID
	}
	return ""
}

func renderTransitionTarget(target string, t *ast.Transition, disableCallbacks bool) string {
	if disableCallbacks || (t.Guard == "" && t.Action == "") {
		return fmt.Sprintf("%q", target)
	}
	var parts []string
	parts = append(parts, fmt.Sprintf("target: %q", target))
	if t.Guard != "" {
		parts = append(parts, fmt.Sprintf("cond: %q", t.Guard))
	}
	if t.Action != "" {
		parts = append(parts, fmt.Sprintf("actions: %q", t.Action))
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func relativeTarget(s *ast.State) string {
	var segs []string
	for cur := s; cur != nil; cur = cur.Parent {
		segs = append([]string{cur.ID}, segs...)
	}
	return strings.Join(segs, ".")
}
