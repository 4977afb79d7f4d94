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

// Package json implements the "json" generator backend (§4.7): a
// canonical, byte-stable tree serialization of every analyzed scope.
// Key ordering comes from encoding/json's own rule of emitting struct
// fields in declaration order, so no custom sort is needed anywhere in
// this package.
package json

import (
	"encoding/json"
	"io"
	"strings"

	"wirestate.dev/wirestate/ast"
	"wirestate.dev/wirestate/generator"
)

func init() {
	generator.Register("json", backend{})
}

type backend struct{}

// orderedScopes is the top-level shape: an ordered list of (file, scope)
// pairs marshaled as a JSON object whose keys appear in that order.
// encoding/json has no ordered-map type, so orderedScopes implements
// MarshalJSON directly to control key order rather than relying on
// struct field order at this one level.
type orderedScopes struct {
	order  []string
	scopes map[string]*ast.Scope
}

func (o orderedScopes) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, key := range o.order {
		if i > 0 {
			b.WriteByte(',')
		}
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		b.Write(keyJSON)
		b.WriteByte(':')
		valJSON, err := json.Marshal(newScopeDoc(o.scopes[key]))
		if err != nil {
			return nil, err
		}
		b.Write(valJSON)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

type scopeDoc struct {
	Machines []machineDoc `json:"machines"`
}

type machineDoc struct {
	ID             string          `json:"id"`
	States         []stateDoc      `json:"states"`
	Transitions    []transitionDoc `json:"transitions"`
	EventProtocols []protocolDoc   `json:"eventProtocols"`
}

type stateDoc struct {
	ID             string          `json:"id"`
	Kind           string          `json:"kind"`
	Initial        bool            `json:"initial"`
	States         []stateDoc      `json:"states"`
	Transitions    []transitionDoc `json:"transitions"`
	EventProtocols []protocolDoc   `json:"eventProtocols"`
	Use            *useDoc         `json:"use,omitempty"`
}

type transitionDoc struct {
	Event  string `json:"event"`
	Target string `json:"target"`
	Guard  string `json:"guard,omitempty"`
	Action string `json:"action,omitempty"`
}

type protocolDoc struct {
	Event   string `json:"event"`
	Payload string `json:"payload,omitempty"`
}

type useDoc struct {
	MachineID string `json:"machineId"`
}

func (backend) Generate(w io.Writer, scopes map[string]*ast.Scope, order []string, _ generator.Config) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(orderedScopes{order: order, scopes: scopes})
}

func newScopeDoc(s *ast.Scope) scopeDoc {
	var doc scopeDoc
	for _, m := range s.Machines {
		doc.Machines = append(doc.Machines, newMachineDoc(m))
	}
	return doc
}

func newMachineDoc(m *ast.Machine) machineDoc {
	doc := machineDoc{ID: m.ID}
	for _, s := range m.States {
		doc.States = append(doc.States, newStateDoc(s))
	}
	for _, t := range m.Transitions {
		doc.Transitions = append(doc.Transitions, newTransitionDoc(t))
	}
	for _, e := range m.EventProtocols {
		doc.EventProtocols = append(doc.EventProtocols, newProtocolDoc(e))
	}
	return doc
}

func newStateDoc(s *ast.State) stateDoc {
	doc := stateDoc{ID: s.ID, Kind: s.Kind.String(), Initial: s.Initial}
	for _, c := range s.States {
		doc.States = append(doc.States, newStateDoc(c))
	}
	for _, t := range s.Transitions {
		doc.Transitions = append(doc.Transitions, newTransitionDoc(t))
	}
	for _, e := range s.EventProtocols {
		doc.EventProtocols = append(doc.EventProtocols, newProtocolDoc(e))
	}
	if s.Use != nil {
		doc.Use = &useDoc{MachineID: s.Use.MachineID}
	}
	return doc
}

func newTransitionDoc(t *ast.Transition) transitionDoc {
	target := t.Target
	if t.Resolved != nil {
		target = relativePath(t.Resolved)
	}
	return transitionDoc{
		Event:  ast.NormalizeEvent(t.Event),
		Target: target,
		Guard:  t.Guard,
		Action: t.Action,
	}
}

func newProtocolDoc(e *ast.EventProtocol) protocolDoc {
	return protocolDoc{Event: ast.NormalizeEvent(e.Event), Payload: e.Payload}
}

// relativePath renders the dot-path from s's machine root down to s,
// per §6's canonical JSON shape ("target rendered as the dot-path to
// the resolved state relative to its machine").
func relativePath(s *ast.State) string {
	var segs []string
	for cur := s; cur != nil; cur = cur.Parent {
		segs = append([]string{cur.ID}, segs...)
	}
	return strings.Join(segs, ".")
}
