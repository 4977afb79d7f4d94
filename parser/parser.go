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

// Package parser implements the recursive-descent parser for WireState
// source text (spec §4.3), producing one *ast.Scope per file.
package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"wirestate.dev/wirestate/ast"
	"wirestate.dev/wirestate/errors"
	"wirestate.dev/wirestate/scanner"
	"wirestate.dev/wirestate/token"
)

// Option configures a parse. Modeled on cuelang.org/go/cue/parser's
// functional-options set, trimmed to what this grammar uses.
type Option func(*parser)

// Trace causes the parser to print each token it reads to standard
// output, useful when debugging a grammar change.
var Trace Option = func(p *parser) { p.trace = true }

type parser struct {
	file    *token.File
	scanner scanner.Scanner
	trace   bool
	depth   int

	pos token.Pos
	tok token.Token
	lit string
}

// ParseFile parses one WireState source file and returns its Scope. Per
// §4.3, a SyntaxError aborts parsing of this file immediately; it does
// not attempt error recovery. Any LexicalError the scanner collected
// along the way is attached to the returned error list.
func ParseFile(filename string, src []byte, opts ...Option) (*ast.Scope, error) {
	p := &parser{file: token.NewFile(filename)}
	for _, opt := range opts {
		opt(p)
	}
	p.scanner.Init(p.file, src)
	p.next()

	scope := &ast.Scope{File: filename}
	err := p.parseScope(scope, filename)

	var errs errors.List
	for _, e := range p.scanner.Errors() {
		errs.Add(e)
	}
	if err != nil {
		if se, ok := err.(errors.Error); ok {
			errs.Add(se)
		} else {
			return scope, err
		}
	}
	return scope, errs.Err()
}

func (p *parser) next() {
	p.pos, p.tok, p.lit = p.scanner.Scan()
	if p.trace {
		fmt.Printf("%*s%-8s %q\n", p.depth*2, "", p.tok, p.lit)
	}
}

func (p *parser) errorf(pos token.Pos, format string, args ...interface{}) error {
	return errors.Newf(errors.Syntax, pos, format, args...)
}

func (p *parser) expect(tok token.Token) (token.Pos, error) {
	pos := p.pos
	if p.tok != tok {
		return pos, p.errorf(p.pos, "expected %s, got %s %q", tok, p.tok, p.lit)
	}
	p.next()
	return pos, nil
}

// parseScope implements Scope := { Import | Machine }*, with the
// implicit-single-machine fallback described in §4.3.
func (p *parser) parseScope(scope *ast.Scope, filename string) error {
	var implicit *ast.Machine

	for p.tok != token.EOF {
		switch {
		case p.tok == token.AtDirective && p.lit == "include":
			imp, err := p.parseImport(scope)
			if err != nil {
				return err
			}
			scope.Imports = append(scope.Imports, imp)

		case p.tok == token.AtDirective && p.lit == "machine":
			m, err := p.parseMachine(scope)
			if err != nil {
				return err
			}
			scope.Machines = append(scope.Machines, m)

		default:
			if implicit == nil {
				base := filepath.Base(filename)
				base = strings.TrimSuffix(base, filepath.Ext(base))
				implicit = &ast.Machine{Position: p.pos, ID: base, Implicit: true, Scope: scope}
				scope.Machines = append(scope.Machines, implicit)
			}
			if err := p.parseMachineBodyItem(implicit); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *parser) parseImport(scope *ast.Scope) (*ast.Import, error) {
	pos := p.pos
	p.next() // consume '@include'
	if p.tok != token.StringLiteral {
		return nil, p.errorf(p.pos, "expected a quoted path after @include, got %s", p.tok)
	}
	file := p.lit
	p.next()
	if _, err := p.expect(token.Newline); err != nil {
		return nil, err
	}
	return &ast.Import{Position: pos, File: file, Scope: scope}, nil
}

// parseMachine implements Machine := '@machine' Identifier Newline Indent StateBody Dedent.
func (p *parser) parseMachine(scope *ast.Scope) (*ast.Machine, error) {
	pos := p.pos
	p.next() // consume '@machine'
	if p.tok != token.Identifier {
		return nil, p.errorf(p.pos, "expected a machine name after @machine, got %s", p.tok)
	}
	id := p.lit
	p.next()
	if _, err := p.expect(token.Newline); err != nil {
		return nil, err
	}
	m := &ast.Machine{Position: pos, ID: id, Scope: scope}

	if p.tok != token.Indent {
		// An @machine with no body is legal: zero states.
		return m, nil
	}
	p.next()
	for p.tok != token.Dedent && p.tok != token.EOF {
		if err := p.parseMachineBodyItem(m); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.Dedent); err != nil {
		return nil, err
	}
	return m, nil
}

// parseMachineBodyItem parses one element of a Machine's StateBody where
// there is no enclosing State to attach a @use directive to.
func (p *parser) parseMachineBodyItem(m *ast.Machine) error {
	switch {
	case p.tok == token.AtDirective && p.lit == "use":
		return p.errorf(p.pos, "@use is only valid inside a state")

	case p.tok == token.Identifier:
		node, err := p.parseStateBodyLine(m, nil)
		if err != nil {
			return err
		}
		switch n := node.(type) {
		case *ast.State:
			n.Machine = m
			m.States = append(m.States, n)
		case *ast.Transition:
			m.Transitions = append(m.Transitions, n)
		case *ast.EventProtocol:
			m.EventProtocols = append(m.EventProtocols, n)
		}
		return nil

	default:
		return p.errorf(p.pos, "unexpected %s %q in machine body", p.tok, p.lit)
	}
}

// parseState implements:
//
//	State := Identifier [Marker] Newline [ Indent StateBody Dedent ]
//
// firstPos/firstID is the already-consumed leading Identifier.
func (p *parser) parseState(machine *ast.Machine, parent *ast.State, firstPos token.Pos, firstID string, marker string) (*ast.State, error) {
	s := &ast.State{Position: firstPos, ID: firstID, Parent: parent, Machine: machine}
	switch marker {
	case "":
		s.Kind = ast.Atomic
	case "*":
		s.Kind = ast.Atomic
		s.Initial = true
	case "?":
		s.Kind = ast.Transient
	case "!":
		s.Kind = ast.Final
	case "&":
		s.Kind = ast.Parallel
	default:
		return nil, p.errorf(firstPos, "unknown state marker %q", marker)
	}

	if _, err := p.expect(token.Newline); err != nil {
		return nil, err
	}

	if p.tok != token.Indent {
		return s, nil
	}
	p.next()
	for p.tok != token.Dedent && p.tok != token.EOF {
		if err := p.parseStateBodyItem(s); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.Dedent); err != nil {
		return nil, err
	}
	return s, nil
}

// parseStateBodyItem parses one element of a State's StateBody, where a
// @use directive is legal and attaches to this State.
func (p *parser) parseStateBodyItem(s *ast.State) error {
	switch {
	case p.tok == token.AtDirective && p.lit == "use":
		pos := p.pos
		p.next()
		if p.tok != token.Identifier {
			return p.errorf(p.pos, "expected a machine name after @use, got %s", p.tok)
		}
		mid := p.lit
		p.next()
		if _, err := p.expect(token.Newline); err != nil {
			return err
		}
		if s.Use != nil {
			return p.errorf(pos, "state %q already has a @use directive", s.ID)
		}
		s.Use = &ast.UseDirective{Position: pos, MachineID: mid}
		return nil

	case p.tok == token.Identifier:
		node, err := p.parseStateBodyLine(s.Machine, s)
		if err != nil {
			return err
		}
		switch n := node.(type) {
		case *ast.State:
			s.States = append(s.States, n)
		case *ast.Transition:
			s.Transitions = append(s.Transitions, n)
		case *ast.EventProtocol:
			s.EventProtocols = append(s.EventProtocols, n)
		}
		return nil

	default:
		return p.errorf(p.pos, "unexpected %s %q in state body", p.tok, p.lit)
	}
}

// parseStateBodyLine disambiguates a State / Transition / EventProtocol
// line, all of which begin with an Identifier, by looking at the token
// immediately following it: Comma/Arrow/Colon mean an event line,
// StateMarker or Newline mean a state declaration.
func (p *parser) parseStateBodyLine(machine *ast.Machine, parent *ast.State) (ast.Node, error) {
	firstPos := p.pos
	firstID := p.lit
	p.next() // consume the leading Identifier

	switch p.tok {
	case token.Comma, token.Arrow, token.Colon:
		return p.parseEventLine(firstPos, firstID)
	case token.StateMarker:
		marker := p.lit
		p.next()
		return p.parseState(machine, parent, firstPos, firstID, marker)
	case token.Newline:
		return p.parseState(machine, parent, firstPos, firstID, "")
	default:
		return nil, p.errorf(p.pos, "unexpected %s %q after identifier %q", p.tok, p.lit, firstID)
	}
}

// parseEventLine implements both:
//
//	Transition    := Event '->' Target [ Colon GuardText ] Newline
//	EventProtocol := Event [ Colon Payload ] Newline
//
// where Event is a comma-separated list of names, only the first of
// which (firstID) has already been consumed.
func (p *parser) parseEventLine(firstPos token.Pos, firstID string) (ast.Node, error) {
	event := firstID
	for p.tok == token.Comma {
		p.next()
		if p.tok != token.Identifier {
			return nil, p.errorf(p.pos, "expected an event name after ',', got %s", p.tok)
		}
		event += "," + p.lit
		p.next()
	}

	switch p.tok {
	case token.Arrow:
		p.next()
		target, err := p.parseTargetPath()
		if err != nil {
			return nil, err
		}
		guard := ""
		if p.tok == token.Colon {
			guard = strings.TrimSpace(p.scanner.RestOfLine())
			p.next()
		}
		if _, err := p.expect(token.Newline); err != nil {
			return nil, err
		}
		return &ast.Transition{Position: firstPos, Event: event, Target: target, Guard: guard}, nil

	case token.Colon:
		payload := strings.TrimSpace(p.scanner.RestOfLine())
		p.next()
		if _, err := p.expect(token.Newline); err != nil {
			return nil, err
		}
		return &ast.EventProtocol{Position: firstPos, Event: event, Payload: payload}, nil

	case token.Newline:
		p.next()
		return &ast.EventProtocol{Position: firstPos, Event: event}, nil

	default:
		return nil, p.errorf(p.pos, "unexpected %s %q in event declaration", p.tok, p.lit)
	}
}

// parseTargetPath consumes the dotted target path after a transition's
// '->': a run of Identifier and wildcard-StateMarker ("*") tokens,
// concatenated verbatim, up to the next Colon or Newline (§4.5).
func (p *parser) parseTargetPath() (string, error) {
	var b strings.Builder
	if p.tok != token.Identifier && !(p.tok == token.StateMarker && p.lit == "*") {
		return "", p.errorf(p.pos, "expected a transition target, got %s", p.tok)
	}
	for p.tok == token.Identifier || (p.tok == token.StateMarker && p.lit == "*") {
		b.WriteString(p.lit)
		p.next()
	}
	return b.String(), nil
}
