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

// Package generator implements the §4.7 dispatch layer: a named
// registry of backends, each of which walks a validated set of Scopes
// and writes a textual artifact. Concrete backends live in the json and
// xstate sub-packages and register themselves in an init func, the way
// the teacher's internal/encoding dispatches among format encoders by
// build.Interpretation/build.Encoding (teacher: cue/load/fs.go's
// encoding.NewDecoder keyed off build.File.Encoding).
package generator

import (
	"fmt"
	"io"

	"wirestate.dev/wirestate/ast"
	"wirestate.dev/wirestate/errors"
	"wirestate.dev/wirestate/token"
)

// Config carries generator-wide options (§6's --disableCallbacks flag).
type Config struct {
	// DisableCallbacks suppresses action/guard function references in
	// backends that would otherwise emit them (currently just xstate).
	DisableCallbacks bool
}

// Backend emits one named artifact format. scopes is keyed by logical
// file path; order lists those keys in first-reference (insertion)
// order, since a Go map does not preserve one and the canonical output
// must (§6, "keys ... in insertion order").
type Backend interface {
	Generate(w io.Writer, scopes map[string]*ast.Scope, order []string, cfg Config) error
}

var registry = make(map[string]Backend)

// Register adds a backend under name. Called from sub-package init
// functions; a duplicate name is a programming error and panics, the
// same contract encoding.RegisterFileExtension uses in the teacher's
// tree for colliding format registrations.
func Register(name string, b Backend) {
	if _, exists := registry[name]; exists {
		panic("generator: backend " + name + " already registered")
	}
	registry[name] = b
}

// Dispatch looks up name in the registry and runs it. An unregistered
// name fails with UnknownGenerator (§7).
func Dispatch(name string, w io.Writer, scopes map[string]*ast.Scope, order []string, cfg Config) error {
	b, ok := registry[name]
	if !ok {
		return errors.Newf(errors.UnknownGenerator, token.NoPos, "unknown generator %q", name)
	}
	if err := b.Generate(w, scopes, order, cfg); err != nil {
		return fmt.Errorf("generator %q: %w", name, err)
	}
	return nil
}
