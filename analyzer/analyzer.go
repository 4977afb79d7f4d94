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

// Package analyzer implements the semantic validation pass of §4.4: it
// takes a parsed Scope and returns a validated clone, resolving imports
// and `@use` directives through the Cache (§4.6) defined alongside it.
package analyzer

import (
	"context"

	"golang.org/x/sync/errgroup"

	"wirestate.dev/wirestate/ast"
	"wirestate.dev/wirestate/errors"
	"wirestate.dev/wirestate/parser"
	"wirestate.dev/wirestate/resolve"
	"wirestate.dev/wirestate/source"
	"wirestate.dev/wirestate/token"
)

// Config carries the parameters of a compile that the analyzer and the
// import machinery it drives need.
type Config struct {
	// SearchDirs are tried in order to resolve a project-relative
	// @include path (§4.1).
	SearchDirs []string
}

// Analyze validates scope and every machine it declares, per §4.4's
// ordered checklist, returning a mutated clone. It registers scope's
// imports with cache but does not await their analysis; only `@use`
// resolution later blocks on a specific imported scope. The analyzer
// collects at most one error per scope analysis (§7): the first check
// that fails aborts and returns immediately.
func Analyze(ctx context.Context, scope *ast.Scope, cache *Cache, cfg Config) (*ast.Scope, error) {
	clone := ast.Clone(scope)

	seen := make(map[string]token.Pos, len(clone.Machines))
	for _, m := range clone.Machines {
		if prev, ok := seen[m.ID]; ok {
			return nil, errors.Newf(errors.Semantic, m.Position,
				"duplicate machine %q (first declared at %s)", m.ID, prev)
		}
		seen[m.ID] = m.Position
	}

	dispatchImports(ctx, clone, cache, cfg)

	for _, m := range clone.Machines {
		if err := validateSiblings(m.States, m.Transitions, m.EventProtocols, m, nil); err != nil {
			return nil, err
		}
		if err := resolveUseDirectives(clone, m.States, cache, cfg); err != nil {
			return nil, err
		}
	}

	return clone, nil
}

// dispatchImports registers every import in scope with cache and, for
// each one this call newly registers, launches a goroutine that reads,
// parses, and recursively analyzes the imported file before resolving
// the future. It returns as soon as registration completes — it does
// not wait for the errgroup, matching §4.4 step 2's ordering rule.
func dispatchImports(ctx context.Context, scope *ast.Scope, cache *Cache, cfg Config) {
	g, gctx := errgroup.WithContext(ctx)
	_ = gctx // no per-import cancellation signal is threaded further; see source.Read.

	for _, imp := range scope.Imports {
		imp := imp
		f, created := cache.Register(imp.File)
		_ = f
		if !created {
			continue
		}
		g.Go(func() error {
			absPath, data, err := source.Read(imp.File, scope.File, cfg.SearchDirs)
			if err != nil {
				cache.ResolveParsed(imp.File, nil, err)
				cache.ResolveFinal(imp.File, nil, err)
				return nil
			}
			imp.ResolvedFile = absPath

			importScope, err := parser.ParseFile(absPath, data)
			if err != nil {
				cache.ResolveParsed(imp.File, nil, err)
				cache.ResolveFinal(imp.File, nil, err)
				return nil
			}
			// Publish the parsed-but-not-yet-validated scope immediately: a
			// cyclic @use lookup that loops back here only needs the machine
			// list, and must not wait on this file's own deep validation,
			// which may itself be blocked awaiting the other side of the
			// cycle.
			cache.ResolveParsed(imp.File, importScope, nil)

			analyzed, err := Analyze(ctx, importScope, cache, cfg)
			cache.ResolveFinal(imp.File, analyzed, err)
			return nil
		})
	}
	// Deliberately not g.Wait(): §4.4 step 2 requires only that imports be
	// registered before this function returns, so later @use lookups can
	// await the in-flight future. Each goroutine resolves its own future
	// and needs no join here.
}

// validateSiblings applies §4.4's per-node checks to one State/Machine
// level and recurses into each child state. machine identifies the
// enclosing machine (for target resolution); parent is the State that
// contains this level's states, or nil at machine level.
func validateSiblings(states []*ast.State, transitions []*ast.Transition, protocols []*ast.EventProtocol, machine *ast.Machine, parent *ast.State) error {
	byID := make(map[string]token.Pos, len(states))
	for _, s := range states {
		if prev, ok := byID[s.ID]; ok {
			return errors.Newf(errors.Semantic, s.Position,
				"duplicate state %q (first declared at %s)", s.ID, prev)
		}
		byID[s.ID] = s.Position
	}

	if err := checkEventUniqueness("transition", transitions, func(t *ast.Transition) (token.Pos, string) {
		return t.Position, t.Event
	}); err != nil {
		return err
	}
	if err := checkEventUniqueness("event protocol", protocols, func(e *ast.EventProtocol) (token.Pos, string) {
		return e.Position, e.Event
	}); err != nil {
		return err
	}

	var owner *ast.State
	if parent != nil {
		owner = parent
	}
	for _, t := range transitions {
		target, ok := resolve.Target(machine, owner, t.Target)
		if !ok {
			return errors.Newf(errors.Semantic, t.Position, "unresolved transition target %q", t.Target)
		}
		t.Resolved = target
	}

	initialPos := token.Pos{}
	haveInitial := false
	for _, s := range states {
		if !s.Initial {
			continue
		}
		if haveInitial {
			return errors.Newf(errors.Semantic, s.Position,
				"more than one initial state (first at %s)", initialPos)
		}
		haveInitial = true
		initialPos = s.Position
	}
	if !haveInitial && len(states) > 0 {
		states[0].Initial = true
	}

	for _, s := range states {
		if s.Kind == ast.Atomic && len(s.States) > 0 {
			s.Kind = ast.Compound
		}
		if s.Kind == ast.Transient && len(s.States) > 0 {
			return errors.Newf(errors.Semantic, s.Position,
				"transient state %q may not have children", s.ID)
		}
		if err := validateSiblings(s.States, s.Transitions, s.EventProtocols, machine, s); err != nil {
			return err
		}
	}
	return nil
}

func checkEventUniqueness[T any](label string, items []T, get func(T) (token.Pos, string)) error {
	seen := make(map[string]token.Pos, len(items))
	for _, it := range items {
		pos, event := get(it)
		key := ast.NormalizeEvent(event)
		if prev, ok := seen[key]; ok {
			return errors.Newf(errors.Semantic, pos,
				"duplicate %s for event %q (first declared at %s)", label, key, prev)
		}
		seen[key] = pos
	}
	return nil
}

// resolveUseDirectives walks states looking for `@use` directives and
// resolves each one against the same scope or a transitively imported
// scope, per §4.4 step 3's last bullet.
func resolveUseDirectives(scope *ast.Scope, states []*ast.State, cache *Cache, cfg Config) error {
	for _, s := range states {
		if s.Use != nil {
			visited := map[string]bool{scope.File: true}
			m, err := findMachine(scope, s.Use.MachineID, cache, visited)
			if err != nil {
				return err
			}
			if m == nil {
				return errors.Newf(errors.Semantic, s.Use.Position,
					"@use %q: no such machine in this scope or its imports", s.Use.MachineID)
			}
			s.Use.Resolved = m
		}
		if err := resolveUseDirectives(scope, s.States, cache, cfg); err != nil {
			return err
		}
	}
	return nil
}

// findMachine searches scope, then each transitively imported scope not
// already visited, for a machine named id. It awaits only the parsed
// phase of an import's future (GetForUse), never the fully-validated
// one: on an import cycle the other side may currently be blocked
// inside its own findMachine call waiting on this scope, so waiting
// here for its deep validation to finish would deadlock. The machine
// list is already complete at the parsed phase, which is all a `@use`
// lookup needs. visited guards the search itself against looping
// forever through the cycle.
func findMachine(scope *ast.Scope, id string, cache *Cache, visited map[string]bool) (*ast.Machine, error) {
	if m := scope.Machine(id); m != nil {
		return m, nil
	}
	for _, imp := range scope.Imports {
		if visited[imp.File] {
			continue
		}
		visited[imp.File] = true
		importScope, err := cache.GetForUse(imp.File)
		if err != nil {
			return nil, err
		}
		if importScope == nil {
			continue
		}
		if m, err := findMachine(importScope, id, cache, visited); err != nil || m != nil {
			return m, err
		}
	}
	return nil, nil
}
