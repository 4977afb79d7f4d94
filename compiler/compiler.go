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

// Package compiler wires the source reader, tokenizer, parser, analyzer,
// and generator dispatcher into the single top-level Compile entry point
// described in §2 and §5.
package compiler

import (
	"bytes"
	"context"
	"os"

	"wirestate.dev/wirestate/analyzer"
	"wirestate.dev/wirestate/ast"
	"wirestate.dev/wirestate/errors"
	"wirestate.dev/wirestate/generator"
	_ "wirestate.dev/wirestate/generator/json"   // registers the "json" backend
	_ "wirestate.dev/wirestate/generator/xstate" // registers the "xstate" backend
	"wirestate.dev/wirestate/parser"
	"wirestate.dev/wirestate/token"
)

// Config carries everything a compile needs beyond the entry file path.
type Config struct {
	// SearchDirs are tried in order to resolve a project-relative
	// @include path (§4.1); typically just --srcDir.
	SearchDirs []string
	// CacheDir is accepted and threaded through unused, per §1's
	// Non-goals: the on-disk cache persistence format is an external
	// collaborator this core does not implement.
	CacheDir string
	// Generator names the backend to dispatch to (§4.7); default "json"
	// is the caller's responsibility to supply.
	Generator string
	// DisableCallbacks toggles whether the xstate backend emits
	// action/guard function references.
	DisableCallbacks bool
}

// Compile reads entryFile, resolves its imports, validates the resulting
// statechart graph, and returns the named generator's rendering of it.
// ctx is passed through to the analyzer, but no stage checks it, so
// cancelling it does not stop a compile: the pipeline has no
// cancellation points of its own (§5).
func Compile(ctx context.Context, entryFile string, cfg Config) ([]byte, error) {
	data, err := os.ReadFile(entryFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.NotFound, token.NoPos, "%s: not found", entryFile)
		}
		return nil, errors.Wrap(token.NoPos, err, "reading %s", entryFile)
	}

	scope, err := parser.ParseFile(entryFile, data)
	if err != nil {
		return nil, err
	}

	cache := analyzer.NewCache()
	analyzed, err := analyzer.Analyze(ctx, scope, cache, analyzer.Config{SearchDirs: cfg.SearchDirs})
	if err != nil {
		return nil, err
	}

	scopes := map[string]*ast.Scope{entryFile: analyzed}
	order := []string{entryFile}
	if err := collectImports(analyzed, cache, scopes, &order, map[string]bool{entryFile: true}); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := generator.Dispatch(cfg.Generator, &buf, scopes, order, generator.Config{
		DisableCallbacks: cfg.DisableCallbacks,
	}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// collectImports walks scope's import graph, pulling each already
// cache-resolved Scope into scopes/order in first-reference order. It
// guards against revisiting the same logical file twice, which both
// avoids duplicate generator output and terminates on import cycles. An
// import that failed to read, parse, or analyze surfaces its error here
// even if nothing in the graph ever awaited it through a @use directive.
func collectImports(scope *ast.Scope, cache *analyzer.Cache, scopes map[string]*ast.Scope, order *[]string, visited map[string]bool) error {
	for _, imp := range scope.Imports {
		if visited[imp.File] {
			continue
		}
		visited[imp.File] = true

		importScope, err := cache.GetFinal(imp.File)
		if err != nil {
			return err
		}
		if importScope == nil {
			continue
		}
		scopes[imp.File] = importScope
		*order = append(*order, imp.File)
		if err := collectImports(importScope, cache, scopes, order, visited); err != nil {
			return err
		}
	}
	return nil
}
