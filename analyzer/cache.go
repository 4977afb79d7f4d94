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

package analyzer

import (
	"sync"

	"wirestate.dev/wirestate/ast"
)

// future holds the in-flight or completed result of analyzing one
// logical file, in two phases:
//
//   - parsed resolves the moment the file has been read and parsed,
//     before deep per-node validation runs, and carries a Scope whose
//     Machine/State headers exist but whose transitions are not yet
//     resolved.
//   - final resolves once the full analyzer pass (§4.4) has completed.
//
// The two-phase split is what makes an import cycle terminate instead
// of deadlocking: `@use` resolution (findMachine) only needs a target
// scope's machine list to exist, so it awaits the parsed phase, which
// resolves near-instantly relative to the (possibly cycle-involving)
// deep validation that follows it. Only the final generator dispatch,
// which needs fully resolved transitions, awaits the final phase.
//
// This is a hand-rolled promise rather than golang.org/x/sync/singleflight:
// singleflight.Group.Do forgets a key's in-flight call once every caller
// that joined it has returned, so a cycle's return-leg lookup would not
// reliably see the entry if the original call had already unwound past
// that point. The Cache's eviction boundary is "end of compile", not
// "end of the first caller's Do", so the result must outlive any single
// burst of concurrent callers.
type future struct {
	parsedDone chan struct{}
	parsed     *ast.Scope
	parseErr   error

	finalDone chan struct{}
	final     *ast.Scope
	finalErr  error
}

func newFuture() *future {
	return &future{parsedDone: make(chan struct{}), finalDone: make(chan struct{})}
}

func (f *future) resolveParsed(scope *ast.Scope, err error) {
	select {
	case <-f.parsedDone:
		return
	default:
	}
	f.parsed, f.parseErr = scope, err
	close(f.parsedDone)
}

func (f *future) resolveFinal(scope *ast.Scope, err error) {
	select {
	case <-f.finalDone:
		return
	default:
	}
	f.final, f.finalErr = scope, err
	close(f.finalDone)
}

func (f *future) waitParsed() (*ast.Scope, error) {
	<-f.parsedDone
	return f.parsed, f.parseErr
}

func (f *future) waitFinal() (*ast.Scope, error) {
	<-f.finalDone
	return f.final, f.finalErr
}

// Cache is the process-local, per-compile Import Cache of §4.6: a
// mapping from a logical file path to the memoized analysis of that
// file, shared across every Scope analyzed during one compile.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*future
}

// NewCache returns an empty Cache. A Cache is scoped to exactly one
// compile and discarded afterward (§4.6, "Eviction").
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*future)}
}

// Register returns the future for key, creating and storing a new one
// if key is not already present. The second return value reports
// whether the future was just created by this call: the caller that
// gets true is responsible for eventually calling ResolveParsed and
// ResolveFinal on it exactly once each. This single serialized
// check-and-insert is what guarantees at-most-one analysis per logical
// file per compile.
func (c *Cache) Register(key string) (f *future, created bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[key]; ok {
		return existing, false
	}
	f = newFuture()
	c.entries[key] = f
	return f, true
}

func (c *Cache) lookup(key string) (*future, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.entries[key]
	return f, ok
}

// ResolveParsed completes the parsed phase of key's future. It is a
// programming error to call it for a key this caller did not Register.
func (c *Cache) ResolveParsed(key string, scope *ast.Scope, err error) {
	f, ok := c.lookup(key)
	if !ok {
		panic("analyzer: ResolveParsed called for unregistered key " + key)
	}
	f.resolveParsed(scope, err)
}

// ResolveFinal completes the final phase of key's future.
func (c *Cache) ResolveFinal(key string, scope *ast.Scope, err error) {
	f, ok := c.lookup(key)
	if !ok {
		panic("analyzer: ResolveFinal called for unregistered key " + key)
	}
	f.resolveFinal(scope, err)
}

// GetForUse blocks until key's registered future reaches its parsed
// phase and returns that result. This is what `@use` resolution calls:
// it only needs the target's machine list, so it can safely observe a
// cyclic peer that is itself still mid-analysis. Returns (nil, nil) if
// key was never registered.
func (c *Cache) GetForUse(key string) (*ast.Scope, error) {
	f, ok := c.lookup(key)
	if !ok {
		return nil, nil
	}
	return f.waitParsed()
}

// GetFinal blocks until key's registered future completes full
// analysis and returns that result. The generator dispatch path calls
// this, since it needs fully resolved transitions. Returns (nil, nil)
// if key was never registered.
func (c *Cache) GetFinal(key string) (*ast.Scope, error) {
	f, ok := c.lookup(key)
	if !ok {
		return nil, nil
	}
	return f.waitFinal()
}
