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

// Package errors defines the structured diagnostic types shared by every
// stage of the compile pipeline.
package errors

import (
	"fmt"
	"sort"
	"strings"

	"wirestate.dev/wirestate/token"
)

// Kind classifies a compile error the way §7 of the specification names
// them; callers that need to branch on error kind (the tests that
// check a diagnostic's kind, for instance) switch on this rather than a
// type assertion chain.
type Kind int

const (
	_ Kind = iota
	Lexical
	Syntax
	Semantic
	NotFound
	Io
	UnknownGenerator
)

func (k Kind) String() string {
	switch k {
	case Lexical:
		return "lexical error"
	case Syntax:
		return "syntax error"
	case Semantic:
		return "semantic error"
	case NotFound:
		return "not found"
	case Io:
		return "i/o error"
	case UnknownGenerator:
		return "unknown generator"
	default:
		return "error"
	}
}

// Error is the common interface implemented by every diagnostic this
// module produces.
type Error interface {
	error
	Position() token.Pos
	Kind() Kind
}

// wireError is the concrete Error implementation shared by every kind.
type wireError struct {
	kind  Kind
	pos   token.Pos
	msg   string
	cause error // set only for Io
}

func (e *wireError) Kind() Kind          { return e.kind }
func (e *wireError) Position() token.Pos { return e.pos }

func (e *wireError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.pos, e.msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.pos, e.msg)
}

func (e *wireError) Unwrap() error { return e.cause }

// Newf builds a diagnostic of the given kind at pos with a printf-style
// message.
func Newf(kind Kind, pos token.Pos, format string, args ...interface{}) Error {
	return &wireError{kind: kind, pos: pos, msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an Io diagnostic that carries an underlying OS error, per
// §7 ("IoError ... carries the underlying OS error").
func Wrap(pos token.Pos, cause error, format string, args ...interface{}) Error {
	return &wireError{kind: Io, pos: pos, msg: fmt.Sprintf(format, args...), cause: cause}
}

// List collects every diagnostic raised while processing one file, in the
// order they were added, and can report them sorted by position.
//
// Modeled on cuelang.org/go/cue/errors.List (teacher): parser-stage lexical
// errors accumulate here before the parser gives up on a syntax error; §7
// still requires the analyzer to stop at its first error, so analyzer code
// uses Newf/Wrap directly rather than building a List.
type List []Error

// Add appends a diagnostic.
func (l *List) Add(err Error) {
	if err != nil {
		*l = append(*l, err)
	}
}

// Len reports the number of diagnostics collected.
func (l List) Len() int { return len(l) }

// Sort orders the diagnostics by file, then line, then column.
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		a, b := l[i].Position(), l[j].Position()
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

// Err returns nil if the list is empty, the sole error if it holds exactly
// one, or the List itself (which implements error) otherwise, so a caller
// such as the CLI's summary line can still recover the diagnostic count
// via a type assertion to List.
func (l List) Err() error {
	switch len(l) {
	case 0:
		return nil
	case 1:
		return l[0]
	default:
		return l
	}
}

// Error joins every diagnostic's text, one per line.
func (l List) Error() string {
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}
