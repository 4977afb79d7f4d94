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

package errors

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"wirestate.dev/wirestate/token"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{Lexical, "lexical error"},
		{Syntax, "syntax error"},
		{Semantic, "semantic error"},
		{NotFound, "not found"},
		{Io, "i/o error"},
		{UnknownGenerator, "unknown generator"},
		{Kind(99), "error"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q; want %q", tt.kind, got, tt.want)
		}
	}
}

func TestNewf(t *testing.T) {
	pos := token.Pos{File: "a.ws", Line: 2, Column: 3}
	err := Newf(Semantic, pos, "bad %s", "thing")

	if err.Kind() != Semantic {
		t.Errorf("Kind() = %v; want %v", err.Kind(), Semantic)
	}
	if err.Position() != pos {
		t.Errorf("Position() = %v; want %v", err.Position(), pos)
	}
	want := "a.ws:2:3: bad thing"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q; want %q", got, want)
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := fs.ErrNotExist
	err := Wrap(token.NoPos, cause, "reading %s", "a.ws")

	if err.Kind() != Io {
		t.Errorf("Kind() = %v; want %v", err.Kind(), Io)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("errors.Is(err, fs.ErrNotExist) = false; want true")
	}
	if !strings.Contains(err.Error(), "reading a.ws") {
		t.Errorf("Error() = %q; want it to contain %q", err.Error(), "reading a.ws")
	}
}

func TestListErr(t *testing.T) {
	var l List
	if err := l.Err(); err != nil {
		t.Errorf("empty List.Err() = %v; want nil", err)
	}

	only := Newf(Syntax, token.Pos{Line: 1, Column: 1}, "one")
	l.Add(only)
	if err := l.Err(); err != only {
		t.Errorf("single-element List.Err() = %v; want the sole error itself", err)
	}

	l.Add(Newf(Syntax, token.Pos{Line: 2, Column: 1}, "two"))
	err := l.Err()
	if !strings.Contains(err.Error(), "one") || !strings.Contains(err.Error(), "two") {
		t.Errorf("multi-element List.Err() = %q; want it to mention both messages", err.Error())
	}
}

func TestListAddNil(t *testing.T) {
	var l List
	l.Add(nil)
	if l.Len() != 0 {
		t.Errorf("Len() = %d after adding nil; want 0", l.Len())
	}
}

func TestListSort(t *testing.T) {
	l := List{
		Newf(Syntax, token.Pos{File: "b", Line: 1, Column: 1}, "b1"),
		Newf(Syntax, token.Pos{File: "a", Line: 5, Column: 1}, "a5"),
		Newf(Syntax, token.Pos{File: "a", Line: 2, Column: 9}, "a2c9"),
		Newf(Syntax, token.Pos{File: "a", Line: 2, Column: 1}, "a2c1"),
	}
	l.Sort()

	want := []string{"a2c1", "a2c9", "a5", "b1"}
	for i, w := range want {
		if !strings.Contains(l[i].Error(), w) {
			t.Errorf("l[%d] = %q; want it to contain %q", i, l[i].Error(), w)
		}
	}
}
