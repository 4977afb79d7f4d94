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

// Package token defines source positions and the lexical token kinds used
// across the scanner, parser, and analyzer.
package token

import (
	"fmt"
	"sort"
	"sync"
)

// Pos describes a printable source position: a file, a 1-based line, and a
// 1-based column. The zero value is NoPos, which is always invalid.
type Pos struct {
	File   string
	Line   int
	Column int
}

// NoPos is the zero value for Pos; it is never a valid position.
var NoPos = Pos{}

// IsValid reports whether the position has a known line.
func (p Pos) IsValid() bool { return p.Line > 0 }

// String renders "file:line:column", "line:column" when the file is blank,
// or "-" when the position is invalid.
func (p Pos) String() string {
	s := p.File
	if p.IsValid() {
		if s != "" {
			s += ":"
		}
		s += fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	if s == "" {
		s = "-"
	}
	return s
}

// File tracks line-start byte offsets for a single source file so that the
// scanner can convert a byte offset into a line/column pair in O(log n).
//
// Modeled on cuelang.org/go/cue/token's File, simplified: WireState never
// needs to map positions back across a relative-position-encoded token
// stream, so this File only ever grows lines monotonically as the scanner
// advances and is read thereafter.
type File struct {
	mu    sync.Mutex
	name  string
	lines []int // byte offset of the first byte of each line; lines[0] == 0
}

// NewFile creates a File for the given name with line 1 starting at offset 0.
func NewFile(name string) *File {
	return &File{name: name, lines: []int{0}}
}

// Name returns the file's name as passed to NewFile.
func (f *File) Name() string { return f.name }

// AddLine records that a new line begins at the given byte offset. Offsets
// must be added in increasing order; the scanner calls this once per
// newline it consumes.
func (f *File) AddLine(offset int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n := len(f.lines); n == 0 || f.lines[n-1] < offset {
		f.lines = append(f.lines, offset)
	}
}

// Pos returns the printable position for a byte offset into this file.
func (f *File) Pos(offset int) Pos {
	f.mu.Lock()
	defer f.mu.Unlock()
	line := sort.Search(len(f.lines), func(i int) bool { return f.lines[i] > offset }) - 1
	if line < 0 {
		line = 0
	}
	return Pos{
		File:   f.name,
		Line:   line + 1,
		Column: offset - f.lines[line] + 1,
	}
}
