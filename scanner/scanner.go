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

// Package scanner implements the indentation-sensitive tokenizer for
// WireState source text (spec §4.2). It takes a []byte and a *token.File
// and produces a token at a time through repeated calls to Scan.
package scanner

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"wirestate.dev/wirestate/errors"
	"wirestate.dev/wirestate/token"
)

// tabWidth is the fixed column expansion used for a tab in indentation,
// per §4.2 and the §9 open question ("Implementations should ... fix a
// width and document it").
const tabWidth = 2

const eof = -1

// Scanner tokenizes WireState source text. It must be initialized via
// Init before use. Modeled on cuelang.org/go/cue/scanner.Scanner's
// rune-stepping plumbing; the automatic-semicolon logic that package uses
// for CUE's brace syntax is replaced here by an indent stack.
type Scanner struct {
	file *token.File
	src  []byte
	errs errors.List

	ch       rune
	offset   int
	rdOffset int

	atLineStart    bool // true at the start of Scan, before the first token of a line
	indents        []int
	pendingDedents int
	eofEmitted     bool
}

// Init prepares s to scan src, whose positions are tracked in file.
func (s *Scanner) Init(file *token.File, src []byte) {
	s.file = file
	s.src = src
	s.errs = nil
	s.offset = 0
	s.rdOffset = 0
	s.indents = []int{0}
	s.pendingDedents = 0
	s.eofEmitted = false
	s.atLineStart = true
	s.ch = ' '
	s.next()
	if s.ch == 0xFEFF {
		s.next() // ignore BOM at file start
	}
}

// Errors returns every lexical error accumulated since Init.
func (s *Scanner) Errors() errors.List { return s.errs }

func (s *Scanner) next() {
	if s.rdOffset < len(s.src) {
		s.offset = s.rdOffset
		if s.ch == '\n' {
			s.file.AddLine(s.offset)
		}
		r, w := rune(s.src[s.rdOffset]), 1
		if r >= utf8.RuneSelf {
			r, w = utf8.DecodeRune(s.src[s.rdOffset:])
			if r == utf8.RuneError && w == 1 {
				s.error(s.offset, "illegal UTF-8 encoding")
			}
		}
		s.rdOffset += w
		s.ch = r
	} else {
		s.offset = len(s.src)
		if s.ch == '\n' {
			s.file.AddLine(s.offset)
		}
		s.ch = eof
	}
}

func (s *Scanner) peekByte() byte {
	if s.rdOffset < len(s.src) {
		return s.src[s.rdOffset]
	}
	return 0
}

func (s *Scanner) pos(offset int) token.Pos { return s.file.Pos(offset) }

func (s *Scanner) error(offset int, format string, args ...interface{}) {
	s.errs.Add(errors.Newf(errors.Lexical, s.pos(offset), format, args...))
}

// Scan returns the position, kind, and literal text of the next token.
// At end of file it returns token.EOF forever after emitting any
// outstanding Dedents.
func (s *Scanner) Scan() (pos token.Pos, tok token.Token, lit string) {
	if s.pendingDedents > 0 {
		s.pendingDedents--
		return s.pos(s.offset), token.Dedent, ""
	}

	if s.atLineStart {
		s.atLineStart = false
		if done, p, t := s.scanIndent(); done {
			return p, t, ""
		}
	}

	s.skipHorizontalSpace()

	pos = s.pos(s.offset)

	switch ch := s.ch; {
	case ch == eof:
		return s.atEOF()
	case ch == '\n':
		s.next()
		s.atLineStart = true
		return pos, token.Newline, "\n"
	case ch == '"':
		lit, ok := s.scanString()
		if !ok {
			return pos, token.ILLEGAL, lit
		}
		return pos, token.StringLiteral, lit
	case ch == '@':
		s.next()
		start := s.offset
		for isIdentRune(s.ch) {
			s.next()
		}
		return pos, token.AtDirective, string(s.src[start:s.offset])
	case ch == ',':
		s.next()
		return pos, token.Comma, ","
	case ch == ':':
		s.next()
		return pos, token.Colon, ":"
	case ch == '-' && s.peekByte() == '>':
		s.next()
		s.next()
		return pos, token.Arrow, "->"
	case ch == '*' || ch == '?' || ch == '!' || ch == '&':
		s.next()
		return pos, token.StateMarker, string(ch)
	case isIdentStart(ch):
		lit := s.scanIdentifier()
		return pos, token.Identifier, lit
	default:
		s.error(s.offset, "illegal character %q", ch)
		s.next()
		return pos, token.ILLEGAL, string(ch)
	}
}

func (s *Scanner) atEOF() (token.Pos, token.Token, string) {
	pos := s.pos(s.offset)
	if !s.eofEmitted {
		// Unwind any open indentation levels before the real EOF token,
		// so the parser sees a Dedent for every open Indent (mirrors
		// Python-style tokenizers).
		if len(s.indents) > 1 {
			s.indents = s.indents[:len(s.indents)-1]
			return pos, token.Dedent, ""
		}
		s.eofEmitted = true
	}
	return pos, token.EOF, ""
}

// scanIndent measures the indentation of a new line, skipping blank and
// comment-only lines (§4.2: "their positions are preserved for
// diagnostics" but they do not affect indent calculation), and returns
// (true, pos, tok) when it has a token (Indent/Dedent/EOF) to hand back
// immediately, or (false, _, _) when the caller should proceed to scan
// the line's first real token at the current column.
func (s *Scanner) scanIndent() (bool, token.Pos, token.Token) {
	for {
		col := s.measureIndent()
		if s.ch == eof {
			p, t, _ := s.atEOF()
			return true, p, t
		}
		if s.ch == '\n' {
			// blank line: consume it and keep measuring.
			s.next()
			continue
		}
		if s.ch == '#' {
			s.skipLineComment()
			if s.ch == '\n' {
				s.next()
				continue
			}
			if s.ch == eof {
				p, t, _ := s.atEOF()
				return true, p, t
			}
		}

		top := s.indents[len(s.indents)-1]
		switch {
		case col > top:
			s.indents = append(s.indents, col)
			return true, s.pos(s.offset), token.Indent
		case col < top:
			s.indents = s.indents[:len(s.indents)-1]
			newTop := s.indents[len(s.indents)-1]
			if newTop < col {
				// col lands strictly between two stack levels: push it
				// back as the new (smaller) level rather than losing it,
				// but this is always a malformed dedent.
				s.indents = append(s.indents, col)
				s.error(s.offset, "inconsistent indentation")
			}
			for newTop > col {
				s.pendingDedents++
				s.indents = s.indents[:len(s.indents)-1]
				newTop = s.indents[len(s.indents)-1]
			}
			return true, s.pos(s.offset), token.Dedent
		default:
			return false, token.Pos{}, token.ILLEGAL
		}
	}
}

// measureIndent consumes leading spaces/tabs on the current line and
// returns the resulting column width, expanding tabs to tabWidth (§4.2,
// §9 resolved open question).
func (s *Scanner) measureIndent() int {
	col := 0
	lineStart := s.offset
	sawTab, sawSpace := false, false
	for {
		switch s.ch {
		case ' ':
			sawSpace = true
			col++
			s.next()
			continue
		case '\t':
			sawTab = true
			col += tabWidth
			s.next()
			continue
		}
		break
	}
	if sawTab && sawSpace {
		s.error(lineStart, "inconsistent use of tabs and spaces in indentation")
	}
	return col
}

// RestOfLine returns the raw source text from the current position up to
// (but not including) the next newline or EOF, and advances the scanner
// past it. It is used for the opaque guard/action and payload text that
// follows a Colon (§1 non-goals: these are carried as unparsed strings),
// which may contain characters outside this scanner's token set.
func (s *Scanner) RestOfLine() string {
	s.skipHorizontalSpace()
	start := s.offset
	for s.ch != '\n' && s.ch != eof {
		s.next()
	}
	return string(s.src[start:s.offset])
}

func (s *Scanner) skipHorizontalSpace() {
	for s.ch == ' ' || s.ch == '\t' {
		s.next()
	}
}

func (s *Scanner) skipLineComment() {
	for s.ch != '\n' && s.ch != eof {
		s.next()
	}
}

func isIdentStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

// isIdentRune reports whether ch may continue an Identifier. '.' is
// included so that a transition's dotted Target path (§4.5) scans as a
// run of Identifier/StateMarker tokens the parser concatenates verbatim,
// rather than requiring a dedicated path token kind not named in §4.2's
// token inventory.
func isIdentRune(ch rune) bool {
	return ch == '_' || ch == '.' || unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

// scanIdentifier consumes an Identifier: letters, digits, and single
// interior spaces (§4.2: "may contain spaces between words"), stopping at
// line end or at one of the delimiting tokens '*','?','!','&' (when in
// marker position), "->", '@', ',', ':', '"'.
func (s *Scanner) scanIdentifier() string {
	var b strings.Builder
	for {
		switch {
		case isIdentRune(s.ch):
			b.WriteRune(s.ch)
			s.next()
		case s.ch == ' ' || s.ch == '\t':
			// Look ahead past the run of horizontal space: if it is
			// followed by another identifier rune, it's an internal
			// space and belongs to the name; otherwise stop here and let
			// the caller's skipHorizontalSpace consume the trailing run.
			save := *s
			s.skipHorizontalSpace()
			if isIdentRune(s.ch) {
				b.WriteByte(' ')
				continue
			}
			*s = save
			return strings.TrimRight(b.String(), " ")
		default:
			return strings.TrimRight(b.String(), " ")
		}
	}
}

// scanString consumes a double-quoted string literal with the standard
// escapes \" \\ \n \t (§4.2).
func (s *Scanner) scanString() (string, bool) {
	startOffset := s.offset
	s.next() // consume opening quote
	var b strings.Builder
	for {
		switch s.ch {
		case '"':
			s.next()
			return b.String(), true
		case '\n', eof:
			s.error(startOffset, "string literal not terminated")
			return b.String(), false
		case '\\':
			s.next()
			switch s.ch {
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				s.error(s.offset, "unknown escape sequence \\%c", s.ch)
			}
			s.next()
		default:
			b.WriteRune(s.ch)
			s.next()
		}
	}
}
