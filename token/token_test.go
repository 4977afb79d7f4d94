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

package token

import "testing"

func TestTokenString(t *testing.T) {
	tests := []struct {
		tok  Token
		want string
	}{
		{ILLEGAL, "ILLEGAL"},
		{EOF, "EOF"},
		{Newline, "NEWLINE"},
		{Indent, "INDENT"},
		{Dedent, "DEDENT"},
		{Identifier, "IDENT"},
		{StateMarker, "MARKER"},
		{Arrow, "ARROW"},
		{AtDirective, "AT"},
		{StringLiteral, "STRING"},
		{Comma, "COMMA"},
		{Colon, "COLON"},
		{Token(999), "token(999)"},
	}
	for _, tt := range tests {
		if got := tt.tok.String(); got != tt.want {
			t.Errorf("Token(%d).String() = %q; want %q", tt.tok, got, tt.want)
		}
	}
}
