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

package ast

import (
	"sort"
	"strings"
)

// NormalizeEvent canonicalizes a comma-list event name by splitting on
// ",", trimming each part, sorting lexicographically, and rejoining with
// ",". This is the single routine §9 requires to be shared by validation
// (duplicate detection) and generation (pre-normalized transition events
// in the canonical JSON output) — it must never be reimplemented at
// either call site.
func NormalizeEvent(event string) string {
	parts := strings.Split(event, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
