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

// Package source implements the logical-path-to-bytes file reader of
// §4.1. Grounded on the stat/openFile split in cuelang.org/go/cue/load's
// fileSystem (teacher: cue/load/fs.go), trimmed to the single
// search-path-ordering contract this specification needs: no overlay
// filesystem, no syntax cache, since WireState has no build-instance
// concept to key one by.
package source

import (
	"os"
	"path/filepath"
	"strings"

	"wirestate.dev/wirestate/errors"
	"wirestate.dev/wirestate/token"
)

// Read implements §4.1's read(logical_path, search_dirs) contract.
//
// A logical path beginning with "./" (or its Windows equivalent ".\") is
// resolved against parentFile, the absolute path of the Scope doing the
// including, and searchDirs is not consulted. Any other path — including
// one beginning with "../" — is treated as project-relative and tried in
// turn against each of searchDirs, in order; the first entry that names a
// regular file wins. Read fails with a NotFound diagnostic if no
// candidate exists, or with an Io diagnostic for any other stat/open
// failure.
func Read(logicalPath, parentFile string, searchDirs []string) (absPath string, data []byte, err error) {
	if isRelative(logicalPath) {
		abs := filepath.Join(filepath.Dir(parentFile), logicalPath)
		return readFile(abs)
	}

	var lastErr error
	for _, dir := range searchDirs {
		abs := filepath.Join(dir, logicalPath)
		fi, statErr := os.Stat(abs)
		if statErr != nil {
			if !os.IsNotExist(statErr) {
				return "", nil, errors.Wrap(token.NoPos, statErr, "reading %s", abs)
			}
			lastErr = statErr
			continue
		}
		if !fi.Mode().IsRegular() {
			lastErr = errNotRegular
			continue
		}
		return readFile(abs)
	}
	if lastErr == nil {
		lastErr = os.ErrNotExist
	}
	return "", nil, errors.Newf(errors.NotFound, token.NoPos,
		"%s: not found in any of %d search director(y/ies): %v", logicalPath, len(searchDirs), lastErr)
}

var errNotRegular = os.ErrInvalid

func readFile(abs string) (string, []byte, error) {
	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, errors.Newf(errors.NotFound, token.NoPos, "%s: not found", abs)
		}
		return "", nil, errors.Wrap(token.NoPos, err, "reading %s", abs)
	}
	return abs, data, nil
}

// isRelative reports whether path is parent-relative per §4.1: only a
// leading "./" or ".\" resolves against the including file's directory.
// A leading "../" is, per the spec's literal wording, just another
// project-relative path and is tried against searchDirs like any other.
func isRelative(path string) bool {
	return strings.HasPrefix(path, "./") || strings.HasPrefix(path, `.\`)
}
