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

// Command wirestate compiles a WireState source file and writes the
// output of a named generator to standard output, per §6's CLI surface.
package main

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"wirestate.dev/wirestate/compiler"
	wireerrors "wirestate.dev/wirestate/errors"
)

// errUsage marks a missing/malformed invocation, which exits 20 rather
// than the 10 used for a compile failure (§6).
var errUsage = errors.New("usage error")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// getLang reports the locale to format diagnostics in, honoring LC_ALL
// then LANG, the way the teacher's cmd/cue/cmd/common.go's getLang does.
func getLang() language.Tag {
	loc := os.Getenv("LC_ALL")
	if loc == "" {
		loc = os.Getenv("LANG")
	}
	loc = strings.Split(loc, ".")[0]
	return language.Make(loc)
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		return 20
	default:
		p := message.NewPrinter(getLang())
		n := 1
		if list, ok := err.(wireerrors.List); ok {
			n = list.Len()
		}
		p.Fprintln(stderr, err)
		p.Fprintf(stderr, "%d error(s) found\n", n)
		return 10
	}
}

// newRootCmd builds the single *cobra.Command this CLI exposes, in the
// style of the teacher's cmd/cue/cmd/root.go mkRunE wrapping, trimmed to
// a single subcommand's worth of plumbing.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var srcDir, cacheDir, genName string
	var disableCallbacks bool

	cmd := &cobra.Command{
		Use:           "wirestate <input-file>",
		Short:         "compile a WireState source file",
		SilenceUsage:  false,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errUsage
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if srcDir == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				srcDir = wd
			}
			out, err := compiler.Compile(context.Background(), args[0], compiler.Config{
				SearchDirs:       []string{srcDir},
				CacheDir:         cacheDir,
				Generator:        genName,
				DisableCallbacks: disableCallbacks,
			})
			if err != nil {
				return err
			}
			_, err = stdout.Write(out)
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&srcDir, "srcDir", "", "search directory for @include resolution (default: current working directory)")
	flags.StringVar(&cacheDir, "cacheDir", ".wirestate", "directory used by the optional on-disk cache collaborator")
	flags.StringVar(&genName, "generator", "json", "generator backend name")
	flags.BoolVar(&disableCallbacks, "disableCallbacks", false, "omit action/guard function references from generator output")

	return cmd
}
