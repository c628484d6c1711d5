// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// FakeInterpreter describes how a stand-in osascript behaves.
type FakeInterpreter struct {
	// Stdout is written to standard output. When EchoArgs is set it is
	// ignored and each received argument is printed on its own line.
	Stdout string
	// Stderr is written to standard error.
	Stderr string
	// ExitCode is the process exit status.
	ExitCode int
	// EchoArgs prints the received arguments instead of Stdout.
	EchoArgs bool
}

// Install writes the fake as an executable POSIX shell script under dir and
// returns its path. Tests using it are skipped on Windows.
func (f FakeInterpreter) Install(t testing.TB, dir string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake interpreter requires a POSIX shell")
	}

	var sb strings.Builder
	sb.WriteString("#!/bin/sh\n")
	if f.EchoArgs {
		sb.WriteString("for a in \"$@\"; do printf '%s\\n' \"$a\"; done\n")
	} else if f.Stdout != "" {
		fmt.Fprintf(&sb, "printf '%%s' %s\n", shellQuote(f.Stdout))
	}
	if f.Stderr != "" {
		fmt.Fprintf(&sb, "printf '%%s' %s >&2\n", shellQuote(f.Stderr))
	}
	fmt.Fprintf(&sb, "exit %d\n", f.ExitCode)

	path := filepath.Join(dir, "osascript")
	MustWriteFile(t, path, sb.String(), 0o755)
	return path
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
