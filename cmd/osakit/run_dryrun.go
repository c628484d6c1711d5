// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/osakit/osakit/pkg/osascript"

	"mvdan.cc/sh/v3/syntax"
)

// renderDryRun prints what osakit would execute without starting the
// interpreter: the resolved interpreter, language, timeout, the script and
// a copy-pasteable command line.
func renderDryRun(w io.Writer, req RunRequest) {
	fmt.Fprintln(w, TitleStyle.Render("Dry Run"))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %s %s\n", VerboseHighlightStyle.Render("Interpreter:"), req.Interpreter)
	fmt.Fprintf(w, "  %s %s\n", VerboseHighlightStyle.Render("Language:"), req.Script.Language.Parameter())
	if req.Timeout > 0 {
		fmt.Fprintf(w, "  %s %s\n", VerboseHighlightStyle.Render("Timeout:"), req.Timeout)
	}
	if len(req.Script.Args) > 0 {
		fmt.Fprintf(w, "  %s %s\n", VerboseHighlightStyle.Render("Arguments:"), strconv.Itoa(len(req.Script.Args)))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, VerboseHighlightStyle.Render("  Script:"))
	for line := range strings.SplitSeq(req.Script.Body, "\n") {
		fmt.Fprintf(w, "    %s\n", line)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, VerboseHighlightStyle.Render("  Command:"))
	fmt.Fprintf(w, "    %s\n", commandLine(req.Interpreter, osascript.Args(req.Script)))
	fmt.Fprintln(w)
}

// commandLine joins name and args into a line a POSIX shell would parse
// back into the same argument vector.
func commandLine(name string, args []string) string {
	words := make([]string, 0, len(args)+1)
	for _, word := range append([]string{name}, args...) {
		words = append(words, shellQuote(word))
	}
	return strings.Join(words, " ")
}

func shellQuote(s string) string {
	quoted, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		// Only strings with NUL bytes fail; the interpreter could not
		// receive those either.
		return strconv.Quote(s)
	}
	return quoted
}
