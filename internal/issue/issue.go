// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

const (
	InterpreterNotFoundId Id = iota + 1
	HostNotSupportedId
	ScriptExecutionFailedId
	ScriptFileNotFoundId
	InvalidLanguageId
	ConfigLoadFailedId
	PermissionDeniedId
	TimeoutId
)

type (
	// Id identifies a catalog entry.
	Id int

	// MarkdownMsg is Markdown text rendered for the user.
	MarkdownMsg string

	// HttpLink is an external reference shown under "See also".
	HttpLink string

	// Issue is a catalog entry: a help page for one class of failure.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
	}
)

// Id returns the catalog ID.
func (i *Issue) Id() Id {
	return i.id
}

// MarkdownMsg returns the raw Markdown body.
func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// DocLinks returns a copy of the reference links.
func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// Render renders the page with the named glamour style ("dark", "light", ...).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	interpreterNotFoundIssue = &Issue{
		id: InterpreterNotFoundId,
		mdMsg: `
# Interpreter not found!
osakit could not start the osascript interpreter.

## Things you can try:
- Check that the interpreter exists (it ships with macOS):
~~~
$ ls -l /usr/bin/osascript
~~~
- Point osakit at another location in your config file:
~~~cue
interpreter: {
  path: "/usr/local/bin/osascript"
}
~~~
- Or override it for one run:
~~~
$ osakit run --interpreter /path/to/osascript 'return 1'
~~~`,
		docLinks: []HttpLink{"https://ss64.com/mac/osascript.html"},
	}

	hostNotSupportedIssue = &Issue{
		id: HostNotSupportedId,
		mdMsg: `
# Host not supported!
The Open Scripting Architecture only exists on macOS, so osascript is not
available on this operating system.

## Things you can try:
- Run osakit on a Mac
- Use ` + "`--dry-run`" + ` to inspect the command line that would be executed`,
	}

	scriptExecutionFailedIssue = &Issue{
		id: ScriptExecutionFailedId,
		mdMsg: `
# Script execution failed!
The interpreter ran your script and reported an error.

## Things you can try:
- Read the interpreter's message above; AppleScript errors look like
  ` + "`0:12: execution error: ... (-2753)`" + ` where the first numbers are the
  character range of the failing expression
- Check that the language matches the script (` + "`--language JavaScript`" + ` for JXA)
- Run with ` + "`--verbose`" + ` to see the full error chain`,
		docLinks: []HttpLink{
			"https://developer.apple.com/library/archive/documentation/AppleScript/Conceptual/AppleScriptLangGuide/reference/ASLR_error_codes.html",
		},
	}

	scriptFileNotFoundIssue = &Issue{
		id: ScriptFileNotFoundId,
		mdMsg: `
# Script file not found!
The file passed with ` + "`--file`" + ` could not be read.

## Things you can try:
- Check the path and its permissions
- Use ` + "`--file -`" + ` to read the script from standard input`,
	}

	invalidLanguageIssue = &Issue{
		id: InvalidLanguageId,
		mdMsg: `
# Unknown language!
osascript understands two languages.

## Accepted values:
- ` + "`AppleScript`" + ` (aliases: ` + "`applescript`, `as`" + `)
- ` + "`JavaScript`" + ` (aliases: ` + "`javascript`, `js`, `jxa`" + `)

## Things you can try:
~~~
$ osakit languages
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!
The configuration file could not be parsed or did not match the schema.

## Things you can try:
- Check the CUE syntax of your config file
- Print the file location:
~~~
$ osakit config path
~~~
- Write a fresh default file:
~~~
$ osakit config init
~~~`,
		docLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!
The interpreter could not be executed, or macOS blocked the script.

## Things you can try:
- Make sure the interpreter path is executable
- Grant your terminal Automation access in
  System Settings > Privacy & Security > Automation`,
	}

	timeoutIssue = &Issue{
		id: TimeoutId,
		mdMsg: `
# Script timed out!
The interpreter did not finish within the configured timeout and was stopped.

## Things you can try:
- Raise the limit for one run with ` + "`--timeout 2m`" + `
- Or set ` + "`interpreter.timeout`" + ` in your config file
- Check whether the script is waiting on a dialog or an unresponsive application`,
	}

	issues = map[Id]*Issue{
		interpreterNotFoundIssue.Id():   interpreterNotFoundIssue,
		hostNotSupportedIssue.Id():      hostNotSupportedIssue,
		scriptExecutionFailedIssue.Id(): scriptExecutionFailedIssue,
		scriptFileNotFoundIssue.Id():    scriptFileNotFoundIssue,
		invalidLanguageIssue.Id():       invalidLanguageIssue,
		configLoadFailedIssue.Id():      configLoadFailedIssue,
		permissionDeniedIssue.Id():      permissionDeniedIssue,
		timeoutIssue.Id():               timeoutIssue,
	}
)

// Values returns all catalog entries ordered by Id.
func Values() []*Issue {
	values := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		values = append(values, i)
	}
	slices.SortFunc(values, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return values
}

// Get returns the catalog entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
