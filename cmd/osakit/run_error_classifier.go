// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"

	"github.com/osakit/osakit/internal/issue"
	"github.com/osakit/osakit/pkg/osascript"
	"github.com/osakit/osakit/pkg/platform"
)

// opReadScript is the ActionableError operation used when --file cannot be read.
const opReadScript = "read script"

// classifyRunError maps run failures to issue catalog IDs and returns a
// styled message for CLI rendering. It preserves actionable error details.
func classifyRunError(err error, verbose bool) (issueID issue.Id, styledMsg string) {
	issueID = issue.ScriptExecutionFailedId

	var ae *issue.ActionableError
	var scriptErr *osascript.ScriptError

	switch {
	case errors.Is(err, errNoScript), errors.Is(err, errNotTextScript):
		issueID = 0
	case errors.As(err, &ae) && ae.Operation == opReadScript:
		issueID = issue.ScriptFileNotFoundId
		if errors.Is(err, fs.ErrPermission) {
			issueID = issue.PermissionDeniedId
		}
	case errors.Is(err, osascript.ErrInvalidLanguage):
		issueID = issue.InvalidLanguageId
	case errors.Is(err, context.DeadlineExceeded):
		issueID = issue.TimeoutId
	case errors.As(err, &scriptErr):
		issueID = issue.ScriptExecutionFailedId
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, exec.ErrNotFound):
		issueID = issue.InterpreterNotFoundId
		if !platform.HostSupportsOSA() {
			issueID = issue.HostNotSupportedId
		}
	case errors.Is(err, fs.ErrPermission):
		issueID = issue.PermissionDeniedId
	}

	return issueID, fmt.Sprintf("\n%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose))
}

// runExitCode picks the process exit code for a failed run: the
// interpreter's own code when it ran, 130 for an interrupt, 1 otherwise.
// A timed-out interpreter was killed by us, so its signal status is not
// reported.
func runExitCode(err error, res *osascript.Result) osascript.ExitCode {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return 1
	case errors.Is(err, context.Canceled):
		return 130
	case res != nil && res.ExitCode != 0:
		return res.ExitCode
	default:
		return 1
	}
}
