// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package osascript

import "os"

// termination reads how the interpreter process ended. Non-POSIX hosts
// only report exit statuses.
func termination(ps *os.ProcessState) *CommandFailedError {
	if ps == nil {
		return &CommandFailedError{Reason: ReasonExit, Status: -1}
	}
	return &CommandFailedError{Reason: ReasonExit, Status: ps.ExitCode()}
}
