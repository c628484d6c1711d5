// SPDX-License-Identifier: MPL-2.0

//go:build unix

package osascript

import (
	"os"
	"syscall"
)

// termination reads how the interpreter process ended.
func termination(ps *os.ProcessState) *CommandFailedError {
	if ps == nil {
		return &CommandFailedError{Reason: ReasonExit, Status: -1}
	}
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return &CommandFailedError{Reason: ReasonSignal, Status: int(ws.Signal())}
	}
	return &CommandFailedError{Reason: ReasonExit, Status: ps.ExitCode()}
}
