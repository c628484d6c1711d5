// SPDX-License-Identifier: MPL-2.0

package osascript

import (
	"errors"
	"fmt"
)

const (
	// ReasonExit means the interpreter exited on its own with a status code.
	ReasonExit TerminationReason = "exit"
	// ReasonSignal means the interpreter was terminated by an uncaught signal.
	ReasonSignal TerminationReason = "signal"
)

var (
	// ErrUnknown is returned when a run failed but the interpreter's
	// termination could not be determined.
	ErrUnknown = errors.New("something went wrong")

	// ErrCommandFailed is the sentinel error wrapped by CommandFailedError.
	ErrCommandFailed = errors.New("command failed")
)

type (
	// TerminationReason describes how the interpreter process ended.
	TerminationReason string

	// CommandFailedError reports an abnormal termination of the interpreter:
	// a non-zero exit status or death by signal.
	CommandFailedError struct {
		Reason TerminationReason
		// Status is the exit status for ReasonExit and the signal number
		// for ReasonSignal.
		Status int
	}

	// ScriptError is the descriptive failure of a run. Message holds the
	// interpreter's standard error text with trailing line breaks removed,
	// or a synthesized diagnostic when standard error was empty or only
	// whitespace. The untouched text stays available in Result.ErrOutput.
	ScriptError struct {
		Message string
		Cause   *CommandFailedError
	}
)

// Code returns the numeric form of the reason used in synthesized
// diagnostics: 1 for an exit, 2 for a signal, 0 when unknown.
func (r TerminationReason) Code() int {
	switch r {
	case ReasonExit:
		return 1
	case ReasonSignal:
		return 2
	default:
		return 0
	}
}

// Error implements the error interface.
func (e *CommandFailedError) Error() string {
	if e.Reason == ReasonSignal {
		return fmt.Sprintf("command terminated by signal: %d", e.Status)
	}
	return fmt.Sprintf("command exit with code: %d", e.Status)
}

// Unwrap returns ErrCommandFailed so callers can use errors.Is.
func (e *CommandFailedError) Unwrap() error { return ErrCommandFailed }

// ExitCode returns the exit status as an ExitCode. Signal terminations
// report 128+signal, following the shell convention.
func (e *CommandFailedError) ExitCode() ExitCode {
	if e.Reason == ReasonSignal {
		return ExitCode(128 + e.Status)
	}
	return ExitCode(e.Status)
}

// Error implements the error interface.
func (e *ScriptError) Error() string { return e.Message }

// Unwrap returns the termination details, if any.
func (e *ScriptError) Unwrap() error {
	if e.Cause == nil {
		return nil
	}
	return e.Cause
}

// invocationFailed synthesizes the message used when stderr is empty,
// e.g. "osascript invocation failed: 1:3" for exit status 3.
func invocationFailed(name string, cause *CommandFailedError) string {
	return fmt.Sprintf("%s invocation failed: %d:%d", name, cause.Reason.Code(), cause.Status)
}
