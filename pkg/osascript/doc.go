// SPDX-License-Identifier: MPL-2.0

// Package osascript runs AppleScript and JavaScript (JXA) through the system
// osascript interpreter.
//
// A call builds the interpreter command line (-l <language> -e <script>
// followed by any script arguments), waits for the child process to exit and
// returns its captured standard output. Failures carry the captured standard
// error text, or a synthesized message when the interpreter wrote nothing to
// standard error.
//
//	r := osascript.New()
//	out, err := r.Run(ctx, `return "hello"`, osascript.AppleScript)
package osascript
