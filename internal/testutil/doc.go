// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that fail the test
// immediately on setup errors, plus a scriptable stand-in for the osascript
// interpreter.
package testutil
