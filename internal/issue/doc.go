// SPDX-License-Identifier: MPL-2.0

// Package issue holds the user-facing side of osakit errors: ActionableError
// for "failed to <operation>" messages with hints, and a catalog of Markdown
// help pages rendered with glamour when a run fails.
package issue
