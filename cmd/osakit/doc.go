// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the osakit command tree: running AppleScript and
// JavaScript for Automation through osascript, listing languages, and
// managing configuration.
package cmd
