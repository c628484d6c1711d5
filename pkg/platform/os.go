// SPDX-License-Identifier: MPL-2.0

package platform

import "runtime"

// OS name constants for runtime.GOOS comparisons.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

// SupportsOSA reports whether goos ships the Open Scripting Architecture,
// and with it the osascript interpreter.
func SupportsOSA(goos string) bool {
	return goos == Darwin
}

// HostSupportsOSA is SupportsOSA for the running host.
func HostSupportsOSA() bool {
	return SupportsOSA(runtime.GOOS)
}
