// SPDX-License-Identifier: MPL-2.0

// osakit runs AppleScript and JavaScript for Automation through osascript.
package main

import cmd "github.com/osakit/osakit/cmd/osakit"

func main() {
	cmd.Execute()
}
