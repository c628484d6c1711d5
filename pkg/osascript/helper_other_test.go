// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package osascript

import "os"

func killSelf() {
	os.Exit(9)
}
