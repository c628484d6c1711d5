// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates CUE documents against embedded schemas and turns
// CUE errors into path-prefixed messages.
package cueutil
