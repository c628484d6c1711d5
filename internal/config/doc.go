// SPDX-License-Identifier: MPL-2.0

// Package config handles osakit configuration using Viper with CUE as the
// file format.
//
// Configuration is loaded from config.cue in the osakit configuration
// directory ($XDG_CONFIG_HOME/osakit on Linux, ~/Library/Application
// Support/osakit on macOS, %APPDATA%\osakit on Windows), falling back to a
// config.cue in the working directory. Files are validated against the
// embedded config_schema.cue before being merged over the defaults.
// Environment variables prefixed with OSAKIT_ override file values
// (OSAKIT_INTERPRETER_PATH overrides interpreter.path).
package config
