// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/osakit/osakit/pkg/osascript"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"

	// TraceExporterNone disables tracing.
	TraceExporterNone TraceExporter = "none"
	// TraceExporterStdout writes finished spans to standard error as JSON.
	TraceExporterStdout TraceExporter = "stdout"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidTraceExporter is returned when a TraceExporter value is not recognized.
	ErrInvalidTraceExporter = errors.New("invalid trace exporter")
	// ErrInvalidTimeout is returned when interpreter.timeout is not a
	// non-negative Go duration.
	ErrInvalidTimeout = errors.New("invalid timeout")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// LogLevel is the minimum level written by the CLI logger.
	LogLevel string

	// TraceExporter selects where OpenTelemetry spans are sent.
	TraceExporter string

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig and collects field-level validation errors.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config is the root configuration.
	Config struct {
		// Interpreter configures the osascript binary.
		Interpreter InterpreterConfig `json:"interpreter" mapstructure:"interpreter" toml:"interpreter" yaml:"interpreter"`
		// DefaultLanguage is used when a run does not pass --language.
		DefaultLanguage string `json:"default_language" mapstructure:"default_language" toml:"default_language" yaml:"default_language"`
		// UI configures terminal output.
		UI UIConfig `json:"ui" mapstructure:"ui" toml:"ui" yaml:"ui"`
		// Log configures diagnostics written to stderr.
		Log LogConfig `json:"log" mapstructure:"log" toml:"log" yaml:"log"`
		// Trace configures OpenTelemetry spans around interpreter runs.
		Trace TraceConfig `json:"trace" mapstructure:"trace" toml:"trace" yaml:"trace"`
	}

	// InterpreterConfig configures the interpreter process.
	InterpreterConfig struct {
		Path    string `json:"path" mapstructure:"path" toml:"path" yaml:"path"`
		Timeout string `json:"timeout" mapstructure:"timeout" toml:"timeout" yaml:"timeout"`
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme" toml:"color_scheme" yaml:"color_scheme"`
		Verbose     bool        `json:"verbose" mapstructure:"verbose" toml:"verbose" yaml:"verbose"`
	}

	// LogConfig configures the CLI logger.
	LogConfig struct {
		Level LogLevel `json:"level" mapstructure:"level" toml:"level" yaml:"level"`
	}

	// TraceConfig configures tracing.
	TraceConfig struct {
		Exporter TraceExporter `json:"exporter" mapstructure:"exporter" toml:"exporter" yaml:"exporter"`
	}
)

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig for errors.Is compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// IsValid reports whether the scheme is recognized.
func (c ColorScheme) IsValid() (bool, []error) {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{fmt.Errorf("%w: %q", ErrInvalidColorScheme, c)}
	}
}

// IsValid reports whether the level is recognized.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{fmt.Errorf("%w: %q", ErrInvalidLogLevel, l)}
	}
}

// IsValid reports whether the exporter is recognized.
func (e TraceExporter) IsValid() (bool, []error) {
	switch e {
	case TraceExporterNone, TraceExporterStdout:
		return true, nil
	default:
		return false, []error{fmt.Errorf("%w: %q", ErrInvalidTraceExporter, e)}
	}
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Interpreter: InterpreterConfig{
			Path:    osascript.DefaultPath,
			Timeout: "",
		},
		DefaultLanguage: string(osascript.DefaultLanguage),
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
		Log: LogConfig{
			Level: LogLevelWarn,
		},
		Trace: TraceConfig{
			Exporter: TraceExporterNone,
		},
	}
}

// Validate checks every field and returns an *InvalidConfigError listing
// all problems, or nil.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Interpreter.Path) == "" {
		errs = append(errs, errors.New("interpreter.path must not be empty"))
	}
	if _, err := c.InterpreterTimeout(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Language(); err != nil {
		errs = append(errs, fmt.Errorf("default_language: %w", err))
	}
	if ok, fieldErrs := c.UI.ColorScheme.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if ok, fieldErrs := c.Log.Level.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if ok, fieldErrs := c.Trace.Exporter.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}

	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// InterpreterTimeout parses interpreter.timeout. Empty means no bound (0).
func (c *Config) InterpreterTimeout() (time.Duration, error) {
	if c.Interpreter.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Interpreter.Timeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: interpreter.timeout %q", ErrInvalidTimeout, c.Interpreter.Timeout)
	}
	return d, nil
}

// Language parses default_language, accepting the same aliases as the
// --language flag.
func (c *Config) Language() (osascript.Language, error) {
	return osascript.ParseLanguage(c.DefaultLanguage)
}
