// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/osakit/osakit/internal/config"
	"github.com/osakit/osakit/internal/issue"
	"github.com/osakit/osakit/internal/tracing"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlags holds the persistent flags shared by every subcommand.
type rootFlags struct {
	verbose bool
	cfgFile string
}

// NewRootCommand creates the osakit command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	var flags rootFlags

	rootCmd := &cobra.Command{
		Use:   "osakit",
		Short: "Run AppleScript and JavaScript for Automation from the command line",
		Long: TitleStyle.Render("osakit") + SubtitleStyle.Render(" - Run AppleScript and JXA through osascript") + `

osakit hands a script to the macOS osascript interpreter, waits for it to
finish and prints exactly what the script wrote to standard output. When
the script fails, the interpreter's message is shown together with hints,
and osakit exits with the interpreter's exit code.

` + SubtitleStyle.Render("Examples:") + `
  osakit run 'return "hello"'                      Run inline AppleScript
  osakit run -l js 'Application("Finder").name()'  Run JavaScript for Automation
  osakit run -f notify.applescript -- "Build done" Pass arguments to the run handler
  osakit run --dry-run 'beep'                      Show the osascript command line
  osakit config show                               Show current configuration`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			app.configure(cmd, flags)
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.cfgFile, "config", "", "config file (default is $HOME/.config/osakit/config.cue)")

	rootCmd.SetIn(app.stdin)
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.AddCommand(newRunCommand(app))
	rootCmd.AddCommand(newLanguagesCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the command tree and runs it. This is called by main.main().
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}

	ctx := context.Background()

	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	err = fang.Execute(
		ctx,
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(app.handleError),
	)
	if shutdownErr := app.shutdownTracer(ctx); shutdownErr != nil {
		app.logger.Warn("failed to shut down tracing", "error", shutdownErr)
	}
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

// configure loads the configuration once per invocation, installs the
// logger and stores the settings subcommands need. A broken config file is
// reported as a warning and the defaults are used instead.
func (app *App) configure(cmd *cobra.Command, flags rootFlags) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := app.Config.Load(ctx, config.LoadOptions{ConfigFilePath: flags.cfgFile})
	if err != nil {
		fmt.Fprintln(app.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, flags.verbose))
		cfg = config.DefaultConfig()
	}

	app.configPath = flags.cfgFile
	app.verbose = flags.verbose || cfg.UI.Verbose
	app.colorScheme = string(cfg.UI.ColorScheme)
	app.logger = newLogger(app.stderr, cfg.Log.Level, app.verbose)

	tp, shutdown, err := tracing.Setup(cfg.Trace.Exporter, app.stderr)
	if err != nil {
		app.logger.Warn("tracing disabled", "error", err)
	} else {
		app.tracerProvider = tp
		app.shutdownTracer = shutdown
	}

	cmd.SetContext(contextWithConfig(ctx, cfg))
}

// newLogger returns a slog logger backed by charmbracelet/log. Verbose mode
// forces the debug level.
func newLogger(w io.Writer, level config.LogLevel, verbose bool) *slog.Logger {
	lvl, err := log.ParseLevel(string(level))
	if err != nil {
		lvl = log.WarnLevel
	}
	if verbose {
		lvl = log.DebugLevel
	}

	handler := log.NewWithOptions(w, log.Options{
		Prefix: config.AppName,
		Level:  lvl,
	})
	return slog.New(handler)
}

// handleError renders errors returned from RunE handlers. Service errors
// carry their own styled message and catalog entry; a bare ExitError has
// already been reported by the command.
func (app *App) handleError(w io.Writer, styles fang.Styles, err error) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		renderServiceError(w, app.logger, app.colorScheme, svcErr)
		return
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}

	fang.DefaultErrorHandler(w, styles, err)
}

// formatErrorForDisplay formats an error for user display.
// ActionableErrors use their Format method; verbose mode adds the error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
