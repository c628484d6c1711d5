// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/osakit/osakit/internal/config"
	"github.com/osakit/osakit/internal/tracing"
	"github.com/osakit/osakit/pkg/osascript"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type (
	configContextKey struct{}

	// App wires CLI services and shared dependencies. Cobra command handlers
	// receive an App reference and delegate work through its service
	// interfaces (Config, Scripts).
	App struct {
		Config  ConfigProvider
		Scripts ScriptService
		stdin   io.Reader
		stdout  io.Writer
		stderr  io.Writer
		logger  *slog.Logger

		tracerProvider trace.TracerProvider
		shutdownTracer tracing.ShutdownFunc

		// Per-invocation settings resolved by the root command.
		verbose     bool
		configPath  string
		colorScheme string
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config  ConfigProvider
		Scripts ScriptService
		Stdin   io.Reader
		Stdout  io.Writer
		Stderr  io.Writer
	}

	// RunRequest captures the inputs of one `osakit run` as an immutable value.
	RunRequest struct {
		// Script is the body, language and arguments handed to osascript.
		Script osascript.Script
		// Interpreter is the osascript path (flag or config value).
		Interpreter string
		// Timeout bounds the run. Zero means no bound.
		Timeout time.Duration
	}

	// ScriptService executes a run request. Implementations must not write to
	// stdout/stderr; output is returned in the result for the CLI to print.
	ScriptService interface {
		Execute(ctx context.Context, req RunRequest) (*osascript.Result, error)
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// runnerService implements ScriptService on top of osascript.Runner,
	// using the logger and tracer provider the root command installed on app.
	runnerService struct {
		commander osascript.Commander
		app       *App
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}

	app := &App{
		Config: deps.Config,
		stdin:  deps.Stdin,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
		logger: slog.New(slog.DiscardHandler),

		tracerProvider: noop.NewTracerProvider(),
		shutdownTracer: func(context.Context) error { return nil },

		colorScheme: string(config.ColorSchemeAuto),
	}

	if deps.Scripts == nil {
		deps.Scripts = &runnerService{
			commander: osascript.DefaultCommander{},
			app:       app,
		}
	}
	app.Scripts = deps.Scripts

	return app, nil
}

// Execute builds a Runner for req and runs the script.
func (s *runnerService) Execute(ctx context.Context, req RunRequest) (*osascript.Result, error) {
	runner := osascript.New(
		osascript.WithPath(req.Interpreter),
		osascript.WithTimeout(req.Timeout),
		osascript.WithCommander(s.commander),
		osascript.WithLogger(s.app.logger),
		osascript.WithTracerProvider(s.app.tracerProvider),
	)
	return runner.Execute(ctx, req.Script)
}

// contextWithConfig attaches the configuration loaded by the root command so
// subcommands share one load per invocation.
func contextWithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configContextKey{}, cfg)
}

// configFromContext returns the configuration attached by the root command,
// or the defaults when none is present.
func configFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configContextKey{}).(*config.Config); ok && cfg != nil {
		return cfg
	}
	return config.DefaultConfig()
}
