// SPDX-License-Identifier: MPL-2.0

package osascript

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultPath is the location of the system interpreter.
	DefaultPath = "/usr/bin/osascript"

	tracerName = "github.com/osakit/osakit/pkg/osascript"
)

type (
	// Commander builds the interpreter process. It exists so tests can
	// substitute the interpreter without touching the filesystem.
	Commander interface {
		CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd
	}

	// DefaultCommander implements Commander using exec.CommandContext.
	DefaultCommander struct{}

	// Script is a single interpreter invocation.
	Script struct {
		// Body is the script source passed inline with -e.
		Body string
		// Language selects the OSA component. The zero value means AppleScript.
		Language Language
		// Args are passed to the script's run handler, in order.
		Args []string
	}

	// Result holds everything captured from one invocation.
	Result struct {
		// Output is the captured standard output, unmodified.
		Output string
		// ErrOutput is the captured standard error, unmodified.
		ErrOutput string
		// ExitCode is the interpreter's exit status (0 on success).
		ExitCode ExitCode
		// Duration is the wall time between start and exit.
		Duration time.Duration
	}

	// Runner invokes the interpreter. The zero value is not usable; build
	// one with New.
	Runner struct {
		path      string
		commander Commander
		timeout   time.Duration
		logger    *slog.Logger
		tracer    trace.Tracer
	}

	// Option configures a Runner.
	Option func(*Runner)
)

// CommandContext creates a new exec.Cmd using exec.CommandContext.
func (DefaultCommander) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, name, args...)
}

// WithPath overrides the interpreter location. An empty path keeps DefaultPath.
func WithPath(path string) Option {
	return func(r *Runner) {
		if path != "" {
			r.path = path
		}
	}
}

// WithCommander replaces the process builder.
func WithCommander(c Commander) Option {
	return func(r *Runner) {
		if c != nil {
			r.commander = c
		}
	}
}

// WithTimeout bounds every invocation. Zero or negative disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithLogger sets the logger used for debug tracing of invocations.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithTracerProvider sets where invocation spans go. The default is the
// global provider, which is a no-op unless the program installs one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Runner) {
		if tp != nil {
			r.tracer = tp.Tracer(tracerName)
		}
	}
}

// New creates a Runner for the system interpreter.
func New(opts ...Option) *Runner {
	r := &Runner{
		path:      DefaultPath,
		commander: DefaultCommander{},
		logger:    slog.New(slog.DiscardHandler),
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Path returns the interpreter location.
func (r *Runner) Path() string { return r.path }

// Name returns the interpreter's base name, used in diagnostics.
func (r *Runner) Name() string { return filepath.Base(r.path) }

// Available returns whether the interpreter resolves to an executable file.
func (r *Runner) Available() bool {
	_, err := exec.LookPath(r.path)
	return err == nil
}

// Args returns the interpreter arguments for s: the language flag, the
// inline script, then the script arguments.
func Args(s Script) []string {
	args := make([]string, 0, 4+len(s.Args))
	args = append(args, "-l", s.Language.Parameter(), "-e", s.Body)
	if len(s.Args) > 0 {
		args = append(args, s.Args...)
	}
	return args
}

// Run executes body in the given language and returns the interpreter's
// standard output. It blocks until the interpreter exits.
func (r *Runner) Run(ctx context.Context, body string, lang Language, args ...string) (string, error) {
	res, err := r.Execute(ctx, Script{Body: body, Language: lang, Args: args})
	if err != nil {
		return "", err
	}
	return res.Output, nil
}

// Execute runs s and returns the captured result. The result is non-nil
// whenever the interpreter was started, including on failure.
//
// A failing interpreter yields a *ScriptError whose Message is standard
// error with trailing CR/LF trimmed; whitespace-only standard error is
// replaced by a synthesized diagnostic. Result.ErrOutput keeps the raw text.
func (r *Runner) Execute(ctx context.Context, s Script) (*Result, error) {
	if s.Language != "" {
		if ok, errs := s.Language.IsValid(); !ok {
			return nil, errs[0]
		}
	}

	ctx, span := r.tracer.Start(ctx, "osascript.Execute", trace.WithAttributes(
		attribute.String("osascript.path", r.path),
		attribute.String("osascript.language", s.Language.Parameter()),
		attribute.Int("osascript.args", len(s.Args)),
	))
	defer span.End()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := r.commander.CommandContext(ctx, r.path, Args(s)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.DebugContext(ctx, "running interpreter",
		"path", r.path,
		"language", s.Language.Parameter(),
		"args", len(s.Args))

	start := time.Now()
	runErr := cmd.Run()
	result := &Result{
		Output:    stdout.String(),
		ErrOutput: stderr.String(),
		Duration:  time.Since(start),
	}

	if runErr == nil {
		r.logger.DebugContext(ctx, "interpreter finished", "duration", result.Duration)
		span.SetStatus(codes.Ok, "")
		return result, nil
	}

	err := r.classify(ctx, cmd, runErr, result)
	span.SetAttributes(attribute.Int("osascript.exit_code", int(result.ExitCode)))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	r.logger.DebugContext(ctx, "interpreter failed",
		"exit_code", result.ExitCode,
		"duration", result.Duration,
		"error", err)
	return result, err
}

// classify turns a failed cmd.Run into one of the package's error shapes
// and records the exit code on result.
func (r *Runner) classify(ctx context.Context, cmd *exec.Cmd, runErr error, result *Result) error {
	var exitErr *exec.ExitError
	isExit := errors.As(runErr, &exitErr)

	if ctxErr := ctx.Err(); ctxErr != nil {
		if isExit {
			result.ExitCode = termination(exitErr.ProcessState).ExitCode()
		}
		return fmt.Errorf("run %s: %w", r.Name(), ctxErr)
	}

	if isExit {
		cause := termination(exitErr.ProcessState)
		result.ExitCode = cause.ExitCode()

		msg := strings.TrimRight(result.ErrOutput, "\r\n")
		if strings.TrimSpace(msg) == "" {
			msg = invocationFailed(r.Name(), cause)
		}
		return &ScriptError{Message: msg, Cause: cause}
	}

	result.ExitCode = 1
	if cmd.ProcessState == nil {
		return fmt.Errorf("failed to start %s: %w", r.path, runErr)
	}
	return fmt.Errorf("%w: %w", ErrUnknown, runErr)
}
