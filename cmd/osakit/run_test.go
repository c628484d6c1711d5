// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/osakit/osakit/internal/config"
	"github.com/osakit/osakit/internal/issue"
	"github.com/osakit/osakit/internal/testutil"
	"github.com/osakit/osakit/pkg/osascript"
	"github.com/osakit/osakit/pkg/platform"
)

// fakeScripts records run requests and replays a canned result.
type fakeScripts struct {
	t      *testing.T
	forbid bool
	result *osascript.Result
	err    error
	calls  []RunRequest
}

func (f *fakeScripts) Execute(_ context.Context, req RunRequest) (*osascript.Result, error) {
	if f.forbid {
		f.t.Errorf("unexpected script execution: %+v", req)
	}
	f.calls = append(f.calls, req)
	if f.result == nil && f.err == nil {
		return &osascript.Result{}, nil
	}
	return f.result, f.err
}

func (f *fakeScripts) only(t *testing.T) RunRequest {
	t.Helper()
	if len(f.calls) != 1 {
		t.Fatalf("Execute called %d times, want 1", len(f.calls))
	}
	return f.calls[0]
}

// requireServiceError unwraps the ExitError/ServiceError pair returned by a
// failing run.
func requireServiceError(t *testing.T, err error, wantCode osascript.ExitCode, wantIssue issue.Id) *ServiceError {
	t.Helper()

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %v (%T), want *ExitError", err, err)
	}
	if exitErr.Code != wantCode {
		t.Errorf("ExitError.Code = %d, want %d", exitErr.Code, wantCode)
	}
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("error = %v, want *ServiceError in chain", err)
	}
	if svcErr.IssueID != wantIssue {
		t.Errorf("IssueID = %d, want %d", svcErr.IssueID, wantIssue)
	}
	return svcErr
}

func TestRun_PrintsOutputExactly(t *testing.T) {
	t.Parallel()

	scripts := &fakeScripts{t: t, result: &osascript.Result{Output: "  first\n\nsecond \n"}}
	app := newTestApp(t, Dependencies{Scripts: scripts})

	if err := app.execute(t, "run", `return "x"`); err != nil {
		t.Fatalf("execute() error = %v", err)
	}

	if got := app.stdout.String(); got != "  first\n\nsecond \n" {
		t.Errorf("stdout = %q, want output unchanged", got)
	}

	req := scripts.only(t)
	if req.Script.Body != `return "x"` {
		t.Errorf("Body = %q", req.Script.Body)
	}
	if req.Script.Language != osascript.AppleScript {
		t.Errorf("Language = %q, want AppleScript", req.Script.Language)
	}
	if req.Interpreter != osascript.DefaultPath {
		t.Errorf("Interpreter = %q, want %q", req.Interpreter, osascript.DefaultPath)
	}
	if len(req.Script.Args) != 0 {
		t.Errorf("Args = %v, want none", req.Script.Args)
	}
}

func TestRun_FlagsAndArguments(t *testing.T) {
	t.Parallel()

	scripts := &fakeScripts{t: t}
	app := newTestApp(t, Dependencies{Scripts: scripts})

	err := app.execute(t, "run", "-l", "jxa", "--timeout", "2s", "--interpreter", "/opt/osascript",
		"function run(argv) { return argv }", "--", "a", "-b", "c d")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}

	req := scripts.only(t)
	if req.Script.Language != osascript.JavaScript {
		t.Errorf("Language = %q, want JavaScript", req.Script.Language)
	}
	if req.Timeout != 2*time.Second {
		t.Errorf("Timeout = %v, want 2s", req.Timeout)
	}
	if req.Interpreter != "/opt/osascript" {
		t.Errorf("Interpreter = %q", req.Interpreter)
	}
	if want := []string{"a", "-b", "c d"}; !slices.Equal(req.Script.Args, want) {
		t.Errorf("Args = %q, want %q", req.Script.Args, want)
	}
}

func TestRun_ConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.DefaultLanguage = "JavaScript"
	cfg.Interpreter.Path = "/from/config/osascript"
	cfg.Interpreter.Timeout = "3s"

	scripts := &fakeScripts{t: t}
	app := newTestApp(t, Dependencies{Config: &fakeConfigProvider{cfg: cfg}, Scripts: scripts})

	if err := app.execute(t, "run", "1 + 1"); err != nil {
		t.Fatalf("execute() error = %v", err)
	}

	req := scripts.only(t)
	if req.Script.Language != osascript.JavaScript {
		t.Errorf("Language = %q, want JavaScript from config", req.Script.Language)
	}
	if req.Interpreter != "/from/config/osascript" {
		t.Errorf("Interpreter = %q, want config path", req.Interpreter)
	}
	if req.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, want 3s from config", req.Timeout)
	}
}

func TestRun_ZeroTimeoutOverridesConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Interpreter.Timeout = "3s"

	scripts := &fakeScripts{t: t}
	app := newTestApp(t, Dependencies{Config: &fakeConfigProvider{cfg: cfg}, Scripts: scripts})

	if err := app.execute(t, "run", "--timeout", "0", "1 + 1"); err != nil {
		t.Fatalf("execute() error = %v", err)
	}

	if req := scripts.only(t); req.Timeout != 0 {
		t.Errorf("Timeout = %v, want 0 from --timeout", req.Timeout)
	}
}

func TestRun_ScriptFailure(t *testing.T) {
	t.Parallel()

	scriptErr := &osascript.ScriptError{
		Message: "0:5: execution error: boom (-2700)",
		Cause:   &osascript.CommandFailedError{Reason: osascript.ReasonExit, Status: 2},
	}
	scripts := &fakeScripts{t: t, result: &osascript.Result{Output: "partial", ExitCode: 2}, err: scriptErr}
	app := newTestApp(t, Dependencies{Scripts: scripts})

	err := app.execute(t, "run", `error "boom"`)
	svcErr := requireServiceError(t, err, 2, issue.ScriptExecutionFailedId)

	if !strings.Contains(svcErr.StyledMessage, "execution error: boom") {
		t.Errorf("StyledMessage = %q, want interpreter message", svcErr.StyledMessage)
	}
	if app.stdout.Len() != 0 {
		t.Errorf("stdout = %q, want nothing on failure", app.stdout.String())
	}
}

func TestRun_InvalidLanguage(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, Dependencies{})

	err := app.execute(t, "run", "--language", "python", "print(1)")
	requireServiceError(t, err, 1, issue.InvalidLanguageId)
	if !errors.Is(err, osascript.ErrInvalidLanguage) {
		t.Errorf("error = %v, want ErrInvalidLanguage", err)
	}
}

func TestRun_NoScript(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, Dependencies{})

	err := app.execute(t, "run")
	requireServiceError(t, err, 1, 0)
	if !errors.Is(err, errNoScript) {
		t.Errorf("error = %v, want errNoScript", err)
	}
}

func TestRun_FromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "hello.applescript")
	testutil.MustWriteFile(t, path, "on run argv\n\treturn item 1 of argv\nend run\n", 0o644)

	scripts := &fakeScripts{t: t}
	app := newTestApp(t, Dependencies{Scripts: scripts})

	if err := app.execute(t, "run", "--file", path, "--", "world"); err != nil {
		t.Fatalf("execute() error = %v", err)
	}

	req := scripts.only(t)
	if !strings.HasPrefix(req.Script.Body, "on run argv") {
		t.Errorf("Body = %q, want file contents", req.Script.Body)
	}
	if want := []string{"world"}; !slices.Equal(req.Script.Args, want) {
		t.Errorf("Args = %q, want %q", req.Script.Args, want)
	}
}

func TestRun_FromStdin(t *testing.T) {
	t.Parallel()

	scripts := &fakeScripts{t: t}
	app := newTestApp(t, Dependencies{Scripts: scripts, Stdin: strings.NewReader("return 42")})

	if err := app.execute(t, "run", "-f", "-"); err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if body := scripts.only(t).Script.Body; body != "return 42" {
		t.Errorf("Body = %q, want stdin contents", body)
	}
}

func TestRun_MissingFile(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, Dependencies{})
	missing := filepath.Join(t.TempDir(), "missing.applescript")

	err := app.execute(t, "run", "--file", missing)
	requireServiceError(t, err, 1, issue.ScriptFileNotFoundId)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error = %v, want fs.ErrNotExist", err)
	}
}

func TestRun_CompiledScriptRejected(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "compiled.scpt")
	testutil.MustWriteFile(t, path, "FasdUAS\x00\x01", 0o644)
	app := newTestApp(t, Dependencies{})

	err := app.execute(t, "run", "--file", path)
	requireServiceError(t, err, 1, 0)
	if !errors.Is(err, errNotTextScript) {
		t.Errorf("error = %v, want errNotTextScript", err)
	}
}

func TestRun_DryRun(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, Dependencies{})

	if err := app.execute(t, "run", "--dry-run", "--timeout", "5s", `return "hi"`, "--", "a b"); err != nil {
		t.Fatalf("execute() error = %v", err)
	}

	out := app.stdout.String()
	for _, want := range []string{
		"Dry Run",
		"Interpreter: " + osascript.DefaultPath,
		"Language: AppleScript",
		"Timeout: 5s",
		osascript.DefaultPath + ` -l AppleScript -e 'return "hi"' 'a b'`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dry run output missing %q:\n%s", want, out)
		}
	}
}

func TestRun_InterpreterStartFailure(t *testing.T) {
	t.Parallel()

	startErr := fmt.Errorf("failed to start /usr/bin/osascript: %w", fs.ErrNotExist)
	scripts := &fakeScripts{t: t, result: &osascript.Result{ExitCode: 1}, err: startErr}
	app := newTestApp(t, Dependencies{Scripts: scripts})

	wantIssue := issue.InterpreterNotFoundId
	if !platform.HostSupportsOSA() {
		wantIssue = issue.HostNotSupportedId
	}
	requireServiceError(t, app.execute(t, "run", "beep"), 1, wantIssue)
}

func TestClassifyRunError(t *testing.T) {
	t.Parallel()

	notFound := issue.InterpreterNotFoundId
	if !platform.HostSupportsOSA() {
		notFound = issue.HostNotSupportedId
	}

	tests := []struct {
		name string
		err  error
		want issue.Id
	}{
		{"no script", fmt.Errorf("wrap: %w", errNoScript), 0},
		{
			"compiled script",
			issue.NewErrorContext().WithOperation(opReadScript).Wrap(errNotTextScript).BuildError(),
			0,
		},
		{"timeout", fmt.Errorf("run osascript: %w", context.DeadlineExceeded), issue.TimeoutId},
		{"invalid language", &osascript.InvalidLanguageError{Value: "ruby"}, issue.InvalidLanguageId},
		{"script error", &osascript.ScriptError{Message: "nope"}, issue.ScriptExecutionFailedId},
		{"interpreter missing", fmt.Errorf("start: %w", fs.ErrNotExist), notFound},
		{"interpreter not executable", fmt.Errorf("start: %w", fs.ErrPermission), issue.PermissionDeniedId},
		{
			"unreadable script",
			issue.NewErrorContext().WithOperation(opReadScript).Wrap(fs.ErrPermission).BuildError(),
			issue.PermissionDeniedId,
		},
		{"unknown", osascript.ErrUnknown, issue.ScriptExecutionFailedId},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, styled := classifyRunError(tt.err, false)
			if got != tt.want {
				t.Errorf("classifyRunError() issue = %d, want %d", got, tt.want)
			}
			if !strings.Contains(styled, tt.err.Error()) {
				t.Errorf("styled message %q does not contain %q", styled, tt.err.Error())
			}
		})
	}
}

func TestRunExitCode(t *testing.T) {
	t.Parallel()

	if got := runExitCode(context.Canceled, &osascript.Result{ExitCode: 137}); got != 130 {
		t.Errorf("canceled: got %d, want 130", got)
	}
	if got := runExitCode(errors.New("x"), &osascript.Result{ExitCode: 4}); got != 4 {
		t.Errorf("script exit: got %d, want 4", got)
	}
	timedOut := fmt.Errorf("run osascript: %w", context.DeadlineExceeded)
	if got := runExitCode(timedOut, &osascript.Result{ExitCode: 137}); got != 1 {
		t.Errorf("timeout: got %d, want 1", got)
	}
	if got := runExitCode(errors.New("x"), nil); got != 1 {
		t.Errorf("no result: got %d, want 1", got)
	}
}

func TestCommandLine(t *testing.T) {
	t.Parallel()

	got := commandLine("/usr/bin/osascript", []string{"-l", "AppleScript", "-e", "it's", "$HOME"})
	want := `/usr/bin/osascript -l AppleScript -e "it's" '$HOME'`
	if got != want {
		t.Errorf("commandLine() = %s, want %s", got, want)
	}
}

func TestRunnerService_FakeInterpreter(t *testing.T) {
	t.Parallel()

	interpreter := testutil.FakeInterpreter{EchoArgs: true}.Install(t, t.TempDir())
	app := newTestApp(t, Dependencies{})
	app.Scripts = &runnerService{commander: osascript.DefaultCommander{}, app: app.App}

	if err := app.execute(t, "run", "--interpreter", interpreter, "-l", "js", "1", "--", "x"); err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if got, want := app.stdout.String(), "-l\nJavaScript\n-e\n1\nx\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestRunnerService_FakeInterpreterFailure(t *testing.T) {
	t.Parallel()

	interpreter := testutil.FakeInterpreter{Stderr: "execution error: nope\n", ExitCode: 1}.Install(t, t.TempDir())
	app := newTestApp(t, Dependencies{})
	app.Scripts = &runnerService{commander: osascript.DefaultCommander{}, app: app.App}

	svcErr := requireServiceError(t, app.execute(t, "run", "--interpreter", interpreter, "x"), 1, issue.ScriptExecutionFailedId)
	if svcErr.Err.Error() != "execution error: nope" {
		t.Errorf("error = %q, want trimmed stderr", svcErr.Err.Error())
	}
}

func TestRunnerService_StdoutTracing(t *testing.T) {
	t.Parallel()

	interpreter := testutil.FakeInterpreter{Stdout: "done"}.Install(t, t.TempDir())
	cfg := config.DefaultConfig()
	cfg.Trace.Exporter = config.TraceExporterStdout
	app := newTestApp(t, Dependencies{Config: &fakeConfigProvider{cfg: cfg}})
	app.Scripts = &runnerService{commander: osascript.DefaultCommander{}, app: app.App}

	if err := app.execute(t, "run", "--interpreter", interpreter, "x"); err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if app.stdout.String() != "done" {
		t.Errorf("stdout = %q, want done", app.stdout.String())
	}
	if !strings.Contains(app.stderr.String(), `"Name":"osascript.Execute"`) {
		t.Errorf("stderr missing exported span:\n%s", app.stderr.String())
	}
}
