// SPDX-License-Identifier: MPL-2.0

package osascript

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

const (
	helperEnv     = "OSASCRIPT_WANT_HELPER_PROCESS"
	helperModeEnv = "OSASCRIPT_HELPER_MODE"
)

// helperCommander re-executes the test binary in place of the interpreter.
// The child runs TestHelperProcess, which behaves according to mode.
type helperCommander struct {
	mode string
}

func (h helperCommander) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
	cmd := exec.CommandContext(ctx, os.Args[0], cs...)
	cmd.Env = append(os.Environ(), helperEnv+"=1", helperModeEnv+"="+h.mode)
	return cmd
}

// TestHelperProcess is not a real test. It stands in for the interpreter
// when spawned by helperCommander.
func TestHelperProcess(t *testing.T) {
	if os.Getenv(helperEnv) != "1" {
		return
	}

	args := os.Args
	for len(args) > 0 {
		if args[0] == "--" {
			args = args[1:]
			break
		}
		args = args[1:]
	}
	// args[0] is the interpreter path, the rest are interpreter arguments.
	interpArgs := args[1:]

	switch os.Getenv(helperModeEnv) {
	case "echo-args":
		fmt.Fprint(os.Stdout, strings.Join(interpArgs, "\x00"))
		os.Exit(0)
	case "stdout":
		fmt.Fprint(os.Stdout, "hello from osa\n\n")
		fmt.Fprint(os.Stderr, "warning ignored on success\n")
		os.Exit(0)
	case "stderr-fail":
		fmt.Fprint(os.Stdout, "partial")
		fmt.Fprint(os.Stderr, "0:5: execution error: boom (-2700)\n")
		os.Exit(1)
	case "silent-fail":
		os.Exit(3)
	case "blank-stderr-fail":
		fmt.Fprint(os.Stderr, "\n")
		os.Exit(4)
	case "signal":
		killSelf()
	case "sleep":
		time.Sleep(30 * time.Second)
		os.Exit(0)
	}
	os.Exit(2)
}

func newHelperRunner(mode string, opts ...Option) *Runner {
	opts = append([]Option{WithCommander(helperCommander{mode: mode})}, opts...)
	return New(opts...)
}

func TestArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		script Script
		want   []string
	}{
		{
			name:   "default language",
			script: Script{Body: `return "hi"`},
			want:   []string{"-l", "AppleScript", "-e", `return "hi"`},
		},
		{
			name:   "javascript",
			script: Script{Body: "1+1", Language: JavaScript},
			want:   []string{"-l", "JavaScript", "-e", "1+1"},
		},
		{
			name:   "arguments follow the script",
			script: Script{Body: "on run argv\nend run", Language: AppleScript, Args: []string{"a", "b c", ""}},
			want:   []string{"-l", "AppleScript", "-e", "on run argv\nend run", "a", "b c", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Args(tt.script); !slices.Equal(got, tt.want) {
				t.Errorf("Args() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	r := New()
	if r.Path() != DefaultPath {
		t.Errorf("Path() = %q, want %q", r.Path(), DefaultPath)
	}
	if r.Name() != "osascript" {
		t.Errorf("Name() = %q, want osascript", r.Name())
	}

	r = New(WithPath(""))
	if r.Path() != DefaultPath {
		t.Errorf("WithPath(\"\") changed path to %q", r.Path())
	}
}

func TestRunner_PassesCommandLine(t *testing.T) {
	t.Parallel()

	r := newHelperRunner("echo-args")
	out, err := r.Run(t.Context(), "run argv", JavaScript, "one", "two words")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got := strings.Split(out, "\x00")
	want := []string{"-l", "JavaScript", "-e", "run argv", "one", "two words"}
	if !slices.Equal(got, want) {
		t.Errorf("interpreter received %q, want %q", got, want)
	}
}

func TestRunner_SuccessReturnsStdoutExactly(t *testing.T) {
	t.Parallel()

	r := newHelperRunner("stdout")
	res, err := r.Execute(t.Context(), Script{Body: "x"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Output != "hello from osa\n\n" {
		t.Errorf("Output = %q, want untrimmed stdout", res.Output)
	}
	if res.ErrOutput != "warning ignored on success\n" {
		t.Errorf("ErrOutput = %q", res.ErrOutput)
	}
	if !res.ExitCode.IsSuccess() {
		t.Errorf("ExitCode = %d, want 0", res.ExitCode)
	}
}

func TestRunner_FailureCarriesStderr(t *testing.T) {
	t.Parallel()

	r := newHelperRunner("stderr-fail")
	res, err := r.Execute(t.Context(), Script{Body: "x"})

	var scriptErr *ScriptError
	if !errors.As(err, &scriptErr) {
		t.Fatalf("Execute() error = %T %v, want *ScriptError", err, err)
	}
	if scriptErr.Message != "0:5: execution error: boom (-2700)" {
		t.Errorf("Message = %q", scriptErr.Message)
	}

	var failed *CommandFailedError
	if !errors.As(err, &failed) || failed.Reason != ReasonExit || failed.Status != 1 {
		t.Errorf("cause = %+v, want exit status 1", failed)
	}
	if res == nil || res.ExitCode != 1 || res.Output != "partial" {
		t.Errorf("result = %+v", res)
	}

	out, err := r.Run(t.Context(), "x", AppleScript)
	if err == nil || out != "" {
		t.Errorf("Run() = %q, %v; want empty output and error", out, err)
	}
}

func TestRunner_SilentFailureSynthesizesMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode string
		want string
		code ExitCode
	}{
		{mode: "silent-fail", want: "osascript invocation failed: 1:3", code: 3},
		{mode: "blank-stderr-fail", want: "osascript invocation failed: 1:4", code: 4},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			t.Parallel()

			res, err := newHelperRunner(tt.mode).Execute(t.Context(), Script{Body: "x"})
			var scriptErr *ScriptError
			if !errors.As(err, &scriptErr) {
				t.Fatalf("error = %v, want *ScriptError", err)
			}
			if scriptErr.Message != tt.want {
				t.Errorf("Message = %q, want %q", scriptErr.Message, tt.want)
			}
			if res.ExitCode != tt.code {
				t.Errorf("ExitCode = %d, want %d", res.ExitCode, tt.code)
			}
		})
	}
}

func TestRunner_UsesConfiguredPath(t *testing.T) {
	t.Parallel()

	rec := &recordingCommander{}
	r := New(WithPath("/opt/bin/osascript"), WithCommander(rec))
	_, _ = r.Run(t.Context(), "x", AppleScript)

	if rec.name != "/opt/bin/osascript" {
		t.Errorf("commander received %q, want configured path", rec.name)
	}
}

func TestRunner_InvalidLanguage(t *testing.T) {
	t.Parallel()

	rec := &recordingCommander{}
	_, err := New(WithCommander(rec)).Execute(t.Context(), Script{Body: "x", Language: "Lua"})
	if !errors.Is(err, ErrInvalidLanguage) {
		t.Fatalf("error = %v, want ErrInvalidLanguage", err)
	}
	if rec.called {
		t.Error("interpreter should not be started for an invalid language")
	}
}

func TestRunner_MissingInterpreter(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "osascript")
	r := New(WithPath(missing))

	if r.Available() {
		t.Error("Available() = true for a missing interpreter")
	}

	_, err := r.Run(t.Context(), "x", AppleScript)
	if err == nil {
		t.Fatal("Run() with missing interpreter succeeded")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error = %v, want fs.ErrNotExist in chain", err)
	}
	if !strings.Contains(err.Error(), "failed to start") {
		t.Errorf("error = %q, want start failure", err)
	}
}

func TestRunner_Available(t *testing.T) {
	t.Parallel()

	if !New(WithPath(os.Args[0])).Available() {
		t.Error("Available() = false for the test binary")
	}
}

func TestRunner_Timeout(t *testing.T) {
	t.Parallel()

	r := newHelperRunner("sleep", WithTimeout(100*time.Millisecond))
	start := time.Now()
	_, err := r.Run(t.Context(), "delay 30", AppleScript)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want context.DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 20*time.Second {
		t.Errorf("timeout not honored, took %v", elapsed)
	}
}

func TestRunner_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := newHelperRunner("sleep").Run(ctx, "x", AppleScript)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

type recordingCommander struct {
	called bool
	name   string
	args   []string
}

func (c *recordingCommander) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	c.called = true
	c.name = name
	c.args = args
	return exec.CommandContext(ctx, os.Args[0], "-test.run=^$")
}
