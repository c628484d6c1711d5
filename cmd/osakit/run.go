// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/osakit/osakit/internal/config"
	"github.com/osakit/osakit/internal/issue"
	"github.com/osakit/osakit/pkg/osascript"

	"github.com/spf13/cobra"
)

var (
	// errNoScript is returned when neither a script argument nor --file is given.
	errNoScript = errors.New("no script given")
	// errNotTextScript is returned when --file points at a compiled script.
	errNotTextScript = errors.New("file is not a text script")
)

// runOptions holds the flags of `osakit run`.
type runOptions struct {
	language    string
	file        string
	timeout     time.Duration
	interpreter string
	dryRun      bool
	// timeoutSet reports whether --timeout was given, so 0 can disable a
	// timeout from the config.
	timeoutSet bool
}

// newRunCommand creates the `osakit run` command.
func newRunCommand(app *App) *cobra.Command {
	var opts runOptions

	runCmd := &cobra.Command{
		Use:   "run [script] [-- args...]",
		Short: "Run a script with osascript",
		Long: `Run an AppleScript or JavaScript for Automation script with osascript.

The script is given inline as the first argument, or read from a file with
--file ('-' reads standard input). Remaining arguments are passed to the
script's run handler. Everything the script writes to standard output is
printed unchanged.`,
		Example: `  osakit run 'display notification "done"'
  osakit run -l JavaScript 'function run(argv) { return argv.join(",") }' -- a b
  osakit run -f backup.applescript
  echo 'return 1 + 1' | osakit run -f -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.timeoutSet = cmd.Flags().Changed("timeout")
			return runScript(cmd.Context(), app, opts, args)
		},
	}

	runCmd.Flags().StringVarP(&opts.language, "language", "l", "", "script language: AppleScript or JavaScript (default from config)")
	runCmd.Flags().StringVarP(&opts.file, "file", "f", "", "read the script from a file ('-' for standard input)")
	runCmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "stop the interpreter after this long (default from config, 0 = no limit)")
	runCmd.Flags().StringVar(&opts.interpreter, "interpreter", "", "path to the osascript binary (default from config)")
	runCmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print what would be executed without running it")

	_ = runCmd.RegisterFlagCompletionFunc("language", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var names []string
		for _, lang := range osascript.Languages() {
			names = append(names, lang.Parameter())
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})

	return runCmd
}

func runScript(ctx context.Context, app *App, opts runOptions, args []string) error {
	req, err := buildRunRequest(configFromContext(ctx), app.stdin, opts, args)
	if err != nil {
		return app.runFailure(err, nil)
	}

	if opts.dryRun {
		renderDryRun(app.stdout, req)
		return nil
	}

	res, err := app.Scripts.Execute(ctx, req)
	if err != nil {
		return app.runFailure(err, res)
	}

	app.logger.Debug("script finished", "duration", res.Duration)
	fmt.Fprint(app.stdout, res.Output)
	return nil
}

// buildRunRequest resolves flags against the configuration: flags win,
// config values fill the gaps.
func buildRunRequest(cfg *config.Config, stdin io.Reader, opts runOptions, args []string) (RunRequest, error) {
	langInput := opts.language
	if langInput == "" {
		langInput = cfg.DefaultLanguage
	}
	lang, err := osascript.ParseLanguage(langInput)
	if err != nil {
		return RunRequest{}, err
	}

	body, scriptArgs, err := scriptSource(stdin, opts.file, args)
	if err != nil {
		return RunRequest{}, err
	}

	interpreter := opts.interpreter
	if interpreter == "" {
		interpreter = cfg.Interpreter.Path
	}

	timeout := opts.timeout
	if !opts.timeoutSet {
		if timeout, err = cfg.InterpreterTimeout(); err != nil {
			return RunRequest{}, err
		}
	}

	return RunRequest{
		Script: osascript.Script{
			Body:     body,
			Language: lang,
			Args:     scriptArgs,
		},
		Interpreter: interpreter,
		Timeout:     timeout,
	}, nil
}

// scriptSource returns the script body and the arguments meant for the
// script. With --file every positional argument belongs to the script;
// otherwise the first one is the script itself.
func scriptSource(stdin io.Reader, file string, args []string) (string, []string, error) {
	switch file {
	case "":
		if len(args) == 0 {
			return "", nil, issue.NewErrorContext().
				WithOperation("run script").
				WithSuggestion("Pass the script as the first argument: osakit run 'return 1'").
				WithSuggestion("Or read it from a file with --file (use '-' for standard input)").
				Wrap(errNoScript).
				BuildError()
		}
		return args[0], args[1:], nil
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", nil, issue.NewErrorContext().
				WithOperation(opReadScript).
				WithResource("standard input").
				Wrap(err).
				BuildError()
		}
		return string(data), args, nil
	default:
		data, err := os.ReadFile(file)
		if err != nil {
			return "", nil, issue.NewErrorContext().
				WithOperation(opReadScript).
				WithResource(file).
				WithSuggestion("Verify the file path is correct").
				Wrap(err).
				BuildError()
		}
		// Compiled scripts (.scpt) are not text; osascript runs those by path.
		if strings.ContainsRune(string(data), 0) {
			return "", nil, issue.NewErrorContext().
				WithOperation(opReadScript).
				WithResource(file).
				WithSuggestion("Export the script as text (.applescript) from Script Editor").
				Wrap(errNotTextScript).
				BuildError()
		}
		return string(data), args, nil
	}
}

// runFailure wraps err for rendering and carries the exit code out of RunE.
func (app *App) runFailure(err error, res *osascript.Result) error {
	issueID, styled := classifyRunError(err, app.verbose)
	return &ExitError{
		Code: runExitCode(err, res),
		Err:  newServiceError(err, issueID, styled),
	}
}
