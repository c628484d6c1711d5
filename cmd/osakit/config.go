// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/osakit/osakit/internal/config"
	"github.com/osakit/osakit/internal/issue"

	"github.com/spf13/cobra"
)

const (
	dumpFormatCUE  = "cue"
	dumpFormatTOML = "toml"
	dumpFormatYAML = "yaml"
)

// newConfigCommand creates the `osakit config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage osakit configuration",
		Long: `Manage osakit configuration.

Configuration is stored in:
  - Linux: ~/.config/osakit/config.cue
  - macOS: ~/Library/Application Support/osakit/config.cue
  - Windows: %APPDATA%\osakit\config.cue

Every key can be overridden with an OSAKIT_* environment variable,
e.g. OSAKIT_INTERPRETER_PATH, OSAKIT_LOG_LEVEL or OSAKIT_TRACE_EXPORTER.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(app)
		},
	})

	var format string
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE, TOML or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return dumpConfig(cmd.Context(), app, format)
		},
	}
	dumpCmd.Flags().StringVar(&format, "format", dumpFormatCUE, "output format: cue, toml or yaml")
	cfgCmd.AddCommand(dumpCmd)

	return cfgCmd
}

// loadConfig reloads configuration strictly: unlike the root command it
// reports errors instead of falling back to the defaults.
func loadConfig(ctx context.Context, app *App) (*config.Config, error) {
	cfg, err := app.Config.Load(ctx, config.LoadOptions{ConfigFilePath: app.configPath})
	if err != nil {
		styled := fmt.Sprintf("\n%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, app.verbose))
		return nil, newServiceError(err, issue.ConfigLoadFailedId, styled)
	}
	return cfg, nil
}

func showConfig(ctx context.Context, app *App) error {
	cfg, err := loadConfig(ctx, app)
	if err != nil {
		return err
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	w := app.stdout

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	path, found, pathErr := config.ResolvePath(config.LoadOptions{ConfigFilePath: app.configPath})
	if pathErr == nil && found {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	timeout := cfg.Interpreter.Timeout
	if timeout == "" {
		timeout = SubtitleStyle.Render("(none)")
	} else {
		timeout = valueStyle.Render(timeout)
	}

	fmt.Fprintf(w, "%s:\n", keyStyle.Render("interpreter"))
	fmt.Fprintf(w, "  path: %s\n", valueStyle.Render(cfg.Interpreter.Path))
	fmt.Fprintf(w, "  timeout: %s\n", timeout)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("default_language"), valueStyle.Render(cfg.DefaultLanguage))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  color_scheme: %s\n", valueStyle.Render(string(cfg.UI.ColorScheme)))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("log"))
	fmt.Fprintf(w, "  level: %s\n", valueStyle.Render(string(cfg.Log.Level)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("trace"))
	fmt.Fprintf(w, "  exporter: %s\n", valueStyle.Render(string(cfg.Trace.Exporter)))

	return nil
}

func initConfig(app *App) error {
	path, created, err := config.CreateDefaultConfig()
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	if !created {
		fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), path)
		return nil
	}

	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

func showConfigPath(app *App) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	path, found, err := config.ResolvePath(config.LoadOptions{ConfigFilePath: app.configPath})
	if err != nil {
		return err
	}

	fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
	if found {
		fmt.Fprintf(app.stdout, "Config file: %s\n", path)
	} else {
		fmt.Fprintf(app.stdout, "Config file: %s %s\n", path, SubtitleStyle.Render("(not created)"))
	}

	return nil
}

func dumpConfig(ctx context.Context, app *App, format string) error {
	cfg, err := loadConfig(ctx, app)
	if err != nil {
		return err
	}

	switch format {
	case dumpFormatCUE:
		fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
	case dumpFormatTOML:
		out, err := config.GenerateTOML(cfg)
		if err != nil {
			return err
		}
		fmt.Fprint(app.stdout, out)
	case dumpFormatYAML:
		out, err := config.GenerateYAML(cfg)
		if err != nil {
			return err
		}
		fmt.Fprint(app.stdout, out)
	default:
		return fmt.Errorf("unknown format %q: must be one of %s, %s, %s", format, dumpFormatCUE, dumpFormatTOML, dumpFormatYAML)
	}

	return nil
}
