// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/osakit/osakit/pkg/osascript"

	"github.com/spf13/cobra"
)

func newLanguagesCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported script languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromContext(cmd.Context())
			def, err := cfg.Language()
			if err != nil {
				def = osascript.DefaultLanguage
			}

			fmt.Fprintln(app.stdout, TitleStyle.Render("Languages"))
			fmt.Fprintln(app.stdout)
			for _, lang := range osascript.Languages() {
				name := CmdStyle.Render(fmt.Sprintf("%-12s", lang.Parameter()))
				aliases := VerboseStyle.Render("aliases: " + strings.Join(lang.Aliases(), ", "))
				marker := ""
				if lang == def {
					marker = " " + SuccessStyle.Render("(default)")
				}
				fmt.Fprintf(app.stdout, "  %s %s%s\n", name, aliases, marker)
			}
			return nil
		},
	}
}
