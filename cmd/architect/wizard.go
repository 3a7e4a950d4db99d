package main

import (
	"context"
	"os/user"

	"github.com/aretw0/architect/internal/cli"
	"github.com/spf13/cobra"
)

var wizardCmd = &cobra.Command{
	Use:     "wizard",
	Aliases: []string{"run"},
	Short:   "Compose a prompt interactively in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")
		name, _ := cmd.Flags().GetString("name")
		headless, _ := cmd.Flags().GetBool("headless")

		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		return cli.RunWizard(sigCtx, app, cli.WizardOptions{
			UserID:      userID,
			DisplayName: name,
			Headless:    headless,
		})
	},
}

func defaultUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "local"
}

func init() {
	rootCmd.AddCommand(wizardCmd)
	wizardCmd.Flags().String("user", defaultUser(), "User id the prompt is recorded for")
	wizardCmd.Flags().String("name", "", "Display name stored with the prompt")
	wizardCmd.Flags().Bool("headless", false, "Read answers from stdin without menus or colors")
}
