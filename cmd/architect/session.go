package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect wizard sessions in progress",
	Long:  `List, inspect and remove sessions. Only meaningful with the file or redis session backend.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all active sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		users, err := app.Engine.ActiveSessions(cmd.Context())
		if err != nil {
			return err
		}
		if len(users) == 0 {
			fmt.Println("No active sessions found.")
			return nil
		}
		fmt.Println("Active Sessions:")
		for _, u := range users {
			fmt.Println("- " + u)
		}
		return nil
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <user>",
	Short: "Show the state of a user's wizard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		state, err := app.Engine.Current(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(state)
		return nil
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <user>",
	Short: "Cancel a user's wizard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Engine.Cancel(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Session '%s' removed.\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd, sessionInspectCmd, sessionRmCmd)
}
