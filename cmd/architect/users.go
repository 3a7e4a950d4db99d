package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/architect/pkg/broadcast"
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage the whitelist",
	Long:  `List, add and remove allowed users. Every subcommand acts as the admin given by --as.`,
}

var usersLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List admins and allowed users",
	RunE: func(cmd *cobra.Command, args []string) error {
		admin, _ := cmd.Flags().GetString("as")
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		allowed, admins, err := app.Engine.Members(cmd.Context(), admin)
		if err != nil {
			return err
		}
		fmt.Println("Admins:")
		for _, a := range admins {
			fmt.Println("- " + a)
		}
		fmt.Println("\nUsers:")
		for _, u := range allowed {
			fmt.Println("- " + u)
		}
		return nil
	},
}

var usersAddCmd = &cobra.Command{
	Use:   "add <user>",
	Short: "Allow a user to start the wizard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		admin, _ := cmd.Flags().GetString("as")
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Engine.Grant(cmd.Context(), admin, args[0]); err != nil {
			return err
		}
		fmt.Printf("✅ User %s added to the whitelist.\n", args[0])
		return nil
	},
}

var usersRmCmd = &cobra.Command{
	Use:   "rm <user>",
	Short: "Remove a user from the whitelist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		admin, _ := cmd.Flags().GetString("as")
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Engine.Revoke(cmd.Context(), admin, args[0]); err != nil {
			return err
		}
		fmt.Printf("❌ User %s removed from the whitelist.\n", args[0])
		return nil
	},
}

var broadcastCmd = &cobra.Command{
	Use:   "broadcast <text>",
	Short: "Send an announcement to every allowed user",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		admin, _ := cmd.Flags().GetString("as")
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		text := strings.Join(args, " ")
		report, err := app.Engine.Broadcast(cmd.Context(), admin, text)
		if errors.Is(err, broadcast.ErrEmptyMessage) {
			return fmt.Errorf("usage: architect broadcast --as <admin> <text>")
		}
		if err != nil {
			return err
		}
		fmt.Printf("✅ Broadcast finished (%d of %d users).\n", len(report.Sent), report.Total())
		for user, ferr := range report.Failed {
			fmt.Printf("   %s: %v\n", user, ferr)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersLsCmd, usersAddCmd, usersRmCmd)
	usersCmd.PersistentFlags().String("as", "", "Admin user id performing the change")
	_ = usersCmd.MarkPersistentFlagRequired("as")

	rootCmd.AddCommand(broadcastCmd)
	broadcastCmd.Flags().String("as", "", "Admin user id sending the announcement")
	_ = broadcastCmd.MarkFlagRequired("as")
}
