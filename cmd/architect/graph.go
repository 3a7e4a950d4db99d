package main

import (
	"fmt"

	"github.com/aretw0/architect/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph [user]",
	Short: "Export the wizard state diagram",
	Long:  `Outputs a Mermaid diagram (graph TD) of the wizard. With a user, highlights their current state.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			fmt.Print(graph.GenerateMermaid(nil))
			return nil
		}

		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		state, err := app.Engine.Current(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Print(graph.GenerateMermaid(&graph.Overlay{Current: state}))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
