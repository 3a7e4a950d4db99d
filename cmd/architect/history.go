package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/architect/pkg/domain"
	"github.com/aretw0/architect/pkg/history"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history <user>",
	Short: "Show the most recent prompts of a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		records, err := app.Engine.ListRecent(cmd.Context(), args[0], limit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No prompts yet.")
			return nil
		}
		for _, rec := range records {
			fmt.Printf("#%d  %s\n%s\n\n", rec.ID, rec.CreatedAt.UTC().Format(history.TimeLayout), rec.Prompt)
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <user>",
	Short: "Export every prompt of a user",
	Long:  `Writes prompts_<user>.txt into --out, or prints the document when --out is empty.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")

		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if out == "" {
			doc, err := app.Engine.ExportAll(cmd.Context(), args[0])
			if errors.Is(err, domain.ErrNoHistory) {
				fmt.Println("No prompts to export yet.")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Print(string(doc))
			return nil
		}

		path, err := app.Engine.WriteExport(cmd.Context(), args[0], out)
		if errors.Is(err, domain.ErrNoHistory) {
			fmt.Println("No prompts to export yet.")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().Int("limit", 5, "Maximum number of prompts to show")

	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().String("out", "", "Directory to write the export file into")
}
