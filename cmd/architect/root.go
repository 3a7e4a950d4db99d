package main

import (
	"fmt"
	"os"

	"github.com/aretw0/architect/internal/cli"
	"github.com/aretw0/architect/internal/config"
	"github.com/aretw0/architect/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "architect",
	Short: "Prompt Architect composes photorealistic interior prompts",
	Long: `Prompt Architect walks a user through six choices (platform, interior,
photographer, lighting, angle and clutter) and composes a deterministic prompt
for image generators. It runs as a terminal wizard, an HTTP API or an MCP server.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().String("dir", "", "Directory containing the catalog JSON files (overrides catalog_dir)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json")
}

// loadConfig layers the persistent flags over the configuration file and environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		cfg.CatalogDir = dir
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if format, _ := cmd.Flags().GetString("log-format"); format != "" {
		cfg.Log.Format = format
	}
	return cfg, nil
}

// openApp builds the wired application for a command. Callers must Close it.
func openApp(cmd *cobra.Command) (*cli.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger := logging.New(level, cfg.Log.Format)
	for _, name := range cfg.IgnoredEnv {
		logger.Warn("Ignoring unknown environment variable", "name", name)
	}

	app, err := cli.Build(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("error initializing architect: %w", err)
	}
	return app, nil
}
