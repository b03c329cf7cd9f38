package main

import (
	"fmt"
	"os"

	"github.com/aretw0/kitchensink/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "kitchen",
	Short: "Kitchen keeps a catalog on disk in sync with Redis",
	Long: `Kitchen is a small daemon built on the kitchensink toolkit. It keeps a catalog
persisted on disk, refreshes it from Redis on a schedule and shuts down
gracefully on SIGINT or SIGTERM.`,
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
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the YAML configuration file")
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}
