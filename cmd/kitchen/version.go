package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/kitchensink"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of kitchen",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "kitchen version %s\n", strings.TrimSpace(kitchensink.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
