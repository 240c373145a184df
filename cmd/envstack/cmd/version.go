package cmd

import (
	"github.com/spf13/cobra"

	"github.com/envstack/envstack/internal/constants"
	"github.com/envstack/envstack/internal/output"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the version of the CLI",
	Run: func(_ *cobra.Command, _ []string) {
		output.KeyValue("Version", *constants.GetVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
