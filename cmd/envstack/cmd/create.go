package cmd

import (
	"github.com/spf13/cobra"

	"github.com/envstack/envstack/internal/output"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Render the environment templates",
	Long: `Render the root template and every attached child template from the
environment config, write the root into the templates directory, and
upload the children to the template bucket.

Missing config and image catalog files are created with factory defaults
unless --no-create-missing is set.`,
	Run: runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, _ []string) {
	env, err := newEnvironment(cmd)
	if err != nil {
		output.Fatalf("%v", err)
	}

	if err := env.CreateAction(cmd.Context()); err != nil {
		output.Fatalf("Create failed: %v", err)
	}
}
