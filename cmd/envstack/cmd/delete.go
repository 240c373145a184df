package cmd

import (
	"github.com/spf13/cobra"

	"github.com/envstack/envstack/internal/constants"
	"github.com/envstack/envstack/internal/output"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the deployed environment stack",
	Long: `Delete the CloudFormation stack named by global.environment_name.
Nested stacks are deleted with it. Deletion progress is not monitored.`,
	Run: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false,
		"Delete without asking for confirmation")
}

func runDelete(cmd *cobra.Command, _ []string) {
	env, err := newEnvironment(cmd)
	if err != nil {
		output.Fatalf("%v", err)
	}

	if err := env.LoadConfig(); err != nil {
		output.Fatalf("Delete failed: %v", err)
	}

	stackName := env.Config().String("global", "environment_name", constants.ProjectName)
	if !deleteForce && !output.Confirm("Delete stack "+stackName+" and all nested stacks?") {
		output.Infof("Aborted")
		return
	}

	if err := env.DeleteAction(cmd.Context()); err != nil {
		output.Fatalf("Delete failed: %v", err)
	}
}
