package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/envstack/envstack/internal/constants"
	"github.com/envstack/envstack/internal/deploy"
	"github.com/envstack/envstack/internal/output"
)

var (
	noMonitor    bool
	deployParams []string
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the rendered root template",
	Long: `Create or update the environment stack from the root template rendered by
a previous create run. Stack events stream to the terminal until the stack
reaches a terminal state; pass --no-monitor to fire and forget.`,
	Run: runDeploy,
}

func init() {
	rootCmd.AddCommand(deployCmd)
	deployCmd.Flags().BoolVar(&noMonitor, "no-monitor", false,
		"Start the deployment without monitoring stack events")
	deployCmd.Flags().StringArrayVar(&deployParams, "param", []string{},
		"Stack parameter as name=value (repeatable)")
}

func runDeploy(cmd *cobra.Command, _ []string) {
	env, err := newEnvironment(cmd)
	if err != nil {
		output.Fatalf("%v", err)
	}

	if err := env.LoadConfig(); err != nil {
		output.Fatalf("Deploy failed: %v", err)
	}

	for _, binding := range deployParams {
		name, value, ok := strings.Cut(binding, "=")
		if !ok || name == "" {
			output.Fatalf("Invalid --param %q, expected name=value", binding)
		}
		env.SetDeployParameter(name, value)
	}

	if !noMonitor {
		stackName := env.Config().String("global", "environment_name", constants.ProjectName)
		if err := env.RegisterEventHandler(deploy.NewStackProgressHandler(stackName, debug)); err != nil {
			output.Fatalf("%v", err)
		}
	}

	if err := env.DeployAction(cmd.Context()); err != nil {
		output.Fatalf("Deploy failed: %v", err)
	}
}
