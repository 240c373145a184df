package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/envstack/envstack/internal/config"
	"github.com/envstack/envstack/internal/constants"
	"github.com/envstack/envstack/internal/output"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Configure per-user deployment preferences",
	Long: fmt.Sprintf(`Configure the per-user preferences applied to every environment: the AWS
region and profile, the template bucket child templates upload to, and the
canned ACL for uploaded objects.
This creates or updates the preferences file at ~/%s/%s`,
		constants.ConfigDirName, constants.ConfigFileName),
	Run: runConfigure,
}

func init() {
	rootCmd.AddCommand(configureCmd)
}

func runConfigure(cmd *cobra.Command, _ []string) {
	prefs := getPrefsFromContext(cmd)

	promptInto(&prefs.Region, "AWS region")
	promptInto(&prefs.Profile, "AWS profile")
	promptInto(&prefs.TemplateBucket, "Template bucket")
	promptInto(&prefs.TemplateUploadACL, "Template upload ACL")

	if err := config.SavePrefs(prefs); err != nil {
		output.Fatalf("Failed to save preferences: %v", err)
	}

	prefsPath, err := config.GetPrefsPath()
	if err != nil {
		output.Fatalf("Failed to get preferences path: %v", err)
	}

	output.Successf("Preferences saved")
	output.KeyValue("Preferences path", prefsPath)
}

// promptInto asks for a value, keeping the current one on empty input.
func promptInto(value *string, label string) {
	if *value != "" {
		label = fmt.Sprintf("%s [%s]", label, *value)
	}
	if response := output.Prompt(label); response != "" {
		*value = response
	}
}
