package cmd

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/spf13/cobra"

	"github.com/envstack/envstack/internal/config"
	"github.com/envstack/envstack/internal/environment"
)

// newEnvironment builds an Environment from the resolved config file, the
// CLI preferences, and freshly constructed AWS clients.
func newEnvironment(cmd *cobra.Command) (*environment.Environment, error) {
	prefs := getPrefsFromContext(cmd)

	clients, err := newAWSClients(cmd.Context(), prefs)
	if err != nil {
		return nil, err
	}

	return environment.New(environment.Options{
		ConfigFile:    resolveConfigFile(prefs),
		CreateMissing: !noCreateMissing,
		Prefs:         prefs,
		Clients:       clients,
	}), nil
}

// newAWSClients loads the shared AWS configuration, honoring the region and
// profile preferences, and builds the service clients the actions call.
func newAWSClients(ctx context.Context, prefs *config.Prefs) (environment.AWSClients, error) {
	cfgOpts := []func(*awsconfig.LoadOptions) error{}
	if prefs.Region != "" {
		cfgOpts = append(cfgOpts, awsconfig.WithRegion(prefs.Region))
	}
	if prefs.Profile != "" {
		cfgOpts = append(cfgOpts, awsconfig.WithSharedConfigProfile(prefs.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, cfgOpts...)
	if err != nil {
		return environment.AWSClients{}, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return environment.AWSClients{
		CloudFormation: cloudformation.NewFromConfig(awsCfg),
		S3:             s3.NewFromConfig(awsCfg),
		SNS:            sns.NewFromConfig(awsCfg),
		SQS:            sqs.NewFromConfig(awsCfg),
	}, nil
}
