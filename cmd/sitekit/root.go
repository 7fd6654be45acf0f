package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/sitekit/sitekit/pkg/config"
)

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:          "sitekit",
		Short:        "Multi-tenant hostname resolution service",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if envFile == "" {
				return config.LoadEnv()
			}
			return config.LoadEnv(envFile)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default .env if present)")

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newSeedCmd(),
		newResolveCmd(),
	)
	return root
}

// bootstrap loads configuration and wires the application. Callers must
// call app.close when done.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := loadConfig(nil)
	if err != nil {
		return nil, err
	}
	return newApp(ctx, cfg, newLogger(cfg))
}
