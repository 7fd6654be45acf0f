package main

import (
	"github.com/spf13/cobra"

	"github.com/sitekit/sitekit/pkg/httpserver"
	"github.com/sitekit/sitekit/pkg/logger"
	"github.com/sitekit/sitekit/pkg/pg"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.close()
			logger.SetAsDefault(a.log)

			if a.cfg.MigrateOnStart && a.pool != nil {
				if err := a.migrate(ctx, pg.MigrateUp); err != nil {
					return err
				}
			}

			a.log.InfoContext(ctx, "starting server",
				logger.Component("server"),
				logger.Domain(a.policy.BaseDomain()),
			)
			return httpserver.New(a.cfg.HTTP, a.log, httpserver.WithAddr(addr)).Run(ctx, newRouter(a))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides HTTP_ADDR")
	return cmd
}
