package main

import (
	"github.com/spf13/cobra"

	"github.com/sitekit/sitekit/pkg/pg"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply or inspect database migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(pg.MigrateUp), string(pg.MigrateDown), string(pg.MigrateStatus)},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := pg.MigrateUp
			if len(args) == 1 {
				command = pg.Command(args[0])
			}

			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.migrate(cmd.Context(), command); err != nil {
				return err
			}
			cmd.Printf("migrate %s: done\n", command)
			return nil
		},
	}
}
