package main

import (
	"github.com/spf13/cobra"
)

func newStatsCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print cohort statistics as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap(cmd, f)
			if err != nil {
				return err
			}
			svc, err := newService(cfg, log)
			if err != nil {
				return err
			}
			if err := svc.Start(cmd.Context()); err != nil {
				return err
			}
			defer svc.Stop()

			st, err := svc.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), st)
		},
	}
}
