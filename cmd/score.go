package main

import (
	"github.com/spf13/cobra"
)

func newScoreCmd(f *rootFlags) *cobra.Command {
	var (
		limit int
		id    string
	)
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Print the highest priority clients as JSON",
		Long: `Load and score the cohort once, then print the top entries ordered by
score (ties keep source order). With --id, print that client's priority,
rankings and explanation instead.`,
		Args: cobra.NoArgs,
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

			if id != "" {
				detail, err := svc.Client(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), detail)
			}
			entries, err := svc.TopN(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), entries)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of clients to print")
	cmd.Flags().StringVar(&id, "id", "", "print the detail of one client")
	return cmd
}
