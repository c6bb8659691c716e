package main

import (
	"github.com/spf13/cobra"

	"github.com/jcgiron/centavo/internal/classify"
)

func classifyCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Run the classification rules over transactions",
		Long: `Assign merchants to transactions by evaluating the stored rules.

By default only unassigned transactions are considered. With --all, every
assignment (manual ones included) is cleared and the whole ledger is
reclassified from scratch.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			engine := classify.New(store)

			var summary *classify.Summary
			if all {
				summary, err = engine.ReclassifyAll(ctx)
			} else {
				summary, err = engine.ClassifyNew(ctx)
			}
			if err != nil {
				return err
			}

			cmd.Printf("Classified %d of %d transactions\n", summary.Matched, summary.Considered)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "reset every assignment and reclassify the whole ledger")
	return cmd
}
