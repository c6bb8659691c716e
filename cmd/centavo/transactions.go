package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "Inspect and flag transactions",
	}

	cmd.AddCommand(transactionsUnassignedCmd())
	cmd.AddCommand(transactionsFlagCmd())

	return cmd
}

func transactionsUnassignedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unassigned",
		Short: "List transactions with no merchant",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			transactions, err := store.ListUnassignedTransactions(ctx)
			if err != nil {
				return err
			}
			if len(transactions) == 0 {
				cmd.Println("Everything is classified.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintln(w, "ID\tDATE\tAMOUNT\tCURRENCY\tDESCRIPTION")
			for i := range transactions {
				txn := &transactions[i]
				fmt.Fprintf(w, "%d\t%s\t%.2f\t%s\t%s\n",
					txn.ID, txn.Date.Format("2006-01-02"), txn.Amount,
					txn.Currency, txn.Description)
			}
			return nil
		},
	}
}

func transactionsFlagCmd() *cobra.Command {
	var (
		skipClassification bool
		skipReports        bool
	)

	cmd := &cobra.Command{
		Use:   "flag <id>",
		Short: "Set a transaction's exclusion flags",
		Long: `Mark a transaction so the classifier skips it (--skip-classification)
and/or so reporting exports leave it out (--skip-reports). Omitting a flag
clears it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0], "transaction")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SetTransactionFlags(ctx, id, skipClassification, skipReports); err != nil {
				return err
			}
			cmd.Printf("Transaction %d: skip-classification=%v skip-reports=%v\n",
				id, skipClassification, skipReports)
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipClassification, "skip-classification", false, "exclude from classification passes")
	cmd.Flags().BoolVar(&skipReports, "skip-reports", false, "exclude from report exports")
	return cmd
}
