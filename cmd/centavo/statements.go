package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func statementsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "statements",
		Short: "Manage imported statement files",
	}

	cmd.AddCommand(statementsListCmd())
	cmd.AddCommand(statementsDeleteCmd())

	return cmd
}

func statementsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List imported statements",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			statements, err := store.ListStatements(ctx)
			if err != nil {
				return err
			}
			if len(statements) == 0 {
				cmd.Println("No statements imported yet.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintln(w, "ID\tUPLOADED\tTYPE\tBANK\tACCOUNT\tHOLDER\tFILE")
			for i := range statements {
				st := &statements[i]
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
					st.ID, st.UploadedAt.Format("2006-01-02"), st.Type,
					st.Bank, st.AccountNumber, st.Holder, st.Filename)
			}
			return nil
		},
	}
}

func statementsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a statement and its transactions",
		Long: `Delete a statement file record together with every transaction imported
from it. The file can then be imported again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0], "statement")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteStatement(ctx, id); err != nil {
				return err
			}
			cmd.Printf("Deleted statement %d and its transactions\n", id)
			return nil
		},
	}
}
