package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage bank and card accounts",
		Long: `Accounts are created automatically during import, one per bank/type/number.
When the same account appears under two spellings (and ends up duplicated),
'accounts merge' folds one into the other.`,
	}

	cmd.AddCommand(accountsListCmd())
	cmd.AddCommand(accountsAliasCmd())
	cmd.AddCommand(accountsMergeCmd())

	return cmd
}

func accountsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			accounts, err := store.ListAccounts(ctx)
			if err != nil {
				return err
			}
			if len(accounts) == 0 {
				cmd.Println("No accounts yet. Import a statement to create one.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintln(w, "ID\tBANK\tTYPE\tNUMBER\tCURRENCY\tHOLDER\tALIAS\tALT NUMBERS")
			for i := range accounts {
				acct := &accounts[i]
				alternates, err := store.ListAccountNumbers(ctx, acct.ID)
				if err != nil {
					return err
				}
				numbers := make([]string, 0, len(alternates))
				for _, alt := range alternates {
					numbers = append(numbers, alt.Number)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					acct.ID, acct.Bank, acct.Type, acct.Number, acct.Currency,
					acct.Holder, acct.Alias, strings.Join(numbers, ", "))
			}
			return nil
		},
	}
}

func accountsAliasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "alias <id> <alias>",
		Short: "Set a friendly name for an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0], "account")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			account, err := store.GetAccountByID(ctx, id)
			if err != nil {
				return err
			}
			account.Alias = args[1]
			if err := store.UpdateAccount(ctx, account); err != nil {
				return err
			}
			cmd.Printf("Account %d (%s) is now %q\n", account.ID, account.Number, account.Alias)
			return nil
		},
	}
}

func accountsMergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge <source-id> <dest-id>",
		Short: "Merge one account into another",
		Long: `Move every transaction and alternate number from the source account onto
the destination, then delete the source. The source's number becomes an
alternate of the destination so future imports resolve to it.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			sourceID, err := parseID(args[0], "source account")
			if err != nil {
				return err
			}
			destID, err := parseID(args[1], "destination account")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.MergeAccounts(ctx, sourceID, destID); err != nil {
				return err
			}
			cmd.Printf("Merged account %d into %d\n", sourceID, destID)
			return nil
		},
	}
}
