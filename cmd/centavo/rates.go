package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func ratesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Manage exchange rates",
		Long: `Exchange rates map foreign-currency transactions into quetzales for
reporting. One rate per currency; setting it again overwrites.`,
	}

	cmd.AddCommand(ratesListCmd())
	cmd.AddCommand(ratesSetCmd())
	cmd.AddCommand(ratesDeleteCmd())

	return cmd
}

func ratesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List exchange rates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rates, err := store.ListExchangeRates(ctx)
			if err != nil {
				return err
			}
			if len(rates) == 0 {
				cmd.Println("No exchange rates set.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintln(w, "CURRENCY\tRATE (GTQ)\tUPDATED")
			for _, rate := range rates {
				fmt.Fprintf(w, "%s\t%.4f\t%s\n",
					rate.Currency, rate.Value, rate.UpdatedAt.Format("2006-01-02"))
			}
			return nil
		},
	}
}

func ratesSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <currency> <rate>",
		Short: "Set the rate for a currency",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			currency := strings.ToUpper(args[0])
			value, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid rate %q", args[1])
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SetExchangeRate(ctx, currency, value); err != nil {
				return err
			}
			cmd.Printf("1 %s = %.4f GTQ\n", currency, value)
			return nil
		},
	}
}

func ratesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <currency>",
		Short: "Delete a currency's rate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			currency := strings.ToUpper(args[0])
			if err := store.DeleteExchangeRate(ctx, currency); err != nil {
				return err
			}
			cmd.Printf("Deleted rate for %s\n", currency)
			return nil
		},
	}
}
