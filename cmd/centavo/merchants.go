package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jcgiron/centavo/internal/model"
)

func merchantsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merchants",
		Short: "Manage merchants",
		Long: `Merchants are the buckets transactions are classified into. Each belongs
to at most one category and carries an accounting treatment (income, expense
or transfer).`,
	}

	cmd.AddCommand(merchantsListCmd())
	cmd.AddCommand(merchantsAddCmd())
	cmd.AddCommand(merchantsUpdateCmd())
	cmd.AddCommand(merchantsDeleteCmd())

	return cmd
}

func merchantsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List merchants",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			merchants, err := store.ListMerchants(ctx)
			if err != nil {
				return err
			}
			if len(merchants) == 0 {
				cmd.Println("No merchants yet. Use 'centavo merchants add' to create one.")
				return nil
			}

			categories, err := store.ListCategories(ctx)
			if err != nil {
				return err
			}
			categoryNames := make(map[int64]string, len(categories))
			for _, cat := range categories {
				categoryNames[cat.ID] = cat.Name
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintln(w, "ID\tNAME\tTREATMENT\tCATEGORY")
			for i := range merchants {
				m := &merchants[i]
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
					m.ID, m.Name, m.Treatment, categoryNames[m.CategoryID])
			}
			return nil
		},
	}
}

func merchantsAddCmd() *cobra.Command {
	var (
		treatment string
		category  string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a merchant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			merchant := &model.Merchant{
				Name:      args[0],
				Treatment: model.Treatment(treatment),
			}
			if category != "" {
				cat, err := store.GetCategoryByName(ctx, category)
				if err != nil {
					return fmt.Errorf("category %q: %w", category, err)
				}
				merchant.CategoryID = cat.ID
			}

			if err := store.CreateMerchant(ctx, merchant); err != nil {
				return err
			}
			cmd.Printf("Created merchant %d %q\n", merchant.ID, merchant.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&treatment, "treatment", "expense", "accounting treatment (income, expense, transfer)")
	cmd.Flags().StringVar(&category, "category", "", "category name")
	return cmd
}

func merchantsUpdateCmd() *cobra.Command {
	var (
		name      string
		treatment string
		category  string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a merchant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0], "merchant")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			merchant, err := store.GetMerchantByID(ctx, id)
			if err != nil {
				return err
			}
			if name != "" {
				merchant.Name = name
			}
			if treatment != "" {
				merchant.Treatment = model.Treatment(treatment)
			}
			if cmd.Flags().Changed("category") {
				merchant.CategoryID = 0
				if category != "" {
					cat, err := store.GetCategoryByName(ctx, category)
					if err != nil {
						return fmt.Errorf("category %q: %w", category, err)
					}
					merchant.CategoryID = cat.ID
				}
			}

			if err := store.UpdateMerchant(ctx, merchant); err != nil {
				return err
			}
			cmd.Printf("Updated merchant %d %q\n", merchant.ID, merchant.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new merchant name")
	cmd.Flags().StringVar(&treatment, "treatment", "", "accounting treatment (income, expense, transfer)")
	cmd.Flags().StringVar(&category, "category", "", "category name (empty to detach)")
	return cmd
}

func merchantsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a merchant",
		Long: `Delete a merchant together with its rules. Transactions assigned to it
become unassigned again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0], "merchant")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteMerchant(ctx, id); err != nil {
				return err
			}
			cmd.Printf("Deleted merchant %d\n", id)
			return nil
		},
	}
}
