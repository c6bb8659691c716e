package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jcgiron/centavo/internal/classify"
	"github.com/jcgiron/centavo/internal/model"
	"github.com/jcgiron/centavo/internal/storage"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage classification rules",
		Long: `Rules match transaction descriptions against merchants. A criterion is a
literal substring, a pattern with * wildcards, or an exact match when written
as =TEXT. Include rules assign; exclude rules veto matches for their own
merchant only. Rules are evaluated in creation order and the first
non-vetoed include wins.`,
	}

	cmd.AddCommand(rulesListCmd())
	cmd.AddCommand(rulesAddCmd())
	cmd.AddCommand(rulesUpdateCmd())
	cmd.AddCommand(rulesDeleteCmd())
	cmd.AddCommand(rulesTestCmd())

	return cmd
}

// resolveMerchant accepts either a numeric merchant ID or a merchant name.
func resolveMerchant(ctx context.Context, store *storage.SQLiteStorage, ref string) (*model.Merchant, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return store.GetMerchantByID(ctx, id)
	}
	return store.GetMerchantByName(ctx, ref)
}

func rulesListCmd() *cobra.Command {
	var merchantID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List rules in evaluation order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			var rules []model.Rule
			if merchantID > 0 {
				rules, err = store.ListRulesByMerchant(ctx, merchantID)
			} else {
				rules, err = store.ListRules(ctx)
			}
			if err != nil {
				return err
			}
			if len(rules) == 0 {
				cmd.Println("No rules yet. Use 'centavo rules add' to create one.")
				return nil
			}

			merchants, err := store.ListMerchants(ctx)
			if err != nil {
				return err
			}
			merchantNames := make(map[int64]string, len(merchants))
			for _, m := range merchants {
				merchantNames[m.ID] = m.Name
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintln(w, "ID\tKIND\tCRITERION\tMERCHANT\tLABEL")
			for i := range rules {
				rule := &rules[i]
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
					rule.ID, rule.Kind, rule.Criterion,
					merchantNames[rule.MerchantID], rule.Label)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&merchantID, "merchant", 0, "only rules for this merchant ID")
	return cmd
}

func rulesAddCmd() *cobra.Command {
	var (
		merchantRef string
		kind        string
		label       string
	)

	cmd := &cobra.Command{
		Use:   "add <criterion>",
		Short: "Add a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			// Fail early on a bad merchant rather than on the insert.
			merchant, err := resolveMerchant(ctx, store, merchantRef)
			if err != nil {
				return err
			}

			rule := &model.Rule{
				Label:      label,
				Kind:       model.RuleKind(kind),
				Criterion:  args[0],
				MerchantID: merchant.ID,
			}
			if err := store.CreateRule(ctx, rule); err != nil {
				return err
			}
			cmd.Printf("Created rule %d (%s %q) for %s\n", rule.ID, rule.Kind, rule.Criterion, merchant.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&merchantRef, "merchant", "", "merchant ID or name the rule belongs to")
	cmd.Flags().StringVar(&kind, "kind", "include", "rule kind (include, exclude)")
	cmd.Flags().StringVar(&label, "label", "", "optional note shown in listings")
	_ = cmd.MarkFlagRequired("merchant")
	return cmd
}

func rulesUpdateCmd() *cobra.Command {
	var (
		criterion   string
		kind        string
		label       string
		merchantRef string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a rule",
		Long: `Change a rule's criterion, kind, label, or merchant. Only the flags
given change; run 'centavo classify --all' afterwards so existing
assignments reflect the edit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0], "rule")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rule, err := store.GetRuleByID(ctx, id)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("criterion") {
				rule.Criterion = criterion
			}
			if cmd.Flags().Changed("kind") {
				rule.Kind = model.RuleKind(kind)
			}
			if cmd.Flags().Changed("label") {
				rule.Label = label
			}
			if cmd.Flags().Changed("merchant") {
				merchant, err := resolveMerchant(ctx, store, merchantRef)
				if err != nil {
					return err
				}
				rule.MerchantID = merchant.ID
			}

			if err := store.UpdateRule(ctx, rule); err != nil {
				return err
			}
			cmd.Printf("Updated rule %d (%s %q)\n", rule.ID, rule.Kind, rule.Criterion)
			return nil
		},
	}

	cmd.Flags().StringVar(&criterion, "criterion", "", "new criterion")
	cmd.Flags().StringVar(&kind, "kind", "", "rule kind (include, exclude)")
	cmd.Flags().StringVar(&label, "label", "", "note shown in listings")
	cmd.Flags().StringVar(&merchantRef, "merchant", "", "merchant ID or name to move the rule to")
	return cmd
}

func rulesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0], "rule")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteRule(ctx, id); err != nil {
				return err
			}
			cmd.Printf("Deleted rule %d\n", id)
			return nil
		},
	}
}

func rulesTestCmd() *cobra.Command {
	var (
		merchantID int64
		kind       string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "test <criterion>",
		Short: "Preview what a rule would change",
		Long: `Evaluate a candidate rule alongside the existing rules without saving
anything. An include rule shows the transactions it would newly claim
(existing rules keep their matches and the merchant's excludes still
veto); an exclude rule shows the matches it would take away.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			candidate := model.Rule{
				Kind:       model.RuleKind(kind),
				Criterion:  args[0],
				MerchantID: merchantID,
			}
			matched, err := classify.New(store).PreviewRule(ctx, candidate)
			if err != nil {
				return err
			}
			if len(matched) == 0 {
				cmd.Println("No transactions match.")
				return nil
			}

			cmd.Printf("%d transactions match:\n", len(matched))
			for i := range matched {
				if i >= limit {
					cmd.Printf("... and %d more\n", len(matched)-limit)
					break
				}
				txn := &matched[i]
				cmd.Printf("  %s  %10.2f %s  %s\n",
					txn.Date.Format("2006-01-02"), txn.Amount, txn.Currency, txn.Description)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&merchantID, "merchant", 0, "merchant ID (needed for exclude previews)")
	cmd.Flags().StringVar(&kind, "kind", "include", "rule kind (include, exclude)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum transactions to print")
	return cmd
}
