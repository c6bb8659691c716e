package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/jcgiron/centavo/internal/ingest"
)

func importCmd() *cobra.Command {
	var statementType string

	cmd := &cobra.Command{
		Use:   "import <file-or-directory>",
		Short: "Import a bank statement file",
		Long: `Import one statement file, or every matching file in a directory.

The --type flag names the statement format, which determines the bank, the
accepted file extensions and the parser. Files already imported (by content
hash) are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			loader := newLoader(store)

			info, err := os.Stat(args[0])
			if err != nil {
				return fmt.Errorf("failed to stat %s: %w", args[0], err)
			}
			if info.IsDir() {
				return importDirectory(cmd, loader, args[0], statementType)
			}

			result, err := loader.Ingest(ctx, args[0], statementType)
			if err != nil {
				return err
			}
			printImportResult(cmd, filepath.Base(args[0]), result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&statementType, "type", "t", "", "statement type (see 'centavo import types')")
	_ = cmd.MarkFlagRequired("type")
	cmd.AddCommand(importTypesCmd())

	return cmd
}

func importTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List supported statement types",
		Run: func(cmd *cobra.Command, _ []string) {
			registry := ingest.NewRegistry()
			for _, tag := range registry.Tags() {
				format, _ := registry.Lookup(tag)
				cmd.Printf("%-20s %-12s %-14s %s\n",
					tag, format.Bank, strings.Join(format.Extensions, ","), format.Description)
			}
		},
	}
}

// importDirectory ingests every file in dir whose extension the statement
// type accepts. One bad file aborts the run; files before it stay imported
// and rerunning skips them by hash.
func importDirectory(cmd *cobra.Command, loader *ingest.Loader, dir, statementType string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if _, err := ingest.NewRegistry().Validate(statementType, path); err == nil {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		cmd.Printf("No %s files found in %s\n", statementType, dir)
		return nil
	}

	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Importing statements..."),
	)

	imported, duplicates, transactions := 0, 0, 0
	for _, path := range paths {
		result, err := loader.Ingest(cmd.Context(), path, statementType)
		if err != nil {
			_ = bar.Clear()
			return fmt.Errorf("failed on %s: %w", filepath.Base(path), err)
		}
		if result.Duplicate {
			duplicates++
		} else {
			imported++
			transactions += result.Transactions
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	cmd.Printf("\nImported %d statements (%d transactions, %d duplicates skipped)\n",
		imported, transactions, duplicates)
	return nil
}

func printImportResult(cmd *cobra.Command, name string, result *ingest.Result) {
	if result.Duplicate {
		cmd.Printf("%s already imported as statement %d (%s)\n",
			name, result.Statement.ID, result.Statement.UploadedAt.Format("2006-01-02"))
		return
	}
	cmd.Printf("Imported %s: %d transactions, %d classified (statement %d, account %s)\n",
		name, result.Transactions, result.Matched, result.Statement.ID, result.Statement.AccountNumber)
}
