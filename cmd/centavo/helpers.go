package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/viper"

	"github.com/jcgiron/centavo/internal/account"
	"github.com/jcgiron/centavo/internal/classify"
	"github.com/jcgiron/centavo/internal/config"
	"github.com/jcgiron/centavo/internal/ingest"
	"github.com/jcgiron/centavo/internal/parser"
	"github.com/jcgiron/centavo/internal/storage"
)

// initStorage opens the database named in the config and brings its schema up
// to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/centavo/centavo.db"
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// newLoader wires the full ingestion pipeline on top of an open store.
func newLoader(store *storage.SQLiteStorage) *ingest.Loader {
	deps := parser.Deps{
		Store:    store,
		Accounts: account.NewResolver(store),
	}
	return ingest.NewLoader(store, ingest.NewRegistry(), deps, classify.New(store))
}

// parseID parses a positional numeric ID argument.
func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID %q", what, arg)
	}
	return id, nil
}
