package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcgiron/centavo/internal/account"
	"github.com/jcgiron/centavo/internal/classify"
	"github.com/jcgiron/centavo/internal/common"
	"github.com/jcgiron/centavo/internal/parser"
	"github.com/jcgiron/centavo/internal/storage"
)

func newTestLoader(t *testing.T) (*Loader, *storage.SQLiteStorage) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })

	deps := parser.Deps{
		Store:    store,
		Accounts: account.NewResolver(store),
	}
	return NewLoader(store, NewRegistry(), deps, classify.New(store)), store
}

func writeGenericCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "movimientos.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const genericCSV = `cuenta,titular,moneda_cuenta,fecha,descripcion,monto,tipo
GEN-001,JOSE GIRON,GTQ,02/06/2025,SUPERMERCADO PAIZ,350.00,debito
GEN-001,JOSE GIRON,GTQ,05/06/2025,PLANILLA JUNIO,"8,000.00",credito
`

func TestIngestGenericCSV(t *testing.T) {
	loader, store := newTestLoader(t)
	ctx := context.Background()
	path := writeGenericCSV(t, genericCSV)

	result, err := loader.Ingest(ctx, path, "generic")
	require.NoError(t, err)
	assert.False(t, result.Duplicate)
	assert.Equal(t, 2, result.Transactions)
	require.NotNil(t, result.Statement)
	assert.Equal(t, "GEN-001", result.Statement.AccountNumber)

	transactions, err := store.ListTransactionsByStatement(ctx, result.Statement.ID)
	require.NoError(t, err)
	require.Len(t, transactions, 2)
	assert.Equal(t, -350.0, transactions[0].Amount)
	assert.Equal(t, 8000.0, transactions[1].Amount)
}

func TestIngestDuplicateHash(t *testing.T) {
	loader, _ := newTestLoader(t)
	ctx := context.Background()
	path := writeGenericCSV(t, genericCSV)

	first, err := loader.Ingest(ctx, path, "generic")
	require.NoError(t, err)

	second, err := loader.Ingest(ctx, path, "generic")
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Zero(t, second.Transactions)
	assert.Equal(t, first.Statement.ID, second.Statement.ID)
}

func TestIngestUnknownTag(t *testing.T) {
	loader, _ := newTestLoader(t)
	path := writeGenericCSV(t, genericCSV)

	_, err := loader.Ingest(context.Background(), path, "no-such-bank")
	assert.ErrorIs(t, err, common.ErrUnsupportedStatement)
}

func TestIngestWrongExtension(t *testing.T) {
	loader, _ := newTestLoader(t)

	_, err := loader.Ingest(context.Background(), "statement.pdf", "generic")
	assert.ErrorIs(t, err, common.ErrUnsupportedExtension)
}

func TestIngestParseFailureRollsBackStatement(t *testing.T) {
	loader, store := newTestLoader(t)
	ctx := context.Background()
	// Headers present but no parseable rows.
	path := writeGenericCSV(t, "cuenta,titular,fecha,descripcion,monto,tipo\n")

	_, err := loader.Ingest(ctx, path, "generic")
	require.Error(t, err)

	statements, err := store.ListStatements(ctx)
	require.NoError(t, err)
	assert.Empty(t, statements)

	// With the row rolled back the same file can be ingested again.
	require.NoError(t, os.WriteFile(path, []byte(genericCSV), 0o600))
	result, err := loader.Ingest(ctx, path, "generic")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Transactions)
}

func TestRegistryTags(t *testing.T) {
	registry := NewRegistry()
	tags := registry.Tags()
	assert.Contains(t, tags, "monet-aho-gyt")
	assert.Contains(t, tags, "tc-bac")
	assert.Len(t, tags, 12)
}

func TestHashFileIsStable(t *testing.T) {
	path := writeGenericCSV(t, genericCSV)

	first, err := HashFile(path)
	require.NoError(t, err)
	second, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}
