package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcgiron/centavo/internal/common"
	"github.com/jcgiron/centavo/internal/model"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err, "failed to create storage")

	require.NoError(t, store.Migrate(context.Background()), "failed to migrate")
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func createTestAccount(t *testing.T, store *SQLiteStorage, number string) *model.Account {
	t.Helper()
	account := &model.Account{
		Bank:     "GYT",
		Type:     "MONET",
		Number:   number,
		Currency: "GTQ",
	}
	require.NoError(t, store.CreateAccount(context.Background(), account))
	return account
}

func createTestStatement(t *testing.T, store *SQLiteStorage, hash string) *model.StatementFile {
	t.Helper()
	st := &model.StatementFile{
		Type:     "monet-aho-gyt",
		Filename: "estado-" + hash + ".xlsx",
		Hash:     hash,
	}
	require.NoError(t, store.CreateStatement(context.Background(), st))
	return st
}

func makeTestTransactions(accountID, statementID int64, count int) []model.Transaction {
	txns := make([]model.Transaction, count)
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := range txns {
		amount := -float64(i+1) * 10.50
		txns[i] = model.Transaction{
			Date:        base.AddDate(0, 0, i),
			Description: fmt.Sprintf("COMPRA POS %02d", i+1),
			Currency:    "GTQ",
			Kind:        model.KindForAmount(amount),
			Amount:      amount,
			AccountID:   accountID,
			StatementID: statementID,
		}
	}
	return txns
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := createTestStorage(t)
	require.NoError(t, store.Migrate(context.Background()))

	var version int
	err := store.db.QueryRow("PRAGMA user_version").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestCreateAccountDuplicateNumber(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	createTestAccount(t, store, "046-001122-3")

	dup := &model.Account{Bank: "BI", Type: "MONET", Number: "046-001122-3"}
	err := store.CreateAccount(ctx, dup)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)
}

func TestGetAccountByNumberMatchesAlternates(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	account := createTestAccount(t, store, "0460011223")
	require.NoError(t, store.AddAccountNumber(ctx, &model.AlternateNumber{
		Number:    "046-001122-3",
		AccountID: account.ID,
	}))

	got, err := store.GetAccountByNumber(ctx, "GYT", "MONET", "046-001122-3")
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)

	_, err = store.GetAccountByNumber(ctx, "BI", "MONET", "046-001122-3")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetAccountByNumberScopesByTypePrefix(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	card := &model.Account{Bank: "GYT", Type: "TC-VISA", Number: "411111******1111"}
	require.NoError(t, store.CreateAccount(ctx, card))

	got, err := store.GetAccountByNumber(ctx, "GYT", "TC", "411111******1111")
	require.NoError(t, err)
	assert.Equal(t, card.ID, got.ID)

	_, err = store.GetAccountByNumber(ctx, "GYT", "MONET", "411111******1111")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCreateStatementDuplicateHash(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	createTestStatement(t, store, "abc123")

	dup := &model.StatementFile{Type: "tc-gyt", Filename: "otro.pdf", Hash: "abc123"}
	err := store.CreateStatement(ctx, dup)
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)

	found, err := store.GetStatementByHash(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "estado-abc123.xlsx", found.Filename)
}

func TestUpdateStatementMetadata(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	st := createTestStatement(t, store, "deadbeef")
	st.Bank = "GYT"
	st.AccountType = "MONET"
	st.AccountNumber = "046-001122-3"
	st.Holder = "JUAN PEREZ"
	st.Currency = "GTQ"
	st.OpeningBalance = 1500.25
	require.NoError(t, store.UpdateStatementMetadata(ctx, st))

	got, err := store.GetStatementByID(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, "GYT", got.Bank)
	assert.Equal(t, "046-001122-3", got.AccountNumber)
	assert.InDelta(t, 1500.25, got.OpeningBalance, 0.001)
}

func TestSaveTransactionsAtomic(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	account := createTestAccount(t, store, "123")
	st := createTestStatement(t, store, "hash1")

	txns := makeTestTransactions(account.ID, st.ID, 3)
	// Corrupt one row so the batch must fail validation before any insert.
	txns[2].Description = ""
	err := store.SaveTransactions(ctx, txns)
	require.Error(t, err)

	saved, err := store.ListTransactionsByStatement(ctx, st.ID)
	require.NoError(t, err)
	assert.Empty(t, saved)

	txns[2].Description = "COMPRA POS 03"
	require.NoError(t, store.SaveTransactions(ctx, txns))

	saved, err = store.ListTransactionsByStatement(ctx, st.ID)
	require.NoError(t, err)
	assert.Len(t, saved, 3)
}

func TestDeleteStatementRemovesTransactions(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	account := createTestAccount(t, store, "123")
	st := createTestStatement(t, store, "hash1")
	require.NoError(t, store.SaveTransactions(ctx, makeTestTransactions(account.ID, st.ID, 2)))

	require.NoError(t, store.DeleteStatement(ctx, st.ID))

	_, err := store.GetStatementByID(ctx, st.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	txns, err := store.ListTransactionsByStatement(ctx, st.ID)
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestApplyAssignmentsWithReset(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	account := createTestAccount(t, store, "123")
	st := createTestStatement(t, store, "hash1")
	require.NoError(t, store.SaveTransactions(ctx, makeTestTransactions(account.ID, st.ID, 3)))

	merchant := &model.Merchant{Name: "Super Despensa", Treatment: model.TreatmentExpense}
	require.NoError(t, store.CreateMerchant(ctx, merchant))

	txns, err := store.ListUnassignedTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txns, 3)

	require.NoError(t, store.ApplyAssignments(ctx, []Assignment{
		{TransactionID: txns[0].ID, MerchantID: merchant.ID},
		{TransactionID: txns[1].ID, MerchantID: merchant.ID},
	}, false))

	remaining, err := store.ListUnassignedTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)

	// A reset pass wipes prior assignments before applying the new ones.
	require.NoError(t, store.ApplyAssignments(ctx, []Assignment{
		{TransactionID: txns[2].ID, MerchantID: merchant.ID},
	}, true))

	remaining, err = store.ListUnassignedTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, remaining, 2)
}

func TestSkipClassificationExcludedFromListing(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	account := createTestAccount(t, store, "123")
	st := createTestStatement(t, store, "hash1")
	require.NoError(t, store.SaveTransactions(ctx, makeTestTransactions(account.ID, st.ID, 2)))

	txns, err := store.ListUnassignedTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txns, 2)

	require.NoError(t, store.SetTransactionFlags(ctx, txns[0].ID, true, false))

	txns, err = store.ListUnassignedTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, txns, 1)
}

func TestMergeAccounts(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	source := createTestAccount(t, store, "111")
	dest := createTestAccount(t, store, "222")
	st := createTestStatement(t, store, "hash1")
	require.NoError(t, store.SaveTransactions(ctx, makeTestTransactions(source.ID, st.ID, 2)))

	require.NoError(t, store.MergeAccounts(ctx, source.ID, dest.ID))

	_, err := store.GetAccountByID(ctx, source.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	// The source's number survives as an alternate of the destination.
	got, err := store.GetAccountByNumber(ctx, "GYT", "MONET", "111")
	require.NoError(t, err)
	assert.Equal(t, dest.ID, got.ID)

	txns, err := store.ListTransactionsByStatement(ctx, st.ID)
	require.NoError(t, err)
	for _, txn := range txns {
		assert.Equal(t, dest.ID, txn.AccountID)
	}
}

func TestDeleteMerchantUnassignsTransactions(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	account := createTestAccount(t, store, "123")
	st := createTestStatement(t, store, "hash1")
	require.NoError(t, store.SaveTransactions(ctx, makeTestTransactions(account.ID, st.ID, 1)))

	merchant := &model.Merchant{Name: "Gasolinera", Treatment: model.TreatmentExpense}
	require.NoError(t, store.CreateMerchant(ctx, merchant))
	require.NoError(t, store.CreateRule(ctx, &model.Rule{
		Kind:       model.RuleInclude,
		Criterion:  "GASOLINERA*",
		MerchantID: merchant.ID,
	}))

	txns, err := store.ListUnassignedTransactions(ctx)
	require.NoError(t, err)
	require.NoError(t, store.ApplyAssignments(ctx, []Assignment{
		{TransactionID: txns[0].ID, MerchantID: merchant.ID},
	}, false))

	require.NoError(t, store.DeleteMerchant(ctx, merchant.ID))

	rules, err := store.ListRules(ctx)
	require.NoError(t, err)
	assert.Empty(t, rules)

	txns, err = store.ListUnassignedTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, txns, 1)
}

func TestRuleUpdateRoundtrip(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	merchant := &model.Merchant{Name: "Cafeteria", Treatment: model.TreatmentExpense}
	require.NoError(t, store.CreateMerchant(ctx, merchant))

	rule := &model.Rule{
		Kind:       model.RuleInclude,
		Criterion:  "CAFE*",
		MerchantID: merchant.ID,
	}
	require.NoError(t, store.CreateRule(ctx, rule))

	rule.Criterion = "=CAFE BARISTA"
	rule.Label = "exact match only"
	require.NoError(t, store.UpdateRule(ctx, rule))

	got, err := store.GetRuleByID(ctx, rule.ID)
	require.NoError(t, err)
	assert.Equal(t, "=CAFE BARISTA", got.Criterion)
	assert.Equal(t, "exact match only", got.Label)

	_, err = store.GetRuleByID(ctx, rule.ID+100)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestGetMerchantByName(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	merchant := &model.Merchant{Name: "Supermercado La Torre", Treatment: model.TreatmentExpense}
	require.NoError(t, store.CreateMerchant(ctx, merchant))

	got, err := store.GetMerchantByName(ctx, "Supermercado La Torre")
	require.NoError(t, err)
	assert.Equal(t, merchant.ID, got.ID)

	_, err = store.GetMerchantByName(ctx, "Desconocido")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestExchangeRateUpsert(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SetExchangeRate(ctx, "USD", 7.75))
	require.NoError(t, store.SetExchangeRate(ctx, "USD", 7.80))

	rate, err := store.GetExchangeRate(ctx, "USD")
	require.NoError(t, err)
	assert.InDelta(t, 7.80, rate.Value, 0.001)

	rates, err := store.ListExchangeRates(ctx)
	require.NoError(t, err)
	assert.Len(t, rates, 1)

	require.NoError(t, store.DeleteExchangeRate(ctx, "USD"))
	_, err = store.GetExchangeRate(ctx, "USD")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestValidateTransactionKindMismatch(t *testing.T) {
	txn := model.Transaction{
		Date:        time.Now(),
		Description: "PAGO",
		Kind:        model.KindCredit,
		Amount:      -5,
		AccountID:   1,
		StatementID: 1,
	}
	err := validateTransaction(&txn)
	assert.ErrorIs(t, err, ErrInvalidTransaction)
}
