package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransaction(walletID uuid.UUID) *domain.Transaction {
	return &domain.Transaction{
		WalletID:        walletID,
		TransactionID:   uuid.New(),
		TransactionType: domain.TransactionTypeCredit,
		Amount:          decimal.RequireFromString("15.00"),
		Balance:         decimal.RequireFromString("65.00"),
		Version:         2,
		CreatedAt:       time.Now().UTC().Truncate(time.Microsecond),
		Metadata:        domain.Metadata{"requestId": "req-1", "source": "test"},
	}
}

func txColumns() []string {
	return []string{"wallet_id", "transaction_id", "type", "amount", "balance", "version", "created", "metadata"}
}

func txRow(t *domain.Transaction) *pgxmock.Rows {
	md, _ := json.Marshal(t.Metadata)
	return pgxmock.NewRows(txColumns()).AddRow(
		t.WalletID, t.TransactionID, string(t.TransactionType),
		t.Amount, t.Balance, t.Version, t.CreatedAt, md,
	)
}

func TestTransactionRepo_GetLatestTransaction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM wallet.transactions WHERE wallet_id = \\$1\\s+ORDER BY version DESC LIMIT 1").
		WithArgs(txn.WalletID).
		WillReturnRows(txRow(txn))

	result, err := repo.GetLatestTransaction(context.Background(), txn.WalletID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, txn.WalletID, result.WalletID)
	assert.Equal(t, txn.TransactionID, result.TransactionID)
	assert.Equal(t, domain.TransactionTypeCredit, result.TransactionType)
	assert.Equal(t, "65.00", domain.FormatMoney(result.Balance))
	assert.Equal(t, "15.00", domain.FormatMoney(result.Amount))
	assert.Equal(t, int64(2), result.Version)
	assert.Equal(t, txn.CreatedAt, result.CreatedAt)
	assert.Equal(t, "req-1", result.Metadata["requestId"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetLatestTransaction_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM wallet.transactions").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(txColumns()))

	result, err := repo.GetLatestTransaction(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetLatestTransaction_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM wallet.transactions").
		WithArgs(pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	result, err := repo.GetLatestTransaction(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "scan transaction")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetLatestTransaction_BadMetadata(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction(uuid.New())

	rows := pgxmock.NewRows(txColumns()).AddRow(
		txn.WalletID, txn.TransactionID, string(txn.TransactionType),
		txn.Amount, txn.Balance, txn.Version, txn.CreatedAt, []byte("not-json"),
	)
	mock.ExpectQuery("SELECT .+ FROM wallet.transactions").
		WithArgs(txn.WalletID).
		WillReturnRows(rows)

	_, err = repo.GetLatestTransaction(context.Background(), txn.WalletID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal transaction metadata")
}

func TestTransactionRepo_AppendTransaction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction(uuid.New())
	md, _ := json.Marshal(txn.Metadata)

	mock.ExpectExec("INSERT INTO wallet.transactions").
		WithArgs(
			txn.WalletID, txn.TransactionID, "CREDIT",
			domain.RoundMoney(txn.Amount), domain.RoundMoney(txn.Balance),
			txn.Version, txn.CreatedAt, md,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.AppendTransaction(context.Background(), txn)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_AppendTransaction_NilMetadataStoredAsEmptyObject(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction(uuid.New())
	txn.Metadata = nil

	mock.ExpectExec("INSERT INTO wallet.transactions").
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			[]byte("{}"),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.AppendTransaction(context.Background(), txn))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_AppendTransaction_VersionConflict(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction(uuid.New())

	mock.ExpectExec("INSERT INTO wallet.transactions").
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "wallet_id_version_unique"})

	err = repo.AppendTransaction(context.Background(), txn)
	var conflict *domain.ConcurrentModificationError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, txn.WalletID, conflict.WalletID)
	assert.Equal(t, int64(2), conflict.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_AppendTransaction_OtherUniqueViolation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction(uuid.New())

	mock.ExpectExec("INSERT INTO wallet.transactions").
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "transactions_transaction_id_key"})

	err = repo.AppendTransaction(context.Background(), txn)
	require.Error(t, err)
	var conflict *domain.ConcurrentModificationError
	assert.False(t, errors.As(err, &conflict))
	assert.Contains(t, err.Error(), "insert transaction")
}

func TestHealthCheck(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	hc := NewHealthCheck(mock)
	assert.Equal(t, "postgresql", hc.Name())

	mock.ExpectQuery("to_regclass").WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	assert.NoError(t, hc.Ping(context.Background()))

	mock.ExpectQuery("to_regclass").WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	err = hc.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run migrations")

	mock.ExpectQuery("to_regclass").WillReturnError(errors.New("down"))
	assert.Error(t, hc.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrationFiles_Embedded(t *testing.T) {
	up, err := migrationFiles.ReadFile("migrations/000001_create_transactions.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(up), "wallet_id_version_unique")
	assert.Contains(t, string(up), "NUMERIC(20, 2)")

	_, err = migrationFiles.ReadFile("migrations/000001_create_transactions.down.sql")
	require.NoError(t, err)
}
