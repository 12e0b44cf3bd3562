package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockLedgerRepository creates a GormLedgerRepository with a mocked SQL connection
func newMockLedgerRepository(t *testing.T) (*GormLedgerRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormLedgerRepository(gormDB), mock, mockDB
}

func TestTranslateError(t *testing.T) {
	t.Run("lock timeout maps to busy", func(t *testing.T) {
		err := translateError(&pgconn.PgError{Code: pgLockNotAvail})
		assert.ErrorIs(t, err, shared.ErrBusy)
	})

	t.Run("unique violation maps to duplicate ledger entry", func(t *testing.T) {
		err := translateError(&pgconn.PgError{Code: pgUniqueViolation})
		assert.ErrorIs(t, err, shared.ErrDuplicateLedger)
	})

	t.Run("wrapped pg errors are unwrapped", func(t *testing.T) {
		wrapped := errors.Join(errors.New("query failed"), &pgconn.PgError{Code: pgLockNotAvail})
		assert.ErrorIs(t, translateError(wrapped), shared.ErrBusy)
	})

	t.Run("other errors pass through", func(t *testing.T) {
		plain := errors.New("boom")
		assert.Equal(t, plain, translateError(plain))
	})
}

func TestGormLedgerRepository_FindByKey(t *testing.T) {
	t.Run("finds existing entry", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		entryID := uuid.New()
		tenantID := uuid.New()
		productID := uuid.New()
		locationID := uuid.New()

		rows := sqlmock.NewRows([]string{
			"id", "version", "tenant_id", "product_id", "location_type", "location_id", "quantity",
		}).AddRow(
			entryID, 1, tenantID, productID, "BRANCH", locationID, decimal.NewFromInt(42),
		)

		mock.ExpectQuery(`SELECT \* FROM "ledger_entries" WHERE tenant_id = \$1 AND product_id = \$2 AND location_type = \$3 AND location_id = \$4`).
			WillReturnRows(rows)

		entry, err := repo.FindByKey(context.Background(), tenantID, productID, inventory.BranchRef(locationID))

		require.NoError(t, err)
		assert.Equal(t, entryID, entry.ID)
		assert.Equal(t, productID, entry.ProductID)
		assert.Equal(t, inventory.BranchRef(locationID), entry.Location())
		assert.Equal(t, decimal.NewFromInt(42), entry.Quantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing entry", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "ledger_entries"`).
			WillReturnError(gorm.ErrRecordNotFound)

		entry, err := repo.FindByKey(context.Background(), uuid.New(), uuid.New(), inventory.WarehouseRef(uuid.New()))

		require.Error(t, err)
		assert.Nil(t, entry)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLedgerRepository_FindByKeyForUpdate(t *testing.T) {
	t.Run("locks the row", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		productID := uuid.New()
		locationID := uuid.New()

		rows := sqlmock.NewRows([]string{
			"id", "version", "tenant_id", "product_id", "location_type", "location_id", "quantity",
		}).AddRow(
			uuid.New(), 1, tenantID, productID, "WAREHOUSE", locationID, decimal.NewFromInt(5),
		)

		mock.ExpectQuery(`SELECT \* FROM "ledger_entries" WHERE .* FOR UPDATE`).
			WillReturnRows(rows)

		entry, err := repo.FindByKeyForUpdate(context.Background(), tenantID, productID, inventory.WarehouseRef(locationID))

		require.NoError(t, err)
		assert.Equal(t, decimal.NewFromInt(5), entry.Quantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lock timeout surfaces as busy", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "ledger_entries" WHERE .* FOR UPDATE`).
			WillReturnError(&pgconn.PgError{Code: pgLockNotAvail})

		_, err := repo.FindByKeyForUpdate(context.Background(), uuid.New(), uuid.New(), inventory.BranchRef(uuid.New()))

		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrBusy)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLedgerRepository_Create(t *testing.T) {
	t.Run("duplicate key surfaces as duplicate ledger entry", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		entry, err := inventory.NewLedgerEntry(uuid.New(), uuid.New(), inventory.BranchRef(uuid.New()))
		require.NoError(t, err)

		mock.ExpectExec(`INSERT INTO "ledger_entries"`).
			WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

		err = repo.Create(context.Background(), entry)

		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrDuplicateLedger)
	})
}

func TestGormLedgerRepository_SaveWithVersion(t *testing.T) {
	t.Run("stale version surfaces as concurrency conflict", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		entry, err := inventory.NewLedgerEntry(uuid.New(), uuid.New(), inventory.BranchRef(uuid.New()))
		require.NoError(t, err)
		require.NoError(t, entry.Adjust(decimal.NewFromInt(10), uuid.New()))

		mock.ExpectExec(`UPDATE "ledger_entries" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.SaveWithVersion(context.Background(), entry, 1)

		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("matching version updates the row", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		entry, err := inventory.NewLedgerEntry(uuid.New(), uuid.New(), inventory.BranchRef(uuid.New()))
		require.NoError(t, err)
		require.NoError(t, entry.Adjust(decimal.NewFromInt(10), uuid.New()))

		mock.ExpectExec(`UPDATE "ledger_entries" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.SaveWithVersion(context.Background(), entry, 1)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLedgerRepository_SumByProduct(t *testing.T) {
	repo, mock, mockDB := newMockLedgerRepository(t)
	defer mockDB.Close()

	tenantID := uuid.New()
	productID := uuid.New()

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(quantity\), 0\) as total FROM "ledger_entries"`).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(decimal.NewFromInt(120)))

	total, err := repo.SumByProduct(context.Background(), tenantID, productID)

	require.NoError(t, err)
	assert.Equal(t, decimal.NewFromInt(120), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
