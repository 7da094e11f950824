package persistence

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/utilitrack/backend/internal/domain/shared"
	"github.com/utilitrack/backend/internal/infrastructure/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockDatabase creates a Database backed by sqlmock with the postgres dialect
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewDatabaseFromGorm(db), mock, mockDB
}

func TestDatabase_PingAndStats(t *testing.T) {
	database, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	_ = mock
	require.NoError(t, database.Ping(context.Background()))

	stats, err := database.Stats()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.OpenConnections, 0)
	assert.Equal(t, "postgres", database.Driver())
}

func TestDatabase_TransactionRollsBackOnError(t *testing.T) {
	database, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := database.Transaction(context.Background(), func(tx *gorm.DB) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormBillRepository_StorageFailureIsNotMasked(t *testing.T) {
	database, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "bills"`)).
		WillReturnError(errors.New("connection reset by peer"))

	_, err := NewGormBillRepository(database.DB).FindByID(context.Background(), uuid.New())

	require.Error(t, err)
	assert.NotErrorIs(t, err, shared.ErrNotFound)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestGormReadingRepository_MarkProcessedIsConditional(t *testing.T) {
	database, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "meter_readings" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewGormReadingRepository(database.DB).MarkProcessed(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewDatabase_RejectsUnknownDriver(t *testing.T) {
	_, err := NewDatabase(&config.DatabaseConfig{Driver: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestNewDatabase_SQLiteInMemory(t *testing.T) {
	database, err := NewDatabase(&config.DatabaseConfig{Driver: DriverSQLite, SQLitePath: ":memory:"})
	require.NoError(t, err)
	defer database.Close()

	assert.Equal(t, "sqlite", database.Driver())
	require.NoError(t, database.Ping(context.Background()))
	stats, err := database.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MaxOpenConnections)
}
