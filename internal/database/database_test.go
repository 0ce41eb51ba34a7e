package database

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/soundwave/internal/entities"
)

func setupTestDB(t *testing.T, attempts int) *Database {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	opts := DefaultOptions()
	opts.MaxTxAttempts = attempts
	opts.LogLevel = logger.Silent

	db, err := NewDatabase(dbPath, opts)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func TestNewDatabase_MigratesAllTables(t *testing.T) {
	db := setupTestDB(t, 1)

	for _, table := range []string{"users", "songs", "albums", "comments", "song_likes", "comment_likes", "audit_events"} {
		assert.True(t, db.DB.Migrator().HasTable(table), "missing table %s", table)
	}
	require.NoError(t, db.Ping(context.Background()))
}

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN("./data.db", 0)
	assert.Contains(t, dsn, "./data.db?")
	assert.Contains(t, dsn, "_txlock=immediate")
	assert.Contains(t, dsn, "_journal_mode=WAL")

	dsn = buildDSN("file:data.db?cache=shared", 0)
	assert.Contains(t, dsn, "cache=shared&_journal_mode=WAL")
}

func TestTransaction_CommitsAndRollsBack(t *testing.T) {
	db := setupTestDB(t, 3)
	ctx := context.Background()

	err := db.Transaction(ctx, func(tx *gorm.DB) error {
		return tx.Create(&entities.User{Username: "kept"}).Error
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&entities.User{Username: "dropped"}).Error; err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.DB.Model(&entities.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestTransaction_DomainErrorsAreNotRetried(t *testing.T) {
	db := setupTestDB(t, 5)

	calls := 0
	err := db.Transaction(context.Background(), func(tx *gorm.DB) error {
		calls++
		return entities.ErrAlreadyLiked
	})

	assert.ErrorIs(t, err, entities.ErrAlreadyLiked)
	assert.Equal(t, 1, calls)
}

func TestTransaction_RetriesBusyThenTransient(t *testing.T) {
	db := setupTestDB(t, 3)

	calls := 0
	err := db.Transaction(context.Background(), func(tx *gorm.DB) error {
		calls++
		return fmt.Errorf("insert: %w", sqlite3.Error{Code: sqlite3.ErrBusy})
	})

	assert.ErrorIs(t, err, entities.ErrTransient)
	assert.Equal(t, 3, calls)
}

func TestTransaction_RecoversAfterBusy(t *testing.T) {
	db := setupTestDB(t, 3)

	calls := 0
	err := db.Transaction(context.Background(), func(tx *gorm.DB) error {
		calls++
		if calls == 1 {
			return sqlite3.Error{Code: sqlite3.ErrLocked}
		}
		return tx.Create(&entities.User{Username: "second-try"}).Error
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestIsBusy(t *testing.T) {
	assert.True(t, IsBusy(sqlite3.Error{Code: sqlite3.ErrBusy}))
	assert.True(t, IsBusy(fmt.Errorf("wrapped: %w", sqlite3.Error{Code: sqlite3.ErrLocked})))
	assert.False(t, IsBusy(sqlite3.Error{Code: sqlite3.ErrConstraint}))
	assert.False(t, IsBusy(errors.New("other")))
	assert.False(t, IsBusy(nil))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, ParseLogLevel("silent"))
	assert.Equal(t, logger.Info, ParseLogLevel("INFO"))
	assert.Equal(t, logger.Error, ParseLogLevel("error"))
	assert.Equal(t, logger.Warn, ParseLogLevel("nonsense"))
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Offset(-5))
	assert.Equal(t, 20, Offset(20))
}

func TestIsUniqueViolation(t *testing.T) {
	db := setupTestDB(t, 1)

	require.NoError(t, db.DB.Create(&entities.User{Username: "dup"}).Error)
	err := db.DB.Create(&entities.User{Username: "dup"}).Error

	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsUniqueViolation(errors.New("nope")))
}
