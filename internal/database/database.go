package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/soundwave/internal/entities"
)

// PageSize is the fixed number of rows returned by every ranged listing.
const PageSize = 10

const txRetryBackoff = 20 * time.Millisecond

// Options tunes the connection and the transaction retry loop.
type Options struct {
	MaxTxAttempts int
	BusyTimeout   time.Duration
	LogLevel      logger.LogLevel
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		MaxTxAttempts: 5,
		BusyTimeout:   5 * time.Second,
		LogLevel:      logger.Warn,
	}
}

type Database struct {
	DB *gorm.DB

	maxTxAttempts int
}

func NewDatabase(dbPath string, opts Options) (*Database, error) {
	if opts.MaxTxAttempts < 1 {
		opts.MaxTxAttempts = 1
	}

	gormLogger := logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  opts.LogLevel,
		IgnoreRecordNotFoundError: true,
	})

	db, err := gorm.Open(sqlite.Open(buildDSN(dbPath, opts.BusyTimeout)), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Album{},
		&entities.Song{},
		&entities.Comment{},
		&entities.SongLike{},
		&entities.CommentLike{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{DB: db, maxTxAttempts: opts.MaxTxAttempts}, nil
}

// buildDSN enables WAL so readers never block the writer, and makes every
// transaction BEGIN IMMEDIATE so the write lock is taken before the first read.
func buildDSN(dbPath string, busyTimeout time.Duration) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_journal_mode=WAL&_busy_timeout=%d&_foreign_keys=on&_txlock=immediate",
		dbPath, sep, busyTimeout.Milliseconds())
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the underlying connection is alive.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Transaction runs fn in a single transaction. When SQLite reports the
// database as busy or locked the whole transaction is retried, up to the
// configured attempt count, then ErrTransient is returned. fn may therefore
// run more than once and must not leak state outside tx.
func (d *Database) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= d.maxTxAttempts; attempt++ {
		err = d.DB.WithContext(ctx).Transaction(fn)
		if err == nil || !IsBusy(err) {
			return err
		}

		if attempt == d.maxTxAttempts {
			break
		}
		log.Printf("Transaction busy (attempt %d/%d): %v", attempt, d.maxTxAttempts, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * txRetryBackoff):
		}
	}
	return fmt.Errorf("%w: %v", entities.ErrTransient, err)
}

// IsBusy reports whether err is SQLite lock contention worth retrying.
func IsBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}

// ParseLogLevel maps a config string onto a GORM log level. Unknown values fall back to warn.
func ParseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// Offset clamps a caller-supplied listing offset to a non-negative value.
func Offset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

// RequireExists returns NotFound(kind, id) when no row of model has the id.
func RequireExists(tx *gorm.DB, kind entities.EntityKind, model any, id uint) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up %s %d: %w", kind, id, err)
	}
	if count == 0 {
		return entities.NotFound(kind, id)
	}
	return nil
}

// IsUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY constraint failure.
func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
