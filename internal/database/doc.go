// Package database provides the relationship store for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, retrying transactions
//	├── counters/        # Atomic +1/-1 deltas on denormalized counters
//	├── likes/           # Song and comment like/unlike
//	├── comments/        # Top-level comments and one-level replies
//	├── albums/          # Albums and song membership
//	├── songs/           # Song catalog, listens, trending, deletion
//	├── users/           # User management
//	├── reconcile/       # Recomputing counters from relations
//	└── audit/           # Audit event storage
//
// # Transactions
//
// Every engagement operation runs inside Database.Transaction so that the
// existence check, the relationship change and the counter delta commit as
// one unit:
//
//	err := db.Transaction(ctx, func(tx *gorm.DB) error {
//		// check, mutate edge, counters.ApplyDelta(tx, ...)
//	})
//
// The DSN opens transactions with BEGIN IMMEDIATE, so concurrent writers are
// serialized by SQLite. Busy or locked errors restart the transaction a bounded
// number of times before entities.ErrTransient is returned.
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct holding *database.Database
//  3. Add NewRepository(db *database.Database) constructor
//  4. Route every counter change through counters.ApplyDelta on the tx handle
//  5. Add compile-time interface check in internal/interfaces
package database
