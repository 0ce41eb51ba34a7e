// Package interfaces documents the core abstractions used throughout the application.
//
// The package contains no runtime code. checks.go pins every concrete type to
// the interfaces its consumers declare, so a signature change breaks the build
// here instead of at wiring time in internal/entrypoint.
//
// # Interface Categories
//
// ## Store Interfaces (internal/http/stores.go)
//
//   - SongStore: song catalog, listens, trending, deletion
//   - SongLikeStore / CommentLikeStore: the like/unlike engine
//   - CommentStore: top-level comments and one-level replies
//   - AlbumStore: albums and song membership
//   - UserLister: user listing
//
// Controllers depend on these narrow slices rather than on repositories, so
// tests can stub a single method set.
//
// ## Reconciliation Interfaces (internal/services/interfaces.go)
//
//   - Reconciler: recompute counters from relations
//   - RecountAuditor: record the outcome of a pass
//   - ReportArchiver: persist full JSON reports
//
// ## Background Interfaces
//
//   - tasks.RecountRunner, tasks.AuditEventCleaner: task queue processors
//   - scheduler.Queue, http.RecountEnqueuer: enqueue work on the task queue
//
// ## Media Interfaces (internal/storage)
//
//   - Uploader / Store: upload a blob, get back the URL stored on the entity
//
// # Adding a New Counter
//
//  1. Add the column to the entity in internal/entities/music.go
//
//  2. Whitelist it in internal/database/counters:
//
//     const NumShares Field = "num_shares"
//
//     entities.KindSong: {NumLikes: true, ..., NumShares: true},
//
//  3. Change it only through counters.ApplyDelta on the transaction handle
//     that changes the underlying relation:
//
//     err := r.db.Transaction(ctx, func(tx *gorm.DB) error {
//         // insert the share edge
//         return counters.ApplyDelta(tx, entities.KindSong, songID, counters.NumShares, 1)
//     })
//
//  4. Add a check to internal/database/reconcile so drift can be repaired
package interfaces
