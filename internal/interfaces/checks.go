package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/soundwave/internal/audit"
	"github.com/mrlokans/soundwave/internal/auth"
	"github.com/mrlokans/soundwave/internal/database"
	"github.com/mrlokans/soundwave/internal/database/albums"
	"github.com/mrlokans/soundwave/internal/database/comments"
	"github.com/mrlokans/soundwave/internal/database/likes"
	"github.com/mrlokans/soundwave/internal/database/reconcile"
	"github.com/mrlokans/soundwave/internal/database/songs"
	"github.com/mrlokans/soundwave/internal/database/users"
	"github.com/mrlokans/soundwave/internal/http"
	"github.com/mrlokans/soundwave/internal/scheduler"
	"github.com/mrlokans/soundwave/internal/services"
	"github.com/mrlokans/soundwave/internal/storage"
	"github.com/mrlokans/soundwave/internal/storage/providers/gcs"
	"github.com/mrlokans/soundwave/internal/storage/providers/local"
	"github.com/mrlokans/soundwave/internal/tasks"
)

// =============================================================================
// Relationship Store
// =============================================================================

var _ http.SongStore = (*songs.Repository)(nil)
var _ http.SongLikeStore = (*likes.Repository)(nil)
var _ http.CommentLikeStore = (*likes.Repository)(nil)
var _ http.CommentStore = (*comments.Repository)(nil)
var _ http.AlbumStore = (*albums.Repository)(nil)
var _ http.UserLister = (*users.Repository)(nil)
var _ http.Pinger = (*database.Database)(nil)
var _ auth.UserStore = (*users.Repository)(nil)

// =============================================================================
// Counter Reconciliation
// =============================================================================

var _ services.Reconciler = (*reconcile.Repository)(nil)
var _ services.RecountAuditor = (*audit.Service)(nil)
var _ services.ReportArchiver = (*audit.Archive)(nil)
var _ http.RecountRunner = (*services.RecountService)(nil)
var _ tasks.RecountRunner = (*services.RecountService)(nil)

// =============================================================================
// Audit Trail
// =============================================================================

var _ http.Auditor = (*audit.Service)(nil)
var _ http.AuditEventReader = (*audit.Service)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ http.RecountEnqueuer = (*tasks.Client)(nil)
var _ scheduler.Queue = (*tasks.Client)(nil)

// =============================================================================
// Authentication
// =============================================================================

var _ http.AuthService = (*auth.Service)(nil)
var _ http.SessionStore = (*auth.SessionManager)(nil)

// =============================================================================
// Media Storage
// =============================================================================

var _ storage.Store = (*local.Client)(nil)
var _ storage.Store = (*gcs.Client)(nil)
