package http

import (
	"github.com/mrlokans/soundwave/internal/auth"
	"github.com/mrlokans/soundwave/internal/demo"
	"github.com/mrlokans/soundwave/internal/storage"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Stores
	Songs        SongStore
	SongLikes    SongLikeStore
	CommentLikes CommentLikeStore
	Comments     CommentStore
	Albums       AlbumStore
	Users        UserLister
	Health       Pinger

	// Media uploads
	Media storage.Store
	// MediaDir is served under /media when uploads are kept on local disk
	MediaDir string
	// MaxUploadBytes caps multipart request bodies; 0 uses DefaultMaxUploadBytes
	MaxUploadBytes int64

	// Audit trail (optional)
	Auditor     Auditor
	AuditEvents AuditEventReader

	// Counter reconciliation
	Recount      RecountRunner
	RecountQueue RecountEnqueuer // optional

	// Authentication
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager // optional
	RateLimiter    *auth.RateLimiter    // optional, guards login and register
	CSRFSecret     []byte
	SecureCookies  bool

	MetricsEnabled bool

	// Demo mode (optional), refuses writes
	DemoMiddleware *demo.Middleware

	// Application info
	Version string
}
