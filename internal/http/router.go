package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/soundwave/internal/auth"
	"github.com/mrlokans/soundwave/internal/metrics"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	uploadLimit := cfg.MaxUploadBytes
	if uploadLimit <= 0 {
		uploadLimit = DefaultMaxUploadBytes
	}
	router.MaxMultipartMemory = min(uploadLimit, maxMultipartMemory)
	limitUpload := BodyLimitMiddleware(uploadLimit)

	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(SecurityHeadersMiddleware())
	if cfg.DemoMiddleware != nil {
		router.Use(cfg.DemoMiddleware.Handler())
	}

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.AuthService))
	}
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}
	router.Use(cfg.AuthMiddleware.Handler())
	requireAuth := cfg.AuthMiddleware.RequireAuth()

	// Health endpoints
	health := NewHealthController(cfg.Health, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	if cfg.MetricsEnabled {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}
	if cfg.MediaDir != "" {
		router.Static("/media", cfg.MediaDir)
	}

	api := router.Group("/api")

	// Auth endpoints
	var sessions SessionStore
	if cfg.SessionManager != nil {
		sessions = cfg.SessionManager
	}
	authController := NewAuthController(cfg.AuthService, sessions, cfg.Auditor)
	credentials := []gin.HandlerFunc{}
	if cfg.RateLimiter != nil {
		credentials = append(credentials, auth.RateLimitMiddleware(cfg.RateLimiter))
	}
	api.POST("/auth/register", append(credentials, authController.Register)...)
	api.POST("/auth/login", append(credentials, authController.Login)...)
	api.POST("/auth/logout", authController.Logout)
	api.GET("/auth/me", requireAuth, authController.Me)
	api.PATCH("/auth/update-me", requireAuth, authController.UpdateMe)
	api.PATCH("/auth/change-lang", requireAuth, authController.ChangeLang)
	api.PATCH("/auth/change-theme", requireAuth, authController.ChangeTheme)

	// Users
	usersController := NewUsersController(cfg.Users)
	api.GET("/users", usersController.GetUsers)

	// Songs
	songsController := NewSongsController(cfg.Songs, cfg.SongLikes, cfg.Albums, cfg.Media, cfg.Auditor)
	api.GET("/trending/songs", songsController.GetTrending)
	api.GET("/users/:userId/songs", songsController.GetUserSongs)
	api.GET("/profile/songs", requireAuth, songsController.GetProfileSongs)
	api.GET("/profile/liked-songs", requireAuth, songsController.GetLikedSongs)
	api.POST("/songs", requireAuth, limitUpload, songsController.CreateSong)
	api.GET("/songs/:id/liked", requireAuth, songsController.GetLiked)
	api.PATCH("/songs/:id/like", requireAuth, songsController.LikeSong)
	api.PATCH("/songs/:id/unlike", requireAuth, songsController.UnlikeSong)
	api.PATCH("/songs/:id/listen", requireAuth, songsController.ListenSong)
	api.PATCH("/songs/:id/add-to-album", requireAuth, songsController.AddToAlbum)
	api.PATCH("/songs/:id/remove-from-album", requireAuth, songsController.RemoveFromAlbum)
	api.DELETE("/songs/:id", requireAuth, songsController.DeleteSong)

	// Comments
	commentsController := NewCommentsController(cfg.Comments, cfg.CommentLikes, cfg.Auditor)
	api.GET("/songs/:id/comments", commentsController.GetSongComments)
	api.POST("/songs/:id/comments", requireAuth, commentsController.CreateComment)
	api.GET("/comments/:commentId/comments", commentsController.GetSubComments)
	api.POST("/comments/:commentId/comments", requireAuth, commentsController.CreateSubComment)
	api.GET("/comments/:commentId/liked", requireAuth, commentsController.GetLiked)
	api.PATCH("/comments/:commentId/like", requireAuth, commentsController.LikeComment)
	api.PATCH("/comments/:commentId/unlike", requireAuth, commentsController.UnlikeComment)

	// Albums
	albumsController := NewAlbumsController(cfg.Albums, cfg.Media)
	api.GET("/albums", albumsController.GetAlbums)
	api.POST("/albums", requireAuth, limitUpload, albumsController.CreateAlbum)

	// Maintenance and activity
	adminController := NewAdminController(cfg.Recount, cfg.RecountQueue, cfg.AuditEvents)
	api.POST("/admin/recount", cfg.AuthMiddleware.RequireAdmin(), adminController.Recount)
	api.GET("/profile/activity", requireAuth, adminController.GetActivity)

	return router
}
