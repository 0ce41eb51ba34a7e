// Package auth provides authentication for the application.
//
// Clients authenticate in one of two ways:
//   - Bearer: "Authorization: Bearer <jwt>" as returned by register and login
//   - Session: the "session" cookie set by login, stored in SQLite through scs
//
// Cookie-authenticated unsafe requests must also carry the X-CSRF-Token header.
//
// # Configuration
//
//	AUTH_JWT_SECRET=<secret>      # Auto-generated if empty, tokens then die with the process
//	AUTH_TOKEN_EXPIRY=720h        # Access token lifetime
//	AUTH_SESSION_LIFETIME=24h     # Cookie session duration
//	AUTH_BCRYPT_COST=10           # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true      # HTTPS-only cookies
//
// # Usage
//
//	tokens := auth.NewTokenManager(secret, cfg.Auth.TokenExpiry)
//	authService := auth.NewService(userRepo, tokens, cfg.Auth)
//	authMiddleware := auth.NewMiddleware(authService, sessionManager)
//	router.Use(sessionManager.SessionLoadSave(), authMiddleware.Handler())
//
// Extract user in handlers:
//
//	userID := auth.GetUserID(c) // 0 when anonymous
package auth
