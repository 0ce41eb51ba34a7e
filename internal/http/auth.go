package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/soundwave/internal/auth"
	"github.com/mrlokans/soundwave/internal/entities"
)

// AuthService is the slice of auth.Service the auth endpoints use.
type AuthService interface {
	Register(username, password string) (*entities.User, string, error)
	Authenticate(username, password string) (*entities.User, error)
	IssueToken(userID uint) (string, error)
	GetUserByID(id uint) (*entities.User, error)
	UpdateUsername(userID uint, username string) (*entities.User, error)
	ChangeLang(userID uint, lang entities.Lang) (*entities.User, error)
	ChangeTheme(userID uint, theme entities.Theme) (*entities.User, error)
}

// SessionStore binds browser sessions to users.
type SessionStore interface {
	CreateSession(r *http.Request, user *entities.User) error
	DestroySession(r *http.Request) error
}

type AuthController struct {
	service  AuthService
	sessions SessionStore
	auditor  Auditor
}

// NewAuthController creates the auth endpoints. sessions may be nil, in
// which case only bearer tokens are handed out.
func NewAuthController(service AuthService, sessions SessionStore, auditor Auditor) *AuthController {
	return &AuthController{service: service, sessions: sessions, auditor: auditorOrNop(auditor)}
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	// Session additionally sets a cookie session for browser clients.
	Session bool `json:"session"`
}

type updateMeRequest struct {
	Username string `json:"username" binding:"required"`
}

type changeLangRequest struct {
	Lang entities.Lang `json:"lang" binding:"required"`
}

type changeThemeRequest struct {
	Theme entities.Theme `json:"theme" binding:"required"`
}

type authResponse struct {
	AccessToken string         `json:"accessToken"`
	User        *entities.User `json:"user"`
}

// Register handles POST /api/auth/register
func (ac *AuthController) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "username and password are required")
		return
	}

	user, token, err := ac.service.Register(req.Username, req.Password)
	if err != nil {
		respondError(c, err, "register")
		return
	}
	ac.auditor.LogAuth(user.ID, "register", true)

	if !ac.startSession(c, req.Session, user) {
		return
	}
	c.JSON(http.StatusCreated, authResponse{AccessToken: token, User: user})
}

// Login handles POST /api/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "username and password are required")
		return
	}

	user, err := ac.service.Authenticate(req.Username, req.Password)
	if err != nil {
		ac.auditor.LogAuth(0, "login", false)
		respondError(c, err, "login")
		return
	}

	token, err := ac.service.IssueToken(user.ID)
	if err != nil {
		respondInternalError(c, err, "issue token")
		return
	}
	ac.auditor.LogAuth(user.ID, "login", true)

	if !ac.startSession(c, req.Session, user) {
		return
	}
	c.JSON(http.StatusOK, authResponse{AccessToken: token, User: user})
}

func (ac *AuthController) startSession(c *gin.Context, wanted bool, user *entities.User) bool {
	if !wanted || ac.sessions == nil {
		return true
	}
	if err := ac.sessions.CreateSession(c.Request, user); err != nil {
		respondInternalError(c, err, "create session")
		return false
	}
	return true
}

// Logout handles POST /api/auth/logout
// Bearer tokens are stateless; only a cookie session can be ended.
func (ac *AuthController) Logout(c *gin.Context) {
	if ac.sessions != nil && auth.GetAuthType(c) == auth.AuthTypeSession {
		if err := ac.sessions.DestroySession(c.Request); err != nil {
			respondInternalError(c, err, "destroy session")
			return
		}
		ac.auditor.LogAuth(GetUserID(c), "logout", true)
	}
	c.JSON(http.StatusOK, gin.H{"loggedOut": true})
}

// Me handles GET /api/auth/me
func (ac *AuthController) Me(c *gin.Context) {
	user, err := ac.service.GetUserByID(GetUserID(c))
	if err != nil {
		respondError(c, err, "get me")
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateMe handles PATCH /api/auth/update-me
func (ac *AuthController) UpdateMe(c *gin.Context) {
	var req updateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "username is required")
		return
	}

	if _, err := ac.service.UpdateUsername(GetUserID(c), req.Username); err != nil {
		respondError(c, err, "update me")
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

// ChangeLang handles PATCH /api/auth/change-lang
func (ac *AuthController) ChangeLang(c *gin.Context) {
	var req changeLangRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "lang is required")
		return
	}

	if _, err := ac.service.ChangeLang(GetUserID(c), req.Lang); err != nil {
		respondError(c, err, "change lang")
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": true})
}

// ChangeTheme handles PATCH /api/auth/change-theme
func (ac *AuthController) ChangeTheme(c *gin.Context) {
	var req changeThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "theme is required")
		return
	}

	if _, err := ac.service.ChangeTheme(GetUserID(c), req.Theme); err != nil {
		respondError(c, err, "change theme")
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": true})
}
