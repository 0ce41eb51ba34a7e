package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/soundwave/internal/auth"
	"github.com/mrlokans/soundwave/internal/database/users"
	"github.com/mrlokans/soundwave/internal/entities"
)

// GetUserID extracts the authenticated user's ID from the Gin context.
// Returns 0 for anonymous requests.
func GetUserID(c *gin.Context) uint {
	return auth.GetUserID(c)
}

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"` // machine-readable error code
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: "invalid_input"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondError translates a domain error into its HTTP status and body.
// Anything unrecognized, invariant violations included, is a logged 500.
func respondError(c *gin.Context, err error, context string) {
	status, code := classifyError(err)
	if status == http.StatusInternalServerError {
		respondInternalError(c, err, context)
		return
	}
	if status == http.StatusServiceUnavailable {
		log.Printf("Transient failure (%s): %v", context, err)
		c.Header("Retry-After", "1")
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
}

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, entities.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, entities.ErrAlreadyLiked):
		return http.StatusBadRequest, "already_liked"
	case errors.Is(err, entities.ErrNotLiked):
		return http.StatusBadRequest, "not_liked"
	case errors.Is(err, entities.ErrAlreadyInAlbum):
		return http.StatusBadRequest, "already_in_album"
	case errors.Is(err, entities.ErrNotInAlbum):
		return http.StatusBadRequest, "not_in_album"
	case errors.Is(err, entities.ErrInvalidDepth):
		return http.StatusBadRequest, "invalid_depth"
	case errors.Is(err, entities.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, entities.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case isBodyTooLarge(err):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, entities.ErrTransient):
		return http.StatusServiceUnavailable, "transient"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, users.ErrUsernameTaken):
		return http.StatusConflict, "username_taken"
	default:
		return http.StatusInternalServerError, ""
	}
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL parameters.
// Returns the parsed ID or responds with a 400 error and returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

// parseOffset reads the optional ?offset= listing parameter.
func parseOffset(c *gin.Context) (int, bool) {
	raw := c.Query("offset")
	if raw == "" {
		return 0, true
	}
	offset, err := strconv.Atoi(raw)
	if err != nil || offset < 0 {
		respondBadRequest(c, "offset must be a non-negative integer")
		return 0, false
	}
	return offset, true
}
