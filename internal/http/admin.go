package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	dbaudit "github.com/mrlokans/soundwave/internal/database/audit"
	"github.com/mrlokans/soundwave/internal/entities"
	"github.com/mrlokans/soundwave/internal/services"
	"github.com/mrlokans/soundwave/internal/tasks"
)

// RecountEnqueuer hands a recount to the background task queue.
type RecountEnqueuer interface {
	EnqueueRecount(ctx context.Context, task tasks.RecountTask) (string, error)
}

// AuditEventReader reads the audit trail.
type AuditEventReader interface {
	GetEvents(filter dbaudit.Filter, limit, offset int) ([]entities.AuditEvent, int64, error)
}

type AdminController struct {
	runner RecountRunner
	queue  RecountEnqueuer
	events AuditEventReader
}

// NewAdminController creates the maintenance endpoints. queue and events may be nil.
func NewAdminController(runner RecountRunner, queue RecountEnqueuer, events AuditEventReader) *AdminController {
	return &AdminController{runner: runner, queue: queue, events: events}
}

type recountRequest struct {
	Kind entities.EntityKind `json:"kind"`
	ID   uint                `json:"id"`
	// Async enqueues the pass instead of running it within the request.
	Async bool `json:"async"`
}

// Recount handles POST /api/admin/recount
// An empty body recounts every song, comment and album.
func (ac *AdminController) Recount(c *gin.Context) {
	var req recountRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid recount request")
			return
		}
	}

	target := services.Target{Kind: req.Kind, ID: req.ID}
	if err := target.Validate(); err != nil {
		respondError(c, err, "recount")
		return
	}
	userID := GetUserID(c)

	if req.Async {
		if ac.queue == nil {
			respondBadRequest(c, "task queue is disabled")
			return
		}
		taskID, err := ac.queue.EnqueueRecount(c.Request.Context(), tasks.RecountTask{
			Kind:    target.Kind,
			ID:      target.ID,
			Trigger: services.TriggerManual,
			UserID:  userID,
		})
		if err != nil {
			respondInternalError(c, err, "enqueue recount")
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"taskId": taskID})
		return
	}

	result, err := ac.runner.Run(c.Request.Context(), target, services.TriggerManual, userID)
	if err != nil {
		respondError(c, err, "recount")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetActivity handles GET /api/profile/activity?limit=&offset=
// Returns the caller's own audit trail, newest first.
func (ac *AdminController) GetActivity(c *gin.Context) {
	if ac.events == nil {
		c.JSON(http.StatusOK, gin.H{"events": []entities.AuditEvent{}, "total": 0})
		return
	}

	offset, ok := parseOffset(c)
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 200 {
			respondBadRequest(c, "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	events, total, err := ac.events.GetEvents(dbaudit.Filter{UserID: GetUserID(c)}, limit, offset)
	if err != nil {
		respondInternalError(c, err, "get activity")
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "total": total})
}
