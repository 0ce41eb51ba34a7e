package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/soundwave/internal/entities"
	"github.com/mrlokans/soundwave/internal/metrics"
)

type CommentsController struct {
	comments CommentStore
	likes    CommentLikeStore
	auditor  Auditor
}

func NewCommentsController(comments CommentStore, likes CommentLikeStore, auditor Auditor) *CommentsController {
	return &CommentsController{
		comments: comments,
		likes:    likes,
		auditor:  auditorOrNop(auditor),
	}
}

type createCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// GetSongComments handles GET /api/songs/:id/comments
func (cc *CommentsController) GetSongComments(c *gin.Context) {
	songID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	offset, ok := parseOffset(c)
	if !ok {
		return
	}

	list, err := cc.comments.ListSongComments(c.Request.Context(), songID, offset)
	if err != nil {
		respondError(c, err, "list song comments")
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": list})
}

// CreateComment handles POST /api/songs/:id/comments
func (cc *CommentsController) CreateComment(c *gin.Context) {
	songID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "text is required")
		return
	}
	userID := GetUserID(c)

	start := time.Now()
	comment, err := cc.comments.CreateComment(c.Request.Context(), songID, userID, req.Text)
	metrics.Observe("comment_create", start, err)
	cc.auditor.LogEngagement(userID, "comment_create", entities.KindSong, songID, err)
	if err != nil {
		respondError(c, err, "create comment")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

// GetSubComments handles GET /api/comments/:commentId/comments
func (cc *CommentsController) GetSubComments(c *gin.Context) {
	commentID, ok := parseIDParam(c, "commentId")
	if !ok {
		return
	}

	list, err := cc.comments.ListSubComments(c.Request.Context(), commentID)
	if err != nil {
		respondError(c, err, "list sub comments")
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": list})
}

// CreateSubComment handles POST /api/comments/:commentId/comments
func (cc *CommentsController) CreateSubComment(c *gin.Context) {
	parentID, ok := parseIDParam(c, "commentId")
	if !ok {
		return
	}
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "text is required")
		return
	}
	userID := GetUserID(c)

	start := time.Now()
	reply, err := cc.comments.CreateSubComment(c.Request.Context(), parentID, userID, req.Text)
	metrics.Observe("reply_create", start, err)
	cc.auditor.LogEngagement(userID, "reply_create", entities.KindComment, parentID, err)
	if err != nil {
		respondError(c, err, "create sub comment")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": reply})
}

// GetLiked handles GET /api/comments/:commentId/liked
func (cc *CommentsController) GetLiked(c *gin.Context) {
	commentID, ok := parseIDParam(c, "commentId")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if _, err := cc.comments.GetComment(ctx, commentID); err != nil {
		respondError(c, err, "get comment")
		return
	}
	liked, err := cc.likes.HasLikedComment(ctx, commentID, GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "has liked comment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

// LikeComment handles PATCH /api/comments/:commentId/like
func (cc *CommentsController) LikeComment(c *gin.Context) {
	cc.toggleLike(c, "comment_like", cc.likes.LikeComment)
}

// UnlikeComment handles PATCH /api/comments/:commentId/unlike
func (cc *CommentsController) UnlikeComment(c *gin.Context) {
	cc.toggleLike(c, "comment_unlike", cc.likes.UnlikeComment)
}

func (cc *CommentsController) toggleLike(c *gin.Context, action string, apply func(ctx context.Context, commentID, userID uint) error) {
	commentID, ok := parseIDParam(c, "commentId")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	userID := GetUserID(c)

	start := time.Now()
	err := apply(ctx, commentID, userID)
	metrics.Observe(action, start, err)
	cc.auditor.LogEngagement(userID, action, entities.KindComment, commentID, err)
	if err != nil {
		respondError(c, err, action)
		return
	}

	// Respond with the refreshed counters.
	comment, err := cc.comments.GetComment(ctx, commentID)
	if err != nil {
		respondError(c, err, "reload comment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"comment": comment})
}
