// Package comments manages the two-level comment tree hanging off songs.
//
// A top-level comment belongs to a song and bumps the song's num_comments.
// A reply belongs to a top-level comment and bumps its num_sub_comments.
// Replies to replies are rejected with entities.ErrInvalidDepth.
package comments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/soundwave/internal/database"
	"github.com/mrlokans/soundwave/internal/database/counters"
	"github.com/mrlokans/soundwave/internal/entities"
)

const maxTextLength = 2000

type Repository struct {
	db *database.Database
}

func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db}
}

// CreateComment adds a top-level comment to a song.
func (r *Repository) CreateComment(ctx context.Context, songID, creatorID uint, text string) (*entities.Comment, error) {
	text, err := normalizeText(text)
	if err != nil {
		return nil, err
	}

	var created *entities.Comment
	err = r.db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := database.RequireExists(tx, entities.KindSong, &entities.Song{}, songID); err != nil {
			return err
		}

		comment := &entities.Comment{
			Text:      text,
			Kind:      entities.CommentKindTopLevel,
			CreatorID: creatorID,
			SongID:    &songID,
		}
		if err := tx.Create(comment).Error; err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}
		if err := counters.ApplyDelta(tx, entities.KindSong, songID, counters.NumComments, 1); err != nil {
			return err
		}
		if err := tx.Preload("Creator").First(comment, comment.ID).Error; err != nil {
			return err
		}

		created = comment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CreateSubComment adds a reply under a top-level comment.
func (r *Repository) CreateSubComment(ctx context.Context, parentID, creatorID uint, text string) (*entities.Comment, error) {
	text, err := normalizeText(text)
	if err != nil {
		return nil, err
	}

	var created *entities.Comment
	err = r.db.Transaction(ctx, func(tx *gorm.DB) error {
		parent, err := getComment(tx, parentID)
		if err != nil {
			return err
		}
		if parent.IsReply() {
			return fmt.Errorf("comment %d is a reply: %w", parentID, entities.ErrInvalidDepth)
		}

		reply := &entities.Comment{
			Text:      text,
			Kind:      entities.CommentKindReply,
			CreatorID: creatorID,
			ParentID:  &parentID,
		}
		if err := tx.Create(reply).Error; err != nil {
			return fmt.Errorf("failed to create reply: %w", err)
		}
		if err := counters.ApplyDelta(tx, entities.KindComment, parentID, counters.NumSubComments, 1); err != nil {
			return err
		}
		if err := tx.Preload("Creator").First(reply, reply.ID).Error; err != nil {
			return err
		}

		created = reply
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ListSubComments returns the replies of a comment, oldest first. Reading
// never touches counters.
func (r *Repository) ListSubComments(ctx context.Context, commentID uint) ([]entities.Comment, error) {
	db := r.db.DB.WithContext(ctx)
	if err := database.RequireExists(db, entities.KindComment, &entities.Comment{}, commentID); err != nil {
		return nil, err
	}

	var replies []entities.Comment
	err := db.Preload("Creator").
		Where("parent_id = ?", commentID).
		Order("created_at ASC, id ASC").
		Find(&replies).Error
	return replies, err
}

// ListSongComments returns one page of a song's top-level comments, newest first.
func (r *Repository) ListSongComments(ctx context.Context, songID uint, offset int) ([]entities.Comment, error) {
	db := r.db.DB.WithContext(ctx)
	if err := database.RequireExists(db, entities.KindSong, &entities.Song{}, songID); err != nil {
		return nil, err
	}

	var comments []entities.Comment
	err := db.Preload("Creator").
		Where("song_id = ? AND kind = ?", songID, entities.CommentKindTopLevel).
		Order("created_at DESC, id DESC").
		Limit(database.PageSize).
		Offset(database.Offset(offset)).
		Find(&comments).Error
	return comments, err
}

func (r *Repository) GetComment(ctx context.Context, id uint) (*entities.Comment, error) {
	var comment entities.Comment
	err := r.db.DB.WithContext(ctx).Preload("Creator").First(&comment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entities.NotFound(entities.KindComment, id)
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func getComment(tx *gorm.DB, id uint) (*entities.Comment, error) {
	var comment entities.Comment
	err := tx.First(&comment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entities.NotFound(entities.KindComment, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load comment %d: %w", id, err)
	}
	return &comment, nil
}

func normalizeText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: comment text is empty", entities.ErrInvalidInput)
	}
	if len([]rune(text)) > maxTextLength {
		return "", fmt.Errorf("%w: comment text exceeds %d characters", entities.ErrInvalidInput, maxTextLength)
	}
	return text, nil
}
