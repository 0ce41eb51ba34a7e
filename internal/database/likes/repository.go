// Package likes implements the like/unlike engine for songs and comments.
//
// Each operation checks the target, changes the join relation and moves the
// target's num_likes counter in one transaction, so the counter always equals
// the size of the liking set.
//
// # Usage
//
//	repo := likes.NewRepository(db)
//	err := repo.LikeSong(ctx, songID, userID)
//	if errors.Is(err, entities.ErrAlreadyLiked) { ... }
package likes

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/soundwave/internal/database"
	"github.com/mrlokans/soundwave/internal/database/counters"
	"github.com/mrlokans/soundwave/internal/entities"
)

// Repository handles all like database operations.
type Repository struct {
	db *database.Database
}

// NewRepository creates a new likes repository.
func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db}
}

// LikeSong adds userID to the song's likers and increments num_likes.
func (r *Repository) LikeSong(ctx context.Context, songID, userID uint) error {
	return r.db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := database.RequireExists(tx, entities.KindSong, &entities.Song{}, songID); err != nil {
			return err
		}
		if err := insertEdge(tx, &entities.SongLike{UserID: userID, SongID: songID}); err != nil {
			return err
		}
		return counters.ApplyDelta(tx, entities.KindSong, songID, counters.NumLikes, 1)
	})
}

// UnlikeSong removes userID from the song's likers and decrements num_likes.
func (r *Repository) UnlikeSong(ctx context.Context, songID, userID uint) error {
	return r.db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := database.RequireExists(tx, entities.KindSong, &entities.Song{}, songID); err != nil {
			return err
		}
		err := deleteEdge(tx, &entities.SongLike{}, "user_id = ? AND song_id = ?", userID, songID)
		if err != nil {
			return err
		}
		return counters.ApplyDelta(tx, entities.KindSong, songID, counters.NumLikes, -1)
	})
}

// LikeComment works on top-level comments and replies alike.
func (r *Repository) LikeComment(ctx context.Context, commentID, userID uint) error {
	return r.db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := database.RequireExists(tx, entities.KindComment, &entities.Comment{}, commentID); err != nil {
			return err
		}
		if err := insertEdge(tx, &entities.CommentLike{UserID: userID, CommentID: commentID}); err != nil {
			return err
		}
		return counters.ApplyDelta(tx, entities.KindComment, commentID, counters.NumLikes, 1)
	})
}

func (r *Repository) UnlikeComment(ctx context.Context, commentID, userID uint) error {
	return r.db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := database.RequireExists(tx, entities.KindComment, &entities.Comment{}, commentID); err != nil {
			return err
		}
		err := deleteEdge(tx, &entities.CommentLike{}, "user_id = ? AND comment_id = ?", userID, commentID)
		if err != nil {
			return err
		}
		return counters.ApplyDelta(tx, entities.KindComment, commentID, counters.NumLikes, -1)
	})
}

// insertEdge relies on the composite primary key: a duplicate insert is a
// no-op with zero rows affected.
func insertEdge(tx *gorm.DB, edge any) error {
	result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(edge)
	if result.Error != nil {
		return fmt.Errorf("failed to insert like: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return entities.ErrAlreadyLiked
	}
	return nil
}

func deleteEdge(tx *gorm.DB, model any, query string, args ...any) error {
	result := tx.Where(query, args...).Delete(model)
	if result.Error != nil {
		return fmt.Errorf("failed to delete like: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return entities.ErrNotLiked
	}
	return nil
}

func (r *Repository) HasLikedSong(ctx context.Context, songID, userID uint) (bool, error) {
	var count int64
	err := r.db.DB.WithContext(ctx).Model(&entities.SongLike{}).
		Where("user_id = ? AND song_id = ?", userID, songID).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) HasLikedComment(ctx context.Context, commentID, userID uint) (bool, error) {
	var count int64
	err := r.db.DB.WithContext(ctx).Model(&entities.CommentLike{}).
		Where("user_id = ? AND comment_id = ?", userID, commentID).
		Count(&count).Error
	return count > 0, err
}

// SongLikers returns every user who currently likes the song, oldest like first.
func (r *Repository) SongLikers(ctx context.Context, songID uint) ([]entities.User, error) {
	db := r.db.DB.WithContext(ctx)
	if err := database.RequireExists(db, entities.KindSong, &entities.Song{}, songID); err != nil {
		return nil, err
	}

	var users []entities.User
	err := db.
		Joins("JOIN song_likes ON song_likes.user_id = users.id").
		Where("song_likes.song_id = ?", songID).
		Order("song_likes.created_at ASC, users.id ASC").
		Find(&users).Error
	return users, err
}

// LikedSongs returns one page of the songs userID likes, most recent like first.
func (r *Repository) LikedSongs(ctx context.Context, userID uint, offset int) ([]entities.Song, error) {
	var songs []entities.Song
	err := r.db.DB.WithContext(ctx).
		Preload("Creator").
		Joins("JOIN song_likes ON song_likes.song_id = songs.id").
		Where("song_likes.user_id = ?", userID).
		Order("song_likes.created_at DESC, songs.id DESC").
		Limit(database.PageSize).
		Offset(database.Offset(offset)).
		Find(&songs).Error
	return songs, err
}
