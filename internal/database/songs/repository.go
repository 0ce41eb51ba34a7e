// Package songs provides the song catalog: creation, lookups, listen counts,
// trending order and cascading deletion.
//
// # Usage
//
//	repo := songs.NewRepository(db)
//	song, err := repo.CreateSong(ctx, songs.CreateSongInput{...})
//	trending, err := repo.ListTrending(ctx, 0)
package songs

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

// Repository handles all song database operations.
type Repository struct {
	db *database.Database
}

// NewRepository creates a new songs repository.
func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db}
}

type CreateSongInput struct {
	Artist    string
	Name      string
	ImageURL  string
	AudioURL  string
	CreatorID uint
}

func (r *Repository) CreateSong(ctx context.Context, input CreateSongInput) (*entities.Song, error) {
	artist := strings.TrimSpace(input.Artist)
	name := strings.TrimSpace(input.Name)
	if artist == "" || name == "" {
		return nil, fmt.Errorf("%w: artist and name are required", entities.ErrInvalidInput)
	}

	song := &entities.Song{
		Artist:    artist,
		Name:      name,
		ImageURL:  input.ImageURL,
		AudioURL:  input.AudioURL,
		CreatorID: input.CreatorID,
	}
	if err := r.db.DB.WithContext(ctx).Create(song).Error; err != nil {
		return nil, fmt.Errorf("failed to create song: %w", err)
	}
	return song, nil
}

func (r *Repository) GetSong(ctx context.Context, id uint) (*entities.Song, error) {
	var song entities.Song
	err := r.db.DB.WithContext(ctx).Preload("Creator").First(&song, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entities.NotFound(entities.KindSong, id)
	}
	if err != nil {
		return nil, err
	}
	return &song, nil
}

// ListUserSongs returns one page of songs created by userID, newest first.
func (r *Repository) ListUserSongs(ctx context.Context, userID uint, offset int) ([]entities.Song, error) {
	var songs []entities.Song
	err := r.db.DB.WithContext(ctx).
		Preload("Creator").
		Where("creator_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(database.PageSize).
		Offset(database.Offset(offset)).
		Find(&songs).Error
	return songs, err
}

// ListTrending orders by listens, then likes. Ties fall back to id so pages are stable.
func (r *Repository) ListTrending(ctx context.Context, offset int) ([]entities.Song, error) {
	var songs []entities.Song
	err := r.db.DB.WithContext(ctx).
		Preload("Creator").
		Order("num_listens DESC, num_likes DESC, id ASC").
		Limit(database.PageSize).
		Offset(database.Offset(offset)).
		Find(&songs).Error
	return songs, err
}

// IncrementListens records one listen.
func (r *Repository) IncrementListens(ctx context.Context, songID uint) error {
	return r.db.Transaction(ctx, func(tx *gorm.DB) error {
		return counters.ApplyDelta(tx, entities.KindSong, songID, counters.NumListens, 1)
	})
}

// IsCreatedBy reports whether userID owns the song. Song ownership never
// changes after creation.
func (r *Repository) IsCreatedBy(ctx context.Context, songID, userID uint) (bool, error) {
	var song entities.Song
	err := r.db.DB.WithContext(ctx).Select("id", "creator_id").First(&song, songID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, entities.NotFound(entities.KindSong, songID)
	}
	if err != nil {
		return false, err
	}
	return song.CreatorID == userID, nil
}

// DeleteSong removes the song with its whole comment thread and every like
// pointing into it, and takes it out of its album's num_songs.
func (r *Repository) DeleteSong(ctx context.Context, songID uint) error {
	return r.db.Transaction(ctx, func(tx *gorm.DB) error {
		var song entities.Song
		err := tx.Select("id", "album_id").First(&song, songID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.NotFound(entities.KindSong, songID)
		}
		if err != nil {
			return fmt.Errorf("failed to load song %d: %w", songID, err)
		}

		if song.AlbumID != nil {
			if err := counters.ApplyDelta(tx, entities.KindAlbum, *song.AlbumID, counters.NumSongs, -1); err != nil {
				return err
			}
		}

		steps := []struct {
			what string
			run  func() error
		}{
			{"comment likes", func() error {
				return tx.Where("comment_id IN (?) OR comment_id IN (?)", topLevelIDs(tx, songID), replyIDs(tx, songID)).
					Delete(&entities.CommentLike{}).Error
			}},
			{"replies", func() error {
				return tx.Where("parent_id IN (?)", topLevelIDs(tx, songID)).Delete(&entities.Comment{}).Error
			}},
			{"comments", func() error {
				return tx.Where("song_id = ?", songID).Delete(&entities.Comment{}).Error
			}},
			{"song likes", func() error {
				return tx.Where("song_id = ?", songID).Delete(&entities.SongLike{}).Error
			}},
			{"song", func() error {
				return tx.Delete(&entities.Song{}, songID).Error
			}},
		}
		for _, step := range steps {
			if err := step.run(); err != nil {
				return fmt.Errorf("failed to delete %s of song %d: %w", step.what, songID, err)
			}
		}
		return nil
	})
}

func topLevelIDs(tx *gorm.DB, songID uint) *gorm.DB {
	return tx.Model(&entities.Comment{}).Select("id").Where("song_id = ?", songID)
}

func replyIDs(tx *gorm.DB, songID uint) *gorm.DB {
	return tx.Model(&entities.Comment{}).Select("id").Where("parent_id IN (?)", topLevelIDs(tx, songID))
}
