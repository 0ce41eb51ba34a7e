// Package albums manages albums and the song membership they summarize in num_songs.
//
// A song belongs to at most one album. Moving a song between albums takes it
// out of the source album's count and adds it to the target's in the same
// transaction.
package albums

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

// Repository handles all album database operations.
type Repository struct {
	db *database.Database
}

// NewRepository creates a new albums repository.
func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db}
}

// CreateAlbum creates an empty album owned by creatorID.
func (r *Repository) CreateAlbum(ctx context.Context, creatorID uint, name, imageURL string) (*entities.Album, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: album name is empty", entities.ErrInvalidInput)
	}

	album := &entities.Album{
		Name:      name,
		ImageURL:  imageURL,
		CreatorID: creatorID,
	}
	if err := r.db.DB.WithContext(ctx).Create(album).Error; err != nil {
		return nil, fmt.Errorf("failed to create album: %w", err)
	}
	return album, nil
}

// GetAlbum returns the album with its creator and member songs.
func (r *Repository) GetAlbum(ctx context.Context, id uint) (*entities.Album, error) {
	var album entities.Album
	err := r.db.DB.WithContext(ctx).
		Preload("Creator").
		Preload("Songs", func(db *gorm.DB) *gorm.DB { return db.Order("songs.id ASC") }).
		First(&album, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entities.NotFound(entities.KindAlbum, id)
	}
	if err != nil {
		return nil, err
	}
	return &album, nil
}

// ListAlbums returns one page of albums, newest first, with their songs.
func (r *Repository) ListAlbums(ctx context.Context, offset int) ([]entities.Album, error) {
	var albums []entities.Album
	err := r.db.DB.WithContext(ctx).
		Preload("Creator").
		Preload("Songs", func(db *gorm.DB) *gorm.DB { return db.Order("songs.id ASC") }).
		Order("created_at DESC, id DESC").
		Limit(database.PageSize).
		Offset(database.Offset(offset)).
		Find(&albums).Error
	return albums, err
}

// IsCreatedBy reports whether userID owns the album.
func (r *Repository) IsCreatedBy(ctx context.Context, albumID, userID uint) (bool, error) {
	var album entities.Album
	err := r.db.DB.WithContext(ctx).Select("id", "creator_id").First(&album, albumID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, entities.NotFound(entities.KindAlbum, albumID)
	}
	if err != nil {
		return false, err
	}
	return album.CreatorID == userID, nil
}

// AddSongToAlbum links the song to the album. When the song already sits in
// another album it is moved, and the source album's num_songs drops by one.
func (r *Repository) AddSongToAlbum(ctx context.Context, songID, albumID uint) error {
	return r.db.Transaction(ctx, func(tx *gorm.DB) error {
		song, err := loadSong(tx, songID)
		if err != nil {
			return err
		}
		if err := database.RequireExists(tx, entities.KindAlbum, &entities.Album{}, albumID); err != nil {
			return err
		}
		if song.AlbumID != nil && *song.AlbumID == albumID {
			return fmt.Errorf("song %d, album %d: %w", songID, albumID, entities.ErrAlreadyInAlbum)
		}

		if song.AlbumID != nil {
			if err := counters.ApplyDelta(tx, entities.KindAlbum, *song.AlbumID, counters.NumSongs, -1); err != nil {
				return err
			}
		}
		if err := setAlbum(tx, songID, &albumID); err != nil {
			return err
		}
		return counters.ApplyDelta(tx, entities.KindAlbum, albumID, counters.NumSongs, 1)
	})
}

// RemoveSongFromAlbum unlinks the song from its album and decrements num_songs.
func (r *Repository) RemoveSongFromAlbum(ctx context.Context, songID uint) error {
	return r.db.Transaction(ctx, func(tx *gorm.DB) error {
		song, err := loadSong(tx, songID)
		if err != nil {
			return err
		}
		if song.AlbumID == nil {
			return fmt.Errorf("song %d: %w", songID, entities.ErrNotInAlbum)
		}

		if err := setAlbum(tx, songID, nil); err != nil {
			return err
		}
		return counters.ApplyDelta(tx, entities.KindAlbum, *song.AlbumID, counters.NumSongs, -1)
	})
}

func loadSong(tx *gorm.DB, id uint) (*entities.Song, error) {
	var song entities.Song
	err := tx.Select("id", "album_id").First(&song, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entities.NotFound(entities.KindSong, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load song %d: %w", id, err)
	}
	return &song, nil
}

func setAlbum(tx *gorm.DB, songID uint, albumID *uint) error {
	err := tx.Model(&entities.Song{}).Where("id = ?", songID).Update("album_id", albumID).Error
	if err != nil {
		return fmt.Errorf("failed to update album of song %d: %w", songID, err)
	}
	return nil
}
