package http

import (
	"context"

	"github.com/mrlokans/soundwave/internal/database/songs"
	"github.com/mrlokans/soundwave/internal/entities"
	"github.com/mrlokans/soundwave/internal/services"
)

// Store interfaces used by the controllers. Each is the slice of a
// repository one controller needs, so tests can stub them.

// SongStore provides the song catalog.
type SongStore interface {
	CreateSong(ctx context.Context, input songs.CreateSongInput) (*entities.Song, error)
	GetSong(ctx context.Context, id uint) (*entities.Song, error)
	ListUserSongs(ctx context.Context, userID uint, offset int) ([]entities.Song, error)
	ListTrending(ctx context.Context, offset int) ([]entities.Song, error)
	IncrementListens(ctx context.Context, songID uint) error
	IsCreatedBy(ctx context.Context, songID, userID uint) (bool, error)
	DeleteSong(ctx context.Context, songID uint) error
}

// SongLikeStore toggles song likes.
type SongLikeStore interface {
	LikeSong(ctx context.Context, songID, userID uint) error
	UnlikeSong(ctx context.Context, songID, userID uint) error
	LikedSongs(ctx context.Context, userID uint, offset int) ([]entities.Song, error)
	HasLikedSong(ctx context.Context, songID, userID uint) (bool, error)
}

// CommentLikeStore toggles comment likes.
type CommentLikeStore interface {
	LikeComment(ctx context.Context, commentID, userID uint) error
	UnlikeComment(ctx context.Context, commentID, userID uint) error
	HasLikedComment(ctx context.Context, commentID, userID uint) (bool, error)
}

// CommentStore manages the two-level comment tree.
type CommentStore interface {
	CreateComment(ctx context.Context, songID, creatorID uint, text string) (*entities.Comment, error)
	CreateSubComment(ctx context.Context, parentID, creatorID uint, text string) (*entities.Comment, error)
	ListSubComments(ctx context.Context, commentID uint) ([]entities.Comment, error)
	ListSongComments(ctx context.Context, songID uint, offset int) ([]entities.Comment, error)
	GetComment(ctx context.Context, id uint) (*entities.Comment, error)
}

// AlbumStore manages albums and song membership.
type AlbumStore interface {
	CreateAlbum(ctx context.Context, creatorID uint, name, imageURL string) (*entities.Album, error)
	ListAlbums(ctx context.Context, offset int) ([]entities.Album, error)
	IsCreatedBy(ctx context.Context, albumID, userID uint) (bool, error)
	AddSongToAlbum(ctx context.Context, songID, albumID uint) error
	RemoveSongFromAlbum(ctx context.Context, songID uint) error
}

// UserLister lists registered users.
type UserLister interface {
	ListUsers() ([]entities.User, error)
}

// RecountRunner runs a counter reconciliation pass inline.
type RecountRunner interface {
	Run(ctx context.Context, target services.Target, trigger string, userID uint) (*services.RecountResult, error)
}

// Auditor records engagement events. Implemented by audit.Service.
type Auditor interface {
	LogEngagement(userID uint, action string, kind entities.EntityKind, entityID uint, err error)
	LogMembership(userID uint, action string, songID uint, albumID *uint, err error)
	LogDelete(userID uint, kind entities.EntityKind, entityID uint, entityName string)
	LogAuth(userID uint, action string, success bool)
}

// nopAuditor drops every event; used when no Auditor is configured.
type nopAuditor struct{}

func (nopAuditor) LogEngagement(uint, string, entities.EntityKind, uint, error) {}
func (nopAuditor) LogMembership(uint, string, uint, *uint, error)               {}
func (nopAuditor) LogDelete(uint, entities.EntityKind, uint, string)            {}
func (nopAuditor) LogAuth(uint, string, bool)                                   {}

func auditorOrNop(a Auditor) Auditor {
	if a == nil {
		return nopAuditor{}
	}
	return a
}
