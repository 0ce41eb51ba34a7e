// Package dbtest opens throwaway databases and seeds fixtures for repository tests.
package dbtest

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/soundwave/internal/database"
	"github.com/mrlokans/soundwave/internal/entities"
)

// New opens a migrated file-backed database in t.TempDir() and closes it on cleanup.
func New(t testing.TB) *database.Database {
	t.Helper()

	opts := database.DefaultOptions()
	opts.LogLevel = logger.Silent
	opts.MaxTxAttempts = 10

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "test.db"), opts)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func CreateUser(t testing.TB, db *database.Database, username string) *entities.User {
	t.Helper()

	user := &entities.User{Username: username}
	require.NoError(t, db.DB.Create(user).Error)
	return user
}

// CreateUsers seeds n users named user-0..user-(n-1).
func CreateUsers(t testing.TB, db *database.Database, n int) []*entities.User {
	t.Helper()

	users := make([]*entities.User, 0, n)
	for i := 0; i < n; i++ {
		users = append(users, CreateUser(t, db, fmt.Sprintf("user-%d", i)))
	}
	return users
}

func CreateSong(t testing.TB, db *database.Database, creatorID uint, name string) *entities.Song {
	t.Helper()

	song := &entities.Song{
		Artist:    "Test Artist",
		Name:      name,
		ImageURL:  "http://localhost/media/" + name + ".png",
		AudioURL:  "http://localhost/media/" + name + ".mp3",
		CreatorID: creatorID,
	}
	require.NoError(t, db.DB.Create(song).Error)
	return song
}

func CreateAlbum(t testing.TB, db *database.Database, creatorID uint, name string) *entities.Album {
	t.Helper()

	album := &entities.Album{Name: name, CreatorID: creatorID}
	require.NoError(t, db.DB.Create(album).Error)
	return album
}

// ReloadSong reads the song back so counter assertions see committed state.
func ReloadSong(t testing.TB, db *database.Database, id uint) *entities.Song {
	t.Helper()

	var song entities.Song
	require.NoError(t, db.DB.First(&song, id).Error)
	return &song
}

func ReloadAlbum(t testing.TB, db *database.Database, id uint) *entities.Album {
	t.Helper()

	var album entities.Album
	require.NoError(t, db.DB.First(&album, id).Error)
	return &album
}

func ReloadComment(t testing.TB, db *database.Database, id uint) *entities.Comment {
	t.Helper()

	var comment entities.Comment
	require.NoError(t, db.DB.First(&comment, id).Error)
	return &comment
}
