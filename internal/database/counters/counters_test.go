package counters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/soundwave/internal/database/dbtest"
	"github.com/mrlokans/soundwave/internal/entities"
)

func TestApplyDelta_IncrementAndDecrement(t *testing.T) {
	db := dbtest.New(t)
	user := dbtest.CreateUser(t, db, "alice")
	song := dbtest.CreateSong(t, db, user.ID, "one")

	require.NoError(t, ApplyDelta(db.DB, entities.KindSong, song.ID, NumLikes, 1))
	require.NoError(t, ApplyDelta(db.DB, entities.KindSong, song.ID, NumLikes, 1))
	require.NoError(t, ApplyDelta(db.DB, entities.KindSong, song.ID, NumLikes, -1))

	value, err := Value(db.DB, entities.KindSong, song.ID, NumLikes)
	require.NoError(t, err)
	assert.Equal(t, int64(1), value)
}

func TestApplyDelta_NeverGoesNegative(t *testing.T) {
	db := dbtest.New(t)
	user := dbtest.CreateUser(t, db, "alice")
	album := dbtest.CreateAlbum(t, db, user.ID, "empty")

	err := ApplyDelta(db.DB, entities.KindAlbum, album.ID, NumSongs, -1)

	assert.ErrorIs(t, err, entities.ErrInvariantViolation)
	assert.Equal(t, int64(0), dbtest.ReloadAlbum(t, db, album.ID).NumSongs)
}

func TestApplyDelta_MissingRow(t *testing.T) {
	db := dbtest.New(t)

	err := ApplyDelta(db.DB, entities.KindSong, 404, NumListens, 1)

	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestApplyDelta_RejectsUnknownCounters(t *testing.T) {
	db := dbtest.New(t)

	tests := []struct {
		name  string
		kind  entities.EntityKind
		field Field
	}{
		{"album likes", entities.KindAlbum, NumLikes},
		{"song sub comments", entities.KindSong, NumSubComments},
		{"user table", entities.KindUser, NumLikes},
		{"injected column", entities.KindSong, Field("num_likes = 0; --")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ApplyDelta(db.DB, tt.kind, 1, tt.field, 1)
			assert.ErrorIs(t, err, ErrUnknownCounter)
		})
	}
}

func TestApplyDelta_RejectsLargeDelta(t *testing.T) {
	db := dbtest.New(t)
	user := dbtest.CreateUser(t, db, "alice")
	song := dbtest.CreateSong(t, db, user.ID, "one")

	err := ApplyDelta(db.DB, entities.KindSong, song.ID, NumLikes, 5)

	assert.ErrorIs(t, err, entities.ErrInvalidInput)
}

func TestValue_MissingRow(t *testing.T) {
	db := dbtest.New(t)

	_, err := Value(db.DB, entities.KindComment, 7, NumSubComments)

	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestSet(t *testing.T) {
	db := dbtest.New(t)
	user := dbtest.CreateUser(t, db, "alice")
	song := dbtest.CreateSong(t, db, user.ID, "one")

	require.NoError(t, Set(db.DB, entities.KindSong, song.ID, NumComments, 7))
	assert.Equal(t, int64(7), dbtest.ReloadSong(t, db, song.ID).NumComments)

	assert.ErrorIs(t, Set(db.DB, entities.KindSong, song.ID, NumComments, -1), entities.ErrInvariantViolation)
	assert.ErrorIs(t, Set(db.DB, entities.KindSong, 999, NumComments, 1), entities.ErrNotFound)
	assert.ErrorIs(t, Set(db.DB, entities.KindAlbum, 1, NumComments, 1), ErrUnknownCounter)
}
