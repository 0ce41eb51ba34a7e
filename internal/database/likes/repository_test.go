package likes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/soundwave/internal/database"
	"github.com/mrlokans/soundwave/internal/database/dbtest"
	"github.com/mrlokans/soundwave/internal/entities"
)

func setupTestRepo(t *testing.T) (*Repository, *database.Database) {
	db := dbtest.New(t)
	return NewRepository(db), db
}

func createComment(t *testing.T, db *database.Database, creatorID, songID uint) *entities.Comment {
	comment := &entities.Comment{
		Text:      "nice",
		Kind:      entities.CommentKindTopLevel,
		CreatorID: creatorID,
		SongID:    &songID,
	}
	require.NoError(t, db.DB.Create(comment).Error)
	return comment
}

func TestRepository_LikeSong(t *testing.T) {
	repo, db := setupTestRepo(t)
	ctx := context.Background()
	alice := dbtest.CreateUser(t, db, "alice")
	song := dbtest.CreateSong(t, db, alice.ID, "one")

	require.NoError(t, repo.LikeSong(ctx, song.ID, alice.ID))

	assert.Equal(t, int64(1), dbtest.ReloadSong(t, db, song.ID).NumLikes)
	liked, err := repo.HasLikedSong(ctx, song.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, liked)
}

func TestRepository_LikeSong_Twice(t *testing.T) {
	repo, db := setupTestRepo(t)
	ctx := context.Background()
	alice := dbtest.CreateUser(t, db, "alice")
	song := dbtest.CreateSong(t, db, alice.ID, "one")

	require.NoError(t, repo.LikeSong(ctx, song.ID, alice.ID))
	err := repo.LikeSong(ctx, song.ID, alice.ID)

	assert.ErrorIs(t, err, entities.ErrAlreadyLiked)
	assert.Equal(t, int64(1), dbtest.ReloadSong(t, db, song.ID).NumLikes)
}

func TestRepository_LikeSong_NotFound(t *testing.T) {
	repo, db := setupTestRepo(t)
	alice := dbtest.CreateUser(t, db, "alice")

	err := repo.LikeSong(context.Background(), 999, alice.ID)

	assert.ErrorIs(t, err, entities.ErrNotFound)
	var count int64
	require.NoError(t, db.DB.Model(&entities.SongLike{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRepository_UnlikeSong(t *testing.T) {
	repo, db := setupTestRepo(t)
	ctx := context.Background()
	alice := dbtest.CreateUser(t, db, "alice")
	song := dbtest.CreateSong(t, db, alice.ID, "one")

	require.NoError(t, repo.LikeSong(ctx, song.ID, alice.ID))
	require.NoError(t, repo.UnlikeSong(ctx, song.ID, alice.ID))

	assert.Equal(t, int64(0), dbtest.ReloadSong(t, db, song.ID).NumLikes)
	liked, err := repo.HasLikedSong(ctx, song.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestRepository_UnlikeSong_NotLiked(t *testing.T) {
	repo, db := setupTestRepo(t)
	alice := dbtest.CreateUser(t, db, "alice")
	song := dbtest.CreateSong(t, db, alice.ID, "one")

	err := repo.UnlikeSong(context.Background(), song.ID, alice.ID)

	assert.ErrorIs(t, err, entities.ErrNotLiked)
	assert.Equal(t, int64(0), dbtest.ReloadSong(t, db, song.ID).NumLikes)
}

func TestRepository_UnlikeSong_NotFound(t *testing.T) {
	repo, _ := setupTestRepo(t)

	err := repo.UnlikeSong(context.Background(), 42, 1)

	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestRepository_LikeUnlikeRoundTrip(t *testing.T) {
	repo, db := setupTestRepo(t)
	ctx := context.Background()
	users := dbtest.CreateUsers(t, db, 3)
	song := dbtest.CreateSong(t, db, users[0].ID, "one")

	require.NoError(t, repo.LikeSong(ctx, song.ID, users[1].ID))
	require.NoError(t, repo.LikeSong(ctx, song.ID, users[2].ID))
	before := dbtest.ReloadSong(t, db, song.ID).NumLikes

	require.NoError(t, repo.LikeSong(ctx, song.ID, users[0].ID))
	require.NoError(t, repo.UnlikeSong(ctx, song.ID, users[0].ID))

	assert.Equal(t, before, dbtest.ReloadSong(t, db, song.ID).NumLikes)
	likers, err := repo.SongLikers(ctx, song.ID)
	require.NoError(t, err)
	assert.Len(t, likers, int(before))
}

func TestRepository_LikeSong_Concurrent(t *testing.T) {
	repo, db := setupTestRepo(t)
	const n = 20
	users := dbtest.CreateUsers(t, db, n)
	song := dbtest.CreateSong(t, db, users[0].ID, "hit")

	g, ctx := errgroup.WithContext(context.Background())
	for _, user := range users {
		userID := user.ID
		g.Go(func() error {
			return repo.LikeSong(ctx, song.ID, userID)
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int64(n), dbtest.ReloadSong(t, db, song.ID).NumLikes)
	likers, err := repo.SongLikers(context.Background(), song.ID)
	require.NoError(t, err)
	assert.Len(t, likers, n)
}

func TestRepository_LikeSong_ConcurrentSameUser(t *testing.T) {
	repo, db := setupTestRepo(t)
	alice := dbtest.CreateUser(t, db, "alice")
	song := dbtest.CreateSong(t, db, alice.ID, "one")

	const attempts = 8
	results := make([]error, attempts)
	var g errgroup.Group
	for i := 0; i < attempts; i++ {
		i := i
		g.Go(func() error {
			results[i] = repo.LikeSong(context.Background(), song.ID, alice.ID)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, entities.ErrAlreadyLiked)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(1), dbtest.ReloadSong(t, db, song.ID).NumLikes)
}

func TestRepository_LikeComment(t *testing.T) {
	repo, db := setupTestRepo(t)
	ctx := context.Background()
	users := dbtest.CreateUsers(t, db, 2)
	song := dbtest.CreateSong(t, db, users[0].ID, "one")
	comment := createComment(t, db, users[0].ID, song.ID)

	require.NoError(t, repo.LikeComment(ctx, comment.ID, users[0].ID))
	require.NoError(t, repo.LikeComment(ctx, comment.ID, users[1].ID))
	assert.ErrorIs(t, repo.LikeComment(ctx, comment.ID, users[1].ID), entities.ErrAlreadyLiked)

	assert.Equal(t, int64(2), dbtest.ReloadComment(t, db, comment.ID).NumLikes)
	assert.Equal(t, int64(0), dbtest.ReloadSong(t, db, song.ID).NumLikes)

	require.NoError(t, repo.UnlikeComment(ctx, comment.ID, users[0].ID))
	assert.ErrorIs(t, repo.UnlikeComment(ctx, comment.ID, users[0].ID), entities.ErrNotLiked)
	assert.Equal(t, int64(1), dbtest.ReloadComment(t, db, comment.ID).NumLikes)

	liked, err := repo.HasLikedComment(ctx, comment.ID, users[1].ID)
	require.NoError(t, err)
	assert.True(t, liked)
}

func TestRepository_LikeReply(t *testing.T) {
	repo, db := setupTestRepo(t)
	ctx := context.Background()
	users := dbtest.CreateUsers(t, db, 2)
	song := dbtest.CreateSong(t, db, users[0].ID, "one")
	top := createComment(t, db, users[0].ID, song.ID)
	reply := &entities.Comment{
		Text:      "reply",
		Kind:      entities.CommentKindReply,
		CreatorID: users[1].ID,
		ParentID:  &top.ID,
	}
	require.NoError(t, db.DB.Create(reply).Error)

	require.NoError(t, repo.LikeComment(ctx, reply.ID, users[0].ID))
	require.NoError(t, repo.LikeComment(ctx, reply.ID, users[1].ID))
	assert.ErrorIs(t, repo.LikeComment(ctx, reply.ID, users[0].ID), entities.ErrAlreadyLiked)

	assert.Equal(t, int64(2), dbtest.ReloadComment(t, db, reply.ID).NumLikes)
	assert.Equal(t, int64(0), dbtest.ReloadComment(t, db, top.ID).NumLikes)

	require.NoError(t, repo.UnlikeComment(ctx, reply.ID, users[1].ID))
	assert.ErrorIs(t, repo.UnlikeComment(ctx, reply.ID, users[1].ID), entities.ErrNotLiked)
	assert.Equal(t, int64(1), dbtest.ReloadComment(t, db, reply.ID).NumLikes)

	liked, err := repo.HasLikedComment(ctx, reply.ID, users[1].ID)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestRepository_LikeComment_NotFound(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	assert.ErrorIs(t, repo.LikeComment(ctx, 5, 1), entities.ErrNotFound)
	assert.ErrorIs(t, repo.UnlikeComment(ctx, 5, 1), entities.ErrNotFound)
}

func TestRepository_LikedSongs(t *testing.T) {
	repo, db := setupTestRepo(t)
	ctx := context.Background()
	alice := dbtest.CreateUser(t, db, "alice")

	for i := 0; i < database.PageSize+2; i++ {
		song := dbtest.CreateSong(t, db, alice.ID, "song")
		require.NoError(t, repo.LikeSong(ctx, song.ID, alice.ID))
	}

	first, err := repo.LikedSongs(ctx, alice.ID, 0)
	require.NoError(t, err)
	assert.Len(t, first, database.PageSize)
	assert.Equal(t, "alice", first[0].Creator.Username)

	rest, err := repo.LikedSongs(ctx, alice.ID, database.PageSize)
	require.NoError(t, err)
	assert.Len(t, rest, 2)
}

func TestRepository_SongLikers_NotFound(t *testing.T) {
	repo, _ := setupTestRepo(t)

	_, err := repo.SongLikers(context.Background(), 1)

	assert.ErrorIs(t, err, entities.ErrNotFound)
}
