package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/soundwave/internal/database/songs"
	"github.com/mrlokans/soundwave/internal/entities"
	"github.com/mrlokans/soundwave/internal/metrics"
	"github.com/mrlokans/soundwave/internal/storage"
)

type SongsController struct {
	songs   SongStore
	likes   SongLikeStore
	albums  AlbumStore
	media   storage.Store
	auditor Auditor
}

func NewSongsController(songStore SongStore, likes SongLikeStore, albums AlbumStore, media storage.Store, auditor Auditor) *SongsController {
	return &SongsController{
		songs:   songStore,
		likes:   likes,
		albums:  albums,
		media:   media,
		auditor: auditorOrNop(auditor),
	}
}

type createSongForm struct {
	Artist string `form:"artist" binding:"required,max=256"`
	Name   string `form:"name" binding:"required,max=256"`
}

type addToAlbumRequest struct {
	AlbumID uint `json:"albumId" binding:"required"`
}

// GetTrending handles GET /api/trending/songs
func (sc *SongsController) GetTrending(c *gin.Context) {
	offset, ok := parseOffset(c)
	if !ok {
		return
	}
	list, err := sc.songs.ListTrending(c.Request.Context(), offset)
	if err != nil {
		respondError(c, err, "list trending songs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"songs": list})
}

// GetUserSongs handles GET /api/users/:userId/songs
func (sc *SongsController) GetUserSongs(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}
	sc.listUserSongs(c, userID)
}

// GetProfileSongs handles GET /api/profile/songs
func (sc *SongsController) GetProfileSongs(c *gin.Context) {
	sc.listUserSongs(c, GetUserID(c))
}

func (sc *SongsController) listUserSongs(c *gin.Context, userID uint) {
	offset, ok := parseOffset(c)
	if !ok {
		return
	}
	list, err := sc.songs.ListUserSongs(c.Request.Context(), userID, offset)
	if err != nil {
		respondError(c, err, "list user songs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"songs": list})
}

// GetLikedSongs handles GET /api/profile/liked-songs
func (sc *SongsController) GetLikedSongs(c *gin.Context) {
	offset, ok := parseOffset(c)
	if !ok {
		return
	}
	list, err := sc.likes.LikedSongs(c.Request.Context(), GetUserID(c), offset)
	if err != nil {
		respondError(c, err, "list liked songs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"songs": list})
}

// GetLiked handles GET /api/songs/:id/liked
// Reports whether the caller currently likes the song.
func (sc *SongsController) GetLiked(c *gin.Context) {
	songID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if _, err := sc.songs.GetSong(ctx, songID); err != nil {
		respondError(c, err, "get song")
		return
	}
	liked, err := sc.likes.HasLikedSong(ctx, songID, GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "has liked song")
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

// CreateSong handles POST /api/songs (multipart: artist, name, image, audio)
func (sc *SongsController) CreateSong(c *gin.Context) {
	var form createSongForm
	if err := c.ShouldBind(&form); err != nil {
		if isBodyTooLarge(err) {
			respondError(c, err, "create song")
			return
		}
		respondBadRequest(c, "artist and name are required")
		return
	}

	start := time.Now()
	uploads := newUploadBatch(sc.media)

	song, err := sc.createSong(c, form, uploads)
	metrics.Observe("song_create", start, err)
	if err != nil {
		uploads.Discard(c.Request.Context())
		respondError(c, err, "create song")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"song": song})
}

func (sc *SongsController) createSong(c *gin.Context, form createSongForm, uploads *uploadBatch) (*entities.Song, error) {
	imageURL, err := uploads.FormFile(c, "image", prefixSongImages)
	if err != nil {
		return nil, err
	}
	audioURL, err := uploads.FormFile(c, "audio", prefixSongAudio)
	if err != nil {
		return nil, err
	}
	return sc.songs.CreateSong(c.Request.Context(), songs.CreateSongInput{
		Artist:    form.Artist,
		Name:      form.Name,
		ImageURL:  imageURL,
		AudioURL:  audioURL,
		CreatorID: GetUserID(c),
	})
}

// LikeSong handles PATCH /api/songs/:id/like
func (sc *SongsController) LikeSong(c *gin.Context) {
	songID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := GetUserID(c)

	start := time.Now()
	err := sc.likes.LikeSong(c.Request.Context(), songID, userID)
	metrics.Observe("song_like", start, err)
	sc.auditor.LogEngagement(userID, "song_like", entities.KindSong, songID, err)
	if err != nil {
		respondError(c, err, "like song")
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": true})
}

// UnlikeSong handles PATCH /api/songs/:id/unlike
func (sc *SongsController) UnlikeSong(c *gin.Context) {
	songID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := GetUserID(c)

	start := time.Now()
	err := sc.likes.UnlikeSong(c.Request.Context(), songID, userID)
	metrics.Observe("song_unlike", start, err)
	sc.auditor.LogEngagement(userID, "song_unlike", entities.KindSong, songID, err)
	if err != nil {
		respondError(c, err, "unlike song")
		return
	}
	c.JSON(http.StatusOK, gin.H{"unliked": true})
}

// ListenSong handles PATCH /api/songs/:id/listen
func (sc *SongsController) ListenSong(c *gin.Context) {
	songID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	start := time.Now()
	err := sc.songs.IncrementListens(c.Request.Context(), songID)
	metrics.Observe("song_listen", start, err)
	if err != nil {
		respondError(c, err, "listen song")
		return
	}
	c.JSON(http.StatusOK, gin.H{"listened": true})
}

// AddToAlbum handles PATCH /api/songs/:id/add-to-album
// The caller must own both the song and the target album.
func (sc *SongsController) AddToAlbum(c *gin.Context) {
	songID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req addToAlbumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "albumId is required")
		return
	}

	ctx := c.Request.Context()
	userID := GetUserID(c)
	start := time.Now()

	err := sc.requireSongOwner(c, songID, userID)
	if err == nil {
		err = sc.requireAlbumOwner(c, req.AlbumID, userID)
	}
	if err == nil {
		err = sc.albums.AddSongToAlbum(ctx, songID, req.AlbumID)
	}

	metrics.Observe("album_add", start, err)
	sc.auditor.LogMembership(userID, "album_add", songID, &req.AlbumID, err)
	if err != nil {
		respondError(c, err, "add song to album")
		return
	}
	c.JSON(http.StatusOK, gin.H{"moved": true})
}

// RemoveFromAlbum handles PATCH /api/songs/:id/remove-from-album
func (sc *SongsController) RemoveFromAlbum(c *gin.Context) {
	songID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID := GetUserID(c)
	start := time.Now()

	err := sc.requireSongOwner(c, songID, userID)
	if err == nil {
		err = sc.albums.RemoveSongFromAlbum(c.Request.Context(), songID)
	}

	metrics.Observe("album_remove", start, err)
	sc.auditor.LogMembership(userID, "album_remove", songID, nil, err)
	if err != nil {
		respondError(c, err, "remove song from album")
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": true})
}

// DeleteSong handles DELETE /api/songs/:id
// Removes the song with its likes and comment threads.
func (sc *SongsController) DeleteSong(c *gin.Context) {
	songID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	userID := GetUserID(c)
	start := time.Now()

	song, err := sc.songs.GetSong(ctx, songID)
	if err == nil && song.CreatorID != userID {
		err = entities.ErrForbidden
	}
	if err == nil {
		err = sc.songs.DeleteSong(ctx, songID)
	}

	metrics.Observe("song_delete", start, err)
	if err != nil {
		respondError(c, err, "delete song")
		return
	}

	sc.auditor.LogDelete(userID, entities.KindSong, songID, song.Name)
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (sc *SongsController) requireSongOwner(c *gin.Context, songID, userID uint) error {
	owns, err := sc.songs.IsCreatedBy(c.Request.Context(), songID, userID)
	if err != nil {
		return err
	}
	if !owns {
		return entities.ErrForbidden
	}
	return nil
}

func (sc *SongsController) requireAlbumOwner(c *gin.Context, albumID, userID uint) error {
	owns, err := sc.albums.IsCreatedBy(c.Request.Context(), albumID, userID)
	if err != nil {
		return err
	}
	if !owns {
		return entities.ErrForbidden
	}
	return nil
}
