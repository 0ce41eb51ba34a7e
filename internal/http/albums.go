package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/soundwave/internal/entities"
	"github.com/mrlokans/soundwave/internal/metrics"
	"github.com/mrlokans/soundwave/internal/storage"
)

type AlbumsController struct {
	albums AlbumStore
	media  storage.Store
}

func NewAlbumsController(albums AlbumStore, media storage.Store) *AlbumsController {
	return &AlbumsController{albums: albums, media: media}
}

type createAlbumForm struct {
	Name string `form:"name" binding:"required,max=256"`
}

// GetAlbums handles GET /api/albums
func (ac *AlbumsController) GetAlbums(c *gin.Context) {
	offset, ok := parseOffset(c)
	if !ok {
		return
	}
	list, err := ac.albums.ListAlbums(c.Request.Context(), offset)
	if err != nil {
		respondError(c, err, "list albums")
		return
	}
	c.JSON(http.StatusOK, gin.H{"albums": list})
}

// CreateAlbum handles POST /api/albums (multipart: name, image)
func (ac *AlbumsController) CreateAlbum(c *gin.Context) {
	var form createAlbumForm
	if err := c.ShouldBind(&form); err != nil {
		if isBodyTooLarge(err) {
			respondError(c, err, "create album")
			return
		}
		respondBadRequest(c, "name is required")
		return
	}

	start := time.Now()
	uploads := newUploadBatch(ac.media)

	album, err := ac.createAlbum(c, form, uploads)
	metrics.Observe("album_create", start, err)
	if err != nil {
		uploads.Discard(c.Request.Context())
		respondError(c, err, "create album")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"album": album})
}

func (ac *AlbumsController) createAlbum(c *gin.Context, form createAlbumForm, uploads *uploadBatch) (*entities.Album, error) {
	imageURL, err := uploads.FormFile(c, "image", prefixAlbumImages)
	if err != nil {
		return nil, err
	}
	return ac.albums.CreateAlbum(c.Request.Context(), GetUserID(c), form.Name, imageURL)
}
