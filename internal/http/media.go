package http

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/soundwave/internal/entities"
	"github.com/mrlokans/soundwave/internal/storage"
)

// Object prefixes for uploaded media.
const (
	prefixSongImages  = "songs/images"
	prefixSongAudio   = "songs/audio"
	prefixAlbumImages = "albums/images"
)

// uploadBatch uploads form files and remembers their object names so a
// failed create can remove what was already stored.
type uploadBatch struct {
	store storage.Store
	names []string
}

func newUploadBatch(store storage.Store) *uploadBatch {
	return &uploadBatch{store: store}
}

// FormFile uploads the multipart field under prefix and returns its URL.
// A missing field is ErrInvalidInput.
func (b *uploadBatch) FormFile(c *gin.Context, field, prefix string) (string, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return "", fmt.Errorf("%w: %s file is required", entities.ErrInvalidInput, field)
	}
	return b.upload(c.Request.Context(), header, prefix)
}

func (b *uploadBatch) upload(ctx context.Context, header *multipart.FileHeader, prefix string) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload %s: %w", header.Filename, err)
	}
	defer file.Close()

	name := storage.ObjectName(prefix, header.Filename)
	url, err := b.store.Upload(ctx, name, file)
	if err != nil {
		return "", fmt.Errorf("failed to store %s: %w", header.Filename, err)
	}
	b.names = append(b.names, name)
	return url, nil
}

// Discard removes every object uploaded through the batch.
func (b *uploadBatch) Discard(ctx context.Context) {
	for _, name := range b.names {
		if err := b.store.Delete(ctx, name); err != nil {
			log.Printf("Failed to remove orphaned upload %s: %v", name, err)
		}
	}
	b.names = nil
}
