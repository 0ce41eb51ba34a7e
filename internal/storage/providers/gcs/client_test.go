package gcs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectURL(t *testing.T) {
	assert.Equal(t, "https://storage.googleapis.com/media-bucket/songs/a.mp3", ObjectURL("media-bucket", "songs/a.mp3"))
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(context.Background(), "", "")
	assert.Error(t, err)

	_, err = NewClient(context.Background(), "bucket", "/does/not/exist.json")
	assert.ErrorContains(t, err, "service account key not found")
}
