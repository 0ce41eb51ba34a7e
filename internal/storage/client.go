// Package storage defines where uploaded song audio, song artwork and album
// covers are kept. Providers live in storage/providers.
package storage

import (
	"context"
	"errors"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidName = errors.New("invalid object name")

// Uploader stores content under name and returns the public URL it is
// reachable at. The URL is persisted verbatim on the owning entity.
type Uploader interface {
	Upload(ctx context.Context, name string, content io.Reader) (string, error)
}

// Store is an Uploader that can also remove objects, used to clean up after
// a failed create.
type Store interface {
	Uploader
	Delete(ctx context.Context, name string) error
}

// ObjectName builds a collision-free name such as "songs/audio/<uuid>.mp3",
// keeping only the extension of the client supplied filename.
func ObjectName(prefix, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(prefix, uuid.NewString()+ext)
}

// ValidateName rejects empty, absolute and parent-escaping names.
func ValidateName(name string) error {
	if name == "" || strings.HasPrefix(name, "/") || path.Clean(name) != name || strings.HasPrefix(name, "..") {
		return ErrInvalidName
	}
	return nil
}

// ContentType guesses the MIME type from the name's extension.
func ContentType(name string) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
