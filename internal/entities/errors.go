package entities

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrAlreadyLiked   = errors.New("already liked")
	ErrNotLiked       = errors.New("not liked yet")
	ErrAlreadyInAlbum = errors.New("song is already in this album")
	ErrNotInAlbum     = errors.New("song is not in an album")
	ErrInvalidDepth   = errors.New("replies cannot be nested more than one level deep")
	ErrInvalidInput   = errors.New("invalid input")
	ErrForbidden      = errors.New("forbidden")
	ErrTransient      = errors.New("transient storage failure, retry later")

	// ErrInvariantViolation means a counter would have gone negative. It is
	// never expected in correct operation and points at a bug upstream.
	ErrInvariantViolation = errors.New("counter invariant violated")
)

// NotFound builds an ErrNotFound carrying the entity kind and id.
func NotFound(kind EntityKind, id uint) error {
	return fmt.Errorf("%s %d %w", kind, id, ErrNotFound)
}
