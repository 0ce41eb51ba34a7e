// Package counters applies atomic deltas to denormalized counter columns.
//
// Every counter change in the store goes through ApplyDelta on the handle of
// the transaction that also changes the relationship the counter summarizes.
//
// # Usage
//
//	err := counters.ApplyDelta(tx, entities.KindSong, songID, counters.NumLikes, +1)
package counters

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/soundwave/internal/entities"
)

// Field is a counter column name.
type Field string

const (
	NumLikes       Field = "num_likes"
	NumComments    Field = "num_comments"
	NumSubComments Field = "num_sub_comments"
	NumListens     Field = "num_listens"
	NumSongs       Field = "num_songs"
)

var ErrUnknownCounter = errors.New("unknown counter")

var tables = map[entities.EntityKind]string{
	entities.KindSong:    "songs",
	entities.KindComment: "comments",
	entities.KindAlbum:   "albums",
}

// allowed is the whitelist of counters per entity. Field names are spliced
// into SQL, so nothing outside this table may reach the query.
var allowed = map[entities.EntityKind]map[Field]bool{
	entities.KindSong:    {NumLikes: true, NumComments: true, NumListens: true},
	entities.KindComment: {NumLikes: true, NumSubComments: true},
	entities.KindAlbum:   {NumSongs: true},
}

func table(kind entities.EntityKind, field Field) (string, error) {
	name, ok := tables[kind]
	if !ok || !allowed[kind][field] {
		return "", fmt.Errorf("%w: %s.%s", ErrUnknownCounter, kind, field)
	}
	return name, nil
}

// ApplyDelta adds delta (+1 or -1) to the counter in a single conditional
// UPDATE. The row is left untouched when the result would be negative, and
// ErrInvariantViolation is returned instead. A missing row yields NotFound.
func ApplyDelta(tx *gorm.DB, kind entities.EntityKind, id uint, field Field, delta int) error {
	if delta != 1 && delta != -1 {
		return fmt.Errorf("%w: delta %d", entities.ErrInvalidInput, delta)
	}

	name, err := table(kind, field)
	if err != nil {
		return err
	}

	col := string(field)
	result := tx.Table(name).
		Where("id = ? AND "+col+" + ? >= 0", id, delta).
		UpdateColumn(col, gorm.Expr(col+" + ?", delta))
	if result.Error != nil {
		return fmt.Errorf("failed to update %s.%s: %w", name, col, result.Error)
	}
	if result.RowsAffected == 1 {
		return nil
	}

	var count int64
	if err := tx.Table(name).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check %s %d: %w", kind, id, err)
	}
	if count == 0 {
		return entities.NotFound(kind, id)
	}
	return fmt.Errorf("%w: %s %d %s would drop below zero", entities.ErrInvariantViolation, kind, id, col)
}

// Value reads the current value of a counter.
func Value(tx *gorm.DB, kind entities.EntityKind, id uint, field Field) (int64, error) {
	name, err := table(kind, field)
	if err != nil {
		return 0, err
	}

	var values []int64
	if err := tx.Table(name).Where("id = ?", id).Pluck(string(field), &values).Error; err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, entities.NotFound(kind, id)
	}
	return values[0], nil
}

// Set overwrites a counter with an absolute value. Only reconciliation uses it.
func Set(tx *gorm.DB, kind entities.EntityKind, id uint, field Field, value int64) error {
	if value < 0 {
		return fmt.Errorf("%w: %s %d %s set to %d", entities.ErrInvariantViolation, kind, id, field, value)
	}

	name, err := table(kind, field)
	if err != nil {
		return err
	}

	result := tx.Table(name).Where("id = ?", id).UpdateColumn(string(field), value)
	if result.Error != nil {
		return fmt.Errorf("failed to set %s.%s: %w", name, field, result.Error)
	}
	if result.RowsAffected == 0 {
		return entities.NotFound(kind, id)
	}
	return nil
}
