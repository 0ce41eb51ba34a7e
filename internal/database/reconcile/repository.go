// Package reconcile recomputes denormalized counters from the relations they
// summarize and repairs any that drifted.
//
// Listens have no backing relation, so num_listens is never recounted.
package reconcile

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/soundwave/internal/database"
	"github.com/mrlokans/soundwave/internal/database/counters"
	"github.com/mrlokans/soundwave/internal/entities"
)

// Drift is a counter that disagreed with its relation and was rewritten.
type Drift struct {
	Kind   entities.EntityKind `json:"kind"`
	ID     uint                `json:"id"`
	Field  counters.Field      `json:"field"`
	Stored int64               `json:"stored"`
	Actual int64               `json:"actual"`
}

// Report summarizes a reconciliation pass.
type Report struct {
	Checked int     `json:"checked"`
	Drifts  []Drift `json:"drifts"`
}

func (r *Report) merge(drifts []Drift) {
	r.Checked++
	r.Drifts = append(r.Drifts, drifts...)
}

type check struct {
	field counters.Field
	count func(tx *gorm.DB, id uint) (int64, error)
}

var (
	songChecks = []check{
		{counters.NumLikes, countWhere(&entities.SongLike{}, "song_id = ?")},
		{counters.NumComments, countWhere(&entities.Comment{}, "song_id = ? AND kind = ?", entities.CommentKindTopLevel)},
	}
	commentChecks = []check{
		{counters.NumLikes, countWhere(&entities.CommentLike{}, "comment_id = ?")},
		{counters.NumSubComments, countWhere(&entities.Comment{}, "parent_id = ?")},
	}
	albumChecks = []check{
		{counters.NumSongs, countWhere(&entities.Song{}, "album_id = ?")},
	}
)

func countWhere(model any, query string, extra ...any) func(tx *gorm.DB, id uint) (int64, error) {
	return func(tx *gorm.DB, id uint) (int64, error) {
		var n int64
		args := append([]any{id}, extra...)
		err := tx.Model(model).Where(query, args...).Count(&n).Error
		return n, err
	}
}

type Repository struct {
	db *database.Database
}

func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db}
}

func (r *Repository) RecountSong(ctx context.Context, id uint) ([]Drift, error) {
	return r.recount(ctx, entities.KindSong, id, songChecks)
}

func (r *Repository) RecountComment(ctx context.Context, id uint) ([]Drift, error) {
	return r.recount(ctx, entities.KindComment, id, commentChecks)
}

func (r *Repository) RecountAlbum(ctx context.Context, id uint) ([]Drift, error) {
	return r.recount(ctx, entities.KindAlbum, id, albumChecks)
}

// RecountAll walks every song, comment and album. Each entity is repaired in
// its own transaction so the write lock is never held for the whole pass.
func (r *Repository) RecountAll(ctx context.Context) (*Report, error) {
	report := &Report{Drifts: []Drift{}}

	passes := []struct {
		kind   entities.EntityKind
		model  any
		checks []check
	}{
		{entities.KindSong, &entities.Song{}, songChecks},
		{entities.KindComment, &entities.Comment{}, commentChecks},
		{entities.KindAlbum, &entities.Album{}, albumChecks},
	}

	for _, pass := range passes {
		var ids []uint
		if err := r.db.DB.WithContext(ctx).Model(pass.model).Order("id ASC").Pluck("id", &ids).Error; err != nil {
			return nil, fmt.Errorf("failed to list %s ids: %w", pass.kind, err)
		}
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			drifts, err := r.recount(ctx, pass.kind, id, pass.checks)
			if err != nil {
				return nil, err
			}
			report.merge(drifts)
		}
	}

	return report, nil
}

func (r *Repository) recount(ctx context.Context, kind entities.EntityKind, id uint, checks []check) ([]Drift, error) {
	var drifts []Drift
	err := r.db.Transaction(ctx, func(tx *gorm.DB) error {
		drifts = nil
		for _, c := range checks {
			stored, err := counters.Value(tx, kind, id, c.field)
			if err != nil {
				return err
			}
			actual, err := c.count(tx, id)
			if err != nil {
				return fmt.Errorf("failed to count %s of %s %d: %w", c.field, kind, id, err)
			}
			if stored == actual {
				continue
			}
			if err := counters.Set(tx, kind, id, c.field, actual); err != nil {
				return err
			}
			drifts = append(drifts, Drift{Kind: kind, ID: id, Field: c.field, Stored: stored, Actual: actual})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return drifts, nil
}
