package services

import (
	"context"

	"github.com/mrlokans/soundwave/internal/database/reconcile"
)

// Reconciler recomputes denormalized counters from their relations.
type Reconciler interface {
	RecountSong(ctx context.Context, id uint) ([]reconcile.Drift, error)
	RecountComment(ctx context.Context, id uint) ([]reconcile.Drift, error)
	RecountAlbum(ctx context.Context, id uint) ([]reconcile.Drift, error)
	RecountAll(ctx context.Context) (*reconcile.Report, error)
}

// RecountAuditor records the outcome of a reconciliation pass.
type RecountAuditor interface {
	LogRecount(userID uint, trigger string, checked, drifted int, err error)
}

// ReportArchiver persists full recount reports.
type ReportArchiver interface {
	SaveJSON(data any) (string, error)
}
