package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mrlokans/soundwave/internal/database/reconcile"
	"github.com/mrlokans/soundwave/internal/entities"
	"github.com/mrlokans/soundwave/internal/metrics"
)

// Recount triggers, recorded in the audit log as "recount_<trigger>".
const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
	TriggerCLI       = "cli"
)

// Target selects what a recount pass covers. The zero value means everything.
type Target struct {
	Kind entities.EntityKind `json:"kind,omitempty"`
	ID   uint                `json:"id,omitempty"`
}

// IsAll reports whether the target covers every counted entity.
func (t Target) IsAll() bool {
	return t.Kind == ""
}

// Validate rejects unknown kinds and single-entity targets without an id.
func (t Target) Validate() error {
	switch t.Kind {
	case "":
		if t.ID != 0 {
			return fmt.Errorf("%w: id given without kind", entities.ErrInvalidInput)
		}
		return nil
	case entities.KindSong, entities.KindComment, entities.KindAlbum:
		if t.ID == 0 {
			return fmt.Errorf("%w: %s recount needs an id", entities.ErrInvalidInput, t.Kind)
		}
		return nil
	default:
		return fmt.Errorf("%w: cannot recount %q", entities.ErrInvalidInput, t.Kind)
	}
}

// RecountResult is what a single pass produced.
type RecountResult struct {
	Trigger     string            `json:"trigger"`
	Target      Target            `json:"target"`
	Report      *reconcile.Report `json:"report"`
	ArchiveFile string            `json:"archive_file,omitempty"`
	StartedAt   time.Time         `json:"started_at"`
	FinishedAt  time.Time         `json:"finished_at"`
}

// RecountService runs reconciliation passes and records their outcome in
// metrics, the audit log and (optionally) the report archive.
type RecountService struct {
	reconciler Reconciler
	auditor    RecountAuditor
	archive    ReportArchiver
	now        func() time.Time
}

// NewRecountService creates a RecountService. auditor and archive may be nil.
func NewRecountService(reconciler Reconciler, auditor RecountAuditor, archive ReportArchiver) *RecountService {
	return &RecountService{
		reconciler: reconciler,
		auditor:    auditor,
		archive:    archive,
		now:        time.Now,
	}
}

// Run executes one pass over target. userID is zero for unattended runs.
func (s *RecountService) Run(ctx context.Context, target Target, trigger string, userID uint) (*RecountResult, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}

	started := s.now()
	report, err := s.recount(ctx, target)
	metrics.Observe("recount", started, err)

	if err != nil {
		log.Printf("Recount (%s) failed: %v", trigger, err)
		s.logAudit(userID, trigger, 0, 0, err)
		return nil, err
	}

	for _, d := range report.Drifts {
		metrics.RecordDrift(d.Kind, string(d.Field))
		log.Printf("Recount: %s %d %s drifted (stored %d, actual %d)", d.Kind, d.ID, d.Field, d.Stored, d.Actual)
	}

	result := &RecountResult{
		Trigger:    trigger,
		Target:     target,
		Report:     report,
		StartedAt:  started,
		FinishedAt: s.now(),
	}

	if s.archive != nil {
		filename, archiveErr := s.archive.SaveJSON(result)
		if archiveErr != nil {
			log.Printf("Recount: failed to archive report: %v", archiveErr)
		} else {
			result.ArchiveFile = filename
		}
	}

	log.Printf("Recount (%s): checked %d entities, repaired %d counters", trigger, report.Checked, len(report.Drifts))
	s.logAudit(userID, trigger, report.Checked, len(report.Drifts), nil)
	return result, nil
}

func (s *RecountService) recount(ctx context.Context, target Target) (*reconcile.Report, error) {
	if target.IsAll() {
		return s.reconciler.RecountAll(ctx)
	}

	var (
		drifts []reconcile.Drift
		err    error
	)
	switch target.Kind {
	case entities.KindSong:
		drifts, err = s.reconciler.RecountSong(ctx, target.ID)
	case entities.KindComment:
		drifts, err = s.reconciler.RecountComment(ctx, target.ID)
	case entities.KindAlbum:
		drifts, err = s.reconciler.RecountAlbum(ctx, target.ID)
	}
	if err != nil {
		return nil, err
	}
	if drifts == nil {
		drifts = []reconcile.Drift{}
	}
	return &reconcile.Report{Checked: 1, Drifts: drifts}, nil
}

func (s *RecountService) logAudit(userID uint, trigger string, checked, drifted int, err error) {
	if s.auditor == nil {
		return
	}
	s.auditor.LogRecount(userID, trigger, checked, drifted, err)
}
