package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/soundwave/internal/entities"
)

// DefaultAuditRetentionDays applies when a cleanup task carries no retention.
const DefaultAuditRetentionDays = 90

// AuditEventCleaner purges audit events past their retention.
type AuditEventCleaner interface {
	DeleteOldEvents(retention time.Duration) (entities.AuditPurge, error)
}

// CleanupAuditEventsTask purges the engagement audit trail. Likes, comments,
// album moves and recount reports all age out on the same retention.
type CleanupAuditEventsTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for audit cleanup tasks.
func (t CleanupAuditEventsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_audit_events",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// RetentionPeriod is the age past which events are purged.
func (t CleanupAuditEventsTask) RetentionPeriod() time.Duration {
	days := t.RetentionDays
	if days <= 0 {
		days = DefaultAuditRetentionDays
	}
	return time.Duration(days) * 24 * time.Hour
}

// CleanupAuditEventsProcessor purges old events and logs what went, per event type.
func CleanupAuditEventsProcessor(cleaner AuditEventCleaner) backlite.QueueProcessor[CleanupAuditEventsTask] {
	return func(ctx context.Context, task CleanupAuditEventsTask) error {
		if cleaner == nil {
			return fmt.Errorf("audit event cleaner not configured")
		}

		retention := task.RetentionPeriod()
		purge, err := cleaner.DeleteOldEvents(retention)
		if err != nil {
			return fmt.Errorf("purge audit events older than %s: %w", retention, err)
		}
		if purge.Total() == 0 {
			return nil
		}

		log.Printf("[TASK] Purged %d audit events past %s retention (%s)", purge.Total(), retention, purge)
		return nil
	}
}

// NewCleanupAuditEventsQueue creates a backlite queue for audit cleanup tasks.
func NewCleanupAuditEventsQueue(cleaner AuditEventCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupAuditEventsProcessor(cleaner))
}
