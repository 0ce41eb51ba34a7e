package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mrlokans/soundwave/internal/database/audit"
	"github.com/mrlokans/soundwave/internal/entities"
)

const maxErrorLength = 500

// Service provides high-level audit logging functionality.
type Service struct {
	repo *audit.Repository
	wg   sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// Flush blocks until every pending LogAsync write has finished.
func (s *Service) Flush() {
	s.wg.Wait()
}

// LogEngagement records a like, unlike, comment or reply on an entity.
func (s *Service) LogEngagement(userID uint, action string, kind entities.EntityKind, entityID uint, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventEngagement,
		Action:      action,
		Description: fmt.Sprintf("%s on %s %d", action, kind, entityID),
		EntityType:  kind,
		EntityID:    &entityID,
	}
	s.LogAsync(withOutcome(event, err))
}

// LogMembership records a song joining or leaving an album. albumID is nil on removal.
func (s *Service) LogMembership(userID uint, action string, songID uint, albumID *uint, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventMembership,
		Action:      action,
		Description: fmt.Sprintf("%s for song %d", action, songID),
		EntityType:  entities.KindSong,
		EntityID:    &songID,
	}
	if albumID != nil {
		event.Metadata = marshalMetadata(map[string]any{"album_id": *albumID})
	}
	s.LogAsync(withOutcome(event, err))
}

// LogDelete records a deletion event.
func (s *Service) LogDelete(userID uint, kind entities.EntityKind, entityID uint, entityName string) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventDelete,
		Action:      string(kind) + "_delete",
		Description: "Deleted " + string(kind) + ": " + entityName,
		EntityType:  kind,
		EntityID:    &entityID,
		Status:      entities.AuditStatusSuccess,
	}
	s.LogAsync(event)
}

// LogRecount records a reconciliation pass. userID is zero for scheduled runs.
func (s *Service) LogRecount(userID uint, trigger string, checked, drifted int, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventRecount,
		Action:      "recount_" + trigger,
		Description: fmt.Sprintf("Checked %d entities, repaired %d counters", checked, drifted),
		Metadata:    marshalMetadata(map[string]any{"checked": checked, "drifted": drifted}),
	}
	s.LogAsync(withOutcome(event, err))
}

// LogAuth records an authentication event.
func (s *Service) LogAuth(userID uint, action string, success bool) {
	event := &entities.AuditEvent{
		UserID:    userID,
		EventType: entities.AuditEventAuth,
		Action:    action,
		Status:    entities.AuditStatusSuccess,
	}
	if !success {
		event.Status = entities.AuditStatusFailed
	}
	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(filter audit.Filter, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(filter, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (entities.AuditPurge, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

func withOutcome(event *entities.AuditEvent, err error) *entities.AuditEvent {
	event.Status = entities.AuditStatusSuccess
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), maxErrorLength)
	}
	return event
}

func marshalMetadata(metadata map[string]any) string {
	data, err := json.Marshal(metadata)
	if err != nil {
		return ""
	}
	return string(data)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
