package entities

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

type AuditEventType string

const (
	AuditEventEngagement AuditEventType = "engagement"
	AuditEventMembership AuditEventType = "membership"
	AuditEventDelete     AuditEventType = "delete"
	AuditEventRecount    AuditEventType = "recount"
	AuditEventAuth       AuditEventType = "auth"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

type AuditEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"index" json:"user_id"`
	EventType   AuditEventType `gorm:"index;size:50" json:"event_type"`
	Action      string         `gorm:"size:100" json:"action"` // e.g. "song_like", "album_move"
	Description string         `gorm:"size:500" json:"description"`
	EntityType  EntityKind     `gorm:"size:50" json:"entity_type"`
	EntityID    *uint          `gorm:"index" json:"entity_id,omitempty"`
	Metadata    string         `gorm:"type:text" json:"metadata,omitempty"` // JSON for extra data
	Status      AuditStatus    `gorm:"size:20" json:"status"`
	ErrorMsg    string         `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}

// AuditPurge counts the audit events a retention pass removed, per event type.
type AuditPurge map[AuditEventType]int64

func (p AuditPurge) Total() int64 {
	var total int64
	for _, n := range p {
		total += n
	}
	return total
}

// String renders the counts as "auth=1 engagement=4", sorted by type.
func (p AuditPurge) String() string {
	parts := make([]string, 0, len(p))
	for _, eventType := range slices.Sorted(maps.Keys(p)) {
		parts = append(parts, fmt.Sprintf("%s=%d", eventType, p[eventType]))
	}
	return strings.Join(parts, " ")
}
