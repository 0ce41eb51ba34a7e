package audit

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/soundwave/internal/entities"
)

const defaultLimit = 50

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Filter narrows GetEvents. Zero fields match everything.
type Filter struct {
	UserID     uint
	EventType  entities.AuditEventType
	EntityType entities.EntityKind
	EntityID   uint
}

func (f Filter) apply(query *gorm.DB) *gorm.DB {
	if f.UserID > 0 {
		query = query.Where("user_id = ?", f.UserID)
	}
	if f.EventType != "" {
		query = query.Where("event_type = ?", f.EventType)
	}
	if f.EntityType != "" {
		query = query.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID > 0 {
		query = query.Where("entity_id = ?", f.EntityID)
	}
	return query
}

// LogEvent saves an audit event to the database.
func (r *Repository) LogEvent(event *entities.AuditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return r.db.Create(event).Error
}

// GetEvents retrieves a page of matching events, most recent first, and the total match count.
func (r *Repository) GetEvents(filter Filter, limit, offset int) ([]entities.AuditEvent, int64, error) {
	var events []entities.AuditEvent
	var total int64

	query := filter.apply(r.db.Model(&entities.AuditEvent{}))
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}

	err := query.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&events).Error
	return events, total, err
}

// DeleteOldEvents removes audit events older than the specified time and
// reports how many of each event type were removed.
func (r *Repository) DeleteOldEvents(olderThan time.Time) (entities.AuditPurge, error) {
	purge := entities.AuditPurge{}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var rows []struct {
			EventType entities.AuditEventType
			Count     int64
		}
		if err := tx.Model(&entities.AuditEvent{}).
			Select("event_type, COUNT(*) AS count").
			Where("created_at < ?", olderThan).
			Group("event_type").
			Scan(&rows).Error; err != nil {
			return err
		}
		for _, row := range rows {
			purge[row.EventType] = row.Count
		}
		return tx.Where("created_at < ?", olderThan).Delete(&entities.AuditEvent{}).Error
	})
	if err != nil {
		return nil, err
	}
	return purge, nil
}
