package audit

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	auditRepo "github.com/mrlokans/soundwave/internal/database/audit"
	"github.com/mrlokans/soundwave/internal/database/dbtest"
	"github.com/mrlokans/soundwave/internal/entities"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	db := dbtest.New(t).DB
	return NewService(auditRepo.NewRepository(db)), db
}

func TestService_Log(t *testing.T) {
	svc, db := setupTestService(t)

	event := &entities.AuditEvent{
		UserID:    1,
		EventType: entities.AuditEventEngagement,
		Action:    "song_like",
		Status:    entities.AuditStatusSuccess,
	}

	require.NoError(t, svc.Log(event))

	var saved entities.AuditEvent
	require.NoError(t, db.First(&saved, event.ID).Error)
	assert.Equal(t, "song_like", saved.Action)
}

func TestService_LogEngagement(t *testing.T) {
	svc, db := setupTestService(t)

	t.Run("success", func(t *testing.T) {
		svc.LogEngagement(1, "song_like", entities.KindSong, 7, nil)
		svc.Flush()

		var event entities.AuditEvent
		require.NoError(t, db.Where("action = ?", "song_like").First(&event).Error)
		assert.Equal(t, entities.AuditEventEngagement, event.EventType)
		assert.Equal(t, entities.KindSong, event.EntityType)
		require.NotNil(t, event.EntityID)
		assert.Equal(t, uint(7), *event.EntityID)
		assert.Equal(t, entities.AuditStatusSuccess, event.Status)
	})

	t.Run("failure", func(t *testing.T) {
		svc.LogEngagement(1, "song_unlike", entities.KindSong, 7, entities.ErrNotLiked)
		svc.Flush()

		var event entities.AuditEvent
		require.NoError(t, db.Where("action = ?", "song_unlike").First(&event).Error)
		assert.Equal(t, entities.AuditStatusFailed, event.Status)
		assert.Equal(t, entities.ErrNotLiked.Error(), event.ErrorMsg)
	})
}

func TestService_LogMembership(t *testing.T) {
	svc, db := setupTestService(t)
	albumID := uint(4)

	svc.LogMembership(2, "album_add", 9, &albumID, nil)
	svc.LogMembership(2, "album_remove", 9, nil, nil)
	svc.Flush()

	var added entities.AuditEvent
	require.NoError(t, db.Where("action = ?", "album_add").First(&added).Error)
	assert.Contains(t, added.Metadata, `"album_id":4`)

	var removed entities.AuditEvent
	require.NoError(t, db.Where("action = ?", "album_remove").First(&removed).Error)
	assert.Empty(t, removed.Metadata)
}

func TestService_LogDelete(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogDelete(3, entities.KindSong, 11, "Roygbiv")
	svc.Flush()

	var event entities.AuditEvent
	require.NoError(t, db.Where("action = ?", "song_delete").First(&event).Error)
	assert.Equal(t, "Deleted song: Roygbiv", event.Description)
}

func TestService_LogRecount(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogRecount(0, "scheduled", 12, 2, nil)
	svc.LogRecount(1, "manual", 0, 0, errors.New("database is locked"))
	svc.Flush()

	var ok entities.AuditEvent
	require.NoError(t, db.Where("action = ?", "recount_scheduled").First(&ok).Error)
	assert.Equal(t, "Checked 12 entities, repaired 2 counters", ok.Description)

	var failed entities.AuditEvent
	require.NoError(t, db.Where("action = ?", "recount_manual").First(&failed).Error)
	assert.Equal(t, entities.AuditStatusFailed, failed.Status)
}

func TestService_LogAuth(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogAuth(1, "login", true)
	svc.LogAuth(0, "login_failed", false)
	svc.Flush()

	var failed entities.AuditEvent
	require.NoError(t, db.Where("action = ?", "login_failed").First(&failed).Error)
	assert.Equal(t, entities.AuditStatusFailed, failed.Status)
}

func TestService_DeleteOldEvents(t *testing.T) {
	svc, _ := setupTestService(t)

	require.NoError(t, svc.Log(&entities.AuditEvent{Action: "old", CreatedAt: time.Now().Add(-72 * time.Hour)}))
	require.NoError(t, svc.Log(&entities.AuditEvent{Action: "new"}))

	purge, err := svc.DeleteOldEvents(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purge.Total())

	events, total, err := svc.GetEvents(auditRepo.Filter{}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "new", events[0].Action)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))

	long := strings.Repeat("x", 20)
	truncated := truncate(long, 10)
	assert.Len(t, truncated, 10)
	assert.True(t, strings.HasSuffix(truncated, "..."))
}
