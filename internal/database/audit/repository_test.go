package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/soundwave/internal/database/dbtest"
	"github.com/mrlokans/soundwave/internal/entities"
)

func setupTestRepo(t *testing.T) *Repository {
	return NewRepository(dbtest.New(t).DB)
}

func uintPtr(v uint) *uint {
	return &v
}

func TestRepository_LogEvent(t *testing.T) {
	repo := setupTestRepo(t)

	event := &entities.AuditEvent{
		UserID:      1,
		EventType:   entities.AuditEventEngagement,
		Action:      "song_like",
		Description: "Liked song 3",
		EntityType:  entities.KindSong,
		EntityID:    uintPtr(3),
		Status:      entities.AuditStatusSuccess,
	}

	err := repo.LogEvent(event)
	require.NoError(t, err)
	assert.NotZero(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero())
}

func TestRepository_GetEvents(t *testing.T) {
	repo := setupTestRepo(t)

	seed := []entities.AuditEvent{
		{UserID: 1, EventType: entities.AuditEventEngagement, Action: "song_like", EntityType: entities.KindSong, EntityID: uintPtr(1)},
		{UserID: 1, EventType: entities.AuditEventMembership, Action: "album_move", EntityType: entities.KindSong, EntityID: uintPtr(1)},
		{UserID: 2, EventType: entities.AuditEventEngagement, Action: "comment_like", EntityType: entities.KindComment, EntityID: uintPtr(9)},
		{UserID: 0, EventType: entities.AuditEventRecount, Action: "recount_all"},
	}
	for i := range seed {
		seed[i].Status = entities.AuditStatusSuccess
		require.NoError(t, repo.LogEvent(&seed[i]))
	}

	tests := []struct {
		name   string
		filter Filter
		want   int64
	}{
		{"all", Filter{}, 4},
		{"by user", Filter{UserID: 1}, 2},
		{"by type", Filter{EventType: entities.AuditEventEngagement}, 2},
		{"by entity", Filter{EntityType: entities.KindSong, EntityID: 1}, 2},
		{"combined", Filter{UserID: 2, EventType: entities.AuditEventEngagement}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, total, err := repo.GetEvents(tt.filter, 0, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, total)
			assert.Len(t, events, int(tt.want))
		})
	}

	page, total, err := repo.GetEvents(Filter{}, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, page, 2)
}

func TestRepository_DeleteOldEvents(t *testing.T) {
	repo := setupTestRepo(t)

	longAgo := time.Now().Add(-48 * time.Hour)
	require.NoError(t, repo.LogEvent(&entities.AuditEvent{Action: "song_like", EventType: entities.AuditEventEngagement, CreatedAt: longAgo}))
	require.NoError(t, repo.LogEvent(&entities.AuditEvent{Action: "comment_like", EventType: entities.AuditEventEngagement, CreatedAt: longAgo}))
	require.NoError(t, repo.LogEvent(&entities.AuditEvent{Action: "login", EventType: entities.AuditEventAuth, CreatedAt: longAgo}))
	require.NoError(t, repo.LogEvent(&entities.AuditEvent{Action: "fresh", EventType: entities.AuditEventEngagement}))

	purge, err := repo.DeleteOldEvents(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, entities.AuditPurge{entities.AuditEventEngagement: 2, entities.AuditEventAuth: 1}, purge)
	assert.Equal(t, int64(3), purge.Total())
	assert.Equal(t, "auth=1 engagement=2", purge.String())

	events, _, err := repo.GetEvents(Filter{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "fresh", events[0].Action)
}
