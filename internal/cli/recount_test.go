package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/soundwave/internal/database"
	"github.com/mrlokans/soundwave/internal/database/dbtest"
	"github.com/mrlokans/soundwave/internal/entities"
)

func TestRecountCommand_ParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"everything", nil, false},
		{"single song", []string{"-kind", "song", "-id", "4"}, false},
		{"kind without id", []string{"-kind", "album"}, true},
		{"id without kind", []string{"-id", "4"}, true},
		{"unknown kind", []string{"-kind", "user", "-id", "1"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRecountCommand().ParseFlags(tt.args)
			if tt.wantErr {
				assert.ErrorIs(t, err, entities.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRecountCommand_RepairsDrift(t *testing.T) {
	t.Setenv("RECOUNT_REPORT_DIR", t.TempDir())
	dbPath := filepath.Join(t.TempDir(), "soundwave.db")

	opts := database.DefaultOptions()
	opts.LogLevel = logger.Silent
	db, err := database.NewDatabase(dbPath, opts)
	require.NoError(t, err)

	owner := dbtest.CreateUser(t, db, "owner")
	song := dbtest.CreateSong(t, db, owner.ID, "drifted")
	require.NoError(t, db.DB.Model(song).UpdateColumn("num_likes", 3).Error)
	require.NoError(t, db.Close())

	var out bytes.Buffer
	cmd := NewRecountCommand()
	cmd.out = &out
	require.NoError(t, cmd.ParseFlags([]string{"-db", dbPath, "-kind", "song", "-id", "1"}))
	require.NoError(t, cmd.Run())

	assert.Contains(t, out.String(), "Checked 1 entities, repaired 1 counters")
	assert.Contains(t, out.String(), "song 1 num_likes: 3 -> 0")

	db, err = database.NewDatabase(dbPath, opts)
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, int64(0), dbtest.ReloadSong(t, db, song.ID).NumLikes)
}
