package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/soundwave/internal/config"
	"github.com/mrlokans/soundwave/internal/database/reconcile"
	"github.com/mrlokans/soundwave/internal/entities"
	"github.com/mrlokans/soundwave/internal/services"
)

func TestNewClient(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	require.NotNil(t, client)

	// Verify tasks database was created
	tasksDBPath := filepath.Join(tmpDir, "test-tasks.db")
	_, err = os.Stat(tasksDBPath)
	assert.NoError(t, err, "tasks database should be created")

	err = client.Close()
	assert.NoError(t, err)
}

func TestClientStartStop(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	defer client.Close()

	// Start client in background
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go client.Start(ctx)

	// Give it time to start
	time.Sleep(50 * time.Millisecond)

	// Stop should complete successfully
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()

	success := client.Stop(stopCtx)
	assert.True(t, success, "stop should succeed gracefully")
}

// TestTask is a simple task for testing
type TestTask struct {
	Value string `json:"value"`
}

func (t TestTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "test_task",
		MaxAttempts: 1,
		Backoff:     time.Second,
		Timeout:     5 * time.Second,
	}
}

func TestTaskEnqueue(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	defer client.Close()

	// Create and register a test queue
	executed := make(chan string, 1)
	queue := backlite.NewQueue(func(ctx context.Context, task TestTask) error {
		executed <- task.Value
		return nil
	})
	client.Register(queue)

	// Start client
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	// Enqueue a task
	ids, err := client.Add(TestTask{Value: "hello"}).Save()
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	// Wait for task to be executed
	select {
	case val := <-executed:
		assert.Equal(t, "hello", val)
	case <-time.After(5 * time.Second):
		t.Fatal("task was not executed within timeout")
	}
}

type recordingRunner struct {
	mu      sync.Mutex
	targets []services.Target
	trigger string
	userID  uint
	err     error
	done    chan struct{}
}

func newRecordingRunner() *recordingRunner {
	return &recordingRunner{done: make(chan struct{}, 4)}
}

func (r *recordingRunner) Run(ctx context.Context, target services.Target, trigger string, userID uint) (*services.RecountResult, error) {
	r.mu.Lock()
	r.targets = append(r.targets, target)
	r.trigger = trigger
	r.userID = userID
	r.mu.Unlock()
	defer func() { r.done <- struct{}{} }()

	if r.err != nil {
		return nil, r.err
	}
	return &services.RecountResult{
		Trigger: trigger,
		Target:  target,
		Report:  &reconcile.Report{Checked: 1, Drifts: []reconcile.Drift{}},
	}, nil
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.Tasks{Workers: 4})
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, DefaultConfig().ReleaseAfter, cfg.ReleaseAfter)
	assert.Equal(t, DefaultConfig().CleanupInterval, cfg.CleanupInterval)
}

func TestRecountTaskConfig(t *testing.T) {
	cfg := RecountTask{}.Config()

	assert.Equal(t, "recount_counters", cfg.Name)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 30*time.Minute, cfg.Timeout)
	require.NotNil(t, cfg.Retention)
	assert.True(t, cfg.Retention.Data.OnlyFailed)
}

func TestRecountProcessor(t *testing.T) {
	runner := newRecordingRunner()
	process := RecountProcessor(runner)

	err := process(context.Background(), RecountTask{Kind: entities.KindSong, ID: 12, UserID: 3})
	require.NoError(t, err)

	assert.Equal(t, []services.Target{{Kind: entities.KindSong, ID: 12}}, runner.targets)
	assert.Equal(t, services.TriggerManual, runner.trigger, "empty trigger defaults to manual")
	assert.Equal(t, uint(3), runner.userID)
}

func TestRecountProcessor_PropagatesFailure(t *testing.T) {
	runner := newRecordingRunner()
	runner.err = entities.ErrTransient

	err := RecountProcessor(runner)(context.Background(), RecountTask{Trigger: services.TriggerScheduled})
	assert.ErrorIs(t, err, entities.ErrTransient)
}

func TestRecountProcessor_NilRunner(t *testing.T) {
	err := RecountProcessor(nil)(context.Background(), RecountTask{})
	assert.Error(t, err)
}

type fakeCleaner struct {
	retention time.Duration
	err       error
}

func (f *fakeCleaner) DeleteOldEvents(retention time.Duration) (entities.AuditPurge, error) {
	f.retention = retention
	if f.err != nil {
		return nil, f.err
	}
	return entities.AuditPurge{entities.AuditEventEngagement: 2}, nil
}

func TestCleanupAuditEventsProcessor(t *testing.T) {
	cleaner := &fakeCleaner{}
	process := CleanupAuditEventsProcessor(cleaner)

	require.NoError(t, process(context.Background(), CleanupAuditEventsTask{RetentionDays: 7}))
	assert.Equal(t, 7*24*time.Hour, cleaner.retention)

	require.NoError(t, process(context.Background(), CleanupAuditEventsTask{}))
	assert.Equal(t, time.Duration(DefaultAuditRetentionDays)*24*time.Hour, cleaner.retention)

	cleaner.err = errors.New("disk full")
	assert.ErrorIs(t, process(context.Background(), CleanupAuditEventsTask{RetentionDays: 1}), cleaner.err)
}

func TestCleanupAuditEventsTask_RetentionPeriod(t *testing.T) {
	assert.Equal(t, 48*time.Hour, CleanupAuditEventsTask{RetentionDays: 2}.RetentionPeriod())
	assert.Equal(t, time.Duration(DefaultAuditRetentionDays)*24*time.Hour, CleanupAuditEventsTask{RetentionDays: -1}.RetentionPeriod())
}

func TestEnqueueRecountRunsProcessor(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "soundwave.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	defer client.Close()

	runner := newRecordingRunner()
	client.Register(NewRecountQueue(runner), NewCleanupAuditEventsQueue(&fakeCleaner{}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	id, err := client.EnqueueRecount(context.Background(), RecountTask{Trigger: services.TriggerScheduled})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	select {
	case <-runner.done:
		runner.mu.Lock()
		assert.Equal(t, services.TriggerScheduled, runner.trigger)
		assert.Equal(t, []services.Target{{}}, runner.targets)
		runner.mu.Unlock()
	case <-time.After(5 * time.Second):
		t.Fatal("recount task was not executed within timeout")
	}
}
