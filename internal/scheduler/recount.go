package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/soundwave/internal/services"
	"github.com/mrlokans/soundwave/internal/tasks"
)

// Queue hands scheduled work to the background task queue.
type Queue interface {
	EnqueueRecount(ctx context.Context, task tasks.RecountTask) (string, error)
	EnqueueAuditCleanup(ctx context.Context, retentionDays int) error
}

// Options configures the periodic jobs. An empty schedule disables its job.
type Options struct {
	RecountSchedule      string
	AuditCleanupSchedule string
	AuditRetentionDays   int
}

// Scheduler runs counter reconciliation and audit cleanup on cron schedules.
// With a Queue the jobs are enqueued, otherwise they run inline.
type Scheduler struct {
	runner  tasks.RecountRunner
	cleaner tasks.AuditEventCleaner
	queue   Queue
	opts    Options

	cron       *cron.Cron
	recountID  cron.EntryID
	cleanupID  cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	recounting atomic.Bool
	cancelFunc context.CancelFunc
	ctx        context.Context
}

// New creates a scheduler. queue and cleaner may be nil.
func New(runner tasks.RecountRunner, cleaner tasks.AuditEventCleaner, queue Queue, opts Options) *Scheduler {
	return &Scheduler{
		runner:  runner,
		cleaner: cleaner,
		queue:   queue,
		opts:    opts,
		cron:    cron.New(cron.WithParser(parser)),
		ctx:     context.Background(),
	}
}

// Start registers the configured jobs and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if s.opts.RecountSchedule == "" && s.opts.AuditCleanupSchedule == "" {
		log.Printf("Scheduler: no jobs configured")
		return nil
	}

	if s.opts.RecountSchedule != "" {
		if err := ValidateCronSchedule(s.opts.RecountSchedule); err != nil {
			return fmt.Errorf("invalid recount schedule '%s': %w", s.opts.RecountSchedule, err)
		}
		id, err := s.cron.AddFunc(s.opts.RecountSchedule, s.runRecount)
		if err != nil {
			return fmt.Errorf("failed to schedule recount job: %w", err)
		}
		s.recountID = id
	}

	if s.opts.AuditCleanupSchedule != "" {
		if err := ValidateCronSchedule(s.opts.AuditCleanupSchedule); err != nil {
			return fmt.Errorf("invalid audit cleanup schedule '%s': %w", s.opts.AuditCleanupSchedule, err)
		}
		id, err := s.cron.AddFunc(s.opts.AuditCleanupSchedule, s.runAuditCleanup)
		if err != nil {
			return fmt.Errorf("failed to schedule audit cleanup job: %w", err)
		}
		s.cleanupID = id
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)
	s.ctx = cancelCtx

	s.cron.Start()
	s.isRunning = true

	if s.opts.RecountSchedule != "" {
		nextRun, _ := GetNextRunTime(s.opts.RecountSchedule, time.Now())
		log.Printf("Scheduler: recount scheduled '%s' (%s). Next run: %v",
			s.opts.RecountSchedule, GetCronDescription(s.opts.RecountSchedule), nextRun)
	}

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops accepting new jobs and waits for running jobs to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	cancel := s.cancelFunc
	s.cancelFunc = nil
	s.mu.Unlock()

	done := s.cron.Stop()
	<-done.Done()
	if cancel != nil {
		cancel()
	}

	log.Printf("Scheduler: stopped")
}

// RunNow triggers an immediate full recount in the background.
func (s *Scheduler) RunNow() {
	go s.runRecount()
}

// IsRunning returns whether the cron loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next scheduled recount will occur.
func (s *Scheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || s.recountID == 0 {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.recountID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *Scheduler) jobContext() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctx
}

func (s *Scheduler) runRecount() {
	ctx := s.jobContext()

	if s.queue != nil {
		id, err := s.queue.EnqueueRecount(ctx, tasks.RecountTask{Trigger: services.TriggerScheduled})
		if err != nil {
			log.Printf("Scheduler: %v", err)
			return
		}
		log.Printf("Scheduler: enqueued recount task %s", id)
		return
	}

	if !s.recounting.CompareAndSwap(false, true) {
		log.Printf("Scheduler: recount skipped (previous run still in progress)")
		return
	}
	defer s.recounting.Store(false)

	if _, err := s.runner.Run(ctx, services.Target{}, services.TriggerScheduled, 0); err != nil {
		log.Printf("Scheduler: recount failed: %v", err)
	}
}

func (s *Scheduler) runAuditCleanup() {
	ctx := s.jobContext()
	days := s.opts.AuditRetentionDays

	if s.queue != nil {
		if err := s.queue.EnqueueAuditCleanup(ctx, days); err != nil {
			log.Printf("Scheduler: %v", err)
		}
		return
	}

	if s.cleaner == nil {
		return
	}
	if err := tasks.CleanupAuditEventsProcessor(s.cleaner)(ctx, tasks.CleanupAuditEventsTask{RetentionDays: days}); err != nil {
		log.Printf("Scheduler: %v", err)
	}
}
