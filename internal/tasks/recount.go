package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/soundwave/internal/entities"
	"github.com/mrlokans/soundwave/internal/services"
)

// RecountRunner executes a reconciliation pass.
type RecountRunner interface {
	Run(ctx context.Context, target services.Target, trigger string, userID uint) (*services.RecountResult, error)
}

// RecountTask recomputes denormalized counters. An empty Kind covers every
// song, comment and album.
type RecountTask struct {
	Kind    entities.EntityKind `json:"kind,omitempty"`
	ID      uint                `json:"id,omitempty"`
	Trigger string              `json:"trigger"`
	UserID  uint                `json:"user_id,omitempty"`
}

// Config returns the queue configuration for recount tasks.
func (t RecountTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "recount_counters",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     30 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   7 * 24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// Target returns the entities the task covers.
func (t RecountTask) Target() services.Target {
	return services.Target{Kind: t.Kind, ID: t.ID}
}

// RecountProcessor creates a processor function for RecountTask.
func RecountProcessor(runner RecountRunner) backlite.QueueProcessor[RecountTask] {
	return func(ctx context.Context, task RecountTask) error {
		if runner == nil {
			return fmt.Errorf("recount runner not configured")
		}

		trigger := task.Trigger
		if trigger == "" {
			trigger = services.TriggerManual
		}

		result, err := runner.Run(ctx, task.Target(), trigger, task.UserID)
		if err != nil {
			return fmt.Errorf("recount counters: %w", err)
		}

		log.Printf("[TASK] Recount finished: %d checked, %d repaired", result.Report.Checked, len(result.Report.Drifts))
		return nil
	}
}

// NewRecountQueue creates a backlite queue for recount tasks.
func NewRecountQueue(runner RecountRunner) backlite.Queue {
	return backlite.NewQueue(RecountProcessor(runner))
}
