package gateway

import (
	"context"
	"time"

	"github.com/user/wfhbot/internal/classify"
	"github.com/user/wfhbot/internal/types"
)

// Job is one routed, actionable event queued for processing.
type Job struct {
	ID        types.EventID
	Command   classify.Command
	Event     *types.InboundEvent
	CreatedAt time.Time

	// Ctx is assigned by the queue when the job is dequeued.
	Ctx context.Context
}

// NewJob wraps a routed event.
func NewJob(cmd classify.Command, ev *types.InboundEvent) *Job {
	return &Job{
		ID:        types.NewEventID(),
		Command:   cmd,
		Event:     ev,
		CreatedAt: time.Now(),
	}
}
