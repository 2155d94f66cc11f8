// Package gateway turns raw inbound events into queued counter jobs:
// classify, route, then enqueue on a lane that serializes conflicting work.
package gateway

import (
	"context"
	"log/slog"

	"github.com/user/wfhbot/internal/classify"
	"github.com/user/wfhbot/internal/counter"
	"github.com/user/wfhbot/internal/types"
)

// Handler is the inbound entry point adapters feed events into.
type Handler func(ctx context.Context, ev *types.InboundEvent) error

// Gateway wires the classifier, router, and counter service around the queue.
type Gateway struct {
	classifier classify.Classifier
	service    *counter.Service
	Queue      *Queue
}

// New creates a Gateway. maxConcurrent bounds simultaneous job processing
// across lanes; jobs within one lane always run sequentially.
func New(classifier classify.Classifier, service *counter.Service, maxConcurrent int64) *Gateway {
	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}
	g := &Gateway{
		classifier: classifier,
		service:    service,
		Queue:      NewQueue(maxConcurrent),
	}
	g.Queue.SetProcessor(g.process)
	return g
}

// Start initialises the queue. Stop tears it down and drains in-flight jobs.
func (g *Gateway) Start(ctx context.Context) {
	g.Queue.Start(ctx)
}

func (g *Gateway) Stop() {
	g.Queue.Stop()
}

// HandleInbound drops non-actionable events silently and enqueues the rest.
// Increments share a lane per user so two events from the same user cannot
// interleave; leaderboard queries are read-only and lane per channel.
func (g *Gateway) HandleInbound(ctx context.Context, ev *types.InboundEvent) error {
	if !g.classifier.Actionable(ev) {
		return nil
	}

	cmd := classify.Route(ev)
	job := NewJob(cmd, ev)
	key := laneKey(cmd, ev)

	slog.Debug("event accepted",
		"event_id", string(job.ID),
		"command", string(cmd),
		"user", string(ev.UserID),
		"channel", string(ev.ChannelID))

	return g.Queue.Enqueue(key, job)
}

func laneKey(cmd classify.Command, ev *types.InboundEvent) string {
	if cmd == classify.CommandLeaderboard {
		return "channel:" + string(ev.ChannelID)
	}
	return "user:" + string(ev.UserID)
}

func (g *Gateway) process(job *Job) error {
	switch job.Command {
	case classify.CommandLeaderboard:
		return g.service.Leaderboard(job.Ctx, job.Event)
	default:
		return g.service.Increment(job.Ctx, job.Event)
	}
}
