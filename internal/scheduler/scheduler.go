// internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/user/wfhbot/internal/counter"
	"github.com/user/wfhbot/internal/types"
)

// PostFunc delivers the digest text to a named channel.
type PostFunc func(channel, text string) error

// Scheduler posts a leaderboard digest on a cron schedule.
type Scheduler struct {
	store   types.CounterStore
	post    PostFunc
	cron    *cron.Cron
	spec    string
	channel string
	limit   int
}

// cronParser accepts both standard 5-field cron expressions and 6-field
// expressions with an optional seconds field.
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// New creates a Scheduler that posts the top limit users to channel on every
// tick of spec.
func New(store types.CounterStore, spec, channel string, limit int, post PostFunc) *Scheduler {
	return &Scheduler{
		store:   store,
		post:    post,
		cron:    cron.New(cron.WithParser(cronParser)),
		spec:    spec,
		channel: channel,
		limit:   limit,
	}
}

// Start registers the digest job and starts the cron ticker.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.postDigest); err != nil {
		return err
	}
	s.cron.Start()
	slog.Info("digest scheduled", "schedule", s.spec, "channel", s.channel)
	return nil
}

// Stop halts the ticker; a digest already in flight finishes.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) postDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	top, err := s.store.TopUsers(ctx, s.limit)
	if err != nil {
		slog.Error("digest query failed", "error", err)
		return
	}
	if len(top) == 0 {
		slog.Debug("digest skipped, no counts yet")
		return
	}
	if err := s.post(s.channel, counter.FormatLeaderboard(top)); err != nil {
		slog.Error("digest delivery failed", "channel", s.channel, "error", err)
	}
}
