// Package counter orchestrates the counter store for the increment and
// leaderboard paths and owns the first-run bootstrap.
package counter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/user/wfhbot/internal/types"
)

const welcomeMessage = "Hi guys, tired of going to the office?" +
	"\n I can tell you how many times you worked from home. Just say `wfh` to update your home office count!"

// Service runs the two counter operations against the store and posts replies
// through the session capability interface. It holds no platform state of its
// own.
type Service struct {
	store   types.CounterStore
	session types.Session

	limit    int    // leaderboard size
	announce string // welcome channel name; empty means first roster channel
}

// New creates a Service. limit bounds the leaderboard; announce optionally
// pins the welcome-message channel by name.
func New(store types.CounterStore, session types.Session, limit int, announce string) *Service {
	if limit <= 0 {
		limit = 10
	}
	return &Service{
		store:    store,
		session:  session,
		limit:    limit,
		announce: announce,
	}
}

// Bootstrap runs once at startup, before any event is consumed. An absent
// lastrun row means first ever run: greet the workspace, then seed the row.
// Otherwise just overwrite the timestamp. The absence check and the write are
// two store round-trips; concurrent first runs against a shared store can
// race, which surfaces as ErrDuplicateKey here.
func (s *Service) Bootstrap(ctx context.Context) error {
	now := time.Now().UTC().Format(time.RFC3339)

	_, err := s.store.RunMetadata(ctx)
	switch {
	case errors.Is(err, types.ErrNotFound):
		s.postWelcome()
		if err := s.store.InitRunMetadata(ctx, now); err != nil {
			return fmt.Errorf("init run metadata: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("read run metadata: %w", err)
	default:
		if err := s.store.TouchRunMetadata(ctx, now); err != nil {
			return fmt.Errorf("touch run metadata: %w", err)
		}
		return nil
	}
}

// postWelcome targets the configured announce channel, falling back to the
// first channel in the roster. Welcome delivery is best-effort.
func (s *Service) postWelcome() {
	channel := s.announce
	if channel == "" {
		channels := s.session.Channels()
		if len(channels) == 0 {
			slog.Warn("no channels in roster, skipping welcome message")
			return
		}
		channel = channels[0].Name
	}
	if err := s.session.PostMessage(channel, welcomeMessage); err != nil {
		slog.Error("post welcome message", "channel", channel, "error", err)
	}
}

// Increment records one more visit for the event's author and confirms it in
// the channel. Store failures abort without posting anything.
func (s *Service) Increment(ctx context.Context, ev *types.InboundEvent) error {
	user, ok := s.session.UserByID(ev.UserID)
	if !ok {
		return fmt.Errorf("user %q not in roster", ev.UserID)
	}
	channel, ok := s.session.ChannelByID(ev.ChannelID)
	if !ok {
		return fmt.Errorf("channel %q not in roster", ev.ChannelID)
	}

	times, err := s.store.IncrementOrCreate(ctx, user.Name)
	if err != nil {
		return fmt.Errorf("save count for %q: %w", user.Name, err)
	}
	slog.Info("count saved", "user", user.Name, "times", times)

	reply := "Saved new WFH for " + user.Name + "!"
	if err := s.session.PostMessage(channel.Name, reply); err != nil {
		return fmt.Errorf("post reply to %q: %w", channel.Name, err)
	}
	return nil
}

// Leaderboard posts the ranked listing to the event's channel.
func (s *Service) Leaderboard(ctx context.Context, ev *types.InboundEvent) error {
	channel, ok := s.session.ChannelByID(ev.ChannelID)
	if !ok {
		return fmt.Errorf("channel %q not in roster", ev.ChannelID)
	}

	top, err := s.store.TopUsers(ctx, s.limit)
	if err != nil {
		return fmt.Errorf("query leaderboard: %w", err)
	}

	if err := s.session.PostMessage(channel.Name, FormatLeaderboard(top)); err != nil {
		return fmt.Errorf("post leaderboard to %q: %w", channel.Name, err)
	}
	return nil
}

// FormatLeaderboard renders the ranked listing, one line per user.
func FormatLeaderboard(top []types.UserCount) string {
	var b strings.Builder
	b.WriteString("LeaderBoard: \n")
	for _, uc := range top {
		fmt.Fprintf(&b, "%s worked %d times! \n", uc.User, uc.Times)
	}
	return b.String()
}
