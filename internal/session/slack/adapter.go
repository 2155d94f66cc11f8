// Package slack adapts a Slack workspace session to the bot's capability
// interface: roster lookups, the bot's own identity, message delivery, and
// the RTM event stream.
package slack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/slack-go/slack"

	"github.com/user/wfhbot/internal/gateway"
	"github.com/user/wfhbot/internal/types"
)

// ErrBotIdentityUnresolved means the configured bot name matched no roster
// user. Without its own identity the bot cannot filter its own messages, so
// this is startup-fatal.
var ErrBotIdentityUnresolved = errors.New("bot identity unresolved")

// Adapter holds the Slack connection and an in-memory roster snapshot loaded
// at connect time.
type Adapter struct {
	api *slack.Client
	rtm *slack.RTM

	self types.UserRef

	mu        sync.RWMutex
	users     map[types.UserID]types.UserRef
	channels  map[types.ChannelID]types.ChannelRef
	userOrder []types.UserID
	chanOrder []types.ChannelID
}

// New authenticates against Slack, loads the roster, and resolves the bot's
// identity by display name. Returns ErrBotIdentityUnresolved (wrapped) when
// botName matches no user.
func New(token, botName string) (*Adapter, error) {
	a := &Adapter{
		api:      slack.New(token),
		users:    make(map[types.UserID]types.UserRef),
		channels: make(map[types.ChannelID]types.ChannelRef),
	}
	if err := a.loadRoster(); err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}

	for _, id := range a.userOrder {
		if a.users[id].Name == botName {
			a.self = a.users[id]
			break
		}
	}
	if a.self.ID == "" {
		return nil, fmt.Errorf("no user named %q in roster: %w", botName, ErrBotIdentityUnresolved)
	}
	return a, nil
}

func (a *Adapter) loadRoster() error {
	users, err := a.api.GetUsers()
	if err != nil {
		return fmt.Errorf("get users: %w", err)
	}
	for _, u := range users {
		id := types.UserID(u.ID)
		a.users[id] = types.UserRef{ID: id, Name: u.Name}
		a.userOrder = append(a.userOrder, id)
	}

	params := &slack.GetConversationsParameters{
		Types: []string{"public_channel"},
		Limit: 200,
	}
	for {
		channels, cursor, err := a.api.GetConversations(params)
		if err != nil {
			return fmt.Errorf("get conversations: %w", err)
		}
		for _, c := range channels {
			id := types.ChannelID(c.ID)
			a.channels[id] = types.ChannelRef{ID: id, Name: c.Name}
			a.chanOrder = append(a.chanOrder, id)
		}
		if cursor == "" {
			break
		}
		params.Cursor = cursor
	}
	return nil
}

// Start opens the RTM connection and feeds message events into the handler
// until the context is cancelled. Handler errors affect only that event.
func (a *Adapter) Start(ctx context.Context, handle gateway.Handler) {
	a.rtm = a.api.NewRTM()
	go a.rtm.ManageConnection()

	for {
		select {
		case msg, ok := <-a.rtm.IncomingEvents:
			if !ok {
				return
			}
			switch ev := msg.Data.(type) {
			case *slack.MessageEvent:
				event := &types.InboundEvent{
					Type:      ev.Type,
					Text:      ev.Text,
					ChannelID: types.ChannelID(ev.Channel),
					UserID:    types.UserID(ev.User),
				}
				if err := handle(ctx, event); err != nil {
					slog.Error("handle inbound error", "error", err)
				}
			case *slack.RTMError:
				slog.Error("rtm error", "error", ev.Error())
			case *slack.InvalidAuthEvent:
				slog.Error("invalid slack credentials, stopping adapter")
				return
			}
		case <-ctx.Done():
			if err := a.rtm.Disconnect(); err != nil {
				slog.Warn("rtm disconnect", "error", err)
			}
			return
		}
	}
}

// PostMessage posts to a channel by name, as the bot user.
func (a *Adapter) PostMessage(channel, text string) error {
	a.mu.RLock()
	var id types.ChannelID
	for _, cid := range a.chanOrder {
		if a.channels[cid].Name == channel {
			id = cid
			break
		}
	}
	a.mu.RUnlock()
	if id == "" {
		return fmt.Errorf("channel %q not in roster", channel)
	}

	_, _, err := a.api.PostMessage(string(id),
		slack.MsgOptionText(text, false),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		return fmt.Errorf("post message to %q: %w", channel, err)
	}
	return nil
}

func (a *Adapter) Users() []types.UserRef {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]types.UserRef, 0, len(a.userOrder))
	for _, id := range a.userOrder {
		out = append(out, a.users[id])
	}
	return out
}

func (a *Adapter) Channels() []types.ChannelRef {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]types.ChannelRef, 0, len(a.chanOrder))
	for _, id := range a.chanOrder {
		out = append(out, a.channels[id])
	}
	return out
}

func (a *Adapter) Self() types.UserRef {
	return a.self
}

func (a *Adapter) UserByID(id types.UserID) (types.UserRef, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	u, ok := a.users[id]
	return u, ok
}

func (a *Adapter) ChannelByID(id types.ChannelID) (types.ChannelRef, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	c, ok := a.channels[id]
	return c, ok
}

// Compile-time interface compliance check.
var _ types.Session = (*Adapter)(nil)
