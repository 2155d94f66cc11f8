// Package telegram adapts Telegram group chats to the bot's capability
// interface. Group and supergroup chats map to public-channel refs with a
// 'C'-prefixed id; private chats get a 'D' prefix and are therefore ignored
// by the classifier. The roster is accumulated from observed traffic because
// Telegram has no workspace directory to enumerate.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/user/wfhbot/internal/gateway"
	"github.com/user/wfhbot/internal/types"
)

// Bot is the subset of tgbotapi.BotAPI the adapter needs. Tests substitute a
// fake.
type Bot interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetSelf() tgbotapi.User
}

type botWrapper struct {
	bot *tgbotapi.BotAPI
}

func (w *botWrapper) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return w.bot.GetUpdatesChan(config)
}

func (w *botWrapper) StopReceivingUpdates() {
	w.bot.StopReceivingUpdates()
}

func (w *botWrapper) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	return w.bot.Send(c)
}

func (w *botWrapper) GetSelf() tgbotapi.User {
	return w.bot.Self
}

// Adapter bridges Telegram long-polling to the gateway.
type Adapter struct {
	bot  Bot
	self types.UserRef

	mu        sync.RWMutex
	users     map[types.UserID]types.UserRef
	channels  map[types.ChannelID]types.ChannelRef
	userOrder []types.UserID
	chanOrder []types.ChannelID
}

// New creates an adapter over a live Telegram connection.
func New(token string) (*Adapter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	return NewWithBot(&botWrapper{bot: bot}), nil
}

// NewWithBot creates an adapter over the given Bot. Used by tests.
func NewWithBot(bot Bot) *Adapter {
	self := bot.GetSelf()
	return &Adapter{
		bot: bot,
		self: types.UserRef{
			ID:   types.UserID(strconv.FormatInt(self.ID, 10)),
			Name: self.UserName,
		},
		users:    make(map[types.UserID]types.UserRef),
		channels: make(map[types.ChannelID]types.ChannelRef),
	}
}

// Start begins long-polling for updates, recording roster entries and feeding
// message events into the handler until the context is cancelled.
func (a *Adapter) Start(ctx context.Context, handle gateway.Handler) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := a.bot.GetUpdatesChan(u)

	for {
		select {
		case update := <-updates:
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			a.observe(update.Message)
			if err := handle(ctx, a.inboundEvent(update.Message)); err != nil {
				slog.Error("handle inbound error", "error", err)
			}
		case <-ctx.Done():
			a.bot.StopReceivingUpdates()
			return
		}
	}
}

// observe records the author and chat of a message into the roster.
func (a *Adapter) observe(msg *tgbotapi.Message) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if msg.From != nil {
		uid := types.UserID(strconv.FormatInt(msg.From.ID, 10))
		if _, ok := a.users[uid]; !ok {
			a.users[uid] = types.UserRef{ID: uid, Name: userName(msg.From)}
			a.userOrder = append(a.userOrder, uid)
		}
	}

	cid := channelID(msg.Chat)
	if _, ok := a.channels[cid]; !ok {
		a.channels[cid] = types.ChannelRef{ID: cid, Name: channelName(msg.Chat)}
		a.chanOrder = append(a.chanOrder, cid)
	}
}

func (a *Adapter) inboundEvent(msg *tgbotapi.Message) *types.InboundEvent {
	var uid types.UserID
	if msg.From != nil {
		uid = types.UserID(strconv.FormatInt(msg.From.ID, 10))
	}
	return &types.InboundEvent{
		Type:      "message",
		Text:      msg.Text,
		ChannelID: channelID(msg.Chat),
		UserID:    uid,
	}
}

// channelID synthesizes a namespaced channel id: 'C' for group conversations,
// 'D' for direct ones, matching the classifier's public-channel check.
func channelID(chat *tgbotapi.Chat) types.ChannelID {
	prefix := "D"
	if chat.IsGroup() || chat.IsSuperGroup() {
		prefix = "C"
	}
	return types.ChannelID(prefix + strconv.FormatInt(chat.ID, 10))
}

func channelName(chat *tgbotapi.Chat) string {
	if chat.Title != "" {
		return chat.Title
	}
	return chat.UserName
}

func userName(u *tgbotapi.User) string {
	if u.UserName != "" {
		return u.UserName
	}
	return u.FirstName
}

// PostMessage posts to a chat by its roster name.
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

	chatID, err := strconv.ParseInt(strings.TrimLeft(string(id), "CD"), 10, 64)
	if err != nil {
		return fmt.Errorf("parse chat id from %q: %w", id, err)
	}
	if _, err := a.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("send to %q: %w", channel, err)
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
