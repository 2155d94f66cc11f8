package telegram

import (
	"context"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/user/wfhbot/internal/types"
)

type fakeBot struct {
	updates chan tgbotapi.Update
	sent    []tgbotapi.MessageConfig
	stopped bool
}

func newFakeBot() *fakeBot {
	return &fakeBot{updates: make(chan tgbotapi.Update, 10)}
}

func (f *fakeBot) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeBot) StopReceivingUpdates() {
	f.stopped = true
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeBot) GetSelf() tgbotapi.User {
	return tgbotapi.User{ID: 999, UserName: "wfh"}
}

func groupMessage(userID int64, userName string, chatID int64, title, text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: userID, UserName: userName},
			Chat: &tgbotapi.Chat{ID: chatID, Type: "group", Title: title},
			Text: text,
		},
	}
}

func TestChannelIDNamespaces(t *testing.T) {
	group := &tgbotapi.Chat{ID: -100123, Type: "group", Title: "team"}
	if got := channelID(group); got[0] != 'C' {
		t.Errorf("group chat id = %q, expected C prefix", got)
	}
	super := &tgbotapi.Chat{ID: -200456, Type: "supergroup", Title: "big team"}
	if got := channelID(super); got[0] != 'C' {
		t.Errorf("supergroup chat id = %q, expected C prefix", got)
	}
	private := &tgbotapi.Chat{ID: 42, Type: "private", UserName: "alice"}
	if got := channelID(private); got[0] != 'D' {
		t.Errorf("private chat id = %q, expected D prefix", got)
	}
}

func TestStartFeedsHandlerAndBuildsRoster(t *testing.T) {
	bot := newFakeBot()
	a := NewWithBot(bot)

	received := make(chan *types.InboundEvent, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.Start(ctx, func(ctx context.Context, ev *types.InboundEvent) error {
			received <- ev
			return nil
		})
		close(done)
	}()

	bot.updates <- groupMessage(7, "alice", -100123, "team", "wfh today")

	var ev *types.InboundEvent
	select {
	case ev = <-received:
	case <-time.After(time.Second):
		t.Fatal("handler never received the event")
	}

	if ev.Type != "message" || ev.Text != "wfh today" {
		t.Errorf("unexpected event: %+v", ev)
	}
	if ev.ChannelID != "C-100123" {
		t.Errorf("channel id = %q", ev.ChannelID)
	}
	if ev.UserID != "7" {
		t.Errorf("user id = %q", ev.UserID)
	}

	u, ok := a.UserByID("7")
	if !ok || u.Name != "alice" {
		t.Errorf("roster user = %+v, %v", u, ok)
	}
	c, ok := a.ChannelByID("C-100123")
	if !ok || c.Name != "team" {
		t.Errorf("roster channel = %+v, %v", c, ok)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("adapter did not stop on cancel")
	}
	if !bot.stopped {
		t.Error("expected StopReceivingUpdates on shutdown")
	}
}

func TestPostMessageResolvesChatID(t *testing.T) {
	bot := newFakeBot()
	a := NewWithBot(bot)

	msg := groupMessage(7, "alice", -100123, "team", "wfh").Message
	a.observe(msg)

	if err := a.PostMessage("team", "Saved new WFH for alice!"); err != nil {
		t.Fatalf("post: %v", err)
	}
	if len(bot.sent) != 1 {
		t.Fatalf("expected 1 sent message, got %d", len(bot.sent))
	}
	if bot.sent[0].ChatID != -100123 {
		t.Errorf("chat id = %d", bot.sent[0].ChatID)
	}
	if bot.sent[0].Text != "Saved new WFH for alice!" {
		t.Errorf("text = %q", bot.sent[0].Text)
	}

	if err := a.PostMessage("nonexistent", "x"); err == nil {
		t.Error("expected error for unknown channel name")
	}
}

func TestSelfIdentity(t *testing.T) {
	a := NewWithBot(newFakeBot())
	self := a.Self()
	if self.ID != "999" || self.Name != "wfh" {
		t.Errorf("self = %+v", self)
	}
}
