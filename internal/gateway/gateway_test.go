package gateway

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/user/wfhbot/internal/classify"
	"github.com/user/wfhbot/internal/counter"
	"github.com/user/wfhbot/internal/types"
)

// memStore is a minimal in-memory CounterStore tracking store access.
type memStore struct {
	mu      sync.Mutex
	lastrun string
	counts  map[string]int
	order   []string
	touched int
}

func newMemStore() *memStore {
	return &memStore{counts: make(map[string]int)}
}

func (m *memStore) RunMetadata(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastrun == "" {
		return "", types.ErrNotFound
	}
	return m.lastrun, nil
}

func (m *memStore) InitRunMetadata(ctx context.Context, ts string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastrun != "" {
		return types.ErrDuplicateKey
	}
	m.lastrun = ts
	return nil
}

func (m *memStore) TouchRunMetadata(ctx context.Context, ts string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastrun = ts
	return nil
}

func (m *memStore) UserCount(ctx context.Context, user string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched++
	n, ok := m.counts[user]
	if !ok {
		return 0, types.ErrNotFound
	}
	return n, nil
}

func (m *memStore) CreateUserCount(ctx context.Context, user string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched++
	if _, ok := m.counts[user]; ok {
		return types.ErrDuplicateKey
	}
	m.counts[user] = 1
	m.order = append(m.order, user)
	return nil
}

func (m *memStore) IncrementUserCount(ctx context.Context, user string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched++
	if _, ok := m.counts[user]; !ok {
		return types.ErrNotFound
	}
	m.counts[user]++
	return nil
}

func (m *memStore) IncrementOrCreate(ctx context.Context, user string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched++
	if _, ok := m.counts[user]; !ok {
		m.order = append(m.order, user)
	}
	m.counts[user]++
	return m.counts[user], nil
}

func (m *memStore) TopUsers(ctx context.Context, limit int) ([]types.UserCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched++
	var out []types.UserCount
	for _, user := range m.order {
		out = append(out, types.UserCount{User: user, Times: m.counts[user]})
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) Close() error { return nil }

func (m *memStore) accesses() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.touched
}

func (m *memStore) count(user string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[user]
}

// memSession records posts thread-safely.
type memSession struct {
	mu    sync.Mutex
	posts []string
}

func (m *memSession) PostMessage(channel, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts = append(m.posts, channel+": "+text)
	return nil
}

func (m *memSession) Users() []types.UserRef {
	return []types.UserRef{{ID: "U1", Name: "alice"}, {ID: "UBOT", Name: "wfh"}}
}

func (m *memSession) Channels() []types.ChannelRef {
	return []types.ChannelRef{{ID: "C1", Name: "general"}}
}

func (m *memSession) Self() types.UserRef { return types.UserRef{ID: "UBOT", Name: "wfh"} }

func (m *memSession) UserByID(id types.UserID) (types.UserRef, bool) {
	for _, u := range m.Users() {
		if u.ID == id {
			return u, true
		}
	}
	return types.UserRef{}, false
}

func (m *memSession) ChannelByID(id types.ChannelID) (types.ChannelRef, bool) {
	for _, c := range m.Channels() {
		if c.ID == id {
			return c, true
		}
	}
	return types.ChannelRef{}, false
}

func (m *memSession) allPosts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.posts...)
}

func newTestGateway(t *testing.T) (*Gateway, *memStore, *memSession) {
	t.Helper()
	store := newMemStore()
	session := &memSession{}
	svc := counter.New(store, session, 10, "")
	cl := classify.Classifier{BotID: "UBOT", BotName: "wfh", Trigger: "wfh"}
	gw := New(cl, svc, 2)
	gw.Start(context.Background())
	t.Cleanup(gw.Stop)
	return gw, store, session
}

func TestHandleInboundEndToEnd(t *testing.T) {
	gw, store, session := newTestGateway(t)

	ev := &types.InboundEvent{Type: "message", Text: "hey wfh please", ChannelID: "C1", UserID: "U1"}
	if err := gw.HandleInbound(context.Background(), ev); err != nil {
		t.Fatalf("handle inbound: %v", err)
	}

	waitFor(t, func() bool { return len(session.allPosts()) == 1 })

	if store.count("alice") != 1 {
		t.Errorf("expected count 1 for alice, got %d", store.count("alice"))
	}
	posts := session.allPosts()
	if !strings.Contains(posts[0], "Saved new WFH for alice") {
		t.Errorf("unexpected reply: %q", posts[0])
	}
}

func TestHandleInboundRejectsWithoutStoreAccess(t *testing.T) {
	gw, store, session := newTestGateway(t)

	rejected := []*types.InboundEvent{
		{Type: "presence_change", Text: "wfh", ChannelID: "C1", UserID: "U1"},
		{Type: "message", Text: "", ChannelID: "C1", UserID: "U1"},
		{Type: "message", Text: "wfh", ChannelID: "D1", UserID: "U1"},
		{Type: "message", Text: "wfh", ChannelID: "C1", UserID: "UBOT"},
		{Type: "message", Text: "nothing relevant", ChannelID: "C1", UserID: "U1"},
	}
	for _, ev := range rejected {
		if err := gw.HandleInbound(context.Background(), ev); err != nil {
			t.Fatalf("handle inbound %+v: %v", ev, err)
		}
	}

	// Give any wrongly-accepted job a moment to reach the store.
	time.Sleep(200 * time.Millisecond)

	if n := store.accesses(); n != 0 {
		t.Errorf("expected zero store accesses for rejected events, got %d", n)
	}
	if posts := session.allPosts(); len(posts) != 0 {
		t.Errorf("expected no replies, got %v", posts)
	}
}

func TestHandleInboundRoutesLeaderboard(t *testing.T) {
	gw, _, session := newTestGateway(t)

	ev := &types.InboundEvent{Type: "message", Text: "wfh LEADERBOARD", ChannelID: "C1", UserID: "U1"}
	if err := gw.HandleInbound(context.Background(), ev); err != nil {
		t.Fatalf("handle inbound: %v", err)
	}

	waitFor(t, func() bool { return len(session.allPosts()) == 1 })

	posts := session.allPosts()
	if !strings.Contains(posts[0], "LeaderBoard:") {
		t.Errorf("expected leaderboard reply, got %q", posts[0])
	}
}

func TestHandleInboundSequentialIncrements(t *testing.T) {
	gw, store, _ := newTestGateway(t)

	for i := 0; i < 7; i++ {
		ev := &types.InboundEvent{Type: "message", Text: "wfh again", ChannelID: "C1", UserID: "U1"}
		if err := gw.HandleInbound(context.Background(), ev); err != nil {
			t.Fatalf("handle inbound %d: %v", i, err)
		}
	}

	waitFor(t, func() bool { return store.count("alice") == 7 })
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("condition not reached before deadline")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
