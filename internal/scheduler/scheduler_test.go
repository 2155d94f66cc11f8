package scheduler

import (
	"context"
	"strings"
	"testing"

	"github.com/user/wfhbot/internal/types"
)

// stubStore serves a fixed leaderboard.
type stubStore struct {
	top []types.UserCount
	err error
}

func (s *stubStore) RunMetadata(ctx context.Context) (string, error)       { return "", types.ErrNotFound }
func (s *stubStore) InitRunMetadata(ctx context.Context, ts string) error  { return nil }
func (s *stubStore) TouchRunMetadata(ctx context.Context, ts string) error { return nil }
func (s *stubStore) UserCount(ctx context.Context, user string) (int, error) {
	return 0, types.ErrNotFound
}
func (s *stubStore) CreateUserCount(ctx context.Context, user string) error    { return nil }
func (s *stubStore) IncrementUserCount(ctx context.Context, user string) error { return nil }
func (s *stubStore) IncrementOrCreate(ctx context.Context, user string) (int, error) {
	return 0, nil
}
func (s *stubStore) TopUsers(ctx context.Context, limit int) ([]types.UserCount, error) {
	return s.top, s.err
}
func (s *stubStore) Close() error { return nil }

func TestStartRejectsBadSchedule(t *testing.T) {
	s := New(&stubStore{}, "not a cron spec", "general", 10, func(channel, text string) error {
		return nil
	})
	if err := s.Start(); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestPostDigest(t *testing.T) {
	store := &stubStore{top: []types.UserCount{{User: "alice", Times: 3}}}

	var gotChannel, gotText string
	s := New(store, "@daily", "general", 10, func(channel, text string) error {
		gotChannel, gotText = channel, text
		return nil
	})

	s.postDigest()

	if gotChannel != "general" {
		t.Errorf("channel = %q", gotChannel)
	}
	if !strings.Contains(gotText, "alice worked 3 times!") {
		t.Errorf("text = %q", gotText)
	}
}

func TestPostDigestSkipsEmptyBoard(t *testing.T) {
	var posted bool
	s := New(&stubStore{}, "@daily", "general", 10, func(channel, text string) error {
		posted = true
		return nil
	})

	s.postDigest()

	if posted {
		t.Error("expected no digest for empty leaderboard")
	}
}

func TestPostDigestStoreError(t *testing.T) {
	var posted bool
	s := New(&stubStore{err: types.ErrUnavailable}, "@daily", "general", 10, func(channel, text string) error {
		posted = true
		return nil
	})

	s.postDigest()

	if posted {
		t.Error("expected no digest after store failure")
	}
}
