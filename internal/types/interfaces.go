// internal/types/interfaces.go
package types

import (
	"context"
	"errors"
)

// Sentinel errors shared by CounterStore implementations. Callers test with
// errors.Is; implementations wrap them with query context.
var (
	// ErrNotFound is returned by point lookups when no row exists.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateKey is returned by inserts that lost a check-then-act race.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrUnavailable wraps connection-level store failures.
	ErrUnavailable = errors.New("store unavailable")
)

// CounterStore is the durable mapping from user identity to visit count plus
// the lastrun singleton. It has no knowledge of chat semantics.
type CounterStore interface {
	// RunMetadata returns the lastrun timestamp, or ErrNotFound before the
	// first ever startup.
	RunMetadata(ctx context.Context) (string, error)
	// InitRunMetadata inserts the lastrun singleton. ErrDuplicateKey if a row
	// already exists; callers check absence first.
	InitRunMetadata(ctx context.Context, ts string) error
	// TouchRunMetadata unconditionally overwrites the lastrun timestamp.
	TouchRunMetadata(ctx context.Context, ts string) error

	// UserCount returns the visit count for a user, or ErrNotFound.
	UserCount(ctx context.Context, user string) (int, error)
	// CreateUserCount inserts a row with count 1. ErrDuplicateKey if the user
	// already has a row.
	CreateUserCount(ctx context.Context, user string) error
	// IncrementUserCount adds 1 to an existing row. ErrNotFound if absent.
	IncrementUserCount(ctx context.Context, user string) error
	// IncrementOrCreate atomically inserts-at-1 or increments, returning the
	// resulting count. This is the race-free path used for live events.
	IncrementOrCreate(ctx context.Context, user string) (int, error)

	// TopUsers returns up to limit rows ordered by count descending, ties
	// broken earliest-created-first.
	TopUsers(ctx context.Context, limit int) ([]UserCount, error)

	Close() error
}

// Session is the capability surface a chat-platform adapter provides to the
// core: the live roster, the bot's own identity, and the outbound posting
// primitive. The core never reaches into the adapter beyond this.
type Session interface {
	// PostMessage posts text to the named channel as the bot identity.
	PostMessage(channel, text string) error
	// Users returns the roster in platform order.
	Users() []UserRef
	// Channels returns the channel roster in platform order.
	Channels() []ChannelRef
	// Self returns the bot's resolved identity.
	Self() UserRef
	UserByID(id UserID) (UserRef, bool)
	ChannelByID(id ChannelID) (ChannelRef, bool)
}
