// internal/types/ids.go
package types

import (
	"github.com/google/uuid"
)

// UserID and ChannelID are platform-assigned identifiers carried on inbound
// events. They are opaque to the core except for the public-channel namespace
// check on ChannelID.
type UserID string
type ChannelID string

// EventID correlates the log lines produced while one inbound event moves
// through the pipeline. Never persisted.
type EventID string

func NewEventID() EventID {
	return EventID(uuid.New().String())
}
