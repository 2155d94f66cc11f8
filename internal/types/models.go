// internal/types/models.go
package types

// InboundEvent is one raw event as delivered by a session adapter. It is
// consumed synchronously by the pipeline and never persisted.
type InboundEvent struct {
	Type      string    `json:"type"`
	Text      string    `json:"text,omitempty"`
	ChannelID ChannelID `json:"channel_id,omitempty"`
	UserID    UserID    `json:"user_id"`
}

// UserCount is one row of the counter table: a user identity and how many
// times they have reported working from home.
type UserCount struct {
	User  string `json:"user"`
	Times int    `json:"times"`
}

// UserRef is a read-only roster projection looked up by id during reply
// composition.
type UserRef struct {
	ID   UserID `json:"id"`
	Name string `json:"name"`
}

// ChannelRef is a read-only roster projection for a channel.
type ChannelRef struct {
	ID   ChannelID `json:"id"`
	Name string    `json:"name"`
}
