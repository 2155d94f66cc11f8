// Package classify holds the pure decision logic over inbound events: the
// predicate chain that gates the pipeline and the two-way command router.
package classify

import (
	"strings"

	"github.com/user/wfhbot/internal/types"
)

// publicChannelPrefix identifies the public-channel namespace. Direct and
// group message ids use other prefixes and are ignored.
const publicChannelPrefix = 'C'

// Classifier bundles the resolved bot identity and the configured keywords.
// All methods are pure; the zero value is unusable because BotID must be
// resolved against the roster at startup.
type Classifier struct {
	BotID   types.UserID
	BotName string
	Trigger string
}

// Actionable reports whether the event should enter the pipeline. The stages
// short-circuit in order; they are independent predicates, so the order only
// matters for efficiency.
func (c Classifier) Actionable(ev *types.InboundEvent) bool {
	return IsChatMessage(ev) &&
		IsChannelConversation(ev) &&
		!c.IsSelfAuthored(ev) &&
		c.MentionsTrigger(ev)
}

// IsChatMessage reports whether the event is a plain conversational message
// with non-empty text.
func IsChatMessage(ev *types.InboundEvent) bool {
	return ev.Type == "message" && ev.Text != ""
}

// IsChannelConversation reports whether the event was posted in a public
// channel.
func IsChannelConversation(ev *types.InboundEvent) bool {
	return ev.ChannelID != "" && ev.ChannelID[0] == publicChannelPrefix
}

// IsSelfAuthored reports whether the event came from the bot itself.
func (c Classifier) IsSelfAuthored(ev *types.InboundEvent) bool {
	return ev.UserID == c.BotID
}

// MentionsTrigger reports whether the text mentions the trigger keyword or
// the bot's name, case-insensitively.
func (c Classifier) MentionsTrigger(ev *types.InboundEvent) bool {
	text := strings.ToLower(ev.Text)
	return strings.Contains(text, strings.ToLower(c.Trigger)) ||
		strings.Contains(text, strings.ToLower(c.BotName))
}
