package classify

import (
	"strings"

	"github.com/user/wfhbot/internal/types"
)

// Command is the routed outcome for an actionable event.
type Command string

const (
	CommandIncrement   Command = "increment"
	CommandLeaderboard Command = "leaderboard"
)

// Route decides between the two outcomes for an actionable event. No further
// sub-commands are recognized.
func Route(ev *types.InboundEvent) Command {
	if IsLeaderboardQuery(ev.Text) {
		return CommandLeaderboard
	}
	return CommandIncrement
}

// IsLeaderboardQuery reports whether the text asks for the leaderboard.
func IsLeaderboardQuery(text string) bool {
	return strings.Contains(strings.ToLower(text), "leaderboard")
}
