package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// AdminGate decides whether a user is the configured administrator.
// The check is by username, not login state: the single identity from
// configuration gates the ad-posting capability and nothing else.
type AdminGate struct {
	username string
}

// NewAdminGate creates a gate for the configured admin username. A
// leading "@" in the configured value is ignored.
func NewAdminGate(username string) *AdminGate {
	return &AdminGate{
		username: strings.TrimPrefix(username, "@"),
	}
}

// IsAdmin reports whether the user matches the configured administrator.
func (g *AdminGate) IsAdmin(user *tgbotapi.User) bool {
	if user == nil || g.username == "" {
		return false
	}
	return strings.EqualFold(user.UserName, g.username)
}
