package telegram

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data for the control panel buttons.
const (
	callbackApproveAll = "approve_all"
	callbackRefresh    = "refresh"
	callbackPostAd     = "post_ad"
)

// PanelState is everything the control panel renders from.
type PanelState struct {
	GraceActive  bool
	Uptime       time.Duration
	Channels     int
	CrossServer  int
	TotalPending int
	IsAdmin      bool
}

// RenderPanel builds the control panel text and button layout. It is a
// pure function so the same rendering serves both the initial display
// and in-place refreshes.
func RenderPanel(st PanelState) (string, tgbotapi.InlineKeyboardMarkup) {
	mode := "active"
	if st.GraceActive {
		mode = "grace period (auto-approval paused)"
	}

	text := fmt.Sprintf(
		"Join Request Gatekeeper\n\n"+
			"Mode: %s\n"+
			"Uptime: %s\n"+
			"Configured channels: %d (%d cross-server)\n"+
			"Tracked pending requests: %d",
		mode,
		st.Uptime.Truncate(time.Second),
		st.Channels,
		st.CrossServer,
		st.TotalPending,
	)

	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Approve All Pending", callbackApproveAll),
			tgbotapi.NewInlineKeyboardButtonData("🔄 Refresh", callbackRefresh),
		),
	}
	if st.IsAdmin {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📣 Post AD", callbackPostAd),
		))
	}

	return text, tgbotapi.NewInlineKeyboardMarkup(rows...)
}
