package telegram

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRenderPanel(t *testing.T) {
	t.Run("AdminSeesPostAdButton", func(t *testing.T) {
		_, markup := RenderPanel(PanelState{IsAdmin: true})
		require.Len(t, markup.InlineKeyboard, 2)
		require.Equal(t, callbackPostAd, *markup.InlineKeyboard[1][0].CallbackData)
	})

	t.Run("NonAdminGetsNoPostAdButton", func(t *testing.T) {
		_, markup := RenderPanel(PanelState{IsAdmin: false})
		require.Len(t, markup.InlineKeyboard, 1)
		require.Equal(t, callbackApproveAll, *markup.InlineKeyboard[0][0].CallbackData)
		require.Equal(t, callbackRefresh, *markup.InlineKeyboard[0][1].CallbackData)
	})

	t.Run("GracePeriodShownInStatus", func(t *testing.T) {
		text, _ := RenderPanel(PanelState{GraceActive: true, Uptime: 90 * time.Second})
		require.Contains(t, text, "grace period")
		require.Contains(t, text, "1m30s")
	})

	t.Run("CountsShown", func(t *testing.T) {
		text, _ := RenderPanel(PanelState{Channels: 3, CrossServer: 1, TotalPending: 7})
		require.Contains(t, text, "3 (1 cross-server)")
		require.Contains(t, text, "7")
	})

	t.Run("SameStateRendersSameContent", func(t *testing.T) {
		st := PanelState{GraceActive: false, Uptime: time.Minute, Channels: 2, IsAdmin: true}
		text1, _ := RenderPanel(st)
		text2, _ := RenderPanel(st)
		require.Equal(t, text1, text2)
	})
}
