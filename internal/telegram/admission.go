package telegram

import (
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"gatekeeper-tg-bot/internal/chatref"
	"gatekeeper-tg-bot/internal/history"
)

// HandleJoinRequest is the admission gate, invoked once per inbound
// join-request event.
//
// During the startup grace window nothing is approved: the process has
// no record of previously seen requests, so it only tracks. Outside the
// window it approves immediately and tracks only on failure, leaving
// the retry to the bulk engine or to the operator. Failures here are
// absorbed, never surfaced to an operator.
func (h *Handler) HandleJoinRequest(req *tgbotapi.ChatJoinRequest) {
	ch := chatref.FromID(req.Chat.ID)
	userID := req.From.ID

	if h.grace.Active() {
		h.tracker.Add(ch, userID)
		h.logger.Info("join request deferred during grace period",
			"chat_id", req.Chat.ID,
			"user_id", userID,
		)
		return
	}

	if err := approveJoinRequest(h.api, ch, userID); err != nil {
		h.tracker.Add(ch, userID)
		h.logger.Warn("auto-approval failed, request tracked",
			"chat_id", req.Chat.ID,
			"user_id", userID,
			"error", err,
		)
		return
	}

	h.recordApproval(ch, userID, history.MethodAuto, "")
	h.logger.Info("join request auto-approved",
		"chat_id", req.Chat.ID,
		"user_id", userID,
	)
}

func (h *Handler) recordApproval(ch chatref.Ref, userID int64, method, runID string) {
	err := h.hist.Record(history.Entry{
		Chat:       ch.String(),
		UserID:     userID,
		Method:     method,
		RunID:      runID,
		ApprovedAt: time.Now(),
	})
	if err != nil {
		h.logger.Warn("failed to record approval", "error", err)
	}
}
