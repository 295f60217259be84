package telegram

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"gatekeeper-tg-bot/internal/apierrors"
	"gatekeeper-tg-bot/internal/chatref"
	"gatekeeper-tg-bot/internal/history"
	"gatekeeper-tg-bot/internal/registry"
	"gatekeeper-tg-bot/internal/scheduler"
	"gatekeeper-tg-bot/internal/session"
	"gatekeeper-tg-bot/internal/tracker"
)

// Handler processes Telegram updates
type Handler struct {
	api           API
	self          tgbotapi.User
	gate          *AdminGate
	registry      *registry.Registry
	tracker       *tracker.Tracker
	sessions      *session.Store
	sched         *scheduler.Scheduler
	grace         *scheduler.Grace
	hist          history.Store
	adDeleteDelay time.Duration
	logger        *slog.Logger
}

// NewHandler creates a new update handler
func NewHandler(
	api API,
	self tgbotapi.User,
	gate *AdminGate,
	reg *registry.Registry,
	trk *tracker.Tracker,
	sessions *session.Store,
	sched *scheduler.Scheduler,
	grace *scheduler.Grace,
	hist history.Store,
	adDeleteDelay time.Duration,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		api:           api,
		self:          self,
		gate:          gate,
		registry:      reg,
		tracker:       trk,
		sessions:      sessions,
		sched:         sched,
		grace:         grace,
		hist:          hist,
		adDeleteDelay: adDeleteDelay,
		logger:        logger,
	}
}

// HandleUpdate processes a single update
func (h *Handler) HandleUpdate(update tgbotapi.Update) {
	switch {
	case update.ChatJoinRequest != nil:
		h.HandleJoinRequest(update.ChatJoinRequest)

	case update.CallbackQuery != nil:
		h.handleCallback(update.CallbackQuery)

	case update.Message != nil:
		msg := update.Message
		if msg.From == nil {
			return
		}
		if msg.IsCommand() {
			h.handleCommand(msg)
			return
		}
		if msg.Text != "" {
			h.handleText(msg)
		}
	}
}

func (h *Handler) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		h.sendPanel(msg.Chat.ID, msg.From)

	case "help":
		h.sendText(msg.Chat.ID,
			"Commands:\n"+
				"/start - show the control panel\n"+
				"/status <channel> - channel status (or overall without argument)\n"+
				"/debug <channel> - access diagnostics for a channel\n"+
				"/approve <channel> <user> - approve one join request\n"+
				"/testapprove <channel> <user> - same as /approve, labelled as a test\n"+
				"/cancel - abort the current operation\n\n"+
				"Channels accept a numeric id (e.g. -100123456789) or a @handle.")

	case "status":
		h.handleStatus(msg)

	case "debug":
		h.handleDebug(msg)

	case "approve":
		h.handleManualApprove(msg, "Approved")

	case "testapprove":
		h.handleManualApprove(msg, "Test-approved")

	case "cancel":
		h.sessions.Clear(msg.From.ID)
		h.sendText(msg.Chat.ID, "Cancelled.")

	default:
		h.sendText(msg.Chat.ID, "Unknown command. Use /help for available commands.")
	}
}

func (h *Handler) handleStatus(msg *tgbotapi.Message) {
	arg := strings.TrimSpace(msg.CommandArguments())
	if arg == "" {
		total, err := h.hist.TotalApproved()
		if err != nil {
			h.logger.Warn("failed to read approval history", "error", err)
		}
		mode := "active"
		if h.grace.Active() {
			mode = "grace period"
		}
		h.sendText(msg.Chat.ID, fmt.Sprintf(
			"Mode: %s\nUptime: %s\nConfigured channels: %d (%d cross-server)\n"+
				"Tracked pending requests: %d\nRecorded approvals: %d",
			mode,
			h.grace.Uptime().Truncate(time.Second),
			h.registry.Len(),
			h.registry.CrossServerCount(),
			h.tracker.TotalPending(),
			total,
		))
		return
	}

	ch := chatref.Parse(arg)
	var b strings.Builder
	fmt.Fprintf(&b, "Channel %s\n", ch)

	if cfg, ok := h.registry.Get(ch); ok {
		fmt.Fprintf(&b, "Title: %s\nConfigured: %s\nBulk query API available: %t\n",
			cfg.Title, cfg.ConfiguredAt.Format(time.RFC3339), cfg.CanFetchOldRequests)
		if cfg.CrossServer {
			b.WriteString("Marked cross-server (best-effort guess from a failed bulk query, not verified).\n")
		}
	} else {
		b.WriteString("Not configured yet. Use Approve All Pending to configure it.\n")
	}

	fmt.Fprintf(&b, "Tracked pending requests: %d\n", h.tracker.Count(ch))

	if n, err := h.hist.CountByChat(ch.String()); err == nil {
		fmt.Fprintf(&b, "Recorded approvals: %d", n)
	}

	h.sendText(msg.Chat.ID, b.String())
}

func (h *Handler) handleDebug(msg *tgbotapi.Message) {
	arg := strings.TrimSpace(msg.CommandArguments())
	if arg == "" {
		h.sendText(msg.Chat.ID, "Usage: /debug <channel>")
		return
	}
	ch := chatref.Parse(arg)

	var b strings.Builder
	fmt.Fprintf(&b, "Diagnostics for %s\n", ch)

	chat, err := h.api.GetChat(tgbotapi.ChatInfoConfig{ChatConfig: chatConfig(ch)})
	if err != nil {
		fmt.Fprintf(&b, "getChat failed: %s\n", apierrors.Describe(err))
		h.sendText(msg.Chat.ID, b.String())
		return
	}
	fmt.Fprintf(&b, "Chat: %q (type %s, id %d)\n", chat.Title, chat.Type, chat.ID)

	member, err := h.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID:             chat.ID,
			UserID:             h.self.ID,
			SuperGroupUsername: chatConfig(ch).SuperGroupUsername,
		},
	})
	if err != nil {
		fmt.Fprintf(&b, "getChatMember failed: %s\n", apierrors.Describe(err))
	} else {
		fmt.Fprintf(&b, "Bot status: %s, can invite users: %t\n", member.Status, member.CanInviteUsers)
	}

	fmt.Fprintf(&b, "Tracked pending requests: %d", h.tracker.Count(ch))
	h.sendText(msg.Chat.ID, b.String())
}

// handleManualApprove serves /approve and /testapprove. The manual path
// approves directly and does not consult or update the tracker.
func (h *Handler) handleManualApprove(msg *tgbotapi.Message, label string) {
	fields := strings.Fields(msg.CommandArguments())
	if len(fields) != 2 {
		h.sendText(msg.Chat.ID, fmt.Sprintf("Usage: /%s <channel> <user>", msg.Command()))
		return
	}

	ch := chatref.Parse(fields[0])
	userID, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		h.sendText(msg.Chat.ID, fmt.Sprintf("Invalid user id %q.", fields[1]))
		return
	}

	if err := approveJoinRequest(h.api, ch, userID); err != nil {
		h.sendText(msg.Chat.ID, fmt.Sprintf(
			"Failed to approve user %d in %s: %s", userID, ch, apierrors.Describe(err)))
		return
	}

	h.recordApproval(ch, userID, history.MethodManual, "")
	h.sendText(msg.Chat.ID, fmt.Sprintf("%s user %d in %s.", label, userID, ch))
}

func (h *Handler) handleCallback(cb *tgbotapi.CallbackQuery) {
	if cb.From == nil || cb.Message == nil {
		h.answerCallback(cb.ID, "")
		return
	}

	switch cb.Data {
	case callbackApproveAll:
		h.sessions.Begin(cb.From.ID, session.StateAwaitingChannelID)
		h.answerCallback(cb.ID, "")
		h.sendText(cb.Message.Chat.ID,
			"Send the channel id or @handle to approve all pending requests for, or /cancel.")

	case callbackRefresh:
		h.refreshPanel(cb.Message.Chat.ID, cb.Message.MessageID, cb.From)
		h.answerCallback(cb.ID, "Refreshed")

	case callbackPostAd:
		// The button is hidden from non-admins, but a stale panel can
		// still deliver the press; re-check identity before acting.
		if !h.gate.IsAdmin(cb.From) {
			h.answerCallback(cb.ID, "Only the administrator can post ads.")
			return
		}
		h.answerCallback(cb.ID, "")
		if cb.Message.Chat.IsPrivate() {
			h.sessions.Begin(cb.From.ID, session.StateAwaitingAdChannel)
			h.sendText(cb.Message.Chat.ID,
				"Send the channel id or @handle to post the ad to, or /cancel.")
			return
		}
		h.sessions.BeginAdBody(cb.From.ID, chatref.FromID(cb.Message.Chat.ID))
		h.sendText(cb.Message.Chat.ID, "Send the ad text, or /cancel.")

	default:
		h.answerCallback(cb.ID, "")
	}
}

// handleText routes free-form text to the operator's pending operation.
// Text from operators with no open session is ignored.
func (h *Handler) handleText(msg *tgbotapi.Message) {
	sess, ok := h.sessions.Get(msg.From.ID)
	if !ok {
		return
	}

	text := strings.TrimSpace(msg.Text)

	switch sess.State {
	case session.StateAwaitingChannelID:
		h.finishApproveAll(msg, text)

	case session.StateAwaitingAdChannel:
		h.bindAdChannel(msg, text)

	case session.StateAwaitingAdBody:
		h.sessions.Clear(msg.From.ID)
		h.postAd(msg.Chat.ID, sess.Target, msg.Text)
	}
}

// finishApproveAll completes the approve-all conversation: resolve the
// channel, run permission diagnostics, then the bulk engine, and record
// the channel in the registry. An unresolvable identifier keeps the
// session open for a retry.
func (h *Handler) finishApproveAll(msg *tgbotapi.Message, text string) {
	ch := chatref.Parse(text)

	chat, err := h.api.GetChat(tgbotapi.ChatInfoConfig{ChatConfig: chatConfig(ch)})
	if err != nil {
		h.sendText(msg.Chat.ID, fmt.Sprintf(
			"Cannot resolve %s: %s\nSend another channel or /cancel.", ch, apierrors.Describe(err)))
		return
	}

	h.sessions.Clear(msg.From.ID)

	if err := h.checkApprovePermissions(ch, chat.ID); err != nil {
		h.sendText(msg.Chat.ID, fmt.Sprintf(
			"Permission check failed for %q: %s", chat.Title, apierrors.Describe(err)))
		return
	}

	res := h.ApproveAllPending(ch)

	h.registry.Configure(ch, registry.Config{
		Title:               chat.Title,
		ConfiguredAt:        time.Now(),
		CanFetchOldRequests: res.APIWorked,
		CrossServer:         !res.APIWorked,
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Done with %q: approved %d request(s).", chat.Title, res.Approved)
	if len(res.Errors) > 0 {
		fmt.Fprintf(&b, "\n%d approval(s) failed:", len(res.Errors))
		for i, e := range res.Errors {
			if i == 5 {
				fmt.Fprintf(&b, "\n…and %d more.", len(res.Errors)-i)
				break
			}
			fmt.Fprintf(&b, "\n- user %d: %s", e.UserID, e.Description)
		}
	}
	if !res.APIWorked {
		b.WriteString("\nThe bulk query API is not reachable for this channel " +
			"(likely cross-server). Only requests seen live by this bot were approved; " +
			"older ones must be handled from the channel's join request list.")
	}
	h.sendText(msg.Chat.ID, b.String())
}

// checkApprovePermissions verifies the bot can act on join requests in
// the channel before a bulk run.
func (h *Handler) checkApprovePermissions(ch chatref.Ref, chatID int64) error {
	member, err := h.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID:             chatID,
			UserID:             h.self.ID,
			SuperGroupUsername: chatConfig(ch).SuperGroupUsername,
		},
	})
	if err != nil {
		return err
	}
	if member.Status != "administrator" && member.Status != "creator" {
		return fmt.Errorf("bot is %q in the channel, needs to be an administrator", member.Status)
	}
	if member.Status == "administrator" && !member.CanInviteUsers {
		return fmt.Errorf("bot lacks the invite-users right needed to approve join requests")
	}
	return nil
}

func (h *Handler) bindAdChannel(msg *tgbotapi.Message, text string) {
	ch := chatref.Parse(text)

	if _, err := h.api.GetChat(tgbotapi.ChatInfoConfig{ChatConfig: chatConfig(ch)}); err != nil {
		h.sendText(msg.Chat.ID, fmt.Sprintf(
			"Cannot resolve %s: %s\nSend another channel or /cancel.", ch, apierrors.Describe(err)))
		return
	}

	h.sessions.BeginAdBody(msg.From.ID, ch)
	h.sendText(msg.Chat.ID, fmt.Sprintf("Posting to %s. Send the ad text, or /cancel.", ch))
}

// postAd posts the ad body to the target channel and arms its one-shot
// deletion timer. Deletion failures are logged and never retried.
func (h *Handler) postAd(operatorChatID int64, target chatref.Ref, body string) {
	var cfg tgbotapi.MessageConfig
	if target.IsNumeric() {
		cfg = tgbotapi.NewMessage(target.ID(), body)
	} else {
		cfg = tgbotapi.NewMessageToChannel(target.Handle(), body)
	}

	sent, err := h.api.Send(cfg)
	if err != nil {
		h.sendText(operatorChatID, fmt.Sprintf(
			"Failed to post the ad to %s: %s", target, apierrors.Describe(err)))
		return
	}

	deleteIn := h.adDeleteDelay
	chatID := sent.Chat.ID
	messageID := sent.MessageID
	h.sched.Schedule(messageID, deleteIn, func() {
		if _, err := h.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
			h.logger.Warn("failed to delete expired ad",
				"chat_id", chatID,
				"message_id", messageID,
				"error", err,
			)
			return
		}
		h.logger.Info("expired ad deleted", "chat_id", chatID, "message_id", messageID)
	})

	h.sendText(operatorChatID, fmt.Sprintf(
		"Ad posted to %s. It will be deleted in %s.", target, deleteIn))
}

func (h *Handler) panelState(user *tgbotapi.User) PanelState {
	return PanelState{
		GraceActive:  h.grace.Active(),
		Uptime:       h.grace.Uptime(),
		Channels:     h.registry.Len(),
		CrossServer:  h.registry.CrossServerCount(),
		TotalPending: h.tracker.TotalPending(),
		IsAdmin:      h.gate.IsAdmin(user),
	}
}

func (h *Handler) sendPanel(chatID int64, user *tgbotapi.User) {
	text, markup := RenderPanel(h.panelState(user))
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	if _, err := h.api.Send(msg); err != nil {
		h.logger.Error("failed to send panel", "error", err, "chat_id", chatID)
	}
}

// refreshPanel re-renders the panel in place. An edit that changes
// nothing comes back as a not-modified error and is treated as success.
func (h *Handler) refreshPanel(chatID int64, messageID int, user *tgbotapi.User) {
	text, markup := RenderPanel(h.panelState(user))
	edit := tgbotapi.EditMessageTextConfig{
		BaseEdit: tgbotapi.BaseEdit{
			ChatID:      chatID,
			MessageID:   messageID,
			ReplyMarkup: &markup,
		},
		Text: text,
	}
	if _, err := h.api.Request(edit); err != nil && !apierrors.IsNotModified(err) {
		h.logger.Error("failed to refresh panel", "error", err, "chat_id", chatID)
	}
}

// answerCallback acknowledges a button press. Stale presses answer with
// a query-too-old error, which is ignorable.
func (h *Handler) answerCallback(id, text string) {
	if _, err := h.api.Request(tgbotapi.NewCallback(id, text)); err != nil && !apierrors.IsQueryTooOld(err) {
		h.logger.Warn("failed to answer callback", "error", err)
	}
}

func (h *Handler) sendText(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.api.Send(msg); err != nil {
		h.logger.Error("failed to send message", "error", err, "chat_id", chatID)
	}
}
