package telegram

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"gatekeeper-tg-bot/internal/history"
	"gatekeeper-tg-bot/internal/registry"
	"gatekeeper-tg-bot/internal/scheduler"
	"gatekeeper-tg-bot/internal/session"
	"gatekeeper-tg-bot/internal/tracker"
)

// resolvedChannelID is the chat id the fake reports for messages sent
// to a channel by handle.
const resolvedChannelID int64 = -100999

type approvedCall struct {
	chat   string
	userID int64
}

type enumResponse struct {
	result string
	err    error
}

// fakeAPI implements API for tests.
type fakeAPI struct {
	mu sync.Mutex

	sent      []tgbotapi.MessageConfig
	requested []tgbotapi.Chattable
	deleted   []tgbotapi.DeleteMessageConfig

	approveErrs map[int64]error
	approvals   []approvedCall

	enumResponses []enumResponse
	enumCalls     []tgbotapi.Params

	chat    tgbotapi.Chat
	chatErr error

	member    tgbotapi.ChatMember
	memberErr error

	sendErr error
	editErr error

	nextMsgID int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		approveErrs: make(map[int64]error),
		member:      tgbotapi.ChatMember{Status: "administrator", CanInviteUsers: true},
	}
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	mc, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		return tgbotapi.Message{}, errors.New("fake: unsupported chattable")
	}
	if f.sendErr != nil {
		return tgbotapi.Message{}, f.sendErr
	}
	f.sent = append(f.sent, mc)

	chatID := mc.ChatID
	if chatID == 0 {
		chatID = resolvedChannelID
	}
	f.nextMsgID++
	return tgbotapi.Message{
		MessageID: f.nextMsgID,
		Chat:      &tgbotapi.Chat{ID: chatID},
	}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requested = append(f.requested, c)
	switch v := c.(type) {
	case tgbotapi.EditMessageTextConfig:
		if f.editErr != nil {
			return nil, f.editErr
		}
	case tgbotapi.DeleteMessageConfig:
		f.deleted = append(f.deleted, v)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch endpoint {
	case "approveChatJoinRequest":
		userID, _ := strconv.ParseInt(params["user_id"], 10, 64)
		f.approvals = append(f.approvals, approvedCall{chat: params["chat_id"], userID: userID})
		if err := f.approveErrs[userID]; err != nil {
			return nil, err
		}
		return &tgbotapi.APIResponse{Ok: true}, nil

	case "getChatJoinRequests":
		f.enumCalls = append(f.enumCalls, params)
		if len(f.enumResponses) == 0 {
			return nil, &tgbotapi.Error{Code: 404, Message: "Not Found: method not found"}
		}
		resp := f.enumResponses[0]
		f.enumResponses = f.enumResponses[1:]
		if resp.err != nil {
			return nil, resp.err
		}
		return &tgbotapi.APIResponse{Ok: true, Result: json.RawMessage(resp.result)}, nil
	}
	return nil, errors.New("fake: unknown endpoint " + endpoint)
}

func (f *fakeAPI) GetChat(tgbotapi.ChatInfoConfig) (tgbotapi.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.chat, f.chatErr
}

func (f *fakeAPI) GetChatMember(tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.member, f.memberErr
}

func (f *fakeAPI) approveCount(userID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, a := range f.approvals {
		if a.userID == userID {
			n++
		}
	}
	return n
}

func (f *fakeAPI) sentTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	texts := make([]string, 0, len(f.sent))
	for _, m := range f.sent {
		texts = append(texts, m.Text)
	}
	return texts
}

func (f *fakeAPI) sentTextContaining(sub string) bool {
	for _, text := range f.sentTexts() {
		if strings.Contains(text, sub) {
			return true
		}
	}
	return false
}

func (f *fakeAPI) deletedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.deleted)
}

type testEnv struct {
	api      *fakeAPI
	handler  *Handler
	trk      *tracker.Tracker
	reg      *registry.Registry
	sessions *session.Store
	sched    *scheduler.Scheduler
}

// adminUser matches the gate configured by newTestEnv.
const adminUser = "boss"

func newTestEnv(graceDur time.Duration) *testEnv {
	api := newFakeAPI()
	trk := tracker.New()
	reg := registry.New()
	sessions := session.NewStore()
	sched := scheduler.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := NewHandler(
		api,
		tgbotapi.User{ID: 99, UserName: "gatekeeperbot"},
		NewAdminGate(adminUser),
		reg,
		trk,
		sessions,
		sched,
		scheduler.StartGrace(graceDur),
		history.Disabled(),
		30*time.Millisecond,
		logger,
	)

	return &testEnv{
		api:      api,
		handler:  handler,
		trk:      trk,
		reg:      reg,
		sessions: sessions,
		sched:    sched,
	}
}

func commandMsg(chatID, userID int64, username, text string) *tgbotapi.Message {
	cmd := strings.Fields(text)[0]
	return &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID, UserName: username},
		Chat: &tgbotapi.Chat{ID: chatID, Type: "private"},
		Text: text,
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: len(cmd)},
		},
	}
}

func textMsg(chatID, userID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID, UserName: "op"},
		Chat: &tgbotapi.Chat{ID: chatID, Type: "private"},
		Text: text,
	}
}

func callback(data string, from tgbotapi.User, chat *tgbotapi.Chat) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		Data:    data,
		From:    &from,
		Message: &tgbotapi.Message{MessageID: 7, Chat: chat},
	}
}
