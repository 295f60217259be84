package telegram

import (
	"encoding/json"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"gatekeeper-tg-bot/internal/chatref"
)

// API is the slice of the Bot API client the handlers need. It is
// satisfied by *tgbotapi.BotAPI and faked in tests.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
	GetChat(config tgbotapi.ChatInfoConfig) (tgbotapi.Chat, error)
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
}

// enumerationLimit caps how many pending requests one bulk query asks for.
const enumerationLimit = 50

// joinRequestUser is the part of a pending join request the bulk engine
// cares about.
type joinRequestUser struct {
	From struct {
		ID        int64  `json:"id"`
		FirstName string `json:"first_name"`
		UserName  string `json:"username"`
	} `json:"from"`
}

func chatConfig(ch chatref.Ref) tgbotapi.ChatConfig {
	if ch.IsNumeric() {
		return tgbotapi.ChatConfig{ChatID: ch.ID()}
	}
	return tgbotapi.ChatConfig{SuperGroupUsername: ch.Handle()}
}

func addChatParam(params tgbotapi.Params, ch chatref.Ref) {
	if ch.IsNumeric() {
		params.AddNonZero64("chat_id", ch.ID())
		return
	}
	params.AddNonEmpty("chat_id", ch.Handle())
}

// approveJoinRequest issues a raw approveChatJoinRequest call. The raw
// form keeps the chat_id encoding under our control for both numeric
// ids and handles.
func approveJoinRequest(api API, ch chatref.Ref, userID int64) error {
	params := make(tgbotapi.Params)
	addChatParam(params, ch)
	params.AddNonZero64("user_id", userID)
	_, err := api.MakeRequest("approveChatJoinRequest", params)
	return err
}

// joinRequestProbes builds the request shapes tried in sequence when
// enumerating pending requests. The endpoint misbehaves across
// deployment topologies, so a second, plainer encoding is tried before
// the API is declared unavailable for the channel.
func joinRequestProbes(ch chatref.Ref) []tgbotapi.Params {
	first := make(tgbotapi.Params)
	addChatParam(first, ch)
	first.AddNonZero("limit", enumerationLimit)

	second := make(tgbotapi.Params)
	if ch.IsNumeric() {
		second.AddNonEmpty("chat_id", strconv.FormatInt(ch.ID(), 10))
	} else {
		second.AddNonEmpty("chat_id", ch.Handle())
	}

	return []tgbotapi.Params{first, second}
}

// listJoinRequests enumerates pending join requests for a channel,
// trying each probe shape in turn. It reports whether any probe
// returned a well-formed response.
func listJoinRequests(api API, ch chatref.Ref) ([]joinRequestUser, bool, error) {
	var lastErr error
	for _, params := range joinRequestProbes(ch) {
		resp, err := api.MakeRequest("getChatJoinRequests", params)
		if err != nil {
			lastErr = err
			continue
		}
		var reqs []joinRequestUser
		if err := json.Unmarshal(resp.Result, &reqs); err != nil {
			lastErr = fmt.Errorf("decode join requests: %w", err)
			continue
		}
		return reqs, true, nil
	}
	return nil, false, lastErr
}
