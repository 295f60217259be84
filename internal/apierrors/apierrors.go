// Package apierrors centralizes classification of Telegram Bot API
// failures. The API exposes one flat error shape whose meaning lives in
// the description text, so every substring check the bot depends on is
// kept here instead of scattered across call sites.
package apierrors

import (
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// IsNotModified reports whether the error is the "message is not
// modified" edit response. Re-rendering a panel to identical content is
// normal; callers must treat this as success.
func IsNotModified(err error) bool {
	return containsFold(err, "message is not modified")
}

// IsQueryTooOld reports whether the error is a stale callback-query
// answer. Pressing a button on an old panel triggers this; it is
// ignorable.
func IsQueryTooOld(err error) bool {
	return containsFold(err, "query is too old")
}

// IsNotFound reports whether the error means the join request (or its
// subject) no longer exists server-side. Used by the bulk engine to
// prune tracked users whose requests were resolved elsewhere.
func IsNotFound(err error) bool {
	return containsFold(err, "not found") ||
		containsFold(err, "hide_requester_missing") ||
		containsFold(err, "user_already_participant")
}

// Describe returns the raw API description for operator-facing error
// reports. Operator-initiated flows include it verbatim for
// diagnosability.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

func containsFold(err error, needle string) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), needle)
}
