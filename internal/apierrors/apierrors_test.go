package apierrors

import (
	"errors"
	"fmt"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/stretchr/testify/require"
)

func TestClassifier(t *testing.T) {
	t.Run("NotModified", func(t *testing.T) {
		err := &tgbotapi.Error{Code: 400, Message: "Bad Request: message is not modified"}
		require.True(t, IsNotModified(err))
		require.False(t, IsNotFound(err))
	})

	t.Run("QueryTooOld", func(t *testing.T) {
		err := &tgbotapi.Error{Code: 400, Message: "Bad Request: query is too old and response timeout expired"}
		require.True(t, IsQueryTooOld(err))
	})

	t.Run("NotFoundVariants", func(t *testing.T) {
		for _, msg := range []string{
			"Bad Request: user not found",
			"Bad Request: HIDE_REQUESTER_MISSING",
			"Bad Request: USER_ALREADY_PARTICIPANT",
		} {
			require.True(t, IsNotFound(errors.New(msg)), msg)
		}
	})

	t.Run("WrappedErrorsStillMatch", func(t *testing.T) {
		err := fmt.Errorf("refresh panel: %w",
			&tgbotapi.Error{Message: "Bad Request: message is not modified"})
		require.True(t, IsNotModified(err))
	})

	t.Run("NilIsNothing", func(t *testing.T) {
		require.False(t, IsNotModified(nil))
		require.False(t, IsQueryTooOld(nil))
		require.False(t, IsNotFound(nil))
	})
}

func TestDescribe(t *testing.T) {
	t.Run("APIErrorUsesRawDescription", func(t *testing.T) {
		err := fmt.Errorf("approve: %w", &tgbotapi.Error{Code: 403, Message: "Forbidden: bot is not a member"})
		require.Equal(t, "Forbidden: bot is not a member", Describe(err))
	})

	t.Run("PlainError", func(t *testing.T) {
		require.Equal(t, "boom", Describe(errors.New("boom")))
	})

	t.Run("Nil", func(t *testing.T) {
		require.Equal(t, "", Describe(nil))
	})
}
