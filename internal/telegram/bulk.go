package telegram

import (
	"github.com/google/uuid"

	"gatekeeper-tg-bot/internal/apierrors"
	"gatekeeper-tg-bot/internal/chatref"
	"gatekeeper-tg-bot/internal/history"
)

// BulkError is one failed approval inside a bulk run.
type BulkError struct {
	Chat        string
	UserID      int64
	Description string
}

// BulkResult is the aggregate outcome of one bulk-approval run.
type BulkResult struct {
	RunID    string
	Approved int
	Errors   []BulkError

	// APIWorked reports whether any enumeration probe returned a
	// well-formed response. False feeds the cross-server heuristic.
	APIWorked bool
}

// ApproveAllPending reconciles a channel's pending join requests from
// two overlapping sources: the platform's enumeration endpoint
// (best-effort, probed with multiple request shapes) and the local
// tracker. Users are deduplicated by id across both sources, partial
// failure is tolerated, and the method never returns an error — every
// failure ends up in the result.
func (h *Handler) ApproveAllPending(ch chatref.Ref) BulkResult {
	res := BulkResult{RunID: uuid.New().String()}
	approved := make(map[int64]struct{})

	reqs, ok, err := listJoinRequests(h.api, ch)
	res.APIWorked = ok
	if !ok {
		h.logger.Warn("pending-request enumeration unavailable",
			"chat", ch.String(),
			"run_id", res.RunID,
			"error", err,
		)
	}

	for _, req := range reqs {
		userID := req.From.ID
		if _, done := approved[userID]; done {
			continue
		}
		if err := approveJoinRequest(h.api, ch, userID); err != nil {
			res.Errors = append(res.Errors, BulkError{
				Chat:        ch.String(),
				UserID:      userID,
				Description: apierrors.Describe(err),
			})
			continue
		}
		approved[userID] = struct{}{}
		res.Approved++
		h.tracker.Remove(ch, userID)
		h.recordApproval(ch, userID, history.MethodBulk, res.RunID)
	}

	// Fall back to locally tracked requests the enumeration missed.
	for _, userID := range h.tracker.Users(ch) {
		if _, done := approved[userID]; done {
			continue
		}
		err := approveJoinRequest(h.api, ch, userID)
		switch {
		case err == nil:
			approved[userID] = struct{}{}
			res.Approved++
			h.tracker.Remove(ch, userID)
			h.recordApproval(ch, userID, history.MethodBulk, res.RunID)
		case apierrors.IsNotFound(err):
			// The request no longer exists server-side; stop tracking
			// it but keep the error in the report.
			h.tracker.Remove(ch, userID)
			res.Errors = append(res.Errors, BulkError{
				Chat:        ch.String(),
				UserID:      userID,
				Description: apierrors.Describe(err),
			})
		default:
			// Stays tracked for a future attempt.
			res.Errors = append(res.Errors, BulkError{
				Chat:        ch.String(),
				UserID:      userID,
				Description: apierrors.Describe(err),
			})
		}
	}

	h.logger.Info("bulk approval finished",
		"chat", ch.String(),
		"run_id", res.RunID,
		"approved", res.Approved,
		"errors", len(res.Errors),
		"api_worked", res.APIWorked,
	)
	return res
}
