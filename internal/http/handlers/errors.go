package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-quote-backend/internal/services"
	"github.com/tbourn/go-quote-backend/internal/validation"
)

// Error codes. Clients branch on these, so they never change meaning.
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeTimeout          = "timeout"

	// Lifecycle
	ErrCodeInvalidTransition = "invalid_transition"
	ErrCodeNotDraft          = "not_draft"

	// Invitations and responses
	ErrCodeDuplicateInvitation   = "duplicate_invitation"
	ErrCodeDuplicateResponse     = "duplicate_response"
	ErrCodeNotAcceptingResponses = "not_accepting_responses"
	ErrCodeNotInvited            = "not_invited"
	ErrCodeMalformedPayload      = "malformed_payload"
	ErrCodeLineItemMismatch      = "line_item_mismatch"
	ErrCodeTotalPriceMismatch    = "total_price_mismatch"

	// Reports
	ErrCodeInvalidReport        = "invalid_report"
	ErrCodeNoSubmittedResponses = "no_submitted_responses"
)

// TransitionDetails is the details payload of invalid_transition errors.
type TransitionDetails struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason,omitempty"`
}

// writeError maps a service error onto status, code and details. Typed
// errors are checked before the sentinels they match.
func writeError(c *gin.Context, err error) {
	var (
		malformed *validation.MalformedPayloadError
		lineItem  *validation.LineItemMismatchError
		total     *validation.TotalPriceMismatchError
		trans     *services.TransitionError
	)
	msg := err.Error()

	switch {
	case errors.As(err, &malformed):
		failWith(c, http.StatusUnprocessableEntity, ErrCodeMalformedPayload, msg, malformed.Fields)
	case errors.As(err, &lineItem):
		failWith(c, http.StatusUnprocessableEntity, ErrCodeLineItemMismatch, msg, lineItem)
	case errors.As(err, &total):
		failWith(c, http.StatusUnprocessableEntity, ErrCodeTotalPriceMismatch, msg, total)
	case errors.As(err, &trans):
		d := TransitionDetails{From: string(trans.From), To: string(trans.To)}
		if trans.Reason != nil {
			d.Reason = trans.Reason.Error()
		}
		failWith(c, http.StatusConflict, ErrCodeInvalidTransition, msg, d)

	case errors.Is(err, services.ErrForbidden):
		fail(c, http.StatusForbidden, ErrCodeForbidden, msg)
	case errors.Is(err, services.ErrNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, msg)
	case errors.Is(err, services.ErrInvalidTransition):
		fail(c, http.StatusConflict, ErrCodeInvalidTransition, msg)
	case errors.Is(err, services.ErrNotDraft):
		fail(c, http.StatusConflict, ErrCodeNotDraft, msg)
	case errors.Is(err, services.ErrDuplicateInvitation):
		fail(c, http.StatusConflict, ErrCodeDuplicateInvitation, msg)
	case errors.Is(err, services.ErrDuplicateResponse):
		fail(c, http.StatusConflict, ErrCodeDuplicateResponse, msg)
	case errors.Is(err, services.ErrDuplicateSupplier):
		fail(c, http.StatusConflict, ErrCodeConflict, msg)
	case errors.Is(err, services.ErrNotAcceptingResponses):
		fail(c, http.StatusConflict, ErrCodeNotAcceptingResponses, msg)
	case errors.Is(err, services.ErrNotInvited):
		fail(c, http.StatusForbidden, ErrCodeNotInvited, msg)
	case errors.Is(err, services.ErrInvalidInput):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msg)
	case errors.Is(err, services.ErrInvalidReport):
		fail(c, http.StatusBadRequest, ErrCodeInvalidReport, msg)
	case errors.Is(err, services.ErrNoSubmittedResponses):
		fail(c, http.StatusConflict, ErrCodeNoSubmittedResponses, msg)
	case errors.Is(err, context.DeadlineExceeded):
		fail(c, http.StatusGatewayTimeout, ErrCodeTimeout, "request timed out")
	default:
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
	}
}
