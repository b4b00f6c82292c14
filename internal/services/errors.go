// Package services defines the business logic for quote requests, supplier
// invitations, supplier responses and the reports derived from them.
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import (
	"errors"
	"fmt"

	"github.com/tbourn/go-quote-backend/internal/domain"
	"github.com/tbourn/go-quote-backend/internal/export"
	"github.com/tbourn/go-quote-backend/internal/validation"
)

// ErrNotFound is the parent of every "does not exist" error below, so callers
// can test errors.Is(err, ErrNotFound) without caring which entity is missing.
var ErrNotFound = errors.New("not found")

// Lookup errors.
var (
	ErrQuoteRequestNotFound = fmt.Errorf("quote request %w", ErrNotFound)
	ErrSupplierNotFound     = fmt.Errorf("supplier %w", ErrNotFound)
	ErrOpportunityNotFound  = fmt.Errorf("opportunity %w", ErrNotFound)
)

// Lifecycle and authorization errors.
var (
	// ErrForbidden is returned when the caller does not own the quote request.
	ErrForbidden = errors.New("caller does not own this quote request")

	// ErrInvalidTransition is returned for a lifecycle move the state machine
	// does not allow. The concrete error is usually a *TransitionError.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNoInvitations is wrapped in a TransitionError when sending a request
	// nobody was invited to.
	ErrNoInvitations = errors.New("quote request has no invitations")

	// ErrDeadlinePassed is wrapped in a TransitionError when sending a request
	// whose deadline is not in the future.
	ErrDeadlinePassed = errors.New("deadline is not in the future")

	// ErrInvitationsClosed is wrapped in a TransitionError when inviting to a
	// request that is expired or completed.
	ErrInvitationsClosed = errors.New("invitations are closed")

	// ErrNotDraft is returned when editing a request that left draft.
	ErrNotDraft = errors.New("only draft quote requests can be edited")

	// ErrInvalidInput is returned for request fields that fail basic checks
	// (blank title, missing deadline, bad supplier ID).
	ErrInvalidInput = errors.New("invalid input")
)

// Invitation and response intake errors.
var (
	ErrDuplicateInvitation   = errors.New("supplier already invited")
	ErrDuplicateResponse     = errors.New("supplier already responded")
	ErrDuplicateSupplier     = errors.New("supplier already exists")
	ErrNotAcceptingResponses = errors.New("quote request is not accepting responses")
	ErrNotInvited            = errors.New("supplier is not invited to this quote request")
)

// Payload errors live in the validation package; they are re-exported so
// callers only need to import services.
var (
	ErrMalformedPayload   = validation.ErrMalformedPayload
	ErrLineItemMismatch   = validation.ErrLineItemMismatch
	ErrTotalPriceMismatch = validation.ErrTotalPriceMismatch
)

// Report errors.
var (
	// ErrInvalidReport is returned for an unknown report type or format.
	ErrInvalidReport = errors.New("invalid report selector")

	// ErrNoSubmittedResponses is returned when an analysis report is asked for
	// before any supplier submitted a quote.
	ErrNoSubmittedResponses = export.ErrNoSubmittedResponses
)

// TransitionError describes a rejected lifecycle move. Reason, when set,
// names the precondition that failed.
type TransitionError struct {
	From   domain.Status
	To     domain.Status
	Reason error
}

func (e *TransitionError) Error() string {
	msg := fmt.Sprintf("cannot move quote request from %s to %s", e.From, e.To)
	if e.From == e.To {
		msg = fmt.Sprintf("quote request is %s", e.From)
	}
	if e.Reason != nil {
		msg += ": " + e.Reason.Error()
	}
	return msg
}

// Is makes errors.Is(err, ErrInvalidTransition) hold.
func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// Unwrap exposes Reason.
func (e *TransitionError) Unwrap() error { return e.Reason }

func transitionErr(from, to domain.Status, reason error) error {
	return &TransitionError{From: from, To: to, Reason: reason}
}
