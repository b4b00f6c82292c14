// Invitation and supplier response handlers.
//
// Owner routes (X-User-ID is the buyer):
//   - POST /quote-requests/{id}/invitations
//   - GET  /quote-requests/{id}/invitations
//   - GET  /quote-requests/{id}/responses
//
// Supplier routes (X-User-ID is the supplier ID):
//   - POST /quote-requests/{id}/responses
//   - POST /quote-requests/{id}/responses/decline
package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-quote-backend/internal/domain"
)

// InviteSupplierRequest names the supplier to invite.
type InviteSupplierRequest struct {
	SupplierID string `json:"supplier_id" binding:"required" example:"acme-furniture"`
}

// DeclineRequest optionally explains a decline.
type DeclineRequest struct {
	Notes *string `json:"notes,omitempty" example:"Fully booked until March"`
}

// ListInvitationsResponse wraps the invitation ledger.
type ListInvitationsResponse struct {
	Invitations []domain.Invitation `json:"invitations"`
}

// ListResponsesResponse wraps the responses of one request.
type ListResponsesResponse struct {
	Responses []domain.SupplierResponse `json:"responses"`
}

// InviteSupplier godoc
// @ID          inviteSupplier
// @Summary     Invite a supplier
// @Description Adds a supplier to a draft or sent request. Suppliers invited after sending are notified immediately.
// @Tags        Invitations
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "Caller ID (demo header)"
// @Param       id         path    string  true  "Quote request ID"  format(uuid)
// @Param       body       body    handlers.InviteSupplierRequest  true  "Supplier"
// @Success     201  {object}  domain.Invitation
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     403  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Request or supplier not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Duplicate invitation or closed request"
// @Router      /quote-requests/{id}/invitations [post]
func (h *Handlers) InviteSupplier(c *gin.Context) {
	id, valid := requestID(c)
	if !valid {
		return
	}
	var req InviteSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "supplier_id required")
		return
	}
	inv, err := h.invites.Invite(c.Request.Context(), userID(c), id, req.SupplierID)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusCreated, inv)
}

// ListInvitations godoc
// @ID          listInvitations
// @Summary     List invitations in invitation order
// @Tags        Invitations
// @Produce     json
// @Param       X-User-ID  header  string  false "Caller ID (demo header)"
// @Param       id         path    string  true  "Quote request ID"  format(uuid)
// @Success     200  {object}  handlers.ListInvitationsResponse
// @Failure     403  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /quote-requests/{id}/invitations [get]
func (h *Handlers) ListInvitations(c *gin.Context) {
	id, valid := requestID(c)
	if !valid {
		return
	}
	invs, err := h.invites.List(c.Request.Context(), userID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, ListInvitationsResponse{Invitations: invs})
}

// SubmitResponse godoc
// @ID          submitResponse
// @Summary     Submit a supplier quote
// @Description The caller is the supplier. Line totals must equal quantity x unit price and the declared total must equal their sum, in integer cents.
// @Tags        Responses
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  true  "Supplier ID"  example(acme-furniture)
// @Param       id         path    string  true  "Quote request ID"  format(uuid)
// @Param       body       body    domain.ResponsePayload  true  "Quote"
// @Success     201  {object}  domain.SupplierResponse
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     403  {object}  handlers.ErrorResponse  "Not invited"
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     409  {object}  handlers.ErrorResponse  "Duplicate or not accepting responses"
// @Failure     422  {object}  handlers.ErrorResponse  "Malformed payload or arithmetic mismatch"
// @Router      /quote-requests/{id}/responses [post]
func (h *Handlers) SubmitResponse(c *gin.Context) {
	id, valid := requestID(c)
	if !valid {
		return
	}
	var p domain.ResponsePayload
	if err := c.ShouldBindJSON(&p); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	r, err := h.responses.Submit(c.Request.Context(), id, userID(c), p)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusCreated, r)
}

// DeclineResponse godoc
// @ID          declineResponse
// @Summary     Decline to quote
// @Tags        Responses
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  true  "Supplier ID"
// @Param       id         path    string  true  "Quote request ID"  format(uuid)
// @Param       body       body    handlers.DeclineRequest  false  "Optional notes"
// @Success     201  {object}  domain.SupplierResponse
// @Failure     403  {object}  handlers.ErrorResponse  "Not invited"
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     409  {object}  handlers.ErrorResponse
// @Router      /quote-requests/{id}/responses/decline [post]
func (h *Handlers) DeclineResponse(c *gin.Context) {
	id, valid := requestID(c)
	if !valid {
		return
	}
	var req DeclineRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	r, err := h.responses.Decline(c.Request.Context(), id, userID(c), req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusCreated, r)
}

// ListResponses godoc
// @ID          listResponses
// @Summary     List supplier responses
// @Description Owner only, in creation order. Supports weak ETag via If-None-Match.
// @Tags        Responses
// @Produce     json
// @Param       X-User-ID      header  string  false "Caller ID (demo header)"
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       id             path    string  true  "Quote request ID"  format(uuid)
// @Success     200  {object}  handlers.ListResponsesResponse
// @Success     304  {string}  string  "Not Modified"
// @Failure     403  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /quote-requests/{id}/responses [get]
func (h *Handlers) ListResponses(c *gin.Context) {
	id, valid := requestID(c)
	if !valid {
		return
	}
	ctx := c.Request.Context()

	// Ownership is checked before the ETag so a stranger learns nothing from it.
	list, err := h.responses.List(ctx, userID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if notModified(c, "responses", id, func() (int64, *time.Time, error) { return h.responses.Stats(ctx, id) }) {
		return
	}
	ok(c, http.StatusOK, ListResponsesResponse{Responses: list})
}
