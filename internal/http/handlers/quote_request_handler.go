// Quote request HTTP handlers.
//
//   - POST   /quote-requests              (create draft, Idempotency-Key replay)
//   - GET    /quote-requests              (owner's list, paginated, weak ETag)
//   - GET    /quote-requests/{id}         (effective status)
//   - PATCH  /quote-requests/{id}         (edit draft)
//   - DELETE /quote-requests/{id}         (cascade delete)
//   - POST   /quote-requests/{id}/send
//   - POST   /quote-requests/{id}/complete
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/tbourn/go-quote-backend/internal/domain"
	"github.com/tbourn/go-quote-backend/internal/http/middleware"
	"github.com/tbourn/go-quote-backend/internal/services"
)

//
// DTOs
//

// CreateQuoteRequestRequest is the JSON payload for a new draft.
type CreateQuoteRequestRequest struct {
	OpportunityID string         `json:"opportunity_id" binding:"required" example:"opp-1"`
	Title         string         `json:"title" binding:"required,max=255" example:"Office chairs for regional HQ"`
	Description   *string        `json:"description,omitempty" example:"40 ergonomic chairs, delivered and assembled"`
	Deadline      time.Time      `json:"deadline" binding:"required" example:"2025-01-10T00:00:00Z"`
	Requirements  datatypes.JSON `json:"requirements,omitempty" swaggertype:"object"`
	AIGenerated   bool           `json:"ai_generated"`
}

// UpdateQuoteRequestRequest edits a draft; absent fields are unchanged.
type UpdateQuoteRequestRequest struct {
	Title        *string         `json:"title,omitempty" example:"Standing desks"`
	Description  *string         `json:"description,omitempty"`
	Deadline     *time.Time      `json:"deadline,omitempty" example:"2025-01-15T00:00:00Z"`
	Requirements *datatypes.JSON `json:"requirements,omitempty" swaggertype:"object"`
	AIGenerated  *bool           `json:"ai_generated,omitempty"`
}

// ListQuoteRequestsResponse wraps a page of quote requests.
type ListQuoteRequestsResponse struct {
	QuoteRequests []domain.QuoteRequest `json:"quote_requests"`
	Pagination    Pagination            `json:"pagination"`
}

// requestID validates the :id path parameter.
func requestID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "quote request id must be a UUID")
		return "", false
	}
	return id, true
}

//
// Handlers
//

// CreateQuoteRequest godoc
// @ID          createQuoteRequest
// @Summary     Create a draft quote request
// @Description Creates a draft owned by the caller. Retries carrying the same Idempotency-Key return the original draft with Idempotency-Replayed: true.
// @Tags        QuoteRequests
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  false "Caller ID (demo header)"  example(buyer-1)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries"
// @Param       body             body    handlers.CreateQuoteRequestRequest  true  "Draft fields"
//
// @Success     201  {object}  domain.QuoteRequest
// @Success     200  {object}  domain.QuoteRequest  "Replayed"
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Opportunity not found"
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /quote-requests [post]
func (h *Handlers) CreateQuoteRequest(c *gin.Context) {
	ctx := c.Request.Context()
	owner := userID(c)

	key, _ := middleware.GetIdempotencyKey(c)
	if key != "" {
		if prev, found := h.quotes.Replay(ctx, owner, key); found {
			c.Header("Idempotency-Replayed", "true")
			ok(c, http.StatusOK, prev)
			return
		}
	}

	var req CreateQuoteRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "opportunity_id, title and deadline are required")
		return
	}
	q, err := h.quotes.Create(ctx, owner, services.CreateInput{
		OpportunityID: strings.TrimSpace(req.OpportunityID),
		Title:         req.Title,
		Description:   req.Description,
		Deadline:      req.Deadline,
		Requirements:  req.Requirements,
		AIGenerated:   req.AIGenerated,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	if key != "" {
		h.quotes.Remember(ctx, owner, key, q.ID, h.idemTTL)
	}
	c.Header("Location", strings.TrimSuffix(c.Request.URL.Path, "/")+"/"+q.ID)
	ok(c, http.StatusCreated, q)
}

// ListQuoteRequests godoc
// @ID          listQuoteRequests
// @Summary     List the caller's quote requests
// @Description Newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        QuoteRequests
// @Produce     json
//
// @Param       X-User-ID      header  string  false "Caller ID (demo header)"
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       page           query   int     false "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListQuoteRequestsResponse
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string  "Not Modified"
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /quote-requests [get]
func (h *Handlers) ListQuoteRequests(c *gin.Context) {
	ctx := c.Request.Context()
	owner := userID(c)
	page, pageSize := clampPagination(c)

	if notModified(c, "quote-requests", owner, func() (int64, *time.Time, error) { return h.quotes.Stats(ctx, owner) }) {
		return
	}

	items, total, err := h.quotes.ListPage(ctx, owner, page, pageSize)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, ListQuoteRequestsResponse{
		QuoteRequests: items,
		Pagination:    newPagination(page, pageSize, total),
	})
}

// GetQuoteRequest godoc
// @ID          getQuoteRequest
// @Summary     Get a quote request
// @Tags        QuoteRequests
// @Produce     json
// @Param       X-User-ID  header  string  false "Caller ID (demo header)"
// @Param       id         path    string  true  "Quote request ID"  format(uuid)
// @Success     200  {object}  domain.QuoteRequest
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     403  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /quote-requests/{id} [get]
func (h *Handlers) GetQuoteRequest(c *gin.Context) {
	id, valid := requestID(c)
	if !valid {
		return
	}
	q, err := h.quotes.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, q)
}

// UpdateQuoteRequest godoc
// @ID          updateQuoteRequest
// @Summary     Edit a draft quote request
// @Tags        QuoteRequests
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "Caller ID (demo header)"
// @Param       id         path    string  true  "Quote request ID"  format(uuid)
// @Param       body       body    handlers.UpdateQuoteRequestRequest  true  "Fields to change"
// @Success     200  {object}  domain.QuoteRequest
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     403  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     409  {object}  handlers.ErrorResponse  "Not a draft"
// @Router      /quote-requests/{id} [patch]
func (h *Handlers) UpdateQuoteRequest(c *gin.Context) {
	id, valid := requestID(c)
	if !valid {
		return
	}
	var req UpdateQuoteRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	q, err := h.quotes.Update(c.Request.Context(), userID(c), id, services.UpdateInput{
		Title:        req.Title,
		Description:  req.Description,
		Deadline:     req.Deadline,
		Requirements: req.Requirements,
		AIGenerated:  req.AIGenerated,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, q)
}

// DeleteQuoteRequest godoc
// @ID          deleteQuoteRequest
// @Summary     Delete a quote request with its invitations and responses
// @Tags        QuoteRequests
// @Param       X-User-ID  header  string  false "Caller ID (demo header)"
// @Param       id         path    string  true  "Quote request ID"  format(uuid)
// @Success     204  {string}  string  "No Content"
// @Failure     403  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /quote-requests/{id} [delete]
func (h *Handlers) DeleteQuoteRequest(c *gin.Context) {
	id, valid := requestID(c)
	if !valid {
		return
	}
	if err := h.quotes.Delete(c.Request.Context(), userID(c), id); err != nil {
		writeError(c, err)
		return
	}
	noContent(c)
}

// SendQuoteRequest godoc
// @ID          sendQuoteRequest
// @Summary     Send a draft to its invited suppliers
// @Description Requires at least one invitation and a deadline in the future. Each invitee is notified once.
// @Tags        QuoteRequests
// @Produce     json
// @Param       X-User-ID  header  string  false "Caller ID (demo header)"
// @Param       id         path    string  true  "Quote request ID"  format(uuid)
// @Success     200  {object}  domain.QuoteRequest
// @Failure     403  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     409  {object}  handlers.ErrorResponse  "Invalid transition"
// @Router      /quote-requests/{id}/send [post]
func (h *Handlers) SendQuoteRequest(c *gin.Context) {
	id, valid := requestID(c)
	if !valid {
		return
	}
	q, err := h.quotes.Send(c.Request.Context(), userID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, q)
}

// CompleteQuoteRequest godoc
// @ID          completeQuoteRequest
// @Summary     Close a sent quote request
// @Tags        QuoteRequests
// @Produce     json
// @Param       X-User-ID  header  string  false "Caller ID (demo header)"
// @Param       id         path    string  true  "Quote request ID"  format(uuid)
// @Success     200  {object}  domain.QuoteRequest
// @Failure     403  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     409  {object}  handlers.ErrorResponse  "Invalid transition"
// @Router      /quote-requests/{id}/complete [post]
func (h *Handlers) CompleteQuoteRequest(c *gin.Context) {
	id, valid := requestID(c)
	if !valid {
		return
	}
	q, err := h.quotes.Complete(c.Request.Context(), userID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, q)
}
