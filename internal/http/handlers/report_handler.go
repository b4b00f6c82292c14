// Summary and export handlers.
package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-quote-backend/internal/analytics"
	"github.com/tbourn/go-quote-backend/internal/export"
	"github.com/tbourn/go-quote-backend/internal/http/middleware"
	"github.com/tbourn/go-quote-backend/internal/services"
)

// SummaryResponse is analytics.Summary plus the derived price spread.
type SummaryResponse struct {
	QuoteRequestID string `json:"quote_request_id"`
	analytics.Summary
	PriceSpread *int64 `json:"price_spread"`
}

// GetSummary godoc
// @ID          getSummary
// @Summary     Aggregate supplier responses
// @Description Counts by status, price and delivery statistics over submitted responses (null when none), and the response rate.
// @Tags        Reports
// @Produce     json
// @Param       X-User-ID  header  string  false "Caller ID (demo header)"
// @Param       id         path    string  true  "Quote request ID"  format(uuid)
// @Success     200  {object}  handlers.SummaryResponse
// @Failure     403  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /quote-requests/{id}/summary [get]
func (h *Handlers) GetSummary(c *gin.Context) {
	id, valid := requestID(c)
	if !valid {
		return
	}
	sum, err := h.summaries.Summarize(c.Request.Context(), userID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, SummaryResponse{QuoteRequestID: id, Summary: sum, PriceSpread: sum.PriceSpread()})
}

// ExportReport godoc
// @ID          exportReport
// @Summary     Download a report
// @Description type is one of quote-request, responses, analysis. format is structured (JSON, default) or delimited-text (CSV).
// @Tags        Reports
// @Produce     json
// @Produce     text/csv
// @Param       X-User-ID           header  string  false "Caller ID (demo header)"
// @Param       id                  path    string  true  "Quote request ID"  format(uuid)
// @Param       type                query   string  true  "Report type"  Enums(quote-request, responses, analysis)
// @Param       format              query   string  false "Encoding"     Enums(structured, delimited-text)
// @Param       include_line_items  query   bool    false "Add a line items column to the responses report"
// @Success     200  {file}    file
// @Failure     400  {object}  handlers.ErrorResponse  "Unknown type or format"
// @Failure     403  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     409  {object}  handlers.ErrorResponse  "No submitted responses to analyze"
// @Router      /quote-requests/{id}/export [get]
func (h *Handlers) ExportReport(c *gin.Context) {
	id, valid := requestID(c)
	if !valid {
		return
	}
	includeItems, _ := strconv.ParseBool(c.DefaultQuery("include_line_items", "false"))

	rep, err := h.reports.Export(c.Request.Context(), userID(c), id, services.ExportRequest{
		Type:             c.Query("type"),
		Format:           c.Query("format"),
		IncludeLineItems: includeItems,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	// Encode fully before writing so a failure still yields a JSON error.
	var buf bytes.Buffer
	if err := export.Encode(&buf, rep.Table, rep.Format); err != nil {
		writeError(c, err)
		return
	}
	middleware.NoStore(c.Writer.Header())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, rep.Filename))
	c.Data(http.StatusOK, export.ContentType(rep.Format), buf.Bytes())
}
