package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CreateSupplierRequest registers a supplier in the directory.
type CreateSupplierRequest struct {
	ID    string  `json:"id" binding:"required" example:"acme-furniture"`
	Name  string  `json:"name" binding:"required" example:"Acme Furniture Co."`
	Email *string `json:"email,omitempty" example:"bids@acme.example"`
}

// CreateSupplier godoc
// @ID          createSupplier
// @Summary     Register a supplier
// @Tags        Suppliers
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.CreateSupplierRequest  true  "Supplier"
// @Success     201  {object}  domain.Supplier
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     409  {object}  handlers.ErrorResponse  "Already exists"
// @Router      /suppliers [post]
func (h *Handlers) CreateSupplier(c *gin.Context) {
	var req CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "id and name required")
		return
	}
	s, err := h.suppliers.Create(c.Request.Context(), req.ID, req.Name, req.Email)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusCreated, s)
}

// GetSupplier godoc
// @ID          getSupplier
// @Summary     Get a supplier
// @Tags        Suppliers
// @Produce     json
// @Param       id  path  string  true  "Supplier ID"
// @Success     200  {object}  domain.Supplier
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /suppliers/{id} [get]
func (h *Handlers) GetSupplier(c *gin.Context) {
	s, err := h.suppliers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, s)
}
