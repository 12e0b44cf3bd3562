package handler

import (
	inventoryapp "github.com/retailcore/backend/internal/application/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesHandler handles sale and return stock application endpoints
type SalesHandler struct {
	BaseHandler
	salesService *inventoryapp.SalesService
}

// NewSalesHandler creates a new SalesHandler
func NewSalesHandler(salesService *inventoryapp.SalesService) *SalesHandler {
	return &SalesHandler{salesService: salesService}
}

// RegisterRoutes registers sales routes on the given group
func (h *SalesHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sales := rg.Group("/sales")
	sales.POST("", h.RecordSale)
	sales.POST("/returns", h.RecordReturn)
}

// SaleLineRequest is one product line of a sale or return document
type SaleLineRequest struct {
	ProductID string  `json:"product_id" binding:"required,uuid"`
	Quantity  float64 `json:"quantity" binding:"required,gt=0"`
}

// RecordSaleRequest applies a completed sale document against branch stock
type RecordSaleRequest struct {
	BranchID   string            `json:"branch_id" binding:"required,uuid"`
	DocumentID string            `json:"document_id" binding:"required,min=1,max=64"`
	Lines      []SaleLineRequest `json:"lines" binding:"required,min=1,dive"`
}

func toSaleLines(lines []SaleLineRequest) ([]inventoryapp.SaleLine, error) {
	result := make([]inventoryapp.SaleLine, 0, len(lines))
	for _, line := range lines {
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			return nil, err
		}
		result = append(result, inventoryapp.SaleLine{
			ProductID: productID,
			Quantity:  decimal.NewFromFloat(line.Quantity),
		})
	}
	return result, nil
}

// RecordSale decrements branch stock for every line of a sale.
// The whole document applies atomically; one short line rejects all of it.
func (h *SalesHandler) RecordSale(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant ID")
		return
	}

	actor, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user ID")
		return
	}

	var req RecordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	branchID, err := uuid.Parse(req.BranchID)
	if err != nil {
		h.BadRequest(c, "Invalid branch ID format")
		return
	}

	lines, err := toSaleLines(req.Lines)
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	movements, err := h.salesService.RecordSale(c.Request.Context(), tenantID, branchID, req.DocumentID, lines, actor)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toMovementResponses(movements))
}

// RecordReturn increments branch stock for every line of a return
func (h *SalesHandler) RecordReturn(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant ID")
		return
	}

	actor, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user ID")
		return
	}

	var req RecordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	branchID, err := uuid.Parse(req.BranchID)
	if err != nil {
		h.BadRequest(c, "Invalid branch ID format")
		return
	}

	lines, err := toSaleLines(req.Lines)
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	movements, err := h.salesService.RecordReturn(c.Request.Context(), tenantID, branchID, req.DocumentID, lines, actor)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toMovementResponses(movements))
}
