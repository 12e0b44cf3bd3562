package handler

import (
	"strings"

	inventoryapp "github.com/retailcore/backend/internal/application/inventory"
	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferHandler handles transfer lifecycle API endpoints
type TransferHandler struct {
	BaseHandler
	transferService *inventoryapp.TransferService
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(transferService *inventoryapp.TransferService) *TransferHandler {
	return &TransferHandler{transferService: transferService}
}

// RegisterRoutes registers transfer routes on the given group
func (h *TransferHandler) RegisterRoutes(rg *gin.RouterGroup) {
	transfers := rg.Group("/transfers")
	transfers.POST("", h.Create)
	transfers.GET("", h.List)
	transfers.GET("/:id", h.GetByID)
	transfers.POST("/:id/approve", h.Approve)
	transfers.POST("/:id/reject", h.Reject)
	transfers.POST("/:id/dispatch", h.Dispatch)
	transfers.POST("/:id/complete", h.Complete)
}

// TransferLineRequest is one product line of a transfer
type TransferLineRequest struct {
	ProductID string   `json:"product_id" binding:"required,uuid"`
	Quantity  float64  `json:"quantity" binding:"required,gt=0"`
	UnitCost  *float64 `json:"unit_cost" binding:"omitempty,gte=0"`
}

// CreateTransferRequest creates a pending stock transfer between two locations
type CreateTransferRequest struct {
	SourceType      string                `json:"source_type" binding:"required,oneof=BRANCH WAREHOUSE branch warehouse"`
	SourceID        string                `json:"source_id" binding:"required,uuid"`
	DestinationType string                `json:"destination_type" binding:"required,oneof=BRANCH WAREHOUSE branch warehouse"`
	DestinationID   string                `json:"destination_id" binding:"required,uuid"`
	Lines           []TransferLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// Create creates a transfer in PENDING state after a soft availability check
func (h *TransferHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant ID")
		return
	}

	initiator, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user ID")
		return
	}

	var req CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	source, err := parseLocation(req.SourceType, req.SourceID)
	if err != nil {
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeInvalidLocation), dto.ErrCodeInvalidLocation, "Invalid source location")
		return
	}

	destination, err := parseLocation(req.DestinationType, req.DestinationID)
	if err != nil {
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeInvalidLocation), dto.ErrCodeInvalidLocation, "Invalid destination location")
		return
	}

	lines := make([]inventoryapp.TransferLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			h.BadRequest(c, "Invalid product ID format")
			return
		}
		appLine := inventoryapp.TransferLine{
			ProductID: productID,
			Quantity:  decimal.NewFromFloat(line.Quantity),
		}
		if line.UnitCost != nil {
			appLine.UnitCost = decimal.NewFromFloat(*line.UnitCost)
		}
		lines = append(lines, appLine)
	}

	transfer, err := h.transferService.CreateTransfer(c.Request.Context(), tenantID, source, destination, lines, initiator)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toTransferResponse(transfer))
}

// GetByID returns one transfer with its items
func (h *TransferHandler) GetByID(c *gin.Context) {
	tenantID, transferID, ok := h.idents(c)
	if !ok {
		return
	}

	transfer, err := h.transferService.GetTransfer(c.Request.Context(), tenantID, transferID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toTransferResponse(transfer))
}

// ListTransfersQuery filters the transfer list
type ListTransfersQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=PENDING APPROVED IN_TRANSIT COMPLETED REJECTED pending approved in_transit completed rejected"`
	dto.ListRequest
}

// List returns a page of the tenant's transfers, optionally filtered by status
func (h *TransferHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant ID")
		return
	}

	var query ListTransfersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var status *inventory.TransferStatus
	if query.Status != "" {
		s := inventory.TransferStatus(strings.ToUpper(query.Status))
		status = &s
	}

	page, err := h.transferService.ListTransfers(c.Request.Context(), tenantID, status, toFilter(query.ListRequest))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, toTransferResponses(page.Items), page.Total, page.Page, page.PageSize)
}

// Approve moves a pending transfer to APPROVED
func (h *TransferHandler) Approve(c *gin.Context) {
	tenantID, transferID, ok := h.idents(c)
	if !ok {
		return
	}

	approver, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user ID")
		return
	}

	transfer, err := h.transferService.ApproveTransfer(c.Request.Context(), tenantID, transferID, approver)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toTransferResponse(transfer))
}

// Reject terminally rejects a transfer without touching stock
func (h *TransferHandler) Reject(c *gin.Context) {
	tenantID, transferID, ok := h.idents(c)
	if !ok {
		return
	}

	transfer, err := h.transferService.RejectTransfer(c.Request.Context(), tenantID, transferID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toTransferResponse(transfer))
}

// Dispatch marks an approved transfer as physically in transit
func (h *TransferHandler) Dispatch(c *gin.Context) {
	tenantID, transferID, ok := h.idents(c)
	if !ok {
		return
	}

	transfer, err := h.transferService.MarkInTransit(c.Request.Context(), tenantID, transferID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toTransferResponse(transfer))
}

// Complete executes the two-sided stock move and closes the transfer.
// Completing an already completed transfer is a no-op success.
func (h *TransferHandler) Complete(c *gin.Context) {
	tenantID, transferID, ok := h.idents(c)
	if !ok {
		return
	}

	actor, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user ID")
		return
	}

	transfer, err := h.transferService.CompleteTransfer(c.Request.Context(), tenantID, transferID, actor)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toTransferResponse(transfer))
}

// idents extracts the tenant and transfer IDs shared by every lifecycle endpoint
func (h *TransferHandler) idents(c *gin.Context) (tenantID, transferID uuid.UUID, ok bool) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant ID")
		return uuid.Nil, uuid.Nil, false
	}

	transferID, err = uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID format")
		return uuid.Nil, uuid.Nil, false
	}

	return tenantID, transferID, true
}
