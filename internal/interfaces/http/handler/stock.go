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

// StockHandler handles ledger-level stock API endpoints
type StockHandler struct {
	BaseHandler
	ledgerService *inventoryapp.LedgerService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(ledgerService *inventoryapp.LedgerService) *StockHandler {
	return &StockHandler{ledgerService: ledgerService}
}

// RegisterRoutes registers stock routes on the given group
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stock := rg.Group("/stock")
	stock.GET("/quantity", h.GetQuantity)
	stock.GET("/levels", h.ListByLocation)
	stock.GET("/products/:product_id/total", h.TotalQuantity)
	stock.GET("/movements", h.ListMovements)
	stock.POST("/adjust", h.AdjustQuantity)
	stock.PUT("/quantity", h.SetQuantity)
}

// parseLocation builds a validated LocationRef from request values
func parseLocation(locationType, locationID string) (inventory.LocationRef, error) {
	id, err := uuid.Parse(locationID)
	if err != nil {
		return inventory.LocationRef{}, err
	}
	locType := inventory.LocationType(strings.ToUpper(locationType))
	return inventory.NewLocationRef(locType, id)
}

// QuantityQuery identifies one ledger key in query parameters
type QuantityQuery struct {
	ProductID    string `form:"product_id" binding:"required,uuid"`
	LocationType string `form:"location_type" binding:"required,oneof=BRANCH WAREHOUSE branch warehouse"`
	LocationID   string `form:"location_id" binding:"required,uuid"`
}

// QuantityResponse reports the on-hand quantity for one ledger key
type QuantityResponse struct {
	ProductID    string  `json:"product_id"`
	LocationType string  `json:"location_type"`
	LocationID   string  `json:"location_id"`
	Quantity     float64 `json:"quantity"`
}

// AdjustQuantityRequest represents a manual stock adjustment
type AdjustQuantityRequest struct {
	ProductID    string  `json:"product_id" binding:"required,uuid"`
	LocationType string  `json:"location_type" binding:"required,oneof=BRANCH WAREHOUSE branch warehouse"`
	LocationID   string  `json:"location_id" binding:"required,uuid"`
	Delta        float64 `json:"delta" binding:"required"`
}

// SetQuantityRequest represents an absolute stock correction
type SetQuantityRequest struct {
	ProductID    string  `json:"product_id" binding:"required,uuid"`
	LocationType string  `json:"location_type" binding:"required,oneof=BRANCH WAREHOUSE branch warehouse"`
	LocationID   string  `json:"location_id" binding:"required,uuid"`
	Quantity     float64 `json:"quantity" binding:"gte=0"`
}

// GetQuantity returns the on-hand quantity for a product at a location.
// A missing ledger row reads as zero.
func (h *StockHandler) GetQuantity(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant ID")
		return
	}

	var query QuantityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	productID, err := uuid.Parse(query.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	location, err := parseLocation(query.LocationType, query.LocationID)
	if err != nil {
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeInvalidLocation), dto.ErrCodeInvalidLocation, "Invalid location reference")
		return
	}

	quantity, err := h.ledgerService.GetQuantity(c.Request.Context(), tenantID, productID, location)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, QuantityResponse{
		ProductID:    productID.String(),
		LocationType: location.Type.String(),
		LocationID:   location.ID.String(),
		Quantity:     quantity.InexactFloat64(),
	})
}

// AdjustQuantity applies a signed delta to one ledger entry
func (h *StockHandler) AdjustQuantity(c *gin.Context) {
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

	var req AdjustQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	location, err := parseLocation(req.LocationType, req.LocationID)
	if err != nil {
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeInvalidLocation), dto.ErrCodeInvalidLocation, "Invalid location reference")
		return
	}

	entry, err := h.ledgerService.AdjustQuantity(c.Request.Context(), tenantID, productID, location,
		decimal.NewFromFloat(req.Delta), actor)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, QuantityResponse{
		ProductID:    entry.ProductID.String(),
		LocationType: entry.LocationType.String(),
		LocationID:   entry.LocationID.String(),
		Quantity:     entry.Quantity.InexactFloat64(),
	})
}

// SetQuantity overwrites the quantity of one ledger entry
func (h *StockHandler) SetQuantity(c *gin.Context) {
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

	var req SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	location, err := parseLocation(req.LocationType, req.LocationID)
	if err != nil {
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeInvalidLocation), dto.ErrCodeInvalidLocation, "Invalid location reference")
		return
	}

	entry, err := h.ledgerService.SetQuantity(c.Request.Context(), tenantID, productID, location,
		decimal.NewFromFloat(req.Quantity), actor)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, QuantityResponse{
		ProductID:    entry.ProductID.String(),
		LocationType: entry.LocationType.String(),
		LocationID:   entry.LocationID.String(),
		Quantity:     entry.Quantity.InexactFloat64(),
	})
}

// LocationQuery identifies one location in query parameters
type LocationQuery struct {
	LocationType string `form:"location_type" binding:"required,oneof=BRANCH WAREHOUSE branch warehouse"`
	LocationID   string `form:"location_id" binding:"required,uuid"`
	dto.ListRequest
}

// ListByLocation returns the stock levels of every product at one location
func (h *StockHandler) ListByLocation(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant ID")
		return
	}

	var query LocationQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	location, err := parseLocation(query.LocationType, query.LocationID)
	if err != nil {
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeInvalidLocation), dto.ErrCodeInvalidLocation, "Invalid location reference")
		return
	}

	levels, err := h.ledgerService.ListByLocation(c.Request.Context(), tenantID, location, toFilter(query.ListRequest))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, levels)
}

// TotalQuantity returns the tenant-wide quantity of one product across all locations
func (h *StockHandler) TotalQuantity(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant ID")
		return
	}

	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	total, err := h.ledgerService.TotalQuantity(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{
		"product_id": productID.String(),
		"total":      total.InexactFloat64(),
	})
}

// ListMovements returns a page of the tenant's stock movement history
func (h *StockHandler) ListMovements(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant ID")
		return
	}

	var query dto.ListRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := toFilter(query)
	movements, total, err := h.ledgerService.ListMovements(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, toMovementResponses(movements), total, filter.Page, filter.PageSize)
}
