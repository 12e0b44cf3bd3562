package handler

import (
	"time"

	"github.com/retailcore/backend/internal/domain/inventory"
)

// TransferItemResponse represents one transfer line in API responses
type TransferItemResponse struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Quantity  float64 `json:"quantity"`
	UnitCost  float64 `json:"unit_cost"`
}

// TransferResponse represents a transfer in API responses
type TransferResponse struct {
	ID              string                 `json:"id"`
	TenantID        string                 `json:"tenant_id"`
	SourceType      string                 `json:"source_type"`
	SourceID        string                 `json:"source_id"`
	DestinationType string                 `json:"destination_type"`
	DestinationID   string                 `json:"destination_id"`
	Status          string                 `json:"status"`
	InitiatedBy     string                 `json:"initiated_by"`
	ApprovedBy      *string                `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time             `json:"approved_at,omitempty"`
	DispatchedAt    *time.Time             `json:"dispatched_at,omitempty"`
	CompletedAt     *time.Time             `json:"completed_at,omitempty"`
	RejectedAt      *time.Time             `json:"rejected_at,omitempty"`
	Items           []TransferItemResponse `json:"items"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

func toTransferResponse(transfer *inventory.Transfer) TransferResponse {
	items := make([]TransferItemResponse, 0, len(transfer.Items))
	for _, item := range transfer.Items {
		items = append(items, TransferItemResponse{
			ID:        item.ID.String(),
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity.InexactFloat64(),
			UnitCost:  item.UnitCost.InexactFloat64(),
		})
	}

	resp := TransferResponse{
		ID:              transfer.ID.String(),
		TenantID:        transfer.TenantID.String(),
		SourceType:      transfer.SourceType.String(),
		SourceID:        transfer.SourceID.String(),
		DestinationType: transfer.DestinationType.String(),
		DestinationID:   transfer.DestinationID.String(),
		Status:          transfer.Status.String(),
		InitiatedBy:     transfer.InitiatedBy.String(),
		ApprovedAt:      transfer.ApprovedAt,
		DispatchedAt:    transfer.DispatchedAt,
		CompletedAt:     transfer.CompletedAt,
		RejectedAt:      transfer.RejectedAt,
		Items:           items,
		CreatedAt:       transfer.CreatedAt,
		UpdatedAt:       transfer.UpdatedAt,
	}
	if transfer.ApprovedBy != nil {
		approvedBy := transfer.ApprovedBy.String()
		resp.ApprovedBy = &approvedBy
	}
	return resp
}

func toTransferResponses(transfers []*inventory.Transfer) []TransferResponse {
	result := make([]TransferResponse, 0, len(transfers))
	for _, transfer := range transfers {
		result = append(result, toTransferResponse(transfer))
	}
	return result
}

// MovementResponse represents a stock movement in API responses
type MovementResponse struct {
	ID            string    `json:"id"`
	LedgerEntryID string    `json:"ledger_entry_id"`
	ProductID     string    `json:"product_id"`
	LocationType  string    `json:"location_type"`
	LocationID    string    `json:"location_id"`
	MovementType  string    `json:"movement_type"`
	Quantity      float64   `json:"quantity"`
	BalanceBefore float64   `json:"balance_before"`
	BalanceAfter  float64   `json:"balance_after"`
	SourceType    string    `json:"source_type"`
	SourceID      string    `json:"source_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func toMovementResponse(movement *inventory.StockMovement) MovementResponse {
	return MovementResponse{
		ID:            movement.ID.String(),
		LedgerEntryID: movement.LedgerEntryID.String(),
		ProductID:     movement.ProductID.String(),
		LocationType:  movement.LocationType.String(),
		LocationID:    movement.LocationID.String(),
		MovementType:  movement.MovementType.String(),
		Quantity:      movement.Quantity.InexactFloat64(),
		BalanceBefore: movement.BalanceBefore.InexactFloat64(),
		BalanceAfter:  movement.BalanceAfter.InexactFloat64(),
		SourceType:    movement.SourceType.String(),
		SourceID:      movement.SourceID,
		OccurredAt:    movement.OccurredAt,
	}
}

func toMovementResponses(movements []*inventory.StockMovement) []MovementResponse {
	result := make([]MovementResponse, 0, len(movements))
	for _, movement := range movements {
		result = append(result, toMovementResponse(movement))
	}
	return result
}
