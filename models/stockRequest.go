package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spdhub/spdhub_backend/config"
	"github.com/spdhub/spdhub_backend/utils"
)

type StockRequest struct {
	ID                     int                  `gorm:"primary_key" json:"id"`
	RequestNumber          string               `gorm:"size:30;uniqueIndex;not null" json:"request_number"`
	RequesterId            int                  `gorm:"index;not null" json:"requester_id"`
	Requester              *User                `json:"requester,omitempty"`
	DestinationVehicleId   *int                 `gorm:"index" json:"destination_vehicle_id"`
	DestinationTempLocId   *int                 `gorm:"index" json:"destination_temp_loc_id"`
	DestinationLocationId  int                  `gorm:"index;not null" json:"destination_location_id"`
	Status                 StockRequestStatus   `gorm:"type:enum('pending','assigned','confirmed','cancelled');default:'pending';index" json:"status"`
	ObdNumber              *string              `gorm:"size:30;index" json:"obd_number"`
	Notes                  string               `gorm:"type:text" json:"notes"`
	AssignedBy             *int                 `json:"assigned_by"`
	AssignedAt             *time.Time           `json:"assigned_at"`
	ConfirmedBy            *int                 `json:"confirmed_by"`
	ConfirmedAt            *time.Time           `json:"confirmed_at"`
	CancelledBy            *int                 `json:"cancelled_by"`
	CancelledAt            *time.Time           `json:"cancelled_at"`
	StockRequestDetails    []StockRequestDetail `gorm:"foreignKey:StockRequestId" json:"stock_request_details"`
	CreatedAt              time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
}

type StockRequestDetail struct {
	ID             int             `gorm:"primary_key" json:"id"`
	StockRequestId int             `gorm:"index;not null" json:"stock_request_id"`
	ProductId      int             `gorm:"index;not null" json:"product_id"`
	Product        *Product        `json:"product,omitempty"`
	RequestedQty   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"requested_qty"`
}

type NewStockRequest struct {
	DestinationVehicleId *int                    `json:"destination_vehicle_id"`
	DestinationTempLocId *int                    `json:"destination_temp_loc_id"`
	Notes                string                  `json:"notes"`
	Details              []NewStockRequestDetail `json:"details" binding:"required,dive"`
}

type NewStockRequestDetail struct {
	ProductId    int             `json:"product_id" binding:"required"`
	RequestedQty decimal.Decimal `json:"requested_qty" binding:"required"`
}

func (input *NewStockRequest) validate(ctx context.Context) (int, error) {
	if (input.DestinationVehicleId == nil) == (input.DestinationTempLocId == nil) {
		return 0, utils.NewValidationError("destination", "exactly one of vehicle or temporary location must be set")
	}
	if len(input.Details) == 0 {
		return 0, utils.NewValidationError("details", "at least one line is required")
	}
	seen := make(map[int]bool, len(input.Details))
	productIds := make([]int, 0, len(input.Details))
	for _, detail := range input.Details {
		if !detail.RequestedQty.IsPositive() {
			return 0, utils.NewValidationError("requested_qty", "requested quantity must be positive")
		}
		if seen[detail.ProductId] {
			return 0, utils.NewValidationError("product_id", "duplicate product line")
		}
		seen[detail.ProductId] = true
		productIds = append(productIds, detail.ProductId)
	}
	if err := utils.ValidateResourcesId[Product](ctx, productIds); err != nil {
		return 0, utils.NewValidationError("product_id", "product not found")
	}

	// Resolve the destination into its ledger location.
	if input.DestinationVehicleId != nil {
		location, err := GetStockLocationForVehicle(ctx, *input.DestinationVehicleId)
		if err != nil {
			return 0, utils.NewValidationError("destination_vehicle_id", "vehicle has no stock location")
		}
		return location.ID, nil
	}
	location, err := GetStockLocationForTempLocation(ctx, *input.DestinationTempLocId)
	if err != nil {
		return 0, utils.NewValidationError("destination_temp_loc_id", "temporary location has no stock location")
	}
	return location.ID, nil
}

// NewPendingStockRequest builds an unsaved pending request from validated
// input. The caller persists it after obtaining a request number.
func NewPendingStockRequest(ctx context.Context, input *NewStockRequest, requesterId int) (*StockRequest, error) {
	destinationLocationId, err := input.validate(ctx)
	if err != nil {
		return nil, err
	}

	details := make([]StockRequestDetail, 0, len(input.Details))
	for _, detail := range input.Details {
		details = append(details, StockRequestDetail{
			ProductId:    detail.ProductId,
			RequestedQty: detail.RequestedQty,
		})
	}

	return &StockRequest{
		RequesterId:           requesterId,
		DestinationVehicleId:  input.DestinationVehicleId,
		DestinationTempLocId:  input.DestinationTempLocId,
		DestinationLocationId: destinationLocationId,
		Status:                StockRequestStatusPending,
		Notes:                 input.Notes,
		StockRequestDetails:   details,
	}, nil
}

func GetStockRequest(ctx context.Context, id int) (*StockRequest, error) {
	return utils.FetchModel[StockRequest](ctx, id, "StockRequestDetails", "StockRequestDetails.Product", "Requester")
}

func GetStockRequestByNumber(ctx context.Context, requestNumber string) (*StockRequest, error) {
	db := config.GetDB()
	var request StockRequest
	err := db.WithContext(ctx).
		Preload("StockRequestDetails").
		Preload("StockRequestDetails.Product").
		Where("request_number = ?", requestNumber).
		First(&request).Error
	if err != nil {
		return nil, utils.ErrRecordNotFound
	}
	return &request, nil
}

func GetStockRequestsByStatus(ctx context.Context, status StockRequestStatus) ([]*StockRequest, error) {
	db := config.GetDB()
	var results []*StockRequest
	err := db.WithContext(ctx).
		Preload("StockRequestDetails").
		Where("status = ?", status).
		Order("created_at").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func GetStockRequestsByRequester(ctx context.Context, requesterId int) ([]*StockRequest, error) {
	db := config.GetDB()
	var results []*StockRequest
	err := db.WithContext(ctx).
		Preload("StockRequestDetails").
		Where("requester_id = ?", requesterId).
		Order("created_at DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
