package models

import (
	"context"
	"time"

	"github.com/spdhub/spdhub_backend/config"
	"github.com/spdhub/spdhub_backend/utils"
)

// StockLocation is an addressable point of storage: the central warehouse,
// a specific vehicle, or a specific temporary location. Exactly one row per
// physical place; the vehicle/temp-location references are mutually
// exclusive and both nil for warehouses.
type StockLocation struct {
	ID             int               `gorm:"primary_key" json:"id"`
	Name           string            `gorm:"size:100;not null" json:"name" binding:"required"`
	Type           StockLocationType `gorm:"type:enum('warehouse','vehicle','temporary_location');not null" json:"type"`
	VehicleId      *int              `gorm:"uniqueIndex" json:"vehicle_id"`
	TempLocationId *int              `gorm:"uniqueIndex" json:"temp_location_id"`
	Address        string            `gorm:"type:text" json:"address"`
	IsActive       *bool             `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewStockLocation struct {
	Name           string            `json:"name" binding:"required"`
	Type           StockLocationType `json:"type" binding:"required"`
	VehicleId      *int              `json:"vehicle_id"`
	TempLocationId *int              `json:"temp_location_id"`
	Address        string            `json:"address"`
}

func (input *NewStockLocation) validate(ctx context.Context, id int) error {
	switch input.Type {
	case StockLocationTypeWarehouse:
		if input.VehicleId != nil || input.TempLocationId != nil {
			return utils.NewValidationError("type", "warehouse location cannot reference a vehicle or temporary location")
		}
	case StockLocationTypeVehicle:
		if input.VehicleId == nil || input.TempLocationId != nil {
			return utils.NewValidationError("vehicle_id", "vehicle location must reference exactly one vehicle")
		}
		if err := utils.ValidateResourceId[Vehicle](ctx, *input.VehicleId); err != nil {
			return utils.NewValidationError("vehicle_id", "vehicle not found")
		}
	case StockLocationTypeTempLoc:
		if input.TempLocationId == nil || input.VehicleId != nil {
			return utils.NewValidationError("temp_location_id", "temporary location reference is required")
		}
		if err := utils.ValidateResourceId[TemporaryLocation](ctx, *input.TempLocationId); err != nil {
			return utils.NewValidationError("temp_location_id", "temporary location not found")
		}
	default:
		return utils.NewValidationError("type", "unknown location type")
	}
	return nil
}

func CreateStockLocation(ctx context.Context, input *NewStockLocation) (*StockLocation, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	location := StockLocation{
		Name:           input.Name,
		Type:           input.Type,
		VehicleId:      input.VehicleId,
		TempLocationId: input.TempLocationId,
		Address:        input.Address,
		IsActive:       utils.NewTrue(),
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Create(&location).Error
	if err != nil {
		return nil, err
	}
	return &location, nil
}

func GetStockLocation(ctx context.Context, id int) (*StockLocation, error) {
	return utils.FetchModel[StockLocation](ctx, id)
}

func GetStockLocationAll(ctx context.Context) ([]*StockLocation, error) {
	db := config.GetDB()
	var results []*StockLocation
	err := db.WithContext(ctx).Order("name").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetWarehouseLocation returns the central warehouse. The portal operates a
// single warehouse; multiple rows would mean the seed/setup is broken.
func GetWarehouseLocation(ctx context.Context) (*StockLocation, error) {
	db := config.GetDB()
	var location StockLocation
	err := db.WithContext(ctx).
		Where("type = ? AND is_active = 1", StockLocationTypeWarehouse).
		First(&location).Error
	if err != nil {
		return nil, utils.ErrRecordNotFound
	}
	return &location, nil
}

func GetStockLocationForVehicle(ctx context.Context, vehicleId int) (*StockLocation, error) {
	db := config.GetDB()
	var location StockLocation
	err := db.WithContext(ctx).Where("vehicle_id = ?", vehicleId).First(&location).Error
	if err != nil {
		return nil, utils.ErrRecordNotFound
	}
	return &location, nil
}

func GetStockLocationForTempLocation(ctx context.Context, tempLocationId int) (*StockLocation, error) {
	db := config.GetDB()
	var location StockLocation
	err := db.WithContext(ctx).Where("temp_location_id = ?", tempLocationId).First(&location).Error
	if err != nil {
		return nil, utils.ErrRecordNotFound
	}
	return &location, nil
}
