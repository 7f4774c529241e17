package models

import (
	"context"
	"time"

	"github.com/spdhub/spdhub_backend/config"
	"github.com/spdhub/spdhub_backend/utils"
	"gorm.io/gorm"
)

type Vehicle struct {
	ID          int       `gorm:"primary_key" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name" binding:"required"`
	PlateNumber string    `gorm:"size:20;uniqueIndex;not null" json:"plate_number" binding:"required"`
	BrandId     *int      `gorm:"index" json:"brand_id"`
	InChargeId  *int      `gorm:"index" json:"in_charge_id"`
	IsActive    *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewVehicle struct {
	Name        string `json:"name" binding:"required"`
	PlateNumber string `json:"plate_number" binding:"required"`
	BrandId     *int   `json:"brand_id"`
	InChargeId  *int   `json:"in_charge_id"`
}

// validate input for both create & update. (id = 0 for create)

func (input *NewVehicle) validate(ctx context.Context, id int) error {
	if err := utils.ValidateUnique[Vehicle](ctx, "plate_number", input.PlateNumber, id); err != nil {
		return err
	}
	if input.BrandId != nil {
		if err := utils.ValidateResourceId[Brand](ctx, *input.BrandId); err != nil {
			return utils.NewValidationError("brand_id", "brand not found")
		}
	}
	if input.InChargeId != nil {
		count, err := utils.ResourceCountWhere[User](ctx, "id = ? AND role = ?", *input.InChargeId, UserRolePropagandist)
		if err != nil {
			return err
		}
		if count <= 0 {
			return utils.NewValidationError("in_charge_id", "in-charge must be a propagandist")
		}
	}
	return nil
}

// CreateVehicle also creates the vehicle's stock location so the ledger can
// address it immediately.
func CreateVehicle(ctx context.Context, input *NewVehicle) (*Vehicle, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	vehicle := Vehicle{
		Name:        input.Name,
		PlateNumber: input.PlateNumber,
		BrandId:     input.BrandId,
		InChargeId:  input.InChargeId,
		IsActive:    utils.NewTrue(),
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&vehicle).Error; err != nil {
			return err
		}
		location := StockLocation{
			Name:      vehicle.Name + " Stock",
			Type:      StockLocationTypeVehicle,
			VehicleId: &vehicle.ID,
			IsActive:  utils.NewTrue(),
		}
		return tx.Create(&location).Error
	})
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func UpdateVehicle(ctx context.Context, id int, input *NewVehicle) (*Vehicle, error) {
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	vehicle, err := utils.FetchModel[Vehicle](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&vehicle).
		Updates(map[string]interface{}{
			"Name":        input.Name,
			"PlateNumber": input.PlateNumber,
			"BrandId":     input.BrandId,
			"InChargeId":  input.InChargeId,
		}).Error
	if err != nil {
		return nil, err
	}
	return vehicle, nil
}

func GetVehicle(ctx context.Context, id int) (*Vehicle, error) {
	return utils.FetchModel[Vehicle](ctx, id)
}

func GetVehicleAll(ctx context.Context) ([]*Vehicle, error) {
	db := config.GetDB()
	var results []*Vehicle
	err := db.WithContext(ctx).Order("name").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
