package models

import (
	"context"
	"strings"
	"time"

	"github.com/spdhub/spdhub_backend/config"
	"github.com/spdhub/spdhub_backend/utils"
	"gorm.io/gorm"
)

// TemporaryLocation is a bookable point of sale that is not a vehicle:
// a carnival hut, mall booth or kiosk.
type TemporaryLocation struct {
	ID            int       `gorm:"primary_key" json:"id"`
	Name          string    `gorm:"size:100;uniqueIndex;not null" json:"name" binding:"required"`
	LocationType  string    `gorm:"size:50" json:"location_type"`
	Address       string    `gorm:"type:text;not null" json:"address" binding:"required"`
	ContactPerson string    `gorm:"size:100" json:"contact_person"`
	ContactPhone  string    `gorm:"size:20" json:"contact_phone"`
	IsActive      *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewTemporaryLocation struct {
	Name          string `json:"name" binding:"required"`
	LocationType  string `json:"location_type"`
	Address       string `json:"address" binding:"required"`
	ContactPerson string `json:"contact_person"`
	ContactPhone  string `json:"contact_phone"`
}

// validate input for both create & update. (id = 0 for create)

func (input *NewTemporaryLocation) validate(ctx context.Context, id int) error {
	if err := utils.ValidateUnique[TemporaryLocation](ctx, "name", input.Name, id); err != nil {
		return err
	}
	if len(strings.TrimSpace(input.ContactPhone)) > 0 {
		if err := utils.ValidatePhoneNumber(input.ContactPhone, utils.CountryCode); err != nil {
			return utils.NewValidationError("contact_phone", err.Error())
		}
	}
	return nil
}

// CreateTemporaryLocation also creates the matching stock location.
func CreateTemporaryLocation(ctx context.Context, input *NewTemporaryLocation) (*TemporaryLocation, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	location := TemporaryLocation{
		Name:          input.Name,
		LocationType:  input.LocationType,
		Address:       input.Address,
		ContactPerson: input.ContactPerson,
		ContactPhone:  input.ContactPhone,
		IsActive:      utils.NewTrue(),
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&location).Error; err != nil {
			return err
		}
		stockLocation := StockLocation{
			Name:           location.Name + " Stock",
			Type:           StockLocationTypeTempLoc,
			TempLocationId: &location.ID,
			IsActive:       utils.NewTrue(),
		}
		return tx.Create(&stockLocation).Error
	})
	if err != nil {
		return nil, err
	}
	return &location, nil
}

func UpdateTemporaryLocation(ctx context.Context, id int, input *NewTemporaryLocation) (*TemporaryLocation, error) {
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	location, err := utils.FetchModel[TemporaryLocation](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&location).
		Updates(map[string]interface{}{
			"Name":          input.Name,
			"LocationType":  input.LocationType,
			"Address":       input.Address,
			"ContactPerson": input.ContactPerson,
			"ContactPhone":  input.ContactPhone,
		}).Error
	if err != nil {
		return nil, err
	}
	return location, nil
}

func GetTemporaryLocation(ctx context.Context, id int) (*TemporaryLocation, error) {
	return utils.FetchModel[TemporaryLocation](ctx, id)
}

func GetTemporaryLocationAll(ctx context.Context) ([]*TemporaryLocation, error) {
	db := config.GetDB()
	var results []*TemporaryLocation
	err := db.WithContext(ctx).Order("name").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
