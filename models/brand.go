package models

import (
	"context"
	"errors"
	"time"

	"github.com/spdhub/spdhub_backend/config"
	"github.com/spdhub/spdhub_backend/utils"
)

type Brand struct {
	ID          int       `gorm:"primary_key" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name" binding:"required"`
	Code        string    `gorm:"size:10;uniqueIndex;not null" json:"code" binding:"required"`
	Description string    `gorm:"type:text" json:"description"`
	IsActive    *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewBrand struct {
	Name        string `json:"name" binding:"required"`
	Code        string `json:"code" binding:"required"`
	Description string `json:"description"`
}

// validate input for both create & update. (id = 0 for create)

func (input *NewBrand) validate(ctx context.Context, id int) error {
	if err := utils.ValidateUnique[Brand](ctx, "name", input.Name, id); err != nil {
		return err
	}
	if err := utils.ValidateUnique[Brand](ctx, "code", input.Code, id); err != nil {
		return err
	}
	return nil
}

func CreateBrand(ctx context.Context, input *NewBrand) (*Brand, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	brand := Brand{
		Name:        input.Name,
		Code:        input.Code,
		Description: input.Description,
		IsActive:    utils.NewTrue(),
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Create(&brand).Error
	if err != nil {
		return nil, err
	}
	return &brand, nil
}

func UpdateBrand(ctx context.Context, id int, input *NewBrand) (*Brand, error) {
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	brand, err := utils.FetchModel[Brand](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&brand).
		Updates(map[string]interface{}{
			"Name":        input.Name,
			"Code":        input.Code,
			"Description": input.Description,
		}).Error
	if err != nil {
		return nil, err
	}
	return brand, nil
}

func DeleteBrand(ctx context.Context, id int) (*Brand, error) {
	brand, err := utils.FetchModel[Brand](ctx, id)
	if err != nil {
		return nil, err
	}

	// Do not delete if any product still references this brand
	count, err := utils.ResourceCountWhere[Product](ctx, "brand_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("used by product")
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Delete(&brand).Error
	if err != nil {
		return nil, err
	}
	return brand, nil
}

func GetBrand(ctx context.Context, id int) (*Brand, error) {
	return utils.FetchModel[Brand](ctx, id)
}

func GetBrandAll(ctx context.Context) ([]*Brand, error) {
	db := config.GetDB()
	var results []*Brand
	err := db.WithContext(ctx).Order("name").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
