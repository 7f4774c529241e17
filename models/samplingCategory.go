package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spdhub/spdhub_backend/config"
	"github.com/spdhub/spdhub_backend/utils"
)

type SamplingCategory struct {
	ID           int             `gorm:"primary_key" json:"id"`
	BrandId      int             `gorm:"index;not null" json:"brand_id"`
	Name         string          `gorm:"size:100;not null" json:"name" binding:"required"`
	CategoryType CategoryType    `gorm:"type:enum('free','paid');default:'paid'" json:"category_type"`
	CupPrice     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cup_price"`
	IsActive     *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSamplingCategory struct {
	BrandId      int             `json:"brand_id" binding:"required"`
	Name         string          `json:"name" binding:"required"`
	CategoryType CategoryType    `json:"category_type"`
	CupPrice     decimal.Decimal `json:"cup_price"`
}

func (input *NewSamplingCategory) validate(ctx context.Context, id int) error {
	if err := utils.ValidateResourceId[Brand](ctx, input.BrandId); err != nil {
		return utils.NewValidationError("brand_id", "brand not found")
	}
	if input.CategoryType == CategoryTypeFree && !input.CupPrice.IsZero() {
		return utils.NewValidationError("cup_price", "free category must have zero cup price")
	}
	if input.CupPrice.IsNegative() {
		return utils.NewValidationError("cup_price", "cup price cannot be negative")
	}
	return nil
}

func CreateSamplingCategory(ctx context.Context, input *NewSamplingCategory) (*SamplingCategory, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	category := SamplingCategory{
		BrandId:      input.BrandId,
		Name:         input.Name,
		CategoryType: input.CategoryType,
		CupPrice:     input.CupPrice,
		IsActive:     utils.NewTrue(),
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Create(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func UpdateSamplingCategory(ctx context.Context, id int, input *NewSamplingCategory) (*SamplingCategory, error) {
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	category, err := utils.FetchModel[SamplingCategory](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&category).
		Updates(map[string]interface{}{
			"BrandId":      input.BrandId,
			"Name":         input.Name,
			"CategoryType": input.CategoryType,
			"CupPrice":     input.CupPrice,
		}).Error
	if err != nil {
		return nil, err
	}
	return category, nil
}

func GetSamplingCategoriesByBrand(ctx context.Context, brandId int) ([]*SamplingCategory, error) {
	db := config.GetDB()
	var results []*SamplingCategory
	err := db.WithContext(ctx).Where("brand_id = ? AND is_active = 1", brandId).Order("name").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
