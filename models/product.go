package models

import (
	"context"
	"errors"
	"time"

	"github.com/spdhub/spdhub_backend/config"
	"github.com/spdhub/spdhub_backend/utils"
)

type Product struct {
	ID        int         `gorm:"primary_key" json:"id"`
	Name      string      `gorm:"size:100;not null" json:"name" binding:"required"`
	Code      string      `gorm:"size:20;uniqueIndex;not null" json:"code" binding:"required"`
	BrandId   *int        `gorm:"index" json:"brand_id"`
	Unit      string      `gorm:"size:20;not null;default:'pcs'" json:"unit"`
	Type      ProductType `gorm:"type:enum('sampling_material','tod_flap','premium_gift');default:'sampling_material'" json:"type"`
	IsActive  *bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	Name    string      `json:"name" binding:"required"`
	Code    string      `json:"code" binding:"required"`
	BrandId *int        `json:"brand_id"`
	Unit    string      `json:"unit"`
	Type    ProductType `json:"type"`
}

// validate input for both create & update. (id = 0 for create)

func (input *NewProduct) validate(ctx context.Context, id int) error {
	if err := utils.ValidateUnique[Product](ctx, "code", input.Code, id); err != nil {
		return err
	}
	if input.Type != "" && !input.Type.Valid() {
		return utils.NewValidationError("type", "unknown product type")
	}
	// generic material (cups, spoons) carries no brand
	if input.BrandId != nil {
		if err := utils.ValidateResourceId[Brand](ctx, *input.BrandId); err != nil {
			return utils.NewValidationError("brand_id", "brand not found")
		}
	}
	return nil
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	unit := input.Unit
	if unit == "" {
		unit = "pcs"
	}
	productType := input.Type
	if productType == "" {
		productType = ProductTypeSamplingMaterial
	}

	product := Product{
		Name:     input.Name,
		Code:     input.Code,
		BrandId:  input.BrandId,
		Unit:     unit,
		Type:     productType,
		IsActive: utils.NewTrue(),
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Create(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func UpdateProduct(ctx context.Context, id int, input *NewProduct) (*Product, error) {
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	product, err := utils.FetchModel[Product](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&product).
		Updates(map[string]interface{}{
			"Name":    input.Name,
			"Code":    input.Code,
			"BrandId": input.BrandId,
			"Unit":    input.Unit,
			"Type":    input.Type,
		}).Error
	if err != nil {
		return nil, err
	}
	return product, nil
}

func DeleteProduct(ctx context.Context, id int) (*Product, error) {
	product, err := utils.FetchModel[Product](ctx, id)
	if err != nil {
		return nil, err
	}

	// Products referenced by the ledger journal are never hard-deleted.
	count, err := utils.ResourceCountWhere[StockMovement](ctx, "product_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("product has ledger movements")
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Delete(&product).Error
	if err != nil {
		return nil, err
	}
	return product, nil
}

func GetProduct(ctx context.Context, id int) (*Product, error) {
	return utils.FetchModel[Product](ctx, id)
}

func GetProductAll(ctx context.Context, name *string) ([]*Product, error) {
	db := config.GetDB()
	var results []*Product

	dbCtx := db.WithContext(ctx)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	err := dbCtx.Order("name").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
