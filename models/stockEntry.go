package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spdhub/spdhub_backend/config"
)

// StockEntry holds the current quantity of one product at one location.
// Absence of a row means zero. Qty never goes negative; the ledger is the
// only writer.
type StockEntry struct {
	ID         int             `gorm:"primary_key" json:"id"`
	LocationId int             `gorm:"uniqueIndex:idx_stock_entries_location_product;not null" json:"location_id"`
	ProductId  int             `gorm:"uniqueIndex:idx_stock_entries_location_product;not null" json:"product_id"`
	Qty        decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"qty"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func GetEntriesForLocation(ctx context.Context, locationId int) ([]*StockEntry, error) {
	db := config.GetDB()
	var entries []*StockEntry
	err := db.WithContext(ctx).
		Where("location_id = ?", locationId).
		Order("product_id").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
