package models

import (
	"context"
	"time"

	"github.com/spdhub/spdhub_backend/config"
	"github.com/spdhub/spdhub_backend/utils"
)

// OBDAcknowledgement is the immutable record a field user signs when
// confirming receipt of an outbound delivery. Rows are never updated or
// deleted.
type OBDAcknowledgement struct {
	ID               int       `gorm:"primary_key" json:"id"`
	StockRequestId   int       `gorm:"index;not null" json:"stock_request_id"`
	ObdNumber        string    `gorm:"size:30;index;not null" json:"obd_number"`
	UsageDescription string    `gorm:"type:text" json:"usage_description"`
	AcknowledgedBy   int       `gorm:"index;not null" json:"acknowledged_by"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func GetAcknowledgementsForRequest(ctx context.Context, stockRequestId int) ([]*OBDAcknowledgement, error) {
	db := config.GetDB()
	var results []*OBDAcknowledgement
	err := db.WithContext(ctx).
		Where("stock_request_id = ?", stockRequestId).
		Order("created_at").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func GetAcknowledgementByObdNumber(ctx context.Context, obdNumber string) (*OBDAcknowledgement, error) {
	db := config.GetDB()
	var ack OBDAcknowledgement
	err := db.WithContext(ctx).Where("obd_number = ?", obdNumber).First(&ack).Error
	if err != nil {
		return nil, utils.ErrRecordNotFound
	}
	return &ack, nil
}
