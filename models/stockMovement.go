package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spdhub/spdhub_backend/config"
)

// StockMovement is the append-only ledger journal. Rows are never updated
// except to link a reversal; quantities are always positive, direction is
// carried by which location reference is set (source = debit side,
// destination = credit side).
type StockMovement struct {
	ID                    int             `gorm:"primary_key" json:"id"`
	SourceLocationId      *int            `gorm:"index" json:"source_location_id"`
	DestinationLocationId *int            `gorm:"index" json:"destination_location_id"`
	ProductId             int             `gorm:"index;not null" json:"product_id"`
	Qty                   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"qty"`
	Reason                MovementReason  `gorm:"type:enum('warehouse_assignment','field_confirmation','manual_adjustment','reversal');not null" json:"reason"`
	Reference             string          `gorm:"index;size:100;not null" json:"reference"`
	IsReversal            bool            `gorm:"not null;default:false;index" json:"is_reversal"`
	ReversesMovementId    *int            `gorm:"index" json:"reverses_movement_id"`
	ReversedByMovementId  *int            `gorm:"index" json:"reversed_by_movement_id"`
	CreatedAt             time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// GetMovementsByReference returns every journal row minted under a
// reference (request number, adjustment id, event id), oldest first.
func GetMovementsByReference(ctx context.Context, reference string) ([]*StockMovement, error) {
	db := config.GetDB()
	var results []*StockMovement
	err := db.WithContext(ctx).
		Where("reference = ?", reference).
		Order("id").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// SignedQty is the movement's effect on the given location: negative when
// the location is the source, positive when it is the destination, zero
// when the movement does not touch it.
func (m *StockMovement) SignedQty(locationId int) decimal.Decimal {
	if m.SourceLocationId != nil && *m.SourceLocationId == locationId {
		return m.Qty.Neg()
	}
	if m.DestinationLocationId != nil && *m.DestinationLocationId == locationId {
		return m.Qty
	}
	return decimal.Zero
}
