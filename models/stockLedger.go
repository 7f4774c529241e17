package models

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/spdhub/spdhub_backend/config"
	"github.com/spdhub/spdhub_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// The stock ledger exclusively owns StockEntry and StockMovement. All
// mutations run inside the caller's transaction so multi-line operations
// (request assignment, transfers) stay all-or-nothing. Entry rows are
// locked FOR UPDATE per (location, product), so unrelated products and
// locations never contend.

// GetBalance returns the on-hand quantity; zero when no entry exists.
func GetBalance(ctx context.Context, locationId, productId int) (decimal.Decimal, error) {
	db := config.GetDB()
	var entry StockEntry
	err := db.WithContext(ctx).
		Where("location_id = ? AND product_id = ?", locationId, productId).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, utils.WrapStorage("ledger balance", err)
	}
	return entry.Qty, nil
}

// DebitStock removes qty from a location and journals the movement.
// Replaying the same (reference, reason, location, product) returns the
// movement already applied instead of double-applying.
func DebitStock(tx *gorm.DB, locationId, productId int, qty decimal.Decimal, reason MovementReason, reference string) (*StockMovement, error) {
	if qty.Sign() <= 0 {
		return nil, utils.NewValidationError("qty", "quantity must be positive")
	}

	existing, err := findAppliedMovement(tx, "source_location_id", locationId, productId, reason, reference)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	if err := adjustEntry(tx, locationId, productId, qty.Neg()); err != nil {
		return nil, err
	}

	movement := StockMovement{
		SourceLocationId: &locationId,
		ProductId:        productId,
		Qty:              qty,
		Reason:           reason,
		Reference:        reference,
	}
	if err := tx.Create(&movement).Error; err != nil {
		return nil, utils.WrapStorage("ledger debit journal", err)
	}
	return &movement, nil
}

// CreditStock adds qty to a location and journals the movement. No upper
// bound; idempotent per (reference, reason, location, product).
func CreditStock(tx *gorm.DB, locationId, productId int, qty decimal.Decimal, reason MovementReason, reference string) (*StockMovement, error) {
	if qty.Sign() <= 0 {
		return nil, utils.NewValidationError("qty", "quantity must be positive")
	}

	existing, err := findAppliedMovement(tx, "destination_location_id", locationId, productId, reason, reference)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	if err := adjustEntry(tx, locationId, productId, qty); err != nil {
		return nil, err
	}

	movement := StockMovement{
		DestinationLocationId: &locationId,
		ProductId:             productId,
		Qty:                   qty,
		Reason:                reason,
		Reference:             reference,
	}
	if err := tx.Create(&movement).Error; err != nil {
		return nil, utils.WrapStorage("ledger credit journal", err)
	}
	return &movement, nil
}

// TransferStock moves qty between two locations as one journal row. If the
// debit side lacks stock nothing is applied; the caller's transaction keeps
// the pair atomic.
func TransferStock(tx *gorm.DB, fromLocationId, toLocationId, productId int, qty decimal.Decimal, reason MovementReason, reference string) (*StockMovement, error) {
	if qty.Sign() <= 0 {
		return nil, utils.NewValidationError("qty", "quantity must be positive")
	}
	if fromLocationId == toLocationId {
		return nil, utils.NewValidationError("to", "transfer source and destination are the same location")
	}

	existing, err := findAppliedMovement(tx, "source_location_id", fromLocationId, productId, reason, reference)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	if err := adjustEntry(tx, fromLocationId, productId, qty.Neg()); err != nil {
		return nil, err
	}
	if err := adjustEntry(tx, toLocationId, productId, qty); err != nil {
		return nil, err
	}

	movement := StockMovement{
		SourceLocationId:      &fromLocationId,
		DestinationLocationId: &toLocationId,
		ProductId:             productId,
		Qty:                   qty,
		Reason:                reason,
		Reference:             reference,
	}
	if err := tx.Create(&movement).Error; err != nil {
		return nil, utils.WrapStorage("ledger transfer journal", err)
	}
	return &movement, nil
}

// ReverseMovement emits a compensating movement for a prior journal row and
// links the pair. Reversing an already-reversed movement returns the prior
// reversal; reversal rows themselves cannot be reversed.
func ReverseMovement(tx *gorm.DB, movementId int) (*StockMovement, error) {
	var movement StockMovement
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&movement, movementId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrRecordNotFound
	}
	if err != nil {
		return nil, utils.WrapStorage("ledger reverse", err)
	}

	if movement.IsReversal {
		return nil, utils.NewValidationError("movement_id", "cannot reverse a reversal movement")
	}
	if movement.ReversedByMovementId != nil {
		var prior StockMovement
		if err := tx.First(&prior, *movement.ReversedByMovementId).Error; err != nil {
			return nil, utils.WrapStorage("ledger reverse", err)
		}
		return &prior, nil
	}

	// Compensate by swapping the movement's direction.
	if movement.SourceLocationId != nil {
		if err := adjustEntry(tx, *movement.SourceLocationId, movement.ProductId, movement.Qty); err != nil {
			return nil, err
		}
	}
	if movement.DestinationLocationId != nil {
		if err := adjustEntry(tx, *movement.DestinationLocationId, movement.ProductId, movement.Qty.Neg()); err != nil {
			return nil, err
		}
	}

	reversal := StockMovement{
		SourceLocationId:      movement.DestinationLocationId,
		DestinationLocationId: movement.SourceLocationId,
		ProductId:             movement.ProductId,
		Qty:                   movement.Qty,
		Reason:                MovementReasonReversal,
		Reference:             movement.Reference,
		IsReversal:            true,
		ReversesMovementId:    &movement.ID,
	}
	if err := tx.Create(&reversal).Error; err != nil {
		return nil, utils.WrapStorage("ledger reversal journal", err)
	}
	if err := tx.Model(&StockMovement{}).Where("id = ?", movement.ID).
		Update("reversed_by_movement_id", reversal.ID).Error; err != nil {
		return nil, utils.WrapStorage("ledger reversal link", err)
	}
	return &reversal, nil
}

// findAppliedMovement implements replay protection: a movement with the
// same reference, reason, product and location side has already been
// applied and must not apply twice.
func findAppliedMovement(tx *gorm.DB, locationColumn string, locationId, productId int, reason MovementReason, reference string) (*StockMovement, error) {
	var existing StockMovement
	err := tx.
		Where(locationColumn+" = ? AND product_id = ? AND reason = ? AND reference = ? AND is_reversal = 0", locationId, productId, reason, reference).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, utils.WrapStorage("ledger idempotency check", err)
}

// adjustEntry locks the (location, product) entry row and applies delta.
// A negative result is rejected before anything is written.
func adjustEntry(tx *gorm.DB, locationId, productId int, delta decimal.Decimal) error {
	var entry StockEntry
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("location_id = ? AND product_id = ?", locationId, productId).
		First(&entry).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		if delta.Sign() < 0 {
			return &utils.InsufficientStockError{
				LocationId: locationId,
				ProductId:  productId,
				Requested:  delta.Neg(),
				Available:  decimal.Zero,
			}
		}
		entry = StockEntry{LocationId: locationId, ProductId: productId, Qty: delta}
		if cerr := tx.Create(&entry).Error; cerr != nil {
			// Lost a creation race; the unique index catches it, re-lock
			// the winner's row and fall through to the update path.
			if !isDuplicateKeyErr(cerr) {
				return utils.WrapStorage("ledger entry create", cerr)
			}
			if lerr := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("location_id = ? AND product_id = ?", locationId, productId).
				First(&entry).Error; lerr != nil {
				return utils.WrapStorage("ledger entry relock", lerr)
			}
		} else {
			return nil
		}
	} else if err != nil {
		return utils.WrapStorage("ledger entry lock", err)
	}

	next := entry.Qty.Add(delta)
	if next.IsNegative() {
		return &utils.InsufficientStockError{
			LocationId: locationId,
			ProductId:  productId,
			Requested:  delta.Neg(),
			Available:  entry.Qty,
		}
	}
	if err := tx.Model(&StockEntry{}).Where("id = ?", entry.ID).
		Update("qty", next).Error; err != nil {
		return utils.WrapStorage("ledger entry update", err)
	}
	return nil
}
