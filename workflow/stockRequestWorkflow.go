package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spdhub/spdhub_backend/config"
	"github.com/spdhub/spdhub_backend/models"
	"github.com/spdhub/spdhub_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubmitStockRequest creates a pending request with an issued request
// number. No stock moves yet; the warehouse side acts on it later.
func SubmitStockRequest(ctx context.Context, input *models.NewStockRequest) (*models.StockRequest, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return nil, utils.NewValidationError("actor", "authenticated user is required")
	}

	request, err := models.NewPendingStockRequest(ctx, input, userId)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		requestNumber, err := models.IssueDocumentNumber(ctx, tx, models.DocumentKindStockRequest, time.Now())
		if err != nil {
			return err
		}
		request.RequestNumber = requestNumber

		if err := tx.Create(request).Error; err != nil {
			return utils.WrapStorage("stock request create", err)
		}
		models.LogActivity(ctx, tx, "stock_request_submitted",
			"Submitted stock request "+request.RequestNumber, "stock_requests", request.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// AssignStockRequest debits the warehouse for every line and issues the OBD
// number, atomically. A single short line rolls back the whole assignment.
func AssignStockRequest(ctx context.Context, requestId int) (*models.StockRequest, error) {
	userId, role, err := requireRole(ctx, models.UserRoleWarehouse)
	if err != nil {
		return nil, err
	}
	logger := config.GetLogger()

	warehouse, err := models.GetWarehouseLocation(ctx)
	if err != nil {
		return nil, err
	}

	var request models.StockRequest
	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockStockRequest(tx, requestId, &request); err != nil {
			return err
		}
		if request.Status != models.StockRequestStatusPending {
			return &utils.InvalidTransitionError{
				Subject: "stock request",
				From:    string(request.Status),
				To:      string(models.StockRequestStatusAssigned),
			}
		}

		for _, detail := range request.StockRequestDetails {
			_, err := models.DebitStock(tx, warehouse.ID, detail.ProductId, detail.RequestedQty,
				models.MovementReasonWarehouseAssignment, request.RequestNumber)
			if err != nil {
				return err
			}
		}

		obdNumber, err := models.IssueDocumentNumber(ctx, tx, models.DocumentKindOBD, time.Now())
		if err != nil {
			return err
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":      models.StockRequestStatusAssigned,
			"obd_number":  obdNumber,
			"assigned_by": userId,
			"assigned_at": now,
		}
		if err := tx.Model(&request).Updates(updates).Error; err != nil {
			return utils.WrapStorage("stock request assign", err)
		}
		request.ObdNumber = &obdNumber
		request.AssignedBy = &userId
		request.AssignedAt = &now

		models.LogActivity(ctx, tx, "stock_request_assigned",
			"Assigned stock request "+request.RequestNumber+" under "+obdNumber, "stock_requests", request.ID)
		return nil
	})
	if err != nil {
		logger.WithFields(logrus.Fields{
			"request_id": requestId,
			"role":       role,
		}).WithError(err).Warn("stock request assignment failed")
		return nil, err
	}
	return &request, nil
}

// ConfirmStockRequest credits the destination and files the acknowledgement.
// Only the vehicle's in-charge propagandist may confirm a vehicle delivery;
// temporary-location deliveries are confirmed by warehouse or brand manager.
func ConfirmStockRequest(ctx context.Context, requestId int, usageDescription string) (*models.StockRequest, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return nil, utils.NewValidationError("actor", "authenticated user is required")
	}

	var request models.StockRequest
	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockStockRequest(tx, requestId, &request); err != nil {
			return err
		}
		if request.Status != models.StockRequestStatusAssigned {
			return &utils.InvalidTransitionError{
				Subject: "stock request",
				From:    string(request.Status),
				To:      string(models.StockRequestStatusConfirmed),
			}
		}
		if err := checkConfirmAuthority(ctx, &request, userId); err != nil {
			return err
		}

		for _, detail := range request.StockRequestDetails {
			_, err := models.CreditStock(tx, request.DestinationLocationId, detail.ProductId, detail.RequestedQty,
				models.MovementReasonFieldConfirmation, request.RequestNumber)
			if err != nil {
				return err
			}
		}

		ack := models.OBDAcknowledgement{
			StockRequestId:   request.ID,
			ObdNumber:        utils.DereferencePtr(request.ObdNumber),
			UsageDescription: usageDescription,
			AcknowledgedBy:   userId,
		}
		if err := tx.Create(&ack).Error; err != nil {
			return utils.WrapStorage("obd acknowledgement create", err)
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":       models.StockRequestStatusConfirmed,
			"confirmed_by": userId,
			"confirmed_at": now,
		}
		if err := tx.Model(&request).Updates(updates).Error; err != nil {
			return utils.WrapStorage("stock request confirm", err)
		}
		request.ConfirmedBy = &userId
		request.ConfirmedAt = &now

		models.LogActivity(ctx, tx, "stock_request_confirmed",
			"Confirmed receipt of "+request.RequestNumber, "stock_requests", request.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// CancelStockRequest aborts a pending or assigned request. Cancelling an
// assigned request reverses every movement posted under its number, so the
// warehouse balance is restored through compensating journal rows rather
// than edits.
func CancelStockRequest(ctx context.Context, requestId int) (*models.StockRequest, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return nil, utils.NewValidationError("actor", "authenticated user is required")
	}

	var request models.StockRequest
	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockStockRequest(tx, requestId, &request); err != nil {
			return err
		}
		switch request.Status {
		case models.StockRequestStatusPending:
			// nothing posted yet
		case models.StockRequestStatusAssigned:
			var movements []*models.StockMovement
			err := tx.Where("reference = ? AND is_reversal = 0 AND reversed_by_movement_id IS NULL", request.RequestNumber).
				Find(&movements).Error
			if err != nil {
				return utils.WrapStorage("movement lookup", err)
			}
			for _, movement := range movements {
				if _, err := models.ReverseMovement(tx, movement.ID); err != nil {
					return err
				}
			}
		default:
			return &utils.InvalidTransitionError{
				Subject: "stock request",
				From:    string(request.Status),
				To:      string(models.StockRequestStatusCancelled),
			}
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":       models.StockRequestStatusCancelled,
			"cancelled_by": userId,
			"cancelled_at": now,
		}
		if err := tx.Model(&request).Updates(updates).Error; err != nil {
			return utils.WrapStorage("stock request cancel", err)
		}
		request.CancelledBy = &userId
		request.CancelledAt = &now

		models.LogActivity(ctx, tx, "stock_request_cancelled",
			"Cancelled stock request "+request.RequestNumber, "stock_requests", request.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func lockStockRequest(tx *gorm.DB, requestId int, request *models.StockRequest) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("StockRequestDetails").
		Where("id = ?", requestId).
		First(request).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.ErrRecordNotFound
	}
	if err != nil {
		return utils.WrapStorage("stock request lock", err)
	}
	return nil
}

func requireRole(ctx context.Context, roles ...models.UserRole) (int, string, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return 0, "", utils.NewValidationError("actor", "authenticated user is required")
	}
	role, _ := utils.GetUserRoleFromContext(ctx)
	for _, allowed := range roles {
		if role == string(allowed) {
			return userId, role, nil
		}
	}
	return 0, role, utils.NewValidationError("actor", "role "+role+" may not perform this action")
}

func checkConfirmAuthority(ctx context.Context, request *models.StockRequest, userId int) error {
	if request.DestinationVehicleId != nil {
		vehicle, err := models.GetVehicle(ctx, *request.DestinationVehicleId)
		if err != nil {
			return err
		}
		if vehicle.InChargeId == nil || *vehicle.InChargeId != userId {
			return utils.NewValidationError("actor", "only the vehicle's in-charge propagandist may confirm")
		}
		return nil
	}
	role, _ := utils.GetUserRoleFromContext(ctx)
	if role != string(models.UserRoleWarehouse) && role != string(models.UserRoleBrandManager) {
		return utils.NewValidationError("actor", "role "+role+" may not confirm this delivery")
	}
	return nil
}
