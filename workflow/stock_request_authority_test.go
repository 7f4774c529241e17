package workflow

import (
	"context"
	"testing"

	"github.com/spdhub/spdhub_backend/models"
	"github.com/spdhub/spdhub_backend/utils"
)

// DB-free checks of the actor gating. Full workflow coverage lives in the
// integration tests alongside the ledger.

func identityCtx(userId int, role models.UserRole) context.Context {
	ctx := utils.SetUserIdInContext(context.Background(), userId)
	ctx = utils.SetUserNameInContext(ctx, "Test User")
	return utils.SetUserRoleInContext(ctx, string(role))
}

func TestRequireRole(t *testing.T) {
	ctx := identityCtx(7, models.UserRoleWarehouse)

	userId, role, err := requireRole(ctx, models.UserRoleWarehouse)
	if err != nil {
		t.Fatalf("warehouse user rejected: %v", err)
	}
	if userId != 7 || role != string(models.UserRoleWarehouse) {
		t.Errorf("got userId=%d role=%q", userId, role)
	}

	_, _, err = requireRole(ctx, models.UserRoleBrandManager)
	if err == nil {
		t.Fatal("warehouse user accepted as brand manager")
	}
	if !utils.IsValidationError(err) {
		t.Errorf("want validation error, got %v", err)
	}

	if _, _, err := requireRole(context.Background(), models.UserRoleWarehouse); err == nil {
		t.Error("anonymous caller accepted")
	}
}

func TestCheckConfirmAuthorityTempLocation(t *testing.T) {
	tempLocId := 4
	request := &models.StockRequest{DestinationTempLocId: &tempLocId}

	if err := checkConfirmAuthority(identityCtx(1, models.UserRoleWarehouse), request, 1); err != nil {
		t.Errorf("warehouse may confirm temp-location delivery: %v", err)
	}
	if err := checkConfirmAuthority(identityCtx(2, models.UserRoleBrandManager), request, 2); err != nil {
		t.Errorf("brand manager may confirm temp-location delivery: %v", err)
	}
	if err := checkConfirmAuthority(identityCtx(3, models.UserRolePropagandist), request, 3); err == nil {
		t.Error("propagandist must not confirm temp-location delivery")
	}
}
