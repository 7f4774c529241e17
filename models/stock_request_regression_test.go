package models_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spdhub/spdhub_backend/config"
	"github.com/spdhub/spdhub_backend/models"
	"github.com/spdhub/spdhub_backend/utils"
	"github.com/spdhub/spdhub_backend/workflow"
	"gorm.io/gorm"
)

// End-to-end regression of the request lifecycle against real MySQL+Redis:
// a 100-unit warehouse serves a 40-unit request through assign and confirm,
// a 70-unit request is refused atomically, and cancelling an assigned
// request restores the warehouse through reversals.
func TestStockRequestLifecycle(t *testing.T) {
	ctx, fixture := setupIntegration(t)

	propagandistCtx := identityFor(ctx, fixture.propagandist.ID, fixture.propagandist.Name, models.UserRolePropagandist)
	warehouseCtx := identityFor(ctx, fixture.storekeeper.ID, fixture.storekeeper.Name, models.UserRoleWarehouse)

	seedWarehouse(t, ctx, fixture, 100)

	// R1: 40 units to the vehicle.
	r1, err := workflow.SubmitStockRequest(propagandistCtx, &models.NewStockRequest{
		DestinationVehicleId: &fixture.vehicle.ID,
		Details: []models.NewStockRequestDetail{
			{ProductId: fixture.product.ID, RequestedQty: decimal.NewFromInt(40)},
		},
	})
	if err != nil {
		t.Fatalf("submit R1: %v", err)
	}
	if r1.Status != models.StockRequestStatusPending || r1.RequestNumber == "" {
		t.Fatalf("R1 not pending with number: %+v", r1)
	}

	r1, err = workflow.AssignStockRequest(warehouseCtx, r1.ID)
	if err != nil {
		t.Fatalf("assign R1: %v", err)
	}
	if r1.ObdNumber == nil || *r1.ObdNumber == "" {
		t.Fatal("assignment must issue an OBD number")
	}
	assertBalance(t, ctx, fixture.warehouse.ID, fixture.product.ID, 60)
	assertBalance(t, ctx, fixture.vehicleLocation.ID, fixture.product.ID, 0)

	// R2: 70 units cannot be served from the remaining 60.
	r2, err := workflow.SubmitStockRequest(propagandistCtx, &models.NewStockRequest{
		DestinationVehicleId: &fixture.vehicle.ID,
		Details: []models.NewStockRequestDetail{
			{ProductId: fixture.product.ID, RequestedQty: decimal.NewFromInt(70)},
		},
	})
	if err != nil {
		t.Fatalf("submit R2: %v", err)
	}
	if _, err := workflow.AssignStockRequest(warehouseCtx, r2.ID); !errors.Is(err, utils.ErrInsufficientStock) {
		t.Fatalf("assign R2: want insufficient stock, got %v", err)
	}
	assertBalance(t, ctx, fixture.warehouse.ID, fixture.product.ID, 60)
	refetched, err := models.GetStockRequest(ctx, r2.ID)
	if err != nil {
		t.Fatalf("refetch R2: %v", err)
	}
	if refetched.Status != models.StockRequestStatusPending {
		t.Fatalf("failed assignment must leave R2 pending, got %s", refetched.Status)
	}

	// Confirm R1 as the vehicle's in-charge propagandist.
	r1, err = workflow.ConfirmStockRequest(propagandistCtx, r1.ID, "Galle Face sampling day 1")
	if err != nil {
		t.Fatalf("confirm R1: %v", err)
	}
	if r1.Status != models.StockRequestStatusConfirmed {
		t.Fatalf("R1 status = %s", r1.Status)
	}
	assertBalance(t, ctx, fixture.vehicleLocation.ID, fixture.product.ID, 40)

	acks, err := models.GetAcknowledgementsForRequest(ctx, r1.ID)
	if err != nil {
		t.Fatalf("fetch acknowledgements: %v", err)
	}
	if len(acks) != 1 || acks[0].ObdNumber != *r1.ObdNumber {
		t.Fatalf("expected one acknowledgement for %s, got %+v", *r1.ObdNumber, acks)
	}

	// A second confirm is an illegal transition and leaves the balance alone.
	if _, err := workflow.ConfirmStockRequest(propagandistCtx, r1.ID, "again"); err == nil {
		t.Fatal("second confirm must be rejected")
	}
	assertBalance(t, ctx, fixture.vehicleLocation.ID, fixture.product.ID, 40)

	// R3: assign then cancel; reversals restore the warehouse.
	r3, err := workflow.SubmitStockRequest(propagandistCtx, &models.NewStockRequest{
		DestinationVehicleId: &fixture.vehicle.ID,
		Details: []models.NewStockRequestDetail{
			{ProductId: fixture.product.ID, RequestedQty: decimal.NewFromInt(10)},
		},
	})
	if err != nil {
		t.Fatalf("submit R3: %v", err)
	}
	if _, err := workflow.AssignStockRequest(warehouseCtx, r3.ID); err != nil {
		t.Fatalf("assign R3: %v", err)
	}
	assertBalance(t, ctx, fixture.warehouse.ID, fixture.product.ID, 50)

	if _, err := workflow.CancelStockRequest(warehouseCtx, r3.ID); err != nil {
		t.Fatalf("cancel R3: %v", err)
	}
	assertBalance(t, ctx, fixture.warehouse.ID, fixture.product.ID, 60)

	movements, err := models.GetMovementsByReference(ctx, r3.RequestNumber)
	if err != nil {
		t.Fatalf("fetch movements: %v", err)
	}
	var reversals int
	for _, m := range movements {
		if m.IsReversal {
			reversals++
		}
	}
	if reversals != 1 {
		t.Fatalf("expected one reversal row under %s, got %d", r3.RequestNumber, reversals)
	}
}

// Double-booking regression: E2 overlapping E1 on the same vehicle is
// rejected naming E1; E3 starting exactly when E1 ends is accepted.
func TestEventConflictDetection(t *testing.T) {
	ctx, fixture := setupIntegration(t)
	managerCtx := identityFor(ctx, fixture.manager.ID, fixture.manager.Name, models.UserRoleBrandManager)

	day := time.Now().AddDate(0, 0, 2)
	at := func(hour int) time.Time {
		return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, time.UTC)
	}

	e1, err := models.CreateEvent(managerCtx, &models.NewEvent{
		Name:                   "Morning tasting",
		StartDateTime:          at(9),
		EndDateTime:            at(12),
		VehicleId:              &fixture.vehicle.ID,
		PropagandistId:         &fixture.propagandist.ID,
		ApprovedSamplingAmount: 200,
	})
	if err != nil {
		t.Fatalf("create E1: %v", err)
	}

	_, err = models.CreateEvent(managerCtx, &models.NewEvent{
		Name:                   "Lunch rush",
		StartDateTime:          at(11),
		EndDateTime:            at(13),
		VehicleId:              &fixture.vehicle.ID,
		ApprovedSamplingAmount: 100,
	})
	var conflictErr *models.ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("create E2: want conflict, got %v", err)
	}
	found := false
	for _, c := range conflictErr.Conflicts {
		if c.EventId == e1.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("conflict must name E1 (%d): %+v", e1.ID, conflictErr.Conflicts)
	}

	// Back-to-back booking at the boundary is legal.
	if _, err := models.CreateEvent(managerCtx, &models.NewEvent{
		Name:                   "Afternoon round",
		StartDateTime:          at(12),
		EndDateTime:            at(14),
		VehicleId:              &fixture.vehicle.ID,
		ApprovedSamplingAmount: 100,
	}); err != nil {
		t.Fatalf("create E3: %v", err)
	}

	// The propagandist axis conflicts independently of the vehicle.
	_, err = models.CreateEvent(managerCtx, &models.NewEvent{
		Name:                   "Side stall",
		StartDateTime:          at(10),
		EndDateTime:            at(11),
		CustomAddress:          "No 5, Marine Drive",
		PropagandistId:         &fixture.propagandist.ID,
		ApprovedSamplingAmount: 50,
	})
	if !errors.As(err, &conflictErr) {
		t.Fatalf("propagandist double-booking must conflict, got %v", err)
	}
}

// Replaying a movement with the same (reference, reason, location, product)
// returns the already-applied row instead of posting a second one.
func TestLedgerReplayProtection(t *testing.T) {
	ctx, fixture := setupIntegration(t)
	seedWarehouse(t, ctx, fixture, 100)

	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		first, err := models.DebitStock(tx, fixture.warehouse.ID, fixture.product.ID,
			decimal.NewFromInt(25), models.MovementReasonWarehouseAssignment, "REPLAY-DEBIT")
		if err != nil {
			return err
		}
		replay, err := models.DebitStock(tx, fixture.warehouse.ID, fixture.product.ID,
			decimal.NewFromInt(25), models.MovementReasonWarehouseAssignment, "REPLAY-DEBIT")
		if err != nil {
			return err
		}
		if replay.ID != first.ID {
			t.Fatalf("replayed debit posted a new movement: %d vs %d", replay.ID, first.ID)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("replay debit: %v", err)
	}
	assertBalance(t, ctx, fixture.warehouse.ID, fixture.product.ID, 75)

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		first, err := models.CreditStock(tx, fixture.vehicleLocation.ID, fixture.product.ID,
			decimal.NewFromInt(25), models.MovementReasonFieldConfirmation, "REPLAY-CREDIT")
		if err != nil {
			return err
		}
		replay, err := models.CreditStock(tx, fixture.vehicleLocation.ID, fixture.product.ID,
			decimal.NewFromInt(25), models.MovementReasonFieldConfirmation, "REPLAY-CREDIT")
		if err != nil {
			return err
		}
		if replay.ID != first.ID {
			t.Fatalf("replayed credit posted a new movement: %d vs %d", replay.ID, first.ID)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("replay credit: %v", err)
	}
	assertBalance(t, ctx, fixture.vehicleLocation.ID, fixture.product.ID, 25)

	movements, err := models.GetMovementsByReference(ctx, "REPLAY-DEBIT")
	if err != nil {
		t.Fatalf("fetch movements: %v", err)
	}
	if len(movements) != 1 {
		t.Fatalf("expected one movement under REPLAY-DEBIT, got %d", len(movements))
	}
}

// A transfer debits and credits in one journal row; a short source rejects
// the whole move with neither side changed.
func TestStockTransferAtomicity(t *testing.T) {
	ctx, fixture := setupIntegration(t)
	seedWarehouse(t, ctx, fixture, 100)

	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		movement, err := models.TransferStock(tx, fixture.warehouse.ID, fixture.vehicleLocation.ID,
			fixture.product.ID, decimal.NewFromInt(30), models.MovementReasonManualAdjustment, "XFER-1")
		if err != nil {
			return err
		}
		if movement.SourceLocationId == nil || movement.DestinationLocationId == nil {
			t.Fatalf("transfer must journal both sides: %+v", movement)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	assertBalance(t, ctx, fixture.warehouse.ID, fixture.product.ID, 70)
	assertBalance(t, ctx, fixture.vehicleLocation.ID, fixture.product.ID, 30)

	// Replaying the same transfer reference applies nothing new.
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := models.TransferStock(tx, fixture.warehouse.ID, fixture.vehicleLocation.ID,
			fixture.product.ID, decimal.NewFromInt(30), models.MovementReasonManualAdjustment, "XFER-1")
		return err
	})
	if err != nil {
		t.Fatalf("transfer replay: %v", err)
	}
	assertBalance(t, ctx, fixture.warehouse.ID, fixture.product.ID, 70)
	assertBalance(t, ctx, fixture.vehicleLocation.ID, fixture.product.ID, 30)

	// Overdraw: no partial transfer is observable.
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := models.TransferStock(tx, fixture.warehouse.ID, fixture.vehicleLocation.ID,
			fixture.product.ID, decimal.NewFromInt(500), models.MovementReasonManualAdjustment, "XFER-2")
		return err
	})
	if !errors.Is(err, utils.ErrInsufficientStock) {
		t.Fatalf("overdrawn transfer: want insufficient stock, got %v", err)
	}
	assertBalance(t, ctx, fixture.warehouse.ID, fixture.product.ID, 70)
	assertBalance(t, ctx, fixture.vehicleLocation.ID, fixture.product.ID, 30)
}

// A persistence failure while locking a request surfaces as a storage
// error; only a genuinely missing request reads as record not found.
func TestRequestLockStorageFailure(t *testing.T) {
	ctx, fixture := setupIntegration(t)
	propagandistCtx := identityFor(ctx, fixture.propagandist.ID, fixture.propagandist.Name, models.UserRolePropagandist)

	request, err := workflow.SubmitStockRequest(propagandistCtx, &models.NewStockRequest{
		DestinationVehicleId: &fixture.vehicle.ID,
		Details: []models.NewStockRequestDetail{
			{ProductId: fixture.product.ID, RequestedQty: decimal.NewFromInt(5)},
		},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := workflow.CancelStockRequest(propagandistCtx, 999999); !errors.Is(err, utils.ErrRecordNotFound) {
		t.Fatalf("missing request: want record not found, got %v", err)
	}

	if err := config.GetDB().WithContext(ctx).Exec("DROP TABLE stock_request_details").Error; err != nil {
		t.Fatalf("drop detail table: %v", err)
	}
	_, err = workflow.CancelStockRequest(propagandistCtx, request.ID)
	if err == nil {
		t.Fatal("cancel must fail once the detail table is gone")
	}
	if errors.Is(err, utils.ErrRecordNotFound) {
		t.Fatalf("storage failure must not read as record not found: %v", err)
	}
	var storageErr *utils.StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("want a storage error, got %v", err)
	}
}

// Concurrent attempts to book the same vehicle window must serialize: the
// winner's commit is visible to every loser's conflict check, so exactly
// one booking lands.
func TestConcurrentSchedulingSerialized(t *testing.T) {
	ctx, fixture := setupIntegration(t)
	managerCtx := identityFor(ctx, fixture.manager.ID, fixture.manager.Name, models.UserRoleBrandManager)

	day := time.Now().AddDate(0, 0, 3)
	start := time.Date(day.Year(), day.Month(), day.Day(), 15, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	const attempts = 6
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := models.CreateEvent(managerCtx, &models.NewEvent{
				Name:                   fmt.Sprintf("Evening stall %d", n),
				StartDateTime:          start,
				EndDateTime:            end,
				VehicleId:              &fixture.vehicle.ID,
				ApprovedSamplingAmount: 50,
			})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var created, conflicted int
	for err := range results {
		var conflictErr *models.ConflictError
		switch {
		case err == nil:
			created++
		case errors.As(err, &conflictErr):
			conflicted++
		default:
			t.Fatalf("unexpected scheduling error: %v", err)
		}
	}
	if created != 1 || conflicted != attempts-1 {
		t.Fatalf("want 1 booking and %d conflicts, got %d and %d", attempts-1, created, conflicted)
	}

	events, err := models.GetEventsForResource(ctx, models.ResourceTypeVehicle, fixture.vehicle.ID,
		time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("fetch vehicle events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected exactly one committed event, got %d", len(events))
	}
}

type integrationFixture struct {
	manager         *models.User
	storekeeper     *models.User
	propagandist    *models.User
	product         *models.Product
	warehouse       *models.StockLocation
	vehicle         *models.Vehicle
	vehicleLocation *models.StockLocation
}

func setupIntegration(t *testing.T) (context.Context, *integrationFixture) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "spdhub_test")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	adminCtx := identityFor(ctx, 1, "Setup", models.UserRoleBrandManager)

	manager, err := models.CreateUser(adminCtx, &models.NewUser{
		Username: "manager",
		Email:    "manager@test.local",
		Name:     "Manager",
		Role:     models.UserRoleBrandManager,
	})
	if err != nil {
		t.Fatalf("create manager: %v", err)
	}
	storekeeper, err := models.CreateUser(adminCtx, &models.NewUser{
		Username: "stores",
		Email:    "stores@test.local",
		Name:     "Storekeeper",
		Role:     models.UserRoleWarehouse,
	})
	if err != nil {
		t.Fatalf("create storekeeper: %v", err)
	}
	propagandist, err := models.CreateUser(adminCtx, &models.NewUser{
		Username: "field",
		Email:    "field@test.local",
		Name:     "Field Promoter",
		Role:     models.UserRolePropagandist,
	})
	if err != nil {
		t.Fatalf("create propagandist: %v", err)
	}

	product, err := models.CreateProduct(adminCtx, &models.NewProduct{
		Name: "Tea sachet",
		Code: "TEA-01",
		Unit: "pcs",
		Type: models.ProductTypeSamplingMaterial,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	warehouse, err := models.CreateStockLocation(adminCtx, &models.NewStockLocation{
		Name: "Central Warehouse",
		Type: models.StockLocationTypeWarehouse,
	})
	if err != nil {
		t.Fatalf("create warehouse: %v", err)
	}

	vehicle, err := models.CreateVehicle(adminCtx, &models.NewVehicle{
		Name:        "Truck 1",
		PlateNumber: "WP-TEST-0001",
		InChargeId:  &propagandist.ID,
	})
	if err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	vehicleLocation, err := models.GetStockLocationForVehicle(adminCtx, vehicle.ID)
	if err != nil {
		t.Fatalf("vehicle stock location: %v", err)
	}

	return ctx, &integrationFixture{
		manager:         manager,
		storekeeper:     storekeeper,
		propagandist:    propagandist,
		product:         product,
		warehouse:       warehouse,
		vehicle:         vehicle,
		vehicleLocation: vehicleLocation,
	}
}

func identityFor(ctx context.Context, userId int, name string, role models.UserRole) context.Context {
	ctx = utils.SetUserIdInContext(ctx, userId)
	ctx = utils.SetUserNameInContext(ctx, name)
	return utils.SetUserRoleInContext(ctx, string(role))
}

func seedWarehouse(t *testing.T, ctx context.Context, fixture *integrationFixture, qty int64) {
	t.Helper()
	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := models.CreditStock(tx, fixture.warehouse.ID, fixture.product.ID,
			decimal.NewFromInt(qty), models.MovementReasonManualAdjustment, "OPENING-TEST")
		return err
	})
	if err != nil {
		t.Fatalf("seed warehouse: %v", err)
	}
	assertBalance(t, ctx, fixture.warehouse.ID, fixture.product.ID, qty)
}

func assertBalance(t *testing.T, ctx context.Context, locationId, productId int, want int64) {
	t.Helper()
	balance, err := models.GetBalance(ctx, locationId, productId)
	if err != nil {
		t.Fatalf("GetBalance(%d,%d): %v", locationId, productId, err)
	}
	if !balance.Equal(decimal.NewFromInt(want)) {
		t.Fatalf("balance at location %d = %s, want %d", locationId, balance, want)
	}
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("spdhub-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("spdhub-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=spdhub_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
