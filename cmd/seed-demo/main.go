package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spdhub/spdhub_backend/config"
	"github.com/spdhub/spdhub_backend/models"
	"github.com/spdhub/spdhub_backend/utils"
	"gorm.io/gorm"
)

// Seeds a demo dataset: users for every role, a brand with sampling
// categories and products, the central warehouse, two vehicles with their
// stock locations and opening stock. Safe to run once against an empty
// database; reruns fail on the unique constraints.
func main() {
	_ = godotenv.Load()

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	ctx := context.Background()

	manager, err := models.CreateUser(ctx, &models.NewUser{
		Username: "nilusha",
		Email:    "nilusha@spdhub.example",
		Name:     "Nilusha Perera",
		Role:     models.UserRoleBrandManager,
		Phone:    "+94771234501",
	})
	if err != nil {
		log.Fatal(err)
	}

	// Mutations after this point carry the manager's identity.
	ctx = utils.SetUserIdInContext(ctx, manager.ID)
	ctx = utils.SetUserNameInContext(ctx, manager.Name)
	ctx = utils.SetUserRoleInContext(ctx, string(models.UserRoleBrandManager))

	if _, err := models.CreateUser(ctx, &models.NewUser{
		Username: "stores",
		Email:    "stores@spdhub.example",
		Name:     "Central Stores",
		Role:     models.UserRoleWarehouse,
		Phone:    "+94771234502",
	}); err != nil {
		log.Fatal(err)
	}

	kasun, err := models.CreateUser(ctx, &models.NewUser{
		Username: "kasun",
		Email:    "kasun@spdhub.example",
		Name:     "Kasun Silva",
		Role:     models.UserRolePropagandist,
		Phone:    "+94771234503",
	})
	if err != nil {
		log.Fatal(err)
	}

	tharindu, err := models.CreateUser(ctx, &models.NewUser{
		Username: "tharindu",
		Email:    "tharindu@spdhub.example",
		Name:     "Tharindu Fernando",
		Role:     models.UserRolePropagandist,
		Phone:    "+94771234504",
	})
	if err != nil {
		log.Fatal(err)
	}

	brand, err := models.CreateBrand(ctx, &models.NewBrand{
		Name:        "Araliya Tea",
		Code:        "ART",
		Description: "Premium leaf tea range",
	})
	if err != nil {
		log.Fatal(err)
	}

	if _, err := models.CreateSamplingCategory(ctx, &models.NewSamplingCategory{
		BrandId:      brand.ID,
		Name:         "Free tasting cup",
		CategoryType: models.CategoryTypeFree,
	}); err != nil {
		log.Fatal(err)
	}
	if _, err := models.CreateSamplingCategory(ctx, &models.NewSamplingCategory{
		BrandId:      brand.ID,
		Name:         "Paid tasting cup",
		CategoryType: models.CategoryTypePaid,
		CupPrice:     decimal.NewFromInt(50),
	}); err != nil {
		log.Fatal(err)
	}

	products := []*models.NewProduct{
		{Name: "Tea sachet 25g", Code: "ART-S25", BrandId: &brand.ID, Unit: "pcs", Type: models.ProductTypeSamplingMaterial},
		{Name: "Paper cup 120ml", Code: "ART-CUP", BrandId: &brand.ID, Unit: "pcs", Type: models.ProductTypeSamplingMaterial},
		{Name: "Table flap", Code: "ART-FLAP", BrandId: &brand.ID, Unit: "pcs", Type: models.ProductTypeTodFlap},
		{Name: "Branded mug", Code: "ART-MUG", BrandId: &brand.ID, Unit: "pcs", Type: models.ProductTypePremiumGift},
	}
	created := make([]*models.Product, 0, len(products))
	for _, input := range products {
		product, err := models.CreateProduct(ctx, input)
		if err != nil {
			log.Fatal(err)
		}
		created = append(created, product)
	}

	warehouse, err := models.CreateStockLocation(ctx, &models.NewStockLocation{
		Name:    "Central Warehouse",
		Type:    models.StockLocationTypeWarehouse,
		Address: "120 Baseline Road, Colombo 09",
	})
	if err != nil {
		log.Fatal(err)
	}

	truck1, err := models.CreateVehicle(ctx, &models.NewVehicle{
		Name:        "Sampling Truck 1",
		PlateNumber: "WP-CAB-1221",
		BrandId:     &brand.ID,
		InChargeId:  &kasun.ID,
	})
	if err != nil {
		log.Fatal(err)
	}
	if _, err := models.CreateVehicle(ctx, &models.NewVehicle{
		Name:        "Sampling Truck 2",
		PlateNumber: "WP-CAC-3410",
		BrandId:     &brand.ID,
		InChargeId:  &tharindu.ID,
	}); err != nil {
		log.Fatal(err)
	}

	if _, err := models.CreateTemporaryLocation(ctx, &models.NewTemporaryLocation{
		Name:          "Galle Face Green stall",
		LocationType:  "public_event",
		Address:       "Galle Face Green, Colombo 03",
		ContactPerson: "Site office",
		ContactPhone:  "+94112345678",
	}); err != nil {
		log.Fatal(err)
	}

	// Opening stock arrives as manual-adjustment credits so the journal
	// explains every balance from day one.
	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, product := range created {
			_, err := models.CreditStock(tx, warehouse.ID, product.ID, decimal.NewFromInt(500),
				models.MovementReasonManualAdjustment, "OPENING-2026")
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	// A scheduled event so the calendar is not empty on first login.
	day := time.Now().AddDate(0, 0, 3)
	if _, err := models.CreateEvent(ctx, &models.NewEvent{
		Name:                   "Araliya weekend sampling",
		BrandId:                &brand.ID,
		StartDateTime:          time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, time.UTC),
		EndDateTime:            time.Date(day.Year(), day.Month(), day.Day(), 13, 0, 0, 0, time.UTC),
		VehicleId:              &truck1.ID,
		PropagandistId:         &kasun.ID,
		ApprovedSamplingAmount: 300,
		ContactPerson:          "Site office",
		ContactPhone:           "+94112345678",
	}); err != nil {
		log.Fatal(err)
	}

	log.Println("demo data seeded")
}
