package models

import (
	"log"

	"github.com/spdhub/spdhub_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&User{},
		&Brand{}, &SamplingCategory{}, &Product{},
		&Vehicle{}, &TemporaryLocation{},
		&StockLocation{}, &StockEntry{}, &StockMovement{},
		&Event{},
		&StockRequest{}, &StockRequestDetail{}, &OBDAcknowledgement{},
		&DocumentNumber{},
		&History{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
