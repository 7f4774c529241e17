package models

type UserRole string

const (
	UserRoleBrandManager UserRole = "brand_manager"
	UserRolePropagandist UserRole = "propagandist"
	UserRoleWarehouse    UserRole = "warehouse"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleBrandManager, UserRolePropagandist, UserRoleWarehouse:
		return true
	}
	return false
}

type ProductType string

const (
	ProductTypeSamplingMaterial ProductType = "sampling_material"
	ProductTypeTodFlap          ProductType = "tod_flap"
	ProductTypePremiumGift      ProductType = "premium_gift"
)

func (t ProductType) Valid() bool {
	switch t {
	case ProductTypeSamplingMaterial, ProductTypeTodFlap, ProductTypePremiumGift:
		return true
	}
	return false
}

type CategoryType string

const (
	CategoryTypeFree CategoryType = "free"
	CategoryTypePaid CategoryType = "paid"
)

type StockLocationType string

const (
	StockLocationTypeWarehouse StockLocationType = "warehouse"
	StockLocationTypeVehicle   StockLocationType = "vehicle"
	StockLocationTypeTempLoc   StockLocationType = "temporary_location"
)

type ResourceType string

const (
	ResourceTypeVehicle      ResourceType = "vehicle"
	ResourceTypePropagandist ResourceType = "propagandist"
	ResourceTypeTempLocation ResourceType = "temporary_location"
)

type EventStatus string

const (
	EventStatusScheduled  EventStatus = "scheduled"
	EventStatusInProgress EventStatus = "in_progress"
	EventStatusClosed     EventStatus = "closed"
	EventStatusCancelled  EventStatus = "cancelled"
)

type EventLocationType string

const (
	EventLocationTypeVehicle EventLocationType = "vehicle"
	EventLocationTypeTempLoc EventLocationType = "temporary_location"
	EventLocationTypeCustom  EventLocationType = "custom"
)

type StockRequestStatus string

const (
	StockRequestStatusPending   StockRequestStatus = "pending"
	StockRequestStatusAssigned  StockRequestStatus = "assigned"
	StockRequestStatusConfirmed StockRequestStatus = "confirmed"
	StockRequestStatusCancelled StockRequestStatus = "cancelled"
)

type MovementReason string

const (
	MovementReasonWarehouseAssignment MovementReason = "warehouse_assignment"
	MovementReasonFieldConfirmation   MovementReason = "field_confirmation"
	MovementReasonManualAdjustment    MovementReason = "manual_adjustment"
	MovementReasonReversal            MovementReason = "reversal"
)

type DocumentKind string

const (
	DocumentKindStockRequest DocumentKind = "REQ"
	DocumentKindOBD          DocumentKind = "OBD"
)
