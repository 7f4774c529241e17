package models

import (
	"context"
	"time"

	"github.com/spdhub/spdhub_backend/config"
	"github.com/spdhub/spdhub_backend/utils"
	"gorm.io/gorm"
)

type Event struct {
	ID                     int               `gorm:"primary_key" json:"id"`
	Name                   string            `gorm:"size:255;not null" json:"name" binding:"required"`
	BrandId                *int              `gorm:"index" json:"brand_id"`
	EventDate              time.Time         `gorm:"index;not null" json:"event_date"`
	StartTime              time.Time         `gorm:"not null" json:"start_time"`
	EndTime                time.Time         `gorm:"not null" json:"end_time"`
	LocationType           EventLocationType `gorm:"type:enum('vehicle','temporary_location','custom');not null" json:"location_type"`
	VehicleId              *int              `gorm:"index" json:"vehicle_id"`
	TempLocationId         *int              `gorm:"index" json:"temp_location_id"`
	CustomAddress          string            `gorm:"type:text" json:"custom_address"`
	PropagandistId         *int              `gorm:"index" json:"propagandist_id"`
	ApprovedSamplingAmount int               `gorm:"not null" json:"approved_sampling_amount"`
	ContactPerson          string            `gorm:"size:100" json:"contact_person"`
	ContactPhone           string            `gorm:"size:20" json:"contact_phone"`
	SpecialInstructions    string            `gorm:"type:text" json:"special_instructions"`
	AckRequired            *bool             `gorm:"not null;default:false" json:"ack_required"`
	Status                 EventStatus       `gorm:"type:enum('scheduled','in_progress','closed','cancelled');default:'scheduled';index" json:"status"`
	CreatedBy              int               `gorm:"index;not null" json:"created_by"`
	CreatedAt              time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewEvent struct {
	Name                   string    `json:"name" binding:"required"`
	BrandId                *int      `json:"brand_id"`
	StartDateTime          time.Time `json:"start_date_time" binding:"required"`
	EndDateTime            time.Time `json:"end_date_time" binding:"required"`
	VehicleId              *int      `json:"vehicle_id"`
	TempLocationId         *int      `json:"temp_location_id"`
	CustomAddress          string    `json:"custom_address"`
	PropagandistId         *int      `json:"propagandist_id"`
	ApprovedSamplingAmount int       `json:"approved_sampling_amount" binding:"required"`
	ContactPerson          string    `json:"contact_person"`
	ContactPhone           string    `json:"contact_phone"`
	SpecialNotes           string    `json:"special_notes"`
	AckRequired            bool      `json:"ack_required"`
}

func (input *NewEvent) locationType() (EventLocationType, error) {
	// Exactly one of vehicle, temporary location, or free-text address.
	// The original client-side script allowed selecting several at once;
	// this is enforced server-side.
	set := 0
	if input.VehicleId != nil {
		set++
	}
	if input.TempLocationId != nil {
		set++
	}
	if input.CustomAddress != "" {
		set++
	}
	if set != 1 {
		return "", utils.NewValidationError("location", "exactly one of vehicle, temporary location or address must be set")
	}
	switch {
	case input.VehicleId != nil:
		return EventLocationTypeVehicle, nil
	case input.TempLocationId != nil:
		return EventLocationTypeTempLoc, nil
	default:
		return EventLocationTypeCustom, nil
	}
}

func (input *NewEvent) validate(ctx context.Context, now time.Time) (EventLocationType, error) {
	locationType, err := input.locationType()
	if err != nil {
		return "", err
	}
	if !input.StartDateTime.After(now) {
		return "", utils.NewValidationError("start_date_time", "start time must be in the future")
	}
	if !input.EndDateTime.After(input.StartDateTime) {
		return "", utils.NewValidationError("end_date_time", "end time must be after start time")
	}
	startY, startM, startD := input.StartDateTime.Date()
	endY, endM, endD := input.EndDateTime.Date()
	if startY != endY || startM != endM || startD != endD {
		return "", utils.NewValidationError("end_date_time", "event must end on the same calendar date it starts")
	}
	if input.ApprovedSamplingAmount < 1 {
		return "", utils.NewValidationError("approved_sampling_amount", "sampling amount must be at least 1")
	}
	if input.BrandId != nil {
		if err := utils.ValidateResourceId[Brand](ctx, *input.BrandId); err != nil {
			return "", utils.NewValidationError("brand_id", "brand not found")
		}
	}
	if input.VehicleId != nil {
		count, err := utils.ResourceCountWhere[Vehicle](ctx, "id = ? AND is_active = 1", *input.VehicleId)
		if err != nil {
			return "", err
		}
		if count <= 0 {
			return "", utils.NewValidationError("vehicle_id", "vehicle not found or inactive")
		}
	}
	if input.TempLocationId != nil {
		count, err := utils.ResourceCountWhere[TemporaryLocation](ctx, "id = ? AND is_active = 1", *input.TempLocationId)
		if err != nil {
			return "", err
		}
		if count <= 0 {
			return "", utils.NewValidationError("temp_location_id", "temporary location not found or inactive")
		}
	}
	if input.PropagandistId != nil {
		count, err := utils.ResourceCountWhere[User](ctx, "id = ? AND role = ? AND is_active = 1", *input.PropagandistId, UserRolePropagandist)
		if err != nil {
			return "", err
		}
		if count <= 0 {
			return "", utils.NewValidationError("propagandist_id", "propagandist not found or inactive")
		}
	}
	return locationType, nil
}

// scheduledResources lists the axes whose timelines must be free: the
// physical location (vehicle or temporary location) and the propagandist.
func (input *NewEvent) scheduledResources() []struct {
	Type ResourceType
	Id   int
} {
	resources := make([]struct {
		Type ResourceType
		Id   int
	}, 0, 2)
	if input.VehicleId != nil {
		resources = append(resources, struct {
			Type ResourceType
			Id   int
		}{ResourceTypeVehicle, *input.VehicleId})
	}
	if input.TempLocationId != nil {
		resources = append(resources, struct {
			Type ResourceType
			Id   int
		}{ResourceTypeTempLocation, *input.TempLocationId})
	}
	if input.PropagandistId != nil {
		resources = append(resources, struct {
			Type ResourceType
			Id   int
		}{ResourceTypePropagandist, *input.PropagandistId})
	}
	return resources
}

// CreateEvent validates the proposal, checks every scheduled resource for
// overlapping bookings and persists the event, all inside one transaction
// holding per-(resource, date) advisory locks. A concurrent attempt on the
// same resource sees this event committed before its own conflict check.
func CreateEvent(ctx context.Context, input *NewEvent) (*Event, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return nil, utils.NewValidationError("actor", "authenticated user is required")
	}

	locationType, err := input.validate(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	eventDate := time.Date(input.StartDateTime.Year(), input.StartDateTime.Month(), input.StartDateTime.Day(), 0, 0, 0, 0, time.UTC)
	resources := input.scheduledResources()

	event := Event{
		Name:                   input.Name,
		BrandId:                input.BrandId,
		EventDate:              eventDate,
		StartTime:              input.StartDateTime,
		EndTime:                input.EndDateTime,
		LocationType:           locationType,
		VehicleId:              input.VehicleId,
		TempLocationId:         input.TempLocationId,
		CustomAddress:          input.CustomAddress,
		PropagandistId:         input.PropagandistId,
		ApprovedSamplingAmount: input.ApprovedSamplingAmount,
		ContactPerson:          input.ContactPerson,
		ContactPhone:           input.ContactPhone,
		SpecialInstructions:    input.SpecialNotes,
		AckRequired:            &input.AckRequired,
		Status:                 EventStatusScheduled,
		CreatedBy:              userId,
	}

	// GET_LOCK is connection-scoped, so the locks are taken on a pinned
	// connection around the whole transaction and released only after the
	// commit. Releasing inside the transaction closure would let a second
	// scheduler run its conflict check before this event is committed.
	db := config.GetDB()
	err = db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		for _, resource := range resources {
			if err := AcquireScheduleLock(conn, resource.Type, resource.Id, eventDate); err != nil {
				return err
			}
			defer ReleaseScheduleLock(conn, resource.Type, resource.Id, eventDate)
		}

		return conn.Transaction(func(tx *gorm.DB) error {
			// An event may be infeasible on both axes; report them together.
			allConflicts := make([]EventConflict, 0)
			for _, resource := range resources {
				conflicts, err := CheckAvailability(tx, resource.Type, resource.Id, eventDate, input.StartDateTime, input.EndDateTime)
				if err != nil {
					return err
				}
				allConflicts = append(allConflicts, conflicts...)
			}
			if len(allConflicts) > 0 {
				return &ConflictError{Conflicts: allConflicts}
			}

			if err := tx.Create(&event).Error; err != nil {
				return utils.WrapStorage("event create", err)
			}
			LogActivity(ctx, tx, "event_created", "Created event "+event.Name, "events", event.ID)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &event, nil
}

var eventTransitions = map[EventStatus][]EventStatus{
	EventStatusScheduled:  {EventStatusInProgress, EventStatusCancelled},
	EventStatusInProgress: {EventStatusClosed, EventStatusCancelled},
	EventStatusClosed:     {},
	EventStatusCancelled:  {},
}

// UpdateEventStatus applies a lifecycle transition. The window never moves,
// so past conflict decisions stay valid.
func UpdateEventStatus(ctx context.Context, id int, next EventStatus) (*Event, error) {
	event, err := utils.FetchModel[Event](ctx, id)
	if err != nil {
		return nil, err
	}

	legal := false
	for _, allowed := range eventTransitions[event.Status] {
		if allowed == next {
			legal = true
			break
		}
	}
	if !legal {
		return nil, &utils.InvalidTransitionError{Subject: "event", From: string(event.Status), To: string(next)}
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Event{}).Where("id = ?", event.ID).
			Update("status", next).Error; err != nil {
			return utils.WrapStorage("event status update", err)
		}
		LogActivity(ctx, tx, "event_status_changed", "Event "+event.Name+" -> "+string(next), "events", event.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	event.Status = next
	return event, nil
}

func GetEvent(ctx context.Context, id int) (*Event, error) {
	return utils.FetchModel[Event](ctx, id)
}

// GetEventsForResource returns the active booking set of a resource on a
// date for calendar display.
func GetEventsForResource(ctx context.Context, resourceType ResourceType, resourceId int, date time.Time) ([]*Event, error) {
	var column string
	switch resourceType {
	case ResourceTypeVehicle:
		column = "vehicle_id"
	case ResourceTypePropagandist:
		column = "propagandist_id"
	case ResourceTypeTempLocation:
		column = "temp_location_id"
	default:
		return nil, utils.NewValidationError("resource_type", "unknown resource type")
	}

	db := config.GetDB()
	var results []*Event
	err := db.WithContext(ctx).
		Where(column+" = ? AND event_date = ? AND status <> ?", resourceId, date, EventStatusCancelled).
		Order("start_time").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func GetEventsByDateRange(ctx context.Context, from, to time.Time) ([]*Event, error) {
	db := config.GetDB()
	var results []*Event
	err := db.WithContext(ctx).
		Where("event_date >= ? AND event_date <= ?", from, to).
		Order("event_date, start_time").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
