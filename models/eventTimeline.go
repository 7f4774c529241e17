package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spdhub/spdhub_backend/utils"
	"gorm.io/gorm"
)

// EventConflict describes one overlapping booking with enough detail for
// the caller to render a precise diagnostic.
type EventConflict struct {
	ResourceType ResourceType `json:"resource_type"`
	ResourceId   int          `json:"resource_id"`
	EventId      int          `json:"event_id"`
	EventName    string       `json:"event_name"`
	StartTime    time.Time    `json:"start_time"`
	EndTime      time.Time    `json:"end_time"`
}

// ConflictError reports every overlapping event found on every checked
// axis, not just the first.
type ConflictError struct {
	Conflicts []EventConflict
}

func (e *ConflictError) Error() string {
	parts := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		parts = append(parts, fmt.Sprintf("%s %d booked by event %d (%s) %s-%s",
			c.ResourceType, c.ResourceId, c.EventId, c.EventName,
			c.StartTime.Format("15:04"), c.EndTime.Format("15:04")))
	}
	return "scheduling conflict: " + strings.Join(parts, "; ")
}

// Overlaps reports half-open interval overlap: [start, end) windows that
// merely touch at a boundary do not conflict.
func Overlaps(start, end, otherStart, otherEnd time.Time) bool {
	return start.Before(otherEnd) && otherStart.Before(end)
}

// CheckAvailability returns the non-cancelled events of the resource whose
// windows overlap [start, end) on the given date, sorted by start time.
// An empty result means the window is free. Zero-length or inverted
// windows are a validation error, never "always free".
func CheckAvailability(tx *gorm.DB, resourceType ResourceType, resourceId int, date time.Time, start, end time.Time) ([]EventConflict, error) {
	if !end.After(start) {
		return nil, utils.NewValidationError("end_time", "event window must end after it starts")
	}

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

	var events []Event
	err := tx.
		Where(column+" = ? AND event_date = ? AND status <> ?", resourceId, date, EventStatusCancelled).
		Order("start_time").
		Find(&events).Error
	if err != nil {
		return nil, utils.WrapStorage("availability check", err)
	}

	conflicts := make([]EventConflict, 0)
	for _, event := range events {
		if Overlaps(start, end, event.StartTime, event.EndTime) {
			conflicts = append(conflicts, EventConflict{
				ResourceType: resourceType,
				ResourceId:   resourceId,
				EventId:      event.ID,
				EventName:    event.Name,
				StartTime:    event.StartTime,
				EndTime:      event.EndTime,
			})
		}
	}
	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].StartTime.Before(conflicts[j].StartTime) })
	return conflicts, nil
}

// AcquireScheduleLock serializes scheduling per (resource, date) across
// instances using MySQL advisory locks.
// NOTE: GET_LOCK is connection-scoped. Callers must acquire on a pinned
// connection that outlives the scheduling transaction and release only
// after the commit, or a concurrent check can run against a snapshot
// that predates the commit.
func AcquireScheduleLock(tx *gorm.DB, resourceType ResourceType, resourceId int, date time.Time) error {
	lockName := scheduleLockName(resourceType, resourceId, date)
	var ok int
	if err := tx.Raw("SELECT GET_LOCK(?, 30)", lockName).Scan(&ok).Error; err != nil {
		return utils.WrapStorage("schedule lock", err)
	}
	if ok != 1 {
		return fmt.Errorf("could not acquire schedule lock %s", lockName)
	}
	return nil
}

func ReleaseScheduleLock(tx *gorm.DB, resourceType ResourceType, resourceId int, date time.Time) {
	lockName := scheduleLockName(resourceType, resourceId, date)
	var ok int
	_ = tx.Raw("SELECT RELEASE_LOCK(?)", lockName).Scan(&ok).Error
}

func scheduleLockName(resourceType ResourceType, resourceId int, date time.Time) string {
	return fmt.Sprintf("schedule:%s:%d:%s", resourceType, resourceId, date.Format("2006-01-02"))
}
