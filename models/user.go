package models

import (
	"context"
	"strings"
	"time"

	"github.com/spdhub/spdhub_backend/config"
	"github.com/spdhub/spdhub_backend/utils"
)

// User rows are provisioned by the external auth layer; the core reads them
// for role checks and vehicle assignment only.
type User struct {
	ID                int       `gorm:"primary_key" json:"id"`
	Username          string    `gorm:"size:100;uniqueIndex;not null" json:"username" binding:"required"`
	Email             string    `gorm:"size:255;uniqueIndex;not null" json:"email" binding:"required"`
	Name              string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Role              UserRole  `gorm:"type:enum('brand_manager','propagandist','warehouse');not null" json:"role"`
	Phone             string    `gorm:"size:20" json:"phone"`
	AssignedVehicleId *int      `gorm:"index" json:"assigned_vehicle_id"`
	IsActive          *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Username          string   `json:"username" binding:"required"`
	Email             string   `json:"email" binding:"required,email"`
	Name              string   `json:"name" binding:"required"`
	Role              UserRole `json:"role" binding:"required"`
	Phone             string   `json:"phone"`
	AssignedVehicleId *int     `json:"assigned_vehicle_id"`
}

// validate input for both create & update. (id = 0 for create)

func (input *NewUser) validate(ctx context.Context, id int) error {
	if !input.Role.Valid() {
		return utils.NewValidationError("role", "unknown role")
	}
	if !utils.IsValidEmail(input.Email) {
		return utils.NewValidationError("email", "invalid email address")
	}
	if err := utils.ValidateUnique[User](ctx, "username", input.Username, id); err != nil {
		return err
	}
	if err := utils.ValidateUnique[User](ctx, "email", input.Email, id); err != nil {
		return err
	}
	if len(strings.TrimSpace(input.Phone)) > 0 {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return utils.NewValidationError("phone", err.Error())
		}
	}
	if input.AssignedVehicleId != nil {
		if err := utils.ValidateResourceId[Vehicle](ctx, *input.AssignedVehicleId); err != nil {
			return utils.NewValidationError("assigned_vehicle_id", "vehicle not found")
		}
	}
	return nil
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	user := User{
		Username:          input.Username,
		Email:             input.Email,
		Name:              input.Name,
		Role:              input.Role,
		Phone:             input.Phone,
		AssignedVehicleId: input.AssignedVehicleId,
		IsActive:          utils.NewTrue(),
	}

	// db action
	db := config.GetDB()
	err := db.WithContext(ctx).Create(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func UpdateUser(ctx context.Context, id int, input *NewUser) (*User, error) {
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	user, err := utils.FetchModel[User](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&user).
		Updates(map[string]interface{}{
			"Username":          input.Username,
			"Email":             input.Email,
			"Name":              input.Name,
			"Role":              input.Role,
			"Phone":             input.Phone,
			"AssignedVehicleId": input.AssignedVehicleId,
		}).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

func GetUser(ctx context.Context, id int) (*User, error) {
	return utils.FetchModel[User](ctx, id)
}

func GetUsersByRole(ctx context.Context, role UserRole) ([]*User, error) {
	db := config.GetDB()
	var results []*User
	err := db.WithContext(ctx).Where("role = ? AND is_active = 1", role).Order("name").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
