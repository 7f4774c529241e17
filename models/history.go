package models

import (
	"context"
	"time"

	"github.com/spdhub/spdhub_backend/config"
	"github.com/spdhub/spdhub_backend/utils"
	"gorm.io/gorm"
)

type History struct {
	ID            int       `gorm:"primary_key" json:"id"`
	ActionType    string    `gorm:"size:50;not null" json:"action_type"`
	Description   string    `gorm:"type:text;not null" json:"description"`
	ReferenceID   int       `gorm:"index" json:"reference_id"`
	ReferenceType string    `gorm:"size:255" json:"reference_type"`
	UserId        int       `gorm:"index;not null" json:"user_id"`
	UserName      string    `gorm:"size:100" json:"user_name"`
	CorrelationId string    `gorm:"size:64" json:"correlation_id"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// LogActivity records an audit row for a mutation. Auditing never fails the
// surrounding transaction; write errors are logged and swallowed.
func LogActivity(ctx context.Context, tx *gorm.DB, actionType, description, referenceType string, referenceId int) {
	userId, _ := utils.GetUserIdFromContext(ctx)
	userName, _ := utils.GetUserNameFromContext(ctx)
	correlationId, _ := utils.GetCorrelationIdFromContext(ctx)

	history := History{
		ActionType:    actionType,
		Description:   description,
		ReferenceID:   referenceId,
		ReferenceType: referenceType,
		UserId:        userId,
		UserName:      userName,
		CorrelationId: correlationId,
	}
	if err := tx.Create(&history).Error; err != nil {
		logger := config.GetLogger()
		config.LogError(logger, "models", "LogActivity", actionType, history, err)
	}
}

func GetHistoryForReference(ctx context.Context, referenceType string, referenceId int) ([]*History, error) {
	db := config.GetDB()
	var results []*History
	err := db.WithContext(ctx).
		Where("reference_type = ? AND reference_id = ?", referenceType, referenceId).
		Order("created_at DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
