package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BaseModel struct {
	ID        string     `gorm:"type:text;primaryKey" json:"id"`
	CreatedAt *time.Time `gorm:"default:CURRENT_TIMESTAMP;not null" json:"createdAt"`
	UpdatedAt *time.Time `gorm:"default:CURRENT_TIMESTAMP;not null" json:"updatedAt"`
}

func (bm *BaseModel) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4, unless the caller already picked one
	if bm.ID == "" {
		bm.ID = uuid.NewString()
	}
	// The column default only has second resolution on sqlite. Rows created
	// in the same second must still sort in creation order.
	now := time.Now()
	if bm.CreatedAt == nil {
		bm.CreatedAt = &now
	}
	if bm.UpdatedAt == nil {
		bm.UpdatedAt = &now
	}
	return
}

func (bm BaseModel) createdAt() time.Time {
	if bm.CreatedAt == nil {
		return time.Time{}
	}
	return *bm.CreatedAt
}

func (bm BaseModel) updatedAt() time.Time {
	if bm.UpdatedAt == nil {
		return time.Time{}
	}
	return *bm.UpdatedAt
}
