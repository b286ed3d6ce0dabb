package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Shop is owned by exactly one email. Name and email are each globally unique.
type Shop struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:15;not null;uniqueIndex:idx_shops_name" json:"name"`
	Email     string    `gorm:"size:255;not null;uniqueIndex:idx_shops_email" json:"email"`
	Products  []Product `gorm:"foreignKey:ShopID;constraint:OnDelete:CASCADE" json:"products"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Shop) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (Shop) TableName() string {
	return "shops"
}
