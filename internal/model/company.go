package model

import (
	"time"

	"github.com/google/uuid"
)

// Company is a land operator that employs guides and owns trip products.
type Company struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name          string    `gorm:"index;not null"`
	LicenseNumber string    `gorm:"uniqueIndex;not null"`
	City          string    `gorm:"not null"`
	ContactName   *string
	ContactEmail  *string
	ContactPhone  *string
	Active        bool `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
