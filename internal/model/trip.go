package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Trip is a reusable master product from which dated Events are instantiated.
// Rate fields are fractions of the base price (0.10 = 10%). Invariant: when
// UpsellingEnabled is false all four rate fields are zero.
type Trip struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Title        string    `gorm:"index;not null"`
	Description  *string
	Destination  string `gorm:"not null"`
	DurationDays int    `gorm:"not null;default:1"`

	BasePrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	UpsellingEnabled bool            `gorm:"not null;default:false"`
	UpsellingRate    decimal.Decimal `gorm:"type:decimal(5,4);not null;default:0"`
	// Per-party commission rates. Their sum should equal UpsellingRate;
	// a mismatch is tolerated and flagged, not rejected.
	GuideCommissionRate   decimal.Decimal `gorm:"type:decimal(5,4);not null;default:0"`
	CompanyCommissionRate decimal.Decimal `gorm:"type:decimal(5,4);not null;default:0"`
	OtaCommissionRate     decimal.Decimal `gorm:"type:decimal(5,4);not null;default:0"`

	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Company *Company `gorm:"foreignKey:CompanyID"`
}
