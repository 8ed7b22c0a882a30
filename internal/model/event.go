package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Event lifecycle states.
const (
	EventScheduled = "scheduled"
	EventDeparted  = "departed"
	EventCancelled = "cancelled"
)

// Event is a dated departure instantiated from a Trip. Pricing fields are
// seeded from the trip defaults but may be overridden per event. FinalPrice
// is always recomputed at save time, never trusted from the client, and is
// rounded to the whole currency unit at persistence. Departed events keep
// their historical pricing — cascades never touch them.
type Event struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TripID  uuid.UUID `gorm:"type:uuid;not null;index"`
	GuideID uuid.UUID `gorm:"type:uuid;not null;index"`

	DepartureDate datatypes.Date `gorm:"not null;index"`
	Capacity      int            `gorm:"not null;default:10"`

	EventPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	UpsellingEnabled bool            `gorm:"not null;default:false"`
	// UpsellingPct is a percentage (10 = 10%), unlike Trip.UpsellingRate
	// which is a fraction. Conversion happens when instantiating pricing.
	UpsellingPct          decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	GuideCommissionRate   decimal.Decimal `gorm:"type:decimal(5,4);not null;default:0"`
	CompanyCommissionRate decimal.Decimal `gorm:"type:decimal(5,4);not null;default:0"`
	OtaCommissionRate     decimal.Decimal `gorm:"type:decimal(5,4);not null;default:0"`
	FinalPrice            decimal.Decimal `gorm:"type:decimal(12,0);not null"`

	Status    string `gorm:"type:varchar(10);not null;default:'scheduled'"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Trip  *Trip  `gorm:"foreignKey:TripID"`
	Guide *Guide `gorm:"foreignKey:GuideID"`
}
