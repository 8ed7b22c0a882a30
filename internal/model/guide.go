package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Star guide tiers. The automatic rule only ever promotes to bronze;
// silver and gold are assigned by operators.
const (
	TierBronze = "bronze"
	TierSilver = "silver"
	TierGold   = "gold"
)

// Guide is a tour guide employed by a Company. AverageRating and TotalReviews
// are derived fields — only the reputation recompute writes them, and always
// from the full set of approved reviews, never incrementally.
type Guide struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"index;not null"`
	Bio       *string
	Languages string `gorm:"not null;default:''"` // comma-separated, e.g. "en,id,ja"
	Email     *string
	Phone     *string
	PhotoURL  *string

	AverageRating decimal.Decimal `gorm:"type:decimal(2,1);not null;default:0"`
	TotalReviews  int             `gorm:"not null;default:0"`

	IsStarGuide    bool       `gorm:"not null;default:false"`
	StarGuideSince *time.Time `gorm:"type:timestamptz"`
	StarGuideTier  *string    `gorm:"type:varchar(10)"`
	// ManualPromotion freezes automatic promotion AND demotion while set.
	ManualPromotion bool `gorm:"not null;default:false"`

	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Company *Company `gorm:"foreignKey:CompanyID"`
}
