package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Review moderation states. Pending reviews never count toward a guide's
// aggregate rating; approved and rejected are terminal in normal flow
// (an approved review may still be forcibly rejected by an operator).
const (
	ReviewPending  = "pending"
	ReviewApproved = "approved"
	ReviewRejected = "rejected"
)

// Membership types. Members are pre-trusted and their reviews are
// auto-approved on submission; guest reviews queue for moderation.
const (
	MembershipMember = "member"
	MembershipGuest  = "guest"
)

// Review is a traveler's rating of a guide on a specific departure.
// GuideRating is derived on submission as the mean of the non-zero
// category sub-ratings; a review with no rated categories is rejected
// at validation and never persisted.
type Review struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	GuideID uuid.UUID `gorm:"type:uuid;not null;index"`
	EventID uuid.UUID `gorm:"type:uuid;not null;index"`

	AuthorName     string `gorm:"not null"`
	MembershipType string `gorm:"type:varchar(10);not null"`
	Comment        *string

	// Category sub-ratings, 0 = not rated, 1–5 otherwise.
	Professionalism int `gorm:"not null;default:0"`
	Communication   int `gorm:"not null;default:0"`
	Knowledge       int `gorm:"not null;default:0"`
	Kindness        int `gorm:"not null;default:0"`
	Punctuality     int `gorm:"not null;default:0"`

	GuideRating decimal.Decimal `gorm:"type:decimal(2,1);not null"`

	Status     string     `gorm:"type:varchar(10);not null;index"`
	ReviewedBy *uuid.UUID `gorm:"type:uuid"`
	ReviewedAt *time.Time `gorm:"type:timestamptz"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Guide *Guide `gorm:"foreignKey:GuideID"`
	Event *Event `gorm:"foreignKey:EventID"`
}
