package dto

import "github.com/shopspring/decimal"

// ReviewFilter is bound from the query string of GET /v1/reviews.
type ReviewFilter struct {
	GuideID string `form:"guide_id"`
	EventID string `form:"event_id"`
	Status  string `form:"status"` // pending | approved | rejected | all
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// SubmitReviewRequest creates a review against a departure. The guide is
// resolved from the event. Category ratings use 0 for "not rated"; at least
// one category must be rated or the submission is rejected outright.
type SubmitReviewRequest struct {
	EventID        string  `json:"event_id"        validate:"required,uuid"`
	AuthorName     string  `json:"author_name"     validate:"required"`
	MembershipType string  `json:"membership_type" validate:"required,oneof=member guest"`
	Comment        *string `json:"comment"`

	Professionalism int `json:"professionalism" validate:"min=0,max=5"`
	Communication   int `json:"communication"   validate:"min=0,max=5"`
	Knowledge       int `json:"knowledge"       validate:"min=0,max=5"`
	Kindness        int `json:"kindness"        validate:"min=0,max=5"`
	Punctuality     int `json:"punctuality"     validate:"min=0,max=5"`
}

type ReviewResponse struct {
	ID             string  `json:"id"`
	GuideID        string  `json:"guide_id"`
	EventID        string  `json:"event_id"`
	AuthorName     string  `json:"author_name"`
	MembershipType string  `json:"membership_type"`
	Comment        *string `json:"comment"`

	Professionalism int `json:"professionalism"`
	Communication   int `json:"communication"`
	Knowledge       int `json:"knowledge"`
	Kindness        int `json:"kindness"`
	Punctuality     int `json:"punctuality"`

	GuideRating decimal.Decimal `json:"guide_rating"`
	Status      string          `json:"status"`
	ReviewedBy  *string         `json:"reviewed_by"`
	ReviewedAt  *string         `json:"reviewed_at"`
	CreatedAt   string          `json:"created_at"`
}

type ReviewListResponse struct {
	Data  []ReviewResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

// ModerationResponse is returned by approve/reject. When the moderation
// changed the guide's counted review set it carries the resulting star
// transition summary.
type ModerationResponse struct {
	Review         ReviewResponse `json:"review"`
	StarTransition *string        `json:"star_transition,omitempty"`
}
