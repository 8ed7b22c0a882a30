package dto

import "github.com/shopspring/decimal"

// GuideFilter is bound from the query string of GET /v1/guides.
type GuideFilter struct {
	Name      string `form:"name"`
	CompanyID string `form:"company_id"`
	StarOnly  bool   `form:"star_only"`
	Active    string `form:"active,default=true"` // true | false | all
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type CreateGuideRequest struct {
	CompanyID string  `json:"company_id" validate:"required,uuid"`
	Name      string  `json:"name"       validate:"required"`
	Bio       *string `json:"bio"`
	Languages string  `json:"languages"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone"`
	PhotoURL  *string `json:"photo_url" validate:"omitempty,url"`
}

type UpdateGuideRequest struct {
	Name      *string `json:"name"`
	Bio       *string `json:"bio"`
	Languages *string `json:"languages"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone"`
	PhotoURL  *string `json:"photo_url" validate:"omitempty,url"`
}

// SetStarStatusRequest is the operator's manual star toggle. Applying it
// always sets the manual-promotion flag, which freezes automatic
// promotion/demotion until explicitly cleared.
type SetStarStatusRequest struct {
	IsStarGuide bool    `json:"is_star_guide"`
	Tier        *string `json:"tier" validate:"omitempty,oneof=bronze silver gold"`
}

type GuideResponse struct {
	ID            string  `json:"id"`
	CompanyID     string  `json:"company_id"`
	CompanyName   string  `json:"company_name,omitempty"`
	Name          string  `json:"name"`
	Bio           *string `json:"bio"`
	Languages     string  `json:"languages"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	PhotoURL      *string `json:"photo_url"`

	AverageRating decimal.Decimal `json:"average_rating"`
	TotalReviews  int             `json:"total_reviews"`

	IsStarGuide     bool    `json:"is_star_guide"`
	StarGuideSince  *string `json:"star_guide_since"`
	StarGuideTier   *string `json:"star_guide_tier"`
	ManualPromotion bool    `json:"manual_promotion"`

	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}

type GuideListResponse struct {
	Data  []GuideResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// StarTransitionResponse reports the outcome of a star status re-evaluation
// so operators see exactly what changed and why.
type StarTransitionResponse struct {
	Changed bool   `json:"changed"`
	Summary string `json:"summary"`
	Guide   GuideResponse `json:"guide"`
}
