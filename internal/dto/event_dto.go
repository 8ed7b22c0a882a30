package dto

import "github.com/shopspring/decimal"

// EventFilter is bound from the query string of GET /v1/events.
type EventFilter struct {
	TripID  string `form:"trip_id"`
	GuideID string `form:"guide_id"`
	Status  string `form:"status,default=scheduled"` // scheduled | departed | cancelled | all
	From    string `form:"from"`                     // YYYY-MM-DD
	To      string `form:"to"`                       // YYYY-MM-DD
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// EventPricingOverrides lets an operator detach a departure from its master
// trip's pricing defaults. Absent fields inherit from the trip; FinalPrice
// is always recomputed server-side regardless of what the client sends.
type EventPricingOverrides struct {
	EventPrice       *decimal.Decimal `json:"event_price"       validate:"omitempty"`
	UpsellingEnabled *bool            `json:"upselling_enabled"`
	UpsellingPct     *decimal.Decimal `json:"upselling_pct"     validate:"omitempty"`
}

type CreateEventRequest struct {
	TripID        string                 `json:"trip_id"        validate:"required,uuid"`
	GuideID       string                 `json:"guide_id"       validate:"required,uuid"`
	DepartureDate string                 `json:"departure_date" validate:"required,datetime=2006-01-02"`
	Capacity      int                    `json:"capacity"       validate:"required,min=1"`
	Overrides     *EventPricingOverrides `json:"overrides"`
}

type UpdateEventRequest struct {
	GuideID       *string                `json:"guide_id"       validate:"omitempty,uuid"`
	DepartureDate *string                `json:"departure_date" validate:"omitempty,datetime=2006-01-02"`
	Capacity      *int                   `json:"capacity"       validate:"omitempty,min=1"`
	Overrides     *EventPricingOverrides `json:"overrides"`
}

type EventResponse struct {
	ID            string `json:"id"`
	TripID        string `json:"trip_id"`
	TripTitle     string `json:"trip_title,omitempty"`
	GuideID       string `json:"guide_id"`
	GuideName     string `json:"guide_name,omitempty"`
	DepartureDate string `json:"departure_date"`
	Capacity      int    `json:"capacity"`

	EventPrice            decimal.Decimal `json:"event_price"`
	UpsellingEnabled      bool            `json:"upselling_enabled"`
	UpsellingPct          decimal.Decimal `json:"upselling_pct"`
	GuideCommissionRate   decimal.Decimal `json:"guide_commission_rate"`
	CompanyCommissionRate decimal.Decimal `json:"company_commission_rate"`
	OtaCommissionRate     decimal.Decimal `json:"ota_commission_rate"`
	FinalPrice            decimal.Decimal `json:"final_price"`

	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

type EventListResponse struct {
	Data  []EventResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
