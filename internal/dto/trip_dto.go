package dto

import "github.com/shopspring/decimal"

// TripFilter is bound from the query string of GET /v1/trips.
type TripFilter struct {
	Title       string `form:"title"`
	Destination string `form:"destination"`
	CompanyID   string `form:"company_id"`
	Active      string `form:"active,default=true"` // true | false | all
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// UpsellConfig carries a trip's upselling configuration. When the three
// commission rates are omitted the default 30/30/40 split of TotalRate is
// applied; rates supplied by the operator are preserved as given, and a
// sum mismatch is flagged in the response rather than rejected.
type UpsellConfig struct {
	Enabled               bool             `json:"enabled"`
	TotalRate             decimal.Decimal  `json:"total_rate"      validate:"min=0,max=0.5"`
	GuideCommissionRate   *decimal.Decimal `json:"guide_commission_rate"`
	CompanyCommissionRate *decimal.Decimal `json:"company_commission_rate"`
	OtaCommissionRate     *decimal.Decimal `json:"ota_commission_rate"`
}

type CreateTripRequest struct {
	CompanyID    string          `json:"company_id"    validate:"required,uuid"`
	Title        string          `json:"title"         validate:"required"`
	Description  *string         `json:"description"`
	Destination  string          `json:"destination"   validate:"required"`
	DurationDays int             `json:"duration_days" validate:"required,min=1"`
	BasePrice    decimal.Decimal `json:"base_price"    validate:"min=0"`
	Upselling    *UpsellConfig   `json:"upselling"`
}

type UpdateTripRequest struct {
	Title        *string          `json:"title"`
	Description  *string          `json:"description"`
	Destination  *string          `json:"destination"`
	DurationDays *int             `json:"duration_days" validate:"omitempty,min=1"`
	BasePrice    *decimal.Decimal `json:"base_price"`
	Upselling    *UpsellConfig    `json:"upselling"`
}

type TripResponse struct {
	ID           string          `json:"id"`
	CompanyID    string          `json:"company_id"`
	Title        string          `json:"title"`
	Description  *string         `json:"description"`
	Destination  string          `json:"destination"`
	DurationDays int             `json:"duration_days"`
	BasePrice    decimal.Decimal `json:"base_price"`

	UpsellingEnabled      bool            `json:"upselling_enabled"`
	UpsellingRate         decimal.Decimal `json:"upselling_rate"`
	GuideCommissionRate   decimal.Decimal `json:"guide_commission_rate"`
	CompanyCommissionRate decimal.Decimal `json:"company_commission_rate"`
	OtaCommissionRate     decimal.Decimal `json:"ota_commission_rate"`
	// RateMismatch flags commission sub-rates that do not sum to the total
	// rate. Informational only — the write is never blocked for this.
	RateMismatch bool `json:"rate_mismatch"`

	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}

type TripListResponse struct {
	Data  []TripResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// CascadeResponse reports how many future departures picked up a master
// trip's new pricing configuration.
type CascadeResponse struct {
	TripID        string `json:"trip_id"`
	EventsUpdated int    `json:"events_updated"`
}
