package service

import (
	"context"
	"time"

	"tourdesk/internal/dto"
	"tourdesk/internal/model"
	"tourdesk/internal/pricing"
	"tourdesk/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

var hundred = decimal.NewFromInt(100)

// EventService defines the business logic contract for scheduled departures.
// Pricing is seeded from the master trip unless the request overrides it,
// and the final price is always recomputed server-side at save time — a
// client-supplied final price is never trusted.
type EventService interface {
	Create(ctx context.Context, req dto.CreateEventRequest) (*dto.EventResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.EventResponse, error)
	List(ctx context.Context, filter dto.EventFilter) (*dto.EventListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateEventRequest) (*dto.EventResponse, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
}

type eventService struct {
	repo      repository.EventRepository
	tripRepo  repository.TripRepository
	guideRepo repository.GuideRepository
}

func NewEventService(
	repo repository.EventRepository,
	tripRepo repository.TripRepository,
	guideRepo repository.GuideRepository,
) EventService {
	return &eventService{repo: repo, tripRepo: tripRepo, guideRepo: guideRepo}
}

func (s *eventService) Create(ctx context.Context, req dto.CreateEventRequest) (*dto.EventResponse, error) {
	tripID, err := uuid.Parse(req.TripID)
	if err != nil {
		return nil, err
	}
	guideID, err := uuid.Parse(req.GuideID)
	if err != nil {
		return nil, err
	}
	trip, err := s.tripRepo.FindByID(ctx, tripID)
	if err != nil {
		return nil, &NotFoundError{Entity: "trip", ID: tripID}
	}
	if _, err := s.guideRepo.FindByID(ctx, guideID); err != nil {
		return nil, &NotFoundError{Entity: "guide", ID: guideID}
	}
	departure, err := time.Parse("2006-01-02", req.DepartureDate)
	if err != nil {
		return nil, err
	}

	e := &model.Event{
		TripID:        tripID,
		GuideID:       guideID,
		DepartureDate: datatypes.Date(departure),
		Capacity:      req.Capacity,
		Status:        model.EventScheduled,
	}
	if err := instantiateEventPricing(e, trip, req.Overrides); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	resp := eventToResponse(e)
	return &resp, nil
}

func (s *eventService) GetByID(ctx context.Context, id uuid.UUID) (*dto.EventResponse, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, &NotFoundError{Entity: "event", ID: id}
	}
	resp := eventToResponse(e)
	return &resp, nil
}

func (s *eventService) List(ctx context.Context, filter dto.EventFilter) (*dto.EventListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	events, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		items = append(items, eventToResponse(&events[i]))
	}
	return &dto.EventListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *eventService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateEventRequest) (*dto.EventResponse, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, &NotFoundError{Entity: "event", ID: id}
	}
	if e.Status == model.EventDeparted {
		return nil, &StateConflictError{Entity: "event", Current: e.Status, Attempted: "update"}
	}

	if req.GuideID != nil {
		guideID, err := uuid.Parse(*req.GuideID)
		if err != nil {
			return nil, err
		}
		if _, err := s.guideRepo.FindByID(ctx, guideID); err != nil {
			return nil, &NotFoundError{Entity: "guide", ID: guideID}
		}
		e.GuideID = guideID
	}
	if req.DepartureDate != nil {
		departure, err := time.Parse("2006-01-02", *req.DepartureDate)
		if err != nil {
			return nil, err
		}
		e.DepartureDate = datatypes.Date(departure)
	}
	if req.Capacity != nil {
		e.Capacity = *req.Capacity
	}
	if req.Overrides != nil {
		if err := applyPricingOverrides(e, req.Overrides); err != nil {
			return nil, err
		}
	}
	// Recompute unconditionally: the stored final price is only ever a
	// product of the fields saved alongside it.
	e.FinalPrice = pricing.RoundCurrency(
		pricing.EventFinalPrice(e.EventPrice, e.UpsellingPct, e.UpsellingEnabled))

	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	resp := eventToResponse(e)
	return &resp, nil
}

func (s *eventService) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return &NotFoundError{Entity: "event", ID: id}
	}
	if e.Status == status {
		return &StateConflictError{Entity: "event", Current: e.Status, Attempted: "set status " + status}
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

// instantiateEventPricing seeds the event's pricing from the master trip's
// defaults, letting overrides replace individual fields, then derives the
// final price. The trip's fractional commission rates carry over unchanged;
// when the override supplies its own upselling percentage the default
// 30/30/40 split of that percentage replaces them.
func instantiateEventPricing(e *model.Event, trip *model.Trip, o *dto.EventPricingOverrides) error {
	e.EventPrice = trip.BasePrice
	e.UpsellingEnabled = trip.UpsellingEnabled
	e.UpsellingPct = pricing.RateToPct(trip.UpsellingRate)
	e.GuideCommissionRate = trip.GuideCommissionRate
	e.CompanyCommissionRate = trip.CompanyCommissionRate
	e.OtaCommissionRate = trip.OtaCommissionRate

	if o != nil {
		if o.EventPrice != nil {
			e.EventPrice = *o.EventPrice
		}
		if o.UpsellingEnabled != nil {
			e.UpsellingEnabled = *o.UpsellingEnabled
		}
		if o.UpsellingPct != nil {
			e.UpsellingPct = *o.UpsellingPct
			split, err := pricing.SplitUpselling(e.EventPrice, o.UpsellingPct.Div(hundred))
			if err != nil {
				return err
			}
			e.GuideCommissionRate = split.GuideRate
			e.CompanyCommissionRate = split.CompanyRate
			e.OtaCommissionRate = split.OtaRate
		}
	}
	return applyPricingInvariants(e)
}

// applyPricingOverrides edits an existing event's pricing fields in place.
func applyPricingOverrides(e *model.Event, o *dto.EventPricingOverrides) error {
	if o.EventPrice != nil {
		e.EventPrice = *o.EventPrice
	}
	if o.UpsellingEnabled != nil {
		e.UpsellingEnabled = *o.UpsellingEnabled
	}
	if o.UpsellingPct != nil {
		e.UpsellingPct = *o.UpsellingPct
		split, err := pricing.SplitUpselling(e.EventPrice, o.UpsellingPct.Div(hundred))
		if err != nil {
			return err
		}
		e.GuideCommissionRate = split.GuideRate
		e.CompanyCommissionRate = split.CompanyRate
		e.OtaCommissionRate = split.OtaRate
	}
	return applyPricingInvariants(e)
}

// applyPricingInvariants zeroes rates when upselling is off and derives the
// rounded final price.
func applyPricingInvariants(e *model.Event) error {
	if e.UpsellingPct.Div(hundred).GreaterThan(pricing.MaxTotalRate) {
		return pricing.ErrRateOutOfRange
	}
	if !e.UpsellingEnabled {
		e.UpsellingPct = decimal.Zero
		e.GuideCommissionRate = decimal.Zero
		e.CompanyCommissionRate = decimal.Zero
		e.OtaCommissionRate = decimal.Zero
	}
	e.FinalPrice = pricing.RoundCurrency(
		pricing.EventFinalPrice(e.EventPrice, e.UpsellingPct, e.UpsellingEnabled))
	return nil
}

func eventToResponse(e *model.Event) dto.EventResponse {
	resp := dto.EventResponse{
		ID:                    e.ID.String(),
		TripID:                e.TripID.String(),
		GuideID:               e.GuideID.String(),
		DepartureDate:         time.Time(e.DepartureDate).Format("2006-01-02"),
		Capacity:              e.Capacity,
		EventPrice:            e.EventPrice,
		UpsellingEnabled:      e.UpsellingEnabled,
		UpsellingPct:          e.UpsellingPct,
		GuideCommissionRate:   e.GuideCommissionRate,
		CompanyCommissionRate: e.CompanyCommissionRate,
		OtaCommissionRate:     e.OtaCommissionRate,
		FinalPrice:            e.FinalPrice,
		Status:                e.Status,
		CreatedAt:             e.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if e.Trip != nil {
		resp.TripTitle = e.Trip.Title
	}
	if e.Guide != nil {
		resp.GuideName = e.Guide.Name
	}
	return resp
}
