package service

import (
	"context"
	"time"

	"tourdesk/internal/dto"
	"tourdesk/internal/model"
	"tourdesk/internal/pricing"
	"tourdesk/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TripService defines the business logic contract for master trip products.
type TripService interface {
	Create(ctx context.Context, req dto.CreateTripRequest) (*dto.TripResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.TripResponse, error)
	List(ctx context.Context, filter dto.TripFilter) (*dto.TripListResponse, error)
	// Update edits the trip; when the request carries a new upselling
	// configuration it is applied AND cascaded to all not-yet-departed
	// events in the same transaction.
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateTripRequest) (*dto.TripResponse, error)
	// Cascade re-pushes the trip's current upselling configuration to its
	// future events. Departed events keep their historical pricing.
	Cascade(ctx context.Context, id uuid.UUID) (*dto.CascadeResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type tripService struct {
	repo        repository.TripRepository
	eventRepo   repository.EventRepository
	companyRepo repository.CompanyRepository
}

func NewTripService(
	repo repository.TripRepository,
	eventRepo repository.EventRepository,
	companyRepo repository.CompanyRepository,
) TripService {
	return &tripService{repo: repo, eventRepo: eventRepo, companyRepo: companyRepo}
}

func (s *tripService) Create(ctx context.Context, req dto.CreateTripRequest) (*dto.TripResponse, error) {
	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		return nil, err
	}
	if _, err := s.companyRepo.FindByID(ctx, companyID); err != nil {
		return nil, &NotFoundError{Entity: "company", ID: companyID}
	}

	t := &model.Trip{
		CompanyID:    companyID,
		Title:        req.Title,
		Description:  req.Description,
		Destination:  req.Destination,
		DurationDays: req.DurationDays,
		BasePrice:    req.BasePrice,
		Active:       true,
	}
	if err := applyUpsellConfig(t, req.Upselling); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	resp := tripToResponse(t)
	return &resp, nil
}

func (s *tripService) GetByID(ctx context.Context, id uuid.UUID) (*dto.TripResponse, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, &NotFoundError{Entity: "trip", ID: id}
	}
	resp := tripToResponse(t)
	return &resp, nil
}

func (s *tripService) List(ctx context.Context, filter dto.TripFilter) (*dto.TripListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	trips, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TripResponse, 0, len(trips))
	for i := range trips {
		items = append(items, tripToResponse(&trips[i]))
	}
	return &dto.TripListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *tripService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateTripRequest) (*dto.TripResponse, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, &NotFoundError{Entity: "trip", ID: id}
	}

	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = req.Description
	}
	if req.Destination != nil {
		t.Destination = *req.Destination
	}
	if req.DurationDays != nil {
		t.DurationDays = *req.DurationDays
	}
	if req.BasePrice != nil {
		t.BasePrice = *req.BasePrice
	}
	if req.Upselling != nil {
		if err := applyUpsellConfig(t, req.Upselling); err != nil {
			return nil, err
		}
	}

	if req.Upselling == nil {
		if err := s.repo.Update(ctx, t); err != nil {
			return nil, err
		}
		resp := tripToResponse(t)
		return &resp, nil
	}

	// New upsell config: write the trip and cascade to future departures
	// atomically so listings never show mixed generations of pricing.
	var updated int
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateTx(tx, t); err != nil {
			return err
		}
		updated, err = s.cascadeTx(tx, t)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}
	log.Info().Str("trip_id", id.String()).Int("events_updated", updated).Msg("trip pricing cascaded")

	resp := tripToResponse(t)
	return &resp, nil
}

func (s *tripService) Cascade(ctx context.Context, id uuid.UUID) (*dto.CascadeResponse, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, &NotFoundError{Entity: "trip", ID: id}
	}

	var updated int
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		updated, err = s.cascadeTx(tx, t)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}
	return &dto.CascadeResponse{TripID: id.String(), EventsUpdated: updated}, nil
}

func (s *tripService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return &NotFoundError{Entity: "trip", ID: id}
	}
	return s.repo.SoftDelete(ctx, id)
}

// cascadeTx propagates the trip's upselling configuration to every scheduled
// event with departure_date >= today, recomputing each final price. Events
// that already departed are never touched — historical pricing is immutable.
func (s *tripService) cascadeTx(tx *gorm.DB, t *model.Trip) (int, error) {
	events, err := s.eventRepo.ListFutureByTripTx(tx, t.ID, time.Now())
	if err != nil {
		return 0, err
	}
	pct := pricing.RateToPct(t.UpsellingRate)
	for i := range events {
		e := &events[i]
		e.UpsellingEnabled = t.UpsellingEnabled
		e.UpsellingPct = pct
		e.GuideCommissionRate = t.GuideCommissionRate
		e.CompanyCommissionRate = t.CompanyCommissionRate
		e.OtaCommissionRate = t.OtaCommissionRate
		e.FinalPrice = pricing.RoundCurrency(
			pricing.EventFinalPrice(e.EventPrice, pct, t.UpsellingEnabled))
		if err := s.eventRepo.UpdatePricingTx(tx, e); err != nil {
			return 0, err
		}
	}
	return len(events), nil
}

// applyUpsellConfig writes an upselling configuration onto the trip.
// Disabled upselling forces all four rate fields to zero. When enabled,
// omitted sub-rates get the default 30/30/40 split of the total rate;
// operator-supplied sub-rates are preserved as given, and a sum mismatch
// is logged, never rejected.
func applyUpsellConfig(t *model.Trip, cfg *dto.UpsellConfig) error {
	if cfg == nil || !cfg.Enabled {
		t.UpsellingEnabled = false
		t.UpsellingRate = decimal.Zero
		t.GuideCommissionRate = decimal.Zero
		t.CompanyCommissionRate = decimal.Zero
		t.OtaCommissionRate = decimal.Zero
		return nil
	}

	split, err := pricing.SplitUpselling(t.BasePrice, cfg.TotalRate)
	if err != nil {
		return err
	}

	t.UpsellingEnabled = true
	t.UpsellingRate = cfg.TotalRate
	t.GuideCommissionRate = split.GuideRate
	t.CompanyCommissionRate = split.CompanyRate
	t.OtaCommissionRate = split.OtaRate

	// Operator manual overrides win over the default split.
	if cfg.GuideCommissionRate != nil {
		t.GuideCommissionRate = *cfg.GuideCommissionRate
	}
	if cfg.CompanyCommissionRate != nil {
		t.CompanyCommissionRate = *cfg.CompanyCommissionRate
	}
	if cfg.OtaCommissionRate != nil {
		t.OtaCommissionRate = *cfg.OtaCommissionRate
	}

	if !pricing.RatesConsistent(t.GuideCommissionRate, t.CompanyCommissionRate, t.OtaCommissionRate, t.UpsellingRate) {
		log.Warn().
			Str("trip_id", t.ID.String()).
			Str("total_rate", t.UpsellingRate.String()).
			Str("guide_rate", t.GuideCommissionRate.String()).
			Str("company_rate", t.CompanyCommissionRate.String()).
			Str("ota_rate", t.OtaCommissionRate.String()).
			Msg("commission sub-rates do not sum to total rate")
	}
	return nil
}

func tripToResponse(t *model.Trip) dto.TripResponse {
	return dto.TripResponse{
		ID:                    t.ID.String(),
		CompanyID:             t.CompanyID.String(),
		Title:                 t.Title,
		Description:           t.Description,
		Destination:           t.Destination,
		DurationDays:          t.DurationDays,
		BasePrice:             t.BasePrice,
		UpsellingEnabled:      t.UpsellingEnabled,
		UpsellingRate:         t.UpsellingRate,
		GuideCommissionRate:   t.GuideCommissionRate,
		CompanyCommissionRate: t.CompanyCommissionRate,
		OtaCommissionRate:     t.OtaCommissionRate,
		RateMismatch: t.UpsellingEnabled && !pricing.RatesConsistent(
			t.GuideCommissionRate, t.CompanyCommissionRate, t.OtaCommissionRate, t.UpsellingRate),
		Active:    t.Active,
		CreatedAt: t.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
