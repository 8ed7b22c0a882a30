package service

import (
	"context"
	"testing"
	"time"

	"tourdesk/internal/dto"
	"tourdesk/internal/model"
	"tourdesk/internal/pricing"
	"tourdesk/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type stubTripRepo struct {
	trips map[uuid.UUID]*model.Trip
}

var _ repository.TripRepository = (*stubTripRepo)(nil)

func newStubTripRepo(trips ...*model.Trip) *stubTripRepo {
	m := make(map[uuid.UUID]*model.Trip, len(trips))
	for _, t := range trips {
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		m[t.ID] = t
	}
	return &stubTripRepo{trips: m}
}

func (r *stubTripRepo) Create(_ context.Context, t *model.Trip) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.trips[t.ID] = t
	return nil
}

func (r *stubTripRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Trip, error) {
	t, ok := r.trips[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (r *stubTripRepo) List(_ context.Context, _ dto.TripFilter) ([]model.Trip, int64, error) {
	out := make([]model.Trip, 0, len(r.trips))
	for _, t := range r.trips {
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

func (r *stubTripRepo) Update(_ context.Context, t *model.Trip) error {
	r.trips[t.ID] = t
	return nil
}

func (r *stubTripRepo) UpdateTx(_ *gorm.DB, t *model.Trip) error {
	r.trips[t.ID] = t
	return nil
}

func (r *stubTripRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	t, ok := r.trips[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.Active = false
	return nil
}

func (r *stubTripRepo) DB() *gorm.DB { return nil }

type stubCompanyRepo struct {
	companies map[uuid.UUID]*model.Company
}

var _ repository.CompanyRepository = (*stubCompanyRepo)(nil)

func newStubCompanyRepo(companies ...*model.Company) *stubCompanyRepo {
	m := make(map[uuid.UUID]*model.Company, len(companies))
	for _, c := range companies {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		m[c.ID] = c
	}
	return &stubCompanyRepo{companies: m}
}

func (r *stubCompanyRepo) Create(_ context.Context, c *model.Company) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.companies[c.ID] = c
	return nil
}

func (r *stubCompanyRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Company, error) {
	c, ok := r.companies[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCompanyRepo) List(_ context.Context, _ dto.CompanyFilter) ([]model.Company, int64, error) {
	out := make([]model.Company, 0, len(r.companies))
	for _, c := range r.companies {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *stubCompanyRepo) Update(_ context.Context, c *model.Company) error {
	r.companies[c.ID] = c
	return nil
}

func (r *stubCompanyRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	c, ok := r.companies[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Active = false
	return nil
}

// ── Fixtures ──────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testCompany() *model.Company {
	return &model.Company{ID: uuid.New(), Name: "Hanla Tours", Active: true}
}

func createTripReq(companyID uuid.UUID, upsell *dto.UpsellConfig) dto.CreateTripRequest {
	return dto.CreateTripRequest{
		CompanyID:    companyID.String(),
		Title:        "Jeju Island 4 Days",
		Destination:  "Jeju",
		DurationDays: 4,
		BasePrice:    dec("500000"),
		Upselling:    upsell,
	}
}

// ── Create ────────────────────────────────────────────────────────────────────

func TestTripCreateDefaultSplit(t *testing.T) {
	company := testCompany()
	svc := NewTripService(newStubTripRepo(), newStubEventRepo(), newStubCompanyRepo(company))

	resp, err := svc.Create(context.Background(), createTripReq(company.ID, &dto.UpsellConfig{
		Enabled:   true,
		TotalRate: dec("0.10"),
	}))
	require.NoError(t, err)

	assert.True(t, resp.UpsellingEnabled)
	assert.True(t, resp.UpsellingRate.Equal(dec("0.10")))
	assert.True(t, resp.GuideCommissionRate.Equal(dec("0.03")))
	assert.True(t, resp.CompanyCommissionRate.Equal(dec("0.03")))
	assert.True(t, resp.OtaCommissionRate.Equal(dec("0.04")))
	assert.False(t, resp.RateMismatch)
}

func TestTripCreateManualSubRates(t *testing.T) {
	company := testCompany()
	svc := NewTripService(newStubTripRepo(), newStubEventRepo(), newStubCompanyRepo(company))

	guideRate := dec("0.05")
	resp, err := svc.Create(context.Background(), createTripReq(company.ID, &dto.UpsellConfig{
		Enabled:             true,
		TotalRate:           dec("0.10"),
		GuideCommissionRate: &guideRate,
	}))
	require.NoError(t, err)

	// Manual rate is preserved, remaining two keep the default split, and
	// the now-inconsistent sum is flagged rather than rejected.
	assert.True(t, resp.GuideCommissionRate.Equal(dec("0.05")))
	assert.True(t, resp.CompanyCommissionRate.Equal(dec("0.03")))
	assert.True(t, resp.OtaCommissionRate.Equal(dec("0.04")))
	assert.True(t, resp.RateMismatch)
}

func TestTripCreateUpsellingDisabled(t *testing.T) {
	company := testCompany()
	svc := NewTripService(newStubTripRepo(), newStubEventRepo(), newStubCompanyRepo(company))

	resp, err := svc.Create(context.Background(), createTripReq(company.ID, nil))
	require.NoError(t, err)

	assert.False(t, resp.UpsellingEnabled)
	assert.True(t, resp.UpsellingRate.IsZero())
	assert.True(t, resp.GuideCommissionRate.IsZero())
	assert.False(t, resp.RateMismatch)
}

func TestTripCreateRateOutOfRange(t *testing.T) {
	company := testCompany()
	svc := NewTripService(newStubTripRepo(), newStubEventRepo(), newStubCompanyRepo(company))

	_, err := svc.Create(context.Background(), createTripReq(company.ID, &dto.UpsellConfig{
		Enabled:   true,
		TotalRate: dec("0.60"),
	}))
	assert.ErrorIs(t, err, pricing.ErrRateOutOfRange)
}

func TestTripCreateUnknownCompany(t *testing.T) {
	svc := NewTripService(newStubTripRepo(), newStubEventRepo(), newStubCompanyRepo())

	_, err := svc.Create(context.Background(), createTripReq(uuid.New(), nil))
	assert.True(t, IsNotFound(err))
}

// ── Cascade ───────────────────────────────────────────────────────────────────

func cascadeFixture(t *testing.T) (*model.Trip, *model.Event, *model.Event, *model.Event, TripService) {
	t.Helper()

	trip := &model.Trip{
		ID:        uuid.New(),
		CompanyID: uuid.New(),
		Title:     "Busan Coastal",
		BasePrice: dec("500000"),
	}

	future := &model.Event{
		ID:            uuid.New(),
		TripID:        trip.ID,
		GuideID:       uuid.New(),
		DepartureDate: datatypes.Date(time.Now().AddDate(0, 0, 14)),
		EventPrice:    dec("500000"),
		Status:        model.EventScheduled,
	}
	departed := &model.Event{
		ID:            uuid.New(),
		TripID:        trip.ID,
		GuideID:       future.GuideID,
		DepartureDate: datatypes.Date(time.Now().AddDate(0, 0, 7)),
		EventPrice:    dec("500000"),
		FinalPrice:    dec("500000"),
		Status:        model.EventDeparted,
	}
	past := &model.Event{
		ID:            uuid.New(),
		TripID:        trip.ID,
		GuideID:       future.GuideID,
		DepartureDate: datatypes.Date(time.Now().AddDate(0, 0, -7)),
		EventPrice:    dec("500000"),
		FinalPrice:    dec("500000"),
		Status:        model.EventScheduled,
	}

	eventRepo := newStubEventRepo(future, departed, past)
	svc := NewTripService(newStubTripRepo(trip), eventRepo, newStubCompanyRepo())
	return trip, future, departed, past, svc
}

func TestTripUpdateCascadesToFutureEvents(t *testing.T) {
	trip, future, departed, past, svc := cascadeFixture(t)

	upsell := &dto.UpsellConfig{Enabled: true, TotalRate: dec("0.10")}
	_, err := svc.Update(context.Background(), trip.ID, dto.UpdateTripRequest{Upselling: upsell})
	require.NoError(t, err)

	// Only the scheduled future departure is repriced.
	assert.True(t, future.UpsellingEnabled)
	assert.True(t, future.UpsellingPct.Equal(dec("10")))
	assert.True(t, future.FinalPrice.Equal(dec("550000")), "got %s", future.FinalPrice)

	assert.False(t, departed.UpsellingEnabled)
	assert.True(t, departed.FinalPrice.Equal(dec("500000")))
	assert.False(t, past.UpsellingEnabled)
	assert.True(t, past.FinalPrice.Equal(dec("500000")))
}

func TestTripCascadeEndpointCounts(t *testing.T) {
	trip, _, _, _, svc := cascadeFixture(t)
	trip.UpsellingEnabled = true
	trip.UpsellingRate = dec("0.08")

	resp, err := svc.Cascade(context.Background(), trip.ID)
	require.NoError(t, err)

	assert.Equal(t, trip.ID.String(), resp.TripID)
	assert.Equal(t, 1, resp.EventsUpdated)
}

func TestTripCascadeDisablingZeroesPricing(t *testing.T) {
	trip, future, _, _, svc := cascadeFixture(t)
	future.UpsellingEnabled = true
	future.UpsellingPct = dec("10")
	future.FinalPrice = dec("550000")

	_, err := svc.Update(context.Background(), trip.ID, dto.UpdateTripRequest{
		Upselling: &dto.UpsellConfig{Enabled: false},
	})
	require.NoError(t, err)

	assert.False(t, future.UpsellingEnabled)
	assert.True(t, future.UpsellingPct.IsZero())
	assert.True(t, future.FinalPrice.Equal(dec("500000")))
}

func TestTripUpdateWithoutUpsellSkipsCascade(t *testing.T) {
	trip, future, _, _, svc := cascadeFixture(t)

	title := "Busan Coastal — Extended"
	resp, err := svc.Update(context.Background(), trip.ID, dto.UpdateTripRequest{Title: &title})
	require.NoError(t, err)

	assert.Equal(t, title, resp.Title)
	assert.True(t, future.FinalPrice.IsZero(), "event pricing must be untouched")
}
