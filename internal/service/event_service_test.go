package service

import (
	"context"
	"testing"
	"time"

	"tourdesk/internal/dto"
	"tourdesk/internal/model"
	"tourdesk/internal/pricing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func upsellTrip() *model.Trip {
	return &model.Trip{
		ID:                    uuid.New(),
		CompanyID:             uuid.New(),
		Title:                 "Seoraksan Trek",
		BasePrice:             dec("500000"),
		UpsellingEnabled:      true,
		UpsellingRate:         dec("0.10"),
		GuideCommissionRate:   dec("0.03"),
		CompanyCommissionRate: dec("0.03"),
		OtaCommissionRate:     dec("0.04"),
		Active:                true,
	}
}

func createEventReq(trip *model.Trip, guideID uuid.UUID, overrides *dto.EventPricingOverrides) dto.CreateEventRequest {
	return dto.CreateEventRequest{
		TripID:        trip.ID.String(),
		GuideID:       guideID.String(),
		DepartureDate: time.Now().AddDate(0, 1, 0).Format("2006-01-02"),
		Capacity:      20,
		Overrides:     overrides,
	}
}

func newEventServiceFixture(trip *model.Trip) (EventService, *stubEventRepo, *model.Guide) {
	guide := newTestGuide()
	eventRepo := newStubEventRepo()
	svc := NewEventService(eventRepo, newStubTripRepo(trip), newStubGuideRepo(guide))
	return svc, eventRepo, guide
}

// ── Create ────────────────────────────────────────────────────────────────────

func TestEventCreateInheritsTripPricing(t *testing.T) {
	trip := upsellTrip()
	svc, _, guide := newEventServiceFixture(trip)

	resp, err := svc.Create(context.Background(), createEventReq(trip, guide.ID, nil))
	require.NoError(t, err)

	assert.True(t, resp.EventPrice.Equal(dec("500000")))
	assert.True(t, resp.UpsellingEnabled)
	// fractional trip rate becomes a percentage on the event
	assert.True(t, resp.UpsellingPct.Equal(dec("10")))
	assert.True(t, resp.GuideCommissionRate.Equal(dec("0.03")))
	assert.True(t, resp.FinalPrice.Equal(dec("550000")), "got %s", resp.FinalPrice)
	assert.Equal(t, model.EventScheduled, resp.Status)
}

func TestEventCreateOverridePct(t *testing.T) {
	trip := upsellTrip()
	svc, _, guide := newEventServiceFixture(trip)

	pct := dec("20")
	resp, err := svc.Create(context.Background(), createEventReq(trip, guide.ID, &dto.EventPricingOverrides{
		UpsellingPct: &pct,
	}))
	require.NoError(t, err)

	// overriding the percentage re-splits commissions from its fraction
	assert.True(t, resp.UpsellingPct.Equal(dec("20")))
	assert.True(t, resp.GuideCommissionRate.Equal(dec("0.06")))
	assert.True(t, resp.CompanyCommissionRate.Equal(dec("0.06")))
	assert.True(t, resp.OtaCommissionRate.Equal(dec("0.08")))
	assert.True(t, resp.FinalPrice.Equal(dec("600000")))
}

func TestEventCreateOverrideDisablesUpselling(t *testing.T) {
	trip := upsellTrip()
	svc, _, guide := newEventServiceFixture(trip)

	off := false
	resp, err := svc.Create(context.Background(), createEventReq(trip, guide.ID, &dto.EventPricingOverrides{
		UpsellingEnabled: &off,
	}))
	require.NoError(t, err)

	assert.False(t, resp.UpsellingEnabled)
	assert.True(t, resp.UpsellingPct.IsZero())
	assert.True(t, resp.GuideCommissionRate.IsZero())
	assert.True(t, resp.FinalPrice.Equal(dec("500000")))
}

func TestEventCreatePctOutOfRange(t *testing.T) {
	trip := upsellTrip()
	svc, _, guide := newEventServiceFixture(trip)

	pct := dec("55")
	_, err := svc.Create(context.Background(), createEventReq(trip, guide.ID, &dto.EventPricingOverrides{
		UpsellingPct: &pct,
	}))
	assert.ErrorIs(t, err, pricing.ErrRateOutOfRange)
}

func TestEventCreateUnknownGuide(t *testing.T) {
	trip := upsellTrip()
	svc := NewEventService(newStubEventRepo(), newStubTripRepo(trip), newStubGuideRepo())

	_, err := svc.Create(context.Background(), createEventReq(trip, uuid.New(), nil))
	assert.True(t, IsNotFound(err))
}

// ── Update ────────────────────────────────────────────────────────────────────

func TestEventUpdateRecomputesFinalPrice(t *testing.T) {
	event := &model.Event{
		ID:               uuid.New(),
		TripID:           uuid.New(),
		GuideID:          uuid.New(),
		DepartureDate:    datatypes.Date(time.Now().AddDate(0, 0, 30)),
		EventPrice:       dec("500000"),
		UpsellingEnabled: true,
		UpsellingPct:     dec("7.5"),
		Status:           model.EventScheduled,
	}
	svc := NewEventService(newStubEventRepo(event), newStubTripRepo(), newStubGuideRepo())

	price := dec("333333")
	resp, err := svc.Update(context.Background(), event.ID, dto.UpdateEventRequest{
		Overrides: &dto.EventPricingOverrides{EventPrice: &price},
	})
	require.NoError(t, err)

	// 333333 × 1.075 = 358332.975, rounded to the whole currency unit
	assert.True(t, resp.FinalPrice.Equal(dec("358333")), "got %s", resp.FinalPrice)
}

func TestEventUpdateDepartedIsFrozen(t *testing.T) {
	event := &model.Event{
		ID:            uuid.New(),
		TripID:        uuid.New(),
		GuideID:       uuid.New(),
		DepartureDate: datatypes.Date(time.Now().AddDate(0, 0, -3)),
		EventPrice:    dec("500000"),
		FinalPrice:    dec("550000"),
		Status:        model.EventDeparted,
	}
	svc := NewEventService(newStubEventRepo(event), newStubTripRepo(), newStubGuideRepo())

	capacity := 30
	_, err := svc.Update(context.Background(), event.ID, dto.UpdateEventRequest{Capacity: &capacity})
	require.Error(t, err)
	assert.True(t, IsStateConflict(err))
	assert.True(t, event.FinalPrice.Equal(dec("550000")))
}

func TestEventSetStatus(t *testing.T) {
	event := scheduledEvent(uuid.New())
	svc := NewEventService(newStubEventRepo(event), newStubTripRepo(), newStubGuideRepo())

	require.NoError(t, svc.SetStatus(context.Background(), event.ID, model.EventDeparted))
	assert.Equal(t, model.EventDeparted, event.Status)

	// setting the current status again is a conflict, not a silent no-op
	err := svc.SetStatus(context.Background(), event.ID, model.EventDeparted)
	assert.True(t, IsStateConflict(err))
}
