package repository

import (
	"context"
	"time"

	"tourdesk/internal/dto"
	"tourdesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventRepository defines the data access contract for scheduled departures.
type EventRepository interface {
	Create(ctx context.Context, e *model.Event) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Event, error)
	List(ctx context.Context, filter dto.EventFilter) ([]model.Event, int64, error)
	Update(ctx context.Context, e *model.Event) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error

	// Used inside the pricing cascade transaction. "Future" means departure
	// date >= today — departed events keep their historical pricing.
	ListFutureByTripTx(tx *gorm.DB, tripID uuid.UUID, today time.Time) ([]model.Event, error)
	UpdatePricingTx(tx *gorm.DB, e *model.Event) error

	DB() *gorm.DB
}

type eventRepo struct{ db *gorm.DB }

func NewEventRepository(db *gorm.DB) EventRepository { return &eventRepo{db: db} }

func (r *eventRepo) Create(ctx context.Context, e *model.Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *eventRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	var e model.Event
	err := r.db.WithContext(ctx).Preload("Trip").Preload("Guide").First(&e, id).Error
	return &e, err
}

func (r *eventRepo) List(ctx context.Context, filter dto.EventFilter) ([]model.Event, int64, error) {
	var events []model.Event
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Event{})
	if filter.TripID != "" {
		q = q.Where("trip_id = ?", filter.TripID)
	}
	if filter.GuideID != "" {
		q = q.Where("guide_id = ?", filter.GuideID)
	}
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.From != "" {
		q = q.Where("departure_date >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("departure_date <= ?", filter.To)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("departure_date ASC").Limit(filter.Limit).Offset(offset).Find(&events).Error
	return events, total, err
}

func (r *eventRepo) Update(ctx context.Context, e *model.Event) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *eventRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).Model(&model.Event{}).Where("id = ?", id).Update("status", status).Error
}

func (r *eventRepo) ListFutureByTripTx(tx *gorm.DB, tripID uuid.UUID, today time.Time) ([]model.Event, error) {
	var events []model.Event
	err := tx.Where("trip_id = ? AND departure_date >= ? AND status = ?",
		tripID, today.Format("2006-01-02"), model.EventScheduled).Find(&events).Error
	return events, err
}

func (r *eventRepo) UpdatePricingTx(tx *gorm.DB, e *model.Event) error {
	return tx.Model(&model.Event{}).Where("id = ?", e.ID).Updates(map[string]interface{}{
		"upselling_enabled":       e.UpsellingEnabled,
		"upselling_pct":           e.UpsellingPct,
		"guide_commission_rate":   e.GuideCommissionRate,
		"company_commission_rate": e.CompanyCommissionRate,
		"ota_commission_rate":     e.OtaCommissionRate,
		"final_price":             e.FinalPrice,
	}).Error
}

func (r *eventRepo) DB() *gorm.DB { return r.db }
