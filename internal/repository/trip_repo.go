package repository

import (
	"context"

	"tourdesk/internal/dto"
	"tourdesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TripRepository defines the data access contract for master trip products.
type TripRepository interface {
	Create(ctx context.Context, t *model.Trip) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Trip, error)
	List(ctx context.Context, filter dto.TripFilter) ([]model.Trip, int64, error)
	Update(ctx context.Context, t *model.Trip) error
	UpdateTx(tx *gorm.DB, t *model.Trip) error
	SoftDelete(ctx context.Context, id uuid.UUID) error

	DB() *gorm.DB
}

type tripRepo struct{ db *gorm.DB }

func NewTripRepository(db *gorm.DB) TripRepository { return &tripRepo{db: db} }

func (r *tripRepo) Create(ctx context.Context, t *model.Trip) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *tripRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Trip, error) {
	var t model.Trip
	err := r.db.WithContext(ctx).Preload("Company").First(&t, id).Error
	return &t, err
}

func (r *tripRepo) List(ctx context.Context, filter dto.TripFilter) ([]model.Trip, int64, error) {
	var trips []model.Trip
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Trip{})
	if filter.Active != "all" {
		q = q.Where("active = ?", filter.Active != "false")
	}
	if filter.Title != "" {
		q = q.Where("title ILIKE ?", "%"+filter.Title+"%")
	}
	if filter.Destination != "" {
		q = q.Where("destination ILIKE ?", "%"+filter.Destination+"%")
	}
	if filter.CompanyID != "" {
		q = q.Where("company_id = ?", filter.CompanyID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("title ASC").Limit(filter.Limit).Offset(offset).Find(&trips).Error
	return trips, total, err
}

func (r *tripRepo) Update(ctx context.Context, t *model.Trip) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *tripRepo) UpdateTx(tx *gorm.DB, t *model.Trip) error {
	return tx.Save(t).Error
}

func (r *tripRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Trip{}).Where("id = ?", id).Update("active", false).Error
}

func (r *tripRepo) DB() *gorm.DB { return r.db }
