package repository

import (
	"context"
	"time"

	"tourdesk/internal/dto"
	"tourdesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReviewRepository defines the data access contract for guide reviews.
type ReviewRepository interface {
	Create(ctx context.Context, rv *model.Review) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Review, error)
	List(ctx context.Context, filter dto.ReviewFilter) ([]model.Review, int64, error)

	// ListApprovedByGuideTx feeds the reputation recompute; it runs inside
	// the per-guide transaction so the counted set and the aggregate write
	// are consistent.
	ListApprovedByGuideTx(tx *gorm.DB, guideID uuid.UUID) ([]model.Review, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, reviewedBy uuid.UUID, reviewedAt time.Time) error

	DB() *gorm.DB
}

type reviewRepo struct{ db *gorm.DB }

func NewReviewRepository(db *gorm.DB) ReviewRepository { return &reviewRepo{db: db} }

func (r *reviewRepo) Create(ctx context.Context, rv *model.Review) error {
	return r.db.WithContext(ctx).Create(rv).Error
}

func (r *reviewRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	var rv model.Review
	err := r.db.WithContext(ctx).First(&rv, id).Error
	return &rv, err
}

func (r *reviewRepo) List(ctx context.Context, filter dto.ReviewFilter) ([]model.Review, int64, error) {
	var reviews []model.Review
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Review{})
	if filter.GuideID != "" {
		q = q.Where("guide_id = ?", filter.GuideID)
	}
	if filter.EventID != "" {
		q = q.Where("event_id = ?", filter.EventID)
	}
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("created_at DESC").Limit(filter.Limit).Offset(offset).Find(&reviews).Error
	return reviews, total, err
}

func (r *reviewRepo) ListApprovedByGuideTx(tx *gorm.DB, guideID uuid.UUID) ([]model.Review, error) {
	var reviews []model.Review
	err := tx.Where("guide_id = ? AND status = ?", guideID, model.ReviewApproved).Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string, reviewedBy uuid.UUID, reviewedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Review{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":      status,
		"reviewed_by": reviewedBy,
		"reviewed_at": reviewedAt,
	}).Error
}

func (r *reviewRepo) DB() *gorm.DB { return r.db }
