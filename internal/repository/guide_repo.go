package repository

import (
	"context"
	"time"

	"tourdesk/internal/dto"
	"tourdesk/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GuideRepository defines the data access contract for guides.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via in-memory stubs.
type GuideRepository interface {
	Create(ctx context.Context, g *model.Guide) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Guide, error)
	List(ctx context.Context, filter dto.GuideFilter) ([]model.Guide, int64, error)
	Update(ctx context.Context, g *model.Guide) error

	// SoftDeleteCascade deactivates the guide and rejects all of its
	// reviews in one transaction so they drop out of every counted set.
	SoftDeleteCascade(ctx context.Context, id uuid.UUID) error

	// Used inside the reputation recompute transaction — callers must pass
	// the tx instance. FindByIDForUpdate takes a FOR UPDATE row lock so
	// concurrent recomputes for the same guide serialize.
	FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Guide, error)
	UpdateAggregateTx(tx *gorm.DB, id uuid.UUID, avg decimal.Decimal, total int) error
	UpdateStarStatusTx(tx *gorm.DB, id uuid.UUID, isStar bool, since *time.Time, tier *string, manual bool) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type guideRepo struct{ db *gorm.DB }

func NewGuideRepository(db *gorm.DB) GuideRepository { return &guideRepo{db: db} }

func (r *guideRepo) Create(ctx context.Context, g *model.Guide) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *guideRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Guide, error) {
	var g model.Guide
	err := r.db.WithContext(ctx).Preload("Company").First(&g, id).Error
	return &g, err
}

func (r *guideRepo) List(ctx context.Context, filter dto.GuideFilter) ([]model.Guide, int64, error) {
	var guides []model.Guide
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Guide{})
	if filter.Active != "all" {
		q = q.Where("active = ?", filter.Active != "false")
	}
	if filter.Name != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.CompanyID != "" {
		q = q.Where("company_id = ?", filter.CompanyID)
	}
	if filter.StarOnly {
		q = q.Where("is_star_guide = true")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("name ASC").Limit(filter.Limit).Offset(offset).Find(&guides).Error
	return guides, total, err
}

func (r *guideRepo) Update(ctx context.Context, g *model.Guide) error {
	return r.db.WithContext(ctx).Save(g).Error
}

func (r *guideRepo) SoftDeleteCascade(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Guide{}).Where("id = ?", id).
			Update("active", false).Error; err != nil {
			return err
		}
		return tx.Model(&model.Review{}).
			Where("guide_id = ? AND status <> ?", id, model.ReviewRejected).
			Update("status", model.ReviewRejected).Error
	})
}

func (r *guideRepo) FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Guide, error) {
	var g model.Guide
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&g, id).Error
	return &g, err
}

func (r *guideRepo) UpdateAggregateTx(tx *gorm.DB, id uuid.UUID, avg decimal.Decimal, total int) error {
	return tx.Model(&model.Guide{}).Where("id = ?", id).Updates(map[string]interface{}{
		"average_rating": avg,
		"total_reviews":  total,
	}).Error
}

func (r *guideRepo) UpdateStarStatusTx(tx *gorm.DB, id uuid.UUID, isStar bool, since *time.Time, tier *string, manual bool) error {
	return tx.Model(&model.Guide{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_star_guide":    isStar,
		"star_guide_since": since,
		"star_guide_tier":  tier,
		"manual_promotion": manual,
	}).Error
}

func (r *guideRepo) DB() *gorm.DB { return r.db }
