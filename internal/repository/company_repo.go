package repository

import (
	"context"

	"tourdesk/internal/dto"
	"tourdesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CompanyRepository defines the data access contract for land operators.
type CompanyRepository interface {
	Create(ctx context.Context, c *model.Company) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error)
	List(ctx context.Context, filter dto.CompanyFilter) ([]model.Company, int64, error)
	Update(ctx context.Context, c *model.Company) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type companyRepo struct{ db *gorm.DB }

func NewCompanyRepository(db *gorm.DB) CompanyRepository { return &companyRepo{db: db} }

func (r *companyRepo) Create(ctx context.Context, c *model.Company) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *companyRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	var c model.Company
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *companyRepo) List(ctx context.Context, filter dto.CompanyFilter) ([]model.Company, int64, error) {
	var companies []model.Company
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Company{})
	if filter.Active != "all" {
		q = q.Where("active = ?", filter.Active != "false")
	}
	if filter.Name != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.City != "" {
		q = q.Where("city = ?", filter.City)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("name ASC").Limit(filter.Limit).Offset(offset).Find(&companies).Error
	return companies, total, err
}

func (r *companyRepo) Update(ctx context.Context, c *model.Company) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *companyRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Company{}).Where("id = ?", id).Update("active", false).Error
}
