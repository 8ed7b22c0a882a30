package repository

import (
	"context"

	"tourdesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StaffRepository defines the data access contract for console users.
type StaffRepository interface {
	Create(ctx context.Context, s *model.Staff) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Staff, error)
	FindByUsername(ctx context.Context, username string) (*model.Staff, error)
	List(ctx context.Context) ([]model.Staff, error)
	Update(ctx context.Context, s *model.Staff) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type staffRepo struct{ db *gorm.DB }

func NewStaffRepository(db *gorm.DB) StaffRepository { return &staffRepo{db: db} }

func (r *staffRepo) Create(ctx context.Context, s *model.Staff) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *staffRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	var s model.Staff
	err := r.db.WithContext(ctx).First(&s, id).Error
	return &s, err
}

func (r *staffRepo) FindByUsername(ctx context.Context, username string) (*model.Staff, error) {
	var s model.Staff
	err := r.db.WithContext(ctx).Where("username = ? AND active = true", username).First(&s).Error
	return &s, err
}

func (r *staffRepo) List(ctx context.Context) ([]model.Staff, error) {
	var staff []model.Staff
	err := r.db.WithContext(ctx).Order("username ASC").Find(&staff).Error
	return staff, err
}

func (r *staffRepo) Update(ctx context.Context, s *model.Staff) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *staffRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).Model(&model.Staff{}).Where("id = ?", id).Update("active", active).Error
}
