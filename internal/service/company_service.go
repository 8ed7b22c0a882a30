package service

import (
	"context"

	"tourdesk/internal/dto"
	"tourdesk/internal/model"
	"tourdesk/internal/repository"

	"github.com/google/uuid"
)

// CompanyService defines the business logic contract for land operators.
type CompanyService interface {
	Create(ctx context.Context, req dto.CreateCompanyRequest) (*dto.CompanyResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.CompanyResponse, error)
	List(ctx context.Context, filter dto.CompanyFilter) (*dto.CompanyListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateCompanyRequest) (*dto.CompanyResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type companyService struct {
	repo repository.CompanyRepository
}

func NewCompanyService(repo repository.CompanyRepository) CompanyService {
	return &companyService{repo: repo}
}

func (s *companyService) Create(ctx context.Context, req dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	c := &model.Company{
		Name:          req.Name,
		LicenseNumber: req.LicenseNumber,
		City:          req.City,
		ContactName:   req.ContactName,
		ContactEmail:  req.ContactEmail,
		ContactPhone:  req.ContactPhone,
		Active:        true,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	resp := companyToResponse(c)
	return &resp, nil
}

func (s *companyService) GetByID(ctx context.Context, id uuid.UUID) (*dto.CompanyResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, &NotFoundError{Entity: "company", ID: id}
	}
	resp := companyToResponse(c)
	return &resp, nil
}

func (s *companyService) List(ctx context.Context, filter dto.CompanyFilter) (*dto.CompanyListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	companies, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CompanyResponse, 0, len(companies))
	for i := range companies {
		items = append(items, companyToResponse(&companies[i]))
	}
	return &dto.CompanyListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *companyService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, &NotFoundError{Entity: "company", ID: id}
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.City != nil {
		c.City = *req.City
	}
	if req.ContactName != nil {
		c.ContactName = req.ContactName
	}
	if req.ContactEmail != nil {
		c.ContactEmail = req.ContactEmail
	}
	if req.ContactPhone != nil {
		c.ContactPhone = req.ContactPhone
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	resp := companyToResponse(c)
	return &resp, nil
}

func (s *companyService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return &NotFoundError{Entity: "company", ID: id}
	}
	return s.repo.SoftDelete(ctx, id)
}

func companyToResponse(c *model.Company) dto.CompanyResponse {
	return dto.CompanyResponse{
		ID:            c.ID.String(),
		Name:          c.Name,
		LicenseNumber: c.LicenseNumber,
		City:          c.City,
		ContactName:   c.ContactName,
		ContactEmail:  c.ContactEmail,
		ContactPhone:  c.ContactPhone,
		Active:        c.Active,
		CreatedAt:     c.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
