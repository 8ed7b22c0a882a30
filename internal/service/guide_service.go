package service

import (
	"context"
	"encoding/json"
	"time"

	"tourdesk/internal/dto"
	"tourdesk/internal/model"
	"tourdesk/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// guideCacheTTL bounds staleness of the read-through guide cache. Writes to
// reputation or star status invalidate the key eagerly.
const guideCacheTTL = 5 * time.Minute

// GuideService defines the business logic contract for guides.
type GuideService interface {
	Create(ctx context.Context, req dto.CreateGuideRequest) (*dto.GuideResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.GuideResponse, error)
	List(ctx context.Context, filter dto.GuideFilter) (*dto.GuideListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateGuideRequest) (*dto.GuideResponse, error)
	// Delete soft-deletes the guide and rejects all of its reviews so they
	// leave every counted set. Requires explicit confirmation.
	Delete(ctx context.Context, id uuid.UUID, confirmed bool) error
}

type guideService struct {
	repo        repository.GuideRepository
	companyRepo repository.CompanyRepository
	reputation  ReputationService
	rdb         *redis.Client
}

func NewGuideService(
	repo repository.GuideRepository,
	companyRepo repository.CompanyRepository,
	reputation ReputationService,
	rdb *redis.Client,
) GuideService {
	return &guideService{repo: repo, companyRepo: companyRepo, reputation: reputation, rdb: rdb}
}

func (s *guideService) Create(ctx context.Context, req dto.CreateGuideRequest) (*dto.GuideResponse, error) {
	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		return nil, err
	}
	if _, err := s.companyRepo.FindByID(ctx, companyID); err != nil {
		return nil, &NotFoundError{Entity: "company", ID: companyID}
	}

	g := &model.Guide{
		CompanyID: companyID,
		Name:      req.Name,
		Bio:       req.Bio,
		Languages: req.Languages,
		Email:     req.Email,
		Phone:     req.Phone,
		PhotoURL:  req.PhotoURL,
		Active:    true,
	}
	if err := s.repo.Create(ctx, g); err != nil {
		return nil, err
	}
	resp := guideToResponse(g)
	return &resp, nil
}

func (s *guideService) GetByID(ctx context.Context, id uuid.UUID) (*dto.GuideResponse, error) {
	// Read-through cache: single-guide fetches back the public profile page
	// and get hit hard; reputation writes invalidate the key.
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, guideCacheKey(id)).Result(); err == nil {
			var resp dto.GuideResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return &resp, nil
			}
		}
	}

	g, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, &NotFoundError{Entity: "guide", ID: id}
	}
	resp := guideToResponse(g)

	if s.rdb != nil {
		if data, err := json.Marshal(resp); err == nil {
			if err := s.rdb.Set(ctx, guideCacheKey(id), data, guideCacheTTL).Err(); err != nil {
				log.Warn().Err(err).Str("guide_id", id.String()).Msg("guide cache write failed")
			}
		}
	}
	return &resp, nil
}

func (s *guideService) List(ctx context.Context, filter dto.GuideFilter) (*dto.GuideListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	guides, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.GuideResponse, 0, len(guides))
	for i := range guides {
		items = append(items, guideToResponse(&guides[i]))
	}
	return &dto.GuideListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *guideService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateGuideRequest) (*dto.GuideResponse, error) {
	g, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, &NotFoundError{Entity: "guide", ID: id}
	}
	if req.Name != nil {
		g.Name = *req.Name
	}
	if req.Bio != nil {
		g.Bio = req.Bio
	}
	if req.Languages != nil {
		g.Languages = *req.Languages
	}
	if req.Email != nil {
		g.Email = req.Email
	}
	if req.Phone != nil {
		g.Phone = req.Phone
	}
	if req.PhotoURL != nil {
		g.PhotoURL = req.PhotoURL
	}
	if err := s.repo.Update(ctx, g); err != nil {
		return nil, err
	}
	if s.rdb != nil {
		s.rdb.Del(ctx, guideCacheKey(id))
	}
	resp := guideToResponse(g)
	return &resp, nil
}

func (s *guideService) Delete(ctx context.Context, id uuid.UUID, confirmed bool) error {
	if !confirmed {
		return ErrConfirmRequired
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return &NotFoundError{Entity: "guide", ID: id}
	}
	if err := s.repo.SoftDeleteCascade(ctx, id); err != nil {
		return err
	}
	// The cascade rejected every review, so the counted set changed.
	if _, err := s.reputation.Recompute(ctx, id); err != nil {
		return err
	}
	return nil
}

func guideToResponse(g *model.Guide) dto.GuideResponse {
	resp := dto.GuideResponse{
		ID:              g.ID.String(),
		CompanyID:       g.CompanyID.String(),
		Name:            g.Name,
		Bio:             g.Bio,
		Languages:       g.Languages,
		Email:           g.Email,
		Phone:           g.Phone,
		PhotoURL:        g.PhotoURL,
		AverageRating:   g.AverageRating,
		TotalReviews:    g.TotalReviews,
		IsStarGuide:     g.IsStarGuide,
		StarGuideTier:   g.StarGuideTier,
		ManualPromotion: g.ManualPromotion,
		Active:          g.Active,
		CreatedAt:       g.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if g.StarGuideSince != nil {
		t := g.StarGuideSince.Format("2006-01-02T15:04:05Z")
		resp.StarGuideSince = &t
	}
	if g.Company != nil {
		resp.CompanyName = g.Company.Name
	}
	return resp
}
