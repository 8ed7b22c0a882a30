package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"tourdesk/internal/dto"
	"tourdesk/internal/model"
	"tourdesk/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

type stubGuideRepo struct {
	guides          map[uuid.UUID]*model.Guide
	aggregateWrites int
	starWrites      int
}

var _ repository.GuideRepository = (*stubGuideRepo)(nil)

func newStubGuideRepo(guides ...*model.Guide) *stubGuideRepo {
	m := make(map[uuid.UUID]*model.Guide, len(guides))
	for _, g := range guides {
		m[g.ID] = g
	}
	return &stubGuideRepo{guides: m}
}

func (r *stubGuideRepo) Create(_ context.Context, g *model.Guide) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	r.guides[g.ID] = g
	return nil
}

func (r *stubGuideRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Guide, error) {
	g, ok := r.guides[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return g, nil
}

func (r *stubGuideRepo) List(_ context.Context, _ dto.GuideFilter) ([]model.Guide, int64, error) {
	out := make([]model.Guide, 0, len(r.guides))
	for _, g := range r.guides {
		out = append(out, *g)
	}
	return out, int64(len(out)), nil
}

func (r *stubGuideRepo) Update(_ context.Context, g *model.Guide) error {
	r.guides[g.ID] = g
	return nil
}

func (r *stubGuideRepo) SoftDeleteCascade(_ context.Context, id uuid.UUID) error {
	g, ok := r.guides[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	g.Active = false
	return nil
}

func (r *stubGuideRepo) FindByIDForUpdate(_ *gorm.DB, id uuid.UUID) (*model.Guide, error) {
	g, ok := r.guides[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *g
	return &cp, nil
}

func (r *stubGuideRepo) UpdateAggregateTx(_ *gorm.DB, id uuid.UUID, avg decimal.Decimal, total int) error {
	g, ok := r.guides[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	g.AverageRating = avg
	g.TotalReviews = total
	r.aggregateWrites++
	return nil
}

func (r *stubGuideRepo) UpdateStarStatusTx(_ *gorm.DB, id uuid.UUID, isStar bool, since *time.Time, tier *string, manual bool) error {
	g, ok := r.guides[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	g.IsStarGuide = isStar
	g.StarGuideSince = since
	g.StarGuideTier = tier
	g.ManualPromotion = manual
	r.starWrites++
	return nil
}

func (r *stubGuideRepo) DB() *gorm.DB { return nil }

type stubReviewRepo struct {
	reviews map[uuid.UUID]*model.Review
}

var _ repository.ReviewRepository = (*stubReviewRepo)(nil)

func newStubReviewRepo(reviews ...*model.Review) *stubReviewRepo {
	m := make(map[uuid.UUID]*model.Review, len(reviews))
	for _, rv := range reviews {
		if rv.ID == uuid.Nil {
			rv.ID = uuid.New()
		}
		m[rv.ID] = rv
	}
	return &stubReviewRepo{reviews: m}
}

func (r *stubReviewRepo) Create(_ context.Context, rv *model.Review) error {
	if rv.ID == uuid.Nil {
		rv.ID = uuid.New()
	}
	r.reviews[rv.ID] = rv
	return nil
}

func (r *stubReviewRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Review, error) {
	rv, ok := r.reviews[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return rv, nil
}

func (r *stubReviewRepo) List(_ context.Context, _ dto.ReviewFilter) ([]model.Review, int64, error) {
	out := make([]model.Review, 0, len(r.reviews))
	for _, rv := range r.reviews {
		out = append(out, *rv)
	}
	return out, int64(len(out)), nil
}

func (r *stubReviewRepo) ListApprovedByGuideTx(_ *gorm.DB, guideID uuid.UUID) ([]model.Review, error) {
	var out []model.Review
	for _, rv := range r.reviews {
		if rv.GuideID == guideID && rv.Status == model.ReviewApproved {
			out = append(out, *rv)
		}
	}
	return out, nil
}

func (r *stubReviewRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string, reviewedBy uuid.UUID, reviewedAt time.Time) error {
	rv, ok := r.reviews[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	rv.Status = status
	rv.ReviewedBy = &reviewedBy
	rv.ReviewedAt = &reviewedAt
	return nil
}

func (r *stubReviewRepo) DB() *gorm.DB { return nil }

// ── Helpers ───────────────────────────────────────────────────────────────────

func approvedReview(guideID uuid.UUID, rating string) *model.Review {
	return &model.Review{
		ID:          uuid.New(),
		GuideID:     guideID,
		EventID:     uuid.New(),
		AuthorName:  "traveler",
		Status:      model.ReviewApproved,
		GuideRating: decimal.RequireFromString(rating),
	}
}

func newTestGuide() *model.Guide {
	return &model.Guide{
		ID:        uuid.New(),
		CompanyID: uuid.New(),
		Name:      "Mina Park",
		Active:    true,
	}
}

// ── Recompute ─────────────────────────────────────────────────────────────────

func TestRecomputeAutoPromotion(t *testing.T) {
	guide := newTestGuide()
	guideRepo := newStubGuideRepo(guide)
	reviewRepo := newStubReviewRepo(
		approvedReview(guide.ID, "5.0"),
		approvedReview(guide.ID, "4.0"),
		approvedReview(guide.ID, "5.0"),
	)
	svc := NewReputationService(guideRepo, reviewRepo, nil, nil)

	resp, err := svc.Recompute(context.Background(), guide.ID)
	require.NoError(t, err)

	assert.True(t, resp.Changed)
	assert.Equal(t, "auto-promoted", resp.Summary)
	assert.Equal(t, "4.7", resp.Guide.AverageRating.String())
	assert.Equal(t, 3, resp.Guide.TotalReviews)
	assert.True(t, resp.Guide.IsStarGuide)
	require.NotNil(t, resp.Guide.StarGuideTier)
	assert.Equal(t, model.TierBronze, *resp.Guide.StarGuideTier)
	assert.NotNil(t, resp.Guide.StarGuideSince)
}

func TestRecomputeBelowReviewCountThreshold(t *testing.T) {
	// Two perfect reviews are not enough; the count floor is three.
	guide := newTestGuide()
	guideRepo := newStubGuideRepo(guide)
	reviewRepo := newStubReviewRepo(
		approvedReview(guide.ID, "5.0"),
		approvedReview(guide.ID, "5.0"),
	)
	svc := NewReputationService(guideRepo, reviewRepo, nil, nil)

	resp, err := svc.Recompute(context.Background(), guide.ID)
	require.NoError(t, err)

	assert.False(t, resp.Changed)
	assert.Equal(t, "no transition", resp.Summary)
	assert.False(t, resp.Guide.IsStarGuide)
	assert.Equal(t, "5", resp.Guide.AverageRating.String())
	assert.Equal(t, 2, resp.Guide.TotalReviews)
}

func TestRecomputeAverageBoundary(t *testing.T) {
	// Exactly 4.0 over exactly three reviews qualifies.
	guide := newTestGuide()
	guideRepo := newStubGuideRepo(guide)
	reviewRepo := newStubReviewRepo(
		approvedReview(guide.ID, "4.0"),
		approvedReview(guide.ID, "4.0"),
		approvedReview(guide.ID, "4.0"),
	)
	svc := NewReputationService(guideRepo, reviewRepo, nil, nil)

	resp, err := svc.Recompute(context.Background(), guide.ID)
	require.NoError(t, err)
	assert.True(t, resp.Guide.IsStarGuide)

	// 3.9 does not.
	guide2 := newTestGuide()
	guideRepo2 := newStubGuideRepo(guide2)
	reviewRepo2 := newStubReviewRepo(
		approvedReview(guide2.ID, "4.0"),
		approvedReview(guide2.ID, "4.0"),
		approvedReview(guide2.ID, "3.7"),
	)
	svc2 := NewReputationService(guideRepo2, reviewRepo2, nil, nil)

	resp2, err := svc2.Recompute(context.Background(), guide2.ID)
	require.NoError(t, err)
	assert.Equal(t, "3.9", resp2.Guide.AverageRating.String())
	assert.False(t, resp2.Guide.IsStarGuide)
}

func TestRecomputeIdempotent(t *testing.T) {
	guide := newTestGuide()
	guideRepo := newStubGuideRepo(guide)
	reviewRepo := newStubReviewRepo(
		approvedReview(guide.ID, "5.0"),
		approvedReview(guide.ID, "4.5"),
		approvedReview(guide.ID, "4.0"),
	)
	svc := NewReputationService(guideRepo, reviewRepo, nil, nil)

	first, err := svc.Recompute(context.Background(), guide.ID)
	require.NoError(t, err)
	require.True(t, first.Changed)

	second, err := svc.Recompute(context.Background(), guide.ID)
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.Equal(t, "no transition", second.Summary)
	assert.Equal(t, first.Guide.AverageRating, second.Guide.AverageRating)
	assert.Equal(t, 1, guideRepo.starWrites)
}

func TestRecomputeAutoDemotion(t *testing.T) {
	since := time.Now().Add(-24 * time.Hour)
	tier := model.TierBronze
	guide := newTestGuide()
	guide.IsStarGuide = true
	guide.StarGuideSince = &since
	guide.StarGuideTier = &tier

	guideRepo := newStubGuideRepo(guide)
	reviewRepo := newStubReviewRepo(
		approvedReview(guide.ID, "4.0"),
		approvedReview(guide.ID, "3.0"),
		approvedReview(guide.ID, "3.0"),
	)
	svc := NewReputationService(guideRepo, reviewRepo, nil, nil)

	resp, err := svc.Recompute(context.Background(), guide.ID)
	require.NoError(t, err)

	assert.True(t, resp.Changed)
	assert.Equal(t, "auto-demoted", resp.Summary)
	assert.False(t, resp.Guide.IsStarGuide)
	assert.Nil(t, resp.Guide.StarGuideSince)
	assert.Nil(t, resp.Guide.StarGuideTier)
}

func TestRecomputeEmptyCountedSet(t *testing.T) {
	guide := newTestGuide()
	guide.AverageRating = decimal.RequireFromString("4.5")
	guide.TotalReviews = 5

	guideRepo := newStubGuideRepo(guide)
	svc := NewReputationService(guideRepo, newStubReviewRepo(), nil, nil)

	resp, err := svc.Recompute(context.Background(), guide.ID)
	require.NoError(t, err)

	assert.True(t, resp.Guide.AverageRating.IsZero())
	assert.Equal(t, 0, resp.Guide.TotalReviews)
}

func TestRecomputeGuideNotFound(t *testing.T) {
	svc := NewReputationService(newStubGuideRepo(), newStubReviewRepo(), nil, nil)

	_, err := svc.Recompute(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "guide", nf.Entity)
}

// ── Manual override ───────────────────────────────────────────────────────────

func TestManualOverrideBlocksDemotion(t *testing.T) {
	since := time.Now().Add(-24 * time.Hour)
	tier := model.TierGold
	guide := newTestGuide()
	guide.IsStarGuide = true
	guide.ManualPromotion = true
	guide.StarGuideSince = &since
	guide.StarGuideTier = &tier

	guideRepo := newStubGuideRepo(guide)
	reviewRepo := newStubReviewRepo(approvedReview(guide.ID, "2.0"))
	svc := NewReputationService(guideRepo, reviewRepo, nil, nil)

	resp, err := svc.Recompute(context.Background(), guide.ID)
	require.NoError(t, err)

	assert.False(t, resp.Changed)
	assert.Equal(t, "demotion skipped — manual override held", resp.Summary)
	assert.True(t, resp.Guide.IsStarGuide)
	require.NotNil(t, resp.Guide.StarGuideTier)
	assert.Equal(t, model.TierGold, *resp.Guide.StarGuideTier)
	assert.Equal(t, 0, guideRepo.starWrites)
}

func TestManualOverrideBlocksPromotion(t *testing.T) {
	// Manually demoted guide stays demoted even when the stats qualify.
	guide := newTestGuide()
	guide.ManualPromotion = true

	guideRepo := newStubGuideRepo(guide)
	reviewRepo := newStubReviewRepo(
		approvedReview(guide.ID, "5.0"),
		approvedReview(guide.ID, "5.0"),
		approvedReview(guide.ID, "5.0"),
	)
	svc := NewReputationService(guideRepo, reviewRepo, nil, nil)

	resp, err := svc.Recompute(context.Background(), guide.ID)
	require.NoError(t, err)

	assert.False(t, resp.Changed)
	assert.Equal(t, "no transition (manual override held)", resp.Summary)
	assert.False(t, resp.Guide.IsStarGuide)
}

func TestManualStarStaysQuietWhenEligibilityCatchesUp(t *testing.T) {
	// A manually promoted guide later meeting the automatic criteria must
	// not fire a second promotion event.
	since := time.Now().Add(-72 * time.Hour)
	tier := model.TierBronze
	guide := newTestGuide()
	guide.IsStarGuide = true
	guide.ManualPromotion = true
	guide.StarGuideSince = &since
	guide.StarGuideTier = &tier

	guideRepo := newStubGuideRepo(guide)
	reviewRepo := newStubReviewRepo(
		approvedReview(guide.ID, "3.0"),
		approvedReview(guide.ID, "5.0"),
		approvedReview(guide.ID, "5.0"),
		approvedReview(guide.ID, "5.0"),
	)
	svc := NewReputationService(guideRepo, reviewRepo, nil, nil)

	resp, err := svc.Recompute(context.Background(), guide.ID)
	require.NoError(t, err)

	assert.False(t, resp.Changed)
	assert.Equal(t, "no transition (manual override held)", resp.Summary)
	assert.True(t, resp.Guide.IsStarGuide)
	assert.Equal(t, since.Format("2006-01-02T15:04:05Z"), *resp.Guide.StarGuideSince)
	assert.Equal(t, 0, guideRepo.starWrites)
}

func TestSetStarStatusPromoteUnmet(t *testing.T) {
	guide := newTestGuide()
	guideRepo := newStubGuideRepo(guide)
	svc := NewReputationService(guideRepo, newStubReviewRepo(), nil, nil)

	resp, err := svc.SetStarStatus(context.Background(), guide.ID, dto.SetStarStatusRequest{IsStarGuide: true})
	require.NoError(t, err)

	assert.True(t, resp.Changed)
	assert.Equal(t, "manually promoted (condition unmet)", resp.Summary)
	assert.True(t, resp.Guide.IsStarGuide)
	assert.True(t, resp.Guide.ManualPromotion)
	require.NotNil(t, resp.Guide.StarGuideTier)
	assert.Equal(t, model.TierBronze, *resp.Guide.StarGuideTier)
}

func TestSetStarStatusTier(t *testing.T) {
	guide := newTestGuide()
	guide.AverageRating = decimal.RequireFromString("4.8")
	guide.TotalReviews = 12
	guideRepo := newStubGuideRepo(guide)
	svc := NewReputationService(guideRepo, newStubReviewRepo(), nil, nil)

	tier := model.TierSilver
	resp, err := svc.SetStarStatus(context.Background(), guide.ID, dto.SetStarStatusRequest{IsStarGuide: true, Tier: &tier})
	require.NoError(t, err)

	assert.Equal(t, "manually promoted", resp.Summary)
	require.NotNil(t, resp.Guide.StarGuideTier)
	assert.Equal(t, model.TierSilver, *resp.Guide.StarGuideTier)
}

func TestSetStarStatusDemote(t *testing.T) {
	since := time.Now()
	tier := model.TierBronze
	guide := newTestGuide()
	guide.IsStarGuide = true
	guide.StarGuideSince = &since
	guide.StarGuideTier = &tier

	guideRepo := newStubGuideRepo(guide)
	svc := NewReputationService(guideRepo, newStubReviewRepo(), nil, nil)

	resp, err := svc.SetStarStatus(context.Background(), guide.ID, dto.SetStarStatusRequest{IsStarGuide: false})
	require.NoError(t, err)

	assert.True(t, resp.Changed)
	assert.Equal(t, "manually demoted", resp.Summary)
	assert.False(t, resp.Guide.IsStarGuide)
	assert.Nil(t, resp.Guide.StarGuideSince)
	assert.Nil(t, resp.Guide.StarGuideTier)
	assert.True(t, resp.Guide.ManualPromotion)
}

func TestClearManualOverrideReappliesRule(t *testing.T) {
	// A manually held star guide whose stats no longer qualify is demoted
	// the moment the override is lifted.
	since := time.Now().Add(-48 * time.Hour)
	tier := model.TierBronze
	guide := newTestGuide()
	guide.IsStarGuide = true
	guide.ManualPromotion = true
	guide.StarGuideSince = &since
	guide.StarGuideTier = &tier

	guideRepo := newStubGuideRepo(guide)
	reviewRepo := newStubReviewRepo(approvedReview(guide.ID, "3.0"))
	svc := NewReputationService(guideRepo, reviewRepo, nil, nil)

	resp, err := svc.ClearManualOverride(context.Background(), guide.ID)
	require.NoError(t, err)

	assert.True(t, resp.Changed)
	assert.Equal(t, "auto-demoted", resp.Summary)
	assert.False(t, resp.Guide.IsStarGuide)
	assert.False(t, resp.Guide.ManualPromotion)
}

// ── Pure helpers ──────────────────────────────────────────────────────────────

func TestAggregateRatingsRounding(t *testing.T) {
	guideID := uuid.New()
	avg, total := aggregateRatings([]model.Review{
		*approvedReview(guideID, "5.0"),
		*approvedReview(guideID, "4.0"),
		*approvedReview(guideID, "2.0"),
	})
	assert.Equal(t, "3.7", avg.String()) // 11/3 = 3.66… rounds to 3.7
	assert.Equal(t, 3, total)
}

func TestAggregateRatingsEmpty(t *testing.T) {
	avg, total := aggregateRatings(nil)
	assert.True(t, avg.IsZero())
	assert.Zero(t, total)
}
