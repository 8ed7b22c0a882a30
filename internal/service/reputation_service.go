package service

import (
	"context"
	"fmt"
	"time"

	"tourdesk/internal/dto"
	"tourdesk/internal/model"
	"tourdesk/internal/repository"
	"tourdesk/internal/worker"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Star guide auto-eligibility thresholds: a guide qualifies once their
// rounded average reaches 4.0 over at least 3 approved reviews.
var starMinAverage = decimal.NewFromFloat(4.0)

const starMinReviews = 3

// ReputationService owns the guide aggregate (average rating, review count)
// and the star-guide status derived from it. Recompute is the ONLY writer of
// those fields and always derives them from the full approved-review set —
// never incrementally — so repeated runs with an unchanged set are no-ops.
type ReputationService interface {
	// Recompute refreshes the guide's aggregate from the counted review set
	// and re-applies the automatic star transition rule.
	Recompute(ctx context.Context, guideID uuid.UUID) (*dto.StarTransitionResponse, error)

	// SetStarStatus is the operator's manual toggle. It may set any star
	// value regardless of eligibility and raises the manual-promotion flag,
	// freezing automatic transitions until ClearManualOverride.
	SetStarStatus(ctx context.Context, guideID uuid.UUID, req dto.SetStarStatusRequest) (*dto.StarTransitionResponse, error)

	// ClearManualOverride drops the manual flag and immediately re-applies
	// the automatic rule.
	ClearManualOverride(ctx context.Context, guideID uuid.UUID) (*dto.StarTransitionResponse, error)
}

type reputationService struct {
	guideRepo  repository.GuideRepository
	reviewRepo repository.ReviewRepository
	rdb        *redis.Client
	dispatcher *worker.Dispatcher
}

func NewReputationService(
	guideRepo repository.GuideRepository,
	reviewRepo repository.ReviewRepository,
	rdb *redis.Client,
	dispatcher *worker.Dispatcher,
) ReputationService {
	return &reputationService{
		guideRepo:  guideRepo,
		reviewRepo: reviewRepo,
		rdb:        rdb,
		dispatcher: dispatcher,
	}
}

// starTransition is the outcome of one evaluation of the transition rule.
type starTransition struct {
	changed  bool
	promoted bool
	summary  string
}

// ── Recompute ─────────────────────────────────────────────────────────────────
// Runs "fetch reviews → compute → write guide" inside one transaction with a
// FOR UPDATE lock on the guide row, so concurrent approvals for the same
// guide serialize and the last write is always derived from the full set.

func (s *reputationService) Recompute(ctx context.Context, guideID uuid.UUID) (*dto.StarTransitionResponse, error) {
	var guide *model.Guide
	var transition starTransition

	txErr := runTx(ctx, s.guideRepo.DB(), func(tx *gorm.DB) error {
		g, err := s.guideRepo.FindByIDForUpdate(tx, guideID)
		if err != nil {
			return &NotFoundError{Entity: "guide", ID: guideID}
		}

		reviews, err := s.reviewRepo.ListApprovedByGuideTx(tx, guideID)
		if err != nil {
			return err
		}

		avg, total := aggregateRatings(reviews)
		if err := s.guideRepo.UpdateAggregateTx(tx, guideID, avg, total); err != nil {
			return err
		}
		g.AverageRating = avg
		g.TotalReviews = total

		transition = evaluateStar(g, time.Now())
		if transition.changed {
			if err := s.guideRepo.UpdateStarStatusTx(tx, guideID,
				g.IsStarGuide, g.StarGuideSince, g.StarGuideTier, g.ManualPromotion); err != nil {
				return err
			}
		}

		guide = g
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.invalidateCache(ctx, guideID)

	if transition.changed {
		log.Info().
			Str("guide_id", guideID.String()).
			Str("summary", transition.summary).
			Str("average_rating", guide.AverageRating.String()).
			Int("total_reviews", guide.TotalReviews).
			Msg("star status transition")
	}
	if transition.promoted {
		s.notifyPromotion(ctx, guide)
	}

	resp := guideToTransitionResponse(guide, transition)
	return &resp, nil
}

// ── SetStarStatus ─────────────────────────────────────────────────────────────

func (s *reputationService) SetStarStatus(ctx context.Context, guideID uuid.UUID, req dto.SetStarStatusRequest) (*dto.StarTransitionResponse, error) {
	g, err := s.guideRepo.FindByID(ctx, guideID)
	if err != nil {
		return nil, &NotFoundError{Entity: "guide", ID: guideID}
	}

	changed := g.IsStarGuide != req.IsStarGuide
	g.ManualPromotion = true
	if req.IsStarGuide {
		if changed {
			now := time.Now()
			g.StarGuideSince = &now
		}
		tier := model.TierBronze
		if req.Tier != nil {
			tier = *req.Tier
		} else if g.StarGuideTier != nil {
			tier = *g.StarGuideTier
		}
		g.StarGuideTier = &tier
	} else {
		g.StarGuideSince = nil
		g.StarGuideTier = nil
	}
	g.IsStarGuide = req.IsStarGuide

	if err := s.guideRepo.Update(ctx, g); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, guideID)

	summary := "manually demoted"
	if req.IsStarGuide {
		if eligible(g.AverageRating, g.TotalReviews) {
			summary = "manually promoted"
		} else {
			summary = "manually promoted (condition unmet)"
		}
	}
	log.Info().Str("guide_id", guideID.String()).Str("summary", summary).Msg("manual star override")

	resp := guideToTransitionResponse(g, starTransition{changed: changed, summary: summary})
	return &resp, nil
}

// ── ClearManualOverride ───────────────────────────────────────────────────────

func (s *reputationService) ClearManualOverride(ctx context.Context, guideID uuid.UUID) (*dto.StarTransitionResponse, error) {
	g, err := s.guideRepo.FindByID(ctx, guideID)
	if err != nil {
		return nil, &NotFoundError{Entity: "guide", ID: guideID}
	}

	g.ManualPromotion = false
	if err := s.guideRepo.Update(ctx, g); err != nil {
		return nil, err
	}

	// The next aggregator run re-applies the automatic rule; do it now so
	// the operator sees the effect immediately.
	return s.Recompute(ctx, guideID)
}

// ── Pure rule evaluation ──────────────────────────────────────────────────────

// aggregateRatings derives the guide aggregate from the counted set.
// Zero approved reviews means a 0.0 average, not NaN.
func aggregateRatings(reviews []model.Review) (decimal.Decimal, int) {
	total := len(reviews)
	if total == 0 {
		return decimal.Zero, 0
	}
	sum := decimal.Zero
	for _, r := range reviews {
		sum = sum.Add(r.GuideRating)
	}
	return sum.Div(decimal.NewFromInt(int64(total))).Round(1), total
}

func eligible(avg decimal.Decimal, total int) bool {
	return avg.GreaterThanOrEqual(starMinAverage) && total >= starMinReviews
}

// evaluateStar applies the transition rule in place on g and reports what
// happened. While the manual-promotion flag is set, both directions are
// frozen and g is left untouched.
func evaluateStar(g *model.Guide, now time.Time) starTransition {
	isEligible := eligible(g.AverageRating, g.TotalReviews)

	if g.ManualPromotion {
		if g.IsStarGuide && !isEligible {
			return starTransition{summary: "demotion skipped — manual override held"}
		}
		return starTransition{summary: "no transition (manual override held)"}
	}

	switch {
	case isEligible && !g.IsStarGuide:
		g.IsStarGuide = true
		g.StarGuideSince = &now
		tier := model.TierBronze
		g.StarGuideTier = &tier
		return starTransition{changed: true, promoted: true, summary: "auto-promoted"}
	case !isEligible && g.IsStarGuide:
		g.IsStarGuide = false
		g.StarGuideSince = nil
		g.StarGuideTier = nil
		return starTransition{changed: true, summary: "auto-demoted"}
	default:
		return starTransition{summary: "no transition"}
	}
}

// ── Side effects ──────────────────────────────────────────────────────────────

func guideCacheKey(id uuid.UUID) string { return "guide:" + id.String() }

func (s *reputationService) invalidateCache(ctx context.Context, guideID uuid.UUID) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, guideCacheKey(guideID)).Err(); err != nil {
		log.Warn().Err(err).Str("guide_id", guideID.String()).Msg("guide cache invalidation failed")
	}
}

func (s *reputationService) notifyPromotion(ctx context.Context, g *model.Guide) {
	if s.dispatcher == nil || g.Email == nil || *g.Email == "" {
		return
	}
	payload := worker.NotifyJobPayload{
		ToEmail: *g.Email,
		Subject: "You are now a Star Guide!",
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour traveler rating reached %s over %d reviews and you have been promoted to Star Guide (bronze tier). Congratulations!\n",
			g.Name, g.AverageRating.String(), g.TotalReviews),
	}
	if err := s.dispatcher.EnqueueNotify(ctx, payload); err != nil {
		log.Warn().Err(err).Str("guide_id", g.ID.String()).Msg("failed to enqueue promotion email")
	}
}

func guideToTransitionResponse(g *model.Guide, t starTransition) dto.StarTransitionResponse {
	return dto.StarTransitionResponse{
		Changed: t.changed,
		Summary: t.summary,
		Guide:   guideToResponse(g),
	}
}
