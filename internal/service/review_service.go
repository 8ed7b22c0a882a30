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
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ReviewService manages the review moderation lifecycle:
// pending → approved | rejected. Member reviews are auto-approved on
// submission; guests queue for moderation. Every status change that alters
// a guide's counted review set triggers a reputation recompute — this is
// the single coupling point between moderation and star status.
type ReviewService interface {
	Submit(ctx context.Context, req dto.SubmitReviewRequest) (*dto.ReviewResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ReviewResponse, error)
	List(ctx context.Context, filter dto.ReviewFilter) (*dto.ReviewListResponse, error)
	Approve(ctx context.Context, id, reviewerID uuid.UUID) (*dto.ModerationResponse, error)
	Reject(ctx context.Context, id, reviewerID uuid.UUID) (*dto.ModerationResponse, error)
}

type reviewService struct {
	repo            repository.ReviewRepository
	eventRepo       repository.EventRepository
	reputation      ReputationService
	dispatcher      *worker.Dispatcher
	moderationInbox string
}

func NewReviewService(
	repo repository.ReviewRepository,
	eventRepo repository.EventRepository,
	reputation ReputationService,
	dispatcher *worker.Dispatcher,
	moderationInbox string,
) ReviewService {
	return &reviewService{
		repo:            repo,
		eventRepo:       eventRepo,
		reputation:      reputation,
		dispatcher:      dispatcher,
		moderationInbox: moderationInbox,
	}
}

// ── Submit ────────────────────────────────────────────────────────────────────

func (s *reviewService) Submit(ctx context.Context, req dto.SubmitReviewRequest) (*dto.ReviewResponse, error) {
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return nil, fmt.Errorf("invalid event_id: %w", err)
	}
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, &NotFoundError{Entity: "event", ID: eventID}
	}

	overall, err := deriveOverallRating(
		req.Professionalism, req.Communication, req.Knowledge, req.Kindness, req.Punctuality)
	if err != nil {
		return nil, err
	}

	// Members are pre-trusted; guests require moderation.
	status := model.ReviewPending
	if req.MembershipType == model.MembershipMember {
		status = model.ReviewApproved
	}

	review := &model.Review{
		GuideID:         event.GuideID,
		EventID:         eventID,
		AuthorName:      req.AuthorName,
		MembershipType:  req.MembershipType,
		Comment:         req.Comment,
		Professionalism: req.Professionalism,
		Communication:   req.Communication,
		Knowledge:       req.Knowledge,
		Kindness:        req.Kindness,
		Punctuality:     req.Punctuality,
		GuideRating:     overall,
		Status:          status,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, err
	}

	if status == model.ReviewApproved {
		// Auto-approved submission enters the counted set immediately.
		if _, err := s.reputation.Recompute(ctx, event.GuideID); err != nil {
			return nil, err
		}
	} else {
		s.notifyPendingReview(ctx, review)
	}

	resp := reviewToResponse(review)
	return &resp, nil
}

func (s *reviewService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ReviewResponse, error) {
	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, &NotFoundError{Entity: "review", ID: id}
	}
	resp := reviewToResponse(review)
	return &resp, nil
}

func (s *reviewService) List(ctx context.Context, filter dto.ReviewFilter) (*dto.ReviewListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	reviews, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		items = append(items, reviewToResponse(&reviews[i]))
	}
	return &dto.ReviewListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── Approve ───────────────────────────────────────────────────────────────────
// Valid only from pending. Approving adds the review to the counted set,
// so the aggregator and star rule re-run for the review's guide.

func (s *reviewService) Approve(ctx context.Context, id, reviewerID uuid.UUID) (*dto.ModerationResponse, error) {
	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, &NotFoundError{Entity: "review", ID: id}
	}
	if review.Status != model.ReviewPending {
		return nil, &StateConflictError{Entity: "review", Current: review.Status, Attempted: "approve"}
	}

	now := time.Now()
	if err := s.repo.UpdateStatus(ctx, id, model.ReviewApproved, reviewerID, now); err != nil {
		return nil, err
	}
	review.Status = model.ReviewApproved
	review.ReviewedBy = &reviewerID
	review.ReviewedAt = &now

	transition, err := s.reputation.Recompute(ctx, review.GuideID)
	if err != nil {
		return nil, err
	}
	return moderationResponse(review, transition), nil
}

// ── Reject ────────────────────────────────────────────────────────────────────
// Valid from pending (never counted, no recompute needed) and forcibly from
// approved — removing an approved review from the counted set MUST re-run
// the aggregator. Rejected is terminal.

func (s *reviewService) Reject(ctx context.Context, id, reviewerID uuid.UUID) (*dto.ModerationResponse, error) {
	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, &NotFoundError{Entity: "review", ID: id}
	}
	if review.Status == model.ReviewRejected {
		return nil, &StateConflictError{Entity: "review", Current: review.Status, Attempted: "reject"}
	}
	wasApproved := review.Status == model.ReviewApproved

	now := time.Now()
	if err := s.repo.UpdateStatus(ctx, id, model.ReviewRejected, reviewerID, now); err != nil {
		return nil, err
	}
	review.Status = model.ReviewRejected
	review.ReviewedBy = &reviewerID
	review.ReviewedAt = &now

	var transition *dto.StarTransitionResponse
	if wasApproved {
		transition, err = s.reputation.Recompute(ctx, review.GuideID)
		if err != nil {
			return nil, err
		}
	}
	return moderationResponse(review, transition), nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// deriveOverallRating averages the non-zero category sub-ratings to one
// decimal place. A review rating no category at all is invalid input.
func deriveOverallRating(categories ...int) (decimal.Decimal, error) {
	sum := 0
	rated := 0
	for _, c := range categories {
		if c > 0 {
			sum += c
			rated++
		}
	}
	if rated == 0 {
		return decimal.Zero, ErrNoRatedCategories
	}
	return decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(rated))).Round(1), nil
}

func (s *reviewService) notifyPendingReview(ctx context.Context, review *model.Review) {
	if s.dispatcher == nil || s.moderationInbox == "" {
		return
	}
	payload := worker.NotifyJobPayload{
		ToEmail: s.moderationInbox,
		Subject: "Review pending moderation",
		Body: fmt.Sprintf(
			"A guest review by %q (rated %s) is waiting for moderation.\nReview ID: %s\nGuide ID: %s\n",
			review.AuthorName, review.GuideRating.String(), review.ID.String(), review.GuideID.String()),
	}
	if err := s.dispatcher.EnqueueNotify(ctx, payload); err != nil {
		log.Warn().Err(err).Str("review_id", review.ID.String()).Msg("failed to enqueue moderation alert")
	}
}

func moderationResponse(review *model.Review, transition *dto.StarTransitionResponse) *dto.ModerationResponse {
	resp := &dto.ModerationResponse{Review: reviewToResponse(review)}
	if transition != nil {
		summary := transition.Summary
		resp.StarTransition = &summary
	}
	return resp
}

func reviewToResponse(r *model.Review) dto.ReviewResponse {
	resp := dto.ReviewResponse{
		ID:              r.ID.String(),
		GuideID:         r.GuideID.String(),
		EventID:         r.EventID.String(),
		AuthorName:      r.AuthorName,
		MembershipType:  r.MembershipType,
		Comment:         r.Comment,
		Professionalism: r.Professionalism,
		Communication:   r.Communication,
		Knowledge:       r.Knowledge,
		Kindness:        r.Kindness,
		Punctuality:     r.Punctuality,
		GuideRating:     r.GuideRating,
		Status:          r.Status,
		CreatedAt:       r.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if r.ReviewedBy != nil {
		id := r.ReviewedBy.String()
		resp.ReviewedBy = &id
	}
	if r.ReviewedAt != nil {
		t := r.ReviewedAt.Format("2006-01-02T15:04:05Z")
		resp.ReviewedAt = &t
	}
	return resp
}
