package handler

import (
	"net/http"

	"tourdesk/internal/apierror"
	"tourdesk/internal/dto"
	"tourdesk/internal/middleware"
	"tourdesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReviewHandler struct {
	svc service.ReviewService
}

func NewReviewHandler(svc service.ReviewService) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

// Submit accepts a traveler review for a departure. Member reviews go
// straight into the counted set; guest reviews wait for moderation.
func (h *ReviewHandler) Submit(c *gin.Context) {
	var req dto.SubmitReviewRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Submit(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ReviewHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReviewHandler) List(c *gin.Context) {
	var filter dto.ReviewFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Approve moves a pending review into the counted set and reports any
// star transition it caused.
func (h *ReviewHandler) Approve(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	reviewerID, ok := moderatorID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Approve(c.Request.Context(), id, reviewerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reject removes a review from consideration. Rejecting an approved
// review re-runs the guide's aggregate.
func (h *ReviewHandler) Reject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	reviewerID, ok := moderatorID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Reject(c.Request.Context(), id, reviewerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func moderatorID(c *gin.Context) (uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("invalid token subject"))
		return uuid.Nil, false
	}
	return id, true
}
