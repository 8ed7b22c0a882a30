package handler

import (
	"net/http"

	"tourdesk/internal/dto"
	"tourdesk/internal/service"

	"github.com/gin-gonic/gin"
)

type GuideHandler struct {
	svc        service.GuideService
	reputation service.ReputationService
}

func NewGuideHandler(svc service.GuideService, reputation service.ReputationService) *GuideHandler {
	return &GuideHandler{svc: svc, reputation: reputation}
}

func (h *GuideHandler) Create(c *gin.Context) {
	var req dto.CreateGuideRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *GuideHandler) Get(c *gin.Context) {
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

func (h *GuideHandler) List(c *gin.Context) {
	var filter dto.GuideFilter
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

func (h *GuideHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.UpdateGuideRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete soft-deletes a guide and rejects its reviews. Requires
// ?confirm=true because it cascades.
func (h *GuideHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	confirmed := c.Query("confirm") == "true"
	if err := h.svc.Delete(c.Request.Context(), id, confirmed); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetStarStatus manually promotes or demotes the guide, freezing the
// automatic transition rule.
func (h *GuideHandler) SetStarStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.SetStarStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.reputation.SetStarStatus(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ClearManualOverride returns the guide to automatic star management and
// immediately re-evaluates eligibility.
func (h *GuideHandler) ClearManualOverride(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.reputation.ClearManualOverride(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Recompute forces a reputation refresh, useful after out-of-band data
// fixes.
func (h *GuideHandler) Recompute(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.reputation.Recompute(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
