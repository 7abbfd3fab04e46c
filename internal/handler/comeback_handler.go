package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leet-stalk/backend/internal/domain"
	"github.com/leet-stalk/backend/internal/middleware"
	"github.com/leet-stalk/backend/internal/service"
)

// ComebackHandler handles catch-up estimation requests
type ComebackHandler struct {
	profileService *service.ProfileService
}

// NewComebackHandler creates a new comeback handler
func NewComebackHandler(profileService *service.ProfileService) *ComebackHandler {
	return &ComebackHandler{
		profileService: profileService,
	}
}

// EstimateRequest represents the estimate request body. Clients either send
// both stat records directly (e.g. from an already rendered board) or name
// a target username to compare against with fresh fetches.
type EstimateRequest struct {
	Self           *domain.SolvedStats `json:"self"`
	Target         *domain.SolvedStats `json:"target"`
	TargetUsername string              `json:"target_username"`
	Rates          domain.DailyRates   `json:"rates"`
}

// Estimate computes how many days the requester needs to catch up to a
// target at the given per-difficulty daily rates
// POST /api/comeback/estimate
func (h *ComebackHandler) Estimate(c *gin.Context) {
	userID, ok := middleware.RequireUser(c)
	if !ok {
		return
	}

	var req EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if req.Self != nil && req.Target != nil {
		result := h.profileService.EstimateCatchUp(*req.Self, *req.Target, req.Rates)
		c.JSON(http.StatusOK, gin.H{"result": result})
		return
	}

	if req.TargetUsername == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Either both stat records or a target username is required",
		})
		return
	}

	result, err := h.profileService.CompareWithTarget(c.Request.Context(), userID, req.TargetUsername, req.Rates)
	if err != nil {
		status, message := upstreamStatus(err)
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}
