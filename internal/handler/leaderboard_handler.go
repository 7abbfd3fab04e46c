package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/leet-stalk/backend/internal/middleware"
	"github.com/leet-stalk/backend/internal/service"
)

// LeaderboardHandler handles leaderboard HTTP requests
type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(leaderboardService *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardService: leaderboardService,
	}
}

// GetLeaderboard returns the ranked board. The endpoint is public; a valid
// bearer token personalizes it with the requester's followed handles and
// their own entry.
// GET /api/users/leaderboard
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	if userID == uuid.Nil {
		// Anonymous request: nothing to personalize.
		c.JSON(http.StatusOK, gin.H{"leaderboard": []any{}})
		return
	}

	entries, err := h.leaderboardService.BuildForUser(c.Request.Context(), userID)
	if err != nil {
		status, message := upstreamStatus(err)
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}
