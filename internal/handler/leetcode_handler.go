package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leet-stalk/backend/internal/middleware"
	"github.com/leet-stalk/backend/internal/service"
)

// LeetCodeHandler handles fresh-fetch profile and activity requests
type LeetCodeHandler struct {
	profileService *service.ProfileService
}

// NewLeetCodeHandler creates a new LeetCode handler
func NewLeetCodeHandler(profileService *service.ProfileService) *LeetCodeHandler {
	return &LeetCodeHandler{
		profileService: profileService,
	}
}

// GetOwnProfile returns the authenticated user's LeetCode profile,
// freshly fetched
// GET /api/leetcode/profile
func (h *LeetCodeHandler) GetOwnProfile(c *gin.Context) {
	userID, ok := middleware.RequireUser(c)
	if !ok {
		return
	}

	profile, err := h.profileService.GetOwnProfile(c.Request.Context(), userID)
	if err != nil {
		status, message := upstreamStatus(err)
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// GetProfile returns any LeetCode username's profile, freshly fetched
// GET /api/leetcode/profile/:username
func (h *LeetCodeHandler) GetProfile(c *gin.Context) {
	username := c.Param("username")

	profile, err := h.profileService.GetProfile(c.Request.Context(), username)
	if err != nil {
		status, message := upstreamStatus(err)
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// GetActivityRange returns the aggregate submission count over a date
// range taken from the yearly calendar. Bounds default to today in the
// platform's timezone.
// GET /api/leetcode/activity/:username?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *LeetCodeHandler) GetActivityRange(c *gin.Context) {
	username := c.Param("username")

	activity, err := h.profileService.GetActivityRange(
		c.Request.Context(),
		username,
		c.Query("start"),
		c.Query("end"),
	)
	if err != nil {
		status, message := upstreamStatus(err)
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username": username,
		"activity": activity,
	})
}
