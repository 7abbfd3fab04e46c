package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/leet-stalk/backend/internal/domain"
	"github.com/leet-stalk/backend/internal/middleware"
	"github.com/leet-stalk/backend/internal/service"
)

// FriendHandler handles follow-list HTTP requests
type FriendHandler struct {
	userService *service.UserService
}

// NewFriendHandler creates a new friend handler
func NewFriendHandler(userService *service.UserService) *FriendHandler {
	return &FriendHandler{
		userService: userService,
	}
}

// FollowRequest represents the follow request body
type FollowRequest struct {
	LeetCodeUsername string `json:"leetcode_username" binding:"required"`
}

// Follow starts tracking a LeetCode username
// POST /api/friends/follow
func (h *FriendHandler) Follow(c *gin.Context) {
	userID, ok := middleware.RequireUser(c)
	if !ok {
		return
	}

	var req FollowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	username := strings.TrimSpace(req.LeetCodeUsername)
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "LeetCode username is required",
		})
		return
	}

	user, err := h.userService.Follow(c.Request.Context(), userID, username)
	if err != nil {
		switch err {
		case domain.ErrAlreadyFollowing:
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "You are already following this LeetCode user",
			})
		default:
			status, message := upstreamStatus(err)
			c.JSON(status, gin.H{"error": message})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           "Successfully following LeetCode user",
		"leetcode_username": username,
		"following_count":   len(user.FollowingLeetCode),
	})
}

// Unfollow stops tracking a LeetCode username
// DELETE /api/friends/unfollow/:leetcodeUsername
func (h *FriendHandler) Unfollow(c *gin.Context) {
	userID, ok := middleware.RequireUser(c)
	if !ok {
		return
	}

	username := c.Param("leetcodeUsername")

	user, err := h.userService.Unfollow(c.Request.Context(), userID, username)
	if err != nil {
		switch err {
		case domain.ErrNotFollowing:
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "You are not following this LeetCode user",
			})
		default:
			status, message := upstreamStatus(err)
			c.JSON(status, gin.H{"error": message})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           "Successfully unfollowed LeetCode user",
		"leetcode_username": username,
		"following_count":   len(user.FollowingLeetCode),
	})
}

// GetFollowing lists followed handles with freshly fetched stats
// GET /api/friends/following
func (h *FriendHandler) GetFollowing(c *gin.Context) {
	userID, ok := middleware.RequireUser(c)
	if !ok {
		return
	}

	following, err := h.userService.ListFollowing(c.Request.Context(), userID)
	if err != nil {
		status, message := upstreamStatus(err)
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"following":       following,
		"total_following": len(following),
	})
}

// Search looks up a LeetCode handle to follow
// GET /api/friends/search?q=<username>
func (h *FriendHandler) Search(c *gin.Context) {
	userID, ok := middleware.RequireUser(c)
	if !ok {
		return
	}

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Search query is required",
		})
		return
	}

	result, err := h.userService.SearchExternal(c.Request.Context(), userID, query)
	if err != nil {
		status, message := upstreamStatus(err)
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusOK, result)
}
