package handler

import (
	"errors"
	"net/http"

	"github.com/leet-stalk/backend/internal/domain"
)

// upstreamStatus translates upstream fetch errors into an HTTP status and a
// user-facing message. Not-found is distinct from rate limiting, and both
// are distinct from transient unavailability.
func upstreamStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		return http.StatusNotFound, "LeetCode user not found or profile is private"
	case errors.Is(err, domain.ErrUpstreamRateLimited):
		return http.StatusTooManyRequests, "LeetCode API rate limit reached, please try again in a few minutes"
	case errors.Is(err, domain.ErrUpstreamTimeout), errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable, "LeetCode API is unavailable, please try again later"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
