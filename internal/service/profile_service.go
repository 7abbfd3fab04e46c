package service

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/leet-stalk/backend/internal/domain"
	"github.com/leet-stalk/backend/internal/leetcode"
)

// ProfileService exposes fresh-fetch profile reads and the catch-up
// estimator to the routing layer.
type ProfileService struct {
	fetcher  domain.ProfileFetcher
	userRepo domain.UserRepository
	tracer   trace.Tracer
	logger   *zap.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(
	fetcher domain.ProfileFetcher,
	userRepo domain.UserRepository,
	tracer trace.Tracer,
	logger *zap.Logger,
) *ProfileService {
	return &ProfileService{
		fetcher:  fetcher,
		userRepo: userRepo,
		tracer:   tracer,
		logger:   logger,
	}
}

// GetProfile fetches a fresh normalized profile for any LeetCode username
func (s *ProfileService) GetProfile(ctx context.Context, username string) (*domain.NormalizedProfile, error) {
	ctx, span := s.tracer.Start(ctx, "ProfileService.GetProfile")
	defer span.End()

	span.SetAttributes(attribute.String("leetcode.username", username))
	return s.fetcher.FetchProfile(ctx, username)
}

// GetOwnProfile fetches the profile behind the requester's own account
func (s *ProfileService) GetOwnProfile(ctx context.Context, userID uuid.UUID) (*domain.NormalizedProfile, error) {
	ctx, span := s.tracer.Start(ctx, "ProfileService.GetOwnProfile")
	defer span.End()

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	return s.fetcher.FetchProfile(ctx, user.Username)
}

// ActivityRange holds the aggregate submission count over a date range.
// The calendar carries no difficulty split, so the per-difficulty fields
// are always zero.
type ActivityRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Total     int    `json:"total"`
	Easy      int    `json:"easy"`
	Medium    int    `json:"medium"`
	Hard      int    `json:"hard"`
}

// GetActivityRange sums a username's calendar counts between two dates,
// both inclusive YYYY-MM-DD strings. Empty bounds default to today in
// Pacific time, the platform's own notion of a day.
func (s *ProfileService) GetActivityRange(ctx context.Context, username, startDate, endDate string) (*ActivityRange, error) {
	ctx, span := s.tracer.Start(ctx, "ProfileService.GetActivityRange")
	defer span.End()

	if startDate == "" {
		startDate = leetcode.PacificToday()
	}
	if endDate == "" {
		endDate = startDate
	}

	calendar, err := s.fetcher.FetchSubmissionCalendar(ctx, username)
	if err != nil {
		return nil, err
	}

	total, err := leetcode.SumCalendarRange(calendar, startDate, endDate)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.String("leetcode.username", username),
		attribute.Int("activity.total", total),
	)
	return &ActivityRange{StartDate: startDate, EndDate: endDate, Total: total}, nil
}

// EstimateCatchUp runs the pure estimator over already-known counts
func (s *ProfileService) EstimateCatchUp(self, target domain.SolvedStats, rates domain.DailyRates) domain.ComebackResult {
	return domain.EstimateCatchUp(self, target, rates)
}

// CompareWithTarget fetches fresh counts for the requester and a target
// username, then estimates the catch-up. The two stat fetches run
// concurrently; either failure fails the comparison, since both sides are
// required inputs to the estimator.
func (s *ProfileService) CompareWithTarget(
	ctx context.Context,
	userID uuid.UUID,
	targetUsername string,
	rates domain.DailyRates,
) (*domain.ComebackResult, error) {
	ctx, span := s.tracer.Start(ctx, "ProfileService.CompareWithTarget")
	defer span.End()

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.String("comeback.self", user.Username),
		attribute.String("comeback.target", targetUsername),
	)

	type statsResult struct {
		stats *domain.UserStats
		err   error
	}

	selfChan := make(chan statsResult, 1)
	targetChan := make(chan statsResult, 1)
	go func() {
		stats, err := s.fetcher.FetchUserStats(ctx, user.Username)
		selfChan <- statsResult{stats, err}
	}()
	go func() {
		stats, err := s.fetcher.FetchUserStats(ctx, targetUsername)
		targetChan <- statsResult{stats, err}
	}()

	selfResult := <-selfChan
	targetResult := <-targetChan
	if selfResult.err != nil {
		return nil, selfResult.err
	}
	if targetResult.err != nil {
		return nil, targetResult.err
	}

	result := domain.EstimateCatchUp(solvedFromStats(selfResult.stats), solvedFromStats(targetResult.stats), rates)
	return &result, nil
}

func solvedFromStats(stats *domain.UserStats) domain.SolvedStats {
	return domain.SolvedStats{
		TotalSolved:  stats.TotalSolved,
		EasySolved:   stats.EasySolved,
		MediumSolved: stats.MediumSolved,
		HardSolved:   stats.HardSolved,
	}
}
