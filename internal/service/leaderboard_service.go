package service

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/leet-stalk/backend/internal/domain"
)

// LeaderboardService assembles ranked boards from fresh upstream fetches.
// Nothing here is persisted; every board is rebuilt per request.
type LeaderboardService struct {
	fetcher  domain.ProfileFetcher
	userRepo domain.UserRepository
	tracer   trace.Tracer
	logger   *zap.Logger
}

// NewLeaderboardService creates a new leaderboard service
func NewLeaderboardService(
	fetcher domain.ProfileFetcher,
	userRepo domain.UserRepository,
	tracer trace.Tracer,
	logger *zap.Logger,
) *LeaderboardService {
	return &LeaderboardService{
		fetcher:  fetcher,
		userRepo: userRepo,
		tracer:   tracer,
		logger:   logger,
	}
}

// fetchOutcome carries the per-username result of a concurrent fetch.
// Exactly one of profile/err is set.
type fetchOutcome struct {
	username string
	profile  *domain.NormalizedProfile
	err      error
}

// BuildForUser resolves the requester's account into an identity plus their
// followed usernames and builds their personalized board. Anonymous callers
// (uuid.Nil) get a board of nothing, matching the original behavior of an
// unauthenticated leaderboard request with no default users configured.
func (s *LeaderboardService) BuildForUser(ctx context.Context, userID uuid.UUID) ([]domain.LeaderboardEntry, error) {
	ctx, span := s.tracer.Start(ctx, "LeaderboardService.BuildForUser")
	defer span.End()

	if userID == uuid.Nil {
		return s.BuildLeaderboard(ctx, nil, nil)
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return s.BuildLeaderboard(ctx, nil, nil)
		}
		return nil, err
	}

	requester := &domain.RequesterIdentity{
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
	return s.BuildLeaderboard(ctx, requester, user.FollowingLeetCode)
}

// BuildLeaderboard fetches every followed username plus the requester's own
// profile, merges, deduplicates, sorts by total solved and assigns dense
// 1-based ranks.
//
// A fetch failure for any single username removes only that username from
// the board; the batch itself never fails because one handle went bad.
func (s *LeaderboardService) BuildLeaderboard(
	ctx context.Context,
	requester *domain.RequesterIdentity,
	followedUsernames []string,
) ([]domain.LeaderboardEntry, error) {
	ctx, span := s.tracer.Start(ctx, "LeaderboardService.BuildLeaderboard")
	defer span.End()

	// The requester is fetched through its own path; drop their handle
	// from the external list so it is not fetched twice.
	external := followedUsernames
	if requester != nil && requester.Username != "" {
		external = make([]string, 0, len(followedUsernames))
		for _, username := range followedUsernames {
			if username != requester.Username {
				external = append(external, username)
			}
		}
	}

	span.SetAttributes(
		attribute.Int("leaderboard.external_count", len(external)),
		attribute.Bool("leaderboard.personalized", requester != nil),
	)

	outcomes := s.gatherProfiles(ctx, external)

	entries := make([]domain.LeaderboardEntry, 0, len(outcomes)+1)
	for _, outcome := range outcomes {
		if outcome.err != nil {
			s.logger.Warn("Dropping leaderboard entry after failed fetch",
				zap.String("username", outcome.username),
				zap.Error(outcome.err),
			)
			continue
		}
		entries = append(entries, externalEntry(outcome.profile))
	}

	if requester != nil && requester.Username != "" {
		profile, err := s.fetcher.FetchProfile(ctx, requester.Username)
		if err != nil {
			// The requester's own entry is simply omitted.
			s.logger.Warn("Could not fetch requester's own profile",
				zap.String("username", requester.Username),
				zap.Error(err),
			)
		} else {
			entries = mergeRequester(entries, platformEntry(requester, profile))
		}
	}

	// Ties keep their insertion order; no secondary key is guaranteed.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].SolvedStats.TotalSolved > entries[j].SolvedStats.TotalSolved
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	span.SetAttributes(attribute.Int("leaderboard.size", len(entries)))
	return entries, nil
}

// gatherProfiles fetches all usernames concurrently and returns one outcome
// per input, in input order. Completion order is whatever the scheduler
// produces; only the final outcomes matter downstream.
func (s *LeaderboardService) gatherProfiles(ctx context.Context, usernames []string) []fetchOutcome {
	outcomes := make([]fetchOutcome, len(usernames))
	done := make(chan struct{}, len(usernames))

	for i, username := range usernames {
		go func(slot int, username string) {
			profile, err := s.fetcher.FetchProfile(ctx, username)
			outcomes[slot] = fetchOutcome{username: username, profile: profile, err: err}
			done <- struct{}{}
		}(i, username)
	}
	for range usernames {
		<-done
	}
	return outcomes
}

// mergeRequester appends the platform-sourced entry, dropping any external
// duplicate first. Equality is by entry id, falling back to username.
func mergeRequester(entries []domain.LeaderboardEntry, platform domain.LeaderboardEntry) []domain.LeaderboardEntry {
	merged := entries[:0]
	for _, entry := range entries {
		if entry.EntryID == platform.EntryID {
			continue
		}
		if entry.Source == domain.SourceExternal && entry.Username == platform.Username {
			continue
		}
		merged = append(merged, entry)
	}
	return append(merged, platform)
}

// externalEntry builds a board entry for a followed LeetCode username
func externalEntry(profile *domain.NormalizedProfile) domain.LeaderboardEntry {
	first, last := splitRealName(profile.Profile.RealName)
	entry := domain.LeaderboardEntry{
		EntryID:             "leetcode_" + profile.Username,
		Username:            profile.Username,
		FirstName:           first,
		LastName:            last,
		AvatarURL:           profile.Profile.AvatarURL,
		SolvedStats:         profile.SolvedStats,
		ProblemsSolvedToday: profile.ProblemsSolvedToday,
		LastFetched:         profile.LastFetched,
		Source:              domain.SourceExternal,
	}
	if profile.Contest != nil {
		entry.ContestRating = profile.Contest.Rating
	}
	return entry
}

// platformEntry builds the requester's own board entry
func platformEntry(requester *domain.RequesterIdentity, profile *domain.NormalizedProfile) domain.LeaderboardEntry {
	entry := externalEntry(profile)
	entry.EntryID = requester.ID.String()
	entry.Username = requester.Username
	entry.Source = domain.SourcePlatform
	if requester.FirstName != "" || requester.LastName != "" {
		entry.FirstName = requester.FirstName
		entry.LastName = requester.LastName
	}
	return entry
}

// splitRealName splits an upstream display name into first/last parts
func splitRealName(realName string) (string, string) {
	fields := strings.Fields(realName)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}
