package leetcode

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/leet-stalk/backend/internal/domain"
	"github.com/leet-stalk/backend/internal/infrastructure"
)

// Fetcher builds fresh NormalizedProfiles from the upstream GraphQL API.
// Every call re-queries the platform; nothing is cached or persisted.
type Fetcher struct {
	client      *Client
	recentLimit int
	metrics     *infrastructure.TelemetryMetrics
	tracer      trace.Tracer
	logger      *zap.Logger
}

// NewFetcher creates a profile fetcher on top of the rate-limited client
func NewFetcher(client *Client, recentLimit int, metrics *infrastructure.TelemetryMetrics, tracer trace.Tracer, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		client:      client,
		recentLimit: recentLimit,
		metrics:     metrics,
		tracer:      tracer,
		logger:      logger,
	}
}

// compile-time check that Fetcher satisfies the domain port
var _ domain.ProfileFetcher = (*Fetcher)(nil)

// Wire payloads. Pointer fields distinguish "absent" from zero values;
// upstream omits whole objects for unknown users and contest-less accounts.

type profilePayload struct {
	MatchedUser *struct {
		Username string `json:"username"`
		Profile  struct {
			RealName    string `json:"realName"`
			UserAvatar  string `json:"userAvatar"`
			Ranking     *int   `json:"ranking"`
			Reputation  int    `json:"reputation"`
			CountryName string `json:"countryName"`
		} `json:"profile"`
		SubmitStats struct {
			ACSubmissionNum []struct {
				Difficulty string `json:"difficulty"`
				Count      int    `json:"count"`
			} `json:"acSubmissionNum"`
		} `json:"submitStats"`
	} `json:"matchedUser"`
}

type contestPayload struct {
	UserContestRanking *struct {
		AttendedContestsCount int      `json:"attendedContestsCount"`
		Rating                *float64 `json:"rating"`
		GlobalRanking         *int     `json:"globalRanking"`
		TopPercentage         *float64 `json:"topPercentage"`
	} `json:"userContestRanking"`
}

type recentPayload struct {
	RecentSubmissionList []struct {
		Title         string `json:"title"`
		TitleSlug     string `json:"titleSlug"`
		Timestamp     string `json:"timestamp"`
		StatusDisplay string `json:"statusDisplay"`
		Lang          string `json:"lang"`
	} `json:"recentSubmissionList"`
}

type calendarPayload struct {
	MatchedUser *struct {
		UserCalendar *struct {
			SubmissionCalendar string `json:"submissionCalendar"`
		} `json:"userCalendar"`
	} `json:"matchedUser"`
}

const (
	partProfile     = "profile"
	partContest     = "contest"
	partSubmissions = "submissions"
)

// FetchProfile fetches and normalizes everything known about a username.
//
// Three queries run concurrently, each still passing through the shared
// rate-limiter cursor. The profile+stats query is the primary one: its
// failure fails the whole fetch, and an absent matchedUser object means the
// identity does not exist upstream. The contest and recent-submissions
// queries are secondary; their failures degrade to a nil contest summary
// and a zero solved-today count.
func (f *Fetcher) FetchProfile(ctx context.Context, username string) (*domain.NormalizedProfile, error) {
	ctx, span := f.tracer.Start(ctx, "Fetcher.FetchProfile")
	defer span.End()

	span.SetAttributes(attribute.String("leetcode.username", username))

	type partResult struct {
		part string
		data json.RawMessage
		err  error
	}

	queries := []struct {
		part      string
		query     string
		variables map[string]any
	}{
		{partProfile, profileQuery, map[string]any{"username": username}},
		{partContest, contestRankingQuery, map[string]any{"username": username}},
		{partSubmissions, recentSubmissionsQuery, map[string]any{"username": username, "limit": f.recentLimit}},
	}

	resultChan := make(chan partResult, len(queries))

	// Fan-out: the three queries have no ordering dependency on each other.
	for _, q := range queries {
		go func(part, query string, variables map[string]any) {
			data, err := f.client.Call(ctx, query, variables)
			resultChan <- partResult{part: part, data: data, err: err}
		}(q.part, q.query, q.variables)
	}

	// Fan-in: collect whatever arrives, in any order.
	raw := make(map[string]json.RawMessage, len(queries))
	errs := make(map[string]error, len(queries))
	for range queries {
		result := <-resultChan
		raw[result.part] = result.data
		errs[result.part] = result.err
	}

	if err := errs[partProfile]; err != nil {
		return nil, err
	}

	var profile profilePayload
	if err := json.Unmarshal(raw[partProfile], &profile); err != nil {
		return nil, domain.ErrMalformedUpstreamData
	}
	matched := profile.MatchedUser
	if matched == nil || matched.Username == "" {
		return nil, domain.ErrProfileNotFound
	}

	stats := domain.SolvedStats{}
	for _, entry := range matched.SubmitStats.ACSubmissionNum {
		stats.ACSubmissions += entry.Count
		switch domain.Difficulty(entry.Difficulty) {
		case domain.DifficultyEasy:
			stats.EasySolved = entry.Count
		case domain.DifficultyMedium:
			stats.MediumSolved = entry.Count
		case domain.DifficultyHard:
			stats.HardSolved = entry.Count
		}
	}
	// Upstream totals diverge from their own breakdown; never trust them.
	stats.Recompute()

	normalized := &domain.NormalizedProfile{
		Username: matched.Username,
		Profile: domain.ProfileInfo{
			RealName:   matched.Profile.RealName,
			AvatarURL:  matched.Profile.UserAvatar,
			Ranking:    matched.Profile.Ranking,
			Reputation: matched.Profile.Reputation,
			Country:    matched.Profile.CountryName,
		},
		SolvedStats: stats,
		Contest:     f.parseContest(username, raw[partContest], errs[partContest]),
		LastFetched: time.Now(),
	}
	normalized.ProblemsSolvedToday = ProblemsSolvedToday(
		f.parseSubmissions(username, raw[partSubmissions], errs[partSubmissions]),
	)

	if f.metrics != nil {
		f.metrics.ProfilesFetched.Add(ctx, 1)
	}
	span.SetAttributes(attribute.Int("leetcode.total_solved", stats.TotalSolved))
	return normalized, nil
}

// parseContest turns the contest part into a summary, degrading to nil on
// any failure. A missing ranking record is normal for contest-less users.
func (f *Fetcher) parseContest(username string, data json.RawMessage, callErr error) *domain.ContestSummary {
	if callErr != nil {
		f.logger.Debug("Contest query failed, continuing without it",
			zap.String("username", username),
			zap.Error(callErr),
		)
		return nil
	}

	var contest contestPayload
	if err := json.Unmarshal(data, &contest); err != nil || contest.UserContestRanking == nil {
		return nil
	}

	ranking := contest.UserContestRanking
	return &domain.ContestSummary{
		Rating:                ranking.Rating,
		GlobalRanking:         ranking.GlobalRanking,
		AttendedContestsCount: ranking.AttendedContestsCount,
		TopPercentage:         ranking.TopPercentage,
	}
}

// parseSubmissions turns the recent-submissions part into events, degrading
// to an empty list on any failure. Events with unparseable timestamps are
// dropped individually.
func (f *Fetcher) parseSubmissions(username string, data json.RawMessage, callErr error) []domain.SubmissionEvent {
	if callErr != nil {
		f.logger.Debug("Recent submissions query failed, continuing without it",
			zap.String("username", username),
			zap.Error(callErr),
		)
		return nil
	}

	var recent recentPayload
	if err := json.Unmarshal(data, &recent); err != nil {
		return nil
	}

	events := make([]domain.SubmissionEvent, 0, len(recent.RecentSubmissionList))
	for _, sub := range recent.RecentSubmissionList {
		ts, err := strconv.ParseInt(sub.Timestamp, 10, 64)
		if err != nil {
			continue
		}
		events = append(events, domain.SubmissionEvent{
			TitleSlug:        sub.TitleSlug,
			StatusDisplay:    sub.StatusDisplay,
			TimestampSeconds: ts,
		})
	}
	return events
}

// FetchUserStats is a thin projection of FetchProfile for callers that only
// need a light existence/metrics check.
func (f *Fetcher) FetchUserStats(ctx context.Context, username string) (*domain.UserStats, error) {
	profile, err := f.FetchProfile(ctx, username)
	if err != nil {
		return nil, err
	}

	return &domain.UserStats{
		Username:     profile.Username,
		TotalSolved:  profile.SolvedStats.TotalSolved,
		EasySolved:   profile.SolvedStats.EasySolved,
		MediumSolved: profile.SolvedStats.MediumSolved,
		HardSolved:   profile.SolvedStats.HardSolved,
		Ranking:      profile.Profile.Ranking,
		Reputation:   profile.Profile.Reputation,
		AvatarURL:    profile.Profile.AvatarURL,
		RealName:     profile.Profile.RealName,
	}, nil
}

// FetchSubmissionCalendar fetches the current year's per-day submission
// counts. Failures degrade to an empty calendar; the calendar is a
// non-critical sub-fetch everywhere it is used.
func (f *Fetcher) FetchSubmissionCalendar(ctx context.Context, username string) (domain.SubmissionCalendar, error) {
	ctx, span := f.tracer.Start(ctx, "Fetcher.FetchSubmissionCalendar")
	defer span.End()

	span.SetAttributes(attribute.String("leetcode.username", username))

	data, err := f.client.Call(ctx, submissionCalendarQuery, map[string]any{
		"username": username,
		"year":     time.Now().Year(),
	})
	if err != nil {
		f.logger.Warn("Calendar query failed, returning empty calendar",
			zap.String("username", username),
			zap.Error(err),
		)
		return domain.SubmissionCalendar{}, nil
	}

	var payload calendarPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return domain.SubmissionCalendar{}, nil
	}
	if payload.MatchedUser == nil || payload.MatchedUser.UserCalendar == nil {
		return domain.SubmissionCalendar{}, nil
	}

	// The calendar arrives as a JSON string of {"epochDay": count}.
	var rawCalendar map[string]int
	if err := json.Unmarshal([]byte(payload.MatchedUser.UserCalendar.SubmissionCalendar), &rawCalendar); err != nil {
		return domain.SubmissionCalendar{}, nil
	}

	calendar := make(domain.SubmissionCalendar, len(rawCalendar))
	for dayStr, count := range rawCalendar {
		day, err := strconv.ParseInt(dayStr, 10, 64)
		if err != nil {
			continue
		}
		calendar[day] = count
	}
	return calendar, nil
}
