package domain

import (
	"context"
	"time"
)

// Difficulty represents a LeetCode problem difficulty bucket
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Difficulties lists all buckets in canonical order
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// SolvedStats holds accepted-problem counts per difficulty. TotalSolved is
// always recomputed as Easy+Medium+Hard; the upstream-reported total has been
// observed to diverge from its own per-difficulty breakdown.
type SolvedStats struct {
	TotalSolved   int `json:"total_solved"`
	EasySolved    int `json:"easy_solved"`
	MediumSolved  int `json:"medium_solved"`
	HardSolved    int `json:"hard_solved"`
	ACSubmissions int `json:"ac_submissions"`
}

// ByDifficulty returns the solved count for a single bucket
func (s SolvedStats) ByDifficulty(d Difficulty) int {
	switch d {
	case DifficultyEasy:
		return s.EasySolved
	case DifficultyMedium:
		return s.MediumSolved
	case DifficultyHard:
		return s.HardSolved
	default:
		return 0
	}
}

// Recompute fixes up TotalSolved from the per-difficulty breakdown
func (s *SolvedStats) Recompute() {
	s.TotalSolved = s.EasySolved + s.MediumSolved + s.HardSolved
}

// ContestSummary holds contest ranking data. The whole struct is nil on a
// NormalizedProfile when the upstream contest query fails or the user has no
// contest history.
type ContestSummary struct {
	Rating                *float64 `json:"rating"`
	GlobalRanking         *int     `json:"global_ranking"`
	AttendedContestsCount int      `json:"attended_contests_count"`
	TopPercentage         *float64 `json:"top_percentage"`
}

// ProfileInfo holds the public profile fields, all optional upstream
type ProfileInfo struct {
	RealName   string `json:"real_name"`
	AvatarURL  string `json:"avatar_url"`
	Ranking    *int   `json:"ranking"`
	Reputation int    `json:"reputation"`
	Country    string `json:"country"`
}

// SubmissionEvent is a single entry of the recent-submissions feed. Events
// are ephemeral; they exist only to derive ProblemsSolvedToday.
type SubmissionEvent struct {
	TitleSlug        string `json:"title_slug"`
	StatusDisplay    string `json:"status_display"`
	TimestampSeconds int64  `json:"timestamp_seconds"`
}

// NormalizedProfile is the canonical per-username record produced by a fresh
// fetch. It has no persisted identity; a new one is built on every request.
type NormalizedProfile struct {
	Username            string          `json:"username"`
	Profile             ProfileInfo     `json:"profile"`
	SolvedStats         SolvedStats     `json:"solved_stats"`
	Contest             *ContestSummary `json:"contest"`
	ProblemsSolvedToday int             `json:"problems_solved_today"`
	LastFetched         time.Time       `json:"last_fetched"`
}

// UserStats is the compact projection of a profile used for light
// existence/metrics checks (follow validation, following list)
type UserStats struct {
	Username     string `json:"username"`
	TotalSolved  int    `json:"total_solved"`
	EasySolved   int    `json:"easy_solved"`
	MediumSolved int    `json:"medium_solved"`
	HardSolved   int    `json:"hard_solved"`
	Ranking      *int   `json:"ranking"`
	Reputation   int    `json:"reputation"`
	AvatarURL    string `json:"avatar_url"`
	RealName     string `json:"real_name"`
}

// EntrySource tags how a leaderboard entry entered the board
type EntrySource string

const (
	SourcePlatform EntrySource = "platform" // the authenticated requester
	SourceExternal EntrySource = "external" // a followed LeetCode username
)

// LeaderboardEntry is a NormalizedProfile placed on a ranked board.
// Created transiently per request, never persisted.
type LeaderboardEntry struct {
	EntryID             string      `json:"entry_id"`
	Username            string      `json:"username"`
	FirstName           string      `json:"first_name"`
	LastName            string      `json:"last_name"`
	AvatarURL           string      `json:"avatar_url"`
	SolvedStats         SolvedStats `json:"solved_stats"`
	ContestRating       *float64    `json:"contest_rating"`
	ProblemsSolvedToday int         `json:"problems_solved_today"`
	LastFetched         time.Time   `json:"last_fetched"`
	Source              EntrySource `json:"source"`
	Rank                int         `json:"rank"`
}

// SubmissionCalendar maps day-bucket epoch seconds to raw submission counts
// for one calendar year. Counts are aggregate only; upstream provides no
// per-difficulty split.
type SubmissionCalendar map[int64]int

// ProfileFetcher is the upstream-facing port for fresh LeetCode data.
// Implementations must not cache: every call re-queries the platform.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, username string) (*NormalizedProfile, error)
	FetchUserStats(ctx context.Context, username string) (*UserStats, error)
	FetchSubmissionCalendar(ctx context.Context, username string) (SubmissionCalendar, error)
}
