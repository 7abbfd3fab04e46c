package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/leet-stalk/backend/internal/domain"
	"github.com/leet-stalk/backend/internal/service"
)

// stubFetcher serves canned profiles keyed by username and records which
// usernames were fetched.
type stubFetcher struct {
	mu       sync.Mutex
	profiles map[string]*domain.NormalizedProfile
	errs     map[string]error
	fetched  []string
}

func (f *stubFetcher) FetchProfile(_ context.Context, username string) (*domain.NormalizedProfile, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, username)
	f.mu.Unlock()

	if err, ok := f.errs[username]; ok {
		return nil, err
	}
	if profile, ok := f.profiles[username]; ok {
		return profile, nil
	}
	return nil, domain.ErrProfileNotFound
}

func (f *stubFetcher) FetchUserStats(ctx context.Context, username string) (*domain.UserStats, error) {
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
	}, nil
}

func (f *stubFetcher) FetchSubmissionCalendar(context.Context, string) (domain.SubmissionCalendar, error) {
	return domain.SubmissionCalendar{}, nil
}

func (f *stubFetcher) fetchCount(username string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, fetched := range f.fetched {
		if fetched == username {
			count++
		}
	}
	return count
}

func profileWithTotals(username string, easy, medium, hard int) *domain.NormalizedProfile {
	stats := domain.SolvedStats{EasySolved: easy, MediumSolved: medium, HardSolved: hard}
	stats.Recompute()
	return &domain.NormalizedProfile{
		Username:    username,
		Profile:     domain.ProfileInfo{RealName: "Ada Lovelace"},
		SolvedStats: stats,
		LastFetched: time.Now(),
	}
}

func newLeaderboardService(fetcher domain.ProfileFetcher) *service.LeaderboardService {
	return service.NewLeaderboardService(
		fetcher, nil, noop.NewTracerProvider().Tracer("test"), zap.NewNop(),
	)
}

func TestBuildLeaderboard(t *testing.T) {
	Convey("Given three followed usernames with distinct totals", t, func() {
		fetcher := &stubFetcher{profiles: map[string]*domain.NormalizedProfile{
			"bronze": profileWithTotals("bronze", 10, 0, 0),
			"gold":   profileWithTotals("gold", 50, 40, 10),
			"silver": profileWithTotals("silver", 30, 20, 0),
		}}
		svc := newLeaderboardService(fetcher)

		entries, err := svc.BuildLeaderboard(context.Background(), nil, []string{"bronze", "gold", "silver"})

		Convey("Then entries sort by total solved descending with dense ranks", func() {
			So(err, ShouldBeNil)
			So(len(entries), ShouldEqual, 3)
			So(entries[0].Username, ShouldEqual, "gold")
			So(entries[1].Username, ShouldEqual, "silver")
			So(entries[2].Username, ShouldEqual, "bronze")
			for i, entry := range entries {
				So(entry.Rank, ShouldEqual, i+1)
				So(entry.Source, ShouldEqual, domain.SourceExternal)
			}
		})
	})

	Convey("Given one username that fails to fetch", t, func() {
		fetcher := &stubFetcher{
			profiles: map[string]*domain.NormalizedProfile{
				"alice": profileWithTotals("alice", 5, 0, 0),
				"carol": profileWithTotals("carol", 1, 0, 0),
			},
			errs: map[string]error{"bob": domain.ErrUpstreamUnavailable},
		}
		svc := newLeaderboardService(fetcher)

		entries, err := svc.BuildLeaderboard(context.Background(), nil, []string{"alice", "bob", "carol"})

		Convey("Then the board still builds without the failed handle", func() {
			So(err, ShouldBeNil)
			So(len(entries), ShouldEqual, 2)
			So(entries[0].Username, ShouldEqual, "alice")
			So(entries[1].Username, ShouldEqual, "carol")

			Convey("And ranks stay gap-free", func() {
				So(entries[0].Rank, ShouldEqual, 1)
				So(entries[1].Rank, ShouldEqual, 2)
			})
		})
	})

	Convey("Given a requester who also appears in their own followed list", t, func() {
		requesterID := uuid.New()
		requester := &domain.RequesterIdentity{
			ID:        requesterID,
			Username:  "ada",
			FirstName: "Ada",
			LastName:  "L",
		}
		fetcher := &stubFetcher{profiles: map[string]*domain.NormalizedProfile{
			"ada": profileWithTotals("ada", 20, 10, 5),
			"bob": profileWithTotals("bob", 60, 0, 0),
		}}
		svc := newLeaderboardService(fetcher)

		entries, err := svc.BuildLeaderboard(context.Background(), requester, []string{"ada", "bob"})

		Convey("Then the requester appears exactly once, platform-sourced", func() {
			So(err, ShouldBeNil)
			So(len(entries), ShouldEqual, 2)

			var own *domain.LeaderboardEntry
			for i := range entries {
				if entries[i].Username == "ada" {
					own = &entries[i]
				}
			}
			So(own, ShouldNotBeNil)
			So(own.Source, ShouldEqual, domain.SourcePlatform)
			So(own.EntryID, ShouldEqual, requesterID.String())

			Convey("And the handle was only fetched through the requester path", func() {
				So(fetcher.fetchCount("ada"), ShouldEqual, 1)
			})

			Convey("And the account's own name overrides the upstream one", func() {
				So(own.FirstName, ShouldEqual, "Ada")
				So(own.LastName, ShouldEqual, "L")
			})
		})
	})

	Convey("Given a requester whose own profile fetch fails", t, func() {
		requester := &domain.RequesterIdentity{ID: uuid.New(), Username: "ada"}
		fetcher := &stubFetcher{
			profiles: map[string]*domain.NormalizedProfile{
				"bob": profileWithTotals("bob", 3, 0, 0),
			},
			errs: map[string]error{"ada": domain.ErrUpstreamTimeout},
		}
		svc := newLeaderboardService(fetcher)

		entries, err := svc.BuildLeaderboard(context.Background(), requester, []string{"bob"})

		Convey("Then the board builds without the requester's entry", func() {
			So(err, ShouldBeNil)
			So(len(entries), ShouldEqual, 1)
			So(entries[0].Username, ShouldEqual, "bob")
		})
	})

	Convey("Given no requester and no followed usernames", t, func() {
		svc := newLeaderboardService(&stubFetcher{})

		entries, err := svc.BuildLeaderboard(context.Background(), nil, nil)

		Convey("Then the board is empty, not an error", func() {
			So(err, ShouldBeNil)
			So(entries, ShouldBeEmpty)
		})
	})

	Convey("Given entries with tied totals", t, func() {
		fetcher := &stubFetcher{profiles: map[string]*domain.NormalizedProfile{
			"first":  profileWithTotals("first", 10, 0, 0),
			"second": profileWithTotals("second", 10, 0, 0),
		}}
		svc := newLeaderboardService(fetcher)

		entries, err := svc.BuildLeaderboard(context.Background(), nil, []string{"first", "second"})

		Convey("Then the sort is stable over the input order", func() {
			So(err, ShouldBeNil)
			So(entries[0].Username, ShouldEqual, "first")
			So(entries[1].Username, ShouldEqual, "second")
		})
	})
}
