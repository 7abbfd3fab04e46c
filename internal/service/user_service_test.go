package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/leet-stalk/backend/internal/domain"
	"github.com/leet-stalk/backend/internal/infrastructure"
	"github.com/leet-stalk/backend/internal/service"
)

func newUserService(repo domain.UserRepository, fetcher domain.ProfileFetcher) *service.UserService {
	jwtConfig := &infrastructure.JWTConfig{
		SecretKey:          "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
		Issuer:             "leet-stalk",
	}
	return service.NewUserService(
		repo, fetcher, jwtConfig, noop.NewTracerProvider().Tracer("test"), zap.NewNop(),
	)
}

func TestFollow(t *testing.T) {
	Convey("Given an account and an existing upstream handle", t, func() {
		userID := uuid.New()
		repo := &stubUserRepo{users: map[uuid.UUID]*domain.User{
			userID: {ID: userID, Username: "ada"},
		}}
		fetcher := &stubFetcher{profiles: map[string]*domain.NormalizedProfile{
			"rival": profileWithTotals("rival", 10, 5, 1),
		}}
		svc := newUserService(repo, fetcher)

		Convey("When following the handle", func() {
			user, err := svc.Follow(context.Background(), userID, "rival")

			Convey("Then the handle lands on the follow list", func() {
				So(err, ShouldBeNil)
				So(user.IsFollowing("rival"), ShouldBeTrue)
			})

			Convey("And following it again is rejected", func() {
				_, err := svc.Follow(context.Background(), userID, "rival")
				So(errors.Is(err, domain.ErrAlreadyFollowing), ShouldBeTrue)
			})
		})

		Convey("When following a handle unknown upstream", func() {
			_, err := svc.Follow(context.Background(), userID, "ghost")

			Convey("Then the existence check fails before anything is written", func() {
				So(errors.Is(err, domain.ErrProfileNotFound), ShouldBeTrue)
				So(repo.users[userID].FollowingLeetCode, ShouldBeEmpty)
			})
		})
	})
}

func TestUnfollow(t *testing.T) {
	Convey("Given an account following two handles", t, func() {
		userID := uuid.New()
		repo := &stubUserRepo{users: map[uuid.UUID]*domain.User{
			userID: {
				ID:                userID,
				Username:          "ada",
				FollowingLeetCode: []string{"rival", "mentor"},
			},
		}}
		svc := newUserService(repo, &stubFetcher{})

		Convey("When unfollowing one of them", func() {
			user, err := svc.Unfollow(context.Background(), userID, "rival")

			Convey("Then only that handle is removed", func() {
				So(err, ShouldBeNil)
				So(user.IsFollowing("rival"), ShouldBeFalse)
				So(user.IsFollowing("mentor"), ShouldBeTrue)
			})
		})

		Convey("When unfollowing a handle not on the list", func() {
			_, err := svc.Unfollow(context.Background(), userID, "stranger")

			Convey("Then the call is rejected", func() {
				So(errors.Is(err, domain.ErrNotFollowing), ShouldBeTrue)
			})
		})
	})
}

func TestListFollowing(t *testing.T) {
	Convey("Given followed handles where one fetch fails", t, func() {
		userID := uuid.New()
		repo := &stubUserRepo{users: map[uuid.UUID]*domain.User{
			userID: {
				ID:                userID,
				Username:          "ada",
				FollowingLeetCode: []string{"rival", "flaky", "mentor"},
			},
		}}
		fetcher := &stubFetcher{
			profiles: map[string]*domain.NormalizedProfile{
				"rival":  profileWithTotals("rival", 10, 0, 0),
				"mentor": profileWithTotals("mentor", 90, 40, 10),
			},
			errs: map[string]error{"flaky": domain.ErrUpstreamTimeout},
		}
		svc := newUserService(repo, fetcher)

		followed, err := svc.ListFollowing(context.Background(), userID)

		Convey("Then every handle is listed in follow order", func() {
			So(err, ShouldBeNil)
			So(len(followed), ShouldEqual, 3)
			So(followed[0].Username, ShouldEqual, "rival")
			So(followed[1].Username, ShouldEqual, "flaky")
			So(followed[2].Username, ShouldEqual, "mentor")
		})

		Convey("And the failed handle carries nil stats instead of dropping", func() {
			So(followed[0].Stats, ShouldNotBeNil)
			So(followed[1].Stats, ShouldBeNil)
			So(followed[2].Stats.TotalSolved, ShouldEqual, 140)
		})
	})
}

func TestTokenRoundTrip(t *testing.T) {
	Convey("Given a freshly registered user", t, func() {
		repo := &stubUserRepo{}
		svc := newUserService(repo, &stubFetcher{})

		user, tokens, err := svc.Register(context.Background(), &domain.UserCreateRequest{
			Email:    "ada@example.com",
			Username: "ada",
			Password: "correct-horse",
		})
		So(err, ShouldBeNil)
		So(tokens, ShouldNotBeNil)

		Convey("Then the access token validates back to the user", func() {
			parsedID, err := svc.ValidateAccessToken(tokens.AccessToken)
			So(err, ShouldBeNil)
			So(parsedID.String(), ShouldEqual, user.ID.String())
		})

		Convey("Then the refresh token cannot be used as an access token", func() {
			_, err := svc.ValidateAccessToken(tokens.RefreshToken)
			So(errors.Is(err, domain.ErrInvalidToken), ShouldBeTrue)
		})

		Convey("Then the refresh token mints a new pair", func() {
			refreshed, err := svc.RefreshToken(context.Background(), tokens.RefreshToken)
			So(err, ShouldBeNil)
			So(refreshed.AccessToken, ShouldNotBeEmpty)
		})

		Convey("Then a garbage token is rejected", func() {
			_, err := svc.ValidateAccessToken("not.a.token")
			So(errors.Is(err, domain.ErrInvalidToken), ShouldBeTrue)
		})
	})
}
