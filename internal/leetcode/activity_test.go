package leetcode_test

import (
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/leet-stalk/backend/internal/domain"
	"github.com/leet-stalk/backend/internal/leetcode"
)

func TestProblemsSolvedOn(t *testing.T) {
	day := time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)
	at := func(hour int) int64 {
		return day.Add(time.Duration(hour) * time.Hour).Unix()
	}

	Convey("Given an empty submission list", t, func() {
		So(leetcode.ProblemsSolvedOn(nil, day), ShouldEqual, 0)
	})

	Convey("Given accepted submissions on the reference day", t, func() {
		events := []domain.SubmissionEvent{
			{TitleSlug: "two-sum", StatusDisplay: "Accepted", TimestampSeconds: at(3)},
			{TitleSlug: "add-two-numbers", StatusDisplay: "Accepted", TimestampSeconds: at(12)},
			{TitleSlug: "lru-cache", StatusDisplay: "Accepted", TimestampSeconds: at(23)},
		}

		Convey("Then each distinct problem counts once", func() {
			So(leetcode.ProblemsSolvedOn(events, day), ShouldEqual, 3)
		})
	})

	Convey("Given repeated accepts of the same problem", t, func() {
		events := []domain.SubmissionEvent{
			{TitleSlug: "two-sum", StatusDisplay: "Accepted", TimestampSeconds: at(1)},
			{TitleSlug: "two-sum", StatusDisplay: "Accepted", TimestampSeconds: at(2)},
			{TitleSlug: "two-sum", StatusDisplay: "Accepted", TimestampSeconds: at(20)},
		}

		Convey("Then the problem counts a single time", func() {
			So(leetcode.ProblemsSolvedOn(events, day), ShouldEqual, 1)
		})
	})

	Convey("Given non-accepted and off-day submissions mixed in", t, func() {
		events := []domain.SubmissionEvent{
			{TitleSlug: "two-sum", StatusDisplay: "Accepted", TimestampSeconds: at(10)},
			{TitleSlug: "word-ladder", StatusDisplay: "Wrong Answer", TimestampSeconds: at(11)},
			{TitleSlug: "word-ladder", StatusDisplay: "Time Limit Exceeded", TimestampSeconds: at(12)},
			{TitleSlug: "jump-game", StatusDisplay: "Accepted", TimestampSeconds: at(-2)},  // previous day
			{TitleSlug: "min-stack", StatusDisplay: "Accepted", TimestampSeconds: at(25)}, // next day
		}

		Convey("Then only same-day accepts are counted", func() {
			So(leetcode.ProblemsSolvedOn(events, day), ShouldEqual, 1)
		})
	})

	Convey("Given an event with a missing timestamp", t, func() {
		events := []domain.SubmissionEvent{
			{TitleSlug: "two-sum", StatusDisplay: "Accepted", TimestampSeconds: 0},
		}

		Convey("Then it is dropped rather than counted", func() {
			So(leetcode.ProblemsSolvedOn(events, day), ShouldEqual, 0)
		})
	})

	Convey("Given a reference day just across the UTC boundary", t, func() {
		events := []domain.SubmissionEvent{
			{TitleSlug: "two-sum", StatusDisplay: "Accepted", TimestampSeconds: day.Unix() - 1},
		}

		Convey("Then a one-second-earlier accept belongs to the previous day", func() {
			So(leetcode.ProblemsSolvedOn(events, day), ShouldEqual, 0)
		})
	})
}

func TestSumCalendarRange(t *testing.T) {
	dayTS := func(date string) int64 {
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			t.Fatalf("bad test date %q: %v", date, err)
		}
		return d.Unix()
	}

	Convey("Given a calendar spanning several days", t, func() {
		calendar := domain.SubmissionCalendar{
			dayTS("2026-08-01"): 3,
			dayTS("2026-08-02"): 5,
			dayTS("2026-08-03"): 7,
			dayTS("2026-08-04"): 11,
		}

		Convey("When summing an inclusive range", func() {
			total, err := leetcode.SumCalendarRange(calendar, "2026-08-02", "2026-08-03")

			Convey("Then both endpoint days are included", func() {
				So(err, ShouldBeNil)
				So(total, ShouldEqual, 12)
			})
		})
	})

	Convey("Given a single-day range", t, func() {
		calendar := domain.SubmissionCalendar{
			dayTS("2026-08-10"): 4,
			dayTS("2026-08-11"): 9,
		}

		total, err := leetcode.SumCalendarRange(calendar, "2026-08-10", "2026-08-10")

		Convey("Then only that day's bucket contributes", func() {
			So(err, ShouldBeNil)
			So(total, ShouldEqual, 4)
		})
	})

	Convey("Given a range with no matching buckets", t, func() {
		calendar := domain.SubmissionCalendar{
			dayTS("2026-01-01"): 2,
		}

		total, err := leetcode.SumCalendarRange(calendar, "2026-06-01", "2026-06-30")

		Convey("Then the sum is zero with no error", func() {
			So(err, ShouldBeNil)
			So(total, ShouldEqual, 0)
		})
	})

	Convey("Given a malformed date", t, func() {
		_, err := leetcode.SumCalendarRange(domain.SubmissionCalendar{}, "not-a-date", "2026-08-01")

		Convey("Then the error is a bad-request", func() {
			So(err, ShouldNotBeNil)
			So(errors.Is(err, domain.ErrBadRequest), ShouldBeTrue)
		})
	})
}
