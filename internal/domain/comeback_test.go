package domain_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/leet-stalk/backend/internal/domain"
)

func TestEstimateCatchUp(t *testing.T) {
	Convey("Given identical self and target counts", t, func() {
		self := domain.SolvedStats{EasySolved: 10, MediumSolved: 5, HardSolved: 1}
		target := self

		Convey("When rates are all zero", func() {
			result := domain.EstimateCatchUp(self, target, domain.DailyRates{})

			Convey("Then zero days are needed regardless of rates", func() {
				So(result.DaysNeeded, ShouldEqual, 0)
				So(result.Unreachable, ShouldBeFalse)
				So(result.Bottlenecks, ShouldBeEmpty)
			})
		})
	})

	Convey("Given a self already ahead of the target on every difficulty", t, func() {
		self := domain.SolvedStats{EasySolved: 50, MediumSolved: 40, HardSolved: 10}
		target := domain.SolvedStats{EasySolved: 20, MediumSolved: 10, HardSolved: 2}

		result := domain.EstimateCatchUp(self, target, domain.DailyRates{Easy: 1})

		Convey("Then zero days are needed", func() {
			So(result.DaysNeeded, ShouldEqual, 0)
			So(result.Unreachable, ShouldBeFalse)
		})
	})

	Convey("Given a deficit in a difficulty with a zero rate", t, func() {
		self := domain.SolvedStats{EasySolved: 5}
		target := domain.SolvedStats{EasySolved: 15, MediumSolved: 10}
		rates := domain.DailyRates{Easy: 2, Medium: 0, Hard: 1}

		result := domain.EstimateCatchUp(self, target, rates)

		Convey("Then the whole catch-up is unreachable even though other buckets are resourced", func() {
			So(result.Unreachable, ShouldBeTrue)
			So(result.Bottlenecks, ShouldBeEmpty)
		})
	})

	Convey("Given deficits that all resolve in the same number of days", t, func() {
		self := domain.SolvedStats{}
		target := domain.SolvedStats{EasySolved: 10, MediumSolved: 4, HardSolved: 2}
		rates := domain.DailyRates{Easy: 5, Medium: 2, Hard: 1}

		result := domain.EstimateCatchUp(self, target, rates)

		Convey("Then the answer is the shared maximum with all three as bottlenecks", func() {
			So(result.DaysNeeded, ShouldEqual, 2)
			So(result.Unreachable, ShouldBeFalse)
			So(len(result.Bottlenecks), ShouldEqual, 3)
			for _, b := range result.Bottlenecks {
				So(b.Days, ShouldEqual, 2)
			}
		})
	})

	Convey("Given a single binding difficulty", t, func() {
		self := domain.SolvedStats{EasySolved: 90, MediumSolved: 10, HardSolved: 0}
		target := domain.SolvedStats{EasySolved: 100, MediumSolved: 50, HardSolved: 3}
		rates := domain.DailyRates{Easy: 10, Medium: 2, Hard: 3}

		result := domain.EstimateCatchUp(self, target, rates)

		Convey("Then days needed is ceil of the worst bucket and only it is the bottleneck", func() {
			// easy: 10/10 = 1 day, medium: 40/2 = 20 days, hard: 3/3 = 1 day
			So(result.DaysNeeded, ShouldEqual, 20)
			So(len(result.Bottlenecks), ShouldEqual, 1)
			So(result.Bottlenecks[0].Difficulty, ShouldEqual, domain.DifficultyMedium)
			So(result.Bottlenecks[0].Deficit, ShouldEqual, 40)
		})
	})

	Convey("Given a deficit that does not divide evenly by the rate", t, func() {
		self := domain.SolvedStats{HardSolved: 1}
		target := domain.SolvedStats{HardSolved: 8}
		rates := domain.DailyRates{Hard: 3}

		result := domain.EstimateCatchUp(self, target, rates)

		Convey("Then the day count rounds up", func() {
			So(result.DaysNeeded, ShouldEqual, 3) // ceil(7/3)
		})
	})
}
