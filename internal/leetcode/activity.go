package leetcode

import (
	"time"

	"github.com/leet-stalk/backend/internal/domain"
)

// The "today" used for the solved-today count is the UTC calendar date of
// the submission timestamps, while the calendar range helpers work in
// Pacific time (the platform's own timezone). The two notions are kept
// separate on purpose; they serve different endpoints.

// ProblemsSolvedToday counts the distinct problems with an accepted
// submission dated today in UTC. Duplicate accepts of the same problem
// count once. Empty input yields 0.
func ProblemsSolvedToday(events []domain.SubmissionEvent) int {
	return ProblemsSolvedOn(events, time.Now().UTC())
}

// ProblemsSolvedOn is ProblemsSolvedToday for an arbitrary reference day
func ProblemsSolvedOn(events []domain.SubmissionEvent, day time.Time) int {
	refYear, refMonth, refDay := day.UTC().Date()

	solved := make(map[string]struct{})
	for _, event := range events {
		if event.StatusDisplay != "Accepted" {
			continue
		}
		if event.TimestampSeconds <= 0 {
			// Missing or unparseable timestamps are dropped, not errored.
			continue
		}
		y, m, d := time.Unix(event.TimestampSeconds, 0).UTC().Date()
		if y != refYear || m != refMonth || d != refDay {
			continue
		}
		solved[event.TitleSlug] = struct{}{}
	}
	return len(solved)
}

// SumCalendarRange sums the raw per-day submission counts whose day bucket
// falls within [startOfDay(startDate), endOfDay(endDate)] inclusive. Both
// bounds are YYYY-MM-DD date strings interpreted in UTC. The calendar
// carries aggregate counts only, so there is no difficulty breakdown.
func SumCalendarRange(calendar domain.SubmissionCalendar, startDate, endDate string) (int, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return 0, domain.WrapError(domain.ErrBadRequest, "invalid start date: "+startDate)
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return 0, domain.WrapError(domain.ErrBadRequest, "invalid end date: "+endDate)
	}

	startTS := start.Unix()
	endTS := end.Add(24*time.Hour - time.Second).Unix()

	total := 0
	for dayTS, count := range calendar {
		if dayTS >= startTS && dayTS <= endTS {
			total += count
		}
	}
	return total, nil
}

// pacificTZ is the platform's home timezone, used by the calendar path
var pacificTZ = mustLoadLocation("America/Los_Angeles")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// PacificToday returns the current calendar date in Pacific time as a
// YYYY-MM-DD string, for callers that want "today" in the platform's
// timezone rather than UTC.
func PacificToday() string {
	return time.Now().In(pacificTZ).Format("2006-01-02")
}
