package domain

// DailyRates holds how many problems per difficulty a user commits to solve
// each day when trying to catch up to a target.
type DailyRates struct {
	Easy   int `json:"easy" binding:"min=0"`
	Medium int `json:"medium" binding:"min=0"`
	Hard   int `json:"hard" binding:"min=0"`
}

// ByDifficulty returns the rate for a single bucket
func (r DailyRates) ByDifficulty(d Difficulty) int {
	switch d {
	case DifficultyEasy:
		return r.Easy
	case DifficultyMedium:
		return r.Medium
	case DifficultyHard:
		return r.Hard
	default:
		return 0
	}
}

// Bottleneck identifies a difficulty whose required days equal the overall
// maximum, i.e. the bucket to prioritize.
type Bottleneck struct {
	Difficulty Difficulty `json:"difficulty"`
	Deficit    int        `json:"deficit"`
	Days       int        `json:"days"`
}

// ComebackResult is the outcome of a catch-up estimate. When Unreachable is
// true the deficit can never be closed at the supplied rates and DaysNeeded
// and Bottlenecks carry no meaning.
type ComebackResult struct {
	DaysNeeded  int          `json:"days_needed"`
	Unreachable bool         `json:"unreachable"`
	Bottlenecks []Bottleneck `json:"bottlenecks,omitempty"`
}

// EstimateCatchUp computes how many days a lagging user needs to match a
// target's per-difficulty solved counts at the given daily rates.
//
// Per difficulty: a zero deficit costs zero days regardless of rate; a
// positive deficit with a zero rate makes the entire catch-up impossible,
// even if the other buckets are resourced. Otherwise the bucket needs
// ceil(deficit/rate) days and the answer is the maximum across buckets,
// with every bucket achieving that maximum reported as a bottleneck.
func EstimateCatchUp(self, target SolvedStats, rates DailyRates) ComebackResult {
	type bucket struct {
		difficulty Difficulty
		deficit    int
		days       int
	}

	buckets := make([]bucket, 0, len(Difficulties))
	maxDays := 0

	for _, d := range Difficulties {
		deficit := target.ByDifficulty(d) - self.ByDifficulty(d)
		if deficit <= 0 {
			buckets = append(buckets, bucket{difficulty: d})
			continue
		}

		rate := rates.ByDifficulty(d)
		if rate == 0 {
			return ComebackResult{Unreachable: true}
		}

		days := (deficit + rate - 1) / rate
		buckets = append(buckets, bucket{difficulty: d, deficit: deficit, days: days})
		if days > maxDays {
			maxDays = days
		}
	}

	if maxDays == 0 {
		// Already ahead or tied on every difficulty.
		return ComebackResult{}
	}

	result := ComebackResult{DaysNeeded: maxDays}
	for _, b := range buckets {
		if b.days == maxDays {
			result.Bottlenecks = append(result.Bottlenecks, Bottleneck{
				Difficulty: b.difficulty,
				Deficit:    b.deficit,
				Days:       b.days,
			})
		}
	}
	return result
}
