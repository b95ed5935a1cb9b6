package domain

import "sort"

// RanksBefore orders contest results by score desc, then time taken asc.
// Remaining ties fall back to submission time and id so the order is total.
func RanksBefore(a, b ContestResult) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.TimeTakenSeconds != b.TimeTakenSeconds {
		return a.TimeTakenSeconds < b.TimeTakenSeconds
	}
	if !a.SubmittedAt.Equal(b.SubmittedAt) {
		return a.SubmittedAt.Before(b.SubmittedAt)
	}
	return a.ID < b.ID
}

// SortContestResults sorts results in leaderboard order, in place.
func SortContestResults(results []ContestResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return RanksBefore(results[i], results[j])
	})
}

// SortQuizResults orders quiz results by score desc then time taken asc.
func SortQuizResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].TimeTakenSeconds < results[j].TimeTakenSeconds
	})
}
