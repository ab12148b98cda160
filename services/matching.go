package services

import (
	"sort"

	"conference-review-api/models"
)

// RankedReviewer is one candidate in the admin's reviewer-selection list.
type RankedReviewer struct {
	Reviewer   models.User `json:"reviewer"`
	MatchScore int         `json:"match_score"`
	ActiveLoad int         `json:"active_load"`
}

// MatchScore computes the percentage of the submission's keyword set covered
// by the reviewer's declared expertise, floored to an integer. Either side
// being empty scores 0.
func MatchScore(submissionKeywords, reviewerKeywords []int) int {
	if len(submissionKeywords) == 0 || len(reviewerKeywords) == 0 {
		return 0
	}
	have := make(map[int]struct{}, len(reviewerKeywords))
	for _, id := range reviewerKeywords {
		have[id] = struct{}{}
	}
	overlap := 0
	for _, id := range submissionKeywords {
		if _, ok := have[id]; ok {
			overlap++
		}
	}
	return overlap * 100 / len(submissionKeywords)
}

// rankReviewers orders candidates by match score descending, then by active
// load ascending so the lighter-loaded reviewer surfaces first on ties.
// Zero-overlap reviewers stay in the list; missing keywords must not hide an
// otherwise-eligible reviewer.
func rankReviewers(candidates []RankedReviewer) []RankedReviewer {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].MatchScore != candidates[j].MatchScore {
			return candidates[i].MatchScore > candidates[j].MatchScore
		}
		return candidates[i].ActiveLoad < candidates[j].ActiveLoad
	})
	return candidates
}
