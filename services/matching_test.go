package services

import (
	"testing"

	"conference-review-api/models"
)

func TestMatchScorePercentage(t *testing.T) {
	cases := []struct {
		name       string
		submission []int
		reviewer   []int
		want       int
	}{
		{"two of three", []int{1, 2, 3}, []int{1, 2}, 66},
		{"full overlap", []int{1, 2}, []int{2, 1}, 100},
		{"no overlap", []int{1, 2}, []int{3, 4}, 0},
		{"empty submission set", nil, []int{1}, 0},
		{"empty reviewer set", []int{1}, nil, 0},
		{"order independent", []int{3, 2, 1}, []int{2, 1}, 66},
	}

	for _, tc := range cases {
		if got := MatchScore(tc.submission, tc.reviewer); got != tc.want {
			t.Errorf("%s: MatchScore(%v, %v) = %d, want %d", tc.name, tc.submission, tc.reviewer, got, tc.want)
		}
	}
}

func TestRankReviewersOrdersByScoreThenLoad(t *testing.T) {
	ranked := rankReviewers([]RankedReviewer{
		{Reviewer: models.User{UserID: 1}, MatchScore: 50, ActiveLoad: 3},
		{Reviewer: models.User{UserID: 2}, MatchScore: 80, ActiveLoad: 5},
		{Reviewer: models.User{UserID: 3}, MatchScore: 50, ActiveLoad: 1},
		{Reviewer: models.User{UserID: 4}, MatchScore: 0, ActiveLoad: 0},
	})

	want := []int{2, 3, 1, 4}
	for i, id := range want {
		if ranked[i].Reviewer.UserID != id {
			t.Fatalf("position %d: got reviewer %d, want %d (full order %+v)", i, ranked[i].Reviewer.UserID, id, ranked)
		}
	}
}

func TestRankReviewersKeepsZeroOverlapCandidates(t *testing.T) {
	ranked := rankReviewers([]RankedReviewer{
		{Reviewer: models.User{UserID: 1}, MatchScore: 0, ActiveLoad: 2},
		{Reviewer: models.User{UserID: 2}, MatchScore: 0, ActiveLoad: 0},
	})
	if len(ranked) != 2 {
		t.Fatalf("zero-overlap reviewers were dropped: %+v", ranked)
	}
	if ranked[0].Reviewer.UserID != 2 {
		t.Fatalf("tie on score must prefer lighter load, got %+v", ranked)
	}
}
