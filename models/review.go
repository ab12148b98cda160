package models

import "time"

// Recommendation is a reviewer's (or the admin's) verdict tag.
type Recommendation string

const (
	RecommendAccept        Recommendation = "accept"
	RecommendMinorRevision Recommendation = "minor_revision"
	RecommendMajorRevision Recommendation = "major_revision"
	RecommendReject        Recommendation = "reject"
)

// Valid reports whether r is one of the four known tags.
func (r Recommendation) Valid() bool {
	switch r {
	case RecommendAccept, RecommendMinorRevision, RecommendMajorRevision, RecommendReject:
		return true
	}
	return false
}

// Review is one reviewer's completed scorecard, one-to-one with a completed
// ReviewAssignment. CommentsForAdmin serializes because Review bodies only
// ever reach the writing reviewer and admins; authors receive the
// FinalDecision, never raw reviews.
type Review struct {
	ReviewID          int            `gorm:"primaryKey;column:review_id" json:"review_id"`
	AssignmentID      int            `gorm:"column:assignment_id;unique" json:"assignment_id"`
	ReviewerID        int            `gorm:"column:reviewer_id" json:"reviewer_id"`
	AverageScore      *float64       `gorm:"column:average_score" json:"average_score,omitempty"`
	Recommendation    Recommendation `gorm:"column:recommendation" json:"recommendation"`
	CommentsForAuthor string         `gorm:"column:comments_for_author" json:"comments_for_author"`
	CommentsForAdmin  string         `gorm:"column:comments_for_admin" json:"comments_for_admin"`
	SubmittedAt       time.Time      `gorm:"column:submitted_at" json:"submitted_at"`

	// Relations
	Reviewer *User         `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
	Scores   []ReviewScore `gorm:"foreignKey:ReviewID" json:"scores,omitempty"`
}

// ReviewScore is one criterion's integer score within a review.
type ReviewScore struct {
	ScoreID       int    `gorm:"primaryKey;column:score_id" json:"score_id"`
	ReviewID      int    `gorm:"column:review_id" json:"review_id"`
	CriterionName string `gorm:"column:criterion_name" json:"criterion_name"`
	Score         int    `gorm:"column:score" json:"score"`
}

// TableName overrides
func (Review) TableName() string {
	return "reviews"
}

func (ReviewScore) TableName() string {
	return "review_scores"
}
