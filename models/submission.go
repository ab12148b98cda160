package models

import "time"

// SubmissionStatus is the single authoritative lifecycle status of a paper.
// It is stored as a string column; no numeric or label-based aliases exist.
type SubmissionStatus string

const (
	StatusDraft                 SubmissionStatus = "draft"
	StatusPendingAbstractReview SubmissionStatus = "pending_abstract_review"
	StatusAbstractRejected      SubmissionStatus = "abstract_rejected"
	StatusAbstractApproved      SubmissionStatus = "abstract_approved"
	StatusFullPaperSubmitted    SubmissionStatus = "full_paper_submitted"
	StatusUnderReview           SubmissionStatus = "under_review"
	StatusRevisionRequired      SubmissionStatus = "revision_required"
	StatusAccepted              SubmissionStatus = "accepted"
	StatusRejected              SubmissionStatus = "rejected"
	StatusWithdrawn             SubmissionStatus = "withdrawn"
)

// IsTerminal reports whether no further transition is defined from s.
func (s SubmissionStatus) IsTerminal() bool {
	switch s {
	case StatusAbstractRejected, StatusAccepted, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

// Submission represents one paper tracked through the review pipeline.
// Rows are never physically deleted; withdrawal is a status.
type Submission struct {
	SubmissionID     int              `gorm:"primaryKey;column:submission_id" json:"submission_id"`
	SubmissionNumber string           `gorm:"column:submission_number;unique" json:"submission_number"`
	AuthorID         int              `gorm:"column:author_id" json:"author_id"`
	ConferenceID     int              `gorm:"column:conference_id" json:"conference_id"`
	Title            string           `gorm:"column:title" json:"title"`
	AbstractText     string           `gorm:"column:abstract_text" json:"abstract_text"`
	Status           SubmissionStatus `gorm:"column:status" json:"status"`

	AbstractSubmittedAt     *time.Time `gorm:"column:abstract_submitted_at" json:"abstract_submitted_at,omitempty"`
	AbstractReviewedAt      *time.Time `gorm:"column:abstract_reviewed_at" json:"abstract_reviewed_at,omitempty"`
	FullPaperSubmittedAt    *time.Time `gorm:"column:full_paper_submitted_at" json:"full_paper_submitted_at,omitempty"`
	FinalVersionSubmittedAt *time.Time `gorm:"column:final_version_submitted_at" json:"final_version_submitted_at,omitempty"`
	AbstractRejectionReason *string    `gorm:"column:abstract_rejection_reason" json:"abstract_rejection_reason,omitempty"`

	CreateAt time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at"`

	// Relations
	Author        *User              `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Conference    *Conference        `gorm:"foreignKey:ConferenceID" json:"conference,omitempty"`
	Keywords      []Keyword          `gorm:"many2many:submission_keywords;foreignKey:SubmissionID;joinForeignKey:SubmissionID;References:KeywordID;joinReferences:KeywordID" json:"keywords,omitempty"`
	Assignments   []ReviewAssignment `gorm:"foreignKey:SubmissionID" json:"assignments,omitempty"`
	FinalDecision *FinalDecision     `gorm:"foreignKey:SubmissionID" json:"final_decision,omitempty"`
}

// TableName specifies the table name for Submission.
func (Submission) TableName() string {
	return "submissions"
}
