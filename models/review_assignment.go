package models

import "time"

// AssignmentStatus is the lifecycle of one reviewer invitation, independent of
// the submission's own status.
type AssignmentStatus string

const (
	AssignmentPending   AssignmentStatus = "pending"
	AssignmentAccepted  AssignmentStatus = "accepted"
	AssignmentRejected  AssignmentStatus = "rejected"
	AssignmentCompleted AssignmentStatus = "completed"
)

// ReviewAssignment pairs one reviewer with one submission. The table carries a
// unique key on (submission_id, reviewer_id) so two concurrent assignment
// attempts for the same pair cannot both succeed.
type ReviewAssignment struct {
	AssignmentID int              `gorm:"primaryKey;column:assignment_id" json:"assignment_id"`
	SubmissionID int              `gorm:"column:submission_id;uniqueIndex:uq_assignment_pair" json:"submission_id"`
	ReviewerID   int              `gorm:"column:reviewer_id;uniqueIndex:uq_assignment_pair" json:"reviewer_id"`
	Status       AssignmentStatus `gorm:"column:status" json:"status"`
	InvitedBy    int              `gorm:"column:invited_by" json:"invited_by"`
	InvitedAt    time.Time        `gorm:"column:invited_at" json:"invited_at"`
	AcceptedAt   *time.Time       `gorm:"column:accepted_at" json:"accepted_at,omitempty"`
	RejectedAt   *time.Time       `gorm:"column:rejected_at" json:"rejected_at,omitempty"`
	RejectReason *string          `gorm:"column:reject_reason" json:"reject_reason,omitempty"`
	Deadline     time.Time        `gorm:"column:deadline" json:"deadline"`
	CompletedAt  *time.Time       `gorm:"column:completed_at" json:"completed_at,omitempty"`

	// Relations
	Submission *Submission `gorm:"foreignKey:SubmissionID" json:"submission,omitempty"`
	Reviewer   *User       `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
	Review     *Review     `gorm:"foreignKey:AssignmentID" json:"review,omitempty"`
}

// TableName specifies the table for ReviewAssignment.
func (ReviewAssignment) TableName() string {
	return "review_assignments"
}
