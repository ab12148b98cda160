package models

import "time"

// FinalDecision is the admin's binding ruling on a submission, at most one
// row per submission. A later decision overwrites the earlier one.
type FinalDecision struct {
	DecisionID   int            `gorm:"primaryKey;column:decision_id" json:"decision_id"`
	SubmissionID int            `gorm:"column:submission_id;unique" json:"submission_id"`
	Decision     Recommendation `gorm:"column:decision" json:"decision"`
	DecidedBy    int            `gorm:"column:decided_by" json:"decided_by"`
	Reason       string         `gorm:"column:reason" json:"reason"`
	AverageScore float64        `gorm:"column:average_score" json:"average_score"`
	DecidedAt    time.Time      `gorm:"column:decided_at" json:"decided_at"`

	DecisionMaker *User `gorm:"foreignKey:DecidedBy" json:"decision_maker,omitempty"`
}

// TableName specifies the table for FinalDecision.
func (FinalDecision) TableName() string {
	return "final_decisions"
}
