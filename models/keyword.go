package models

import "time"

// KeywordStatus is the moderation state of a proposed keyword.
type KeywordStatus string

const (
	KeywordPending  KeywordStatus = "pending"
	KeywordApproved KeywordStatus = "approved"
	KeywordRejected KeywordStatus = "rejected"
)

// Keyword is an admin-moderated topic tag. Only approved keywords feed the
// reviewer matching heuristic.
type Keyword struct {
	KeywordID int           `gorm:"primaryKey;column:keyword_id" json:"keyword_id"`
	Name      string        `gorm:"column:name;unique" json:"name"`
	Status    KeywordStatus `gorm:"column:status" json:"status"`
	CreateAt  time.Time     `gorm:"column:create_at" json:"create_at"`
	UpdateAt  *time.Time    `gorm:"column:update_at" json:"update_at"`
}

// ReviewerKeyword links a reviewer to a keyword they claim expertise in.
type ReviewerKeyword struct {
	ReviewerID int `gorm:"primaryKey;column:reviewer_id" json:"reviewer_id"`
	KeywordID  int `gorm:"primaryKey;column:keyword_id" json:"keyword_id"`
}

// SubmissionKeyword links a submission to one of its topic keywords.
type SubmissionKeyword struct {
	SubmissionID int `gorm:"primaryKey;column:submission_id" json:"submission_id"`
	KeywordID    int `gorm:"primaryKey;column:keyword_id" json:"keyword_id"`
}

// TableName overrides
func (Keyword) TableName() string {
	return "keywords"
}

func (ReviewerKeyword) TableName() string {
	return "reviewer_keywords"
}

func (SubmissionKeyword) TableName() string {
	return "submission_keywords"
}
