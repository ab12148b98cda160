package models

import "time"

// Conference holds the event a paper is submitted to, including its plan
// dates. Plan dates are stored as UTC instants.
type Conference struct {
	ConferenceID       int        `gorm:"primaryKey;column:conference_id" json:"conference_id"`
	Name               string     `gorm:"column:name" json:"name"`
	AbstractDeadline   *time.Time `gorm:"column:abstract_deadline" json:"abstract_deadline,omitempty"`
	FullPaperDeadline  *time.Time `gorm:"column:full_paper_deadline" json:"full_paper_deadline,omitempty"`
	ReviewDeadline     *time.Time `gorm:"column:review_deadline" json:"review_deadline,omitempty"`
	NotificationDate   *time.Time `gorm:"column:notification_date" json:"notification_date,omitempty"`
	CreateAt           time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt           *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt           *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Criteria []ReviewCriterion `gorm:"foreignKey:ConferenceID" json:"criteria,omitempty"`
}

// ReviewCriterion is a named scoring dimension configured per conference.
type ReviewCriterion struct {
	CriterionID  int    `gorm:"primaryKey;column:criterion_id" json:"criterion_id"`
	ConferenceID int    `gorm:"column:conference_id" json:"conference_id"`
	Name         string `gorm:"column:name" json:"name"`
	MaxScore     int    `gorm:"column:max_score" json:"max_score"`
	IsActive     bool   `gorm:"column:is_active" json:"is_active"`
}

// TableName overrides
func (Conference) TableName() string {
	return "conferences"
}

func (ReviewCriterion) TableName() string {
	return "review_criteria"
}
