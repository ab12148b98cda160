package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ReminderRunStatusRunning = "running"
	ReminderRunStatusSuccess = "success"
	ReminderRunStatusFailed  = "failed"
)

// ReminderRun records one execution of the review deadline reminder job.
type ReminderRun struct {
	ID uint `json:"id" gorm:"primaryKey;autoIncrement"`

	TriggerSource string     `json:"trigger_source" gorm:"type:varchar(64);not null"`
	Status        string     `json:"status" gorm:"type:enum('running','success','failed');not null;default:'running'"`
	ErrorMessage  *string    `json:"error_message" gorm:"type:text"`
	StartedAt     time.Time  `json:"started_at" gorm:"column:started_at;autoCreateTime"`
	FinishedAt    *time.Time `json:"finished_at" gorm:"column:finished_at"`

	AssignmentsScanned uint `json:"assignments_scanned" gorm:"column:assignments_scanned;not null;default:0"`
	RemindersSent      uint `json:"reminders_sent" gorm:"column:reminders_sent;not null;default:0"`
	RemindersFailed    uint `json:"reminders_failed" gorm:"column:reminders_failed;not null;default:0"`

	CreatedAt time.Time      `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"column:deleted_at;index"`
}

func (ReminderRun) TableName() string { return "reminder_runs" }
