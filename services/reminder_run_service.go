package services

import (
	"errors"
	"fmt"
	"time"

	"conference-review-api/config"
	"conference-review-api/models"

	"gorm.io/gorm"
)

var (
	ErrReminderRunNotFound = errors.New("reminder run not found")
)

type ReminderRunService struct {
	db *gorm.DB
}

func NewReminderRunService(db *gorm.DB) *ReminderRunService {
	if db == nil {
		db = config.DB
	}
	return &ReminderRunService{db: db}
}

func (s *ReminderRunService) Start(trigger string) (*models.ReminderRun, error) {
	if trigger == "" {
		trigger = "unknown"
	}
	run := &models.ReminderRun{
		TriggerSource: trigger,
		Status:        models.ReminderRunStatusRunning,
	}
	if err := s.db.Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

func (s *ReminderRunService) MarkSuccess(runID uint, summary *ReminderSummary) error {
	return s.finish(runID, models.ReminderRunStatusSuccess, summary, nil)
}

func (s *ReminderRunService) MarkFailure(runID uint, summary *ReminderSummary, err error) error {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return s.finish(runID, models.ReminderRunStatusFailed, summary, &msg)
}

func (s *ReminderRunService) finish(runID uint, status string, summary *ReminderSummary, errMsg *string) error {
	updates := map[string]interface{}{
		"status":      status,
		"finished_at": time.Now(),
	}
	if summary != nil {
		updates["assignments_scanned"] = summary.AssignmentsScanned
		updates["reminders_sent"] = summary.RemindersSent
		updates["reminders_failed"] = summary.RemindersFailed
	}
	if errMsg != nil {
		if len(*errMsg) > 1000 {
			truncated := fmt.Sprintf("%s...", (*errMsg)[:997])
			updates["error_message"] = truncated
		} else {
			updates["error_message"] = *errMsg
		}
	}
	res := s.db.Model(&models.ReminderRun{}).Where("id = ?", runID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrReminderRunNotFound
	}
	return nil
}
