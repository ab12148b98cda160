package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"conference-review-api/config"
	"conference-review-api/models"

	"gorm.io/gorm"
)

var (
	ErrReminderJobAlreadyRunning = errors.New("reminder job already running")
)

type ReminderSummary struct {
	AssignmentsScanned int `json:"assignments_scanned"`
	RemindersSent      int `json:"reminders_sent"`
	RemindersFailed    int `json:"reminders_failed"`
}

type ReminderJobInput struct {
	Window        time.Duration
	Limit         int
	TriggerSource string
	LockName      string
	DryRun        bool
	RecordRun     bool
}

// ReminderJobService sweeps open review assignments whose deadline falls
// inside the reminder window and nudges the reviewers. Runs are serialized
// through a MySQL advisory lock so overlapping cron invocations do not
// double-send.
type ReminderJobService struct {
	db         *gorm.DB
	clock      Clock
	notifier   Notifier
	runService *ReminderRunService
}

func NewReminderJobService(db *gorm.DB, clock Clock, notifier Notifier) *ReminderJobService {
	if db == nil {
		db = config.DB
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &ReminderJobService{
		db:         db,
		clock:      clock,
		notifier:   notifier,
		runService: NewReminderRunService(db),
	}
}

type dueAssignmentRow struct {
	AssignmentID  int       `gorm:"column:assignment_id"`
	SubmissionID  int       `gorm:"column:submission_id"`
	ReviewerID    int       `gorm:"column:reviewer_id"`
	Deadline      time.Time `gorm:"column:deadline"`
	ReviewerEmail string    `gorm:"column:reviewer_email"`
	ReviewerFname string    `gorm:"column:reviewer_fname"`
	Title         string    `gorm:"column:title"`
}

func (s *ReminderJobService) Run(ctx context.Context, input *ReminderJobInput) (*ReminderSummary, error) {
	if input == nil {
		return nil, errors.New("input is nil")
	}
	if input.Window <= 0 {
		return nil, errors.New("window must be positive")
	}
	summary := &ReminderSummary{}

	release, err := s.acquireLock(ctx, input.LockName)
	if err != nil {
		return nil, err
	}
	if release != nil {
		defer func() {
			if relErr := release(); relErr != nil {
				log.Printf("failed to release reminder job lock: %v", relErr)
			}
		}()
	}

	var run *models.ReminderRun
	if input.RecordRun {
		run, err = s.runService.Start(input.TriggerSource)
		if err != nil {
			return nil, err
		}
	}

	var finalErr error
	if run != nil {
		defer func() {
			if finalErr != nil {
				if err := s.runService.MarkFailure(run.ID, summary, finalErr); err != nil {
					log.Printf("failed to mark reminder run failure: %v", err)
				}
			} else {
				if err := s.runService.MarkSuccess(run.ID, summary); err != nil {
					log.Printf("failed to mark reminder run success: %v", err)
				}
			}
		}()
	}

	now := s.clock.Now()
	query := s.db.WithContext(ctx).Table("review_assignments").
		Select("review_assignments.assignment_id, review_assignments.submission_id, review_assignments.reviewer_id, review_assignments.deadline, users.email AS reviewer_email, users.user_fname AS reviewer_fname, submissions.title").
		Joins("JOIN users ON users.user_id = review_assignments.reviewer_id").
		Joins("JOIN submissions ON submissions.submission_id = review_assignments.submission_id").
		Where("review_assignments.status IN ?", []models.AssignmentStatus{models.AssignmentPending, models.AssignmentAccepted}).
		Where("review_assignments.deadline > ? AND review_assignments.deadline <= ?", now, now.Add(input.Window))

	if input.Limit > 0 {
		query = query.Limit(input.Limit)
	}

	var due []dueAssignmentRow
	if err := query.Order("review_assignments.deadline ASC").Find(&due).Error; err != nil {
		finalErr = err
		return nil, err
	}
	summary.AssignmentsScanned = len(due)

	for _, row := range due {
		if input.DryRun {
			continue
		}
		if err := s.remind(row, now); err != nil {
			summary.RemindersFailed++
			log.Printf("reminder failed for assignment %d: %v", row.AssignmentID, err)
			continue
		}
		summary.RemindersSent++
	}

	return summary, nil
}

func (s *ReminderJobService) remind(row dueAssignmentRow, now time.Time) error {
	message := fmt.Sprintf("Your review of \"%s\" is due on %s.", row.Title, row.Deadline.Format("2 January 2006 15:04 MST"))
	if err := createNotification(s.db, row.ReviewerID, "Review deadline approaching", message, "warning", row.SubmissionID, now); err != nil {
		return err
	}

	rid := row.ReviewerID
	if s.notifier != nil && row.ReviewerEmail != "" {
		if err := s.notifier.Notify(NotifyDeadlineReminder, row.ReviewerEmail, row.SubmissionID, &rid, map[string]string{
			"title":          row.Title,
			"message":        message,
			"recipient_name": row.ReviewerFname,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *ReminderJobService) acquireLock(ctx context.Context, lockName string) (func() error, error) {
	if strings.TrimSpace(lockName) == "" {
		return nil, nil
	}

	var ok int
	if err := s.db.WithContext(ctx).Raw("SELECT GET_LOCK(?, 0)", lockName).Scan(&ok).Error; err != nil {
		return nil, err
	}
	if ok != 1 {
		return nil, ErrReminderJobAlreadyRunning
	}

	return func() error {
		var released int
		if err := s.db.WithContext(ctx).Raw("SELECT RELEASE_LOCK(?)", lockName).Scan(&released).Error; err != nil {
			return err
		}
		return nil
	}, nil
}
