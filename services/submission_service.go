package services

import (
	"errors"
	"fmt"
	"strings"

	"conference-review-api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubmissionService owns creation and every lifecycle operation an author or
// admin performs directly on a submission.
type SubmissionService struct {
	db       *gorm.DB
	clock    Clock
	notifier Notifier
}

func NewSubmissionService(db *gorm.DB, clock Clock, notifier Notifier) *SubmissionService {
	return &SubmissionService{db: db, clock: clock, notifier: notifier}
}

// CreateDraft opens a new submission in Draft for the author.
func (s *SubmissionService) CreateDraft(authorID, conferenceID int, title, abstractText string, keywordIDs []int) (*models.Submission, error) {
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, persistenceErr(tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	now := s.clock.Now()
	sub := models.Submission{
		SubmissionNumber: submissionNumber(),
		AuthorID:         authorID,
		ConferenceID:     conferenceID,
		Title:            strings.TrimSpace(title),
		AbstractText:     abstractText,
		Status:           models.StatusDraft,
		CreateAt:         now,
	}
	if err := tx.Create(&sub).Error; err != nil {
		tx.Rollback()
		return nil, persistenceErr(err)
	}

	if err := replaceSubmissionKeywords(tx, sub.SubmissionID, keywordIDs); err != nil {
		tx.Rollback()
		return nil, persistenceErr(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, persistenceErr(err)
	}
	return &sub, nil
}

// UpdateDraft edits title, abstract and keywords while the submission is
// still in Draft.
func (s *SubmissionService) UpdateDraft(submissionID, authorID int, title, abstractText string, keywordIDs []int) (*models.Submission, error) {
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, persistenceErr(tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	sub, err := s.ownedSubmission(tx, submissionID, authorID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if sub.Status != models.StatusDraft {
		tx.Rollback()
		return nil, domainErr(KindInvalidSubmissionStatus, "submission %d is %s and can no longer be edited", submissionID, sub.Status)
	}

	now := s.clock.Now()
	if err := tx.Model(&models.Submission{}).
		Where("submission_id = ?", submissionID).
		Updates(map[string]interface{}{
			"title":         strings.TrimSpace(title),
			"abstract_text": abstractText,
			"update_at":     now,
		}).Error; err != nil {
		tx.Rollback()
		return nil, persistenceErr(err)
	}

	if keywordIDs != nil {
		if err := replaceSubmissionKeywords(tx, submissionID, keywordIDs); err != nil {
			tx.Rollback()
			return nil, persistenceErr(err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, persistenceErr(err)
	}

	sub.Title = strings.TrimSpace(title)
	sub.AbstractText = abstractText
	sub.UpdateAt = &now
	return sub, nil
}

// SubmitAbstract moves the author's draft into the abstract-review queue.
func (s *SubmissionService) SubmitAbstract(submissionID, authorID int) (*models.Submission, error) {
	return s.authorTransition(submissionID, authorID, models.StatusPendingAbstractReview, "")
}

// SubmitFullPaper records the full paper upload after abstract approval or a
// revision request.
func (s *SubmissionService) SubmitFullPaper(submissionID, authorID int) (*models.Submission, error) {
	return s.authorTransition(submissionID, authorID, models.StatusFullPaperSubmitted, "")
}

// Withdraw retires a submission at the author's request. The row stays;
// withdrawal is a status, never a deletion.
func (s *SubmissionService) Withdraw(submissionID, authorID int, reason string) (*models.Submission, error) {
	return s.authorTransition(submissionID, authorID, models.StatusWithdrawn, reason)
}

// SubmitFinalVersion stamps the camera-ready upload on an accepted paper.
// The status does not change.
func (s *SubmissionService) SubmitFinalVersion(submissionID, authorID int) (*models.Submission, error) {
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, persistenceErr(tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	sub, err := s.ownedSubmission(tx, submissionID, authorID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if sub.Status != models.StatusAccepted {
		tx.Rollback()
		return nil, domainErr(KindInvalidSubmissionStatus, "submission %d is %s; the final version requires an accepted paper", submissionID, sub.Status)
	}

	now := s.clock.Now()
	if err := tx.Model(&models.Submission{}).
		Where("submission_id = ?", submissionID).
		Updates(map[string]interface{}{
			"final_version_submitted_at": now,
			"update_at":                  now,
		}).Error; err != nil {
		tx.Rollback()
		return nil, persistenceErr(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, persistenceErr(err)
	}

	sub.FinalVersionSubmittedAt = &now
	sub.UpdateAt = &now
	return sub, nil
}

// ApproveAbstract rules the abstract worthy of full-paper submission.
func (s *SubmissionService) ApproveAbstract(submissionID, adminID int) (*models.Submission, error) {
	return s.abstractRuling(submissionID, adminID, models.StatusAbstractApproved, "")
}

// RejectAbstract turns the abstract down with a reason for the author.
func (s *SubmissionService) RejectAbstract(submissionID, adminID int, reason string) (*models.Submission, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, domainErr(KindInvalidTransition, "an abstract rejection requires a reason")
	}
	return s.abstractRuling(submissionID, adminID, models.StatusAbstractRejected, reason)
}

func (s *SubmissionService) abstractRuling(submissionID, adminID int, target models.SubmissionStatus, reason string) (*models.Submission, error) {
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, persistenceErr(tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var sub models.Submission
	if err := tx.Where("submission_id = ?", submissionID).First(&sub).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErr(KindSubmissionNotFound, "submission %d not found", submissionID)
		}
		return nil, persistenceErr(err)
	}

	if err := Transition(tx, &sub, target, adminID, reason, s.clock); err != nil {
		tx.Rollback()
		return nil, err
	}

	kind := NotifyAbstractApproved
	title := "Abstract approved"
	message := fmt.Sprintf("The abstract of \"%s\" has been approved. You may now submit the full paper.", sub.Title)
	if target == models.StatusAbstractRejected {
		kind = NotifyAbstractRejected
		title = "Abstract rejected"
		message = fmt.Sprintf("The abstract of \"%s\" has been rejected. Reason: %s", sub.Title, reason)
	}
	if err := createNotification(tx, sub.AuthorID, title, message, "info", submissionID, s.clock.Now()); err != nil {
		tx.Rollback()
		return nil, persistenceErr(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, persistenceErr(err)
	}

	if email := loadUserEmail(s.db, sub.AuthorID); email != "" {
		notifySafe(s.notifier, kind, email, submissionID, nil, map[string]string{
			"title":   sub.Title,
			"message": message,
		})
	}
	return &sub, nil
}

func (s *SubmissionService) authorTransition(submissionID, authorID int, target models.SubmissionStatus, reason string) (*models.Submission, error) {
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, persistenceErr(tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	sub, err := s.ownedSubmission(tx, submissionID, authorID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := Transition(tx, sub, target, authorID, reason, s.clock); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, persistenceErr(err)
	}
	return sub, nil
}

func (s *SubmissionService) ownedSubmission(tx *gorm.DB, submissionID, authorID int) (*models.Submission, error) {
	var sub models.Submission
	if err := tx.Where("submission_id = ?", submissionID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErr(KindSubmissionNotFound, "submission %d not found", submissionID)
		}
		return nil, persistenceErr(err)
	}
	if sub.AuthorID != authorID {
		return nil, domainErr(KindNotEligible, "submission %d does not belong to author %d", submissionID, authorID)
	}
	return &sub, nil
}

func replaceSubmissionKeywords(tx *gorm.DB, submissionID int, keywordIDs []int) error {
	if err := tx.Where("submission_id = ?", submissionID).
		Delete(&models.SubmissionKeyword{}).Error; err != nil {
		return err
	}
	for _, keywordID := range keywordIDs {
		link := models.SubmissionKeyword{SubmissionID: submissionID, KeywordID: keywordID}
		if err := tx.Create(&link).Error; err != nil {
			return err
		}
	}
	return nil
}

// submissionNumber builds the human-facing reference, e.g. SUB-1A2B3C4D.
func submissionNumber() string {
	id := uuid.New().String()
	return "SUB-" + strings.ToUpper(id[:8])
}
