package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"conference-review-api/models"
	"conference-review-api/utils"

	"gorm.io/gorm"
)

// assignableStatuses are the submission statuses a reviewer may be invited
// in. PendingAbstractReview is assignable but keeps its status so the
// abstract-review queue still shows the submission.
var assignableStatuses = map[models.SubmissionStatus]bool{
	models.StatusPendingAbstractReview: true,
	models.StatusAbstractApproved:      true,
	models.StatusFullPaperSubmitted:    true,
	models.StatusUnderReview:           true,
}

// AssignmentService owns reviewer invitations and their lifecycle.
type AssignmentService struct {
	db       *gorm.DB
	clock    Clock
	notifier Notifier
}

func NewAssignmentService(db *gorm.DB, clock Clock, notifier Notifier) *AssignmentService {
	return &AssignmentService{db: db, clock: clock, notifier: notifier}
}

// AssignReviewer invites a reviewer to a submission. Preconditions are
// checked in a fixed order so the caller always learns the first failing
// one. The assignment insert, the status side effect and the in-app
// notification persist as one transaction; the invitation email goes out
// only after commit.
func (s *AssignmentService) AssignReviewer(submissionID, reviewerID int, deadline time.Time, hint utils.TimeSourceHint, adminID int) (*models.ReviewAssignment, error) {
	deadlineUTC := utils.ToUTC(deadline, hint)
	now := s.clock.Now()
	if !deadlineUTC.After(now) {
		return nil, domainErr(KindDeadlineNotFuture, "deadline %s is not in the future", deadlineUTC.Format(time.RFC3339))
	}

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

	if !assignableStatuses[sub.Status] {
		tx.Rollback()
		return nil, domainErr(KindInvalidSubmissionStatus, "submission %d is %s and cannot receive reviewers", submissionID, sub.Status)
	}

	var reviewer models.User
	if err := tx.Where("user_id = ? AND delete_at IS NULL", reviewerID).First(&reviewer).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErr(KindReviewerNotEligible, "user %d not found", reviewerID)
		}
		return nil, persistenceErr(err)
	}
	if !reviewer.IsReviewer() || !reviewer.IsActive {
		tx.Rollback()
		return nil, domainErr(KindReviewerNotEligible, "user %d is not an active reviewer", reviewerID)
	}

	var existing int64
	if err := tx.Model(&models.ReviewAssignment{}).
		Where("submission_id = ? AND reviewer_id = ?", submissionID, reviewerID).
		Count(&existing).Error; err != nil {
		tx.Rollback()
		return nil, persistenceErr(err)
	}
	if existing > 0 {
		tx.Rollback()
		return nil, domainErr(KindAlreadyAssigned, "reviewer %d is already assigned to submission %d", reviewerID, submissionID)
	}

	assignment := models.ReviewAssignment{
		SubmissionID: submissionID,
		ReviewerID:   reviewerID,
		Status:       models.AssignmentPending,
		InvitedBy:    adminID,
		InvitedAt:    now,
		Deadline:     deadlineUTC,
	}
	if err := tx.Create(&assignment).Error; err != nil {
		tx.Rollback()
		// A concurrent assignment for the same pair loses the race on the
		// (submission_id, reviewer_id) unique key.
		if strings.Contains(err.Error(), "Duplicate entry") {
			return nil, domainErr(KindAlreadyAssigned, "reviewer %d is already assigned to submission %d", reviewerID, submissionID)
		}
		return nil, persistenceErr(err)
	}

	if sub.Status == models.StatusAbstractApproved || sub.Status == models.StatusFullPaperSubmitted {
		if err := Transition(tx, &sub, models.StatusUnderReview, adminID, "", s.clock); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := createNotification(tx, reviewerID, "Review invitation",
		fmt.Sprintf("You have been invited to review \"%s\". Deadline: %s.", sub.Title, deadlineUTC.Format("2006-01-02 15:04 MST")),
		"info", submissionID, now); err != nil {
		tx.Rollback()
		return nil, persistenceErr(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, persistenceErr(err)
	}

	rid := reviewerID
	notifySafe(s.notifier, NotifyReviewInvitation, reviewer.Email, submissionID, &rid, map[string]string{
		"title":          sub.Title,
		"recipient_name": reviewer.FullName(),
		"message":        fmt.Sprintf("You have been invited to review the submission \"%s\". Please respond before %s.", sub.Title, deadlineUTC.Format("2006-01-02 15:04 MST")),
	})

	return &assignment, nil
}

// reviewerLoadRow scans the grouped open-workload counts.
type reviewerLoadRow struct {
	ReviewerID int `gorm:"column:reviewer_id"`
	ActiveLoad int `gorm:"column:active_load"`
}

type reviewerKeywordRow struct {
	ReviewerID int
	KeywordID  int
}

// GetAvailableReviewers ranks every active reviewer for a submission by
// keyword match, lightest current workload first on ties. Reviewers with no
// keyword overlap are still listed.
func (s *AssignmentService) GetAvailableReviewers(submissionID int) ([]RankedReviewer, error) {
	var sub models.Submission
	if err := s.db.Where("submission_id = ?", submissionID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErr(KindSubmissionNotFound, "submission %d not found", submissionID)
		}
		return nil, persistenceErr(err)
	}

	var submissionKeywordIDs []int
	if err := s.db.Table("submission_keywords").
		Joins("JOIN keywords ON keywords.keyword_id = submission_keywords.keyword_id").
		Where("submission_keywords.submission_id = ? AND keywords.status = ?", submissionID, models.KeywordApproved).
		Pluck("submission_keywords.keyword_id", &submissionKeywordIDs).Error; err != nil {
		return nil, persistenceErr(err)
	}

	var reviewers []models.User
	if err := s.db.Where("role_id = ? AND is_active = ? AND delete_at IS NULL", models.RoleReviewer, true).
		Order("user_id ASC").
		Find(&reviewers).Error; err != nil {
		return nil, persistenceErr(err)
	}
	if len(reviewers) == 0 {
		return []RankedReviewer{}, nil
	}

	ids := make([]int, len(reviewers))
	for i, r := range reviewers {
		ids[i] = r.UserID
	}

	var keywordRows []reviewerKeywordRow
	if err := s.db.Table("reviewer_keywords").
		Select("reviewer_keywords.reviewer_id, reviewer_keywords.keyword_id").
		Joins("JOIN keywords ON keywords.keyword_id = reviewer_keywords.keyword_id").
		Where("reviewer_keywords.reviewer_id IN ? AND keywords.status = ?", ids, models.KeywordApproved).
		Scan(&keywordRows).Error; err != nil {
		return nil, persistenceErr(err)
	}
	keywordsByReviewer := make(map[int][]int)
	for _, row := range keywordRows {
		keywordsByReviewer[row.ReviewerID] = append(keywordsByReviewer[row.ReviewerID], row.KeywordID)
	}

	var loadRows []reviewerLoadRow
	if err := s.db.Table("review_assignments").
		Select("reviewer_id, COUNT(*) AS active_load").
		Where("reviewer_id IN ? AND status = ? AND completed_at IS NULL", ids, models.AssignmentAccepted).
		Group("reviewer_id").
		Scan(&loadRows).Error; err != nil {
		return nil, persistenceErr(err)
	}
	loadByReviewer := make(map[int]int, len(loadRows))
	for _, row := range loadRows {
		loadByReviewer[row.ReviewerID] = row.ActiveLoad
	}

	ranked := make([]RankedReviewer, 0, len(reviewers))
	for _, r := range reviewers {
		ranked = append(ranked, RankedReviewer{
			Reviewer:   r,
			MatchScore: MatchScore(submissionKeywordIDs, keywordsByReviewer[r.UserID]),
			ActiveLoad: loadByReviewer[r.UserID],
		})
	}
	return rankReviewers(ranked), nil
}

// AcceptAssignment moves a pending invitation to accepted. Only the invited
// reviewer may act on it.
func (s *AssignmentService) AcceptAssignment(assignmentID, reviewerID int) (*models.ReviewAssignment, error) {
	return s.respondToAssignment(assignmentID, reviewerID, models.AssignmentAccepted, "")
}

// RejectAssignment declines a pending invitation with a reason.
func (s *AssignmentService) RejectAssignment(assignmentID, reviewerID int, reason string) (*models.ReviewAssignment, error) {
	return s.respondToAssignment(assignmentID, reviewerID, models.AssignmentRejected, reason)
}

func (s *AssignmentService) respondToAssignment(assignmentID, reviewerID int, target models.AssignmentStatus, reason string) (*models.ReviewAssignment, error) {
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

	var assignment models.ReviewAssignment
	if err := tx.Where("assignment_id = ?", assignmentID).First(&assignment).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErr(KindAssignmentNotFound, "assignment %d not found", assignmentID)
		}
		return nil, persistenceErr(err)
	}
	if assignment.ReviewerID != reviewerID {
		tx.Rollback()
		return nil, domainErr(KindNotEligible, "assignment %d does not belong to reviewer %d", assignmentID, reviewerID)
	}
	if assignment.Status != models.AssignmentPending {
		tx.Rollback()
		return nil, domainErr(KindNotEligible, "assignment %d is %s, not pending", assignmentID, assignment.Status)
	}

	now := s.clock.Now()
	updates := map[string]interface{}{"status": target}
	switch target {
	case models.AssignmentAccepted:
		updates["accepted_at"] = now
		assignment.AcceptedAt = &now
	case models.AssignmentRejected:
		updates["rejected_at"] = now
		assignment.RejectedAt = &now
		if reason != "" {
			updates["reject_reason"] = reason
			assignment.RejectReason = &reason
		}
	}

	if err := tx.Model(&models.ReviewAssignment{}).
		Where("assignment_id = ?", assignmentID).
		Updates(updates).Error; err != nil {
		tx.Rollback()
		return nil, persistenceErr(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, persistenceErr(err)
	}

	assignment.Status = target
	return &assignment, nil
}

// createNotification inserts an in-app notification row inside the caller's
// transaction.
func createNotification(tx *gorm.DB, userID int, title, message, kind string, submissionID int, now time.Time) error {
	related := uint(submissionID)
	n := models.Notification{
		UserID:              uint(userID),
		Title:               title,
		Message:             message,
		Type:                kind,
		RelatedSubmissionID: &related,
		IsRead:              false,
		CreateAt:            now,
	}
	return tx.Create(&n).Error
}
