package services

import (
	"errors"
	"fmt"

	"conference-review-api/models"

	"gorm.io/gorm"
)

// DecisionSuggestion is the system's advisory read of the completed reviews.
// The admin's chosen decision always wins over Suggested.
type DecisionSuggestion struct {
	AverageScore     float64               `json:"average_score"`
	CompletedReviews int                   `json:"completed_reviews"`
	Suggested        models.Recommendation `json:"suggested"`
	CanMakeDecision  bool                  `json:"can_make_decision"`
}

// ReviewService owns scorecard submission, aggregation and the admin's final
// decision.
type ReviewService struct {
	db       *gorm.DB
	clock    Clock
	notifier Notifier
}

func NewReviewService(db *gorm.DB, clock Clock, notifier Notifier) *ReviewService {
	return &ReviewService{db: db, clock: clock, notifier: notifier}
}

// SubmitReview validates a reviewer's scorecard against the conference's
// active criteria, persists the review and its per-criterion scores
// (replacing any earlier submission for the same assignment), and marks the
// assignment completed. Author and admins are notified.
func (s *ReviewService) SubmitReview(assignmentID, reviewerID int, scores map[string]int, recommendation models.Recommendation, commentsForAuthor, commentsForAdmin string) (*models.Review, error) {
	if !recommendation.Valid() {
		return nil, domainErr(KindIncompleteOrOutOfRange, "unknown recommendation %q", recommendation)
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
	if assignment.Status != models.AssignmentAccepted {
		tx.Rollback()
		return nil, domainErr(KindNotEligible, "assignment %d is %s, not accepted", assignmentID, assignment.Status)
	}

	var sub models.Submission
	if err := tx.Where("submission_id = ?", assignment.SubmissionID).First(&sub).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErr(KindSubmissionNotFound, "submission %d not found", assignment.SubmissionID)
		}
		return nil, persistenceErr(err)
	}

	var criteria []models.ReviewCriterion
	if err := tx.Where("conference_id = ? AND is_active = ?", sub.ConferenceID, true).
		Order("criterion_id ASC").
		Find(&criteria).Error; err != nil {
		tx.Rollback()
		return nil, persistenceErr(err)
	}

	total := 0
	for _, criterion := range criteria {
		score, ok := scores[criterion.Name]
		if !ok {
			tx.Rollback()
			return nil, domainErr(KindIncompleteOrOutOfRange, "criterion %q is missing a score", criterion.Name)
		}
		if score < 1 || score > criterion.MaxScore {
			tx.Rollback()
			return nil, domainErr(KindIncompleteOrOutOfRange, "criterion %q score %d is outside [1, %d]", criterion.Name, score, criterion.MaxScore)
		}
		total += score
	}

	now := s.clock.Now()
	average := 0.0
	if len(criteria) > 0 {
		average = float64(total) / float64(len(criteria))
	}

	var review models.Review
	err := tx.Where("assignment_id = ?", assignmentID).First(&review).Error
	switch {
	case err == nil:
		// Re-submission: replace the verdict and every prior score row.
		if err := tx.Model(&models.Review{}).
			Where("review_id = ?", review.ReviewID).
			Updates(map[string]interface{}{
				"average_score":       average,
				"recommendation":      recommendation,
				"comments_for_author": commentsForAuthor,
				"comments_for_admin":  commentsForAdmin,
				"submitted_at":        now,
			}).Error; err != nil {
			tx.Rollback()
			return nil, persistenceErr(err)
		}
		if err := tx.Where("review_id = ?", review.ReviewID).
			Delete(&models.ReviewScore{}).Error; err != nil {
			tx.Rollback()
			return nil, persistenceErr(err)
		}
		review.AverageScore = &average
		review.Recommendation = recommendation
		review.CommentsForAuthor = commentsForAuthor
		review.CommentsForAdmin = commentsForAdmin
		review.SubmittedAt = now
	case errors.Is(err, gorm.ErrRecordNotFound):
		review = models.Review{
			AssignmentID:      assignmentID,
			ReviewerID:        reviewerID,
			AverageScore:      &average,
			Recommendation:    recommendation,
			CommentsForAuthor: commentsForAuthor,
			CommentsForAdmin:  commentsForAdmin,
			SubmittedAt:       now,
		}
		if err := tx.Create(&review).Error; err != nil {
			tx.Rollback()
			return nil, persistenceErr(err)
		}
	default:
		tx.Rollback()
		return nil, persistenceErr(err)
	}

	for _, criterion := range criteria {
		row := models.ReviewScore{
			ReviewID:      review.ReviewID,
			CriterionName: criterion.Name,
			Score:         scores[criterion.Name],
		}
		if err := tx.Create(&row).Error; err != nil {
			tx.Rollback()
			return nil, persistenceErr(err)
		}
	}

	if err := tx.Model(&models.ReviewAssignment{}).
		Where("assignment_id = ?", assignmentID).
		Updates(map[string]interface{}{
			"status":       models.AssignmentCompleted,
			"completed_at": now,
		}).Error; err != nil {
		tx.Rollback()
		return nil, persistenceErr(err)
	}

	adminIDs, adminEmails, err := activeAdmins(tx)
	if err != nil {
		tx.Rollback()
		return nil, persistenceErr(err)
	}

	message := fmt.Sprintf("A review for \"%s\" has been completed.", sub.Title)
	if err := createNotification(tx, sub.AuthorID, "Review completed", message, "info", sub.SubmissionID, now); err != nil {
		tx.Rollback()
		return nil, persistenceErr(err)
	}
	for _, adminID := range adminIDs {
		if err := createNotification(tx, adminID, "Review completed", message, "info", sub.SubmissionID, now); err != nil {
			tx.Rollback()
			return nil, persistenceErr(err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, persistenceErr(err)
	}

	var authorEmail string
	if author := loadUserEmail(s.db, sub.AuthorID); author != "" {
		authorEmail = author
	}
	rid := reviewerID
	notifySafe(s.notifier, NotifyReviewCompleted, authorEmail, sub.SubmissionID, &rid, map[string]string{
		"title":   sub.Title,
		"message": message,
	})
	for _, email := range adminEmails {
		notifySafe(s.notifier, NotifyReviewCompleted, email, sub.SubmissionID, &rid, map[string]string{
			"title":   sub.Title,
			"message": message,
		})
	}

	return &review, nil
}

// AggregateForDecision collects every completed review for a submission and
// derives the advisory decision suggestion.
func (s *ReviewService) AggregateForDecision(submissionID int) (*DecisionSuggestion, error) {
	var sub models.Submission
	if err := s.db.Where("submission_id = ?", submissionID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErr(KindSubmissionNotFound, "submission %d not found", submissionID)
		}
		return nil, persistenceErr(err)
	}

	reviews, err := s.completedReviews(s.db, submissionID)
	if err != nil {
		return nil, err
	}

	suggestion := SuggestDecision(reviews)
	suggestion.CanMakeDecision = len(reviews) >= 1 && sub.Status == models.StatusUnderReview
	return &suggestion, nil
}

// MakeFinalDecision records the admin's binding ruling, recomputes the
// average identically to AggregateForDecision, and moves the submission to
// the matching status. A repeated or changed decision overwrites the single
// FinalDecision row.
func (s *ReviewService) MakeFinalDecision(submissionID int, decision models.Recommendation, reason string, adminID int) (*models.FinalDecision, error) {
	target, ok := decisionStatus(decision)
	if !ok {
		return nil, domainErr(KindInvalidTransition, "unknown decision %q", decision)
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

	reviews, err := s.completedReviews(tx, submissionID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if len(reviews) == 0 {
		tx.Rollback()
		return nil, domainErr(KindNoReviews, "submission %d has no completed reviews", submissionID)
	}

	average := meanOfReviews(reviews)
	now := s.clock.Now()

	var existing models.FinalDecision
	err = tx.Where("submission_id = ?", submissionID).First(&existing).Error
	switch {
	case err == nil:
		if err := tx.Model(&models.FinalDecision{}).
			Where("decision_id = ?", existing.DecisionID).
			Updates(map[string]interface{}{
				"decision":      decision,
				"decided_by":    adminID,
				"reason":        reason,
				"average_score": average,
				"decided_at":    now,
			}).Error; err != nil {
			tx.Rollback()
			return nil, persistenceErr(err)
		}
		existing.Decision = decision
		existing.DecidedBy = adminID
		existing.Reason = reason
		existing.AverageScore = average
		existing.DecidedAt = now
	case errors.Is(err, gorm.ErrRecordNotFound):
		existing = models.FinalDecision{
			SubmissionID: submissionID,
			Decision:     decision,
			DecidedBy:    adminID,
			Reason:       reason,
			AverageScore: average,
			DecidedAt:    now,
		}
		if err := tx.Create(&existing).Error; err != nil {
			tx.Rollback()
			return nil, persistenceErr(err)
		}
	default:
		tx.Rollback()
		return nil, persistenceErr(err)
	}

	if sub.Status != target {
		if CanTransition(sub.Status, target) {
			if err := Transition(tx, &sub, target, adminID, reason, s.clock); err != nil {
				tx.Rollback()
				return nil, err
			}
		} else if decidedStatus(sub.Status) {
			// Re-decision after the submission already left UnderReview.
			// FinalDecision stays overwritable, so the status follows the
			// new ruling directly, with a history row like any transition.
			if err := forceStatus(tx, &sub, target, adminID, reason, s.clock); err != nil {
				tx.Rollback()
				return nil, err
			}
		} else {
			tx.Rollback()
			return nil, domainErr(KindInvalidTransition, "cannot move submission %d from %s to %s", submissionID, sub.Status, target)
		}
	}

	message := fmt.Sprintf("A final decision has been made on \"%s\": %s.", sub.Title, decision)
	if err := createNotification(tx, sub.AuthorID, "Final decision", message, "info", submissionID, now); err != nil {
		tx.Rollback()
		return nil, persistenceErr(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, persistenceErr(err)
	}

	if email := loadUserEmail(s.db, sub.AuthorID); email != "" {
		notifySafe(s.notifier, NotifyFinalDecision, email, submissionID, nil, map[string]string{
			"title":   sub.Title,
			"message": message,
		})
	}

	return &existing, nil
}

// SuggestDecision derives the advisory recommendation from completed
// reviews. A review whose average was never stored contributes 0 to the
// aggregate mean.
func SuggestDecision(reviews []models.Review) DecisionSuggestion {
	suggestion := DecisionSuggestion{
		AverageScore:     meanOfReviews(reviews),
		CompletedReviews: len(reviews),
	}

	switch len(reviews) {
	case 0:
		suggestion.Suggested = models.RecommendReject
	case 1:
		score := reviewScoreOrZero(reviews[0])
		switch {
		case score >= 4.0 && reviews[0].Recommendation == models.RecommendAccept:
			suggestion.Suggested = models.RecommendAccept
		case score >= 3.5:
			suggestion.Suggested = models.RecommendMinorRevision
		case score >= 3.0:
			suggestion.Suggested = models.RecommendMajorRevision
		default:
			suggestion.Suggested = models.RecommendReject
		}
	default:
		var accepts, minors, majors int
		for _, r := range reviews {
			switch r.Recommendation {
			case models.RecommendAccept:
				accepts++
			case models.RecommendMinorRevision:
				minors++
			case models.RecommendMajorRevision:
				majors++
			}
		}
		avg := suggestion.AverageScore
		switch {
		case avg >= 4.0 && accepts >= 2:
			suggestion.Suggested = models.RecommendAccept
		case avg >= 3.5 && accepts+minors >= 1:
			suggestion.Suggested = models.RecommendMinorRevision
		case avg >= 3.0 && minors+majors >= 1:
			suggestion.Suggested = models.RecommendMajorRevision
		default:
			suggestion.Suggested = models.RecommendReject
		}
	}
	return suggestion
}

func meanOfReviews(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	total := 0.0
	for _, r := range reviews {
		total += reviewScoreOrZero(r)
	}
	return total / float64(len(reviews))
}

func reviewScoreOrZero(r models.Review) float64 {
	if r.AverageScore == nil {
		return 0
	}
	return *r.AverageScore
}

// decisionStatus maps an admin ruling to the submission status it implies.
func decisionStatus(decision models.Recommendation) (models.SubmissionStatus, bool) {
	switch decision {
	case models.RecommendAccept:
		return models.StatusAccepted, true
	case models.RecommendMinorRevision, models.RecommendMajorRevision:
		return models.StatusRevisionRequired, true
	case models.RecommendReject:
		return models.StatusRejected, true
	}
	return "", false
}

// decidedStatus reports whether the status was itself produced by a final
// decision.
func decidedStatus(status models.SubmissionStatus) bool {
	switch status {
	case models.StatusAccepted, models.StatusRevisionRequired, models.StatusRejected:
		return true
	}
	return false
}

// forceStatus applies a status outside the transition table; used only when
// an existing FinalDecision is overwritten.
func forceStatus(tx *gorm.DB, sub *models.Submission, to models.SubmissionStatus, actorID int, reason string, clock Clock) error {
	now := clock.Now()
	if err := tx.Model(&models.Submission{}).
		Where("submission_id = ?", sub.SubmissionID).
		Updates(map[string]interface{}{"status": to, "update_at": now}).Error; err != nil {
		return persistenceErr(err)
	}
	history := models.SubmissionStatusHistory{
		SubmissionID: sub.SubmissionID,
		OldStatus:    sub.Status,
		NewStatus:    to,
		ChangedBy:    actorID,
		CreatedAt:    now,
	}
	if reason != "" {
		history.Reason = &reason
	}
	if err := tx.Create(&history).Error; err != nil {
		return persistenceErr(err)
	}
	sub.Status = to
	sub.UpdateAt = &now
	return nil
}

func (s *ReviewService) completedReviews(db *gorm.DB, submissionID int) ([]models.Review, error) {
	var reviews []models.Review
	if err := db.
		Joins("JOIN review_assignments ON review_assignments.assignment_id = reviews.assignment_id").
		Where("review_assignments.submission_id = ? AND review_assignments.status = ?", submissionID, models.AssignmentCompleted).
		Find(&reviews).Error; err != nil {
		return nil, persistenceErr(err)
	}
	return reviews, nil
}

func activeAdmins(db *gorm.DB) ([]int, []string, error) {
	var admins []models.User
	if err := db.Where("role_id = ? AND is_active = ? AND delete_at IS NULL", models.RoleAdmin, true).
		Find(&admins).Error; err != nil {
		return nil, nil, err
	}
	ids := make([]int, 0, len(admins))
	emails := make([]string, 0, len(admins))
	for _, a := range admins {
		ids = append(ids, a.UserID)
		emails = append(emails, a.Email)
	}
	return ids, emails, nil
}

func loadUserEmail(db *gorm.DB, userID int) string {
	var user models.User
	if err := db.Select("email").Where("user_id = ?", userID).First(&user).Error; err != nil {
		return ""
	}
	return user.Email
}
